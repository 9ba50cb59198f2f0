package service

import (
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/lumora-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.RoleAssignment{},
		&models.AuditRecord{},
		&models.AdViewState{},
		&models.PrivateMessage{},
		&models.DepartmentSpace{},
		&models.SpaceMembership{},
		&models.CommunityPost{},
		&models.CommunityReply{},
		&models.LeaderboardEntry{},
		&models.QuizResult{},
		&models.Course{},
		&models.CourseFile{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mini, client
}

func seedUser(t *testing.T, db *gorm.DB, id, email string) models.User {
	t.Helper()
	user := models.User{ID: id, Email: email, FullName: "User " + id}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func grantRole(t *testing.T, db *gorm.DB, userID string, role models.Role) models.RoleAssignment {
	t.Helper()
	assignment := models.RoleAssignment{UserID: userID, Role: role, CreatedBy: "seed"}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, conds ...interface{}) int64 {
	t.Helper()
	var count int64
	query := db.Model(model)
	if len(conds) > 0 {
		query = query.Where(conds[0], conds[1:]...)
	}
	require.NoError(t, query.Count(&count).Error)
	return count
}
