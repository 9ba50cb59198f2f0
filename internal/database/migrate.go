package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/lumora-api/internal/models"
)

// AutoMigrate creates or updates every table the API owns.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
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
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
