package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/lumora-api/internal/models"
	"github.com/noah-isme/lumora-api/internal/repository"
)

// SystemActor is recorded as the creator of rows written outside a user request.
const SystemActor = "system"

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// BootstrapService prepares a fresh deployment: the first head admin and the course catalogue.
type BootstrapService interface {
	EnsureHeadAdmin(ctx context.Context, email string) (bool, error)
	SeedCourses(ctx context.Context, token string, courses []models.Course) (int64, error)
}

type bootstrapService struct {
	store       repository.Store
	seedEnabled bool
	seedToken   string
	logger      zerolog.Logger
}

// NewBootstrapService constructs the bootstrap service.
func NewBootstrapService(store repository.Store, seedEnabled bool, seedToken string, logger zerolog.Logger) BootstrapService {
	return &bootstrapService{
		store:       store,
		seedEnabled: seedEnabled,
		seedToken:   seedToken,
		logger:      logger.With().Str("component", "bootstrap_service").Logger(),
	}
}

// EnsureHeadAdmin grants head_admin to the identity under email when no head admin exists yet.
// It reports whether an assignment was created.
func (s *bootstrapService) EnsureHeadAdmin(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}

	created := false
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		exists, err := tx.Roles().ExistsWithRole(ctx, models.RoleHeadAdmin)
		if err != nil {
			return persistenceError(err)
		}
		if exists {
			return nil
		}

		user, err := tx.Users().FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn().Str("email", email).Msg("bootstrap head admin identity not found")
				return nil
			}
			return persistenceError(err)
		}

		assignment := models.RoleAssignment{
			UserID:    user.ID,
			Role:      models.RoleHeadAdmin,
			CreatedBy: SystemActor,
		}
		if err := tx.Roles().Create(ctx, &assignment); err != nil {
			return persistenceError(err)
		}

		if _, err := appendAudit(ctx, tx.Audit(), AuditEntry{
			AdminID:    SystemActor,
			ActionType: models.AuditActionBootstrapHeadAdmin,
			TargetID:   user.ID,
			TargetType: "user",
			Details:    map[string]interface{}{"email": email},
		}); err != nil {
			return err
		}

		created = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if created {
		s.logger.Info().Str("email", email).Msg("head admin bootstrapped")
	}
	return created, nil
}

func (s *bootstrapService) SeedCourses(ctx context.Context, token string, courses []models.Course) (int64, error) {
	if !s.seedEnabled {
		return 0, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return 0, ErrSeedUnauthorized
	}

	normalized := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		course.Code = strings.ToUpper(strings.TrimSpace(course.Code))
		course.Title = strings.TrimSpace(course.Title)
		if course.Code == "" || course.Title == "" {
			return 0, invalidInput("course code and title are required")
		}
		course.ID = 0
		course.Files = nil
		normalized = append(normalized, course)
	}

	affected, err := s.store.Courses().UpsertBatch(ctx, normalized)
	if err != nil {
		return 0, persistenceError(err)
	}
	s.logger.Info().Int64("affected", affected).Msg("courses seeded")
	return affected, nil
}

func (s *bootstrapService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.seedToken)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}
