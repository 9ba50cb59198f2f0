package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/lumora-api/internal/models"
)

// CourseFilter narrows course listings.
type CourseFilter struct {
	Department string
	Level      string
}

// CourseRepository persists courses and their materials.
type CourseRepository interface {
	List(ctx context.Context, filter CourseFilter) ([]models.Course, error)
	Get(ctx context.Context, id uint) (models.Course, error)
	AddFile(ctx context.Context, file *models.CourseFile) error
	UpsertBatch(ctx context.Context, courses []models.Course) (int64, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs the course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context, filter CourseFilter) ([]models.Course, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})
	if filter.Department != "" {
		query = query.Where("LOWER(department) = LOWER(?)", filter.Department)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}

	var courses []models.Course
	if err := query.Order("code ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) Get(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&course, id).Error
	if err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) AddFile(ctx context.Context, file *models.CourseFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// UpsertBatch inserts catalogue rows keyed by course code and refreshes existing ones.
func (r *courseRepository) UpsertBatch(ctx context.Context, courses []models.Course) (int64, error) {
	if len(courses) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "department", "level", "updated_at"}),
	}).Omit("Files").Create(&courses)
	return result.RowsAffected, result.Error
}
