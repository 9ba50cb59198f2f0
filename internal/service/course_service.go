package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/repository"
)

// CourseService serves the course catalogue.
type CourseService interface {
	List(ctx context.Context, department, level string) ([]dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
}

type courseService struct {
	repo   repository.CourseRepository
	logger zerolog.Logger
}

// NewCourseService constructs the course catalogue service.
func NewCourseService(repo repository.CourseRepository, logger zerolog.Logger) CourseService {
	return &courseService{
		repo:   repo,
		logger: logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context, department, level string) ([]dto.CourseResponse, error) {
	courses, err := s.repo.List(ctx, repository.CourseFilter{
		Department: strings.TrimSpace(department),
		Level:      strings.TrimSpace(level),
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	responses := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, dto.NewCourseResponse(course))
	}
	return responses, nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	if id == 0 {
		return dto.CourseResponse{}, invalidInput("course id is required")
	}

	course, err := s.repo.Get(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, notFoundOr(err, ErrCourseNotFound)
	}
	return dto.NewCourseResponse(course), nil
}
