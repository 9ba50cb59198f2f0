package dto

import (
	"time"

	"github.com/noah-isme/lumora-api/internal/models"
)

// CourseFileResponse describes uploaded course material.
type CourseFileResponse struct {
	ID        uint      `json:"id"`
	FileName  string    `json:"file_name"`
	FileURL   string    `json:"file_url"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// CourseResponse is the serialized representation of a course.
type CourseResponse struct {
	ID          uint                 `json:"id"`
	Code        string               `json:"code"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Department  string               `json:"department"`
	Level       string               `json:"level"`
	Files       []CourseFileResponse `json:"files,omitempty"`
}

// NewCourseFileResponse converts a course file model to DTO.
func NewCourseFileResponse(file models.CourseFile) CourseFileResponse {
	return CourseFileResponse{
		ID:        file.ID,
		FileName:  file.FileName,
		FileURL:   file.FileURL,
		MimeType:  file.MimeType,
		SizeBytes: file.SizeBytes,
		CreatedAt: file.CreatedAt,
	}
}

// NewCourseResponse converts a course model to DTO.
func NewCourseResponse(course models.Course) CourseResponse {
	response := CourseResponse{
		ID:          course.ID,
		Code:        course.Code,
		Title:       course.Title,
		Description: course.Description,
		Department:  course.Department,
		Level:       course.Level,
	}
	for _, file := range course.Files {
		response.Files = append(response.Files, NewCourseFileResponse(file))
	}
	return response
}
