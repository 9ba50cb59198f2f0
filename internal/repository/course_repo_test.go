package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lumora-api/internal/models"
)

func TestCourseRepositoryUpsertFilterAndFiles(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	affected, err := repo.UpsertBatch(ctx, []models.Course{
		{Code: "CS101", Title: "Intro", Department: "Computing", Level: "100"},
		{Code: "MA201", Title: "Calculus", Department: "Mathematics", Level: "200"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)

	_, err = repo.UpsertBatch(ctx, []models.Course{{Code: "CS101", Title: "Intro to Computing", Department: "Computing", Level: "100"}})
	require.NoError(t, err)

	computing, err := repo.List(ctx, CourseFilter{Department: "computing"})
	require.NoError(t, err)
	require.Len(t, computing, 1)
	require.Equal(t, "Intro to Computing", computing[0].Title)

	require.NoError(t, repo.AddFile(ctx, &models.CourseFile{
		CourseID:   computing[0].ID,
		FileName:   "week1.pdf",
		FileURL:    "https://files.test/week1.pdf",
		MimeType:   "application/pdf",
		SizeBytes:  1024,
		UploadedBy: "h1",
	}))

	course, err := repo.Get(ctx, computing[0].ID)
	require.NoError(t, err)
	require.Len(t, course.Files, 1)
	require.Equal(t, "week1.pdf", course.Files[0].FileName)

	all, err := repo.List(ctx, CourseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}
