package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lumora-api/internal/handler"
	"github.com/noah-isme/lumora-api/internal/models"
	"github.com/noah-isme/lumora-api/internal/service"
)

type mockBootstrapService struct {
	err         error
	lastToken   string
	lastCourses []models.Course
	affected    int64
}

func (m *mockBootstrapService) EnsureHeadAdmin(context.Context, string) (bool, error) {
	return false, nil
}

func (m *mockBootstrapService) SeedCourses(_ context.Context, token string, courses []models.Course) (int64, error) {
	m.lastToken = token
	m.lastCourses = courses
	if m.err != nil {
		return 0, m.err
	}
	return m.affected, nil
}

func TestSeedHandler_CoursesSuccess(t *testing.T) {
	svc := &mockBootstrapService{affected: 2}
	logger := zerolog.New(io.Discard)
	app := fiber.New()
	handler.NewSeedHandler(svc, logger).Register(app.Group("/api/v1/seed"))

	req := jsonRequest(t, http.MethodPost, "/api/v1/seed/courses", map[string]interface{}{
		"items": []models.Course{{Code: "cs101", Title: "Intro"}, {Code: "cs102", Title: "Data"}},
	})
	req.Header.Set("X-Seed-Token", "secret")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Affected int64 `json:"affected"`
		} `json:"data"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, int64(2), response.Data.Affected)
	require.Equal(t, "secret", svc.lastToken)
	require.Len(t, svc.lastCourses, 2)
}

func TestSeedHandler_Errors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "disabled", err: service.ErrSeedDisabled, status: fiber.StatusForbidden},
		{name: "token", err: service.ErrSeedUnauthorized, status: fiber.StatusForbidden},
		{name: "failure", err: errors.New("boom"), status: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			handler.NewSeedHandler(&mockBootstrapService{err: tc.err}, zerolog.Nop()).Register(app.Group("/api/v1/seed"))

			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/seed/courses", map[string]interface{}{"items": []models.Course{}}))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
