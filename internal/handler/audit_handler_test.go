package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/handler"
	"github.com/noah-isme/lumora-api/internal/models"
	"github.com/noah-isme/lumora-api/internal/service"
)

type stubAuditService struct {
	records []dto.AuditRecordResponse
	lastReq dto.AuditListRequest
}

func (s *stubAuditService) Record(context.Context, service.AuditEntry) (models.AuditRecord, error) {
	return models.AuditRecord{}, nil
}

func (s *stubAuditService) ListRecent(_ context.Context, req dto.AuditListRequest) ([]dto.AuditRecordResponse, error) {
	s.lastReq = req
	return s.records, nil
}

func stringPtr(value string) *string {
	return &value
}

func TestAuditLogContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("testdata", "audit_logs.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	now := time.Now().UTC()
	svc := &stubAuditService{records: []dto.AuditRecordResponse{
		{
			ID:         2,
			AdminID:    "h1",
			AdminLabel: "h1@x.com",
			ActionType: models.AuditActionAddAdmin,
			TargetID:   stringPtr("u1"),
			TargetType: stringPtr("user"),
			Details:    map[string]interface{}{"email": "u1@x.com"},
			CreatedAt:  now,
		},
		{
			ID:         1,
			AdminID:    "ghost",
			AdminLabel: dto.UnknownActorLabel,
			ActionType: models.AuditActionSendMessage,
			Details:    map[string]interface{}{},
			CreatedAt:  now.Add(-time.Minute),
		},
	}}

	app := fiber.New()
	handler.NewAuditHandler(svc, zerolog.Nop()).Register(app.Group("/api/admin"))

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/admin/audit-logs?limit=50&action_type=add_admin", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))

	require.Equal(t, 50, svc.lastReq.Limit)
	require.Equal(t, "add_admin", svc.lastReq.ActionType)
}

func TestAuditLogRejectsInvalidLimit(t *testing.T) {
	app := fiber.New()
	handler.NewAuditHandler(&stubAuditService{}, zerolog.Nop()).Register(app.Group("/api/admin"))

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/admin/audit-logs?limit=many", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
