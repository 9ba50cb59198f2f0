package service

import (
	"bytes"
	"context"
	"errors"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/models"
	"github.com/noah-isme/lumora-api/internal/observability"
	"github.com/noah-isme/lumora-api/internal/repository"
)

const messagePreviewLength = 100

// AdminAction is one privileged operation. The set of variants is closed to this package.
type AdminAction interface {
	// Name is the audit action tag written for the action.
	Name() string
	// RequiredRole is the minimum role the actor must hold.
	RequiredRole() models.Role
	adminAction()
}

// AddAdmin grants the admin role to the identity registered under Email.
type AddAdmin struct {
	Email string
}

// RemoveAdmin deletes a role assignment. The audit target is the assignment's holder.
type RemoveAdmin struct {
	AssignmentID uint
}

// SendMessage delivers a private message to the identity registered under RecipientEmail.
type SendMessage struct {
	RecipientEmail string
	Body           string
}

// UploadFile attaches study material to a course.
type UploadFile struct {
	CourseID uint
	FileName string
	Content  io.Reader
}

func (AddAdmin) Name() string    { return models.AuditActionAddAdmin }
func (RemoveAdmin) Name() string { return models.AuditActionRemoveAdmin }
func (SendMessage) Name() string { return models.AuditActionSendMessage }
func (UploadFile) Name() string  { return models.AuditActionUploadFile }

func (AddAdmin) RequiredRole() models.Role    { return models.RoleHeadAdmin }
func (RemoveAdmin) RequiredRole() models.Role { return models.RoleHeadAdmin }
func (SendMessage) RequiredRole() models.Role { return models.RoleNone }
func (UploadFile) RequiredRole() models.Role  { return models.RoleAdmin }

func (AddAdmin) adminAction()    {}
func (RemoveAdmin) adminAction() {}
func (SendMessage) adminAction() {}
func (UploadFile) adminAction()  {}

// AdminActionResult describes a committed privileged action.
type AdminActionResult struct {
	Audit    models.AuditRecord
	TargetID string
	Resource interface{}
}

// MessageDispatcher hands committed messages to realtime delivery.
type MessageDispatcher interface {
	Deliver(ctx context.Context, message dto.MessageResponse)
}

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// AdminActionService validates the actor's role, applies a privileged mutation and records it
// in the audit trail. Mutation and audit append commit or roll back together.
type AdminActionService interface {
	Execute(ctx context.Context, actorID string, action AdminAction) (AdminActionResult, error)
}

// AdminActionOptions carries the optional collaborators of the executor.
type AdminActionOptions struct {
	Dispatcher     MessageDispatcher
	Storage        FileStorage
	MaxUploadBytes int64
}

type adminActionService struct {
	store      repository.Store
	roles      RoleResolver
	dispatcher MessageDispatcher
	storage    FileStorage
	maxUpload  int64
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewAdminActionService constructs the admin action executor.
func NewAdminActionService(store repository.Store, roles RoleResolver, opts AdminActionOptions, logger zerolog.Logger) AdminActionService {
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 * 1024 * 1024
	}

	return &adminActionService{
		store:      store,
		roles:      roles,
		dispatcher: opts.Dispatcher,
		storage:    opts.Storage,
		maxUpload:  maxUpload,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "admin_action_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/lumora-api/internal/service/admin_action"),
	}
}

func (s *adminActionService) Execute(ctx context.Context, actorID string, action AdminAction) (result AdminActionResult, err error) {
	if action == nil {
		return AdminActionResult{}, invalidInput("action is required")
	}

	ctx, span := s.tracer.Start(ctx, "admin.execute", trace.WithAttributes(
		attribute.String("admin.action", action.Name()),
		attribute.String("admin.actor_id", actorID),
	))
	defer func() {
		observability.AdminActions().WithLabelValues(action.Name(), actionOutcome(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return AdminActionResult{}, ErrUnauthorized
	}
	if _, err := s.roles.Require(ctx, actorID, action.RequiredRole()); err != nil {
		s.logger.Warn().Str("actor_id", actorID).Str("action", action.Name()).Msg("admin action rejected")
		return AdminActionResult{}, err
	}

	switch a := action.(type) {
	case AddAdmin:
		result, err = s.addAdmin(ctx, actorID, a)
	case RemoveAdmin:
		result, err = s.removeAdmin(ctx, actorID, a)
	case SendMessage:
		result, err = s.sendMessage(ctx, actorID, a)
	case UploadFile:
		result, err = s.uploadFile(ctx, actorID, a)
	default:
		err = invalidInput("unsupported admin action")
	}
	if err != nil {
		return AdminActionResult{}, err
	}

	s.logger.Info().
		Str("actor_id", actorID).
		Str("action", action.Name()).
		Str("target_id", result.TargetID).
		Uint("audit_id", result.Audit.ID).
		Msg("admin action committed")

	return result, nil
}

func (s *adminActionService) addAdmin(ctx context.Context, actorID string, action AddAdmin) (AdminActionResult, error) {
	email := strings.TrimSpace(action.Email)
	if email == "" {
		return AdminActionResult{}, invalidInput("email is required")
	}

	var result AdminActionResult
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		target, err := tx.Users().FindByEmail(ctx, email)
		if err != nil {
			return notFoundOr(err, ErrIdentityNotFound)
		}

		assignment := models.RoleAssignment{
			UserID:    target.ID,
			Role:      models.RoleAdmin,
			CreatedBy: actorID,
		}
		if err := tx.Roles().Create(ctx, &assignment); err != nil {
			return persistenceError(err)
		}

		record, err := appendAudit(ctx, tx.Audit(), AuditEntry{
			AdminID:    actorID,
			ActionType: models.AuditActionAddAdmin,
			TargetID:   target.ID,
			TargetType: "user",
			Details:    map[string]interface{}{"email": email},
		})
		if err != nil {
			return err
		}

		result = AdminActionResult{Audit: record, TargetID: target.ID, Resource: assignment}
		return nil
	})
	return result, err
}

// removeAdmin does not inspect the target row's role before deletion.
func (s *adminActionService) removeAdmin(ctx context.Context, actorID string, action RemoveAdmin) (AdminActionResult, error) {
	if action.AssignmentID == 0 {
		return AdminActionResult{}, invalidInput("assignment id is required")
	}

	var result AdminActionResult
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		assignment, err := tx.Roles().Get(ctx, action.AssignmentID)
		if err != nil {
			return notFoundOr(err, ErrAssignmentNotFound)
		}
		targetUserID := assignment.UserID

		if err := tx.Roles().Delete(ctx, assignment.ID); err != nil {
			return notFoundOr(err, ErrAssignmentNotFound)
		}

		record, err := appendAudit(ctx, tx.Audit(), AuditEntry{
			AdminID:    actorID,
			ActionType: models.AuditActionRemoveAdmin,
			TargetID:   targetUserID,
			TargetType: "user",
			Details: map[string]interface{}{
				"assignment_id": assignment.ID,
				"role":          string(assignment.Role),
			},
		})
		if err != nil {
			return err
		}

		result = AdminActionResult{Audit: record, TargetID: targetUserID}
		return nil
	})
	return result, err
}

func (s *adminActionService) sendMessage(ctx context.Context, actorID string, action SendMessage) (AdminActionResult, error) {
	email := strings.TrimSpace(action.RecipientEmail)
	if email == "" {
		return AdminActionResult{}, invalidInput("recipient email is required")
	}
	body := plainText(s.sanitizer, action.Body)
	if body == "" {
		return AdminActionResult{}, invalidInput("message is required")
	}

	var (
		result  AdminActionResult
		message models.PrivateMessage
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		recipient, err := tx.Users().FindByEmail(ctx, email)
		if err != nil {
			return notFoundOr(err, ErrIdentityNotFound)
		}

		message = models.PrivateMessage{
			SenderID:    actorID,
			RecipientID: recipient.ID,
			Message:     body,
		}
		if err := tx.Messages().Create(ctx, &message); err != nil {
			return persistenceError(err)
		}

		record, err := appendAudit(ctx, tx.Audit(), AuditEntry{
			AdminID:    actorID,
			ActionType: models.AuditActionSendMessage,
			TargetID:   recipient.ID,
			TargetType: "user",
			Details:    map[string]interface{}{"message": truncateRunes(body, messagePreviewLength)},
		})
		if err != nil {
			return err
		}

		result = AdminActionResult{Audit: record, TargetID: recipient.ID}
		return nil
	})
	if err != nil {
		return AdminActionResult{}, err
	}

	response := dto.NewMessageResponse(message)
	result.Resource = response
	if s.dispatcher != nil {
		s.dispatcher.Deliver(ctx, response)
	}
	return result, nil
}

func (s *adminActionService) uploadFile(ctx context.Context, actorID string, action UploadFile) (AdminActionResult, error) {
	if action.CourseID == 0 {
		return AdminActionResult{}, invalidInput("course id is required")
	}
	if strings.TrimSpace(action.FileName) == "" {
		return AdminActionResult{}, invalidInput("file name is required")
	}
	if s.storage == nil {
		return AdminActionResult{}, errors.New("file storage is not configured")
	}

	if _, err := s.store.Courses().Get(ctx, action.CourseID); err != nil {
		return AdminActionResult{}, notFoundOr(err, ErrCourseNotFound)
	}

	material, err := inspectMaterial(action.FileName, action.Content, s.maxUpload)
	if err != nil {
		return AdminActionResult{}, err
	}

	url, err := s.storage.Upload(ctx, material.Name, bytes.NewReader(material.Payload))
	if err != nil {
		observability.MaterialRejected().WithLabelValues("storage").Inc()
		return AdminActionResult{}, persistenceError(err)
	}

	courseID := strconv.FormatUint(uint64(action.CourseID), 10)
	file := models.CourseFile{
		CourseID:   action.CourseID,
		FileName:   material.Name,
		FileURL:    url,
		MimeType:   material.MimeType,
		SizeBytes:  int64(len(material.Payload)),
		UploadedBy: actorID,
	}

	var result AdminActionResult
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Courses().AddFile(ctx, &file); err != nil {
			return persistenceError(err)
		}

		record, err := appendAudit(ctx, tx.Audit(), AuditEntry{
			AdminID:    actorID,
			ActionType: models.AuditActionUploadFile,
			TargetID:   courseID,
			TargetType: "course",
			Details: map[string]interface{}{
				"file_name": file.FileName,
				"file_url":  file.FileURL,
				"mime_type": file.MimeType,
			},
		})
		if err != nil {
			return err
		}

		result = AdminActionResult{Audit: record, TargetID: courseID, Resource: dto.NewCourseFileResponse(file)}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("file_url", url).Msg("stored course material but failed to record it")
		return AdminActionResult{}, err
	}

	observability.MaterialUploads().WithLabelValues(material.MimeType).Inc()
	return result, nil
}

func actionOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}

// plainText strips markup and reverts the entity escaping the sanitizer applies to text.
func plainText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(value)))
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
