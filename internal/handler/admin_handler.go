package handler

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/service"
	"github.com/noah-isme/lumora-api/internal/utils"
)

// AdminHandler exposes role management, the identity directory and course material uploads.
type AdminHandler struct {
	actions   service.AdminActionService
	directory service.AdminDirectoryService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAdminHandler constructs the admin handler.
func NewAdminHandler(actions service.AdminActionService, directory service.AdminDirectoryService, validate *validator.Validate, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		actions:   actions,
		directory: directory,
		validator: validate,
		logger:    logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register binds admin routes. The router is expected to be gated to admins already.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/admins", h.listAdmins)
	router.Post("/admins", h.addAdmin)
	router.Delete("/admins/:id", h.removeAdmin)
	router.Get("/users/lookup", h.lookupUser)
	router.Get("/users", h.listUsers)
	router.Post("/courses/:id/files", h.uploadCourseFile)
}

func (h *AdminHandler) listAdmins(c *fiber.Ctx) error {
	admins, err := h.directory.ListAdmins(requestContext(c))
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to list admins")
	}
	return utils.OK(c, admins, "admins", dto.PaginationMeta{Count: len(admins)})
}

func (h *AdminHandler) addAdmin(c *fiber.Ctx) error {
	var req dto.AddAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validator.Struct(req); err != nil {
		return writeServiceError(c, h.logger, err, "invalid payload")
	}

	result, err := h.actions.Execute(requestContext(c), userIDFromContext(c), service.AddAdmin{Email: req.Email})
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to add admin")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "admin added", actionResponse(service.AddAdmin{}, result))
}

func (h *AdminHandler) removeAdmin(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	action := service.RemoveAdmin{AssignmentID: id}
	result, err := h.actions.Execute(requestContext(c), userIDFromContext(c), action)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to remove admin")
	}

	return utils.SendSuccess(c, "admin removed", actionResponse(action, result))
}

func (h *AdminHandler) lookupUser(c *fiber.Ctx) error {
	user, err := h.directory.FindUser(requestContext(c), c.Query("email"))
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to look up user")
	}
	return utils.SendSuccess(c, "user found", user)
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	users, err := h.directory.ListUsersWithEmails(requestContext(c))
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to list users")
	}
	return utils.OK(c, users, "users", dto.PaginationMeta{Count: len(users)})
}

func (h *AdminHandler) uploadCourseFile(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read file")
	}
	defer file.Close()

	action := service.UploadFile{CourseID: courseID, FileName: fileHeader.Filename, Content: file}
	result, err := h.actions.Execute(requestContext(c), userIDFromContext(c), action)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to upload course material")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course material uploaded", fiber.Map{
		"action": actionResponse(action, result),
		"file":   result.Resource,
	})
}

func actionResponse(action service.AdminAction, result service.AdminActionResult) dto.AdminActionResponse {
	return dto.AdminActionResponse{
		Action:   action.Name(),
		AuditID:  result.Audit.ID,
		TargetID: result.TargetID,
	}
}
