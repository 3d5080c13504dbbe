package http

import (
	"session-studio/internal/sessions/usecase"
	apperrors "session-studio/internal/shared/errors"
	"session-studio/internal/shared/logger"
	"session-studio/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// SessionHTTPHandler handles HTTP requests for the session lifecycle
type SessionHTTPHandler struct {
	usecase usecase.SessionUsecaseInterface
	log     logger.Logger
}

// NewSessionHTTPHandler creates a new session HTTP handler
func NewSessionHTTPHandler(uc usecase.SessionUsecaseInterface, log logger.Logger) *SessionHTTPHandler {
	if log == nil {
		log = logger.NewLogger()
	}
	return &SessionHTTPHandler{
		usecase: uc,
		log:     log.WithComponent("session_handler"),
	}
}

// AuthGate is the request-interception contract the session routes hide
// behind. It is satisfied by the auth module's middleware.
type AuthGate interface {
	RequireAuth() fiber.Handler
}

// SetupSessionRoutes registers the session endpoints. Everything under
// /my-sessions requires authentication; the published feed is public.
func (h *SessionHTTPHandler) SetupSessionRoutes(router fiber.Router, gate AuthGate) {
	router.Get("/sessions", h.ListPublished)

	my := router.Group("/my-sessions", gate.RequireAuth())
	my.Get("/", h.ListOwned)
	my.Post("/save-draft", h.SaveDraft)
	my.Post("/publish", h.Publish)
	my.Get("/:id", h.Get)
}

// SaveDraft creates a new draft or partially updates an existing session
func (h *SessionHTTPHandler) SaveDraft(c *fiber.Ctx) error {
	callerID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return unauthenticated(c)
	}

	var input usecase.SaveDraftInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	session, err := h.usecase.CreateOrUpdateDraft(c.UserContext(), callerID, input)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Draft saved successfully.",
		"session": session,
	})
}

// Publish transitions a session to published, applying any supplied fields
func (h *SessionHTTPHandler) Publish(c *fiber.Ctx) error {
	callerID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return unauthenticated(c)
	}

	var input usecase.PublishInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	session, err := h.usecase.Publish(c.UserContext(), callerID, input)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Session published successfully.",
		"session": session,
	})
}

// Get returns a single session owned by the caller
func (h *SessionHTTPHandler) Get(c *fiber.Ctx) error {
	callerID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return unauthenticated(c)
	}

	session, err := h.usecase.Get(c.UserContext(), callerID, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"session": session,
	})
}

// ListOwned returns all sessions owned by the caller, newest first
func (h *SessionHTTPHandler) ListOwned(c *fiber.Ctx) error {
	callerID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return unauthenticated(c)
	}

	sessions, err := h.usecase.ListOwned(c.UserContext(), callerID)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"sessions": sessions,
	})
}

// ListPublished returns the public feed of published sessions
func (h *SessionHTTPHandler) ListPublished(c *fiber.Ctx) error {
	sessions, err := h.usecase.ListPublished(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"sessions": sessions,
	})
}

// fail maps typed usecase failures to status codes. Anything that is not an
// AppError is logged and reported as a generic internal error; internals are
// never echoed to the caller.
func (h *SessionHTTPHandler) fail(c *fiber.Ctx, err error) error {
	if appErr, ok := err.(*apperrors.AppError); ok {
		if appErr.Type == apperrors.ErrorTypeInternal {
			h.log.WithContext(c.UserContext()).Errorf("session operation failed: %v", appErr)
			return c.Status(appErr.HTTPCode).JSON(fiber.Map{
				"success": false,
				"message": "Internal server error",
			})
		}
		return c.Status(appErr.HTTPCode).JSON(fiber.Map{
			"success": false,
			"message": appErr.Message,
		})
	}

	h.log.WithContext(c.UserContext()).Errorf("unexpected session error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Internal server error",
	})
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Unauthorized",
	})
}
