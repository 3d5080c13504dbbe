package http

import (
	"errors"
	"fmt"

	"session-studio/internal/auth/domain/model"
	"session-studio/internal/auth/usecase"
	apperrors "session-studio/internal/shared/errors"
	"session-studio/internal/shared/logger"
	"session-studio/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	usecase usecase.AuthUsecaseInterface
	log     logger.Logger
}

// NewAuthHTTPHandler creates a new authentication HTTP handler
func NewAuthHTTPHandler(uc usecase.AuthUsecaseInterface, log logger.Logger) *AuthHTTPHandler {
	if log == nil {
		log = logger.NewLogger()
	}
	return &AuthHTTPHandler{
		usecase: uc,
		log:     log.WithComponent("auth_handler"),
	}
}

// UserInfo is the public projection of a user returned by auth endpoints
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthResponse is the response body for successful register/login calls
type AuthResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    UserInfo `json:"user"`
}

// SetupAuthRoutes registers the public auth endpoints on the given router
func (h *AuthHTTPHandler) SetupAuthRoutes(router fiber.Router) {
	auth := router.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
}

// SetupProtectedRoutes registers endpoints that require a valid token
func (h *AuthHTTPHandler) SetupProtectedRoutes(router fiber.Router, middleware *AuthMiddleware) {
	router.Get("/dashboard", middleware.RequireAuth(), h.Dashboard)
}

// Register handles user registration
func (h *AuthHTTPHandler) Register(c *fiber.Ctx) error {
	var req usecase.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	user, token, err := h.usecase.Register(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Email already registered",
			})
		}
		return h.fail(c, "register", err)
	}

	return c.Status(fiber.StatusCreated).JSON(authResponse("User registered successfully", user, token))
}

// Login handles user login
func (h *AuthHTTPHandler) Login(c *fiber.Ctx) error {
	var req usecase.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	user, token, err := h.usecase.Login(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid email or password",
			})
		}
		return h.fail(c, "login", err)
	}

	return c.JSON(authResponse("Login successful", user, token))
}

// Dashboard greets the authenticated caller. It doubles as a liveness probe
// for the whole token path during development.
func (h *AuthHTTPHandler) Dashboard(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Welcome to the dashboard, user ID: %s", userID),
	})
}

// fail maps usecase failures to status codes. Typed validation errors carry
// a message safe to echo at 400; anything else is a store or codec failure,
// logged with its cause and reported as a generic internal error so the
// response never leaks internals.
func (h *AuthHTTPHandler) fail(c *fiber.Ctx, op string, err error) error {
	if appErr, ok := err.(*apperrors.AppError); ok && appErr.Type == apperrors.ErrorTypeValidation {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": appErr.Message,
		})
	}

	h.log.WithContext(c.UserContext()).Errorf("%s failed: %v", op, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Internal server error",
	})
}

func authResponse(message string, user *model.User, token string) AuthResponse {
	return AuthResponse{
		Success: true,
		Message: message,
		Token:   token,
		User: UserInfo{
			ID:    user.ID,
			Email: user.Email,
		},
	}
}
