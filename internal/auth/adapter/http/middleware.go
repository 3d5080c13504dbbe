package http

import (
	"errors"
	"strings"

	"session-studio/internal/auth/adapter/security"
	"session-studio/internal/auth/usecase"
	"session-studio/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// Messages returned by the gate. Missing-credential rejections and
// failed-validation rejections are deliberately distinct, and expired tokens
// get their own message so clients know to re-login rather than retry.
const (
	msgNoToken          = "Access denied. No token provided."
	msgNoTokenAfterWord = "Access denied. No token found after Bearer."
	msgTokenExpired     = "Token expired. Please log in again."
	msgTokenInvalid     = "Invalid token."
)

const bearerPrefix = "Bearer "

// AuthMiddleware gates protected routes on a valid bearer token. It is a pure
// gate: beyond the accept/reject decision it only attaches the resolved
// caller identity to the request context, and never touches the session store.
type AuthMiddleware struct {
	usecase usecase.AuthUsecaseInterface
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface) *AuthMiddleware {
	return &AuthMiddleware{usecase: uc}
}

// RequireAuth returns middleware that rejects requests without a valid
// Authorization: Bearer <token> header. On success the resolved user ID and
// email are injected into the request context.
func (m *AuthMiddleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": msgNoToken,
			})
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if token == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": msgNoTokenAfterWord,
			})
		}

		claims, err := m.usecase.ValidateToken(c.Context(), token)
		if err != nil {
			message := msgTokenInvalid
			if errors.Is(err, security.ErrTokenExpired) {
				message = msgTokenExpired
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": message,
			})
		}

		ctx := utils.WithUserID(c.UserContext(), claims.UserID)
		ctx = utils.WithUserEmail(ctx, claims.Email)
		c.SetUserContext(ctx)

		return c.Next()
	}
}
