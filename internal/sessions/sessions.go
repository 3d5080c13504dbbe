package sessions

import (
	"fmt"

	sessionhttp "session-studio/internal/sessions/adapter/http"
	"session-studio/internal/sessions/adapter/persistence/mongodb"
	"session-studio/internal/sessions/domain/repository"
	"session-studio/internal/sessions/usecase"
	"session-studio/internal/shared/eventbus"
	"session-studio/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionModule bundles the session lifecycle manager and its adapters.
type SessionModule struct {
	repository repository.SessionRepository
	usecase    usecase.SessionUsecaseInterface
	handler    *sessionhttp.SessionHTTPHandler
}

// NewSessionModule creates a new session module instance
func NewSessionModule(db *mongo.Database, bus eventbus.EventBusInterface, log logger.Logger) (*SessionModule, error) {
	repo, err := mongodb.NewMongoSessionRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create session repository: %w", err)
	}

	uc := usecase.NewSessionUsecase(repo, bus, log)
	handler := sessionhttp.NewSessionHTTPHandler(uc, log)

	return &SessionModule{
		repository: repo,
		usecase:    uc,
		handler:    handler,
	}, nil
}

// RegisterRoutes registers the session endpoints behind the given auth gate.
func (sm *SessionModule) RegisterRoutes(router fiber.Router, gate sessionhttp.AuthGate) {
	sm.handler.SetupSessionRoutes(router, gate)
}

// GetUsecase returns the session usecase for external access
func (sm *SessionModule) GetUsecase() usecase.SessionUsecaseInterface {
	return sm.usecase
}
