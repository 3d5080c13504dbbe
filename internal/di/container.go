package di

import (
	"context"
	"fmt"
	"sync"
	"time"

	"session-studio/internal/auth"
	"session-studio/internal/auth/config"
	"session-studio/internal/sessions"
	"session-studio/internal/shared/eventbus"
	"session-studio/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const containerCloseTimeout = 30 * time.Second

// Container wires the application modules together and owns their lifecycle.
type Container struct {
	mu sync.RWMutex

	// Module instances
	AuthModule    *auth.AuthModule
	SessionModule *sessions.SessionModule

	// Shared infrastructure
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	EventBus    eventbus.EventBusInterface
	AuthConfig  *config.Config
	Logger      logger.Logger
}

// NewContainer creates an empty container. Modules are attached through the
// Initialize* methods in dependency order.
func NewContainer(log logger.Logger) *Container {
	if log == nil {
		log = logger.NewLogger()
	}
	bus := eventbus.NewEventBus(log)
	subscribeEventLogging(bus, log)
	return &Container{
		EventBus: bus,
		Logger:   log,
	}
}

// subscribeEventLogging attaches a structured-log observer to every domain
// event type, so published events always have at least one consumer and show
// up in the logs.
func subscribeEventLogging(bus eventbus.EventBusInterface, log logger.Logger) {
	observer := log.WithComponent("eventbus")
	handler := func(ctx context.Context, event eventbus.Event) error {
		observer.WithFields(map[string]interface{}{
			"event_type": event.Type(),
			"source":     event.Source(),
			"data":       event.Data(),
		}).Info("domain event")
		return nil
	}

	for _, eventType := range []string{
		eventbus.EventTypeSessionSaved,
		eventbus.EventTypeSessionPublished,
		eventbus.EventTypeUserRegistered,
		eventbus.EventTypeUserAuthenticated,
	} {
		bus.Subscribe(eventType, handler)
	}
}

// SetRedisClient attaches an optional Redis connection so health checks and
// cleanup cover it. Callers that run without Redis simply never call this.
func (c *Container) SetRedisClient(client *redis.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RedisClient = client
}

// InitializeAuth initializes the authentication module.
func (c *Container) InitializeAuth(mongoDB *mongo.Database, authConfig *config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.MongoDB = mongoDB
	c.AuthConfig = authConfig

	authModule, err := auth.NewAuthModule(mongoDB, authConfig, c.EventBus, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}

	c.AuthModule = authModule
	return nil
}

// InitializeSessions initializes the sessions module. The auth module must be
// initialized first because the session routes sit behind its gate.
func (c *Container) InitializeSessions() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.AuthModule == nil {
		return fmt.Errorf("auth module must be initialized before sessions module")
	}
	if c.MongoDB == nil {
		return fmt.Errorf("MongoDB must be initialized before sessions module")
	}

	sessionModule, err := sessions.NewSessionModule(c.MongoDB, c.EventBus, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create sessions module: %w", err)
	}

	c.SessionModule = sessionModule
	return nil
}

// GetAuthModule returns the auth module instance
func (c *Container) GetAuthModule() *auth.AuthModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthModule
}

// GetSessionModule returns the sessions module instance
func (c *Container) GetSessionModule() *sessions.SessionModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SessionModule
}

// HealthCheck pings every attached backing service.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}

	return nil
}

// Cleanup shuts modules and connections down in reverse initialization order.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	c.SessionModule = nil
	c.AuthModule = nil

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis client: %w", err))
		}
		c.RedisClient = nil
	}

	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to disconnect MongoDB: %w", err))
		}
		c.MongoDB = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// Close gracefully shuts down all services in the container with a timeout.
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), containerCloseTimeout)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		c.Logger.Warn("cleanup errors occurred: ", err)
		return err
	}
	return nil
}
