package usecase

import (
	"context"
	"errors"
	"strings"

	"session-studio/internal/sessions/domain/model"
	"session-studio/internal/sessions/domain/repository"
	"session-studio/internal/shared/eventbus"
	apperrors "session-studio/internal/shared/errors"
	"session-studio/internal/shared/logger"
)

// SessionUsecaseInterface is the contract for the session lifecycle manager.
type SessionUsecaseInterface interface {
	CreateOrUpdateDraft(ctx context.Context, callerID string, input SaveDraftInput) (*model.Session, error)
	Publish(ctx context.Context, callerID string, input PublishInput) (*model.Session, error)
	Get(ctx context.Context, callerID, id string) (*model.Session, error)
	ListOwned(ctx context.Context, callerID string) ([]*model.Session, error)
	ListPublished(ctx context.Context) ([]*model.Session, error)
}

// SaveDraftInput is the partial-update input for autosave and manual draft
// saves. Every field is a pointer: nil means "not supplied, keep the stored
// value", while a pointer to a zero value is an explicit overwrite. This is
// what lets an autosave clear the tag list without clobbering the title.
type SaveDraftInput struct {
	ID          *string        `json:"id"`
	Title       *string        `json:"title"`
	Tags        *model.TagList `json:"tags"`
	JSONFileURL *string        `json:"json_file_url"`
	Duration    *string        `json:"duration"`
}

// PublishInput carries a publish request. ID is required; the remaining
// fields follow the same supplied-vs-absent rule as SaveDraftInput.
type PublishInput struct {
	ID          string         `json:"id"`
	Title       *string        `json:"title"`
	Tags        *model.TagList `json:"tags"`
	JSONFileURL *string        `json:"json_file_url"`
	Duration    *string        `json:"duration"`
}

// SessionUsecase owns the draft -> published state machine and the
// authorization rules around it.
type SessionUsecase struct {
	repo repository.SessionRepository
	bus  eventbus.EventBusInterface
	log  logger.Logger
}

// NewSessionUsecase creates a new session lifecycle manager.
func NewSessionUsecase(repo repository.SessionRepository, bus eventbus.EventBusInterface, log logger.Logger) *SessionUsecase {
	if log == nil {
		log = logger.NewLogger()
	}
	return &SessionUsecase{
		repo: repo,
		bus:  bus,
		log:  log.WithComponent("session_usecase"),
	}
}

// CreateOrUpdateDraft upserts a draft. Without an id it creates a new draft
// owned by the caller, defaulting unsupplied fields to empty. With an id it
// applies only the supplied fields to the existing document and refreshes
// updated_at; the status is never touched, so re-saving a published session
// keeps it published.
func (uc *SessionUsecase) CreateOrUpdateDraft(ctx context.Context, callerID string, input SaveDraftInput) (*model.Session, error) {
	if callerID == "" {
		return nil, apperrors.NewAuthenticationError("caller identity required")
	}
	if err := validateFields(input.Title, input.Tags); err != nil {
		return nil, err
	}

	if input.ID == nil || *input.ID == "" {
		session := &model.Session{
			OwnerID:     callerID,
			Title:       strings.TrimSpace(derefString(input.Title)),
			Tags:        derefTags(input.Tags).Normalize(),
			JSONFileURL: strings.TrimSpace(derefString(input.JSONFileURL)),
			Duration:    strings.TrimSpace(derefString(input.Duration)),
			Status:      model.StatusDraft,
		}

		created, err := uc.repo.Create(ctx, session)
		if err != nil {
			return nil, apperrors.WrapError(err, "failed to create draft")
		}

		uc.publishEvent(ctx, eventbus.EventTypeSessionSaved, created.ID)
		return created, nil
	}

	updated, err := uc.repo.UpdateByIDAndOwner(ctx, *input.ID, callerID, buildUpdate(input.Title, input.Tags, input.JSONFileURL, input.Duration, nil))
	if err != nil {
		return nil, mapRepoError(err)
	}

	uc.publishEvent(ctx, eventbus.EventTypeSessionSaved, updated.ID)
	return updated, nil
}

// Publish applies any supplied fields and transitions the session to
// published. Publishing an already-published session is legal and leaves it
// published with a refreshed updated_at.
func (uc *SessionUsecase) Publish(ctx context.Context, callerID string, input PublishInput) (*model.Session, error) {
	if callerID == "" {
		return nil, apperrors.NewAuthenticationError("caller identity required")
	}
	if input.ID == "" {
		return nil, apperrors.NewValidationError("Session ID is required to publish.")
	}
	if err := validateFields(input.Title, input.Tags); err != nil {
		return nil, err
	}

	published := model.StatusPublished
	updated, err := uc.repo.UpdateByIDAndOwner(ctx, input.ID, callerID, buildUpdate(input.Title, input.Tags, input.JSONFileURL, input.Duration, &published))
	if err != nil {
		return nil, mapRepoError(err)
	}

	uc.publishEvent(ctx, eventbus.EventTypeSessionPublished, updated.ID)
	return updated, nil
}

// Get returns the caller's session. A session owned by someone else is
// reported as not found, exactly like a missing one, so the lookup never
// discloses whether a foreign id exists.
func (uc *SessionUsecase) Get(ctx context.Context, callerID, id string) (*model.Session, error) {
	if callerID == "" {
		return nil, apperrors.NewAuthenticationError("caller identity required")
	}

	session, err := uc.repo.FindByIDAndOwner(ctx, id, callerID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return session, nil
}

// ListOwned returns all of the caller's sessions, newest first.
func (uc *SessionUsecase) ListOwned(ctx context.Context, callerID string) ([]*model.Session, error) {
	if callerID == "" {
		return nil, apperrors.NewAuthenticationError("caller identity required")
	}

	sessions, err := uc.repo.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to list sessions")
	}
	return sessions, nil
}

// ListPublished returns every published session for the public feed.
func (uc *SessionUsecase) ListPublished(ctx context.Context) ([]*model.Session, error) {
	sessions, err := uc.repo.ListPublished(ctx)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to list published sessions")
	}
	return sessions, nil
}

func (uc *SessionUsecase) publishEvent(ctx context.Context, eventType, sessionID string) {
	if uc.bus == nil {
		return
	}
	uc.bus.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(eventType, sessionID, "sessions"))
}

// validateFields checks the supplied fields only; absent fields are not the
// caller's to validate.
func validateFields(title *string, tags *model.TagList) error {
	if title != nil && len(strings.TrimSpace(*title)) > model.MaxTitleLength {
		return apperrors.NewValidationError("title exceeds maximum length")
	}
	_ = tags // tags are normalized, never rejected
	return nil
}

func buildUpdate(title *string, tags *model.TagList, jsonFileURL, duration *string, status *model.Status) repository.SessionUpdate {
	update := repository.SessionUpdate{Status: status}
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		update.Title = &trimmed
	}
	if tags != nil {
		normalized := tags.Normalize()
		update.Tags = &normalized
	}
	if jsonFileURL != nil {
		trimmed := strings.TrimSpace(*jsonFileURL)
		update.JSONFileURL = &trimmed
	}
	if duration != nil {
		trimmed := strings.TrimSpace(*duration)
		update.Duration = &trimmed
	}
	return update
}

func mapRepoError(err error) error {
	if errors.Is(err, apperrors.ErrSessionNotFound) {
		return apperrors.NewNotFoundError("session")
	}
	return apperrors.WrapError(err, "session store failure")
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTags(t *model.TagList) model.TagList {
	if t == nil {
		return model.TagList{}
	}
	return *t
}

// Ensure SessionUsecase implements SessionUsecaseInterface
var _ SessionUsecaseInterface = (*SessionUsecase)(nil)
