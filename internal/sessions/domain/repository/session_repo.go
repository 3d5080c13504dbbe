package repository

import (
	"context"

	"session-studio/internal/sessions/domain/model"
)

// SessionUpdate carries the fields of a partial update. A nil field means the
// caller did not supply a value and the stored value must be left alone; a
// non-nil pointer to a zero value is an explicit overwrite.
type SessionUpdate struct {
	Title       *string
	Tags        *model.TagList
	JSONFileURL *string
	Duration    *string
	Status      *model.Status
}

// IsEmpty reports whether the update carries no fields at all.
func (u SessionUpdate) IsEmpty() bool {
	return u.Title == nil && u.Tags == nil && u.JSONFileURL == nil && u.Duration == nil && u.Status == nil
}

// SessionRepository is the document-store boundary for session records. The
// store's single-document update semantics are the only write serialization
// this design relies on; updates are all-or-nothing.
//
// Lookups are always scoped by owner. A missing document and a document owned
// by someone else are indistinguishable to callers: both surface the
// repository's not-found error, so existence is never leaked to non-owners.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) (*model.Session, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Session, error)
	UpdateByIDAndOwner(ctx context.Context, id, ownerID string, update SessionUpdate) (*model.Session, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Session, error)
	ListPublished(ctx context.Context) ([]*model.Session, error)
}
