package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Status is the lifecycle state of a wellness session. The only transitions
// are nonexistent -> draft -> published; re-saves keep the current status and
// a published session never reverts to draft.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// MaxTitleLength bounds session titles.
const MaxTitleLength = 200

// TagList holds a session's tags. It unmarshals from either a JSON array or a
// single comma-separated string, since editor clients send "yoga, am" as typed.
type TagList []string

// UnmarshalJSON accepts ["a","b"] as well as "a, b".
func (t *TagList) UnmarshalJSON(data []byte) error {
	var asList []string
	if err := json.Unmarshal(data, &asList); err == nil {
		*t = TagList(asList)
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return err
	}
	if asString == "" {
		*t = TagList{}
		return nil
	}
	*t = TagList(strings.Split(asString, ","))
	return nil
}

// Normalize trims whitespace, lowercases each tag, and drops tags that are
// empty after trimming. Duplicates are kept; the stored order is the order
// the caller supplied.
func (t TagList) Normalize() TagList {
	normalized := make(TagList, 0, len(t))
	for _, tag := range t {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		normalized = append(normalized, tag)
	}
	return normalized
}

// Session is a user-authored wellness session document. OwnerID is set at
// creation and never changes; only the owner may read or mutate the document.
type Session struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	OwnerID     string    `json:"owner_id" bson:"owner_id"`
	Title       string    `json:"title" bson:"title"`
	Tags        TagList   `json:"tags" bson:"tags"`
	JSONFileURL string    `json:"json_file_url" bson:"json_file_url"`
	Duration    string    `json:"duration" bson:"duration"`
	Status      Status    `json:"status" bson:"status"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// IsOwnedBy reports whether the session belongs to the given user.
func (s *Session) IsOwnedBy(userID string) bool {
	return s.OwnerID == userID
}
