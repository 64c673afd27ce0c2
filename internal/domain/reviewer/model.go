package reviewer

import (
	"time"

	"github.com/google/uuid"
)

// Reviewer is a sign-in identity. ReviewerID is the handle typed at the
// sign-in screen and the key every response row is recorded under.
type Reviewer struct {
	ID          uuid.UUID `json:"id"`
	ReviewerID  string    `json:"reviewer_id"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}
