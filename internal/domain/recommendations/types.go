package recommendations

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("recommendation not found")
	QueryTimeoutDuration = time.Second * 5
)

// Recommendation is a place one user sends to another ("you have to see
// this when you're there").
type Recommendation struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	PlaceID     string    `json:"place_id"`
	PlaceName   string    `json:"place_name"`
	Note        *string   `json:"note,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`

	// Joined fields
	SenderName      string  `json:"sender_name,omitempty"`
	SenderAvatarURL *string `json:"sender_avatar_url,omitempty"`
}
