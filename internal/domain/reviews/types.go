package reviews

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("review not found")
	QueryTimeoutDuration = time.Second * 5
)

// Location is the structured coordinate block a review may carry. When
// a review has no stored coordinates the whole block is absent.
type Location struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
}

type Review struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	PlaceID   string    `json:"place_id"`
	PlaceName string    `json:"place_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	IsPublic  bool      `json:"is_public"`
	GroupID   *int64    `json:"group_id,omitempty"`
	Location  *Location `json:"location,omitempty"`
	ImageURLs []string  `json:"image_urls"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined fields
	AuthorName      string  `json:"author_name,omitempty"`
	AuthorAvatarURL *string `json:"author_avatar_url,omitempty"`
	GroupName       *string `json:"group_name,omitempty"`
}
