package trips

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("trip not found")
	ErrPlaceNotFound     = errors.New("trip place not found")
	QueryTimeoutDuration = time.Second * 5
)

type Trip struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	IsPublic    bool       `json:"is_public"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Joined fields
	PlaceCount int `json:"place_count"`
}

// Place is one itinerary stop. Position orders stops within a trip,
// starting at 1.
type Place struct {
	ID        int64     `json:"id"`
	TripID    int64     `json:"trip_id"`
	PlaceID   string    `json:"place_id"`
	PlaceName string    `json:"place_name"`
	Notes     *string   `json:"notes,omitempty"`
	Position  int       `json:"position"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
