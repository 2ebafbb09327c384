package followers

import (
	"errors"
	"time"
)

var (
	ErrAlreadyFollowing  = errors.New("already following this user")
	ErrUserNotFound      = errors.New("user not found")
	QueryTimeoutDuration = time.Second * 5
)

// Follower is one edge in the follow graph: follower_id follows user_id.
type Follower struct {
	UserID     int64     `json:"user_id"`
	FollowerID int64     `json:"follower_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserSummary is the slim author card returned by follower listings.
type UserSummary struct {
	ID                int64   `json:"id"`
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
}
