package likes

import (
	"errors"
	"time"
)

var (
	ErrAlreadyLiked      = errors.New("review already liked")
	ErrReviewNotFound    = errors.New("review not found")
	QueryTimeoutDuration = time.Second * 5
)

// Stats is the per-review aggregate attached to feed items: how many
// likes the review has and whether the current viewer is among them.
type Stats struct {
	Likes   int  `json:"likes"`
	IsLiked bool `json:"is_liked"`
}
