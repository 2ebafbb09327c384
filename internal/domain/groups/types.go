package groups

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("group not found")
	ErrAlreadyMember     = errors.New("already a member of this group")
	ErrNotMember         = errors.New("not a member of this group")
	QueryTimeoutDuration = time.Second * 5
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	InviteCode  string    `json:"invite_code"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined fields
	MemberCount int     `json:"member_count"`
	ViewerRole  *string `json:"viewer_role,omitempty"`
}

type Member struct {
	UserID            int64     `json:"user_id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty"`
	Role              string    `json:"role"`
	JoinedAt          time.Time `json:"joined_at"`
}

// Message is one entry in a group's chat history.
type Message struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	SenderID  int64     `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields
	SenderName      string  `json:"sender_name,omitempty"`
	SenderAvatarURL *string `json:"sender_avatar_url,omitempty"`
}
