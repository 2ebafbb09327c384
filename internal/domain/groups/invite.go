package groups

import (
	"errors"
	"strings"

	hashids "github.com/speps/go-hashids/v2"
)

var ErrInvalidInviteCode = errors.New("invalid invite code")

// InviteCoder turns group ids into short shareable codes and back.
// Codes are stable for a given salt, so the same group always gets the
// same code.
type InviteCoder struct {
	h *hashids.HashID
}

func NewInviteCoder(salt string) (*InviteCoder, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 8

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, err
	}
	return &InviteCoder{h: h}, nil
}

func (c *InviteCoder) Encode(groupID int64) (string, error) {
	return c.h.EncodeInt64([]int64{groupID})
}

func (c *InviteCoder) Decode(code string) (int64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, ErrInvalidInviteCode
	}

	ids, err := c.h.DecodeInt64WithError(code)
	if err != nil || len(ids) != 1 {
		return 0, ErrInvalidInviteCode
	}
	return ids[0], nil
}
