package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"voxa/internal/domain/storage"

	"github.com/9ssi7/exponent"
)

// SendGroupMessage - notify every group member except the sender that a
// new chat message arrived. Members with an open socket already saw it;
// the push is for everyone else.
func SendGroupMessage(ctx context.Context, push PushSender, store *storage.Container, groupID int64, senderID int64, senderName string, groupName string) error {
	memberIDs, err := store.Groups.MemberIDs(ctx, groupID)
	if err != nil {
		return fmt.Errorf("error getting group members: %w", err)
	}

	recipients := make([]int64, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id != senderID {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	tokensMap, err := store.PushTokens.GetTokensByUserIDs(ctx, recipients)
	if err != nil {
		return fmt.Errorf("error getting member tokens: %w", err)
	}

	allTokens := make([]string, 0)
	for _, tokens := range tokensMap {
		allTokens = append(allTokens, tokens...)
	}
	compactTokens := dedupe(allTokens)
	if len(compactTokens) == 0 {
		return errors.New("no push tokens found for any members")
	}

	msgs := make([]*exponent.Message, 0, len(compactTokens))
	title := groupName
	body := fmt.Sprintf("%s sent a message", senderName)
	screen := fmt.Sprintf("groups/%s/chat", strconv.FormatInt(groupID, 10))
	for _, t := range compactTokens {
		token := exponent.Token(t)
		msg := &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":     "group_message",
				"group_id": strconv.FormatInt(groupID, 10),
				"screen":   screen,
			},
		}
		msgs = append(msgs, msg)
	}

	_, err = push.Publish(ctx, msgs)
	if err != nil {
		return fmt.Errorf("error sending group message notifications: %w", err)
	}
	return nil
}

// SendGroupMemberJoined - notify group admins that someone joined via invite
func SendGroupMemberJoined(ctx context.Context, push PushSender, store *storage.Container, groupID int64, groupName string, memberName string) error {
	adminIDs, err := store.Groups.AdminIDs(ctx, groupID)
	if err != nil {
		return err
	}
	if len(adminIDs) == 0 {
		return nil
	}

	tokensMap, err := store.PushTokens.GetTokensByUserIDs(ctx, adminIDs)
	if err != nil {
		return err
	}

	allTokens := make([]string, 0)
	for _, tokens := range tokensMap {
		allTokens = append(allTokens, tokens...)
	}
	compactTokens := dedupe(allTokens)
	if len(compactTokens) == 0 {
		return errors.New("no push tokens")
	}

	msgs := make([]*exponent.Message, 0, len(compactTokens))
	title := "New group member"
	body := fmt.Sprintf("%s joined %s", memberName, groupName)
	screen := fmt.Sprintf("groups/%s", strconv.FormatInt(groupID, 10))
	for _, t := range compactTokens {
		token := exponent.Token(t)
		msg := &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":     "group_member_joined",
				"group_id": strconv.FormatInt(groupID, 10),
				"screen":   screen,
			},
		}
		msgs = append(msgs, msg)
	}
	_, err = push.Publish(ctx, msgs)
	if err != nil {
		return err
	}
	return nil
}
