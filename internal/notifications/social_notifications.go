package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"voxa/internal/domain/storage"

	"github.com/9ssi7/exponent"
)

// SendNewFollower - notify a user that someone started following them
func SendNewFollower(ctx context.Context, push PushSender, store *storage.Container, followedID int64, followerID int64, followerName string) error {
	tokensMap, err := store.PushTokens.GetTokensByUserIDs(ctx, []int64{followedID})
	if err != nil {
		return err
	}
	tokens := dedupe(tokensMap[followedID])
	if len(tokens) == 0 {
		return errors.New("no push tokens")
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	title := "New follower"
	body := fmt.Sprintf("%s started following you", followerName)
	screen := fmt.Sprintf("users/%s", strconv.FormatInt(followerID, 10))
	for _, t := range tokens {
		token := exponent.Token(t)
		msg := &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":    "new_follower",
				"user_id": strconv.FormatInt(followerID, 10),
				"screen":  screen,
				//in client we do router.push(`/${data.screen}`)
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

// SendReviewLiked - notify the review author that someone liked their review.
// Callers skip this when the liker is the author.
func SendReviewLiked(ctx context.Context, push PushSender, store *storage.Container, authorID int64, reviewID int64, likerName string, placeName string) error {
	tokensMap, err := store.PushTokens.GetTokensByUserIDs(ctx, []int64{authorID})
	if err != nil {
		return err
	}
	tokens := dedupe(tokensMap[authorID])
	if len(tokens) == 0 {
		return errors.New("no push tokens")
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	title := "Your review got a like"
	body := fmt.Sprintf("%s liked your review of %s", likerName, placeName)
	screen := fmt.Sprintf("reviews/%s", strconv.FormatInt(reviewID, 10))
	for _, t := range tokens {
		token := exponent.Token(t)
		msg := &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":      "review_liked",
				"review_id": strconv.FormatInt(reviewID, 10),
				"screen":    screen,
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

// SendRecommendation - notify the recipient that a friend recommended a place
func SendRecommendation(ctx context.Context, push PushSender, store *storage.Container, recipientID int64, senderName string, placeName string) error {
	tokensMap, err := store.PushTokens.GetTokensByUserIDs(ctx, []int64{recipientID})
	if err != nil {
		return err
	}
	tokens := dedupe(tokensMap[recipientID])
	if len(tokens) == 0 {
		return errors.New("no push tokens")
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	title := "New recommendation"
	body := fmt.Sprintf("%s thinks you should check out %s", senderName, placeName)
	for _, t := range tokens {
		token := exponent.Token(t)
		msg := &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":   "recommendation",
				"screen": "recommendations",
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
