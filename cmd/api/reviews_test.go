package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voxa/internal/domain/likes"
	"voxa/internal/domain/reviews"
	"voxa/internal/domain/storage"
	"voxa/internal/domain/users"
)

type stubReviewStore struct {
	reviews.Store
	byID map[int64]*reviews.Review

	updated *reviews.Review
}

func (s *stubReviewStore) ListCommunity(ctx context.Context, limit, offset int) ([]reviews.Review, error) {
	return nil, nil
}
func (s *stubReviewStore) CountCommunity(ctx context.Context) (int, error) { return 0, nil }

func (s *stubReviewStore) GetByID(ctx context.Context, reviewID int64) (*reviews.Review, error) {
	review, ok := s.byID[reviewID]
	if !ok {
		return nil, reviews.ErrNotFound
	}
	return review, nil
}

func (s *stubReviewStore) Update(ctx context.Context, review *reviews.Review) error {
	s.updated = review
	return nil
}

type stubLikeStore struct {
	likes.Store
	liked     map[int64]bool // review id -> viewer already liked
	reviewIDs map[int64]bool // review ids that exist
	count     int
	likeCalls int
}

func (s *stubLikeStore) Like(ctx context.Context, reviewID, userID int64) error {
	if !s.reviewIDs[reviewID] {
		return likes.ErrReviewNotFound
	}
	if s.liked[reviewID] {
		return likes.ErrAlreadyLiked
	}
	s.likeCalls++
	s.count++
	return nil
}

func (s *stubLikeStore) Count(ctx context.Context, reviewID int64) (int, error) {
	return s.count, nil
}

func (s *stubLikeStore) HasLiked(ctx context.Context, reviewID, userID int64) (bool, error) {
	return s.liked[reviewID], nil
}

func (s *stubLikeStore) StatsForReviews(ctx context.Context, reviewIDs []int64, viewerID *int64) (map[int64]likes.Stats, error) {
	return map[int64]likes.Stats{}, nil
}

func TestCommunityFeedCoordinateParams(t *testing.T) {
	app := newTestApp(&storage.Container{
		Reviews: &stubReviewStore{},
		Likes:   &stubLikeStore{},
	})

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"no coordinates", "", http.StatusOK},
		{"valid pair", "userLat=40.7&userLng=-74.0", http.StatusOK},
		{"unparsable lat", "userLat=abc&userLng=10", http.StatusBadRequest},
		{"unparsable lng", "userLat=10&userLng=abc", http.StatusBadRequest},
		{"lat without lng", "userLat=10", http.StatusBadRequest},
		{"lng without lat", "userLng=10", http.StatusBadRequest},
		// NaN parses; it just disables distance annotation.
		{"non-finite lat", "userLat=NaN&userLng=10", http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/v1/reviews/community?"+tc.query, nil)
			rr := httptest.NewRecorder()

			app.communityFeedHandler(rr, withUser(r, nil, nil))

			if rr.Code != tc.want {
				t.Errorf("%q: status = %d, want %d", tc.query, rr.Code, tc.want)
			}
		})
	}
}

func TestLikeReviewStatusCodes(t *testing.T) {
	viewer := &users.User{ID: 7, FirstName: "Ana", LastName: "Reyes"}

	tests := []struct {
		name      string
		reviewID  string
		liked     bool
		want      int
		wantCalls int
	}{
		{"first like", "1", false, http.StatusCreated, 1},
		{"duplicate like", "1", true, http.StatusBadRequest, 0},
		{"unknown review", "99", false, http.StatusNotFound, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			likeStore := &stubLikeStore{
				reviewIDs: map[int64]bool{1: true},
				liked:     map[int64]bool{1: tc.liked},
			}
			// The author matches the viewer so no push notification
			// goroutine fires.
			app := newTestApp(&storage.Container{
				Reviews: &stubReviewStore{byID: map[int64]*reviews.Review{
					1: {ID: 1, AuthorID: viewer.ID, PlaceName: "Harbor View"},
				}},
				Likes: likeStore,
			})

			r := httptest.NewRequest(http.MethodPost, "/v1/reviews/"+tc.reviewID+"/like", nil)
			rr := httptest.NewRecorder()

			app.likeReviewHandler(rr, withUser(r, viewer, map[string]string{"reviewID": tc.reviewID}))

			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d", rr.Code, tc.want)
			}
			if likeStore.likeCalls != tc.wantCalls {
				t.Errorf("like writes = %d, want %d", likeStore.likeCalls, tc.wantCalls)
			}
		})
	}
}

func TestUnlikeIsNoOpWhenNotLiked(t *testing.T) {
	app := newTestApp(&storage.Container{
		Likes: &stubUnlikeStore{},
	})

	r := httptest.NewRequest(http.MethodDelete, "/v1/reviews/1/like", nil)
	rr := httptest.NewRecorder()

	app.unlikeReviewHandler(rr, withUser(r, &users.User{ID: 7}, map[string]string{"reviewID": "1"}))

	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
}

type stubUnlikeStore struct {
	likes.Store
}

func (s *stubUnlikeStore) Unlike(ctx context.Context, reviewID, userID int64) error {
	return nil // deleting an absent row is not an error
}

func TestGetReviewVisibility(t *testing.T) {
	private := &reviews.Review{ID: 1, AuthorID: 10, IsPublic: false}
	public := &reviews.Review{ID: 2, AuthorID: 10, IsPublic: true}

	store := &storage.Container{
		Reviews: &stubReviewStore{byID: map[int64]*reviews.Review{1: private, 2: public}},
		Likes:   &stubLikeStore{},
	}
	app := newTestApp(store)

	tests := []struct {
		name     string
		reviewID string
		viewer   int64
		want     int
	}{
		{"author reads own private review", "1", 10, http.StatusOK},
		{"stranger blocked from private review", "1", 7, http.StatusForbidden},
		{"stranger reads public review", "2", 7, http.StatusOK},
		{"missing review", "404", 7, http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/v1/reviews/"+tc.reviewID, nil)
			rr := httptest.NewRecorder()

			app.getReviewHandler(rr, withUser(r, &users.User{ID: tc.viewer}, map[string]string{"reviewID": tc.reviewID}))

			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestUpdateReviewAuthorOnly(t *testing.T) {
	reviewStore := &stubReviewStore{byID: map[int64]*reviews.Review{
		1: {ID: 1, AuthorID: 10, Rating: 3, Comment: "fine"},
	}}
	app := newTestApp(&storage.Container{Reviews: reviewStore})

	body := `{"rating": 5}`
	r := httptest.NewRequest(http.MethodPatch, "/v1/reviews/1", strings.NewReader(body))
	rr := httptest.NewRecorder()

	app.updateReviewHandler(rr, withUser(r, &users.User{ID: 7}, map[string]string{"reviewID": "1"}))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("non-author edit: status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	if reviewStore.updated != nil {
		t.Error("non-author edit reached the store")
	}

	r = httptest.NewRequest(http.MethodPatch, "/v1/reviews/1", strings.NewReader(body))
	rr = httptest.NewRecorder()

	app.updateReviewHandler(rr, withUser(r, &users.User{ID: 10}, map[string]string{"reviewID": "1"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("author edit: status = %d, want %d", rr.Code, http.StatusOK)
	}
	if reviewStore.updated == nil || reviewStore.updated.Rating != 5 {
		t.Errorf("author edit did not persist the new rating")
	}
}

func TestUpdateReviewRejectsEmptyPayload(t *testing.T) {
	app := newTestApp(&storage.Container{
		Reviews: &stubReviewStore{byID: map[int64]*reviews.Review{1: {ID: 1, AuthorID: 10}}},
	})

	r := httptest.NewRequest(http.MethodPatch, "/v1/reviews/1", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()

	app.updateReviewHandler(rr, withUser(r, &users.User{ID: 10}, map[string]string{"reviewID": "1"}))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
