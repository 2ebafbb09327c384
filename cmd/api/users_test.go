package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voxa/internal/domain/followers"
	"voxa/internal/domain/pushtokens"
	"voxa/internal/domain/storage"
	"voxa/internal/domain/users"
)

type stubFollowerStore struct {
	followers.Store

	existing map[int64]bool // known user IDs
	edges    map[[2]int64]bool
	followed int
}

func (s *stubFollowerStore) Follow(ctx context.Context, followerID, userID int64) error {
	if !s.existing[userID] {
		return followers.ErrUserNotFound
	}
	if s.edges[[2]int64{followerID, userID}] {
		return followers.ErrAlreadyFollowing
	}
	s.followed++
	return nil
}

type stubPushTokenStore struct {
	pushtokens.Store
}

func (s *stubPushTokenStore) GetTokensByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]string, error) {
	return map[int64][]string{}, nil
}

func TestFollowUserStatusCodes(t *testing.T) {
	viewer := &users.User{ID: 7, FirstName: "Ana", LastName: "Reyes"}

	tests := []struct {
		name       string
		targetID   string
		wantStatus int
		wantWrites int
	}{
		{"unknown user is 404", "99", http.StatusNotFound, 0},
		{"self-follow is 400", "7", http.StatusBadRequest, 0},
		{"duplicate follow is 400", "3", http.StatusBadRequest, 0},
		{"malformed id is 400", "abc", http.StatusBadRequest, 0},
		{"fresh follow is 204", "4", http.StatusNoContent, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubFollowerStore{
				existing: map[int64]bool{3: true, 4: true, 7: true},
				edges:    map[[2]int64]bool{{7, 3}: true},
			}
			app := newTestApp(&storage.Container{
				Followers:  store,
				PushTokens: &stubPushTokenStore{},
			})

			req := httptest.NewRequest(http.MethodPut, "/v1/users/"+tc.targetID+"/follow", nil)
			req = withUser(req, viewer, map[string]string{"userID": tc.targetID})
			rr := httptest.NewRecorder()

			app.followUserHandler(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tc.wantStatus, rr.Body.String())
			}
			if store.followed != tc.wantWrites {
				t.Fatalf("follow writes = %d, want %d", store.followed, tc.wantWrites)
			}
			if tc.wantStatus >= 400 {
				var envelope struct {
					Success bool `json:"success"`
				}
				if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
					t.Fatalf("error body is not the JSON envelope: %v", err)
				}
				if envelope.Success {
					t.Fatal("error envelope reports success")
				}
			}
		})
	}

	// Let the best-effort push goroutine from the 204 case drain before
	// the test binary tears down.
	time.Sleep(10 * time.Millisecond)
}
