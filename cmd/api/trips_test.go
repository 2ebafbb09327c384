package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voxa/internal/domain/storage"
	"voxa/internal/domain/trips"
	"voxa/internal/domain/users"
)

type stubTripStore struct {
	trips.Store
	byID map[int64]*trips.Trip

	deleted []int64
	places  []trips.Place
}

func (s *stubTripStore) GetByID(ctx context.Context, tripID int64) (*trips.Trip, error) {
	trip, ok := s.byID[tripID]
	if !ok {
		return nil, trips.ErrNotFound
	}
	return trip, nil
}

func (s *stubTripStore) Delete(ctx context.Context, tripID int64) error {
	s.deleted = append(s.deleted, tripID)
	return nil
}

func (s *stubTripStore) ListPlaces(ctx context.Context, tripID int64) ([]trips.Place, error) {
	return s.places, nil
}

func (s *stubTripStore) AddPlace(ctx context.Context, place *trips.Place) error {
	place.ID = int64(len(s.places) + 1)
	place.Position = len(s.places) + 1
	s.places = append(s.places, *place)
	return nil
}

func tripFixtures() *stubTripStore {
	return &stubTripStore{byID: map[int64]*trips.Trip{
		1: {ID: 1, OwnerID: 10, Name: "Kyoto in May"},
		2: {ID: 2, OwnerID: 10, Name: "Coastal drive", IsPublic: true},
	}}
}

func TestGetTripOwnership(t *testing.T) {
	app := newTestApp(&storage.Container{Trips: tripFixtures()})

	tests := []struct {
		name   string
		tripID string
		viewer int64
		want   int
	}{
		{"owner reads private trip", "1", 10, http.StatusOK},
		{"stranger blocked from private trip", "1", 7, http.StatusForbidden},
		{"stranger reads public trip", "2", 7, http.StatusOK},
		{"missing trip", "404", 10, http.StatusNotFound},
		{"malformed id", "abc", 10, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/v1/trips/"+tc.tripID, nil)
			rr := httptest.NewRecorder()

			app.getTripHandler(rr, withUser(r, &users.User{ID: tc.viewer}, map[string]string{"tripID": tc.tripID}))

			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestDeleteTripOwnerOnly(t *testing.T) {
	store := tripFixtures()
	app := newTestApp(&storage.Container{Trips: store})

	// Public visibility extends to reads only; a stranger still cannot
	// delete a public trip.
	r := httptest.NewRequest(http.MethodDelete, "/v1/trips/2", nil)
	rr := httptest.NewRecorder()
	app.deleteTripHandler(rr, withUser(r, &users.User{ID: 7}, map[string]string{"tripID": "2"}))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("stranger delete: status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	if len(store.deleted) != 0 {
		t.Fatal("stranger delete reached the store")
	}

	r = httptest.NewRequest(http.MethodDelete, "/v1/trips/2", nil)
	rr = httptest.NewRecorder()
	app.deleteTripHandler(rr, withUser(r, &users.User{ID: 10}, map[string]string{"tripID": "2"}))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("owner delete: status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if len(store.deleted) != 1 || store.deleted[0] != 2 {
		t.Errorf("deleted = %v, want [2]", store.deleted)
	}
}

func TestAddTripPlaceValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"place_id":"poi-1","place_name":"Fushimi Inari"}`, http.StatusCreated},
		{"with coordinates", `{"place_id":"poi-1","place_name":"Fushimi Inari","latitude":34.97,"longitude":135.77}`, http.StatusCreated},
		{"missing name", `{"place_id":"poi-1"}`, http.StatusBadRequest},
		{"latitude alone", `{"place_id":"poi-1","place_name":"X","latitude":34.97}`, http.StatusBadRequest},
		{"latitude out of range", `{"place_id":"poi-1","place_name":"X","latitude":91.0,"longitude":0}`, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(&storage.Container{Trips: tripFixtures()})

			r := httptest.NewRequest(http.MethodPost, "/v1/trips/1/places", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			app.addTripPlaceHandler(rr, withUser(r, &users.User{ID: 10}, map[string]string{"tripID": "1"}))

			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestCreateTripRejectsInvertedDates(t *testing.T) {
	app := newTestApp(&storage.Container{Trips: tripFixtures()})

	body := `{"name":"Backwards","start_date":"2026-09-10T00:00:00Z","end_date":"2026-09-01T00:00:00Z"}`
	r := httptest.NewRequest(http.MethodPost, "/v1/trips", strings.NewReader(body))
	rr := httptest.NewRecorder()

	app.createTripHandler(rr, withUser(r, &users.User{ID: 10}, nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
