package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"voxa/internal/domain/storage"
	"voxa/internal/maps"
)

type stubPlacesProvider struct {
	lastSearch *maps.SearchRequest
}

func (s *stubPlacesProvider) SearchPlaces(ctx context.Context, req *maps.SearchRequest) ([]maps.Place, error) {
	s.lastSearch = req
	return []maps.Place{{PlaceID: "poi-1", Name: "Harbor View"}}, nil
}

func (s *stubPlacesProvider) GetPlaceDetails(ctx context.Context, placeID string) (*maps.PlaceDetails, error) {
	if placeID != "poi-1" {
		return nil, maps.ErrPlaceNotFound
	}
	return &maps.PlaceDetails{Place: maps.Place{PlaceID: placeID}}, nil
}

func (s *stubPlacesProvider) Geocode(ctx context.Context, address string) ([]maps.GeocodeResult, error) {
	return nil, nil
}

func (s *stubPlacesProvider) ReverseGeocode(ctx context.Context, lat, lng float64) ([]maps.GeocodeResult, error) {
	return []maps.GeocodeResult{{PlaceID: "poi-1", Lat: lat, Lng: lng}}, nil
}

func newPlacesApp() (*application, *stubPlacesProvider) {
	provider := &stubPlacesProvider{}
	app := newTestApp(&storage.Container{})
	app.places = provider
	return app, provider
}

func TestSearchPlacesValidation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"query only", "query=ramen", http.StatusOK},
		{"query with bias", "query=ramen&lat=35.0&lng=135.7&radius=500", http.StatusOK},
		{"missing query", "lat=35.0&lng=135.7", http.StatusBadRequest},
		{"blank query", "query=%20", http.StatusBadRequest},
		{"lat without lng", "query=ramen&lat=35.0", http.StatusBadRequest},
		{"unparsable lat", "query=ramen&lat=abc&lng=135.7", http.StatusBadRequest},
		{"negative radius", "query=ramen&radius=-5", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app, _ := newPlacesApp()

			r := httptest.NewRequest(http.MethodGet, "/v1/places/search?"+tc.query, nil)
			rr := httptest.NewRecorder()

			app.searchPlacesHandler(rr, withUser(r, nil, nil))

			if rr.Code != tc.want {
				t.Errorf("%q: status = %d, want %d", tc.query, rr.Code, tc.want)
			}
		})
	}
}

func TestSearchPlacesForwardsBias(t *testing.T) {
	app, provider := newPlacesApp()

	r := httptest.NewRequest(http.MethodGet, "/v1/places/search?query=ramen&lat=35.0&lng=135.7&radius=500", nil)
	rr := httptest.NewRecorder()
	app.searchPlacesHandler(rr, withUser(r, nil, nil))

	req := provider.lastSearch
	if req == nil {
		t.Fatal("provider never queried")
	}
	if req.Query != "ramen" || req.Lat == nil || *req.Lat != 35.0 || req.Radius != 500 {
		t.Errorf("provider got %+v", req)
	}
}

func TestGetPlaceDetailsNotFound(t *testing.T) {
	app, _ := newPlacesApp()

	r := httptest.NewRequest(http.MethodGet, "/v1/places/poi-unknown", nil)
	rr := httptest.NewRecorder()
	app.getPlaceDetailsHandler(rr, withUser(r, nil, map[string]string{"placeID": "poi-unknown"}))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestReverseGeocodeRequiresCoordinates(t *testing.T) {
	app, _ := newPlacesApp()

	r := httptest.NewRequest(http.MethodGet, "/v1/places/reverse-geocode?lat=35.0", nil)
	rr := httptest.NewRecorder()
	app.reverseGeocodeHandler(rr, withUser(r, nil, nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
