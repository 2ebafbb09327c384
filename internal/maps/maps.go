// Package maps wraps the external places provider. Handlers never see
// the Google SDK types; they work against Provider so tests can stub
// the whole thing out.
package maps

import (
	"context"
	"errors"
)

// ErrPlaceNotFound is returned when the provider has no place for the
// requested ID.
var ErrPlaceNotFound = errors.New("place not found")

type Provider interface {
	SearchPlaces(ctx context.Context, req *SearchRequest) ([]Place, error)
	GetPlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error)
	Geocode(ctx context.Context, address string) ([]GeocodeResult, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) ([]GeocodeResult, error)
}

type SearchRequest struct {
	Query  string   `json:"query"`
	Lat    *float64 `json:"lat,omitempty"`
	Lng    *float64 `json:"lng,omitempty"`
	Radius int      `json:"radius,omitempty"`
}

type Place struct {
	PlaceID string   `json:"place_id"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	Rating  float64  `json:"rating,omitempty"`
	Types   []string `json:"types,omitempty"`
}

type PlaceDetails struct {
	Place
	PhoneNumber      string   `json:"phone_number,omitempty"`
	Website          string   `json:"website,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	PhotoReferences  []string `json:"photo_references,omitempty"`
}

type GeocodeResult struct {
	PlaceID string  `json:"place_id"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}
