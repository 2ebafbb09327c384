package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

// GoogleProvider implements Provider on top of the Google Maps Platform
// (Places and Geocoding APIs).
type GoogleProvider struct {
	client *maps.Client
}

func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create google maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

func (g *GoogleProvider) SearchPlaces(ctx context.Context, req *SearchRequest) ([]Place, error) {
	textReq := &maps.TextSearchRequest{
		Query: req.Query,
	}
	if req.Lat != nil && req.Lng != nil {
		textReq.Location = &maps.LatLng{Lat: *req.Lat, Lng: *req.Lng}
		if req.Radius > 0 {
			textReq.Radius = uint(req.Radius)
		}
	}

	resp, err := g.client.TextSearch(ctx, textReq)
	if err != nil {
		return nil, fmt.Errorf("place search failed: %w", err)
	}

	places := make([]Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		places = append(places, Place{
			PlaceID: r.PlaceID,
			Name:    r.Name,
			Address: r.FormattedAddress,
			Lat:     r.Geometry.Location.Lat,
			Lng:     r.Geometry.Location.Lng,
			Rating:  float64(r.Rating),
			Types:   r.Types,
		})
	}
	return places, nil
}

func (g *GoogleProvider) GetPlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	req := &maps.PlaceDetailsRequest{
		PlaceID: placeID,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskPlaceID,
			maps.PlaceDetailsFieldMaskName,
			maps.PlaceDetailsFieldMaskFormattedAddress,
			maps.PlaceDetailsFieldMaskGeometry,
			maps.PlaceDetailsFieldMaskFormattedPhoneNumber,
			maps.PlaceDetailsFieldMaskWebsite,
			maps.PlaceDetailsFieldMaskUserRatingsTotal,
			maps.PlaceDetailsFieldMaskTypes,
			maps.PlaceDetailsFieldMaskPhotos,
		},
	}

	resp, err := g.client.PlaceDetails(ctx, req)
	if err != nil {
		// The SDK surfaces the NOT_FOUND status as a plain error string.
		if strings.Contains(err.Error(), "NOT_FOUND") {
			return nil, ErrPlaceNotFound
		}
		return nil, fmt.Errorf("place details failed: %w", err)
	}

	details := &PlaceDetails{
		Place: Place{
			PlaceID: resp.PlaceID,
			Name:    resp.Name,
			Address: resp.FormattedAddress,
			Lat:     resp.Geometry.Location.Lat,
			Lng:     resp.Geometry.Location.Lng,
			Rating:  float64(resp.Rating),
			Types:   resp.Types,
		},
		PhoneNumber:      resp.FormattedPhoneNumber,
		Website:          resp.Website,
		UserRatingsTotal: resp.UserRatingsTotal,
	}
	for _, photo := range resp.Photos {
		details.PhotoReferences = append(details.PhotoReferences, photo.PhotoReference)
	}
	return details, nil
}

func (g *GoogleProvider) Geocode(ctx context.Context, address string) ([]GeocodeResult, error) {
	resp, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}
	return geocodeResults(resp), nil
}

func (g *GoogleProvider) ReverseGeocode(ctx context.Context, lat, lng float64) ([]GeocodeResult, error) {
	resp, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	})
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding failed: %w", err)
	}
	return geocodeResults(resp), nil
}

func geocodeResults(resp []maps.GeocodingResult) []GeocodeResult {
	results := make([]GeocodeResult, 0, len(resp))
	for _, r := range resp {
		results = append(results, GeocodeResult{
			PlaceID: r.PlaceID,
			Address: r.FormattedAddress,
			Lat:     r.Geometry.Location.Lat,
			Lng:     r.Geometry.Location.Lng,
		})
	}
	return results
}
