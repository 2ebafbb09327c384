package geo

import (
	"math"
	"testing"
)

func TestHaversineKnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		from, to  Point
		wantKM    float64
		tolerance float64
	}{
		{
			name:      "identical points",
			from:      Point{Lat: 37.7749, Lng: -122.4194},
			to:        Point{Lat: 37.7749, Lng: -122.4194},
			wantKM:    0,
			tolerance: 0,
		},
		{
			name:      "san francisco to new york",
			from:      Point{Lat: 37.7749, Lng: -122.4194},
			to:        Point{Lat: 40.7128, Lng: -74.0060},
			wantKM:    4129,
			tolerance: 5,
		},
		{
			name:      "antipodal along the equator",
			from:      Point{Lat: 0, Lng: 0},
			to:        Point{Lat: 0, Lng: 180},
			wantKM:    20015.1,
			tolerance: 1,
		},
		{
			name:      "pole to pole",
			from:      Point{Lat: 90, Lng: 0},
			to:        Point{Lat: -90, Lng: 0},
			wantKM:    20015.1,
			tolerance: 1,
		},
		{
			name:      "paris to london",
			from:      Point{Lat: 48.8566, Lng: 2.3522},
			to:        Point{Lat: 51.5074, Lng: -0.1278},
			wantKM:    344,
			tolerance: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.from, tt.to)
			if math.Abs(got-tt.wantKM) > tt.tolerance {
				t.Errorf("Haversine(%v, %v) = %.2f km, want %.1f ± %.1f",
					tt.from, tt.to, got, tt.wantKM, tt.tolerance)
			}
		})
	}
}

func TestHaversineIsSymmetric(t *testing.T) {
	a := Point{Lat: 27.7172, Lng: 85.3240}
	b := Point{Lat: 35.6762, Lng: 139.6503}

	ab := Haversine(a, b)
	ba := Haversine(b, a)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance not symmetric: a->b %.9f, b->a %.9f", ab, ba)
	}
}

func TestDistanceKMRoundsToOneDecimal(t *testing.T) {
	from := Point{Lat: 37.7749, Lng: -122.4194}
	to := Point{Lat: 37.8044, Lng: -122.2712} // Oakland, a few km away

	got := DistanceKM(from, to)
	if got != math.Round(got*10)/10 {
		t.Errorf("DistanceKM returned %v, expected one-decimal precision", got)
	}
	if got <= 0 {
		t.Errorf("DistanceKM returned %v, expected a positive distance", got)
	}
}

func TestDistanceTo(t *testing.T) {
	viewer := &Point{Lat: 37.7749, Lng: -122.4194}
	lat := 40.7128
	lng := -74.0060
	nan := math.NaN()

	tests := []struct {
		name     string
		viewer   *Point
		lat, lng *float64
		wantNil  bool
	}{
		{"both present", viewer, &lat, &lng, false},
		{"no viewer point", nil, &lat, &lng, true},
		{"review missing latitude", viewer, nil, &lng, true},
		{"review missing longitude", viewer, &lat, nil, true},
		{"viewer latitude NaN", &Point{Lat: nan, Lng: 0}, &lat, &lng, true},
		{"review latitude NaN", viewer, &nan, &lng, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceTo(tt.viewer, tt.lat, tt.lng)
			if tt.wantNil && got != nil {
				t.Errorf("DistanceTo = %v, want nil", *got)
			}
			if !tt.wantNil && got == nil {
				t.Error("DistanceTo = nil, want a distance")
			}
		})
	}

	got := DistanceTo(viewer, &lat, &lng)
	if got == nil || math.Abs(*got-4129.1) > 5 {
		t.Errorf("DistanceTo SF->NY = %v, want ≈4129 km", got)
	}
}

func TestDistanceToIdenticalPointsIsZero(t *testing.T) {
	viewer := &Point{Lat: 27.7172, Lng: 85.3240}
	lat, lng := 27.7172, 85.3240

	got := DistanceTo(viewer, &lat, &lng)
	if got == nil || *got != 0.0 {
		t.Errorf("DistanceTo same point = %v, want 0.0", got)
	}
}
