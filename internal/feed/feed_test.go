package feed

import (
	"context"
	"math"
	"testing"
	"time"

	"voxa/internal/domain/likes"
	"voxa/internal/domain/reviews"
	"voxa/internal/domain/storage"
	"voxa/internal/geo"
	"voxa/internal/params"
)

// stubReviews serves the same canned page for every scope; only the
// methods a feed touches are implemented.
type stubReviews struct {
	reviews.Store
	rows  []reviews.Review
	total int
}

func (s *stubReviews) ListCommunity(ctx context.Context, limit, offset int) ([]reviews.Review, error) {
	return s.rows, nil
}
func (s *stubReviews) CountCommunity(ctx context.Context) (int, error) { return s.total, nil }
func (s *stubReviews) ListFollowing(ctx context.Context, viewerID int64, limit, offset int) ([]reviews.Review, error) {
	return s.rows, nil
}
func (s *stubReviews) CountFollowing(ctx context.Context, viewerID int64) (int, error) {
	return s.total, nil
}
func (s *stubReviews) ListByPlace(ctx context.Context, placeID string, limit, offset int) ([]reviews.Review, error) {
	return s.rows, nil
}
func (s *stubReviews) CountByPlace(ctx context.Context, placeID string) (int, error) {
	return s.total, nil
}
func (s *stubReviews) ListByGroup(ctx context.Context, groupID int64, limit, offset int) ([]reviews.Review, error) {
	return s.rows, nil
}
func (s *stubReviews) CountByGroup(ctx context.Context, groupID int64) (int, error) {
	return s.total, nil
}

type stubLikes struct {
	likes.Store
	stats      map[int64]likes.Stats
	lastViewer *int64
	lastIDs    []int64
}

func (s *stubLikes) StatsForReviews(ctx context.Context, reviewIDs []int64, viewerID *int64) (map[int64]likes.Stats, error) {
	s.lastIDs = reviewIDs
	s.lastViewer = viewerID
	if s.stats == nil {
		return map[int64]likes.Stats{}, nil
	}
	return s.stats, nil
}

func testContainer(rows []reviews.Review, total int, stats map[int64]likes.Stats) (*storage.Container, *stubLikes) {
	likeStore := &stubLikes{stats: stats}
	return &storage.Container{
		Reviews: &stubReviews{rows: rows, total: total},
		Likes:   likeStore,
	}, likeStore
}

func sampleRows() []reviews.Review {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []reviews.Review{
		{
			ID:        2,
			AuthorID:  10,
			PlaceID:   "poi-señor-taco",
			PlaceName: "Señor Taco",
			Rating:    5,
			IsPublic:  true,
			Location:  &reviews.Location{Lat: 40.7128, Lng: -74.0060},
			CreatedAt: base.Add(time.Hour),
		},
		{
			ID:        1,
			AuthorID:  11,
			PlaceID:   "poi-harbor-view",
			PlaceName: "Harbor View",
			Rating:    3,
			IsPublic:  true,
			CreatedAt: base,
		},
	}
}

func TestCommunityEnrichment(t *testing.T) {
	stats := map[int64]likes.Stats{
		2: {Likes: 3, IsLiked: true},
	}
	store, likeStore := testContainer(sampleRows(), 2, stats)

	viewer := int64(99)
	page, err := Community(context.Background(), store, Options{
		Viewer: &viewer,
		Point:  &geo.Point{Lat: 37.7749, Lng: -122.4194},
		Page:   params.Pagination{Limit: 15, Page: 1},
	})
	if err != nil {
		t.Fatalf("Community: %v", err)
	}

	if len(page.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(page.Items))
	}

	first := page.Items[0]
	if first.ID != 2 {
		t.Errorf("items out of order: first id = %d, want 2", first.ID)
	}
	if first.Likes != 3 || !first.IsLiked {
		t.Errorf("first item likes = %d isLiked = %v, want 3 true", first.Likes, first.IsLiked)
	}
	if first.Distance == nil {
		t.Fatal("first item has a location and a viewer point, want a distance")
	}
	if math.Abs(*first.Distance-4129.1) > 5 {
		t.Errorf("distance = %v, want ≈4129 km", *first.Distance)
	}

	second := page.Items[1]
	if second.Likes != 0 || second.IsLiked {
		t.Errorf("unliked item reports likes = %d isLiked = %v", second.Likes, second.IsLiked)
	}
	if second.Distance != nil {
		t.Errorf("item without coordinates got distance %v, want none", *second.Distance)
	}

	if likeStore.lastViewer == nil || *likeStore.lastViewer != viewer {
		t.Errorf("like stats queried with viewer %v, want %d", likeStore.lastViewer, viewer)
	}
	if len(likeStore.lastIDs) != 2 {
		t.Errorf("like stats queried for %d reviews, want 2", len(likeStore.lastIDs))
	}
}

func TestNoViewerPointOmitsEveryDistance(t *testing.T) {
	store, _ := testContainer(sampleRows(), 2, nil)

	page, err := Community(context.Background(), store, Options{
		Page: params.Pagination{Limit: 15, Page: 1},
	})
	if err != nil {
		t.Fatalf("Community: %v", err)
	}

	for _, item := range page.Items {
		if item.Distance != nil {
			t.Errorf("review %d has distance %v without a viewer point", item.ID, *item.Distance)
		}
	}
}

func TestAnonymousViewerNeverLiked(t *testing.T) {
	store, likeStore := testContainer(sampleRows(), 2, nil)

	page, err := Community(context.Background(), store, Options{
		Page: params.Pagination{Limit: 15, Page: 1},
	})
	if err != nil {
		t.Fatalf("Community: %v", err)
	}

	if likeStore.lastViewer != nil {
		t.Errorf("anonymous request passed viewer %d to like stats", *likeStore.lastViewer)
	}
	for _, item := range page.Items {
		if item.IsLiked {
			t.Errorf("review %d marked liked for anonymous viewer", item.ID)
		}
	}
}

func TestFollowingPassesViewerThrough(t *testing.T) {
	store, likeStore := testContainer(sampleRows(), 2, nil)

	_, err := Following(context.Background(), store, 7, Options{
		Page: params.Pagination{Limit: 15, Page: 1},
	})
	if err != nil {
		t.Fatalf("Following: %v", err)
	}

	if likeStore.lastViewer == nil || *likeStore.lastViewer != 7 {
		t.Errorf("following feed queried like stats with viewer %v, want 7", likeStore.lastViewer)
	}
}

func TestPaginationMeta(t *testing.T) {
	store, _ := testContainer(sampleRows(), 35, nil)

	page, err := ByPlace(context.Background(), store, "poi-señor-taco", Options{
		Page: params.Pagination{Limit: 10, Page: 2, Offset: 10},
	})
	if err != nil {
		t.Fatalf("ByPlace: %v", err)
	}

	p := page.Pagination
	if p.Total != 35 || p.TotalPages != 4 {
		t.Errorf("total = %d pages = %d, want 35 and 4", p.Total, p.TotalPages)
	}
	if !p.HasNext || !p.HasPrev {
		t.Errorf("hasNext = %v hasPrev = %v, want true true", p.HasNext, p.HasPrev)
	}
}

func TestEmptyPageMarshalsAsEmptyList(t *testing.T) {
	store, _ := testContainer(nil, 0, nil)

	page, err := ByGroup(context.Background(), store, 1, Options{
		Page: params.Pagination{Limit: 15, Page: 1},
	})
	if err != nil {
		t.Fatalf("ByGroup: %v", err)
	}

	if page.Items == nil {
		t.Error("empty feed returned nil items; clients expect []")
	}
	if len(page.Items) != 0 {
		t.Errorf("empty feed returned %d items", len(page.Items))
	}
}
