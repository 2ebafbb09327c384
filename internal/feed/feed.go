// Package feed composes review listings: it picks a scope (community,
// following, place or group), fetches one page plus the total count,
// then annotates each review with like stats and, when the viewer sent
// a reference point, the distance to the reviewed place. The whole path
// is request-scoped and read-only.
package feed

import (
	"context"

	"voxa/internal/domain/reviews"
	"voxa/internal/domain/storage"
	"voxa/internal/geo"
	"voxa/internal/params"

	"golang.org/x/sync/errgroup"
)

// Item is a review plus its derived annotations. Likes and IsLiked come
// from the review_likes rows on every read; nothing is cached or
// counted redundantly. Distance is absent (not zero) whenever either
// endpoint is unknown.
type Item struct {
	reviews.Review
	Likes    int      `json:"likes"`
	IsLiked  bool     `json:"is_liked"`
	Distance *float64 `json:"distance,omitempty"`
}

type Page struct {
	Items      []Item            `json:"items"`
	Pagination params.Pagination `json:"pagination"`
}

// Options carries the viewer-dependent inputs. Viewer is nil for
// anonymous requests; Point is nil unless the client sent userLat and
// userLng.
type Options struct {
	Viewer *int64
	Point  *geo.Point
	Page   params.Pagination
}

func Community(ctx context.Context, store *storage.Container, opts Options) (*Page, error) {
	var (
		rows  []reviews.Review
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = store.Reviews.ListCommunity(gctx, opts.Page.Limit, opts.Page.Offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = store.Reviews.CountCommunity(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assemble(ctx, store, rows, total, opts)
}

// Following lists public reviews authored by users the viewer follows.
func Following(ctx context.Context, store *storage.Container, viewerID int64, opts Options) (*Page, error) {
	opts.Viewer = &viewerID

	var (
		rows  []reviews.Review
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = store.Reviews.ListFollowing(gctx, viewerID, opts.Page.Limit, opts.Page.Offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = store.Reviews.CountFollowing(gctx, viewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assemble(ctx, store, rows, total, opts)
}

func ByPlace(ctx context.Context, store *storage.Container, placeID string, opts Options) (*Page, error) {
	var (
		rows  []reviews.Review
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = store.Reviews.ListByPlace(gctx, placeID, opts.Page.Limit, opts.Page.Offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = store.Reviews.CountByPlace(gctx, placeID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assemble(ctx, store, rows, total, opts)
}

// ByGroup lists a group's reviews. Callers must have verified
// membership first; this function applies no visibility filter.
func ByGroup(ctx context.Context, store *storage.Container, groupID int64, opts Options) (*Page, error) {
	var (
		rows  []reviews.Review
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = store.Reviews.ListByGroup(gctx, groupID, opts.Page.Limit, opts.Page.Offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = store.Reviews.CountByGroup(gctx, groupID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assemble(ctx, store, rows, total, opts)
}

// ByAuthor lists one user's reviews. includePrivate is true only when
// the author is viewing their own profile.
func ByAuthor(ctx context.Context, store *storage.Container, authorID int64, includePrivate bool, opts Options) (*Page, error) {
	var (
		rows  []reviews.Review
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = store.Reviews.ListByAuthor(gctx, authorID, includePrivate, opts.Page.Limit, opts.Page.Offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = store.Reviews.CountByAuthor(gctx, authorID, includePrivate)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assemble(ctx, store, rows, total, opts)
}

func assemble(ctx context.Context, store *storage.Container, rows []reviews.Review, total int, opts Options) (*Page, error) {
	items, err := enrich(ctx, store, rows, opts)
	if err != nil {
		return nil, err
	}

	opts.Page.ComputeMeta(total)
	return &Page{Items: items, Pagination: opts.Page}, nil
}

// enrich attaches like stats and distances. Like stats for the whole
// page come from a single aggregated query.
func enrich(ctx context.Context, store *storage.Container, rows []reviews.Review, opts Options) ([]Item, error) {
	ids := make([]int64, len(rows))
	for i, review := range rows {
		ids[i] = review.ID
	}

	stats, err := store.Likes.StatsForReviews(ctx, ids, opts.Viewer)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(rows))
	for _, review := range rows {
		item := Item{Review: review}
		if s, ok := stats[review.ID]; ok {
			item.Likes = s.Likes
			item.IsLiked = s.IsLiked
		}

		var lat, lng *float64
		if review.Location != nil {
			lat, lng = &review.Location.Lat, &review.Location.Lng
		}
		item.Distance = geo.DistanceTo(opts.Point, lat, lng)

		items = append(items, item)
	}
	return items, nil
}
