package likes

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Like(ctx context.Context, reviewID, userID int64) error
	Unlike(ctx context.Context, reviewID, userID int64) error
	HasLiked(ctx context.Context, reviewID, userID int64) (bool, error)
	Count(ctx context.Context, reviewID int64) (int, error)
	StatsForReviews(ctx context.Context, reviewIDs []int64, viewerID *int64) (map[int64]Stats, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

// Like inserts the (review, user) edge. The unique constraint turns a
// concurrent or repeated like into ErrAlreadyLiked instead of a second
// row, so counts can never drift.
func (r *Repository) Like(ctx context.Context, reviewID, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := r.db.Exec(ctx,
		`INSERT INTO review_likes (review_id, user_id) VALUES ($1, $2)`,
		reviewID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrAlreadyLiked
			case "23503":
				return ErrReviewNotFound
			}
		}
		return err
	}
	return nil
}

// Unlike removes the edge. Unliking a review that was never liked is a
// no-op.
func (r *Repository) Unlike(ctx context.Context, reviewID, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := r.db.Exec(ctx,
		`DELETE FROM review_likes WHERE review_id = $1 AND user_id = $2`,
		reviewID, userID)
	return err
}

func (r *Repository) HasLiked(ctx context.Context, reviewID, userID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
		  SELECT 1 FROM review_likes
		  WHERE review_id = $1 AND user_id = $2
		)
	`, reviewID, userID).Scan(&exists)
	return exists, err
}

func (r *Repository) Count(ctx context.Context, reviewID int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM review_likes WHERE review_id = $1`,
		reviewID).Scan(&count)
	return count, err
}

// StatsForReviews aggregates like counts and the viewer's own likes for
// a whole feed page in one query. Reviews with zero likes simply have
// no entry in the returned map. A nil viewerID always yields
// IsLiked=false.
func (r *Repository) StatsForReviews(ctx context.Context, reviewIDs []int64, viewerID *int64) (map[int64]Stats, error) {
	result := make(map[int64]Stats, len(reviewIDs))
	if len(reviewIDs) == 0 {
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT review_id,
		       COUNT(*) AS likes,
		       COALESCE(BOOL_OR(user_id = $2), FALSE) AS is_liked
		FROM review_likes
		WHERE review_id = ANY($1)
		GROUP BY review_id
	`

	rows, err := r.db.Query(ctx, query, reviewIDs, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			reviewID int64
			s        Stats
		)
		if err := rows.Scan(&reviewID, &s.Likes, &s.IsLiked); err != nil {
			return nil, err
		}
		result[reviewID] = s
	}
	return result, rows.Err()
}
