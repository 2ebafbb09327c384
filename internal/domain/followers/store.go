package followers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Follow(ctx context.Context, followerID, userID int64) error
	Unfollow(ctx context.Context, followerID, userID int64) error
	IsFollowing(ctx context.Context, followerID, userID int64) (bool, error)
	Counts(ctx context.Context, userID int64) (followers int, following int, err error)
	ListFollowers(ctx context.Context, userID int64, limit, offset int) ([]UserSummary, error)
	ListFollowing(ctx context.Context, userID int64, limit, offset int) ([]UserSummary, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) Follow(ctx context.Context, followerID, userID int64) error {
	query := `INSERT INTO followers (user_id, follower_id) VALUES ($1, $2)`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := r.db.Exec(ctx, query, userID, followerID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrAlreadyFollowing
			case "23503":
				return ErrUserNotFound
			}
		}
		return fmt.Errorf("failed to follow user: %w", err)
	}
	return nil
}

// Unfollow removes the edge. Removing an edge that does not exist is a
// no-op, not an error.
func (r *Repository) Unfollow(ctx context.Context, followerID, userID int64) error {
	query := `
	   DELETE FROM followers
	   WHERE user_id = $1 AND follower_id = $2
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := r.db.Exec(ctx, query, userID, followerID)
	return err
}

func (r *Repository) IsFollowing(ctx context.Context, followerID, userID int64) (bool, error) {
	query := `
		SELECT EXISTS (
		  SELECT 1 FROM followers
		  WHERE user_id = $1 AND follower_id = $2
		)
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, query, userID, followerID).Scan(&exists)
	return exists, err
}

func (r *Repository) Counts(ctx context.Context, userID int64) (int, int, error) {
	query := `
		SELECT
		  (SELECT COUNT(*) FROM followers WHERE user_id = $1)     AS followers,
		  (SELECT COUNT(*) FROM followers WHERE follower_id = $1) AS following
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var followerCount, followingCount int
	err := r.db.QueryRow(ctx, query, userID).Scan(&followerCount, &followingCount)
	return followerCount, followingCount, err
}

func (r *Repository) ListFollowers(ctx context.Context, userID int64, limit, offset int) ([]UserSummary, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.profile_picture_url
		FROM followers f
		JOIN users u ON u.id = f.follower_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.listSummaries(ctx, query, userID, limit, offset)
}

func (r *Repository) ListFollowing(ctx context.Context, userID int64, limit, offset int) ([]UserSummary, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.profile_picture_url
		FROM followers f
		JOIN users u ON u.id = f.user_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.listSummaries(ctx, query, userID, limit, offset)
}

func (r *Repository) listSummaries(ctx context.Context, query string, args ...any) ([]UserSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserSummary
	for rows.Next() {
		var s UserSummary
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.ProfilePictureURL); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
