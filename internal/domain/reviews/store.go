package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, reviewID int64) (*Review, error)
	Update(ctx context.Context, review *Review) error
	Delete(ctx context.Context, reviewID int64) error
	IsOwner(ctx context.Context, reviewID, userID int64) (bool, error)

	ListCommunity(ctx context.Context, limit, offset int) ([]Review, error)
	CountCommunity(ctx context.Context) (int, error)
	ListFollowing(ctx context.Context, viewerID int64, limit, offset int) ([]Review, error)
	CountFollowing(ctx context.Context, viewerID int64) (int, error)
	ListByPlace(ctx context.Context, placeID string, limit, offset int) ([]Review, error)
	CountByPlace(ctx context.Context, placeID string) (int, error)
	ListByGroup(ctx context.Context, groupID int64, limit, offset int) ([]Review, error)
	CountByGroup(ctx context.Context, groupID int64) (int, error)
	ListByAuthor(ctx context.Context, authorID int64, includePrivate bool, limit, offset int) ([]Review, error)
	CountByAuthor(ctx context.Context, authorID int64, includePrivate bool) (int, error)

	AddImageURL(ctx context.Context, reviewID int64, url string) error
	RemoveImageURL(ctx context.Context, reviewID int64, url string) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

// selectColumns is shared by every listing so each scope differs only in
// its WHERE clause. Feeds order newest first with the id as tie-break so
// pagination stays stable when timestamps collide.
const selectColumns = `
	SELECT r.id, r.author_id, r.place_id, r.place_name, r.rating, r.comment,
	       r.is_public, r.group_id, r.latitude, r.longitude, r.formatted_address,
	       r.image_urls, r.created_at, r.updated_at,
	       u.first_name || ' ' || u.last_name AS author_name,
	       u.profile_picture_url,
	       g.name AS group_name
	FROM reviews r
	JOIN users u ON u.id = r.author_id
	LEFT JOIN groups g ON g.id = r.group_id
`

// feedOrder is applied to every feed listing; the placeholders are the
// positional indexes of the limit and offset arguments.
const feedOrder = ` ORDER BY r.created_at DESC, r.id ASC LIMIT $%d OFFSET $%d`

func (r *Repository) Create(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (author_id, place_id, place_name, rating, comment,
		                     is_public, group_id, latitude, longitude, formatted_address, image_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var lat, lng *float64
	var addr *string
	if review.Location != nil {
		lat = &review.Location.Lat
		lng = &review.Location.Lng
		if review.Location.FormattedAddress != "" {
			addr = &review.Location.FormattedAddress
		}
	}

	images := review.ImageURLs
	if images == nil {
		images = []string{}
	}

	return r.db.QueryRow(ctx, query,
		review.AuthorID,
		review.PlaceID,
		review.PlaceName,
		review.Rating,
		review.Comment,
		review.IsPublic,
		review.GroupID,
		lat,
		lng,
		addr,
		images,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, reviewID int64) (*Review, error) {
	query := selectColumns + ` WHERE r.id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	row := r.db.QueryRow(ctx, query, reviewID)
	review, err := scanReview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return review, nil
}

// Update persists rating and comment. Author, place and location are
// immutable after creation.
func (r *Repository) Update(ctx context.Context, review *Review) error {
	query := `
		UPDATE reviews
		SET rating = $1, comment = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := r.db.QueryRow(ctx, query, review.Rating, review.Comment, review.ID).Scan(&review.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *Repository) Delete(ctx context.Context, reviewID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) IsOwner(ctx context.Context, reviewID, userID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var authorID int64
	err := r.db.QueryRow(ctx, `SELECT author_id FROM reviews WHERE id = $1`, reviewID).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return authorID == userID, nil
}

func (r *Repository) ListCommunity(ctx context.Context, limit, offset int) ([]Review, error) {
	query := selectColumns + ` WHERE r.is_public = TRUE` + fmt.Sprintf(feedOrder, 1, 2)
	return r.list(ctx, query, limit, offset)
}

func (r *Repository) CountCommunity(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM reviews WHERE is_public = TRUE`)
}

func (r *Repository) ListFollowing(ctx context.Context, viewerID int64, limit, offset int) ([]Review, error) {
	query := selectColumns + `
		JOIN followers f ON f.user_id = r.author_id AND f.follower_id = $1
		WHERE r.is_public = TRUE` + fmt.Sprintf(feedOrder, 2, 3)
	return r.list(ctx, query, viewerID, limit, offset)
}

func (r *Repository) CountFollowing(ctx context.Context, viewerID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reviews r
		JOIN followers f ON f.user_id = r.author_id AND f.follower_id = $1
		WHERE r.is_public = TRUE`
	return r.count(ctx, query, viewerID)
}

func (r *Repository) ListByPlace(ctx context.Context, placeID string, limit, offset int) ([]Review, error) {
	query := selectColumns + ` WHERE r.place_id = $1 AND r.is_public = TRUE` + fmt.Sprintf(feedOrder, 2, 3)
	return r.list(ctx, query, placeID, limit, offset)
}

func (r *Repository) CountByPlace(ctx context.Context, placeID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM reviews WHERE place_id = $1 AND is_public = TRUE`, placeID)
}

// ListByGroup returns every review attached to the group regardless of
// is_public; membership is enforced by the caller.
func (r *Repository) ListByGroup(ctx context.Context, groupID int64, limit, offset int) ([]Review, error) {
	query := selectColumns + ` WHERE r.group_id = $1` + fmt.Sprintf(feedOrder, 2, 3)
	return r.list(ctx, query, groupID, limit, offset)
}

func (r *Repository) CountByGroup(ctx context.Context, groupID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM reviews WHERE group_id = $1`, groupID)
}

func (r *Repository) ListByAuthor(ctx context.Context, authorID int64, includePrivate bool, limit, offset int) ([]Review, error) {
	query := selectColumns + ` WHERE r.author_id = $1 AND (r.is_public = TRUE OR $2)` + fmt.Sprintf(feedOrder, 3, 4)
	return r.list(ctx, query, authorID, includePrivate, limit, offset)
}

func (r *Repository) CountByAuthor(ctx context.Context, authorID int64, includePrivate bool) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM reviews WHERE author_id = $1 AND (is_public = TRUE OR $2)`, authorID, includePrivate)
}

func (r *Repository) AddImageURL(ctx context.Context, reviewID int64, url string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx,
		`UPDATE reviews SET image_urls = array_append(image_urls, $2), updated_at = NOW() WHERE id = $1`,
		reviewID, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) RemoveImageURL(ctx context.Context, reviewID int64, url string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx,
		`UPDATE reviews SET image_urls = array_remove(image_urls, $2), updated_at = NOW() WHERE id = $1`,
		reviewID, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Review, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *review)
	}
	return out, rows.Err()
}

func (r *Repository) count(ctx context.Context, query string, args ...any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var total int
	err := r.db.QueryRow(ctx, query, args...).Scan(&total)
	return total, err
}

func scanReview(row pgx.Row) (*Review, error) {
	var (
		review   Review
		lat, lng *float64
		addr     *string
	)

	err := row.Scan(
		&review.ID,
		&review.AuthorID,
		&review.PlaceID,
		&review.PlaceName,
		&review.Rating,
		&review.Comment,
		&review.IsPublic,
		&review.GroupID,
		&lat,
		&lng,
		&addr,
		&review.ImageURLs,
		&review.CreatedAt,
		&review.UpdatedAt,
		&review.AuthorName,
		&review.AuthorAvatarURL,
		&review.GroupName,
	)
	if err != nil {
		return nil, err
	}

	if lat != nil && lng != nil {
		review.Location = &Location{Lat: *lat, Lng: *lng}
		if addr != nil {
			review.Location.FormattedAddress = *addr
		}
	}
	if review.ImageURLs == nil {
		review.ImageURLs = []string{}
	}

	return &review, nil
}
