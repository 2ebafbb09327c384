package recommendations

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Create(ctx context.Context, rec *Recommendation) error
	ListReceived(ctx context.Context, recipientID int64, limit, offset int) ([]Recommendation, error)
	MarkRead(ctx context.Context, recID, recipientID int64) error
	Delete(ctx context.Context, recID, userID int64) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, rec *Recommendation) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO recommendations (sender_id, recipient_id, place_id, place_name, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, rec.SenderID, rec.RecipientID, rec.PlaceID, rec.PlaceName, rec.Note).
		Scan(&rec.ID, &rec.CreatedAt)
}

func (r *Repository) ListReceived(ctx context.Context, recipientID int64, limit, offset int) ([]Recommendation, error) {
	query := `
		SELECT rc.id, rc.sender_id, rc.recipient_id, rc.place_id, rc.place_name,
		       rc.note, rc.is_read, rc.created_at,
		       u.first_name || ' ' || u.last_name AS sender_name,
		       u.profile_picture_url
		FROM recommendations rc
		JOIN users u ON u.id = rc.sender_id
		WHERE rc.recipient_id = $1
		ORDER BY rc.created_at DESC, rc.id DESC
		LIMIT $2 OFFSET $3
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, query, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recommendation
	for rows.Next() {
		var rec Recommendation
		err := rows.Scan(
			&rec.ID, &rec.SenderID, &rec.RecipientID, &rec.PlaceID, &rec.PlaceName,
			&rec.Note, &rec.IsRead, &rec.CreatedAt, &rec.SenderName, &rec.SenderAvatarURL,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repository) MarkRead(ctx context.Context, recID, recipientID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx,
		`UPDATE recommendations SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`,
		recID, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a recommendation. Either side of it may do so: the
// sender to retract, the recipient to dismiss.
func (r *Repository) Delete(ctx context.Context, recID, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx,
		`DELETE FROM recommendations WHERE id = $1 AND (recipient_id = $2 OR sender_id = $2)`,
		recID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
