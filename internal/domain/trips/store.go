package trips

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Create(ctx context.Context, trip *Trip) error
	GetByID(ctx context.Context, tripID int64) (*Trip, error)
	ListForUser(ctx context.Context, ownerID int64) ([]Trip, error)
	Update(ctx context.Context, trip *Trip) error
	Delete(ctx context.Context, tripID int64) error
	IsOwner(ctx context.Context, tripID, userID int64) (bool, error)

	AddPlace(ctx context.Context, place *Place) error
	ListPlaces(ctx context.Context, tripID int64) ([]Place, error)
	UpdatePlace(ctx context.Context, tripID, placeRowID int64, notes *string, position *int) error
	RemovePlace(ctx context.Context, tripID, placeRowID int64) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, trip *Trip) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO trips (owner_id, name, description, start_date, end_date, is_public)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, trip.OwnerID, trip.Name, trip.Description, trip.StartDate, trip.EndDate, trip.IsPublic).
		Scan(&trip.ID, &trip.CreatedAt, &trip.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, tripID int64) (*Trip, error) {
	query := `
		SELECT t.id, t.owner_id, t.name, t.description, t.start_date, t.end_date,
		       t.is_public, t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM trip_places tp WHERE tp.trip_id = t.id) AS place_count
		FROM trips t
		WHERE t.id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	trip := &Trip{}
	err := r.db.QueryRow(ctx, query, tripID).Scan(
		&trip.ID,
		&trip.OwnerID,
		&trip.Name,
		&trip.Description,
		&trip.StartDate,
		&trip.EndDate,
		&trip.IsPublic,
		&trip.CreatedAt,
		&trip.UpdatedAt,
		&trip.PlaceCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return trip, nil
}

func (r *Repository) ListForUser(ctx context.Context, ownerID int64) ([]Trip, error) {
	query := `
		SELECT t.id, t.owner_id, t.name, t.description, t.start_date, t.end_date,
		       t.is_public, t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM trip_places tp WHERE tp.trip_id = t.id) AS place_count
		FROM trips t
		WHERE t.owner_id = $1
		ORDER BY t.created_at DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Trip
	for rows.Next() {
		var t Trip
		err := rows.Scan(
			&t.ID, &t.OwnerID, &t.Name, &t.Description, &t.StartDate, &t.EndDate,
			&t.IsPublic, &t.CreatedAt, &t.UpdatedAt, &t.PlaceCount,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, trip *Trip) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE trips
		SET name = $1, description = $2, start_date = $3, end_date = $4, is_public = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`, trip.Name, trip.Description, trip.StartDate, trip.EndDate, trip.IsPublic, trip.ID).
		Scan(&trip.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *Repository) Delete(ctx context.Context, tripID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, tripID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) IsOwner(ctx context.Context, tripID, userID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var ownerID int64
	err := r.db.QueryRow(ctx, `SELECT owner_id FROM trips WHERE id = $1`, tripID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return ownerID == userID, nil
}

// AddPlace appends a stop at the end of the itinerary.
func (r *Repository) AddPlace(ctx context.Context, place *Place) error {
	query := `
		INSERT INTO trip_places (trip_id, place_id, place_name, notes, position, latitude, longitude)
		VALUES ($1, $2, $3, $4,
		        (SELECT COALESCE(MAX(position), 0) + 1 FROM trip_places WHERE trip_id = $1),
		        $5, $6)
		RETURNING id, position, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return r.db.QueryRow(ctx, query,
		place.TripID, place.PlaceID, place.PlaceName, place.Notes, place.Latitude, place.Longitude,
	).Scan(&place.ID, &place.Position, &place.CreatedAt)
}

func (r *Repository) ListPlaces(ctx context.Context, tripID int64) ([]Place, error) {
	query := `
		SELECT id, trip_id, place_id, place_name, notes, position, latitude, longitude, created_at
		FROM trip_places
		WHERE trip_id = $1
		ORDER BY position ASC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Place
	for rows.Next() {
		var p Place
		err := rows.Scan(&p.ID, &p.TripID, &p.PlaceID, &p.PlaceName, &p.Notes, &p.Position, &p.Latitude, &p.Longitude, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdatePlace edits a stop's notes and/or moves it within the itinerary.
// Moving shifts the other stops so positions stay a gapless 1..n sequence.
func (r *Repository) UpdatePlace(ctx context.Context, tripID, placeRowID int64, notes *string, position *int) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if position == nil {
		tag, err := r.db.Exec(ctx,
			`UPDATE trip_places SET notes = $1 WHERE trip_id = $2 AND id = $3`,
			notes, tripID, placeRowID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrPlaceNotFound
		}
		return nil
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var current, count int
	err = tx.QueryRow(ctx, `
		SELECT position, (SELECT COUNT(*) FROM trip_places WHERE trip_id = $1)
		FROM trip_places
		WHERE trip_id = $1 AND id = $2
	`, tripID, placeRowID).Scan(&current, &count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPlaceNotFound
		}
		return err
	}

	target := *position
	if target < 1 {
		target = 1
	}
	if target > count {
		target = count
	}

	if target < current {
		_, err = tx.Exec(ctx, `
			UPDATE trip_places SET position = position + 1
			WHERE trip_id = $1 AND position >= $2 AND position < $3
		`, tripID, target, current)
	} else if target > current {
		_, err = tx.Exec(ctx, `
			UPDATE trip_places SET position = position - 1
			WHERE trip_id = $1 AND position > $2 AND position <= $3
		`, tripID, current, target)
	}
	if err != nil {
		return err
	}

	if notes != nil {
		_, err = tx.Exec(ctx,
			`UPDATE trip_places SET position = $1, notes = $2 WHERE trip_id = $3 AND id = $4`,
			target, notes, tripID, placeRowID)
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE trip_places SET position = $1 WHERE trip_id = $2 AND id = $3`,
			target, tripID, placeRowID)
	}
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) RemovePlace(ctx context.Context, tripID, placeRowID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx,
		`DELETE FROM trip_places WHERE trip_id = $1 AND id = $2`, tripID, placeRowID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlaceNotFound
	}
	return nil
}
