package groups

import (
	"context"
	"errors"

	"voxa/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Create(ctx context.Context, group *Group, encodeInvite func(int64) (string, error)) error
	GetByID(ctx context.Context, groupID int64) (*Group, error)
	GetByInviteCode(ctx context.Context, code string) (*Group, error)
	Update(ctx context.Context, group *Group) error
	Delete(ctx context.Context, groupID int64) error

	AddMember(ctx context.Context, groupID, userID int64, role string) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	IsAdmin(ctx context.Context, groupID, userID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64) ([]Group, error)
	ListMembers(ctx context.Context, groupID int64, limit, offset int) ([]Member, error)
	MemberIDs(ctx context.Context, groupID int64) ([]int64, error)
	AdminIDs(ctx context.Context, groupID int64) ([]int64, error)

	CreateMessage(ctx context.Context, msg *Message) error
	ListMessages(ctx context.Context, groupID int64, limit, offset int) ([]Message, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

// Create inserts the group, derives its invite code from the fresh id
// and enrolls the creator as admin, all in one transaction.
func (r *Repository) Create(ctx context.Context, group *Group, encodeInvite func(int64) (string, error)) error {
	return database.WithTx(r.db, ctx, func(tx pgx.Tx) error {
		queryCtx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
		defer cancel()

		err := tx.QueryRow(queryCtx, `
			INSERT INTO groups (name, description, created_by)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at
		`, group.Name, group.Description, group.CreatedBy).
			Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt)
		if err != nil {
			return err
		}

		code, err := encodeInvite(group.ID)
		if err != nil {
			return err
		}
		group.InviteCode = code

		if _, err := tx.Exec(queryCtx,
			`UPDATE groups SET invite_code = $1 WHERE id = $2`, code, group.ID); err != nil {
			return err
		}

		if _, err := tx.Exec(queryCtx, `
			INSERT INTO group_members (group_id, user_id, role)
			VALUES ($1, $2, $3)
		`, group.ID, group.CreatedBy, RoleAdmin); err != nil {
			return err
		}

		group.MemberCount = 1
		return nil
	})
}

const groupColumns = `
	SELECT g.id, g.name, g.description, g.invite_code, g.created_by,
	       g.created_at, g.updated_at,
	       (SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id) AS member_count
	FROM groups g
`

func (r *Repository) GetByID(ctx context.Context, groupID int64) (*Group, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return scanGroup(r.db.QueryRow(ctx, groupColumns+` WHERE g.id = $1`, groupID))
}

func (r *Repository) GetByInviteCode(ctx context.Context, code string) (*Group, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return scanGroup(r.db.QueryRow(ctx, groupColumns+` WHERE g.invite_code = $1`, code))
}

func scanGroup(row pgx.Row) (*Group, error) {
	var g Group
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.InviteCode,
		&g.CreatedBy,
		&g.CreatedAt,
		&g.UpdatedAt,
		&g.MemberCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *Repository) Update(ctx context.Context, group *Group) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE groups SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`, group.Name, group.Description, group.ID).Scan(&group.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *Repository) Delete(ctx context.Context, groupID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM groups WHERE id = $1`, groupID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) AddMember(ctx context.Context, groupID, userID int64, role string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id, role)
		VALUES ($1, $2, $3)
	`, groupID, userID, role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrAlreadyMember
			case "23503":
				return ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (r *Repository) RemoveMember(ctx context.Context, groupID, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`,
		groupID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotMember
	}
	return nil
}

// IsMember is the single authorization predicate for group-gated
// resources; every handler that scopes by group goes through it.
func (r *Repository) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
		  SELECT 1 FROM group_members
		  WHERE group_id = $1 AND user_id = $2
		)
	`, groupID, userID).Scan(&exists)
	return exists, err
}

func (r *Repository) IsAdmin(ctx context.Context, groupID, userID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
		  SELECT 1 FROM group_members
		  WHERE group_id = $1 AND user_id = $2 AND role = $3
		)
	`, groupID, userID, RoleAdmin).Scan(&exists)
	return exists, err
}

func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]Group, error) {
	query := `
		SELECT g.id, g.name, g.description, g.invite_code, g.created_by,
		       g.created_at, g.updated_at,
		       (SELECT COUNT(*) FROM group_members c WHERE c.group_id = g.id) AS member_count,
		       gm.role
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id AND gm.user_id = $1
		ORDER BY g.created_at DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		var g Group
		err := rows.Scan(
			&g.ID,
			&g.Name,
			&g.Description,
			&g.InviteCode,
			&g.CreatedBy,
			&g.CreatedAt,
			&g.UpdatedAt,
			&g.MemberCount,
			&g.ViewerRole,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repository) ListMembers(ctx context.Context, groupID int64, limit, offset int) ([]Member, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.profile_picture_url, gm.role, gm.created_at
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = $1
		ORDER BY gm.created_at ASC
		LIMIT $2 OFFSET $3
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.FirstName, &m.LastName, &m.ProfilePictureURL, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MemberIDs returns every member's user id, used for push fan-out.
func (r *Repository) MemberIDs(ctx context.Context, groupID int64) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM group_members WHERE group_id = $1`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AdminIDs returns the user ids holding the admin role in a group.
func (r *Repository) AdminIDs(ctx context.Context, groupID int64) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM group_members WHERE group_id = $1 AND role = $2`,
		groupID, RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) CreateMessage(ctx context.Context, msg *Message) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO group_messages (group_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, msg.GroupID, msg.SenderID, msg.Body).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *Repository) ListMessages(ctx context.Context, groupID int64, limit, offset int) ([]Message, error) {
	query := `
		SELECT m.id, m.group_id, m.sender_id, m.body, m.created_at,
		       u.first_name || ' ' || u.last_name AS sender_name,
		       u.profile_picture_url
		FROM group_messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.group_id = $1
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $2 OFFSET $3
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		err := rows.Scan(&m.ID, &m.GroupID, &m.SenderID, &m.Body, &m.CreatedAt, &m.SenderName, &m.SenderAvatarURL)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
