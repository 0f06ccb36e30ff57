package repositories

import (
	"context"

	"github.com/escrowdesk/backend/internal/models"
	"github.com/google/uuid"
)

type UserRepo struct {
	db DB
}

func NewUserRepo(db DB) *UserRepo {
	return &UserRepo{db: db}
}

// Upsert mirrors an identity-provider account into the local profile table.
// On conflict the incoming non-null fields win; existing values are kept
// where the write carries nothing.
func (r *UserRepo) Upsert(ctx context.Context, id uuid.UUID, username, phone *string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (id, username, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			username = COALESCE(EXCLUDED.username, users.username),
			phone = COALESCE(EXCLUDED.phone, users.phone),
			last_active_at = now()
		RETURNING id, username, phone, created_at, last_active_at
	`, id, username, phone).Scan(&u.ID, &u.Username, &u.Phone, &u.CreatedAt, &u.LastActiveAt)
	if err != nil {
		return nil, wrapErr("upsert user", err)
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, phone, created_at, last_active_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.Phone, &u.CreatedAt, &u.LastActiveAt)
	if err != nil {
		return nil, wrapErr("get user", err)
	}
	return &u, nil
}
