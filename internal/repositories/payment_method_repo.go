package repositories

import (
	"context"

	"github.com/escrowdesk/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PaymentMethodRepo struct {
	db DB
}

func NewPaymentMethodRepo(db DB) *PaymentMethodRepo {
	return &PaymentMethodRepo{db: db}
}

func (r *PaymentMethodRepo) Create(ctx context.Context, m *models.PaymentMethod) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO payment_methods (user_id, method, label, bank_name, account_number, crypto_address, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING id, is_active, created_at
	`, m.UserID, m.Method, m.Label, m.BankName, m.AccountNumber, m.CryptoAddress).Scan(&m.ID, &m.IsActive, &m.CreatedAt)
	return wrapErr("create payment method", err)
}

func (r *PaymentMethodRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, method, label, bank_name, account_number, crypto_address, is_active, created_at
		FROM payment_methods WHERE user_id = $1 AND is_active
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, wrapErr("list payment methods", err)
	}
	defer rows.Close()

	var methods []models.PaymentMethod
	for rows.Next() {
		var m models.PaymentMethod
		if err := rows.Scan(&m.ID, &m.UserID, &m.Method, &m.Label, &m.BankName,
			&m.AccountNumber, &m.CryptoAddress, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, wrapErr("list payment methods", err)
		}
		methods = append(methods, m)
	}
	return methods, wrapErr("list payment methods", rows.Err())
}

func (r *PaymentMethodRepo) Deactivate(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE payment_methods SET is_active = false
		WHERE id = $1 AND user_id = $2 AND is_active
	`, id, userID)
	if err != nil {
		return wrapErr("deactivate payment method", err)
	}
	if tag.RowsAffected() == 0 {
		return wrapErr("deactivate payment method", pgx.ErrNoRows)
	}
	return nil
}
