package repositories

import (
	"context"
	"time"

	"github.com/escrowdesk/backend/internal/models"
	"github.com/google/uuid"
)

type FundRepo struct {
	db DB
}

func NewFundRepo(db DB) *FundRepo {
	return &FundRepo{db: db}
}

func (r *FundRepo) Create(ctx context.Context, f *models.EscrowFund) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO escrow_funds (deal_id, method, amount_cents, currency, status, reference)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, f.DealID, f.Method, f.AmountCents, f.Currency, f.Status, f.Reference).Scan(&f.ID, &f.CreatedAt)
	return wrapErr("create fund", err)
}

func (r *FundRepo) ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.EscrowFund, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, deal_id, method, amount_cents, currency, status, reference, funded_at, created_at
		FROM escrow_funds WHERE deal_id = $1
		ORDER BY created_at
	`, dealID)
	if err != nil {
		return nil, wrapErr("list funds", err)
	}
	defer rows.Close()

	var funds []models.EscrowFund
	for rows.Next() {
		var f models.EscrowFund
		if err := rows.Scan(&f.ID, &f.DealID, &f.Method, &f.AmountCents, &f.Currency,
			&f.Status, &f.Reference, &f.FundedAt, &f.CreatedAt); err != nil {
			return nil, wrapErr("list funds", err)
		}
		funds = append(funds, f)
	}
	return funds, wrapErr("list funds", rows.Err())
}

// ConfirmAll moves every pending fund of the deal to confirmed, stamping the
// funded time. A single UPDATE keeps the bulk change all-or-nothing.
func (r *FundRepo) ConfirmAll(ctx context.Context, dealID uuid.UUID, fundedAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE escrow_funds SET status = $1, funded_at = $2
		WHERE deal_id = $3 AND status = $4
	`, models.FundStatusConfirmed, fundedAt, dealID, models.FundStatusPending)
	return wrapErr("confirm funds", err)
}

// RefundAll moves every fund of the deal to refunded.
func (r *FundRepo) RefundAll(ctx context.Context, dealID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE escrow_funds SET status = $1
		WHERE deal_id = $2 AND status <> $1
	`, models.FundStatusRefunded, dealID)
	return wrapErr("refund funds", err)
}
