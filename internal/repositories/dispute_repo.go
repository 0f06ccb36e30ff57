package repositories

import (
	"context"

	"github.com/escrowdesk/backend/internal/models"
	"github.com/google/uuid"
)

type DisputeRepo struct {
	db DB
}

func NewDisputeRepo(db DB) *DisputeRepo {
	return &DisputeRepo{db: db}
}

const disputeColumns = `id, deal_id, opened_by_user_id, reason, status,
       resolution, resolution_text, resolver_user_id, resolved_at, created_at`

func scanDispute(row interface{ Scan(...any) error }, d *models.Dispute) error {
	return row.Scan(&d.ID, &d.DealID, &d.OpenedByUserID, &d.Reason, &d.Status,
		&d.Resolution, &d.ResolutionText, &d.ResolverUserID, &d.ResolvedAt, &d.CreatedAt)
}

func (r *DisputeRepo) Create(ctx context.Context, d *models.Dispute) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO disputes (deal_id, opened_by_user_id, reason, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, d.DealID, d.OpenedByUserID, d.Reason, d.Status).Scan(&d.ID, &d.CreatedAt)
	return wrapErr("create dispute", err)
}

func (r *DisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	err := scanDispute(r.db.QueryRow(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE id = $1`, id), &d)
	if err != nil {
		return nil, wrapErr("get dispute", err)
	}
	return &d, nil
}

// GetByIDForUpdate locks the dispute row for the duration of a resolution.
func (r *DisputeRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	err := scanDispute(r.db.QueryRow(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE id = $1 FOR UPDATE`, id), &d)
	if err != nil {
		return nil, wrapErr("lock dispute", err)
	}
	return &d, nil
}

func (r *DisputeRepo) GetByDealID(ctx context.Context, dealID uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	err := scanDispute(r.db.QueryRow(ctx, `
		SELECT `+disputeColumns+` FROM disputes WHERE deal_id = $1
		ORDER BY created_at DESC LIMIT 1
	`, dealID), &d)
	if err != nil {
		return nil, wrapErr("get dispute by deal", err)
	}
	return &d, nil
}

func (r *DisputeRepo) Update(ctx context.Context, d *models.Dispute) error {
	_, err := r.db.Exec(ctx, `
		UPDATE disputes SET status = $1, resolution = $2, resolution_text = $3,
		       resolver_user_id = $4, resolved_at = $5
		WHERE id = $6
	`, d.Status, d.Resolution, d.ResolutionText, d.ResolverUserID, d.ResolvedAt, d.ID)
	return wrapErr("update dispute", err)
}
