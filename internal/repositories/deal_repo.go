package repositories

import (
	"context"
	"fmt"

	"github.com/escrowdesk/backend/internal/models"
	"github.com/escrowdesk/backend/internal/services"
	"github.com/google/uuid"
)

type DealRepo struct {
	db DB
}

func NewDealRepo(db DB) *DealRepo {
	return &DealRepo{db: db}
}

const dealColumns = `id, initiator_user_id, recipient_user_id, status, title,
       amount_cents, currency, receipt_ref, created_at, updated_at`

func scanDeal(row interface{ Scan(...any) error }, d *models.Deal) error {
	return row.Scan(&d.ID, &d.InitiatorUserID, &d.RecipientUserID, &d.Status, &d.Title,
		&d.AmountCents, &d.Currency, &d.ReceiptRef, &d.CreatedAt, &d.UpdatedAt)
}

func (r *DealRepo) Create(ctx context.Context, d *models.Deal) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO deals (initiator_user_id, recipient_user_id, status, title, amount_cents, currency, receipt_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, d.InitiatorUserID, d.RecipientUserID, d.Status, d.Title, d.AmountCents, d.Currency, d.ReceiptRef,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return wrapErr("create deal", err)
}

func (r *DealRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var d models.Deal
	err := scanDeal(r.db.QueryRow(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = $1`, id), &d)
	if err != nil {
		return nil, wrapErr("get deal", err)
	}
	return &d, nil
}

// GetByIDForUpdate takes the per-deal row lock, serializing concurrent
// lifecycle operations on the same deal.
func (r *DealRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var d models.Deal
	err := scanDeal(r.db.QueryRow(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = $1 FOR UPDATE`, id), &d)
	if err != nil {
		return nil, wrapErr("lock deal", err)
	}
	return &d, nil
}

func (r *DealRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.db.Exec(ctx, `UPDATE deals SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return wrapErr("update deal status", err)
}

func (r *DealRepo) SetReceipt(ctx context.Context, id uuid.UUID, ref string) error {
	_, err := r.db.Exec(ctx, `UPDATE deals SET receipt_ref = $1, updated_at = now() WHERE id = $2`, ref, id)
	return wrapErr("set deal receipt", err)
}

func (r *DealRepo) List(ctx context.Context, f services.DealFilter) ([]models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.UserID != nil {
		switch f.Role {
		case "initiator":
			where = append(where, fmt.Sprintf("initiator_user_id = $%d", argIdx))
			args = append(args, *f.UserID)
			argIdx++
		case "recipient":
			where = append(where, fmt.Sprintf("recipient_user_id = $%d", argIdx))
			args = append(args, *f.UserID)
			argIdx++
		default:
			where = append(where, fmt.Sprintf("(initiator_user_id = $%d OR recipient_user_id = $%d)", argIdx, argIdx))
			args = append(args, *f.UserID)
			argIdx++
		}
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list deals", err)
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		var d models.Deal
		if err := scanDeal(rows, &d); err != nil {
			return nil, wrapErr("list deals", err)
		}
		deals = append(deals, d)
	}
	return deals, wrapErr("list deals", rows.Err())
}

// ListByUser returns every deal where the user is a party, without paging.
// Used by the balance aggregation, which must see the full deal set.
func (r *DealRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Deal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+dealColumns+` FROM deals
		WHERE initiator_user_id = $1 OR recipient_user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, wrapErr("list deals by user", err)
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		var d models.Deal
		if err := scanDeal(rows, &d); err != nil {
			return nil, wrapErr("list deals by user", err)
		}
		deals = append(deals, d)
	}
	return deals, wrapErr("list deals by user", rows.Err())
}
