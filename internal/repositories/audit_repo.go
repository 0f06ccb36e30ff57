package repositories

import (
	"context"

	"github.com/escrowdesk/backend/internal/models"
	"github.com/google/uuid"
)

type AuditRepo struct {
	db DB
}

func NewAuditRepo(db DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Append inserts one immutable activity entry. There is no update or delete.
func (r *AuditRepo) Append(ctx context.Context, entry *models.ActivityLog) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO activity_log (deal_id, actor_user_id, actor_type, action, meta)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, entry.DealID, entry.ActorUserID, entry.ActorType, entry.Action, entry.Meta).Scan(&entry.ID, &entry.CreatedAt)
	return wrapErr("append activity", err)
}

func (r *AuditRepo) ListByDeal(ctx context.Context, dealID uuid.UUID, limit, offset int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, deal_id, actor_user_id, actor_type, action, meta, created_at
		FROM activity_log WHERE deal_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, dealID, limit, offset)
	if err != nil {
		return nil, wrapErr("list activity", err)
	}
	defer rows.Close()

	var logs []models.ActivityLog
	for rows.Next() {
		var l models.ActivityLog
		if err := rows.Scan(&l.ID, &l.DealID, &l.ActorUserID, &l.ActorType, &l.Action, &l.Meta, &l.CreatedAt); err != nil {
			return nil, wrapErr("list activity", err)
		}
		logs = append(logs, l)
	}
	return logs, wrapErr("list activity", rows.Err())
}
