package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/escrowdesk/backend/internal/models"
	"github.com/escrowdesk/backend/internal/services"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements services.Store on Postgres. Each InTx call runs its body
// in one database transaction; the deal row lock taken by GetDealForUpdate
// serializes concurrent lifecycle operations per deal while leaving other
// deals untouched.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) InTx(ctx context.Context, fn func(tx services.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w: %v", models.ErrStorage, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&txStore{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w: %v", models.ErrStorage, err)
	}
	return nil
}

func (s *Store) GetDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	return NewDealRepo(s.pool).GetByID(ctx, id)
}

func (s *Store) ListDeals(ctx context.Context, f services.DealFilter) ([]models.Deal, error) {
	return NewDealRepo(s.pool).List(ctx, f)
}

func (s *Store) ListDealsByUser(ctx context.Context, userID uuid.UUID) ([]models.Deal, error) {
	return NewDealRepo(s.pool).ListByUser(ctx, userID)
}

func (s *Store) ListFunds(ctx context.Context, dealID uuid.UUID) ([]models.EscrowFund, error) {
	return NewFundRepo(s.pool).ListByDeal(ctx, dealID)
}

func (s *Store) GetDisputeByDeal(ctx context.Context, dealID uuid.UUID) (*models.Dispute, error) {
	return NewDisputeRepo(s.pool).GetByDealID(ctx, dealID)
}

func (s *Store) ListActivity(ctx context.Context, dealID uuid.UUID, limit, offset int) ([]models.ActivityLog, error) {
	return NewAuditRepo(s.pool).ListByDeal(ctx, dealID, limit, offset)
}

// Payment methods live outside the per-deal atomic unit.

func (s *Store) CreatePaymentMethod(ctx context.Context, m *models.PaymentMethod) error {
	return NewPaymentMethodRepo(s.pool).Create(ctx, m)
}

func (s *Store) ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	return NewPaymentMethodRepo(s.pool).ListByUser(ctx, userID)
}

func (s *Store) DeactivatePaymentMethod(ctx context.Context, userID, id uuid.UUID) error {
	return NewPaymentMethodRepo(s.pool).Deactivate(ctx, userID, id)
}

// txStore exposes the repos over one open transaction.
type txStore struct {
	db DB
}

func (t *txStore) CreateDeal(ctx context.Context, d *models.Deal) error {
	return NewDealRepo(t.db).Create(ctx, d)
}

func (t *txStore) GetDealForUpdate(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	return NewDealRepo(t.db).GetByIDForUpdate(ctx, id)
}

func (t *txStore) UpdateDealStatus(ctx context.Context, id uuid.UUID, status string) error {
	return NewDealRepo(t.db).UpdateStatus(ctx, id, status)
}

func (t *txStore) SetDealReceipt(ctx context.Context, id uuid.UUID, ref string) error {
	return NewDealRepo(t.db).SetReceipt(ctx, id, ref)
}

func (t *txStore) CreateFund(ctx context.Context, f *models.EscrowFund) error {
	return NewFundRepo(t.db).Create(ctx, f)
}

func (t *txStore) ConfirmFunds(ctx context.Context, dealID uuid.UUID, fundedAt time.Time) error {
	return NewFundRepo(t.db).ConfirmAll(ctx, dealID, fundedAt)
}

func (t *txStore) RefundFunds(ctx context.Context, dealID uuid.UUID) error {
	return NewFundRepo(t.db).RefundAll(ctx, dealID)
}

func (t *txStore) CreateDispute(ctx context.Context, d *models.Dispute) error {
	return NewDisputeRepo(t.db).Create(ctx, d)
}

func (t *txStore) GetDisputeForUpdate(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	return NewDisputeRepo(t.db).GetByIDForUpdate(ctx, id)
}

func (t *txStore) UpdateDispute(ctx context.Context, d *models.Dispute) error {
	return NewDisputeRepo(t.db).Update(ctx, d)
}

func (t *txStore) AppendActivity(ctx context.Context, entry *models.ActivityLog) error {
	return NewAuditRepo(t.db).Append(ctx, entry)
}
