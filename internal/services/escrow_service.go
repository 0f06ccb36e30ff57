package services

import (
	"context"
	"fmt"
	"time"

	"github.com/escrowdesk/backend/internal/events"
	"github.com/escrowdesk/backend/internal/models"
	"github.com/escrowdesk/backend/internal/rbac"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Admins resolves whether an identity holds the administrator role. The
// lookup is supplied by the caller environment (config in this deployment).
type Admins interface {
	IsAdmin(userID uuid.UUID) bool
}

// Tx is the set of storage operations available inside one atomic unit.
// GetDealForUpdate takes the per-deal lock; implementations must apply all
// effects of the unit or none of them.
type Tx interface {
	CreateDeal(ctx context.Context, d *models.Deal) error
	GetDealForUpdate(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	UpdateDealStatus(ctx context.Context, id uuid.UUID, status string) error
	SetDealReceipt(ctx context.Context, id uuid.UUID, ref string) error
	CreateFund(ctx context.Context, f *models.EscrowFund) error
	ConfirmFunds(ctx context.Context, dealID uuid.UUID, fundedAt time.Time) error
	RefundFunds(ctx context.Context, dealID uuid.UUID) error
	CreateDispute(ctx context.Context, d *models.Dispute) error
	GetDisputeForUpdate(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	UpdateDispute(ctx context.Context, d *models.Dispute) error
	AppendActivity(ctx context.Context, entry *models.ActivityLog) error
}

// DealFilter narrows deal listings.
type DealFilter struct {
	UserID *uuid.UUID // deals where the user is a party
	Role   string     // "", "initiator" or "recipient"
	Status *string
	Limit  int
	Offset int
}

// Store is the persistence contract of the escrow service.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	GetDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	ListDeals(ctx context.Context, f DealFilter) ([]models.Deal, error)
	ListDealsByUser(ctx context.Context, userID uuid.UUID) ([]models.Deal, error)
	ListFunds(ctx context.Context, dealID uuid.UUID) ([]models.EscrowFund, error)
	GetDisputeByDeal(ctx context.Context, dealID uuid.UUID) (*models.Dispute, error)
	ListActivity(ctx context.Context, dealID uuid.UUID, limit, offset int) ([]models.ActivityLog, error)
}

// statusHooks are the ledger side effects applied when a status override
// moves a deal into a status. Kept as a table so the transition semantics
// stay declarative.
var statusHooks = map[string]func(ctx context.Context, tx Tx, deal *models.Deal, now time.Time) error{
	models.DealStatusFunded: func(ctx context.Context, tx Tx, deal *models.Deal, now time.Time) error {
		return tx.ConfirmFunds(ctx, deal.ID, now)
	},
}

// EscrowService owns the deal lifecycle state machine and its escrow ledger.
type EscrowService struct {
	store     Store
	admins    Admins
	publisher events.Publisher
	log       *zap.Logger
}

func NewEscrowService(store Store, admins Admins, publisher events.Publisher, log *zap.Logger) *EscrowService {
	return &EscrowService{
		store:     store,
		admins:    admins,
		publisher: publisher,
		log:       log,
	}
}

type CreateDealInput struct {
	RecipientUserID uuid.UUID
	Title           *string
	AmountCents     int64
	Currency        string
}

func (s *EscrowService) CreateDeal(ctx context.Context, initiatorID uuid.UUID, in CreateDealInput) (*models.Deal, error) {
	if in.RecipientUserID == initiatorID {
		return nil, fmt.Errorf("%w: initiator and recipient must be distinct", models.ErrInvalidInput)
	}
	if in.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", models.ErrInvalidInput)
	}
	if in.Currency == "" {
		return nil, fmt.Errorf("%w: currency is required", models.ErrInvalidInput)
	}

	deal := &models.Deal{
		InitiatorUserID: initiatorID,
		RecipientUserID: in.RecipientUserID,
		Status:          models.DealStatusDraft,
		Title:           in.Title,
		AmountCents:     in.AmountCents,
		Currency:        in.Currency,
	}

	err := s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.CreateDeal(ctx, deal); err != nil {
			return err
		}
		return tx.AppendActivity(ctx, &models.ActivityLog{
			DealID:      deal.ID,
			ActorUserID: &initiatorID,
			ActorType:   "user",
			Action:      models.ActionDealCreated,
			Meta:        map[string]any{"amount_cents": in.AmountCents, "currency": in.Currency},
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventDealStatusChanged, map[string]any{
		"deal_id":    deal.ID.String(),
		"new_status": deal.Status,
	})
	return deal, nil
}

type SubmitFundingInput struct {
	Method      string
	AmountCents int64
	Currency    string
	Reference   *string
}

// SubmitFunding records a pending escrow fund for the deal and moves a
// draft/active deal into funding. Repeated submission while the deal is
// already in funding is allowed and adds another fund row under the same
// deal. Fund, status change and activity entry commit as one unit.
func (s *EscrowService) SubmitFunding(ctx context.Context, dealID, actorID uuid.UUID, in SubmitFundingInput) (*models.EscrowFund, error) {
	if !models.IsFundMethod(in.Method) {
		return nil, fmt.Errorf("%w: funding method must be bank or crypto", models.ErrInvalidInput)
	}
	if in.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", models.ErrInvalidInput)
	}

	fund := &models.EscrowFund{
		DealID:      dealID,
		Method:      in.Method,
		AmountCents: in.AmountCents,
		Currency:    in.Currency,
		Status:      models.FundStatusPending,
		Reference:   in.Reference,
	}

	err := s.store.InTx(ctx, func(tx Tx) error {
		deal, err := tx.GetDealForUpdate(ctx, dealID)
		if err != nil {
			return err
		}
		if !rbac.Can(deal, actorID, s.admins.IsAdmin(actorID), rbac.PermSubmitFunding) {
			return fmt.Errorf("%w: only a deal party may submit funding", models.ErrUnauthorized)
		}
		if in.Currency == "" {
			fund.Currency = deal.Currency
		} else if in.Currency != deal.Currency {
			return fmt.Errorf("%w: funding currency %s does not match deal currency %s",
				models.ErrInvalidInput, in.Currency, deal.Currency)
		}

		switch deal.Status {
		case models.DealStatusDraft, models.DealStatusActive:
			if err := tx.UpdateDealStatus(ctx, dealID, models.DealStatusFunding); err != nil {
				return err
			}
		case models.DealStatusFunding:
			// second deposit under the same deal, status unchanged
		default:
			return fmt.Errorf("%w: deal in status %s is not accepting funding", models.ErrConflictingState, deal.Status)
		}

		if err := tx.CreateFund(ctx, fund); err != nil {
			return err
		}
		if in.Reference != nil && deal.ReceiptRef == nil {
			if err := tx.SetDealReceipt(ctx, dealID, *in.Reference); err != nil {
				return err
			}
		}
		return tx.AppendActivity(ctx, &models.ActivityLog{
			DealID:      dealID,
			ActorUserID: &actorID,
			ActorType:   "user",
			Action:      models.ActionDepositSubmitted,
			Meta:        map[string]any{"method": in.Method, "amount_cents": fund.AmountCents},
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventDepositSubmitted, map[string]any{
		"deal_id": dealID.String(),
		"fund_id": fund.ID.String(),
		"method":  in.Method,
	})
	return fund, nil
}

// SetStatus is the administrative status override. Any settable status is
// accepted from any current status; entering funded confirms every escrow
// fund of the deal via the status hook.
func (s *EscrowService) SetStatus(ctx context.Context, dealID, actorID uuid.UUID, newStatus string) error {
	if !models.IsSettableStatus(newStatus) {
		return fmt.Errorf("%w: %q", models.ErrInvalidStatus, newStatus)
	}

	var oldStatus string
	err := s.store.InTx(ctx, func(tx Tx) error {
		deal, err := tx.GetDealForUpdate(ctx, dealID)
		if err != nil {
			return err
		}
		if !rbac.Can(deal, actorID, s.admins.IsAdmin(actorID), rbac.PermSetStatus) {
			return fmt.Errorf("%w: only an administrator may override deal status", models.ErrUnauthorized)
		}
		oldStatus = deal.Status

		if err := tx.UpdateDealStatus(ctx, dealID, newStatus); err != nil {
			return err
		}
		if hook, ok := statusHooks[newStatus]; ok {
			if err := hook(ctx, tx, deal, time.Now().UTC()); err != nil {
				return err
			}
		}
		return tx.AppendActivity(ctx, &models.ActivityLog{
			DealID:      dealID,
			ActorUserID: &actorID,
			ActorType:   "admin",
			Action:      models.StatusChangedAction(newStatus),
			Meta:        map[string]any{"old_status": oldStatus, "new_status": newStatus},
		})
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.EventDealStatusChanged, map[string]any{
		"deal_id":    dealID.String(),
		"old_status": oldStatus,
		"new_status": newStatus,
	})
	return nil
}

// OpenDispute escalates a funded or in-review deal. The deal moves to
// disputed and stays there until an administrator resolves.
func (s *EscrowService) OpenDispute(ctx context.Context, dealID, actorID uuid.UUID, reason string) (*models.Dispute, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: dispute reason is required", models.ErrInvalidInput)
	}

	dispute := &models.Dispute{
		DealID:         dealID,
		OpenedByUserID: actorID,
		Reason:         reason,
		Status:         models.DisputeStatusOpen,
	}

	err := s.store.InTx(ctx, func(tx Tx) error {
		deal, err := tx.GetDealForUpdate(ctx, dealID)
		if err != nil {
			return err
		}
		if !rbac.Can(deal, actorID, s.admins.IsAdmin(actorID), rbac.PermOpenDispute) {
			return fmt.Errorf("%w: only a deal party may open a dispute", models.ErrUnauthorized)
		}
		if !models.IsValidTransition(deal.Status, models.DealStatusDisputed) {
			return fmt.Errorf("%w: deal in status %s cannot be disputed", models.ErrConflictingState, deal.Status)
		}

		if err := tx.CreateDispute(ctx, dispute); err != nil {
			return err
		}
		if err := tx.UpdateDealStatus(ctx, dealID, models.DealStatusDisputed); err != nil {
			return err
		}
		return tx.AppendActivity(ctx, &models.ActivityLog{
			DealID:      dealID,
			ActorUserID: &actorID,
			ActorType:   "user",
			Action:      models.ActionDisputeOpened,
			Meta:        map[string]any{"dispute_id": dispute.ID.String(), "reason": reason},
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventDisputeOpened, map[string]any{
		"deal_id":    dealID.String(),
		"dispute_id": dispute.ID.String(),
	})
	return dispute, nil
}

// ResolveDispute settles an open dispute exactly once. release_seller
// confirms the funds and completes the deal; refund_buyer refunds the funds
// and closes the deal as refunded. A second resolution of the same dispute
// fails with ErrConflictingState and leaves the ledger untouched.
func (s *EscrowService) ResolveDispute(ctx context.Context, disputeID, resolverID uuid.UUID, resolutionText, action string) error {
	if resolutionText == "" {
		return fmt.Errorf("%w: resolution text is required", models.ErrInvalidInput)
	}
	if !models.IsResolutionAction(action) {
		return fmt.Errorf("%w: resolution action must be refund_buyer or release_seller", models.ErrInvalidInput)
	}

	var dealID uuid.UUID
	err := s.store.InTx(ctx, func(tx Tx) error {
		dispute, err := tx.GetDisputeForUpdate(ctx, disputeID)
		if err != nil {
			return err
		}
		deal, err := tx.GetDealForUpdate(ctx, dispute.DealID)
		if err != nil {
			return err
		}
		dealID = deal.ID

		if !rbac.Can(deal, resolverID, s.admins.IsAdmin(resolverID), rbac.PermResolveDispute) {
			return fmt.Errorf("%w: only an administrator may resolve a dispute", models.ErrUnauthorized)
		}
		if dispute.Status == models.DisputeStatusResolved {
			return fmt.Errorf("%w: dispute already resolved", models.ErrConflictingState)
		}

		now := time.Now().UTC()
		switch action {
		case models.ResolutionReleaseSeller:
			if err := tx.ConfirmFunds(ctx, deal.ID, now); err != nil {
				return err
			}
			if err := tx.UpdateDealStatus(ctx, deal.ID, models.DealStatusCompleted); err != nil {
				return err
			}
		case models.ResolutionRefundBuyer:
			if err := tx.RefundFunds(ctx, deal.ID); err != nil {
				return err
			}
			if err := tx.UpdateDealStatus(ctx, deal.ID, models.DealStatusRefunded); err != nil {
				return err
			}
		}

		dispute.Status = models.DisputeStatusResolved
		dispute.Resolution = &action
		dispute.ResolutionText = &resolutionText
		dispute.ResolverUserID = &resolverID
		dispute.ResolvedAt = &now
		if err := tx.UpdateDispute(ctx, dispute); err != nil {
			return err
		}

		return tx.AppendActivity(ctx, &models.ActivityLog{
			DealID:      deal.ID,
			ActorUserID: &resolverID,
			ActorType:   "admin",
			Action:      models.ActionDisputeResolved,
			Meta:        map[string]any{"dispute_id": disputeID.String(), "action": action},
		})
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.EventDisputeResolved, map[string]any{
		"deal_id":    dealID.String(),
		"dispute_id": disputeID.String(),
		"action":     action,
	})
	return nil
}

func (s *EscrowService) GetDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	return s.store.GetDeal(ctx, id)
}

func (s *EscrowService) ListDeals(ctx context.Context, f DealFilter) ([]models.Deal, error) {
	return s.store.ListDeals(ctx, f)
}

func (s *EscrowService) GetFunds(ctx context.Context, dealID uuid.UUID) ([]models.EscrowFund, error) {
	return s.store.ListFunds(ctx, dealID)
}

func (s *EscrowService) GetDispute(ctx context.Context, dealID uuid.UUID) (*models.Dispute, error) {
	return s.store.GetDisputeByDeal(ctx, dealID)
}

func (s *EscrowService) GetDealEvents(ctx context.Context, dealID uuid.UUID) ([]models.ActivityLog, error) {
	return s.store.ListActivity(ctx, dealID, 100, 0)
}

// GetBalance recomputes the caller's wallet view from their deal records.
func (s *EscrowService) GetBalance(ctx context.Context, userID uuid.UUID) (models.Balance, error) {
	deals, err := s.store.ListDealsByUser(ctx, userID)
	if err != nil {
		return models.Balance{}, err
	}
	return BalanceFor(userID, deals), nil
}

func (s *EscrowService) publish(ctx context.Context, eventType string, payload map[string]any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.DealStream, events.Event{Type: eventType, Payload: payload}); err != nil {
		s.log.Warn("event publish failed", zap.String("type", eventType), zap.Error(err))
	}
}
