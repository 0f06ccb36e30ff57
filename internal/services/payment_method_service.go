package services

import (
	"context"
	"fmt"

	"github.com/escrowdesk/backend/internal/models"
	"github.com/google/uuid"
	"github.com/xssnick/tonutils-go/address"
	"go.uber.org/zap"
)

// PaymentMethodStore is the persistence contract for saved disbursement
// targets.
type PaymentMethodStore interface {
	CreatePaymentMethod(ctx context.Context, m *models.PaymentMethod) error
	ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error)
	DeactivatePaymentMethod(ctx context.Context, userID, id uuid.UUID) error
}

type PaymentMethodService struct {
	store PaymentMethodStore
	log   *zap.Logger
}

func NewPaymentMethodService(store PaymentMethodStore, log *zap.Logger) *PaymentMethodService {
	return &PaymentMethodService{store: store, log: log}
}

type CreatePaymentMethodInput struct {
	Method        string
	Label         *string
	BankName      *string
	AccountNumber *string
	CryptoAddress *string
}

// Create saves a bank or crypto disbursement target. Crypto addresses are
// TON wallet addresses and must parse; actual settlement happens outside
// this service.
func (s *PaymentMethodService) Create(ctx context.Context, userID uuid.UUID, in CreatePaymentMethodInput) (*models.PaymentMethod, error) {
	m := &models.PaymentMethod{
		UserID: userID,
		Method: in.Method,
		Label:  in.Label,
	}

	switch in.Method {
	case models.FundMethodBank:
		if in.AccountNumber == nil || *in.AccountNumber == "" {
			return nil, fmt.Errorf("%w: account_number is required for bank methods", models.ErrInvalidInput)
		}
		m.BankName = in.BankName
		m.AccountNumber = in.AccountNumber
	case models.FundMethodCrypto:
		if in.CryptoAddress == nil || *in.CryptoAddress == "" {
			return nil, fmt.Errorf("%w: crypto_address is required for crypto methods", models.ErrInvalidInput)
		}
		if _, err := address.ParseAddr(*in.CryptoAddress); err != nil {
			return nil, fmt.Errorf("%w: invalid TON address: %v", models.ErrInvalidInput, err)
		}
		m.CryptoAddress = in.CryptoAddress
	default:
		return nil, fmt.Errorf("%w: method must be bank or crypto", models.ErrInvalidInput)
	}

	if err := s.store.CreatePaymentMethod(ctx, m); err != nil {
		return nil, err
	}

	s.log.Info("payment method saved",
		zap.String("user_id", userID.String()),
		zap.String("method", in.Method),
	)
	return m, nil
}

func (s *PaymentMethodService) List(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	return s.store.ListPaymentMethods(ctx, userID)
}

func (s *PaymentMethodService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.store.DeactivatePaymentMethod(ctx, userID, id)
}
