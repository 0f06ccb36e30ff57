package services

import (
	"context"
	"testing"

	"github.com/escrowdesk/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memPaymentMethodStore struct {
	methods map[uuid.UUID]*models.PaymentMethod
}

func newMemPaymentMethodStore() *memPaymentMethodStore {
	return &memPaymentMethodStore{methods: make(map[uuid.UUID]*models.PaymentMethod)}
}

func (s *memPaymentMethodStore) CreatePaymentMethod(_ context.Context, m *models.PaymentMethod) error {
	m.ID = uuid.New()
	m.IsActive = true
	s.methods[m.ID] = m
	return nil
}

func (s *memPaymentMethodStore) ListPaymentMethods(_ context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	var out []models.PaymentMethod
	for _, m := range s.methods {
		if m.UserID == userID && m.IsActive {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *memPaymentMethodStore) DeactivatePaymentMethod(_ context.Context, userID, id uuid.UUID) error {
	m, ok := s.methods[id]
	if !ok || m.UserID != userID || !m.IsActive {
		return models.ErrNotFound
	}
	m.IsActive = false
	return nil
}

func str(s string) *string { return &s }

func TestCreatePaymentMethod_Bank(t *testing.T) {
	svc := NewPaymentMethodService(newMemPaymentMethodStore(), zap.NewNop())
	userID := uuid.New()

	m, err := svc.Create(context.Background(), userID, CreatePaymentMethodInput{
		Method:        models.FundMethodBank,
		Label:         str("main account"),
		BankName:      str("First National"),
		AccountNumber: str("DE89370400440532013000"),
	})
	require.NoError(t, err)
	require.Equal(t, userID, m.UserID)
	require.True(t, m.IsActive)

	list, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestCreatePaymentMethod_Validation(t *testing.T) {
	svc := NewPaymentMethodService(newMemPaymentMethodStore(), zap.NewNop())
	userID := uuid.New()

	tests := []struct {
		name string
		in   CreatePaymentMethodInput
	}{
		{"bank without account number", CreatePaymentMethodInput{Method: models.FundMethodBank, BankName: str("First National")}},
		{"crypto without address", CreatePaymentMethodInput{Method: models.FundMethodCrypto}},
		{"crypto with malformed address", CreatePaymentMethodInput{Method: models.FundMethodCrypto, CryptoAddress: str("not-a-ton-address")}},
		{"unknown method", CreatePaymentMethodInput{Method: "paypal", AccountNumber: str("123")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), userID, tt.in)
			require.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestDeletePaymentMethod(t *testing.T) {
	store := newMemPaymentMethodStore()
	svc := NewPaymentMethodService(store, zap.NewNop())
	userID := uuid.New()

	m, err := svc.Create(context.Background(), userID, CreatePaymentMethodInput{
		Method:        models.FundMethodBank,
		AccountNumber: str("12345678"),
	})
	require.NoError(t, err)

	// another user cannot remove it
	require.ErrorIs(t, svc.Delete(context.Background(), uuid.New(), m.ID), models.ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), userID, m.ID))

	list, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Empty(t, list)

	// already deactivated
	require.ErrorIs(t, svc.Delete(context.Background(), userID, m.ID), models.ErrNotFound)
}
