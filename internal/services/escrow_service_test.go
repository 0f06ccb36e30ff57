package services

import (
	"context"
	"testing"
	"time"

	"github.com/escrowdesk/backend/internal/events"
	"github.com/escrowdesk/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore implements Store in memory with snapshot-restore transactions:
// if the InTx body fails, every mutation of the unit is rolled back.
type memStore struct {
	deals    map[uuid.UUID]*models.Deal
	funds    map[uuid.UUID][]*models.EscrowFund
	disputes map[uuid.UUID]*models.Dispute
	activity map[uuid.UUID][]models.ActivityLog
}

func newMemStore() *memStore {
	return &memStore{
		deals:    make(map[uuid.UUID]*models.Deal),
		funds:    make(map[uuid.UUID][]*models.EscrowFund),
		disputes: make(map[uuid.UUID]*models.Dispute),
		activity: make(map[uuid.UUID][]models.ActivityLog),
	}
}

func (m *memStore) clone() *memStore {
	c := newMemStore()
	for id, d := range m.deals {
		dc := *d
		c.deals[id] = &dc
	}
	for id, fs := range m.funds {
		for _, f := range fs {
			fc := *f
			c.funds[id] = append(c.funds[id], &fc)
		}
	}
	for id, d := range m.disputes {
		dc := *d
		c.disputes[id] = &dc
	}
	for id, entries := range m.activity {
		c.activity[id] = append([]models.ActivityLog(nil), entries...)
	}
	return c
}

func (m *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	snap := m.clone()
	if err := fn(&memTx{s: m}); err != nil {
		*m = *snap
		return err
	}
	return nil
}

func (m *memStore) GetDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	d, ok := m.deals[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	dc := *d
	return &dc, nil
}

func (m *memStore) ListDeals(ctx context.Context, f DealFilter) ([]models.Deal, error) {
	var out []models.Deal
	for _, d := range m.deals {
		if f.UserID != nil && !d.IsParty(*f.UserID) {
			continue
		}
		if f.Status != nil && d.Status != *f.Status {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (m *memStore) ListDealsByUser(ctx context.Context, userID uuid.UUID) ([]models.Deal, error) {
	var out []models.Deal
	for _, d := range m.deals {
		if d.IsParty(userID) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memStore) ListFunds(ctx context.Context, dealID uuid.UUID) ([]models.EscrowFund, error) {
	var out []models.EscrowFund
	for _, f := range m.funds[dealID] {
		out = append(out, *f)
	}
	return out, nil
}

func (m *memStore) GetDisputeByDeal(ctx context.Context, dealID uuid.UUID) (*models.Dispute, error) {
	for _, d := range m.disputes {
		if d.DealID == dealID {
			dc := *d
			return &dc, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) ListActivity(ctx context.Context, dealID uuid.UUID, limit, offset int) ([]models.ActivityLog, error) {
	return append([]models.ActivityLog(nil), m.activity[dealID]...), nil
}

type memTx struct {
	s *memStore
}

func (t *memTx) CreateDeal(ctx context.Context, d *models.Deal) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	dc := *d
	t.s.deals[d.ID] = &dc
	return nil
}

func (t *memTx) GetDealForUpdate(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	d, ok := t.s.deals[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	dc := *d
	return &dc, nil
}

func (t *memTx) UpdateDealStatus(ctx context.Context, id uuid.UUID, status string) error {
	d, ok := t.s.deals[id]
	if !ok {
		return models.ErrNotFound
	}
	d.Status = status
	d.UpdatedAt = time.Now()
	return nil
}

func (t *memTx) SetDealReceipt(ctx context.Context, id uuid.UUID, ref string) error {
	d, ok := t.s.deals[id]
	if !ok {
		return models.ErrNotFound
	}
	d.ReceiptRef = &ref
	d.UpdatedAt = time.Now()
	return nil
}

func (t *memTx) CreateFund(ctx context.Context, f *models.EscrowFund) error {
	f.ID = uuid.New()
	f.CreatedAt = time.Now()
	fc := *f
	t.s.funds[f.DealID] = append(t.s.funds[f.DealID], &fc)
	return nil
}

func (t *memTx) ConfirmFunds(ctx context.Context, dealID uuid.UUID, fundedAt time.Time) error {
	for _, f := range t.s.funds[dealID] {
		if f.Status == models.FundStatusPending {
			f.Status = models.FundStatusConfirmed
			at := fundedAt
			f.FundedAt = &at
		}
	}
	return nil
}

func (t *memTx) RefundFunds(ctx context.Context, dealID uuid.UUID) error {
	for _, f := range t.s.funds[dealID] {
		f.Status = models.FundStatusRefunded
	}
	return nil
}

func (t *memTx) CreateDispute(ctx context.Context, d *models.Dispute) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	dc := *d
	t.s.disputes[d.ID] = &dc
	return nil
}

func (t *memTx) GetDisputeForUpdate(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	d, ok := t.s.disputes[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	dc := *d
	return &dc, nil
}

func (t *memTx) UpdateDispute(ctx context.Context, d *models.Dispute) error {
	if _, ok := t.s.disputes[d.ID]; !ok {
		return models.ErrNotFound
	}
	dc := *d
	t.s.disputes[d.ID] = &dc
	return nil
}

func (t *memTx) AppendActivity(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	t.s.activity[entry.DealID] = append(t.s.activity[entry.DealID], *entry)
	return nil
}

type stubAdmins struct {
	ids map[uuid.UUID]bool
}

func (a *stubAdmins) IsAdmin(userID uuid.UUID) bool { return a.ids[userID] }

type stubPublisher struct {
	published []events.Event
}

func (p *stubPublisher) Publish(ctx context.Context, stream string, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

type fixture struct {
	svc       *EscrowService
	store     *memStore
	publisher *stubPublisher
	initiator uuid.UUID
	recipient uuid.UUID
	admin     uuid.UUID
	stranger  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     newMemStore(),
		publisher: &stubPublisher{},
		initiator: uuid.New(),
		recipient: uuid.New(),
		admin:     uuid.New(),
		stranger:  uuid.New(),
	}
	admins := &stubAdmins{ids: map[uuid.UUID]bool{f.admin: true}}
	f.svc = NewEscrowService(f.store, admins, f.publisher, zap.NewNop())
	return f
}

func (f *fixture) mustCreateDeal(t *testing.T, amountCents int64) *models.Deal {
	t.Helper()
	deal, err := f.svc.CreateDeal(context.Background(), f.initiator, CreateDealInput{
		RecipientUserID: f.recipient,
		AmountCents:     amountCents,
		Currency:        "USD",
	})
	require.NoError(t, err)
	return deal
}

func actions(entries []models.ActivityLog) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Action)
	}
	return out
}

func TestCreateDeal_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateDeal(ctx, f.initiator, CreateDealInput{
		RecipientUserID: f.initiator, AmountCents: 100, Currency: "USD",
	})
	require.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.CreateDeal(ctx, f.initiator, CreateDealInput{
		RecipientUserID: f.recipient, AmountCents: 0, Currency: "USD",
	})
	require.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.CreateDeal(ctx, f.initiator, CreateDealInput{
		RecipientUserID: f.recipient, AmountCents: 100,
	})
	require.ErrorIs(t, err, models.ErrInvalidInput)

	deal := f.mustCreateDeal(t, 100)
	require.Equal(t, models.DealStatusDraft, deal.Status)
	require.Contains(t, actions(f.store.activity[deal.ID]), models.ActionDealCreated)
}

func TestSubmitFunding_MovesDealToFunding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deal := f.mustCreateDeal(t, 1000)

	ref := "receipts/2024/0001.pdf"
	fund, err := f.svc.SubmitFunding(ctx, deal.ID, f.initiator, SubmitFundingInput{
		Method: models.FundMethodBank, AmountCents: 1000, Reference: &ref,
	})
	require.NoError(t, err)
	require.Equal(t, models.FundStatusPending, fund.Status)
	require.Equal(t, "USD", fund.Currency) // inherited from the deal

	got, err := f.svc.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, models.DealStatusFunding, got.Status)
	require.NotNil(t, got.ReceiptRef)
	require.Equal(t, ref, *got.ReceiptRef)

	funds, err := f.svc.GetFunds(ctx, deal.ID)
	require.NoError(t, err)
	require.Len(t, funds, 1)
	require.Contains(t, actions(f.store.activity[deal.ID]), models.ActionDepositSubmitted)
}

func TestSubmitFunding_NonPartyFailsAtomically(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deal := f.mustCreateDeal(t, 1000)
	before := len(f.store.activity[deal.ID])

	_, err := f.svc.SubmitFunding(ctx, deal.ID, f.stranger, SubmitFundingInput{
		Method: models.FundMethodBank, AmountCents: 1000,
	})
	require.ErrorIs(t, err, models.ErrUnauthorized)

	funds, err := f.svc.GetFunds(ctx, deal.ID)
	require.NoError(t, err)
	require.Empty(t, funds)
	require.Len(t, f.store.activity[deal.ID], before)

	got, err := f.svc.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, models.DealStatusDraft, got.Status)
}

func TestSubmitFunding_RepeatAddsSecondFund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deal := f.mustCreateDeal(t, 1000)

	_, err := f.svc.SubmitFunding(ctx, deal.ID, f.initiator, SubmitFundingInput{
		Method: models.FundMethodBank, AmountCents: 600,
	})
	require.NoError(t, err)
	_, err = f.svc.SubmitFunding(ctx, deal.ID, f.recipient, SubmitFundingInput{
		Method: models.FundMethodCrypto, AmountCents: 400,
	})
	require.NoError(t, err)

	funds, err := f.svc.GetFunds(ctx, deal.ID)
	require.NoError(t, err)
	require.Len(t, funds, 2)

	got, err := f.svc.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, models.DealStatusFunding, got.Status)
}

func TestSubmitFunding_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deal := f.mustCreateDeal(t, 1000)

	_, err := f.svc.SubmitFunding(ctx, deal.ID, f.initiator, SubmitFundingInput{
		Method: "cash", AmountCents: 1000,
	})
	require.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.SubmitFunding(ctx, deal.ID, f.initiator, SubmitFundingInput{
		Method: models.FundMethodBank, AmountCents: -5,
	})
	require.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.SubmitFunding(ctx, deal.ID, f.initiator, SubmitFundingInput{
		Method: models.FundMethodBank, AmountCents: 1000, Currency: "EUR",
	})
	require.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.SubmitFunding(ctx, uuid.New(), f.initiator, SubmitFundingInput{
		Method: models.FundMethodBank, AmountCents: 1000,
	})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestSubmitFunding_ClosedDealConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deal := f.mustCreateDeal(t, 1000)
	require.NoError(t, f.svc.SetStatus(ctx, deal.ID, f.admin, models.DealStatusCompleted))

	_, err := f.svc.SubmitFunding(ctx, deal.ID, f.initiator, SubmitFundingInput{
		Method: models.FundMethodBank, AmountCents: 1000,
	})
	require.ErrorIs(t, err, models.ErrConflictingState)
}

func TestSetStatus_AdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deal := f.mustCreateDeal(t, 1000)

	err := f.svc.SetStatus(ctx, deal.ID, f.initiator, models.DealStatusFunded)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	err = f.svc.SetStatus(ctx, deal.ID, f.admin, models.DealStatusFunded)
	require.NoError(t, err)

	got, err := f.svc.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, models.DealStatusFunded, got.Status)
	require.Contains(t, actions(f.store.activity[deal.ID]), "status_changed_to_funded")
}

func TestSetStatus_RejectsUnknownAndDisputeStatuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deal := f.mustCreateDeal(t, 1000)

	for _, status := range []string{"bogus", models.DealStatusDisputed, models.DealStatusRefunded} {
		err := f.svc.SetStatus(ctx, deal.ID, f.admin, status)
		require.ErrorIs(t, err, models.ErrInvalidStatus, "status %q", status)
	}

	err := f.svc.SetStatus(ctx, uuid.New(), f.admin, models.DealStatusActive)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestSetStatus_FundedConfirmsOnlyThatDeal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dealA := f.mustCreateDeal(t, 1000)
	dealB := f.mustCreateDeal(t, 2000)
	for _, d := range []*models.Deal{dealA, dealB} {
		_, err := f.svc.SubmitFunding(ctx, d.ID, f.initiator, SubmitFundingInput{
			Method: models.FundMethodBank, AmountCents: d.AmountCents,
		})
		require.NoError(t, err)
	}

	require.NoError(t, f.svc.SetStatus(ctx, dealA.ID, f.admin, models.DealStatusFunded))

	fundsA, err := f.svc.GetFunds(ctx, dealA.ID)
	require.NoError(t, err)
	require.Equal(t, models.FundStatusConfirmed, fundsA[0].Status)
	require.NotNil(t, fundsA[0].FundedAt)

	fundsB, err := f.svc.GetFunds(ctx, dealB.ID)
	require.NoError(t, err)
	require.Equal(t, models.FundStatusPending, fundsB[0].Status)
	require.Nil(t, fundsB[0].FundedAt)
}

func TestOpenDispute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deal := f.mustCreateDeal(t, 1000)

	// not disputable before funded
	_, err := f.svc.OpenDispute(ctx, deal.ID, f.recipient, "never delivered")
	require.ErrorIs(t, err, models.ErrConflictingState)

	require.NoError(t, f.svc.SetStatus(ctx, deal.ID, f.admin, models.DealStatusFunded))

	_, err = f.svc.OpenDispute(ctx, deal.ID, f.stranger, "never delivered")
	require.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.svc.OpenDispute(ctx, deal.ID, f.recipient, "")
	require.ErrorIs(t, err, models.ErrInvalidInput)

	dispute, err := f.svc.OpenDispute(ctx, deal.ID, f.recipient, "never delivered")
	require.NoError(t, err)
	require.Equal(t, models.DisputeStatusOpen, dispute.Status)

	got, err := f.svc.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, models.DealStatusDisputed, got.Status)
	require.Contains(t, actions(f.store.activity[deal.ID]), models.ActionDisputeOpened)

	// a second dispute cannot be opened while one is pending
	_, err = f.svc.OpenDispute(ctx, deal.ID, f.initiator, "me too")
	require.ErrorIs(t, err, models.ErrConflictingState)
}

func fundedDisputedDeal(t *testing.T, f *fixture) (*models.Deal, *models.Dispute) {
	t.Helper()
	ctx := context.Background()
	deal := f.mustCreateDeal(t, 1000)
	_, err := f.svc.SubmitFunding(ctx, deal.ID, f.initiator, SubmitFundingInput{
		Method: models.FundMethodBank, AmountCents: 1000,
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.SetStatus(ctx, deal.ID, f.admin, models.DealStatusFunded))
	dispute, err := f.svc.OpenDispute(ctx, deal.ID, f.initiator, "buyer overpaid")
	require.NoError(t, err)
	return deal, dispute
}

func TestResolveDispute_RefundBuyer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deal, dispute := fundedDisputedDeal(t, f)

	err := f.svc.ResolveDispute(ctx, dispute.ID, f.admin, "buyer overpaid", models.ResolutionRefundBuyer)
	require.NoError(t, err)

	got, err := f.svc.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, models.DealStatusRefunded, got.Status)

	funds, err := f.svc.GetFunds(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, models.FundStatusRefunded, funds[0].Status)

	resolved, err := f.svc.GetDispute(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, models.DisputeStatusResolved, resolved.Status)
	require.NotNil(t, resolved.Resolution)
	require.Equal(t, models.ResolutionRefundBuyer, *resolved.Resolution)
	require.Equal(t, f.admin, *resolved.ResolverUserID)

	// exactly-once: the second resolution fails and changes nothing
	err = f.svc.ResolveDispute(ctx, dispute.ID, f.admin, "again", models.ResolutionReleaseSeller)
	require.ErrorIs(t, err, models.ErrConflictingState)

	funds, err = f.svc.GetFunds(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, models.FundStatusRefunded, funds[0].Status)
	got, err = f.svc.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, models.DealStatusRefunded, got.Status)
}

func TestResolveDispute_ReleaseSeller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deal, dispute := fundedDisputedDeal(t, f)

	err := f.svc.ResolveDispute(ctx, dispute.ID, f.admin, "delivery verified", models.ResolutionReleaseSeller)
	require.NoError(t, err)

	got, err := f.svc.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, models.DealStatusCompleted, got.Status)

	funds, err := f.svc.GetFunds(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, models.FundStatusConfirmed, funds[0].Status)
	require.Contains(t, actions(f.store.activity[deal.ID]), models.ActionDisputeResolved)
}

func TestResolveDispute_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, dispute := fundedDisputedDeal(t, f)

	err := f.svc.ResolveDispute(ctx, dispute.ID, f.admin, "", models.ResolutionRefundBuyer)
	require.ErrorIs(t, err, models.ErrInvalidInput)

	err = f.svc.ResolveDispute(ctx, dispute.ID, f.admin, "text", "split_even")
	require.ErrorIs(t, err, models.ErrInvalidInput)

	err = f.svc.ResolveDispute(ctx, dispute.ID, f.initiator, "text", models.ResolutionRefundBuyer)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	err = f.svc.ResolveDispute(ctx, uuid.New(), f.admin, "text", models.ResolutionRefundBuyer)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestEndToEndHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	deal := f.mustCreateDeal(t, 1000)
	require.Equal(t, models.DealStatusDraft, deal.Status)

	_, err := f.svc.SubmitFunding(ctx, deal.ID, f.initiator, SubmitFundingInput{
		Method: models.FundMethodBank, AmountCents: 1000,
	})
	require.NoError(t, err)

	balance, err := f.svc.GetBalance(ctx, f.recipient)
	require.NoError(t, err)
	require.Equal(t, int64(1000), balance.LockedCents)
	require.Equal(t, int64(0), balance.AvailableCents)

	require.NoError(t, f.svc.SetStatus(ctx, deal.ID, f.admin, models.DealStatusFunded))
	require.NoError(t, f.svc.SetStatus(ctx, deal.ID, f.admin, models.DealStatusCompleted))

	balance, err = f.svc.GetBalance(ctx, f.recipient)
	require.NoError(t, err)
	require.Equal(t, int64(0), balance.LockedCents)
	require.Equal(t, int64(1000), balance.AvailableCents)

	// the initiator holds nothing after completion
	balance, err = f.svc.GetBalance(ctx, f.initiator)
	require.NoError(t, err)
	require.Equal(t, int64(0), balance.LockedCents)
	require.Equal(t, int64(0), balance.AvailableCents)

	got := actions(f.store.activity[deal.ID])
	require.Equal(t, []string{
		models.ActionDealCreated,
		models.ActionDepositSubmitted,
		"status_changed_to_funded",
		"status_changed_to_completed",
	}, got)
}

func TestDealStatusAlwaysKnown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deal := f.mustCreateDeal(t, 1000)

	check := func() {
		got, err := f.svc.GetDeal(ctx, deal.ID)
		require.NoError(t, err)
		require.True(t, models.IsDealStatus(got.Status), "unknown status %q", got.Status)
	}

	check()
	_, err := f.svc.SubmitFunding(ctx, deal.ID, f.initiator, SubmitFundingInput{
		Method: models.FundMethodBank, AmountCents: 1000,
	})
	require.NoError(t, err)
	check()
	require.NoError(t, f.svc.SetStatus(ctx, deal.ID, f.admin, models.DealStatusFunded))
	check()
	dispute, err := f.svc.OpenDispute(ctx, deal.ID, f.recipient, "late")
	require.NoError(t, err)
	check()
	require.NoError(t, f.svc.ResolveDispute(ctx, dispute.ID, f.admin, "settled", models.ResolutionReleaseSeller))
	check()
}
