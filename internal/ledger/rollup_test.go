package ledger

import (
	"context"
	"testing"
	"time"

	"acente-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore - listDebts/listPayments çağrılarında önce failDebts /
// failPayments kadar ErrStoreUnavailable döner, sonra veri verir
type fakeStore struct {
	suppliers []models.Supplier
	debts     []models.Debt
	payments  []models.Payment

	failDebts    int
	failPayments int

	debtCalls    int
	paymentCalls int
}

func (f *fakeStore) GetSupplier(ctx context.Context, id uint) (*models.Supplier, error) {
	for _, s := range f.suppliers {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) ListSuppliers(ctx context.Context, branchID uint) ([]models.Supplier, error) {
	out := make([]models.Supplier, 0)
	for _, s := range f.suppliers {
		if s.BranchID == branchID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) GetDebt(ctx context.Context, id uint) (*models.Debt, error) {
	for _, d := range f.debts {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) ListDebts(ctx context.Context, filter DebtFilter) ([]models.Debt, error) {
	f.debtCalls++
	if f.debtCalls <= f.failDebts {
		return nil, ErrStoreUnavailable
	}
	out := make([]models.Debt, 0)
	for _, d := range f.debts {
		if filter.SupplierID != nil && d.SupplierID != *filter.SupplierID {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeStore) CreateDebt(ctx context.Context, d *models.Debt) error { return nil }
func (f *fakeStore) SaveDebt(ctx context.Context, d *models.Debt) error   { return nil }
func (f *fakeStore) DeleteDebt(ctx context.Context, id uint) error        { return nil }

func (f *fakeStore) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	return nil, ErrNotFound
}

func (f *fakeStore) ListPayments(ctx context.Context, filter PaymentFilter) ([]models.Payment, error) {
	f.paymentCalls++
	if f.paymentCalls <= f.failPayments {
		return nil, ErrStoreUnavailable
	}
	out := make([]models.Payment, 0)
	for _, p := range f.payments {
		if filter.SupplierID != nil && p.SupplierID != *filter.SupplierID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) CreatePayment(ctx context.Context, p *models.Payment) error { return nil }
func (f *fakeStore) DeletePayment(ctx context.Context, id uint) error           { return nil }

func newTestService(store Store) *Service {
	s := NewService(store)
	s.retryWait = time.Millisecond
	return s
}

func TestSupplierDetail(t *testing.T) {
	store := &fakeStore{
		suppliers: []models.Supplier{{ID: 7, BranchID: 1, Name: "Grand Otel"}},
		debts: []models.Debt{
			{ID: 1, SupplierID: 7, Amount: 1000, Currency: "TRY", Date: day(1)},
		},
		payments: []models.Payment{
			{ID: 10, SupplierID: 7, DebtID: debtID(1), Amount: 400, Currency: "TRY", Date: day(2)},
		},
	}

	view, err := newTestService(store).SupplierDetail(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Grand Otel", view.Supplier.Name)
	require.Len(t, view.Debts, 1)
	assert.Equal(t, float64(400), view.Debts[0].PaidAmount)
	assert.Equal(t, models.DebtStatusPartiallyPaid, view.Debts[0].Status)
}

func TestSupplierDetailNotFound(t *testing.T) {
	store := &fakeStore{}

	_, err := newTestService(store).SupplierDetail(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)

	// ErrNotFound yeniden denenmez
	assert.Equal(t, 0, store.debtCalls)
	assert.Equal(t, 0, store.paymentCalls)
}

func TestSupplierDetailRetriesTransientFailure(t *testing.T) {
	store := &fakeStore{
		suppliers: []models.Supplier{{ID: 7, BranchID: 1, Name: "Grand Otel"}},
		debts: []models.Debt{
			{ID: 1, SupplierID: 7, Amount: 1000, Currency: "TRY", Date: day(1)},
		},
		failDebts: 2, // iki geçici hata, üçüncü deneme başarılı
	}

	view, err := newTestService(store).SupplierDetail(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, view.Debts, 1)
	assert.Equal(t, 3, store.debtCalls)
}

func TestSupplierDetailGivesUpAfterRetries(t *testing.T) {
	store := &fakeStore{
		suppliers: []models.Supplier{{ID: 7, BranchID: 1, Name: "Grand Otel"}},
		failDebts: 10, // deneme hakkından fazla
	}

	_, err := newTestService(store).SupplierDetail(context.Background(), 7)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, 3, store.debtCalls) // ilk deneme + 2 yeniden deneme
}

func TestListSuppliersRollsUpEachSupplier(t *testing.T) {
	store := &fakeStore{
		suppliers: []models.Supplier{
			{ID: 7, BranchID: 1, Name: "Grand Otel"},
			{ID: 8, BranchID: 1, Name: "Ferah Transfer"},
			{ID: 9, BranchID: 2, Name: "Başka Şube"},
		},
		debts: []models.Debt{
			{ID: 1, SupplierID: 7, Amount: 1000, Currency: "TRY", Date: day(1)},
			{ID: 2, SupplierID: 8, Amount: 200, Currency: "USD", Date: day(1)},
		},
		payments: []models.Payment{
			{ID: 10, SupplierID: 7, DebtID: debtID(1), Amount: 1000, Currency: "TRY", Date: day(2)},
		},
	}

	views, err := newTestService(store).ListSuppliers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, models.DebtStatusPaid, views[0].Debts[0].Status)
	assert.Equal(t, float64(200), views[1].Balances[0].Outstanding)
}

func TestListSuppliersNoPartialResult(t *testing.T) {
	store := &fakeStore{
		suppliers: []models.Supplier{
			{ID: 7, BranchID: 1, Name: "Grand Otel"},
			{ID: 8, BranchID: 1, Name: "Ferah Transfer"},
		},
		failDebts: 100, // tüm denemeler başarısız
	}

	views, err := newTestService(store).ListSuppliers(context.Background(), 1)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Nil(t, views)
}

func TestWithRetryHonorsContextCancel(t *testing.T) {
	store := &fakeStore{
		suppliers: []models.Supplier{{ID: 7, BranchID: 1, Name: "Grand Otel"}},
		failDebts: 100,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(store).SupplierDetail(ctx, 7)
	assert.ErrorIs(t, err, context.Canceled)
}
