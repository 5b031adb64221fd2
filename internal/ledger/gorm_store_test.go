package ledger

import (
	"context"
	"testing"

	"acente-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStoreTestDB(t *testing.T) *GormStore {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Branch{}, &models.Supplier{}, &models.Debt{}, &models.Payment{})
	require.NoError(t, err)

	return NewGormStore(db)
}

func seedSupplier(t *testing.T, store *GormStore, branchID uint, name string) models.Supplier {
	supplier := models.Supplier{BranchID: branchID, Name: name}
	require.NoError(t, store.db.Create(&supplier).Error)
	return supplier
}

func TestGormStoreGetSupplier(t *testing.T) {
	store := setupStoreTestDB(t)
	ctx := context.Background()

	created := seedSupplier(t, store, 1, "Grand Otel")

	found, err := store.GetSupplier(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grand Otel", found.Name)

	_, err = store.GetSupplier(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStoreListSuppliersByBranch(t *testing.T) {
	store := setupStoreTestDB(t)
	ctx := context.Background()

	seedSupplier(t, store, 1, "Zirve Turizm")
	seedSupplier(t, store, 1, "Akdeniz Transfer")
	seedSupplier(t, store, 2, "Başka Şube")

	suppliers, err := store.ListSuppliers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, suppliers, 2)

	// İsim sırasına göre döner
	assert.Equal(t, "Akdeniz Transfer", suppliers[0].Name)
	assert.Equal(t, "Zirve Turizm", suppliers[1].Name)
}

func TestGormStoreListDebtsFilters(t *testing.T) {
	store := setupStoreTestDB(t)
	ctx := context.Background()

	sp := seedSupplier(t, store, 1, "Grand Otel")
	other := seedSupplier(t, store, 1, "Ferah Transfer")

	debts := []models.Debt{
		{BranchID: 1, SupplierID: sp.ID, Amount: 1000, Currency: "TRY", Status: models.DebtStatusUnpaid, Date: day(1)},
		{BranchID: 1, SupplierID: sp.ID, Amount: 200, Currency: "USD", Status: models.DebtStatusPaid, Date: day(2)},
		{BranchID: 1, SupplierID: other.ID, Amount: 500, Currency: "TRY", Status: models.DebtStatusUnpaid, Date: day(3)},
	}
	for i := range debts {
		require.NoError(t, store.CreateDebt(ctx, &debts[i]))
	}

	t.Run("tedarikçi filtresi", func(t *testing.T) {
		got, err := store.ListDebts(ctx, DebtFilter{SupplierID: &sp.ID})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("filtreler AND olarak kesişir", func(t *testing.T) {
		status := models.DebtStatusUnpaid
		currency := "TRY"
		got, err := store.ListDebts(ctx, DebtFilter{
			SupplierID: &sp.ID,
			Status:     &status,
			Currency:   &currency,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, float64(1000), got[0].Amount)
	})

	t.Run("boş filtre hepsini döner", func(t *testing.T) {
		got, err := store.ListDebts(ctx, DebtFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("tarih desc, id desc sıralı", func(t *testing.T) {
		got, err := store.ListDebts(ctx, DebtFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, day(3), got[0].Date.UTC())
		assert.Equal(t, day(1), got[2].Date.UTC())
	})
}

func TestGormStoreDeleteDebt(t *testing.T) {
	store := setupStoreTestDB(t)
	ctx := context.Background()

	sp := seedSupplier(t, store, 1, "Grand Otel")
	debt := models.Debt{BranchID: 1, SupplierID: sp.ID, Amount: 100, Currency: "TRY", Status: models.DebtStatusUnpaid, Date: day(1)}
	require.NoError(t, store.CreateDebt(ctx, &debt))

	require.NoError(t, store.DeleteDebt(ctx, debt.ID))

	_, err := store.GetDebt(ctx, debt.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// İkinci silme ErrNotFound döner
	assert.ErrorIs(t, store.DeleteDebt(ctx, debt.ID), ErrNotFound)
}

func TestGormStoreListPaymentsByDebt(t *testing.T) {
	store := setupStoreTestDB(t)
	ctx := context.Background()

	sp := seedSupplier(t, store, 1, "Grand Otel")
	debt := models.Debt{BranchID: 1, SupplierID: sp.ID, Amount: 1000, Currency: "TRY", Status: models.DebtStatusUnpaid, Date: day(1)}
	require.NoError(t, store.CreateDebt(ctx, &debt))

	linked := models.Payment{BranchID: 1, SupplierID: sp.ID, DebtID: &debt.ID, Amount: 400, Currency: "TRY", Date: day(2)}
	general := models.Payment{BranchID: 1, SupplierID: sp.ID, Amount: 100, Currency: "TRY", Date: day(3)}
	require.NoError(t, store.CreatePayment(ctx, &linked))
	require.NoError(t, store.CreatePayment(ctx, &general))

	got, err := store.ListPayments(ctx, PaymentFilter{DebtID: &debt.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, float64(400), got[0].Amount)

	all, err := store.ListPayments(ctx, PaymentFilter{SupplierID: &sp.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGormStoreRollupEndToEnd(t *testing.T) {
	store := setupStoreTestDB(t)
	ctx := context.Background()

	sp := seedSupplier(t, store, 1, "Grand Otel")
	debt := models.Debt{BranchID: 1, SupplierID: sp.ID, Amount: 1000, Currency: "TRY", Status: models.DebtStatusUnpaid, Date: day(1)}
	require.NoError(t, store.CreateDebt(ctx, &debt))

	payment := models.Payment{BranchID: 1, SupplierID: sp.ID, DebtID: &debt.ID, Amount: 300, Currency: "TRY", Date: day(2)}
	require.NoError(t, store.CreatePayment(ctx, &payment))

	view, err := NewService(store).SupplierDetail(ctx, sp.ID)
	require.NoError(t, err)

	require.Len(t, view.Debts, 1)
	assert.Equal(t, models.DebtStatusPartiallyPaid, view.Debts[0].Status)
	require.Len(t, view.Balances, 1)
	assert.Equal(t, float64(700), view.Balances[0].Outstanding)
}
