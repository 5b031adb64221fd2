package ledger

import (
	"testing"
	"time"

	"acente-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidCurrency(t *testing.T) {
	assert.True(t, ValidCurrency("TRY"))
	assert.True(t, ValidCurrency("USD"))
	assert.False(t, ValidCurrency("try"))
	assert.False(t, ValidCurrency("TL"))
	assert.False(t, ValidCurrency("EURO"))
	assert.False(t, ValidCurrency(""))
}

func TestValidateDebt(t *testing.T) {
	valid := models.Debt{SupplierID: 7, Amount: 100, Currency: "TRY", Date: day(1)}
	assert.NoError(t, ValidateDebt(&valid))

	cases := []struct {
		name  string
		mut   func(d *models.Debt)
		field string
	}{
		{"tedarikçi yok", func(d *models.Debt) { d.SupplierID = 0 }, "supplier_id"},
		{"sıfır tutar", func(d *models.Debt) { d.Amount = 0 }, "amount"},
		{"negatif tutar", func(d *models.Debt) { d.Amount = -5 }, "amount"},
		{"geçersiz para birimi", func(d *models.Debt) { d.Currency = "TL" }, "currency"},
		{"tarih yok", func(d *models.Debt) { d.Date = time.Time{} }, "date"},
		{"ödenen tutar borcu aşıyor", func(d *models.Debt) { d.PaidAmount = 200 }, "paid_amount"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := valid
			tc.mut(&d)
			err := ValidateDebt(&d)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestValidatePayment(t *testing.T) {
	target := models.Debt{ID: 1, SupplierID: 7, Amount: 500, Currency: "EUR", Date: day(1)}

	t.Run("genel ödeme borç hedefi olmadan geçerli", func(t *testing.T) {
		p := models.Payment{SupplierID: 7, Amount: 100, Currency: "TRY", Date: day(2)}
		assert.NoError(t, ValidatePayment(&p, nil))
	})

	t.Run("borca bağlı ödeme aynı para biriminde geçerli", func(t *testing.T) {
		p := models.Payment{SupplierID: 7, DebtID: debtID(1), Amount: 100, Currency: "EUR", Date: day(2)}
		assert.NoError(t, ValidatePayment(&p, &target))
	})

	t.Run("para birimi uyuşmazlığı reddedilir", func(t *testing.T) {
		p := models.Payment{SupplierID: 7, DebtID: debtID(1), Amount: 100, Currency: "USD", Date: day(2)}
		err := ValidatePayment(&p, &target)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "currency", ve.Field)
	})

	t.Run("başka tedarikçinin borcuna ödeme reddedilir", func(t *testing.T) {
		p := models.Payment{SupplierID: 8, DebtID: debtID(1), Amount: 100, Currency: "EUR", Date: day(2)}
		err := ValidatePayment(&p, &target)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "debt_id", ve.Field)
	})
}
