package ledger

import (
	"regexp"

	"acente-backend/internal/models"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidCurrency - "TRY", "USD" gibi 3 harfli kod bekler
func ValidCurrency(code string) bool {
	return currencyPattern.MatchString(code)
}

// ValidateDebt - Yeni borç kaydının alanlarını doğrular
func ValidateDebt(d *models.Debt) error {
	if d.SupplierID == 0 {
		return NewValidationError("supplier_id", "tedarikçi zorunlu")
	}
	if d.Amount <= 0 {
		return NewValidationError("amount", "tutar 0'dan büyük olmalı")
	}
	if !ValidCurrency(d.Currency) {
		return NewValidationError("currency", "para birimi 3 harfli kod olmalı (örn. TRY, USD)")
	}
	if d.Date.IsZero() {
		return NewValidationError("date", "tarih zorunlu")
	}
	if d.PaidAmount < 0 || d.PaidAmount > d.Amount {
		return NewValidationError("paid_amount", "ödenen tutar 0 ile borç tutarı arasında olmalı")
	}
	return nil
}

// ValidatePayment - Yeni ödeme kaydını doğrular. target, ödemenin bağlı
// olduğu borçtur; ödeme bir borca bağlı değilse nil geçilir. Borçla
// ödeme para birimi farklıysa veri girişi hatasıdır ve kayıt reddedilir.
func ValidatePayment(p *models.Payment, target *models.Debt) error {
	if p.SupplierID == 0 {
		return NewValidationError("supplier_id", "tedarikçi zorunlu")
	}
	if p.Amount <= 0 {
		return NewValidationError("amount", "tutar 0'dan büyük olmalı")
	}
	if !ValidCurrency(p.Currency) {
		return NewValidationError("currency", "para birimi 3 harfli kod olmalı (örn. TRY, USD)")
	}
	if p.Date.IsZero() {
		return NewValidationError("date", "tarih zorunlu")
	}
	if target != nil {
		if p.SupplierID != target.SupplierID {
			return NewValidationError("debt_id", "borç başka bir tedarikçiye ait")
		}
		if p.Currency != target.Currency {
			return NewValidationError("currency", "ödeme para birimi borcun para birimiyle aynı olmalı")
		}
	}
	return nil
}
