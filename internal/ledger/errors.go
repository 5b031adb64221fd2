package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound - Aranan kayıt (tedarikçi, borç, ödeme) yok
	ErrNotFound = errors.New("kayıt bulunamadı")

	// ErrStoreUnavailable - Veritabanı okuma/yazma başarısız. Sınırlı sayıda
	// yeniden denenebilir; asla boş sonuçla maskelenmez.
	ErrStoreUnavailable = errors.New("kayıt deposuna ulaşılamadı")
)

// ValidationError - Kullanıcıya gösterilebilecek doğrulama hatası
// (negatif tutar, para birimi uyuşmazlığı, eksik alan vs.)
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError - kısayol
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
