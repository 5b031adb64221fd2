package ledger

import (
	"context"

	"acente-backend/internal/models"
)

// DebtFilter - listDebts için desteklenen filtre alanları. Kapalı bir
// yapıdır: bilinmeyen filtre anahtarı diye bir şey yoktur. Dolu alanlar
// AND olarak kesişir.
type DebtFilter struct {
	BranchID   *uint
	SupplierID *uint
	Status     *models.DebtStatus
	Currency   *string
}

// PaymentFilter - listPayments filtreleri (AND)
type PaymentFilter struct {
	BranchID   *uint
	SupplierID *uint
	DebtID     *uint
	Currency   *string
}

// Store - Kayıt deposu okuma/yazma yüzeyi. Tüm hatalar ErrNotFound,
// ErrStoreUnavailable veya ValidationError olarak sınıflandırılır.
type Store interface {
	GetSupplier(ctx context.Context, id uint) (*models.Supplier, error)
	ListSuppliers(ctx context.Context, branchID uint) ([]models.Supplier, error)

	GetDebt(ctx context.Context, id uint) (*models.Debt, error)
	ListDebts(ctx context.Context, f DebtFilter) ([]models.Debt, error)
	CreateDebt(ctx context.Context, d *models.Debt) error
	SaveDebt(ctx context.Context, d *models.Debt) error
	DeleteDebt(ctx context.Context, id uint) error

	GetPayment(ctx context.Context, id uint) (*models.Payment, error)
	ListPayments(ctx context.Context, f PaymentFilter) ([]models.Payment, error)
	CreatePayment(ctx context.Context, p *models.Payment) error
	DeletePayment(ctx context.Context, id uint) error
}
