package ledger

import (
	"context"
	"errors"
	"fmt"

	"acente-backend/internal/models"

	"gorm.io/gorm"
)

// GormStore - Store arayüzünün gorm/Postgres gerçeklemesi
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// storeErr - gorm hatalarını ledger hata türlerine çevirir
func storeErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func (s *GormStore) GetSupplier(ctx context.Context, id uint) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := s.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, storeErr(err)
	}
	return &supplier, nil
}

func (s *GormStore) ListSuppliers(ctx context.Context, branchID uint) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	if err := s.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("name asc").
		Find(&suppliers).Error; err != nil {
		return nil, storeErr(err)
	}
	return suppliers, nil
}

func (s *GormStore) GetDebt(ctx context.Context, id uint) (*models.Debt, error) {
	var debt models.Debt
	if err := s.db.WithContext(ctx).First(&debt, "id = ?", id).Error; err != nil {
		return nil, storeErr(err)
	}
	return &debt, nil
}

func (s *GormStore) ListDebts(ctx context.Context, f DebtFilter) ([]models.Debt, error) {
	q := s.db.WithContext(ctx).Model(&models.Debt{})
	if f.BranchID != nil {
		q = q.Where("branch_id = ?", *f.BranchID)
	}
	if f.SupplierID != nil {
		q = q.Where("supplier_id = ?", *f.SupplierID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Currency != nil {
		q = q.Where("currency = ?", *f.Currency)
	}

	var debts []models.Debt
	if err := q.Order("date desc, id desc").Find(&debts).Error; err != nil {
		return nil, storeErr(err)
	}
	return debts, nil
}

func (s *GormStore) CreateDebt(ctx context.Context, d *models.Debt) error {
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *GormStore) SaveDebt(ctx context.Context, d *models.Debt) error {
	if err := s.db.WithContext(ctx).Save(d).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *GormStore) DeleteDebt(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Debt{}, "id = ?", id)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, storeErr(err)
	}
	return &payment, nil
}

func (s *GormStore) ListPayments(ctx context.Context, f PaymentFilter) ([]models.Payment, error) {
	q := s.db.WithContext(ctx).Model(&models.Payment{})
	if f.BranchID != nil {
		q = q.Where("branch_id = ?", *f.BranchID)
	}
	if f.SupplierID != nil {
		q = q.Where("supplier_id = ?", *f.SupplierID)
	}
	if f.DebtID != nil {
		q = q.Where("debt_id = ?", *f.DebtID)
	}
	if f.Currency != nil {
		q = q.Where("currency = ?", *f.Currency)
	}

	var payments []models.Payment
	if err := q.Order("date desc, id desc").Find(&payments).Error; err != nil {
		return nil, storeErr(err)
	}
	return payments, nil
}

func (s *GormStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *GormStore) DeletePayment(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Payment{}, "id = ?", id)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
