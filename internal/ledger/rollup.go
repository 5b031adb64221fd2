package ledger

import (
	"context"
	"errors"
	"time"

	"acente-backend/internal/models"

	"golang.org/x/sync/errgroup"
)

// SupplierView - Dashboard'un tükettiği tedarikçi görünümü: temel kayıt
// + her okumada yeniden hesaplanan mutabakat. Türetilmiş alanlar asla
// kalıcı kaynak kabul edilmez.
type SupplierView struct {
	Supplier models.Supplier `json:"supplier"`
	Reconciliation
}

// Service - Rollup servisi. Her çağrı depodan taze veri çekip saf
// fetch -> reconcile -> aggregate hattını çalıştırır; çağrılar arasında
// paylaşılan durum yoktur, cache yoktur.
type Service struct {
	store      Store
	maxRetries int
	retryWait  time.Duration
}

func NewService(store Store) *Service {
	return &Service{
		store:      store,
		maxRetries: 2, // sadece ErrStoreUnavailable için
		retryWait:  100 * time.Millisecond,
	}
}

// withRetry - Depo okumasını sınırlı sayıda yeniden dener. Sadece
// ErrStoreUnavailable yeniden denenir; ErrNotFound ve doğrulama
// hataları anında döner.
func (s *Service) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil || !errors.Is(lastErr, ErrStoreUnavailable) {
			return lastErr
		}

		if attempt < s.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retryWait * time.Duration(1<<attempt)):
			}
		}
	}
	return lastErr
}

// fetchLedger - Borç ve ödeme listelerini paralel çeker (fan-out) ve
// ikisi de tamamlanmadan dönmez (fan-in). Biri başarısız olursa rollup
// tamamen iptal edilir; kısmi sonuç dönülmez.
func (s *Service) fetchLedger(ctx context.Context, supplierID uint) ([]models.Debt, []models.Payment, error) {
	var (
		debts    []models.Debt
		payments []models.Payment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.withRetry(gctx, func() error {
			d, err := s.store.ListDebts(gctx, DebtFilter{SupplierID: &supplierID})
			if err != nil {
				return err
			}
			debts = d
			return nil
		})
	})
	g.Go(func() error {
		return s.withRetry(gctx, func() error {
			p, err := s.store.ListPayments(gctx, PaymentFilter{SupplierID: &supplierID})
			if err != nil {
				return err
			}
			payments = p
			return nil
		})
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return debts, payments, nil
}

// SupplierDetail - Tek tedarikçinin tam görünümü
func (s *Service) SupplierDetail(ctx context.Context, supplierID uint) (*SupplierView, error) {
	var supplier *models.Supplier
	err := s.withRetry(ctx, func() error {
		sp, err := s.store.GetSupplier(ctx, supplierID)
		if err != nil {
			return err
		}
		supplier = sp
		return nil
	})
	if err != nil {
		return nil, err
	}

	debts, payments, err := s.fetchLedger(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	return &SupplierView{
		Supplier:       *supplier,
		Reconciliation: Reconcile(debts, payments),
	}, nil
}

// ListSuppliers - Şubenin tüm tedarikçileri, her biri rollup uygulanmış
// halde. O(n*m) bir işlemdir; her çağrıda yeniden okur ve hesaplar.
func (s *Service) ListSuppliers(ctx context.Context, branchID uint) ([]SupplierView, error) {
	var suppliers []models.Supplier
	err := s.withRetry(ctx, func() error {
		list, err := s.store.ListSuppliers(ctx, branchID)
		if err != nil {
			return err
		}
		suppliers = list
		return nil
	})
	if err != nil {
		return nil, err
	}

	views := make([]SupplierView, 0, len(suppliers))
	for _, supplier := range suppliers {
		debts, payments, err := s.fetchLedger(ctx, supplier.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, SupplierView{
			Supplier:       supplier,
			Reconciliation: Reconcile(debts, payments),
		})
	}
	return views, nil
}
