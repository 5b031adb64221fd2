package supplier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"acente-backend/internal/audit"
	"acente-backend/internal/ledger"
	"acente-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreatePaymentRequest struct {
	SupplierID  uint    `json:"supplier_id"`
	DebtID      *uint   `json:"debt_id"` // Opsiyonel: belirli bir borca ödeme
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Date        string  `json:"date"` // "2025-12-09"
	Description string  `json:"description"`
	BranchID    *uint   `json:"branch_id"` // super_admin için opsiyonel
}

type PaymentResponse struct {
	ID          uint    `json:"id"`
	BranchID    uint    `json:"branch_id"`
	SupplierID  uint    `json:"supplier_id"`
	DebtID      *uint   `json:"debt_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

func paymentResponse(p models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		BranchID:    p.BranchID,
		SupplierID:  p.SupplierID,
		DebtID:      p.DebtID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Date:        p.Date.Format("2006-01-02"),
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

// refreshDebtStatus - Ödeme eklendiğinde/silindiğinde borcun kayıtlı
// paid_amount/status kopyasını günceller. Bu kopya ekran ve status
// filtresi içindir; asıl kaynak her okumada mutabakatla hesaplanır.
// Borç silinmişse sessizce geçilir (ödeme sahipsiz kalmıştır).
func refreshDebtStatus(ctx context.Context, store ledger.Store, debtID uint) error {
	debt, err := store.GetDebt(ctx, debtID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil
		}
		return err
	}

	payments, err := store.ListPayments(ctx, ledger.PaymentFilter{DebtID: &debtID, Currency: &debt.Currency})
	if err != nil {
		return err
	}

	paid := 0.0
	for _, p := range payments {
		paid += p.Amount
	}

	debt.PaidAmount = paid
	debt.Status = ledger.StatusFor(debt.Amount, paid)
	return store.SaveDebt(ctx, debt)
}

// -------------------------
// Payment CRUD
// -------------------------

// POST /api/payments
func CreatePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		store := ledgerStore()

		sp, err := store.GetSupplier(c.Context(), body.SupplierID)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
			}
			return ledgerErr(err, "Tedarikçi kontrol edilemedi")
		}
		if sp.BranchID != branchID {
			return fiber.NewError(fiber.StatusForbidden, "Tedarikçi başka bir şubeye ait")
		}

		payment := models.Payment{
			BranchID:    branchID,
			SupplierID:  body.SupplierID,
			DebtID:      body.DebtID,
			Amount:      body.Amount,
			Currency:    strings.ToUpper(strings.TrimSpace(body.Currency)),
			Date:        d,
			Description: strings.TrimSpace(body.Description),
		}

		// Borca bağlı ödemede borcun varlığı ve para birimi uyumu aranır
		var target *models.Debt
		if body.DebtID != nil {
			target, err = store.GetDebt(c.Context(), *body.DebtID)
			if err != nil {
				if errors.Is(err, ledger.ErrNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "Borç bulunamadı")
				}
				return ledgerErr(err, "Borç kontrol edilemedi")
			}
		}

		if err := ledger.ValidatePayment(&payment, target); err != nil {
			return ledgerErr(err, "Ödeme doğrulanamadı")
		}

		if err := store.CreatePayment(c.Context(), &payment); err != nil {
			return ledgerErr(err, "Ödeme kaydedilemedi")
		}

		if payment.DebtID != nil {
			if err := refreshDebtStatus(c.Context(), store, *payment.DebtID); err != nil {
				return ledgerErr(err, "Borç durumu güncellenemedi")
			}
		}

		// Audit log
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			branchIDForLog := &payment.BranchID
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "payment",
				EntityID:    payment.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Ödeme eklendi: %.2f %s - %s", payment.Amount, payment.Currency, sp.Name),
				Before:      nil,
				After:       payment,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(paymentResponse(payment))
	}
}

// GET /api/payments?branch_id=...&supplier_id=...&currency=...&debt_id=...
func ListPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		filter := ledger.PaymentFilter{BranchID: &branchID}

		if sidStr := c.Query("supplier_id"); sidStr != "" {
			var sid uint
			if _, err := fmt.Sscan(sidStr, &sid); err != nil || sid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "supplier_id geçersiz")
			}
			filter.SupplierID = &sid
		}

		if didStr := c.Query("debt_id"); didStr != "" {
			var did uint
			if _, err := fmt.Sscan(didStr, &did); err != nil || did == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "debt_id geçersiz")
			}
			filter.DebtID = &did
		}

		if currency := c.Query("currency"); currency != "" {
			cur := strings.ToUpper(strings.TrimSpace(currency))
			if !ledger.ValidCurrency(cur) {
				return fiber.NewError(fiber.StatusBadRequest, "currency 3 harfli kod olmalı")
			}
			filter.Currency = &cur
		}

		payments, err := ledgerStore().ListPayments(c.Context(), filter)
		if err != nil {
			return ledgerErr(err, "Ödemeler listelenemedi")
		}

		resp := make([]PaymentResponse, 0, len(payments))
		for _, p := range payments {
			resp = append(resp, paymentResponse(p))
		}

		return c.JSON(resp)
	}
}

// DELETE /api/payments/:id
func DeletePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		store := ledgerStore()

		payment, err := store.GetPayment(c.Context(), uint(id))
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Ödeme bulunamadı")
			}
			return ledgerErr(err, "Ödeme getirilemedi")
		}

		if err := requireBranchAccess(c, payment.BranchID); err != nil {
			return err
		}

		if err := store.DeletePayment(c.Context(), payment.ID); err != nil {
			return ledgerErr(err, "Ödeme silinemedi")
		}

		if payment.DebtID != nil {
			if err := refreshDebtStatus(c.Context(), store, *payment.DebtID); err != nil {
				return ledgerErr(err, "Borç durumu güncellenemedi")
			}
		}

		// Audit log
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			branchIDForLog := &payment.BranchID
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "payment",
				EntityID:    payment.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Ödeme silindi: %.2f %s", payment.Amount, payment.Currency),
				Before:      payment,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
