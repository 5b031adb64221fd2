package supplier

import (
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

type CreateDebtRequest struct {
	SupplierID  uint    `json:"supplier_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"` // "TRY", "USD", "EUR"
	Date        string  `json:"date"`     // "2025-12-09"
	Description string  `json:"description"`
	BranchID    *uint   `json:"branch_id"` // super_admin için opsiyonel
}

type DebtResponse struct {
	ID                   uint    `json:"id"`
	BranchID             uint    `json:"branch_id"`
	SupplierID           uint    `json:"supplier_id"`
	Amount               float64 `json:"amount"`
	Currency             string  `json:"currency"`
	Status               string  `json:"status"`
	PaidAmount           float64 `json:"paid_amount"`
	Remaining            float64 `json:"remaining"`
	MismatchedPaymentIDs []uint  `json:"mismatched_payment_ids,omitempty"`
	Date                 string  `json:"date"`
	Description          string  `json:"description"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
}

func debtResponse(d models.Debt) DebtResponse {
	remaining := d.Amount - d.PaidAmount
	if remaining < 0 {
		remaining = 0
	}
	return DebtResponse{
		ID:          d.ID,
		BranchID:    d.BranchID,
		SupplierID:  d.SupplierID,
		Amount:      d.Amount,
		Currency:    d.Currency,
		Status:      string(d.Status),
		PaidAmount:  d.PaidAmount,
		Remaining:   remaining,
		Date:        d.Date.Format("2006-01-02"),
		Description: d.Description,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   d.UpdatedAt.Format(time.RFC3339),
	}
}

func debtResponseFromView(v ledger.DebtView) DebtResponse {
	resp := debtResponse(v.Debt)
	// Mutabakat her okumada yeniden hesaplar; kayıtlı kopyayı değil
	// hesaplanan değerleri döndür
	resp.PaidAmount = v.PaidAmount
	resp.Status = string(v.Status)
	resp.Remaining = v.Debt.Amount - v.PaidAmount
	if resp.Remaining < 0 {
		resp.Remaining = 0
	}
	resp.MismatchedPaymentIDs = v.MismatchedPaymentIDs
	return resp
}

// -------------------------
// Debt CRUD
// -------------------------

// POST /api/debts
func CreateDebtHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateDebtRequest
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

		// Tedarikçi var mı ve bu şubeye mi ait?
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

		debt := models.Debt{
			BranchID:    branchID,
			SupplierID:  body.SupplierID,
			Amount:      body.Amount,
			Currency:    strings.ToUpper(strings.TrimSpace(body.Currency)),
			Status:      models.DebtStatusUnpaid,
			Date:        d,
			Description: strings.TrimSpace(body.Description),
		}

		if err := ledger.ValidateDebt(&debt); err != nil {
			return ledgerErr(err, "Borç doğrulanamadı")
		}

		if err := store.CreateDebt(c.Context(), &debt); err != nil {
			return ledgerErr(err, "Borç kaydedilemedi")
		}

		// Audit log yaz
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			branchIDForLog := &debt.BranchID
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "debt",
				EntityID:    debt.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Borç eklendi: %.2f %s - %s", debt.Amount, debt.Currency, sp.Name),
				Before:      nil,
				After:       debt,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(debtResponse(debt))
	}
}

// GET /api/debts?branch_id=...&supplier_id=...&status=...&currency=...
// Filtreler AND olarak kesişir; sıralama tarih desc, id desc.
func ListDebtsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		filter := ledger.DebtFilter{BranchID: &branchID}

		if sidStr := c.Query("supplier_id"); sidStr != "" {
			var sid uint
			if _, err := fmt.Sscan(sidStr, &sid); err != nil || sid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "supplier_id geçersiz")
			}
			filter.SupplierID = &sid
		}

		if statusStr := c.Query("status"); statusStr != "" {
			status := models.DebtStatus(statusStr)
			if status != models.DebtStatusUnpaid && status != models.DebtStatusPartiallyPaid && status != models.DebtStatusPaid {
				return fiber.NewError(fiber.StatusBadRequest, "status 'unpaid', 'partially_paid' veya 'paid' olmalı")
			}
			filter.Status = &status
		}

		if currency := c.Query("currency"); currency != "" {
			cur := strings.ToUpper(strings.TrimSpace(currency))
			if !ledger.ValidCurrency(cur) {
				return fiber.NewError(fiber.StatusBadRequest, "currency 3 harfli kod olmalı")
			}
			filter.Currency = &cur
		}

		debts, err := ledgerStore().ListDebts(c.Context(), filter)
		if err != nil {
			return ledgerErr(err, "Borçlar listelenemedi")
		}

		resp := make([]DebtResponse, 0, len(debts))
		for _, d := range debts {
			resp = append(resp, debtResponse(d))
		}

		return c.JSON(resp)
	}
}

// DELETE /api/debts/:id
// Borca bağlı ödemeler silinmez; sahipsiz kalır ve mutabakatta genel
// ödeme olarak sayılır.
func DeleteDebtHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		store := ledgerStore()

		debt, err := store.GetDebt(c.Context(), uint(id))
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Borç bulunamadı")
			}
			return ledgerErr(err, "Borç getirilemedi")
		}

		if err := requireBranchAccess(c, debt.BranchID); err != nil {
			return err
		}

		if err := store.DeleteDebt(c.Context(), debt.ID); err != nil {
			return ledgerErr(err, "Borç silinemedi")
		}

		// Audit log
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			branchIDForLog := &debt.BranchID
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "debt",
				EntityID:    debt.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Borç silindi: %.2f %s", debt.Amount, debt.Currency),
				Before:      debt,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
