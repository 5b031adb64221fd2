package dashboard

import (
	"errors"
	"fmt"

	"acente-backend/internal/auth"
	"acente-backend/internal/database"
	"acente-backend/internal/ledger"
	"acente-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SupplierDebtSummary struct {
	SupplierID   uint                     `json:"supplier_id"`
	SupplierName string                   `json:"supplier_name"`
	Balances     []ledger.CurrencyBalance `json:"balances"`
}

type DebtOverviewResponse struct {
	BranchID       uint                     `json:"branch_id"`
	Suppliers      []SupplierDebtSummary    `json:"suppliers"`
	BranchBalances []ledger.CurrencyBalance `json:"branch_balances"` // Şubenin tüm tedarikçileri, para birimi bazında
}

// context'ten branch id çıkar (branch_admin için JWT, super_admin için query param)
// super_admin için ?branch_id=1 zorunlu
func getBranchIDFromContext(c *fiber.Ctx) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleBranchAdmin {
		branchIDVal := c.Locals(auth.CtxBranchIDKey)
		branchIDPtr, ok := branchIDVal.(*uint)
		if !ok || branchIDPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
		}
		return *branchIDPtr, nil
	}

	// super_admin
	bidStr := c.Query("branch_id")
	if bidStr == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "branch_id zorunlu")
	}
	var bid uint
	if _, err := fmt.Sscan(bidStr, &bid); err != nil || bid == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "branch_id geçersiz")
	}
	return bid, nil
}

// GET /api/dashboard/debt-overview?branch_id=1
// Şubenin tedarikçi borç durumu: tedarikçi bazında ve şube genelinde
// para birimi ayrı ayrı toplanır
func DebtOverviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := getBranchIDFromContext(c)
		if err != nil {
			return err
		}

		service := ledger.NewService(ledger.NewGormStore(database.DB))
		views, err := service.ListSuppliers(c.Context(), branchID)
		if err != nil {
			if errors.Is(err, ledger.ErrStoreUnavailable) {
				return fiber.NewError(fiber.StatusServiceUnavailable, "Veritabanına şu an ulaşılamıyor, lütfen tekrar deneyin")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Borç özeti hesaplanamadı")
		}

		suppliers := make([]SupplierDebtSummary, 0, len(views))
		branchTotals := make([]ledger.CurrencyBalance, 0)
		index := make(map[string]int)

		for _, v := range views {
			suppliers = append(suppliers, SupplierDebtSummary{
				SupplierID:   v.Supplier.ID,
				SupplierName: v.Supplier.Name,
				Balances:     v.Balances,
			})

			for _, b := range v.Balances {
				i, ok := index[b.Currency]
				if !ok {
					i = len(branchTotals)
					index[b.Currency] = i
					branchTotals = append(branchTotals, ledger.CurrencyBalance{Currency: b.Currency})
				}
				branchTotals[i].TotalDebt += b.TotalDebt
				branchTotals[i].TotalPaid += b.TotalPaid
				branchTotals[i].Outstanding += b.Outstanding
				branchTotals[i].Net += b.Net
			}
		}

		return c.JSON(DebtOverviewResponse{
			BranchID:       branchID,
			Suppliers:      suppliers,
			BranchBalances: branchTotals,
		})
	}
}
