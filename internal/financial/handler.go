package financial

import (
	"fmt"
	"strings"
	"time"

	"acente-backend/internal/audit"
	"acente-backend/internal/auth"
	"acente-backend/internal/database"
	"acente-backend/internal/ledger"
	"acente-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreateFinancialRecordRequest struct {
	Type        string  `json:"type"` // "income" veya "expense"
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Method      string  `json:"method"` // "cash", "card", "transfer" (opsiyonel)
	Date        string  `json:"date"`   // "2025-12-09"
	Description string  `json:"description"`
	BranchID    *uint   `json:"branch_id"` // super_admin için opsiyonel
}

type FinancialRecordResponse struct {
	ID          uint    `json:"id"`
	BranchID    uint    `json:"branch_id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Method      string  `json:"method"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

type MonthlyCurrencySummary struct {
	Currency string  `json:"currency"`
	Income   float64 `json:"income"`
	Expense  float64 `json:"expense"`
	Net      float64 `json:"net"`
}

type MonthlyFinancialSummaryResponse struct {
	BranchID  uint                     `json:"branch_id"`
	Year      int                      `json:"year"`
	Month     int                      `json:"month"`
	Summaries []MonthlyCurrencySummary `json:"summaries"`
}

func recordResponse(r models.FinancialRecord) FinancialRecordResponse {
	return FinancialRecordResponse{
		ID:          r.ID,
		BranchID:    r.BranchID,
		Type:        string(r.Type),
		Amount:      r.Amount,
		Currency:    r.Currency,
		Method:      r.Method,
		Date:        r.Date.Format("2006-01-02"),
		Description: r.Description,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}

// -------------------------
// Yardımcılar
// -------------------------

func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	return userID, user.Name, nil
}

func resolveBranchIDFromBodyOrRole(c *fiber.Ctx, bodyBranchID *uint) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleBranchAdmin {
		bVal := c.Locals(auth.CtxBranchIDKey)
		bPtr, ok := bVal.(*uint)
		if !ok || bPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
		}
		return *bPtr, nil
	}

	if bodyBranchID == nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "branch_id zorunlu")
	}
	return *bodyBranchID, nil
}

func resolveBranchIDFromQueryOrRole(c *fiber.Ctx) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleBranchAdmin {
		bVal := c.Locals(auth.CtxBranchIDKey)
		bPtr, ok := bVal.(*uint)
		if !ok || bPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
		}
		return *bPtr, nil
	}

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

func requireBranchAccess(c *fiber.Ctx, branchID uint) error {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if ok && role == models.RoleBranchAdmin {
		bVal := c.Locals(auth.CtxBranchIDKey)
		bPtr, ok := bVal.(*uint)
		if !ok || bPtr == nil || *bPtr != branchID {
			return fiber.NewError(fiber.StatusForbidden, "Bu kayda erişim yetkiniz yok")
		}
	}
	return nil
}

// -------------------------
// Financial Record CRUD
// -------------------------

// POST /api/financial-records
func CreateFinancialRecordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateFinancialRecordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		// Validasyon
		if body.Type != string(models.FinancialRecordIncome) && body.Type != string(models.FinancialRecordExpense) {
			return fiber.NewError(fiber.StatusBadRequest, "type 'income' veya 'expense' olmalı")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount 0'dan büyük olmalı")
		}
		currency := strings.ToUpper(strings.TrimSpace(body.Currency))
		if !ledger.ValidCurrency(currency) {
			return fiber.NewError(fiber.StatusBadRequest, "currency 3 harfli kod olmalı (örn. TRY, USD)")
		}
		method := strings.TrimSpace(body.Method)
		if method != "" && method != "cash" && method != "card" && method != "transfer" {
			return fiber.NewError(fiber.StatusBadRequest, "method 'cash', 'card' veya 'transfer' olmalı")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		record := models.FinancialRecord{
			BranchID:    branchID,
			Type:        models.FinancialRecordType(body.Type),
			Amount:      body.Amount,
			Currency:    currency,
			Method:      method,
			Date:        d,
			Description: strings.TrimSpace(body.Description),
		}

		if err := database.DB.Create(&record).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt oluşturulamadı")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			typeLabel := "Gelir"
			if record.Type == models.FinancialRecordExpense {
				typeLabel = "Gider"
			}
			branchIDForLog := &record.BranchID
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "financial_record",
				EntityID:    record.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("%s eklendi: %.2f %s", typeLabel, record.Amount, record.Currency),
				Before:      nil,
				After:       record,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(recordResponse(record))
	}
}

// GET /api/financial-records?branch_id=...&type=...&currency=...&year=...&month=...
func ListFinancialRecordsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.FinancialRecord{}).Where("branch_id = ?", branchID)

		if typeFilter := c.Query("type"); typeFilter != "" {
			if typeFilter != string(models.FinancialRecordIncome) && typeFilter != string(models.FinancialRecordExpense) {
				return fiber.NewError(fiber.StatusBadRequest, "type 'income' veya 'expense' olmalı")
			}
			dbq = dbq.Where("type = ?", typeFilter)
		}

		if currency := c.Query("currency"); currency != "" {
			cur := strings.ToUpper(strings.TrimSpace(currency))
			if !ledger.ValidCurrency(cur) {
				return fiber.NewError(fiber.StatusBadRequest, "currency 3 harfli kod olmalı")
			}
			dbq = dbq.Where("currency = ?", cur)
		}

		if yearStr := c.Query("year"); yearStr != "" {
			year := c.QueryInt("year")
			month := c.QueryInt("month", 0)
			if month != 0 {
				if month < 1 || month > 12 {
					return fiber.NewError(fiber.StatusBadRequest, "month 1-12 arasında olmalı")
				}
				from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
				dbq = dbq.Where("date >= ? AND date < ?", from, from.AddDate(0, 1, 0))
			} else {
				from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
				dbq = dbq.Where("date >= ? AND date < ?", from, from.AddDate(1, 0, 0))
			}
		}

		var records []models.FinancialRecord
		if err := dbq.Order("date desc, id desc").Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıtlar listelenemedi")
		}

		resp := make([]FinancialRecordResponse, 0, len(records))
		for _, r := range records {
			resp = append(resp, recordResponse(r))
		}

		return c.JSON(resp)
	}
}

// DELETE /api/financial-records/:id
func DeleteFinancialRecordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var record models.FinancialRecord
		if err := database.DB.First(&record, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kayıt bulunamadı")
		}

		if err := requireBranchAccess(c, record.BranchID); err != nil {
			return err
		}

		before := record

		if err := database.DB.Delete(&record).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt silinemedi")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			branchIDForLog := &record.BranchID
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "financial_record",
				EntityID:    record.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Finansal kayıt silindi: %.2f %s", record.Amount, record.Currency),
				Before:      before,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/financial-summary/monthly?branch_id=...&year=2025&month=12
// Gelir ve gider para birimi bazında kovalanır; birimler arası toplam
// alınmaz
func MonthlyFinancialSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		year := c.QueryInt("year", time.Now().Year())
		month := c.QueryInt("month", int(time.Now().Month()))
		if month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "month 1-12 arasında olmalı")
		}

		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0)

		var records []models.FinancialRecord
		if err := database.DB.
			Where("branch_id = ? AND date >= ? AND date < ?", branchID, from, to).
			Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}

		incomes := make([]models.FinancialRecord, 0)
		expenses := make([]models.FinancialRecord, 0)
		for _, r := range records {
			if r.Type == models.FinancialRecordIncome {
				incomes = append(incomes, r)
			} else {
				expenses = append(expenses, r)
			}
		}

		currencyOf := func(r models.FinancialRecord) string { return r.Currency }
		amountOf := func(r models.FinancialRecord) float64 { return r.Amount }
		incomeBuckets := ledger.GroupByCurrency(incomes, currencyOf, amountOf)
		expenseBuckets := ledger.GroupByCurrency(expenses, currencyOf, amountOf)

		summaries := make([]MonthlyCurrencySummary, 0, len(incomeBuckets))
		index := make(map[string]int)
		for _, b := range incomeBuckets {
			index[b.Currency] = len(summaries)
			summaries = append(summaries, MonthlyCurrencySummary{Currency: b.Currency, Income: b.Total})
		}
		for _, b := range expenseBuckets {
			i, ok := index[b.Currency]
			if !ok {
				i = len(summaries)
				index[b.Currency] = i
				summaries = append(summaries, MonthlyCurrencySummary{Currency: b.Currency})
			}
			summaries[i].Expense = b.Total
		}
		for i := range summaries {
			summaries[i].Net = summaries[i].Income - summaries[i].Expense
		}

		return c.JSON(MonthlyFinancialSummaryResponse{
			BranchID:  branchID,
			Year:      year,
			Month:     month,
			Summaries: summaries,
		})
	}
}
