package supplier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"acente-backend/internal/auth"
	"acente-backend/internal/database"
	"acente-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestApp - in-memory sqlite + sahte oturum (branch_admin) ile
// fiber app kurar
func setupTestApp(t *testing.T) (*fiber.App, models.User, models.Branch) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	database.DB = db

	branch := models.Branch{Name: "Antalya", City: "Antalya"}
	require.NoError(t, db.Create(&branch).Error)

	user := models.User{
		BranchID:     &branch.ID,
		Name:         "Test Admin",
		Email:        "admin@test.local",
		PasswordHash: "x",
		Role:         models.RoleBranchAdmin,
	}
	require.NoError(t, db.Create(&user).Error)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	// JWT middleware yerine sahte oturum
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, user.ID)
		c.Locals(auth.CtxUserRoleKey, user.Role)
		c.Locals(auth.CtxBranchIDKey, user.BranchID)
		return c.Next()
	})

	app.Post("/suppliers", CreateSupplierHandler())
	app.Get("/suppliers", ListSuppliersHandler())
	app.Get("/suppliers/:id", GetSupplierHandler())
	app.Post("/debts", CreateDebtHandler())
	app.Get("/debts", ListDebtsHandler())
	app.Delete("/debts/:id", DeleteDebtHandler())
	app.Post("/payments", CreatePaymentHandler())
	app.Get("/payments", ListPaymentsHandler())
	app.Delete("/payments/:id", DeletePaymentHandler())

	return app, user, branch
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func createSupplier(t *testing.T, app *fiber.App, name string) SupplierResponse {
	resp, raw := doJSON(t, app, fiber.MethodPost, "/suppliers", fiber.Map{"name": name})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	var out SupplierResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func createDebt(t *testing.T, app *fiber.App, supplierID uint, amount float64, currency string) DebtResponse {
	resp, raw := doJSON(t, app, fiber.MethodPost, "/debts", fiber.Map{
		"supplier_id": supplierID,
		"amount":      amount,
		"currency":    currency,
		"date":        "2025-03-01",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	var out DebtResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestDebtPaymentFlow(t *testing.T) {
	app, _, _ := setupTestApp(t)

	sp := createSupplier(t, app, "Grand Otel")
	debt := createDebt(t, app, sp.ID, 1000, "TRY")
	assert.Equal(t, string(models.DebtStatusUnpaid), debt.Status)

	// Kısmi ödeme
	resp, raw := doJSON(t, app, fiber.MethodPost, "/payments", fiber.Map{
		"supplier_id": sp.ID,
		"debt_id":     debt.ID,
		"amount":      300,
		"currency":    "TRY",
		"date":        "2025-03-02",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	// Kayıtlı borç durumu güncellenmiş olmalı
	var stored models.Debt
	require.NoError(t, database.DB.First(&stored, "id = ?", debt.ID).Error)
	assert.Equal(t, models.DebtStatusPartiallyPaid, stored.Status)
	assert.Equal(t, float64(300), stored.PaidAmount)

	// Status filtresiyle listele
	resp, raw = doJSON(t, app, fiber.MethodGet, "/debts?status=partially_paid", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var debts []DebtResponse
	require.NoError(t, json.Unmarshal(raw, &debts))
	require.Len(t, debts, 1)
	assert.Equal(t, float64(700), debts[0].Remaining)

	// Kalan tutar ödenince borç kapanır
	resp, raw = doJSON(t, app, fiber.MethodPost, "/payments", fiber.Map{
		"supplier_id": sp.ID,
		"debt_id":     debt.ID,
		"amount":      700,
		"currency":    "TRY",
		"date":        "2025-03-03",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	require.NoError(t, database.DB.First(&stored, "id = ?", debt.ID).Error)
	assert.Equal(t, models.DebtStatusPaid, stored.Status)
}

func TestPaymentCurrencyMismatchRejected(t *testing.T) {
	app, _, _ := setupTestApp(t)

	sp := createSupplier(t, app, "Grand Otel")
	debt := createDebt(t, app, sp.ID, 500, "EUR")

	resp, raw := doJSON(t, app, fiber.MethodPost, "/payments", fiber.Map{
		"supplier_id": sp.ID,
		"debt_id":     debt.ID,
		"amount":      500,
		"currency":    "USD",
		"date":        "2025-03-02",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, string(raw))
}

func TestDeleteDebtOrphansPayments(t *testing.T) {
	app, _, _ := setupTestApp(t)

	sp := createSupplier(t, app, "Grand Otel")
	debt := createDebt(t, app, sp.ID, 1000, "TRY")

	resp, raw := doJSON(t, app, fiber.MethodPost, "/payments", fiber.Map{
		"supplier_id": sp.ID,
		"debt_id":     debt.ID,
		"amount":      400,
		"currency":    "TRY",
		"date":        "2025-03-02",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/debts/%d", debt.ID), nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode, string(raw))

	// Ödeme silinmez, tedarikçi detayında genel ödeme olarak görünür
	resp, raw = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/suppliers/%d", sp.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	var detail SupplierDetailResponse
	require.NoError(t, json.Unmarshal(raw, &detail))
	assert.Empty(t, detail.Debts)
	require.Len(t, detail.GeneralPayments, 1)
	assert.Equal(t, float64(400), detail.GeneralPayments[0].Amount)
}

func TestListSuppliersRecomputesBalances(t *testing.T) {
	app, _, _ := setupTestApp(t)

	sp := createSupplier(t, app, "Grand Otel")
	createDebt(t, app, sp.ID, 1000, "TRY")
	createDebt(t, app, sp.ID, 200, "USD")

	resp, raw := doJSON(t, app, fiber.MethodGet, "/suppliers", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	var suppliers []SupplierResponse
	require.NoError(t, json.Unmarshal(raw, &suppliers))
	require.Len(t, suppliers, 1)

	// Aynı tarihli borçlar id desc sıralandığı için son eklenen önce gelir
	require.Len(t, suppliers[0].Balances, 2)
	assert.Equal(t, "USD", suppliers[0].Balances[0].Currency)
	assert.Equal(t, float64(200), suppliers[0].Balances[0].Outstanding)
	assert.Equal(t, "TRY", suppliers[0].Balances[1].Currency)
	assert.Equal(t, float64(1000), suppliers[0].Balances[1].Outstanding)

	// Kaba toplam para birimi ayrımı yapmaz
	assert.Equal(t, float64(1200), suppliers[0].TotalDebt)
}

func TestCreateDebtValidation(t *testing.T) {
	app, _, _ := setupTestApp(t)
	sp := createSupplier(t, app, "Grand Otel")

	t.Run("negatif tutar", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPost, "/debts", fiber.Map{
			"supplier_id": sp.ID,
			"amount":      -10,
			"currency":    "TRY",
			"date":        "2025-03-01",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("geçersiz para birimi", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPost, "/debts", fiber.Map{
			"supplier_id": sp.ID,
			"amount":      10,
			"currency":    "LIRA",
			"date":        "2025-03-01",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("olmayan tedarikçi", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPost, "/debts", fiber.Map{
			"supplier_id": 999,
			"amount":      10,
			"currency":    "TRY",
			"date":        "2025-03-01",
		})
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}
