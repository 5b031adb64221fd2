package financial

import (
	"bytes"
	"encoding/json"
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

func setupTestApp(t *testing.T) *fiber.App {
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

	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, user.ID)
		c.Locals(auth.CtxUserRoleKey, user.Role)
		c.Locals(auth.CtxBranchIDKey, user.BranchID)
		return c.Next()
	})

	app.Post("/financial-records", CreateFinancialRecordHandler())
	app.Get("/financial-records", ListFinancialRecordsHandler())
	app.Get("/financial-summary/monthly", MonthlyFinancialSummaryHandler())

	return app
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

func TestMonthlyFinancialSummary(t *testing.T) {
	app := setupTestApp(t)

	records := []fiber.Map{
		{"type": "income", "amount": 5000, "currency": "TRY", "date": "2025-05-02"},
		{"type": "income", "amount": 1000, "currency": "EUR", "date": "2025-05-05"},
		{"type": "expense", "amount": 2000, "currency": "TRY", "date": "2025-05-10"},
		{"type": "expense", "amount": 300, "currency": "USD", "date": "2025-05-12"},
		{"type": "income", "amount": 9999, "currency": "TRY", "date": "2025-06-01"}, // başka ay
	}
	for _, r := range records {
		resp, raw := doJSON(t, app, fiber.MethodPost, "/financial-records", r)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	}

	resp, raw := doJSON(t, app, fiber.MethodGet, "/financial-summary/monthly?year=2025&month=5", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	var summary MonthlyFinancialSummaryResponse
	require.NoError(t, json.Unmarshal(raw, &summary))

	require.Len(t, summary.Summaries, 3)

	byCurrency := make(map[string]MonthlyCurrencySummary)
	for _, s := range summary.Summaries {
		byCurrency[s.Currency] = s
	}

	assert.Equal(t, float64(5000), byCurrency["TRY"].Income)
	assert.Equal(t, float64(2000), byCurrency["TRY"].Expense)
	assert.Equal(t, float64(3000), byCurrency["TRY"].Net)

	assert.Equal(t, float64(1000), byCurrency["EUR"].Income)
	assert.Equal(t, float64(0), byCurrency["EUR"].Expense)

	assert.Equal(t, float64(300), byCurrency["USD"].Expense)
	assert.Equal(t, float64(-300), byCurrency["USD"].Net)
}

func TestCreateFinancialRecordValidation(t *testing.T) {
	app := setupTestApp(t)

	t.Run("geçersiz tip", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPost, "/financial-records", fiber.Map{
			"type": "transfer", "amount": 100, "currency": "TRY", "date": "2025-05-01",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("geçersiz para birimi", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPost, "/financial-records", fiber.Map{
			"type": "income", "amount": 100, "currency": "LIRA", "date": "2025-05-01",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("geçersiz method", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPost, "/financial-records", fiber.Map{
			"type": "income", "amount": 100, "currency": "TRY", "method": "bitcoin", "date": "2025-05-01",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
