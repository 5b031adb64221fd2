package reservation

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

type CreateReservationRequest struct {
	TourID        *uint   `json:"tour_id"` // Opsiyonel tur bağlantısı
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	PersonCount   int     `json:"person_count"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Date          string  `json:"date"` // "2025-12-09"
	Description   string  `json:"description"`
	BranchID      *uint   `json:"branch_id"` // super_admin için opsiyonel
}

type UpdateReservationRequest struct {
	CustomerName  *string  `json:"customer_name"`
	CustomerPhone *string  `json:"customer_phone"`
	PersonCount   *int     `json:"person_count"`
	Amount        *float64 `json:"amount"`
	Status        *string  `json:"status"`
	Date          *string  `json:"date"`
	Description   *string  `json:"description"`
}

type ReservationResponse struct {
	ID            uint    `json:"id"`
	BranchID      uint    `json:"branch_id"`
	TourID        *uint   `json:"tour_id"`
	TourName      string  `json:"tour_name,omitempty"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	PersonCount   int     `json:"person_count"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	Date          string  `json:"date"`
	Description   string  `json:"description"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type MonthlyReservationSummary struct {
	BranchID uint                              `json:"branch_id"`
	Year     int                               `json:"year"`
	Month    int                               `json:"month"`
	Count    int                               `json:"count"`
	Totals   []MonthlyReservationCurrencyTotal `json:"totals"`
}

type MonthlyReservationCurrencyTotal struct {
	Currency string  `json:"currency"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

func reservationResponse(r models.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:            r.ID,
		BranchID:      r.BranchID,
		TourID:        r.TourID,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		PersonCount:   r.PersonCount,
		Amount:        r.Amount,
		Currency:      r.Currency,
		Status:        string(r.Status),
		Date:          r.Date.Format("2006-01-02"),
		Description:   r.Description,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
	}
	if r.Tour != nil {
		resp.TourName = r.Tour.Name
	}
	return resp
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
// Reservation CRUD
// -------------------------

// POST /api/reservations
func CreateReservationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateReservationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		// Validasyon
		if strings.TrimSpace(body.CustomerName) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "müşteri adı boş olamaz")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount 0'dan büyük olmalı")
		}
		currency := strings.ToUpper(strings.TrimSpace(body.Currency))
		if !ledger.ValidCurrency(currency) {
			return fiber.NewError(fiber.StatusBadRequest, "currency 3 harfli kod olmalı (örn. TRY, USD)")
		}
		personCount := body.PersonCount
		if personCount <= 0 {
			personCount = 1
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		// Tur bağlantısı varsa tur kontrolü + kontenjan
		if body.TourID != nil {
			var t models.Tour
			if err := database.DB.First(&t, "id = ?", *body.TourID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Tur bulunamadı")
			}
			if t.BranchID != branchID {
				return fiber.NewError(fiber.StatusForbidden, "Tur başka bir şubeye ait")
			}

			var reserved int64
			database.DB.Model(&models.Reservation{}).
				Where("tour_id = ? AND status <> ?", t.ID, models.ReservationStatusCancelled).
				Select("COALESCE(SUM(person_count), 0)").
				Scan(&reserved)
			if int(reserved)+personCount > t.Capacity {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Tur kontenjanı dolu (%d/%d)", reserved, t.Capacity))
			}
		}

		res := models.Reservation{
			BranchID:      branchID,
			TourID:        body.TourID,
			CustomerName:  strings.TrimSpace(body.CustomerName),
			CustomerPhone: strings.TrimSpace(body.CustomerPhone),
			PersonCount:   personCount,
			Amount:        body.Amount,
			Currency:      currency,
			Status:        models.ReservationStatusPending,
			Date:          d,
			Description:   strings.TrimSpace(body.Description),
		}

		if err := database.DB.Create(&res).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon kaydedilemedi")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			branchIDForLog := &res.BranchID
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "reservation",
				EntityID:    res.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Rezervasyon eklendi: %s - %.2f %s", res.CustomerName, res.Amount, res.Currency),
				Before:      nil,
				After:       res,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(reservationResponse(res))
	}
}

// GET /api/reservations?branch_id=...&tour_id=...&status=...
func ListReservationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Reservation{}).Where("branch_id = ?", branchID)

		if tidStr := c.Query("tour_id"); tidStr != "" {
			var tid uint
			if _, err := fmt.Sscan(tidStr, &tid); err != nil || tid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "tour_id geçersiz")
			}
			dbq = dbq.Where("tour_id = ?", tid)
		}

		if statusStr := c.Query("status"); statusStr != "" {
			status := models.ReservationStatus(statusStr)
			if status != models.ReservationStatusPending && status != models.ReservationStatusConfirmed && status != models.ReservationStatusCancelled {
				return fiber.NewError(fiber.StatusBadRequest, "status 'pending', 'confirmed' veya 'cancelled' olmalı")
			}
			dbq = dbq.Where("status = ?", status)
		}

		var reservations []models.Reservation
		if err := dbq.Preload("Tour").Order("date desc, id desc").Find(&reservations).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyonlar listelenemedi")
		}

		resp := make([]ReservationResponse, 0, len(reservations))
		for _, r := range reservations {
			resp = append(resp, reservationResponse(r))
		}

		return c.JSON(resp)
	}
}

// PUT /api/reservations/:id
func UpdateReservationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var res models.Reservation
		if err := database.DB.First(&res, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
		}

		if err := requireBranchAccess(c, res.BranchID); err != nil {
			return err
		}

		var body UpdateReservationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		before := res

		if body.CustomerName != nil {
			name := strings.TrimSpace(*body.CustomerName)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "müşteri adı boş olamaz")
			}
			res.CustomerName = name
		}
		if body.CustomerPhone != nil {
			res.CustomerPhone = strings.TrimSpace(*body.CustomerPhone)
		}
		if body.PersonCount != nil {
			if *body.PersonCount <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "person_count 0'dan büyük olmalı")
			}
			res.PersonCount = *body.PersonCount
		}
		if body.Amount != nil {
			if *body.Amount <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "amount 0'dan büyük olmalı")
			}
			res.Amount = *body.Amount
		}
		if body.Status != nil {
			status := models.ReservationStatus(*body.Status)
			if status != models.ReservationStatusPending && status != models.ReservationStatusConfirmed && status != models.ReservationStatusCancelled {
				return fiber.NewError(fiber.StatusBadRequest, "status 'pending', 'confirmed' veya 'cancelled' olmalı")
			}
			res.Status = status
		}
		if body.Date != nil {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			res.Date = d
		}
		if body.Description != nil {
			res.Description = strings.TrimSpace(*body.Description)
		}

		if err := database.DB.Save(&res).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon güncellenemedi")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			branchIDForLog := &res.BranchID
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "reservation",
				EntityID:    res.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Rezervasyon güncellendi: %s", res.CustomerName),
				Before:      before,
				After:       res,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(reservationResponse(res))
	}
}

// DELETE /api/reservations/:id
func DeleteReservationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var res models.Reservation
		if err := database.DB.First(&res, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
		}

		if err := requireBranchAccess(c, res.BranchID); err != nil {
			return err
		}

		before := res

		if err := database.DB.Delete(&res).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon silinemedi")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			branchIDForLog := &res.BranchID
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "reservation",
				EntityID:    res.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Rezervasyon silindi: %s - %.2f %s", res.CustomerName, res.Amount, res.Currency),
				Before:      before,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/reservations/summary/monthly?branch_id=...&year=2025&month=12
// Para birimi bazında toplamlar; çevrim yapılmaz
func MonthlyReservationSummaryHandler() fiber.Handler {
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

		var reservations []models.Reservation
		if err := database.DB.
			Where("branch_id = ? AND date >= ? AND date < ? AND status <> ?",
				branchID, from, to, models.ReservationStatusCancelled).
			Find(&reservations).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}

		buckets := ledger.GroupByCurrency(reservations,
			func(r models.Reservation) string { return r.Currency },
			func(r models.Reservation) float64 { return r.Amount })

		totals := make([]MonthlyReservationCurrencyTotal, 0, len(buckets))
		for _, b := range buckets {
			totals = append(totals, MonthlyReservationCurrencyTotal{
				Currency: b.Currency,
				Total:    b.Total,
				Count:    len(b.Items),
			})
		}

		return c.JSON(MonthlyReservationSummary{
			BranchID: branchID,
			Year:     year,
			Month:    month,
			Count:    len(reservations),
			Totals:   totals,
		})
	}
}
