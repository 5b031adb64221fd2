package tour

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

type CreateTourRequest struct {
	Name        string  `json:"name"`
	Destination string  `json:"destination"`
	StartDate   string  `json:"start_date"` // "2025-12-09"
	EndDate     string  `json:"end_date"`
	Capacity    int     `json:"capacity"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	BranchID    *uint   `json:"branch_id"` // super_admin için opsiyonel
}

type UpdateTourRequest struct {
	Name        *string  `json:"name"`
	Destination *string  `json:"destination"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	Capacity    *int     `json:"capacity"`
	Price       *float64 `json:"price"`
	Currency    *string  `json:"currency"`
	Description *string  `json:"description"`
}

type TourResponse struct {
	ID          uint    `json:"id"`
	BranchID    uint    `json:"branch_id"`
	Name        string  `json:"name"`
	Destination string  `json:"destination"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Capacity    int     `json:"capacity"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func tourResponse(t models.Tour) TourResponse {
	return TourResponse{
		ID:          t.ID,
		BranchID:    t.BranchID,
		Name:        t.Name,
		Destination: t.Destination,
		StartDate:   t.StartDate.Format("2006-01-02"),
		EndDate:     t.EndDate.Format("2006-01-02"),
		Capacity:    t.Capacity,
		Price:       t.Price,
		Currency:    t.Currency,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
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

	// super_admin
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
// Tour CRUD
// -------------------------

// POST /api/tours
func CreateTourHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTourRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		// Validasyon
		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "isim boş olamaz")
		}
		if body.Capacity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "capacity 0'dan büyük olmalı")
		}
		if body.Price < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "price negatif olamaz")
		}
		currency := strings.ToUpper(strings.TrimSpace(body.Currency))
		if !ledger.ValidCurrency(currency) {
			return fiber.NewError(fiber.StatusBadRequest, "currency 3 harfli kod olmalı (örn. TRY, USD)")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		start, err := time.Parse("2006-01-02", body.StartDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "start_date formatı 'YYYY-MM-DD' olmalı")
		}
		end, err := time.Parse("2006-01-02", body.EndDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "end_date formatı 'YYYY-MM-DD' olmalı")
		}
		if end.Before(start) {
			return fiber.NewError(fiber.StatusBadRequest, "end_date start_date'ten önce olamaz")
		}

		tour := models.Tour{
			BranchID:    branchID,
			Name:        strings.TrimSpace(body.Name),
			Destination: strings.TrimSpace(body.Destination),
			StartDate:   start,
			EndDate:     end,
			Capacity:    body.Capacity,
			Price:       body.Price,
			Currency:    currency,
			Description: strings.TrimSpace(body.Description),
		}

		if err := database.DB.Create(&tour).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tur kaydedilemedi")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			branchIDForLog := &tour.BranchID
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "tour",
				EntityID:    tour.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Tur eklendi: %s (%s)", tour.Name, tour.Destination),
				Before:      nil,
				After:       tour,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(tourResponse(tour))
	}
}

// GET /api/tours?branch_id=...
func ListToursHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var tours []models.Tour
		if err := database.DB.Where("branch_id = ?", branchID).
			Order("start_date desc, id desc").
			Find(&tours).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Turlar listelenemedi")
		}

		resp := make([]TourResponse, 0, len(tours))
		for _, t := range tours {
			resp = append(resp, tourResponse(t))
		}

		return c.JSON(resp)
	}
}

// PUT /api/tours/:id
func UpdateTourHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var tour models.Tour
		if err := database.DB.First(&tour, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tur bulunamadı")
		}

		if err := requireBranchAccess(c, tour.BranchID); err != nil {
			return err
		}

		var body UpdateTourRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		before := tour

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "isim boş olamaz")
			}
			tour.Name = name
		}
		if body.Destination != nil {
			tour.Destination = strings.TrimSpace(*body.Destination)
		}
		if body.StartDate != nil {
			start, err := time.Parse("2006-01-02", *body.StartDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "start_date formatı 'YYYY-MM-DD' olmalı")
			}
			tour.StartDate = start
		}
		if body.EndDate != nil {
			end, err := time.Parse("2006-01-02", *body.EndDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "end_date formatı 'YYYY-MM-DD' olmalı")
			}
			tour.EndDate = end
		}
		if tour.EndDate.Before(tour.StartDate) {
			return fiber.NewError(fiber.StatusBadRequest, "end_date start_date'ten önce olamaz")
		}
		if body.Capacity != nil {
			if *body.Capacity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "capacity 0'dan büyük olmalı")
			}
			tour.Capacity = *body.Capacity
		}
		if body.Price != nil {
			if *body.Price < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "price negatif olamaz")
			}
			tour.Price = *body.Price
		}
		if body.Currency != nil {
			currency := strings.ToUpper(strings.TrimSpace(*body.Currency))
			if !ledger.ValidCurrency(currency) {
				return fiber.NewError(fiber.StatusBadRequest, "currency 3 harfli kod olmalı")
			}
			tour.Currency = currency
		}
		if body.Description != nil {
			tour.Description = strings.TrimSpace(*body.Description)
		}

		if err := database.DB.Save(&tour).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tur güncellenemedi")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			branchIDForLog := &tour.BranchID
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "tour",
				EntityID:    tour.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Tur güncellendi: %s", tour.Name),
				Before:      before,
				After:       tour,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(tourResponse(tour))
	}
}

// DELETE /api/tours/:id
func DeleteTourHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var tour models.Tour
		if err := database.DB.First(&tour, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tur bulunamadı")
		}

		if err := requireBranchAccess(c, tour.BranchID); err != nil {
			return err
		}

		// Tura bağlı rezervasyon varsa silme
		var reservationCount int64
		database.DB.Model(&models.Reservation{}).Where("tour_id = ?", tour.ID).Count(&reservationCount)
		if reservationCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu tura bağlı rezervasyonlar var, önce onları silin veya taşıyın")
		}

		before := tour

		if err := database.DB.Delete(&tour).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tur silinemedi")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			branchIDForLog := &tour.BranchID
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "tour",
				EntityID:    tour.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Tur silindi: %s", tour.Name),
				Before:      before,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
