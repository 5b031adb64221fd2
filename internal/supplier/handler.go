package supplier

import (
	"errors"
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

type CreateSupplierRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
	BranchID    *uint  `json:"branch_id"` // super_admin için opsiyonel
}

type UpdateSupplierRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Description *string `json:"description"`
}

type SupplierResponse struct {
	ID          uint                     `json:"id"`
	BranchID    uint                     `json:"branch_id"`
	Name        string                   `json:"name"`
	Phone       string                   `json:"phone"`
	Description string                   `json:"description"`
	TotalDebt   float64                  `json:"total_debt"` // Para birimi ayrımı yapılmamış kaba toplam (sadece özet)
	TotalPaid   float64                  `json:"total_paid"`
	Balances    []ledger.CurrencyBalance `json:"balances"` // Para birimi bazında gerçek bakiyeler
	CreatedAt   string                   `json:"created_at"`
	UpdatedAt   string                   `json:"updated_at"`
}

type SupplierDetailResponse struct {
	SupplierResponse
	Debts           []DebtResponse    `json:"debts"`
	Payments        []PaymentResponse `json:"payments"`
	GeneralPayments []PaymentResponse `json:"general_payments"` // Borca bağlı olmayan veya borcu silinmiş ödemeler
	DebtBuckets     []BucketResponse  `json:"debt_buckets"`
	PaymentBuckets  []BucketResponse  `json:"payment_buckets"`
}

// BucketResponse - Para birimi kovası (toplam + kayıt id'leri)
type BucketResponse struct {
	Currency string  `json:"currency"`
	Total    float64 `json:"total"`
	ItemIDs  []uint  `json:"item_ids"`
}

// -------------------------
// Yardımcılar
// -------------------------

func ledgerStore() ledger.Store {
	return ledger.NewGormStore(database.DB)
}

func rollupService() *ledger.Service {
	return ledger.NewService(ledgerStore())
}

// ledgerErr - ledger hata türlerini fiber hatalarına çevirir
func ledgerErr(err error, fallback string) error {
	var ve *ledger.ValidationError
	switch {
	case errors.As(err, &ve):
		return fiber.NewError(fiber.StatusBadRequest, ve.Message)
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Kayıt bulunamadı")
	case errors.Is(err, ledger.ErrStoreUnavailable):
		// Asla boş sonuçla maskelenmez: "borç yok" ile "bilinmiyor" farklı şeyler
		return fiber.NewError(fiber.StatusServiceUnavailable, "Veritabanına şu an ulaşılamıyor, lütfen tekrar deneyin")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, fallback)
	}
}

func getUserInfo(c *fiber.Ctx) (uint, string, *uint, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", nil, fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	var branchID *uint
	bVal := c.Locals(auth.CtxBranchIDKey)
	if bPtr, ok := bVal.(*uint); ok && bPtr != nil {
		branchID = bPtr
	}

	return userID, user.Name, branchID, nil
}

// body'den gelen branch_id + role
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

// query'den gelen branch_id + role
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

// requireBranchAccess - branch_admin sadece kendi şubesinin kayıtlarına erişebilir
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

func supplierResponseFromView(v ledger.SupplierView) SupplierResponse {
	return SupplierResponse{
		ID:          v.Supplier.ID,
		BranchID:    v.Supplier.BranchID,
		Name:        v.Supplier.Name,
		Phone:       v.Supplier.Phone,
		Description: v.Supplier.Description,
		TotalDebt:   v.RawTotalDebt,
		TotalPaid:   v.RawTotalPaid,
		Balances:    v.Balances,
		CreatedAt:   v.Supplier.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   v.Supplier.UpdatedAt.Format(time.RFC3339),
	}
}

// -------------------------
// Supplier CRUD + Rollup
// -------------------------

// POST /api/suppliers
func CreateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		// Validasyon
		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "isim boş olamaz")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		supplier := models.Supplier{
			BranchID:    branchID,
			Name:        strings.TrimSpace(body.Name),
			Phone:       strings.TrimSpace(body.Phone),
			Description: strings.TrimSpace(body.Description),
		}

		if err := database.DB.Create(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi kaydedilemedi")
		}

		// Audit log yaz
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			branchIDForLog := &supplier.BranchID
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "supplier",
				EntityID:    supplier.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Tedarikçi eklendi: %s", supplier.Name),
				Before:      nil,
				After:       supplier,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(SupplierResponse{
			ID:          supplier.ID,
			BranchID:    supplier.BranchID,
			Name:        supplier.Name,
			Phone:       supplier.Phone,
			Description: supplier.Description,
			Balances:    []ledger.CurrencyBalance{},
			CreatedAt:   supplier.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   supplier.UpdatedAt.Format(time.RFC3339),
		})
	}
}

// GET /api/suppliers?branch_id=...
// Her tedarikçi için rollup uygulanır: borç/ödeme toplamları her
// çağrıda depodan taze okunup yeniden hesaplanır, cache yoktur.
func ListSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		views, err := rollupService().ListSuppliers(c.Context(), branchID)
		if err != nil {
			return ledgerErr(err, "Tedarikçiler listelenemedi")
		}

		resp := make([]SupplierResponse, 0, len(views))
		for _, v := range views {
			resp = append(resp, supplierResponseFromView(v))
		}

		return c.JSON(resp)
	}
}

// GET /api/suppliers/:id
func GetSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		view, err := rollupService().SupplierDetail(c.Context(), uint(id))
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
			}
			return ledgerErr(err, "Tedarikçi getirilemedi")
		}

		if err := requireBranchAccess(c, view.Supplier.BranchID); err != nil {
			return err
		}

		resp := SupplierDetailResponse{
			SupplierResponse: supplierResponseFromView(*view),
			Debts:            make([]DebtResponse, 0, len(view.Debts)),
			Payments:         make([]PaymentResponse, 0, len(view.Payments)),
			GeneralPayments:  make([]PaymentResponse, 0, len(view.GeneralPayments)),
		}
		for _, dv := range view.Debts {
			resp.Debts = append(resp.Debts, debtResponseFromView(dv))
		}
		for _, p := range view.Payments {
			resp.Payments = append(resp.Payments, paymentResponse(p))
		}
		for _, p := range view.GeneralPayments {
			resp.GeneralPayments = append(resp.GeneralPayments, paymentResponse(p))
		}
		for _, b := range view.DebtBuckets {
			br := BucketResponse{Currency: b.Currency, Total: b.Total, ItemIDs: make([]uint, 0, len(b.Items))}
			for _, d := range b.Items {
				br.ItemIDs = append(br.ItemIDs, d.ID)
			}
			resp.DebtBuckets = append(resp.DebtBuckets, br)
		}
		for _, b := range view.PaymentBuckets {
			br := BucketResponse{Currency: b.Currency, Total: b.Total, ItemIDs: make([]uint, 0, len(b.Items))}
			for _, p := range b.Items {
				br.ItemIDs = append(br.ItemIDs, p.ID)
			}
			resp.PaymentBuckets = append(resp.PaymentBuckets, br)
		}

		return c.JSON(resp)
	}
}

// PUT /api/suppliers/:id
func UpdateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
		}

		if err := requireBranchAccess(c, supplier.BranchID); err != nil {
			return err
		}

		var body UpdateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		before := supplier

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "isim boş olamaz")
			}
			supplier.Name = name
		}
		if body.Phone != nil {
			supplier.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.Description != nil {
			supplier.Description = strings.TrimSpace(*body.Description)
		}

		if err := database.DB.Save(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi güncellenemedi")
		}

		// Audit log
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			branchIDForLog := &supplier.BranchID
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "supplier",
				EntityID:    supplier.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Tedarikçi güncellendi: %s", supplier.Name),
				Before:      before,
				After:       supplier,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(SupplierResponse{
			ID:          supplier.ID,
			BranchID:    supplier.BranchID,
			Name:        supplier.Name,
			Phone:       supplier.Phone,
			Description: supplier.Description,
			Balances:    []ledger.CurrencyBalance{},
			CreatedAt:   supplier.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   supplier.UpdatedAt.Format(time.RFC3339),
		})
	}
}

// DELETE /api/suppliers/:id
func DeleteSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
		}

		if err := requireBranchAccess(c, supplier.BranchID); err != nil {
			return err
		}

		// Borç/ödeme kayıtları silinmez; rollup silinmiş tedarikçiye ait
		// kayıtları atlayarak tolere eder
		if err := database.DB.Delete(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi silinemedi")
		}

		// Audit log
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			branchIDForLog := &supplier.BranchID
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "supplier",
				EntityID:    supplier.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Tedarikçi silindi: %s", supplier.Name),
				Before:      supplier,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
