package main

import (
	"log"
	"strings"

	"acente-backend/internal/admin"
	"acente-backend/internal/audit"
	"acente-backend/internal/auth"
	"acente-backend/internal/config"
	"acente-backend/internal/dashboard"
	"acente-backend/internal/database"
	"acente-backend/internal/financial"
	"acente-backend/internal/models"
	"acente-backend/internal/reservation"
	"acente-backend/internal/supplier"
	"acente-backend/internal/tour"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	app.Use(logger.New())

	// 🔥 CORS MIDDLEWARE
	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Super admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin))

	// Şube yönetimi
	adminRoutes.Post("/branches", admin.CreateBranchHandler())
	adminRoutes.Get("/branches", admin.ListBranchesHandler())
	adminRoutes.Get("/branches/:id", admin.GetBranchHandler())
	adminRoutes.Put("/branches/:id", admin.UpdateBranchHandler())
	adminRoutes.Delete("/branches/:id", admin.DeleteBranchHandler())
	adminRoutes.Post("/branches/:id/admin", admin.CreateBranchAdminHandler())
	adminRoutes.Get("/branches/:id/admins", admin.ListBranchAdminsHandler())

	// Ortak (auth gerektiren) route’lar

	// Tedarikçiler
	protected.Post("/suppliers", supplier.CreateSupplierHandler())
	protected.Get("/suppliers", supplier.ListSuppliersHandler())
	protected.Get("/suppliers/:id", supplier.GetSupplierHandler())
	protected.Put("/suppliers/:id", supplier.UpdateSupplierHandler())
	protected.Delete("/suppliers/:id", supplier.DeleteSupplierHandler())

	// Tedarikçi borçları
	protected.Post("/debts", supplier.CreateDebtHandler())
	protected.Get("/debts", supplier.ListDebtsHandler())
	protected.Delete("/debts/:id", supplier.DeleteDebtHandler())

	// Tedarikçi ödemeleri (borca bağlı veya genel)
	protected.Post("/payments", supplier.CreatePaymentHandler())
	protected.Get("/payments", supplier.ListPaymentsHandler())
	protected.Delete("/payments/:id", supplier.DeletePaymentHandler())

	// Turlar
	protected.Post("/tours", tour.CreateTourHandler())
	protected.Get("/tours", tour.ListToursHandler())
	protected.Put("/tours/:id", tour.UpdateTourHandler())
	protected.Delete("/tours/:id", tour.DeleteTourHandler())

	// Rezervasyonlar
	protected.Post("/reservations", reservation.CreateReservationHandler())
	protected.Get("/reservations", reservation.ListReservationsHandler())
	protected.Put("/reservations/:id", reservation.UpdateReservationHandler())
	protected.Delete("/reservations/:id", reservation.DeleteReservationHandler())
	protected.Get("/reservations/summary/monthly", reservation.MonthlyReservationSummaryHandler())

	// Gelir/gider kayıtları
	protected.Post("/financial-records", financial.CreateFinancialRecordHandler())
	protected.Get("/financial-records", financial.ListFinancialRecordsHandler())
	protected.Delete("/financial-records/:id", financial.DeleteFinancialRecordHandler())
	protected.Get("/financial-summary/monthly", financial.MonthlyFinancialSummaryHandler())

	// Dashboard
	protected.Get("/dashboard/debt-overview", dashboard.DebtOverviewHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
