package database

import (
	"log"

	"acente-backend/internal/config"
	"acente-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	// Debt.status migration: eski kayıtlarda status boş kalmış olabilir
	// (AutoMigrate'ten ÖNCE, mevcut kayıtları korumak için)
	if DB.Migrator().HasTable(&models.Debt{}) && DB.Migrator().HasColumn(&models.Debt{}, "status") {
		var emptyCount int64
		DB.Raw("SELECT COUNT(*) FROM debts WHERE status IS NULL OR status = ''").Scan(&emptyCount)
		if emptyCount > 0 {
			log.Printf("Status'u boş %d borç kaydı bulundu, 'unpaid' olarak güncelleniyor...", emptyCount)
			DB.Exec("UPDATE debts SET status = ? WHERE status IS NULL OR status = ''", models.DebtStatusUnpaid)
		}
	}

	err = AutoMigrate(DB)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// AutoMigrate - Tüm tabloları oluşturur/günceller. Testlerde in-memory
// sqlite ile de çağrılır.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Branch{},
		&models.User{},
		&models.Supplier{},
		&models.Debt{},
		&models.Payment{},
		&models.Tour{},
		&models.Reservation{},
		&models.FinancialRecord{},
		&models.AuditLog{},
	)
}
