package models

import "time"

// Supplier - Tedarikçi (otel, transfer firması, rehber vs.)
type Supplier struct {
	ID          uint   `gorm:"primaryKey"`
	BranchID    uint   `gorm:"index;not null"`
	Branch      Branch `gorm:"foreignKey:BranchID"`
	Name        string `gorm:"size:200;not null"`
	Phone       string `gorm:"size:50"`  // Opsiyonel telefon
	Description string `gorm:"size:500"` // Açıklama (opsiyonel)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
