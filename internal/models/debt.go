package models

import "time"

// DebtStatus - Borç ödeme durumu
type DebtStatus string

const (
	DebtStatusUnpaid        DebtStatus = "unpaid"         // Ödenmedi
	DebtStatusPartiallyPaid DebtStatus = "partially_paid" // Kısmen ödendi
	DebtStatusPaid          DebtStatus = "paid"           // Ödendi
)

// Debt - Tedarikçiye olan borç kaydı
type Debt struct {
	ID          uint       `gorm:"primaryKey"`
	BranchID    uint       `gorm:"index;not null"`
	Branch      Branch     `gorm:"foreignKey:BranchID"`
	SupplierID  uint       `gorm:"index;not null"`
	Supplier    Supplier   `gorm:"foreignKey:SupplierID"`
	Amount      float64    `gorm:"not null"`                        // Borç tutarı
	Currency    string     `gorm:"size:3;not null;index"`           // "TRY", "USD", "EUR"
	Status      DebtStatus `gorm:"type:varchar(20);not null;index"` // Ödemelerden türetilir, her okumada yeniden hesaplanır
	PaidAmount  float64    `gorm:"not null;default:0"`              // Borca bağlı ödemelerin toplamı (türetilmiş)
	Date        time.Time  `gorm:"index;not null"`
	Description string     `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Payment - Tedarikçiye yapılan ödeme. DebtID dolu ise belirli bir borca,
// boş ise tedarikçinin genel bakiyesine sayılır.
type Payment struct {
	ID          uint      `gorm:"primaryKey"`
	BranchID    uint      `gorm:"index;not null"`
	Branch      Branch    `gorm:"foreignKey:BranchID"`
	SupplierID  uint      `gorm:"index;not null"`
	Supplier    Supplier  `gorm:"foreignKey:SupplierID"`
	DebtID      *uint     `gorm:"index"` // Opsiyonel borç bağlantısı
	Amount      float64   `gorm:"not null"`
	Currency    string    `gorm:"size:3;not null;index"`
	Date        time.Time `gorm:"index;not null"`
	Description string    `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
