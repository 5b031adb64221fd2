package models

import "time"

// FinancialRecordType - Kayıt tipi
type FinancialRecordType string

const (
	FinancialRecordIncome  FinancialRecordType = "income"  // Gelir
	FinancialRecordExpense FinancialRecordType = "expense" // Gider
)

// FinancialRecord - Gelir/gider kaydı
type FinancialRecord struct {
	ID          uint                `gorm:"primaryKey"`
	BranchID    uint                `gorm:"index;not null"`
	Branch      Branch              `gorm:"foreignKey:BranchID"`
	Type        FinancialRecordType `gorm:"type:varchar(10);not null;index"`
	Amount      float64             `gorm:"not null"`
	Currency    string              `gorm:"size:3;not null;index"`
	Method      string              `gorm:"size:20"` // "cash", "card", "transfer" (opsiyonel)
	Date        time.Time           `gorm:"index;not null"`
	Description string              `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
