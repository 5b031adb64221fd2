package models

import "time"

// Tour - Tur tanımı
type Tour struct {
	ID          uint      `gorm:"primaryKey"`
	BranchID    uint      `gorm:"index;not null"`
	Branch      Branch    `gorm:"foreignKey:BranchID"`
	Name        string    `gorm:"size:200;not null"`
	Destination string    `gorm:"size:200"`
	StartDate   time.Time `gorm:"index;not null"`
	EndDate     time.Time `gorm:"not null"`
	Capacity    int       `gorm:"not null"` // Kontenjan
	Price       float64   `gorm:"not null"` // Kişi başı fiyat
	Currency    string    `gorm:"size:3;not null"`
	Description string    `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
