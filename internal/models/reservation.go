package models

import "time"

// ReservationStatus - Rezervasyon durumu
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"   // Beklemede
	ReservationStatusConfirmed ReservationStatus = "confirmed" // Onaylandı
	ReservationStatusCancelled ReservationStatus = "cancelled" // İptal edildi
)

// Reservation - Müşteri rezervasyonu
type Reservation struct {
	ID            uint              `gorm:"primaryKey"`
	BranchID      uint              `gorm:"index;not null"`
	Branch        Branch            `gorm:"foreignKey:BranchID"`
	TourID        *uint             `gorm:"index"` // Opsiyonel tur bağlantısı
	Tour          *Tour             `gorm:"foreignKey:TourID"`
	CustomerName  string            `gorm:"size:200;not null"`
	CustomerPhone string            `gorm:"size:50"`
	PersonCount   int               `gorm:"not null;default:1"` // Kişi sayısı
	Amount        float64           `gorm:"not null"`           // Toplam tutar
	Currency      string            `gorm:"size:3;not null"`
	Status        ReservationStatus `gorm:"type:varchar(20);not null;index"`
	Date          time.Time         `gorm:"index;not null"`
	Description   string            `gorm:"size:500"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
