package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"acente-backend/internal/database"
	"acente-backend/internal/models"
)

type LogOptions struct {
	BranchID    *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null" // Default: null JSON
	afterStr := "null"  // Default: null JSON

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		BranchID:    opts.BranchID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Undone:      false,
		IsUndone:    false,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}

// UndoLog - Bir audit log'u undo et
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log bulunamadı: %w", err)
	}

	// Zaten undo edilmiş mi?
	if log.IsUndone {
		return fmt.Errorf("bu işlem zaten geri alınmış")
	}

	// Undo işlemini gerçekleştir
	switch log.Action {
	case models.AuditActionCreate:
		// Create ise entity'yi sil
		if err := deleteEntity(log.EntityType, log.EntityID); err != nil {
			return fmt.Errorf("entity silinemedi: %w", err)
		}

	case models.AuditActionUpdate:
		// Update ise önceki haline geri döndür
		if err := restoreEntity(log.EntityType, log.EntityID, log.BeforeData); err != nil {
			return fmt.Errorf("entity geri yüklenemedi: %w", err)
		}

	case models.AuditActionDelete:
		// Delete ise entity'yi geri oluştur (create)
		if err := recreateEntity(log.EntityType, log.BeforeData); err != nil {
			return fmt.Errorf("entity geri oluşturulamadı: %w", err)
		}

	default:
		return fmt.Errorf("bu işlem türü geri alınamaz")
	}

	// Log'u işaretle
	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("log güncellenemedi: %w", err)
	}

	// Undo işlemi için yeni bir log oluştur
	undoLog := models.AuditLog{
		BranchID:    log.BranchID,
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Geri alındı: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
		IsUndone:    false,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("undo log kaydedilemedi: %w", err)
	}

	return nil
}

// deleteEntity - Entity'yi sil
func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case "supplier":
		return database.DB.Delete(&models.Supplier{}, "id = ?", entityID).Error
	case "debt":
		return database.DB.Delete(&models.Debt{}, "id = ?", entityID).Error
	case "payment":
		return database.DB.Delete(&models.Payment{}, "id = ?", entityID).Error
	case "tour":
		return database.DB.Delete(&models.Tour{}, "id = ?", entityID).Error
	case "reservation":
		return database.DB.Delete(&models.Reservation{}, "id = ?", entityID).Error
	case "financial_record":
		return database.DB.Delete(&models.FinancialRecord{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}

// recreateEntity - Silinen entity'yi geri oluştur
func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case "supplier":
		var supplier models.Supplier
		if err := json.Unmarshal([]byte(dataJSON), &supplier); err != nil {
			return err
		}
		supplier.ID = 0 // Yeni entity oluştur
		return database.DB.Create(&supplier).Error

	case "debt":
		var debt models.Debt
		if err := json.Unmarshal([]byte(dataJSON), &debt); err != nil {
			return err
		}
		debt.ID = 0
		return database.DB.Create(&debt).Error

	case "payment":
		var payment models.Payment
		if err := json.Unmarshal([]byte(dataJSON), &payment); err != nil {
			return err
		}
		payment.ID = 0
		// Bağlı borç silinmişse ödemeyi genel ödeme olarak geri oluştur
		if payment.DebtID != nil {
			var count int64
			if err := database.DB.Model(&models.Debt{}).Where("id = ?", *payment.DebtID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				payment.DebtID = nil
			}
		}
		return database.DB.Create(&payment).Error

	case "tour":
		var tour models.Tour
		if err := json.Unmarshal([]byte(dataJSON), &tour); err != nil {
			return err
		}
		tour.ID = 0
		return database.DB.Create(&tour).Error

	case "reservation":
		var reservation models.Reservation
		if err := json.Unmarshal([]byte(dataJSON), &reservation); err != nil {
			return err
		}
		reservation.ID = 0
		return database.DB.Create(&reservation).Error

	case "financial_record":
		var record models.FinancialRecord
		if err := json.Unmarshal([]byte(dataJSON), &record); err != nil {
			return err
		}
		record.ID = 0
		return database.DB.Create(&record).Error

	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}

// restoreEntity - Entity'yi geri yükle (update)
func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "supplier":
		var supplier models.Supplier
		if err := json.Unmarshal([]byte(dataJSON), &supplier); err != nil {
			return err
		}
		return database.DB.Model(&models.Supplier{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":   supplier.BranchID,
			"name":        supplier.Name,
			"phone":       supplier.Phone,
			"description": supplier.Description,
		}).Error

	case "debt":
		var debt models.Debt
		if err := json.Unmarshal([]byte(dataJSON), &debt); err != nil {
			return err
		}
		return database.DB.Model(&models.Debt{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":   debt.BranchID,
			"supplier_id": debt.SupplierID,
			"amount":      debt.Amount,
			"currency":    debt.Currency,
			"date":        debt.Date,
			"description": debt.Description,
		}).Error

	case "payment":
		var payment models.Payment
		if err := json.Unmarshal([]byte(dataJSON), &payment); err != nil {
			return err
		}
		return database.DB.Model(&models.Payment{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":   payment.BranchID,
			"supplier_id": payment.SupplierID,
			"debt_id":     payment.DebtID,
			"amount":      payment.Amount,
			"currency":    payment.Currency,
			"date":        payment.Date,
			"description": payment.Description,
		}).Error

	case "tour":
		var tour models.Tour
		if err := json.Unmarshal([]byte(dataJSON), &tour); err != nil {
			return err
		}
		return database.DB.Model(&models.Tour{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":   tour.BranchID,
			"name":        tour.Name,
			"destination": tour.Destination,
			"start_date":  tour.StartDate,
			"end_date":    tour.EndDate,
			"capacity":    tour.Capacity,
			"price":       tour.Price,
			"currency":    tour.Currency,
			"description": tour.Description,
		}).Error

	case "reservation":
		var reservation models.Reservation
		if err := json.Unmarshal([]byte(dataJSON), &reservation); err != nil {
			return err
		}
		return database.DB.Model(&models.Reservation{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":     reservation.BranchID,
			"tour_id":       reservation.TourID,
			"customer_name": reservation.CustomerName,
			"person_count":  reservation.PersonCount,
			"amount":        reservation.Amount,
			"currency":      reservation.Currency,
			"status":        reservation.Status,
			"date":          reservation.Date,
			"description":   reservation.Description,
		}).Error

	case "financial_record":
		var record models.FinancialRecord
		if err := json.Unmarshal([]byte(dataJSON), &record); err != nil {
			return err
		}
		return database.DB.Model(&models.FinancialRecord{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":   record.BranchID,
			"type":        record.Type,
			"amount":      record.Amount,
			"currency":    record.Currency,
			"method":      record.Method,
			"date":        record.Date,
			"description": record.Description,
		}).Error

	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}
