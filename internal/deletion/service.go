// Package deletion routes row removal through a two-role workflow: admins
// delete immediately, staff deletions are parked as pending requests that
// an admin later approves (row discarded) or rejects (row kept). Staff can
// therefore never cause irreversible data loss on their own.
package deletion

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/musika08/Inventory-Pro/internal/audit"
	"github.com/musika08/Inventory-Pro/internal/auth"
	"github.com/musika08/Inventory-Pro/internal/database"
	"github.com/musika08/Inventory-Pro/internal/ledger"
	"github.com/musika08/Inventory-Pro/internal/models"
)

// Ledger identifiers a deletion request may point at.
const (
	EntityProduct     = "product"
	EntityStockBatch  = "stock_batch"
	EntitySaleRecord  = "sale_record"
	EntityExpenditure = "expenditure"
	EntityCashEntry   = "cash_entry"
)

// fetchEntity loads the current row so the request can snapshot it.
func fetchEntity(entityType string, entityID uint) (any, error) {
	switch entityType {
	case EntityProduct:
		var row models.Product
		if err := database.DB.Preload("Tiers").First(&row, "id = ?", entityID).Error; err != nil {
			return nil, err
		}
		return row, nil
	case EntityStockBatch:
		var row models.StockBatch
		if err := database.DB.First(&row, "id = ?", entityID).Error; err != nil {
			return nil, err
		}
		return row, nil
	case EntitySaleRecord:
		var row models.SaleRecord
		if err := database.DB.First(&row, "id = ?", entityID).Error; err != nil {
			return nil, err
		}
		return row, nil
	case EntityExpenditure:
		var row models.Expenditure
		if err := database.DB.First(&row, "id = ?", entityID).Error; err != nil {
			return nil, err
		}
		return row, nil
	case EntityCashEntry:
		var row models.CashEntry
		if err := database.DB.First(&row, "id = ?", entityID).Error; err != nil {
			return nil, err
		}
		return row, nil
	default:
		return nil, fmt.Errorf("unknown entity type: %s", entityType)
	}
}

func deleteEntity(tx *gorm.DB, entityType string, entityID uint) error {
	switch entityType {
	case EntityProduct:
		return tx.Select("Tiers").Delete(&models.Product{ID: entityID}).Error
	case EntityStockBatch:
		return tx.Delete(&models.StockBatch{}, "id = ?", entityID).Error
	case EntitySaleRecord:
		return tx.Delete(&models.SaleRecord{}, "id = ?", entityID).Error
	case EntityExpenditure:
		return tx.Delete(&models.Expenditure{}, "id = ?", entityID).Error
	case EntityCashEntry:
		return tx.Delete(&models.CashEntry{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}

// HasPendingRequest reports whether the row is already queued for removal.
func HasPendingRequest(entityType string, entityID uint) bool {
	var count int64
	database.DB.Model(&models.DeletionRequest{}).
		Where("entity_type = ? AND entity_id = ? AND state = ?", entityType, entityID, models.DeletionPending).
		Count(&count)
	return count > 0
}

// DeleteNow removes the row immediately. Reserved for privileged actors;
// callers behind RequestDeletion never reach it.
func DeleteNow(actor auth.Actor, entityType string, entityID uint) error {
	if !actor.Privileged() {
		return ledger.ErrForbidden
	}

	row, err := fetchEntity(entityType, entityID)
	if err != nil {
		return ledger.ErrRecordNotFound
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := deleteEntity(tx, entityType, entityID); err != nil {
			return err
		}
		return audit.WriteLogTx(tx, audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  entityType,
			EntityID:    entityID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("%s #%d removed", entityType, entityID),
			Before:      row,
		})
	})
}

// RequestDeletion parks the removal as a pending request. The row stays in
// its source ledger untouched; only the request records what was asked.
func RequestDeletion(actor auth.Actor, entityType string, entityID uint) (*models.DeletionRequest, error) {
	row, err := fetchEntity(entityType, entityID)
	if err != nil {
		return nil, ledger.ErrRecordNotFound
	}

	if HasPendingRequest(entityType, entityID) {
		return nil, ledger.ErrPendingDeletion
	}

	snapshot, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("cannot snapshot row: %w", err)
	}

	req := models.DeletionRequest{
		RequestedByID: actor.ID,
		RequestedBy:   actor.Name,
		EntityType:    entityType,
		EntityID:      entityID,
		Snapshot:      string(snapshot),
		State:         models.DeletionPending,
	}

	if err := database.DB.Create(&req).Error; err != nil {
		return nil, err
	}

	_ = audit.WriteLog(audit.LogOptions{
		UserID:      actor.ID,
		UserName:    actor.Name,
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      models.AuditActionDelete,
		Description: fmt.Sprintf("Deletion of %s #%d blocked, pending approval (request #%d)", entityType, entityID, req.ID),
	})

	return &req, nil
}

// Approve discards the row permanently and closes the request.
func Approve(actor auth.Actor, requestID uint) error {
	if !actor.Privileged() {
		return ledger.ErrForbidden
	}

	var req models.DeletionRequest
	if err := database.DB.First(&req, "id = ?", requestID).Error; err != nil {
		return ledger.ErrRecordNotFound
	}
	if req.State != models.DeletionPending {
		return fmt.Errorf("%w: request already %s", ledger.ErrValidation, req.State)
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := deleteEntity(tx, req.EntityType, req.EntityID); err != nil {
			return err
		}

		now := time.Now()
		req.State = models.DeletionApproved
		req.ResolvedByID = &actor.ID
		req.ResolvedBy = actor.Name
		req.ResolvedAt = &now
		if err := tx.Save(&req).Error; err != nil {
			return err
		}

		return audit.WriteLogTx(tx, audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  req.EntityType,
			EntityID:    req.EntityID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Deletion request #%d approved, %s #%d removed", req.ID, req.EntityType, req.EntityID),
			Before:      json.RawMessage(req.Snapshot),
		})
	})
}

// Reject leaves the row intact and closes the request.
func Reject(actor auth.Actor, requestID uint) error {
	if !actor.Privileged() {
		return ledger.ErrForbidden
	}

	var req models.DeletionRequest
	if err := database.DB.First(&req, "id = ?", requestID).Error; err != nil {
		return ledger.ErrRecordNotFound
	}
	if req.State != models.DeletionPending {
		return fmt.Errorf("%w: request already %s", ledger.ErrValidation, req.State)
	}

	now := time.Now()
	req.State = models.DeletionRejected
	req.ResolvedByID = &actor.ID
	req.ResolvedBy = actor.Name
	req.ResolvedAt = &now
	if err := database.DB.Save(&req).Error; err != nil {
		return err
	}

	_ = audit.WriteLog(audit.LogOptions{
		UserID:      actor.ID,
		UserName:    actor.Name,
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Deletion request #%d rejected, %s #%d kept", req.ID, req.EntityType, req.EntityID),
	})

	return nil
}
