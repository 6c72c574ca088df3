package audit

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/musika08/Inventory-Pro/internal/database"
	"github.com/musika08/Inventory-Pro/internal/models"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog appends one immutable entry. Failures are reported but callers
// treat them as non-fatal: a ledger mutation never rolls back because its
// audit entry could not be written.
func WriteLog(opts LogOptions) error {
	return WriteLogTx(database.DB, opts)
}

// WriteLogTx is the transactional variant, used when the entry must commit
// or roll back together with the mutation it describes.
func WriteLogTx(tx *gorm.DB, opts LogOptions) error {
	// jsonb needs "null", not an empty string
	beforeStr := "null"
	afterStr := "null"

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

	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log write failed: %w", err)
	}

	return nil
}

// Clear wipes the whole log and leaves a single entry recording who did it.
// Privilege is enforced at the route level; the count is returned for the
// closing entry and the response.
func Clear(userID uint, userName string) (int64, error) {
	var cleared int64

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AuditLog{}).Count(&cleared).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.AuditLog{}).Error; err != nil {
			return err
		}
		return WriteLogTx(tx, LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "audit_log",
			Action:      models.AuditActionClear,
			Description: fmt.Sprintf("Activity log cleared (%d entries removed)", cleared),
		})
	})
	if err != nil {
		return 0, fmt.Errorf("audit log clear failed: %w", err)
	}

	return cleared, nil
}
