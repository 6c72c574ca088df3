// Package sales owns the sales ledger: derived-field recomputation on
// every write, and the single monitored status transition that consumes
// stock. Nothing else in the system mutates a SaleRecord.
package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/musika08/Inventory-Pro/internal/audit"
	"github.com/musika08/Inventory-Pro/internal/auth"
	"github.com/musika08/Inventory-Pro/internal/database"
	"github.com/musika08/Inventory-Pro/internal/ledger"
	"github.com/musika08/Inventory-Pro/internal/models"
	"github.com/musika08/Inventory-Pro/internal/stock"
)

// Derived is the output of the pure derivation function.
type Derived struct {
	UnitCost  decimal.Decimal
	BoxedCost decimal.Decimal
	Total     decimal.Decimal
	Profit    decimal.Decimal
}

// Derive computes the four derived fields of a sale row:
//
//	total  = (tierPrice - discount) * qty
//	profit = total - boxedCost * qty
//
// Pure: same inputs, same outputs, no lookups, no side effects.
func Derive(unitCost, boxedCost, tierPrice, discount decimal.Decimal, qty int) Derived {
	q := decimal.NewFromInt(int64(qty))
	total := tierPrice.Sub(discount).Mul(q)
	return Derived{
		UnitCost:  unitCost,
		BoxedCost: boxedCost,
		Total:     total,
		Profit:    total.Sub(boxedCost.Mul(q)),
	}
}

// recompute overwrites the record's derived fields from the catalog state
// loaded in tx. An unresolvable product or tier zeroes them and reports
// resolved=false; the caller must then skip allocation.
func recompute(tx *gorm.DB, rec *models.SaleRecord) (resolved bool, err error) {
	rec.UnitCost = decimal.Zero
	rec.BoxedCost = decimal.Zero
	rec.Total = decimal.Zero
	rec.Profit = decimal.Zero

	if rec.ProductID == 0 || rec.TierName == "" {
		return false, nil
	}

	var product models.Product
	if err := tx.First(&product, "id = ?", rec.ProductID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}

	var tier models.PriceTier
	if err := tx.Where("product_id = ? AND name = ?", rec.ProductID, rec.TierName).First(&tier).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}

	d := Derive(product.UnitCost, product.BoxedCost, tier.Price, rec.Discount, rec.Quantity)
	rec.UnitCost = d.UnitCost
	rec.BoxedCost = d.BoxedCost
	rec.Total = d.Total
	rec.Profit = d.Profit
	return true, nil
}

// CreateInput is a new sale row. Derived fields are not accepted here;
// the engine computes them.
type CreateInput struct {
	Date     time.Time
	Customer string
	ProductID uint
	TierName string
	Quantity int
	Discount decimal.Decimal
	Status   models.SaleStatus
	Payment  models.PaymentStatus
}

// UpdateInput carries only the editable fields; nil means "unchanged".
// Version must be the version the client read.
type UpdateInput struct {
	Date      *time.Time
	Customer  *string
	ProductID *uint
	TierName  *string
	Quantity  *int
	Discount  *decimal.Decimal
	Status    *models.SaleStatus
	Payment   *models.PaymentStatus
	Version   uint
}

// Create inserts a sale row, recomputes its derived fields and, if it is
// born Sold, allocates stock. Allocation failure aborts the whole insert.
func Create(actor auth.Actor, in CreateInput) (*models.SaleRecord, error) {
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ledger.ErrValidation)
	}
	if in.Discount.IsNegative() {
		return nil, fmt.Errorf("%w: discount cannot be negative", ledger.ErrValidation)
	}
	if in.Status == "" {
		in.Status = models.SaleStatusPending
	}
	if !models.ValidSaleStatus(in.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ledger.ErrValidation, in.Status)
	}
	if in.Payment == "" {
		in.Payment = models.PaymentUnpaid
	}

	rec := &models.SaleRecord{
		RecordID:  uuid.NewString(),
		Date:      in.Date,
		Customer:  in.Customer,
		ProductID: in.ProductID,
		TierName:  in.TierName,
		Quantity:  in.Quantity,
		Discount:  in.Discount,
		Status:    in.Status,
		Payment:   in.Payment,
	}
	if rec.Date.IsZero() {
		rec.Date = time.Now()
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		resolved, err := recompute(tx, rec)
		if err != nil {
			return err
		}

		// A row born Sold counts as the not-Sold -> Sold edge.
		if rec.Status == models.SaleStatusSold && resolved {
			if _, err := stock.Allocate(tx, rec.ProductID, rec.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Create(rec).Error; err != nil {
			return err
		}

		desc := fmt.Sprintf("[%s] %d units to customer %q", rec.Status, rec.Quantity, rec.Customer)
		action := models.AuditActionCreate
		if rec.Status == models.SaleStatusSold {
			action = models.AuditActionConfirm
		}
		return audit.WriteLogTx(tx, audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "sale_record",
			EntityID:    rec.ID,
			Action:      action,
			Description: desc,
			After:       rec,
		})
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// Update applies an edit to the row identified by its stable RecordID,
// recomputes the derived fields and fires allocation exactly on the
// not-Sold -> Sold edge of the durable status. If allocation fails the
// transaction rolls back: the status stays at its prior value and no
// batch is touched. Re-saving an already-Sold row never re-allocates.
func Update(actor auth.Actor, recordID string, in UpdateInput) (*models.SaleRecord, error) {
	var rec models.SaleRecord

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("record_id = ?", recordID).First(&rec).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ledger.ErrRecordNotFound
			}
			return err
		}

		if rec.Version != in.Version {
			return ledger.ErrConcurrentModification
		}

		before := rec
		prevStatus := rec.Status

		if in.Date != nil {
			rec.Date = *in.Date
		}
		if in.Customer != nil {
			rec.Customer = *in.Customer
		}
		if in.ProductID != nil {
			rec.ProductID = *in.ProductID
		}
		if in.TierName != nil {
			rec.TierName = *in.TierName
		}
		if in.Quantity != nil {
			if *in.Quantity < 1 {
				return fmt.Errorf("%w: quantity must be at least 1", ledger.ErrValidation)
			}
			rec.Quantity = *in.Quantity
		}
		if in.Discount != nil {
			if in.Discount.IsNegative() {
				return fmt.Errorf("%w: discount cannot be negative", ledger.ErrValidation)
			}
			rec.Discount = *in.Discount
		}
		if in.Status != nil {
			if !models.ValidSaleStatus(*in.Status) {
				return fmt.Errorf("%w: unknown status %q", ledger.ErrValidation, *in.Status)
			}
			rec.Status = *in.Status
		}
		if in.Payment != nil {
			rec.Payment = *in.Payment
		}

		resolved, err := recompute(tx, &rec)
		if err != nil {
			return err
		}

		confirming := prevStatus != models.SaleStatusSold && rec.Status == models.SaleStatusSold
		if confirming && resolved {
			if _, err := stock.Allocate(tx, rec.ProductID, rec.Quantity); err != nil {
				return err
			}
		}

		rec.Version++
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}

		action := models.AuditActionUpdate
		desc := fmt.Sprintf("Sale %s updated", rec.RecordID)
		if confirming {
			action = models.AuditActionConfirm
			desc = fmt.Sprintf("[SOLD] %d units to customer %q", rec.Quantity, rec.Customer)
		}
		return audit.WriteLogTx(tx, audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "sale_record",
			EntityID:    rec.ID,
			Action:      action,
			Description: desc,
			Before:      before,
			After:       rec,
		})
	})
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// SetStatus is the explicit transition call. Same semantics as Update
// with only the status field set.
func SetStatus(actor auth.Actor, recordID string, newStatus models.SaleStatus, version uint) (*models.SaleRecord, error) {
	return Update(actor, recordID, UpdateInput{Status: &newStatus, Version: version})
}
