// Package stock owns the stock ledger and the allocation engine.
package stock

import (
	"gorm.io/gorm"

	"github.com/musika08/Inventory-Pro/internal/ledger"
	"github.com/musika08/Inventory-Pro/internal/models"
)

// Consumed records how much of one batch an allocation took.
type Consumed struct {
	BatchID uint `json:"batch_id"`
	Taken   int  `json:"taken"`
}

// Allocate deducts requestedQty from the product's eligible batches
// (In Stock, quantity > 0), oldest first. All-or-nothing: the total is
// checked before anything is touched, so a shortfall never leaves a
// half-deducted ledger behind. Batches that hit zero stay in the ledger
// as zero records.
//
// Runs inside the caller's transaction; the sales engine invokes it
// exactly once per confirmation edge.
func Allocate(tx *gorm.DB, productID uint, requestedQty int) ([]Consumed, error) {
	if requestedQty <= 0 {
		return nil, ledger.ErrValidation
	}

	var batches []models.StockBatch
	if err := tx.
		Where("product_id = ? AND status = ? AND quantity > 0", productID, models.StockStatusInStock).
		Order("date ASC, id ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}

	available := 0
	for _, b := range batches {
		available += b.Quantity
	}
	if available < requestedQty {
		return nil, ledger.ErrInsufficientStock
	}

	consumed := make([]Consumed, 0, len(batches))
	need := requestedQty
	for _, b := range batches {
		if need <= 0 {
			break
		}
		take := need
		if b.Quantity < take {
			take = b.Quantity
		}
		if err := tx.Model(&models.StockBatch{}).
			Where("id = ?", b.ID).
			Updates(map[string]interface{}{
				"quantity": b.Quantity - take,
				"version":  b.Version + 1,
			}).Error; err != nil {
			return nil, err
		}
		consumed = append(consumed, Consumed{BatchID: b.ID, Taken: take})
		need -= take
	}

	return consumed, nil
}

// AvailableQuantity sums the eligible batches of a product.
func AvailableQuantity(tx *gorm.DB, productID uint) (int, error) {
	var total *int
	err := tx.Model(&models.StockBatch{}).
		Where("product_id = ? AND status = ? AND quantity > 0", productID, models.StockStatusInStock).
		Select("SUM(quantity)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
