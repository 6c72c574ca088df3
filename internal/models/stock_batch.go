package models

import "time"

type StockStatus string

const (
	StockStatusInStock StockStatus = "In Stock"
	StockStatusBought  StockStatus = "Bought"
)

// StockBatch is one stock-in entry of a product. Quantity is only ever
// decremented by the allocation engine or edited directly; batches that
// reach zero stay in the ledger as zero records.
type StockBatch struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	ProductID uint        `gorm:"index;not null" json:"product_id"`
	Product   Product     `json:"-"`
	Quantity  int         `gorm:"not null" json:"quantity"`
	Status    StockStatus `gorm:"size:20;not null" json:"status"`
	Date      time.Time   `gorm:"index;not null" json:"date"`
	Version   uint        `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Eligible reports whether the batch can be consumed by an allocation.
func (b *StockBatch) Eligible() bool {
	return b.Status == StockStatusInStock && b.Quantity > 0
}
