package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "Pending"
	SaleStatusSold      SaleStatus = "Sold"
	SaleStatusCancelled SaleStatus = "Cancelled"
	SaleStatusReserved  SaleStatus = "Reserved"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "Unpaid"
	PaymentPaid   PaymentStatus = "Paid"
)

// SaleRecord is one row of the sales ledger. UnitCost, BoxedCost, Total and
// Profit are derived: the sales engine overwrites them on every write, they
// are never editable by a user. RecordID is assigned once at creation and
// never changes; status transitions and deletion snapshots key off it, not
// off row position.
type SaleRecord struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	RecordID  string          `gorm:"size:36;uniqueIndex;not null" json:"record_id"`
	Date      time.Time       `gorm:"index;not null" json:"date"`
	Customer  string          `gorm:"size:100" json:"customer"`
	ProductID uint            `gorm:"index" json:"product_id"`
	Product   Product         `json:"-"`
	TierName  string          `gorm:"size:100" json:"tier_name"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	Discount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	BoxedCost decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"boxed_cost"`
	Total     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	Profit    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"profit"`
	Status    SaleStatus      `gorm:"size:20;not null;default:'Pending'" json:"status"`
	Payment   PaymentStatus   `gorm:"size:20;not null;default:'Unpaid'" json:"payment"`
	Version   uint            `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func ValidSaleStatus(s SaleStatus) bool {
	switch s {
	case SaleStatusPending, SaleStatusSold, SaleStatusCancelled, SaleStatusReserved:
		return true
	}
	return false
}
