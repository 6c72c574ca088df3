package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reserved column names of the product table. A price tier may never be
// named after one of these, otherwise the exported table becomes ambiguous.
var ReservedProductColumns = []string{"Product Name", "Cost per Unit", "Boxed Cost"}

type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:100;not null;unique" json:"name"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	BoxedCost decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"boxed_cost"`
	Tiers     []PriceTier     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"tiers"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PriceTier is one selling price of a product ("Retail", "Wholesale", ...).
// The original flat table kept tiers as dynamic columns; relationally they
// are child rows, unique per (product, name).
type PriceTier struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProductID uint            `gorm:"index:idx_tier_product_name,unique;not null" json:"product_id"`
	Name      string          `gorm:"size:100;index:idx_tier_product_name,unique;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
