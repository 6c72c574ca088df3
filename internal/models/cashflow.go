package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expenditure is one outgoing cash item (rent, packaging, shipping fees...).
type Expenditure struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Date      time.Time       `gorm:"index;not null" json:"date"`
	Item      string          `gorm:"size:255;not null" json:"item"`
	Cost      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cost"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CashEntry is one incoming deposit outside the sales ledger.
type CashEntry struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Date      time.Time       `gorm:"index;not null" json:"date"`
	Source    string          `gorm:"size:255;not null" json:"source"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
