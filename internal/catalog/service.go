// Package catalog is the product/price-tier store. It owns no ledger
// semantics: pure lookups plus structural tier mutation.
package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/musika08/Inventory-Pro/internal/database"
	"github.com/musika08/Inventory-Pro/internal/ledger"
	"github.com/musika08/Inventory-Pro/internal/models"
)

// Lookup finds a product by its unique name, tiers included.
func Lookup(name string) (*models.Product, error) {
	var product models.Product
	err := database.DB.Preload("Tiers").Where("name = ?", name).First(&product).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ledger.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func LookupByID(id uint) (*models.Product, error) {
	var product models.Product
	err := database.DB.Preload("Tiers").First(&product, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ledger.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// TierPrice returns the product's price for the named tier.
func TierPrice(product *models.Product, tierName string) (decimal.Decimal, error) {
	for _, t := range product.Tiers {
		if t.Name == tierName {
			return t.Price, nil
		}
	}
	return decimal.Zero, ledger.ErrTierNotFound
}

// TierNames lists the distinct tier names across the catalog, i.e. the
// dynamic columns of the exported product table.
func TierNames() ([]string, error) {
	var names []string
	err := database.DB.Model(&models.PriceTier{}).
		Distinct("name").
		Order("name").
		Pluck("name", &names).Error
	return names, err
}

func reservedTierName(name string) bool {
	for _, r := range models.ReservedProductColumns {
		if strings.EqualFold(name, r) {
			return true
		}
	}
	return false
}

// AddTier adds the named tier to every product at price zero, like adding
// a column to the original flat table. Products that already carry the
// tier are left alone.
func AddTier(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: tier name is required", ledger.ErrValidation)
	}
	if reservedTierName(name) {
		return fmt.Errorf("%w: %q", ledger.ErrReservedTierName, name)
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		var products []models.Product
		if err := tx.Find(&products).Error; err != nil {
			return err
		}
		for _, p := range products {
			var count int64
			if err := tx.Model(&models.PriceTier{}).
				Where("product_id = ? AND name = ?", p.ID, name).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			tier := models.PriceTier{ProductID: p.ID, Name: name, Price: decimal.Zero}
			if err := tx.Create(&tier).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveTier drops the named tier from every product. Not transactional
// with the sales ledger: existing sale rows keep their stored figures and
// simply stop recomputing until repointed at a live tier.
func RemoveTier(name string) error {
	res := database.DB.Where("name = ?", name).Delete(&models.PriceTier{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ledger.ErrTierNotFound
	}
	return nil
}

// seedTiers gives a new product a zero-priced row for every existing tier
// name so the table stays rectangular.
func seedTiers(tx *gorm.DB, productID uint) error {
	var names []string
	if err := tx.Model(&models.PriceTier{}).Distinct("name").Pluck("name", &names).Error; err != nil {
		return err
	}
	for _, n := range names {
		tier := models.PriceTier{ProductID: productID, Name: n, Price: decimal.Zero}
		if err := tx.Create(&tier).Error; err != nil {
			return err
		}
	}
	return nil
}
