package database

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/musika08/Inventory-Pro/internal/config"
	"github.com/musika08/Inventory-Pro/internal/models"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("cannot connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	logrus.Info("database connected, migration complete")
}

// Migrate is separate from Init so tests can run it against SQLite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.PriceTier{},
		&models.StockBatch{},
		&models.SaleRecord{},
		&models.DeletionRequest{},
		&models.AuditLog{},
		&models.Expenditure{},
		&models.CashEntry{},
	)
}
