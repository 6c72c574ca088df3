package catalog_test

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/musika08/Inventory-Pro/internal/catalog"
	"github.com/musika08/Inventory-Pro/internal/database"
	"github.com/musika08/Inventory-Pro/internal/ledger"
	"github.com/musika08/Inventory-Pro/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	database.DB = db
	return db
}

func createProduct(t *testing.T, db *gorm.DB, name string, tiers map[string]int64) models.Product {
	t.Helper()

	p := models.Product{
		Name:      name,
		UnitCost:  decimal.NewFromInt(10),
		BoxedCost: decimal.NewFromInt(20),
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	for tierName, price := range tiers {
		tier := models.PriceTier{ProductID: p.ID, Name: tierName, Price: decimal.NewFromInt(price)}
		if err := db.Create(&tier).Error; err != nil {
			t.Fatalf("create tier: %v", err)
		}
	}
	return p
}

func TestLookupByName(t *testing.T) {
	db := setupTestDB(t)
	createProduct(t, db, "Widget", map[string]int64{"Retail": 100, "Wholesale": 80})

	p, err := catalog.Lookup("Widget")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(p.Tiers) != 2 {
		t.Errorf("preloaded %d tiers, want 2", len(p.Tiers))
	}

	price, err := catalog.TierPrice(p, "Retail")
	if err != nil {
		t.Fatalf("tier price: %v", err)
	}
	if !price.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Retail price = %s, want 100", price)
	}

	if _, err := catalog.TierPrice(p, "Bulk"); !errors.Is(err, ledger.ErrTierNotFound) {
		t.Errorf("missing tier error = %v, want ErrTierNotFound", err)
	}
}

func TestLookupUnknownProduct(t *testing.T) {
	setupTestDB(t)

	if _, err := catalog.Lookup("Nothing"); !errors.Is(err, ledger.ErrProductNotFound) {
		t.Fatalf("lookup error = %v, want ErrProductNotFound", err)
	}
	if _, err := catalog.LookupByID(42); !errors.Is(err, ledger.ErrProductNotFound) {
		t.Fatalf("lookup by id error = %v, want ErrProductNotFound", err)
	}
}

func TestAddTierCoversEveryProduct(t *testing.T) {
	db := setupTestDB(t)
	a := createProduct(t, db, "Widget", map[string]int64{"Retail": 100})
	b := createProduct(t, db, "Gadget", map[string]int64{"Retail": 60, "Bulk": 40})

	if err := catalog.AddTier("Bulk"); err != nil {
		t.Fatalf("add tier: %v", err)
	}

	pa, err := catalog.LookupByID(a.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	price, err := catalog.TierPrice(pa, "Bulk")
	if err != nil {
		t.Fatalf("new tier missing on Widget: %v", err)
	}
	if !price.IsZero() {
		t.Errorf("new tier price = %s, want 0", price)
	}

	// Gadget already had Bulk priced 40; adding again must not reset it.
	pb, err := catalog.LookupByID(b.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	price, err = catalog.TierPrice(pb, "Bulk")
	if err != nil {
		t.Fatalf("tier price: %v", err)
	}
	if !price.Equal(decimal.NewFromInt(40)) {
		t.Errorf("existing tier price = %s, want 40 kept", price)
	}
}

func TestAddTierRejectsReservedNames(t *testing.T) {
	setupTestDB(t)

	for _, name := range []string{"Product Name", "Cost per Unit", "Boxed Cost", "boxed cost"} {
		if err := catalog.AddTier(name); !errors.Is(err, ledger.ErrReservedTierName) {
			t.Errorf("AddTier(%q) error = %v, want ErrReservedTierName", name, err)
		}
	}

	if err := catalog.AddTier("   "); !errors.Is(err, ledger.ErrValidation) {
		t.Errorf("blank name error = %v, want ErrValidation", err)
	}
}

func TestRemoveTier(t *testing.T) {
	db := setupTestDB(t)
	createProduct(t, db, "Widget", map[string]int64{"Retail": 100, "Bulk": 50})
	createProduct(t, db, "Gadget", map[string]int64{"Retail": 60, "Bulk": 40})

	if err := catalog.RemoveTier("Bulk"); err != nil {
		t.Fatalf("remove tier: %v", err)
	}

	names, err := catalog.TierNames()
	if err != nil {
		t.Fatalf("tier names: %v", err)
	}
	if len(names) != 1 || names[0] != "Retail" {
		t.Errorf("tier names = %v, want [Retail]", names)
	}

	if err := catalog.RemoveTier("Bulk"); !errors.Is(err, ledger.ErrTierNotFound) {
		t.Errorf("second removal error = %v, want ErrTierNotFound", err)
	}
}

func TestTierNamesSortedAndDistinct(t *testing.T) {
	db := setupTestDB(t)
	createProduct(t, db, "Widget", map[string]int64{"Retail": 100, "Bulk": 50})
	createProduct(t, db, "Gadget", map[string]int64{"Retail": 60, "Agency": 55})

	names, err := catalog.TierNames()
	if err != nil {
		t.Fatalf("tier names: %v", err)
	}

	want := []string{"Agency", "Bulk", "Retail"}
	if len(names) != len(want) {
		t.Fatalf("tier names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("tier names = %v, want %v", names, want)
		}
	}
}
