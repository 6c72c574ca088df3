package sales_test

import (
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/musika08/Inventory-Pro/internal/auth"
	"github.com/musika08/Inventory-Pro/internal/database"
	"github.com/musika08/Inventory-Pro/internal/ledger"
	"github.com/musika08/Inventory-Pro/internal/models"
	"github.com/musika08/Inventory-Pro/internal/sales"
)

var testActor = auth.Actor{ID: 1, Name: "Test Admin", Role: models.RoleAdmin}

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

// seedWidget creates the catalog fixture used across the engine tests:
// a product with unit cost 10, boxed cost 20 and a Retail tier priced 100.
func seedWidget(t *testing.T, db *gorm.DB) models.Product {
	t.Helper()

	p := models.Product{
		Name:      "Widget",
		UnitCost:  decimal.NewFromInt(10),
		BoxedCost: decimal.NewFromInt(20),
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}

	tier := models.PriceTier{ProductID: p.ID, Name: "Retail", Price: decimal.NewFromInt(100)}
	if err := db.Create(&tier).Error; err != nil {
		t.Fatalf("create tier: %v", err)
	}
	return p
}

func seedBatch(t *testing.T, db *gorm.DB, productID uint, qty int) models.StockBatch {
	t.Helper()
	b := models.StockBatch{
		ProductID: productID,
		Quantity:  qty,
		Status:    models.StockStatusInStock,
		Date:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("create batch: %v", err)
	}
	return b
}

func reloadBatch(t *testing.T, db *gorm.DB, id uint) models.StockBatch {
	t.Helper()
	var b models.StockBatch
	if err := db.First(&b, "id = ?", id).Error; err != nil {
		t.Fatalf("load batch: %v", err)
	}
	return b
}

func reloadRecord(t *testing.T, db *gorm.DB, recordID string) models.SaleRecord {
	t.Helper()
	var rec models.SaleRecord
	if err := db.First(&rec, "record_id = ?", recordID).Error; err != nil {
		t.Fatalf("load sale record: %v", err)
	}
	return rec
}

func TestDeriveIsPure(t *testing.T) {
	unitCost := decimal.NewFromInt(10)
	boxedCost := decimal.NewFromInt(20)
	tierPrice := decimal.NewFromInt(100)
	discount := decimal.NewFromInt(5)

	first := sales.Derive(unitCost, boxedCost, tierPrice, discount, 3)
	second := sales.Derive(unitCost, boxedCost, tierPrice, discount, 3)

	if !first.Total.Equal(decimal.NewFromInt(285)) {
		t.Errorf("total = %s, want 285", first.Total)
	}
	if !first.Profit.Equal(decimal.NewFromInt(225)) {
		t.Errorf("profit = %s, want 225", first.Profit)
	}
	if !first.Total.Equal(second.Total) || !first.Profit.Equal(second.Profit) {
		t.Error("Derive is not deterministic for identical inputs")
	}
}

func TestDeriveNegativeProfit(t *testing.T) {
	d := sales.Derive(decimal.NewFromInt(10), decimal.NewFromInt(50), decimal.NewFromInt(30), decimal.Zero, 2)
	if !d.Total.Equal(decimal.NewFromInt(60)) {
		t.Errorf("total = %s, want 60", d.Total)
	}
	if !d.Profit.Equal(decimal.NewFromInt(-40)) {
		t.Errorf("profit = %s, want -40 (loss must not be clamped)", d.Profit)
	}
}

func TestCreateComputesDerivedFields(t *testing.T) {
	db := setupTestDB(t)
	p := seedWidget(t, db)

	rec, err := sales.Create(testActor, sales.CreateInput{
		Customer:  "ACME",
		ProductID: p.ID,
		TierName:  "Retail",
		Quantity:  3,
		Discount:  decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if rec.RecordID == "" {
		t.Error("record was not assigned a stable identifier")
	}
	if !rec.Total.Equal(decimal.NewFromInt(285)) {
		t.Errorf("total = %s, want 285", rec.Total)
	}
	if !rec.Profit.Equal(decimal.NewFromInt(225)) {
		t.Errorf("profit = %s, want 225", rec.Profit)
	}
	if !rec.UnitCost.Equal(decimal.NewFromInt(10)) || !rec.BoxedCost.Equal(decimal.NewFromInt(20)) {
		t.Errorf("costs = %s / %s, want 10 / 20", rec.UnitCost, rec.BoxedCost)
	}
	if rec.Status != models.SaleStatusPending {
		t.Errorf("status = %s, want Pending default", rec.Status)
	}
}

func TestCreateUnresolvableTierZeroesDerivedFields(t *testing.T) {
	db := setupTestDB(t)
	p := seedWidget(t, db)

	rec, err := sales.Create(testActor, sales.CreateInput{
		ProductID: p.ID,
		TierName:  "Wholesale",
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if !rec.Total.IsZero() || !rec.Profit.IsZero() {
		t.Errorf("derived fields = %s / %s, want zero for unresolvable tier", rec.Total, rec.Profit)
	}
}

func TestConfirmationAllocatesExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	p := seedWidget(t, db)
	batch := seedBatch(t, db, p.ID, 10)

	rec, err := sales.Create(testActor, sales.CreateInput{
		Customer:  "ACME",
		ProductID: p.ID,
		TierName:  "Retail",
		Quantity:  3,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	rec, err = sales.SetStatus(testActor, rec.RecordID, models.SaleStatusSold, rec.Version)
	if err != nil {
		t.Fatalf("set status Sold: %v", err)
	}
	if got := reloadBatch(t, db, batch.ID).Quantity; got != 7 {
		t.Fatalf("batch quantity after confirmation = %d, want 7", got)
	}

	// Re-saving the already-Sold row must not deduct again.
	customer := "ACME Corp"
	rec, err = sales.Update(testActor, rec.RecordID, sales.UpdateInput{
		Customer: &customer,
		Version:  rec.Version,
	})
	if err != nil {
		t.Fatalf("re-save sold row: %v", err)
	}
	if rec.Status != models.SaleStatusSold {
		t.Errorf("status = %s, want Sold to survive the edit", rec.Status)
	}
	if got := reloadBatch(t, db, batch.ID).Quantity; got != 7 {
		t.Errorf("batch quantity after re-save = %d, want 7 (no second deduction)", got)
	}
}

func TestCreateBornSoldAllocates(t *testing.T) {
	db := setupTestDB(t)
	p := seedWidget(t, db)
	batch := seedBatch(t, db, p.ID, 10)

	_, err := sales.Create(testActor, sales.CreateInput{
		Customer:  "ACME",
		ProductID: p.ID,
		TierName:  "Retail",
		Quantity:  4,
		Status:    models.SaleStatusSold,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if got := reloadBatch(t, db, batch.ID).Quantity; got != 6 {
		t.Errorf("batch quantity = %d, want 6", got)
	}
}

func TestConfirmationFailureRollsBack(t *testing.T) {
	db := setupTestDB(t)
	p := seedWidget(t, db)
	batch := seedBatch(t, db, p.ID, 2)

	rec, err := sales.Create(testActor, sales.CreateInput{
		Customer:  "ACME",
		ProductID: p.ID,
		TierName:  "Retail",
		Quantity:  5,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	_, err = sales.SetStatus(testActor, rec.RecordID, models.SaleStatusSold, rec.Version)
	if !errors.Is(err, ledger.ErrInsufficientStock) {
		t.Fatalf("set status error = %v, want ErrInsufficientStock", err)
	}

	kept := reloadRecord(t, db, rec.RecordID)
	if kept.Status != models.SaleStatusPending {
		t.Errorf("status = %s, want Pending after rollback", kept.Status)
	}
	if kept.Version != rec.Version {
		t.Errorf("version = %d, want %d after rollback", kept.Version, rec.Version)
	}
	if got := reloadBatch(t, db, batch.ID).Quantity; got != 2 {
		t.Errorf("batch quantity = %d, want 2 (untouched)", got)
	}
}

func TestStaleVersionRejected(t *testing.T) {
	db := setupTestDB(t)
	p := seedWidget(t, db)

	rec, err := sales.Create(testActor, sales.CreateInput{
		Customer:  "ACME",
		ProductID: p.ID,
		TierName:  "Retail",
		Quantity:  1,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	customer := "First editor"
	updated, err := sales.Update(testActor, rec.RecordID, sales.UpdateInput{
		Customer: &customer,
		Version:  rec.Version,
	})
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	if updated.Version != rec.Version+1 {
		t.Errorf("version = %d, want %d", updated.Version, rec.Version+1)
	}

	// A second writer still holding the original version must be refused.
	customer = "Second editor"
	_, err = sales.Update(testActor, rec.RecordID, sales.UpdateInput{
		Customer: &customer,
		Version:  rec.Version,
	})
	if !errors.Is(err, ledger.ErrConcurrentModification) {
		t.Fatalf("stale update error = %v, want ErrConcurrentModification", err)
	}

	kept := reloadRecord(t, db, rec.RecordID)
	if kept.Customer != "First editor" {
		t.Errorf("customer = %q, want first editor's value kept", kept.Customer)
	}
}

func TestUpdateRecomputesOnQuantityChange(t *testing.T) {
	db := setupTestDB(t)
	p := seedWidget(t, db)

	rec, err := sales.Create(testActor, sales.CreateInput{
		ProductID: p.ID,
		TierName:  "Retail",
		Quantity:  1,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	qty := 3
	rec, err = sales.Update(testActor, rec.RecordID, sales.UpdateInput{
		Quantity: &qty,
		Version:  rec.Version,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if !rec.Total.Equal(decimal.NewFromInt(300)) {
		t.Errorf("total = %s, want 300", rec.Total)
	}
	if !rec.Profit.Equal(decimal.NewFromInt(240)) {
		t.Errorf("profit = %s, want 240", rec.Profit)
	}
}

func TestUpdateUnknownRecord(t *testing.T) {
	setupTestDB(t)

	customer := "ghost"
	_, err := sales.Update(testActor, "no-such-record", sales.UpdateInput{Customer: &customer})
	if !errors.Is(err, ledger.ErrRecordNotFound) {
		t.Fatalf("update error = %v, want ErrRecordNotFound", err)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	db := setupTestDB(t)
	p := seedWidget(t, db)

	_, err := sales.Create(testActor, sales.CreateInput{ProductID: p.ID, TierName: "Retail", Quantity: 0})
	if !errors.Is(err, ledger.ErrValidation) {
		t.Errorf("zero quantity error = %v, want ErrValidation", err)
	}

	_, err = sales.Create(testActor, sales.CreateInput{
		ProductID: p.ID,
		TierName:  "Retail",
		Quantity:  1,
		Discount:  decimal.NewFromInt(-1),
	})
	if !errors.Is(err, ledger.ErrValidation) {
		t.Errorf("negative discount error = %v, want ErrValidation", err)
	}

	_, err = sales.Create(testActor, sales.CreateInput{
		ProductID: p.ID,
		TierName:  "Retail",
		Quantity:  1,
		Status:    "Vanished",
	})
	if !errors.Is(err, ledger.ErrValidation) {
		t.Errorf("unknown status error = %v, want ErrValidation", err)
	}
}
