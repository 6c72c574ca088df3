package export_test

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/musika08/Inventory-Pro/internal/database"
	"github.com/musika08/Inventory-Pro/internal/export"
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

func TestFixedHeaders(t *testing.T) {
	setupTestDB(t)

	want := map[string][]string{
		"stock":          {"Product Name", "Quantity", "Status", "Date"},
		"sales":          {"Date", "Customer", "Product", "Qty", "Price Tier", "Cost", "Boxed Cost", "Profit", "Discount", "Total", "Status", "Payment"},
		"deletion-queue": {"Request Date", "User", "Page", "Details"},
		"audit-log":      {"Timestamp", "Identity", "Action Detail"},
	}

	for name, header := range want {
		table, err := export.BuildTable(name)
		if err != nil {
			t.Fatalf("build %s: %v", name, err)
		}
		if !reflect.DeepEqual(table.Header, header) {
			t.Errorf("%s header = %v, want %v", name, table.Header, header)
		}
	}
}

func TestCatalogTableTierColumns(t *testing.T) {
	db := setupTestDB(t)

	p := models.Product{
		Name:      "Widget",
		UnitCost:  decimal.NewFromInt(10),
		BoxedCost: decimal.NewFromInt(20),
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	for name, price := range map[string]int64{"Retail": 100, "Bulk": 50} {
		tier := models.PriceTier{ProductID: p.ID, Name: name, Price: decimal.NewFromInt(price)}
		if err := db.Create(&tier).Error; err != nil {
			t.Fatalf("create tier: %v", err)
		}
	}

	table, err := export.BuildTable("catalog")
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	wantHeader := []string{"Product Name", "Cost per Unit", "Boxed Cost", "Bulk", "Retail"}
	if !reflect.DeepEqual(table.Header, wantHeader) {
		t.Fatalf("catalog header = %v, want %v", table.Header, wantHeader)
	}

	if len(table.Rows) != 1 {
		t.Fatalf("catalog rows = %d, want 1", len(table.Rows))
	}
	wantRow := []string{"Widget", "10.00", "20.00", "50.00", "100.00"}
	if !reflect.DeepEqual(table.Rows[0], wantRow) {
		t.Errorf("catalog row = %v, want %v", table.Rows[0], wantRow)
	}
}

func TestUnknownTable(t *testing.T) {
	setupTestDB(t)

	if _, err := export.BuildTable("secrets"); err == nil {
		t.Fatal("expected error for unknown table name")
	}
}

func TestWriteCSVRoundTrips(t *testing.T) {
	db := setupTestDB(t)

	p := models.Product{Name: "Widget", UnitCost: decimal.NewFromInt(10), BoxedCost: decimal.NewFromInt(20)}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	b := models.StockBatch{
		ProductID: p.ID,
		Quantity:  5,
		Status:    models.StockStatusInStock,
		Date:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("create batch: %v", err)
	}

	table, err := export.BuildTable("stock")
	if err != nil {
		t.Fatalf("build stock: %v", err)
	}
	data, err := export.WriteCSV(table)
	if err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("csv records = %d, want header plus one row", len(records))
	}
	if !reflect.DeepEqual(records[0], table.Header) {
		t.Errorf("csv header = %v, want %v", records[0], table.Header)
	}
	wantRow := []string{"Widget", "5", "In Stock", "2026-04-01"}
	if !reflect.DeepEqual(records[1], wantRow) {
		t.Errorf("csv row = %v, want %v", records[1], wantRow)
	}
}

func TestWorkbookFilename(t *testing.T) {
	if got := export.WorkbookFilename("20260401_120000"); got != "backup_20260401_120000.xlsx" {
		t.Errorf("filename = %q", got)
	}
}
