package audit_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/musika08/Inventory-Pro/internal/audit"
	"github.com/musika08/Inventory-Pro/internal/database"
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

func TestWriteLogSnapshots(t *testing.T) {
	db := setupTestDB(t)

	err := audit.WriteLog(audit.LogOptions{
		UserID:      1,
		UserName:    "Admin",
		EntityType:  "product",
		EntityID:    7,
		Action:      models.AuditActionUpdate,
		Description: "Product renamed",
		Before:      map[string]string{"name": "Widget"},
		After:       map[string]string{"name": "Widget Pro"},
	})
	if err != nil {
		t.Fatalf("write log: %v", err)
	}

	var entry models.AuditLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.BeforeData != `{"name":"Widget"}` {
		t.Errorf("before = %s, want the marshalled snapshot", entry.BeforeData)
	}
	if entry.AfterData != `{"name":"Widget Pro"}` {
		t.Errorf("after = %s, want the marshalled snapshot", entry.AfterData)
	}
}

func TestWriteLogNilSnapshots(t *testing.T) {
	db := setupTestDB(t)

	err := audit.WriteLog(audit.LogOptions{
		UserID:      1,
		UserName:    "Admin",
		EntityType:  "product",
		Action:      models.AuditActionCreate,
		Description: "Product added",
	})
	if err != nil {
		t.Fatalf("write log: %v", err)
	}

	var entry models.AuditLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.BeforeData != "null" || entry.AfterData != "null" {
		t.Errorf("snapshots = %s / %s, want null / null", entry.BeforeData, entry.AfterData)
	}
}

func TestClearLeavesClosingEntry(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < 3; i++ {
		if err := audit.WriteLog(audit.LogOptions{
			UserID:      1,
			UserName:    "Admin",
			EntityType:  "product",
			Action:      models.AuditActionCreate,
			Description: "Product added",
		}); err != nil {
			t.Fatalf("write log: %v", err)
		}
	}

	cleared, err := audit.Clear(1, "Admin")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared != 3 {
		t.Errorf("cleared = %d, want 3", cleared)
	}

	var remaining []models.AuditLog
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("load entries: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("remaining entries = %d, want only the closing entry", len(remaining))
	}
	if remaining[0].Action != models.AuditActionClear {
		t.Errorf("closing action = %s, want %s", remaining[0].Action, models.AuditActionClear)
	}
	if remaining[0].UserName != "Admin" {
		t.Errorf("closing entry identity = %q, want Admin", remaining[0].UserName)
	}
}
