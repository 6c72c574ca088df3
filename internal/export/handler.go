package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/musika08/Inventory-Pro/internal/audit"
	"github.com/musika08/Inventory-Pro/internal/auth"
	"github.com/musika08/Inventory-Pro/internal/config"
	"github.com/musika08/Inventory-Pro/internal/models"
)

// GET /api/admin/export/:table (admin only)
// Streams one store as CSV with its contractual column order.
func ExportCSVHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("table")

		table, err := BuildTable(name)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Unknown table")
		}

		data, err := WriteCSV(table)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot render CSV")
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "export",
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Exported %q as CSV", table.Name),
		})

		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, name+".csv"))
		return c.Send(data)
	}
}

// POST /api/admin/backup (admin only)
// Writes a timestamped xlsx workbook with every store to the backup dir.
func BackupHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		f, err := BuildWorkbook()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot build backup workbook")
		}

		if err := os.MkdirAll(cfg.BackupPath, 0o755); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot create backup directory")
		}

		name := WorkbookFilename(time.Now().Format("20060102_150405"))
		path := filepath.Join(cfg.BackupPath, name)
		if err := f.SaveAs(path); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot write backup file")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "backup",
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Backup created at %s", path),
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Backup created",
			"file":    name,
		})
	}
}
