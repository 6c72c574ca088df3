package stock

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/musika08/Inventory-Pro/internal/audit"
	"github.com/musika08/Inventory-Pro/internal/auth"
	"github.com/musika08/Inventory-Pro/internal/database"
	"github.com/musika08/Inventory-Pro/internal/deletion"
	"github.com/musika08/Inventory-Pro/internal/models"
)

var validate = validator.New()

// LowStockThreshold marks the tally alert boundary.
const LowStockThreshold = 5

type CreateStockBatchRequest struct {
	ProductID uint               `json:"product_id" validate:"required"`
	Quantity  int                `json:"quantity" validate:"required,min=1"`
	Status    models.StockStatus `json:"status"`
	Date      string             `json:"date"` // "2026-08-28", defaults to today
}

type UpdateStockBatchRequest struct {
	Quantity *int                `json:"quantity"`
	Status   *models.StockStatus `json:"status"`
	Version  uint                `json:"version"`
}

type StockBatchResponse struct {
	ID          uint               `json:"id"`
	ProductID   uint               `json:"product_id"`
	ProductName string             `json:"product_name"`
	Quantity    int                `json:"quantity"`
	Status      models.StockStatus `json:"status"`
	Date        string             `json:"date"`
	Version     uint               `json:"version"`
	CreatedAt   string             `json:"created_at"`
}

type StockTallyRow struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Alert       string `json:"alert"` // "Out" | "Low" | "Good"
}

// POST /api/stock-batches
func CreateStockBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateStockBatchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "product_id is required, quantity must be at least 1")
		}

		status := body.Status
		if status == "" {
			status = models.StockStatusInStock
		}
		if status != models.StockStatusInStock && status != models.StockStatusBought {
			return fiber.NewError(fiber.StatusBadRequest, "Status must be 'In Stock' or 'Bought'")
		}

		date := time.Now()
		if body.Date != "" {
			d, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Date must be 'YYYY-MM-DD'")
			}
			date = d
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Product not found")
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		batch := models.StockBatch{
			ProductID: body.ProductID,
			Quantity:  body.Quantity,
			Status:    status,
			Date:      date,
		}

		if err := database.DB.Create(&batch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot create stock entry")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "stock_batch",
			EntityID:    batch.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Stock-in: %d units of %q", batch.Quantity, product.Name),
			After:       batch,
		})

		return c.Status(fiber.StatusCreated).JSON(toResponse(batch, product.Name))
	}
}

// GET /api/stock-batches?product_id=1
// Newest first, zero batches included.
func ListStockBatchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Product").Model(&models.StockBatch{})
		if pidStr := c.Query("product_id"); pidStr != "" {
			var pid uint
			if _, err := fmt.Sscan(pidStr, &pid); err == nil && pid > 0 {
				dbq = dbq.Where("product_id = ?", pid)
			}
		}

		var batches []models.StockBatch
		if err := dbq.Order("date DESC, id DESC").Find(&batches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot list stock entries")
		}

		resp := make([]StockBatchResponse, 0, len(batches))
		for _, b := range batches {
			resp = append(resp, toResponse(b, b.Product.Name))
		}
		return c.JSON(resp)
	}
}

// PUT /api/stock-batches/:id
// Direct edit of a batch. The write must carry the version it read.
func UpdateStockBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var body UpdateStockBatchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var batch models.StockBatch
		if err := database.DB.First(&batch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stock entry not found")
		}
		before := batch

		if body.Quantity != nil {
			if *body.Quantity < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Quantity cannot be negative")
			}
			batch.Quantity = *body.Quantity
		}
		if body.Status != nil {
			if *body.Status != models.StockStatusInStock && *body.Status != models.StockStatusBought {
				return fiber.NewError(fiber.StatusBadRequest, "Status must be 'In Stock' or 'Bought'")
			}
			batch.Status = *body.Status
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		// Optimistic check: reject stale writes instead of silently
		// overwriting a concurrent edit.
		res := database.DB.Model(&models.StockBatch{}).
			Where("id = ? AND version = ?", id, body.Version).
			Updates(map[string]interface{}{
				"quantity": batch.Quantity,
				"status":   batch.Status,
				"version":  body.Version + 1,
			})
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot update stock entry")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "Stock entry was changed by someone else, reload and retry")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "stock_batch",
			EntityID:    batch.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Stock entry #%d adjusted", batch.ID),
			Before:      before,
			After:       batch,
		})

		return c.JSON(fiber.Map{"message": "Stock entry updated", "version": body.Version + 1})
	}
}

// GET /api/stock-batches/summary
// Per-product In Stock totals with an alert level.
func StockSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		type row struct {
			ProductID uint
			Name      string
			Total     int
		}
		var rows []row
		err := database.DB.Model(&models.Product{}).
			Select("products.id AS product_id, products.name AS name, COALESCE(SUM(CASE WHEN stock_batches.status = ? THEN stock_batches.quantity ELSE 0 END), 0) AS total", models.StockStatusInStock).
			Joins("LEFT JOIN stock_batches ON stock_batches.product_id = products.id").
			Group("products.id, products.name").
			Order("products.name").
			Scan(&rows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot build stock summary")
		}

		resp := make([]StockTallyRow, 0, len(rows))
		for _, r := range rows {
			alert := "Good"
			if r.Total <= 0 {
				alert = "Out"
			} else if r.Total < LowStockThreshold {
				alert = "Low"
			}
			resp = append(resp, StockTallyRow{
				ProductID:   r.ProductID,
				ProductName: r.Name,
				Quantity:    r.Total,
				Alert:       alert,
			})
		}

		return c.JSON(resp)
	}
}

// DELETE /api/stock-batches/:id
func DeleteStockBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		return deletion.HandleDelete(c, actor, deletion.EntityStockBatch, id)
	}
}

func toResponse(b models.StockBatch, productName string) StockBatchResponse {
	return StockBatchResponse{
		ID:          b.ID,
		ProductID:   b.ProductID,
		ProductName: productName,
		Quantity:    b.Quantity,
		Status:      b.Status,
		Date:        b.Date.Format("2006-01-02"),
		Version:     b.Version,
		CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
