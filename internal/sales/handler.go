package sales

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/musika08/Inventory-Pro/internal/auth"
	"github.com/musika08/Inventory-Pro/internal/database"
	"github.com/musika08/Inventory-Pro/internal/deletion"
	"github.com/musika08/Inventory-Pro/internal/ledger"
	"github.com/musika08/Inventory-Pro/internal/models"
)

var validate = validator.New()

type CreateSaleRequest struct {
	Date      string               `json:"date"` // "2026-08-28", defaults to today
	Customer  string               `json:"customer"`
	ProductID uint                 `json:"product_id" validate:"required"`
	TierName  string               `json:"tier_name" validate:"required"`
	Quantity  int                  `json:"quantity" validate:"required,min=1"`
	Discount  decimal.Decimal      `json:"discount"`
	Status    models.SaleStatus    `json:"status"`
	Payment   models.PaymentStatus `json:"payment"`
}

type UpdateSaleRequest struct {
	Date      *string               `json:"date"`
	Customer  *string               `json:"customer"`
	ProductID *uint                 `json:"product_id"`
	TierName  *string               `json:"tier_name"`
	Quantity  *int                  `json:"quantity"`
	Discount  *decimal.Decimal      `json:"discount"`
	Status    *models.SaleStatus    `json:"status"`
	Payment   *models.PaymentStatus `json:"payment"`
	Version   uint                  `json:"version"`
}

type SetStatusRequest struct {
	Status  models.SaleStatus `json:"status" validate:"required"`
	Version uint              `json:"version"`
}

type SaleResponse struct {
	ID          uint                 `json:"id"`
	RecordID    string               `json:"record_id"`
	Date        string               `json:"date"`
	Customer    string               `json:"customer"`
	ProductID   uint                 `json:"product_id"`
	ProductName string               `json:"product_name"`
	TierName    string               `json:"tier_name"`
	Quantity    int                  `json:"quantity"`
	Discount    decimal.Decimal      `json:"discount"`
	UnitCost    decimal.Decimal      `json:"unit_cost"`
	BoxedCost   decimal.Decimal      `json:"boxed_cost"`
	Total       decimal.Decimal      `json:"total"`
	Profit      decimal.Decimal      `json:"profit"`
	Status      models.SaleStatus    `json:"status"`
	Payment     models.PaymentStatus `json:"payment"`
	Version     uint                 `json:"version"`
}

// mapEngineError turns taxonomy errors into HTTP errors; everything the
// engine refuses leaves the ledgers untouched.
func mapEngineError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrRecordNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Sale record not found")
	case errors.Is(err, ledger.ErrInsufficientStock):
		return fiber.NewError(fiber.StatusConflict, "Not enough stock to confirm this sale")
	case errors.Is(err, ledger.ErrConcurrentModification):
		return fiber.NewError(fiber.StatusConflict, "Record was changed by someone else, reload and retry")
	case errors.Is(err, ledger.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Cannot save sale record")
	}
}

// POST /api/sales
func CreateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "product_id, tier_name and a positive quantity are required")
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		in := CreateInput{
			Customer:  body.Customer,
			ProductID: body.ProductID,
			TierName:  body.TierName,
			Quantity:  body.Quantity,
			Discount:  body.Discount,
			Status:    body.Status,
			Payment:   body.Payment,
		}
		if body.Date != "" {
			d, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Date must be 'YYYY-MM-DD'")
			}
			in.Date = d
		}

		rec, err := Create(actor, in)
		if err != nil {
			return mapEngineError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(*rec, ""))
	}
}

// GET /api/sales?year=2026&month=8
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Product").Model(&models.SaleRecord{})

		var year, month int
		if _, err := fmt.Sscan(c.Query("year"), &year); err == nil && year > 0 {
			if _, err := fmt.Sscan(c.Query("month"), &month); err == nil && month >= 1 && month <= 12 {
				from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
				dbq = dbq.Where("date >= ? AND date < ?", from, from.AddDate(0, 1, 0))
			} else {
				from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
				dbq = dbq.Where("date >= ? AND date < ?", from, from.AddDate(1, 0, 0))
			}
		}

		var records []models.SaleRecord
		if err := dbq.Order("date DESC, id DESC").Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot list sales")
		}

		resp := make([]SaleResponse, 0, len(records))
		for _, r := range records {
			resp = append(resp, toResponse(r, r.Product.Name))
		}
		return c.JSON(resp)
	}
}

// PUT /api/sales/:recordId
func UpdateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		recordID := c.Params("recordId")

		var body UpdateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		in := UpdateInput{
			Customer:  body.Customer,
			ProductID: body.ProductID,
			TierName:  body.TierName,
			Quantity:  body.Quantity,
			Discount:  body.Discount,
			Status:    body.Status,
			Payment:   body.Payment,
			Version:   body.Version,
		}
		if body.Date != nil {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Date must be 'YYYY-MM-DD'")
			}
			in.Date = &d
		}

		rec, err := Update(actor, recordID, in)
		if err != nil {
			return mapEngineError(err)
		}

		return c.JSON(toResponse(*rec, ""))
	}
}

// POST /api/sales/:recordId/status
func SetStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		recordID := c.Params("recordId")

		var body SetStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "status is required")
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		rec, err := SetStatus(actor, recordID, body.Status, body.Version)
		if err != nil {
			return mapEngineError(err)
		}

		return c.JSON(toResponse(*rec, ""))
	}
}

// DELETE /api/sales/:recordId
func DeleteSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		recordID := c.Params("recordId")

		var rec models.SaleRecord
		if err := database.DB.Where("record_id = ?", recordID).First(&rec).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sale record not found")
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		return deletion.HandleDelete(c, actor, deletion.EntitySaleRecord, rec.ID)
	}
}

func toResponse(r models.SaleRecord, productName string) SaleResponse {
	return SaleResponse{
		ID:          r.ID,
		RecordID:    r.RecordID,
		Date:        r.Date.Format("2006-01-02"),
		Customer:    r.Customer,
		ProductID:   r.ProductID,
		ProductName: productName,
		TierName:    r.TierName,
		Quantity:    r.Quantity,
		Discount:    r.Discount,
		UnitCost:    r.UnitCost,
		BoxedCost:   r.BoxedCost,
		Total:       r.Total,
		Profit:      r.Profit,
		Status:      r.Status,
		Payment:     r.Payment,
		Version:     r.Version,
	}
}
