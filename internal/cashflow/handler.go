// Package cashflow tracks money outside the sales ledger: expenditures
// and cash deposits.
package cashflow

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/musika08/Inventory-Pro/internal/audit"
	"github.com/musika08/Inventory-Pro/internal/auth"
	"github.com/musika08/Inventory-Pro/internal/database"
	"github.com/musika08/Inventory-Pro/internal/deletion"
	"github.com/musika08/Inventory-Pro/internal/models"
)

var validate = validator.New()

type CreateExpenditureRequest struct {
	Date string          `json:"date"`
	Item string          `json:"item" validate:"required,max=255"`
	Cost decimal.Decimal `json:"cost"`
}

type CreateCashEntryRequest struct {
	Date   string          `json:"date"`
	Source string          `json:"source" validate:"required,max=255"`
	Amount decimal.Decimal `json:"amount"`
}

func parseDateOrToday(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", s)
}

// POST /api/expenditures
func CreateExpenditureHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenditureRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Expense item is required")
		}
		if body.Cost.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Cost cannot be negative")
		}

		date, err := parseDateOrToday(body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Date must be 'YYYY-MM-DD'")
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		exp := models.Expenditure{Date: date, Item: body.Item, Cost: body.Cost}
		if err := database.DB.Create(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot create expenditure")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "expenditure",
			EntityID:    exp.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Expense %q added for %s", exp.Item, exp.Cost.StringFixed(2)),
			After:       exp,
		})

		return c.Status(fiber.StatusCreated).JSON(exp)
	}
}

// GET /api/expenditures
func ListExpendituresHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var exps []models.Expenditure
		if err := database.DB.Order("date DESC, id DESC").Find(&exps).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot list expenditures")
		}
		return c.JSON(exps)
	}
}

// DELETE /api/expenditures/:id
func DeleteExpenditureHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		return deletion.HandleDelete(c, actor, deletion.EntityExpenditure, id)
	}
}

// POST /api/cash-entries
func CreateCashEntryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCashEntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Deposit source is required")
		}
		if body.Amount.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Amount cannot be negative")
		}

		date, err := parseDateOrToday(body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Date must be 'YYYY-MM-DD'")
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		entry := models.CashEntry{Date: date, Source: body.Source, Amount: body.Amount}
		if err := database.DB.Create(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot create deposit")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "cash_entry",
			EntityID:    entry.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Deposit of %s received from %q", entry.Amount.StringFixed(2), entry.Source),
			After:       entry,
		})

		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

// GET /api/cash-entries
func ListCashEntriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var entries []models.CashEntry
		if err := database.DB.Order("date DESC, id DESC").Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot list deposits")
		}
		return c.JSON(entries)
	}
}

// DELETE /api/cash-entries/:id
func DeleteCashEntryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		return deletion.HandleDelete(c, actor, deletion.EntityCashEntry, id)
	}
}

// GET /api/cashflow/totals
func TotalsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var expenses, deposits decimal.NullDecimal

		if err := database.DB.Model(&models.Expenditure{}).Select("SUM(cost)").Scan(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot sum expenditures")
		}
		if err := database.DB.Model(&models.CashEntry{}).Select("SUM(amount)").Scan(&deposits).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot sum deposits")
		}

		return c.JSON(fiber.Map{
			"total_expenses": expenses.Decimal,
			"total_deposits": deposits.Decimal,
		})
	}
}
