package catalog

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/musika08/Inventory-Pro/internal/audit"
	"github.com/musika08/Inventory-Pro/internal/auth"
	"github.com/musika08/Inventory-Pro/internal/database"
	"github.com/musika08/Inventory-Pro/internal/deletion"
	"github.com/musika08/Inventory-Pro/internal/ledger"
	"github.com/musika08/Inventory-Pro/internal/models"
)

var validate = validator.New()

type CreateProductRequest struct {
	Name      string          `json:"name" validate:"required,max=100"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	BoxedCost decimal.Decimal `json:"boxed_cost"`
}

type UpdateProductRequest struct {
	UnitCost  *decimal.Decimal `json:"unit_cost"`
	BoxedCost *decimal.Decimal `json:"boxed_cost"`
}

type SetTierPriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

type AddTierRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// POST /api/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Product name is required")
		}
		if body.UnitCost.IsNegative() || body.BoxedCost.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Costs cannot be negative")
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		product := models.Product{
			Name:      body.Name,
			UnitCost:  body.UnitCost,
			BoxedCost: body.BoxedCost,
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			return seedTiers(tx, product.ID)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusConflict, "Cannot create product (name taken?)")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "product",
			EntityID:    product.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Product %q added to catalog", product.Name),
			After:       product,
		})

		return c.Status(fiber.StatusCreated).JSON(product)
	}
}

// GET /api/products
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := database.DB.Preload("Tiers").Order("name").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot list products")
		}
		return c.JSON(products)
	}
}

// PUT /api/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		product, err := LookupByID(id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		before := *product

		if body.UnitCost != nil {
			if body.UnitCost.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Unit cost cannot be negative")
			}
			product.UnitCost = *body.UnitCost
		}
		if body.BoxedCost != nil {
			if body.BoxedCost.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Boxed cost cannot be negative")
			}
			product.BoxedCost = *body.BoxedCost
		}

		if err := database.DB.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
			"unit_cost":  product.UnitCost,
			"boxed_cost": product.BoxedCost,
		}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot update product")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "product",
			EntityID:    product.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Product %q costs updated", product.Name),
			Before:      before,
			After:       product,
		})

		return c.JSON(product)
	}
}

// PUT /api/products/:id/tiers/:name
func SetTierPriceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		tierName := c.Params("name")

		var body SetTierPriceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Price.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Price cannot be negative")
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		res := database.DB.Model(&models.PriceTier{}).
			Where("product_id = ? AND name = ?", id, tierName).
			Update("price", body.Price)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot update tier price")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Price tier not found")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "price_tier",
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Tier %q price set to %s", tierName, body.Price.StringFixed(2)),
		})

		return c.JSON(fiber.Map{"message": "Tier price updated"})
	}
}

// GET /api/tiers
func ListTiersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		names, err := TierNames()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot list tiers")
		}
		return c.JSON(names)
	}
}

// POST /api/tiers
func AddTierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AddTierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tier name is required")
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		if err := AddTier(body.Name); err != nil {
			if errors.Is(err, ledger.ErrReservedTierName) {
				return fiber.NewError(fiber.StatusBadRequest, "Tier name collides with a reserved column")
			}
			if errors.Is(err, ledger.ErrValidation) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot add tier")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "price_tier",
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Price tier %q added", body.Name),
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Tier added"})
	}
}

// DELETE /api/admin/tiers/:name (admin only)
func RemoveTierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tierName := c.Params("name")

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		if err := RemoveTier(tierName); err != nil {
			if errors.Is(err, ledger.ErrTierNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Price tier not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot remove tier")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "price_tier",
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Price tier %q removed", tierName),
		})

		return c.JSON(fiber.Map{"message": "Tier removed"})
	}
}

// DELETE /api/products/:id
// Role-sensitive: admins remove immediately, staff go through approval.
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		return deletion.HandleDelete(c, actor, deletion.EntityProduct, id)
	}
}

func parseID(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return id, nil
}
