package main

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"

	"github.com/musika08/Inventory-Pro/internal/audit"
	"github.com/musika08/Inventory-Pro/internal/auth"
	"github.com/musika08/Inventory-Pro/internal/cashflow"
	"github.com/musika08/Inventory-Pro/internal/catalog"
	"github.com/musika08/Inventory-Pro/internal/config"
	"github.com/musika08/Inventory-Pro/internal/dashboard"
	"github.com/musika08/Inventory-Pro/internal/database"
	"github.com/musika08/Inventory-Pro/internal/deletion"
	"github.com/musika08/Inventory-Pro/internal/export"
	"github.com/musika08/Inventory-Pro/internal/models"
	"github.com/musika08/Inventory-Pro/internal/sales"
	"github.com/musika08/Inventory-Pro/internal/stock"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			logrus.WithError(err).Error("unexpected error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Catalog
	protected.Get("/products", catalog.ListProductsHandler())
	protected.Post("/products", catalog.CreateProductHandler())
	protected.Put("/products/:id", catalog.UpdateProductHandler())
	protected.Put("/products/:id/tiers/:name", catalog.SetTierPriceHandler())
	protected.Delete("/products/:id", catalog.DeleteProductHandler())
	protected.Get("/tiers", catalog.ListTiersHandler())
	protected.Post("/tiers", catalog.AddTierHandler())

	// Stock ledger
	protected.Post("/stock-batches", stock.CreateStockBatchHandler())
	protected.Get("/stock-batches", stock.ListStockBatchesHandler())
	protected.Get("/stock-batches/summary", stock.StockSummaryHandler())
	protected.Put("/stock-batches/:id", stock.UpdateStockBatchHandler())
	protected.Delete("/stock-batches/:id", stock.DeleteStockBatchHandler())

	// Sales ledger
	protected.Post("/sales", sales.CreateSaleHandler())
	protected.Get("/sales", sales.ListSalesHandler())
	protected.Put("/sales/:recordId", sales.UpdateSaleHandler())
	protected.Post("/sales/:recordId/status", sales.SetStatusHandler())
	protected.Delete("/sales/:recordId", sales.DeleteSaleHandler())

	// Cash flow
	protected.Post("/expenditures", cashflow.CreateExpenditureHandler())
	protected.Get("/expenditures", cashflow.ListExpendituresHandler())
	protected.Delete("/expenditures/:id", cashflow.DeleteExpenditureHandler())
	protected.Post("/cash-entries", cashflow.CreateCashEntryHandler())
	protected.Get("/cash-entries", cashflow.ListCashEntriesHandler())
	protected.Delete("/cash-entries/:id", cashflow.DeleteCashEntryHandler())
	protected.Get("/cashflow/totals", cashflow.TotalsHandler())

	// Dashboard
	protected.Get("/dashboard/summary", dashboard.SummaryHandler())
	protected.Get("/dashboard/cash-trend", dashboard.CashTrendHandler())

	// Activity log
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	// Admin-only operations
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Post("/users", auth.CreateUserHandler())
	adminRoutes.Delete("/tiers/:name", catalog.RemoveTierHandler())
	adminRoutes.Get("/deletion-requests", deletion.ListDeletionRequestsHandler())
	adminRoutes.Post("/deletion-requests/:id/approve", deletion.ApproveDeletionHandler())
	adminRoutes.Post("/deletion-requests/:id/reject", deletion.RejectDeletionHandler())
	adminRoutes.Delete("/audit-logs", audit.ClearAuditLogsHandler())
	adminRoutes.Get("/export/:table", export.ExportCSVHandler())
	adminRoutes.Post("/backup", export.BackupHandler(cfg))

	logrus.Infof("server listening on port %s", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logrus.Fatal(err)
	}
}
