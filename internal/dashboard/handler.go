// Package dashboard aggregates the ledgers into the figures the front
// page shows. Read-only.
package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/musika08/Inventory-Pro/internal/database"
	"github.com/musika08/Inventory-Pro/internal/models"
	"github.com/musika08/Inventory-Pro/internal/stock"
)

type SummaryResponse struct {
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	TotalMoney      decimal.Decimal `json:"total_money"`
	MonthlyProfit   decimal.Decimal `json:"monthly_profit"`
	NetPeriodProfit decimal.Decimal `json:"net_period_profit"`
	UnpaidBalance   decimal.Decimal `json:"unpaid_balance"`
	TopProducts     []TopProduct    `json:"top_products"`
	StockAlerts     []StockAlert    `json:"stock_alerts"`
}

type TopProduct struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

type StockAlert struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

type TrendPoint struct {
	Date           string          `json:"date"`
	Amount         decimal.Decimal `json:"amount"`
	CumulativeCash decimal.Decimal `json:"cumulative_cash"`
}

// GET /api/dashboard/summary?year=2026&month=8
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		year, month := now.Year(), int(now.Month())
		if _, err := fmt.Sscan(c.Query("year"), &year); err != nil {
			year = now.Year()
		}
		if _, err := fmt.Sscan(c.Query("month"), &month); err != nil || month < 1 || month > 12 {
			month = int(now.Month())
		}

		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0)

		var allProfit, deposits, expenses, monthProfit, unpaid decimal.NullDecimal

		if err := database.DB.Model(&models.SaleRecord{}).Select("SUM(profit)").Scan(&allProfit).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot sum profit")
		}
		if err := database.DB.Model(&models.CashEntry{}).Select("SUM(amount)").Scan(&deposits).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot sum deposits")
		}
		if err := database.DB.Model(&models.Expenditure{}).Select("SUM(cost)").Scan(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot sum expenditures")
		}
		if err := database.DB.Model(&models.SaleRecord{}).
			Where("date >= ? AND date < ?", from, to).
			Select("SUM(profit)").Scan(&monthProfit).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot sum monthly profit")
		}
		if err := database.DB.Model(&models.SaleRecord{}).
			Where("date >= ? AND date < ? AND payment = ?", from, to, models.PaymentUnpaid).
			Select("SUM(total)").Scan(&unpaid).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot sum unpaid balance")
		}

		// top sellers of the period
		type topRow struct {
			Name string
			Qty  int
		}
		var topRows []topRow
		if err := database.DB.Model(&models.SaleRecord{}).
			Select("products.name AS name, SUM(sale_records.quantity) AS qty").
			Joins("JOIN products ON products.id = sale_records.product_id").
			Where("sale_records.date >= ? AND sale_records.date < ?", from, to).
			Group("products.name").
			Order("qty DESC").
			Limit(5).
			Scan(&topRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot compute top products")
		}

		// low stock alerts
		type tallyRow struct {
			Name  string
			Total int
		}
		var tallies []tallyRow
		if err := database.DB.Model(&models.Product{}).
			Select("products.name AS name, COALESCE(SUM(CASE WHEN stock_batches.status = ? THEN stock_batches.quantity ELSE 0 END), 0) AS total", models.StockStatusInStock).
			Joins("LEFT JOIN stock_batches ON stock_batches.product_id = products.id").
			Group("products.name").
			Scan(&tallies).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot compute stock alerts")
		}

		resp := SummaryResponse{
			Year:            year,
			Month:           month,
			TotalMoney:      deposits.Decimal.Add(allProfit.Decimal).Sub(expenses.Decimal),
			MonthlyProfit:   monthProfit.Decimal,
			NetPeriodProfit: monthProfit.Decimal.Sub(expenses.Decimal),
			UnpaidBalance:   unpaid.Decimal,
			TopProducts:     make([]TopProduct, 0, len(topRows)),
			StockAlerts:     []StockAlert{},
		}
		for _, r := range topRows {
			resp.TopProducts = append(resp.TopProducts, TopProduct{ProductName: r.Name, Quantity: r.Qty})
		}
		for _, t := range tallies {
			if t.Total < stock.LowStockThreshold {
				resp.StockAlerts = append(resp.StockAlerts, StockAlert{ProductName: t.Name, Quantity: t.Total})
			}
		}
		sort.Slice(resp.StockAlerts, func(i, j int) bool {
			return resp.StockAlerts[i].Quantity < resp.StockAlerts[j].Quantity
		})

		return c.JSON(resp)
	}
}

// GET /api/dashboard/cash-trend
// Daily net movement (sale profit + deposits - expenses) with a running
// cumulative balance.
func CashTrendHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		type dayRow struct {
			Day    time.Time
			Amount decimal.Decimal
		}

		byDay := map[string]decimal.Decimal{}

		add := func(rows []dayRow, sign decimal.Decimal) {
			for _, r := range rows {
				key := r.Day.Format("2006-01-02")
				byDay[key] = byDay[key].Add(r.Amount.Mul(sign))
			}
		}

		var profits, deposits, expenses []dayRow
		if err := database.DB.Model(&models.SaleRecord{}).
			Select("date AS day, SUM(profit) AS amount").
			Group("date").Scan(&profits).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot read sales trend")
		}
		if err := database.DB.Model(&models.CashEntry{}).
			Select("date AS day, SUM(amount) AS amount").
			Group("date").Scan(&deposits).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot read deposit trend")
		}
		if err := database.DB.Model(&models.Expenditure{}).
			Select("date AS day, SUM(cost) AS amount").
			Group("date").Scan(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot read expense trend")
		}

		one := decimal.NewFromInt(1)
		add(profits, one)
		add(deposits, one)
		add(expenses, one.Neg())

		days := make([]string, 0, len(byDay))
		for d := range byDay {
			days = append(days, d)
		}
		sort.Strings(days)

		points := make([]TrendPoint, 0, len(days))
		running := decimal.Zero
		for _, d := range days {
			running = running.Add(byDay[d])
			points = append(points, TrendPoint{
				Date:           d,
				Amount:         byDay[d],
				CumulativeCash: running,
			})
		}

		return c.JSON(points)
	}
}
