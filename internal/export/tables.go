// Package export renders the ledgers as flat tables. Column order is part
// of the external contract: consumers round-trip these files, so the
// headers below never change order.
package export

import (
	"fmt"

	"github.com/musika08/Inventory-Pro/internal/catalog"
	"github.com/musika08/Inventory-Pro/internal/database"
	"github.com/musika08/Inventory-Pro/internal/models"
)

// Table is one exported store: a fixed header and its rows, in order.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// TableNames lists the exportable stores, in backup sheet order.
var TableNames = []string{"catalog", "stock", "sales", "deletion-queue", "audit-log"}

// BuildTable materialises one store as a flat table.
func BuildTable(name string) (*Table, error) {
	switch name {
	case "catalog":
		return buildCatalogTable()
	case "stock":
		return buildStockTable()
	case "sales":
		return buildSalesTable()
	case "deletion-queue":
		return buildDeletionTable()
	case "audit-log":
		return buildAuditTable()
	default:
		return nil, fmt.Errorf("unknown table: %s", name)
	}
}

// Product Catalog: Product Name, Cost per Unit, Boxed Cost, <tier columns>.
// Tier columns are dynamic; their relative order is the sorted tier names.
func buildCatalogTable() (*Table, error) {
	tierNames, err := catalog.TierNames()
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := database.DB.Preload("Tiers").Order("name").Find(&products).Error; err != nil {
		return nil, err
	}

	header := append([]string{"Product Name", "Cost per Unit", "Boxed Cost"}, tierNames...)

	rows := make([][]string, 0, len(products))
	for _, p := range products {
		row := []string{p.Name, p.UnitCost.StringFixed(2), p.BoxedCost.StringFixed(2)}
		prices := map[string]string{}
		for _, t := range p.Tiers {
			prices[t.Name] = t.Price.StringFixed(2)
		}
		for _, tn := range tierNames {
			price, ok := prices[tn]
			if !ok {
				price = "0.00"
			}
			row = append(row, price)
		}
		rows = append(rows, row)
	}

	return &Table{Name: "Product Catalog", Header: header, Rows: rows}, nil
}

func buildStockTable() (*Table, error) {
	var batches []models.StockBatch
	if err := database.DB.Preload("Product").Order("date ASC, id ASC").Find(&batches).Error; err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, []string{
			b.Product.Name,
			fmt.Sprintf("%d", b.Quantity),
			string(b.Status),
			b.Date.Format("2006-01-02"),
		})
	}

	return &Table{
		Name:   "Stock Ledger",
		Header: []string{"Product Name", "Quantity", "Status", "Date"},
		Rows:   rows,
	}, nil
}

func buildSalesTable() (*Table, error) {
	var records []models.SaleRecord
	if err := database.DB.Preload("Product").Order("date ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Date.Format("2006-01-02"),
			r.Customer,
			r.Product.Name,
			fmt.Sprintf("%d", r.Quantity),
			r.TierName,
			r.UnitCost.StringFixed(2),
			r.BoxedCost.StringFixed(2),
			r.Profit.StringFixed(2),
			r.Discount.StringFixed(2),
			r.Total.StringFixed(2),
			string(r.Status),
			string(r.Payment),
		})
	}

	return &Table{
		Name:   "Sales Ledger",
		Header: []string{"Date", "Customer", "Product", "Qty", "Price Tier", "Cost", "Boxed Cost", "Profit", "Discount", "Total", "Status", "Payment"},
		Rows:   rows,
	}, nil
}

func buildDeletionTable() (*Table, error) {
	var reqs []models.DeletionRequest
	if err := database.DB.Order("created_at ASC, id ASC").Find(&reqs).Error; err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(reqs))
	for _, r := range reqs {
		rows = append(rows, []string{
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.RequestedBy,
			r.EntityType,
			r.Snapshot,
		})
	}

	return &Table{
		Name:   "Deletion Queue",
		Header: []string{"Request Date", "User", "Page", "Details"},
		Rows:   rows,
	}, nil
}

func buildAuditTable() (*Table, error) {
	var logs []models.AuditLog
	if err := database.DB.Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(logs))
	for _, entry := range logs {
		rows = append(rows, []string{
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
			entry.UserName,
			entry.Description,
		})
	}

	return &Table{
		Name:   "Audit Log",
		Header: []string{"Timestamp", "Identity", "Action Detail"},
		Rows:   rows,
	}, nil
}
