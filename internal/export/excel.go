package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// BuildWorkbook assembles the full backup: one sheet per store.
func BuildWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()

	for i, name := range TableNames {
		table, err := BuildTable(name)
		if err != nil {
			return nil, err
		}

		sheet := table.Name
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, err
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, err
			}
		}

		header := make([]interface{}, len(table.Header))
		for j, h := range table.Header {
			header[j] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return nil, err
		}

		for r, row := range table.Rows {
			cells := make([]interface{}, len(row))
			for j, v := range row {
				cells[j] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

// WorkbookFilename is the timestamped backup name, e.g.
// backup_20260828_153000.xlsx.
func WorkbookFilename(stamp string) string {
	return fmt.Sprintf("backup_%s.xlsx", stamp)
}
