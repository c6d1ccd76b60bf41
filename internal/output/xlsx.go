package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/devanand13/bomx/internal/bomschema"
	"github.com/devanand13/bomx/internal/extract"
)

const sheetName = "BOM"

// WriteXLSX writes one workbook with a single sheet: a bold header row in
// schema field order, then one row per item.
func WriteXLSX(res *extract.Result, d *bomschema.Descriptor, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	cols := columns(res, d)
	for i, col := range cols {
		cellName, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cellName, col); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(cols), 1)
		_ = f.SetCellStyle(sheetName, "A1", last, headerStyle)
	}

	for r, item := range res.Items {
		for c, col := range cols {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cellName, cell(item[col])); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
