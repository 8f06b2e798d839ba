// Package export renders the pivot table as a downloadable workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"desembolsos/internal/report"
	"desembolsos/internal/view"
)

const (
	SheetName   = "Desembolsos"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	firstColWidth = 42
	colWidth      = 16
)

// WritePivot writes the pivot as a single-sheet workbook. The header row and
// the consolidated total row are bold; amounts use the #,##0.00 format.
func WritePivot(w io.Writer, p report.Pivot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	primary := view.Brand.Primary
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: primary},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#F1F3F5"}, Pattern: 1},
		Border:    []excelize.Border{{Type: "bottom", Color: view.Brand.Support, Style: 2}},
		Alignment: &excelize.Alignment{Horizontal: "left"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: primary},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#F9F6FF"}, Pattern: 1},
		NumFmt: 4, // #,##0.00
	})
	if err != nil {
		return fmt.Errorf("total style: %w", err)
	}
	numberStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("number style: %w", err)
	}

	header := []any{view.TableFirstHeader}
	for _, c := range p.Columns {
		header = append(header, c.Label)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range p.Rows {
		rowNum := i + 2
		values := make([]any, 0, len(r.Values)+1)
		values = append(values, r.Label)
		for _, v := range r.Values {
			values = append(values, v.InexactFloat64())
		}
		start, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(SheetName, start, &values); err != nil {
			return fmt.Errorf("write row %d: %w", rowNum, err)
		}

		style := numberStyle
		if r.Total {
			style = totalStyle
		}
		end, _ := excelize.CoordinatesToCellName(len(values), rowNum)
		from := start
		if !r.Total {
			from, _ = excelize.CoordinatesToCellName(2, rowNum)
		}
		if err := f.SetCellStyle(SheetName, from, end, style); err != nil {
			return fmt.Errorf("style row %d: %w", rowNum, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", firstColWidth); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	if len(p.Columns) > 0 {
		lastCol, _ := excelize.ColumnNumberToName(len(p.Columns) + 1)
		if err := f.SetColWidth(SheetName, "B", lastCol, colWidth); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
