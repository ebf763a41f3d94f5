package httpadapter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

// writeReportXLSX renders the analysis report as a two-sheet workbook:
// the comparison matrix and the findings/completeness summary.
func writeReportXLSX(w io.Writer, report *domain.SessionReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeMatrixSheet(f, report); err != nil {
		return err
	}
	if err := writeFindingsSheet(f, report); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeMatrixSheet(f *excelize.File, report *domain.SessionReport) error {
	const sheet = "Comparison"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	headers := []string{"Field", "Invoice", "Packing List", "B/L"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, matrixRow := range report.Analysis.Matrix {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, matrixRow.Label)
		write(2, matrixRow.Invoice)
		write(3, matrixRow.PackingList)
		write(4, matrixRow.BL)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "D", 30)
	return nil
}

func writeFindingsSheet(f *excelize.File, report *domain.SessionReport) error {
	const sheet = "Findings"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	write(1, 1, "Status")
	write(2, 1, string(report.Analysis.Status))

	row := 3
	write(1, row, "Findings")
	row++
	if len(report.Analysis.Divergences) == 0 {
		write(1, row, "none")
		row++
	}
	for _, finding := range report.Analysis.Divergences {
		write(1, row, finding)
		row++
	}
	for _, alert := range report.Analysis.OCRAlerts {
		write(1, row, alert)
		row++
	}

	row++
	write(1, row, "Completeness")
	row++
	write(1, row, "Document")
	write(2, row, "Comparative ratio")
	write(3, row, "Required ratio")
	write(4, row, "Missing required")
	row++
	for _, docType := range domain.DocTypes {
		metrics, ok := report.Analysis.Completeness[docType]
		if !ok {
			continue
		}
		missing := make([]string, 0, len(metrics.MissingRequired))
		for _, field := range metrics.MissingRequired {
			missing = append(missing, string(field))
		}
		write(1, row, string(docType))
		write(2, row, metrics.ComparativeRatio)
		write(3, row, metrics.RequiredRatio)
		write(4, row, strings.Join(missing, ", "))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 80)
	_ = f.SetColWidth(sheet, "B", "D", 20)
	return nil
}
