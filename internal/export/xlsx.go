package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"billforge/internal/domain"
)

const sheetName = "Documents"

// WriteXLSX renders the documents as a single-sheet workbook and writes it
// to w. Column layout matches the CSV export.
func WriteXLSX(w io.Writer, docs []domain.Document) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeRow(f, 1, columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range docs {
		if err := writeRow(f, i+2, documentToRow(&docs[i])); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, values []string) error {
	for col, val := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, val); err != nil {
			return err
		}
	}
	return nil
}
