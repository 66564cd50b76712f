package export

import (
	"fmt"

	"purchases-api/domain"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Purchases"

type (
	ExportService interface {
		PurchasesXLSX(purchases []domain.Purchase) ([]byte, error)
	}

	exportService struct{}
)

func NewExportService() ExportService {
	return &exportService{}
}

// PurchasesXLSX renders purchases into a single-sheet workbook.
func (s *exportService) PurchasesXLSX(purchases []domain.Purchase) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	if err := writePurchases(f, sheetName, purchases); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// writePurchases fills sheet with a header row and one row per purchase. It
// stops at the first cell that cannot be written.
func writePurchases(f *excelize.File, sheet string, purchases []domain.Purchase) error {
	headers := []any{"Date", "Category", "Subcategory", "Price"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}

	for i, p := range purchases {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			p.Timestamp.Format("2006-01-02"),
			p.Category,
			p.Subcategory,
			p.Price.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}

	for _, w := range []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 14},
		{"B", "C", 24},
		{"D", "D", 12},
	} {
		if err := f.SetColWidth(sheet, w.from, w.to, w.width); err != nil {
			return err
		}
	}
	return nil
}
