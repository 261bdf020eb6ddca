package generate_excel

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"parte-diario/internal/storage"
)

const sheet = "Reporte"

type column struct {
	title string
	width float64
}

var columns = []column{
	{"ID", 8},
	{"FECHA", 12},
	{"SECTOR", 20},
	{"TURNO", 10},
	{"OPERARIOS", 10},
	{"HORAS", 10},
	{"SUPERVISOR", 20},
}

type GenerateExcelStorage interface {
	ReportsInRange(ctx context.Context, rng storage.DateRange) ([]storage.Report, error)
}

type GenerateExcelService struct {
	storage GenerateExcelStorage
}

func NewGenerateService(storage GenerateExcelStorage) *GenerateExcelService {
	return &GenerateExcelService{storage: storage}
}

// GenerateExcel builds an xlsx workbook with one row per report dated within rng.
func (g *GenerateExcelService) GenerateExcel(ctx context.Context, rng storage.DateRange) ([]byte, error) {
	const op = "service.generate_excel.GenerateExcel"

	reports, err := g.storage.ReportsInRange(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch data: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: header style: %w", op, err)
	}

	header := make([]interface{}, 0, len(columns))
	for i, c := range columns {
		header = append(header, c.title)

		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, c.width); err != nil {
			return nil, fmt.Errorf("%s: column width: %w", op, err)
		}
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("%s: header: %w", op, err)
	}

	lastHeader, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("%s: header style: %w", op, err)
	}

	for i := range reports {
		rep := &reports[i]

		row := []interface{}{
			rep.ID,
			rep.Date.Display(),
			strings.ToUpper(catalogName(rep.Sector)),
			string(rep.Shift),
			rep.OperatorCount(),
			rep.TotalHours().InexactFloat64(),
			strings.ToUpper(catalogName(rep.Supervisor)),
		}

		if err := f.SetSheetRow(sheet, cellName(1, i+2), &row); err != nil {
			return nil, fmt.Errorf("%s: report id=%d: %w", op, rep.ID, err)
		}
	}

	err = f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return nil, fmt.Errorf("%s: panes: %w", op, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write: %w", op, err)
	}

	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func catalogName(item *storage.CatalogItem) string {
	if item == nil {
		return ""
	}
	return item.Name
}
