package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Franca20/telegram-motorista-bot/internal/driver"
)

// Spreadsheet layout constants.
const (
	sheetName = "Fechamento"

	// dirPermissions is the permission mode for the output directory.
	dirPermissions = 0750
)

// Fill colours by status. Matches the legend sent to operators:
// yellow = active, green = completed, red = cancelled.
const (
	colourHeader    = "D3D3D3"
	colourActive    = "FFFF00"
	colourCompleted = "00B050"
	colourCancelled = "FF0000"

	fontBlack = "000000"
	fontWhite = "FFFFFF"
)

// headers are the spreadsheet column titles, in column order.
var headers = []string{"LH", "Nome", "Placa", "Status", "Data"}

// columnWidths maps each column to its fixed width.
var columnWidths = map[string]float64{
	"A": 15, // LH
	"B": 25, // Nome
	"C": 15, // Placa
	"D": 12, // Status
	"E": 18, // Data
}

// Renderer writes colour-coded closing report spreadsheets.
type Renderer struct {
	dir string
	now func() time.Time
}

// NewRenderer creates a renderer writing into the given directory.
// The directory is created on first render if missing.
func NewRenderer(dir string) *Renderer {
	return &Renderer{
		dir: dir,
		now: time.Now,
	}
}

// Render writes the report rows to the day's spreadsheet and returns its
// path. The file is rewritten wholesale on every call; the filename
// carries the current date so each day gets its own file.
//
// Parameters:
//   - rows: Report rows from driver.Registry.Report()
//
// Returns:
//   - string: Path of the written .xlsx file
//   - error: If styling or writing fails
func (r *Renderer) Render(rows []driver.ReportRow) (string, error) {
	if err := os.MkdirAll(r.dir, dirPermissions); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook, nothing to flush

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("removing default sheet: %w", err)
	}

	if err := r.writeHeaders(f); err != nil {
		return "", err
	}
	if err := r.writeRows(f, rows); err != nil {
		return "", err
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return "", fmt.Errorf("setting column width: %w", err)
		}
	}

	path := filepath.Join(r.dir,
		fmt.Sprintf("planilha_fechamento_%s.xlsx", r.now().Format("02_01_2006")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving report: %w", err)
	}

	return path, nil
}

// writeHeaders writes the bold grey header row.
func (r *Renderer) writeHeaders(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colourHeader}},
		Font:      &excelize.Font{Bold: true, Color: fontBlack},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder(),
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("addressing header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return fmt.Errorf("styling header: %w", err)
		}
	}
	return nil
}

// writeRows writes one styled line per report row, colour-coded by status.
func (r *Renderer) writeRows(f *excelize.File, rows []driver.ReportRow) error {
	styles := make(map[driver.Status]int, 3)
	for _, status := range []driver.Status{driver.StatusActive, driver.StatusCompleted, driver.StatusCancelled} {
		fill, font := statusStyle(status)
		style, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
			Font:      font,
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
			Border:    thinBorder(),
		})
		if err != nil {
			return fmt.Errorf("creating row style: %w", err)
		}
		styles[status] = style
	}

	for i, row := range rows {
		rowIdx := i + 2 // row 1 is the header
		values := []string{row.Key, row.Name, row.Plate, string(row.Status), row.Timestamp}

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx)
			if err != nil {
				return fmt.Errorf("addressing cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("writing row %d: %w", rowIdx, err)
			}
			if err := f.SetCellStyle(sheetName, cell, cell, styles[row.Status]); err != nil {
				return fmt.Errorf("styling row %d: %w", rowIdx, err)
			}
		}
	}
	return nil
}

// statusStyle returns the fill colour and font for a status.
func statusStyle(status driver.Status) (fill string, font *excelize.Font) {
	switch status {
	case driver.StatusCompleted:
		return colourCompleted, &excelize.Font{Bold: true, Color: fontWhite}
	case driver.StatusCancelled:
		return colourCancelled, &excelize.Font{Bold: true, Color: fontWhite}
	default:
		return colourActive, &excelize.Font{Bold: true, Color: fontBlack}
	}
}

// thinBorder returns a thin border on all four sides.
func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Style: 1},
		{Type: "right", Style: 1},
		{Type: "top", Style: 1},
		{Type: "bottom", Style: 1},
	}
}
