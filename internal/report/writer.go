// =============================================================================
// Inventory Consolidator - Report Writer
// =============================================================================
//
// This module renders the consolidated table into an XLSX workbook.
//
// SHEET LAYOUT:
//   Row 1      Title banner (optional, merged across all columns)
//   Row 2      Subtitle banner (optional, "{date}" becomes dd/mm/yyyy)
//   Row 3      Header row
//   Row 4...   One row per item code
//
//   | Código   | DESCRIÇÃO | QUANT A | QUANT B | PREÇO | PREÇO TOTAL |
//   |----------|-----------|---------|---------|-------|-------------|
//   | 00012345 | Widget X  | 10,00   | 5,00    | 3,00  | 45,00       |
//
// Codes are stored as text so leading zeros survive. Quantities and prices
// are numeric cells with a number format, so spreadsheet formulas work.
//
// =============================================================================

package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/inventory-consolidator/internal/aggregation"
	"github.com/ginjaninja78/inventory-consolidator/internal/logging"
	"github.com/ginjaninja78/inventory-consolidator/pkg/utils"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultFileNameFormat = "relatorio_estoque_{timestamp}_{short_uuid}.xlsx"
	DefaultSheetName      = "Estoque"
	DefaultNumberFormat   = "#,##0.00"
	DefaultSubtitle       = "RELATÓRIO GERAL DE ESTOQUE    DATA: {date}"
)

const (
	minColumnWidth = 8.0
	maxColumnWidth = 60.0
)

// =============================================================================
// WRITER
// =============================================================================

// Options controls the look and naming of the report.
type Options struct {
	// FileNameFormat names the workbook. See utils.GenerateOutputFileName.
	FileNameFormat string

	SheetName string

	// Title and Subtitle are the banner rows. Empty strings omit the row.
	Title    string
	Subtitle string

	// NumberFormat is the Excel number format of numeric cells.
	NumberFormat string

	Labels  aggregation.Labels
	Columns aggregation.ColumnOptions
}

// Writer writes consolidated tables to disk.
type Writer struct {
	opts   Options
	now    func() time.Time
	logger logging.Logger
}

// NewWriter creates a Writer. A nil now selects time.Now.
func NewWriter(opts Options, now func() time.Time, logger logging.Logger) *Writer {
	if opts.FileNameFormat == "" {
		opts.FileNameFormat = DefaultFileNameFormat
	}
	if opts.SheetName == "" {
		opts.SheetName = DefaultSheetName
	}
	if opts.NumberFormat == "" {
		opts.NumberFormat = DefaultNumberFormat
	}
	opts.Labels = opts.Labels.WithDefaults()

	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &Writer{opts: opts, now: now, logger: logger}
}

// Write renders table into a new, uniquely named workbook in dir.
//
// RETURNS:
//   - The path of the written workbook.
//   - An error if the directory cannot be created or the file written.
func (w *Writer) Write(table *aggregation.Table, dir string) (string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}

	name := utils.GenerateOutputFileName(w.opts.FileNameFormat, ".xlsx", w.now(), nil)
	path := filepath.Join(dir, name)
	if utils.FileExists(path) {
		w.logger.Warn("Replacing existing report: %s", path)
	}

	if err := w.WriteFile(table, path); err != nil {
		return "", err
	}

	return path, nil
}

// WriteFile renders table into the workbook at path, replacing it.
func (w *Writer) WriteFile(table *aggregation.Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := w.opts.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	cols := table.Columns(w.opts.Labels, w.opts.Columns)
	styles, err := newStyles(f, w.opts.NumberFormat)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 1: BANNER
	// =========================================================================

	row := 1
	for _, text := range w.bannerLines() {
		if err := writeBanner(f, sheet, row, len(cols), text, styles.banner); err != nil {
			return err
		}
		row++
	}

	// =========================================================================
	// STEP 2: HEADER
	// =========================================================================

	headerRow := row
	widths := make([]float64, len(cols))
	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, col.Label); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		widths[i] = textWidth(col.Label)
	}
	if err := setRowStyle(f, sheet, headerRow, len(cols), styles.header); err != nil {
		return err
	}

	// =========================================================================
	// STEP 3: DATA ROWS
	// =========================================================================

	for r, item := range table.Rows {
		rowNum := headerRow + 1 + r
		for i, col := range cols {
			cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
			if err != nil {
				return err
			}

			switch col.Kind {
			case aggregation.KindNumber:
				v, _ := col.Value(item).(float64)
				if err := f.SetCellFloat(sheet, cell, v, -1, 64); err != nil {
					return fmt.Errorf("failed to write %s: %w", cell, err)
				}
				widths[i] = max(widths[i], textWidth(fmt.Sprintf("%.2f", v))+2)
			default:
				s, _ := col.Value(item).(string)
				if err := f.SetCellStr(sheet, cell, s); err != nil {
					return fmt.Errorf("failed to write %s: %w", cell, err)
				}
				widths[i] = max(widths[i], textWidth(s))
			}
		}
	}

	if len(table.Rows) > 0 {
		if err := w.styleBody(f, sheet, cols, headerRow+1, headerRow+len(table.Rows), styles); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 4: LAYOUT AND SAVE
	// =========================================================================

	for i, width := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width = min(max(width+2, minColumnWidth), maxColumnWidth)
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: fmt.Sprintf("A%d", headerRow+1),
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report %s: %w", path, err)
	}

	w.logger.Debug("Wrote %d row(s) x %d column(s) to %s", len(table.Rows), len(cols), path)
	return nil
}

// bannerLines returns the non-empty banner rows with placeholders filled.
func (w *Writer) bannerLines() []string {
	date := w.now().Format("02/01/2006")
	var lines []string
	for _, text := range []string{w.opts.Title, w.opts.Subtitle} {
		text = strings.ReplaceAll(text, "{date}", date)
		if strings.TrimSpace(text) != "" {
			lines = append(lines, text)
		}
	}
	return lines
}

// styleBody applies the text and number styles column by column.
func (w *Writer) styleBody(f *excelize.File, sheet string, cols []aggregation.Column, first, last int, styles *styleSet) error {
	for i, col := range cols {
		top, err := excelize.CoordinatesToCellName(i+1, first)
		if err != nil {
			return err
		}
		bottom, err := excelize.CoordinatesToCellName(i+1, last)
		if err != nil {
			return err
		}

		style := styles.text
		if col.Kind == aggregation.KindNumber {
			style = styles.number
		}
		if err := f.SetCellStyle(sheet, top, bottom, style); err != nil {
			return fmt.Errorf("failed to style column %d: %w", i+1, err)
		}
	}
	return nil
}

// =============================================================================
// STYLES
// =============================================================================

type styleSet struct {
	banner int
	header int
	text   int
	number int
}

func newStyles(f *excelize.File, numberFormat string) (*styleSet, error) {
	border := []excelize.Border{
		{Type: "left", Color: "BFBFBF", Style: 1},
		{Type: "right", Color: "BFBFBF", Style: 1},
		{Type: "top", Color: "BFBFBF", Style: 1},
		{Type: "bottom", Color: "BFBFBF", Style: 1},
	}

	var s styleSet
	var err error

	s.banner, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create banner style: %w", err)
	}

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	s.text, err = f.NewStyle(&excelize.Style{Border: border})
	if err != nil {
		return nil, fmt.Errorf("failed to create text style: %w", err)
	}

	s.number, err = f.NewStyle(&excelize.Style{
		Border:       border,
		CustomNumFmt: &numberFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create number style: %w", err)
	}

	return &s, nil
}

// writeBanner writes text into row, merged across width columns.
func writeBanner(f *excelize.File, sheet string, row, width int, text string, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(max(width, 1), row)
	if err != nil {
		return err
	}

	if err := f.SetCellStr(sheet, first, text); err != nil {
		return fmt.Errorf("failed to write banner: %w", err)
	}
	if first != last {
		if err := f.MergeCell(sheet, first, last); err != nil {
			return fmt.Errorf("failed to merge banner: %w", err)
		}
	}
	return f.SetCellStyle(sheet, first, last, style)
}

// setRowStyle styles the first width cells of row.
func setRowStyle(f *excelize.File, sheet string, row, width, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(max(width, 1), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

// textWidth approximates the column width needed by s.
func textWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s))
}
