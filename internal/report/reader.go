package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/inventory-consolidator/internal/aggregation"
	"github.com/ginjaninja78/inventory-consolidator/internal/types"
)

// =============================================================================
// REPORT READER
// =============================================================================

// Contents is a report read back from disk.
type Contents struct {
	Sheet string

	// Banner holds the text of the rows above the header.
	Banner []string

	Header []string

	// Rows are the raw cell values, padded to the header width.
	Rows [][]string

	labels aggregation.Labels
}

// Read opens a written report and locates its header row: the first row
// whose first cell is the code caption.
//
// PARAMETERS:
//   - path: The path to the XLSX report.
//   - labels: The captions the report was written with. Empty captions
//     select the defaults.
//
// RETURNS:
//   - The report contents.
//   - An error if the file cannot be opened or has no header row.
func Read(path string, labels aggregation.Labels) (*Contents, error) {
	labels = labels.WithDefaults()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("report %s has no sheets", path)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	contents := &Contents{Sheet: sheet, labels: labels}

	header := -1
	for i, row := range rows {
		if len(row) > 0 && strings.TrimSpace(row[0]) == labels.Code {
			header = i
			break
		}
		if !isRowEmpty(row) {
			contents.Banner = append(contents.Banner, strings.TrimSpace(strings.Join(row, " ")))
		}
	}
	if header < 0 {
		return nil, fmt.Errorf("report %s: no header row starting with %q", path, labels.Code)
	}

	contents.Header = trimTrailingEmpty(rows[header])

	for _, row := range rows[header+1:] {
		if isRowEmpty(row) {
			continue
		}
		padded := make([]string, len(contents.Header))
		copy(padded, row)
		contents.Rows = append(contents.Rows, padded)
	}

	return contents, nil
}

// Column returns the index of the column with the given caption, or -1.
func (c *Contents) Column(label string) int {
	for i, h := range c.Header {
		if h == label {
			return i
		}
	}
	return -1
}

// Text returns the cell of row under label.
func (c *Contents) Text(row int, label string) string {
	i := c.Column(label)
	if i < 0 || row < 0 || row >= len(c.Rows) {
		return ""
	}
	return c.Rows[row][i]
}

// Number returns the numeric cell of row under label. Empty cells are 0.
func (c *Contents) Number(row int, label string) (float64, error) {
	i := c.Column(label)
	if i < 0 {
		return 0, fmt.Errorf("no column %q", label)
	}
	if row < 0 || row >= len(c.Rows) {
		return 0, fmt.Errorf("row %d out of range", row)
	}

	raw := strings.TrimSpace(c.Rows[row][i])
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q row %d: %w", label, row, err)
	}
	return v, nil
}

// Locations returns the locations of the quantity columns, in sheet order.
func (c *Contents) Locations() []types.LocationKey {
	prefix := c.labels.QuantityPrefix + " "
	var out []types.LocationKey
	for _, h := range c.Header {
		if strings.HasPrefix(h, prefix) {
			out = append(out, types.LocationKey(strings.TrimPrefix(h, prefix)))
		}
	}
	return out
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	out := make([]string, end)
	copy(out, row[:end])
	return out
}
