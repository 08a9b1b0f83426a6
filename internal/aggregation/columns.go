package aggregation

import (
	"strings"

	"github.com/ginjaninja78/inventory-consolidator/internal/types"
)

// ColumnKind tells the report writer how to store a cell.
type ColumnKind int

const (
	// KindText cells are stored as strings (codes keep leading zeros).
	KindText ColumnKind = iota

	// KindNumber cells are stored as numbers with the report number format.
	KindNumber
)

// Column is one column of the rendered report.
type Column struct {
	Label string
	Kind  ColumnKind

	// Value returns the cell of a row: a string for KindText, a float64
	// for KindNumber.
	Value func(Row) any
}

// Labels are the header captions of the report.
type Labels struct {
	Code           string `yaml:"code"`
	Description    string `yaml:"description"`
	QuantityPrefix string `yaml:"quantity_prefix"`
	Price          string `yaml:"price"`
	TotalQuantity  string `yaml:"total_quantity"`
	TotalPrice     string `yaml:"total_price"`
}

// DefaultLabels returns the captions of the branch stock report.
func DefaultLabels() Labels {
	return Labels{
		Code:           "Código",
		Description:    "DESCRIÇÃO",
		QuantityPrefix: "QUANT",
		Price:          "PREÇO",
		TotalQuantity:  "QTD TOTAL",
		TotalPrice:     "PREÇO TOTAL",
	}
}

// WithDefaults fills empty captions from DefaultLabels.
func (l Labels) WithDefaults() Labels {
	d := DefaultLabels()
	fill := func(v *string, def string) {
		if strings.TrimSpace(*v) == "" {
			*v = def
		}
	}
	fill(&l.Code, d.Code)
	fill(&l.Description, d.Description)
	fill(&l.QuantityPrefix, d.QuantityPrefix)
	fill(&l.Price, d.Price)
	fill(&l.TotalQuantity, d.TotalQuantity)
	fill(&l.TotalPrice, d.TotalPrice)
	return l
}

// QuantityLabel returns the caption of a location column, e.g. "QUANT RECIFE".
func (l Labels) QuantityLabel(loc types.LocationKey) string {
	return l.QuantityPrefix + " " + string(loc)
}

// ColumnOptions selects optional columns.
type ColumnOptions struct {
	// IncludeTotalQuantity adds the total quantity column before the price.
	IncludeTotalQuantity bool
}

// Columns returns the report columns in their fixed order: code,
// description, one quantity per location, [total quantity], price,
// total price.
func (t *Table) Columns(labels Labels, opts ColumnOptions) []Column {
	labels = labels.WithDefaults()

	cols := []Column{
		{Label: labels.Code, Kind: KindText, Value: func(r Row) any { return r.Code }},
		{Label: labels.Description, Kind: KindText, Value: func(r Row) any { return r.Description }},
	}

	for i, loc := range t.Locations {
		i := i
		cols = append(cols, Column{
			Label: labels.QuantityLabel(loc),
			Kind:  KindNumber,
			Value: func(r Row) any { return r.Quantity(i) },
		})
	}

	if opts.IncludeTotalQuantity {
		cols = append(cols, Column{Label: labels.TotalQuantity, Kind: KindNumber, Value: func(r Row) any { return r.TotalQuantity }})
	}

	cols = append(cols,
		Column{Label: labels.Price, Kind: KindNumber, Value: func(r Row) any { return r.Price }},
		Column{Label: labels.TotalPrice, Kind: KindNumber, Value: func(r Row) any { return r.TotalPrice }},
	)

	return cols
}
