// =============================================================================
// Inventory Consolidator - Aggregation Engine
// =============================================================================
//
// This module consolidates RawRecords from every branch into one table with
// a row per item code and a quantity column per branch.
//
// AGGREGATION STEPS:
//   1. Description per code (first occurrence wins)
//   2. Group by (code, location): sum quantity, mean unit price
//   3. Pivot: one quantity column per location, in first-seen order
//   4. Outer join on code; missing cells are 0
//   5. Price = max of the per-location mean unit prices
//   6. TotalQuantity = sum of the location quantities
//   7. TotalPrice = Price x TotalQuantity
//
// EXAMPLE:
//   A: 00012345 Widget X 10 2,50 25,00
//   B: 00012345 Widget X  5 3,00 15,00
//
//   | Code     | Description | QUANT A | QUANT B | Price | Total Price |
//   |----------|-------------|---------|---------|-------|-------------|
//   | 00012345 | Widget X    | 10      | 5       | 3.00  | 45.00       |
//
// Printed line totals are never summed; every total is derived.
//
// =============================================================================

package aggregation

import (
	"errors"
	"sort"

	"github.com/ginjaninja78/inventory-consolidator/internal/types"
)

// ErrNoData is returned when there is nothing to aggregate. It is a normal
// outcome, not a failure.
var ErrNoData = errors.New("no inventory data")

// =============================================================================
// TABLE STRUCTURE
// =============================================================================

// Row is one item of the consolidated report.
type Row struct {
	Code        string
	Description string

	// Quantities is aligned with Table.Locations. Absent locations hold 0.
	Quantities []float64

	// Price is the maximum of the per-location mean unit prices.
	Price float64

	TotalQuantity float64
	TotalPrice    float64
}

// Quantity returns the quantity of the row at location index i.
func (r Row) Quantity(i int) float64 {
	if i < 0 || i >= len(r.Quantities) {
		return 0
	}
	return r.Quantities[i]
}

// Table is the pivoted, consolidated inventory.
type Table struct {
	// Locations are the quantity columns, in first-seen order.
	Locations []types.LocationKey

	// Rows are ordered by code.
	Rows []Row

	grouped []types.GroupedRecord
}

// Grouped returns the (code, location) groups the table was built from, in
// first-seen order.
func (t *Table) Grouped() []types.GroupedRecord {
	out := make([]types.GroupedRecord, len(t.grouped))
	copy(out, t.grouped)
	return out
}

// =============================================================================
// AGGREGATION
// =============================================================================

type groupKey struct {
	code     string
	location types.LocationKey
}

type groupAcc struct {
	quantity float64
	priceSum float64
	count    int
}

// Aggregate builds the consolidated table.
//
// PARAMETERS:
//   - records: Every RawRecord of the run, in extraction order.
//
// RETURNS:
//   - The consolidated table.
//   - ErrNoData if records is empty.
func Aggregate(records []types.RawRecord) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}

	// =========================================================================
	// STEP 1: DESCRIPTIONS, LOCATIONS AND GROUPS
	// =========================================================================
	// A single pass keeps the first description per code, the first-seen
	// order of locations, and the running sums per (code, location).

	descriptions := make(map[string]string)
	locationIndex := make(map[types.LocationKey]int)
	var locations []types.LocationKey

	groups := make(map[groupKey]*groupAcc)
	var groupOrder []groupKey

	for _, rec := range records {
		if _, ok := descriptions[rec.Code]; !ok {
			descriptions[rec.Code] = rec.Description
		}

		if _, ok := locationIndex[rec.Location]; !ok {
			locationIndex[rec.Location] = len(locations)
			locations = append(locations, rec.Location)
		}

		key := groupKey{code: rec.Code, location: rec.Location}
		acc, ok := groups[key]
		if !ok {
			acc = &groupAcc{}
			groups[key] = acc
			groupOrder = append(groupOrder, key)
		}
		acc.quantity += rec.Quantity
		acc.priceSum += rec.UnitPrice
		acc.count++
	}

	grouped := make([]types.GroupedRecord, 0, len(groupOrder))
	for _, key := range groupOrder {
		acc := groups[key]
		grouped = append(grouped, types.GroupedRecord{
			Code:      key.code,
			Location:  key.location,
			Quantity:  acc.quantity,
			UnitPrice: acc.priceSum / float64(acc.count),
			Count:     acc.count,
		})
	}

	// =========================================================================
	// STEP 2: PIVOT AND OUTER JOIN
	// =========================================================================

	rowIndex := make(map[string]int)
	var rows []Row
	priceSeen := make(map[string]bool)

	for _, g := range grouped {
		i, ok := rowIndex[g.Code]
		if !ok {
			i = len(rows)
			rowIndex[g.Code] = i
			rows = append(rows, Row{
				Code:        g.Code,
				Description: descriptions[g.Code],
				Quantities:  make([]float64, len(locations)),
			})
		}

		row := &rows[i]
		row.Quantities[locationIndex[g.Location]] += g.Quantity

		if !priceSeen[g.Code] || g.UnitPrice > row.Price {
			row.Price = g.UnitPrice
			priceSeen[g.Code] = true
		}
	}

	// =========================================================================
	// STEP 3: DERIVED TOTALS
	// =========================================================================

	for i := range rows {
		var total float64
		for _, q := range rows[i].Quantities {
			total += q
		}
		rows[i].TotalQuantity = total
		rows[i].TotalPrice = rows[i].Price * total
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })

	return &Table{
		Locations: locations,
		Rows:      rows,
		grouped:   grouped,
	}, nil
}
