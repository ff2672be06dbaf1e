package analysis

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"silicorex/datasets"
)

// NotAvailable stands in for a metric the datasets do not cover.
const NotAvailable = "Not Available"

// Metric is one extracted value. An unavailable metric prints as the
// sentinel. Text marks a value taken from a column that is not purely
// numeric; it stays a string in JSON even when it looks like a number.
type Metric struct {
	Value     string
	Available bool
	Text      bool
}

// Available wraps a present value.
func Available(v string) Metric {
	return Metric{Value: v, Available: true}
}

// Verbatim wraps a cell copied from a text column.
func Verbatim(v string) Metric {
	return Metric{Value: v, Available: true, Text: true}
}

// Missing is the metric for a dataset with no matching row.
func Missing() Metric {
	return Metric{}
}

func (m Metric) String() string {
	if !m.Available {
		return NotAvailable
	}
	return m.Value
}

// MarshalJSON encodes numeric values as numbers and everything else as the
// printed string.
func (m Metric) MarshalJSON() ([]byte, error) {
	if m.Available && !m.Text {
		if d, err := decimal.NewFromString(m.Value); err == nil {
			return []byte(d.String()), nil
		}
	}
	return json.Marshal(m.String())
}

// FeasibilityMetrics is the per-district snapshot fed to the prompt.
type FeasibilityMetrics struct {
	TotalAnnualRainfall Metric `json:"total_annual_rainfall"`
	WorkingBoilers      Metric `json:"working_boilers"`
	TotalRoadLength     Metric `json:"total_road_length"`
}

// Extract pulls one value per dataset for district. It never fails; a
// dataset without a match contributes the sentinel.
func Extract(district string, tables *datasets.DistrictTables) FeasibilityMetrics {
	return FeasibilityMetrics{
		TotalAnnualRainfall: annualRainfall(district, tables.Rainfall),
		WorkingBoilers:      firstMatch(district, tables.Boilers, datasets.BoilerDistrictColumn, datasets.BoilerValueColumn),
		TotalRoadLength:     firstMatch(district, tables.Roads, datasets.RoadDistrictColumn, datasets.RoadValueColumn),
	}
}

// annualRainfall sums the periodic rows of each district and picks the
// first district, in sorted order, matching case-insensitively.
func annualRainfall(district string, t *datasets.Table) Metric {
	if t == nil {
		return Missing()
	}
	dc, vc := t.Column(datasets.RainfallDistrictColumn), t.Column(datasets.RainfallValueColumn)
	if dc < 0 || vc < 0 {
		return Missing()
	}

	sums := make(map[string]float64)
	for _, row := range t.Rows {
		if dc >= len(row) {
			continue
		}
		name := row[dc]
		total := sums[name]
		if vc < len(row) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[vc]), 64); err == nil {
				total += v
			}
		}
		sums[name] = total
	}

	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.EqualFold(name, district) {
			return Available(decimal.NewFromFloat(sums[name]).Round(2).String())
		}
	}
	return Missing()
}

// firstMatch returns the value column of the first row whose district
// matches case-insensitively. Later duplicates are ignored.
func firstMatch(district string, t *datasets.Table, districtCol, valueCol string) Metric {
	if t == nil {
		return Missing()
	}
	dc, vc := t.Column(districtCol), t.Column(valueCol)
	if dc < 0 || vc < 0 {
		return Missing()
	}
	for _, row := range t.Rows {
		if dc >= len(row) || !strings.EqualFold(row[dc], district) {
			continue
		}
		if vc >= len(row) {
			return Missing()
		}
		v := strings.TrimSpace(row[vc])
		if v == "" {
			return Missing()
		}
		if !numericColumn(t, vc) {
			return Verbatim(v)
		}
		return Available(v)
	}
	return Missing()
}

// numericColumn reports whether every non-empty cell of column c parses as
// a number.
func numericColumn(t *datasets.Table, c int) bool {
	for _, row := range t.Rows {
		if c >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[c])
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
	}
	return true
}
