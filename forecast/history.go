// Package forecast projects fab prices and costs forward and derives the
// profit and loss outlook from them.
package forecast

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"silicorex/datasets"
)

// Columns of the synthetic fab dataset, in feature order.
const (
	ColumnDate         = "date"
	ColumnSellingPrice = "average_selling_price_usd"
	ColumnWaferCost    = "silicon_wafer_cost_usd"
	ColumnEnergyCost   = "energy_cost_per_kwh_usd"
	ColumnLaborCost    = "total_daily_labor_cost_usd"
)

// NumFeatures is the number of tracked series.
const NumFeatures = 4

// FeatureColumns lists the tracked series in the order models expect.
var FeatureColumns = [NumFeatures]string{ColumnSellingPrice, ColumnWaferCost, ColumnEnergyCost, ColumnLaborCost}

// ErrInsufficientHistory means there are too few observations to project.
var ErrInsufficientHistory = errors.New("not enough history to forecast")

// History is the daily observation matrix, one row per day and one column
// per feature.
type History struct {
	Rows [][]float64
}

// HistoryFromTable parses the four feature columns of t.
func HistoryFromTable(t *datasets.Table) (*History, error) {
	var cols [NumFeatures]int
	for i, name := range FeatureColumns {
		if !t.HasColumn(name) {
			return nil, fmt.Errorf("fab dataset: missing column %q", name)
		}
		cols[i] = t.Column(name)
	}

	h := &History{Rows: make([][]float64, 0, t.Len())}
	for r, row := range t.Rows {
		obs := make([]float64, NumFeatures)
		for i, c := range cols {
			if c >= len(row) {
				return nil, fmt.Errorf("fab dataset: row %d: missing %s", r+2, FeatureColumns[i])
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[c]), 64)
			if err != nil {
				return nil, fmt.Errorf("fab dataset: row %d: %s: %w", r+2, FeatureColumns[i], err)
			}
			obs[i] = v
		}
		h.Rows = append(h.Rows, obs)
	}
	return h, nil
}

// Len returns the number of observations.
func (h *History) Len() int {
	return len(h.Rows)
}

// Column returns feature i across all observations.
func (h *History) Column(i int) []float64 {
	out := make([]float64, len(h.Rows))
	for r, row := range h.Rows {
		out[r] = row[i]
	}
	return out
}

// Tail returns the last n observations (all of them when n exceeds Len).
func (h *History) Tail(n int) *History {
	if n >= len(h.Rows) {
		return h
	}
	return &History{Rows: h.Rows[len(h.Rows)-n:]}
}

// Series holds one yearly value per feature for years 1..N.
type Series struct {
	SellingPrice []float64 `json:"sellingPrice"`
	WaferCost    []float64 `json:"waferCost"`
	EnergyCost   []float64 `json:"energyCost"`
	LaborCost    []float64 `json:"laborCost"`
}

func seriesFromFeatures(features [NumFeatures][]float64) *Series {
	return &Series{
		SellingPrice: features[0],
		WaferCost:    features[1],
		EnergyCost:   features[2],
		LaborCost:    features[3],
	}
}

// Len returns the horizon in years.
func (s *Series) Len() int {
	return len(s.SellingPrice)
}
