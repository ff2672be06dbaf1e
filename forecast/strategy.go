package forecast

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// DaysPerYear is the number of daily steps aggregated into one year.
const DaysPerYear = 365

// Strategy projects the tracked series years ahead.
type Strategy interface {
	Name() string
	Project(ctx context.Context, h *History, years int) (*Series, error)
}

// Strategy names accepted by Select.
const (
	StrategyTrend = "trend"
	StrategyModel = "model"
)

// TrendStrategy extrapolates the mean daily growth of the last year.
type TrendStrategy struct{}

// Name implements Strategy.
func (TrendStrategy) Name() string { return StrategyTrend }

// Project compounds the trailing mean day-over-day change into a yearly
// factor and grows the last observation by it.
func (TrendStrategy) Project(ctx context.Context, h *History, years int) (*Series, error) {
	if h.Len() < 2 {
		return nil, ErrInsufficientHistory
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	window := h.Tail(DaysPerYear)

	var out [NumFeatures][]float64
	for f := 0; f < NumFeatures; f++ {
		values := window.Column(f)
		growth := meanDailyChange(values)
		factor := math.Pow(1+growth, DaysPerYear)
		last := values[len(values)-1]

		out[f] = make([]float64, years)
		for y := 1; y <= years; y++ {
			out[f][y-1] = last * math.Pow(factor, float64(y))
		}
	}
	return seriesFromFeatures(out), nil
}

// meanDailyChange averages the percentage change between consecutive
// values. Steps from a zero value are undefined and skipped.
func meanDailyChange(values []float64) float64 {
	changes := make([]float64, 0, len(values))
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		changes = append(changes, (values[i]-values[i-1])/values[i-1])
	}
	if len(changes) == 0 {
		return 0
	}
	return stat.Mean(changes, nil)
}

// Select returns the strategy named name.
func Select(name string, models *ModelLoader) (Strategy, error) {
	switch name {
	case "", StrategyTrend:
		return TrendStrategy{}, nil
	case StrategyModel:
		return &ModelStrategy{Loader: models}, nil
	}
	return nil, fmt.Errorf("unknown forecast strategy %q", name)
}
