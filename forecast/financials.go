package forecast

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Fixed operating assumptions.
const (
	MonthsPerYear        = 12
	AnnualEnergyKWh      = 500_000_000
	DepreciationYears    = 5
	billion              = 1e9
	DefaultInitialCapex  = 10.0
	DefaultCapacityWPM   = 50_000
	DefaultChipsPerWafer = 400
	DefaultYears         = 5
	MaxYears             = 10
)

// Slider bounds for the user-tunable assumptions.
const (
	MinInitialCapex  = 5.0
	MaxInitialCapex  = 20.0
	MinCapacityWPM   = 10_000
	MaxCapacityWPM   = 100_000
	MinChipsPerWafer = 100
	MaxChipsPerWafer = 1000
)

// Assumptions are the user inputs to the financial model.
type Assumptions struct {
	InitialCapex  float64 `json:"initialCapex"`
	CapacityWPM   int     `json:"capacityWpm"`
	ChipsPerWafer int     `json:"chipsPerWafer"`
	Years         int     `json:"years"`
}

// DefaultAssumptions returns the slider defaults.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		InitialCapex:  DefaultInitialCapex,
		CapacityWPM:   DefaultCapacityWPM,
		ChipsPerWafer: DefaultChipsPerWafer,
		Years:         DefaultYears,
	}
}

// Validate checks every input against its bounds.
func (a Assumptions) Validate() error {
	if a.InitialCapex < MinInitialCapex || a.InitialCapex > MaxInitialCapex {
		return fmt.Errorf("capex must be between %.0f and %.0f billion USD", MinInitialCapex, MaxInitialCapex)
	}
	if a.CapacityWPM < MinCapacityWPM || a.CapacityWPM > MaxCapacityWPM {
		return fmt.Errorf("capacity must be between %d and %d wafers per month", MinCapacityWPM, MaxCapacityWPM)
	}
	if a.ChipsPerWafer < MinChipsPerWafer || a.ChipsPerWafer > MaxChipsPerWafer {
		return fmt.Errorf("chips per wafer must be between %d and %d", MinChipsPerWafer, MaxChipsPerWafer)
	}
	if a.Years < 1 || a.Years > MaxYears {
		return fmt.Errorf("years must be between 1 and %d", MaxYears)
	}
	return nil
}

// Projection is the yearly profit and loss outlook in billion USD.
type Projection struct {
	Strategy      string      `json:"strategy"`
	Assumptions   Assumptions `json:"assumptions"`
	Years         []int       `json:"years"`
	Series        *Series     `json:"series"`
	Revenue       []float64   `json:"revenue"`
	Opex          []float64   `json:"opex"`
	Depreciation  float64     `json:"depreciation"`
	ProfitLoss    []float64   `json:"profitLoss"`
	Cumulative    []float64   `json:"cumulative"`
	BreakEvenYear int         `json:"breakEvenYear"`
	Profitable    bool        `json:"profitable"`
	NetResult     float64     `json:"netResult"`
}

// Derive turns projected prices and costs into revenue, OPEX and profit.
func Derive(s *Series, a Assumptions) *Projection {
	n := s.Len()
	p := &Projection{
		Assumptions:  a,
		Series:       s,
		Years:        make([]int, n),
		Revenue:      make([]float64, n),
		Opex:         make([]float64, n),
		ProfitLoss:   make([]float64, n),
		Depreciation: a.InitialCapex / DepreciationYears,
	}
	wafers := float64(a.CapacityWPM) * MonthsPerYear
	production := wafers * float64(a.ChipsPerWafer)
	for i := 0; i < n; i++ {
		p.Years[i] = i + 1
		p.Revenue[i] = production * s.SellingPrice[i] / billion

		material := wafers * s.WaferCost[i] / billion
		labor := s.LaborCost[i] * DaysPerYear / billion
		energy := AnnualEnergyKWh * s.EnergyCost[i] / billion
		p.Opex[i] = material + labor + energy

		p.ProfitLoss[i] = p.Revenue[i] - p.Opex[i] - p.Depreciation
	}
	p.Cumulative = Cumulate(p.ProfitLoss)
	p.BreakEvenYear = BreakEvenYear(p.Cumulative)
	if n > 0 {
		p.NetResult = p.Cumulative[n-1]
	}
	p.Profitable = p.BreakEvenYear > 0
	return p
}

// Cumulate returns the running sum of values.
func Cumulate(values []float64) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		out[i] = sum
	}
	return out
}

// BreakEvenYear returns the first 1-based year whose cumulative result is
// non-negative, or 0 if there is none.
func BreakEvenYear(cumulative []float64) int {
	for i, v := range cumulative {
		if v >= 0 {
			return i + 1
		}
	}
	return 0
}

// Round2 formats v with two decimal places.
func Round2(v float64) string {
	return decimalRound2(v).StringFixed(2)
}

func decimalRound2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
