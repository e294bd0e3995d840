// Package metrics computes performance statistics over backtest equity
// curves. Everything here is pure: same input, same output, no I/O and no
// retained state.
package metrics

import (
	"encoding/json"
	"math"
)

// tradingDaysPerYear is the annualization base for daily series.
const tradingDaysPerYear = 252

// Stats summarizes a NAV series. Ratios that cannot be computed (too few
// points, zero volatility) are NaN, never ±Inf; NaN fields serialize to
// JSON null. The zero Stats is the undefined value and serializes to {}.
type Stats struct {
	AnnualReturn float64
	AnnualVol    float64
	Sharpe       float64
	MaxDrawdown  float64

	defined bool
}

// Defined reports whether the stats were computed from a non-empty series.
func (s Stats) Defined() bool { return s.defined }

// Compute derives annualized return and volatility, Sharpe and maximum
// drawdown from a NAV series using simple period returns and a 252-period
// year. An empty series yields the undefined Stats.
func Compute(nav []float64) Stats {
	if len(nav) == 0 {
		return Stats{}
	}

	rets := make([]float64, 0, len(nav)-1)
	for i := 1; i < len(nav); i++ {
		rets = append(rets, nav[i]/nav[i-1]-1)
	}

	annRet := math.Pow(1+mean(rets), tradingDaysPerYear) - 1
	annVol := sampleStdDev(rets) * math.Sqrt(tradingDaysPerYear)

	sharpe := math.NaN()
	if annVol > 0 {
		sharpe = annRet / annVol
	}

	return Stats{
		AnnualReturn: annRet,
		AnnualVol:    annVol,
		Sharpe:       sharpe,
		MaxDrawdown:  maxDrawdown(rets),
		defined:      true,
	}
}

// mean is NaN for an empty slice, matching the annualization identities
// above (NaN propagates into the ratio fields rather than panicking).
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdDev is the n-1 standard deviation, NaN for fewer than two
// observations.
func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// maxDrawdown walks the cumulative wealth curve and returns the deepest
// peak-to-trough decline as a non-positive fraction, 0 when there are no
// returns.
func maxDrawdown(rets []float64) float64 {
	maxDD := 0.0
	cum := 1.0
	peak := 0.0
	for _, r := range rets {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		if dd := cum/peak - 1; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

type statsJSON struct {
	AnnualReturn *float64 `json:"annual_return"`
	AnnualVol    *float64 `json:"annual_vol"`
	Sharpe       *float64 `json:"sharpe"`
	MaxDrawdown  *float64 `json:"max_drawdown"`
}

// MarshalJSON writes {} for undefined stats and null for NaN/Inf fields;
// encoding/json rejects non-finite floats outright.
func (s Stats) MarshalJSON() ([]byte, error) {
	if !s.defined {
		return []byte("{}"), nil
	}
	return json.Marshal(statsJSON{
		AnnualReturn: jsonFloat(s.AnnualReturn),
		AnnualVol:    jsonFloat(s.AnnualVol),
		Sharpe:       jsonFloat(s.Sharpe),
		MaxDrawdown:  jsonFloat(s.MaxDrawdown),
	})
}

func (s *Stats) UnmarshalJSON(data []byte) error {
	var raw statsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.AnnualReturn == nil && raw.AnnualVol == nil && raw.Sharpe == nil && raw.MaxDrawdown == nil {
		// Either {} or all-null; both mean no defined ratios were stored.
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			return err
		}
		if len(probe) == 0 {
			*s = Stats{}
			return nil
		}
	}
	*s = Stats{
		AnnualReturn: fromJSONFloat(raw.AnnualReturn),
		AnnualVol:    fromJSONFloat(raw.AnnualVol),
		Sharpe:       fromJSONFloat(raw.Sharpe),
		MaxDrawdown:  fromJSONFloat(raw.MaxDrawdown),
		defined:      true,
	}
	return nil
}

func jsonFloat(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func fromJSONFloat(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
