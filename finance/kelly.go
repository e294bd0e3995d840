package finance

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/east-empire-trading-company/eetc-utils/market"
)

// Position is the direction KellyOptimalLeverage sizes for.
type Position string

const (
	Long  Position = "LONG"
	Short Position = "SHORT"
)

// defaultRegimeStart is the beginning of the post-COVID regime, the
// default lookback window for leverage estimates.
var defaultRegimeStart = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// KellyLeverageOptions tunes KellyOptimalLeverage. Zero values fall back
// to defaults where noted.
type KellyLeverageOptions struct {
	Position    Position  // Long or Short; empty means Long
	Fraction    float64   // fractional Kelly multiplier, e.g. 0.5 for half-Kelly; 0 means full Kelly
	RegimeStart time.Time // start of the lookback regime; zero means 2020-01-01
	UseGARCH    bool      // forecast variance with GARCH(1,1) instead of the sample variance
}

// KellyOptimalLeverage estimates the optimal leverage f* = mu/sigma^2 from
// the daily log returns of bars, both annualized over 252 trading days.
// Bars before RegimeStart and the latest bar are excluded, so an open
// position's own bar never feeds its sizing. Short positions invert the
// returns. Too little history, zero variance or a negative edge log a
// warning and size to zero rather than failing the caller.
func KellyOptimalLeverage(bars []market.Bar, opts KellyLeverageOptions) (float64, error) {
	if len(bars) == 0 {
		return 0, fmt.Errorf("finance: no price data")
	}
	if opts.Fraction < 0 {
		return 0, fmt.Errorf("finance: fraction must be positive")
	}
	position := opts.Position
	if position == "" {
		position = Long
	}
	if position != Long && position != Short {
		return 0, fmt.Errorf("finance: position must be %q or %q, got %q", Long, Short, position)
	}

	fraction := opts.Fraction
	if fraction == 0 {
		fraction = 1
	}
	regimeStart := opts.RegimeStart
	if regimeStart.IsZero() {
		regimeStart = defaultRegimeStart
	}

	sorted := make([]market.Bar, len(bars))
	copy(sorted, bars)
	market.SortBars(sorted)

	lastDate := sorted[len(sorted)-1].Date
	var closes []float64
	for _, b := range sorted {
		if b.Date.Before(regimeStart) || !b.Date.Before(lastDate) {
			continue
		}
		closes = append(closes, b.Close)
	}

	logReturns := make([]float64, 0, len(closes))
	for i := 1; i < len(closes); i++ {
		r := math.Log(closes[i] / closes[i-1])
		if position == Short {
			r = -r
		}
		logReturns = append(logReturns, r)
	}

	minObs := 30
	if opts.UseGARCH {
		minObs = minGARCHObservations
	}
	if len(logReturns) < minObs {
		slog.Warn("not enough observations for Kelly leverage",
			"have", len(logReturns), "need", minObs)
		return 0, nil
	}

	annualizedReturn := mean(logReturns) * tradingDaysPerYear

	var annualizedVariance float64
	if opts.UseGARCH {
		vol, err := GARCHAnnualVolatility(PercentReturns(closes))
		if err != nil {
			return 0, err
		}
		annualizedVariance = vol * vol
	} else {
		annualizedVariance = sampleVariance(logReturns) * tradingDaysPerYear
	}

	if annualizedVariance == 0 || math.IsNaN(annualizedVariance) || math.IsInf(annualizedVariance, 0) {
		slog.Warn("zero or invalid variance, cannot size with Kelly")
		return 0, nil
	}

	leverage := annualizedReturn / annualizedVariance
	if leverage < 0 {
		slog.Warn("negative Kelly leverage, expected return is negative", "kelly", leverage)
		return 0, nil
	}
	return leverage * fraction, nil
}
