package finance

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/east-empire-trading-company/eetc-utils/market"
)

// driftBars builds count consecutive daily bars whose closes alternate
// +2% and -1% moves, a steady positive drift with nonzero variance.
func driftBars(t *testing.T, start string, count int) []market.Bar {
	t.Helper()
	day, err := time.Parse("2006-01-02", start)
	require.NoError(t, err)

	bars := make([]market.Bar, 0, count)
	price := 100.0
	for i := 0; i < count; i++ {
		if i > 0 {
			if i%2 == 1 {
				price *= 1.02
			} else {
				price *= 0.99
			}
		}
		bars = append(bars, market.Bar{
			Symbol: "TEST",
			Date:   day.AddDate(0, 0, i).UTC(),
			Close:  price,
		})
	}
	return bars
}

func TestKellyOptimalLeverage(t *testing.T) {
	t.Parallel()

	bars := driftBars(t, "2024-01-01", 40)

	// Expected: annualized mean over annualized variance of the daily
	// log returns, with the latest bar excluded from the window.
	var logReturns []float64
	for i := 1; i < len(bars)-1; i++ {
		logReturns = append(logReturns, math.Log(bars[i].Close/bars[i-1].Close))
	}
	want := (mean(logReturns) * tradingDaysPerYear) /
		(sampleVariance(logReturns) * tradingDaysPerYear)

	got, err := KellyOptimalLeverage(bars, KellyLeverageOptions{})
	require.NoError(t, err)
	assert.Greater(t, got, 0.0)
	assert.InEpsilon(t, want, got, 1e-9)
}

func TestKellyOptimalLeverageFraction(t *testing.T) {
	t.Parallel()

	bars := driftBars(t, "2024-01-01", 40)

	full, err := KellyOptimalLeverage(bars, KellyLeverageOptions{})
	require.NoError(t, err)
	half, err := KellyOptimalLeverage(bars, KellyLeverageOptions{Fraction: 0.5})
	require.NoError(t, err)
	assert.InEpsilon(t, full/2, half, 1e-9)
}

func TestKellyOptimalLeverageShortAgainstUptrend(t *testing.T) {
	t.Parallel()

	// Shorting a drifting-up series has a negative edge, which sizes
	// to zero.
	bars := driftBars(t, "2024-01-01", 40)
	got, err := KellyOptimalLeverage(bars, KellyLeverageOptions{Position: Short})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestKellyOptimalLeverageNeedsHistory(t *testing.T) {
	t.Parallel()

	bars := driftBars(t, "2024-01-01", 10)
	got, err := KellyOptimalLeverage(bars, KellyLeverageOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestKellyOptimalLeverageRegimeFilter(t *testing.T) {
	t.Parallel()

	old := driftBars(t, "2019-01-01", 20)
	recent := driftBars(t, "2024-01-01", 40)
	all := append(append([]market.Bar{}, old...), recent...)

	regime, err := time.Parse("2006-01-02", "2024-01-01")
	require.NoError(t, err)

	got, err := KellyOptimalLeverage(all, KellyLeverageOptions{RegimeStart: regime})
	require.NoError(t, err)
	want, err := KellyOptimalLeverage(recent, KellyLeverageOptions{RegimeStart: regime})
	require.NoError(t, err)
	assert.InEpsilon(t, want, got, 1e-9)
}

func TestKellyOptimalLeverageWithGARCH(t *testing.T) {
	t.Parallel()

	bars := driftBars(t, "2023-06-01", 150)

	got, err := KellyOptimalLeverage(bars, KellyLeverageOptions{UseGARCH: true})
	require.NoError(t, err)
	assert.Greater(t, got, 0.0)

	half, err := KellyOptimalLeverage(bars, KellyLeverageOptions{UseGARCH: true, Fraction: 0.5})
	require.NoError(t, err)
	assert.InEpsilon(t, got/2, half, 1e-9)
}

func TestKellyOptimalLeverageGARCHNeedsMoreHistory(t *testing.T) {
	t.Parallel()

	// 40 bars clear the plain minimum but not the GARCH one.
	bars := driftBars(t, "2024-01-01", 40)
	got, err := KellyOptimalLeverage(bars, KellyLeverageOptions{UseGARCH: true})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestKellyOptimalLeverageValidation(t *testing.T) {
	t.Parallel()

	_, err := KellyOptimalLeverage(nil, KellyLeverageOptions{})
	assert.Error(t, err, "no bars")

	bars := driftBars(t, "2024-01-01", 40)

	_, err = KellyOptimalLeverage(bars, KellyLeverageOptions{Fraction: -0.5})
	assert.Error(t, err, "negative fraction")

	_, err = KellyOptimalLeverage(bars, KellyLeverageOptions{Position: "SIDEWAYS"})
	assert.Error(t, err, "unknown position")
}
