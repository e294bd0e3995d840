package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/east-empire-trading-company/eetc-utils/market"
)

var (
	_ Indicator = (*SimpleMA)(nil)
	_ Indicator = (*ExponentialMA)(nil)
)

func feed(ind Indicator, closes ...float64) {
	for _, c := range closes {
		ind.Update(market.Bar{Close: c})
	}
}

func TestSimpleMA(t *testing.T) {
	ma := NewMA(3)

	assert.Equal(t, "SMA(3)", ma.Name())
	assert.Equal(t, 3, ma.Warmup())
	assert.False(t, ma.Ready())
	assert.Zero(t, ma.Value())

	feed(ma, 1, 2, 3)
	assert.True(t, ma.Ready())
	assert.InDelta(t, 2.0, ma.Value(), 1e-12)

	// Window slides: (2+3+10)/3
	feed(ma, 10)
	assert.InDelta(t, 5.0, ma.Value(), 1e-12)

	ma.Reset()
	assert.False(t, ma.Ready())
}

func TestExponentialMA(t *testing.T) {
	ema := NewEMA(3)

	assert.Equal(t, "EMA(3)", ema.Name())
	assert.False(t, ema.Ready())

	// Warmup seeds with the SMA of the first 3 closes.
	feed(ema, 1, 2, 3)
	assert.True(t, ema.Ready())
	assert.InDelta(t, 2.0, ema.Value(), 1e-12)

	// Next update applies the standard multiplier 2/(3+1) = 0.5.
	feed(ema, 4)
	assert.InDelta(t, 3.0, ema.Value(), 1e-12)

	ema.Reset()
	assert.False(t, ema.Ready())
	assert.Zero(t, ema.Value())
}

func TestEMADeterministic(t *testing.T) {
	a := NewEMA(5)
	b := NewEMA(5)
	closes := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}

	feed(a, closes...)
	feed(b, closes...)

	assert.Equal(t, a.Value(), b.Value())
}
