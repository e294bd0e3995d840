package strategy

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/east-empire-trading-company/eetc-utils/market"
	"github.com/east-empire-trading-company/eetc-utils/sim"
)

type fakeOrder struct {
	side sim.Side
	qty  float64
}

// fakeContext applies orders to an in-memory position so crossover
// strategies observe their own fills.
type fakeContext struct {
	symbol   string
	cash     float64
	pos      map[string]float64
	orders   []fakeOrder
	orderErr error
}

func newFakeContext(symbol string) *fakeContext {
	return &fakeContext{symbol: symbol, pos: make(map[string]float64)}
}

func (c *fakeContext) Symbol() string              { return c.symbol }
func (c *fakeContext) Cash() float64               { return c.cash }
func (c *fakeContext) Position(sym string) float64 { return c.pos[sym] }

func (c *fakeContext) PlaceOrder(side sim.Side, qty float64) (sim.Trade, error) {
	if c.orderErr != nil {
		return sim.Trade{}, c.orderErr
	}
	c.orders = append(c.orders, fakeOrder{side, qty})
	signed := qty
	if side == sim.Sell {
		signed = -qty
	}
	c.pos[c.symbol] += signed
	return sim.Trade{Symbol: c.symbol, Side: side, Qty: qty}, nil
}

func (c *fakeContext) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bar(day int, close float64) market.Bar {
	return market.Bar{
		Symbol: "AAPL",
		Date:   time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Close:  close,
	}
}

func replay(t *testing.T, s Strategy, ctx Context, closes ...float64) {
	t.Helper()
	require.NoError(t, s.OnStart(ctx))
	for i, c := range closes {
		require.NoError(t, s.OnData(ctx, bar(i+1, c)))
	}
	require.NoError(t, s.OnStop(ctx))
}

func TestNewByName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"noop", "noop"},
		{"none", "noop"},
		{"buyhold", "buyhold"},
		{"buy-hold", "buyhold"},
		{"smacross", "smacross"},
		{"SMA-Cross", "smacross"},
		{"emacross", "emacross"},
	}
	for _, tc := range cases {
		s, err := New(tc.name, Params{Qty: 1, Fast: 2, Slow: 3})
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, s.Name())
	}

	_, err := New("mystery", Params{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
}

func TestRegisterCustom(t *testing.T) {
	Register("custom-noop", func(Params) Strategy { return Noop{} })

	s, err := New("custom-noop", Params{})
	require.NoError(t, err)
	assert.Equal(t, "noop", s.Name())
	assert.Contains(t, Names(), "custom-noop")
}

func TestNoopPlacesNoOrders(t *testing.T) {
	ctx := newFakeContext("AAPL")
	replay(t, Noop{}, ctx, 100, 101, 102)
	assert.Empty(t, ctx.orders)
}

func TestBuyHold(t *testing.T) {
	ctx := newFakeContext("AAPL")
	s := NewBuyHold(7)

	replay(t, s, ctx, 100, 101, 102, 103)

	require.Len(t, ctx.orders, 1)
	assert.Equal(t, fakeOrder{sim.Buy, 7}, ctx.orders[0])
	assert.Equal(t, 7.0, ctx.Position("AAPL"))
}

func TestBuyHoldResetsBetweenRuns(t *testing.T) {
	s := NewBuyHold(7)

	first := newFakeContext("AAPL")
	replay(t, s, first, 100, 101)

	second := newFakeContext("AAPL")
	replay(t, s, second, 100, 101)

	assert.Len(t, first.orders, 1)
	assert.Len(t, second.orders, 1, "OnStart must reset entry state")
}

func TestBuyHoldSurfacesOrderError(t *testing.T) {
	ctx := newFakeContext("AAPL")
	ctx.orderErr = errors.New("boom")
	s := NewBuyHold(7)

	require.NoError(t, s.OnStart(ctx))
	err := s.OnData(ctx, bar(1, 100))
	assert.ErrorContains(t, err, "boom")
}

func TestSMACrossTradesTheCross(t *testing.T) {
	ctx := newFakeContext("AAPL")
	s := NewSMACross(5, 2, 3)

	// Flat closes warm up both averages, the spike crosses the fast SMA
	// above the slow, the collapse crosses it back below.
	replay(t, s, ctx, 10, 10, 10, 20, 1, 1)

	require.Len(t, ctx.orders, 2)
	assert.Equal(t, fakeOrder{sim.Buy, 5}, ctx.orders[0])
	assert.Equal(t, fakeOrder{sim.Sell, 5}, ctx.orders[1])
	assert.Zero(t, ctx.Position("AAPL"))
}

func TestSMACrossDoesNotReenterWhileLong(t *testing.T) {
	ctx := newFakeContext("AAPL")
	ctx.pos["AAPL"] = 5
	s := NewSMACross(5, 2, 3)

	replay(t, s, ctx, 10, 10, 10, 20, 25)

	assert.Empty(t, ctx.orders, "existing long position must not be doubled")
}

func TestEMACrossTradesTheCross(t *testing.T) {
	ctx := newFakeContext("AAPL")
	s := NewEMACross(5, 2, 3)

	replay(t, s, ctx, 10, 10, 10, 20, 1, 1)

	require.Len(t, ctx.orders, 2)
	assert.Equal(t, sim.Buy, ctx.orders[0].side)
	assert.Equal(t, sim.Sell, ctx.orders[1].side)
}
