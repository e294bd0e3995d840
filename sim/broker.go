// Package sim implements the broker simulation behind a backtest run: a
// cash ledger, signed per-symbol positions, an append-only trade log and an
// equity curve marked to market once per bar.
package sim

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/east-empire-trading-company/eetc-utils/internal/id"
	"github.com/east-empire-trading-company/eetc-utils/market"
)

var (
	ErrInvalidSide     = errors.New("sim: invalid order side")
	ErrInvalidQuantity = errors.New("sim: order quantity must be positive")
)

// Config holds the friction and funding parameters for one simulation.
type Config struct {
	InitialCash        float64 `yaml:"initial_cash" json:"initial_cash"`
	Slippage           float64 `yaml:"slippage" json:"slippage"`
	CommissionPerShare float64 `yaml:"commission_per_share" json:"commission_per_share"`
}

// DefaultConfig returns the standard simulation parameters: 10k starting
// cash, 5bps slippage, no commission.
func DefaultConfig() Config {
	return Config{
		InitialCash: 10_000,
		Slippage:    0.0005,
	}
}

// BrokerSim is the ledger for a single backtest run. It is built fresh per
// run and is not safe for concurrent use; the replay loop drives it from a
// single goroutine.
type BrokerSim struct {
	cash       float64
	slippage   float64
	commission float64

	positions map[string]float64
	trades    []Trade
	equity    []EquityPoint
}

// New builds a ledger from cfg exactly as given. Callers wanting the
// standard parameters start from DefaultConfig.
func New(cfg Config) *BrokerSim {
	return &BrokerSim{
		cash:       cfg.InitialCash,
		slippage:   cfg.Slippage,
		commission: cfg.CommissionPerShare,
		positions:  make(map[string]float64),
	}
}

// PlaceMarketOrder fills an order against the reference bar's close.
// Slippage always worsens the fill: buys pay close*(1+slippage), sells
// receive close*(1-slippage). Commission is charged per share on top.
//
// Orders are never rejected for insufficient cash; the simulated account
// has unbounded margin and cash may go negative. An invalid side or a
// non-positive quantity is rejected with no change to any ledger state.
func (b *BrokerSim) PlaceMarketOrder(symbol string, side Side, qty float64, bar market.Bar, ts time.Time) (Trade, error) {
	if !side.valid() {
		return Trade{}, fmt.Errorf("%w: %q", ErrInvalidSide, string(side))
	}
	if math.IsNaN(qty) || qty <= 0 {
		return Trade{}, fmt.Errorf("%w: got %v", ErrInvalidQuantity, qty)
	}

	fill := bar.Close * (1 + b.slippage)
	if side == Sell {
		fill = bar.Close * (1 - b.slippage)
	}

	signed := qty * side.sign()
	commission := qty * b.commission

	b.cash -= fill*signed + commission
	b.positions[symbol] += signed
	if b.positions[symbol] == 0 {
		delete(b.positions, symbol)
	}

	t := Trade{
		TradeID:    id.New(),
		OrderID:    id.New(),
		Symbol:     symbol,
		Side:       side,
		Qty:        qty,
		Price:      fill,
		Timestamp:  ts,
		Commission: commission,
		FillCost:   fill * qty,
	}
	b.trades = append(b.trades, t)

	return t, nil
}

// MarkToMarket values every open position at the bar's close, appends an
// equity point and returns the NAV. The replay contract is one instrument
// per run, so the current bar prices all open positions.
func (b *BrokerSim) MarkToMarket(bar market.Bar, ts time.Time) float64 {
	nav := b.cash
	for _, qty := range b.positions {
		nav += qty * bar.Close
	}

	b.equity = append(b.equity, EquityPoint{
		Timestamp: ts,
		Cash:      b.cash,
		NAV:       nav,
		Positions: b.Positions(),
	})

	return nav
}

// Cash returns the current cash balance.
func (b *BrokerSim) Cash() float64 { return b.cash }

// Position returns the signed quantity held in symbol, zero when flat.
func (b *BrokerSim) Position(symbol string) float64 {
	return b.positions[symbol]
}

// Positions returns a copy of all open positions.
func (b *BrokerSim) Positions() map[string]float64 {
	out := make(map[string]float64, len(b.positions))
	for sym, qty := range b.positions {
		out[sym] = qty
	}
	return out
}

// Trades returns a copy of the trade log in fill order.
func (b *BrokerSim) Trades() []Trade {
	out := make([]Trade, len(b.trades))
	copy(out, b.trades)
	return out
}

// EquityCurve returns a copy of the equity points recorded so far, one per
// marked bar.
func (b *BrokerSim) EquityCurve() []EquityPoint {
	out := make([]EquityPoint, len(b.equity))
	copy(out, b.equity)
	return out
}
