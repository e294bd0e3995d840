// Package strategy defines the contract between a trading strategy and the
// backtest engine, plus a small set of builtin strategies.
package strategy

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/east-empire-trading-company/eetc-utils/market"
	"github.com/east-empire-trading-company/eetc-utils/sim"
)

var (
	// ErrNoMarketData is returned by Context.PlaceOrder before the first
	// bar has been replayed.
	ErrNoMarketData = errors.New("strategy: no bar is being replayed yet")

	// ErrReplayClosed is returned by Context.PlaceOrder once the replay is
	// over; a strategy cannot alter a closed equity curve.
	ErrReplayClosed = errors.New("strategy: replay is closed")
)

// Context is the capability the engine hands to every strategy hook. Orders
// placed through it fill against the bar currently being replayed, so a
// strategy can never trade on data it has not seen yet.
type Context interface {
	// Symbol is the instrument the current run replays.
	Symbol() string

	// Cash is the ledger's current cash balance.
	Cash() float64

	// Position is the signed quantity held in symbol, zero when flat.
	Position(symbol string) float64

	// PlaceOrder fills a market order at the current bar's close adjusted
	// for slippage. Before the first bar it fails with ErrNoMarketData,
	// after the last with ErrReplayClosed.
	PlaceOrder(side sim.Side, qty float64) (sim.Trade, error)

	// Logger is the run's logger.
	Logger() *slog.Logger
}

// Strategy is implemented by anything the engine can replay. OnData is
// invoked exactly once per bar in chronological order; returning a non-nil
// error from any hook aborts the run.
type Strategy interface {
	Name() string
	OnStart(ctx Context) error
	OnData(ctx Context, bar market.Bar) error
	OnStop(ctx Context) error
}

// Params carries the knobs shared by the builtin strategies.
type Params struct {
	Qty  float64
	Fast int
	Slow int
}

var registry = make(map[string]func(Params) Strategy)

// Register adds a named strategy factory. Registered names take precedence
// over the builtins in New.
func Register(name string, factory func(Params) Strategy) {
	registry[strings.ToLower(strings.TrimSpace(name))] = factory
}

// New builds a strategy by name.
func New(name string, p Params) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	if factory, ok := registry[key]; ok {
		return factory(p), nil
	}

	switch key {
	case "noop", "none":
		return Noop{}, nil
	case "buyhold", "buy-hold":
		return NewBuyHold(p.Qty), nil
	case "smacross", "sma-cross":
		return NewSMACross(p.Qty, p.Fast, p.Slow), nil
	case "emacross", "ema-cross":
		return NewEMACross(p.Qty, p.Fast, p.Slow), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
}

// Names lists every strategy New accepts, builtins first.
func Names() []string {
	names := []string{"noop", "buyhold", "smacross", "emacross"}
	var custom []string
	for name := range registry {
		custom = append(custom, name)
	}
	sort.Strings(custom)
	return append(names, custom...)
}
