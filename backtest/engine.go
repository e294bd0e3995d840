// Package backtest replays historical bars through a strategy against a
// simulated broker and reports what came of it.
package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/east-empire-trading-company/eetc-utils/internal/id"
	"github.com/east-empire-trading-company/eetc-utils/journal"
	"github.com/east-empire-trading-company/eetc-utils/market"
	"github.com/east-empire-trading-company/eetc-utils/metrics"
	"github.com/east-empire-trading-company/eetc-utils/sim"
	"github.com/east-empire-trading-company/eetc-utils/strategy"
)

// Engine wires a bar source, broker settings and result sinks into a
// repeatable backtest runner. One Engine can run many backtests; every
// run gets a fresh broker ledger.
type Engine struct {
	Source    BarSource
	Broker    sim.Config
	OutputDir string          // artifact directory; empty disables files
	Journal   journal.Journal // optional run history
	Logger    *slog.Logger
}

// New returns an Engine reading bars from source, with the default broker
// settings and "results" as the artifact directory. Callers adjust fields
// before the first Run.
func New(source BarSource) *Engine {
	return &Engine{
		Source:    source,
		Broker:    sim.DefaultConfig(),
		OutputDir: "results",
		Logger:    slog.Default(),
	}
}

// Result is everything a run produced.
type Result struct {
	RunID    string
	Strategy string
	Symbol   string
	From     time.Time
	To       time.Time
	Trades   []sim.Trade
	Equity   []sim.EquityPoint
	Stats    metrics.Stats
}

// FinalNAV is the net asset value on the last replayed bar, or NaN when
// no bars were replayed.
func (r *Result) FinalNAV() float64 {
	if len(r.Equity) == 0 {
		return math.NaN()
	}
	return r.Equity[len(r.Equity)-1].NAV
}

// Run replays the symbol's bars in [from, to] through strat: OnStart,
// then per bar OnData followed by a mark to market, then OnStop with the
// replay closed. Artifacts and the journal record are written only after
// every hook has returned cleanly; a fetch or hook error aborts the run
// with nothing persisted. An empty window still completes and still
// writes (empty) artifacts.
func (e *Engine) Run(ctx context.Context, strat strategy.Strategy, symbol string, from, to time.Time) (*Result, error) {
	if e.Source == nil {
		return nil, fmt.Errorf("backtest: bar source is required")
	}
	if strat == nil {
		return nil, fmt.Errorf("backtest: strategy is required")
	}
	if symbol == "" {
		return nil, fmt.Errorf("backtest: symbol is required")
	}

	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("strategy", strat.Name(), "symbol", symbol)

	bars, err := e.Source.GetPriceData(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("backtest: fetch price data: %w", err)
	}

	sorted := make([]market.Bar, len(bars))
	copy(sorted, bars)
	market.SortBars(sorted)

	broker := sim.New(e.Broker)
	rc := &replayContext{
		symbol: symbol,
		broker: broker,
		logger: logger,
	}

	logger.Info("backtest starting", "bars", len(sorted), "initial_cash", e.Broker.InitialCash)

	if err := strat.OnStart(rc); err != nil {
		return nil, fmt.Errorf("backtest: on_start: %w", err)
	}
	for _, bar := range sorted {
		rc.setBar(bar)
		if err := strat.OnData(rc, bar); err != nil {
			return nil, fmt.Errorf("backtest: on_data at %s: %w",
				bar.Date.Format("2006-01-02"), err)
		}
		broker.MarkToMarket(bar, bar.Date)
	}
	rc.close()
	if err := strat.OnStop(rc); err != nil {
		return nil, fmt.Errorf("backtest: on_stop: %w", err)
	}

	equity := broker.EquityCurve()
	navs := make([]float64, len(equity))
	for i, p := range equity {
		navs[i] = p.NAV
	}

	result := &Result{
		RunID:    id.New(),
		Strategy: strat.Name(),
		Symbol:   symbol,
		From:     from,
		To:       to,
		Trades:   broker.Trades(),
		Equity:   equity,
		Stats:    metrics.Compute(navs),
	}

	if e.OutputDir != "" {
		if err := writeArtifacts(e.OutputDir, result); err != nil {
			return nil, err
		}
		tradesPath, equityPath, perfPath := ArtifactPaths(e.OutputDir, result.Strategy, result.Symbol)
		logger.Info("artifacts written", "trades", tradesPath, "equity", equityPath, "perf", perfPath)
	}
	if e.Journal != nil {
		if err := e.recordRun(result); err != nil {
			return nil, err
		}
	}

	logger.Info("backtest finished",
		"run_id", result.RunID,
		"trades", len(result.Trades),
		"final_nav", result.FinalNAV())

	return result, nil
}

func (e *Engine) recordRun(r *Result) error {
	record := journal.RunRecord{
		RunID:        r.RunID,
		Strategy:     r.Strategy,
		Symbol:       r.Symbol,
		Start:        r.From,
		End:          r.To,
		InitialCash:  e.Broker.InitialCash,
		FinalNAV:     r.FinalNAV(),
		NumTrades:    len(r.Trades),
		AnnualReturn: r.Stats.AnnualReturn,
		AnnualVol:    r.Stats.AnnualVol,
		Sharpe:       r.Stats.Sharpe,
		MaxDrawdown:  r.Stats.MaxDrawdown,
		Created:      time.Now().UTC(),
	}
	if !r.Stats.Defined() {
		record.AnnualReturn = math.NaN()
		record.AnnualVol = math.NaN()
		record.Sharpe = math.NaN()
		record.MaxDrawdown = math.NaN()
	}

	if err := e.Journal.RecordRun(record); err != nil {
		return fmt.Errorf("backtest: record run: %w", err)
	}
	for _, tr := range r.Trades {
		if err := e.Journal.RecordTrade(r.RunID, tr); err != nil {
			return fmt.Errorf("backtest: record trade: %w", err)
		}
	}
	for _, p := range r.Equity {
		if err := e.Journal.RecordEquity(r.RunID, p); err != nil {
			return fmt.Errorf("backtest: record equity: %w", err)
		}
	}
	return nil
}

// replayContext is the strategy.Context bound to one run. The engine sets
// the current bar before each OnData call and closes the context before
// OnStop, so orders can only ever fill on a live bar.
type replayContext struct {
	symbol  string
	broker  *sim.BrokerSim
	logger  *slog.Logger
	bar     market.Bar
	haveBar bool
	closed  bool
}

func (c *replayContext) setBar(b market.Bar) {
	c.bar = b
	c.haveBar = true
}

func (c *replayContext) close() { c.closed = true }

func (c *replayContext) Symbol() string { return c.symbol }

func (c *replayContext) Cash() float64 { return c.broker.Cash() }

func (c *replayContext) Position(symbol string) float64 { return c.broker.Position(symbol) }

func (c *replayContext) Logger() *slog.Logger { return c.logger }

func (c *replayContext) PlaceOrder(side sim.Side, qty float64) (sim.Trade, error) {
	if c.closed {
		return sim.Trade{}, strategy.ErrReplayClosed
	}
	if !c.haveBar {
		return sim.Trade{}, strategy.ErrNoMarketData
	}
	return c.broker.PlaceMarketOrder(c.symbol, side, qty, c.bar, c.bar.Date)
}
