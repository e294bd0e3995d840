package strategy

import (
	"github.com/east-empire-trading-company/eetc-utils/indicators"
	"github.com/east-empire-trading-company/eetc-utils/market"
	"github.com/east-empire-trading-company/eetc-utils/sim"
)

// EMACross is the exponential variant of SMACross. The EMA reacts faster
// to recent closes, so it typically trades more often on the same data.
type EMACross struct {
	Qty float64

	fast *indicators.ExponentialMA
	slow *indicators.ExponentialMA

	lastDiff     float64
	haveLastDiff bool
}

func NewEMACross(qty float64, fast, slow int) *EMACross {
	if qty <= 0 {
		qty = 10
	}
	if fast <= 0 {
		fast = 10
	}
	if slow <= fast {
		slow = fast * 3
	}
	return &EMACross{
		Qty:  qty,
		fast: indicators.NewEMA(fast),
		slow: indicators.NewEMA(slow),
	}
}

func (s *EMACross) Name() string { return "emacross" }

func (s *EMACross) OnStart(ctx Context) error {
	s.fast.Reset()
	s.slow.Reset()
	s.lastDiff = 0
	s.haveLastDiff = false
	return nil
}

func (s *EMACross) OnData(ctx Context, bar market.Bar) error {
	s.fast.Update(bar)
	s.slow.Update(bar)
	if !s.slow.Ready() {
		return nil
	}

	diff := s.fast.Value() - s.slow.Value()
	if !s.haveLastDiff {
		s.lastDiff = diff
		s.haveLastDiff = true
		return nil
	}

	crossedUp := s.lastDiff <= 0 && diff > 0
	crossedDown := s.lastDiff >= 0 && diff < 0
	s.lastDiff = diff

	pos := ctx.Position(ctx.Symbol())
	switch {
	case crossedUp && pos == 0:
		_, err := ctx.PlaceOrder(sim.Buy, s.Qty)
		return err
	case crossedDown && pos > 0:
		_, err := ctx.PlaceOrder(sim.Sell, pos)
		return err
	}
	return nil
}

func (s *EMACross) OnStop(ctx Context) error { return nil }
