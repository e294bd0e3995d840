package strategy

import (
	"github.com/east-empire-trading-company/eetc-utils/indicators"
	"github.com/east-empire-trading-company/eetc-utils/market"
	"github.com/east-empire-trading-company/eetc-utils/sim"
)

// SMACross trades a fast/slow simple moving average crossover: it buys a
// fixed quantity when the fast average crosses above the slow one and sells
// the open position when it crosses back below. Long only.
type SMACross struct {
	Qty float64

	fast *indicators.SimpleMA
	slow *indicators.SimpleMA

	lastDiff     float64
	haveLastDiff bool
}

func NewSMACross(qty float64, fast, slow int) *SMACross {
	if qty <= 0 {
		qty = 10
	}
	if fast <= 0 {
		fast = 10
	}
	if slow <= fast {
		slow = fast * 3
	}
	return &SMACross{
		Qty:  qty,
		fast: indicators.NewMA(fast),
		slow: indicators.NewMA(slow),
	}
}

func (s *SMACross) Name() string { return "smacross" }

func (s *SMACross) OnStart(ctx Context) error {
	s.fast.Reset()
	s.slow.Reset()
	s.lastDiff = 0
	s.haveLastDiff = false
	return nil
}

func (s *SMACross) OnData(ctx Context, bar market.Bar) error {
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

func (s *SMACross) OnStop(ctx Context) error {
	ctx.Logger().Debug("smacross finished",
		"position", ctx.Position(ctx.Symbol()),
		"cash", ctx.Cash())
	return nil
}
