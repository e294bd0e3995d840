package strategy

import (
	"github.com/east-empire-trading-company/eetc-utils/market"
	"github.com/east-empire-trading-company/eetc-utils/sim"
)

// BuyHold buys a fixed quantity on the first bar and holds it until the end
// of the run.
type BuyHold struct {
	Qty float64

	opened bool
}

func NewBuyHold(qty float64) *BuyHold {
	if qty <= 0 {
		qty = 10
	}
	return &BuyHold{Qty: qty}
}

func (s *BuyHold) Name() string { return "buyhold" }

// OnStart resets entry state so the same value can drive multiple runs.
func (s *BuyHold) OnStart(ctx Context) error {
	s.opened = false
	return nil
}

func (s *BuyHold) OnData(ctx Context, bar market.Bar) error {
	if s.opened {
		return nil
	}
	if _, err := ctx.PlaceOrder(sim.Buy, s.Qty); err != nil {
		return err
	}
	s.opened = true
	return nil
}

func (s *BuyHold) OnStop(ctx Context) error { return nil }
