package strategy

import "github.com/east-empire-trading-company/eetc-utils/market"

// Noop places no orders. Its equity curve is flat cash, which makes it a
// useful baseline and a convenient probe in engine tests.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) OnStart(ctx Context) error { return nil }

func (Noop) OnData(ctx Context, bar market.Bar) error { return nil }

func (Noop) OnStop(ctx Context) error { return nil }
