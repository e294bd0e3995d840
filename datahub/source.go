package datahub

import (
	"context"
	"time"

	"github.com/east-empire-trading-company/eetc-utils/market"
)

// Source adapts Client to the bar source contract the backtest engine
// expects, translating time bounds into wire dates. Zero bounds are
// open-ended.
type Source struct {
	Client *Client
}

func (s Source) GetPriceData(ctx context.Context, symbol string, from, to time.Time) ([]market.Bar, error) {
	q := PriceQuery{}
	if !from.IsZero() {
		q.FromDate = from.Format(wireDateLayout)
	}
	if !to.IsZero() {
		q.ToDate = to.Format(wireDateLayout)
	}
	return s.Client.GetPriceData(ctx, symbol, q)
}
