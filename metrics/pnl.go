package metrics

import (
	"sort"
	"time"

	"github.com/east-empire-trading-company/eetc-utils/sim"
)

// PnLPoint is the running position, cumulative cash delta and NAV after one
// trade fill. Cash starts from zero: the series tracks deltas, not the
// account balance.
type PnLPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Position  float64   `json:"position"`
	Cash      float64   `json:"cash"`
	NAV       float64   `json:"nav"`
}

// TradesToPnLSeries replays a trade log into a cumulative PnL series, each
// point marked at its own trade's fill price. It is a cross-check on the
// trade grid; the bar-close equity curve from the simulation remains the
// canonical performance record.
func TradesToPnLSeries(trades []sim.Trade) []PnLPoint {
	if len(trades) == 0 {
		return nil
	}

	sorted := make([]sim.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	out := make([]PnLPoint, 0, len(sorted))
	var cash, pos float64
	for _, t := range sorted {
		signed := t.SignedQty()
		cash += -t.Price*signed - t.Commission
		pos += signed
		out = append(out, PnLPoint{
			Timestamp: t.Timestamp,
			Position:  pos,
			Cash:      cash,
			NAV:       cash + pos*t.Price,
		})
	}
	return out
}
