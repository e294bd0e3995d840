package market

import (
	"sort"
	"time"
)

// Bar represents one period of OHLCV price data for a single symbol.
// Date is the bar's timestamp; for daily data it is midnight UTC of the
// trading day.
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// SortBars orders bars ascending by Date, in place. The sort is stable so
// same-timestamp bars keep their upstream order.
func SortBars(bars []Bar) {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})
}

// FilterRange returns the bars whose Date falls within [from, to]. Zero
// bounds are open-ended.
func FilterRange(bars []Bar, from, to time.Time) []Bar {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if !from.IsZero() && b.Date.Before(from) {
			continue
		}
		if !to.IsZero() && b.Date.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Closes extracts the close prices in bar order.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
