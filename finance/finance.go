// Package finance provides position sizing, volatility forecasting and
// valuation helpers shared by the trading strategies.
package finance

import (
	"fmt"
	"math"
)

// KellyPositionSize returns the amount of capital to put at risk according
// to the Kelly Criterion: f* = p - q/b, where p is the win probability,
// q = 1-p and b is the win/loss ratio. A negative result means the edge
// is negative and the bet should be skipped.
func KellyPositionSize(capital, winProb, winLossRatio float64) (float64, error) {
	if winLossRatio == 0 {
		return 0, fmt.Errorf("finance: win/loss ratio cannot be zero")
	}
	f := winProb - (1-winProb)/winLossRatio
	return f * capital, nil
}

// CompoundInterest compounds principal over the given number of yearly
// periods at rate percent per period. The result is rounded to cents.
func CompoundInterest(principal float64, years int, rate float64) float64 {
	amount := principal
	for i := 0; i < years; i++ {
		amount += amount * (rate / 100)
	}
	return math.Round(amount*100) / 100
}

// PerformanceOverTime returns the fractional change from start to end,
// e.g. 0.3 for a move from 100 to 130.
func PerformanceOverTime(start, end float64) (float64, error) {
	if start == 0 {
		return 0, fmt.Errorf("finance: start price cannot be zero")
	}
	return end/start - 1, nil
}

// BetaToDiscountRate maps a stock's beta to the discount rate used in DCF
// valuation, expressed as a multiplier. Riskier stocks discount harder.
// NaN maps to the default 9%.
func BetaToDiscountRate(beta float64) float64 {
	switch {
	case math.IsNaN(beta):
		return 1.09
	case beta < 0.8:
		return 1.05
	case beta < 1.0:
		return 1.06
	case beta < 1.1:
		return 1.065
	case beta < 1.2:
		return 1.07
	case beta < 1.3:
		return 1.075
	case beta < 1.4:
		return 1.08
	case beta < 1.5:
		return 1.085
	default:
		return 1.09
	}
}

// DCFInput parameterizes IntrinsicValueDCF. Zero values fall back to
// defaults where noted.
type DCFInput struct {
	CashFlow    float64 // latest annual free cash flow
	GrowthYears int     // years of projected high growth
	Shares      float64 // shares outstanding
	Growth      float64 // yearly growth multiplier, e.g. 1.15; 0 means 1.05
	Perpetual   float64 // terminal growth multiplier; 0 means 1.02
	Discount    float64 // discount multiplier; 0 means derived from Beta
	Beta        float64 // consulted when Discount is 0; 0 or NaN means the default 9%
}

// IntrinsicValueDCF estimates fair value per share with a discounted cash
// flow model: cash flows grow at Growth for GrowthYears, the terminal year
// grows at Perpetual and is capitalized by (Discount - Perpetual), and
// every flow is discounted back to today.
func IntrinsicValueDCF(in DCFInput) (float64, error) {
	if in.Shares <= 0 {
		return 0, fmt.Errorf("finance: shares outstanding must be positive")
	}
	if in.GrowthYears < 0 {
		return 0, fmt.Errorf("finance: growth years cannot be negative")
	}

	growth := in.Growth
	if growth == 0 {
		growth = 1.05
	}
	perpetual := in.Perpetual
	if perpetual == 0 {
		perpetual = 1.02
	}
	discount := in.Discount
	if discount == 0 {
		if in.Beta == 0 {
			discount = 1.09
		} else {
			discount = BetaToDiscountRate(in.Beta)
		}
	}
	if discount <= perpetual {
		return 0, fmt.Errorf("finance: discount rate %.4f must exceed perpetual growth %.4f",
			discount, perpetual)
	}

	var total float64
	projected := in.CashFlow
	discountTotal := 1.0
	for year := 1; year <= in.GrowthYears+1; year++ {
		if year == in.GrowthYears+1 {
			// Terminal value: a perpetuity held at the final-year discount.
			projected *= perpetual
			projected /= discount - perpetual
		} else {
			projected *= growth
			discountTotal *= discount
		}
		total += projected / discountTotal
	}
	return total / in.Shares, nil
}
