// Package options prices equity options with the Black-Scholes closed
// forms and a few dealer-positioning helpers.
package options

import (
	"fmt"
	"math"
)

// Right is the option side, call or put.
type Right string

const (
	Call Right = "C"
	Put  Right = "P"
)

// Abramowitz & Stegun (1964) coefficients for the normal CDF
// approximation.
const (
	cndP  = 0.2316419
	cndB1 = 0.319381350
	cndB2 = -0.356563782
	cndB3 = 1.781477937
	cndB4 = -1.821255978
	cndB5 = 1.330274429
)

// PDF is the standard normal probability density at x.
func PDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// CND approximates the standard normal cumulative distribution at x with
// the Abramowitz & Stegun polynomial, accurate to about 1e-7.
func CND(x float64) float64 {
	if x < 0 {
		return 1 - CND(-x)
	}
	t1 := 1 / (1 + cndP*x)
	t2 := t1 * t1
	t3 := t2 * t1
	t4 := t3 * t1
	t5 := t4 * t1
	sum := cndB1*t1 + cndB2*t2 + cndB3*t3 + cndB4*t4 + cndB5*t5
	return 1 - PDF(x)*sum
}

// D1 is the d1 term of Black-Scholes for forward price f.
func D1(f, strike, tte, iv float64) float64 {
	return (math.Log(f/strike) + iv*iv*tte/2) / (iv * math.Sqrt(tte))
}

// D2 is the d2 term of Black-Scholes.
func D2(d1, iv, tte float64) float64 {
	return d1 - iv*math.Sqrt(tte)
}

// BSInput parameterizes BlackScholes.
type BSInput struct {
	Right      Right
	Underlying float64 // spot price
	Strike     float64
	Rate       float64 // risk-free rate, e.g. 0.05
	TTE        float64 // time to expiration in years
	IV         float64 // implied volatility, e.g. 0.2
	PVDividend float64 // present value of dividends paid before expiration
}

// BlackScholes prices a European option off the dividend-adjusted forward.
func BlackScholes(in BSInput) (float64, error) {
	if in.Right != Call && in.Right != Put {
		return 0, fmt.Errorf("options: right must be %q or %q, got %q", Call, Put, in.Right)
	}
	if in.Underlying <= 0 || in.Strike <= 0 {
		return 0, fmt.Errorf("options: underlying and strike must be positive")
	}
	if in.TTE <= 0 {
		return 0, fmt.Errorf("options: time to expiration must be positive")
	}
	if in.IV <= 0 {
		return 0, fmt.Errorf("options: implied volatility must be positive")
	}

	divYield := in.PVDividend / in.Underlying
	f := in.Underlying * math.Exp((in.Rate-divYield)*in.TTE)
	d1 := D1(f, in.Strike, in.TTE, in.IV)
	d2 := D2(d1, in.IV, in.TTE)

	if in.Right == Put {
		return in.Strike*math.Exp(-in.Rate*in.TTE)*CND(-d2) - in.Underlying*CND(-d1), nil
	}
	return (f*CND(d1) - in.Strike*CND(d2)) * math.Exp(-in.Rate*in.TTE), nil
}

// UnderlyingIV converts an ATM option's implied volatility to the expected
// absolute move of the underlying over the option's lifetime, a VIX-style
// gauge for arbitrary tenors.
func UnderlyingIV(optionIV, tte float64) float64 {
	return optionIV * math.Sqrt(tte) * math.Sqrt(2/math.Pi)
}

// StrikesInRange lists the consecutive integer strikes covering the move
// implied by rangePct around price.
func StrikesInRange(rangePct, price float64) []int {
	lower := int(price - rangePct*price)
	upper := int(price + rangePct*price)

	var strikes []int
	for s := lower; s <= upper+1; s++ {
		strikes = append(strikes, s)
	}
	return strikes
}

// GEX is the gamma exposure of one option strike in shares: gamma times
// open interest times the 100-share contract multiplier.
func GEX(gamma, openInterest float64) float64 {
	return gamma * openInterest * 100
}
