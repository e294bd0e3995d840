package finance

import (
	"fmt"
	"math"
)

const (
	tradingDaysPerYear = 252

	// minGARCHObservations is the fewest return observations a GARCH(1,1)
	// fit is worth anything on.
	minGARCHObservations = 100
)

// PercentReturns converts a close price series to simple percentage
// returns: 100 * (c[i]/c[i-1] - 1).
func PercentReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns = append(returns, 100*(closes[i]/closes[i-1]-1))
	}
	return returns
}

// GARCHAnnualVolatility forecasts next-day volatility with a GARCH(1,1)
// model fit on percentage returns and annualizes it over 252 trading days,
// returned as a decimal (0.25 for 25%). The fit is a Gaussian
// quasi-likelihood grid search with omega pinned by variance targeting.
func GARCHAnnualVolatility(returns []float64) (float64, error) {
	if len(returns) < minGARCHObservations {
		return 0, fmt.Errorf("finance: GARCH needs at least %d observations, got %d",
			minGARCHObservations, len(returns))
	}

	mu := mean(returns)
	eps := make([]float64, len(returns))
	for i, r := range returns {
		eps[i] = r - mu
	}

	vbar := sampleVariance(eps)
	if vbar == 0 {
		return 0, nil
	}
	if math.IsNaN(vbar) || math.IsInf(vbar, 0) {
		return 0, fmt.Errorf("finance: return series is not finite")
	}

	alpha, beta := fitGARCH(eps, vbar)
	omega := vbar * (1 - alpha - beta)

	// Running the recursion once more past the sample yields the
	// one-step-ahead forecast.
	sigma2 := vbar
	for _, e := range eps {
		sigma2 = omega + alpha*e*e + beta*sigma2
	}

	return math.Sqrt(sigma2*tradingDaysPerYear) / 100, nil
}

// fitGARCH maximizes the Gaussian quasi-likelihood over (alpha, beta),
// refining a coarse grid twice around the incumbent.
func fitGARCH(eps []float64, vbar float64) (alpha, beta float64) {
	aLo, aHi, aStep := 0.0, 0.4, 0.04
	bLo, bHi, bStep := 0.0, 0.98, 0.07
	for i := 0; i < 3; i++ {
		alpha, beta = bestGARCHFit(eps, vbar, aLo, aHi, aStep, bLo, bHi, bStep)
		aLo, aHi, aStep = math.Max(0, alpha-aStep), alpha+aStep, aStep/5
		bLo, bHi, bStep = math.Max(0, beta-bStep), beta+bStep, bStep/5
	}
	return alpha, beta
}

func bestGARCHFit(eps []float64, vbar, aLo, aHi, aStep, bLo, bHi, bStep float64) (bestA, bestB float64) {
	bestLL := math.Inf(-1)
	for a := aLo; a <= aHi+1e-9; a += aStep {
		for b := bLo; b <= bHi+1e-9; b += bStep {
			if a+b > 0.999 {
				continue
			}
			ll := garchLogLikelihood(eps, vbar*(1-a-b), a, b, vbar)
			if ll > bestLL {
				bestLL, bestA, bestB = ll, a, b
			}
		}
	}
	return bestA, bestB
}

// garchLogLikelihood scores residuals under sigma2[t] = omega +
// alpha*eps[t-1]^2 + beta*sigma2[t-1], up to additive constants.
func garchLogLikelihood(eps []float64, omega, alpha, beta, sigma0 float64) float64 {
	sigma2 := sigma0
	var ll float64
	for _, e := range eps {
		if sigma2 <= 0 {
			return math.Inf(-1)
		}
		ll -= math.Log(sigma2) + e*e/sigma2
		sigma2 = omega + alpha*e*e + beta*sigma2
	}
	return ll
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sampleVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs)-1)
}
