// Package indicators provides streaming technical indicators for
// strategies.
package indicators

import "github.com/east-empire-trading-company/eetc-utils/market"

// Indicator computes a single streaming value from bars. Implementations
// are deterministic: the same bar sequence always yields the same values.
type Indicator interface {
	// Name returns a stable identifier like "SMA(20)".
	Name() string

	// Warmup returns how many updates are needed before Ready can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closed bar.
	Update(b market.Bar)

	// Ready reports whether Value is meaningful.
	Ready() bool

	// Value returns the current indicator value, 0 until Ready.
	Value() float64
}
