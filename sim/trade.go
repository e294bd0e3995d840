package sim

import (
	"fmt"
	"strings"
	"time"
)

// Side is the direction of a market order.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// ParseSide normalizes user input ("buy", "Sell", ...) into a Side.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
}

func (s Side) valid() bool {
	return s == Buy || s == Sell
}

// sign maps Buy to +1 and Sell to -1.
func (s Side) sign() float64 {
	if s == Sell {
		return -1
	}
	return 1
}

// Trade is one filled market order as recorded in the trade log.
// Price is the fill price after slippage; FillCost is Price*Qty and is
// unsigned regardless of side.
type Trade struct {
	TradeID    string    `json:"trade_id"`
	OrderID    string    `json:"order_id"`
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	Qty        float64   `json:"qty"`
	Price      float64   `json:"price"`
	Timestamp  time.Time `json:"timestamp"`
	Commission float64   `json:"commission"`
	FillCost   float64   `json:"fill_cost"`
}

// SignedQty is +Qty for buys and -Qty for sells.
func (t Trade) SignedQty() float64 {
	return t.Qty * t.Side.sign()
}

// EquityPoint is one mark-to-market snapshot of the ledger. Positions is a
// copy taken at snapshot time; mutating it never affects the ledger.
type EquityPoint struct {
	Timestamp time.Time          `json:"timestamp"`
	Cash      float64            `json:"cash"`
	NAV       float64            `json:"nav"`
	Positions map[string]float64 `json:"positions"`
}
