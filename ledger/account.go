// Package ledger owns the venue's accounts: balances, open positions
// and trade history, with one exclusive critical section per account.
package ledger

import (
	"fmt"
	"time"
)

// Side of an executed order.
type Side int

const (
	Buy Side = iota
	Sell
)

// ParseSide converts the wire representation ("buy", "sell") into a
// Side.
func ParseSide(value string) (Side, error) {
	switch value {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	}

	return -1, fmt.Errorf("unknown side: %q", value)
}

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}

	return ""
}

// Position records one executed order. Sized by notional amount
// divided by execution price. Immutable once created; CurrentPrice is
// informational and is not re-marked against the market.
type Position struct {
	ID           string
	Symbol       string
	Side         Side
	Size         float64
	EntryPrice   float64
	CurrentPrice float64
	Amount       float64
	CreatedAt    time.Time
}

// TradeRecord is the append-only audit entry written alongside every
// Position, one per executed order.
type TradeRecord struct {
	ID     string
	Symbol string
	Side   Side
	Size   float64
	Price  float64
	Amount float64
	Time   time.Time
}

// Account is a venue account. Credential is compared verbatim at
// authentication and is blanked on every copy the ledger hands out.
type Account struct {
	ID         string
	Phone      string
	Credential string
	Balance    float64
	Positions  []Position
	Trades     []TradeRecord
	CreatedAt  time.Time
	LastLogin  time.Time
}

// clone deep-copies the account so callers can never alias the
// ledger's slices.
func (a Account) clone() Account {
	cp := a

	cp.Positions = make([]Position, len(a.Positions))
	copy(cp.Positions, a.Positions)

	cp.Trades = make([]TradeRecord, len(a.Trades))
	copy(cp.Trades, a.Trades)

	return cp
}

// redacted is a clone with the credential blanked.
func (a Account) redacted() Account {
	cp := a.clone()
	cp.Credential = ""

	return cp
}
