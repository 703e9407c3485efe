package exchange

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/profitx/profitx/internal/id"
	"github.com/profitx/profitx/ledger"
	"github.com/profitx/profitx/venue"
)

// PlaceOrder fills an order immediately at the asset's current
// synthetic price. The price is captured once, before the ledger
// mutation, and used consistently for the size, the entry price and
// the trade record; a tick landing between the snapshot and the
// mutation is fine, price moves are independent of order execution.
//
// Buys require sufficient balance. Sells deliberately do not require
// holding the asset: a sell always credits the balance and opens a
// short-style position. That is the venue's product behavior, not a
// missing check.
//
// The balance change, the position and the trade record commit as one
// unit or not at all.
func (e *Engine) PlaceOrder(
	accountID string,
	symbol string,
	side ledger.Side,
	amount float64,
) (ledger.Position, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ledger.Position{}, fmt.Errorf(
			"amount must be positive: %w", venue.ErrInvalidRequest,
		)
	}

	if side != ledger.Buy && side != ledger.Sell {
		return ledger.Position{}, fmt.Errorf(
			"unknown side: %w", venue.ErrInvalidRequest,
		)
	}

	price, _, _, err := e.store.Snapshot(symbol)
	if err != nil {
		return ledger.Position{}, err
	}

	now := time.Now()

	position := ledger.Position{
		ID:           id.New(),
		Symbol:       symbol,
		Side:         side,
		Size:         amount / price,
		EntryPrice:   price,
		CurrentPrice: price,
		Amount:       amount,
		CreatedAt:    now,
	}

	trade := ledger.TradeRecord{
		ID:     id.New(),
		Symbol: symbol,
		Side:   side,
		Size:   position.Size,
		Price:  price,
		Amount: amount,
		Time:   now,
	}

	err = e.ledger.Mutate(accountID, func(acct *ledger.Account) error {
		if side == ledger.Buy {
			if acct.Balance < amount {
				return fmt.Errorf(
					"balance %.2f below order amount %.2f: %w",
					acct.Balance, amount, venue.ErrInsufficientFunds,
				)
			}
			acct.Balance -= amount
		} else {
			acct.Balance += amount
		}

		acct.Positions = append(acct.Positions, position)
		acct.Trades = append(acct.Trades, trade)

		return nil
	})
	if err != nil {
		return ledger.Position{}, err
	}

	e.log.WithFields(logrus.Fields{
		"account": accountID,
		"symbol":  symbol,
		"side":    side,
		"amount":  amount,
		"price":   price,
		"size":    position.Size,
	}).Info("order executed")

	return position, nil
}
