package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profitx/profitx/ledger"
	"github.com/profitx/profitx/venue"
)

// Walks a fresh account through the full venue lifecycle: deposit
// approval, a buy at the launch price, and a withdrawal refused at
// request time because the balance already went into the position.
func TestAccountLifecycle(t *testing.T) {
	t.Parallel()

	engine, accountID := newTestEngine(t, 0)
	operator := venue.GrantOperator()

	acct, err := engine.GetAccount(accountID)
	require.NoError(t, err)
	require.Zero(t, acct.Balance)

	// Deposit 100 by card, approved by the operator.
	deposit, err := engine.RequestDeposit(accountID, 100, "card")
	require.NoError(t, err)
	require.NoError(t, engine.ApproveDeposit(operator, deposit.ID))

	acct, err = engine.GetAccount(accountID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, acct.Balance)

	// Buy 50 worth of btc at the launch price.
	position, err := engine.PlaceOrder(accountID, "btc", ledger.Buy, 50)
	require.NoError(t, err)
	assert.InDelta(t, 50/41250.75, position.Size, 1e-9)
	assert.InDelta(t, 0.001212, position.Size, 1e-6)

	acct, err = engine.GetAccount(accountID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, acct.Balance)
	require.Len(t, acct.Positions, 1)
	require.Len(t, acct.Trades, 1)

	// A 60 withdrawal exceeds the remaining 50 and is refused at
	// request time.
	_, err = engine.RequestWithdrawal(accountID, 60, "bank", "IBAN 123")
	assert.ErrorIs(t, err, venue.ErrInsufficientFunds)

	withdrawals, err := engine.ListWithdrawals(operator)
	require.NoError(t, err)
	assert.Empty(t, withdrawals)

	// A withdrawal within balance sails through.
	withdrawal, err := engine.RequestWithdrawal(accountID, 30, "bank", "IBAN 123")
	require.NoError(t, err)
	require.NoError(t, engine.ApproveWithdrawal(operator, withdrawal.ID))

	acct, err = engine.GetAccount(accountID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, acct.Balance)
}
