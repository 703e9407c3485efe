package exchange

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/profitx/profitx/funding"
	"github.com/profitx/profitx/ledger"
	"github.com/profitx/profitx/market"
	"github.com/profitx/profitx/venue"
)

// Operator-only surface. Every method takes the operator capability
// token minted by the auth layer; the core never looks at sessions.

// ListAccounts returns every account with the credential blanked.
func (e *Engine) ListAccounts(token venue.OperatorToken) ([]ledger.Account, error) {
	if !token.Valid() {
		return nil, venue.ErrUnauthorized
	}

	return e.ledger.List(), nil
}

// ListDeposits returns every deposit request, oldest first.
func (e *Engine) ListDeposits(token venue.OperatorToken) ([]funding.Request, error) {
	if !token.Valid() {
		return nil, venue.ErrUnauthorized
	}

	return e.funding.ListDeposits(), nil
}

// ListWithdrawals returns every withdrawal request, oldest first.
func (e *Engine) ListWithdrawals(token venue.OperatorToken) ([]funding.Request, error) {
	if !token.Valid() {
		return nil, venue.ErrUnauthorized
	}

	return e.funding.ListWithdrawals(), nil
}

// ListPendingDeposits returns deposits awaiting operator action.
func (e *Engine) ListPendingDeposits(token venue.OperatorToken) ([]funding.Request, error) {
	if !token.Valid() {
		return nil, venue.ErrUnauthorized
	}

	return e.funding.ListPendingDeposits(), nil
}

// ListPendingWithdrawals returns withdrawals awaiting operator action.
func (e *Engine) ListPendingWithdrawals(token venue.OperatorToken) ([]funding.Request, error) {
	if !token.Valid() {
		return nil, venue.ErrUnauthorized
	}

	return e.funding.ListPendingWithdrawals(), nil
}

// ApproveDeposit credits the account and resolves the request.
func (e *Engine) ApproveDeposit(token venue.OperatorToken, requestID string) error {
	if !token.Valid() {
		return venue.ErrUnauthorized
	}

	return e.funding.ApproveDeposit(requestID)
}

// RejectDeposit resolves the request without a ledger effect.
func (e *Engine) RejectDeposit(token venue.OperatorToken, requestID string) error {
	if !token.Valid() {
		return venue.ErrUnauthorized
	}

	return e.funding.RejectDeposit(requestID)
}

// ApproveWithdrawal debits the account and resolves the request.
func (e *Engine) ApproveWithdrawal(token venue.OperatorToken, requestID string) error {
	if !token.Valid() {
		return venue.ErrUnauthorized
	}

	return e.funding.ApproveWithdrawal(requestID)
}

// RejectWithdrawal resolves the request without a ledger effect.
func (e *Engine) RejectWithdrawal(token venue.OperatorToken, requestID string) error {
	if !token.Valid() {
		return venue.ErrUnauthorized
	}

	return e.funding.RejectWithdrawal(requestID)
}

// SetAssetMode steers the asset's simulated drift. The change takes
// effect on the next simulator tick.
func (e *Engine) SetAssetMode(token venue.OperatorToken, symbol, mode string) error {
	if !token.Valid() {
		return venue.ErrUnauthorized
	}

	parsed, err := market.ParseMode(mode)
	if err != nil {
		return fmt.Errorf("%v: %w", err, venue.ErrInvalidRequest)
	}

	if err := e.store.SetMode(symbol, parsed); err != nil {
		return err
	}

	if e.modes != nil {
		if err := e.modes.SaveAssetMode(symbol, parsed); err != nil {
			e.log.WithField("symbol", symbol).
				WithError(err).
				Warn("mode change not persisted")
		}
	}

	e.log.WithFields(logrus.Fields{
		"symbol": symbol,
		"mode":   parsed,
	}).Info("asset mode changed")

	return nil
}

// MarketModes returns the current drift mode of every asset.
func (e *Engine) MarketModes(token venue.OperatorToken) (map[string]market.Mode, error) {
	if !token.Valid() {
		return nil, venue.ErrUnauthorized
	}

	modes := make(map[string]market.Mode)
	for symbol, asset := range e.store.View() {
		modes[symbol] = asset.Mode
	}

	return modes, nil
}
