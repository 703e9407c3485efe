// Package exchange is the venue's front door: it executes orders
// against the market and the ledger, and exposes the account, market
// and operator surfaces the web layer consumes.
package exchange

import (
	"github.com/sirupsen/logrus"

	"github.com/profitx/profitx/funding"
	"github.com/profitx/profitx/ledger"
	"github.com/profitx/profitx/market"
)

// modeWriter persists operator mode changes. Satisfied by the journal.
type modeWriter interface {
	SaveAssetMode(symbol string, mode market.Mode) error
}

// Engine wires the ledger, the market store and the funding workflow
// together. It holds no state of its own: every mutation happens under
// the critical section of the component that owns the data.
type Engine struct {
	ledger  *ledger.Ledger
	store   *market.Store
	funding *funding.Workflow
	log     logrus.FieldLogger
	modes   modeWriter
}

// NewEngine builds the engine. modes may be nil.
func NewEngine(
	l *ledger.Ledger,
	store *market.Store,
	workflow *funding.Workflow,
	log logrus.FieldLogger,
	modes modeWriter,
) *Engine {
	return &Engine{
		ledger:  l,
		store:   store,
		funding: workflow,
		log:     log,
		modes:   modes,
	}
}

// RegisterAccount creates a new account with zero balance.
func (e *Engine) RegisterAccount(phone, credential string) (ledger.Account, error) {
	return e.ledger.Register(phone, credential)
}

// Authenticate verifies the credential and returns the account with
// the credential field blanked.
func (e *Engine) Authenticate(phone, credential string) (ledger.Account, error) {
	return e.ledger.Authenticate(phone, credential)
}

// GetAccount returns a redacted copy of the account.
func (e *Engine) GetAccount(accountID string) (ledger.Account, error) {
	return e.ledger.Get(accountID)
}

// MarketSnapshot returns a read-only view of every asset, bounded
// candle history included, for chart rendering.
func (e *Engine) MarketSnapshot() map[string]market.Asset {
	return e.store.View()
}

// RequestDeposit opens a pending deposit for operator approval.
func (e *Engine) RequestDeposit(
	accountID string,
	amount float64,
	method string,
) (funding.Request, error) {
	return e.funding.RequestDeposit(accountID, amount, method)
}

// RequestWithdrawal opens a pending withdrawal for operator approval.
func (e *Engine) RequestWithdrawal(
	accountID string,
	amount float64,
	method string,
	details string,
) (funding.Request, error) {
	return e.funding.RequestWithdrawal(accountID, amount, method, details)
}
