// Package journal persists the venue's durable state: one record type
// per entity (accounts, trades, funding requests, assets, candles),
// each independently loadable and saveable. Writes are issued from
// inside the owning component's critical section, so the durable
// record always reflects some committed state.
package journal

import (
	"github.com/profitx/profitx/funding"
	"github.com/profitx/profitx/ledger"
	"github.com/profitx/profitx/market"
)

// Journal is the venue's durability sink. It satisfies
// ledger.AccountWriter, funding.RequestWriter and market.Recorder.
type Journal interface {
	SaveAccount(ledger.Account) error
	SaveRequest(funding.Request) error
	SaveAssetMode(symbol string, mode market.Mode) error
	RecordTick(symbol string, tick market.Tick) error
	Close() error
}

// Noop discards everything. Used for pure in-memory venues and tests.
type Noop struct{}

func (Noop) SaveAccount(ledger.Account) error        { return nil }
func (Noop) SaveRequest(funding.Request) error       { return nil }
func (Noop) SaveAssetMode(string, market.Mode) error { return nil }
func (Noop) RecordTick(string, market.Tick) error    { return nil }
func (Noop) Close() error                            { return nil }
