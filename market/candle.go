// Package market owns the synthetic market: the tradable assets, their
// price history, and the background simulator that advances them.
package market

import (
	"fmt"
	"time"
)

// historyCap bounds every asset's candle history. Once full, appending
// evicts the oldest candle (FIFO), so readers always get at most the
// last 100 ticks.
const historyCap = 100

// Candle is one OHLC sample produced by a single simulation tick.
// Immutable once appended to an asset's history.
type Candle struct {
	Time  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

func (c Candle) String() string {
	return fmt.Sprintf(
		"time: %v, open: %.4f, close: %.4f",
		c.Time.Format(time.RFC3339), c.Open, c.Close,
	)
}

// Mode is the operator-controlled bias on an asset's simulated drift.
type Mode int32

const (
	// ModeAuto drifts the price uniformly in [-0.2%, 0.2%] per tick.
	ModeAuto Mode = iota
	// ModeUp drifts the price uniformly in [0.1%, 0.5%] per tick.
	ModeUp
	// ModeDown drifts the price uniformly in [-0.5%, -0.1%] per tick.
	ModeDown
)

// ParseMode converts the wire representation used by the operator
// surface ("auto", "up", "down") into a Mode.
func ParseMode(value string) (Mode, error) {
	switch value {
	case "auto":
		return ModeAuto, nil
	case "up":
		return ModeUp, nil
	case "down":
		return ModeDown, nil
	}

	return -1, fmt.Errorf("unknown mode: %q", value)
}

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeUp:
		return "up"
	case ModeDown:
		return "down"
	}

	return ""
}

// Asset is a read-only view of one tradable symbol, as returned by
// Store.View for chart rendering. History is a copy, most-recent-last.
type Asset struct {
	Symbol     string
	Name       string
	Price      float64
	Change     float64
	Mode       Mode
	History    []Candle
	LastUpdate time.Time
}
