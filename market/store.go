package market

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/profitx/profitx/venue"
)

// Store owns the current price, mode and bounded candle history of
// every tradable asset. The asset set is fixed at construction; each
// symbol has its own lock, so distinct symbols never block each other.
//
// The mode is held in an atomic separately from the price state:
// SetMode only relabels the distribution consulted on the next tick
// and must never wait behind a tick in progress.
type Store struct {
	assets map[string]*assetState
}

type assetState struct {
	mode atomic.Int32

	mu         sync.RWMutex
	name       string
	price      float64
	change     float64
	history    []Candle
	lastUpdate time.Time
}

// Seed describes one asset's initial state, either the venue defaults
// or state restored from the journal. History longer than the cap is
// truncated to the most recent candles.
type Seed struct {
	Symbol  string
	Name    string
	Price   float64
	Change  float64
	Mode    Mode
	History []Candle
}

// NewStore builds a store over the given fixed asset set.
func NewStore(seeds []Seed) *Store {
	assets := make(map[string]*assetState, len(seeds))

	for _, seed := range seeds {
		history := seed.History
		if len(history) > historyCap {
			history = history[len(history)-historyCap:]
		}

		state := &assetState{
			name:       seed.Name,
			price:      seed.Price,
			change:     seed.Change,
			history:    append(make([]Candle, 0, historyCap), history...),
			lastUpdate: time.Now(),
		}
		state.mode.Store(int32(seed.Mode))

		assets[seed.Symbol] = state
	}

	return &Store{assets: assets}
}

// Symbols returns the fixed symbol set.
func (s *Store) Symbols() []string {
	symbols := make([]string, 0, len(s.assets))
	for symbol := range s.assets {
		symbols = append(symbols, symbol)
	}

	return symbols
}

// Snapshot returns the asset's current price, mode and last change.
// The price is consistent with the most recently applied tick: a
// reader can never observe a price whose candle has not been appended.
func (s *Store) Snapshot(symbol string) (price float64, mode Mode, change float64, err error) {
	state, ok := s.assets[symbol]
	if !ok {
		return 0, 0, 0, fmt.Errorf("symbol %q: %w", symbol, venue.ErrInvalidRequest)
	}

	state.mu.RLock()
	defer state.mu.RUnlock()

	return state.price, Mode(state.mode.Load()), state.change, nil
}

// ApplyTick installs a new price together with its candle as one unit.
// Concurrent ticks and reads for the same symbol serialize here.
func (s *Store) ApplyTick(symbol string, tick Tick) error {
	state, ok := s.assets[symbol]
	if !ok {
		return fmt.Errorf("symbol %q: %w", symbol, venue.ErrInvalidRequest)
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	state.price = tick.Price
	state.change = tick.Change
	state.lastUpdate = tick.Candle.Time
	state.history = append(state.history, tick.Candle)

	// Evict the oldest candle once the cap is exceeded.
	if len(state.history) > historyCap {
		copy(state.history, state.history[1:])
		state.history = state.history[:len(state.history)-1]
	}

	return nil
}

// SetMode relabels the asset's drift bias. Wait-free with respect to
// ApplyTick: it touches only the mode atomic, never the price lock.
func (s *Store) SetMode(symbol string, mode Mode) error {
	state, ok := s.assets[symbol]
	if !ok {
		return fmt.Errorf("symbol %q: %w", symbol, venue.ErrInvalidRequest)
	}

	state.mode.Store(int32(mode))

	return nil
}

// Mode returns the asset's current drift bias.
func (s *Store) Mode(symbol string) (Mode, error) {
	state, ok := s.assets[symbol]
	if !ok {
		return 0, fmt.Errorf("symbol %q: %w", symbol, venue.ErrInvalidRequest)
	}

	return Mode(state.mode.Load()), nil
}

// View returns a deep copy of every asset, history included, for
// rendering. Each asset is copied under its own read lock; the view is
// not a cross-asset snapshot, which rendering does not need.
func (s *Store) View() map[string]Asset {
	view := make(map[string]Asset, len(s.assets))

	for symbol, state := range s.assets {
		state.mu.RLock()

		history := make([]Candle, len(state.history))
		copy(history, state.history)

		view[symbol] = Asset{
			Symbol:     symbol,
			Name:       state.name,
			Price:      state.price,
			Change:     state.change,
			Mode:       Mode(state.mode.Load()),
			History:    history,
			LastUpdate: state.lastUpdate,
		}

		state.mu.RUnlock()
	}

	return view
}
