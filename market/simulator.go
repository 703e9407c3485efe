package market

import (
	"context"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTickInterval matches the cadence of the original venue.
const DefaultTickInterval = 10 * time.Second

// Recorder receives every applied tick, typically to persist the
// candle. Recorder failures are logged and never stop the simulator.
type Recorder interface {
	RecordTick(symbol string, tick Tick) error
}

// Simulator advances every asset's price on a fixed interval. It is
// the store's only tick writer. The loop is never fatal: a failure on
// one asset is logged and the remaining assets still advance, and any
// per-tick error just carries over to the next tick.
type Simulator struct {
	store    *Store
	interval time.Duration
	rng      *rand.Rand
	log      logrus.FieldLogger
	recorder Recorder
}

// NewSimulator builds a simulator over store. recorder may be nil.
func NewSimulator(
	store *Store,
	interval time.Duration,
	rng *rand.Rand,
	log logrus.FieldLogger,
	recorder Recorder,
) *Simulator {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	return &Simulator{
		store:    store,
		interval: interval,
		rng:      rng,
		log:      log,
		recorder: recorder,
	}
}

// Run blocks, ticking every interval until ctx is cancelled. Process
// shutdown is the only way to stop it.
func (s *Simulator) Run(ctx context.Context) {
	s.log.WithField("interval", s.interval).Info("market simulator started")
	defer s.log.Info("market simulator stopped")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.tickAll(now)
		case <-ctx.Done():
			return
		}
	}
}

// tickAll advances every asset once. Asset failures are isolated.
func (s *Simulator) tickAll(now time.Time) {
	for _, symbol := range s.store.Symbols() {
		if err := s.tickOne(symbol, now); err != nil {
			s.log.WithField("symbol", symbol).
				WithError(err).
				Error("tick failed")
		}
	}
}

func (s *Simulator) tickOne(symbol string, now time.Time) error {
	price, mode, _, err := s.store.Snapshot(symbol)
	if err != nil {
		return err
	}

	tick := Generate(s.rng, price, mode, now)

	if err := s.store.ApplyTick(symbol, tick); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"symbol": symbol,
		"price":  tick.Price,
		"change": tick.Change,
	}).Debug("tick applied")

	if s.recorder != nil {
		if err := s.recorder.RecordTick(symbol, tick); err != nil {
			// Durability is best effort here; the in-memory market
			// has already advanced.
			s.log.WithField("symbol", symbol).
				WithError(err).
				Warn("tick not recorded")
		}
	}

	return nil
}
