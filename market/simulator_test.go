package market

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type captureRecorder struct {
	mu    sync.Mutex
	ticks map[string]int
	fail  bool
}

func (r *captureRecorder) RecordTick(symbol string, tick Tick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail {
		return errors.New("disk full")
	}

	if r.ticks == nil {
		r.ticks = make(map[string]int)
	}
	r.ticks[symbol]++

	return nil
}

func (r *captureRecorder) count(symbol string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.ticks[symbol]
}

func TestSimulatorAdvancesEveryAsset(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	recorder := &captureRecorder{}

	sim := NewSimulator(
		store,
		2*time.Millisecond,
		rand.New(rand.NewSource(1)),
		testLogger(),
		recorder,
	)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		sim.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return recorder.count("btc") >= 5 && recorder.count("xau") >= 5
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	<-done

	for _, symbol := range []string{"btc", "xau"} {
		asset := store.View()[symbol]
		assert.NotEmpty(t, asset.History, symbol)
		assert.Equal(t, asset.History[len(asset.History)-1].Close, asset.Price, symbol)
	}
}

func TestSimulatorSurvivesRecorderFailure(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	sim := NewSimulator(
		store,
		2*time.Millisecond,
		rand.New(rand.NewSource(1)),
		testLogger(),
		&captureRecorder{fail: true},
	)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		sim.Run(ctx)
	}()

	// The market keeps advancing even though nothing can be persisted.
	require.Eventually(t, func() bool {
		return len(store.View()["btc"].History) >= 5
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestSimulatorHonorsMode(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.SetMode("btc", ModeUp))
	require.NoError(t, store.SetMode("xau", ModeDown))

	sim := NewSimulator(
		store,
		time.Millisecond,
		rand.New(rand.NewSource(3)),
		testLogger(),
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		sim.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return len(store.View()["btc"].History) >= 20 &&
			len(store.View()["xau"].History) >= 20
	}, 5*time.Second, 2*time.Millisecond)

	cancel()
	<-done

	// Every up-tick gained, every down-tick lost.
	for _, c := range store.View()["btc"].History {
		assert.Greater(t, c.Close, c.Open)
	}
	for _, c := range store.View()["xau"].History {
		assert.Less(t, c.Close, c.Open)
	}
}
