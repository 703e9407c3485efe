package market

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePriceFormula(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tick := Generate(rng, 1000, ModeAuto, now)

	// newPrice = price * (1 + change/100)
	assert.InDelta(t, 1000*(1+tick.Change/100), tick.Price, 1e-9)
	assert.Equal(t, now, tick.Candle.Time)
	assert.Equal(t, 1000.0, tick.Candle.Open)
	assert.Equal(t, tick.Price, tick.Candle.Close)
}

func TestGenerateChangeBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mode   Mode
		lo, hi float64
	}{
		{name: "up", mode: ModeUp, lo: 0.1, hi: 0.5},
		{name: "down", mode: ModeDown, lo: -0.5, hi: -0.1},
		{name: "auto", mode: ModeAuto, lo: -0.2, hi: 0.2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rng := rand.New(rand.NewSource(7))
			price := 41250.75

			for i := 0; i < 10000; i++ {
				tick := Generate(rng, price, tt.mode, time.Now())

				require.GreaterOrEqual(t, tick.Change, tt.lo-1e-9)
				require.LessOrEqual(t, tick.Change, tt.hi+1e-9)

				price = tick.Price
			}
		})
	}
}

func TestGenerateCandleShape(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(99))
	price := 1985.40

	for i := 0; i < 10000; i++ {
		tick := Generate(rng, price, ModeAuto, time.Now())
		c := tick.Candle

		hi := max(c.Open, c.Close)
		lo := min(c.Open, c.Close)

		require.GreaterOrEqual(t, c.High, hi)
		require.LessOrEqual(t, c.Low, lo)

		// Wick padding stays within 1% of the open-close range.
		require.LessOrEqual(t, c.High, hi*1.01+1e-9)
		require.GreaterOrEqual(t, c.Low, lo*0.99-1e-9)

		price = tick.Price
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, mode := range []Mode{ModeAuto, ModeUp, ModeDown} {
		parsed, err := ParseMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}

	_, err := ParseMode("sideways")
	assert.Error(t, err)
}
