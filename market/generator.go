package market

import (
	"math/rand"
	"time"
)

// Tick is the outcome of advancing one asset by one simulation step:
// the new price, the percentage change that produced it, and the OHLC
// candle covering the step.
type Tick struct {
	Price  float64
	Change float64
	Candle Candle
}

// Generate advances price by one step under the given mode. Pure apart
// from the rng: the same rng state always yields the same tick, which
// is what the distribution tests rely on.
//
// The drawn change is a percentage; the candle's high and low are
// padded above/below the open-close range by up to 1% to give the
// chart some wick.
func Generate(rng *rand.Rand, price float64, mode Mode, now time.Time) Tick {
	change := drawChange(rng, mode)
	newPrice := price * (1 + change/100)

	high := max(price, newPrice) * (1 + rng.Float64()*0.01)
	low := min(price, newPrice) * (1 - rng.Float64()*0.01)

	return Tick{
		Price:  newPrice,
		Change: (newPrice - price) / price * 100,
		Candle: Candle{
			Time:  now,
			Open:  price,
			High:  high,
			Low:   low,
			Close: newPrice,
		},
	}
}

// drawChange draws a percentage change from the distribution selected
// by mode: up [0.1, 0.5], down [-0.5, -0.1], auto [-0.2, 0.2].
func drawChange(rng *rand.Rand, mode Mode) float64 {
	switch mode {
	case ModeUp:
		return uniform(rng, 0.1, 0.5)
	case ModeDown:
		return uniform(rng, -0.5, -0.1)
	default:
		return uniform(rng, -0.2, 0.2)
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
