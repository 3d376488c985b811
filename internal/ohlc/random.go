package ohlc

import (
	"fmt"
	"math"
	"math/rand"
)

// steps is the number of random moves summarized by a candle.
const steps = 4

// RandomGenerator generates an infinite random walk of candles bounded in [min, max].
// It is not safe for concurrent use.
type RandomGenerator struct {
	rnd        *rand.Rand
	last       float64
	min, max   float64
	volatility float64
}

// NewRandomGenerator builds a generator whose first candle opens at start.
func NewRandomGenerator(start, min, max float64, rnd *rand.Rand) (*RandomGenerator, error) {
	if !(min < max) {
		return nil, fmt.Errorf("random generator: min must be lower than max (got %v, %v)", min, max)
	}
	if start < min || start > max {
		return nil, fmt.Errorf("random generator: start %v out of [%v, %v]", start, min, max)
	}
	return &RandomGenerator{
		rnd:        rnd,
		last:       start,
		min:        min,
		max:        max,
		volatility: (max - min) / 50,
	}, nil
}

// Next returns the next candle, opening at the close of the previous one.
func (g *RandomGenerator) Next() (Ohlc, error) {
	o := Ohlc{Open: g.last, High: g.last, Low: g.last}
	v := g.last
	for i := 0; i < steps; i++ {
		v = math.Min(g.max, math.Max(g.min, v+g.rnd.NormFloat64()*g.volatility))
		o.High = math.Max(o.High, v)
		o.Low = math.Min(o.Low, v)
	}
	o.Close = v
	g.last = v
	return o, nil
}
