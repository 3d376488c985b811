// Package ohlc provides the candle values streamed by the candles application: a random candle generator,
// the Heikin-Ashi transform and a text chart sink.
package ohlc

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCandle is returned for a candle whose high/low don't bound its open/close.
var ErrInvalidCandle = errors.New("invalid candle")

// Ohlc is one candle: open, high, low and close prices of a period.
type Ohlc struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Bullish reports whether the candle closed above its open.
func (o Ohlc) Bullish() bool { return o.Close >= o.Open }

// Validate checks that the candle is made of finite values, and that high and low bound open and close.
func (o Ohlc) Validate() error {
	for _, v := range []float64{o.Open, o.High, o.Low, o.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non finite value in %v", ErrInvalidCandle, o)
		}
	}
	if o.High < math.Max(o.Open, o.Close) || o.Low > math.Min(o.Open, o.Close) {
		return fmt.Errorf("%w: %v", ErrInvalidCandle, o)
	}
	return nil
}

func (o Ohlc) String() string {
	return fmt.Sprintf("O:%.2f H:%.2f L:%.2f C:%.2f", o.Open, o.High, o.Low, o.Close)
}
