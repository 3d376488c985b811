package ohlc

import (
	"math"

	"github.com/fogfactory/tickpipe"
)

// HeikinAshi returns a process turning a candle sequence into Heikin-Ashi candles. The process keeps the previous candle:
// use one per sequence.
func HeikinAshi() tickpipe.Process[Ohlc] {
	var prev *Ohlc
	return func(o Ohlc) Ohlc {
		ha := Ohlc{Close: (o.Open + o.High + o.Low + o.Close) / 4}
		if prev == nil {
			ha.Open = (o.Open + o.Close) / 2
		} else {
			ha.Open = (prev.Open + prev.Close) / 2
		}
		ha.High = math.Max(o.High, math.Max(ha.Open, ha.Close))
		ha.Low = math.Min(o.Low, math.Min(ha.Open, ha.Close))
		prev = &ha
		return ha
	}
}
