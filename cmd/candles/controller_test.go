package main

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fogfactory/tickpipe"
	"github.com/fogfactory/tickpipe/internal/ohlc"
	"github.com/maxatome/go-testdeep/td"
	"github.com/rs/zerolog"
)

func initController(t *testing.T, rate float64) (*controller, *bytes.Buffer) {
	gen, err := ohlc.NewRandomGenerator(20, 10, 100, rand.New(rand.NewSource(1)))
	td.Require(t).CmpNoError(err)
	out := &syncBuffer{}
	chart := ohlc.NewChart(60, 15)
	sink := ohlc.NewChartSink(chart, out, false)
	source, err := tickpipe.New[ohlc.Ohlc](tickpipe.Synchronized[ohlc.Ohlc](gen), sink,
		tickpipe.WithRate(rate), tickpipe.WithLogger(zerolog.Nop()))
	td.Require(t).CmpNoError(err)
	t.Cleanup(source.Close)

	return &controller{
		source:       source,
		sink:         sink,
		chart:        chart,
		logger:       zerolog.Nop(),
		screenWidth:  80,
		screenHeight: 24,
	}, &out.buf
}

func TestController(t *testing.T) {

	t.Run("success_toggle_pause", func(t *testing.T) {
		// Arrange
		c, _ := initController(t, 100)

		// Act & Assert
		quit, err := c.handle("p")
		td.CmpNoError(t, err)
		td.CmpFalse(t, quit)
		td.CmpFalse(t, c.source.Paused())

		_, err = c.handle("P")
		td.CmpNoError(t, err)
		td.CmpTrue(t, c.source.Paused())
	})

	t.Run("success_next_candle", func(t *testing.T) {
		// Arrange
		c, _ := initController(t, 1)

		// Act
		for i := 0; i < 3; i++ {
			_, err := c.handle("r")
			td.CmpNoError(t, err)
		}

		// Assert
		td.Cmp(t, c.chart.Len(), 3)
		td.CmpTrue(t, c.source.Paused())
		td.Cmp(t, c.source.Stats().Pulled, uint64(3))
	})

	t.Run("success_cycle_height", func(t *testing.T) {
		// Arrange
		c, _ := initController(t, 1)
		var heights []int

		// Act
		for i := 0; i < 3; i++ {
			c.resizeHeight()
			_, h := c.chart.Size()
			heights = append(heights, h)
		}

		// Assert
		td.Cmp(t, heights, []int{18, 19, 5}, "Grows up to the screen height minus 5, then wraps")
	})

	t.Run("success_cycle_width", func(t *testing.T) {
		// Arrange
		c, _ := initController(t, 1)
		var widths []int

		// Act
		for i := 0; i < 3; i++ {
			c.resizeWidth()
			w, _ := c.chart.Size()
			widths = append(widths, w)
		}

		// Assert
		td.Cmp(t, widths, []int{72, 77, 20}, "Grows up to the screen width minus 3, then wraps")
	})

	t.Run("success_run_until_quit", func(t *testing.T) {
		// Arrange
		c, out := initController(t, 0)

		// Act
		err := c.run(context.Background(), strings.NewReader("r\nunknown\np\nq\nr\n"))

		// Assert
		td.CmpNoError(t, err)
		td.CmpTrue(t, c.source.Paused(), "The pipeline is paused on return")
		td.Cmp(t, c.source.Stats().Pulled, uint64(1), "Commands after q are ignored")
		td.CmpNot(t, out.Len(), 0)
	})

	t.Run("success_run_cancelled", func(t *testing.T) {
		// Arrange
		c, _ := initController(t, 50)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		in := &blockingReader{release: make(chan struct{})}
		defer close(in.release)

		// Act
		td.Require(t).CmpNoError(c.source.Resume())
		err := c.run(ctx, in)

		// Assert
		td.CmpNoError(t, err)
		td.CmpTrue(t, c.source.Paused())
	})
}

// blockingReader blocks until released, like an idle terminal
type blockingReader struct {
	release chan struct{}
}

func (r *blockingReader) Read([]byte) (int, error) {
	<-r.release
	return 0, io.EOF
}

// syncBuffer is a buffer safe to write from the delivery loop
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}
