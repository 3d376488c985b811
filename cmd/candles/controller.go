package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fogfactory/tickpipe"
	"github.com/fogfactory/tickpipe/internal/ohlc"
	"github.com/rs/zerolog"
)

// controller drives the candle pipeline from text commands, one per line.
type controller struct {
	source *tickpipe.Pipeline[ohlc.Ohlc]
	sink   *ohlc.ChartSink
	chart  *ohlc.Chart
	logger zerolog.Logger

	screenWidth, screenHeight int
}

const help = "commands: p play/pause, r next candle, h cycle height, w cycle width, q quit"

// handle runs one command. It returns true when the controller must stop.
func (c *controller) handle(cmd string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(cmd)) {
	case "p":
		return false, c.togglePause()
	case "r":
		c.nextCandle()
	case "h":
		c.resizeHeight()
	case "w":
		c.resizeWidth()
	case "q":
		return true, nil
	case "":
	default:
		c.logger.Info().Str("command", cmd).Msg(help)
	}
	return false, nil
}

func (c *controller) togglePause() error {
	if c.source.Paused() {
		return c.source.Resume()
	}
	c.source.Pause()
	return nil
}

// nextCandle pulls a candle from the generator and draws it, bypassing the delivery loop.
func (c *controller) nextCandle() {
	o, err := c.source.Next()
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to get next candle")
		return
	}
	if err := c.sink.Accept(o); err != nil {
		c.logger.Error().Err(err).Msg("failed to add candle")
	}
}

func (c *controller) resizeHeight() {
	w, h := c.chart.Size()
	hMax := c.screenHeight - 5
	if h >= hMax {
		h = 5
	} else {
		h = min(hMax, int(float64(h)*1.2))
	}
	c.chart.Resize(w, h)
	c.redraw()
}

func (c *controller) resizeWidth() {
	w, h := c.chart.Size()
	wMax := c.screenWidth - 3
	if w >= wMax {
		w = 20
	} else {
		w = min(wMax, int(float64(w)*1.2))
	}
	c.chart.Resize(w, h)
	c.redraw()
}

func (c *controller) redraw() {
	if err := c.sink.Render(); err != nil {
		c.logger.Error().Err(err).Msg("failed to render chart")
	}
}

// run reads commands from in until "q", the end of input or ctx cancellation. The pipeline is paused on return.
func (c *controller) run(ctx context.Context, in io.Reader) error {
	defer c.source.Pause()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := c.handle(line)
			if err != nil {
				return fmt.Errorf("command %q: %w", line, err)
			}
			if quit {
				return nil
			}
		}
	}
}
