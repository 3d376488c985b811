// Command candles streams random candles into a text chart. It reads commands from stdin, see help.
//
// The configuration file is set by CANDLES_CONFIG, any value can be overridden by CANDLES_* variables (e.g. CANDLES_RATE=2).
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fogfactory/tickpipe"
	"github.com/fogfactory/tickpipe/internal/config"
	"github.com/fogfactory/tickpipe/internal/logging"
	"github.com/fogfactory/tickpipe/internal/ohlc"
	"github.com/google/uuid"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CANDLES_CONFIG"))
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	seed := cfg.Generator.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	random, err := ohlc.NewRandomGenerator(cfg.Generator.Start, cfg.Generator.Min, cfg.Generator.Max, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}
	var gen tickpipe.Generator[ohlc.Ohlc] = random
	if cfg.Chart.HeikinAshi {
		gen = tickpipe.Map(gen, ohlc.HeikinAshi())
	}

	chart := ohlc.NewChart(cfg.Chart.Width, cfg.Chart.Height)
	sink := ohlc.NewChartSink(chart, os.Stdout, cfg.Chart.Clear)
	source, err := tickpipe.New[ohlc.Ohlc](
		tickpipe.Synchronized(gen), // "r" may pull while playing
		sink,
		tickpipe.WithRate(cfg.Rate),
		tickpipe.WithLogger(logger),
		tickpipe.WithOnStop(func(id uuid.UUID, err error) {
			if err != nil {
				logger.Info().Str("loop_id", id.String()).Msg("candle stream is over, press p to restart")
			}
		}),
	)
	if err != nil {
		return err
	}
	defer source.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &controller{
		source:       source,
		sink:         sink,
		chart:        chart,
		screenWidth:  cfg.Screen.Width,
		screenHeight: cfg.Screen.Height,
		logger:       logger,
	}
	logger.Info().Float64("rate", cfg.Rate).Msg(help)
	return c.run(ctx, os.Stdin)
}
