package benchmark

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/fogfactory/tickpipe"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Profile generates a CPU profile of the delivery loop at unbounded rate. It will be outputted in dir as tickpipe_{date}_{ticks}.prof.
//
// - ticks Number of ticks delivered.
// - failEvery Every failEvery tick, the sink fails (0 never fails), to profile the failure path.
//
// use pprof to read the file (go install github.com/google/pprof@latest).
func Profile(dir string, ticks, failEvery int) (string, error) {
	// Profile file
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("tickpipe_%s_%d.prof",
		strings.ReplaceAll(time.Now().Truncate(time.Second).Format(time.DateTime), " ", "-"),
		ticks)))
	if err != nil {
		return "", err
	}
	defer f.Close()

	// Init pipeline
	errFail := errors.New("dumb failure")
	delivered := 0
	sink := tickpipe.SinkFunc[int](func(i int) error {
		delivered++
		if failEvery > 0 && i%failEvery == 0 {
			return errFail
		}
		return nil
	})
	done := make(chan error, 1)
	source, err := tickpipe.New[int](tickpipe.FromSlice(lo.Range(ticks)), sink,
		tickpipe.WithRate(0),
		tickpipe.WithLogger(zerolog.Nop()),
		tickpipe.WithOnStop(func(_ uuid.UUID, err error) { done <- err }))
	if err != nil {
		return "", err
	}
	defer source.Close()

	// Start profiling
	if err := pprof.StartCPUProfile(f); err != nil {
		return "", err
	}
	start := time.Now()
	if err := source.Resume(); err != nil {
		pprof.StopCPUProfile()
		return "", err
	}
	err = <-done
	pprof.StopCPUProfile()
	if !errors.Is(err, tickpipe.ErrExhausted) {
		return "", err
	}

	stats := source.Stats()
	fmt.Printf("(delivered: %d, failed: %d, %s)\n", stats.Delivered, stats.Failed, time.Since(start))
	if delivered != ticks {
		return "", fmt.Errorf("sink received %d ticks, expected %d", delivered, ticks)
	}
	return f.Name(), nil

	// Call pprof on a file
	// pprof -http=:8080 $file
}
