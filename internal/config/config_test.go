package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fogfactory/tickpipe/internal/config"
	"github.com/fogfactory/tickpipe/internal/logging"
	"github.com/maxatome/go-testdeep/td"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yml")
	td.Require(t).CmpNoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {

	t.Run("success_defaults", func(t *testing.T) {
		// Act
		cfg, err := config.Load("")

		// Assert
		td.Require(t).CmpNoError(err)
		td.Cmp(t, cfg, &config.Config{
			Rate:      10,
			Chart:     config.ChartConfig{Width: 60, Height: 15, HeikinAshi: true, Clear: true},
			Screen:    config.ScreenConfig{Width: 80, Height: 24},
			Generator: config.GeneratorConfig{Start: 20, Min: 10, Max: 100},
			Log:       logging.Config{Level: "info", Format: "console", Output: "stderr"},
		})
	})

	t.Run("success_file_and_env", func(t *testing.T) {
		// Arrange
		path := writeConfig(t, `
rate: 0
chart:
  width: 30
  heikin_ashi: false
log:
  format: json
`)
		t.Setenv("CANDLES_CHART_HEIGHT", "8")
		t.Setenv("CANDLES_GENERATOR_SEED", "99")

		// Act
		cfg, err := config.Load(path)

		// Assert
		td.Require(t).CmpNoError(err)
		td.Cmp(t, cfg.Rate, 0.0, "0 is a valid rate")
		td.Cmp(t, cfg.Chart, config.ChartConfig{Width: 30, Height: 8, HeikinAshi: false, Clear: true})
		td.Cmp(t, cfg.Generator.Seed, int64(99))
		td.Cmp(t, cfg.Log.Format, "json")
	})

	t.Run("error_missing_file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
		td.CmpError(t, err)
	})

	t.Run("error_invalid_values", func(t *testing.T) {
		// Arrange
		path := writeConfig(t, `
rate: -1
generator:
  min: 50
  max: 40
log:
  level: loud
`)

		// Act
		_, err := config.Load(path)

		// Assert
		td.CmpError(t, err)
		td.CmpContains(t, err, "rate must be")
		td.CmpContains(t, err, "generator.min")
		td.CmpContains(t, err, "log.level")
	})

	t.Run("error_env_override", func(t *testing.T) {
		t.Setenv("CANDLES_RATE", "-3")

		_, err := config.Load("")

		td.CmpContains(t, err, "rate must be")
	})
}
