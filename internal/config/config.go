// Package config loads the candles application configuration from an optional YAML file and CANDLES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fogfactory/tickpipe/internal/logging"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables overriding the configuration, e.g. CANDLES_CHART_WIDTH.
const EnvPrefix = "CANDLES"

// Config is the candles application configuration.
type Config struct {
	// Rate is the number of candles per second. 0 means as fast as possible.
	Rate      float64         `mapstructure:"rate"`
	Chart     ChartConfig     `mapstructure:"chart"`
	Screen    ScreenConfig    `mapstructure:"screen"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Log       logging.Config  `mapstructure:"log"`
}

// ChartConfig sets the initial chart.
type ChartConfig struct {
	Width      int  `mapstructure:"width"`
	Height     int  `mapstructure:"height"`
	HeikinAshi bool `mapstructure:"heikin_ashi"`
	Clear      bool `mapstructure:"clear"`
}

// ScreenConfig bounds the chart when resizing it.
type ScreenConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// GeneratorConfig sets the random candle walk.
type GeneratorConfig struct {
	Start float64 `mapstructure:"start"`
	Min   float64 `mapstructure:"min"`
	Max   float64 `mapstructure:"max"`
	Seed  int64   `mapstructure:"seed"` // 0 seeds from the clock
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rate", 10.0)
	v.SetDefault("chart.width", 60)
	v.SetDefault("chart.height", 15)
	v.SetDefault("chart.heikin_ashi", true)
	v.SetDefault("chart.clear", true)
	v.SetDefault("screen.width", 80)
	v.SetDefault("screen.height", 24)
	v.SetDefault("generator.start", 20.0)
	v.SetDefault("generator.min", 10.0)
	v.SetDefault("generator.max", 100.0)
	v.SetDefault("generator.seed", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatConsole)
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.no_color", false)
}

// Load reads the configuration. path may be empty: defaults and environment are used then.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []error
	if math.IsNaN(c.Rate) || math.IsInf(c.Rate, 0) || c.Rate < 0 {
		errs = append(errs, fmt.Errorf("rate must be a finite non-negative number (got: %v)", c.Rate))
	}
	if c.Chart.Width < 1 || c.Chart.Height < 1 {
		errs = append(errs, fmt.Errorf("chart size must be positive (got: %dx%d)", c.Chart.Width, c.Chart.Height))
	}
	if c.Screen.Width < 1 || c.Screen.Height < 1 {
		errs = append(errs, fmt.Errorf("screen size must be positive (got: %dx%d)", c.Screen.Width, c.Screen.Height))
	}
	if !(c.Generator.Min < c.Generator.Max) {
		errs = append(errs, fmt.Errorf("generator.min must be lower than generator.max (got: %v, %v)", c.Generator.Min, c.Generator.Max))
	} else if c.Generator.Start < c.Generator.Min || c.Generator.Start > c.Generator.Max {
		errs = append(errs, fmt.Errorf("generator.start must be in [generator.min, generator.max] (got: %v)", c.Generator.Start))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
