package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/alisaviation/metricslog/internal/writer"
)

var ErrInvalidDelay = errors.New("invalid producer delay range")

type Agent struct {
	FilePath      string
	FlushInterval time.Duration
	LogLevel      string
	MinDelay      time.Duration
	MaxDelay      time.Duration
}

// Load reads the agent configuration. Flags win over environment variables
// (METRICS_FILE, FLUSH_INTERVAL, LOG_LEVEL, MIN_DELAY, MAX_DELAY), which win
// over defaults. Durations are given in milliseconds.
func Load(args []string) (*Agent, error) {
	flags := pflag.NewFlagSet("agent", pflag.ContinueOnError)
	flags.StringP("file", "f", "metrics.log", "metrics log file")
	flags.Int64P("interval", "i", 1000, "flush interval in milliseconds")
	flags.StringP("log-level", "l", "info", "log level (debug|info|warn|error)")
	flags.Int64("min-delay", 200, "minimum delay between samples in milliseconds")
	flags.Int64("max-delay", 1000, "maximum delay between samples in milliseconds")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"metrics_file":   "file",
		"flush_interval": "interval",
		"log_level":      "log-level",
		"min_delay":      "min-delay",
		"max_delay":      "max-delay",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	conf := &Agent{
		FilePath:      v.GetString("metrics_file"),
		FlushInterval: time.Duration(v.GetInt64("flush_interval")) * time.Millisecond,
		LogLevel:      v.GetString("log_level"),
		MinDelay:      time.Duration(v.GetInt64("min_delay")) * time.Millisecond,
		MaxDelay:      time.Duration(v.GetInt64("max_delay")) * time.Millisecond,
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Agent) Validate() error {
	if c.FilePath == "" {
		return fmt.Errorf("file: %w", writer.ErrEmptyFilePath)
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("interval: %w: %s", writer.ErrInvalidInterval, c.FlushInterval)
	}
	if c.MinDelay <= 0 || c.MaxDelay < c.MinDelay {
		return fmt.Errorf("%w: [%s, %s]", ErrInvalidDelay, c.MinDelay, c.MaxDelay)
	}
	return nil
}

// Writer returns the settings of the metrics writer.
func (c *Agent) Writer() writer.Config {
	return writer.Config{
		FilePath:      c.FilePath,
		FlushInterval: c.FlushInterval,
	}
}
