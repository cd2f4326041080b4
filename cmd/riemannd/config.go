package main

import (
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the example binary's configuration, loaded from a toml file.
// This is explicitly example-binary scope, not core engine scope (spec.md
// §1 puts wire protocols and config loading proper out of scope) -- it
// exists so the adapters and metrics built for this module have a runnable
// home.
type Config struct {
	WSBridge struct {
		ListenAddr string `toml:"listen_addr"`
	} `toml:"wsbridge"`

	Graphite struct {
		Addr          string `toml:"addr"`
		MaxBatch      int    `toml:"max_batch"`
		FlushInterval string `toml:"flush_interval"`
	} `toml:"graphite"`

	Metrics struct {
		ListenAddr string `toml:"listen_addr"`
	} `toml:"metrics"`

	Percentiles struct {
		Interval string    `toml:"interval"`
		Values   []float64 `toml:"values"`
	} `toml:"percentiles"`

	Rate struct {
		Interval string `toml:"interval"`
	} `toml:"rate"`
}

func defaultConfig() Config {
	var c Config
	c.WSBridge.ListenAddr = ":5555"
	c.Graphite.Addr = "127.0.0.1:2003"
	c.Graphite.MaxBatch = 100
	c.Graphite.FlushInterval = "100ms"
	c.Metrics.ListenAddr = ":9090"
	c.Percentiles.Interval = "10s"
	c.Percentiles.Values = []float64{0.5, 0.95, 0.99}
	c.Rate.Interval = "1s"
	return c
}

func loadConfig(path string) (Config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) graphiteFlushInterval() time.Duration {
	d, err := time.ParseDuration(c.Graphite.FlushInterval)
	if err != nil || d <= 0 {
		return 100 * time.Millisecond
	}
	return d
}

func (c Config) percentilesInterval() time.Duration {
	d, err := time.ParseDuration(c.Percentiles.Interval)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

func (c Config) rateInterval() time.Duration {
	d, err := time.ParseDuration(c.Rate.Interval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}
