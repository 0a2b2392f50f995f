// Package telemetry implements the engine's logging chain and rolling
// power diagnostics: a chain-of-responsibility logger (console, then
// tick-data) configured from YAML, colorized on a terminal via
// fatih/color, and a per-run UUID that names the log directory so
// concurrent runs write their logs to separate directories.
package telemetry

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config is the on-disk logging configuration, one section per logger
// in the chain.
type Config struct {
	Console struct {
		Enabled           bool   `yaml:"enabled"`
		FilenameExtension string `yaml:"filenameExtension"`
		MinLevel          string `yaml:"minLevel"`
	} `yaml:"console"`

	TickData struct {
		Enabled           bool   `yaml:"enabled"`
		FilenameExtension string `yaml:"filenameExtension"`
	} `yaml:"tickData"`
}

// DefaultConfig is used when no config file is given.
func DefaultConfig() Config {
	var c Config
	c.Console.Enabled = true
	c.Console.FilenameExtension = ".log"
	c.Console.MinLevel = "info"
	c.TickData.Enabled = true
	c.TickData.FilenameExtension = ".tsv"
	return c
}

// LoadConfig reads a YAML logging config from path. An empty path
// returns DefaultConfig.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading log config %s", path)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing log config %s", path)
	}
	return cfg, nil
}
