// Package config loads the scriptrun settings file.
package config

import (
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heathj/scriptrun/script"
)

// fileConfig maps the keys of a scriptrun TOML file.
type fileConfig struct {
	JavaScriptEnabled      bool   `toml:"javascript_enabled"`
	Profile                string `toml:"profile"`
	LegacyTiming           bool   `toml:"legacy_timing"`
	Version                int    `toml:"version"`
	SkipPseudoURLAtVersion int    `toml:"skip_pseudo_url_at_version"`
	MaxExecutionDepth      int    `toml:"max_execution_depth"`
	LogLevel               string `toml:"log_level"`
	LogFormat              string `toml:"log_format"`
	FetchTimeout           string `toml:"fetch_timeout"`
}

// Config is the resolved runtime configuration.
type Config struct {
	JavaScriptEnabled bool
	Profile           script.ExecutionProfile
	// MaxExecutionDepth bounds script re-entry. Zero leaves it unbounded.
	MaxExecutionDepth int
	LogLevel          logrus.Level
	LogFormat         string
	FetchTimeout      time.Duration
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		JavaScriptEnabled: true,
		Profile:           script.Modern,
		LogLevel:          logrus.InfoLevel,
		LogFormat:         "text",
		FetchTimeout:      30 * time.Second,
	}
}

// Load overlays the keys defined in the file at path on Default. The
// profile key is applied first so the individual profile keys refine it.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrap(err, "load config")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		logrus.WithField("keys", undecoded).Warn("ignoring unknown config keys")
	}

	if meta.IsDefined("javascript_enabled") {
		cfg.JavaScriptEnabled = raw.JavaScriptEnabled
	}
	if meta.IsDefined("profile") {
		if err := cfg.SetProfile(raw.Profile); err != nil {
			return Config{}, errors.Wrap(err, "load config")
		}
	}
	if meta.IsDefined("legacy_timing") {
		cfg.Profile.UsesLegacyTiming = raw.LegacyTiming
	}
	if meta.IsDefined("version") {
		cfg.Profile.Version = raw.Version
	}
	if meta.IsDefined("skip_pseudo_url_at_version") {
		cfg.Profile.SkipsPseudoURLAtVersion = raw.SkipPseudoURLAtVersion
	}
	if meta.IsDefined("max_execution_depth") {
		if raw.MaxExecutionDepth < 0 {
			return Config{}, errors.Errorf("load config: max_execution_depth must not be negative, got %d", raw.MaxExecutionDepth)
		}
		cfg.MaxExecutionDepth = raw.MaxExecutionDepth
	}
	if meta.IsDefined("log_level") {
		if err := cfg.SetLogLevel(raw.LogLevel); err != nil {
			return Config{}, errors.Wrap(err, "load config")
		}
	}
	if meta.IsDefined("log_format") {
		format := strings.ToLower(strings.TrimSpace(raw.LogFormat))
		if format != "text" && format != "json" {
			return Config{}, errors.Errorf("load config: unsupported log_format %q (expected text or json)", raw.LogFormat)
		}
		cfg.LogFormat = format
	}
	if meta.IsDefined("fetch_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.FetchTimeout))
		if err != nil {
			return Config{}, errors.Wrap(err, "load config: fetch_timeout")
		}
		cfg.FetchTimeout = d
	}
	return cfg, nil
}

// SetProfile replaces the profile with the built-in one called name.
func (c *Config) SetProfile(name string) error {
	p, err := script.ProfileByName(name)
	if err != nil {
		return err
	}
	c.Profile = p
	return nil
}

func (c *Config) SetLogLevel(level string) error {
	l, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return errors.Wrap(err, "log_level")
	}
	c.LogLevel = l
	return nil
}

// Host returns the host environment the settings describe.
func (c Config) Host() *script.Host {
	h := script.NewHost(c.Profile)
	h.JavaScriptEnabled = c.JavaScriptEnabled
	return h
}

// Logger returns a logger writing at the configured level and format.
func (c Config) Logger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
