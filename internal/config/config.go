// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package config holds the application configuration. It loads an
// optional TOML file and applies MF2_* environment overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/komkom/toml"
)

// Duration is a time.Duration that decodes from its "10s" string form.
type Duration time.Duration

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// UnmarshalJSON implements [json.Unmarshaler].
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Configuration holds the application settings.
type Configuration struct {
	Main struct {
		LogLevel slog.Level `json:"log_level" env:"LOG_LEVEL"`
		DevMode  bool       `json:"dev_mode" env:"DEV_MODE"`
	} `json:"main" envPrefix:"MAIN_"`
	Extractor struct {
		UserAgent string   `json:"user_agent" env:"USER_AGENT"`
		Timeout   Duration `json:"timeout" env:"TIMEOUT"`
		BaseURL   string   `json:"base_url" env:"BASE_URL"`
	} `json:"extractor" envPrefix:"EXTRACTOR_"`
}

// Config is the active configuration.
var Config = New()

// New returns a [Configuration] instance with its default values.
func New() *Configuration {
	c := &Configuration{}
	c.Main.LogLevel = slog.LevelInfo
	c.Extractor.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.3"
	c.Extractor.Timeout = Duration(10 * time.Second)
	return c
}

// Load populates [Config] from an optional TOML file, then from the
// MF2_* environment variables.
func Load(filename string) error {
	if filename != "" {
		fd, err := os.Open(filename)
		if err != nil {
			return err
		}
		defer fd.Close() //nolint:errcheck

		dec := json.NewDecoder(toml.New(fd))
		if err := dec.Decode(Config); err != nil {
			return fmt.Errorf("cannot load configuration file %s: %w", filename, err)
		}
	}

	return env.ParseWithOptions(Config, env.Options{Prefix: "MF2_"})
}
