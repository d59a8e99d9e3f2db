// Package config loads user-configurable shell parameters from a
// config file using Viper, falling back to hard-coded defaults when no
// file is present or it fails to parse.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"ebash/internal/history"
)

// Terminal holds settings for the line editor and its history file.
type Terminal struct {
	HistoryFile     string `mapstructure:"history_file"`
	HistoryLimit    int    `mapstructure:"history_limit"`
	InterruptPrompt string `mapstructure:"interrupt_prompt"`
	EOFPrompt       string `mapstructure:"exit_message"`
	CheckInterval   uint   `mapstructure:"check_interval"`
}

// Prompt holds the theme and per-segment coloring used to render the
// `user@host:cwd$ ` prompt.
type Prompt struct {
	Theme               string `mapstructure:"theme"`
	PathColour          string `mapstructure:"path_colour"`
	PathColourBold      bool   `mapstructure:"path_colour_bold"`
	GitStatusColour     string `mapstructure:"git_status_colour"`
	GitStatusColourBold bool   `mapstructure:"git_status_colour_bold"`
}

// Config holds every user-tunable constant the shell exposes: history
// and alias capacities, the PATH fallback used when $PATH is unset, the
// completion engine's descriptions, and the prompt/terminal settings
// above.
type Config struct {
	Terminal Terminal `mapstructure:"terminal"`
	Prompt   Prompt   `mapstructure:"prompt"`

	AliasLimit      int    `mapstructure:"alias_limit"`
	PathFallback    string `mapstructure:"path_fallback"`
	DescribeBuiltin bool   `mapstructure:"describe_builtin_completions"`
}

// Load reads a "config.{yaml,json,toml}" from the current directory or
// $HOME using Viper and unmarshals it into a Config. On any failure it
// returns Default() alongside the error so callers can fall back
// without a nil Config.
func Load() (*Config, error) {
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetConfigName("config")

	cfg := Default()
	if err := viper.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("ebash: config: %w", err)
	}
	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("ebash: config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config populated with sensible defaults, used when
// no config file is found or it cannot be parsed.
func Default() *Config {
	return &Config{
		Terminal: Terminal{
			HistoryFile:     filepath.Join(os.Getenv("HOME"), history.DefaultFile),
			HistoryLimit:    1000,
			InterruptPrompt: "^C",
			EOFPrompt:       "\nexit",
			CheckInterval:   0,
		},
		Prompt: Prompt{
			Theme: "ebash",
		},
		AliasLimit:      100,
		PathFallback:    "/bin:/usr/bin",
		DescribeBuiltin: true,
	}
}
