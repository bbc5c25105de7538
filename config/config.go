// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PROPSHARE_LOG_LEVEL.
const EnvPrefix = "PROPSHARE"

// Config holds node and operator settings.
type Config struct {
	DataDir           string        `mapstructure:"data_dir"`
	ListenAddr        string        `mapstructure:"listen_addr"`
	Network           string        `mapstructure:"network"` // address encoding: mainnet or testnet
	LogLevel          string        `mapstructure:"log_level"`
	LogFormat         string        `mapstructure:"log_format"`
	RestrictTransfers bool          `mapstructure:"restrict_transfers"`
	RestrictDeposits  bool          `mapstructure:"restrict_deposits"`
	IndexInterval     time.Duration `mapstructure:"index_interval"`
}

// DefaultDataDir returns ~/.propshare, or .propshare if the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".propshare"
	}
	return filepath.Join(home, ".propshare")
}

// ConfigPath returns the config file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.toml")
}

// DBPath returns the bbolt database location inside dataDir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "propshare.db")
}

// DeploymentPath returns where the bootstrapped component addresses are kept.
func (c Config) DeploymentPath() string {
	return filepath.Join(c.DataDir, "deployment.json")
}

// DocsPath returns the metadata document store directory.
func (c Config) DocsPath() string {
	return filepath.Join(c.DataDir, "documents")
}

// Mainnet reports whether addresses are encoded for mainnet.
func (c Config) Mainnet() bool { return c.Network == "mainnet" }

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		DataDir:       DefaultDataDir(),
		ListenAddr:    ":8080",
		Network:       "mainnet",
		LogLevel:      "info",
		LogFormat:     "text",
		IndexInterval: 5 * time.Second,
	}
}

func newViper(defaults Config) *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setAll(v.SetDefault, defaults)
	return v
}

func setAll(set func(string, any), cfg Config) {
	set("data_dir", cfg.DataDir)
	set("listen_addr", cfg.ListenAddr)
	set("network", cfg.Network)
	set("log_level", cfg.LogLevel)
	set("log_format", cfg.LogFormat)
	set("restrict_transfers", cfg.RestrictTransfers)
	set("restrict_deposits", cfg.RestrictDeposits)
	set("index_interval", cfg.IndexInterval.String())
}

// LoadConfig reads the TOML file at path over DefaultConfig. PROPSHARE_*
// environment variables override both. Unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	v := newViper(DefaultConfig())
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return decode(v)
}

// LoadEnv returns DefaultConfig with PROPSHARE_* environment overrides applied.
func LoadEnv() (Config, error) {
	return decode(newViper(DefaultConfig()))
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as TOML, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	v := viper.New()
	v.SetConfigType("toml")
	setAll(v.Set, cfg)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
