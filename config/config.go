// Package config provides configuration management for nordgen.
// It handles loading, saving, and validating generation preferences.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"nordgen/common"
)

// Keepalive bounds accepted by WireGuard peers in this tool.
const (
	MinKeepalive = 15
	MaxKeepalive = 120
)

// Defaults applied when no config file exists and no flags are given.
const (
	DefaultDNS       = "103.86.96.100"
	DefaultKeepalive = 25
)

// Config represents the generation preferences.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	// DNS is the resolver address written into every profile.
	DNS string `yaml:"dns"`
	// UseStationIP selects the station IP over the hostname as endpoint.
	UseStationIP bool `yaml:"use_station_ip"`
	// Keepalive is the PersistentKeepalive interval in seconds.
	Keepalive int `yaml:"keepalive"`
	// Concurrency caps simultaneous profile writes.
	Concurrency int `yaml:"concurrency"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DNS:          DefaultDNS,
		UseStationIP: false,
		Keepalive:    DefaultKeepalive,
		Concurrency:  common.DefaultConcurrency,
	}
}

// Load loads the configuration from the config file.
// If the file doesn't exist, it creates one with default values.
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		// Persisting the defaults is best effort; an unwritable home
		// directory must not block a run that has its defaults in hand.
		if err := cfg.Save(); err != nil {
			common.LogWarn("Could not save default configuration: %v", err)
		}
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, common.WrapError(common.ErrConfigLoad, err.Error())
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	var config Config
	if err := decoder.Decode(&config); err != nil {
		return nil, common.WrapError(common.ErrConfigLoad, err.Error())
	}

	if config.Concurrency <= 0 {
		config.Concurrency = common.DefaultConcurrency
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate verifies that preference values are acceptable.
// Invalid input is a hard error, never silently corrected.
func (c *Config) Validate() error {
	if !ValidDNS(c.DNS) {
		return common.WrapError(common.ErrInvalidDNS, c.DNS)
	}
	if c.Keepalive < MinKeepalive || c.Keepalive > MaxKeepalive {
		return common.WrapError(common.ErrInvalidKeepalive,
			fmt.Sprintf("%d (must be %d-%d)", c.Keepalive, MinKeepalive, MaxKeepalive))
	}
	return nil
}

// ValidDNS reports whether s looks like a dotted-decimal address.
// Only digits and dots are accepted.
func ValidDNS(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// Save saves the configuration to the file.
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return common.WrapError(common.ErrConfigSave, err.Error())
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return common.WrapError(common.ErrConfigSave, err.Error())
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return common.WrapError(common.ErrConfigSave, err.Error())
	}

	return nil
}

func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", common.ConfigDirName, common.ConfigFileName), nil
}
