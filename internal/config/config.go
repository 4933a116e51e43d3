// Package config loads CLI-facing defaults for the lpdump/lpmake tools,
// following the same viper config-file-plus-env-prefix-plus-defaults
// pattern as go-apfs's internal/disk.LoadDMGConfig.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the defaults the CLI tools fall back to when a flag isn't
// supplied explicitly.
type Config struct {
	// DefaultMetadataMaxSize is the metadata_max_size used by lpmake when
	// the caller doesn't specify one.
	DefaultMetadataMaxSize uint32 `mapstructure:"default_metadata_max_size"`

	// DefaultSlotCount is the metadata_slot_count used by lpmake when the
	// caller doesn't specify one.
	DefaultSlotCount uint32 `mapstructure:"default_slot_count"`

	// DefaultAlignment is a block device alignment, in bytes, loaded with
	// the other defaults. lpmake does not read it: editor.New always sets
	// the block device alignment to 4096.
	DefaultAlignment uint32 `mapstructure:"default_alignment"`

	// OutputFormat controls lpdump's default rendering ("table" or
	// "json").
	OutputFormat string `mapstructure:"output_format"`
}

// Load reads lpmeta-config.yaml from the current directory, "./config",
// "$HOME/.lpmeta", or "/etc/lpmeta" (first match wins), falling back to
// built-in defaults for anything unset. Environment variables prefixed
// LPMETA_ override both the file and the defaults.
func Load() (*Config, error) {
	viper.SetConfigName("lpmeta-config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.lpmeta")
	viper.AddConfigPath("/etc/lpmeta")

	viper.SetDefault("default_metadata_max_size", 65536)
	viper.SetDefault("default_slot_count", 2)
	viper.SetDefault("default_alignment", 4096)
	viper.SetDefault("output_format", "table")

	viper.SetEnvPrefix("LPMETA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}
