// Package config loads the aot tool settings from .aot.yml and AOT_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/aotfits/aot/internal/logger"
	"github.com/aotfits/aot/internal/schema"
)

// FileName is the optional per-directory configuration file.
const FileName = ".aot.yml"

// EnvPrefix prefixes environment overrides, e.g. AOT_VALIDATION_POLICY.
const EnvPrefix = "AOT"

// Configuration keys
const (
	KeyPolicy   = "validation.policy"
	KeyColor    = "output.color"
	KeyFormat   = "output.format"
	KeyLogLevel = "log.level"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Output formats
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Config holds the resolved settings
type Config struct {
	Policy   schema.Policy
	Color    string
	Format   string
	LogLevel logger.Level

	// File is the configuration file that was read, empty when defaults and
	// the environment were used alone.
	File string
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Policy:   schema.FailFast,
		Color:    ColorAuto,
		Format:   FormatText,
		LogLevel: logger.LevelInfo,
	}
}

// Load reads .aot.yml from dir if it exists. Environment variables override
// the file.
func Load(dir string) (*Config, error) {
	v := newViper()
	v.SetConfigName(strings.TrimSuffix(FileName, ".yml"))
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
		}
	}

	return decode(v)
}

// LoadFile reads an explicit configuration file, which must exist.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	d := Default()

	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault(KeyPolicy, d.Policy.String())
	v.SetDefault(KeyColor, d.Color)
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyLogLevel, d.LogLevel.String())

	// Enable environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{File: v.ConfigFileUsed()}

	policy, err := schema.ParsePolicy(v.GetString(KeyPolicy))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyPolicy, err)
	}
	cfg.Policy = policy

	level, err := logger.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	cfg.LogLevel = level

	cfg.Color = strings.ToLower(v.GetString(KeyColor))
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return nil, fmt.Errorf("%s: unsupported color mode '%s' (supported: auto, always, never)", KeyColor, cfg.Color)
	}

	cfg.Format = strings.ToLower(v.GetString(KeyFormat))
	switch cfg.Format {
	case FormatText, FormatYAML:
	default:
		return nil, fmt.Errorf("%s: unsupported output format '%s' (supported: text, yaml)", KeyFormat, cfg.Format)
	}

	return cfg, nil
}
