// Config loading for the chummer CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDataDir         = "data_dir"
	cfgKeySettingsFile    = "settings_file"
	cfgKeyLegacyStore     = "legacy_store"
	cfgKeyLogLevel        = "log_level"
	cfgKeyCompatibility   = "compatibility"
	cfgKeyLoadConcurrency = "load_concurrency"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# Chummer CLI configuration

# Settings file, relative to this directory unless absolute.
settings_file: settings.jsonl

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

# Legacy SQLite store to migrate from, relative to the data directory.
# Leave unset to use the platform store (the registry on Windows).
# legacy_store: legacy-registry.db

# debug, info, warn or error
log_level: info

# Character documents written before 5.200.0: "legacy" repairs dangling
# references with a warning, "strict" rejects them.
compatibility: legacy

# Parallel character loads; 0 uses every CPU.
load_concurrency: 0
`

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeySettingsFile, "settings.jsonl")
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetDefault(cfgKeyCompatibility, "legacy")
	v.SetDefault(cfgKeyLoadConcurrency, 0)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
