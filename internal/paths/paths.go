// Package paths resolves configuration and data directory locations.
// Each directory follows the same precedence: command-line flag, then
// config.yaml (data directory only), then environment, then the platform
// default.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppDirName is the directory name used under platform base directories.
const AppDirName = "chummer"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "CHUMMER_CONFIG_DIR"
	EnvDataDir   = "CHUMMER_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/chummer (fallback ~/.config/chummer)
// macOS:   ~/Library/Application Support/chummer
// Windows: %APPDATA%/chummer
func DefaultConfigDir() (string, error) {
	return platformPath("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific default data directory. The
// legacy store file lives here on platforms without a registry.
//
// Linux:   $XDG_DATA_HOME/chummer (fallback ~/.local/share/chummer)
// macOS:   ~/Library/Application Support/chummer
// Windows: %APPDATA%/chummer
func DefaultDataDir() (string, error) {
	return platformPath("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func platformPath(xdgEnv, homeRel string) (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv(xdgEnv); xdg != "" {
			return filepath.Join(xdg, AppDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, homeRel, AppDirName), nil
	}
	// os.UserConfigDir is ~/Library/Application Support on macOS and
	// %APPDATA% on Windows.
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppDirName), nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > CHUMMER_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > CHUMMER_DATA_DIR env > DefaultDataDir().
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultDataDir()
}

// ResolveFile returns name unchanged when it is absolute, otherwise joined
// to dir. An empty name yields dir/fallback.
func ResolveFile(dir, name, fallback string) string {
	if name == "" {
		name = fallback
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
