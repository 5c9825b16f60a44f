// Package chummer is the public API for settings persistence and
// character loading. It wires the internal codec, stores and loader
// together while keeping their implementations internal.
//
// Example:
//
//	env := chummer.Environment{
//	    SettingsPath: filepath.Join(configDir, chummer.SettingsFileName),
//	    DataDir:      dataDir,
//	}
//	s, source, err := chummer.BootstrapSettings(env)
package chummer

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/chummer/internal/chum5"
	"github.com/mesh-intelligence/chummer/internal/legacy"
	"github.com/mesh-intelligence/chummer/internal/settings"
	"github.com/mesh-intelligence/chummer/pkg/types"
)

// Version is the release version of the module.
const Version = "0.3.0"

// SettingsFileName is the default settings file inside the config directory.
const SettingsFileName = settings.DefaultFileName

// Character loading.
type (
	Loader            = chum5.Loader
	LoaderOptions     = chum5.Options
	BatchOptions      = chum5.BatchOptions
	CompatibilityMode = chum5.CompatibilityMode
)

// Compatibility modes.
const (
	CompatLegacy = chum5.CompatLegacy
	CompatStrict = chum5.CompatStrict
)

// NewLoader creates a character loader.
func NewLoader(opts LoaderOptions) *Loader {
	return chum5.NewLoader(opts)
}

// ParseCompatibilityMode parses "legacy" or "strict".
func ParseCompatibilityMode(s string) (CompatibilityMode, error) {
	return chum5.ParseCompatibilityMode(s)
}

// Settings persistence.
type (
	SettingsStore  = settings.Store
	SettingsSource = settings.Source
)

// Where BootstrapSettings found its result.
const (
	SourceFile    = settings.SourceFile
	SourceLegacy  = settings.SourceLegacy
	SourceDefault = settings.SourceDefault
)

// Environment locates the settings file and the legacy store.
type Environment struct {
	// SettingsPath is the settings stream file.
	SettingsPath string

	// DataDir holds the legacy store file on platforms without a registry.
	DataDir string

	// LegacyPath overrides the legacy store with a SQLite file on every
	// platform. Empty selects the platform store.
	LegacyPath string

	Logger *slog.Logger
}

func (e Environment) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// NewSettingsStore returns the settings store for env.
func NewSettingsStore(env Environment) *SettingsStore {
	return settings.NewStore(env.SettingsPath, settings.NewCodec(env.logger()))
}

// OpenLegacyStore returns the legacy store for env. The caller closes it.
func OpenLegacyStore(env Environment) legacy.LegacyStoreReader {
	if env.LegacyPath != "" {
		return legacy.NewSQLiteStore(env.LegacyPath)
	}
	return legacy.OpenPlatformStore(env.DataDir)
}

// BootstrapSettings returns the settings to start with, migrating from the
// legacy store on first run.
func BootstrapSettings(env Environment) (types.Settings, SettingsSource, error) {
	return bootstrapFrom(env, OpenLegacyStore(env))
}

// bootstrapFrom runs the first-run migration against store and closes it.
func bootstrapFrom(env Environment, store legacy.LegacyStoreReader) (s types.Settings, source SettingsSource, err error) {
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing legacy store: %w", cerr)
		}
	}()
	return settings.Bootstrap(NewSettingsStore(env), legacy.NewImporter(store, env.logger()), env.logger())
}

// ImportLegacySettings reads the legacy store without touching the
// settings file. found is false when there is nothing to import.
func ImportLegacySettings(env Environment) (s types.Settings, found bool, err error) {
	store := OpenLegacyStore(env)
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing legacy store: %w", cerr)
		}
	}()
	return legacy.NewImporter(store, env.logger()).LoadLegacySettings()
}
