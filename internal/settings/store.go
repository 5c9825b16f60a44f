// This file persists the settings stream to disk with atomic replacement.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/chummer/pkg/types"
)

// DefaultFileName is the settings file name inside the config directory.
const DefaultFileName = "settings.jsonl"

// Store reads and writes the settings file at Path.
type Store struct {
	Path  string
	codec *Codec
}

// NewStore returns a store for path using codec (a default codec when nil).
func NewStore(path string, codec *Codec) *Store {
	if codec == nil {
		codec = NewCodec(nil)
	}
	return &Store{Path: path, codec: codec}
}

// Exists reports whether the settings file is present.
func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.Path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Load reads the settings file. A missing file returns found=false and no
// error; any other failure is returned as is or as a *types.StreamError.
func (s *Store) Load() (settings types.Settings, found bool, err error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.Settings{}, false, nil
		}
		return types.Settings{}, false, err
	}
	defer f.Close()

	settings, err = s.codec.Deserialize(f)
	if err != nil {
		return types.Settings{}, true, fmt.Errorf("loading %s: %w", s.Path, err)
	}
	return settings, true, nil
}

// Save atomically replaces the settings file using the temp-file, fsync,
// rename pattern. The parent directory is created when missing.
func (s *Store) Save(settings types.Settings) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := s.codec.Serialize(settings, tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Update loads the current settings (defaults when absent), applies opts
// and saves the result.
func (s *Store) Update(opts ...types.Option) (types.Settings, error) {
	cur, found, err := s.Load()
	if err != nil {
		return types.Settings{}, err
	}
	if !found {
		cur = types.DefaultSettings()
	}
	next := cur.With(opts...)
	if err := s.Save(next); err != nil {
		return types.Settings{}, err
	}
	return next, nil
}

// Source says where Bootstrap found the settings it returned.
type Source string

// Bootstrap outcomes.
const (
	SourceFile    Source = "file"
	SourceLegacy  Source = "legacy"
	SourceDefault Source = "default"
)

// LegacyImporter produces settings from a pre-migration store. found is
// false when no legacy data exists; that is not an error.
type LegacyImporter interface {
	LoadLegacySettings() (settings types.Settings, found bool, err error)
}

// Bootstrap returns the settings to start the application with. An
// existing settings file wins. Otherwise the legacy importer runs once and
// its result, or DefaultSettings when it finds nothing, is saved so later
// starts never consult the legacy store again. importer may be nil.
func Bootstrap(store *Store, importer LegacyImporter, logger *slog.Logger) (types.Settings, Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	settings, found, err := store.Load()
	if err != nil {
		return types.Settings{}, "", err
	}
	if found {
		return settings, SourceFile, nil
	}

	source := SourceDefault
	settings = types.DefaultSettings()
	if importer != nil {
		legacy, ok, err := importer.LoadLegacySettings()
		if err != nil {
			return types.Settings{}, "", fmt.Errorf("importing legacy settings: %w", err)
		}
		if ok {
			settings, source = legacy, SourceLegacy
		}
	}

	if err := store.Save(settings); err != nil {
		return types.Settings{}, "", fmt.Errorf("saving migrated settings: %w", err)
	}
	logger.Info("settings initialized", "source", string(source), "path", store.Path,
		"custom_data_directories", len(settings.CustomData.Directories))
	return settings, source, nil
}
