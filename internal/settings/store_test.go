// Tests for the settings file store and first-run bootstrap.
package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/chummer/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "config", DefaultFileName), testCodec())
}

// stubImporter records calls and returns a fixed result.
type stubImporter struct {
	settings types.Settings
	found    bool
	err      error
	calls    int
}

func (s *stubImporter) LoadLegacySettings() (types.Settings, bool, error) {
	s.calls++
	return s.settings, s.found, s.err
}

func TestStoreLoadMissingFile(t *testing.T) {
	st := newTestStore(t)

	exists, err := st.Exists()
	require.NoError(t, err)
	assert.False(t, exists)

	_, found, err := st.Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreSaveAndLoad(t *testing.T) {
	st := newTestStore(t)
	in := populated()

	require.NoError(t, st.Save(in))

	got, found, err := st.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, in.Equal(got), settingsDiff(in, got))

	// The file holds exactly what the codec produces in memory.
	onDisk, err := os.ReadFile(st.Path)
	require.NoError(t, err)
	inMemory, err := testCodec().Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, inMemory, onDisk)

	entries, err := os.ReadDir(filepath.Dir(st.Path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, DefaultFileName, entries[0].Name())
}

func TestStoreSaveReplacesExistingFile(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Save(populated()))
	require.NoError(t, st.Save(types.DefaultSettings()))

	got, _, err := st.Load()
	require.NoError(t, err)
	assert.True(t, types.DefaultSettings().Equal(got))
}

func TestStoreLoadCorruptFile(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(st.Path), 0o755))
	require.NoError(t, os.WriteFile(st.Path, []byte(`{"kind":"header","format":"chummer-settings","version":1}`+"\n"), 0o644))

	_, found, err := st.Load()
	assert.True(t, found)
	assert.ErrorIs(t, err, types.ErrMalformedStream)
}

func TestStoreUpdate(t *testing.T) {
	st := newTestStore(t)

	got, err := st.Update(types.WithLanguage("ja-jp"))
	require.NoError(t, err)
	assert.Equal(t, "ja-jp", got.Language)
	assert.True(t, got.ConfirmDelete, "update starts from defaults when no file exists")

	dir := types.CustomDataDirectory{ID: "d1", Name: "extra", Path: "/data/extra", Enabled: true}
	_, err = st.Update(types.WithCustomDataDirectory(dir))
	require.NoError(t, err)

	loaded, _, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "ja-jp", loaded.Language)
	assert.Equal(t, []types.CustomDataDirectory{dir}, loaded.CustomData.Directories)
}

func TestBootstrap(t *testing.T) {
	legacySettings := types.DefaultSettings().With(
		types.WithLanguage("fr-fr"),
		types.WithCustomDataDirectory(types.CustomDataDirectory{ID: "x", Name: "x", Path: "/x", Enabled: true}),
	)

	t.Run("existing file wins over legacy store", func(t *testing.T) {
		st := newTestStore(t)
		require.NoError(t, st.Save(populated()))
		imp := &stubImporter{settings: legacySettings, found: true}

		got, source, err := Bootstrap(st, imp, quietLogger())
		require.NoError(t, err)
		assert.Equal(t, SourceFile, source)
		assert.Equal(t, "de-de", got.Language)
		assert.Zero(t, imp.calls, "legacy store must not be consulted once migrated")
	})

	t.Run("legacy settings are migrated and saved", func(t *testing.T) {
		st := newTestStore(t)
		imp := &stubImporter{settings: legacySettings, found: true}

		got, source, err := Bootstrap(st, imp, quietLogger())
		require.NoError(t, err)
		assert.Equal(t, SourceLegacy, source)
		assert.True(t, legacySettings.Equal(got))

		again, source, err := Bootstrap(st, imp, quietLogger())
		require.NoError(t, err)
		assert.Equal(t, SourceFile, source)
		assert.True(t, legacySettings.Equal(again))
		assert.Equal(t, 1, imp.calls)
	})

	t.Run("defaults when legacy store is absent", func(t *testing.T) {
		st := newTestStore(t)
		got, source, err := Bootstrap(st, &stubImporter{}, quietLogger())
		require.NoError(t, err)
		assert.Equal(t, SourceDefault, source)
		assert.True(t, types.DefaultSettings().Equal(got))

		exists, err := st.Exists()
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("nil importer", func(t *testing.T) {
		_, source, err := Bootstrap(newTestStore(t), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, SourceDefault, source)
	})

	t.Run("importer failure is returned and nothing is saved", func(t *testing.T) {
		st := newTestStore(t)
		storeErr := errors.New("access denied")

		_, _, err := Bootstrap(st, &stubImporter{err: storeErr}, quietLogger())
		require.ErrorIs(t, err, storeErr)

		exists, err := st.Exists()
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("corrupt settings file is reported, not replaced", func(t *testing.T) {
		st := newTestStore(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(st.Path), 0o755))
		require.NoError(t, os.WriteFile(st.Path, []byte("garbage\n"), 0o644))

		_, _, err := Bootstrap(st, &stubImporter{found: true, settings: legacySettings}, quietLogger())
		require.ErrorIs(t, err, types.ErrMalformedStream)

		data, err := os.ReadFile(st.Path)
		require.NoError(t, err)
		assert.Equal(t, "garbage\n", string(data))
	})
}
