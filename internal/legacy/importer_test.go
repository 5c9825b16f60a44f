// Tests for importing settings from the legacy key/value store, run
// against both the in-memory and the SQLite backend.
package legacy

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/chummer/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// legacyEntries is a store as an older release would have left it,
// including values that cannot be parsed.
var legacyEntries = []Entry{
	{SubKey: "", Name: "language", Value: "de-de"},
	{SubKey: "", Name: "confirmdelete", Value: "False"},
	{SubKey: "", Name: "autoupdate", Value: "1"},
	{SubKey: "", Name: "lifemodule", Value: "yes"},
	{SubKey: "", Name: "colormode", Value: "Dark"},
	{SubKey: "", Name: "savedimagequality", Value: "abc"},
	{SubKey: "", Name: "pdfapppath", Value: `C:\Tools\reader.exe`},
	{SubKey: "", Name: "unknownsetting", Value: "ignored"},

	{SubKey: `Sourcebook\SR5`, Name: "path", Value: "/b/core.pdf"},
	{SubKey: `Sourcebook\SR5`, Name: "offset", Value: "2"},
	{SubKey: `Sourcebook\RG`, Name: "path", Value: "/b/rg.pdf"},
	{SubKey: `Sourcebook\RG`, Name: "offset", Value: "x"},
	{SubKey: `Sourcebook\KC`, Name: "offset", Value: "1"},

	{SubKey: `CustomData\beta`, Name: "path", Value: "/d/beta"},
	{SubKey: `CustomData\beta`, Name: "order", Value: "2"},
	{SubKey: `CustomData\beta`, Name: "enabled", Value: "False"},
	{SubKey: `CustomData\alpha`, Name: "path", Value: "/d/alpha"},
	{SubKey: `CustomData\alpha`, Name: "order", Value: "1"},
	{SubKey: `CustomData\zeta`, Name: "path", Value: "/d/zeta"},
	{SubKey: `CustomData\gamma`, Name: "path", Value: "/d/gamma"},
	{SubKey: `CustomData\nopath`, Name: "enabled", Value: "True"},
}

// backends builds every LegacyStoreReader implementation seeded with entries.
var backends = map[string]func(t *testing.T, entries []Entry) LegacyStoreReader{
	"map": func(_ *testing.T, entries []Entry) LegacyStoreReader {
		return NewMapStore(entries...)
	},
	"sqlite": func(t *testing.T, entries []Entry) LegacyStoreReader {
		t.Helper()
		path := filepath.Join(t.TempDir(), DefaultSQLiteFileName)
		require.NoError(t, WriteSQLiteStore(path, entries))
		s := NewSQLiteStore(path)
		t.Cleanup(func() { s.Close() })
		return s
	},
}

func TestLoadLegacySettings(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			im := NewImporter(open(t, legacyEntries), quietLogger())

			got, found, err := im.LoadLegacySettings()
			require.NoError(t, err)
			require.True(t, found)

			assert.Equal(t, "de-de", got.Language)
			assert.False(t, got.ConfirmDelete)
			assert.True(t, got.AutomaticUpdate)
			assert.True(t, got.LifeModuleEnabled)
			assert.Equal(t, types.ColorModeDark, got.ColorMode)
			assert.Equal(t, `C:\Tools\reader.exe`, got.PDFAppPath)

			def := types.DefaultSettings()
			assert.Equal(t, def.SavedImageQuality, got.SavedImageQuality, "unparsable value keeps default")
			assert.Equal(t, def.ConfirmKarmaExpense, got.ConfirmKarmaExpense, "missing value keeps default")

			assert.Equal(t, []types.SourcebookInfo{
				{Code: "RG", Path: "/b/rg.pdf", Offset: 0},
				{Code: "SR5", Path: "/b/core.pdf", Offset: 2},
			}, got.Sourcebooks)

			dirs := got.CustomData.Directories
			require.Len(t, dirs, 4)
			var paths []string
			ids := make(map[string]bool)
			for _, d := range dirs {
				paths = append(paths, d.Path)
				require.NotEmpty(t, d.ID)
				assert.False(t, ids[d.ID], "duplicate id %s", d.ID)
				ids[d.ID] = true
			}
			assert.Equal(t, []string{"/d/alpha", "/d/beta", "/d/gamma", "/d/zeta"}, paths)
			assert.Equal(t, "alpha", dirs[0].Name)
			assert.True(t, dirs[0].Enabled)
			assert.False(t, dirs[1].Enabled)
			assert.True(t, dirs[2].Enabled, "enabled defaults to true")
		})
	}
}

func TestLoadLegacySettingsCustomDataOnly(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			store := open(t, []Entry{{SubKey: `CustomData\only`, Name: "path", Value: "/d/only"}})

			got, found, err := NewImporter(store, quietLogger()).LoadLegacySettings()
			require.NoError(t, err)
			require.True(t, found)
			require.Len(t, got.CustomData.Directories, 1)
			assert.Equal(t, "/d/only", got.CustomData.Directories[0].Path)

			want := types.DefaultSettings().With(types.WithCustomDataDirectories(got.CustomData.Directories))
			assert.True(t, want.Equal(got))
		})
	}
}

func TestLoadLegacySettingsNothingToImport(t *testing.T) {
	t.Run("absent map store", func(t *testing.T) {
		_, found, err := NewImporter(AbsentStore(), quietLogger()).LoadLegacySettings()
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("empty map store", func(t *testing.T) {
		_, found, err := NewImporter(NewMapStore(), quietLogger()).LoadLegacySettings()
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("only unknown values", func(t *testing.T) {
		store := NewMapStore(Entry{Name: "somethingelse", Value: "1"})
		_, found, err := NewImporter(store, quietLogger()).LoadLegacySettings()
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("missing sqlite file", func(t *testing.T) {
		store := NewSQLiteStore(filepath.Join(t.TempDir(), "nope.db"))
		defer store.Close()

		_, found, err := NewImporter(store, quietLogger()).LoadLegacySettings()
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("sqlite file without registry table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "other.db")
		db, err := sql.Open("sqlite", path)
		require.NoError(t, err)
		_, err = db.Exec("CREATE TABLE other (x TEXT)")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		store := NewSQLiteStore(path)
		defer store.Close()
		_, found, err := NewImporter(store, quietLogger()).LoadLegacySettings()
		require.NoError(t, err)
		assert.False(t, found)
	})
}

// brokenStore fails every read after reporting that it exists.
type brokenStore struct{ err error }

func (b brokenStore) Exists() (bool, error) { return true, nil }

func (b brokenStore) Value(string, string) (string, bool, error) { return "", false, b.err }

func (b brokenStore) SubKeys(string) ([]string, error) { return nil, b.err }

func (b brokenStore) Close() error { return nil }

func TestLoadLegacySettingsStoreFailure(t *testing.T) {
	accessErr := errors.New("access denied")
	_, found, err := NewImporter(brokenStore{err: accessErr}, quietLogger()).LoadLegacySettings()
	require.ErrorIs(t, err, accessErr)
	assert.False(t, found)
}

func TestSubKeys(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			store := open(t, legacyEntries)

			root, err := store.SubKeys("")
			require.NoError(t, err)
			assert.Equal(t, []string{"CustomData", "Sourcebook"}, root)

			books, err := store.SubKeys(SubKeySourcebook)
			require.NoError(t, err)
			assert.Equal(t, []string{"KC", "RG", "SR5"}, books)

			leaf, err := store.SubKeys(JoinKey(SubKeySourcebook, "SR5"))
			require.NoError(t, err)
			assert.Empty(t, leaf)
		})
	}
}

func TestJoinKey(t *testing.T) {
	assert.Equal(t, `CustomData\alpha`, JoinKey(SubKeyCustomData, "alpha"))
	assert.Equal(t, `Sourcebook`, JoinKey("", SubKeySourcebook, ""))
	assert.Equal(t, "", JoinKey())

	parts := []string{"", "a"}
	JoinKey(parts...)
	assert.Equal(t, []string{"", "a"}, parts, "arguments are not modified")
}

func TestLoadLegacySettingsLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "de-de", want: "de-de"},
		{in: "FR-fr", want: "fr-fr"},
		{in: " ja-JP ", want: "ja-jp"},
		{in: "not a language!", want: types.DefaultSettings().Language},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			store := NewMapStore(Entry{Name: "language", Value: tt.in})
			got, found, err := NewImporter(store, quietLogger()).LoadLegacySettings()
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, tt.want, got.Language)
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{in: "True", want: true},
		{in: "false", want: false},
		{in: " 1 ", want: true},
		{in: "0", want: false},
		{in: "YES", want: true},
		{in: "no", want: false},
		{in: "maybe", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBool(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
