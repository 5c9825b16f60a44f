package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "en-us", s.Language)
	assert.True(t, s.ConfirmDelete)
	assert.True(t, s.ConfirmKarmaExpense)
	assert.True(t, s.DatesIncludeTime)
	assert.False(t, s.AutomaticUpdate)
	assert.Equal(t, DefaultCharacterSettingID, s.DefaultCharacterSetting)
	assert.Equal(t, -1, s.SavedImageQuality)
	assert.Equal(t, ColorModeAutomatic, s.ColorMode)
	assert.Empty(t, s.Sourcebooks)
	assert.Empty(t, s.CustomData.Directories)

	assert.True(t, s.Equal(DefaultSettings()), "defaults are stable across calls")
}

func TestSettingsWithLeavesReceiverUnchanged(t *testing.T) {
	base := DefaultSettings().With(
		WithCustomDataDirectory(CustomDataDirectory{ID: "a", Path: "/a", Enabled: true}),
	)
	before := base.Clone()

	next := base.With(
		WithLanguage("de-de"),
		WithCustomDataDirectoryEnabled("a", false),
		WithCustomDataDirectory(CustomDataDirectory{ID: "b", Path: "/b"}),
	)

	assert.True(t, base.Equal(before), "receiver must not change")
	assert.Equal(t, "de-de", next.Language)
	require.Len(t, next.CustomData.Directories, 2)
	assert.False(t, next.CustomData.Directories[0].Enabled)
	assert.True(t, base.CustomData.Directories[0].Enabled)
}

func TestWithCustomDataDirectoriesCopiesInput(t *testing.T) {
	dirs := []CustomDataDirectory{{ID: "a", Path: "/a"}}
	opt := WithCustomDataDirectories(dirs)

	first := DefaultSettings().With(opt)
	dirs[0].Path = "/changed"
	second := DefaultSettings().With(opt, WithCustomDataDirectoryEnabled("a", true))

	assert.Equal(t, "/a", first.CustomData.Directories[0].Path)
	assert.False(t, first.CustomData.Directories[0].Enabled)
	assert.True(t, second.CustomData.Directories[0].Enabled)
}

func TestWithoutCustomDataDirectory(t *testing.T) {
	s := DefaultSettings().With(
		WithCustomDataDirectory(CustomDataDirectory{ID: "a", Path: "/shared"}),
		WithCustomDataDirectory(CustomDataDirectory{ID: "b", Path: "/shared"}),
		WithCustomDataDirectory(CustomDataDirectory{ID: "c", Path: "/other"}),
	)

	got := s.With(WithoutCustomDataDirectory("b"))
	require.Len(t, got.CustomData.Directories, 2)
	assert.Equal(t, "a", got.CustomData.Directories[0].ID)
	assert.Equal(t, "c", got.CustomData.Directories[1].ID)
	assert.Len(t, s.CustomData.Directories, 3)
}

func TestWithSourcebookReplacesByCode(t *testing.T) {
	s := DefaultSettings().With(
		WithSourcebook(SourcebookInfo{Code: "SR5", Path: "/old.pdf"}),
		WithSourcebook(SourcebookInfo{Code: "RG", Path: "/rg.pdf"}),
		WithSourcebook(SourcebookInfo{Code: "SR5", Path: "/new.pdf", Offset: 3}),
	)
	assert.Equal(t, []SourcebookInfo{
		{Code: "SR5", Path: "/new.pdf", Offset: 3},
		{Code: "RG", Path: "/rg.pdf"},
	}, s.Sourcebooks)
}

func TestSettingsEqual(t *testing.T) {
	a := DefaultSettings()
	b := DefaultSettings()
	b.Sourcebooks = []SourcebookInfo{}
	assert.True(t, a.Equal(b), "nil and empty lists are equal")

	c := a.With(WithColorMode(ColorModeDark))
	assert.False(t, a.Equal(c))

	d := a.With(WithCustomDataDirectory(CustomDataDirectory{ID: "x"}))
	assert.False(t, a.Equal(d))
}

func TestCustomDataLookups(t *testing.T) {
	s := DefaultSettings().With(
		WithCustomDataDirectory(CustomDataDirectory{ID: "a", Path: "/a", Enabled: true}),
		WithCustomDataDirectory(CustomDataDirectory{ID: "b", Path: "/b", Enabled: false}),
		WithCustomDataDirectory(CustomDataDirectory{ID: "c", Path: "/c", Enabled: true}),
	)

	enabled := s.EnabledCustomDataDirectories()
	require.Len(t, enabled, 2)
	assert.Equal(t, "a", enabled[0].ID)
	assert.Equal(t, "c", enabled[1].ID)

	d, ok := s.CustomDataDirectory("b")
	require.True(t, ok)
	assert.Equal(t, "/b", d.Path)

	d, ok = s.CustomDataDirectory("/c")
	require.True(t, ok)
	assert.Equal(t, "c", d.ID)

	_, ok = s.CustomDataDirectory("missing")
	assert.False(t, ok)
}

func TestNewCustomDataDirectory(t *testing.T) {
	a := NewCustomDataDirectory("/data/overlays/house-rules/")
	b := NewCustomDataDirectory("/data/overlays/house-rules/")

	assert.Equal(t, "house-rules", a.Name)
	assert.True(t, a.Enabled)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestWithColorModeCanonicalizes(t *testing.T) {
	assert.Equal(t, ColorModeDark, DefaultSettings().With(WithColorMode("Dark")).ColorMode)
	assert.Equal(t, ColorModeLight, DefaultSettings().With(WithColorMode(" LIGHT ")).ColorMode)
	assert.Equal(t, ColorMode("sepia"), DefaultSettings().With(WithColorMode("sepia")).ColorMode,
		"unknown modes are kept for the codec to reject")
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{in: "automatic", want: ColorModeAutomatic},
		{in: "Light", want: ColorModeLight},
		{in: " DARK ", want: ColorModeDark},
		{in: "", wantErr: true},
		{in: "sepia", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColorMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidColorMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
