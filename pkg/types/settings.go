package types

import (
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ColorMode selects the application color scheme.
type ColorMode string

// Supported color modes.
const (
	ColorModeAutomatic ColorMode = "automatic"
	ColorModeLight     ColorMode = "light"
	ColorModeDark      ColorMode = "dark"
)

// ParseColorMode accepts a color mode name case-insensitively.
// Returns ErrInvalidColorMode for anything else.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ColorModeAutomatic, ColorModeLight, ColorModeDark:
		return m, nil
	}
	return "", ErrInvalidColorMode
}

// DefaultCharacterSettingID is the built-in "Standard" character option set.
const DefaultCharacterSettingID = "223a11ff-80e0-428b-89a9-6ef1c243b8b6"

// SourcebookInfo points a sourcebook code at a local PDF.
type SourcebookInfo struct {
	Code   string `json:"code" yaml:"code"`
	Path   string `json:"path" yaml:"path"`
	Offset int    `json:"offset" yaml:"offset"`
}

// CustomDataDirectory is one user-supplied data overlay.
type CustomDataDirectory struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path" yaml:"path"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// NewCustomDataDirectory returns an enabled overlay entry for path with a
// fresh identity. The name is the last path element.
func NewCustomDataDirectory(path string) CustomDataDirectory {
	return CustomDataDirectory{
		ID:      NewID(),
		Name:    filepath.Base(filepath.Clean(path)),
		Path:    path,
		Enabled: true,
	}
}

// CustomDataSettings holds the ordered overlay list. Later entries take
// precedence over earlier ones when they define the same data.
type CustomDataSettings struct {
	Directories []CustomDataDirectory `json:"directories" yaml:"directories"`
}

// Settings is the global application configuration. Treat values as
// immutable: derive changed copies with With.
type Settings struct {
	Language                string             `json:"language" yaml:"language"`
	StartupFullscreen       bool               `json:"startup_fullscreen" yaml:"startup_fullscreen"`
	AutomaticUpdate         bool               `json:"automatic_update" yaml:"automatic_update"`
	PreferNightlyBuilds     bool               `json:"prefer_nightly_builds" yaml:"prefer_nightly_builds"`
	LifeModuleEnabled       bool               `json:"life_module_enabled" yaml:"life_module_enabled"`
	HideMasterIndex         bool               `json:"hide_master_index" yaml:"hide_master_index"`
	HideCharacterRoster     bool               `json:"hide_character_roster" yaml:"hide_character_roster"`
	CreateBackupOnCareer    bool               `json:"create_backup_on_career" yaml:"create_backup_on_career"`
	ConfirmDelete           bool               `json:"confirm_delete" yaml:"confirm_delete"`
	ConfirmKarmaExpense     bool               `json:"confirm_karma_expense" yaml:"confirm_karma_expense"`
	PrintToFileFirst        bool               `json:"print_to_file_first" yaml:"print_to_file_first"`
	DatesIncludeTime        bool               `json:"dates_include_time" yaml:"dates_include_time"`
	CustomDateTimeFormats   bool               `json:"custom_date_time_formats" yaml:"custom_date_time_formats"`
	CustomDateFormat        string             `json:"custom_date_format" yaml:"custom_date_format"`
	CustomTimeFormat        string             `json:"custom_time_format" yaml:"custom_time_format"`
	PDFAppPath              string             `json:"pdf_app_path" yaml:"pdf_app_path"`
	PDFParameters           string             `json:"pdf_parameters" yaml:"pdf_parameters"`
	CharacterRosterPath     string             `json:"character_roster_path" yaml:"character_roster_path"`
	DefaultCharacterSetting string             `json:"default_character_setting" yaml:"default_character_setting"`
	SavedImageQuality       int                `json:"saved_image_quality" yaml:"saved_image_quality"`
	ColorMode               ColorMode          `json:"color_mode" yaml:"color_mode"`
	Sourcebooks             []SourcebookInfo   `json:"sourcebooks" yaml:"sourcebooks"`
	CustomData              CustomDataSettings `json:"custom_data" yaml:"custom_data"`
}

// DefaultSettings returns the baseline configuration used when nothing has
// been persisted yet. Each call returns an independent value.
func DefaultSettings() Settings {
	return Settings{
		Language:                "en-us",
		AutomaticUpdate:         false,
		ConfirmDelete:           true,
		ConfirmKarmaExpense:     true,
		DatesIncludeTime:        true,
		CustomDateFormat:        "yyyy-MM-dd",
		CustomTimeFormat:        "HH:mm",
		PDFParameters:           `/A "page={0}"`,
		DefaultCharacterSetting: DefaultCharacterSettingID,
		SavedImageQuality:       -1,
		ColorMode:               ColorModeAutomatic,
	}
}

// Option overrides fields on a copy of Settings.
type Option func(*Settings)

// With returns a deep copy of s with opts applied in order. s is not modified.
func (s Settings) With(opts ...Option) Settings {
	c := s.Clone()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Clone returns a copy of s that shares no slices with it.
func (s Settings) Clone() Settings {
	c := s
	c.Sourcebooks = slices.Clone(s.Sourcebooks)
	c.CustomData.Directories = slices.Clone(s.CustomData.Directories)
	return c
}

// Equal reports field-wise equality. Nil and empty lists compare equal.
func (s Settings) Equal(o Settings) bool {
	if !slices.Equal(s.Sourcebooks, o.Sourcebooks) {
		return false
	}
	if !slices.Equal(s.CustomData.Directories, o.CustomData.Directories) {
		return false
	}
	s.Sourcebooks, o.Sourcebooks = nil, nil
	s.CustomData.Directories, o.CustomData.Directories = nil, nil
	return reflect.DeepEqual(s, o)
}

// EnabledCustomDataDirectories returns the enabled overlays in precedence order.
func (s Settings) EnabledCustomDataDirectories() []CustomDataDirectory {
	var out []CustomDataDirectory
	for _, d := range s.CustomData.Directories {
		if d.Enabled {
			out = append(out, d)
		}
	}
	return out
}

// CustomDataDirectory finds an overlay by ID or, failing that, by path.
func (s Settings) CustomDataDirectory(idOrPath string) (CustomDataDirectory, bool) {
	for _, d := range s.CustomData.Directories {
		if d.ID == idOrPath {
			return d, true
		}
	}
	for _, d := range s.CustomData.Directories {
		if d.Path == idOrPath {
			return d, true
		}
	}
	return CustomDataDirectory{}, false
}

// WithLanguage sets the UI language code.
func WithLanguage(lang string) Option {
	return func(s *Settings) { s.Language = lang }
}

// WithColorMode sets the color scheme. Known modes are stored in their
// canonical lower-case spelling; unknown text is stored as given and
// rejected when the settings are serialized.
func WithColorMode(m ColorMode) Option {
	if canonical, err := ParseColorMode(string(m)); err == nil {
		m = canonical
	}
	return func(s *Settings) { s.ColorMode = m }
}

// WithCustomDataDirectories replaces the overlay list. dirs is copied.
func WithCustomDataDirectories(dirs []CustomDataDirectory) Option {
	return func(s *Settings) { s.CustomData.Directories = slices.Clone(dirs) }
}

// WithCustomDataDirectory appends an overlay with the highest precedence.
func WithCustomDataDirectory(d CustomDataDirectory) Option {
	return func(s *Settings) { s.CustomData.Directories = append(s.CustomData.Directories, d) }
}

// WithoutCustomDataDirectory removes every overlay with the given ID.
func WithoutCustomDataDirectory(id string) Option {
	return func(s *Settings) {
		s.CustomData.Directories = slices.DeleteFunc(s.CustomData.Directories, func(d CustomDataDirectory) bool {
			return d.ID == id
		})
	}
}

// WithCustomDataDirectoryEnabled toggles the overlay with the given ID.
func WithCustomDataDirectoryEnabled(id string, enabled bool) Option {
	return func(s *Settings) {
		for i := range s.CustomData.Directories {
			if s.CustomData.Directories[i].ID == id {
				s.CustomData.Directories[i].Enabled = enabled
			}
		}
	}
}

// WithSourcebook adds or replaces the PDF mapping for a sourcebook code.
func WithSourcebook(b SourcebookInfo) Option {
	return func(s *Settings) {
		for i := range s.Sourcebooks {
			if s.Sourcebooks[i].Code == b.Code {
				s.Sourcebooks[i] = b
				return
			}
		}
		s.Sourcebooks = append(s.Sourcebooks, b)
	}
}

// WithOverride runs fn against the copy. fn must not retain the pointer.
func WithOverride(fn func(*Settings)) Option {
	return fn
}

// NewID generates a UUID v7 identity, falling back to v4.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
