// JSON record structures for the settings stream.
// One record per line; the "kind" field selects the structure.
package settings

import "github.com/mesh-intelligence/chummer/pkg/types"

// Stream identity and the newest version this package writes.
const (
	formatName    = "chummer-settings"
	formatVersion = 1
)

// Record kinds.
const (
	kindHeader     = "header"
	kindSettings   = "settings"
	kindSourcebook = "sourcebook"
	kindCustomData = "customdata"
	kindEnd        = "end"
)

// kindJSON is decoded first from every line to pick the record structure.
type kindJSON struct {
	Kind string `json:"kind"`
}

// headerJSON opens the stream.
type headerJSON struct {
	Kind    string `json:"kind"`
	Format  string `json:"format"`
	Version int    `json:"version"`
}

// settingsJSON carries every scalar field. Fields are never omitted so that
// zero values survive a round trip against a non-zero default.
type settingsJSON struct {
	Kind                    string `json:"kind"`
	Language                string `json:"language"`
	StartupFullscreen       bool   `json:"startup_fullscreen"`
	AutomaticUpdate         bool   `json:"automatic_update"`
	PreferNightlyBuilds     bool   `json:"prefer_nightly_builds"`
	LifeModuleEnabled       bool   `json:"life_module_enabled"`
	HideMasterIndex         bool   `json:"hide_master_index"`
	HideCharacterRoster     bool   `json:"hide_character_roster"`
	CreateBackupOnCareer    bool   `json:"create_backup_on_career"`
	ConfirmDelete           bool   `json:"confirm_delete"`
	ConfirmKarmaExpense     bool   `json:"confirm_karma_expense"`
	PrintToFileFirst        bool   `json:"print_to_file_first"`
	DatesIncludeTime        bool   `json:"dates_include_time"`
	CustomDateTimeFormats   bool   `json:"custom_date_time_formats"`
	CustomDateFormat        string `json:"custom_date_format"`
	CustomTimeFormat        string `json:"custom_time_format"`
	PDFAppPath              string `json:"pdf_app_path"`
	PDFParameters           string `json:"pdf_parameters"`
	CharacterRosterPath     string `json:"character_roster_path"`
	DefaultCharacterSetting string `json:"default_character_setting"`
	SavedImageQuality       int    `json:"saved_image_quality"`
	ColorMode               string `json:"color_mode"`
}

// sourcebookJSON is one entry of Settings.Sourcebooks.
type sourcebookJSON struct {
	Kind   string `json:"kind"`
	Code   string `json:"code"`
	Path   string `json:"path"`
	Offset int    `json:"offset"`
}

// customDataJSON is one entry of Settings.CustomData.Directories.
type customDataJSON struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	Enabled bool   `json:"enabled"`
}

// endJSON closes the stream. Records counts every line between the header
// and the trailer, including kinds this version does not understand.
type endJSON struct {
	Kind    string `json:"kind"`
	Records int    `json:"records"`
}

func toSettingsJSON(s types.Settings) settingsJSON {
	return settingsJSON{
		Kind:                    kindSettings,
		Language:                s.Language,
		StartupFullscreen:       s.StartupFullscreen,
		AutomaticUpdate:         s.AutomaticUpdate,
		PreferNightlyBuilds:     s.PreferNightlyBuilds,
		LifeModuleEnabled:       s.LifeModuleEnabled,
		HideMasterIndex:         s.HideMasterIndex,
		HideCharacterRoster:     s.HideCharacterRoster,
		CreateBackupOnCareer:    s.CreateBackupOnCareer,
		ConfirmDelete:           s.ConfirmDelete,
		ConfirmKarmaExpense:     s.ConfirmKarmaExpense,
		PrintToFileFirst:        s.PrintToFileFirst,
		DatesIncludeTime:        s.DatesIncludeTime,
		CustomDateTimeFormats:   s.CustomDateTimeFormats,
		CustomDateFormat:        s.CustomDateFormat,
		CustomTimeFormat:        s.CustomTimeFormat,
		PDFAppPath:              s.PDFAppPath,
		PDFParameters:           s.PDFParameters,
		CharacterRosterPath:     s.CharacterRosterPath,
		DefaultCharacterSetting: s.DefaultCharacterSetting,
		SavedImageQuality:       s.SavedImageQuality,
		ColorMode:               string(s.ColorMode),
	}
}

// fromSettingsJSON copies scalar fields onto s. Decoding starts from a
// record pre-filled with defaults, so fields missing from older streams keep
// their default values.
func fromSettingsJSON(s *types.Settings, r settingsJSON) error {
	mode, err := types.ParseColorMode(r.ColorMode)
	if err != nil {
		return err
	}
	s.Language = r.Language
	s.StartupFullscreen = r.StartupFullscreen
	s.AutomaticUpdate = r.AutomaticUpdate
	s.PreferNightlyBuilds = r.PreferNightlyBuilds
	s.LifeModuleEnabled = r.LifeModuleEnabled
	s.HideMasterIndex = r.HideMasterIndex
	s.HideCharacterRoster = r.HideCharacterRoster
	s.CreateBackupOnCareer = r.CreateBackupOnCareer
	s.ConfirmDelete = r.ConfirmDelete
	s.ConfirmKarmaExpense = r.ConfirmKarmaExpense
	s.PrintToFileFirst = r.PrintToFileFirst
	s.DatesIncludeTime = r.DatesIncludeTime
	s.CustomDateTimeFormats = r.CustomDateTimeFormats
	s.CustomDateFormat = r.CustomDateFormat
	s.CustomTimeFormat = r.CustomTimeFormat
	s.PDFAppPath = r.PDFAppPath
	s.PDFParameters = r.PDFParameters
	s.CharacterRosterPath = r.CharacterRosterPath
	s.DefaultCharacterSetting = r.DefaultCharacterSetting
	s.SavedImageQuality = r.SavedImageQuality
	s.ColorMode = mode
	return nil
}
