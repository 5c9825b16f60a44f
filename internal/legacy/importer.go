// This file maps legacy store values onto the Settings model.
package legacy

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/mesh-intelligence/chummer/pkg/types"
)

// Subkeys holding list-valued settings.
const (
	SubKeySourcebook = "Sourcebook"
	SubKeyCustomData = "CustomData"
)

// Value names under sourcebook and custom data subkeys.
const (
	ValuePath    = "path"
	ValueOffset  = "offset"
	ValueEnabled = "enabled"
	ValueOrder   = "order"
)

// field maps one root value onto Settings. set returns an error when the
// stored text cannot be parsed; the default is kept in that case.
type field struct {
	name string
	set  func(s *types.Settings, v string) error
}

func stringField(name string, dst func(*types.Settings) *string) field {
	return field{name: name, set: func(s *types.Settings, v string) error {
		*dst(s) = v
		return nil
	}}
}

func boolField(name string, dst func(*types.Settings) *bool) field {
	return field{name: name, set: func(s *types.Settings, v string) error {
		b, err := ParseBool(v)
		if err != nil {
			return err
		}
		*dst(s) = b
		return nil
	}}
}

func intField(name string, dst func(*types.Settings) *int) field {
	return field{name: name, set: func(s *types.Settings, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*dst(s) = n
		return nil
	}}
}

// languageField accepts any BCP 47 tag and stores it lower-cased, the form
// the language files are named by.
func languageField(name string) field {
	return field{name: name, set: func(s *types.Settings, v string) error {
		tag, err := language.Parse(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		s.Language = strings.ToLower(tag.String())
		return nil
	}}
}

// rootFields lists every root value the importer understands.
var rootFields = []field{
	languageField("language"),
	boolField("startupfullscreen", func(s *types.Settings) *bool { return &s.StartupFullscreen }),
	boolField("autoupdate", func(s *types.Settings) *bool { return &s.AutomaticUpdate }),
	boolField("prefernightlybuilds", func(s *types.Settings) *bool { return &s.PreferNightlyBuilds }),
	boolField("lifemodule", func(s *types.Settings) *bool { return &s.LifeModuleEnabled }),
	boolField("hidemasterindex", func(s *types.Settings) *bool { return &s.HideMasterIndex }),
	boolField("hidecharacterroster", func(s *types.Settings) *bool { return &s.HideCharacterRoster }),
	boolField("createbackuponcareer", func(s *types.Settings) *bool { return &s.CreateBackupOnCareer }),
	boolField("confirmdelete", func(s *types.Settings) *bool { return &s.ConfirmDelete }),
	boolField("confirmkarmaexpense", func(s *types.Settings) *bool { return &s.ConfirmKarmaExpense }),
	boolField("printtofilefirst", func(s *types.Settings) *bool { return &s.PrintToFileFirst }),
	boolField("datesincludetime", func(s *types.Settings) *bool { return &s.DatesIncludeTime }),
	boolField("usecustomdatetime", func(s *types.Settings) *bool { return &s.CustomDateTimeFormats }),
	stringField("customdateformat", func(s *types.Settings) *string { return &s.CustomDateFormat }),
	stringField("customtimeformat", func(s *types.Settings) *string { return &s.CustomTimeFormat }),
	stringField("pdfapppath", func(s *types.Settings) *string { return &s.PDFAppPath }),
	stringField("pdfparameters", func(s *types.Settings) *string { return &s.PDFParameters }),
	stringField("characterrosterpath", func(s *types.Settings) *string { return &s.CharacterRosterPath }),
	stringField("defaultcharactersetting", func(s *types.Settings) *string { return &s.DefaultCharacterSetting }),
	intField("savedimagequality", func(s *types.Settings) *int { return &s.SavedImageQuality }),
	{name: "colormode", set: func(s *types.Settings, v string) error {
		m, err := types.ParseColorMode(v)
		if err != nil {
			return err
		}
		s.ColorMode = m
		return nil
	}},
}

// Importer translates a legacy store into Settings. Translation is one way
// and best effort: missing or unparsable values keep their defaults.
type Importer struct {
	store  LegacyStoreReader
	logger *slog.Logger
}

// NewImporter returns an importer over store. logger may be nil.
func NewImporter(store LegacyStoreReader, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, logger: logger}
}

// LoadLegacySettings reads the legacy store. found is false, with a nil
// error, when the store does not exist or holds nothing this importer
// understands. Errors are store access failures, returned unretried.
func (im *Importer) LoadLegacySettings() (types.Settings, bool, error) {
	exists, err := im.store.Exists()
	if err != nil {
		return types.Settings{}, false, fmt.Errorf("checking legacy store: %w", err)
	}
	if !exists {
		return types.Settings{}, false, nil
	}

	s := types.DefaultSettings()
	seen := 0

	for _, f := range rootFields {
		v, ok, err := im.store.Value("", f.name)
		if err != nil {
			return types.Settings{}, false, err
		}
		if !ok {
			continue
		}
		seen++
		if err := f.set(&s, v); err != nil {
			im.logger.Warn("ignoring unparsable legacy setting", "name", f.name, "value", v, "err", err)
		}
	}

	books, err := im.sourcebooks()
	if err != nil {
		return types.Settings{}, false, err
	}
	dirs, err := im.customData()
	if err != nil {
		return types.Settings{}, false, err
	}
	seen += len(books) + len(dirs)
	if seen == 0 {
		return types.Settings{}, false, nil
	}

	s.Sourcebooks = books
	s.CustomData.Directories = dirs
	im.logger.Info("imported legacy settings", "values", seen,
		"sourcebooks", len(books), "custom_data_directories", len(dirs))
	return s, true, nil
}

func (im *Importer) sourcebooks() ([]types.SourcebookInfo, error) {
	codes, err := im.store.SubKeys(SubKeySourcebook)
	if err != nil {
		return nil, fmt.Errorf("listing legacy sourcebooks: %w", err)
	}
	var books []types.SourcebookInfo
	for _, code := range codes {
		key := JoinKey(SubKeySourcebook, code)
		path, ok, err := im.store.Value(key, ValuePath)
		if err != nil {
			return nil, err
		}
		if !ok || path == "" {
			continue
		}
		b := types.SourcebookInfo{Code: code, Path: path}
		if off, ok, err := im.store.Value(key, ValueOffset); err != nil {
			return nil, err
		} else if ok {
			n, err := strconv.Atoi(strings.TrimSpace(off))
			if err != nil {
				im.logger.Warn("ignoring unparsable sourcebook offset", "code", code, "value", off)
			} else {
				b.Offset = n
			}
		}
		books = append(books, b)
	}
	return books, nil
}

// orderedDirectory pairs an overlay with its legacy sort position.
type orderedDirectory struct {
	key   string
	order int
	has   bool
	dir   types.CustomDataDirectory
}

func (im *Importer) customData() ([]types.CustomDataDirectory, error) {
	names, err := im.store.SubKeys(SubKeyCustomData)
	if err != nil {
		return nil, fmt.Errorf("listing legacy custom data: %w", err)
	}
	var found []orderedDirectory
	for _, name := range names {
		key := JoinKey(SubKeyCustomData, name)
		path, ok, err := im.store.Value(key, ValuePath)
		if err != nil {
			return nil, err
		}
		if !ok || path == "" {
			im.logger.Warn("skipping legacy custom data entry without path", "name", name)
			continue
		}
		od := orderedDirectory{key: name, dir: types.CustomDataDirectory{
			ID:      types.NewID(),
			Name:    name,
			Path:    path,
			Enabled: true,
		}}
		if v, ok, err := im.store.Value(key, ValueEnabled); err != nil {
			return nil, err
		} else if ok {
			if b, err := ParseBool(v); err == nil {
				od.dir.Enabled = b
			}
		}
		if v, ok, err := im.store.Value(key, ValueOrder); err != nil {
			return nil, err
		} else if ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				od.order, od.has = n, true
			}
		}
		found = append(found, od)
	}

	// Ordered entries first by order, then unordered ones; ties by key.
	slices.SortStableFunc(found, func(a, b orderedDirectory) int {
		if a.has != b.has {
			if a.has {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(a.order, b.order); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})

	dirs := make([]types.CustomDataDirectory, 0, len(found))
	for _, od := range found {
		dirs = append(dirs, od.dir)
	}
	if len(dirs) == 0 {
		return nil, nil
	}
	return dirs, nil
}

// ParseBool accepts the spellings legacy stores used for booleans:
// True/False, 1/0, yes/no, case-insensitively.
func ParseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}
