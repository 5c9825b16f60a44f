// Package settings persists the global Settings value.
// The codec writes a JSON Lines stream: a header, one settings record, one
// record per sourcebook and custom data directory, and a counting trailer.
package settings

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/mesh-intelligence/chummer/pkg/types"
)

// maxLineSize bounds a single record. Paths are the longest values.
const maxLineSize = 1 << 20

// Codec serializes Settings to and from a byte stream. A Codec holds no
// mutable state and is safe for concurrent use.
type Codec struct {
	logger *slog.Logger
}

// NewCodec returns a codec that logs through logger (slog.Default when nil).
func NewCodec(logger *slog.Logger) *Codec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Codec{logger: logger}
}

// Serialize writes s to w. Output is byte-identical for equal input.
// Settings that would not read back unchanged are rejected before anything
// is written: text must be valid UTF-8 and the color mode canonical.
func (c *Codec) Serialize(s types.Settings, w io.Writer) error {
	if err := checkEncodable(s); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(headerJSON{Kind: kindHeader, Format: formatName, Version: formatVersion}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := enc.Encode(toSettingsJSON(s)); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	records := 1
	for _, b := range s.Sourcebooks {
		rec := sourcebookJSON{Kind: kindSourcebook, Code: b.Code, Path: b.Path, Offset: b.Offset}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("writing sourcebook %s: %w", b.Code, err)
		}
		records++
	}
	for _, d := range s.CustomData.Directories {
		rec := customDataJSON{Kind: kindCustomData, ID: d.ID, Name: d.Name, Path: d.Path, Enabled: d.Enabled}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("writing custom data directory %s: %w", d.Path, err)
		}
		records++
	}
	if err := enc.Encode(endJSON{Kind: kindEnd, Records: records}); err != nil {
		return fmt.Errorf("writing trailer: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing settings stream: %w", err)
	}
	return nil
}

// checkEncodable reports the first value JSON would alter or Deserialize
// would refuse.
func checkEncodable(s types.Settings) error {
	if mode, err := types.ParseColorMode(string(s.ColorMode)); err != nil || mode != s.ColorMode {
		return fmt.Errorf("color mode %q: %w", s.ColorMode, types.ErrInvalidColorMode)
	}
	rec := toSettingsJSON(s)
	for _, f := range []struct{ name, value string }{
		{"language", rec.Language},
		{"custom_date_format", rec.CustomDateFormat},
		{"custom_time_format", rec.CustomTimeFormat},
		{"pdf_app_path", rec.PDFAppPath},
		{"pdf_parameters", rec.PDFParameters},
		{"character_roster_path", rec.CharacterRosterPath},
		{"default_character_setting", rec.DefaultCharacterSetting},
	} {
		if !utf8.ValidString(f.value) {
			return fmt.Errorf("%s %q: %w", f.name, f.value, types.ErrInvalidText)
		}
	}
	for i, b := range s.Sourcebooks {
		if !utf8.ValidString(b.Code) || !utf8.ValidString(b.Path) {
			return fmt.Errorf("sourcebook %d %q: %w", i, b.Path, types.ErrInvalidText)
		}
	}
	for i, d := range s.CustomData.Directories {
		if !utf8.ValidString(d.ID) || !utf8.ValidString(d.Name) || !utf8.ValidString(d.Path) {
			return fmt.Errorf("custom data directory %d %q: %w", i, d.Path, types.ErrInvalidText)
		}
	}
	return nil
}

// Deserialize reads a stream written by Serialize from any reader.
// Malformed or truncated input returns a *types.StreamError matching
// types.ErrMalformedStream. Unknown fields and record kinds are ignored.
func (c *Codec) Deserialize(r io.Reader) (types.Settings, error) {
	d := decoder{logger: c.logger, settings: types.DefaultSettings()}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		d.line++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := d.record(line); err != nil {
			return types.Settings{}, err
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return types.Settings{}, &types.StreamError{Line: d.line + 1, Reason: "record too long", Err: err}
		}
		return types.Settings{}, fmt.Errorf("reading settings stream: %w", err)
	}
	if err := d.finish(); err != nil {
		return types.Settings{}, err
	}
	return d.settings, nil
}

// Marshal is Serialize into a new byte slice.
func (c *Codec) Marshal(s types.Settings) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Serialize(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal is Deserialize from a byte slice.
func (c *Codec) Unmarshal(data []byte) (types.Settings, error) {
	return c.Deserialize(bytes.NewReader(data))
}

// decoder tracks position in the record sequence for one Deserialize call.
type decoder struct {
	logger   *slog.Logger
	settings types.Settings

	line        int
	sawHeader   bool
	sawSettings bool
	sawEnd      bool
	records     int
}

func (d *decoder) fail(reason string, err error) error {
	return &types.StreamError{Line: d.line, Reason: reason, Err: err}
}

func (d *decoder) record(line []byte) error {
	if d.sawEnd {
		return d.fail("data after end record", nil)
	}

	var k kindJSON
	if err := json.Unmarshal(line, &k); err != nil {
		return d.fail("invalid JSON", err)
	}

	if !d.sawHeader {
		if k.Kind != kindHeader {
			return d.fail("missing header record", nil)
		}
		return d.header(line)
	}

	switch k.Kind {
	case kindHeader:
		return d.fail("duplicate header record", nil)
	case kindSettings:
		return d.scalars(line)
	case kindSourcebook:
		var rec sourcebookJSON
		if err := json.Unmarshal(line, &rec); err != nil {
			return d.fail("invalid sourcebook record", err)
		}
		d.settings.Sourcebooks = append(d.settings.Sourcebooks, types.SourcebookInfo{
			Code:   rec.Code,
			Path:   rec.Path,
			Offset: rec.Offset,
		})
	case kindCustomData:
		var rec customDataJSON
		if err := json.Unmarshal(line, &rec); err != nil {
			return d.fail("invalid custom data record", err)
		}
		d.settings.CustomData.Directories = append(d.settings.CustomData.Directories, types.CustomDataDirectory{
			ID:      rec.ID,
			Name:    rec.Name,
			Path:    rec.Path,
			Enabled: rec.Enabled,
		})
	case kindEnd:
		return d.end(line)
	default:
		d.logger.Debug("skipping unknown settings record", "kind", k.Kind, "line", d.line)
	}
	d.records++
	return nil
}

func (d *decoder) header(line []byte) error {
	var h headerJSON
	if err := json.Unmarshal(line, &h); err != nil {
		return d.fail("invalid header record", err)
	}
	if h.Format != formatName {
		return d.fail(fmt.Sprintf("unexpected format %q", h.Format), nil)
	}
	if h.Version < 1 {
		return d.fail(fmt.Sprintf("invalid format version %d", h.Version), nil)
	}
	if h.Version > formatVersion {
		d.logger.Info("reading newer settings format", "version", h.Version, "supported", formatVersion)
	}
	d.sawHeader = true
	return nil
}

func (d *decoder) scalars(line []byte) error {
	if d.sawSettings {
		return d.fail("duplicate settings record", nil)
	}
	rec := toSettingsJSON(types.DefaultSettings())
	if err := json.Unmarshal(line, &rec); err != nil {
		return d.fail("invalid settings record", err)
	}
	if err := fromSettingsJSON(&d.settings, rec); err != nil {
		return d.fail("invalid settings record", err)
	}
	d.sawSettings = true
	d.records++
	return nil
}

func (d *decoder) end(line []byte) error {
	var e endJSON
	if err := json.Unmarshal(line, &e); err != nil {
		return d.fail("invalid end record", err)
	}
	if e.Records != d.records {
		return d.fail(fmt.Sprintf("end record counts %d records, stream has %d", e.Records, d.records), nil)
	}
	d.sawEnd = true
	return nil
}

func (d *decoder) finish() error {
	switch {
	case !d.sawHeader:
		return &types.StreamError{Reason: "empty stream"}
	case !d.sawEnd:
		return &types.StreamError{Reason: "missing end record, stream is truncated"}
	case !d.sawSettings:
		return &types.StreamError{Reason: "missing settings record"}
	}
	return nil
}
