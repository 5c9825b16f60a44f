// Package chum5 loads character documents (.chum5) into types.Character.
// A load is a single forward pass: decode, convert, upgrade fields written
// by older application versions, then check referential integrity. The
// character is only marked usable when every step succeeds.
package chum5

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/mesh-intelligence/chummer/pkg/types"
)

// Extension is the character document file extension.
const Extension = ".chum5"

// CompatibilityMode controls how documents from older versions are held
// to referential integrity.
type CompatibilityMode string

// Compatibility modes.
const (
	// CompatLegacy repairs dangling references in documents written before
	// 5.200.0 and fails them in newer documents.
	CompatLegacy CompatibilityMode = "legacy"
	// CompatStrict fails every dangling reference.
	CompatStrict CompatibilityMode = "strict"
)

// ErrUnknownCompatibility is returned by ParseCompatibilityMode.
var ErrUnknownCompatibility = errors.New("unknown compatibility mode")

// ParseCompatibilityMode parses "legacy" or "strict". Empty means legacy.
func ParseCompatibilityMode(s string) (CompatibilityMode, error) {
	switch m := CompatibilityMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return CompatLegacy, nil
	case CompatLegacy, CompatStrict:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCompatibility, s)
}

// Options configure a Loader. The zero value is usable.
type Options struct {
	Compatibility CompatibilityMode

	// Logger receives load diagnostics; slog.Default when nil.
	Logger *slog.Logger

	// Headless demotes per-document success logging to debug, for batch
	// and non-interactive callers.
	Headless bool

	// NewID generates identities for objects saved without one. When nil
	// they are derived from the character guid, or the document bytes if
	// it has none, and the object's position, so reloading a document
	// reproduces them.
	NewID func() string
}

// Loader reads character documents. It keeps no state between loads, so
// one Loader may load many characters concurrently.
type Loader struct {
	opts Options
}

// NewLoader returns a loader configured by opts.
func NewLoader(opts Options) *Loader {
	if opts.Compatibility == "" {
		opts.Compatibility = CompatLegacy
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Loader{opts: opts}
}

// Load populates c from the document at c.FileName. On failure c is left
// unusable and the error is one of: types.ErrNoFileName, the file access
// error unchanged (e.g. matching fs.ErrNotExist), or a *types.LoadError
// matching types.ErrMalformedStream or types.ErrValidation.
func (l *Loader) Load(c *types.Character) error {
	c.Invalidate()
	if c.FileName == "" {
		return types.ErrNoFileName
	}
	if ext := filepath.Ext(c.FileName); !strings.EqualFold(ext, Extension) {
		l.opts.Logger.Warn("loading character with unexpected extension", "file", c.FileName, "ext", ext)
	}

	f, err := os.Open(c.FileName)
	if err != nil {
		return err
	}
	defer f.Close()

	sheet, err := l.Decode(c.FileName, f)
	if err != nil {
		return err
	}
	c.Install(sheet)
	return nil
}

// LoadFile is NewCharacter plus Load. The character is returned even on
// failure so callers can report its FileName.
func (l *Loader) LoadFile(path string) (*types.Character, error) {
	c := types.NewCharacter(path)
	return c, l.Load(c)
}

// Decode parses one document from r. name labels errors and logs.
func (l *Loader) Decode(name string, r io.Reader) (types.Sheet, error) {
	src := &readTracker{r: r, sum: sha256.New()}
	doc, err := decodeDocument(src)
	if err != nil {
		if src.err != nil {
			return types.Sheet{}, src.err
		}
		return types.Sheet{}, &types.LoadError{File: name, Kind: types.ErrMalformedStream, Err: err}
	}

	conv := &converter{}
	sheet := conv.sheet(doc)
	if f := conv.failed(); f != nil {
		return types.Sheet{}, &types.LoadError{File: name, Record: f.record, Kind: types.ErrMalformedStream, Err: f.err}
	}

	legacy := isLegacyVersion(sheet.AppVersion)
	up := &upgrader{
		docKey:         sheet.GUID,
		essenceMissing: doc.Essence == nil,
		newID:          l.opts.NewID,
	}
	if up.docKey == "" {
		up.docKey = hex.EncodeToString(src.sum.Sum(nil))
	}
	up.upgrade(&sheet)
	if up.assigned > 0 {
		l.opts.Logger.Debug("assigned identities to objects without guid", "file", name, "count", up.assigned)
	}

	v := newValidator(legacy && l.opts.Compatibility == CompatLegacy, l.opts.Logger.With("file", name))
	if f := v.validate(&sheet); f != nil {
		return types.Sheet{}, &types.LoadError{File: name, Record: f.record, Kind: types.ErrValidation, Err: f.err}
	}

	log := l.opts.Logger.Info
	if l.opts.Headless {
		log = l.opts.Logger.Debug
	}
	log("loaded character", "file", name, "name", sheet.Name, "version", sheet.AppVersion,
		"legacy", legacy, "repaired", v.repaired)
	return sheet, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeDocument decodes the root element and rejects anything but
// whitespace, comments and processing instructions after it.
func decodeDocument(r io.Reader) (*xmlCharacter, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	dec := xml.NewDecoder(br)
	dec.CharsetReader = charset.NewReaderLabel

	var doc xmlCharacter
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return nil, errors.New("text after root element")
			}
		case xml.Comment, xml.ProcInst:
		default:
			return nil, errors.New("content after root element")
		}
	}
}

// readTracker remembers the first read failure other than io.EOF so that
// I/O errors can be told apart from malformed content. It also hashes
// everything read.
type readTracker struct {
	r   io.Reader
	sum hash.Hash
	err error
}

func (t *readTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.sum.Write(p[:n])
	if err != nil && !errors.Is(err, io.EOF) && t.err == nil {
		t.err = err
	}
	return n, err
}
