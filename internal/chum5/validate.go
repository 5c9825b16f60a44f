package chum5

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/mesh-intelligence/chummer/pkg/types"
)

// validator checks cross-references inside one sheet. With tolerate set,
// dangling references are repaired (cleared or dropped) and logged instead
// of failing the load. Duplicate identities always fail.
type validator struct {
	tolerate bool
	logger   *slog.Logger
	repaired int

	ids       map[string]string // guid -> record
	locations map[string]bool
	mounts    map[string]bool // gear and cyberware guids
	sources   map[string]bool // nil when the document lists no books
}

func newValidator(tolerate bool, logger *slog.Logger) *validator {
	return &validator{tolerate: tolerate, logger: logger}
}

func (v *validator) validate(s *types.Sheet) *failure {
	if f := v.index(s); f != nil {
		return f
	}
	if f := v.gearLocations("gear", s.Gear); f != nil {
		return f
	}
	for i := range s.Weapons {
		w := &s.Weapons[i]
		if w.ParentID == "" || v.mounts[w.ParentID] {
			continue
		}
		rec := label("weapon", i, w.Name)
		if f := v.dangling(rec, "parentid", w.ParentID); f != nil {
			return f
		}
		w.ParentID = ""
	}

	kept := s.Improvements[:0]
	for i, imp := range s.Improvements {
		if _, ok := v.ids[imp.SourceName]; ok {
			kept = append(kept, imp)
			continue
		}
		rec := label("improvement", i, imp.ImprovedName)
		if f := v.dangling(rec, "sourcename", imp.SourceName); f != nil {
			return f
		}
	}
	s.Improvements = kept

	return v.books(s)
}

// index records every identity and rejects duplicates.
func (v *validator) index(s *types.Sheet) *failure {
	v.ids = make(map[string]string)
	v.locations = make(map[string]bool, len(s.Locations))
	v.mounts = make(map[string]bool)
	v.ids[s.GUID] = "character"

	var dup *failure
	s.WalkGUIDs(func(record, guid string) bool {
		if prev, ok := v.ids[guid]; ok {
			dup = &failure{record: record, err: fmt.Errorf("guid %s already used by %s", guid, prev)}
			return false
		}
		v.ids[guid] = record
		return true
	})
	if dup != nil {
		return dup
	}
	for _, l := range s.Locations {
		v.locations[l.GUID] = true
	}
	walkMounts(s.Gear, s.Cyberware, v.mounts)

	if s.Sources != nil {
		v.sources = make(map[string]bool, len(s.Sources))
		for _, src := range s.Sources {
			v.sources[src] = true
		}
	}
	return nil
}

func walkMounts(gear []types.Gear, ware []types.Cyberware, into map[string]bool) {
	for _, g := range gear {
		into[g.GUID] = true
		walkMounts(g.Children, nil, into)
	}
	for _, c := range ware {
		into[c.GUID] = true
		walkMounts(nil, c.Children, into)
	}
}

func (v *validator) gearLocations(path string, gear []types.Gear) *failure {
	for i := range gear {
		g := &gear[i]
		if g.Location != "" && !v.locations[g.Location] {
			rec := label(path, i, g.Name)
			if f := v.dangling(rec, "location", g.Location); f != nil {
				return f
			}
			g.Location = ""
		}
		if f := v.gearLocations(fmt.Sprintf("%s[%d].children", path, i), g.Children); f != nil {
			return f
		}
	}
	return nil
}

// books checks that every sourced object names a book the document enables.
func (v *validator) books(s *types.Sheet) *failure {
	if v.sources == nil {
		return nil
	}
	var bad *failure
	check := func(record, source string) bool {
		if source == "" || v.sources[source] {
			return true
		}
		if v.tolerate {
			v.logger.Warn("object references a disabled sourcebook", "record", record, "source", source)
			v.repaired++
			return true
		}
		bad = &failure{record: record, err: fmt.Errorf("source %q is not enabled on this character (enabled: %v)", source, slices.Sorted(maps.Keys(v.sources)))}
		return false
	}
	for i, q := range s.Qualities {
		if !check(label("quality", i, q.Name), q.Source) {
			return bad
		}
	}
	for i, sp := range s.Spells {
		if !check(label("spell", i, sp.Name), sp.Source) {
			return bad
		}
	}
	for i, w := range s.Weapons {
		if !check(label("weapon", i, w.Name), w.Source) {
			return bad
		}
	}
	if !checkGearSources("gear", s.Gear, check) {
		return bad
	}
	if !checkCyberwareSources("cyberware", s.Cyberware, check) {
		return bad
	}
	return nil
}

func checkGearSources(path string, gear []types.Gear, check func(string, string) bool) bool {
	for i, g := range gear {
		if !check(label(path, i, g.Name), g.Source) {
			return false
		}
		if !checkGearSources(fmt.Sprintf("%s[%d].children", path, i), g.Children, check) {
			return false
		}
	}
	return true
}

func checkCyberwareSources(path string, ware []types.Cyberware, check func(string, string) bool) bool {
	for i, c := range ware {
		if !check(label(path, i, c.Name), c.Source) {
			return false
		}
		if !checkCyberwareSources(fmt.Sprintf("%s[%d].children", path, i), c.Children, check) {
			return false
		}
	}
	return true
}

// dangling handles an unresolved reference. It returns nil when the
// reference may be repaired.
func (v *validator) dangling(record, field, ref string) *failure {
	if v.tolerate {
		v.logger.Warn("dropping dangling reference", "record", record, "field", field, "ref", ref)
		v.repaired++
		return nil
	}
	return &failure{record: record, err: fmt.Errorf("%s %s does not resolve", field, ref)}
}
