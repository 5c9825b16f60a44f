package chum5

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/chummer/pkg/types"
)

// converter turns decoded XML into a Sheet. It stops recording after the
// first bad value; callers check err once conversion returns.
type converter struct {
	record string
	err    error
}

// failure is a structural problem found while converting.
type failure struct {
	record string
	err    error
}

func (c *converter) fail(record string, format string, args ...any) {
	if c.err == nil {
		c.record = record
		c.err = fmt.Errorf(format, args...)
	}
}

func (c *converter) failed() *failure {
	if c.err == nil {
		return nil
	}
	return &failure{record: c.record, err: c.err}
}

// integer parses an integer element. Empty text is zero.
func (c *converter) integer(record, field, s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Some writers stored integral values as decimals ("3.0").
		f, ferr := parseDecimal(s)
		if ferr != nil || f != float64(int(f)) {
			c.fail(record, "%s: invalid integer %q", field, s)
			return 0
		}
		return int(f)
	}
	return n
}

// decimal parses a decimal element, accepting a comma separator.
func (c *converter) decimal(record, field, s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := parseDecimal(s)
	if err != nil {
		c.fail(record, "%s: invalid number %q", field, s)
		return 0
	}
	return f
}

// boolean parses True/False text. Empty text is false.
func (c *converter) boolean(record, field, s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0":
		return false
	case "true", "1":
		return true
	}
	c.fail(record, "%s: invalid boolean %q", field, s)
	return false
}

func parseDecimal(s string) (float64, error) {
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

var errNotFinite = errors.New("number is not finite")

func label(kind string, i int, name string) string {
	if name == "" {
		return indexed(kind, i)
	}
	return fmt.Sprintf("%s[%d] %q", kind, i, name)
}

// sheet converts the document. A missing essence element converts to
// zero; upgrade recomputes it.
func (c *converter) sheet(doc *xmlCharacter) types.Sheet {
	s := types.Sheet{
		GUID:        strings.TrimSpace(doc.GUID),
		Name:        doc.Name,
		Alias:       doc.Alias,
		Player:      doc.Player,
		Metatype:    doc.Metatype,
		Metavariant: doc.Metavariant,
		AppVersion:  strings.TrimSpace(doc.AppVersion),
		GameEdition: strings.TrimSpace(doc.GameEdition),
		BuildMethod: strings.TrimSpace(doc.BuildMethod),
		SettingsID:  strings.TrimSpace(doc.Settings),
		Created:     c.boolean("character", "created", doc.Created),
		Karma:       c.integer("character", "karma", doc.Karma),
		TotalKarma:  c.integer("character", "totalkarma", doc.TotalKarma),
		Nuyen:       c.decimal("character", "nuyen", doc.Nuyen),
	}
	if doc.Essence != nil {
		s.Essence = c.decimal("character", "essence", *doc.Essence)
	}
	if doc.Sources != nil {
		s.Sources = make([]string, 0, len(doc.Sources.Source))
		for _, src := range doc.Sources.Source {
			if src = strings.TrimSpace(src); src != "" {
				s.Sources = append(s.Sources, src)
			}
		}
	}

	s.Attributes = c.attributes(doc.Attributes)
	s.Skills = c.skills(doc.Skills)
	s.Qualities = c.qualities(doc.Qualities)
	s.Locations = make([]types.Location, 0, len(doc.Locations))
	for _, l := range doc.Locations {
		s.Locations = append(s.Locations, types.Location{GUID: strings.TrimSpace(l.GUID), Name: l.Name})
	}
	s.Gear = c.gear("gear", doc.Gear)
	s.Cyberware = c.cyberware("cyberware", doc.Cyberware)
	s.Weapons = c.weapons(doc.Weapons)
	s.Spells = c.spells(doc.Spells)
	s.Contacts = c.contacts(doc.Contacts)
	s.Improvements = c.improvements(doc.Improvements)
	return s
}

func (c *converter) attributes(in []xmlAttribute) []types.Attribute {
	out := make([]types.Attribute, 0, len(in))
	seen := make(map[string]bool, len(in))
	for i, x := range in {
		name := strings.TrimSpace(x.Name)
		rec := label("attribute", i, name)
		if !types.KnownAttributes[name] {
			c.fail(rec, "unknown attribute %q", name)
			continue
		}
		if seen[name] {
			c.fail(rec, "duplicate attribute %q", name)
			continue
		}
		seen[name] = true

		a := types.Attribute{
			Name:           name,
			MetatypeMin:    c.integer(rec, "metatypemin", x.MetatypeMin),
			MetatypeMax:    c.integer(rec, "metatypemax", x.MetatypeMax),
			MetatypeAugMax: c.integer(rec, "metatypeaugmax", x.MetatypeAugMax),
			Karma:          c.integer(rec, "karma", x.Karma),
		}
		switch {
		case x.Base != nil:
			a.Base = c.integer(rec, "base", *x.Base)
		case x.Value != nil:
			// Older documents stored the total rating only.
			a.Base = max(c.integer(rec, "value", *x.Value)-a.MetatypeMin-a.Karma, 0)
		}
		if a.MetatypeMax > 0 && a.MetatypeMin > a.MetatypeMax {
			c.fail(rec, "metatypemin %d exceeds metatypemax %d", a.MetatypeMin, a.MetatypeMax)
		}
		out = append(out, a)
	}
	return out
}

func (c *converter) skills(in []xmlSkill) []types.Skill {
	out := make([]types.Skill, 0, len(in))
	for i, x := range in {
		rec := label("skill", i, x.Name)
		sk := types.Skill{
			GUID:      strings.TrimSpace(x.GUID),
			SkillID:   strings.TrimSpace(x.SUID),
			Name:      x.Name,
			Knowledge: c.boolean(rec, "isknowledge", x.Knowledge),
			Base:      c.integer(rec, "base", x.Base),
			Karma:     c.integer(rec, "karma", x.Karma),
		}
		for _, sp := range x.Specs {
			sk.Specializations = append(sk.Specializations, sp.Name)
		}
		out = append(out, sk)
	}
	return out
}

func (c *converter) qualities(in []xmlQuality) []types.Quality {
	out := make([]types.Quality, 0, len(in))
	for i, x := range in {
		rec := label("quality", i, x.Name)
		out = append(out, types.Quality{
			GUID:   strings.TrimSpace(x.GUID),
			Name:   x.Name,
			Type:   x.Type,
			Karma:  c.integer(rec, "bp", x.Karma),
			Source: strings.TrimSpace(x.Source),
			Page:   x.Page,
			Extra:  x.Extra,
		})
	}
	return out
}

func (c *converter) gear(path string, in []xmlGear) []types.Gear {
	if len(in) == 0 {
		return nil
	}
	out := make([]types.Gear, 0, len(in))
	for i, x := range in {
		rec := label(path, i, x.Name)
		g := types.Gear{
			GUID:     strings.TrimSpace(x.GUID),
			Name:     x.Name,
			Category: x.Category,
			Rating:   c.integer(rec, "rating", x.Rating),
			Quantity: 1,
			Source:   strings.TrimSpace(x.Source),
			Page:     x.Page,
			Location: strings.TrimSpace(x.Location),
			Equipped: c.boolean(rec, "equipped", x.Equipped),
		}
		if strings.TrimSpace(x.Quantity) != "" {
			g.Quantity = c.decimal(rec, "qty", x.Quantity)
		}
		if g.Quantity < 0 {
			c.fail(rec, "negative quantity %v", g.Quantity)
		}
		g.Children = c.gear(fmt.Sprintf("%s[%d].children", path, i), x.Children)
		out = append(out, g)
	}
	return out
}

func (c *converter) cyberware(path string, in []xmlCyberware) []types.Cyberware {
	if len(in) == 0 {
		return nil
	}
	out := make([]types.Cyberware, 0, len(in))
	for i, x := range in {
		rec := label(path, i, x.Name)
		cw := types.Cyberware{
			GUID:     strings.TrimSpace(x.GUID),
			Name:     x.Name,
			Category: x.Category,
			Grade:    x.Grade,
			Rating:   c.integer(rec, "rating", x.Rating),
			Essence:  c.decimal(rec, "ess", x.Essence),
			Source:   strings.TrimSpace(x.Source),
			Page:     x.Page,
		}
		cw.Children = c.cyberware(fmt.Sprintf("%s[%d].children", path, i), x.Children)
		out = append(out, cw)
	}
	return out
}

func (c *converter) weapons(in []xmlWeapon) []types.Weapon {
	out := make([]types.Weapon, 0, len(in))
	for _, x := range in {
		out = append(out, types.Weapon{
			GUID:     strings.TrimSpace(x.GUID),
			Name:     x.Name,
			Category: x.Category,
			Source:   strings.TrimSpace(x.Source),
			Page:     x.Page,
			ParentID: strings.TrimSpace(x.ParentID),
		})
	}
	return out
}

func (c *converter) spells(in []xmlSpell) []types.Spell {
	out := make([]types.Spell, 0, len(in))
	for _, x := range in {
		out = append(out, types.Spell{
			GUID:     strings.TrimSpace(x.GUID),
			Name:     x.Name,
			Category: x.Category,
			Source:   strings.TrimSpace(x.Source),
			Page:     x.Page,
			Extra:    x.Extra,
		})
	}
	return out
}

func (c *converter) contacts(in []xmlContact) []types.Contact {
	out := make([]types.Contact, 0, len(in))
	for i, x := range in {
		rec := label("contact", i, x.Name)
		out = append(out, types.Contact{
			GUID:       strings.TrimSpace(x.GUID),
			Name:       x.Name,
			Role:       x.Role,
			Connection: c.integer(rec, "connection", x.Connection),
			Loyalty:    c.integer(rec, "loyalty", x.Loyalty),
			Enemy:      strings.EqualFold(strings.TrimSpace(x.Type), "Enemy"),
		})
	}
	return out
}

func (c *converter) improvements(in []xmlImprovement) []types.Improvement {
	out := make([]types.Improvement, 0, len(in))
	for i, x := range in {
		rec := label("improvement", i, x.ImprovedName)
		imp := types.Improvement{
			SourceName:   strings.TrimSpace(x.SourceName),
			ImprovedName: x.ImprovedName,
			Type:         x.Type,
			Value:        c.integer(rec, "val", x.Value),
			Enabled:      true,
		}
		if strings.TrimSpace(x.Enabled) != "" {
			imp.Enabled = c.boolean(rec, "enabled", x.Enabled)
		}
		if imp.SourceName == "" {
			c.fail(rec, "improvement has no sourcename")
		}
		out = append(out, imp)
	}
	return out
}
