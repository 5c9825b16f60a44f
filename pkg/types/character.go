package types

import "time"

// Attribute names recognized on a character sheet.
const (
	AttributeBody       = "BOD"
	AttributeAgility    = "AGI"
	AttributeReaction   = "REA"
	AttributeStrength   = "STR"
	AttributeCharisma   = "CHA"
	AttributeIntuition  = "INT"
	AttributeLogic      = "LOG"
	AttributeWillpower  = "WIL"
	AttributeEdge       = "EDG"
	AttributeMagic      = "MAG"
	AttributeResonance  = "RES"
	AttributeEssence    = "ESS"
	AttributeDepth      = "DEP"
	AttributeMagicAdept = "MAGAdept"
)

// KnownAttributes is the set of attribute names a document may contain.
var KnownAttributes = map[string]bool{
	AttributeBody:       true,
	AttributeAgility:    true,
	AttributeReaction:   true,
	AttributeStrength:   true,
	AttributeCharisma:   true,
	AttributeIntuition:  true,
	AttributeLogic:      true,
	AttributeWillpower:  true,
	AttributeEdge:       true,
	AttributeMagic:      true,
	AttributeResonance:  true,
	AttributeEssence:    true,
	AttributeDepth:      true,
	AttributeMagicAdept: true,
}

// Build methods.
const (
	BuildMethodKarma      = "Karma"
	BuildMethodPriority   = "Priority"
	BuildMethodSumToTen   = "SumToTen"
	BuildMethodLifeModule = "LifeModule"
)

// Attribute is one rated attribute.
type Attribute struct {
	Name           string
	MetatypeMin    int
	MetatypeMax    int
	MetatypeAugMax int
	Base           int
	Karma          int
}

// Total returns the unaugmented rating.
func (a Attribute) Total() int {
	return a.MetatypeMin + a.Base + a.Karma
}

// Skill is an active or knowledge skill.
type Skill struct {
	GUID            string
	SkillID         string
	Name            string
	Knowledge       bool
	Base            int
	Karma           int
	Specializations []string
}

// Rating returns base plus karma ranks.
func (s Skill) Rating() int {
	return s.Base + s.Karma
}

// Quality is a positive or negative quality.
type Quality struct {
	GUID   string
	Name   string
	Type   string
	Karma  int
	Source string
	Page   string
	Extra  string
}

// Location groups gear on the sheet.
type Location struct {
	GUID string
	Name string
}

// Gear is an item of equipment. Children are contained items.
type Gear struct {
	GUID     string
	Name     string
	Category string
	Rating   int
	Quantity float64
	Source   string
	Page     string
	Location string
	Equipped bool
	Children []Gear
}

// Cyberware is an implant. Children are installed plugins.
type Cyberware struct {
	GUID     string
	Name     string
	Category string
	Grade    string
	Rating   int
	Essence  float64
	Source   string
	Page     string
	Children []Cyberware
}

// Weapon is a weapon, optionally mounted on gear or cyberware via ParentID.
type Weapon struct {
	GUID     string
	Name     string
	Category string
	Source   string
	Page     string
	ParentID string
}

// Spell is a known spell, complex form, or ritual.
type Spell struct {
	GUID     string
	Name     string
	Category string
	Source   string
	Page     string
	Extra    string
}

// Contact is a contact or enemy.
type Contact struct {
	GUID       string
	Name       string
	Role       string
	Connection int
	Loyalty    int
	Enemy      bool
}

// Improvement is a bonus granted by another object on the sheet.
// SourceName holds the GUID of the granting object.
type Improvement struct {
	SourceName   string
	ImprovedName string
	Type         string
	Value        int
	Enabled      bool
}

// Sheet is the object graph of one character document.
type Sheet struct {
	GUID        string
	Name        string
	Alias       string
	Player      string
	Metatype    string
	Metavariant string
	AppVersion  string
	GameEdition string
	BuildMethod string
	SettingsID  string
	Created     bool
	Karma       int
	TotalKarma  int
	Nuyen       float64
	Essence     float64
	Sources     []string

	Attributes   []Attribute
	Skills       []Skill
	Qualities    []Quality
	Locations    []Location
	Gear         []Gear
	Cyberware    []Cyberware
	Weapons      []Weapon
	Spells       []Spell
	Contacts     []Contact
	Improvements []Improvement
}

// Attribute returns the named attribute.
func (s *Sheet) Attribute(name string) (Attribute, bool) {
	for _, a := range s.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Find reports whether any identity-bearing object on the sheet has guid.
func (s *Sheet) Find(guid string) bool {
	found := false
	s.WalkGUIDs(func(_, g string) bool {
		if g == guid {
			found = true
			return false
		}
		return true
	})
	return found
}

// WalkGUIDs calls fn with a record label and GUID for every
// identity-bearing object, depth first. Returning false stops the walk.
func (s *Sheet) WalkGUIDs(fn func(record, guid string) bool) {
	for _, sk := range s.Skills {
		if !fn("skill "+sk.Name, sk.GUID) {
			return
		}
	}
	for _, q := range s.Qualities {
		if !fn("quality "+q.Name, q.GUID) {
			return
		}
	}
	for _, l := range s.Locations {
		if !fn("location "+l.Name, l.GUID) {
			return
		}
	}
	if !walkGear(s.Gear, fn) {
		return
	}
	if !walkCyberware(s.Cyberware, fn) {
		return
	}
	for _, w := range s.Weapons {
		if !fn("weapon "+w.Name, w.GUID) {
			return
		}
	}
	for _, sp := range s.Spells {
		if !fn("spell "+sp.Name, sp.GUID) {
			return
		}
	}
	for _, c := range s.Contacts {
		if !fn("contact "+c.Name, c.GUID) {
			return
		}
	}
}

func walkGear(gear []Gear, fn func(string, string) bool) bool {
	for _, g := range gear {
		if !fn("gear "+g.Name, g.GUID) {
			return false
		}
		if !walkGear(g.Children, fn) {
			return false
		}
	}
	return true
}

func walkCyberware(ware []Cyberware, fn func(string, string) bool) bool {
	for _, c := range ware {
		if !fn("cyberware "+c.Name, c.GUID) {
			return false
		}
		if !walkCyberware(c.Children, fn) {
			return false
		}
	}
	return true
}

// Counts summarizes collection sizes; nested gear and cyberware are included.
type Counts struct {
	Attributes   int `json:"attributes"`
	Skills       int `json:"skills"`
	Qualities    int `json:"qualities"`
	Gear         int `json:"gear"`
	Cyberware    int `json:"cyberware"`
	Weapons      int `json:"weapons"`
	Spells       int `json:"spells"`
	Contacts     int `json:"contacts"`
	Improvements int `json:"improvements"`
}

// Counts returns per-collection sizes.
func (s *Sheet) Counts() Counts {
	c := Counts{
		Attributes:   len(s.Attributes),
		Skills:       len(s.Skills),
		Qualities:    len(s.Qualities),
		Weapons:      len(s.Weapons),
		Spells:       len(s.Spells),
		Contacts:     len(s.Contacts),
		Improvements: len(s.Improvements),
	}
	walkGear(s.Gear, func(string, string) bool { c.Gear++; return true })
	walkCyberware(s.Cyberware, func(string, string) bool { c.Cyberware++; return true })
	return c
}

// Character is one character sheet bound to a document path. A Character
// is usable only after a loader reports success.
type Character struct {
	FileName string
	Sheet    Sheet
	LoadedAt time.Time

	usable bool
}

// NewCharacter returns an empty, unusable character for fileName.
func NewCharacter(fileName string) *Character {
	return &Character{FileName: fileName}
}

// Usable reports whether the last load succeeded.
func (c *Character) Usable() bool {
	return c.usable
}

// Install replaces the sheet with a fully built one and marks the
// character usable. Loaders call this only after validation passes.
func (c *Character) Install(s Sheet) {
	c.Sheet = s
	c.LoadedAt = time.Now()
	c.usable = true
}

// Invalidate discards the sheet and marks the character unusable.
func (c *Character) Invalidate() {
	c.Sheet = Sheet{}
	c.LoadedAt = time.Time{}
	c.usable = false
}
