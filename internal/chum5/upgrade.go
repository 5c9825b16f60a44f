package chum5

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/mod/semver"

	"github.com/mesh-intelligence/chummer/pkg/types"
)

// legacyFormatBefore is the first application version whose documents are
// held to full referential integrity. Older documents are upgraded and, in
// CompatLegacy mode, have dangling references dropped instead of failing.
const legacyFormatBefore = "v5.200.0"

// defaultGameEdition is assumed for documents written before editions were
// recorded.
const defaultGameEdition = "SR5"

// baseEssence is the unaugmented essence of every metatype.
const baseEssence = 6.0

// canonicalVersion turns an application version such as "5.213.31" or
// "5.213.31.0" into a semver string. The second result is false when the
// text is not a version; such documents are treated as the oldest format.
func canonicalVersion(appVersion string) (string, bool) {
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(appVersion), "v"), ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	v := "v" + strings.Join(parts, ".")
	if !semver.IsValid(v) {
		return "v0.0.0", false
	}
	return semver.Canonical(v), true
}

// isLegacyVersion reports whether a document predates legacyFormatBefore.
func isLegacyVersion(appVersion string) bool {
	v, _ := canonicalVersion(appVersion)
	return semver.Compare(v, legacyFormatBefore) < 0
}

// identitySpace namespaces the name-based identities given to objects
// saved without a guid.
var identitySpace = uuid.MustParse("6f1c2a54-8d3e-4b7a-9c1e-52f0d8a3b6e4")

// upgrader applies best-effort fixes for fields that older writers left
// out or spelled differently. Objects saved without an identity get one
// derived from docKey and the object's position in the document, so the
// same bytes always load to the same sheet. newID, when set, replaces the
// derivation.
type upgrader struct {
	docKey         string
	essenceMissing bool
	newID          func() string
	assigned       int
}

func (u *upgrader) upgrade(s *types.Sheet) {
	if s.GameEdition == "" {
		s.GameEdition = defaultGameEdition
	}
	switch {
	case s.BuildMethod == "":
		s.BuildMethod = types.BuildMethodKarma
	case strings.EqualFold(s.BuildMethod, "SumtoTen"):
		s.BuildMethod = types.BuildMethodSumToTen
	}
	if s.SettingsID == "" {
		s.SettingsID = types.DefaultCharacterSettingID
	}
	if u.essenceMissing {
		s.Essence = baseEssence - essenceCost(s.Cyberware)
	}

	u.id(&s.GUID, "character")
	for i := range s.Skills {
		u.id(&s.Skills[i].GUID, indexed("skill", i))
	}
	for i := range s.Qualities {
		u.id(&s.Qualities[i].GUID, indexed("quality", i))
	}
	for i := range s.Locations {
		u.id(&s.Locations[i].GUID, indexed("location", i))
	}
	u.gearIDs("", s.Gear)
	u.cyberwareIDs("", s.Cyberware)
	for i := range s.Weapons {
		u.id(&s.Weapons[i].GUID, indexed("weapon", i))
	}
	for i := range s.Spells {
		u.id(&s.Spells[i].GUID, indexed("spell", i))
	}
	for i := range s.Contacts {
		u.id(&s.Contacts[i].GUID, indexed("contact", i))
	}
}

func (u *upgrader) id(guid *string, path string) {
	if *guid != "" {
		return
	}
	if u.newID != nil {
		*guid = u.newID()
	} else {
		*guid = uuid.NewSHA1(identitySpace, []byte(u.docKey+"\x00"+path)).String()
	}
	u.assigned++
}

func (u *upgrader) gearIDs(parent string, gear []types.Gear) {
	for i := range gear {
		path := parent + indexed("gear", i)
		u.id(&gear[i].GUID, path)
		u.gearIDs(path+"/", gear[i].Children)
	}
}

func (u *upgrader) cyberwareIDs(parent string, ware []types.Cyberware) {
	for i := range ware {
		path := parent + indexed("cyberware", i)
		u.id(&ware[i].GUID, path)
		u.cyberwareIDs(path+"/", ware[i].Children)
	}
}

func indexed(kind string, i int) string {
	return fmt.Sprintf("%s[%d]", kind, i)
}

func essenceCost(ware []types.Cyberware) float64 {
	var total float64
	for _, c := range ware {
		total += c.Essence + essenceCost(c.Children)
	}
	return total
}
