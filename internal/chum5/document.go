package chum5

import "encoding/xml"

// --- XML structures (.chum5 document) ---
//
// Numeric and boolean fields are decoded as text and converted afterwards
// so that locale variants from older writers ("1,5", "True") are accepted
// and bad values are reported with the record they belong to. Pointer
// fields distinguish a missing element from an empty one.

type xmlCharacter struct {
	XMLName     xml.Name `xml:"character"`
	AppVersion  string   `xml:"appversion"`
	GameEdition string   `xml:"gameedition"`
	Settings    string   `xml:"settings"`
	GUID        string   `xml:"guid"`
	Name        string   `xml:"name"`
	Alias       string   `xml:"alias"`
	Player      string   `xml:"playername"`
	Metatype    string   `xml:"metatype"`
	Metavariant string   `xml:"metavariant"`
	BuildMethod string   `xml:"buildmethod"`
	Created     string   `xml:"created"`
	Karma       string   `xml:"karma"`
	TotalKarma  string   `xml:"totalkarma"`
	Nuyen       string   `xml:"nuyen"`
	Essence     *string  `xml:"essence"`

	Sources      *xmlSources      `xml:"sources"`
	Attributes   []xmlAttribute   `xml:"attributes>attribute"`
	Skills       []xmlSkill       `xml:"skills>skill"`
	Qualities    []xmlQuality     `xml:"qualities>quality"`
	Locations    []xmlLocation    `xml:"locations>location"`
	Gear         []xmlGear        `xml:"gears>gear"`
	Cyberware    []xmlCyberware   `xml:"cyberwares>cyberware"`
	Weapons      []xmlWeapon      `xml:"weapons>weapon"`
	Spells       []xmlSpell       `xml:"spells>spell"`
	Contacts     []xmlContact     `xml:"contacts>contact"`
	Improvements []xmlImprovement `xml:"improvements>improvement"`
}

type xmlSources struct {
	Source []string `xml:"source"`
}

type xmlAttribute struct {
	Name           string  `xml:"name"`
	MetatypeMin    string  `xml:"metatypemin"`
	MetatypeMax    string  `xml:"metatypemax"`
	MetatypeAugMax string  `xml:"metatypeaugmax"`
	Base           *string `xml:"base"`
	Karma          string  `xml:"karma"`
	Value          *string `xml:"value"` // written before base/karma were split
}

type xmlSkill struct {
	GUID      string    `xml:"guid"`
	SUID      string    `xml:"suid"`
	Name      string    `xml:"name"`
	Knowledge string    `xml:"isknowledge"`
	Base      string    `xml:"base"`
	Karma     string    `xml:"karma"`
	Specs     []xmlSpec `xml:"specs>spec"`
}

type xmlSpec struct {
	Name string `xml:"name"`
}

type xmlQuality struct {
	GUID   string `xml:"guid"`
	Name   string `xml:"name"`
	Type   string `xml:"qualitytype"`
	Karma  string `xml:"bp"`
	Source string `xml:"source"`
	Page   string `xml:"page"`
	Extra  string `xml:"extra"`
}

type xmlLocation struct {
	GUID string `xml:"guid"`
	Name string `xml:"name"`
}

type xmlGear struct {
	GUID     string    `xml:"guid"`
	Name     string    `xml:"name"`
	Category string    `xml:"category"`
	Rating   string    `xml:"rating"`
	Quantity string    `xml:"qty"`
	Source   string    `xml:"source"`
	Page     string    `xml:"page"`
	Location string    `xml:"location"`
	Equipped string    `xml:"equipped"`
	Children []xmlGear `xml:"children>gear"`
}

type xmlCyberware struct {
	GUID     string         `xml:"guid"`
	Name     string         `xml:"name"`
	Category string         `xml:"category"`
	Grade    string         `xml:"grade"`
	Rating   string         `xml:"rating"`
	Essence  string         `xml:"ess"`
	Source   string         `xml:"source"`
	Page     string         `xml:"page"`
	Children []xmlCyberware `xml:"children>cyberware"`
}

type xmlWeapon struct {
	GUID     string `xml:"guid"`
	Name     string `xml:"name"`
	Category string `xml:"category"`
	Source   string `xml:"source"`
	Page     string `xml:"page"`
	ParentID string `xml:"parentid"`
}

type xmlSpell struct {
	GUID     string `xml:"guid"`
	Name     string `xml:"name"`
	Category string `xml:"category"`
	Source   string `xml:"source"`
	Page     string `xml:"page"`
	Extra    string `xml:"extra"`
}

type xmlContact struct {
	GUID       string `xml:"guid"`
	Name       string `xml:"name"`
	Role       string `xml:"role"`
	Connection string `xml:"connection"`
	Loyalty    string `xml:"loyalty"`
	Type       string `xml:"type"`
}

type xmlImprovement struct {
	SourceName   string `xml:"sourcename"`
	ImprovedName string `xml:"improvedname"`
	Type         string `xml:"improvementtype"`
	Value        string `xml:"val"`
	Enabled      string `xml:"enabled"`
}
