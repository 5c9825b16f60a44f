// Package types defines the Settings value, the character sheet model, and
// the standard errors shared by the settings codec, the legacy importer and
// the character loader.
package types
