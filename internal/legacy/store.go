// Package legacy migrates settings out of the pre-migration key/value
// store. The store is reached through LegacyStoreReader so platforms
// without a native registry can supply another backend.
package legacy

import (
	"slices"
	"strings"
)

// KeySeparator joins subkey path segments, as in a registry path.
const KeySeparator = `\`

// LegacyStoreReader is read-only access to a registry-style store: a tree
// of subkeys, each holding named string values. The root subkey is "".
type LegacyStoreReader interface {
	// Exists reports whether the store exists at all.
	Exists() (bool, error)

	// Value returns a named value under subkey. ok is false when either
	// the subkey or the value is missing.
	Value(subkey, name string) (value string, ok bool, err error)

	// SubKeys returns the sorted names of the immediate children of subkey.
	SubKeys(subkey string) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// JoinKey joins subkey path segments.
func JoinKey(parts ...string) string {
	return strings.Join(slices.DeleteFunc(slices.Clone(parts), func(p string) bool { return p == "" }), KeySeparator)
}

// Entry is one stored value, used to seed stores.
type Entry struct {
	SubKey string `yaml:"subkey"`
	Name   string `yaml:"name"`
	Value  string `yaml:"value"`
}

// MapStore is an in-memory LegacyStoreReader. A nil map means the store
// does not exist.
type MapStore struct {
	values map[string]map[string]string
}

// NewMapStore builds a store from entries. Passing no entries yields an
// existing but empty store; use AbsentStore for a missing one.
func NewMapStore(entries ...Entry) *MapStore {
	m := &MapStore{values: make(map[string]map[string]string)}
	for _, e := range entries {
		if m.values[e.SubKey] == nil {
			m.values[e.SubKey] = make(map[string]string)
		}
		m.values[e.SubKey][e.Name] = e.Value
	}
	return m
}

// AbsentStore returns a store that reports it does not exist.
func AbsentStore() *MapStore {
	return &MapStore{}
}

// Exists implements LegacyStoreReader.
func (m *MapStore) Exists() (bool, error) {
	return m.values != nil, nil
}

// Value implements LegacyStoreReader.
func (m *MapStore) Value(subkey, name string) (string, bool, error) {
	v, ok := m.values[subkey][name]
	return v, ok, nil
}

// SubKeys implements LegacyStoreReader.
func (m *MapStore) SubKeys(subkey string) ([]string, error) {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return childKeys(subkey, keys), nil
}

// Close implements LegacyStoreReader.
func (m *MapStore) Close() error {
	return nil
}

// childKeys returns the sorted, distinct immediate children of parent
// among full subkey paths.
func childKeys(parent string, paths []string) []string {
	prefix := ""
	if parent != "" {
		prefix = parent + KeySeparator
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range paths {
		if p == "" || !strings.HasPrefix(p, prefix) || p == parent {
			continue
		}
		child, _, _ := strings.Cut(strings.TrimPrefix(p, prefix), KeySeparator)
		if child == "" || seen[child] {
			continue
		}
		seen[child] = true
		out = append(out, child)
	}
	slices.Sort(out)
	return out
}
