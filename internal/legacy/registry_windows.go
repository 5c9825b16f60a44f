//go:build windows

package legacy

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/sys/windows/registry"
)

// RegistryPath is the legacy settings key under HKEY_CURRENT_USER.
const RegistryPath = `Software\Chummer5`

// RegistryStore reads the legacy settings from the Windows registry.
type RegistryStore struct {
	root registry.Key
	path string
}

var _ LegacyStoreReader = (*RegistryStore)(nil)

// NewRegistryStore returns a reader for HKCU\Software\Chummer5.
func NewRegistryStore() *RegistryStore {
	return &RegistryStore{root: registry.CURRENT_USER, path: RegistryPath}
}

func (r *RegistryStore) keyPath(subkey string) string {
	return JoinKey(r.path, subkey)
}

// Exists implements LegacyStoreReader.
func (r *RegistryStore) Exists() (bool, error) {
	k, err := registry.OpenKey(r.root, r.path, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", r.path, err)
	}
	k.Close()
	return true, nil
}

// Value implements LegacyStoreReader. DWORD values are returned in decimal.
func (r *RegistryStore) Value(subkey, name string) (string, bool, error) {
	k, err := registry.OpenKey(r.root, r.keyPath(subkey), registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("opening %s: %w", r.keyPath(subkey), err)
	}
	defer k.Close()

	s, _, err := k.GetStringValue(name)
	switch {
	case err == nil:
		return s, true, nil
	case errors.Is(err, registry.ErrNotExist):
		return "", false, nil
	case errors.Is(err, registry.ErrUnexpectedType):
		n, _, err := k.GetIntegerValue(name)
		if err != nil {
			return "", false, fmt.Errorf("reading %s\\%s: %w", r.keyPath(subkey), name, err)
		}
		return strconv.FormatUint(n, 10), true, nil
	default:
		return "", false, fmt.Errorf("reading %s\\%s: %w", r.keyPath(subkey), name, err)
	}
}

// SubKeys implements LegacyStoreReader.
func (r *RegistryStore) SubKeys(subkey string) ([]string, error) {
	k, err := registry.OpenKey(r.root, r.keyPath(subkey), registry.ENUMERATE_SUB_KEYS)
	if errors.Is(err, registry.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", r.keyPath(subkey), err)
	}
	defer k.Close()

	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.keyPath(subkey), err)
	}
	slices.Sort(names)
	return names, nil
}

// Close implements LegacyStoreReader.
func (r *RegistryStore) Close() error {
	return nil
}

// OpenPlatformStore returns the native registry reader. dataDir is unused
// on Windows.
func OpenPlatformStore(dataDir string) LegacyStoreReader {
	return NewRegistryStore()
}
