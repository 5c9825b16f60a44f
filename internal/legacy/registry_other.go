//go:build !windows

package legacy

import "path/filepath"

// OpenPlatformStore returns the registry-equivalent SQLite file in dataDir.
func OpenPlatformStore(dataDir string) LegacyStoreReader {
	return NewSQLiteStore(filepath.Join(dataDir, DefaultSQLiteFileName))
}
