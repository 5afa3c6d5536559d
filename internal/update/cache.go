package update

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const cacheFileName = ".update-check"

// CacheEntry records the outcome of the last applied check so a later
// process can report it. Manifests are not stored. An available update
// may have no ID, so UpdateAvailable is the availability flag.
type CacheEntry struct {
	CheckedAt          time.Time  `json:"checked_at"`
	UpdateAvailable    bool       `json:"update_available"`
	AvailableUpdateID  string     `json:"available_update_id,omitempty"`
	AvailableCreatedAt *time.Time `json:"available_created_at,omitempty"`
	Error              string     `json:"error,omitempty"`
}

// GetCachePath returns the path to the cache file
func GetCachePath(homeDir string) string {
	return filepath.Join(homeDir, cacheFileName)
}

// LoadCache loads the cached check result
func LoadCache(homeDir string) (*CacheEntry, error) {
	data, err := os.ReadFile(GetCachePath(homeDir))
	if err != nil {
		return nil, err
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// SaveCache saves the check result, creating homeDir if needed.
func SaveCache(homeDir string, entry *CacheEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(GetCachePath(homeDir), data, 0o644)
}

// CacheEntryFromInfo summarises a snapshot. It returns nil when no check
// has happened yet.
func CacheEntryFromInfo(info Info) *CacheEntry {
	if info.LastCheckForUpdateTime == nil {
		return nil
	}
	entry := &CacheEntry{CheckedAt: *info.LastCheckForUpdateTime}
	if info.AvailableUpdate != nil {
		entry.UpdateAvailable = true
		entry.AvailableUpdateID = info.AvailableUpdate.UpdateID
		entry.AvailableCreatedAt = info.AvailableUpdate.CreatedAt
	}
	if info.Err != nil {
		entry.Error = info.Err.Error()
	}
	return entry
}
