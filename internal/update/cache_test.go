package update

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetCachePath(t *testing.T) {
	tests := []struct {
		name    string
		homeDir string
		want    string
	}{
		{
			name:    "unix path",
			homeDir: "/home/user/.push-ota",
			want:    "/home/user/.push-ota/.update-check",
		},
		{
			name:    "relative path",
			homeDir: ".",
			want:    filepath.Join(".", ".update-check"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetCachePath(tt.homeDir)
			if got != tt.want {
				t.Errorf("GetCachePath() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSaveAndLoadCache(t *testing.T) {
	homeDir := t.TempDir()
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	original := &CacheEntry{
		CheckedAt:          time.Now().Truncate(time.Second),
		UpdateAvailable:    true,
		AvailableUpdateID:  "0000-2222",
		AvailableCreatedAt: &created,
	}

	if err := SaveCache(homeDir, original); err != nil {
		t.Fatalf("SaveCache() error = %v", err)
	}

	loaded, err := LoadCache(homeDir)
	if err != nil {
		t.Fatalf("LoadCache() error = %v", err)
	}

	if !loaded.CheckedAt.Equal(original.CheckedAt) {
		t.Errorf("CheckedAt = %v, want %v", loaded.CheckedAt, original.CheckedAt)
	}
	if !loaded.UpdateAvailable {
		t.Error("UpdateAvailable = false, want true")
	}
	if loaded.AvailableUpdateID != "0000-2222" {
		t.Errorf("AvailableUpdateID = %q, want %q", loaded.AvailableUpdateID, "0000-2222")
	}
	if loaded.AvailableCreatedAt == nil || !loaded.AvailableCreatedAt.Equal(created) {
		t.Errorf("AvailableCreatedAt = %v, want %v", loaded.AvailableCreatedAt, created)
	}
	if loaded.Error != "" {
		t.Errorf("Error = %q, want empty", loaded.Error)
	}
}

func TestSaveCache_CreatesHomeDir(t *testing.T) {
	homeDir := filepath.Join(t.TempDir(), "nested", "home")

	if err := SaveCache(homeDir, &CacheEntry{CheckedAt: time.Now()}); err != nil {
		t.Fatalf("SaveCache() error = %v", err)
	}
	if _, err := os.Stat(GetCachePath(homeDir)); err != nil {
		t.Fatalf("cache file not created: %v", err)
	}
}

func TestLoadCache_NotExists(t *testing.T) {
	_, err := LoadCache(t.TempDir())
	if err == nil {
		t.Fatal("LoadCache() expected error, got nil")
	}
	if !os.IsNotExist(err) {
		t.Errorf("LoadCache() error type = %T, want os.PathError", err)
	}
}

func TestLoadCache_InvalidJSON(t *testing.T) {
	homeDir := t.TempDir()
	if err := os.WriteFile(GetCachePath(homeDir), []byte("invalid json {"), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := LoadCache(homeDir); err == nil {
		t.Fatal("LoadCache() expected error for invalid JSON, got nil")
	}
}

func TestCacheEntryFromInfo(t *testing.T) {
	checked := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	created := time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		info          Info
		wantNil       bool
		wantAvailable bool
		wantID        string
		wantErr       string
	}{
		{
			name:    "never checked",
			info:    Info{},
			wantNil: true,
		},
		{
			name: "no update",
			info: Info{LastCheckForUpdateTime: &checked},
		},
		{
			name: "update available",
			info: Info{
				LastCheckForUpdateTime: &checked,
				AvailableUpdate:        &AvailableUpdate{UpdateID: "abc", CreatedAt: &created},
			},
			wantAvailable: true,
			wantID:        "abc",
		},
		{
			name: "update available without id",
			info: Info{
				LastCheckForUpdateTime: &checked,
				AvailableUpdate:        &AvailableUpdate{CreatedAt: &created},
			},
			wantAvailable: true,
		},
		{
			name:    "check failed",
			info:    Info{LastCheckForUpdateTime: &checked, Err: errMock},
			wantErr: "mock error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CacheEntryFromInfo(tt.info)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("CacheEntryFromInfo() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("CacheEntryFromInfo() = nil")
			}
			if !got.CheckedAt.Equal(checked) {
				t.Errorf("CheckedAt = %v, want %v", got.CheckedAt, checked)
			}
			if got.UpdateAvailable != tt.wantAvailable {
				t.Errorf("UpdateAvailable = %v, want %v", got.UpdateAvailable, tt.wantAvailable)
			}
			if got.AvailableUpdateID != tt.wantID {
				t.Errorf("AvailableUpdateID = %q, want %q", got.AvailableUpdateID, tt.wantID)
			}
			if got.Error != tt.wantErr {
				t.Errorf("Error = %q, want %q", got.Error, tt.wantErr)
			}
		})
	}
}
