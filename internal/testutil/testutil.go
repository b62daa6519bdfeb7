package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lherron/prefstore/internal/db"
	"github.com/lherron/prefstore/internal/store"
)

// Resources is the default seed used by test stores.
func Resources() store.StaticResources {
	return store.StaticResources{
		Bools: map[string]bool{
			"def_notification_pulse_custom_enable": false,
			"def_swap_volume_keys_on_rotation":     false,
			"def_lockscreen_visualizer":            true,
			"def_volume_panel_on_left":             false,
			"def_power_notifications_vibrate":      true,
		},
		Ints: map[string]int{
			"def_force_show_navbar":                 0,
			"def_qs_quick_pulldown":                 0,
			"def_battery_brightness_level":          100,
			"def_battery_brightness_level_zen":      25,
			"def_notification_brightness_level":     100,
			"def_notification_brightness_level_zen": 25,
			"def_battery_style":                     0,
			"def_clock_position":                    2,
		},
		Strings: map[string]string{
			"def_power_notifications_ringtone": "content://settings/system/notification_sound",
		},
	}
}

// TempDB creates a temporary settings database for testing
func TempDB(t *testing.T, userID int) *db.DB {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Open(db.PathForUser(tmpDir, userID))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		database.Close()
	})

	return database
}

// TempStore creates a temporary settings store, created and seeded at the
// given schema version.
func TempStore(t *testing.T, userID, targetVersion int) *store.Store {
	t.Helper()

	s := store.New(TempDB(t, userID), userID)
	if err := s.Create(Resources(), targetVersion); err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	return s
}

// WriteFile writes content to a file in a temporary directory
func WriteFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

// AssertNoError asserts that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

// AssertError asserts that an error is not nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

// AssertEqual asserts that two values are equal
func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if expected != actual {
		t.Fatalf("Expected %v, got %v", expected, actual)
	}
}

// AssertValue asserts that a setting is present with the given value.
func AssertValue(t *testing.T, s *store.Store, scope store.Scope, name, expected string) {
	t.Helper()
	value, ok, err := s.Get(scope, name)
	if err != nil {
		t.Fatalf("Failed to read %s/%s: %v", scope, name, err)
	}
	if !ok {
		t.Fatalf("Expected %s/%s to be set", scope, name)
	}
	if value != expected {
		t.Fatalf("Expected %s/%s = %q, got %q", scope, name, expected, value)
	}
}

// AssertAbsent asserts that a setting is not present.
func AssertAbsent(t *testing.T, s *store.Store, scope store.Scope, name string) {
	t.Helper()
	value, ok, err := s.Get(scope, name)
	if err != nil {
		t.Fatalf("Failed to read %s/%s: %v", scope, name, err)
	}
	if ok {
		t.Fatalf("Expected %s/%s to be absent, got %q", scope, name, value)
	}
}
