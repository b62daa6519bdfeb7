package store_test

import (
	"errors"
	"testing"

	"github.com/lherron/prefstore/internal/store"
	"github.com/lherron/prefstore/internal/testutil"
)

func TestParseScope(t *testing.T) {
	for _, valid := range []string{"system", "secure", "global"} {
		if _, err := store.ParseScope(valid); err != nil {
			t.Errorf("ParseScope(%q) failed: %v", valid, err)
		}
	}
	if _, err := store.ParseScope("Settings.System"); !errors.Is(err, store.ErrUnknownScope) {
		t.Errorf("expected ErrUnknownScope, got %v", err)
	}
}

func TestPutGet(t *testing.T) {
	s := testutil.TempStore(t, 0, 1)

	committed, err := s.Put(store.ScopeSystem, "status_bar_clock", "1", true)
	testutil.AssertNoError(t, err)
	if !committed {
		t.Fatal("expected commit")
	}
	testutil.AssertValue(t, s, store.ScopeSystem, "status_bar_clock", "1")

	// Absent is a normal outcome, not an error.
	_, ok, err := s.Get(store.ScopeSystem, "never_set")
	testutil.AssertNoError(t, err)
	if ok {
		t.Fatal("expected absent")
	}
}

func TestPutInsertIfAbsent(t *testing.T) {
	s := testutil.TempStore(t, 0, 1)

	if _, err := s.Put(store.ScopeSecure, "navigation_mode", "2", true); err != nil {
		t.Fatal(err)
	}

	committed, err := s.Put(store.ScopeSecure, "navigation_mode", "0", false)
	testutil.AssertNoError(t, err)
	if committed {
		t.Fatal("insert-if-absent overwrote an existing row")
	}
	testutil.AssertValue(t, s, store.ScopeSecure, "navigation_mode", "2")

	// Last write wins with overwrite.
	if _, err := s.Put(store.ScopeSecure, "navigation_mode", "0", true); err != nil {
		t.Fatal(err)
	}
	testutil.AssertValue(t, s, store.ScopeSecure, "navigation_mode", "0")
}

func TestPutEmptyName(t *testing.T) {
	s := testutil.TempStore(t, 0, 1)
	_, err := s.Put(store.ScopeSystem, "", "x", true)
	testutil.AssertError(t, err)
}

func TestGlobalScopePrimaryOnly(t *testing.T) {
	primary := testutil.TempStore(t, 0, 1)
	if _, err := primary.Put(store.ScopeGlobal, "power_notifications_vibrate", "1", true); err != nil {
		t.Fatalf("global write on primary store failed: %v", err)
	}

	secondary := testutil.TempStore(t, 10, 1)
	if _, err := secondary.Put(store.ScopeGlobal, "power_notifications_vibrate", "1", true); !errors.Is(err, store.ErrUnknownScope) {
		t.Fatalf("expected ErrUnknownScope on non-primary global, got %v", err)
	}
	if _, _, err := secondary.Get(store.ScopeGlobal, "anything"); !errors.Is(err, store.ErrUnknownScope) {
		t.Fatalf("expected ErrUnknownScope on non-primary global, got %v", err)
	}
}

func TestCreateSeedsDefaults(t *testing.T) {
	s := testutil.TempStore(t, 0, 5)

	testutil.AssertValue(t, s, store.ScopeSystem, store.KeyBatteryLightLevel, "100")
	testutil.AssertValue(t, s, store.ScopeSecure, store.KeyLockscreenVisualizer, "1")
	testutil.AssertValue(t, s, store.ScopeGlobal, store.KeyPowerNotificationsVibrate, "1")

	// Gated string default stays out while its gate is off.
	testutil.AssertAbsent(t, s, store.ScopeSystem, store.KeyNotificationPulseCustomValue)

	version, err := s.DB().SchemaVersion()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 5, version)
}

func TestCreateNonPrimarySkipsGlobal(t *testing.T) {
	s := testutil.TempStore(t, 7, 5)
	if _, _, err := s.Get(store.ScopeGlobal, store.KeyPowerNotificationsVibrate); !errors.Is(err, store.ErrUnknownScope) {
		t.Fatalf("expected ErrUnknownScope, got %v", err)
	}
}

func TestMove(t *testing.T) {
	s := testutil.TempStore(t, 0, 1)

	if _, err := s.Put(store.ScopeSystem, "volume_panel_on_left", "1", true); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(store.ScopeSecure, "volume_panel_on_left", "0", true); err != nil {
		t.Fatal(err)
	}

	// Existing destination row wins with ignoreConflicts.
	err := s.Move(store.ScopeSystem, store.ScopeSecure, []string{"volume_panel_on_left"}, true)
	testutil.AssertNoError(t, err)

	testutil.AssertAbsent(t, s, store.ScopeSystem, "volume_panel_on_left")
	testutil.AssertValue(t, s, store.ScopeSecure, "volume_panel_on_left", "0")
}

func TestCursorForwardPass(t *testing.T) {
	s := testutil.TempStore(t, 0, 1)
	keys := []string{"a", "b", "c"}
	for i, k := range keys {
		if _, err := s.Put(store.ScopeSystem, k, string(rune('0'+i)), true); err != nil {
			t.Fatal(err)
		}
	}

	cur, err := s.Rows(store.ScopeSystem)
	testutil.AssertNoError(t, err)
	defer cur.Close()

	var got []string
	for {
		name, _, _, ok, err := cur.Next()
		testutil.AssertNoError(t, err)
		if !ok {
			break
		}
		got = append(got, name)
	}

	// Insertion order, with the seeded defaults first.
	if len(got) < len(keys) {
		t.Fatalf("expected at least %d rows, got %d", len(keys), len(got))
	}
	tail := got[len(got)-len(keys):]
	for i, k := range keys {
		if tail[i] != k {
			t.Errorf("row %d: expected %s, got %s", i, k, tail[i])
		}
	}
}
