package restore_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/lherron/prefstore/internal/restore"
	"github.com/lherron/prefstore/internal/store"
	"github.com/lherron/prefstore/internal/testutil"
	"github.com/lherron/prefstore/internal/wire"
)

func legacyPayload(t *testing.T, version int32, blobs ...[]byte) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	testutil.AssertNoError(t, binary.Write(&buf, binary.BigEndian, version))
	for _, blob := range blobs {
		testutil.AssertNoError(t, binary.Write(&buf, binary.BigEndian, int32(len(blob))))
		buf.Write(blob)
	}
	return &buf
}

func TestRestoreFullOldPayloadWithoutGlobal(t *testing.T) {
	s := testutil.TempStore(t, 0, 9)
	e := newEngine(t, s)

	payload := legacyPayload(t, 1,
		wire.Encode([]wire.Pair{pair("status_bar_clock", "0")}),
		wire.Encode([]wire.Pair{pair("lockscreen_visualizer_enabled", "0")}),
	)
	testutil.AssertNoError(t, e.RestoreFull(payload, restore.Options{}))

	testutil.AssertValue(t, s, store.ScopeSystem, "status_bar_clock", "0")
	testutil.AssertValue(t, s, store.ScopeSecure, "lockscreen_visualizer_enabled", "0")
	// Pre-global payloads leave the global scope untouched.
	testutil.AssertValue(t, s, store.ScopeGlobal, "power_notifications_vibrate", "1")
}

func TestRestoreFullWithGlobal(t *testing.T) {
	s := testutil.TempStore(t, 0, 9)
	e := newEngine(t, s)

	payload := legacyPayload(t, restore.FullBackupVersion,
		wire.Encode([]wire.Pair{pair("status_bar_clock", "1")}),
		nil,
		wire.Encode([]wire.Pair{pair("power_notifications_vibrate", "0")}),
	)
	testutil.AssertNoError(t, e.RestoreFull(payload, restore.Options{}))

	testutil.AssertValue(t, s, store.ScopeSystem, "status_bar_clock", "1")
	testutil.AssertValue(t, s, store.ScopeGlobal, "power_notifications_vibrate", "0")
}

func TestRestoreFullRejectsNewerVersion(t *testing.T) {
	s := testutil.TempStore(t, 0, 9)
	e := newEngine(t, s)

	payload := legacyPayload(t, restore.FullBackupVersion+1, nil, nil, nil)
	if err := e.RestoreFull(payload, restore.Options{}); !errors.Is(err, restore.ErrIncompatible) {
		t.Fatalf("expected ErrIncompatible, got %v", err)
	}
}

func TestRestoreFullTruncated(t *testing.T) {
	s := testutil.TempStore(t, 0, 9)
	e := newEngine(t, s)

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, int32(restore.FullBackupVersion))
	binary.Write(&buf, binary.BigEndian, int32(100))
	buf.WriteString("short")

	testutil.AssertError(t, e.RestoreFull(&buf, restore.Options{}))
}

func TestRestoreFullIgnoresPreservation(t *testing.T) {
	s := testutil.TempStore(t, 0, 9)
	e := newEngine(t, s)

	if _, err := s.Put(store.ScopeSecure, store.KeyNavigationMode, "0", true); err != nil {
		t.Fatal(err)
	}

	payload := legacyPayload(t, restore.FullBackupVersion,
		nil,
		wire.Encode([]wire.Pair{pair(store.KeyNavigationMode, "2")}),
		nil,
	)
	testutil.AssertNoError(t, e.RestoreFull(payload, restore.Options{}))

	// Legacy payloads predate preservation: the source value wins, and the
	// shadow row is still written.
	testutil.AssertValue(t, s, store.ScopeSecure, store.KeyNavigationMode, "2")
	testutil.AssertValue(t, s, store.ScopeSecure, store.KeyNavigationModeRestore, "2")
}
