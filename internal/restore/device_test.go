package restore_test

import (
	"testing"

	"github.com/lherron/prefstore/internal/backup"
	"github.com/lherron/prefstore/internal/restore"
	"github.com/lherron/prefstore/internal/store"
	"github.com/lherron/prefstore/internal/testutil"
	"github.com/lherron/prefstore/internal/wire"
	"go.uber.org/zap"
)

func devicePayload(id backup.Identity, pairs ...wire.Pair) []byte {
	data := backup.AppendDeviceHeader(nil, id)
	return append(data, wire.Encode(pairs)...)
}

func TestDeviceRestoreSameDevice(t *testing.T) {
	s := testutil.TempStore(t, 0, 9)
	e := newEngine(t, s)
	density := &fakeDensity{}
	e.Density = density

	data := devicePayload(localDevice, pair(store.KeyDisplayDensityForced, "320"))
	ok, err := e.RestoreDeviceSpecific(data, restore.Options{}, zap.NewNop())
	testutil.AssertNoError(t, err)
	if !ok {
		t.Fatal("expected matching device to be accepted")
	}

	testutil.AssertValue(t, s, store.ScopeSecure, store.KeyDisplayDensityForced, "320")
	if len(density.applied) != 1 || density.applied[0] != 320 {
		t.Fatalf("expected density 320 applied once, got %v", density.applied)
	}
}

func TestDeviceRestoreRejectsMismatch(t *testing.T) {
	cases := map[string]backup.Identity{
		"manufacturer": {Manufacturer: "other", Product: "gizmo"},
		"product":      {Manufacturer: "acme", Product: "widget"},
	}
	for name, id := range cases {
		t.Run(name, func(t *testing.T) {
			s := testutil.TempStore(t, 0, 9)
			e := newEngine(t, s)

			data := devicePayload(id, pair(store.KeyDisplayDensityForced, "320"))
			ok, err := e.RestoreDeviceSpecific(data, restore.Options{}, zap.NewNop())
			testutil.AssertNoError(t, err)
			if ok {
				t.Fatal("expected foreign device to be rejected")
			}
			// Rejection means zero keys, not some keys.
			testutil.AssertAbsent(t, s, store.ScopeSecure, store.KeyDisplayDensityForced)
		})
	}
}

func TestDeviceRestoreRejectsNewerFormat(t *testing.T) {
	s := testutil.TempStore(t, 0, 9)
	e := newEngine(t, s)

	data := wire.AppendInt(nil, backup.DeviceSpecificVersion+1)
	data = wire.AppendString(data, localDevice.Manufacturer, true)
	data = wire.AppendString(data, localDevice.Product, true)
	data = append(data, wire.Encode([]wire.Pair{pair(store.KeyDisplayDensityForced, "320")})...)

	ok, err := e.RestoreDeviceSpecific(data, restore.Options{}, zap.NewNop())
	testutil.AssertNoError(t, err)
	if ok {
		t.Fatal("expected newer format version to be rejected")
	}
	testutil.AssertAbsent(t, s, store.ScopeSecure, store.KeyDisplayDensityForced)
}

func TestDeviceRestoreTruncatedHead(t *testing.T) {
	s := testutil.TempStore(t, 0, 9)
	e := newEngine(t, s)

	if _, err := e.RestoreDeviceSpecific([]byte{0, 0}, restore.Options{}, zap.NewNop()); err == nil {
		t.Fatal("expected truncated head to error")
	}
}

func TestDeviceRestoreDensityUnchangedNotReapplied(t *testing.T) {
	s := testutil.TempStore(t, 0, 9)
	e := newEngine(t, s)
	density := &fakeDensity{}
	e.Density = density

	if _, err := s.Put(store.ScopeSecure, store.KeyDisplayDensityForced, "320", true); err != nil {
		t.Fatal(err)
	}

	data := devicePayload(localDevice, pair(store.KeyDisplayDensityForced, "320"))
	ok, err := e.RestoreDeviceSpecific(data, restore.Options{}, zap.NewNop())
	testutil.AssertNoError(t, err)
	if !ok {
		t.Fatal("expected matching device to be accepted")
	}
	if len(density.applied) != 0 {
		t.Fatalf("density reapplied without a change: %v", density.applied)
	}
}

func TestDeviceRestoreHonorsPreservation(t *testing.T) {
	s := testutil.TempStore(t, 0, 9)
	e := newEngine(t, s)

	if _, err := s.Put(store.ScopeSecure, store.KeyNavigationMode, "0", true); err != nil {
		t.Fatal(err)
	}

	// The device-bound body shares the secure candidate walk, so a
	// preserved key carried there still keeps its local value.
	data := devicePayload(localDevice, pair(store.KeyNavigationMode, "2"))
	ok, err := e.RestoreDeviceSpecific(data, restore.Options{}, zap.NewNop())
	testutil.AssertNoError(t, err)
	if !ok {
		t.Fatal("expected matching device to be accepted")
	}
	testutil.AssertValue(t, s, store.ScopeSecure, store.KeyNavigationMode, "0")
	testutil.AssertValue(t, s, store.ScopeSecure, store.KeyNavigationModeRestore, "2")
}
