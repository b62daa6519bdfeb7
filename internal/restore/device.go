package restore

import (
	"fmt"
	"strconv"

	"github.com/lherron/prefstore/internal/backup"
	"github.com/lherron/prefstore/internal/store"
	"github.com/lherron/prefstore/internal/wire"
	"go.uber.org/zap"
)

// RestoreDeviceSpecific validates the origin of a device-bound payload and,
// when acceptable, merges its body into the secure scope. It reports false
// with no error when the gate rejects the payload; zero keys restore in
// that case. After an accepted restore the display density is reapplied
// only if the restored value differs from the value active before.
func (e *Engine) RestoreDeviceSpecific(data []byte, opts Options, log *zap.Logger) (bool, error) {
	pos, ok, err := e.isSourceAcceptable(data, log)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	previousDensity, hadDensity, err := e.Store.Get(store.ScopeSecure, store.KeyDisplayDensityForced)
	if err != nil {
		return false, err
	}

	// Device-bound keys live in the secure scope, but preservation spans
	// every scope here since a redirected key may land elsewhere.
	if err := e.restoreScope(data, pos, store.ScopeSecure, e.Policy.AllPreservedKeys(), opts, log); err != nil {
		return false, err
	}

	if err := e.applyDensityIfChanged(previousDensity, hadDensity, log); err != nil {
		return false, err
	}
	return true, nil
}

// isSourceAcceptable decodes the fixed head {int32 version, manufacturer,
// product} and requires a supported version plus an exact byte match on
// both identifiers.
func (e *Engine) isSourceAcceptable(data []byte, log *zap.Logger) (int, bool, error) {
	version, pos, err := wire.ReadInt(data, 0)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read device-specific head: %w", err)
	}
	if version > backup.DeviceSpecificVersion {
		log.Warn("unable to restore device-specific settings; backup is too new",
			zap.Int("version", version))
		return 0, false, nil
	}

	manufacturer, _, pos, err := wire.ReadString(data, pos)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read device-specific head: %w", err)
	}
	if manufacturer != e.Device.Manufacturer {
		log.Warn("unable to restore device-specific settings; manufacturer mismatch",
			zap.String("local", e.Device.Manufacturer),
			zap.String("source", manufacturer))
		return 0, false, nil
	}

	product, _, pos, err := wire.ReadString(data, pos)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read device-specific head: %w", err)
	}
	if product != e.Device.Product {
		log.Warn("unable to restore device-specific settings; product mismatch",
			zap.String("local", e.Device.Product),
			zap.String("source", product))
		return 0, false, nil
	}

	return pos, true, nil
}

// applyDensityIfChanged fires the density side effect only when the
// restored value actually differs from the pre-restore value. No stored
// density means no change to perform.
func (e *Engine) applyDensityIfChanged(previous string, hadPrevious bool, log *zap.Logger) error {
	if e.Density == nil {
		return nil
	}

	current, ok, err := e.Store.Get(store.ScopeSecure, store.KeyDisplayDensityForced)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if hadPrevious && previous == current {
		return nil
	}

	density, err := strconv.Atoi(current)
	if err != nil {
		log.Warn("restored display density is not numeric", zap.String("value", current))
		return nil
	}
	if err := e.Density.ApplyDensity(density); err != nil {
		log.Warn("failed to apply restored display density", zap.Error(err))
	}
	return nil
}
