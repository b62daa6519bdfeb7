package restore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/lherron/prefstore/internal/store"
	"go.uber.org/zap"
)

// ErrIncompatible reports a payload this engine cannot accept. It aborts
// only the restore call it applies to.
var ErrIncompatible = errors.New("incompatible backup payload")

// Legacy full-backup payload versions. The format froze at version 7; only
// the presence of the global blob varies with the version read.
const (
	fullBackupAddedGlobal         = 2
	fullBackupAddedDeviceSpecific = 7

	// FullBackupVersion is the newest legacy payload this engine accepts.
	FullBackupVersion = fullBackupAddedDeviceSpecific
)

// RestoreFull merges a legacy full-backup payload: an int32 version
// followed by length-prefixed flattened records in fixed order (system,
// secure, then global for sufficiently new payloads). Legacy payloads
// carry no preservation or dynamic blocking.
func (e *Engine) RestoreFull(r io.Reader, opts Options) error {
	log := e.Log.With(zap.String("run", uuid.NewString()), zap.Int("user", e.Store.UserID()))

	var version int32
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return fmt.Errorf("failed to read full-backup version: %w", err)
	}
	if version > FullBackupVersion {
		return fmt.Errorf("%w: full-backup schema version %d", ErrIncompatible, version)
	}

	scopes := []store.Scope{store.ScopeSystem, store.ScopeSecure}
	if version >= fullBackupAddedGlobal {
		scopes = append(scopes, store.ScopeGlobal)
	}

	legacyOpts := Options{RestoredFromVersion: opts.RestoredFromVersion}
	for _, scope := range scopes {
		var nBytes int32
		if err := binary.Read(r, binary.BigEndian, &nBytes); err != nil {
			return fmt.Errorf("failed to read %s blob size: %w", scope, err)
		}
		if nBytes < 0 {
			return fmt.Errorf("invalid %s blob size %d", scope, nBytes)
		}
		blob := make([]byte, nBytes)
		if _, err := io.ReadFull(r, blob); err != nil {
			return fmt.Errorf("failed to read %s blob: %w", scope, err)
		}
		if err := e.restoreScope(blob, 0, scope, nil, legacyOpts, log); err != nil {
			return err
		}
	}
	return nil
}
