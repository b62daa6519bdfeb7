package backup

import (
	"fmt"
	"hash/crc32"
	"io"

	"github.com/google/uuid"
	"github.com/lherron/prefstore/internal/policy"
	"github.com/lherron/prefstore/internal/store"
	"go.uber.org/zap"
)

// SimStore hands sim-bound settings to and from the telephony stack. Stores
// without telephony use a nil SimStore and the section stays empty.
type SimStore interface {
	SettingsForBackup() ([]byte, error)
	RestoreSettings(data []byte) error
}

// Agent produces incremental backups of one settings store.
type Agent struct {
	Store     *store.Store
	Policy    *policy.Policy
	Device    Identity
	Sim       SimStore
	Transform Transform
	Log       *zap.Logger
}

// Backup extracts every section, writes only the ones whose checksum
// changed since the ledger recorded in oldState, and writes the updated
// ledger to newState. The ledger is written last, after all sections were
// produced, so a failed run never leaves it half-updated.
func (a *Agent) Backup(oldState io.Reader, payload io.Writer, newState io.Writer) error {
	log := a.Log.With(zap.String("run", uuid.NewString()), zap.Int("user", a.Store.UserID()))

	systemData, err := a.extractScope(store.ScopeSystem)
	if err != nil {
		return err
	}
	secureData, err := a.extractScope(store.ScopeSecure)
	if err != nil {
		return err
	}
	globalData, err := a.extractGlobal()
	if err != nil {
		return err
	}
	deviceData, err := a.deviceSpecificSection()
	if err != nil {
		return err
	}
	simData, err := a.simSection()
	if err != nil {
		return err
	}

	checksums, err := ReadLedger(oldState)
	if err != nil {
		return err
	}

	out := NewPayloadWriter(payload)
	sections := []struct {
		slot int
		id   string
		data []byte
	}{
		{SlotSystem, SectionSystem, systemData},
		{SlotSecure, SectionSecure, secureData},
		{SlotGlobal, SectionGlobal, globalData},
		{SlotDeviceConfig, SectionDeviceConfig, deviceData},
		{SlotSimSettings, SectionSimSettings, simData},
	}
	for _, s := range sections {
		sum, err := WriteIfChanged(checksums[s.slot], s.id, s.data, out)
		if err != nil {
			return err
		}
		if sum != checksums[s.slot] {
			log.Info("section changed", zap.String("section", s.id), zap.Int("bytes", len(s.data)))
		}
		checksums[s.slot] = sum
	}

	return WriteLedger(newState, checksums)
}

// WriteIfChanged computes the CRC32 of the section bytes and, when it
// differs from the previous run's checksum, appends the section to the
// payload. An unchanged section is omitted entirely.
func WriteIfChanged(oldChecksum int64, sectionID string, data []byte, out *PayloadWriter) (int64, error) {
	newChecksum := int64(crc32.ChecksumIEEE(data))
	if oldChecksum == newChecksum {
		return oldChecksum, nil
	}
	if err := out.WriteEntity(sectionID, data); err != nil {
		return oldChecksum, err
	}
	return newChecksum, nil
}

func (a *Agent) extractScope(scope store.Scope) ([]byte, error) {
	sp, err := a.Policy.Scope(scope)
	if err != nil {
		return nil, err
	}
	return a.extract(scope, sp.Allowlist)
}

// extractGlobal returns an empty section on non-primary stores, where the
// global table does not exist.
func (a *Agent) extractGlobal() ([]byte, error) {
	if !a.Store.Primary() {
		return nil, nil
	}
	sp, err := a.Policy.Scope(store.ScopeGlobal)
	if err != nil {
		return nil, err
	}
	return a.extract(store.ScopeGlobal, sp.Allowlist)
}

// deviceSpecificSection is the secure-scope device-bound keys behind the
// identity head.
func (a *Agent) deviceSpecificSection() ([]byte, error) {
	body, err := a.extract(store.ScopeSecure, a.Policy.DeviceSpecific)
	if err != nil {
		return nil, err
	}
	return append(AppendDeviceHeader(nil, a.Device), body...), nil
}

func (a *Agent) simSection() ([]byte, error) {
	if a.Sim == nil {
		return nil, nil
	}
	data, err := a.Sim.SettingsForBackup()
	if err != nil {
		return nil, fmt.Errorf("failed to collect sim settings: %w", err)
	}
	return data, nil
}

func (a *Agent) extract(scope store.Scope, keys []string) ([]byte, error) {
	cur, err := a.Store.Rows(scope)
	if err != nil {
		return nil, err
	}
	defer cur.Close()
	return ExtractSection(cur, keys, a.Transform)
}
