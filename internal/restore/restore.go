// Package restore reconciles a foreign settings payload against local
// policy, deciding accept, redirect, skip, or reject per key, and commits
// accepted values into the scoped settings store.
package restore

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/lherron/prefstore/internal/backup"
	"github.com/lherron/prefstore/internal/policy"
	"github.com/lherron/prefstore/internal/store"
	"github.com/lherron/prefstore/internal/wire"
	"go.uber.org/zap"
)

// AudioApplier reapplies audio-adjacent settings after the system section
// lands, for values the audio stack caches outside the store.
type AudioApplier interface {
	ApplyAudioSettings() error
}

// DensityApplier pushes a restored forced display density to the window
// manager.
type DensityApplier interface {
	ApplyDensity(density int) error
}

// Options carries per-call restore state, threaded explicitly through the
// call chain rather than held as ambient engine state.
type Options struct {
	// RestoredFromVersion is the software version of the source device.
	RestoredFromVersion int64
	// DynamicBlocklist holds fully-qualified scope/name keys supplied by
	// the caller for this one restore.
	DynamicBlocklist map[string]bool
}

// Engine merges foreign payloads into one settings store.
type Engine struct {
	Store          *store.Store
	Policy         *policy.Policy
	Device         backup.Identity
	CurrentVersion int64
	Sim            backup.SimStore
	Audio          AudioApplier
	Density        DensityApplier
	Log            *zap.Logger
}

// Sections restorable from a source running a newer software version.
// Anything else from a newer source is skipped unread.
var newerSourceSections = map[string]bool{
	backup.SectionSystem: true,
	backup.SectionSecure: true,
	backup.SectionGlobal: true,
}

// RestorePayload walks an incremental backup payload and merges each known
// section. An unreadable entity aborts the whole call; a single key's
// rejection never does.
func (e *Engine) RestorePayload(pr *backup.PayloadReader, opts Options) error {
	log := e.Log.With(zap.String("run", uuid.NewString()), zap.Int("user", e.Store.UserID()))

	for {
		section, _, err := pr.NextHeader()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if opts.RestoredFromVersion > e.CurrentVersion && !newerSourceSections[section] {
			log.Warn("not restoring section from newer source version",
				zap.String("section", section),
				zap.Int64("source_version", opts.RestoredFromVersion))
			if err := pr.SkipData(); err != nil {
				return err
			}
			continue
		}

		switch section {
		case backup.SectionSystem:
			if err := e.restoreScopeEntity(pr, store.ScopeSystem, opts, log); err != nil {
				return err
			}
			if e.Audio != nil {
				if err := e.Audio.ApplyAudioSettings(); err != nil {
					log.Warn("failed to reapply audio settings", zap.Error(err))
				}
			}
		case backup.SectionSecure:
			if err := e.restoreScopeEntity(pr, store.ScopeSecure, opts, log); err != nil {
				return err
			}
		case backup.SectionGlobal:
			if err := e.restoreScopeEntity(pr, store.ScopeGlobal, opts, log); err != nil {
				return err
			}
		case backup.SectionDeviceConfig:
			data, err := pr.ReadData()
			if err != nil {
				return err
			}
			if _, err := e.RestoreDeviceSpecific(data, opts, log); err != nil {
				return err
			}
		case backup.SectionSimSettings:
			data, err := pr.ReadData()
			if err != nil {
				return err
			}
			if e.Sim != nil {
				if err := e.Sim.RestoreSettings(data); err != nil {
					log.Warn("failed to restore sim settings", zap.Error(err))
				}
			}
		default:
			log.Warn("skipping unknown section", zap.String("section", section))
			if err := pr.SkipData(); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) restoreScopeEntity(pr *backup.PayloadReader, scope store.Scope, opts Options, log *zap.Logger) error {
	data, err := pr.ReadData()
	if err != nil {
		return err
	}
	preserved, err := e.Policy.PreservedKeys(scope)
	if err != nil {
		return err
	}
	return e.restoreScope(data, 0, scope, preserved, opts, log)
}

// restoreScope runs the per-key merge for one scope's flattened record.
// Candidates are processed in allowlist order; the record itself is scanned
// forward once, entries passed over feeding a cache shared across keys.
func (e *Engine) restoreScope(data []byte, pos int, scope store.Scope,
	preserved map[string]bool, opts Options, log *zap.Logger) error {

	sp, err := e.Policy.Scope(scope)
	if err != nil {
		return err
	}
	candidates, err := e.Policy.RestoreCandidates(scope)
	if err != nil {
		return err
	}

	scanner := wire.NewScanner(data, pos)

	for _, key := range candidates {
		if sp.IsBlocked(key) {
			log.Info("key removed from restore by static block list", zap.String("key", key))
			continue
		}
		qualified := store.QualifiedKey(scope, key)
		if opts.DynamicBlocklist[qualified] {
			log.Info("key removed from restore by dynamic block list", zap.String("key", key))
			continue
		}

		// navigation_mode alone proceeds past preservation; its value
		// lands on a shadow name below instead of being dropped.
		isPreserved := preserved[qualified]
		if isPreserved && key != store.KeyNavigationMode {
			log.Info("skipping preserved setting", zap.String("key", key))
			continue
		}

		value, ok, err := scanner.Lookup(key)
		if err != nil {
			return fmt.Errorf("failed to read %s record: %w", scope, err)
		}
		if !ok {
			continue
		}

		// Fail-closed: no registered validator rejects the value too.
		validator, registered := sp.Validator(key)
		if !registered || !validator(value) {
			log.Warn("restored value failed validation",
				zap.String("key", key),
				zap.Bool("validator_registered", registered))
			continue
		}

		destination := e.Policy.Destination(scope, key)

		if key == store.KeyNavigationMode {
			// The shadow row marks that the source device had set a
			// navigation mode, whether or not the live key restores.
			if _, err := e.Store.Put(destination, store.KeyNavigationModeRestore, value, true); err != nil {
				return err
			}
			if isPreserved {
				log.Info("skipping preserved setting after shadow write", zap.String("key", key))
				continue
			}
		}

		if _, err := e.Store.Put(destination, key, value, true); err != nil {
			return err
		}
		log.Debug("restored setting",
			zap.String("scope", string(destination)),
			zap.String("key", key))
	}

	return nil
}
