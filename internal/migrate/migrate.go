// Package migrate walks a settings store from its persisted schema version
// to the target version through an ordered, append-only chain of
// version-transition steps. Each step runs at most once per store lifetime
// and is independently transactional; a step body failure is logged and
// never prevents later steps from attempting to run.
package migrate

import (
	"database/sql"
	"fmt"

	"github.com/lherron/prefstore/internal/db"
	"github.com/lherron/prefstore/internal/store"
	"go.uber.org/zap"
)

// TargetVersion is the schema version the running software declares.
// *** Append a step to chain() any time this is bumped.
const TargetVersion = 9

// Platform reads settings held outside this store (the legacy host-global
// namespace several early steps import from). Absent values are a normal
// outcome; callers substitute their declared default.
type Platform interface {
	GlobalInt(name string) (int, bool, error)
	PutGlobalInt(name string, value int) error
}

// NetworkAllowlister recomputes the restricted-network allowlist from the
// installed-package sets of all users. It is fallible I/O: the step that
// calls it logs failures and moves on.
type NetworkAllowlister interface {
	RecomputeAllowedUIDs() error
}

// Env is everything a step body may touch.
type Env struct {
	Store    *store.Store
	Res      store.Resources
	Platform Platform
	Net      NetworkAllowlister
	Log      *zap.Logger
}

// Step advances a store to the version it is numbered with. PrimaryOnly
// steps skip their body on non-primary stores but still advance the
// version. A shipped step body must never change; retire one by making it
// a no-op, never by deleting it from the chain.
type Step struct {
	To          int
	PrimaryOnly bool
	Run         func(env Env, tx *sql.Tx) error
}

// Engine applies the transition chain.
type Engine struct {
	log *zap.Logger
}

// New creates a migration engine.
func New(log *zap.Logger) *Engine {
	return &Engine{log: log}
}

// Upgrade walks the chain from the store's persisted version up to target.
// Steps already reflected in the persisted version are never re-run. It
// returns an error only when the version state itself cannot be read or
// advanced; step body failures are contained.
func (e *Engine) Upgrade(env Env, target int) error {
	current, err := env.Store.DB().SchemaVersion()
	if err != nil {
		return err
	}
	if env.Log == nil {
		env.Log = e.log
	}

	for _, step := range chain() {
		if step.To <= current || step.To > target {
			continue
		}
		if err := e.apply(env, step); err != nil {
			return err
		}
		current = step.To
	}

	// Unreachable by construction; a mismatch means a hole in the
	// transition table, not a runtime fault to recover from.
	final, err := env.Store.DB().SchemaVersion()
	if err != nil {
		return err
	}
	if final != target {
		e.log.Error("schema version mismatch after migration chain",
			zap.Int("observed", final),
			zap.Int("target", target),
			zap.Int("user", env.Store.UserID()))
	}
	return nil
}

// apply runs one step in its own transaction. A body failure rolls the body
// back but still advances the version in a follow-up transaction, so the
// step is never retried on a later run.
func (e *Engine) apply(env Env, step Step) error {
	tx, err := env.Store.DB().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for step %d: %w", step.To, err)
	}

	var bodyErr error
	if step.PrimaryOnly && !env.Store.Primary() {
		e.log.Debug("skipping primary-only step", zap.Int("to", step.To))
	} else {
		bodyErr = step.Run(env, tx)
	}

	if bodyErr == nil {
		if err := db.SetSchemaVersion(tx, step.To); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit step %d: %w", step.To, err)
		}
		return nil
	}

	tx.Rollback()
	e.log.Warn("migration step failed; advancing version without its changes",
		zap.Int("to", step.To),
		zap.Error(bodyErr))

	adv, err := env.Store.DB().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for step %d: %w", step.To, err)
	}
	if err := db.SetSchemaVersion(adv, step.To); err != nil {
		adv.Rollback()
		return err
	}
	if err := adv.Commit(); err != nil {
		return fmt.Errorf("failed to advance version past step %d: %w", step.To, err)
	}
	return nil
}
