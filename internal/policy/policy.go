// Package policy holds the per-scope restore policy: which keys are
// eligible for backup and restore, how their values are validated, which
// keys are blocked or preserved, and where keys moved between scopes land.
// Policies load from YAML; an embedded default ships with the binary.
package policy

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/lherron/prefstore/internal/store"
	"gopkg.in/yaml.v3"
)

//go:embed default_policy.yaml
var defaultPolicy []byte

// ScopePolicy is the restore policy for one settings scope.
type ScopePolicy struct {
	// Allowlist is the curated, ordered set of names backed up from this
	// scope. Restore processes candidates in this order.
	Allowlist []string `yaml:"allowlist"`
	// LegacyRestore names keys no longer backed up that older payloads may
	// still carry and are allowed to restore.
	LegacyRestore []string `yaml:"legacy_restore"`
	// Validators maps a setting name to a named validator
	// (see ResolveValidator).
	Validators map[string]string `yaml:"validators"`
	// Blocked is the static blocklist: never restored into this scope.
	Blocked []string `yaml:"blocked"`
	// Preserved names keys whose local value survives a restore.
	Preserved []string `yaml:"preserved"`
}

// Policy is the full restore policy across scopes.
type Policy struct {
	System ScopePolicy `yaml:"system"`
	Secure ScopePolicy `yaml:"secure"`
	Global ScopePolicy `yaml:"global"`

	// DeviceSpecific names the secure-scope keys that form the
	// device-bound section of a backup.
	DeviceSpecific []string `yaml:"device_specific"`

	// MovedTo redirects a key to a destination scope during restore,
	// whichever scope's payload it arrives in.
	MovedTo map[string]string `yaml:"moved_to"`
}

// Default returns the embedded policy.
func Default() (*Policy, error) {
	return parse(defaultPolicy)
}

// Load reads a policy file.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return &p, nil
}

func (p *Policy) validate() error {
	for key, dst := range p.MovedTo {
		if _, err := store.ParseScope(dst); err != nil {
			return fmt.Errorf("moved_to[%s]: %w", key, err)
		}
	}
	for _, scope := range []store.Scope{store.ScopeSystem, store.ScopeSecure, store.ScopeGlobal} {
		sp, _ := p.Scope(scope)
		for key, name := range sp.Validators {
			if _, ok := ResolveValidator(name); !ok {
				return fmt.Errorf("%s: unknown validator %q for %s", scope, name, key)
			}
		}
	}
	return nil
}

// Scope returns the policy for one scope.
func (p *Policy) Scope(scope store.Scope) (*ScopePolicy, error) {
	switch scope {
	case store.ScopeSystem:
		return &p.System, nil
	case store.ScopeSecure:
		return &p.Secure, nil
	case store.ScopeGlobal:
		return &p.Global, nil
	}
	return nil, fmt.Errorf("%w: %q", store.ErrUnknownScope, scope)
}

// RestoreCandidates returns the keys considered during a restore of the
// given scope, in allowlist order: the curated allowlist, the
// legacy-restore set, and (for the secure scope) the device-specific set.
func (p *Policy) RestoreCandidates(scope store.Scope) ([]string, error) {
	sp, err := p.Scope(scope)
	if err != nil {
		return nil, err
	}
	candidates := make([]string, 0, len(sp.Allowlist)+len(sp.LegacyRestore)+len(p.DeviceSpecific))
	candidates = append(candidates, sp.Allowlist...)
	candidates = append(candidates, sp.LegacyRestore...)
	if scope == store.ScopeSecure {
		candidates = append(candidates, p.DeviceSpecific...)
	}
	return candidates, nil
}

// Validator resolves the validator registered for a key in this scope.
// ok is false when no validator is registered, which callers must treat as
// a rejection.
func (sp *ScopePolicy) Validator(key string) (Validator, bool) {
	name, ok := sp.Validators[key]
	if !ok {
		return nil, false
	}
	return ResolveValidator(name)
}

// IsBlocked reports whether the key is on this scope's static blocklist.
func (sp *ScopePolicy) IsBlocked(key string) bool {
	for _, b := range sp.Blocked {
		if b == key {
			return true
		}
	}
	return false
}

// PreservedKeys returns the fully-qualified preserved keys for one scope.
func (p *Policy) PreservedKeys(scope store.Scope) (map[string]bool, error) {
	sp, err := p.Scope(scope)
	if err != nil {
		return nil, err
	}
	preserved := make(map[string]bool, len(sp.Preserved))
	for _, name := range sp.Preserved {
		preserved[store.QualifiedKey(scope, name)] = true
	}
	return preserved, nil
}

// AllPreservedKeys returns the union of preserved keys across every scope,
// used when restoring the device-specific section.
func (p *Policy) AllPreservedKeys() map[string]bool {
	preserved := make(map[string]bool)
	for _, scope := range []store.Scope{store.ScopeSystem, store.ScopeSecure, store.ScopeGlobal} {
		scoped, _ := p.PreservedKeys(scope)
		for k := range scoped {
			preserved[k] = true
		}
	}
	return preserved
}

// Destination resolves where a key restores to: the redirection target if
// one is declared, otherwise the scope it arrived in.
func (p *Policy) Destination(source store.Scope, key string) store.Scope {
	if dst, ok := p.MovedTo[key]; ok {
		return store.Scope(dst)
	}
	return source
}
