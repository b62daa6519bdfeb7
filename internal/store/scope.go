package store

import (
	"errors"
	"fmt"
)

// Scope identifies one of the three independent settings namespaces.
type Scope string

const (
	ScopeSystem Scope = "system"
	ScopeSecure Scope = "secure"
	ScopeGlobal Scope = "global"
)

// ErrUnknownScope is returned for scope identifiers outside the three known
// namespaces. This is a programmer error, never a retryable condition.
var ErrUnknownScope = errors.New("unknown settings scope")

// ParseScope validates a scope identifier.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeSystem, ScopeSecure, ScopeGlobal:
		return Scope(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, s)
}

// QualifiedKey returns the fully-qualified form of a setting name, used to
// key blocklists and preserved-key sets that span scopes.
func QualifiedKey(scope Scope, name string) string {
	return string(scope) + "/" + name
}
