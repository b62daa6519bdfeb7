package backup

import (
	"fmt"

	"github.com/lherron/prefstore/internal/wire"
)

// Cursor is a single forward pass over a scope's stored rows.
// store.Cursor satisfies it.
type Cursor interface {
	Next() (name, value string, hasValue, ok bool, err error)
}

// Transform is an optional per-key hook applied to a value before it is
// encoded, for settings whose stored form is not their portable form.
type Transform func(name, value string) string

type extractEntry struct {
	value    string
	hasValue bool
}

// ExtractSection flattens the current values of the given keys, in list
// order, into one record. The scope's rows are scanned forward exactly once:
// rows passed over before a key matches are parked in a cache that later
// keys drain. Keys with no stored row are skipped.
func ExtractSection(cur Cursor, keys []string, transform Transform) ([]byte, error) {
	cache := make(map[string]extractEntry)
	exhausted := false

	var out []byte
	for _, key := range keys {
		entry, found := cache[key]
		if found {
			delete(cache, key)
		} else {
			for !exhausted {
				name, value, hasValue, ok, err := cur.Next()
				if err != nil {
					return nil, fmt.Errorf("failed to extract section: %w", err)
				}
				if !ok {
					exhausted = true
					break
				}
				if name == key {
					entry = extractEntry{value: value, hasValue: hasValue}
					found = true
					break
				}
				cache[name] = extractEntry{value: value, hasValue: hasValue}
			}
		}

		if !found {
			continue
		}

		if entry.hasValue && transform != nil {
			entry.value = transform(key, entry.value)
		}

		out = wire.AppendString(out, key, true)
		out = wire.AppendString(out, entry.value, entry.hasValue)
	}

	return out, nil
}
