package wire

// Scanner is a lazy forward iterator over a flattened record. Lookups
// consume the record at most once per restore call: entries passed over
// before a match are parked in a name-to-value cache that later lookups
// drain instead of rescanning from the start.
type Scanner struct {
	data  []byte
	pos   int
	cache map[string]cached
}

type cached struct {
	value    string
	hasValue bool
}

// NewScanner starts a scanner at the given offset. Payloads with a fixed
// head (the device-specific section) pass the offset past it.
func NewScanner(data []byte, pos int) *Scanner {
	return &Scanner{data: data, pos: pos, cache: make(map[string]cached)}
}

// More reports whether undecoded entries remain.
func (s *Scanner) More() bool {
	return s.pos < len(s.data)
}

// Lookup finds the value recorded for name. ok is false when the record
// carries no entry for the name, or carries it with an explicit absent
// value. A cached entry is consumed by the lookup that hits it.
func (s *Scanner) Lookup(name string) (string, bool, error) {
	if c, hit := s.cache[name]; hit {
		delete(s.cache, name)
		return c.value, c.hasValue, nil
	}

	for s.More() {
		entryName, _, next, err := ReadString(s.data, s.pos)
		if err != nil {
			return "", false, err
		}
		value, hasValue, next, err := ReadString(s.data, next)
		if err != nil {
			return "", false, err
		}
		s.pos = next
		if entryName == name {
			return value, hasValue, nil
		}
		s.cache[entryName] = cached{value: value, hasValue: hasValue}
	}

	return "", false, nil
}
