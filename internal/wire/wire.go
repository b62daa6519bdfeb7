// Package wire implements the flattened record encoding used as the backup
// transport unit: repeated {int32 length, bytes} pairs in big-endian order,
// alternating name then value, with -1 marking an absent value.
package wire

import (
	"errors"
	"fmt"
)

// NullSize is the reserved length marking an absent name or value.
const NullSize = -1

const intSize = 4

// ErrTruncated reports a record that ends mid-entry. It aborts the whole
// decode; there is no partial recovery.
var ErrTruncated = errors.New("truncated flattened record")

// Pair is one decoded setting entry. HasValue distinguishes an explicit
// absent value from an empty string.
type Pair struct {
	Name     string
	Value    string
	HasValue bool
}

// AppendInt appends a big-endian int32.
func AppendInt(out []byte, v int) []byte {
	return append(out,
		byte(v>>24),
		byte(v>>16),
		byte(v>>8),
		byte(v))
}

// AppendString appends a length-prefixed string, or the absent marker when
// hasValue is false.
func AppendString(out []byte, s string, hasValue bool) []byte {
	if !hasValue {
		return AppendInt(out, NullSize)
	}
	out = AppendInt(out, len(s))
	return append(out, s...)
}

// Encode flattens the pairs into one record.
func Encode(pairs []Pair) []byte {
	var out []byte
	for _, p := range pairs {
		out = AppendString(out, p.Name, true)
		out = AppendString(out, p.Value, p.HasValue)
	}
	return out
}

// ReadInt reads a big-endian int32 at pos, returning the value and the
// position after it.
func ReadInt(data []byte, pos int) (int, int, error) {
	if pos < 0 || pos+intSize > len(data) {
		return 0, pos, ErrTruncated
	}
	v := int(int32(uint32(data[pos])<<24 |
		uint32(data[pos+1])<<16 |
		uint32(data[pos+2])<<8 |
		uint32(data[pos+3])))
	return v, pos + intSize, nil
}

// ReadString reads one length-prefixed string at pos. hasValue is false when
// the absent marker was read.
func ReadString(data []byte, pos int) (s string, hasValue bool, next int, err error) {
	length, pos, err := ReadInt(data, pos)
	if err != nil {
		return "", false, pos, err
	}
	if length == NullSize {
		return "", false, pos, nil
	}
	if length < 0 || pos+length > len(data) {
		return "", false, pos, ErrTruncated
	}
	return string(data[pos : pos+length]), true, pos + length, nil
}

// Decode parses a full record into its pairs. Decoding reproduces exactly
// the pairs that were encoded, independent of key order.
func Decode(data []byte) ([]Pair, error) {
	var pairs []Pair
	pos := 0
	for pos < len(data) {
		name, _, next, err := ReadString(data, pos)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", len(pairs), err)
		}
		value, hasValue, next, err := ReadString(data, next)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", len(pairs), err)
		}
		pos = next
		pairs = append(pairs, Pair{Name: name, Value: value, HasValue: hasValue})
	}
	return pairs, nil
}
