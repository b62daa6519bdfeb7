// Package backup produces the incremental backup payload: per-scope
// flattened records gated by CRC32 checksums held in a small versioned
// ledger between runs, so unchanged sections are omitted entirely.
package backup

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Section ids carried in the payload entity headers.
const (
	SectionSystem       = "system"
	SectionSecure       = "secure"
	SectionGlobal       = "global"
	SectionDeviceConfig = "device_specific_config"
	SectionSimSettings  = "sim_specific_settings"
)

// LedgerVersion is the current ledger format version. Bump it any time the
// slot set changes.
const LedgerVersion = 9

// Slots in the checksum ledger. Never renumber: new slots are appended, the
// gaps belong to sections that were retired but keep their positions.
const (
	SlotSystem       = 0
	SlotSecure       = 1
	SlotGlobal       = 5
	SlotDeviceConfig = 10
	SlotSimSettings  = 11

	LedgerSize = 12
)

// ledgerSizes maps a ledger format version to the number of checksum slots
// that version recorded. Indexed by version; append-only.
var ledgerSizes = [...]int{
	0,
	4,  // version 1
	4,  // version 2
	6,  // version 3 added the global slot
	6,  // version 4
	6,  // version 5
	6,  // version 6
	6,  // version 7
	11, // version 8 added the device config slot
	LedgerSize, // version 9 added the sim settings slot
}

// ErrUnknownSection reports a section id outside the fixed set. It is a
// programmer error.
var ErrUnknownSection = errors.New("unknown backup section")

// ReadLedger decodes the checksum ledger written by the previous backup run.
// Slots a ledger of that version never recorded read as zero, which forces
// the corresponding sections to be written on the next run. A ledger newer
// than this engine supports is truncated to the supported slot count. A
// short or empty stream zero-fills the rest, which is the correct
// first-run behavior.
func ReadLedger(r io.Reader) ([LedgerSize]int64, error) {
	var checksums [LedgerSize]int64

	var version int32
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return checksums, nil
		}
		return checksums, fmt.Errorf("failed to read ledger version: %w", err)
	}

	if version > LedgerVersion {
		version = LedgerVersion
	}
	if version < 0 {
		version = 0
	}

	for i := 0; i < ledgerSizes[version]; i++ {
		if err := binary.Read(r, binary.BigEndian, &checksums[i]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				// Zero checksums force a rewrite of the remaining
				// sections, which is the safe direction.
				return checksums, nil
			}
			return checksums, fmt.Errorf("failed to read ledger slot %d: %w", i, err)
		}
	}

	return checksums, nil
}

// WriteLedger writes all current slots under the current format version.
// Callers must only invoke it after every section was produced successfully.
func WriteLedger(w io.Writer, checksums [LedgerSize]int64) error {
	if err := binary.Write(w, binary.BigEndian, int32(LedgerVersion)); err != nil {
		return fmt.Errorf("failed to write ledger version: %w", err)
	}
	for i, sum := range checksums {
		if err := binary.Write(w, binary.BigEndian, sum); err != nil {
			return fmt.Errorf("failed to write ledger slot %d: %w", i, err)
		}
	}
	return nil
}

// SlotForSection maps a section id to its ledger slot.
func SlotForSection(section string) (int, error) {
	switch section {
	case SectionSystem:
		return SlotSystem, nil
	case SectionSecure:
		return SlotSecure, nil
	case SectionGlobal:
		return SlotGlobal, nil
	case SectionDeviceConfig:
		return SlotDeviceConfig, nil
	case SectionSimSettings:
		return SlotSimSettings, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSection, section)
}
