package metadata

import (
	"errors"
	"fmt"
)

// ErrEditionOutOfRange is returned for a page offset past the last ledger byte.
var ErrEditionOutOfRange = errors.New("edition offset outside marker page")

// MarkerPage returns the marker page that tracks edition.
func MarkerPage(edition uint64) uint64 {
	return edition / EditionMarkerBitSize
}

// EditionTaken reports whether the print at page-relative offset has been
// issued. Bit 7-(offset%8) of byte offset/8 holds the flag. Offsets past the
// page fail with ErrEditionOutOfRange.
func (m *EditionMarker) EditionTaken(offset uint64) (bool, error) {
	index := offset / 8
	if index >= EditionMarkerLedgerLen {
		return false, fmt.Errorf("%w: offset %d", ErrEditionOutOfRange, offset)
	}
	mask := byte(1) << (7 - offset%8)
	return m.Ledger[index]&mask != 0, nil
}

// Contains reports whether absolute edition number edition is marked on
// this page. The caller is responsible for fetching the marker of
// MarkerPage(edition).
func (m *EditionMarker) Contains(edition uint64) bool {
	taken, _ := m.EditionTaken(edition % EditionMarkerBitSize)
	return taken
}

// MarkEdition sets the bit for page-relative offset.
func (m *EditionMarker) MarkEdition(offset uint64) error {
	index := offset / 8
	if index >= EditionMarkerLedgerLen {
		return fmt.Errorf("%w: offset %d", ErrEditionOutOfRange, offset)
	}
	m.Ledger[index] |= byte(1) << (7 - offset%8)
	return nil
}
