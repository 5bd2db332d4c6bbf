package metadata

import (
	"errors"
	"testing"
)

func TestEditionTaken(t *testing.T) {
	m := &EditionMarker{Key: KeyEditionMarker}
	m.Ledger[0] = 0b10000000

	taken, err := m.EditionTaken(0)
	if err != nil || !taken {
		t.Fatalf("EditionTaken(0) = %v, %v; want true", taken, err)
	}
	for n := uint64(1); n < 8; n++ {
		taken, err := m.EditionTaken(n)
		if err != nil {
			t.Fatal(err)
		}
		if taken {
			t.Errorf("EditionTaken(%d) = true, want false", n)
		}
	}
}

func TestEditionTaken_BitMapping(t *testing.T) {
	for n := uint64(0); n < EditionMarkerBitSize; n++ {
		m := &EditionMarker{}
		m.Ledger[n/8] = 1 << (7 - n%8)

		for q := uint64(0); q < EditionMarkerBitSize; q++ {
			taken, err := m.EditionTaken(q)
			if err != nil {
				t.Fatalf("EditionTaken(%d): %v", q, err)
			}
			if taken != (q == n) {
				t.Fatalf("bit for %d set, EditionTaken(%d) = %v", n, q, taken)
			}
		}
	}
}

func TestEditionTaken_OutOfRange(t *testing.T) {
	m := &EditionMarker{}
	for i := range m.Ledger {
		m.Ledger[i] = 0xFF
	}

	tests := []uint64{248, 255, 256, 1 << 40}
	for _, n := range tests {
		if _, err := m.EditionTaken(n); !errors.Is(err, ErrEditionOutOfRange) {
			t.Errorf("EditionTaken(%d): err = %v, want ErrEditionOutOfRange", n, err)
		}
		if err := m.MarkEdition(n); !errors.Is(err, ErrEditionOutOfRange) {
			t.Errorf("MarkEdition(%d): err = %v, want ErrEditionOutOfRange", n, err)
		}
	}

	taken, err := m.EditionTaken(247)
	if err != nil || !taken {
		t.Errorf("EditionTaken(247) = %v, %v", taken, err)
	}
}

func TestEditionMarker_Contains(t *testing.T) {
	m := &EditionMarker{}
	if err := m.MarkEdition(5); err != nil {
		t.Fatal(err)
	}
	if m.Ledger[0] != 0b00000100 {
		t.Errorf("ledger[0] = %08b", m.Ledger[0])
	}

	if !m.Contains(3*EditionMarkerBitSize + 5) {
		t.Error("Contains should map absolute edition onto the page")
	}
	if m.Contains(3*EditionMarkerBitSize + 6) {
		t.Error("Contains(+6) = true")
	}
	if MarkerPage(3*EditionMarkerBitSize+5) != 3 {
		t.Errorf("MarkerPage = %d", MarkerPage(3*EditionMarkerBitSize+5))
	}
}
