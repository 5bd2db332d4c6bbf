package metadata

import (
	"strings"

	"solana-metadata-lab/internal/solana"
)

// Capacities of the on-chain account layout. Strings are length-prefixed
// on the wire; these are storage capacities, not decode-time limits.
const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200
	MaxCreatorLimit = 5
	MaxCreatorLen   = 32 + 1 + 1

	MaxDataSize = 4 + MaxNameLength +
		4 + MaxSymbolLength +
		4 + MaxURILength +
		2 + 1 + 4 + MaxCreatorLimit*MaxCreatorLen

	MaxMetadataLen = 1 + 32 + 32 + MaxDataSize + 1 + 1 + 9 + 172
	MaxEditionLen  = 1 + 32 + 8 + 200

	EditionMarkerBitSize   = 248
	EditionMarkerLedgerLen = EditionMarkerBitSize / 8
)

// creatorsStart is the offset of the first creator address in a metadata
// account whose strings are padded to capacity.
const creatorsStart = 1 + 32 + 32 +
	4 + MaxNameLength +
	4 + MaxSymbolLength +
	4 + MaxURILength +
	2 + 1 + 4

// CreatorOffset returns the byte offset of creator i's address in a
// capacity-padded metadata account.
func CreatorOffset(i int) int {
	return creatorsStart + i*MaxCreatorLen
}

// CreatorFilters returns memcmp filters that select metadata accounts listing
// creator in the first or the second creator slot. Each filter is a separate
// query; results must be merged by the caller.
func CreatorFilters(creator solana.Pubkey) []solana.MemcmpFilter {
	return []solana.MemcmpFilter{
		{Offset: CreatorOffset(0), Bytes: creator.Bytes()},
		{Offset: CreatorOffset(1), Bytes: creator.Bytes()},
	}
}

// StripPadding removes trailing NUL bytes that legacy producers append to
// fill a string field to capacity. It is idempotent.
func StripPadding(s string) string {
	return strings.TrimRight(s, "\x00")
}

// PadData returns d with name, symbol and uri NUL-padded to capacity, the
// way the program writes them. Strings already at or over capacity are left
// as-is.
func PadData(d Data) Data {
	d.Name = padTo(d.Name, MaxNameLength)
	d.Symbol = padTo(d.Symbol, MaxSymbolLength)
	d.URI = padTo(d.URI, MaxURILength)
	return d
}

func padTo(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat("\x00", n-len(s))
}
