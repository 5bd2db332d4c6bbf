package solana

import (
	"bytes"

	"github.com/mr-tron/base58"
)

// MemcmpFilter selects accounts whose data at Offset equals Bytes.
// Mirrors the getProgramAccounts "memcmp" filter.
type MemcmpFilter struct {
	Offset int
	Bytes  []byte
}

// Matches applies the filter locally with the same semantics as the RPC node:
// data too short to contain the whole literal never matches.
func (f MemcmpFilter) Matches(data []byte) bool {
	if f.Offset < 0 || f.Offset+len(f.Bytes) > len(data) {
		return false
	}
	return bytes.Equal(data[f.Offset:f.Offset+len(f.Bytes)], f.Bytes)
}

// rpcParam renders the filter in JSON-RPC form.
func (f MemcmpFilter) rpcParam() map[string]interface{} {
	return map[string]interface{}{
		"memcmp": map[string]interface{}{
			"offset": f.Offset,
			"bytes":  base58.Encode(f.Bytes),
		},
	}
}

// MatchesAll reports whether data satisfies every filter.
func MatchesAll(data []byte, filters []MemcmpFilter) bool {
	for _, f := range filters {
		if !f.Matches(data) {
			return false
		}
	}
	return true
}
