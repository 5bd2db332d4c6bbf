// Package borsh implements the length-prefixed little-endian binary layout used
// by on-chain program accounts: a static schema registry, a cursor-based Reader,
// a growable Writer, and a Codec that drives both from registered schemas.
//
// Integers are little-endian. Strings and vectors carry a u32 length prefix.
// Options carry one presence byte that must be exactly 0 or 1. Addresses are
// 32 raw bytes; any text form (base58) is the caller's concern.
package borsh
