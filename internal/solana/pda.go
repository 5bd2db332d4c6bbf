package solana

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"
)

// Seed limits enforced by the runtime for program-derived addresses.
const (
	MaxSeeds      = 16
	MaxSeedLength = 32
)

// pdaMarker is the domain-separation suffix appended before hashing.
const pdaMarker = "ProgramDerivedAddress"

var (
	// ErrNoViableBump is returned when every bump in 0..255 hashes to a curve point.
	ErrNoViableBump = errors.New("no viable bump seed")

	// ErrMaxSeedLength is returned for more than MaxSeeds seeds or a seed longer than MaxSeedLength.
	ErrMaxSeedLength = errors.New("max seed length exceeded")

	// ErrOnCurve is returned by CreateProgramAddress when the candidate is a valid ed25519 point.
	ErrOnCurve = errors.New("derived address is on the ed25519 curve")
)

// CreateProgramAddress hashes seeds||programID||"ProgramDerivedAddress" and
// returns the result if it is not a valid ed25519 point. The bump, if any, must
// already be the last seed.
func CreateProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, error) {
	if len(seeds) > MaxSeeds {
		return Pubkey{}, ErrMaxSeedLength
	}
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return Pubkey{}, ErrMaxSeedLength
		}
	}

	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var pk Pubkey
	copy(pk[:], h.Sum(nil))

	if IsOnCurve(pk[:]) {
		return Pubkey{}, ErrOnCurve
	}
	return pk, nil
}

// FindProgramAddress searches bumps from 255 down to 0 and returns the first
// off-curve address together with its bump.
func FindProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, uint8, error) {
	// One slot is reserved for the bump itself.
	if len(seeds) >= MaxSeeds {
		return Pubkey{}, 0, ErrMaxSeedLength
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	bump := []byte{0}
	withBump[len(seeds)] = bump

	for b := 255; b >= 0; b-- {
		bump[0] = byte(b)
		pk, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return pk, byte(b), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return Pubkey{}, 0, err
		}
	}

	return Pubkey{}, 0, ErrNoViableBump
}

// IsOnCurve reports whether b is the compressed encoding of a valid ed25519 point.
func IsOnCurve(b []byte) bool {
	if len(b) != PubkeyLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
