package solana

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mr-tron/base58"
)

// PubkeyLength is the size of an account address in bytes.
const PubkeyLength = 32

// ErrInvalidPubkey is returned when a textual address does not decode to 32 bytes.
var ErrInvalidPubkey = errors.New("invalid pubkey")

// Pubkey is a raw 32-byte account address. No checksum, no text encoding.
type Pubkey [PubkeyLength]byte

// ParsePubkey decodes a base58 address.
func ParsePubkey(s string) (Pubkey, error) {
	var pk Pubkey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("%w: %q: %v", ErrInvalidPubkey, s, err)
	}
	if len(raw) != PubkeyLength {
		return pk, fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidPubkey, s, len(raw))
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustParsePubkey is ParsePubkey for compile-time constants.
func MustParsePubkey(s string) Pubkey {
	pk, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// PubkeyFromBytes copies b into a Pubkey. b must be exactly 32 bytes.
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	var pk Pubkey
	if len(b) != PubkeyLength {
		return pk, fmt.Errorf("%w: got %d bytes", ErrInvalidPubkey, len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

// String returns the base58 form.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// Bytes returns a copy of the raw address.
func (p Pubkey) Bytes() []byte {
	b := make([]byte, PubkeyLength)
	copy(b, p[:])
	return b
}

// IsZero reports whether every byte is zero.
func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// MarshalText implements encoding.TextMarshaler.
func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pubkey) UnmarshalText(text []byte) error {
	pk, err := ParsePubkey(string(text))
	if err != nil {
		return err
	}
	*p = pk
	return nil
}

// keyCache memoizes base58 parsing for addresses that repeat across a response
// (owners, program ids). It is owned by a single client, not shared globally.
type keyCache struct {
	mu   sync.RWMutex
	keys map[string]Pubkey
}

func newKeyCache() *keyCache {
	return &keyCache{keys: make(map[string]Pubkey)}
}

func (c *keyCache) parse(s string) (Pubkey, error) {
	c.mu.RLock()
	pk, ok := c.keys[s]
	c.mu.RUnlock()
	if ok {
		return pk, nil
	}

	pk, err := ParsePubkey(s)
	if err != nil {
		return pk, err
	}

	c.mu.Lock()
	c.keys[s] = pk
	c.mu.Unlock()
	return pk, nil
}

func (c *keyCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}
