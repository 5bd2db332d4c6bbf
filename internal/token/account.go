// Package token decodes SPL token accounts.
package token

import (
	"fmt"

	"solana-metadata-lab/internal/borsh"
	"solana-metadata-lab/internal/solana"
)

// AccountLen is the packed size of a token account.
const AccountLen = 165

// Byte offsets used by server-side memcmp filters.
const (
	MintOffset   = 0
	OwnerOffset  = 32
	AmountOffset = 64
)

const schemaAccount = "TokenAccount"

// Schemas holds the token account layout. Optional fields are a u32 tag
// followed by a value slot that is always present.
var Schemas = borsh.MustRegistry(
	borsh.StructSchema{Name: schemaAccount, Fields: []borsh.Field{
		{Name: "mint", Type: borsh.Address()},
		{Name: "owner", Type: borsh.Address()},
		{Name: "amount", Type: borsh.U64()},
		{Name: "delegateOption", Type: borsh.U32()},
		{Name: "delegate", Type: borsh.Address()},
		{Name: "state", Type: borsh.U8()},
		{Name: "isNativeOption", Type: borsh.U32()},
		{Name: "isNative", Type: borsh.U64()},
		{Name: "delegatedAmount", Type: borsh.U64()},
		{Name: "closeAuthorityOption", Type: borsh.U32()},
		{Name: "closeAuthority", Type: borsh.Address()},
	}},
)

var codec = borsh.NewCodec(Schemas)

// State is the account state byte.
type State uint8

const (
	StateUninitialized State = iota
	StateInitialized
	StateFrozen
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateFrozen:
		return "frozen"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Account is a decoded token account. Address is the account's own key and
// is filled by the caller, not the decoder.
type Account struct {
	Address         solana.Pubkey
	Mint            solana.Pubkey
	Owner           solana.Pubkey
	Amount          uint64
	Delegate        *solana.Pubkey
	State           State
	IsNative        *uint64 // rent-exempt reserve of a wrapped SOL account
	DelegatedAmount uint64
	CloseAuthority  *solana.Pubkey
}

// IsEmpty reports whether the account holds no tokens.
func (a *Account) IsEmpty() bool {
	return a.Amount == 0
}

func decodeError(err error) error {
	return fmt.Errorf("decode %s: %w: %w", schemaAccount, borsh.ErrSchemaMismatch, err)
}

// Decode reads a token account. Bytes past AccountLen (token extensions)
// are ignored. Option tags other than 0 or 1 and unknown states fail with
// borsh.ErrSchemaMismatch.
func Decode(data []byte) (*Account, error) {
	s, err := codec.Decode(schemaAccount, data)
	if err != nil {
		return nil, decodeError(err)
	}

	g := borsh.NewGetter(s)
	a := &Account{
		Mint:            solana.Pubkey(borsh.Get[[32]byte](g, "mint")),
		Owner:           solana.Pubkey(borsh.Get[[32]byte](g, "owner")),
		Amount:          borsh.Get[uint64](g, "amount"),
		State:           State(borsh.Get[uint8](g, "state")),
		DelegatedAmount: borsh.Get[uint64](g, "delegatedAmount"),
	}
	delegateTag := borsh.Get[uint32](g, "delegateOption")
	delegate := solana.Pubkey(borsh.Get[[32]byte](g, "delegate"))
	nativeTag := borsh.Get[uint32](g, "isNativeOption")
	native := borsh.Get[uint64](g, "isNative")
	closeTag := borsh.Get[uint32](g, "closeAuthorityOption")
	closeAuthority := solana.Pubkey(borsh.Get[[32]byte](g, "closeAuthority"))
	if err := g.Err(); err != nil {
		return nil, decodeError(err)
	}

	if a.State > StateFrozen {
		return nil, decodeError(fmt.Errorf("invalid %s", a.State))
	}
	if a.Delegate, err = optional(delegateTag, "delegate", delegate); err != nil {
		return nil, decodeError(err)
	}
	if a.IsNative, err = optional(nativeTag, "isNative", native); err != nil {
		return nil, decodeError(err)
	}
	if a.CloseAuthority, err = optional(closeTag, "closeAuthority", closeAuthority); err != nil {
		return nil, decodeError(err)
	}
	return a, nil
}

func optional[T any](tag uint32, field string, v T) (*T, error) {
	switch tag {
	case 0:
		return nil, nil
	case 1:
		return &v, nil
	default:
		return nil, fmt.Errorf("%s option tag %d", field, tag)
	}
}

// Encode serializes a into the packed layout.
func Encode(a *Account) ([]byte, error) {
	delegateTag, delegate := tagged(a.Delegate)
	nativeTag, native := tagged(a.IsNative)
	closeTag, closeAuthority := tagged(a.CloseAuthority)

	return codec.Encode(&borsh.Struct{Name: schemaAccount, Fields: []borsh.FieldValue{
		{Name: "mint", Value: [32]byte(a.Mint)},
		{Name: "owner", Value: [32]byte(a.Owner)},
		{Name: "amount", Value: a.Amount},
		{Name: "delegateOption", Value: delegateTag},
		{Name: "delegate", Value: [32]byte(delegate)},
		{Name: "state", Value: uint8(a.State)},
		{Name: "isNativeOption", Value: nativeTag},
		{Name: "isNative", Value: native},
		{Name: "delegatedAmount", Value: a.DelegatedAmount},
		{Name: "closeAuthorityOption", Value: closeTag},
		{Name: "closeAuthority", Value: [32]byte(closeAuthority)},
	}})
}

func tagged[T any](v *T) (uint32, T) {
	var zero T
	if v == nil {
		return 0, zero
	}
	return 1, *v
}

// NonEmpty returns the accounts holding a nonzero amount, in input order.
func NonEmpty(accounts []*Account) []*Account {
	out := make([]*Account, 0, len(accounts))
	for _, a := range accounts {
		if !a.IsEmpty() {
			out = append(out, a)
		}
	}
	return out
}
