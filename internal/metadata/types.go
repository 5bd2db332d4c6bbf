package metadata

import (
	"errors"
	"fmt"

	"solana-metadata-lab/internal/borsh"
	"solana-metadata-lab/internal/solana"
)

// Key is the leading discriminant byte of every account owned by the
// token-metadata program.
type Key uint8

const (
	KeyUninitialized   Key = 0
	KeyEditionV1       Key = 1
	KeyMasterEditionV1 Key = 2
	KeyMetadataV1      Key = 4
	KeyMasterEditionV2 Key = 6
	KeyEditionMarker   Key = 7
)

// ErrUnknownKey is returned for a discriminant outside the known set.
var ErrUnknownKey = errors.New("unknown account key")

func (k Key) String() string {
	switch k {
	case KeyUninitialized:
		return "Uninitialized"
	case KeyEditionV1:
		return "EditionV1"
	case KeyMasterEditionV1:
		return "MasterEditionV1"
	case KeyMetadataV1:
		return "MetadataV1"
	case KeyMasterEditionV2:
		return "MasterEditionV2"
	case KeyEditionMarker:
		return "EditionMarker"
	default:
		return fmt.Sprintf("Key(%d)", uint8(k))
	}
}

// Valid reports whether k is a known discriminant.
func (k Key) Valid() bool {
	switch k {
	case KeyUninitialized, KeyEditionV1, KeyMasterEditionV1,
		KeyMetadataV1, KeyMasterEditionV2, KeyEditionMarker:
		return true
	}
	return false
}

// ReadKey returns the discriminant of an account buffer.
func ReadKey(data []byte) (Key, error) {
	if len(data) == 0 {
		return 0, &borsh.DecodeError{What: "key", Err: borsh.ErrUnexpectedEndOfBuffer}
	}
	k := Key(data[0])
	if !k.Valid() {
		return k, fmt.Errorf("%w: %d", ErrUnknownKey, data[0])
	}
	return k, nil
}

// Creator is one entry of a metadata creator list.
type Creator struct {
	Address  solana.Pubkey
	Verified bool
	Share    uint8 // percentage points; shares of a record are expected to sum to 100
}

// Data is the user-facing part of a metadata record.
//
// Creators is nil when the option is absent on the wire and a non-nil
// (possibly empty) slice when it is present.
type Data struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
}

// Metadata is a decoded MetadataV1 account.
type Metadata struct {
	Key                 Key
	UpdateAuthority     solana.Pubkey
	Mint                solana.Pubkey
	Data                Data
	PrimarySaleHappened bool
	IsMutable           bool

	// Derived by DeriveEditions; nil until then. Not part of the wire format.
	Edition       *solana.Pubkey
	MasterEdition *solana.Pubkey
}

// Edition is a decoded EditionV1 account: one numbered print of a master.
type Edition struct {
	Key     Key
	Parent  solana.Pubkey // master edition address
	Edition uint64
}

// MasterEdition is either *MasterEditionV1 or *MasterEditionV2.
type MasterEdition interface {
	Version() Key
	CurrentSupply() uint64
	SupplyLimit() *uint64
	masterEdition()
}

// MasterEditionV1 carries the printing and one-time authorization mints
// that V2 dropped.
type MasterEditionV1 struct {
	Key                              Key
	Supply                           uint64
	MaxSupply                        *uint64
	PrintingMint                     solana.Pubkey
	OneTimePrintingAuthorizationMint solana.Pubkey
}

func (m *MasterEditionV1) Version() Key          { return m.Key }
func (m *MasterEditionV1) CurrentSupply() uint64 { return m.Supply }
func (m *MasterEditionV1) SupplyLimit() *uint64  { return m.MaxSupply }
func (*MasterEditionV1) masterEdition()          {}

// MasterEditionV2 is the current master edition layout.
type MasterEditionV2 struct {
	Key       Key
	Supply    uint64
	MaxSupply *uint64
}

func (m *MasterEditionV2) Version() Key          { return m.Key }
func (m *MasterEditionV2) CurrentSupply() uint64 { return m.Supply }
func (m *MasterEditionV2) SupplyLimit() *uint64  { return m.MaxSupply }
func (*MasterEditionV2) masterEdition()          {}

// EditionMarker tracks which prints of one 248-wide page have been issued.
type EditionMarker struct {
	Key    Key
	Ledger [EditionMarkerLedgerLen]byte
}
