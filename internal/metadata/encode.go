package metadata

import (
	"solana-metadata-lab/internal/borsh"
)

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func optionalU64(v *uint64) any {
	if v == nil {
		return nil
	}
	return *v
}

func dataStruct(d Data) *borsh.Struct {
	var creators any
	if d.Creators != nil {
		items := make([]any, 0, len(d.Creators))
		for _, c := range d.Creators {
			items = append(items, &borsh.Struct{Name: schemaCreator, Fields: []borsh.FieldValue{
				{Name: "address", Value: [32]byte(c.Address)},
				{Name: "verified", Value: boolByte(c.Verified)},
				{Name: "share", Value: c.Share},
			}})
		}
		creators = items
	}
	return &borsh.Struct{Name: schemaData, Fields: []borsh.FieldValue{
		{Name: "name", Value: d.Name},
		{Name: "symbol", Value: d.Symbol},
		{Name: "uri", Value: d.URI},
		{Name: "sellerFeeBasisPoints", Value: d.SellerFeeBasisPoints},
		{Name: "creators", Value: creators},
	}}
}

// EncodeMetadata serializes m. Derived edition addresses are not encoded.
func EncodeMetadata(m *Metadata) ([]byte, error) {
	return codec.Encode(&borsh.Struct{Name: schemaMetadata, Fields: []borsh.FieldValue{
		{Name: "key", Value: uint8(m.Key)},
		{Name: "updateAuthority", Value: [32]byte(m.UpdateAuthority)},
		{Name: "mint", Value: [32]byte(m.Mint)},
		{Name: "data", Value: dataStruct(m.Data)},
		{Name: "primarySaleHappened", Value: boolByte(m.PrimarySaleHappened)},
		{Name: "isMutable", Value: boolByte(m.IsMutable)},
	}})
}

// EncodeEdition serializes e.
func EncodeEdition(e *Edition) ([]byte, error) {
	return codec.Encode(&borsh.Struct{Name: schemaEdition, Fields: []borsh.FieldValue{
		{Name: "key", Value: uint8(e.Key)},
		{Name: "parent", Value: [32]byte(e.Parent)},
		{Name: "edition", Value: e.Edition},
	}})
}

// EncodeMasterEdition serializes either master edition version.
func EncodeMasterEdition(m MasterEdition) ([]byte, error) {
	switch me := m.(type) {
	case *MasterEditionV1:
		return codec.Encode(&borsh.Struct{Name: schemaMasterEditionV1, Fields: []borsh.FieldValue{
			{Name: "key", Value: uint8(me.Key)},
			{Name: "supply", Value: me.Supply},
			{Name: "maxSupply", Value: optionalU64(me.MaxSupply)},
			{Name: "printingMint", Value: [32]byte(me.PrintingMint)},
			{Name: "oneTimePrintingAuthorizationMint", Value: [32]byte(me.OneTimePrintingAuthorizationMint)},
		}})
	case *MasterEditionV2:
		return codec.Encode(&borsh.Struct{Name: schemaMasterEditionV2, Fields: []borsh.FieldValue{
			{Name: "key", Value: uint8(me.Key)},
			{Name: "supply", Value: me.Supply},
			{Name: "maxSupply", Value: optionalU64(me.MaxSupply)},
		}})
	default:
		return nil, borsh.ErrSchemaMismatch
	}
}

// EncodeEditionMarker serializes m.
func EncodeEditionMarker(m *EditionMarker) ([]byte, error) {
	return codec.Encode(&borsh.Struct{Name: schemaEditionMarker, Fields: []borsh.FieldValue{
		{Name: "key", Value: uint8(m.Key)},
		{Name: "ledger", Value: m.Ledger[:]},
	}})
}
