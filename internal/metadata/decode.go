package metadata

import (
	"fmt"

	"solana-metadata-lab/internal/borsh"
	"solana-metadata-lab/internal/solana"
)

// DecodeOption adjusts decoding.
type DecodeOption = borsh.ReaderOption

// LenientUTF8 accepts string fields that are not valid UTF-8, matching
// legacy readers.
func LenientUTF8() DecodeOption {
	return borsh.WithLenientUTF8()
}

// decodeError wraps err so that callers can match both the record-level
// ErrSchemaMismatch and the underlying primitive failure.
func decodeError(record string, err error) error {
	return fmt.Errorf("decode %s: %w: %w", record, borsh.ErrSchemaMismatch, err)
}

// checkLength fails with ErrUnexpectedEndOfBuffer when data cannot hold the
// smallest encoding of record, before any byte is interpreted.
func checkLength(record string, data []byte) error {
	if want := Schemas.MinSize(record); len(data) < want {
		return decodeError(record, &borsh.DecodeError{
			Offset: len(data),
			What:   fmt.Sprintf("%s (%d of %d bytes)", record, len(data), want),
			Err:    borsh.ErrUnexpectedEndOfBuffer,
		})
	}
	return nil
}

func decodeStruct(record string, want Key, data []byte, opts []DecodeOption) (*borsh.Struct, error) {
	if err := checkLength(record, data); err != nil {
		return nil, err
	}
	if Key(data[0]) != want {
		return nil, decodeError(record, fmt.Errorf("key %s, want %s", Key(data[0]), want))
	}
	s, err := codec.Decode(record, data, opts...)
	if err != nil {
		return nil, decodeError(record, err)
	}
	return s, nil
}

// DecodeMetadata decodes a MetadataV1 account. Trailing NUL padding is
// stripped from name, symbol and uri.
func DecodeMetadata(data []byte, opts ...DecodeOption) (*Metadata, error) {
	s, err := decodeStruct(schemaMetadata, KeyMetadataV1, data, opts)
	if err != nil {
		return nil, err
	}

	g := borsh.NewGetter(s)
	m := &Metadata{
		Key:                 Key(borsh.Get[uint8](g, "key")),
		UpdateAuthority:     solana.Pubkey(borsh.Get[[32]byte](g, "updateAuthority")),
		Mint:                solana.Pubkey(borsh.Get[[32]byte](g, "mint")),
		PrimarySaleHappened: borsh.Get[uint8](g, "primarySaleHappened") != 0,
		IsMutable:           borsh.Get[uint8](g, "isMutable") != 0,
	}
	nested := borsh.Get[*borsh.Struct](g, "data")
	if err := g.Err(); err != nil {
		return nil, decodeError(schemaMetadata, err)
	}

	m.Data, err = dataFromStruct(nested)
	if err != nil {
		return nil, decodeError(schemaMetadata, err)
	}
	return m, nil
}

func dataFromStruct(s *borsh.Struct) (Data, error) {
	g := borsh.NewGetter(s)
	d := Data{
		Name:                 StripPadding(borsh.Get[string](g, "name")),
		Symbol:               StripPadding(borsh.Get[string](g, "symbol")),
		URI:                  StripPadding(borsh.Get[string](g, "uri")),
		SellerFeeBasisPoints: borsh.Get[uint16](g, "sellerFeeBasisPoints"),
	}
	creators := borsh.GetOptional[[]any](g, "creators")
	if err := g.Err(); err != nil {
		return Data{}, err
	}
	if creators == nil {
		return d, nil
	}

	d.Creators = make([]Creator, 0, len(*creators))
	for _, item := range *creators {
		cs, ok := item.(*borsh.Struct)
		if !ok {
			return Data{}, fmt.Errorf("%w: creator is %T", borsh.ErrSchemaMismatch, item)
		}
		cg := borsh.NewGetter(cs)
		c := Creator{
			Address:  solana.Pubkey(borsh.Get[[32]byte](cg, "address")),
			Verified: borsh.Get[uint8](cg, "verified") != 0,
			Share:    borsh.Get[uint8](cg, "share"),
		}
		if err := cg.Err(); err != nil {
			return Data{}, err
		}
		d.Creators = append(d.Creators, c)
	}
	return d, nil
}

// DecodeEdition decodes an EditionV1 account.
func DecodeEdition(data []byte) (*Edition, error) {
	s, err := decodeStruct(schemaEdition, KeyEditionV1, data, nil)
	if err != nil {
		return nil, err
	}
	g := borsh.NewGetter(s)
	e := &Edition{
		Key:     Key(borsh.Get[uint8](g, "key")),
		Parent:  solana.Pubkey(borsh.Get[[32]byte](g, "parent")),
		Edition: borsh.Get[uint64](g, "edition"),
	}
	if err := g.Err(); err != nil {
		return nil, decodeError(schemaEdition, err)
	}
	return e, nil
}

// DecodeMasterEdition selects the V1 or V2 layout from the discriminant
// byte and decodes accordingly.
func DecodeMasterEdition(data []byte) (MasterEdition, error) {
	if len(data) == 0 {
		return nil, decodeError("MasterEdition", &borsh.DecodeError{What: "key", Err: borsh.ErrUnexpectedEndOfBuffer})
	}
	switch Key(data[0]) {
	case KeyMasterEditionV1, KeyMasterEditionV2:
	default:
		// V2 is the smaller layout, so anything shorter is truncated
		// whatever its key.
		if err := checkLength(schemaMasterEditionV2, data); err != nil {
			return nil, err
		}
	}
	switch Key(data[0]) {
	case KeyMasterEditionV1:
		m, err := DecodeMasterEditionV1(data)
		if err != nil {
			return nil, err
		}
		return m, nil
	case KeyMasterEditionV2:
		m, err := DecodeMasterEditionV2(data)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, decodeError("MasterEdition", fmt.Errorf("%w: %s is not a master edition", ErrUnknownKey, Key(data[0])))
	}
}

// DecodeMasterEditionV1 decodes a MasterEditionV1 account.
func DecodeMasterEditionV1(data []byte) (*MasterEditionV1, error) {
	s, err := decodeStruct(schemaMasterEditionV1, KeyMasterEditionV1, data, nil)
	if err != nil {
		return nil, err
	}
	g := borsh.NewGetter(s)
	m := &MasterEditionV1{
		Key:                              Key(borsh.Get[uint8](g, "key")),
		Supply:                           borsh.Get[uint64](g, "supply"),
		MaxSupply:                        borsh.GetOptional[uint64](g, "maxSupply"),
		PrintingMint:                     solana.Pubkey(borsh.Get[[32]byte](g, "printingMint")),
		OneTimePrintingAuthorizationMint: solana.Pubkey(borsh.Get[[32]byte](g, "oneTimePrintingAuthorizationMint")),
	}
	if err := g.Err(); err != nil {
		return nil, decodeError(schemaMasterEditionV1, err)
	}
	return m, nil
}

// DecodeMasterEditionV2 decodes a MasterEditionV2 account.
func DecodeMasterEditionV2(data []byte) (*MasterEditionV2, error) {
	s, err := decodeStruct(schemaMasterEditionV2, KeyMasterEditionV2, data, nil)
	if err != nil {
		return nil, err
	}
	g := borsh.NewGetter(s)
	m := &MasterEditionV2{
		Key:       Key(borsh.Get[uint8](g, "key")),
		Supply:    borsh.Get[uint64](g, "supply"),
		MaxSupply: borsh.GetOptional[uint64](g, "maxSupply"),
	}
	if err := g.Err(); err != nil {
		return nil, decodeError(schemaMasterEditionV2, err)
	}
	return m, nil
}

// DecodeEditionMarker decodes an EditionMarker account: one key byte and a
// 31-byte ledger.
func DecodeEditionMarker(data []byte) (*EditionMarker, error) {
	s, err := decodeStruct(schemaEditionMarker, KeyEditionMarker, data, nil)
	if err != nil {
		return nil, err
	}
	g := borsh.NewGetter(s)
	m := &EditionMarker{Key: Key(borsh.Get[uint8](g, "key"))}
	ledger := borsh.Get[[]byte](g, "ledger")
	if err := g.Err(); err != nil {
		return nil, decodeError(schemaEditionMarker, err)
	}
	copy(m.Ledger[:], ledger)
	return m, nil
}
