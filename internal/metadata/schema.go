package metadata

import "solana-metadata-lab/internal/borsh"

// Struct names in the schema registry.
const (
	schemaMetadata        = "Metadata"
	schemaData            = "Data"
	schemaCreator         = "Creator"
	schemaEdition         = "Edition"
	schemaMasterEditionV1 = "MasterEditionV1"
	schemaMasterEditionV2 = "MasterEditionV2"
	schemaEditionMarker   = "EditionMarker"
)

// Schemas is the account layout registry, built once at init.
var Schemas = borsh.MustRegistry(
	borsh.StructSchema{Name: schemaCreator, Fields: []borsh.Field{
		{Name: "address", Type: borsh.Address()},
		{Name: "verified", Type: borsh.U8()},
		{Name: "share", Type: borsh.U8()},
	}},
	borsh.StructSchema{Name: schemaData, Fields: []borsh.Field{
		{Name: "name", Type: borsh.String()},
		{Name: "symbol", Type: borsh.String()},
		{Name: "uri", Type: borsh.String()},
		{Name: "sellerFeeBasisPoints", Type: borsh.U16()},
		{Name: "creators", Type: borsh.Option(borsh.Vec(borsh.StructRef(schemaCreator)))},
	}},
	borsh.StructSchema{Name: schemaMetadata, Fields: []borsh.Field{
		{Name: "key", Type: borsh.U8()},
		{Name: "updateAuthority", Type: borsh.Address()},
		{Name: "mint", Type: borsh.Address()},
		{Name: "data", Type: borsh.StructRef(schemaData)},
		{Name: "primarySaleHappened", Type: borsh.U8()},
		{Name: "isMutable", Type: borsh.U8()},
	}},
	borsh.StructSchema{Name: schemaEdition, Fields: []borsh.Field{
		{Name: "key", Type: borsh.U8()},
		{Name: "parent", Type: borsh.Address()},
		{Name: "edition", Type: borsh.U64()},
	}},
	borsh.StructSchema{Name: schemaMasterEditionV1, Fields: []borsh.Field{
		{Name: "key", Type: borsh.U8()},
		{Name: "supply", Type: borsh.U64()},
		{Name: "maxSupply", Type: borsh.Option(borsh.U64())},
		{Name: "printingMint", Type: borsh.Address()},
		{Name: "oneTimePrintingAuthorizationMint", Type: borsh.Address()},
	}},
	borsh.StructSchema{Name: schemaMasterEditionV2, Fields: []borsh.Field{
		{Name: "key", Type: borsh.U8()},
		{Name: "supply", Type: borsh.U64()},
		{Name: "maxSupply", Type: borsh.Option(borsh.U64())},
	}},
	borsh.StructSchema{Name: schemaEditionMarker, Fields: []borsh.Field{
		{Name: "key", Type: borsh.U8()},
		{Name: "ledger", Type: borsh.FixedBytes(EditionMarkerLedgerLen)},
	}},
)

var codec = borsh.NewCodec(Schemas)
