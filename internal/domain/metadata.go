package domain

// MetadataRecord is a stored metadata account.
// Corresponds to metadata_accounts table in PostgreSQL.
type MetadataRecord struct {
	Address              string         // PRIMARY KEY, metadata account address
	Mint                 string         // UNIQUE, token mint address
	UpdateAuthority      string         // update authority address
	Name                 string         // NUL padding stripped
	Symbol               string         // NUL padding stripped
	URI                  string         // off-chain json uri
	SellerFeeBasisPoints uint16         // royalty in basis points
	PrimarySaleHappened  bool           // primary sale flag
	IsMutable            bool           // mutability flag
	EditionAddress       *string        // derived edition/master edition address (nullable)
	Creators             []CreatorShare // ordered creator list, nil when absent
	Slot                 int64          // slot the account was observed at
	UpdatedAt            int64          // last upsert timestamp (ms)
}

// CreatorShare is one creator of a metadata record.
// Corresponds to metadata_creators table in PostgreSQL.
type CreatorShare struct {
	Address  string // creator address
	Verified bool   // creator signed the metadata
	Share    uint8  // percentage points
}

// EditionRecord is a stored print edition account.
// Corresponds to editions table in PostgreSQL.
type EditionRecord struct {
	Address   string // PRIMARY KEY, edition account address
	Parent    string // master edition address
	Edition   uint64 // print number
	Slot      int64  // slot the account was observed at
	UpdatedAt int64  // last upsert timestamp (ms)
}

// MasterEditionRecord is a stored master edition account of either version.
// Corresponds to master_editions table in PostgreSQL.
type MasterEditionRecord struct {
	Address         string  // PRIMARY KEY, master edition account address
	Version         uint8   // account key: 2 for V1, 6 for V2
	Supply          uint64  // prints issued
	MaxSupply       *uint64 // print cap (nullable, unlimited when nil)
	PrintingMint    *string // V1 only (nullable)
	OneTimeAuthMint *string // V1 only (nullable)
	Slot            int64   // slot the account was observed at
	UpdatedAt       int64   // last upsert timestamp (ms)
}
