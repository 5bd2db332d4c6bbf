package solana

// RawAccount is an account as fetched from the ledger: owner program, address
// and raw data. Consumers treat it as read-only.
type RawAccount struct {
	Pubkey   Pubkey
	Owner    Pubkey
	Data     []byte
	Lamports uint64
	Slot     int64 // context slot of the fetch or notification, 0 if unknown
}

// AccountInfo is the decoded value of getAccountInfo / getMultipleAccounts.
type AccountInfo struct {
	Lamports   uint64
	Owner      Pubkey
	Data       []byte
	Executable bool
	RentEpoch  uint64
}

// ProgramAccountsOpts configures getProgramAccounts.
type ProgramAccountsOpts struct {
	Filters    []MemcmpFilter
	DataSize   int    // 0 = no dataSize filter
	Commitment string // empty = node default
}

// TokenBalance is one entry of getTokenLargestAccounts. Amount is in base
// units; UIAmount is the node's decimal rendering.
type TokenBalance struct {
	Address  Pubkey
	Amount   uint64
	Decimals uint8
	UIAmount string
}
