package solana

import "context"

// RPCClient is the subset of the JSON-RPC API needed to enumerate and fetch
// program and token accounts.
type RPCClient interface {
	// GetAccountInfo returns nil, nil if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey Pubkey) (*AccountInfo, error)

	// GetMultipleAccounts returns one entry per key, nil for missing accounts.
	GetMultipleAccounts(ctx context.Context, pubkeys []Pubkey) ([]*AccountInfo, error)

	// GetProgramAccounts enumerates accounts owned by program.
	GetProgramAccounts(ctx context.Context, program Pubkey, opts *ProgramAccountsOpts) ([]RawAccount, error)

	// GetTokenAccountsByOwner lists owner's accounts under tokenProgram.
	GetTokenAccountsByOwner(ctx context.Context, owner, tokenProgram Pubkey) ([]RawAccount, error)

	// GetTokenLargestAccounts returns mint's largest holder accounts,
	// largest first.
	GetTokenLargestAccounts(ctx context.Context, mint Pubkey) ([]TokenBalance, error)
}
