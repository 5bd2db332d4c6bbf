package solana

import "context"

// WSClient defines the Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeProgram streams every change to accounts owned by the filter's program.
	SubscribeProgram(ctx context.Context, filter ProgramFilter) (<-chan RawAccount, error)

	// Close closes the WebSocket connection.
	Close() error
}

// ProgramFilter defines a programSubscribe subscription.
type ProgramFilter struct {
	Program Pubkey
	Filters []MemcmpFilter
}
