package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"solana-metadata-lab/internal/metadata"
	"solana-metadata-lab/internal/solana"
	"solana-metadata-lab/internal/token"
)

var (
	// ErrNoHolders is returned when a mint has no holder accounts.
	ErrNoHolders = errors.New("mint has no holder accounts")
	// ErrNotTokenAccount is returned when a holder account is not owned by
	// the token program or does not decode.
	ErrNotTokenAccount = errors.New("account is not a token account")
)

// TokensByOwner lists owner's token accounts in node order. Accounts with a
// zero amount are dropped unless includeEmpty is set. Accounts that do not
// decode are logged and skipped.
func (ix *Indexer) TokensByOwner(ctx context.Context, owner solana.Pubkey, includeEmpty bool) ([]*token.Account, error) {
	start := time.Now()
	raw, err := ix.rpc.GetTokenAccountsByOwner(ctx, owner, metadata.TokenProgramID)
	ix.metrics.RecordRPC("getTokenAccountsByOwner", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("get token accounts of %s: %w", owner, err)
	}

	accounts := make([]*token.Account, 0, len(raw))
	for _, acc := range raw {
		a, err := token.Decode(acc.Data)
		if err != nil {
			ix.logger.Warn("token account skipped",
				zap.Stringer("account", acc.Pubkey),
				zap.Error(err),
			)
			continue
		}
		a.Address = acc.Pubkey
		accounts = append(accounts, a)
	}
	if !includeEmpty {
		accounts = token.NonEmpty(accounts)
	}
	return accounts, nil
}

// LargestHolder fetches and decodes the largest holder account of mint. The
// holding wallet is the returned account's Owner.
func (ix *Indexer) LargestHolder(ctx context.Context, mint solana.Pubkey) (*token.Account, error) {
	start := time.Now()
	balances, err := ix.rpc.GetTokenLargestAccounts(ctx, mint)
	ix.metrics.RecordRPC("getTokenLargestAccounts", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("get largest accounts of %s: %w", mint, err)
	}
	if len(balances) == 0 {
		return nil, fmt.Errorf("mint %s: %w", mint, ErrNoHolders)
	}
	addr := balances[0].Address

	start = time.Now()
	info, err := ix.rpc.GetAccountInfo(ctx, addr)
	ix.metrics.RecordRPC("getAccountInfo", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", addr, err)
	}
	if info == nil {
		return nil, fmt.Errorf("holder %s of mint %s: %w", addr, mint, ErrAccountNotFound)
	}
	if info.Owner != metadata.TokenProgramID {
		return nil, fmt.Errorf("holder %s owned by %s: %w", addr, info.Owner, ErrNotTokenAccount)
	}

	a, err := token.Decode(info.Data)
	if err != nil {
		return nil, fmt.Errorf("holder %s: %w: %w", addr, ErrNotTokenAccount, err)
	}
	a.Address = addr
	return a, nil
}
