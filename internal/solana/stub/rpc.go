package stub

import (
	"bytes"
	"context"
	"encoding/binary"
	"sort"
	"strconv"
	"sync"

	"solana-metadata-lab/internal/solana"
	"solana-metadata-lab/internal/token"
)

// LargestAccountsLimit matches the node's cap for getTokenLargestAccounts.
const LargestAccountsLimit = 20

// RPCClient implements solana.RPCClient over an in-memory account set.
type RPCClient struct {
	mu       sync.RWMutex
	accounts map[solana.Pubkey]solana.RawAccount
	order    []solana.Pubkey

	// Err, when set, is returned by every call.
	Err error
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		accounts: make(map[solana.Pubkey]solana.RawAccount),
	}
}

// AddAccount stores or replaces an account. Enumeration keeps first-insert order.
func (c *RPCClient) AddAccount(acct solana.RawAccount) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.accounts[acct.Pubkey]; !ok {
		c.order = append(c.order, acct.Pubkey)
	}
	c.accounts[acct.Pubkey] = acct
}

// GetAccountInfo returns the stored account or nil.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey solana.Pubkey) (*solana.AccountInfo, error) {
	if c.Err != nil {
		return nil, c.Err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	acct, ok := c.accounts[pubkey]
	if !ok {
		return nil, nil
	}
	return toInfo(acct), nil
}

// GetMultipleAccounts returns stored accounts in request order, nil for missing ones.
func (c *RPCClient) GetMultipleAccounts(ctx context.Context, pubkeys []solana.Pubkey) ([]*solana.AccountInfo, error) {
	infos := make([]*solana.AccountInfo, len(pubkeys))
	for i, pk := range pubkeys {
		info, err := c.GetAccountInfo(ctx, pk)
		if err != nil {
			return nil, err
		}
		infos[i] = info
	}
	return infos, nil
}

// GetProgramAccounts returns stored accounts owned by program that pass the filters.
func (c *RPCClient) GetProgramAccounts(_ context.Context, program solana.Pubkey, opts *solana.ProgramAccountsOpts) ([]solana.RawAccount, error) {
	if c.Err != nil {
		return nil, c.Err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []solana.RawAccount
	for _, pk := range c.order {
		acct := c.accounts[pk]
		if acct.Owner != program {
			continue
		}
		if opts != nil {
			if opts.DataSize > 0 && len(acct.Data) != opts.DataSize {
				continue
			}
			if !solana.MatchesAll(acct.Data, opts.Filters) {
				continue
			}
		}
		out = append(out, acct)
	}
	return out, nil
}

// GetTokenAccountsByOwner returns stored accounts owned by tokenProgram
// whose owner field is owner.
func (c *RPCClient) GetTokenAccountsByOwner(_ context.Context, owner, tokenProgram solana.Pubkey) ([]solana.RawAccount, error) {
	if c.Err != nil {
		return nil, c.Err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []solana.RawAccount
	for _, pk := range c.order {
		acct := c.accounts[pk]
		if acct.Owner != tokenProgram || len(acct.Data) < token.AccountLen {
			continue
		}
		if !bytes.Equal(acct.Data[token.OwnerOffset:token.OwnerOffset+32], owner[:]) {
			continue
		}
		out = append(out, acct)
	}
	return out, nil
}

// GetTokenLargestAccounts returns up to LargestAccountsLimit stored
// token-account-sized entries for mint, largest amount first. Ties keep
// insertion order.
func (c *RPCClient) GetTokenLargestAccounts(_ context.Context, mint solana.Pubkey) ([]solana.TokenBalance, error) {
	if c.Err != nil {
		return nil, c.Err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []solana.TokenBalance
	for _, pk := range c.order {
		acct := c.accounts[pk]
		if len(acct.Data) < token.AccountLen {
			continue
		}
		if !bytes.Equal(acct.Data[token.MintOffset:token.MintOffset+32], mint[:]) {
			continue
		}
		amount := binary.LittleEndian.Uint64(acct.Data[token.AmountOffset:])
		out = append(out, solana.TokenBalance{
			Address:  pk,
			Amount:   amount,
			UIAmount: strconv.FormatUint(amount, 10),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	if len(out) > LargestAccountsLimit {
		out = out[:LargestAccountsLimit]
	}
	return out, nil
}

func toInfo(acct solana.RawAccount) *solana.AccountInfo {
	data := make([]byte, len(acct.Data))
	copy(data, acct.Data)
	return &solana.AccountInfo{
		Lamports: acct.Lamports,
		Owner:    acct.Owner,
		Data:     data,
	}
}

var _ solana.RPCClient = (*RPCClient)(nil)
