package solana

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// HTTPClient implements RPCClient using HTTP JSON-RPC 2.0.
// Retries are a property of this transport, not of the decoding core.
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
	keys        *keyCache
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.maxDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new Solana RPC HTTP client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		keys:        newKeyCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call with retries and exponential backoff.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqID := c.requestID.Add(1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		// Handle rate limiting
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC errors are not retried
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// GetAccountInfo retrieves account info by public key.
// Returns nil if account not found.
func (c *HTTPClient) GetAccountInfo(ctx context.Context, pubkey Pubkey) (*AccountInfo, error) {
	params := []interface{}{
		pubkey.String(),
		map[string]interface{}{
			"encoding": "base64",
		},
	}

	var result getAccountInfoResult
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}

	if result.Value == nil {
		return nil, nil
	}

	return c.decodeAccount(result.Value)
}

// GetMultipleAccounts retrieves several accounts in one call, preserving order.
func (c *HTTPClient) GetMultipleAccounts(ctx context.Context, pubkeys []Pubkey) ([]*AccountInfo, error) {
	if len(pubkeys) == 0 {
		return nil, nil
	}

	keys := make([]string, len(pubkeys))
	for i, pk := range pubkeys {
		keys[i] = pk.String()
	}
	params := []interface{}{
		keys,
		map[string]interface{}{
			"encoding": "base64",
		},
	}

	var result getMultipleAccountsResult
	if err := c.call(ctx, "getMultipleAccounts", params, &result); err != nil {
		return nil, err
	}
	if len(result.Value) != len(pubkeys) {
		return nil, fmt.Errorf("getMultipleAccounts: expected %d accounts, got %d", len(pubkeys), len(result.Value))
	}

	infos := make([]*AccountInfo, len(result.Value))
	for i, v := range result.Value {
		if v == nil {
			continue
		}
		info, err := c.decodeAccount(v)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", keys[i], err)
		}
		infos[i] = info
	}
	return infos, nil
}

// GetProgramAccounts enumerates all accounts owned by program that pass the
// memcmp/dataSize filters.
func (c *HTTPClient) GetProgramAccounts(ctx context.Context, program Pubkey, opts *ProgramAccountsOpts) ([]RawAccount, error) {
	config := map[string]interface{}{
		"encoding":    "base64",
		"withContext": true,
	}
	if opts != nil {
		var filters []interface{}
		if opts.DataSize > 0 {
			filters = append(filters, map[string]interface{}{"dataSize": opts.DataSize})
		}
		for _, f := range opts.Filters {
			filters = append(filters, f.rpcParam())
		}
		if len(filters) > 0 {
			config["filters"] = filters
		}
		if opts.Commitment != "" {
			config["commitment"] = opts.Commitment
		}
	}

	params := []interface{}{program.String(), config}

	var result getProgramAccountsResult
	if err := c.call(ctx, "getProgramAccounts", params, &result); err != nil {
		return nil, err
	}

	return c.rawAccounts(result, "program account")
}

// rawAccounts converts a keyed account list, stamping each entry with the
// response's context slot.
func (c *HTTPClient) rawAccounts(result getProgramAccountsResult, what string) ([]RawAccount, error) {
	accounts := make([]RawAccount, 0, len(result.Value))
	for _, item := range result.Value {
		pk, err := c.keys.parse(item.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("%s pubkey: %w", what, err)
		}
		info, err := c.decodeAccount(&item.Account)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", what, item.Pubkey, err)
		}
		accounts = append(accounts, RawAccount{
			Pubkey:   pk,
			Owner:    info.Owner,
			Data:     info.Data,
			Lamports: info.Lamports,
			Slot:     result.Context.Slot,
		})
	}

	return accounts, nil
}

// GetTokenAccountsByOwner lists the accounts under tokenProgram whose owner
// field is owner.
func (c *HTTPClient) GetTokenAccountsByOwner(ctx context.Context, owner, tokenProgram Pubkey) ([]RawAccount, error) {
	params := []interface{}{
		owner.String(),
		map[string]interface{}{"programId": tokenProgram.String()},
		map[string]interface{}{"encoding": "base64"},
	}

	var result getProgramAccountsResult
	if err := c.call(ctx, "getTokenAccountsByOwner", params, &result); err != nil {
		return nil, err
	}
	return c.rawAccounts(result, "token account")
}

// GetTokenLargestAccounts returns up to 20 of mint's largest holder accounts.
func (c *HTTPClient) GetTokenLargestAccounts(ctx context.Context, mint Pubkey) ([]TokenBalance, error) {
	params := []interface{}{mint.String()}

	var result getTokenLargestAccountsResult
	if err := c.call(ctx, "getTokenLargestAccounts", params, &result); err != nil {
		return nil, err
	}

	balances := make([]TokenBalance, 0, len(result.Value))
	for _, v := range result.Value {
		addr, err := c.keys.parse(v.Address)
		if err != nil {
			return nil, fmt.Errorf("largest account address: %w", err)
		}
		amount, err := strconv.ParseUint(v.Amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("largest account %s amount: %w", v.Address, err)
		}
		balances = append(balances, TokenBalance{
			Address:  addr,
			Amount:   amount,
			Decimals: v.Decimals,
			UIAmount: v.UIAmountString,
		})
	}
	return balances, nil
}

// decodeAccount converts the wire form (base58 owner, base64 data) to AccountInfo.
func (c *HTTPClient) decodeAccount(v *accountValue) (*AccountInfo, error) {
	owner, err := c.keys.parse(v.Owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}

	info := &AccountInfo{
		Lamports:   v.Lamports,
		Owner:      owner,
		Executable: v.Executable,
		RentEpoch:  v.RentEpoch,
	}

	if len(v.Data) >= 1 {
		data, err := base64.StdEncoding.DecodeString(v.Data[0])
		if err != nil {
			return nil, fmt.Errorf("decode account data: %w", err)
		}
		info.Data = data
	}

	return info, nil
}

type rpcContext struct {
	Slot int64 `json:"slot"`
}

type accountValue struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Data       []string `json:"data"` // [base64_data, encoding]
	Executable bool     `json:"executable"`
	RentEpoch  uint64   `json:"rentEpoch"`
}

type getAccountInfoResult struct {
	Context rpcContext    `json:"context"`
	Value   *accountValue `json:"value"`
}

type getMultipleAccountsResult struct {
	Context rpcContext      `json:"context"`
	Value   []*accountValue `json:"value"`
}

type programAccount struct {
	Pubkey  string       `json:"pubkey"`
	Account accountValue `json:"account"`
}

type getProgramAccountsResult struct {
	Context rpcContext       `json:"context"`
	Value   []programAccount `json:"value"`
}

type tokenBalanceValue struct {
	Address        string `json:"address"`
	Amount         string `json:"amount"`
	Decimals       uint8  `json:"decimals"`
	UIAmountString string `json:"uiAmountString"`
}

type getTokenLargestAccountsResult struct {
	Context rpcContext          `json:"context"`
	Value   []tokenBalanceValue `json:"value"`
}

var _ RPCClient = (*HTTPClient)(nil)
