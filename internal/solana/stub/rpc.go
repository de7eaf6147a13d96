package stub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"mvcm/internal/solana"
)

// ErrSendRejected is the default error for rejected transactions.
var ErrSendRejected = errors.New("transaction rejected")

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	mu sync.Mutex

	Accounts      map[string]*solana.AccountInfo
	Balances      map[string]uint64
	TokenBalances map[string]*solana.TokenAmount
	Statuses      map[string]*solana.SignatureStatus
	Rent          uint64
	Blockhash     string

	// SendErr, when set, is returned by SendTransaction.
	SendErr error
	// Sent collects every serialized transaction passed to SendTransaction.
	Sent [][]byte
	// NextSignature is returned by SendTransaction.
	NextSignature string

	calls map[string]int
}

// Compile-time interface check.
var _ solana.RPCClient = (*RPCClient)(nil)

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Accounts:      make(map[string]*solana.AccountInfo),
		Balances:      make(map[string]uint64),
		TokenBalances: make(map[string]*solana.TokenAmount),
		Statuses:      make(map[string]*solana.SignatureStatus),
		Rent:          1_461_600,
		Blockhash:     "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N",
		NextSignature: "5stubSignature",
		calls:         make(map[string]int),
	}
}

func (c *RPCClient) record(method string) {
	c.calls[method]++
}

// Calls returns how many times method was invoked.
func (c *RPCClient) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// GetAccountInfo returns the stored account or nil.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("getAccountInfo")

	acc, ok := c.Accounts[pubkey]
	if !ok {
		return nil, nil
	}
	cp := *acc
	cp.Address = pubkey
	return &cp, nil
}

// GetMultipleAccounts returns stored accounts in request order.
func (c *RPCClient) GetMultipleAccounts(_ context.Context, pubkeys []string) ([]*solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("getMultipleAccounts")

	out := make([]*solana.AccountInfo, len(pubkeys))
	for i, pk := range pubkeys {
		if acc, ok := c.Accounts[pk]; ok {
			cp := *acc
			cp.Address = pk
			out[i] = &cp
		}
	}
	return out, nil
}

// GetBalance returns the stored lamport balance (0 when unknown).
func (c *RPCClient) GetBalance(_ context.Context, pubkey string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("getBalance")
	return c.Balances[pubkey], nil
}

// GetTokenAccountBalance returns the stored balance or nil.
func (c *RPCClient) GetTokenAccountBalance(_ context.Context, account string) (*solana.TokenAmount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("getTokenAccountBalance")
	bal, ok := c.TokenBalances[account]
	if !ok {
		return nil, nil
	}
	cp := *bal
	return &cp, nil
}

// GetLatestBlockhash returns the stub blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context) (*solana.Blockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("getLatestBlockhash")
	return &solana.Blockhash{Blockhash: c.Blockhash, LastValidBlockHeight: 1000}, nil
}

// GetMinimumBalanceForRentExemption returns the stub rent.
func (c *RPCClient) GetMinimumBalanceForRentExemption(_ context.Context, _ uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("getMinimumBalanceForRentExemption")
	return c.Rent, nil
}

// SendTransaction records the transaction and marks its signature finalized.
func (c *RPCClient) SendTransaction(_ context.Context, raw []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("sendTransaction")

	if c.SendErr != nil {
		return "", c.SendErr
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: empty transaction", ErrSendRejected)
	}
	c.Sent = append(c.Sent, raw)
	sig := c.NextSignature
	if _, ok := c.Statuses[sig]; !ok {
		c.Statuses[sig] = &solana.SignatureStatus{Slot: 1, ConfirmationStatus: solana.CommitmentFinalized}
	}
	return sig, nil
}

// GetSignatureStatuses returns stored statuses in request order.
func (c *RPCClient) GetSignatureStatuses(_ context.Context, signatures []string) ([]*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("getSignatureStatuses")

	out := make([]*solana.SignatureStatus, len(signatures))
	for i, sig := range signatures {
		if st, ok := c.Statuses[sig]; ok {
			cp := *st
			out[i] = &cp
		}
	}
	return out, nil
}

// SetAccount adds or replaces an account.
func (c *RPCClient) SetAccount(address, owner string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[address] = &solana.AccountInfo{Address: address, Owner: owner, Data: data, Lamports: 1}
}

// SetBalance sets the lamport balance of an account.
func (c *RPCClient) SetBalance(address string, lamports uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Balances[address] = lamports
}

// SetTokenBalance sets the balance of a token account.
func (c *RPCClient) SetTokenBalance(account string, amount uint64, decimals uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TokenBalances[account] = &solana.TokenAmount{Amount: amount, Decimals: decimals}
}
