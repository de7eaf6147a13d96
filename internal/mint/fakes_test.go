package mint

import (
	"context"
	"errors"
	"sync"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"mvcm/internal/candymachine"
	"mvcm/internal/domain"
	"mvcm/internal/network"
	"mvcm/internal/solana"
	"mvcm/internal/solana/stub"
	"mvcm/internal/wallet"
)

type fakeClient struct {
	mu       sync.Mutex
	machines map[string]*domain.CandyMachine
	tokens   map[string]*candymachine.TokenInfo
	names    map[string]string
	fetches  int
	mintErr  error
	// onFetch runs before each lookup without holding mu.
	onFetch func()
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		machines: make(map[string]*domain.CandyMachine),
		tokens:   make(map[string]*candymachine.TokenInfo),
		names:    make(map[string]string),
	}
}

func (c *fakeClient) Fetch(_ context.Context, id string) (*domain.CandyMachine, error) {
	if c.onFetch != nil {
		c.onFetch()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches++
	cm, ok := c.machines[id]
	if !ok {
		return nil, candymachine.ErrLookup
	}
	cp := *cm
	return &cp, nil
}

func (c *fakeClient) fetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

func (c *fakeClient) FetchToken(_ context.Context, mint string) (*candymachine.TokenInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.tokens[mint]
	if !ok {
		return nil, errors.New("mint not found")
	}
	return info, nil
}

func (c *fakeClient) FetchMetadata(_ context.Context, mint string) (*candymachine.Metadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.names[mint]
	if !ok {
		return nil, errors.New("metadata not found")
	}
	return &candymachine.Metadata{Mint: mint, Name: name}, nil
}

func (c *fakeClient) MintInstructions(_ context.Context, _ *domain.CandyMachine, payer, nftMint common.PublicKey, _ string) ([]types.Instruction, error) {
	if c.mintErr != nil {
		return nil, c.mintErr
	}
	return []types.Instruction{{
		ProgramID: candymachine.CandyMachineV2ProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: payer, IsSigner: true, IsWritable: true},
			{PubKey: nftMint, IsSigner: true, IsWritable: true},
		},
		Data: []byte{1},
	}}, nil
}

// blockingConfirmer holds confirmations until release is closed.
type blockingConfirmer struct {
	started chan struct{}
	release chan struct{}
}

func (c *blockingConfirmer) Confirm(ctx context.Context, _ string) error {
	close(c.started)
	select {
	case <-c.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type harness struct {
	rpc     *stub.RPCClient
	client  *fakeClient
	wallet  *wallet.Session
	account types.Account
	backend Backend
}

func newHarness() *harness {
	rpc := stub.NewRPCClient()
	client := newFakeClient()
	acc := types.NewAccount()
	w := wallet.NewSession(nil, nil)
	w.Connect(acc)

	n := network.Devnet
	return &harness{
		rpc:     rpc,
		client:  client,
		wallet:  w,
		account: acc,
		backend: Backend{
			Network:   n,
			Endpoints: n.Endpoints(),
			RPC:       rpc,
			Client:    client,
			Balances:  wallet.NewBalanceReader(rpc),
			Confirmer: solana.NewConfirmer(rpc, nil, solana.CommitmentConfirmed),
		},
	}
}

func (h *harness) owner() string {
	return h.account.PublicKey.ToBase58()
}

// addV2 registers a native-priced V2 machine under a fresh on-curve address.
func (h *harness) addV2(price, redeemed, available uint64) string {
	id := types.NewAccount().PublicKey.ToBase58()
	h.client.machines[id] = &domain.CandyMachine{
		Version:        domain.VersionV2,
		Address:        id,
		Price:          price,
		ItemsAvailable: available,
		ItemsRedeemed:  redeemed,
	}
	return id
}

// addTokenV3 registers a V3 machine with a tokenPayment guard.
func (h *harness) addTokenV3(amount uint64, mint string) string {
	id := types.NewAccount().PublicKey.ToBase58()
	h.client.machines[id] = &domain.CandyMachine{
		Version:        domain.VersionV3,
		Address:        id,
		ItemsAvailable: 10,
		CandyGuard: &domain.CandyGuard{
			Address: types.NewAccount().PublicKey.ToBase58(),
			Default: domain.GuardSet{
				TokenPayment: &domain.TokenPaymentGuard{Amount: amount, Mint: mint},
				Enabled:      []string{"tokenPayment"},
			},
		},
	}
	return id
}
