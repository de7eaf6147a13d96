package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"mvcm/internal/solana"
)

// ErrNoTokenAccount is returned when the owner has no associated token account for a mint.
var ErrNoTokenAccount = errors.New("no token account")

// TokenHolding is an owner's balance of one SPL token.
type TokenHolding struct {
	Address  string
	Mint     string
	Amount   uint64
	Decimals uint8
}

// BalanceReader reads SOL and token balances for a wallet.
type BalanceReader struct {
	rpc solana.RPCClient
}

// NewBalanceReader creates a BalanceReader.
func NewBalanceReader(rpc solana.RPCClient) *BalanceReader {
	return &BalanceReader{rpc: rpc}
}

// Balance returns the owner's lamport balance.
func (b *BalanceReader) Balance(ctx context.Context, owner string) (uint64, error) {
	lamports, err := b.rpc.GetBalance(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return lamports, nil
}

// TokenAccount returns the balance held in the owner's associated token
// account for mint. Returns ErrNoTokenAccount when that account does not exist.
func (b *BalanceReader) TokenAccount(ctx context.Context, owner, mint string) (*TokenHolding, error) {
	ata, _, err := common.FindAssociatedTokenAddress(
		common.PublicKeyFromString(owner),
		common.PublicKeyFromString(mint),
	)
	if err != nil {
		return nil, fmt.Errorf("derive associated token address: %w", err)
	}

	bal, err := b.rpc.GetTokenAccountBalance(ctx, ata.ToBase58())
	if err != nil {
		return nil, fmt.Errorf("get token account balance: %w", err)
	}
	if bal == nil {
		return nil, ErrNoTokenAccount
	}
	return &TokenHolding{
		Address:  ata.ToBase58(),
		Mint:     mint,
		Amount:   bal.Amount,
		Decimals: bal.Decimals,
	}, nil
}
