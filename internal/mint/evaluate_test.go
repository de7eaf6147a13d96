package mint

import (
	"context"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mvcm/internal/candymachine"
	"mvcm/internal/domain"
	"mvcm/internal/solana"
)

func TestEvaluate_NativePrice(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	cm := &domain.CandyMachine{Version: domain.VersionV2, Price: 1_500_000_000, ItemsAvailable: 10}

	tests := []struct {
		balance  uint64
		label    string
		disabled bool
	}{
		{0, LabelInsufficientBalance, true},
		{1_499_999_999, LabelInsufficientBalance, true},
		{1_500_000_000, LabelMint, false},
		{9_000_000_000, LabelMint, false},
	}

	for _, tt := range tests {
		h.rpc.SetBalance(h.owner(), tt.balance)
		eval, err := Evaluate(ctx, cm, "", h.owner(), h.client, h.backend.Balances)
		require.NoError(t, err)

		assert.Equal(t, tt.label, eval.Button.Label, "balance %d", tt.balance)
		assert.Equal(t, tt.disabled, eval.Button.Disabled, "balance %d", tt.balance)
		assert.Equal(t, NativeTicker, eval.Payment.Ticker)
		assert.Equal(t, "1.5", eval.Payment.Display().String())
	}
}

func TestEvaluate_SolPaymentGuard(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	cm := &domain.CandyMachine{
		Version:        domain.VersionV3,
		ItemsAvailable: 5,
		CandyGuard: &domain.CandyGuard{Default: domain.GuardSet{
			SolPayment:   &domain.SolPaymentGuard{Lamports: 100_000_000},
			TokenPayment: &domain.TokenPaymentGuard{Amount: 1, Mint: "ignored"},
			Enabled:      []string{"solPayment", "tokenPayment", "nftGate"},
		}},
	}

	h.rpc.SetBalance(h.owner(), 99_999_999)
	eval, err := Evaluate(ctx, cm, "", h.owner(), h.client, h.backend.Balances)
	require.NoError(t, err)

	assert.Equal(t, PaymentNative, eval.Payment.Kind)
	assert.Equal(t, "solPayment", eval.Payment.Guard)
	assert.Equal(t, "0.1", eval.Payment.Display().String())
	assert.Equal(t, LabelInsufficientBalance, eval.Button.Label)
	assert.Equal(t, []string{"nftGate"}, eval.Unhandled)
}

func TestEvaluate_TokenPaymentGuard(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	mint := types.NewAccount().PublicKey
	h.client.tokens[mint.ToBase58()] = &candymachine.TokenInfo{Mint: mint.ToBase58(), Decimals: 6, Symbol: "USDC"}

	id := h.addTokenV3(2_500_000, mint.ToBase58())
	cm := h.client.machines[id]

	eval, err := Evaluate(ctx, cm, "", h.owner(), h.client, h.backend.Balances)
	require.NoError(t, err)
	assert.Equal(t, LabelNoTokenAccount, eval.Button.Label)
	assert.True(t, eval.Button.Disabled)
	assert.Equal(t, "USDC", eval.Payment.Ticker)
	assert.Equal(t, "2.5", eval.Payment.Display().String())

	h.rpc.SetTokenBalance(types.NewAccount().PublicKey.ToBase58(), 1_000_000_000, 6)
	eval, err = Evaluate(ctx, cm, "", h.owner(), h.client, h.backend.Balances)
	require.NoError(t, err)
	assert.Equal(t, LabelNoTokenAccount, eval.Button.Label)
	assert.True(t, eval.Button.Disabled)

	ata, _, err := common.FindAssociatedTokenAddress(h.account.PublicKey, mint)
	require.NoError(t, err)
	h.rpc.SetTokenBalance(ata.ToBase58(), 2_499_999, 6)

	eval, err = Evaluate(ctx, cm, "", h.owner(), h.client, h.backend.Balances)
	require.NoError(t, err)
	assert.Equal(t, LabelInsufficientBalance, eval.Button.Label)
	assert.True(t, eval.Button.Disabled)

	h.rpc.SetTokenBalance(ata.ToBase58(), 2_500_000, 6)
	eval, err = Evaluate(ctx, cm, "", h.owner(), h.client, h.backend.Balances)
	require.NoError(t, err)
	assert.Equal(t, LabelMint, eval.Button.Label)
	assert.False(t, eval.Button.Disabled)
}

func TestEvaluate_TokenBurnTickerFallback(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	mint := types.NewAccount().PublicKey.ToBase58()
	h.client.tokens[mint] = &candymachine.TokenInfo{Mint: mint, Decimals: 0}

	cm := &domain.CandyMachine{
		Version:        domain.VersionV3,
		ItemsAvailable: 5,
		CandyGuard: &domain.CandyGuard{Default: domain.GuardSet{
			TokenBurn: &domain.TokenBurnGuard{Amount: 1, Mint: mint},
		}},
	}

	eval, err := Evaluate(ctx, cm, "", h.owner(), h.client, h.backend.Balances)
	require.NoError(t, err)
	assert.Equal(t, "tokenBurn", eval.Payment.Guard)
	assert.Equal(t, solana.TruncateAddress(mint), eval.Payment.Ticker)
	assert.Equal(t, LabelNoTokenAccount, eval.Button.Label)
}

func TestEvaluate_V2TokenPrice(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	mint := types.NewAccount().PublicKey.ToBase58()
	h.client.tokens[mint] = &candymachine.TokenInfo{Mint: mint, Decimals: 2, Symbol: "TKN"}

	cm := &domain.CandyMachine{Version: domain.VersionV2, Price: 150, TokenMint: &mint, ItemsAvailable: 3}
	eval, err := Evaluate(ctx, cm, "", h.owner(), h.client, h.backend.Balances)
	require.NoError(t, err)

	assert.Equal(t, PaymentToken, eval.Payment.Kind)
	assert.Equal(t, "1.5", eval.Payment.Display().String())
	assert.Equal(t, LabelNoTokenAccount, eval.Button.Label)
}

func TestEvaluate_ConnectWalletAndSoldOut(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.rpc.SetBalance(h.owner(), 10_000_000_000)

	cm := &domain.CandyMachine{Version: domain.VersionV2, Price: 1, ItemsAvailable: 2, ItemsRedeemed: 2}

	eval, err := Evaluate(ctx, cm, "", "", h.client, h.backend.Balances)
	require.NoError(t, err)
	assert.Equal(t, ButtonState{Label: LabelConnectWallet, Disabled: true}, eval.Button)

	eval, err = Evaluate(ctx, cm, "", h.owner(), h.client, h.backend.Balances)
	require.NoError(t, err)
	assert.Equal(t, ButtonState{Label: LabelSoldOut, Disabled: true}, eval.Button)
}

func TestEvaluate_NoGuards(t *testing.T) {
	h := newHarness()
	cm := &domain.CandyMachine{Version: domain.VersionV3, ItemsAvailable: 1, CandyGuard: &domain.CandyGuard{}}

	eval, err := Evaluate(context.Background(), cm, "", h.owner(), h.client, h.backend.Balances)
	require.NoError(t, err)
	assert.Equal(t, PaymentNone, eval.Payment.Kind)
	assert.Equal(t, LabelMint, eval.Button.Label)
	assert.Equal(t, 0, h.rpc.Calls("getBalance"))
}

func TestEvaluate_WithoutCandyGuard(t *testing.T) {
	h := newHarness()
	cm := &domain.CandyMachine{Version: domain.VersionV3, ItemsAvailable: 1}

	eval, err := Evaluate(context.Background(), cm, "", h.owner(), h.client, h.backend.Balances)
	require.NoError(t, err)
	assert.Equal(t, PaymentNone, eval.Payment.Kind)
	assert.Equal(t, ButtonState{Label: LabelNoCandyGuard, Disabled: true}, eval.Button)
}

func TestEvaluate_UnknownGroup(t *testing.T) {
	h := newHarness()
	cm := &domain.CandyMachine{Version: domain.VersionV3, ItemsAvailable: 1, CandyGuard: &domain.CandyGuard{}}

	_, err := Evaluate(context.Background(), cm, "vip", h.owner(), h.client, h.backend.Balances)
	assert.Error(t, err)
}
