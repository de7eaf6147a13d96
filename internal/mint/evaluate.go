package mint

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"mvcm/internal/candymachine"
	"mvcm/internal/domain"
	"mvcm/internal/solana"
	"mvcm/internal/wallet"
)

// NativeTicker is the ticker of lamport-denominated prices.
const NativeTicker = "SOL"

const nativeDecimals = 9

// Button labels.
const (
	LabelMint                = "mint"
	LabelInsufficientBalance = "insufficient balance"
	LabelNoTokenAccount      = "no token account"
	LabelSoldOut             = "sold out"
	LabelConnectWallet       = "connect wallet"
	LabelMinting             = "minting..."
	LabelNoCandyGuard        = "no candy guard"
)

// ButtonState is the mint button view model.
type ButtonState struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// PaymentKind is the unit a candy machine charges in.
type PaymentKind string

const (
	PaymentNone   PaymentKind = "none"
	PaymentNative PaymentKind = "native"
	PaymentToken  PaymentKind = "token"
)

// Payment is the single price the button is evaluated against.
type Payment struct {
	Kind     PaymentKind
	Guard    string // solPayment, tokenPayment, tokenBurn or price (V2)
	Amount   uint64 // base units
	Mint     string // token payments only
	Decimals uint8
	Ticker   string
}

// Display returns Amount scaled by Decimals.
func (p Payment) Display() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(p.Amount), -int32(p.Decimals))
}

// Evaluation is the outcome of checking a wallet against a candy machine.
type Evaluation struct {
	Payment   Payment
	Button    ButtonState
	Unhandled []string
}

// TokenSource resolves payment token decimals and symbols.
type TokenSource interface {
	FetchToken(ctx context.Context, mint string) (*candymachine.TokenInfo, error)
}

// BalanceReader reads wallet balances.
type BalanceReader interface {
	Balance(ctx context.Context, owner string) (uint64, error)
	TokenAccount(ctx context.Context, owner, mint string) (*wallet.TokenHolding, error)
}

// ResolvePayment picks the payment the button is evaluated against. For V3
// only one guard is considered, in the order solPayment, tokenPayment,
// tokenBurn; other enabled guards are reported as unhandled.
func ResolvePayment(ctx context.Context, cm *domain.CandyMachine, group string, tokens TokenSource) (Payment, []string, error) {
	native := Payment{Kind: PaymentNative, Decimals: nativeDecimals, Ticker: NativeTicker}

	switch cm.Version {
	case domain.VersionV2:
		if cm.TokenMint == nil {
			native.Guard = "price"
			native.Amount = cm.Price
			return native, nil, nil
		}
		p, err := tokenPayment(ctx, tokens, "price", *cm.TokenMint, cm.Price)
		return p, nil, err

	case domain.VersionV3:
		if cm.CandyGuard == nil {
			return Payment{Kind: PaymentNone, Decimals: nativeDecimals, Ticker: NativeTicker}, nil, nil
		}
		gs, ok := cm.CandyGuard.Guards(group)
		if !ok {
			return Payment{}, nil, fmt.Errorf("unknown guard group %q", group)
		}
		unhandled := gs.Unhandled()

		switch {
		case gs.SolPayment != nil:
			native.Guard = "solPayment"
			native.Amount = gs.SolPayment.Lamports
			return native, unhandled, nil
		case gs.TokenPayment != nil:
			p, err := tokenPayment(ctx, tokens, "tokenPayment", gs.TokenPayment.Mint, gs.TokenPayment.Amount)
			return p, unhandled, err
		case gs.TokenBurn != nil:
			p, err := tokenPayment(ctx, tokens, "tokenBurn", gs.TokenBurn.Mint, gs.TokenBurn.Amount)
			return p, unhandled, err
		}
		return Payment{Kind: PaymentNone, Decimals: nativeDecimals, Ticker: NativeTicker}, unhandled, nil
	}

	return Payment{}, nil, fmt.Errorf("unsupported candy machine version %q", cm.Version)
}

func tokenPayment(ctx context.Context, tokens TokenSource, guard, mint string, amount uint64) (Payment, error) {
	info, err := tokens.FetchToken(ctx, mint)
	if err != nil {
		return Payment{}, fmt.Errorf("payment token %s: %w", mint, err)
	}
	ticker := info.Symbol
	if ticker == "" {
		ticker = solana.TruncateAddress(mint)
	}
	return Payment{
		Kind:     PaymentToken,
		Guard:    guard,
		Amount:   amount,
		Mint:     mint,
		Decimals: info.Decimals,
		Ticker:   ticker,
	}, nil
}

// EvaluateButton derives the button state for owner. An empty owner means no
// wallet is connected.
func EvaluateButton(ctx context.Context, cm *domain.CandyMachine, p Payment, owner string, balances BalanceReader) (ButtonState, error) {
	if owner == "" {
		return ButtonState{Label: LabelConnectWallet, Disabled: true}, nil
	}
	if cm.ItemsRemaining() == 0 {
		return ButtonState{Label: LabelSoldOut, Disabled: true}, nil
	}
	// V3 mints go through the candy guard program.
	if cm.Version == domain.VersionV3 && cm.CandyGuard == nil {
		return ButtonState{Label: LabelNoCandyGuard, Disabled: true}, nil
	}

	switch p.Kind {
	case PaymentNative:
		balance, err := balances.Balance(ctx, owner)
		if err != nil {
			return ButtonState{}, err
		}
		if balance < p.Amount {
			return ButtonState{Label: LabelInsufficientBalance, Disabled: true}, nil
		}

	case PaymentToken:
		holding, err := balances.TokenAccount(ctx, owner, p.Mint)
		if errors.Is(err, wallet.ErrNoTokenAccount) {
			return ButtonState{Label: LabelNoTokenAccount, Disabled: true}, nil
		}
		if err != nil {
			return ButtonState{}, err
		}
		if holding.Amount < p.Amount {
			return ButtonState{Label: LabelInsufficientBalance, Disabled: true}, nil
		}
	}

	return ButtonState{Label: LabelMint}, nil
}

// Evaluate resolves the payment and the button state in one step.
func Evaluate(ctx context.Context, cm *domain.CandyMachine, group, owner string, tokens TokenSource, balances BalanceReader) (*Evaluation, error) {
	p, unhandled, err := ResolvePayment(ctx, cm, group, tokens)
	if err != nil {
		return nil, err
	}
	button, err := EvaluateButton(ctx, cm, p, owner, balances)
	if err != nil {
		return nil, fmt.Errorf("evaluate balance: %w", err)
	}
	return &Evaluation{Payment: p, Button: button, Unhandled: unhandled}, nil
}
