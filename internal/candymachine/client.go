// Package candymachine reads Candy Machine V3 (with Candy Guard) and V2
// accounts and builds their mint instructions.
package candymachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"go.uber.org/zap"

	"mvcm/internal/domain"
	"mvcm/internal/observability"
	"mvcm/internal/solana"
)

// ErrLookup is returned when an identifier resolves to neither schema.
var ErrLookup = errors.New("provided id is neither cm v2 or v3.")

var (
	errAccountNotFound = errors.New("account not found")
	errWrongOwner      = errors.New("account owned by another program")
)

// Client fetches candy machine records over RPC.
type Client struct {
	rpc    solana.RPCClient
	logger *zap.Logger
}

// NewClient creates a candy machine client.
func NewClient(rpc solana.RPCClient, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{rpc: rpc, logger: logger}
}

// Fetch resolves id as a V3 candy machine, falling back to V2. When both
// fail the returned error wraps ErrLookup.
func (c *Client) Fetch(ctx context.Context, id string) (*domain.CandyMachine, error) {
	cm, errV3 := c.FetchV3(ctx, id)
	if errV3 == nil {
		observability.RecordLookup(domain.VersionV3.String(), true)
		c.logger.Debug("resolved candy machine", zap.String("id", id), zap.String("version", "v3"))
		return cm, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	cm, errV2 := c.FetchV2(ctx, id)
	if errV2 == nil {
		observability.RecordLookup(domain.VersionV2.String(), true)
		c.logger.Debug("resolved candy machine", zap.String("id", id), zap.String("version", "v2"),
			zap.NamedError("v3_error", errV3))
		return cm, nil
	}

	observability.RecordLookup("", false)
	c.logger.Warn("candy machine lookup failed", zap.String("id", id),
		zap.NamedError("v3_error", errV3), zap.NamedError("v2_error", errV2))
	return nil, fmt.Errorf("%w (v3: %v; v2: %v)", ErrLookup, errV3, errV2)
}

// FetchV3 loads a Candy Machine Core account and, when its mint authority is
// a candy guard, the guard as well.
func (c *Client) FetchV3(ctx context.Context, id string) (*domain.CandyMachine, error) {
	data, err := c.account(ctx, id, CandyMachineCoreProgramID)
	if err != nil {
		return nil, err
	}
	cm, err := DecodeCandyMachineV3(id, data)
	if err != nil {
		return nil, fmt.Errorf("decode candy machine: %w", err)
	}

	guardData, err := c.account(ctx, cm.MintAuthority, CandyGuardProgramID)
	switch {
	case errors.Is(err, errAccountNotFound), errors.Is(err, errWrongOwner):
		return cm, nil
	case err != nil:
		return nil, fmt.Errorf("fetch candy guard: %w", err)
	}
	if cm.CandyGuard, err = DecodeCandyGuard(cm.MintAuthority, guardData); err != nil {
		return nil, fmt.Errorf("decode candy guard: %w", err)
	}
	return cm, nil
}

// FetchV2 loads a Candy Machine V2 account.
func (c *Client) FetchV2(ctx context.Context, id string) (*domain.CandyMachine, error) {
	data, err := c.account(ctx, id, CandyMachineV2ProgramID)
	if err != nil {
		return nil, err
	}
	cm, err := DecodeCandyMachineV2(id, data)
	if err != nil {
		return nil, fmt.Errorf("decode candy machine v2: %w", err)
	}
	return cm, nil
}

// TokenInfo is what the mint view needs to know about a payment token.
type TokenInfo struct {
	Mint     string
	Decimals uint8
	Symbol   string // empty when the token has no metadata
}

// FetchToken reads a token mint and its metadata in one round trip.
func (c *Client) FetchToken(ctx context.Context, mint string) (*TokenInfo, error) {
	metadata, err := MetadataPDA(common.PublicKeyFromString(mint))
	if err != nil {
		return nil, err
	}

	accounts, err := c.rpc.GetMultipleAccounts(ctx, []string{mint, metadata.ToBase58()})
	if err != nil {
		return nil, fmt.Errorf("get token accounts: %w", err)
	}
	if len(accounts) != 2 || accounts[0] == nil {
		return nil, fmt.Errorf("token mint %s: %w", mint, errAccountNotFound)
	}

	decimals, err := DecodeMintDecimals(accounts[0].Data)
	if err != nil {
		return nil, fmt.Errorf("decode mint %s: %w", mint, err)
	}
	info := &TokenInfo{Mint: mint, Decimals: decimals}

	if accounts[1] != nil {
		md, err := DecodeMetadata(accounts[1].Data)
		if err != nil {
			c.logger.Debug("ignoring undecodable token metadata", zap.String("mint", mint), zap.Error(err))
		} else {
			info.Symbol = md.Symbol
		}
	}
	return info, nil
}

// FetchMetadata reads the Token Metadata account of mint.
func (c *Client) FetchMetadata(ctx context.Context, mint string) (*Metadata, error) {
	pda, err := MetadataPDA(common.PublicKeyFromString(mint))
	if err != nil {
		return nil, err
	}
	data, err := c.account(ctx, pda.ToBase58(), TokenMetadataProgramID)
	if err != nil {
		return nil, fmt.Errorf("metadata of %s: %w", mint, err)
	}
	md, err := DecodeMetadata(data)
	if err != nil {
		return nil, fmt.Errorf("decode metadata of %s: %w", mint, err)
	}
	return md, nil
}

func (c *Client) account(ctx context.Context, address string, owner common.PublicKey) ([]byte, error) {
	info, err := c.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", address, err)
	}
	if info == nil {
		return nil, fmt.Errorf("%s: %w", address, errAccountNotFound)
	}
	if info.Owner != owner.ToBase58() {
		return nil, fmt.Errorf("%s: %w: %s", address, errWrongOwner, info.Owner)
	}
	return info.Data, nil
}
