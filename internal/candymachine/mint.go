package candymachine

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"mvcm/internal/domain"
)

// MintInstructions builds the instructions that mint one item of cm to payer
// using nftMint as the new mint account. group selects a candy guard group and
// is ignored for V2.
func (c *Client) MintInstructions(ctx context.Context, cm *domain.CandyMachine, payer, nftMint common.PublicKey, group string) ([]types.Instruction, error) {
	switch cm.Version {
	case domain.VersionV3:
		if cm.CandyGuard == nil {
			return nil, errNoCandyGuard
		}
		guards, ok := cm.CandyGuard.Guards(group)
		if !ok {
			return nil, fmt.Errorf("unknown guard group %q", group)
		}
		collection, err := c.FetchMetadata(ctx, cm.CollectionMint)
		if err != nil {
			return nil, fmt.Errorf("collection: %w", err)
		}
		ix, err := MintV3Instruction(MintV3Params{
			CandyMachine:              cm,
			Guards:                    guards,
			Group:                     group,
			Payer:                     payer,
			NFTMint:                   nftMint,
			CollectionUpdateAuthority: common.PublicKeyFromString(collection.UpdateAuthority),
		})
		if err != nil {
			return nil, err
		}
		return []types.Instruction{ix}, nil

	case domain.VersionV2:
		rent, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, MintAccountSize)
		if err != nil {
			return nil, fmt.Errorf("mint rent: %w", err)
		}
		return MintV2Instructions(MintV2Params{
			CandyMachine: cm,
			Payer:        payer,
			NFTMint:      nftMint,
			RentLamports: rent,
		})

	default:
		return nil, fmt.Errorf("unsupported candy machine version %q", cm.Version)
	}
}
