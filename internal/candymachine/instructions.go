package candymachine

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/compute_budget"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"

	"mvcm/internal/domain"
)

// DefaultComputeUnits is the compute budget requested for a mint transaction.
const DefaultComputeUnits uint32 = 800_000

// TokenStandardProgrammable marks candy machines that mint programmable NFTs.
const TokenStandardProgrammable uint8 = 4

var errNoCandyGuard = errors.New("candy machine has no candy guard")

// ComputeUnitLimit returns the SetComputeUnitLimit instruction.
func ComputeUnitLimit(units uint32) types.Instruction {
	return compute_budget.SetComputeUnitLimit(compute_budget.SetComputeUnitLimitParam{
		Units: units,
	})
}

// MintV3Params are the inputs of a candy guard mint_v2 instruction.
type MintV3Params struct {
	CandyMachine              *domain.CandyMachine
	Guards                    domain.GuardSet
	Group                     string
	Payer                     common.PublicKey
	NFTMint                   common.PublicKey
	CollectionUpdateAuthority common.PublicKey
}

// MintV3Instruction builds the candy guard mint_v2 instruction. The payer is
// also the minter and the new mint's authority. Remaining accounts are
// appended for every handled payment guard in the set.
func MintV3Instruction(p MintV3Params) (types.Instruction, error) {
	cm := p.CandyMachine
	if cm == nil || cm.CandyGuard == nil {
		return types.Instruction{}, errNoCandyGuard
	}

	cmKey := common.PublicKeyFromString(cm.Address)
	guardKey := common.PublicKeyFromString(cm.CandyGuard.Address)
	collectionMint := common.PublicKeyFromString(cm.CollectionMint)

	authority, err := AuthorityPDA(cmKey)
	if err != nil {
		return types.Instruction{}, err
	}
	metadata, err := MetadataPDA(p.NFTMint)
	if err != nil {
		return types.Instruction{}, err
	}
	masterEdition, err := MasterEditionPDA(p.NFTMint)
	if err != nil {
		return types.Instruction{}, err
	}
	ata, _, err := common.FindAssociatedTokenAddress(p.Payer, p.NFTMint)
	if err != nil {
		return types.Instruction{}, fmt.Errorf("derive nft token account: %w", err)
	}
	delegateRecord, err := CollectionDelegateRecordPDA(collectionMint, p.CollectionUpdateAuthority, authority)
	if err != nil {
		return types.Instruction{}, err
	}
	collectionMetadata, err := MetadataPDA(collectionMint)
	if err != nil {
		return types.Instruction{}, err
	}
	collectionEdition, err := MasterEditionPDA(collectionMint)
	if err != nil {
		return types.Instruction{}, err
	}

	// Anchor encodes an absent optional account as the program id.
	none := CandyGuardProgramID
	tokenRecord := none
	if cm.TokenStandard == TokenStandardProgrammable {
		if tokenRecord, err = TokenRecordPDA(p.NFTMint, ata); err != nil {
			return types.Instruction{}, err
		}
	}

	accounts := []types.AccountMeta{
		{PubKey: guardKey},
		{PubKey: CandyMachineCoreProgramID},
		{PubKey: cmKey, IsWritable: true},
		{PubKey: authority, IsWritable: true},
		{PubKey: p.Payer, IsSigner: true, IsWritable: true},
		{PubKey: p.Payer, IsSigner: true, IsWritable: true}, // minter
		{PubKey: p.NFTMint, IsSigner: true, IsWritable: true},
		{PubKey: p.Payer, IsSigner: true}, // mint authority
		{PubKey: metadata, IsWritable: true},
		{PubKey: masterEdition, IsWritable: true},
		{PubKey: ata, IsWritable: true},
		{PubKey: tokenRecord, IsWritable: tokenRecord != none},
		{PubKey: delegateRecord},
		{PubKey: collectionMint},
		{PubKey: collectionMetadata, IsWritable: true},
		{PubKey: collectionEdition},
		{PubKey: p.CollectionUpdateAuthority},
		{PubKey: TokenMetadataProgramID},
		{PubKey: common.TokenProgramID},
		{PubKey: AssociatedTokenProgramID},
		{PubKey: common.SystemProgramID},
		{PubKey: SysvarInstructions},
		{PubKey: SysvarSlotHashes},
		{PubKey: none}, // authorization rules program
		{PubKey: none}, // authorization rules
	}

	remaining, err := guardAccounts(p.Guards, p.Payer)
	if err != nil {
		return types.Instruction{}, err
	}
	accounts = append(accounts, remaining...)

	return types.Instruction{
		ProgramID: CandyGuardProgramID,
		Accounts:  accounts,
		Data:      mintV2Data(p.Group),
	}, nil
}

// guardAccounts returns the remaining accounts of the handled payment guards,
// in guard order.
func guardAccounts(gs domain.GuardSet, payer common.PublicKey) ([]types.AccountMeta, error) {
	var out []types.AccountMeta

	if g := gs.SolPayment; g != nil {
		out = append(out, types.AccountMeta{
			PubKey:     common.PublicKeyFromString(g.Destination),
			IsWritable: true,
		})
	}
	if g := gs.TokenPayment; g != nil {
		mint := common.PublicKeyFromString(g.Mint)
		source, _, err := common.FindAssociatedTokenAddress(payer, mint)
		if err != nil {
			return nil, fmt.Errorf("derive token payment source: %w", err)
		}
		out = append(out,
			types.AccountMeta{PubKey: source, IsWritable: true},
			types.AccountMeta{PubKey: common.PublicKeyFromString(g.DestinationATA), IsWritable: true},
		)
	}
	if g := gs.TokenBurn; g != nil {
		mint := common.PublicKeyFromString(g.Mint)
		source, _, err := common.FindAssociatedTokenAddress(payer, mint)
		if err != nil {
			return nil, fmt.Errorf("derive token burn source: %w", err)
		}
		out = append(out,
			types.AccountMeta{PubKey: source, IsWritable: true},
			types.AccountMeta{PubKey: mint, IsWritable: true},
		)
	}
	return out, nil
}

// mintV2Data is the discriminator, empty mint args and the optional group label.
func mintV2Data(group string) []byte {
	data := make([]byte, 0, 8+4+1+4+len(group))
	data = append(data, mintV2Discriminator...)
	data = binary.LittleEndian.AppendUint32(data, 0)
	if group == "" {
		return append(data, 0)
	}
	data = append(data, 1)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(group)))
	return append(data, group...)
}

// MintV2Params are the inputs of a Candy Machine V2 mint.
type MintV2Params struct {
	CandyMachine *domain.CandyMachine
	Payer        common.PublicKey
	NFTMint      common.PublicKey
	RentLamports uint64 // rent-exempt minimum for a mint account
}

// MintV2Instructions builds the V2 mint sequence: create and initialize the
// NFT mint, create the payer's token account, mint one token, then mint_nft.
func MintV2Instructions(p MintV2Params) ([]types.Instruction, error) {
	cm := p.CandyMachine
	if cm == nil {
		return nil, errors.New("candy machine is required")
	}

	cmKey := common.PublicKeyFromString(cm.Address)
	creator, bump, err := CreatorPDA(cmKey)
	if err != nil {
		return nil, err
	}
	metadata, err := MetadataPDA(p.NFTMint)
	if err != nil {
		return nil, err
	}
	masterEdition, err := MasterEditionPDA(p.NFTMint)
	if err != nil {
		return nil, err
	}
	ata, _, err := common.FindAssociatedTokenAddress(p.Payer, p.NFTMint)
	if err != nil {
		return nil, fmt.Errorf("derive nft token account: %w", err)
	}

	freeze := p.Payer
	ixs := []types.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     p.Payer,
			New:      p.NFTMint,
			Owner:    common.TokenProgramID,
			Lamports: p.RentLamports,
			Space:    token.MintAccountSize,
		}),
		token.InitializeMint(token.InitializeMintParam{
			Decimals:   0,
			Mint:       p.NFTMint,
			MintAuth:   p.Payer,
			FreezeAuth: &freeze,
		}),
		associated_token_account.CreateAssociatedTokenAccount(associated_token_account.CreateAssociatedTokenAccountParam{
			Funder:                 p.Payer,
			Owner:                  p.Payer,
			Mint:                   p.NFTMint,
			AssociatedTokenAccount: ata,
		}),
		token.MintTo(token.MintToParam{
			Mint:   p.NFTMint,
			To:     ata,
			Auth:   p.Payer,
			Amount: 1,
		}),
	}

	accounts := []types.AccountMeta{
		{PubKey: cmKey, IsWritable: true},
		{PubKey: creator},
		{PubKey: p.Payer, IsSigner: true, IsWritable: true},
		{PubKey: common.PublicKeyFromString(cm.Wallet), IsWritable: true},
		{PubKey: metadata, IsWritable: true},
		{PubKey: p.NFTMint, IsWritable: true},
		{PubKey: p.Payer, IsSigner: true}, // mint authority
		{PubKey: p.Payer, IsSigner: true}, // update authority
		{PubKey: masterEdition, IsWritable: true},
		{PubKey: TokenMetadataProgramID},
		{PubKey: common.TokenProgramID},
		{PubKey: common.SystemProgramID},
		{PubKey: SysvarRent},
		{PubKey: SysvarClock},
		{PubKey: SysvarSlotHashes},
		{PubKey: SysvarInstructions},
	}
	if cm.TokenMint != nil {
		source, _, err := common.FindAssociatedTokenAddress(p.Payer, common.PublicKeyFromString(*cm.TokenMint))
		if err != nil {
			return nil, fmt.Errorf("derive payment token account: %w", err)
		}
		accounts = append(accounts,
			types.AccountMeta{PubKey: source, IsWritable: true},
			types.AccountMeta{PubKey: p.Payer, IsSigner: true}, // transfer authority
		)
	}

	data := make([]byte, 0, 9)
	data = append(data, mintNFTDiscriminator...)
	data = append(data, bump)

	ixs = append(ixs, types.Instruction{
		ProgramID: CandyMachineV2ProgramID,
		Accounts:  accounts,
		Data:      data,
	})
	return ixs, nil
}
