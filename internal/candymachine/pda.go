package candymachine

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
)

// AuthorityPDA derives the candy machine authority ("candy_machine", cm) under
// the Candy Machine Core program.
func AuthorityPDA(candyMachine common.PublicKey) (common.PublicKey, error) {
	pda, _, err := common.FindProgramAddress(
		[][]byte{[]byte("candy_machine"), candyMachine.Bytes()},
		CandyMachineCoreProgramID,
	)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("derive authority pda: %w", err)
	}
	return pda, nil
}

// CreatorPDA derives the V2 candy machine creator and its bump.
func CreatorPDA(candyMachine common.PublicKey) (common.PublicKey, uint8, error) {
	pda, bump, err := common.FindProgramAddress(
		[][]byte{[]byte("candy_machine"), candyMachine.Bytes()},
		CandyMachineV2ProgramID,
	)
	if err != nil {
		return common.PublicKey{}, 0, fmt.Errorf("derive creator pda: %w", err)
	}
	return pda, bump, nil
}

// MetadataPDA derives the Token Metadata account of mint.
func MetadataPDA(mint common.PublicKey) (common.PublicKey, error) {
	pda, err := token_metadata.GetTokenMetaPubkey(mint)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("derive metadata pda: %w", err)
	}
	return pda, nil
}

// MasterEditionPDA derives the master edition account of mint.
func MasterEditionPDA(mint common.PublicKey) (common.PublicKey, error) {
	pda, err := token_metadata.GetMasterEdition(mint)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("derive master edition pda: %w", err)
	}
	return pda, nil
}

// CollectionDelegateRecordPDA derives the metadata delegate record that lets
// the candy machine authority verify items into its collection.
func CollectionDelegateRecordPDA(collectionMint, updateAuthority, delegate common.PublicKey) (common.PublicKey, error) {
	pda, _, err := common.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			TokenMetadataProgramID.Bytes(),
			collectionMint.Bytes(),
			[]byte("collection_delegate"),
			updateAuthority.Bytes(),
			delegate.Bytes(),
		},
		TokenMetadataProgramID,
	)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("derive collection delegate record: %w", err)
	}
	return pda, nil
}

// TokenRecordPDA derives the programmable NFT token record for a token account.
func TokenRecordPDA(mint, tokenAccount common.PublicKey) (common.PublicKey, error) {
	pda, _, err := common.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			TokenMetadataProgramID.Bytes(),
			mint.Bytes(),
			[]byte("token_record"),
			tokenAccount.Bytes(),
		},
		TokenMetadataProgramID,
	)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("derive token record: %w", err)
	}
	return pda, nil
}
