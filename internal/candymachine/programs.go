package candymachine

import (
	"bytes"
	"crypto/sha256"

	"github.com/blocto/solana-go-sdk/common"
)

// Program ids.
var (
	CandyMachineCoreProgramID = common.PublicKeyFromString("CndyV3LdqHUfDLmE5naZjVN8rBZz4tqhdefbAnjHG3JR")
	CandyGuardProgramID       = common.PublicKeyFromString("Guard1JwRhJkVH6XZhCYmJc6GiSdyuTm4RAP3L1u3wxJ")
	CandyMachineV2ProgramID   = common.PublicKeyFromString("cndy3Z4yapfJBmL3ShUp5exZKqR3z33thTzeNMm2gRZ")
	TokenMetadataProgramID    = common.PublicKeyFromString("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	AssociatedTokenProgramID  = common.PublicKeyFromString("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
)

// Sysvars.
var (
	SysvarRent         = common.PublicKeyFromString("SysvarRent111111111111111111111111111111111")
	SysvarClock        = common.PublicKeyFromString("SysvarC1ock11111111111111111111111111111111")
	SysvarSlotHashes   = common.PublicKeyFromString("SysvarS1otHashes111111111111111111111111111")
	SysvarInstructions = common.PublicKeyFromString("Sysvar1nstructions1111111111111111111111111")
)

// Anchor discriminators.
var (
	candyMachineDiscriminator = anchorDiscriminator("account", "CandyMachine")
	candyGuardDiscriminator   = anchorDiscriminator("account", "CandyGuard")
	mintV2Discriminator       = anchorDiscriminator("global", "mint_v2")
	mintNFTDiscriminator      = anchorDiscriminator("global", "mint_nft")
)

func anchorDiscriminator(namespace, name string) []byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	return sum[:8]
}

func hasDiscriminator(data, disc []byte) bool {
	return len(data) >= 8 && bytes.Equal(data[:8], disc)
}
