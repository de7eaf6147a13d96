package candymachine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mvcm/internal/domain"
)

func TestDecodeCandyMachineV3(t *testing.T) {
	f := v3Fixture{
		authority:      newKey(),
		mintAuthority:  newKey(),
		collectionMint: newKey(),
		redeemed:       3,
		available:      10,
		symbol:         "MVCM",
		tokenStandard:  TokenStandardProgrammable,
	}

	cm, err := DecodeCandyMachineV3("cm", candyMachineV3Data(f))
	require.NoError(t, err)

	assert.Equal(t, domain.VersionV3, cm.Version)
	assert.Equal(t, f.authority.ToBase58(), cm.Authority)
	assert.Equal(t, f.mintAuthority.ToBase58(), cm.MintAuthority)
	assert.Equal(t, f.collectionMint.ToBase58(), cm.CollectionMint)
	assert.Equal(t, uint64(10), cm.ItemsAvailable)
	assert.Equal(t, uint64(3), cm.ItemsRedeemed)
	assert.Equal(t, uint64(7), cm.ItemsRemaining())
	assert.Equal(t, "MVCM", cm.Symbol)
	assert.Equal(t, uint16(500), cm.SellerFeeBps)
	assert.Equal(t, TokenStandardProgrammable, cm.TokenStandard)
}

func TestDecodeCandyMachineV3_Errors(t *testing.T) {
	_, err := DecodeCandyMachineV3("cm", []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrDiscriminator)

	data := candyMachineV3Data(v3Fixture{authority: newKey(), mintAuthority: newKey(), collectionMint: newKey()})
	_, err = DecodeCandyMachineV3("cm", data[:60])
	assert.ErrorIs(t, err, ErrShortData)
}

func TestDecodeCandyGuard_SkipsUnhandledGuards(t *testing.T) {
	dest := newKey()
	burnMint := newKey()

	defaults := guardSetData(
		guard{0, (&accountWriter{}).u64(10_000_000).bool(true).buf}, // botTax
		guard{1, solPaymentBody(1_500_000_000, dest)},
		guard{3, (&accountWriter{}).u64(1_700_000_000).buf},         // startDate
		guard{9, (&accountWriter{}).u8(1).u16(2).buf},               // mintLimit
		guard{15, tokenBurnBody(5, burnMint)},                       // tokenBurn
		guard{18, (&accountWriter{}).u32(0).zeros(5 * 32).buf},      // programGate
	)

	g, err := DecodeCandyGuard("guard", candyGuardData(newKey(), newKey(), defaults, nil))
	require.NoError(t, err)

	require.NotNil(t, g.Default.SolPayment)
	assert.Equal(t, uint64(1_500_000_000), g.Default.SolPayment.Lamports)
	assert.Equal(t, dest.ToBase58(), g.Default.SolPayment.Destination)

	require.NotNil(t, g.Default.TokenBurn)
	assert.Equal(t, uint64(5), g.Default.TokenBurn.Amount)
	assert.Equal(t, burnMint.ToBase58(), g.Default.TokenBurn.Mint)

	assert.Nil(t, g.Default.TokenPayment)
	assert.Equal(t, []string{"botTax", "solPayment", "startDate", "mintLimit", "tokenBurn", "programGate"}, g.Default.Enabled)
	assert.Equal(t, []string{"mintLimit", "programGate"}, g.Default.Unhandled())
	assert.Empty(t, g.Groups)
}

func TestDecodeCandyGuard_Groups(t *testing.T) {
	payMint := newKey()
	destATA := newKey()

	defaults := guardSetData(guard{3, (&accountWriter{}).u64(0).buf})
	groups := map[string][]byte{
		"public": guardSetData(guard{1, solPaymentBody(100, newKey())}),
		"wl":     guardSetData(guard{2, tokenPaymentBody(42, payMint, destATA)}, guard{8, make([]byte, 32)}),
	}

	g, err := DecodeCandyGuard("guard", candyGuardData(newKey(), newKey(), defaults, groups, "public", "wl"))
	require.NoError(t, err)
	require.Len(t, g.Groups, 2)

	assert.Equal(t, "public", g.Groups[0].Label)
	require.NotNil(t, g.Groups[0].Guards.SolPayment)
	assert.Equal(t, uint64(100), g.Groups[0].Guards.SolPayment.Lamports)

	assert.Equal(t, "wl", g.Groups[1].Label)
	require.NotNil(t, g.Groups[1].Guards.TokenPayment)
	assert.Equal(t, uint64(42), g.Groups[1].Guards.TokenPayment.Amount)
	assert.Equal(t, payMint.ToBase58(), g.Groups[1].Guards.TokenPayment.Mint)
	assert.Equal(t, destATA.ToBase58(), g.Groups[1].Guards.TokenPayment.DestinationATA)

	merged, ok := g.Guards("wl")
	require.True(t, ok)
	assert.NotNil(t, merged.TokenPayment)
	assert.Equal(t, []string{"startDate", "tokenPayment", "allowList"}, merged.Enabled)

	_, ok = g.Guards("nope")
	assert.False(t, ok)
}

func TestDecodeCandyGuard_UnknownGuardBit(t *testing.T) {
	defaults := (&accountWriter{}).u64(1 << 40).buf
	_, err := DecodeCandyGuard("guard", candyGuardData(newKey(), newKey(), defaults, nil))
	require.Error(t, err)
}

func TestDecodeCandyGuard_Truncated(t *testing.T) {
	defaults := guardSetData(guard{2, tokenPaymentBody(1, newKey(), newKey())})
	data := candyGuardData(newKey(), newKey(), defaults, nil)

	_, err := DecodeCandyGuard("guard", data[:len(data)-20])
	assert.True(t, errors.Is(err, ErrShortData), "got %v", err)
}

func TestDecodeCandyMachineV2(t *testing.T) {
	authority := newKey()
	wallet := newKey()
	tokenMint := newKey()

	w := &accountWriter{}
	w.raw(candyMachineDiscriminator).
		pubkey(authority).pubkey(wallet).
		u8(1).pubkey(tokenMint). // token mint
		u64(4).                  // items redeemed
		string("abc123").
		u64(2_000_000).
		string("OLD").
		u16(250).
		u64(0).bool(true).bool(true).
		u8(1).u64(1_650_000_000). // go live
		u8(1).u8(0).u64(100).     // end settings
		u32(2).zeros(2 * 34).     // creators
		u8(1).string("hidden #").string("https://x").zeros(32).
		u8(1).u8(0).pubkey(newKey()).bool(true).u8(1).u64(1_000_000). // whitelist
		u64(20).                                                      // items available
		u8(0)                                                         // gatekeeper

	cm, err := DecodeCandyMachineV2("cmv2", w.buf)
	require.NoError(t, err)

	assert.Equal(t, domain.VersionV2, cm.Version)
	assert.Equal(t, authority.ToBase58(), cm.Authority)
	assert.Equal(t, wallet.ToBase58(), cm.Wallet)
	require.NotNil(t, cm.TokenMint)
	assert.Equal(t, tokenMint.ToBase58(), *cm.TokenMint)
	assert.Equal(t, uint64(2_000_000), cm.Price)
	assert.Equal(t, "OLD", cm.Symbol)
	require.NotNil(t, cm.GoLiveDate)
	assert.Equal(t, int64(1_650_000_000), *cm.GoLiveDate)
	assert.Equal(t, uint64(20), cm.ItemsAvailable)
	assert.Equal(t, uint64(16), cm.ItemsRemaining())
}

func TestDecodeCandyMachineV2_NativePrice(t *testing.T) {
	cm, err := DecodeCandyMachineV2("cmv2", candyMachineV2Data(newKey(), 1_000_000_000, 5, 5))
	require.NoError(t, err)

	assert.Nil(t, cm.TokenMint)
	assert.Nil(t, cm.GoLiveDate)
	assert.Equal(t, uint64(0), cm.ItemsRemaining())
}

func TestDecodeMetadata(t *testing.T) {
	ua := newKey()
	mint := newKey()

	md, err := DecodeMetadata(metadataData(ua, mint, "Collection", "COL"))
	require.NoError(t, err)

	assert.Equal(t, ua.ToBase58(), md.UpdateAuthority)
	assert.Equal(t, mint.ToBase58(), md.Mint)
	assert.Equal(t, "Collection", md.Name)
	assert.Equal(t, "COL", md.Symbol)
	assert.Equal(t, "https://example.com/0.json", md.URI)
}

func TestDecodeMintDecimals(t *testing.T) {
	d, err := DecodeMintDecimals(mintData(6))
	require.NoError(t, err)
	assert.Equal(t, uint8(6), d)

	_, err = DecodeMintDecimals(make([]byte, 10))
	assert.ErrorIs(t, err, ErrShortData)
}
