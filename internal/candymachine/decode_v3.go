package candymachine

import (
	"errors"
	"fmt"
	"strings"

	"mvcm/internal/domain"
)

// ErrDiscriminator is returned when account data belongs to another account type.
var ErrDiscriminator = errors.New("unexpected account discriminator")

// guardSizes lists every candy guard in bitmask order with its serialized size.
var guardSizes = []struct {
	name string
	size int
}{
	{"botTax", 9},
	{"solPayment", 40},
	{"tokenPayment", 72},
	{"startDate", 8},
	{"thirdPartySigner", 32},
	{"tokenGate", 40},
	{"gatekeeper", 33},
	{"endDate", 8},
	{"allowList", 32},
	{"mintLimit", 3},
	{"nftPayment", 64},
	{"redeemedAmount", 8},
	{"addressGate", 32},
	{"nftGate", 32},
	{"nftBurn", 32},
	{"tokenBurn", 40},
	{"freezeSolPayment", 40},
	{"freezeTokenPayment", 72},
	{"programGate", 164},
	{"allocation", 5},
	{"token2022Payment", 72},
}

const groupLabelSize = 6

// DecodeCandyMachineV3 decodes a Candy Machine Core account.
func DecodeCandyMachineV3(address string, data []byte) (*domain.CandyMachine, error) {
	if !hasDiscriminator(data, candyMachineDiscriminator) {
		return nil, ErrDiscriminator
	}

	r := newReader(data, 8)
	cm := &domain.CandyMachine{
		Version:     domain.VersionV3,
		Address:     address,
		AccountSize: len(data),
	}

	var err error
	if _, err = r.u8(); err != nil { // account version
		return nil, err
	}
	if cm.TokenStandard, err = r.u8(); err != nil {
		return nil, err
	}
	if err = r.skip(6); err != nil { // features
		return nil, err
	}
	if cm.Authority, err = r.pubkey(); err != nil {
		return nil, err
	}
	if cm.MintAuthority, err = r.pubkey(); err != nil {
		return nil, err
	}
	if cm.CollectionMint, err = r.pubkey(); err != nil {
		return nil, err
	}
	if cm.ItemsRedeemed, err = r.u64(); err != nil {
		return nil, err
	}
	if cm.ItemsAvailable, err = r.u64(); err != nil {
		return nil, err
	}
	if cm.Symbol, err = r.string(); err != nil {
		return nil, fmt.Errorf("symbol: %w", err)
	}
	if cm.SellerFeeBps, err = r.u16(); err != nil {
		return nil, err
	}
	return cm, nil
}

// DecodeCandyGuard decodes a candy guard account: the default guard set
// followed by its groups.
func DecodeCandyGuard(address string, data []byte) (*domain.CandyGuard, error) {
	if !hasDiscriminator(data, candyGuardDiscriminator) {
		return nil, ErrDiscriminator
	}

	r := newReader(data, 8)
	g := &domain.CandyGuard{Address: address}

	var err error
	if g.Base, err = r.pubkey(); err != nil {
		return nil, err
	}
	if _, err = r.u8(); err != nil { // bump
		return nil, err
	}
	if g.Authority, err = r.pubkey(); err != nil {
		return nil, err
	}

	if g.Default, err = decodeGuardSet(r); err != nil {
		return nil, fmt.Errorf("default guards: %w", err)
	}

	// Accounts created without groups may end right after the default set.
	if r.off == len(data) {
		return g, nil
	}

	count, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("group count: %w", err)
	}
	for i := uint32(0); i < count; i++ {
		label, err := r.bytes(groupLabelSize)
		if err != nil {
			return nil, fmt.Errorf("group %d label: %w", i, err)
		}
		gs, err := decodeGuardSet(r)
		if err != nil {
			return nil, fmt.Errorf("group %d guards: %w", i, err)
		}
		g.Groups = append(g.Groups, domain.GuardGroup{
			Label:  strings.TrimRight(string(label), "\x00"),
			Guards: gs,
		})
	}
	return g, nil
}

// decodeGuardSet reads the feature bitmask and every enabled guard. Guards
// without a decoder are skipped by their fixed size.
func decodeGuardSet(r *reader) (domain.GuardSet, error) {
	var gs domain.GuardSet

	features, err := r.u64()
	if err != nil {
		return gs, err
	}
	if features>>uint(len(guardSizes)) != 0 {
		return gs, fmt.Errorf("unknown guard bits set: %#x", features)
	}

	for i, guard := range guardSizes {
		if features&(1<<uint(i)) == 0 {
			continue
		}
		gs.Enabled = append(gs.Enabled, guard.name)

		switch guard.name {
		case "solPayment":
			var p domain.SolPaymentGuard
			if p.Lamports, err = r.u64(); err != nil {
				return gs, err
			}
			if p.Destination, err = r.pubkey(); err != nil {
				return gs, err
			}
			gs.SolPayment = &p
		case "tokenPayment":
			var p domain.TokenPaymentGuard
			if p.Amount, err = r.u64(); err != nil {
				return gs, err
			}
			if p.Mint, err = r.pubkey(); err != nil {
				return gs, err
			}
			if p.DestinationATA, err = r.pubkey(); err != nil {
				return gs, err
			}
			gs.TokenPayment = &p
		case "tokenBurn":
			var b domain.TokenBurnGuard
			if b.Amount, err = r.u64(); err != nil {
				return gs, err
			}
			if b.Mint, err = r.pubkey(); err != nil {
				return gs, err
			}
			gs.TokenBurn = &b
		default:
			if err := r.skip(guard.size); err != nil {
				return gs, fmt.Errorf("%s: %w", guard.name, err)
			}
		}
	}

	return gs, nil
}
