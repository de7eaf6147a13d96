package candymachine

import (
	"fmt"

	"mvcm/internal/domain"
)

// DecodeCandyMachineV2 decodes a Candy Machine V2 account.
func DecodeCandyMachineV2(address string, data []byte) (*domain.CandyMachine, error) {
	if !hasDiscriminator(data, candyMachineDiscriminator) {
		return nil, ErrDiscriminator
	}

	r := newReader(data, 8)
	cm := &domain.CandyMachine{
		Version:     domain.VersionV2,
		Address:     address,
		AccountSize: len(data),
	}

	var err error
	if cm.Authority, err = r.pubkey(); err != nil {
		return nil, err
	}
	cm.MintAuthority = cm.Authority
	if cm.Wallet, err = r.pubkey(); err != nil {
		return nil, err
	}

	hasTokenMint, err := r.option()
	if err != nil {
		return nil, fmt.Errorf("token mint: %w", err)
	}
	if hasTokenMint {
		mint, err := r.pubkey()
		if err != nil {
			return nil, err
		}
		cm.TokenMint = &mint
	}

	if cm.ItemsRedeemed, err = r.u64(); err != nil {
		return nil, err
	}

	// CandyMachineData
	if err = r.skipString(); err != nil { // uuid
		return nil, fmt.Errorf("uuid: %w", err)
	}
	if cm.Price, err = r.u64(); err != nil {
		return nil, err
	}
	if cm.Symbol, err = r.string(); err != nil {
		return nil, fmt.Errorf("symbol: %w", err)
	}
	if cm.SellerFeeBps, err = r.u16(); err != nil {
		return nil, err
	}
	if err = r.skip(8 + 1 + 1); err != nil { // max supply, is mutable, retain authority
		return nil, err
	}

	hasGoLive, err := r.option()
	if err != nil {
		return nil, fmt.Errorf("go live date: %w", err)
	}
	if hasGoLive {
		goLive, err := r.i64()
		if err != nil {
			return nil, err
		}
		cm.GoLiveDate = &goLive
	}

	if err = skipOption(r, "end settings", func() error { return r.skip(1 + 8) }); err != nil {
		return nil, err
	}
	if err = r.skipVec(32 + 1 + 1); err != nil {
		return nil, fmt.Errorf("creators: %w", err)
	}
	if err = skipOption(r, "hidden settings", func() error {
		if err := r.skipString(); err != nil {
			return err
		}
		if err := r.skipString(); err != nil {
			return err
		}
		return r.skip(32)
	}); err != nil {
		return nil, err
	}
	if err = skipOption(r, "whitelist settings", func() error {
		if err := r.skip(1 + 32 + 1); err != nil {
			return err
		}
		return skipOption(r, "discount price", func() error { return r.skip(8) })
	}); err != nil {
		return nil, err
	}

	if cm.ItemsAvailable, err = r.u64(); err != nil {
		return nil, fmt.Errorf("items available: %w", err)
	}
	return cm, nil
}

func skipOption(r *reader, field string, skip func() error) error {
	present, err := r.option()
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if !present {
		return nil
	}
	if err := skip(); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}
