package candymachine

import (
	"fmt"
)

// MintAccountSize is the size of an SPL token mint account.
const MintAccountSize = 82

const mintDecimalsOffset = 44

// Metadata holds the Token Metadata fields used for display and minting.
type Metadata struct {
	UpdateAuthority string
	Mint            string
	Name            string
	Symbol          string
	URI             string
}

// DecodeMetadata decodes the leading fields of a Token Metadata account.
func DecodeMetadata(data []byte) (*Metadata, error) {
	r := newReader(data, 1) // key
	m := &Metadata{}

	var err error
	if m.UpdateAuthority, err = r.pubkey(); err != nil {
		return nil, err
	}
	if m.Mint, err = r.pubkey(); err != nil {
		return nil, err
	}
	if m.Name, err = r.string(); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	if m.Symbol, err = r.string(); err != nil {
		return nil, fmt.Errorf("symbol: %w", err)
	}
	if m.URI, err = r.string(); err != nil {
		return nil, fmt.Errorf("uri: %w", err)
	}
	return m, nil
}

// DecodeMintDecimals reads the decimals field of an SPL token mint account.
func DecodeMintDecimals(data []byte) (uint8, error) {
	if len(data) < mintDecimalsOffset+1 {
		return 0, fmt.Errorf("%w: mint account is %d bytes", ErrShortData, len(data))
	}
	return data[mintDecimalsOffset], nil
}
