package solana

import (
	"errors"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PublicKeySize is the length of an ed25519 public key.
const PublicKeySize = 32

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

var (
	// ErrInvalidPublicKey is returned for strings that are not 32-byte base58 keys.
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrOffCurve is returned for keys that do not lie on the ed25519 curve.
	ErrOffCurve = errors.New("public key is not on the ed25519 curve")
)

// DecodePublicKey decodes a base58 public key into raw bytes.
func DecodePublicKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidPublicKey
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(b) != PublicKeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidPublicKey, PublicKeySize, len(b))
	}
	return b, nil
}

// EncodePublicKey encodes raw key bytes as base58.
func EncodePublicKey(b []byte) string {
	return base58.Encode(b)
}

// IsOnCurve reports whether the 32-byte point decodes on the ed25519 curve.
func IsOnCurve(point []byte) bool {
	if len(point) != PublicKeySize {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// ValidateAddress checks that s is a base58 public key on the ed25519 curve.
// Program-derived addresses are off-curve and are rejected.
func ValidateAddress(s string) error {
	b, err := DecodePublicKey(s)
	if err != nil {
		return err
	}
	if !IsOnCurve(b) {
		return ErrOffCurve
	}
	return nil
}

// TruncateAddress shortens an address to its first and last four characters.
func TruncateAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:4] + ".." + address[len(address)-4:]
}
