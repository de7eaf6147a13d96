package wallet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
)

// KeypairSize is the length of an ed25519 keypair (seed + public key).
const KeypairSize = 64

// ErrInvalidKeypair is returned for keypair data in an unrecognised format.
var ErrInvalidKeypair = errors.New("invalid keypair")

// LoadKeypair reads a keypair file. Accepted formats: the Solana CLI JSON byte
// array, a base58 string, or 64 raw bytes.
func LoadKeypair(path string) (types.Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Account{}, fmt.Errorf("read keypair %s: %w", path, err)
	}
	acc, err := ParseKeypair(data)
	if err != nil {
		return types.Account{}, fmt.Errorf("%s: %w", path, err)
	}
	return acc, nil
}

// ParseKeypair decodes keypair bytes in any format accepted by LoadKeypair.
func ParseKeypair(data []byte) (types.Account, error) {
	if len(data) == KeypairSize && !looksLikeText(data) {
		return accountFromBytes(data)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return types.Account{}, fmt.Errorf("%w: empty", ErrInvalidKeypair)
	}

	if trimmed[0] == '[' {
		var ints []int
		if err := json.Unmarshal(trimmed, &ints); err != nil {
			return types.Account{}, fmt.Errorf("%w: not a json int array: %v", ErrInvalidKeypair, err)
		}
		raw := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return types.Account{}, fmt.Errorf("%w: byte out of range at %d: %d", ErrInvalidKeypair, i, v)
			}
			raw[i] = byte(v)
		}
		return accountFromBytes(raw)
	}

	raw, err := base58.Decode(strings.TrimSpace(string(trimmed)))
	if err != nil {
		return types.Account{}, fmt.Errorf("%w: %v", ErrInvalidKeypair, err)
	}
	return accountFromBytes(raw)
}

func accountFromBytes(raw []byte) (types.Account, error) {
	if len(raw) != KeypairSize {
		return types.Account{}, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKeypair, KeypairSize, len(raw))
	}
	acc, err := types.AccountFromBytes(raw)
	if err != nil {
		return types.Account{}, fmt.Errorf("%w: %v", ErrInvalidKeypair, err)
	}
	return acc, nil
}

// looksLikeText reports whether data is printable ASCII, i.e. a JSON or
// base58 encoding that happens to be 64 bytes long.
func looksLikeText(data []byte) bool {
	for _, b := range data {
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return true
}
