// Package wallet is the keypair-backed wallet session: connection state,
// signing, and balance lookups for the connected public key.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"

	"mvcm/internal/observability"
	"mvcm/internal/solana"
	"mvcm/internal/storage"
)

// ErrNotConnected is returned by operations that need a connected wallet.
var ErrNotConnected = errors.New("wallet not connected")

// Session holds the connected keypair, if any.
type Session struct {
	prefs  storage.PreferenceStore
	logger *zap.Logger

	mu      sync.RWMutex
	account *types.Account
}

// NewSession creates a disconnected session. prefs receives the cache
// cleanup on Disconnect.
func NewSession(prefs storage.PreferenceStore, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{prefs: prefs, logger: logger}
}

// Connect makes acc the connected wallet, replacing any previous one.
func (s *Session) Connect(acc types.Account) {
	s.mu.Lock()
	s.account = &acc
	s.mu.Unlock()

	observability.SetWalletConnected(true)
	s.logger.Info("wallet connected", zap.String("address", solana.TruncateAddress(acc.PublicKey.ToBase58())))
}

// ConnectKeypairFile loads a keypair file and connects it.
func (s *Session) ConnectKeypairFile(path string) error {
	acc, err := LoadKeypair(path)
	if err != nil {
		return err
	}
	s.Connect(acc)
	return nil
}

// Disconnect forgets the keypair and clears the cached wallet NFTs.
func (s *Session) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	s.account = nil
	s.mu.Unlock()

	observability.SetWalletConnected(false)
	s.logger.Info("wallet disconnected")

	if s.prefs == nil {
		return nil
	}
	if err := s.prefs.Delete(ctx, storage.KeyWalletNFTs); err != nil {
		return fmt.Errorf("clear wallet cache: %w", err)
	}
	return nil
}

// Connected reports whether a keypair is loaded.
func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account != nil
}

// PublicKey returns the connected public key.
func (s *Session) PublicKey() (common.PublicKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return common.PublicKey{}, ErrNotConnected
	}
	return s.account.PublicKey, nil
}

// Address returns the truncated address ("abcd..wxyz"), or "" when disconnected.
func (s *Session) Address() string {
	pk, err := s.PublicKey()
	if err != nil {
		return ""
	}
	return solana.TruncateAddress(pk.ToBase58())
}

// SignTransaction signs msg with the wallet as fee payer plus any extra
// signers (such as a freshly generated mint keypair).
func (s *Session) SignTransaction(msg types.Message, extra ...types.Account) (types.Transaction, error) {
	s.mu.RLock()
	acc := s.account
	s.mu.RUnlock()

	if acc == nil {
		return types.Transaction{}, ErrNotConnected
	}

	signers := append([]types.Account{*acc}, extra...)
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: msg,
		Signers: signers,
	})
	if err != nil {
		return types.Transaction{}, fmt.Errorf("sign transaction: %w", err)
	}
	return tx, nil
}
