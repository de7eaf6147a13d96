package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface used by the minter.
type RPCClient interface {
	// GetAccountInfo retrieves an account. Returns nil, nil if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetMultipleAccounts retrieves accounts in request order; missing accounts are nil.
	GetMultipleAccounts(ctx context.Context, pubkeys []string) ([]*AccountInfo, error)

	// GetBalance returns the lamport balance of an account.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// GetTokenAccountBalance returns the balance of a token account.
	GetTokenAccountBalance(ctx context.Context, account string) (*TokenAmount, error)

	// GetLatestBlockhash returns a recent blockhash for transaction building.
	GetLatestBlockhash(ctx context.Context) (*Blockhash, error)

	// GetMinimumBalanceForRentExemption returns the rent-exempt minimum for size bytes.
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)

	// SendTransaction submits a signed, serialized transaction and returns its signature.
	SendTransaction(ctx context.Context, raw []byte) (string, error)

	// GetSignatureStatuses returns statuses in request order; unknown signatures are nil.
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error)
}
