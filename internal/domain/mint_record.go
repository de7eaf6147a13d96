package domain

// MintStatus is the outcome of a mint attempt.
type MintStatus string

const (
	MintStatusConfirmed MintStatus = "confirmed"
	MintStatusFailed    MintStatus = "failed"
)

// IsValid checks if the status is a valid value.
func (s MintStatus) IsValid() bool {
	return s == MintStatusConfirmed || s == MintStatusFailed
}

// MintRecord is one mint attempt.
// Corresponds to mint_records table in PostgreSQL.
type MintRecord struct {
	ID           string // PRIMARY KEY, uuid
	CandyMachine string
	Version      Version
	Network      string
	Minter       string
	NFTMint      string  // new NFT mint address
	Signature    *string // nullable when the tx never reached the cluster
	Status       MintStatus
	Error        *string // nullable
	AttemptedAt  int64   // ms
	CreatedAt    int64   // record creation timestamp (ms)
}
