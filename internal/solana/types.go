package solana

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Address    string
	Lamports   uint64
	Owner      string
	Data       []byte // decoded from base64
	Executable bool
	RentEpoch  uint64
}

// TokenAmount is an SPL token balance in raw units.
type TokenAmount struct {
	Amount   uint64
	Decimals uint8
}

// Blockhash from getLatestBlockhash.
type Blockhash struct {
	Blockhash            string
	LastValidBlockHeight uint64
}

// Commitment levels accepted by the cluster.
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// SignatureStatus from getSignatureStatuses.
type SignatureStatus struct {
	Slot               int64
	Confirmations      *int64
	Err                interface{}
	ConfirmationStatus string
}

// Reached reports whether the status satisfies the given commitment.
func (s *SignatureStatus) Reached(commitment string) bool {
	if s == nil {
		return false
	}
	switch commitment {
	case CommitmentFinalized:
		return s.ConfirmationStatus == CommitmentFinalized
	case CommitmentProcessed:
		return s.ConfirmationStatus != ""
	default:
		return s.ConfirmationStatus == CommitmentConfirmed || s.ConfirmationStatus == CommitmentFinalized
	}
}
