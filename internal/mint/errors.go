package mint

import "errors"

// Identifier validation errors. Their messages are shown to the user as-is.
var (
	ErrIdentifierRequired = errors.New("candy machine id is required.")
	ErrInvalidPublicKey   = errors.New("Invalid public key.")
)

var (
	// ErrMintInProgress is returned when a mint is already awaiting confirmation.
	ErrMintInProgress = errors.New("mint already in progress")

	// ErrNoCandyMachine is returned when no candy machine is loaded.
	ErrNoCandyMachine = errors.New("no candy machine loaded")

	// ErrWalletNotConnected is returned when minting without a wallet.
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrNotEligible is returned when the button state forbids minting.
	ErrNotEligible = errors.New("wallet cannot mint")
)
