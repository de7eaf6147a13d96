package solana

import "context"

// WSClient defines Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeSignature waits for a transaction signature to reach the commitment.
	// The returned channel yields exactly one notification and is then closed.
	SubscribeSignature(ctx context.Context, signature, commitment string) (<-chan SignatureNotification, error)

	// Unsubscribe drops any pending subscription for signature and closes its channel.
	Unsubscribe(signature string) error

	// Close closes the WebSocket connection.
	Close() error
}

// SignatureNotification is the single message of a signatureSubscribe subscription.
type SignatureNotification struct {
	Signature string
	Slot      int64
	Err       interface{} // transaction error, nil on success
}
