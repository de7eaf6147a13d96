package solana

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTransactionFailed is returned when a confirmed transaction carries an error.
var ErrTransactionFailed = errors.New("transaction failed")

// DefaultPollInterval is the getSignatureStatuses polling period.
const DefaultPollInterval = 2 * time.Second

// Confirmer waits for signatures to reach a commitment level, preferring a
// WebSocket subscription and falling back to polling the HTTP endpoint.
type Confirmer struct {
	rpc          RPCClient
	ws           WSClient // nullable
	commitment   string
	pollInterval time.Duration
}

// NewConfirmer creates a Confirmer. ws may be nil.
func NewConfirmer(rpc RPCClient, ws WSClient, commitment string) *Confirmer {
	if commitment == "" {
		commitment = CommitmentConfirmed
	}
	return &Confirmer{
		rpc:          rpc,
		ws:           ws,
		commitment:   commitment,
		pollInterval: DefaultPollInterval,
	}
}

// WithPollInterval overrides the polling period.
func (c *Confirmer) WithPollInterval(d time.Duration) *Confirmer {
	c.pollInterval = d
	return c
}

// Confirm blocks until signature reaches the configured commitment, fails, or ctx ends.
func (c *Confirmer) Confirm(ctx context.Context, signature string) error {
	if c.ws != nil {
		ch, err := c.ws.SubscribeSignature(ctx, signature, c.commitment)
		if err == nil {
			// The transaction may have landed before the subscription was registered.
			if done, err := c.check(ctx, signature); done {
				_ = c.ws.Unsubscribe(signature)
				return err
			}
			select {
			case n, ok := <-ch:
				if ok {
					return txError(signature, n.Err)
				}
				// Channel closed without a notification: the socket went away.
			case <-ctx.Done():
				_ = c.ws.Unsubscribe(signature)
				return ctx.Err()
			}
		}
	}
	return c.poll(ctx, signature)
}

func (c *Confirmer) poll(ctx context.Context, signature string) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		if done, err := c.check(ctx, signature); done || err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// check reports whether signature has settled: reached the commitment or
// failed. A lookup error is returned with done false.
func (c *Confirmer) check(ctx context.Context, signature string) (bool, error) {
	statuses, err := c.rpc.GetSignatureStatuses(ctx, []string{signature})
	if err != nil {
		return false, fmt.Errorf("get signature status: %w", err)
	}
	if len(statuses) != 1 || statuses[0] == nil {
		return false, nil
	}
	st := statuses[0]
	if st.Err != nil {
		return true, txError(signature, st.Err)
	}
	return st.Reached(c.commitment), nil
}

func txError(signature string, txErr interface{}) error {
	if txErr == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrTransactionFailed, signature, txErr)
}
