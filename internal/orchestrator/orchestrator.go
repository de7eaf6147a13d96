// Package orchestrator wires the minter together. It resolves the selected
// cluster, builds the clients bound to it, and rebinds the mint session
// when the selection changes.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"mvcm/internal/candymachine"
	"mvcm/internal/mint"
	"mvcm/internal/network"
	"mvcm/internal/notify"
	"mvcm/internal/solana"
	"mvcm/internal/storage"
	"mvcm/internal/wallet"
)

// ErrNotStarted is returned by operations that need a session before Start.
var ErrNotStarted = errors.New("orchestrator not started")

// RPCFactory builds the RPC client for an endpoint.
type RPCFactory func(endpoint string) solana.RPCClient

// Orchestrator owns the mint session and the per-network clients behind it.
type Orchestrator struct {
	// Collaborators
	selector *network.Selector
	wallet   *wallet.Session
	notifier notify.Notifier

	// Stores
	mintRecords storage.MintRecordStore
	snapshots   storage.SnapshotStore

	// Options
	computeUnits  uint32
	group         string
	commitment    string
	dialWebSocket bool
	newRPC        RPCFactory
	logger        *zap.Logger

	mu      sync.Mutex
	session *mint.Session
	ws      solana.WSClient // nullable
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Selector *network.Selector
	Wallet   *wallet.Session

	// Optional stores; nil disables history and snapshots.
	MintRecords storage.MintRecordStore
	Snapshots   storage.SnapshotStore

	Notifier     notify.Notifier
	ComputeUnits uint32
	Group        string
	Commitment   string

	// DialWebSocket subscribes to confirmations over the network's WS
	// endpoint. When dialing fails, confirmation falls back to polling.
	DialWebSocket bool

	// NewRPC defaults to solana.NewHTTPClient.
	NewRPC RPCFactory
	Logger *zap.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		selector:      opts.Selector,
		wallet:        opts.Wallet,
		notifier:      opts.Notifier,
		mintRecords:   opts.MintRecords,
		snapshots:     opts.Snapshots,
		computeUnits:  opts.ComputeUnits,
		group:         opts.Group,
		commitment:    opts.Commitment,
		dialWebSocket: opts.DialWebSocket,
		newRPC:        opts.NewRPC,
		logger:        opts.Logger,
	}
	if o.notifier == nil {
		o.notifier = notify.Nop{}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.newRPC == nil {
		commitment := o.commitment
		o.newRPC = func(endpoint string) solana.RPCClient {
			return solana.NewHTTPClient(endpoint, solana.WithCommitment(commitment))
		}
	}
	return o
}

// Start binds a new mint session to the persisted network.
func (o *Orchestrator) Start(ctx context.Context) (*mint.Session, error) {
	n, err := o.selector.Current(ctx)
	if err != nil {
		return nil, err
	}

	backend, ws := o.backend(ctx, n)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != nil {
		closeWS(ws)
		return nil, errors.New("orchestrator already started")
	}

	opts := []mint.Option{
		mint.WithNotifier(o.notifier),
		mint.WithGroup(o.group),
		mint.WithLogger(o.logger.Named("mint")),
	}
	if o.computeUnits > 0 {
		opts = append(opts, mint.WithComputeUnits(o.computeUnits))
	}
	if o.mintRecords != nil {
		opts = append(opts, mint.WithMintRecords(o.mintRecords))
	}
	if o.snapshots != nil {
		opts = append(opts, mint.WithSnapshots(o.snapshots))
	}

	o.session = mint.NewSession(backend, o.wallet, opts...)
	o.ws = ws
	o.logger.Info("session started",
		zap.String("network", n.String()),
		zap.String("rpc", backend.Endpoints.RPC),
		zap.Bool("websocket", ws != nil))
	return o.session, nil
}

// Session returns the mint session, or nil before Start.
func (o *Orchestrator) Session() *mint.Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// Wallet returns the wallet session shared with the mint session.
func (o *Orchestrator) Wallet() *wallet.Session {
	return o.wallet
}

// RPC returns a client for endpoint built the same way as the session's.
func (o *Orchestrator) RPC(endpoint string) solana.RPCClient {
	return o.newRPC(endpoint)
}

// Network returns the persisted network selection.
func (o *Orchestrator) Network(ctx context.Context) (network.Network, network.Endpoints, error) {
	return o.selector.CurrentEndpoints(ctx)
}

// SwitchNetwork persists n and rebinds the session to it. The loaded
// candy machine is dropped; callers refresh when they want it reloaded.
func (o *Orchestrator) SwitchNetwork(ctx context.Context, n network.Network) error {
	if err := o.selector.Set(ctx, n); err != nil {
		return err
	}

	o.mu.Lock()
	started := o.session != nil
	o.mu.Unlock()
	if !started {
		return nil
	}

	backend, ws := o.backend(ctx, n)

	o.mu.Lock()
	old := o.ws
	o.ws = ws
	o.session.Rebind(backend)
	o.mu.Unlock()

	closeWS(old)
	return nil
}

func (o *Orchestrator) backend(ctx context.Context, n network.Network) (mint.Backend, solana.WSClient) {
	endpoints := o.selector.Endpoints(n)
	rpc := o.newRPC(endpoints.RPC)

	var ws solana.WSClient
	if o.dialWebSocket && endpoints.WS != "" {
		client, err := solana.NewWSClient(ctx, endpoints.WS, nil)
		if err != nil {
			o.logger.Warn("websocket unavailable, polling for confirmations",
				zap.String("endpoint", endpoints.WS), zap.Error(err))
		} else {
			ws = client
		}
	}

	return mint.Backend{
		Network:   n,
		Endpoints: endpoints,
		RPC:       rpc,
		Client:    candymachine.NewClient(rpc, o.logger.Named("candymachine")),
		Balances:  wallet.NewBalanceReader(rpc),
		Confirmer: solana.NewConfirmer(rpc, ws, o.commitment),
	}, ws
}

// Close releases the WebSocket connection, if any.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	ws := o.ws
	o.ws = nil
	o.mu.Unlock()

	if ws == nil {
		return nil
	}
	if err := ws.Close(); err != nil {
		return fmt.Errorf("close websocket: %w", err)
	}
	return nil
}

func closeWS(ws solana.WSClient) {
	if ws != nil {
		_ = ws.Close()
	}
}
