package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mvcm/internal/config"
	"mvcm/internal/network"
	"mvcm/internal/notify"
	"mvcm/internal/wallet"
)

// Runtime is a started orchestrator together with the resources it owns.
type Runtime struct {
	*Orchestrator

	Stores *Stores
	Feed   *notify.Feed
}

// BootstrapOption configures Bootstrap.
type BootstrapOption func(*bootstrapOptions)

type bootstrapOptions struct {
	dialWebSocket bool
}

// WithWebSocket confirms mints over the network's WebSocket endpoint.
func WithWebSocket() BootstrapOption {
	return func(o *bootstrapOptions) { o.dialWebSocket = true }
}

// Bootstrap opens the stores for cfg, applies the configured network,
// connects the configured keypair and starts the mint session.
func Bootstrap(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...BootstrapOption) (*Runtime, error) {
	var bo bootstrapOptions
	for _, opt := range opts {
		opt(&bo)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	stores, err := OpenStores(ctx, cfg, logger.Named("storage"))
	if err != nil {
		return nil, err
	}

	rt, err := bootstrap(ctx, cfg, bo, stores, logger)
	if err != nil {
		stores.Close()
		return nil, err
	}
	return rt, nil
}

func bootstrap(ctx context.Context, cfg config.Config, bo bootstrapOptions, stores *Stores, logger *zap.Logger) (*Runtime, error) {
	selOpts := []network.SelectorOption{network.WithLogger(logger.Named("network"))}
	for n, o := range cfg.Overrides() {
		selOpts = append(selOpts, network.WithOverride(n, o))
	}
	selector := network.NewSelector(stores.Prefs, selOpts...)

	if cfg.Network != "" {
		n, err := network.Parse(cfg.Network)
		if err != nil {
			return nil, err
		}
		if err := selector.Set(ctx, n); err != nil {
			return nil, err
		}
	}

	w := wallet.NewSession(stores.Prefs, logger.Named("wallet"))
	if cfg.Keypair != "" {
		if err := w.ConnectKeypairFile(cfg.Keypair); err != nil {
			return nil, err
		}
	}

	feed := notify.NewFeed(logger.Named("notify"))
	orch := New(Options{
		Selector:      selector,
		Wallet:        w,
		MintRecords:   stores.MintRecords,
		Snapshots:     stores.Snapshots,
		Notifier:      feed,
		ComputeUnits:  cfg.ComputeUnits,
		Group:         cfg.Group,
		Commitment:    cfg.Commitment,
		DialWebSocket: bo.dialWebSocket,
		Logger:        logger,
	})
	if _, err := orch.Start(ctx); err != nil {
		return nil, err
	}

	logger.Info("runtime ready",
		zap.String("storage", stores.Backend),
		zap.Bool("wallet_connected", w.Connected()))
	return &Runtime{Orchestrator: orch, Stores: stores, Feed: feed}, nil
}

// Close stops the orchestrator and releases the stores.
func (r *Runtime) Close() error {
	err := r.Orchestrator.Close()
	r.Stores.Close()
	return err
}
