package network

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mvcm/internal/observability"
	"mvcm/internal/storage"
)

// Override replaces the RPC and WebSocket endpoints of a network.
type Override struct {
	RPC string
	WS  string
}

// Selector reads and writes the persisted network choice.
type Selector struct {
	store     storage.PreferenceStore
	logger    *zap.Logger
	overrides map[Network]Override
}

// SelectorOption configures Selector.
type SelectorOption func(*Selector)

// WithLogger sets the selector's logger.
func WithLogger(logger *zap.Logger) SelectorOption {
	return func(s *Selector) {
		s.logger = logger
	}
}

// WithOverride replaces the endpoints of n. Empty fields keep the defaults;
// an RPC override without WS derives WS from the RPC URL.
func WithOverride(n Network, o Override) SelectorOption {
	return func(s *Selector) {
		s.overrides[n] = o
	}
}

// NewSelector creates a Selector over store.
func NewSelector(store storage.PreferenceStore, opts ...SelectorOption) *Selector {
	s := &Selector{
		store:     store,
		logger:    zap.NewNop(),
		overrides: make(map[Network]Override),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the selected network, or Default if none is stored.
// A corrupted stored value also reads as Default.
func (s *Selector) Current(ctx context.Context) (Network, error) {
	v, err := s.store.Get(ctx, storage.KeyNetwork)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Default, nil
		}
		return "", fmt.Errorf("read network preference: %w", err)
	}

	n, err := Parse(v)
	if err != nil {
		s.logger.Warn("ignoring stored network", zap.String("value", v), zap.Error(err))
		return Default, nil
	}
	return n, nil
}

// Set persists n as the selected network.
func (s *Selector) Set(ctx context.Context, n Network) error {
	if !n.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownNetwork, n)
	}
	if err := s.store.Set(ctx, storage.KeyNetwork, n.String()); err != nil {
		return fmt.Errorf("write network preference: %w", err)
	}
	observability.RecordNetworkSwitch(n.String())
	s.logger.Info("network selected", zap.String("network", n.String()))
	return nil
}

// Endpoints returns the endpoints of n with any configured override applied.
func (s *Selector) Endpoints(n Network) Endpoints {
	e := n.Endpoints()
	o, ok := s.overrides[n]
	if !ok {
		return e
	}
	if o.RPC != "" {
		e.RPC = o.RPC
		e.WS = WebSocketURL(o.RPC)
	}
	if o.WS != "" {
		e.WS = o.WS
	}
	return e
}

// CurrentEndpoints resolves the selected network and its endpoints.
func (s *Selector) CurrentEndpoints(ctx context.Context) (Network, Endpoints, error) {
	n, err := s.Current(ctx)
	if err != nil {
		return "", Endpoints{}, err
	}
	return n, s.Endpoints(n), nil
}
