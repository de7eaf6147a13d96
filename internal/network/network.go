// Package network resolves the selected Solana cluster and its endpoints.
package network

import (
	"errors"
	"fmt"
	"strings"
)

// Network identifies a Solana cluster.
type Network string

const (
	Localnet    Network = "localnet"
	Devnet      Network = "devnet"
	MainnetBeta Network = "mainnet-beta"
)

// Default is used when no network has been selected yet.
const Default = Devnet

// ErrUnknownNetwork is returned by Parse for values outside the closed set.
var ErrUnknownNetwork = errors.New("unknown network")

// All returns the selectable networks in display order.
func All() []Network {
	return []Network{Localnet, Devnet, MainnetBeta}
}

// Parse validates s against the known networks.
func Parse(s string) (Network, error) {
	n := Network(strings.TrimSpace(s))
	if !n.IsValid() {
		return "", fmt.Errorf("%w: %q (want localnet, devnet or mainnet-beta)", ErrUnknownNetwork, s)
	}
	return n, nil
}

// IsValid reports whether n is one of the known networks.
func (n Network) IsValid() bool {
	switch n {
	case Localnet, Devnet, MainnetBeta:
		return true
	}
	return false
}

// String returns the string representation of Network.
func (n Network) String() string {
	return string(n)
}

// Endpoints groups the URLs used on a cluster.
type Endpoints struct {
	RPC string
	WS  string

	// Bundlr storage provider; reported only, uploads are not performed.
	BundlrAddress     string
	BundlrProviderURL string

	// ExplorerSuffix is appended to explorer links ("" on mainnet).
	ExplorerSuffix string
}

const (
	devnetRPC  = "https://api.devnet.solana.com"
	mainnetRPC = "https://api.mainnet-beta.solana.com"

	devnetBundlr  = "https://devnet.bundlr.network"
	mainnetBundlr = "https://node1.bundlr.network"

	explorerBase = "https://explorer.solana.com"
)

// Endpoints returns the default endpoints for n. Unknown values resolve like localnet.
func (n Network) Endpoints() Endpoints {
	switch n {
	case Devnet:
		return Endpoints{
			RPC:               devnetRPC,
			WS:                WebSocketURL(devnetRPC),
			BundlrAddress:     devnetBundlr,
			BundlrProviderURL: devnetRPC,
			ExplorerSuffix:    "?cluster=devnet",
		}
	case MainnetBeta:
		rpc := "https://api.metaplex.solana.com/"
		return Endpoints{
			RPC:               rpc,
			WS:                WebSocketURL(rpc),
			BundlrAddress:     mainnetBundlr,
			BundlrProviderURL: mainnetRPC,
		}
	default:
		return Endpoints{
			RPC:               "http://127.0.0.1:8899",
			WS:                "ws://127.0.0.1:8900",
			BundlrAddress:     devnetBundlr,
			BundlrProviderURL: devnetRPC,
			ExplorerSuffix:    "?cluster=custom",
		}
	}
}

// ExplorerKind is the explorer path segment.
type ExplorerKind string

const (
	ExplorerTx      ExplorerKind = "tx"
	ExplorerAddress ExplorerKind = "address"
)

// ExplorerURL builds a Solana explorer link for a signature or address.
func (e Endpoints) ExplorerURL(kind ExplorerKind, value string) string {
	return fmt.Sprintf("%s/%s/%s%s", explorerBase, kind, value, e.ExplorerSuffix)
}

// WebSocketURL derives the pubsub URL from an RPC URL.
func WebSocketURL(rpc string) string {
	switch {
	case strings.HasPrefix(rpc, "https://"):
		return "wss://" + strings.TrimPrefix(rpc, "https://")
	case strings.HasPrefix(rpc, "http://"):
		return "ws://" + strings.TrimPrefix(rpc, "http://")
	}
	return rpc
}
