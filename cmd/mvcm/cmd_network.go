package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mvcm/internal/network"
	"mvcm/internal/orchestrator"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Show or change the selected network",
	RunE:  showNetwork,
}

var networkSetCmd = &cobra.Command{
	Use:       "set [localnet|devnet|mainnet-beta]",
	Short:     "Select and remember a network",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"localnet", "devnet", "mainnet-beta"},
	RunE:      setNetwork,
}

func init() {
	networkCmd.AddCommand(networkSetCmd)
}

func showNetwork(cmd *cobra.Command, _ []string) error {
	return withRuntime(cmd, func(ctx context.Context, rt *orchestrator.Runtime) error {
		n, endpoints, err := rt.Network(ctx)
		if err != nil {
			return err
		}
		printNetwork(cmd, n, endpoints)
		return nil
	})
}

func setNetwork(cmd *cobra.Command, args []string) error {
	n, err := network.Parse(args[0])
	if err != nil {
		return err
	}
	return withRuntime(cmd, func(ctx context.Context, rt *orchestrator.Runtime) error {
		if err := rt.SwitchNetwork(ctx, n); err != nil {
			return err
		}
		_, endpoints, err := rt.Network(ctx)
		if err != nil {
			return err
		}
		printNetwork(cmd, n, endpoints)
		return nil
	})
}

func printNetwork(cmd *cobra.Command, n network.Network, e network.Endpoints) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "network:  %s\n", n)
	fmt.Fprintf(out, "rpc:      %s\n", e.RPC)
	fmt.Fprintf(out, "ws:       %s\n", e.WS)
	fmt.Fprintf(out, "bundlr:   %s (provider %s)\n", e.BundlrAddress, e.BundlrProviderURL)
}
