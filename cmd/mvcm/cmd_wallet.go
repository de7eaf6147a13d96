package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mvcm/internal/orchestrator"
	"mvcm/internal/wallet"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Show the configured wallet and its balance",
	RunE:  showWallet,
}

var walletDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the wallet and clear its cached data",
	RunE:  disconnectWallet,
}

func init() {
	walletCmd.AddCommand(walletDisconnectCmd)
}

func showWallet(cmd *cobra.Command, _ []string) error {
	return withRuntime(cmd, func(ctx context.Context, rt *orchestrator.Runtime) error {
		out := cmd.OutOrStdout()
		pk, err := rt.Wallet().PublicKey()
		if err != nil {
			fmt.Fprintln(out, "wallet:   not connected (use --keypair)")
			return nil
		}

		n, endpoints, err := rt.Network(ctx)
		if err != nil {
			return err
		}
		rpc := rt.RPC(endpoints.RPC)
		lamports, err := wallet.NewBalanceReader(rpc).Balance(ctx, pk.ToBase58())
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "wallet:   %s\n", pk.ToBase58())
		fmt.Fprintf(out, "network:  %s\n", n)
		fmt.Fprintf(out, "balance:  %s SOL\n", formatLamports(lamports))
		return nil
	})
}

func disconnectWallet(cmd *cobra.Command, _ []string) error {
	return withRuntime(cmd, func(ctx context.Context, rt *orchestrator.Runtime) error {
		if err := rt.Wallet().Disconnect(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "wallet disconnected")
		return nil
	})
}
