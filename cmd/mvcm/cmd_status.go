package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"mvcm/internal/mint"
	"mvcm/internal/orchestrator"
	"mvcm/internal/view"
)

var statusCmd = &cobra.Command{
	Use:   "status [candy-machine-id]",
	Short: "Load a candy machine and show whether the wallet can mint",
	Args:  cobra.ExactArgs(1),
	RunE:  showStatus,
}

var mintCmd = &cobra.Command{
	Use:   "mint [candy-machine-id]",
	Short: "Mint one NFT from a candy machine",
	Long: `Loads the candy machine, checks the payment guard against the wallet
balance and submits a compute-limit + mint transaction. The status is
re-read once the transaction is confirmed.`,
	Args: cobra.ExactArgs(1),
	RunE: runMint,
}

func showStatus(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(ctx context.Context, rt *orchestrator.Runtime) error {
		session := rt.Session()
		err := session.SetIdentifier(ctx, args[0])
		printCard(cmd, rt)
		return err
	})
}

func runMint(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(ctx context.Context, rt *orchestrator.Runtime) error {
		session := rt.Session()
		if err := session.SetIdentifier(ctx, args[0]); err != nil {
			printCard(cmd, rt)
			return err
		}

		rec, err := session.Mint(ctx)
		printCard(cmd, rt)
		if err != nil {
			if errors.Is(err, mint.ErrNotEligible) || errors.Is(err, mint.ErrWalletNotConnected) {
				return err
			}
			return fmt.Errorf("mint failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "minted %s (record %s)\n", rec.NFTMint, rec.ID)
		return nil
	}, orchestrator.WithWebSocket())
}

func printCard(cmd *cobra.Command, rt *orchestrator.Runtime) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, view.Card(rt.Session().State(), rt.Wallet().Address()))
	if items := rt.Feed.Recent(5); len(items) > 0 {
		fmt.Fprintln(out, view.Notifications(items))
	}
}

func formatLamports(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9).String()
}
