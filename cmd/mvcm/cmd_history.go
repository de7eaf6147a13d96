package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mvcm/internal/domain"
	"mvcm/internal/orchestrator"
	"mvcm/internal/solana"
)

var (
	historyMinter       string
	historySnapshots    bool
	historyWindow time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history [candy-machine-id]",
	Short: "List recorded mint attempts and status snapshots",
	Long: `Lists mint attempts for a candy machine, or for a minter with --minter.
History survives between runs only with postgres_dsn and clickhouse_dsn set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: showHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyMinter, "minter", "", "List attempts by this wallet address")
	historyCmd.Flags().BoolVar(&historySnapshots, "snapshots", false, "Also list status snapshots")
	historyCmd.Flags().DurationVar(&historyWindow, "since", 24*time.Hour, "Snapshot window")
}

func showHistory(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && historyMinter == "" {
		return errors.New("a candy machine id or --minter is required")
	}

	return withRuntime(cmd, func(ctx context.Context, rt *orchestrator.Runtime) error {
		var (
			records []*domain.MintRecord
			err     error
		)
		if historyMinter != "" {
			records, err = rt.Stores.MintRecords.GetByMinter(ctx, historyMinter)
		} else {
			records, err = rt.Stores.MintRecords.GetByCandyMachine(ctx, args[0])
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "no mint attempts recorded")
		}
		for _, r := range records {
			sig := "-"
			if r.Signature != nil {
				sig = solana.TruncateAddress(*r.Signature)
			}
			line := fmt.Sprintf("%s  %-9s  %s  %s  nft %s  tx %s",
				time.UnixMilli(r.AttemptedAt).UTC().Format(time.RFC3339),
				r.Status, r.Version, r.Network, solana.TruncateAddress(r.NFTMint), sig)
			if r.Error != nil {
				line += "  error: " + *r.Error
			}
			fmt.Fprintln(out, line)
		}

		if !historySnapshots || len(args) == 0 {
			return nil
		}
		now := time.Now()
		snaps, err := rt.Stores.Snapshots.GetByTimeRange(ctx, args[0], now.Add(-historyWindow).UnixMilli(), now.UnixMilli())
		if err != nil {
			return err
		}
		for _, s := range snaps {
			fmt.Fprintf(out, "%s  %d/%d redeemed  price %d %s\n",
				time.UnixMilli(s.ObservedAt).UTC().Format(time.RFC3339),
				s.ItemsRedeemed, s.ItemsAvailable, s.Price, s.Ticker)
		}
		return nil
	})
}
