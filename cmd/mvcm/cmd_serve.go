package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mvcm/internal/api"
	"mvcm/internal/orchestrator"
)

var serveCmd = &cobra.Command{
	Use:   "serve [candy-machine-id]",
	Short: "Serve the minter over HTTP",
	Long: `Starts the HTTP API (status, mint, network and wallet endpoints) and a
Prometheus listener. An optional candy machine id is loaded on startup.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := orchestrator.Bootstrap(ctx, cfg, logger, orchestrator.WithWebSocket())
	if err != nil {
		return err
	}
	defer rt.Close()

	session := rt.Session()
	if len(args) == 1 {
		if err := session.SetIdentifier(ctx, args[0]); err != nil {
			logger.Warn("initial candy machine not loaded", zap.String("id", args[0]), zap.Error(err))
		}
	}

	srv := api.New(api.Options{
		Session:     session,
		Networks:    rt.Orchestrator,
		Wallet:      rt.Wallet(),
		Feed:        rt.Feed,
		History:     rt.Stores.MintRecords,
		CORSOrigins: cfg.CORSOrigins,
		MintTimeout: timeout,
		Logger:      logger.Named("api"),
	})
	return api.ListenAndServe(ctx, cfg.ListenAddr, cfg.MetricsAddr, srv, logger)
}
