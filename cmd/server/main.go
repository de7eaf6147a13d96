// Package main runs the minter as a long-lived HTTP service:
//   - API: network, wallet, candy machine, status, mint, notifications, history
//   - Metrics: Prometheus on its own listener
//
// Flags default to environment variables, which may come from a .env file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mvcm/internal/api"
	"mvcm/internal/config"
	"mvcm/internal/logging"
	"mvcm/internal/orchestrator"
)

func main() {
	// Load .env file if exists
	config.LoadEnvFile(".env")

	// Flags override the config file and the environment when set.
	configPath := flag.String("config", os.Getenv("MVCM_CONFIG"), "YAML config file")
	flag.String("network", "", "Network to select (localnet, devnet, mainnet-beta)")
	flag.String("keypair", "", "Wallet keypair file (env MVCM_KEYPAIR)")
	flag.String("storage", "", "Preference file used without databases (env MVCM_STORAGE_PATH)")
	flag.String("rpc-endpoint", "", "Solana RPC HTTP endpoint override (env SOLANA_RPC_ENDPOINT)")
	flag.String("ws-endpoint", "", "Solana WebSocket endpoint override (env SOLANA_WS_ENDPOINT)")
	flag.String("postgres-dsn", "", "PostgreSQL connection string (env POSTGRES_DSN)")
	flag.String("clickhouse-dsn", "", "ClickHouse connection string (env CLICKHOUSE_DSN)")
	flag.Bool("use-memory", false, "Use in-memory storage instead of databases")
	flag.String("listen-addr", "", "API HTTP address (default :8080)")
	flag.String("metrics-addr", "", "Prometheus metrics HTTP address (default :9090)")
	flag.String("cors-origins", "", "Comma-separated allowed browser origins")
	flag.Uint("compute-units", 0, "Compute unit limit of mint transactions")
	flag.String("group", "", "Candy guard group label")
	flag.String("log-level", "", "Log level (debug, info, warn, error)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	candyMachine := flag.String("candy-machine", os.Getenv("MVCM_CANDY_MACHINE"), "Candy machine to load on startup")
	mintTimeout := flag.Duration("mint-timeout", api.DefaultMintTimeout, "Timeout of a mint request")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		if err := applyFlag(&cfg, f); err != nil {
			flagErr = errors.Join(flagErr, err)
		}
	})
	if flagErr != nil {
		fmt.Fprintln(os.Stderr, flagErr)
		os.Exit(2)
	}

	// Setup logger
	logger, err := logging.New(cfg.LogLevel, *verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger = logger.Named("server")

	// Validate required flags
	if !cfg.UseMemory && (cfg.PostgresDSN == "") != (cfg.ClickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn must be set together (use --use-memory for in-memory storage)")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Channel to signal completion
	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Warn("received second signal, forcing immediate shutdown", zap.String("signal", sig.String()))
			os.Exit(1)
		case <-time.After(api.ShutdownTimeout + 20*time.Second):
			logger.Error("graceful shutdown timed out, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err = run(ctx, cfg, *candyMachine, *mintTimeout, logger)
	close(done)

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// run bootstraps the runtime and serves until ctx ends.
func run(ctx context.Context, cfg config.Config, candyMachine string, mintTimeout time.Duration, logger *zap.Logger) error {
	rt, err := orchestrator.Bootstrap(ctx, cfg, logger, orchestrator.WithWebSocket())
	if err != nil {
		return err
	}
	defer rt.Close()

	n, endpoints, err := rt.Network(ctx)
	if err != nil {
		return err
	}
	logger.Info("starting server",
		zap.String("network", n.String()),
		zap.String("rpc", endpoints.RPC),
		zap.String("storage", rt.Stores.Backend),
		zap.String("listen_addr", cfg.ListenAddr),
		zap.String("metrics_addr", cfg.MetricsAddr))

	session := rt.Session()
	if candyMachine != "" {
		if err := session.SetIdentifier(ctx, candyMachine); err != nil {
			logger.Warn("initial candy machine not loaded", zap.String("id", candyMachine), zap.Error(err))
		}
	}

	srv := api.New(api.Options{
		Session:     session,
		Networks:    rt.Orchestrator,
		Wallet:      rt.Wallet(),
		Feed:        rt.Feed,
		History:     rt.Stores.MintRecords,
		CORSOrigins: cfg.CORSOrigins,
		MintTimeout: mintTimeout,
		Logger:      logger.Named("api"),
	})
	return api.ListenAndServe(ctx, cfg.ListenAddr, cfg.MetricsAddr, srv, logger)
}

// applyFlag copies one explicitly set flag into cfg.
func applyFlag(cfg *config.Config, f *flag.Flag) error {
	v := f.Value.String()
	switch f.Name {
	case "network":
		cfg.Network = v
	case "keypair":
		cfg.Keypair = v
	case "storage":
		cfg.StoragePath = v
	case "rpc-endpoint":
		cfg.RPCEndpoint = v
	case "ws-endpoint":
		cfg.WSEndpoint = v
	case "postgres-dsn":
		cfg.PostgresDSN = v
	case "clickhouse-dsn":
		cfg.ClickhouseDSN = v
	case "use-memory":
		cfg.UseMemory = v == "true"
	case "listen-addr":
		cfg.ListenAddr = v
	case "metrics-addr":
		cfg.MetricsAddr = v
	case "cors-origins":
		cfg.CORSOrigins = splitOrigins(v)
	case "group":
		cfg.Group = v
	case "log-level":
		cfg.LogLevel = v
	case "compute-units":
		units, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("-compute-units: %w", err)
		}
		cfg.ComputeUnits = uint32(units)
	}
	return nil
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
