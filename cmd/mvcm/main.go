// Command mvcm loads a candy machine (v2 or v3), shows its status and mints
// from it with a keypair wallet.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mvcm/internal/config"
	"mvcm/internal/logging"
	"mvcm/internal/orchestrator"
)

var (
	// Global flags
	configPath   string
	envFile      string
	verbose      bool
	networkFlag  string
	keypairPath  string
	storagePath  string
	useMemory    bool
	rpcEndpoint  string
	groupLabel   string
	computeUnits uint32
	timeout      time.Duration

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mvcm",
	Short: "Multi-version candy machine minter",
	Long: `mvcm reads a Metaplex candy machine, trying the v3 (candy guard) layout
first and falling back to v2, and mints from it with a keypair wallet.

The selected network is remembered between runs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnvFile(envFile)

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, &loaded)
		cfg = loaded

		logger, err = logging.New(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&envFile, "env-file", ".env", "Environment file loaded before the config")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVarP(&networkFlag, "network", "n", "", "Network to select (localnet, devnet, mainnet-beta)")
	flags.StringVarP(&keypairPath, "keypair", "k", "", "Wallet keypair file")
	flags.StringVar(&storagePath, "storage", "", "Preference file (default ~/.mvcm/storage.yaml)")
	flags.BoolVar(&useMemory, "use-memory", false, "Keep preferences and history in memory")
	flags.StringVar(&rpcEndpoint, "rpc-endpoint", "", "RPC endpoint override for the selected network")
	flags.StringVar(&groupLabel, "group", "", "Candy guard group label")
	flags.Uint32Var(&computeUnits, "compute-units", 0, "Compute unit limit of mint transactions")
	flags.DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(walletCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(mintCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	changed := cmd.Flags().Changed
	if changed("network") {
		c.Network = networkFlag
	}
	if changed("keypair") {
		c.Keypair = keypairPath
	}
	if changed("storage") {
		c.StoragePath = storagePath
	}
	if changed("use-memory") {
		c.UseMemory = useMemory
	}
	if changed("rpc-endpoint") {
		c.RPCEndpoint = rpcEndpoint
	}
	if changed("group") {
		c.Group = groupLabel
	}
	if changed("compute-units") {
		c.ComputeUnits = computeUnits
	}
}

// withRuntime bootstraps the orchestrator for one command.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *orchestrator.Runtime) error, opts ...orchestrator.BootstrapOption) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := orchestrator.Bootstrap(ctx, cfg, logger, opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	return fn(ctx, rt)
}
