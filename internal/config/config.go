// Package config loads settings from a YAML file, a .env file and the
// environment. Command-line flags are applied on top by the binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"mvcm/internal/candymachine"
	"mvcm/internal/network"
	"mvcm/internal/solana"
)

// maxComputeUnits is the per-transaction compute limit of the runtime.
const maxComputeUnits = 1_400_000

// Endpoint overrides the RPC endpoints of one network.
type Endpoint struct {
	RPC string `yaml:"rpc"`
	WS  string `yaml:"ws"`
}

// Config holds every setting of the minter.
type Config struct {
	// Network, when set, replaces the persisted selection at startup.
	Network string `yaml:"network"`

	Keypair     string `yaml:"keypair"`
	StoragePath string `yaml:"storage_path"`

	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
	UseMemory     bool   `yaml:"use_memory"`

	ComputeUnits uint32 `yaml:"compute_units"`
	Group        string `yaml:"group"`
	Commitment   string `yaml:"commitment"`

	// Endpoints are per-network overrides keyed by network name.
	Endpoints map[string]Endpoint `yaml:"endpoints"`

	// RPCEndpoint and WSEndpoint override the endpoints of Network (or
	// the default network when Network is empty).
	RPCEndpoint string `yaml:"rpc_endpoint"`
	WSEndpoint  string `yaml:"ws_endpoint"`

	ListenAddr  string   `yaml:"listen_addr"`
	MetricsAddr string   `yaml:"metrics_addr"`
	CORSOrigins []string `yaml:"cors_origins"`
	LogLevel    string   `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		StoragePath:  "~/.mvcm/storage.yaml",
		ComputeUnits: candymachine.DefaultComputeUnits,
		Commitment:   solana.CommitmentConfirmed,
		ListenAddr:   ":8080",
		MetricsAddr:  ":9090",
		LogLevel:     "info",
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped when
// path is empty) and then the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables that are set.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	str("MVCM_NETWORK", &c.Network)
	str("MVCM_KEYPAIR", &c.Keypair)
	str("MVCM_STORAGE_PATH", &c.StoragePath)
	str("POSTGRES_DSN", &c.PostgresDSN)
	str("CLICKHOUSE_DSN", &c.ClickhouseDSN)
	str("MVCM_LISTEN_ADDR", &c.ListenAddr)
	str("MVCM_METRICS_ADDR", &c.MetricsAddr)
	str("MVCM_LOG_LEVEL", &c.LogLevel)
	str("SOLANA_RPC_ENDPOINT", &c.RPCEndpoint)
	str("SOLANA_WS_ENDPOINT", &c.WSEndpoint)

	if v := getenv("MVCM_COMPUTE_UNITS"); v != "" {
		units, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("MVCM_COMPUTE_UNITS: %w", err)
		}
		c.ComputeUnits = uint32(units)
	}
	if v := getenv("MVCM_CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	return nil
}

// Validate checks values that cannot be caught at parse time.
func (c Config) Validate() error {
	var errs []error
	if c.Network != "" {
		if _, err := network.Parse(c.Network); err != nil {
			errs = append(errs, err)
		}
	}
	for name := range c.Endpoints {
		if _, err := network.Parse(name); err != nil {
			errs = append(errs, fmt.Errorf("endpoints: %w", err))
		}
	}
	if c.ComputeUnits == 0 || c.ComputeUnits > maxComputeUnits {
		errs = append(errs, fmt.Errorf("compute_units must be in 1..%d", maxComputeUnits))
	}
	switch c.Commitment {
	case solana.CommitmentProcessed, solana.CommitmentConfirmed, solana.CommitmentFinalized:
	default:
		errs = append(errs, fmt.Errorf("unknown commitment %q", c.Commitment))
	}
	if !c.UseMemory && (c.PostgresDSN == "") != (c.ClickhouseDSN == "") {
		errs = append(errs, errors.New("postgres_dsn and clickhouse_dsn must be set together"))
	}
	return errors.Join(errs...)
}

// Overrides returns the endpoint overrides per network. RPCEndpoint and
// WSEndpoint take precedence for the configured network.
func (c Config) Overrides() map[network.Network]network.Override {
	out := make(map[network.Network]network.Override)
	for name, ep := range c.Endpoints {
		n, err := network.Parse(name)
		if err != nil {
			continue
		}
		out[n] = network.Override{RPC: ep.RPC, WS: ep.WS}
	}

	if c.RPCEndpoint != "" || c.WSEndpoint != "" {
		n := network.Default
		if parsed, err := network.Parse(c.Network); err == nil {
			n = parsed
		}
		o := out[n]
		if c.RPCEndpoint != "" {
			o.RPC = c.RPCEndpoint
		}
		if c.WSEndpoint != "" {
			o.WS = c.WSEndpoint
		}
		out[n] = o
	}
	return out
}

// Persistent reports whether mint records and snapshots go to databases.
func (c Config) Persistent() bool {
	return !c.UseMemory && c.PostgresDSN != "" && c.ClickhouseDSN != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
