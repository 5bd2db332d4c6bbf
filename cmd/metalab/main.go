package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"solana-metadata-lab/internal/config"
)

var (
	// Global flags
	configPath    string
	verbose       bool
	rpcEndpoint   string
	wsEndpoint    string
	postgresDSN   string
	clickhouseDSN string
	useMemory     bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "metalab",
	Short: "Decode, classify and index token-metadata program accounts",
	Long: `metalab reads accounts owned by the token-metadata program, decodes
metadata, edition and master edition records, and files them by mint.

Settings come from a YAML file (--config), METALAB_* environment variables
and flags, in increasing order of precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg, verbose)
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
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
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "metalab.yaml", "Path to YAML config (missing file uses defaults)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&rpcEndpoint, "rpc-endpoint", "", "Solana RPC HTTP endpoint")
	pf.StringVar(&wsEndpoint, "ws-endpoint", "", "Solana WebSocket endpoint")
	pf.StringVar(&postgresDSN, "postgres-dsn", "", "PostgreSQL connection string for records")
	pf.StringVar(&clickhouseDSN, "clickhouse-dsn", "", "ClickHouse connection string for run summaries")
	pf.BoolVar(&useMemory, "use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")

	rootCmd.AddCommand(scanCmd, lookupCmd, deriveCmd, watchCmd, runsCmd, tokensCmd, holderCmd)
}

// loadConfig reads the config file and applies flags the user set
// explicitly on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("rpc-endpoint") {
		c.Solana.RPCEndpoint = rpcEndpoint
	}
	if flags.Changed("ws-endpoint") {
		c.Solana.WSEndpoint = wsEndpoint
	}
	if flags.Changed("postgres-dsn") {
		c.Storage.PostgresDSN = postgresDSN
		c.Storage.UseMemory = false
	}
	if flags.Changed("clickhouse-dsn") {
		c.Storage.ClickhouseDSN = clickhouseDSN
		c.Storage.UseMemory = false
	}
	if flags.Changed("use-memory") {
		c.Storage.UseMemory = useMemory
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func newLogger(c *config.Config, debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(c.LogLevel())
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
