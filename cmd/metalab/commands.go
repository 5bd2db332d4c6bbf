package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"solana-metadata-lab/internal/metadata"
	"solana-metadata-lab/internal/observability"
	"solana-metadata-lab/internal/solana"
	"solana-metadata-lab/internal/token"
)

var (
	scanCreator   string
	deriveEdition uint64
	deriveWallet  string
	metricsAddr   string
	runsLimit     int
	tokensAll     bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Classify every program account and persist the results",
	Long: `Enumerates accounts owned by the configured program, classifies them
and stores metadata, editions and master editions plus a run summary.

With --creator only metadata listing that creator in one of its first two
creator slots is fetched.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var lookupCmd = &cobra.Command{
	Use:   "lookup MINT",
	Short: "Fetch and decode the metadata record of a mint",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

var deriveCmd = &cobra.Command{
	Use:   "derive MINT",
	Short: "Print the program-derived addresses of a mint",
	Long: `Derives the metadata and edition addresses of MINT without touching
the network. --edition adds the edition marker page holding that print
number; --wallet adds the wallet's associated token account.`,
	Args: cobra.ExactArgs(1),
	RunE: runDerive,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Subscribe to program account changes and persist classified records",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent classification runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

var tokensCmd = &cobra.Command{
	Use:   "tokens OWNER",
	Short: "List the token accounts held by a wallet",
	Long: `Lists OWNER's accounts under the token program. Accounts with a zero
balance are hidden unless --all is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokens,
}

var holderCmd = &cobra.Command{
	Use:   "holder MINT",
	Short: "Print the wallet holding the largest balance of a mint",
	Args:  cobra.ExactArgs(1),
	RunE:  runHolder,
}

func init() {
	scanCmd.Flags().StringVar(&scanCreator, "creator", "", "Only fetch metadata listing this creator")
	deriveCmd.Flags().Uint64Var(&deriveEdition, "edition", 0, "Print number to locate the edition marker for")
	deriveCmd.Flags().StringVar(&deriveWallet, "wallet", "", "Wallet to derive the associated token account for")
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus metrics address (default from config)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "Number of runs to list")
	tokensCmd.Flags().BoolVar(&tokensAll, "all", false, "Include zero-balance accounts")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var creator *solana.Pubkey
	if scanCreator != "" {
		pk, err := solana.ParsePubkey(scanCreator)
		if err != nil {
			return fmt.Errorf("--creator: %w", err)
		}
		creator = &pk
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ix, err := newIndexer(cfg, st, nil, nil, logger)
	if err != nil {
		return err
	}

	_, err = ix.Scan(ctx, creator)
	return err
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	mint, err := solana.ParsePubkey(args[0])
	if err != nil {
		return fmt.Errorf("mint: %w", err)
	}

	// Lookups persist nothing.
	ix, err := newIndexer(cfg, &stores{}, nil, nil, logger)
	if err != nil {
		return err
	}

	m, err := ix.LookupByMint(ctx, mint)
	if err != nil {
		return err
	}
	logger.Info("metadata", metadataFields(m)...)
	return nil
}

func metadataFields(m *metadata.Metadata) []zap.Field {
	fields := []zap.Field{
		zap.Stringer("mint", m.Mint),
		zap.Stringer("update_authority", m.UpdateAuthority),
		zap.String("name", m.Data.Name),
		zap.String("symbol", m.Data.Symbol),
		zap.String("uri", m.Data.URI),
		zap.Uint16("seller_fee_basis_points", m.Data.SellerFeeBasisPoints),
		zap.Bool("primary_sale_happened", m.PrimarySaleHappened),
		zap.Bool("is_mutable", m.IsMutable),
	}
	if cid, ok := metadata.ContentID(m.Data.URI); ok {
		fields = append(fields,
			zap.String("ipfs_cid", cid),
			zap.String("gateway_uri", metadata.GatewayURL(m.Data.URI)),
		)
	}
	if m.Edition != nil {
		fields = append(fields, zap.Stringer("edition", *m.Edition))
	}
	for i, c := range m.Data.Creators {
		fields = append(fields, zap.Dict(fmt.Sprintf("creator_%d", i),
			zap.Stringer("address", c.Address),
			zap.Bool("verified", c.Verified),
			zap.Uint8("share", c.Share),
		))
	}
	return fields
}

// derivedAddresses holds the output of the derive command.
type derivedAddresses struct {
	Metadata      solana.Pubkey
	Edition       solana.Pubkey
	EditionMarker *solana.Pubkey
	MarkerPage    uint64
	TokenAccount  *solana.Pubkey
}

func deriveAddresses(programID, mint solana.Pubkey, edition *uint64, wallet *solana.Pubkey) (*derivedAddresses, error) {
	var (
		out derivedAddresses
		err error
	)

	if out.Metadata, err = metadata.MetadataAddress(programID, mint); err != nil {
		return nil, fmt.Errorf("metadata address: %w", err)
	}
	if out.Edition, err = metadata.EditionAddress(programID, mint); err != nil {
		return nil, fmt.Errorf("edition address: %w", err)
	}
	if edition != nil {
		marker, err := metadata.EditionMarkerAddress(programID, mint, *edition)
		if err != nil {
			return nil, fmt.Errorf("edition marker address: %w", err)
		}
		out.EditionMarker = &marker
		out.MarkerPage = metadata.MarkerPage(*edition)
	}
	if wallet != nil {
		ata, err := metadata.AssociatedTokenAddress(*wallet, mint)
		if err != nil {
			return nil, fmt.Errorf("associated token address: %w", err)
		}
		out.TokenAccount = &ata
	}
	return &out, nil
}

func runDerive(cmd *cobra.Command, args []string) error {
	mint, err := solana.ParsePubkey(args[0])
	if err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	programID, err := solana.ParsePubkey(cfg.Solana.ProgramID)
	if err != nil {
		return fmt.Errorf("program id: %w", err)
	}

	var edition *uint64
	if cmd.Flags().Changed("edition") {
		edition = &deriveEdition
	}
	var wallet *solana.Pubkey
	if deriveWallet != "" {
		pk, err := solana.ParsePubkey(deriveWallet)
		if err != nil {
			return fmt.Errorf("--wallet: %w", err)
		}
		wallet = &pk
	}

	out, err := deriveAddresses(programID, mint, edition, wallet)
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.Stringer("mint", mint),
		zap.Stringer("metadata", out.Metadata),
		zap.Stringer("edition", out.Edition),
	}
	if out.EditionMarker != nil {
		fields = append(fields,
			zap.Stringer("edition_marker", *out.EditionMarker),
			zap.Uint64("marker_page", out.MarkerPage),
		)
	}
	if out.TokenAccount != nil {
		fields = append(fields, zap.Stringer("token_account", *out.TokenAccount))
	}
	logger.Info("derived addresses", fields...)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if cfg.Solana.WSEndpoint == "" {
		return fmt.Errorf("solana.ws_endpoint is required for watch")
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics("", registry)

	addr := cfg.Metrics.Addr
	if metricsAddr != "" {
		addr = metricsAddr
	}
	if addr != "" {
		srv := startMetricsServer(addr, registry)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	wsCfg := solana.DefaultWSConfig()
	wsCfg.OnError = func(err error) {
		logger.Warn("websocket error", zap.Error(err))
	}
	ws, err := solana.NewWSClient(ctx, cfg.Solana.WSEndpoint, &wsCfg)
	if err != nil {
		return fmt.Errorf("connect websocket: %w", err)
	}
	defer ws.Close()

	ix, err := newIndexer(cfg, st, ws, metrics, logger)
	if err != nil {
		return err
	}

	err = ix.Watch(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("shutdown complete")
		return nil
	}
	return err
}

func startMetricsServer(addr string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler(registry))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
	return srv
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.runs.ListRecent(ctx, runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	for _, r := range runs {
		logger.Info("run",
			zap.String("run_id", r.RunID),
			zap.String("mode", r.Mode.String()),
			zap.Time("started_at", time.UnixMilli(r.StartedAt)),
			zap.Int("accounts", r.AccountsTotal),
			zap.Int("classified", r.Classified),
			zap.Int("discarded", r.Discarded()),
		)
	}
	return nil
}

func runTokens(cmd *cobra.Command, args []string) error {
	owner, err := solana.ParsePubkey(args[0])
	if err != nil {
		return fmt.Errorf("owner: %w", err)
	}

	ix, err := newIndexer(cfg, &stores{}, nil, nil, logger)
	if err != nil {
		return err
	}

	accounts, err := ix.TokensByOwner(cmd.Context(), owner, tokensAll)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		logger.Info("token account", tokenFields(a)...)
	}
	logger.Info("token accounts listed", zap.Stringer("owner", owner), zap.Int("count", len(accounts)))
	return nil
}

func runHolder(cmd *cobra.Command, args []string) error {
	mint, err := solana.ParsePubkey(args[0])
	if err != nil {
		return fmt.Errorf("mint: %w", err)
	}

	ix, err := newIndexer(cfg, &stores{}, nil, nil, logger)
	if err != nil {
		return err
	}

	a, err := ix.LargestHolder(cmd.Context(), mint)
	if err != nil {
		return err
	}
	logger.Info("largest holder", tokenFields(a)...)
	return nil
}

func tokenFields(a *token.Account) []zap.Field {
	fields := []zap.Field{
		zap.Stringer("account", a.Address),
		zap.Stringer("mint", a.Mint),
		zap.Stringer("owner", a.Owner),
		zap.Uint64("amount", a.Amount),
		zap.Stringer("state", a.State),
	}
	if a.Delegate != nil {
		fields = append(fields,
			zap.Stringer("delegate", *a.Delegate),
			zap.Uint64("delegated_amount", a.DelegatedAmount),
		)
	}
	if a.IsNative != nil {
		fields = append(fields, zap.Uint64("native_reserve", *a.IsNative))
	}
	if a.CloseAuthority != nil {
		fields = append(fields, zap.Stringer("close_authority", *a.CloseAuthority))
	}
	return fields
}
