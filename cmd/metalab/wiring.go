package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"solana-metadata-lab/internal/classify"
	"solana-metadata-lab/internal/config"
	"solana-metadata-lab/internal/indexer"
	"solana-metadata-lab/internal/observability"
	"solana-metadata-lab/internal/solana"
	"solana-metadata-lab/internal/storage"
	chstore "solana-metadata-lab/internal/storage/clickhouse"
	"solana-metadata-lab/internal/storage/memory"
	"solana-metadata-lab/internal/storage/migrations"
	pgstore "solana-metadata-lab/internal/storage/postgres"
)

// stores bundles the record and run stores with their shutdown.
type stores struct {
	records storage.RecordStore
	runs    storage.RunStore
	closers []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores connects the configured backends and applies migrations.
func openStores(ctx context.Context, c *config.Config, log *zap.Logger) (*stores, error) {
	if c.Storage.UseMemory {
		log.Info("using in-memory storage")
		return &stores{records: memory.NewRecordStore(), runs: memory.NewRunStore()}, nil
	}

	s := &stores{}

	pool, err := pgstore.NewPool(ctx, c.Storage.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	s.closers = append(s.closers, pool.Close)

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		s.Close()
		return nil, fmt.Errorf("postgres migrations: %w", err)
	}
	s.records = pgstore.NewRecordStore(pool)

	conn, err := migrations.RunClickhouseMigrations(ctx, c.Storage.ClickhouseDSN)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	s.closers = append(s.closers, func() { _ = conn.Close() })
	s.runs = chstore.NewRunStore(conn)

	log.Info("connected to storage")
	return s, nil
}

// newIndexer builds an Indexer over the configured RPC endpoint. ws may be nil.
func newIndexer(c *config.Config, st *stores, ws solana.WSClient, metrics *observability.Metrics, log *zap.Logger) (*indexer.Indexer, error) {
	cc, err := c.ClassifierConfig()
	if err != nil {
		return nil, err
	}

	rpc := solana.NewHTTPClient(c.Solana.RPCEndpoint,
		solana.WithTimeout(c.GetTimeout()),
		solana.WithMaxRetries(c.Solana.MaxRetries),
	)

	if metrics == nil {
		metrics = observability.NewMetrics("", prometheus.NewRegistry())
	}

	return indexer.New(indexer.Options{
		RPC:        rpc,
		WS:         ws,
		Classifier: classify.New(cc),
		Records:    st.records,
		Runs:       st.runs,
		Metrics:    metrics,
		Logger:     log,
	}), nil
}
