// Package indexer fetches metadata program accounts, classifies them and
// persists the results.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"solana-metadata-lab/internal/classify"
	"solana-metadata-lab/internal/domain"
	"solana-metadata-lab/internal/idhash"
	"solana-metadata-lab/internal/metadata"
	"solana-metadata-lab/internal/observability"
	"solana-metadata-lab/internal/solana"
	"solana-metadata-lab/internal/storage"
)

var (
	// ErrAccountNotFound is returned when a derived account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrNotMetadata is returned when an account exists but is not a
	// decodable metadata record of the configured program.
	ErrNotMetadata = errors.New("account is not a metadata record")
	// ErrSubscriptionClosed is returned by Watch when the feed ends before
	// the context is cancelled.
	ErrSubscriptionClosed = errors.New("subscription closed")
)

// Indexer wires a ledger client, a classifier and the stores together.
type Indexer struct {
	rpc        solana.RPCClient
	ws         solana.WSClient
	classifier *classify.Classifier
	records    storage.RecordStore
	runs       storage.RunStore
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time

	highestSlot atomic.Int64
}

// Options contains configuration for creating an Indexer.
type Options struct {
	RPC        solana.RPCClient
	WS         solana.WSClient // only needed by Watch
	Classifier *classify.Classifier
	Records    storage.RecordStore
	Runs       storage.RunStore
	Metrics    *observability.Metrics // Default: registered on a private registry
	Logger     *zap.Logger            // Default: zap.NewNop()
	Now        func() time.Time       // Default: time.Now
}

// New creates a new Indexer.
func New(opts Options) *Indexer {
	classifier := opts.Classifier
	if classifier == nil {
		classifier = classify.New(classify.DefaultConfig())
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics("", prometheus.NewRegistry())
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Indexer{
		rpc:        opts.RPC,
		ws:         opts.WS,
		classifier: classifier,
		records:    opts.Records,
		runs:       opts.Runs,
		metrics:    metrics,
		logger:     logger,
		now:        now,
	}
}

// Scan enumerates the program's accounts, classifies them and persists
// every filed record plus a run summary. With a non-nil creator only
// metadata listing creator in its first two creator slots is fetched.
func (ix *Indexer) Scan(ctx context.Context, creator *solana.Pubkey) (*domain.ClassificationRun, error) {
	started := ix.now()
	programID := ix.classifier.ProgramID()

	accounts, err := ix.fetchProgramAccounts(ctx, programID, creator)
	if err != nil {
		ix.metrics.RecordRun(string(domain.RunModeScan), "error")
		return nil, err
	}
	ix.logger.Info("fetched program accounts",
		zap.Stringer("program", programID),
		zap.Int("accounts", len(accounts)),
	)

	classifyStart := time.Now()
	report, err := ix.classifier.ClassifyParallel(ctx, accounts)
	if err != nil {
		ix.metrics.RecordRun(string(domain.RunModeScan), "error")
		return nil, fmt.Errorf("classify: %w", err)
	}
	ix.metrics.ClassifyDuration.Observe(time.Since(classifyStart).Seconds())
	ix.observe(report.Results)

	if err := ix.persist(ctx, &report.Buckets); err != nil {
		ix.metrics.RecordRun(string(domain.RunModeScan), "error")
		return nil, err
	}

	run := ix.buildRun(programID, domain.RunModeScan, started, report)
	if err := ix.insertRun(ctx, run); err != nil {
		ix.metrics.RecordRun(string(domain.RunModeScan), "error")
		return nil, err
	}

	ix.metrics.RecordRun(string(domain.RunModeScan), "ok")
	ix.metrics.LastSuccessfulRun.Set(float64(run.FinishedAt) / 1000)
	ix.logger.Info("scan complete",
		zap.String("run_id", run.RunID),
		zap.Int("accounts", run.AccountsTotal),
		zap.Int("classified", run.Classified),
		zap.Int("discarded", run.Discarded()),
		zap.Int("metadata", run.Metadata),
		zap.Int("editions", run.Editions),
		zap.Int("master_editions", run.MasterEditions),
	)
	return run, nil
}

// fetchProgramAccounts issues one getProgramAccounts call, or one per creator
// slot when creator is set, merging results in first-seen order.
func (ix *Indexer) fetchProgramAccounts(ctx context.Context, programID solana.Pubkey, creator *solana.Pubkey) ([]solana.RawAccount, error) {
	if creator == nil {
		return ix.getProgramAccounts(ctx, programID, nil)
	}

	seen := make(map[solana.Pubkey]struct{})
	var merged []solana.RawAccount
	for _, f := range metadata.CreatorFilters(*creator) {
		accounts, err := ix.getProgramAccounts(ctx, programID, &solana.ProgramAccountsOpts{
			Filters: []solana.MemcmpFilter{f},
		})
		if err != nil {
			return nil, err
		}
		for _, acc := range accounts {
			if _, dup := seen[acc.Pubkey]; dup {
				continue
			}
			seen[acc.Pubkey] = struct{}{}
			merged = append(merged, acc)
		}
	}
	return merged, nil
}

func (ix *Indexer) getProgramAccounts(ctx context.Context, programID solana.Pubkey, opts *solana.ProgramAccountsOpts) ([]solana.RawAccount, error) {
	start := time.Now()
	accounts, err := ix.rpc.GetProgramAccounts(ctx, programID, opts)
	ix.metrics.RecordRPC("getProgramAccounts", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("get program accounts: %w", err)
	}
	return accounts, nil
}

// LookupByMint fetches and decodes the metadata record of mint, with its
// edition addresses derived. The uri filter is not applied.
func (ix *Indexer) LookupByMint(ctx context.Context, mint solana.Pubkey) (*metadata.Metadata, error) {
	programID := ix.classifier.ProgramID()

	addr, err := metadata.MetadataAddress(programID, mint)
	ix.metrics.RecordDerivation("metadata", err)
	if err != nil {
		return nil, fmt.Errorf("derive metadata address: %w", err)
	}

	start := time.Now()
	info, err := ix.rpc.GetAccountInfo(ctx, addr)
	ix.metrics.RecordRPC("getAccountInfo", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", addr, err)
	}
	if info == nil {
		return nil, fmt.Errorf("metadata %s for mint %s: %w", addr, mint, ErrAccountNotFound)
	}

	m, ok := ix.classifier.LookupMetadata(solana.RawAccount{
		Pubkey:   addr,
		Owner:    info.Owner,
		Data:     info.Data,
		Lamports: info.Lamports,
	})
	if !ok {
		return nil, fmt.Errorf("metadata %s: %w", addr, ErrNotMetadata)
	}

	err = m.DeriveEditions(programID)
	ix.metrics.RecordDerivation("edition", err)
	if err != nil {
		return nil, fmt.Errorf("derive edition address: %w", err)
	}
	return m, nil
}

// Watch subscribes to the program's account changes and persists every
// record the classifier files. It blocks until ctx is cancelled, returning
// ctx.Err(), or until the feed closes.
func (ix *Indexer) Watch(ctx context.Context) error {
	if ix.ws == nil {
		return errors.New("watch requires a websocket client")
	}

	programID := ix.classifier.ProgramID()
	feed, err := ix.ws.SubscribeProgram(ctx, solana.ProgramFilter{Program: programID})
	if err != nil {
		ix.metrics.RecordRun(string(domain.RunModeWatch), "error")
		return fmt.Errorf("subscribe program: %w", err)
	}

	ix.metrics.SubscriptionsActive.Inc()
	defer ix.metrics.SubscriptionsActive.Dec()
	ix.logger.Info("watching program", zap.Stringer("program", programID))

	for {
		select {
		case <-ctx.Done():
			ix.metrics.RecordRun(string(domain.RunModeWatch), "ok")
			ix.logger.Info("watch stopping")
			return ctx.Err()
		case acc, ok := <-feed:
			if !ok {
				ix.metrics.RecordRun(string(domain.RunModeWatch), "error")
				return ErrSubscriptionClosed
			}
			if err := ix.handleNotification(ctx, acc); err != nil {
				ix.metrics.RecordRun(string(domain.RunModeWatch), "error")
				return err
			}
		}
	}
}

func (ix *Indexer) handleNotification(ctx context.Context, acc solana.RawAccount) error {
	ix.metrics.NotificationsTotal.Inc()
	ix.noteSlot(acc.Slot)

	buckets, res := ix.classifier.ClassifyAccount(acc)
	ix.observe([]classify.Result{res})
	if res.Outcome != classify.OutcomeClassified {
		return nil
	}
	return ix.persist(ctx, buckets)
}

// observe records per-account outcomes. Discards are logged at debug level.
func (ix *Indexer) observe(results []classify.Result) {
	for _, res := range results {
		ix.metrics.RecordOutcome(res.Outcome.String())
		if res.Outcome == classify.OutcomeClassified {
			continue
		}
		fields := []zap.Field{
			zap.Stringer("account", res.Pubkey),
			zap.Stringer("outcome", res.Outcome),
		}
		if res.Err != nil {
			fields = append(fields, zap.Error(res.Err))
		}
		ix.logger.Debug("account discarded", fields...)
	}
}

// persist writes every filed record. A metadata record whose mint is held by
// another address is logged and skipped; any other store error aborts.
func (ix *Indexer) persist(ctx context.Context, b *classify.Buckets) error {
	programID := ix.classifier.ProgramID()
	updatedAt := ix.now().UnixMilli()
	var highest int64

	for _, e := range b.MetadataByMint {
		err := e.Info.DeriveEditions(programID)
		ix.metrics.RecordDerivation("edition", err)
		if err != nil {
			return fmt.Errorf("derive edition for mint %s: %w", e.Key, err)
		}

		err = ix.timed("upsert_metadata", func() error {
			return ix.records.UpsertMetadata(ctx, metadataRecord(e, updatedAt))
		})
		if errors.Is(err, storage.ErrDuplicateKey) {
			ix.logger.Warn("mint already indexed under another address",
				zap.Stringer("account", e.Pubkey),
				zap.Stringer("mint", e.Key),
			)
			continue
		}
		if err != nil {
			return fmt.Errorf("upsert metadata %s: %w", e.Pubkey, err)
		}
		highest = max(highest, e.Account.Slot)
	}

	for _, e := range b.Editions {
		err := ix.timed("upsert_edition", func() error {
			return ix.records.UpsertEdition(ctx, editionRecord(e, updatedAt))
		})
		if err != nil {
			return fmt.Errorf("upsert edition %s: %w", e.Pubkey, err)
		}
		highest = max(highest, e.Account.Slot)
	}

	for _, e := range b.MasterEditions {
		err := ix.timed("upsert_master_edition", func() error {
			return ix.records.UpsertMasterEdition(ctx, masterEditionRecord(e, updatedAt))
		})
		if err != nil {
			return fmt.Errorf("upsert master edition %s: %w", e.Pubkey, err)
		}
		highest = max(highest, e.Account.Slot)
	}

	ix.metrics.RecordFiled("metadata", len(b.MetadataByMint))
	ix.metrics.RecordFiled("editions", len(b.Editions))
	ix.metrics.RecordFiled("master_editions", len(b.MasterEditions))
	ix.metrics.RecordFiled("master_editions_by_printing_mint", len(b.MasterEditionsByPrintingMint))
	ix.metrics.RecordFiled("master_editions_by_one_time_auth_mint", len(b.MasterEditionsByOneTimeAuthMint))
	ix.noteSlot(highest)
	return nil
}

// noteSlot raises the highest-slot gauge. Notifications may arrive out of
// order, so lower slots are ignored.
func (ix *Indexer) noteSlot(slot int64) {
	for {
		cur := ix.highestSlot.Load()
		if slot <= cur {
			return
		}
		if ix.highestSlot.CompareAndSwap(cur, slot) {
			ix.metrics.UpdateHighestSlot(slot)
			return
		}
	}
}

func (ix *Indexer) timed(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	ix.metrics.RecordDBQuery("records", operation, time.Since(start).Seconds(), err)
	return err
}

func (ix *Indexer) buildRun(programID solana.Pubkey, mode domain.RunMode, started time.Time, rep *classify.Report) *domain.ClassificationRun {
	startedAt := started.UnixMilli()
	return &domain.ClassificationRun{
		RunID:          idhash.ComputeRunID(programID.String(), mode, startedAt, rep.Stats.Total),
		ProgramID:      programID.String(),
		Mode:           mode,
		StartedAt:      startedAt,
		FinishedAt:     ix.now().UnixMilli(),
		AccountsTotal:  rep.Stats.Total,
		Classified:     rep.Stats.Count(classify.OutcomeClassified),
		OwnerMismatch:  rep.Stats.Count(classify.OutcomeOwnerMismatch),
		Empty:          rep.Stats.Count(classify.OutcomeEmpty),
		UnknownKey:     rep.Stats.Count(classify.OutcomeUnknownKey),
		Unbucketed:     rep.Stats.Count(classify.OutcomeUnbucketed),
		DecodeErrors:   rep.Stats.Count(classify.OutcomeDecodeError),
		RejectedURI:    rep.Stats.Count(classify.OutcomeRejectedURI),
		Metadata:       len(rep.Buckets.MetadataByMint),
		Editions:       len(rep.Buckets.Editions),
		MasterEditions: len(rep.Buckets.MasterEditions),
	}
}

func (ix *Indexer) insertRun(ctx context.Context, run *domain.ClassificationRun) error {
	start := time.Now()
	err := ix.runs.Insert(ctx, run)
	ix.metrics.RecordDBQuery("runs", "insert_run", time.Since(start).Seconds(), err)
	if errors.Is(err, storage.ErrDuplicateKey) {
		ix.logger.Warn("run already recorded", zap.String("run_id", run.RunID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}
