package storage

import (
	"context"

	"solana-metadata-lab/internal/domain"
)

// RecordStore provides access to decoded metadata program records.
//
// Upserts are keyed by account address. A write carrying an older slot than
// the stored row is ignored, so replays and out-of-order notifications never
// roll a record back.
type RecordStore interface {
	// UpsertMetadata inserts or replaces a metadata record and its creators.
	// Returns ErrDuplicateKey if another address already holds the same mint.
	UpsertMetadata(ctx context.Context, m *domain.MetadataRecord) error

	// UpsertEdition inserts or replaces an edition record.
	UpsertEdition(ctx context.Context, e *domain.EditionRecord) error

	// UpsertMasterEdition inserts or replaces a master edition record.
	UpsertMasterEdition(ctx context.Context, m *domain.MasterEditionRecord) error

	// GetMetadataByMint retrieves metadata by mint address. Returns ErrNotFound if not exists.
	GetMetadataByMint(ctx context.Context, mint string) (*domain.MetadataRecord, error)

	// ListMetadataByCreator retrieves metadata listing creator, ordered by address ASC.
	ListMetadataByCreator(ctx context.Context, creator string) ([]*domain.MetadataRecord, error)

	// GetEdition retrieves an edition by account address. Returns ErrNotFound if not exists.
	GetEdition(ctx context.Context, address string) (*domain.EditionRecord, error)

	// GetMasterEdition retrieves a master edition by account address. Returns ErrNotFound if not exists.
	GetMasterEdition(ctx context.Context, address string) (*domain.MasterEditionRecord, error)
}

// RunStore provides access to classification_runs storage.
type RunStore interface {
	// Insert adds a run summary. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.ClassificationRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.ClassificationRun, error)

	// ListRecent retrieves up to limit runs, most recent StartedAt first.
	ListRecent(ctx context.Context, limit int) ([]*domain.ClassificationRun, error)
}
