package clickhouse

import (
	"context"
	"fmt"

	"solana-metadata-lab/internal/domain"
	"solana-metadata-lab/internal/storage"
)

// RunStore implements storage.RunStore using ClickHouse.
type RunStore struct {
	conn *Conn
}

// NewRunStore creates a new RunStore.
func NewRunStore(conn *Conn) *RunStore {
	return &RunStore{conn: conn}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

const runColumns = `
	run_id, program_id, mode, started_at, finished_at,
	accounts_total, classified, owner_mismatch, empty, unknown_key,
	unbucketed, decode_errors, rejected_uri,
	metadata, editions, master_editions
`

// Insert adds a run summary. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.ClassificationRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	// ReplacingMergeTree would silently replace; runs are append-only.
	exists, err := s.exists(ctx, r.RunID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `INSERT INTO classification_runs (` + runColumns + `) VALUES (
		?, ?, ?, ?, ?,
		?, ?, ?, ?, ?,
		?, ?, ?,
		?, ?, ?
	)`

	err = s.conn.Exec(ctx, query,
		r.RunID, r.ProgramID, string(r.Mode), r.StartedAt, r.FinishedAt,
		uint32(r.AccountsTotal), uint32(r.Classified), uint32(r.OwnerMismatch), uint32(r.Empty), uint32(r.UnknownKey),
		uint32(r.Unbucketed), uint32(r.DecodeErrors), uint32(r.RejectedURI),
		uint32(r.Metadata), uint32(r.Editions), uint32(r.MasterEditions),
	)
	if err != nil {
		return fmt.Errorf("insert classification run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.ClassificationRun, error) {
	query := `SELECT ` + runColumns + ` FROM classification_runs FINAL WHERE run_id = ? LIMIT 1`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query run by id: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, storage.ErrNotFound
	}
	return runs[0], nil
}

// ListRecent retrieves up to limit runs, most recent StartedAt first.
func (s *RunStore) ListRecent(ctx context.Context, limit int) ([]*domain.ClassificationRun, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT ` + runColumns + `
		FROM classification_runs FINAL
		ORDER BY started_at DESC, run_id ASC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// exists checks if a run with the given ID exists.
func (s *RunStore) exists(ctx context.Context, runID string) (bool, error) {
	query := `SELECT count(*) FROM classification_runs FINAL WHERE run_id = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, runID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanRuns scans multiple rows into a slice.
func scanRuns(rows chRows) ([]*domain.ClassificationRun, error) {
	var runs []*domain.ClassificationRun

	for rows.Next() {
		var (
			r      domain.ClassificationRun
			mode   string
			counts [11]uint32
		)
		err := rows.Scan(
			&r.RunID, &r.ProgramID, &mode, &r.StartedAt, &r.FinishedAt,
			&counts[0], &counts[1], &counts[2], &counts[3], &counts[4],
			&counts[5], &counts[6], &counts[7],
			&counts[8], &counts[9], &counts[10],
		)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}

		r.Mode = domain.RunMode(mode)
		r.AccountsTotal = int(counts[0])
		r.Classified = int(counts[1])
		r.OwnerMismatch = int(counts[2])
		r.Empty = int(counts[3])
		r.UnknownKey = int(counts[4])
		r.Unbucketed = int(counts[5])
		r.DecodeErrors = int(counts[6])
		r.RejectedURI = int(counts[7])
		r.Metadata = int(counts[8])
		r.Editions = int(counts[9])
		r.MasterEditions = int(counts[10])
		runs = append(runs, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	return runs, nil
}
