package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-metadata-lab/internal/domain"
	"solana-metadata-lab/internal/storage"
)

// RecordStore implements storage.RecordStore using PostgreSQL.
type RecordStore struct {
	pool *Pool
}

// NewRecordStore creates a new RecordStore.
func NewRecordStore(pool *Pool) *RecordStore {
	return &RecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RecordStore = (*RecordStore)(nil)

// UpsertMetadata inserts or replaces a metadata record and its creators.
// Rows with a newer slot are kept. Returns ErrDuplicateKey if the mint
// belongs to another address.
func (s *RecordStore) UpsertMetadata(ctx context.Context, m *domain.MetadataRecord) error {
	if m == nil || m.Address == "" || m.Mint == "" {
		return storage.ErrInvalidInput
	}

	return s.pool.inTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO metadata_accounts (
				address, mint, update_authority, name, symbol, uri,
				seller_fee_basis_points, primary_sale_happened, is_mutable,
				edition_address, has_creators, slot, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (address) DO UPDATE SET
				mint = EXCLUDED.mint,
				update_authority = EXCLUDED.update_authority,
				name = EXCLUDED.name,
				symbol = EXCLUDED.symbol,
				uri = EXCLUDED.uri,
				seller_fee_basis_points = EXCLUDED.seller_fee_basis_points,
				primary_sale_happened = EXCLUDED.primary_sale_happened,
				is_mutable = EXCLUDED.is_mutable,
				edition_address = COALESCE(EXCLUDED.edition_address, metadata_accounts.edition_address),
				has_creators = EXCLUDED.has_creators,
				slot = EXCLUDED.slot,
				updated_at = EXCLUDED.updated_at
			WHERE metadata_accounts.slot <= EXCLUDED.slot
		`

		tag, err := tx.Exec(ctx, query,
			m.Address,
			m.Mint,
			m.UpdateAuthority,
			pgText(m.Name),
			pgText(m.Symbol),
			pgText(m.URI),
			int32(m.SellerFeeBasisPoints),
			m.PrimarySaleHappened,
			m.IsMutable,
			m.EditionAddress,
			m.Creators != nil,
			m.Slot,
			m.UpdatedAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("upsert metadata: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// stored row is newer
			return nil
		}

		if _, err := tx.Exec(ctx, `DELETE FROM metadata_creators WHERE metadata_address = $1`, m.Address); err != nil {
			return fmt.Errorf("clear creators: %w", err)
		}
		for i, c := range m.Creators {
			_, err := tx.Exec(ctx, `
				INSERT INTO metadata_creators (metadata_address, position, creator, verified, share)
				VALUES ($1, $2, $3, $4, $5)
			`, m.Address, int16(i), c.Address, c.Verified, int16(c.Share))
			if err != nil {
				return fmt.Errorf("insert creator %d: %w", i, err)
			}
		}
		return nil
	})
}

// UpsertEdition inserts or replaces an edition record. Rows with a newer slot are kept.
func (s *RecordStore) UpsertEdition(ctx context.Context, e *domain.EditionRecord) error {
	if e == nil || e.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO editions (address, parent, edition, slot, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address) DO UPDATE SET
			parent = EXCLUDED.parent,
			edition = EXCLUDED.edition,
			slot = EXCLUDED.slot,
			updated_at = EXCLUDED.updated_at
		WHERE editions.slot <= EXCLUDED.slot
	`

	_, err := s.pool.Exec(ctx, query,
		e.Address,
		e.Parent,
		int64(e.Edition),
		e.Slot,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert edition: %w", err)
	}
	return nil
}

// UpsertMasterEdition inserts or replaces a master edition record. Rows with a newer slot are kept.
func (s *RecordStore) UpsertMasterEdition(ctx context.Context, m *domain.MasterEditionRecord) error {
	if m == nil || m.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO master_editions (
			address, version, supply, max_supply, printing_mint, one_time_auth_mint, slot, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (address) DO UPDATE SET
			version = EXCLUDED.version,
			supply = EXCLUDED.supply,
			max_supply = EXCLUDED.max_supply,
			printing_mint = EXCLUDED.printing_mint,
			one_time_auth_mint = EXCLUDED.one_time_auth_mint,
			slot = EXCLUDED.slot,
			updated_at = EXCLUDED.updated_at
		WHERE master_editions.slot <= EXCLUDED.slot
	`

	var maxSupply *int64
	if m.MaxSupply != nil {
		v := int64(*m.MaxSupply)
		maxSupply = &v
	}

	_, err := s.pool.Exec(ctx, query,
		m.Address,
		int16(m.Version),
		int64(m.Supply),
		maxSupply,
		m.PrintingMint,
		m.OneTimeAuthMint,
		m.Slot,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert master edition: %w", err)
	}
	return nil
}

const metadataColumns = `
	address, mint, update_authority, name, symbol, uri,
	seller_fee_basis_points, primary_sale_happened, is_mutable,
	edition_address, has_creators, slot, updated_at
`

// GetMetadataByMint retrieves metadata by mint address. Returns ErrNotFound if not exists.
func (s *RecordStore) GetMetadataByMint(ctx context.Context, mint string) (*domain.MetadataRecord, error) {
	query := `SELECT ` + metadataColumns + ` FROM metadata_accounts WHERE mint = $1`

	m, hasCreators, err := scanMetadata(s.pool.QueryRow(ctx, query, mint))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get metadata by mint: %w", err)
	}

	if hasCreators {
		creators, err := s.loadCreators(ctx, []string{m.Address})
		if err != nil {
			return nil, err
		}
		m.Creators = creators[m.Address]
		if m.Creators == nil {
			m.Creators = []domain.CreatorShare{}
		}
	}
	return m, nil
}

// ListMetadataByCreator retrieves metadata listing creator, ordered by address ASC.
func (s *RecordStore) ListMetadataByCreator(ctx context.Context, creator string) ([]*domain.MetadataRecord, error) {
	query := `
		SELECT ` + metadataColumns + `
		FROM metadata_accounts m
		WHERE EXISTS (
			SELECT 1 FROM metadata_creators c
			WHERE c.metadata_address = m.address AND c.creator = $1
		)
		ORDER BY address ASC
	`

	rows, err := s.pool.Query(ctx, query, creator)
	if err != nil {
		return nil, fmt.Errorf("query metadata by creator: %w", err)
	}
	defer rows.Close()

	var result []*domain.MetadataRecord
	var addresses []string
	for rows.Next() {
		m, _, err := scanMetadata(rows)
		if err != nil {
			return nil, fmt.Errorf("scan metadata row: %w", err)
		}
		result = append(result, m)
		addresses = append(addresses, m.Address)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metadata rows: %w", err)
	}
	if len(result) == 0 {
		return nil, nil
	}

	creators, err := s.loadCreators(ctx, addresses)
	if err != nil {
		return nil, err
	}
	for _, m := range result {
		m.Creators = creators[m.Address]
	}
	return result, nil
}

// loadCreators returns the ordered creator lists of the given metadata addresses.
func (s *RecordStore) loadCreators(ctx context.Context, addresses []string) (map[string][]domain.CreatorShare, error) {
	query := `
		SELECT metadata_address, creator, verified, share
		FROM metadata_creators
		WHERE metadata_address = ANY($1)
		ORDER BY metadata_address ASC, position ASC
	`

	rows, err := s.pool.Query(ctx, query, addresses)
	if err != nil {
		return nil, fmt.Errorf("query creators: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]domain.CreatorShare, len(addresses))
	for rows.Next() {
		var (
			address string
			c       domain.CreatorShare
			share   int16
		)
		if err := rows.Scan(&address, &c.Address, &c.Verified, &share); err != nil {
			return nil, fmt.Errorf("scan creator row: %w", err)
		}
		c.Share = uint8(share)
		result[address] = append(result[address], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate creator rows: %w", err)
	}
	return result, nil
}

// GetEdition retrieves an edition by address. Returns ErrNotFound if not exists.
func (s *RecordStore) GetEdition(ctx context.Context, address string) (*domain.EditionRecord, error) {
	query := `
		SELECT address, parent, edition, slot, updated_at
		FROM editions
		WHERE address = $1
	`

	var (
		e       domain.EditionRecord
		edition int64
	)
	err := s.pool.QueryRow(ctx, query, address).Scan(&e.Address, &e.Parent, &edition, &e.Slot, &e.UpdatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get edition: %w", err)
	}
	e.Edition = uint64(edition)
	return &e, nil
}

// GetMasterEdition retrieves a master edition by address. Returns ErrNotFound if not exists.
func (s *RecordStore) GetMasterEdition(ctx context.Context, address string) (*domain.MasterEditionRecord, error) {
	query := `
		SELECT address, version, supply, max_supply, printing_mint, one_time_auth_mint, slot, updated_at
		FROM master_editions
		WHERE address = $1
	`

	var (
		m         domain.MasterEditionRecord
		version   int16
		supply    int64
		maxSupply *int64
	)
	err := s.pool.QueryRow(ctx, query, address).Scan(
		&m.Address,
		&version,
		&supply,
		&maxSupply,
		&m.PrintingMint,
		&m.OneTimeAuthMint,
		&m.Slot,
		&m.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get master edition: %w", err)
	}

	m.Version = uint8(version)
	m.Supply = uint64(supply)
	if maxSupply != nil {
		v := uint64(*maxSupply)
		m.MaxSupply = &v
	}
	return &m, nil
}

// scanMetadata scans a single row into MetadataRecord. Creators are loaded separately.
func scanMetadata(row pgx.Row) (*domain.MetadataRecord, bool, error) {
	var (
		m           domain.MetadataRecord
		fee         int32
		hasCreators bool
	)

	err := row.Scan(
		&m.Address,
		&m.Mint,
		&m.UpdateAuthority,
		&m.Name,
		&m.Symbol,
		&m.URI,
		&fee,
		&m.PrimarySaleHappened,
		&m.IsMutable,
		&m.EditionAddress,
		&hasCreators,
		&m.Slot,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, false, err
	}

	m.SellerFeeBasisPoints = uint16(fee)
	return &m, hasCreators, nil
}
