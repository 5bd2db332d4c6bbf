package memory

import (
	"context"
	"sort"
	"sync"

	"solana-metadata-lab/internal/domain"
	"solana-metadata-lab/internal/storage"
)

// RecordStore is an in-memory implementation of storage.RecordStore.
type RecordStore struct {
	mu             sync.RWMutex
	metadata       map[string]*domain.MetadataRecord      // keyed by address
	byMint         map[string]string                      // mint -> address (unique)
	editions       map[string]*domain.EditionRecord       // keyed by address
	masterEditions map[string]*domain.MasterEditionRecord // keyed by address
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		metadata:       make(map[string]*domain.MetadataRecord),
		byMint:         make(map[string]string),
		editions:       make(map[string]*domain.EditionRecord),
		masterEditions: make(map[string]*domain.MasterEditionRecord),
	}
}

// UpsertMetadata inserts or replaces a metadata record. Older slots are ignored.
func (s *RecordStore) UpsertMetadata(_ context.Context, m *domain.MetadataRecord) error {
	if m == nil || m.Address == "" || m.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, exists := s.byMint[m.Mint]; exists && owner != m.Address {
		return storage.ErrDuplicateKey
	}

	if prev, exists := s.metadata[m.Address]; exists {
		if prev.Slot > m.Slot {
			return nil
		}
		if prev.Mint != m.Mint {
			delete(s.byMint, prev.Mint)
		}
	}

	s.metadata[m.Address] = copyMetadata(m)
	s.byMint[m.Mint] = m.Address
	return nil
}

// UpsertEdition inserts or replaces an edition record. Older slots are ignored.
func (s *RecordStore) UpsertEdition(_ context.Context, e *domain.EditionRecord) error {
	if e == nil || e.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, exists := s.editions[e.Address]; exists && prev.Slot > e.Slot {
		return nil
	}
	editionCopy := *e
	s.editions[e.Address] = &editionCopy
	return nil
}

// UpsertMasterEdition inserts or replaces a master edition record. Older slots are ignored.
func (s *RecordStore) UpsertMasterEdition(_ context.Context, m *domain.MasterEditionRecord) error {
	if m == nil || m.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, exists := s.masterEditions[m.Address]; exists && prev.Slot > m.Slot {
		return nil
	}
	s.masterEditions[m.Address] = copyMasterEdition(m)
	return nil
}

// GetMetadataByMint retrieves metadata by mint address. Returns ErrNotFound if not exists.
func (s *RecordStore) GetMetadataByMint(_ context.Context, mint string) (*domain.MetadataRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addr, exists := s.byMint[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyMetadata(s.metadata[addr]), nil
}

// ListMetadataByCreator retrieves metadata listing creator, ordered by address ASC.
func (s *RecordStore) ListMetadataByCreator(_ context.Context, creator string) ([]*domain.MetadataRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MetadataRecord
	for _, m := range s.metadata {
		for _, c := range m.Creators {
			if c.Address == creator {
				result = append(result, copyMetadata(m))
				break
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})
	return result, nil
}

// GetEdition retrieves an edition by address. Returns ErrNotFound if not exists.
func (s *RecordStore) GetEdition(_ context.Context, address string) (*domain.EditionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.editions[address]
	if !exists {
		return nil, storage.ErrNotFound
	}
	editionCopy := *e
	return &editionCopy, nil
}

// GetMasterEdition retrieves a master edition by address. Returns ErrNotFound if not exists.
func (s *RecordStore) GetMasterEdition(_ context.Context, address string) (*domain.MasterEditionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.masterEditions[address]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyMasterEdition(m), nil
}

func copyMetadata(m *domain.MetadataRecord) *domain.MetadataRecord {
	metaCopy := *m
	if m.Creators != nil {
		metaCopy.Creators = append([]domain.CreatorShare{}, m.Creators...)
	}
	if m.EditionAddress != nil {
		addr := *m.EditionAddress
		metaCopy.EditionAddress = &addr
	}
	return &metaCopy
}

func copyMasterEdition(m *domain.MasterEditionRecord) *domain.MasterEditionRecord {
	masterCopy := *m
	if m.MaxSupply != nil {
		v := *m.MaxSupply
		masterCopy.MaxSupply = &v
	}
	if m.PrintingMint != nil {
		v := *m.PrintingMint
		masterCopy.PrintingMint = &v
	}
	if m.OneTimeAuthMint != nil {
		v := *m.OneTimeAuthMint
		masterCopy.OneTimeAuthMint = &v
	}
	return &masterCopy
}

var _ storage.RecordStore = (*RecordStore)(nil)
