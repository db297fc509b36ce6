package memory

import (
	"context"
	"sync"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/storage"
)

// MetadataStore is an in-memory implementation of storage.MetadataStore.
type MetadataStore struct {
	mu   sync.RWMutex
	data map[string]*domain.MetadataRecord
}

// NewMetadataStore creates a new in-memory metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{
		data: make(map[string]*domain.MetadataRecord),
	}
}

// Compile-time interface check.
var _ storage.MetadataStore = (*MetadataStore)(nil)

// Upsert inserts or replaces the cache row keyed by mint address.
func (s *MetadataStore) Upsert(_ context.Context, rec *domain.MetadataRecord) error {
	if rec == nil || rec.MintAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := copyMetadataRecord(rec)
	if existing, ok := s.data[rec.MintAddress]; ok {
		cp.CreatedAt = existing.CreatedAt
	}
	s.data[rec.MintAddress] = cp

	return nil
}

// GetByMintAddress retrieves a cache row. Returns ErrNotFound if not exists.
func (s *MetadataStore) GetByMintAddress(_ context.Context, mintAddress string) (*domain.MetadataRecord, error) {
	if mintAddress == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[mintAddress]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyMetadataRecord(rec), nil
}

func copyMetadataRecord(rec *domain.MetadataRecord) *domain.MetadataRecord {
	cp := *rec
	cp.Metadata = append([]byte(nil), rec.Metadata...)
	return &cp
}
