package memory

import (
	"context"
	"sort"
	"sync"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/storage"
)

// SyncEventStore is an in-memory implementation of storage.SyncEventStore.
type SyncEventStore struct {
	mu   sync.RWMutex
	data []*domain.SyncEvent
}

// NewSyncEventStore creates a new in-memory sync event store.
func NewSyncEventStore() *SyncEventStore {
	return &SyncEventStore{
		data: make([]*domain.SyncEvent, 0),
	}
}

// Compile-time interface check.
var _ storage.SyncEventStore = (*SyncEventStore)(nil)

// Insert appends one audit event.
func (s *SyncEventStore) Insert(_ context.Context, e *domain.SyncEvent) error {
	if e == nil || e.ProposalID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	s.data = append(s.data, &cp)

	return nil
}

// GetByProposalID retrieves audit events for a proposal, oldest first.
func (s *SyncEventStore) GetByProposalID(_ context.Context, proposalID string) ([]*domain.SyncEvent, error) {
	if proposalID == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.SyncEvent
	for _, e := range s.data {
		if e.ProposalID == proposalID {
			cp := *e
			out = append(out, &cp)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})

	return out, nil
}
