package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/storage"
)

// ProposalStore is an in-memory implementation of storage.ProposalStore.
type ProposalStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SwapProposal
}

// NewProposalStore creates a new in-memory proposal store.
func NewProposalStore() *ProposalStore {
	return &ProposalStore{
		data: make(map[string]*domain.SwapProposal),
	}
}

// Compile-time interface check.
var _ storage.ProposalStore = (*ProposalStore)(nil)

// Upsert inserts the proposal or replaces the existing row with the same id.
func (s *ProposalStore) Upsert(_ context.Context, p *domain.SwapProposal) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}
	if !p.Status.Valid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy
	cp := copyProposal(p)
	if existing, ok := s.data[p.ID]; ok {
		cp.CreatedAt = existing.CreatedAt
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = time.Now()
	s.data[p.ID] = cp

	return nil
}

// GetByID retrieves a proposal by id. Returns ErrNotFound if not exists.
func (s *ProposalStore) GetByID(_ context.Context, id string) (*domain.SwapProposal, error) {
	if id == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyProposal(p), nil
}

// Find retrieves proposals matching the filter, newest first.
func (s *ProposalStore) Find(_ context.Context, f storage.ProposalFilter) ([]*domain.SwapProposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var matched []*domain.SwapProposal
	for _, p := range s.data {
		if !matchesFilter(p, f, now) {
			continue
		}
		matched = append(matched, copyProposal(p))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}

	return matched, nil
}

func matchesFilter(p *domain.SwapProposal, f storage.ProposalFilter, now time.Time) bool {
	if f.ChainID != "" && p.ChainID != f.ChainID {
		return false
	}

	if len(f.OwnerAddresses) > 0 {
		found := false
		for _, addr := range f.OwnerAddresses {
			if p.OwnerAddress == addr {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(f.Statuses) > 0 {
		effective := p.EffectiveStatus(now)
		found := false
		for _, st := range f.Statuses {
			if effective == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.ID), needle) &&
			!strings.Contains(strings.ToLower(p.OwnerAddress), needle) &&
			!strings.Contains(strings.ToLower(p.Note), needle) {
			return false
		}
	}

	return true
}

func copyProposal(p *domain.SwapProposal) *domain.SwapProposal {
	cp := *p
	cp.SwapItems = append([]domain.SwapItem(nil), p.SwapItems...)
	cp.ReceiveItems = make([]domain.SwapOption, len(p.ReceiveItems))
	for i, opt := range p.ReceiveItems {
		cp.ReceiveItems[i] = domain.SwapOption{
			ID:    opt.ID,
			Items: append([]domain.SwapItem(nil), opt.Items...),
		}
	}
	return &cp
}
