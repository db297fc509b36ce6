package storage

import (
	"context"

	"swap-mirror/internal/domain"
)

// ProposalFilter narrows a proposal listing.
type ProposalFilter struct {
	OwnerAddresses []string
	Statuses       []domain.ProposalStatus
	ChainID        domain.ChainID // empty means all chains
	Search         string         // matched against id, owner address and note
	Limit          int            // 0 means no limit
	Offset         int
}

// ProposalStore provides access to the swap_proposals mirror.
// A single-row upsert is the only consistency primitive; no cross-row
// transactions are required.
type ProposalStore interface {
	// Upsert inserts the proposal or replaces the existing row with the
	// same id. Idempotent for identical input.
	Upsert(ctx context.Context, p *domain.SwapProposal) error

	// GetByID retrieves a proposal by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.SwapProposal, error)

	// Find retrieves proposals matching the filter, newest first.
	Find(ctx context.Context, f ProposalFilter) ([]*domain.SwapProposal, error)
}

// MetadataStore provides access to the token_metadata cache.
type MetadataStore interface {
	// Upsert inserts or replaces the cache row keyed by mint address.
	Upsert(ctx context.Context, rec *domain.MetadataRecord) error

	// GetByMintAddress retrieves a cache row. Returns ErrNotFound if not exists.
	GetByMintAddress(ctx context.Context, mintAddress string) (*domain.MetadataRecord, error)
}

// SyncEventStore provides access to the append-only sync audit log.
type SyncEventStore interface {
	// Insert appends one audit event.
	Insert(ctx context.Context, e *domain.SyncEvent) error

	// GetByProposalID retrieves audit events for a proposal, oldest first.
	GetByProposalID(ctx context.Context, proposalID string) ([]*domain.SyncEvent, error)
}
