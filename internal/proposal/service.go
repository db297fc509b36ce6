package proposal

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/idhash"
	"swap-mirror/internal/registry"
	"swap-mirror/internal/storage"
)

// CreateParams are the caller-supplied fields of a new proposal. Items
// and fulfillment state arrive later from chain sync.
type CreateParams struct {
	OwnerID      string
	OwnerAddress string
	ChainID      domain.ChainID
	ExpiredAt    time.Time
	Note         string
	SwapItems    []domain.SwapItem
	ReceiveItems []domain.SwapOption
}

// Additions are the off-chain fields a proposal owner may edit after
// creation. Nil fields are left untouched.
type Additions struct {
	Note      *string
	ExpiredAt *time.Time
}

// Service owns the off-chain lifecycle of swap proposals: creation,
// listing and off-chain edits. Chain-derived fields are written only by
// the sync services.
type Service struct {
	proposals storage.ProposalStore
	registry  *registry.Registry
	now       func() time.Time
}

// NewService creates a proposal service.
func NewService(proposals storage.ProposalStore, reg *registry.Registry) *Service {
	return &Service{
		proposals: proposals,
		registry:  reg,
		now:       time.Now,
	}
}

// Create registers a new proposal mirror row in DEPOSITED state with a
// generated id. The on-chain escrow is created separately by the owner's
// wallet; sync reconciles the two.
func (s *Service) Create(ctx context.Context, params CreateParams) (*domain.SwapProposal, error) {
	if params.OwnerAddress == "" {
		return nil, fmt.Errorf("owner address is required")
	}

	chain, ok := s.registry.ChainConfig(params.ChainID)
	if !ok {
		return nil, fmt.Errorf("unsupported chain %q", params.ChainID)
	}

	now := s.now().UTC()
	if !params.ExpiredAt.After(now) {
		return nil, fmt.Errorf("expiredAt must be in the future")
	}
	if len(params.SwapItems) > chain.MaxAllowedItems {
		return nil, fmt.Errorf("too many offered items: %d, max %d", len(params.SwapItems), chain.MaxAllowedItems)
	}
	if len(params.ReceiveItems) > chain.MaxAllowedOptions {
		return nil, fmt.Errorf("too many options: %d, max %d", len(params.ReceiveItems), chain.MaxAllowedOptions)
	}

	id := idhash.ComputeProposalID(params.ChainID, params.OwnerAddress, now.UnixNano(), randomNonce())

	p := &domain.SwapProposal{
		ID:           id,
		OwnerID:      params.OwnerID,
		OwnerAddress: params.OwnerAddress,
		ChainID:      params.ChainID,
		Status:       domain.ProposalStatusDeposited,
		SwapItems:    normalizeItems(id, params.SwapItems),
		ReceiveItems: normalizeOptions(id, params.ReceiveItems),
		ExpiredAt:    params.ExpiredAt.UTC(),
		Note:         params.Note,
	}
	if p.OwnerID == "" {
		p.OwnerID = p.OwnerAddress
	}

	if err := s.proposals.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}
	return s.proposals.GetByID(ctx, id)
}

// FindByID retrieves one proposal with its derived status.
func (s *Service) FindByID(ctx context.Context, id string) (*domain.SwapProposal, error) {
	p, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Status = p.EffectiveStatus(s.now())
	return p, nil
}

// Find lists proposals matching the filter, newest first, with derived
// statuses applied.
func (s *Service) Find(ctx context.Context, f storage.ProposalFilter) ([]*domain.SwapProposal, error) {
	items, err := s.proposals.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, p := range items {
		p.Status = p.EffectiveStatus(now)
	}
	return items, nil
}

// UpdateAdditions edits the off-chain fields of an open proposal.
// Proposals in a terminal state are frozen.
func (s *Service) UpdateAdditions(ctx context.Context, id string, add Additions) (*domain.SwapProposal, error) {
	p, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status.Terminal() {
		return nil, fmt.Errorf("proposal %s is %s and can no longer be edited", id, p.Status)
	}

	if add.Note != nil {
		p.Note = *add.Note
	}
	if add.ExpiredAt != nil {
		if !add.ExpiredAt.After(s.now()) {
			return nil, fmt.Errorf("expiredAt must be in the future")
		}
		p.ExpiredAt = add.ExpiredAt.UTC()
	}

	if err := s.proposals.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("update proposal %s: %w", id, err)
	}
	return s.proposals.GetByID(ctx, id)
}

// normalizeItems assigns deterministic ids to items missing one.
func normalizeItems(proposalID string, items []domain.SwapItem) []domain.SwapItem {
	out := make([]domain.SwapItem, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = idhash.ComputeItemID(proposalID, item.MintAddress, i)
		}
		out[i] = item
	}
	return out
}

func normalizeOptions(proposalID string, options []domain.SwapOption) []domain.SwapOption {
	out := make([]domain.SwapOption, len(options))
	for i, opt := range options {
		if opt.ID == "" {
			opt.ID = idhash.ComputeItemID(proposalID, "option", i)
		}
		opt.Items = normalizeItems(opt.ID, opt.Items)
		out[i] = opt
	}
	return out
}

func randomNonce() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}
