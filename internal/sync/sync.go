package sync

import (
	"context"
	"errors"
	"log"
	"time"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/observability"
	"swap-mirror/internal/storage"
)

// ErrProposalNotOnChain means the chain has no account or record for the
// requested proposal id.
var ErrProposalNotOnChain = errors.New("proposal not found on chain")

// chainState is the chain-derived subset of a proposal, produced by the
// per-chain readers and applied uniformly.
type chainState struct {
	ID                    string
	OwnerAddress          string
	Status                domain.ProposalStatus
	FulfillBy             string
	FulfilledWithOptionID string
	ExpiredAt             int64 // unix seconds
}

// apply merges chain truth into the mirror row. Off-chain fields, the
// note and the item listings, are owned by the API and survive the sync.
func (st *chainState) apply(existing *domain.SwapProposal, chainID domain.ChainID) *domain.SwapProposal {
	p := &domain.SwapProposal{
		ID:           st.ID,
		ChainID:      chainID,
		OwnerAddress: st.OwnerAddress,
		OwnerID:      st.OwnerAddress,
		SwapItems:    []domain.SwapItem{},
		ReceiveItems: []domain.SwapOption{},
	}
	if existing != nil {
		*p = *existing
	}

	p.OwnerAddress = st.OwnerAddress
	p.Status = st.Status
	p.FulfillBy = st.FulfillBy
	p.FulfilledWithOptionID = st.FulfilledWithOptionID
	p.ExpiredAt = time.Unix(st.ExpiredAt, 0).UTC()
	return p
}

// recorder appends audit events, logging instead of failing when the
// audit store is down. A sync result never depends on the audit path.
type recorder struct {
	events storage.SyncEventStore
	logger *log.Logger
}

func (r *recorder) record(ctx context.Context, e *domain.SyncEvent) {
	observability.RecordProposalSynced(string(e.ChainID), string(e.Trigger), string(e.Outcome), float64(e.DurationMs)/1000)
	if e.Outcome == domain.SyncOutcomeFailed {
		observability.RecordSyncError(string(e.ChainID))
	} else if e.Outcome == domain.SyncOutcomeSynced {
		observability.DefaultMetrics.LastSuccessfulSync.SetToCurrentTime()
	}

	if r.events == nil {
		return
	}
	e.TimestampMs = time.Now().UnixMilli()
	if err := r.events.Insert(ctx, e); err != nil {
		r.logger.Printf("record sync event for %s: %v", e.ProposalID, err)
	}
}

// previousStatus reads the mirror status before a sync, empty when the
// row does not exist yet.
func previousStatus(existing *domain.SwapProposal) domain.ProposalStatus {
	if existing == nil {
		return ""
	}
	return existing.Status
}

// syncOne persists one chain state under the proposal's lock and emits
// the audit event. Shared by both chain services.
func syncOne(
	ctx context.Context,
	proposals storage.ProposalStore,
	rec *recorder,
	locks *keyedMutex,
	chainID domain.ChainID,
	st *chainState,
	trigger domain.SyncTrigger,
	started time.Time,
) (*domain.SwapProposal, error) {
	unlock := locks.Lock(st.ID)
	defer unlock()

	existing, err := proposals.GetByID(ctx, st.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	p := st.apply(existing, chainID)
	if err := proposals.Upsert(ctx, p); err != nil {
		rec.record(ctx, &domain.SyncEvent{
			ProposalID:     st.ID,
			ChainID:        chainID,
			Trigger:        trigger,
			PreviousStatus: previousStatus(existing),
			Outcome:        domain.SyncOutcomeFailed,
			Error:          err.Error(),
			DurationMs:     time.Since(started).Milliseconds(),
		})
		return nil, err
	}

	rec.record(ctx, &domain.SyncEvent{
		ProposalID:     st.ID,
		ChainID:        chainID,
		Trigger:        trigger,
		PreviousStatus: previousStatus(existing),
		NewStatus:      p.Status,
		Outcome:        domain.SyncOutcomeSynced,
		DurationMs:     time.Since(started).Milliseconds(),
	})
	return p, nil
}
