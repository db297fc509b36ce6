package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/evm"
	"swap-mirror/internal/storage"
)

// EVMService mirrors swap proposals from one EVM escrow contract into
// the proposal store. One service per chain.
type EVMService struct {
	proposals storage.ProposalStore
	rec       *recorder
	reader    evm.ContractReader
	chainID   domain.ChainID
	locks     *keyedMutex
	logger    *log.Logger
}

// NewEVMService creates an EVM sync service for one chain. The events
// store may be nil to disable auditing.
func NewEVMService(proposals storage.ProposalStore, events storage.SyncEventStore, reader evm.ContractReader, chainID domain.ChainID, logger *log.Logger) *EVMService {
	return &EVMService{
		proposals: proposals,
		rec:       &recorder{events: events, logger: logger},
		reader:    reader,
		chainID:   chainID,
		locks:     newKeyedMutex(),
		logger:    logger,
	}
}

// ChainID returns the chain this service mirrors.
func (s *EVMService) ChainID() domain.ChainID {
	return s.chainID
}

// SyncProposal re-reads one proposal from the contract and updates the
// mirror row. Returns ErrProposalNotOnChain for unknown ids.
func (s *EVMService) SyncProposal(ctx context.Context, proposalID string, trigger domain.SyncTrigger) (*domain.SwapProposal, error) {
	started := time.Now()

	state, err := s.reader.GetProposal(ctx, proposalID)
	if err != nil {
		s.rec.record(ctx, &domain.SyncEvent{
			ProposalID: proposalID,
			ChainID:    s.chainID,
			Trigger:    trigger,
			Outcome:    domain.SyncOutcomeFailed,
			Error:      err.Error(),
			DurationMs: time.Since(started).Milliseconds(),
		})
		return nil, fmt.Errorf("get proposal %s: %w", proposalID, err)
	}

	// The contract returns a zero tuple for ids it has never seen.
	if state.ID == "" {
		s.rec.record(ctx, &domain.SyncEvent{
			ProposalID: proposalID,
			ChainID:    s.chainID,
			Trigger:    trigger,
			Outcome:    domain.SyncOutcomeSkipped,
			DurationMs: time.Since(started).Milliseconds(),
		})
		return nil, ErrProposalNotOnChain
	}

	return syncOne(ctx, s.proposals, s.rec, s.locks, s.chainID, contractState(state), trigger, started)
}

// SyncByOwner finds every proposal the wallet ever created via the
// contract's event log and mirrors each one. Per-item failures do not
// abort the batch.
func (s *EVMService) SyncByOwner(ctx context.Context, ownerAddress string, trigger domain.SyncTrigger) (*Result, error) {
	ids, err := s.reader.FindProposalIDsByOwner(ctx, ownerAddress)
	if err != nil {
		return nil, fmt.Errorf("scan proposals for %s: %w", ownerAddress, err)
	}

	res := &Result{Items: []ItemResult{}}
	for _, id := range ids {
		p, err := s.SyncProposal(ctx, id, trigger)
		if err != nil {
			outcome := domain.SyncOutcomeFailed
			if errors.Is(err, ErrProposalNotOnChain) {
				outcome = domain.SyncOutcomeSkipped
			}
			res.add(ItemResult{ProposalID: id, Outcome: outcome, Error: err.Error()})
			continue
		}
		res.add(ItemResult{ProposalID: p.ID, Status: p.Status, Outcome: domain.SyncOutcomeSynced})
	}
	return res, nil
}

func contractState(st *evm.ProposalState) *chainState {
	return &chainState{
		ID:                    st.ID,
		OwnerAddress:          st.Owner,
		Status:                st.Status,
		FulfillBy:             st.FulfilledBy,
		FulfilledWithOptionID: st.FulfilledWithOptionID,
		ExpiredAt:             st.ExpiredAt,
	}
}
