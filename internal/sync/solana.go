package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/solana"
	"swap-mirror/internal/storage"
)

// SolanaService mirrors swap proposals from the Solana program into the
// proposal store.
type SolanaService struct {
	proposals storage.ProposalStore
	rec       *recorder
	rpc       solana.RPCClient
	program   string
	locks     *keyedMutex
	logger    *log.Logger
}

// NewSolanaService creates a Solana sync service for the given swap
// program address. The events store may be nil to disable auditing.
func NewSolanaService(proposals storage.ProposalStore, events storage.SyncEventStore, rpc solana.RPCClient, program string, logger *log.Logger) *SolanaService {
	return &SolanaService{
		proposals: proposals,
		rec:       &recorder{events: events, logger: logger},
		rpc:       rpc,
		program:   program,
		locks:     newKeyedMutex(),
		logger:    logger,
	}
}

// SyncProposal re-reads one proposal account and updates the mirror row.
// Returns ErrProposalNotOnChain when the derived account does not exist.
func (s *SolanaService) SyncProposal(ctx context.Context, proposalID string, trigger domain.SyncTrigger) (*domain.SwapProposal, error) {
	started := time.Now()

	addr, err := solana.FindProposalAddress(s.program, proposalID)
	if err != nil {
		return nil, fmt.Errorf("derive proposal address: %w", err)
	}

	info, err := s.rpc.GetAccountInfo(ctx, addr)
	if err != nil {
		s.recordFailure(ctx, proposalID, trigger, started, err)
		return nil, fmt.Errorf("get proposal account %s: %w", addr, err)
	}
	if info == nil {
		s.rec.record(ctx, &domain.SyncEvent{
			ProposalID: proposalID,
			ChainID:    domain.ChainSolana,
			Trigger:    trigger,
			Outcome:    domain.SyncOutcomeSkipped,
			DurationMs: time.Since(started).Milliseconds(),
		})
		return nil, ErrProposalNotOnChain
	}

	acct, err := solana.DecodeProposalAccount(info.Data)
	if err != nil {
		s.recordFailure(ctx, proposalID, trigger, started, err)
		return nil, fmt.Errorf("decode proposal account %s: %w", addr, err)
	}

	return syncOne(ctx, s.proposals, s.rec, s.locks, domain.ChainSolana, accountState(acct), trigger, started)
}

// SyncByOwner scans the program for proposal accounts owned by the
// wallet and mirrors each one. Per-item failures do not abort the batch.
func (s *SolanaService) SyncByOwner(ctx context.Context, ownerAddress string, trigger domain.SyncTrigger) (*Result, error) {
	if !solana.IsOnCurve(ownerAddress) {
		return nil, fmt.Errorf("invalid owner address %q", ownerAddress)
	}

	accounts, err := s.rpc.GetProgramAccounts(ctx, s.program, []solana.AccountFilter{
		{MemcmpOffset: solana.OwnerMemcmpOffset, MemcmpBytes: ownerAddress},
	})
	if err != nil {
		return nil, fmt.Errorf("scan proposals for %s: %w", ownerAddress, err)
	}

	res := &Result{Items: []ItemResult{}}
	for _, pa := range accounts {
		started := time.Now()

		acct, err := solana.DecodeProposalAccount(pa.Account.Data)
		if err != nil {
			// Foreign account types matching the owner filter are
			// not an error for the batch.
			s.logger.Printf("skip account %s: %v", pa.Pubkey, err)
			res.add(ItemResult{ProposalID: pa.Pubkey, Outcome: domain.SyncOutcomeSkipped, Error: err.Error()})
			continue
		}

		p, err := syncOne(ctx, s.proposals, s.rec, s.locks, domain.ChainSolana, accountState(acct), trigger, started)
		if err != nil {
			res.add(ItemResult{ProposalID: acct.ID, Outcome: domain.SyncOutcomeFailed, Error: err.Error()})
			continue
		}
		res.add(ItemResult{ProposalID: p.ID, Status: p.Status, Outcome: domain.SyncOutcomeSynced})
	}
	return res, nil
}

func (s *SolanaService) recordFailure(ctx context.Context, proposalID string, trigger domain.SyncTrigger, started time.Time, cause error) {
	s.rec.record(ctx, &domain.SyncEvent{
		ProposalID: proposalID,
		ChainID:    domain.ChainSolana,
		Trigger:    trigger,
		Outcome:    domain.SyncOutcomeFailed,
		Error:      cause.Error(),
		DurationMs: time.Since(started).Milliseconds(),
	})
}

// ApplyAccount mirrors an already-decoded proposal account, used by the
// websocket watcher which receives account data in the notification.
func (s *SolanaService) ApplyAccount(ctx context.Context, acct *solana.ProposalAccount, trigger domain.SyncTrigger) (*domain.SwapProposal, error) {
	return syncOne(ctx, s.proposals, s.rec, s.locks, domain.ChainSolana, accountState(acct), trigger, time.Now())
}

func accountState(acct *solana.ProposalAccount) *chainState {
	return &chainState{
		ID:                    acct.ID,
		OwnerAddress:          acct.Owner,
		Status:                acct.Status,
		FulfillBy:             acct.FulfilledBy,
		FulfilledWithOptionID: acct.FulfilledWithOptionID,
		ExpiredAt:             acct.ExpiredAt,
	}
}
