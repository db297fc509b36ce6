package sync

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/evm"
	"swap-mirror/internal/storage/memory"
)

type fakeReader struct {
	proposals map[string]*evm.ProposalState
	byOwner   []string
	err       error
	closed    bool
}

func (f *fakeReader) GetProposal(_ context.Context, id string) (*evm.ProposalState, error) {
	if f.err != nil {
		return nil, f.err
	}
	if st, ok := f.proposals[id]; ok {
		return st, nil
	}
	// Contracts return a zero tuple, not an error, for unknown ids.
	return &evm.ProposalState{}, nil
}

func (f *fakeReader) FindProposalIDsByOwner(_ context.Context, _ string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byOwner, nil
}

func (f *fakeReader) Close() {
	f.closed = true
}

func newEVMService(reader evm.ContractReader) (*EVMService, *memory.ProposalStore, *memory.SyncEventStore) {
	proposals := memory.NewProposalStore()
	events := memory.NewSyncEventStore()
	svc := NewEVMService(proposals, events, reader, domain.ChainSei, log.New(io.Discard, "", 0))
	return svc, proposals, events
}

func TestEVMSyncProposal(t *testing.T) {
	reader := &fakeReader{proposals: map[string]*evm.ProposalState{
		"SEI-1": {
			ID:        "SEI-1",
			Owner:     "0x1111111111111111111111111111111111111111",
			Status:    domain.ProposalStatusDeposited,
			ExpiredAt: time.Now().Add(time.Hour).Unix(),
		},
	}}
	svc, proposals, events := newEVMService(reader)

	p, err := svc.SyncProposal(context.Background(), "SEI-1", domain.SyncTriggerManual)
	if err != nil {
		t.Fatalf("SyncProposal: %v", err)
	}
	if p.ChainID != domain.ChainSei || p.Status != domain.ProposalStatusDeposited {
		t.Errorf("mirror row: %+v", p)
	}

	if _, err := proposals.GetByID(context.Background(), "SEI-1"); err != nil {
		t.Errorf("row not stored: %v", err)
	}
	evs, _ := events.GetByProposalID(context.Background(), "SEI-1")
	if len(evs) != 1 || evs[0].Outcome != domain.SyncOutcomeSynced {
		t.Errorf("audit events = %+v", evs)
	}
	if evs[0].ChainID != domain.ChainSei {
		t.Errorf("audit chain = %q", evs[0].ChainID)
	}
}

func TestEVMSyncUnknownProposal(t *testing.T) {
	svc, _, events := newEVMService(&fakeReader{})

	_, err := svc.SyncProposal(context.Background(), "ghost", domain.SyncTriggerManual)
	if !errors.Is(err, ErrProposalNotOnChain) {
		t.Fatalf("err = %v", err)
	}
	evs, _ := events.GetByProposalID(context.Background(), "ghost")
	if len(evs) != 1 || evs[0].Outcome != domain.SyncOutcomeSkipped {
		t.Errorf("audit events = %+v", evs)
	}
}

func TestEVMSyncReaderFailureAudited(t *testing.T) {
	svc, _, events := newEVMService(&fakeReader{err: errors.New("rpc down")})

	if _, err := svc.SyncProposal(context.Background(), "SEI-1", domain.SyncTriggerBatch); err == nil {
		t.Fatal("expected error")
	}
	evs, _ := events.GetByProposalID(context.Background(), "SEI-1")
	if len(evs) != 1 || evs[0].Outcome != domain.SyncOutcomeFailed {
		t.Errorf("audit events = %+v", evs)
	}
}

func TestEVMSyncByOwner(t *testing.T) {
	owner := "0x1111111111111111111111111111111111111111"
	reader := &fakeReader{
		byOwner: []string{"SEI-1", "SEI-2", "SEI-gone"},
		proposals: map[string]*evm.ProposalState{
			"SEI-1": {ID: "SEI-1", Owner: owner, Status: domain.ProposalStatusDeposited, ExpiredAt: time.Now().Add(time.Hour).Unix()},
			"SEI-2": {ID: "SEI-2", Owner: owner, Status: domain.ProposalStatusCanceled, ExpiredAt: time.Now().Unix()},
		},
	}
	svc, proposals, _ := newEVMService(reader)

	res, err := svc.SyncByOwner(context.Background(), owner, domain.SyncTriggerManual)
	if err != nil {
		t.Fatalf("SyncByOwner: %v", err)
	}
	if res.Synced != 2 || res.Skipped != 1 || res.Failed != 0 {
		t.Fatalf("result = %+v", res)
	}

	p, err := proposals.GetByID(context.Background(), "SEI-2")
	if err != nil {
		t.Fatalf("SEI-2 not mirrored: %v", err)
	}
	if p.Status != domain.ProposalStatusCanceled {
		t.Errorf("status = %q", p.Status)
	}
}

func TestEVMSyncPreservesNote(t *testing.T) {
	owner := "0x1111111111111111111111111111111111111111"
	reader := &fakeReader{proposals: map[string]*evm.ProposalState{
		"SEI-1": {ID: "SEI-1", Owner: owner, Status: domain.ProposalStatusFulfilled, ExpiredAt: time.Now().Unix()},
	}}
	svc, proposals, _ := newEVMService(reader)

	seeded := &domain.SwapProposal{
		ID:           "SEI-1",
		OwnerAddress: owner,
		ChainID:      domain.ChainSei,
		Status:       domain.ProposalStatusDeposited,
		Note:         "rare swap",
		ExpiredAt:    time.Now().Add(time.Hour),
	}
	if err := proposals.Upsert(context.Background(), seeded); err != nil {
		t.Fatalf("seed: %v", err)
	}

	p, err := svc.SyncProposal(context.Background(), "SEI-1", domain.SyncTriggerWatcher)
	if err != nil {
		t.Fatalf("SyncProposal: %v", err)
	}
	if p.Status != domain.ProposalStatusFulfilled || p.Note != "rare swap" {
		t.Errorf("mirror row: %+v", p)
	}
}
