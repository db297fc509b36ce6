package domain

import (
	"testing"
	"time"
)

func TestProposalStatus_Valid(t *testing.T) {
	valid := []ProposalStatus{
		ProposalStatusDeposited,
		ProposalStatusFulfilled,
		ProposalStatusSwapped,
		ProposalStatusCanceled,
		ProposalStatusWithdrawn,
		ProposalStatusRedeemed,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}

	// EXPIRED is derived, never stored.
	if ProposalStatusExpired.Valid() {
		t.Error("EXPIRED must not be a storable status")
	}
	if ProposalStatus("UNKNOWN").Valid() {
		t.Error("unknown status must not be valid")
	}
}

func TestProposalStatus_Terminal(t *testing.T) {
	if ProposalStatusDeposited.Terminal() {
		t.Error("DEPOSITED is not terminal")
	}
	for _, s := range []ProposalStatus{
		ProposalStatusFulfilled, ProposalStatusSwapped, ProposalStatusCanceled,
		ProposalStatusWithdrawn, ProposalStatusRedeemed,
	} {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
}

func TestSwapProposal_EffectiveStatus(t *testing.T) {
	now := time.Now()

	p := &SwapProposal{Status: ProposalStatusDeposited, ExpiredAt: now.Add(-time.Hour)}
	if got := p.EffectiveStatus(now); got != ProposalStatusExpired {
		t.Errorf("expected EXPIRED for past-expiry deposited proposal, got %s", got)
	}

	p = &SwapProposal{Status: ProposalStatusDeposited, ExpiredAt: now.Add(time.Hour)}
	if got := p.EffectiveStatus(now); got != ProposalStatusDeposited {
		t.Errorf("expected DEPOSITED for open proposal, got %s", got)
	}

	// Terminal statuses never flip to expired.
	p = &SwapProposal{Status: ProposalStatusSwapped, ExpiredAt: now.Add(-time.Hour)}
	if got := p.EffectiveStatus(now); got != ProposalStatusSwapped {
		t.Errorf("expected SWAPPED to stay terminal, got %s", got)
	}
}

func TestMintAddressKeys(t *testing.T) {
	if got := MintAddress(ChainSei, "0xabc"); got != "sei:0xabc" {
		t.Errorf("unexpected mint address: %s", got)
	}
	if got := NFTMintAddress(ChainSei, "0xabc", "42"); got != "sei:0xabc:42" {
		t.Errorf("unexpected nft mint address: %s", got)
	}
}
