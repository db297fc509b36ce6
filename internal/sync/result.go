package sync

import "swap-mirror/internal/domain"

// ItemResult is the outcome of syncing one proposal inside a batch.
type ItemResult struct {
	ProposalID string                `json:"proposalId"`
	Status     domain.ProposalStatus `json:"status,omitempty"`
	Outcome    domain.SyncOutcome    `json:"outcome"`
	Error      string                `json:"error,omitempty"`
}

// Result summarizes a batch sync.
type Result struct {
	Items   []ItemResult `json:"items"`
	Synced  int          `json:"synced"`
	Skipped int          `json:"skipped"`
	Failed  int          `json:"failed"`
}

func (r *Result) add(item ItemResult) {
	r.Items = append(r.Items, item)
	switch item.Outcome {
	case domain.SyncOutcomeSynced:
		r.Synced++
	case domain.SyncOutcomeSkipped:
		r.Skipped++
	case domain.SyncOutcomeFailed:
		r.Failed++
	}
}
