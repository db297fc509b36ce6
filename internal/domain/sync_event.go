package domain

// SyncOutcome classifies the result of a single proposal sync attempt.
type SyncOutcome string

// Sync outcomes.
const (
	SyncOutcomeSynced  SyncOutcome = "synced"
	SyncOutcomeSkipped SyncOutcome = "skipped"
	SyncOutcomeFailed  SyncOutcome = "failed"
)

// SyncTrigger names what initiated a sync.
type SyncTrigger string

// Sync triggers.
const (
	SyncTriggerManual  SyncTrigger = "manual"
	SyncTriggerBatch   SyncTrigger = "batch"
	SyncTriggerWatcher SyncTrigger = "watcher"
)

// SyncEvent is one audit row describing a sync attempt for a proposal.
// Corresponds to proposal_sync_events table in ClickHouse (append-only).
type SyncEvent struct {
	ProposalID     string
	ChainID        ChainID
	Trigger        SyncTrigger
	PreviousStatus ProposalStatus // empty when the mirror row did not exist
	NewStatus      ProposalStatus // empty on failure
	Outcome        SyncOutcome
	Error          string // empty unless Outcome is failed
	DurationMs     int64
	TimestampMs    int64
}
