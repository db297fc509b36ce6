package clickhouse

import (
	"context"
	"fmt"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/storage"
)

// SyncEventStore implements storage.SyncEventStore using ClickHouse.
// The proposal_sync_events table is append-only; MergeTree enforces no
// uniqueness, which is fine for an audit log.
type SyncEventStore struct {
	conn *Conn
}

// NewSyncEventStore creates a new SyncEventStore.
func NewSyncEventStore(conn *Conn) *SyncEventStore {
	return &SyncEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SyncEventStore = (*SyncEventStore)(nil)

// Insert appends one audit event.
func (s *SyncEventStore) Insert(ctx context.Context, e *domain.SyncEvent) error {
	if e == nil || e.ProposalID == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO proposal_sync_events (
			proposal_id, chain_id, trigger_source, previous_status,
			new_status, outcome, error, duration_ms, timestamp_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		e.ProposalID, string(e.ChainID), string(e.Trigger), string(e.PreviousStatus),
		string(e.NewStatus), string(e.Outcome), e.Error,
		uint64(e.DurationMs), uint64(e.TimestampMs),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByProposalID retrieves audit events for a proposal, oldest first.
func (s *SyncEventStore) GetByProposalID(ctx context.Context, proposalID string) ([]*domain.SyncEvent, error) {
	if proposalID == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT proposal_id, chain_id, trigger_source, previous_status,
		       new_status, outcome, error, duration_ms, timestamp_ms
		FROM proposal_sync_events
		WHERE proposal_id = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("query by proposal id: %w", err)
	}
	defer rows.Close()

	var events []*domain.SyncEvent
	for rows.Next() {
		var e domain.SyncEvent
		var chainID, trigger, prevStatus, newStatus, outcome string
		var durationMs, timestampMs uint64
		err := rows.Scan(
			&e.ProposalID, &chainID, &trigger, &prevStatus,
			&newStatus, &outcome, &e.Error, &durationMs, &timestampMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sync event: %w", err)
		}
		e.ChainID = domain.ChainID(chainID)
		e.Trigger = domain.SyncTrigger(trigger)
		e.PreviousStatus = domain.ProposalStatus(prevStatus)
		e.NewStatus = domain.ProposalStatus(newStatus)
		e.Outcome = domain.SyncOutcome(outcome)
		e.DurationMs = int64(durationMs)
		e.TimestampMs = int64(timestampMs)
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync events: %w", err)
	}

	return events, nil
}
