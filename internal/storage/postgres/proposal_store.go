package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/storage"
)

// ProposalStore implements storage.ProposalStore using PostgreSQL.
type ProposalStore struct {
	pool *Pool
}

// NewProposalStore creates a new ProposalStore.
func NewProposalStore(pool *Pool) *ProposalStore {
	return &ProposalStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProposalStore = (*ProposalStore)(nil)

// Upsert inserts the proposal or replaces the row with the same id.
// A single-row upsert-on-conflict is the only consistency primitive the
// mirror needs.
func (s *ProposalStore) Upsert(ctx context.Context, p *domain.SwapProposal) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}
	if !p.Status.Valid() {
		return storage.ErrInvalidInput
	}

	swapItems, err := json.Marshal(p.SwapItems)
	if err != nil {
		return fmt.Errorf("marshal swap items: %w", err)
	}
	receiveItems, err := json.Marshal(p.ReceiveItems)
	if err != nil {
		return fmt.Errorf("marshal receive items: %w", err)
	}

	query := `
		INSERT INTO swap_proposals (
			id, owner_id, owner_address, chain_id, status,
			swap_items, receive_items, fulfill_by, fulfilled_with_option_id,
			expired_at, note, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			owner_address = EXCLUDED.owner_address,
			chain_id = EXCLUDED.chain_id,
			status = EXCLUDED.status,
			swap_items = EXCLUDED.swap_items,
			receive_items = EXCLUDED.receive_items,
			fulfill_by = EXCLUDED.fulfill_by,
			fulfilled_with_option_id = EXCLUDED.fulfilled_with_option_id,
			expired_at = EXCLUDED.expired_at,
			note = EXCLUDED.note,
			updated_at = NOW()
	`

	_, err = s.pool.Exec(ctx, query,
		p.ID,
		p.OwnerID,
		p.OwnerAddress,
		string(p.ChainID),
		string(p.Status),
		swapItems,
		receiveItems,
		p.FulfillBy,
		p.FulfilledWithOptionID,
		p.ExpiredAt,
		p.Note,
	)
	if err != nil {
		return fmt.Errorf("upsert proposal: %w", err)
	}
	return nil
}

// GetByID retrieves a proposal by id. Returns ErrNotFound if not exists.
func (s *ProposalStore) GetByID(ctx context.Context, id string) (*domain.SwapProposal, error) {
	query := proposalSelect + ` WHERE id = $1`

	row := s.pool.QueryRow(ctx, query, id)
	p, err := scanProposal(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get proposal by id: %w", err)
	}
	return p, nil
}

// Find retrieves proposals matching the filter, newest first. A status
// filter naming EXPIRED matches still-DEPOSITED rows past their expiry;
// DEPOSITED matches only rows that have not expired yet.
func (s *ProposalStore) Find(ctx context.Context, f storage.ProposalFilter) ([]*domain.SwapProposal, error) {
	var (
		conds []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.OwnerAddresses) > 0 {
		conds = append(conds, fmt.Sprintf("owner_address = ANY(%s)", arg(f.OwnerAddresses)))
	}
	if f.ChainID != "" {
		conds = append(conds, fmt.Sprintf("chain_id = %s", arg(string(f.ChainID))))
	}
	if len(f.Statuses) > 0 {
		var stored []string
		var derived []string
		for _, st := range f.Statuses {
			switch st {
			case domain.ProposalStatusExpired:
				derived = append(derived, "(status = 'DEPOSITED' AND expired_at < NOW())")
			case domain.ProposalStatusDeposited:
				derived = append(derived, "(status = 'DEPOSITED' AND expired_at >= NOW())")
			default:
				stored = append(stored, string(st))
			}
		}
		if len(stored) > 0 {
			derived = append(derived, fmt.Sprintf("status = ANY(%s)", arg(stored)))
		}
		conds = append(conds, "("+strings.Join(derived, " OR ")+")")
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		conds = append(conds, fmt.Sprintf("(id ILIKE %s OR owner_address ILIKE %s OR note ILIKE %s)", p, p, p))
	}

	query := proposalSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %s", arg(f.Limit))
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %s", arg(f.Offset))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find proposals: %w", err)
	}
	defer rows.Close()

	return scanProposals(rows)
}

const proposalSelect = `
	SELECT id, owner_id, owner_address, chain_id, status,
	       swap_items, receive_items, fulfill_by, fulfilled_with_option_id,
	       expired_at, note, created_at, updated_at
	FROM swap_proposals
`

// scanProposal scans a single row into SwapProposal.
func scanProposal(row pgx.Row) (*domain.SwapProposal, error) {
	var (
		p            domain.SwapProposal
		chainID      string
		status       string
		swapItems    []byte
		receiveItems []byte
	)

	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.OwnerAddress,
		&chainID,
		&status,
		&swapItems,
		&receiveItems,
		&p.FulfillBy,
		&p.FulfilledWithOptionID,
		&p.ExpiredAt,
		&p.Note,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.ChainID = domain.ChainID(chainID)
	p.Status = domain.ProposalStatus(status)
	if err := json.Unmarshal(swapItems, &p.SwapItems); err != nil {
		return nil, fmt.Errorf("unmarshal swap items: %w", err)
	}
	if err := json.Unmarshal(receiveItems, &p.ReceiveItems); err != nil {
		return nil, fmt.Errorf("unmarshal receive items: %w", err)
	}

	return &p, nil
}

// scanProposals scans multiple rows into a slice of SwapProposal.
func scanProposals(rows pgx.Rows) ([]*domain.SwapProposal, error) {
	var proposals []*domain.SwapProposal

	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proposal row: %w", err)
		}
		proposals = append(proposals, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposal rows: %w", err)
	}

	return proposals, nil
}
