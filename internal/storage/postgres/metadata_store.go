package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/storage"
)

// MetadataStore implements storage.MetadataStore using PostgreSQL.
type MetadataStore struct {
	pool *Pool
}

// NewMetadataStore creates a new MetadataStore.
func NewMetadataStore(pool *Pool) *MetadataStore {
	return &MetadataStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MetadataStore = (*MetadataStore)(nil)

// Upsert inserts or replaces the cache row keyed by mint address.
func (s *MetadataStore) Upsert(ctx context.Context, rec *domain.MetadataRecord) error {
	if rec == nil || rec.MintAddress == "" {
		return storage.ErrInvalidInput
	}

	createdAt := rec.CreatedAt
	updatedAt := rec.UpdatedAt
	if createdAt == 0 {
		createdAt = time.Now().UnixMilli()
	}
	if updatedAt == 0 {
		updatedAt = createdAt
	}

	query := `
		INSERT INTO token_metadata (mint_address, metadata, is_nft, chain_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (mint_address) DO UPDATE SET
			metadata = EXCLUDED.metadata,
			is_nft = EXCLUDED.is_nft,
			chain_id = EXCLUDED.chain_id,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		rec.MintAddress,
		rec.Metadata,
		rec.IsNFT,
		string(rec.ChainID),
		createdAt,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert token metadata: %w", err)
	}
	return nil
}

// GetByMintAddress retrieves a cache row. Returns ErrNotFound if not exists.
func (s *MetadataStore) GetByMintAddress(ctx context.Context, mintAddress string) (*domain.MetadataRecord, error) {
	query := `
		SELECT mint_address, metadata, is_nft, chain_id, created_at, updated_at
		FROM token_metadata
		WHERE mint_address = $1
	`

	row := s.pool.QueryRow(ctx, query, mintAddress)
	rec, err := scanMetadataRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token metadata: %w", err)
	}
	return rec, nil
}

// scanMetadataRecord scans a single row into MetadataRecord.
func scanMetadataRecord(row pgx.Row) (*domain.MetadataRecord, error) {
	var (
		rec     domain.MetadataRecord
		chainID string
	)

	err := row.Scan(
		&rec.MintAddress,
		&rec.Metadata,
		&rec.IsNFT,
		&chainID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.ChainID = domain.ChainID(chainID)
	return &rec, nil
}
