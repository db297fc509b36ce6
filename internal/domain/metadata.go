package domain

import (
	"encoding/json"
	"fmt"
)

// MintAddress builds the composite cache key for a fungible token.
func MintAddress(chainID ChainID, contract string) string {
	return fmt.Sprintf("%s:%s", chainID, contract)
}

// NFTMintAddress builds the composite cache key for a single NFT.
func NFTMintAddress(chainID ChainID, contract, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", chainID, contract, tokenID)
}

// NFTAttribute is a single display trait of an NFT.
type NFTAttribute struct {
	TraitType string `json:"trait_type,omitempty"`
	Value     any    `json:"value,omitempty"`
}

// TokenMetadata is resolved display metadata for a fungible token.
type TokenMetadata struct {
	Address       string  `json:"address"`
	ChainID       ChainID `json:"chainId"`
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Decimals      int     `json:"decimals"`
	Icon          string  `json:"icon"`
	IsWhitelisted bool    `json:"isWhiteListed"`
}

// NFTMetadata is resolved display metadata for a single NFT.
type NFTMetadata struct {
	ID             string         `json:"id"`
	TokenID        int64          `json:"tokenId"`
	Address        string         `json:"address"`
	ChainID        ChainID        `json:"chainId"`
	Name           string         `json:"name"`
	Image          string         `json:"image"`
	Attributes     []NFTAttribute `json:"attributes"`
	CollectionID   string         `json:"collectionId"`
	CollectionSlug string         `json:"collectionSlug"`
	CollectionName string         `json:"collectionName,omitempty"`
	CollectionURL  string         `json:"collectionUrl,omitempty"`
	IsWhitelisted  bool           `json:"isWhiteListed"`
}

// MetadataRecord is the persisted cache row for resolved metadata.
// Corresponds to token_metadata table in PostgreSQL. Metadata holds the
// serialized TokenMetadata or NFTMetadata depending on IsNFT.
type MetadataRecord struct {
	MintAddress string          // PRIMARY KEY, "chainId:contract[:tokenId]"
	Metadata    json.RawMessage // resolved display metadata
	IsNFT       bool            // discriminates NFTMetadata from TokenMetadata
	ChainID     ChainID
	CreatedAt   int64 // record creation timestamp (ms)
	UpdatedAt   int64 // last upsert timestamp (ms)
}

// TokenRecord builds a persisted cache row from fungible token metadata.
func TokenRecord(m *TokenMetadata) (*MetadataRecord, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal token metadata: %w", err)
	}
	return &MetadataRecord{
		MintAddress: MintAddress(m.ChainID, m.Address),
		Metadata:    raw,
		IsNFT:       false,
		ChainID:     m.ChainID,
	}, nil
}

// NFTRecord builds a persisted cache row from NFT metadata.
func NFTRecord(m *NFTMetadata) (*MetadataRecord, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal nft metadata: %w", err)
	}
	return &MetadataRecord{
		MintAddress: NFTMintAddress(m.ChainID, m.Address, m.ID),
		Metadata:    raw,
		IsNFT:       true,
		ChainID:     m.ChainID,
	}, nil
}
