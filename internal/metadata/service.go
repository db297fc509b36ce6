package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/indexer"
	"swap-mirror/internal/observability"
	"swap-mirror/internal/registry"
	"swap-mirror/internal/storage"
)

// SeiProvider resolves token and collection descriptions from the Sei
// chain indexer.
type SeiProvider interface {
	GetErc20TokenInfo(ctx context.Context, contract string) (*indexer.Erc20TokenInfo, error)
	GetErc721TokenInfo(ctx context.Context, contract string) (*indexer.Erc721TokenInfo, error)
}

// TokenProvider resolves fungible token descriptions for chains the Sei
// indexer does not cover.
type TokenProvider interface {
	GetTokenInfo(ctx context.Context, chain, tokenAddress string) (*indexer.DebankToken, error)
}

// NFTProvider resolves single NFTs for chains the Sei indexer does not cover.
type NFTProvider interface {
	GetNFT(ctx context.Context, chain, contract, tokenID string) (*indexer.OpenSeaNFT, error)
}

// Service resolves display metadata cache-first. A resolution never
// fails outward: when every provider is unavailable the service persists
// and returns placeholder metadata so rendering can proceed.
type Service struct {
	store    storage.MetadataStore
	registry *registry.Registry
	sei      SeiProvider
	tokens   TokenProvider
	nfts     NFTProvider
	logger   *log.Logger
}

// NewService creates a metadata resolution service. The sei, tokens and
// nfts providers may be nil; resolution then falls through to the
// registry whitelist and placeholders.
func NewService(store storage.MetadataStore, reg *registry.Registry, sei SeiProvider, tokens TokenProvider, nfts NFTProvider, logger *log.Logger) *Service {
	return &Service{
		store:    store,
		registry: reg,
		sei:      sei,
		tokens:   tokens,
		nfts:     nfts,
		logger:   logger,
	}
}

// GetTokenMetadata resolves display metadata for a fungible token.
// Cache hits skip providers entirely; the whitelist flag is recomputed
// on every call so registry changes apply to cached rows.
func (s *Service) GetTokenMetadata(ctx context.Context, chainID domain.ChainID, address string) (*domain.TokenMetadata, error) {
	if !chainID.Valid() {
		return nil, fmt.Errorf("unsupported chain %q", chainID)
	}

	key := domain.MintAddress(chainID, address)
	if rec, err := s.store.GetByMintAddress(ctx, key); err == nil {
		var meta domain.TokenMetadata
		if err := json.Unmarshal(rec.Metadata, &meta); err == nil {
			observability.RecordMetadataLookup(true)
			meta.IsWhitelisted = s.registry.FindCurrency(chainID, address) != nil
			return &meta, nil
		}
		s.logger.Printf("corrupt cached metadata for %s, re-resolving", key)
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.logger.Printf("metadata cache read for %s: %v", key, err)
	}
	observability.RecordMetadataLookup(false)

	meta := s.resolveToken(ctx, chainID, address)
	meta.IsWhitelisted = s.registry.FindCurrency(chainID, address) != nil

	s.persistToken(ctx, meta)
	return meta, nil
}

// GetNFTMetadata resolves display metadata for a single NFT.
func (s *Service) GetNFTMetadata(ctx context.Context, chainID domain.ChainID, contract, tokenID string) (*domain.NFTMetadata, error) {
	if !chainID.Valid() {
		return nil, fmt.Errorf("unsupported chain %q", chainID)
	}

	key := domain.NFTMintAddress(chainID, contract, tokenID)
	if rec, err := s.store.GetByMintAddress(ctx, key); err == nil {
		var meta domain.NFTMetadata
		if err := json.Unmarshal(rec.Metadata, &meta); err == nil {
			observability.RecordMetadataLookup(true)
			meta.IsWhitelisted = s.registry.FindCollection(chainID, contract) != nil
			return &meta, nil
		}
		s.logger.Printf("corrupt cached metadata for %s, re-resolving", key)
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.logger.Printf("metadata cache read for %s: %v", key, err)
	}
	observability.RecordMetadataLookup(false)

	meta := s.resolveNFT(ctx, chainID, contract, tokenID)
	meta.IsWhitelisted = s.registry.FindCollection(chainID, contract) != nil

	s.persistNFT(ctx, meta)
	return meta, nil
}

// resolveToken queries the chain's provider, falling back to the
// registry whitelist and then to a placeholder.
func (s *Service) resolveToken(ctx context.Context, chainID domain.ChainID, address string) *domain.TokenMetadata {
	switch {
	case chainID == domain.ChainSei && s.sei != nil:
		info, err := s.sei.GetErc20TokenInfo(ctx, address)
		if err == nil {
			return seiTokenMetadata(chainID, address, info)
		}
		s.logger.Printf("sei token metadata for %s: %v", address, err)

	case chainID.IsEVM() && s.tokens != nil:
		info, err := s.tokens.GetTokenInfo(ctx, string(chainID), address)
		if err == nil {
			return &domain.TokenMetadata{
				Address:  address,
				ChainID:  chainID,
				Name:     info.Name,
				Symbol:   info.Symbol,
				Decimals: info.Decimals,
				Icon:     info.LogoURL,
			}
		}
		s.logger.Printf("token metadata for %s on %s: %v", address, chainID, err)
	}

	// Whitelisted currencies carry their own descriptions, so chains
	// without an indexer still resolve curated assets.
	if cur := s.registry.FindCurrency(chainID, address); cur != nil {
		return &domain.TokenMetadata{
			Address:  address,
			ChainID:  chainID,
			Name:     cur.Name,
			Symbol:   cur.Symbol,
			Decimals: cur.Decimals,
			Icon:     cur.Icon,
		}
	}

	observability.RecordMetadataFallback(string(chainID))
	return fallbackTokenMetadata(chainID, address)
}

// resolveNFT queries the chain's provider, falling back to a placeholder.
func (s *Service) resolveNFT(ctx context.Context, chainID domain.ChainID, contract, tokenID string) *domain.NFTMetadata {
	collection := s.registry.FindCollection(chainID, contract)

	switch {
	case chainID == domain.ChainSei && s.sei != nil:
		info, err := s.sei.GetErc721TokenInfo(ctx, contract)
		if err == nil {
			return seiNFTMetadata(chainID, contract, tokenID, info, collection)
		}
		s.logger.Printf("sei nft metadata for %s:%s: %v", contract, tokenID, err)

	case chainID.IsEVM() && s.nfts != nil:
		nft, err := s.nfts.GetNFT(ctx, string(chainID), contract, tokenID)
		if err == nil {
			meta := &domain.NFTMetadata{
				ID:             tokenID,
				TokenID:        parseTokenID(tokenID),
				Address:        contract,
				ChainID:        chainID,
				Name:           nft.Name,
				Image:          nft.ImageURL,
				Attributes:     openSeaAttributes(nft.Traits),
				CollectionID:   string(chainID) + ":" + contract,
				CollectionSlug: nft.Collection,
			}
			if collection != nil {
				meta.CollectionName = collection.Name
				meta.CollectionURL = collection.MarketURL
			}
			return meta
		}
		s.logger.Printf("nft metadata for %s:%s on %s: %v", contract, tokenID, chainID, err)
	}

	observability.RecordMetadataFallback(string(chainID))
	return fallbackNFTMetadata(chainID, contract, tokenID, collection)
}

func seiTokenMetadata(chainID domain.ChainID, address string, info *indexer.Erc20TokenInfo) *domain.TokenMetadata {
	meta := &domain.TokenMetadata{
		Address:  address,
		ChainID:  chainID,
		Name:     info.TokenName,
		Symbol:   info.TokenSymbol,
		Decimals: parseDecimals(info.TokenDecimals),
	}
	if info.TokenLogo != nil {
		meta.Icon = *info.TokenLogo
	}
	return meta
}

func seiNFTMetadata(chainID domain.ChainID, contract, tokenID string, info *indexer.Erc721TokenInfo, collection *domain.WhitelistedCollection) *domain.NFTMetadata {
	blob := indexer.ParseMetadataBlob(info.TokenMetadata)

	name := blob.Name
	if name == "" {
		name = info.TokenName
	}
	if name == "" {
		name = info.TokenSymbol + " #" + tokenID
	}

	meta := &domain.NFTMetadata{
		ID:             tokenID,
		TokenID:        parseTokenID(tokenID),
		Address:        contract,
		ChainID:        chainID,
		Name:           name,
		Image:          blob.Image,
		Attributes:     blob.Attributes,
		CollectionID:   string(chainID) + ":" + contract,
		CollectionSlug: strings.ToLower(info.TokenSymbol),
		CollectionName: info.TokenName,
	}
	if collection != nil {
		meta.CollectionName = collection.Name
		meta.CollectionURL = collection.MarketURL
	}
	return meta
}

// fallbackTokenMetadata is the placeholder persisted when no provider
// can describe a token. Decimals default to 18.
func fallbackTokenMetadata(chainID domain.ChainID, address string) *domain.TokenMetadata {
	return &domain.TokenMetadata{
		Address:  address,
		ChainID:  chainID,
		Name:     "Unknown Token",
		Symbol:   "UNKNOWN",
		Decimals: 18,
	}
}

// fallbackNFTMetadata is the placeholder persisted when no provider can
// describe an NFT.
func fallbackNFTMetadata(chainID domain.ChainID, contract, tokenID string, collection *domain.WhitelistedCollection) *domain.NFTMetadata {
	meta := &domain.NFTMetadata{
		ID:             tokenID,
		TokenID:        parseTokenID(tokenID),
		Address:        contract,
		ChainID:        chainID,
		Name:           "Token #" + tokenID,
		Attributes:     []domain.NFTAttribute{},
		CollectionID:   string(chainID) + ":" + contract,
		CollectionSlug: strings.ToLower(contract),
		CollectionName: "Unknown Collection",
	}
	if collection != nil {
		meta.CollectionName = collection.Name
		meta.CollectionURL = collection.MarketURL
	}
	return meta
}

func (s *Service) persistToken(ctx context.Context, meta *domain.TokenMetadata) {
	rec, err := domain.TokenRecord(meta)
	if err != nil {
		s.logger.Printf("build metadata record for %s: %v", meta.Address, err)
		return
	}
	now := time.Now().UnixMilli()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if err := s.store.Upsert(ctx, rec); err != nil {
		s.logger.Printf("persist metadata for %s: %v", rec.MintAddress, err)
	}
}

func (s *Service) persistNFT(ctx context.Context, meta *domain.NFTMetadata) {
	rec, err := domain.NFTRecord(meta)
	if err != nil {
		s.logger.Printf("build metadata record for %s: %v", meta.Address, err)
		return
	}
	now := time.Now().UnixMilli()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if err := s.store.Upsert(ctx, rec); err != nil {
		s.logger.Printf("persist metadata for %s: %v", rec.MintAddress, err)
	}
}

func parseDecimals(raw string) int {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return 18
}

func parseTokenID(raw string) int64 {
	n, _ := strconv.ParseInt(raw, 10, 64)
	return n
}

func openSeaAttributes(traits []indexer.OpenSeaTrait) []domain.NFTAttribute {
	attrs := make([]domain.NFTAttribute, 0, len(traits))
	for _, t := range traits {
		attrs = append(attrs, domain.NFTAttribute{TraitType: t.TraitType, Value: t.Value})
	}
	return attrs
}
