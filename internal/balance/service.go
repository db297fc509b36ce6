package balance

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"strings"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/indexer"
	"swap-mirror/internal/registry"
)

// SeiPortfolioProvider fetches the complete holdings of a Sei wallet.
type SeiPortfolioProvider interface {
	GetTokenPortfolio(ctx context.Context, address string) (*indexer.SeitracePortfolio, error)
}

// FallbackPortfolioProvider fetches holdings on EVM chains the Sei
// indexer does not cover.
type FallbackPortfolioProvider interface {
	GetTokenBalances(ctx context.Context, chain, ownerAddress string) ([]indexer.DebankToken, error)
	GetNFTBalances(ctx context.Context, chain, ownerAddress string) ([]indexer.DebankNFT, error)
}

// Service aggregates wallet holdings per chain. Balances are derived on
// every call and never persisted; only the whitelist annotation comes
// from local state.
type Service struct {
	registry *registry.Registry
	sei      SeiPortfolioProvider
	fallback FallbackPortfolioProvider
	logger   *log.Logger
}

// NewService creates a balance aggregation service. Either provider may
// be nil when the deployment does not serve that chain family.
func NewService(reg *registry.Registry, sei SeiPortfolioProvider, fallback FallbackPortfolioProvider, logger *log.Logger) *Service {
	return &Service{
		registry: reg,
		sei:      sei,
		fallback: fallback,
		logger:   logger,
	}
}

// GetPortfolio lists the fungible and NFT holdings of one wallet.
// Zero balances are dropped.
func (s *Service) GetPortfolio(ctx context.Context, chainID domain.ChainID, address string) (*domain.Portfolio, error) {
	if !chainID.Valid() {
		return nil, fmt.Errorf("unsupported chain %q", chainID)
	}
	if !chainID.IsEVM() {
		return nil, fmt.Errorf("no balance provider for chain %q", chainID)
	}

	if chainID == domain.ChainSei && s.sei != nil {
		p, err := s.seiPortfolio(ctx, chainID, address)
		if err == nil {
			return p, nil
		}
		if s.fallback == nil {
			return nil, err
		}
		s.logger.Printf("sei portfolio for %s failed, using fallback: %v", address, err)
	}

	if s.fallback == nil {
		return nil, fmt.Errorf("no balance provider for chain %q", chainID)
	}
	return s.fallbackPortfolio(ctx, chainID, address)
}

// GetTokenBalances lists the fungible holdings of one wallet. Provider
// failures degrade to an empty list instead of erroring; only an
// unsupported chain is an error.
func (s *Service) GetTokenBalances(ctx context.Context, chainID domain.ChainID, address string) ([]domain.TokenBalance, error) {
	if !chainID.Valid() {
		return nil, fmt.Errorf("unsupported chain %q", chainID)
	}
	if !chainID.IsEVM() {
		return nil, fmt.Errorf("no balance provider for chain %q", chainID)
	}

	if chainID == domain.ChainSei && s.sei != nil {
		raw, err := s.sei.GetTokenPortfolio(ctx, address)
		if err == nil {
			tokens := []domain.TokenBalance{}
			for _, b := range raw.Erc20 {
				if tb := s.seiTokenBalance(chainID, b); tb.Amount > 0 {
					tokens = append(tokens, tb)
				}
			}
			return tokens, nil
		}
		s.logger.Printf("token balances for %s on %s: %v", address, chainID, err)
	}

	if s.fallback == nil {
		return []domain.TokenBalance{}, nil
	}
	raw, err := s.fallback.GetTokenBalances(ctx, string(chainID), address)
	if err != nil {
		s.logger.Printf("token balances for %s on %s: %v", address, chainID, err)
		return []domain.TokenBalance{}, nil
	}

	tokens := []domain.TokenBalance{}
	for _, t := range raw {
		if t.Amount <= 0 {
			continue
		}
		tokens = append(tokens, s.fallbackTokenBalance(chainID, t))
	}
	return tokens, nil
}

// GetNftBalances lists the NFT holdings of one wallet with the same
// degrade-to-empty behavior as GetTokenBalances.
func (s *Service) GetNftBalances(ctx context.Context, chainID domain.ChainID, address string) ([]domain.NFTBalance, error) {
	if !chainID.Valid() {
		return nil, fmt.Errorf("unsupported chain %q", chainID)
	}
	if !chainID.IsEVM() {
		return nil, fmt.Errorf("no balance provider for chain %q", chainID)
	}

	if chainID == domain.ChainSei && s.sei != nil {
		raw, err := s.sei.GetTokenPortfolio(ctx, address)
		if err == nil {
			nfts := []domain.NFTBalance{}
			for _, n := range raw.Erc721 {
				nfts = append(nfts, s.seiNFTBalance(chainID, n))
			}
			return nfts, nil
		}
		s.logger.Printf("nft balances for %s on %s: %v", address, chainID, err)
	}

	if s.fallback == nil {
		return []domain.NFTBalance{}, nil
	}
	raw, err := s.fallback.GetNFTBalances(ctx, string(chainID), address)
	if err != nil {
		s.logger.Printf("nft balances for %s on %s: %v", address, chainID, err)
		return []domain.NFTBalance{}, nil
	}

	nfts := []domain.NFTBalance{}
	for _, n := range raw {
		nfts = append(nfts, s.fallbackNFTBalance(chainID, n))
	}
	return nfts, nil
}

func (s *Service) seiPortfolio(ctx context.Context, chainID domain.ChainID, address string) (*domain.Portfolio, error) {
	raw, err := s.sei.GetTokenPortfolio(ctx, address)
	if err != nil {
		return nil, err
	}

	p := &domain.Portfolio{
		Address: address,
		ChainID: chainID,
		Tokens:  []domain.TokenBalance{},
		NFTs:    []domain.NFTBalance{},
	}

	for _, b := range raw.Erc20 {
		tb := s.seiTokenBalance(chainID, b)
		if tb.Amount <= 0 {
			continue
		}
		p.Tokens = append(p.Tokens, tb)
		if usd, err := strconv.ParseFloat(b.TotalUSDValue, 64); err == nil {
			p.TotalUSD += usd
		}
	}
	for _, n := range raw.Erc721 {
		p.NFTs = append(p.NFTs, s.seiNFTBalance(chainID, n))
	}

	p.TokenCount = len(p.Tokens)
	p.NFTCount = len(p.NFTs)
	return p, nil
}

func (s *Service) seiTokenBalance(chainID domain.ChainID, b indexer.Erc20Balance) domain.TokenBalance {
	amount, _ := strconv.ParseFloat(b.Amount, 64)
	decimals := 18
	if n, err := strconv.Atoi(b.TokenDecimals); err == nil {
		decimals = n
	}

	tb := domain.TokenBalance{
		Address:       b.TokenContract,
		ChainID:       chainID,
		Amount:        amount,
		RawAmount:     b.RawAmount,
		RawAmountHex:  rawAmountHex(b.RawAmount),
		Decimals:      decimals,
		Name:          b.TokenName,
		Symbol:        b.TokenSymbol,
		Icon:          b.TokenLogo,
		IsWhitelisted: s.registry.FindCurrency(chainID, b.TokenContract) != nil,
	}

	// Prefer the curated description when the indexer row is sparse.
	if cur := s.registry.FindCurrency(chainID, b.TokenContract); cur != nil {
		if tb.Name == "" {
			tb.Name = cur.Name
		}
		if tb.Symbol == "" {
			tb.Symbol = cur.Symbol
		}
		if tb.Icon == "" {
			tb.Icon = cur.Icon
		}
	}
	return tb
}

func (s *Service) seiNFTBalance(chainID domain.ChainID, n indexer.Erc721Token) domain.NFTBalance {
	blob := indexer.ParseMetadataBlob(n.TokenMetadata)

	name := blob.Name
	if name == "" {
		name = n.TokenName + " #" + n.TokenID
	}

	nb := domain.NFTBalance{
		ID:             n.TokenID,
		TokenID:        parseTokenID(n.TokenID),
		Address:        n.TokenContract,
		ChainID:        chainID,
		CollectionID:   string(chainID) + ":" + n.TokenContract,
		CollectionSlug: strings.ToLower(n.TokenSymbol),
		CollectionName: n.TokenName,
		Image:          blob.Image,
		Name:           name,
		Attributes:     blob.Attributes,
	}

	if col := s.registry.FindCollection(chainID, n.TokenContract); col != nil {
		nb.IsWhitelisted = true
		nb.CollectionName = col.Name
		nb.CollectionURL = col.MarketURL
	}
	return nb
}

func (s *Service) fallbackPortfolio(ctx context.Context, chainID domain.ChainID, address string) (*domain.Portfolio, error) {
	p := &domain.Portfolio{
		Address: address,
		ChainID: chainID,
		Tokens:  []domain.TokenBalance{},
		NFTs:    []domain.NFTBalance{},
	}

	tokens, tokensErr := s.fallback.GetTokenBalances(ctx, string(chainID), address)
	nfts, nftsErr := s.fallback.GetNFTBalances(ctx, string(chainID), address)
	if tokensErr != nil && nftsErr != nil {
		return nil, fmt.Errorf("get portfolio for %s: %w", address, tokensErr)
	}
	// One side failing degrades the portfolio instead of erroring it.
	if tokensErr != nil {
		s.logger.Printf("token balances for %s on %s: %v", address, chainID, tokensErr)
	}
	if nftsErr != nil {
		s.logger.Printf("nft balances for %s on %s: %v", address, chainID, nftsErr)
	}

	for _, t := range tokens {
		if t.Amount <= 0 {
			continue
		}
		p.Tokens = append(p.Tokens, s.fallbackTokenBalance(chainID, t))
	}
	for _, n := range nfts {
		p.NFTs = append(p.NFTs, s.fallbackNFTBalance(chainID, n))
	}

	p.TokenCount = len(p.Tokens)
	p.NFTCount = len(p.NFTs)
	return p, nil
}

func (s *Service) fallbackTokenBalance(chainID domain.ChainID, t indexer.DebankToken) domain.TokenBalance {
	return domain.TokenBalance{
		Address:       t.ID,
		ChainID:       chainID,
		Amount:        t.Amount,
		RawAmount:     strconv.FormatFloat(t.RawAmount, 'f', -1, 64),
		RawAmountHex:  t.RawAmountHexStr,
		Decimals:      t.Decimals,
		Name:          t.Name,
		Symbol:        t.Symbol,
		Icon:          t.LogoURL,
		IsWhitelisted: s.registry.FindCurrency(chainID, t.ID) != nil,
	}
}

func (s *Service) fallbackNFTBalance(chainID domain.ChainID, n indexer.DebankNFT) domain.NFTBalance {
	name := n.Name
	if name == "" {
		name = "Token #" + n.InnerID
	}
	nb := domain.NFTBalance{
		ID:             n.InnerID,
		TokenID:        parseTokenID(n.InnerID),
		Address:        n.ContractID,
		ChainID:        chainID,
		CollectionID:   string(chainID) + ":" + n.ContractID,
		CollectionSlug: strings.ToLower(n.ContractID),
		Image:          n.Content,
		Name:           name,
		Attributes:     debankAttributes(n.Attributes),
	}
	if col := s.registry.FindCollection(chainID, n.ContractID); col != nil {
		nb.IsWhitelisted = true
		nb.CollectionName = col.Name
		nb.CollectionURL = col.MarketURL
	}
	return nb
}

func rawAmountHex(raw string) string {
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return ""
	}
	return "0x" + n.Text(16)
}

func parseTokenID(raw string) int64 {
	n, _ := strconv.ParseInt(raw, 10, 64)
	return n
}

func debankAttributes(traits []indexer.DebankTrait) []domain.NFTAttribute {
	attrs := make([]domain.NFTAttribute, 0, len(traits))
	for _, t := range traits {
		attrs = append(attrs, domain.NFTAttribute{TraitType: t.TraitType, Value: t.Value})
	}
	return attrs
}
