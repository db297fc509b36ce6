package balance

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/indexer"
	"swap-mirror/internal/registry"
)

const wseiAddress = "0xE30feDd158A2e3b13e9badaeABaFc5516e95e8C7"

type fakeSeiPortfolio struct {
	portfolio *indexer.SeitracePortfolio
	err       error
	calls     int
}

func (f *fakeSeiPortfolio) GetTokenPortfolio(_ context.Context, _ string) (*indexer.SeitracePortfolio, error) {
	f.calls++
	return f.portfolio, f.err
}

type fakeFallback struct {
	tokens    []indexer.DebankToken
	nfts      []indexer.DebankNFT
	tokensErr error
	nftsErr   error
}

func (f *fakeFallback) GetTokenBalances(_ context.Context, _, _ string) ([]indexer.DebankToken, error) {
	return f.tokens, f.tokensErr
}

func (f *fakeFallback) GetNFTBalances(_ context.Context, _, _ string) ([]indexer.DebankNFT, error) {
	return f.nfts, f.nftsErr
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(&registry.SystemConfig{
		Networks: map[string]registry.NetworkConfig{
			"sei": {RPCURL: "https://evm-rpc.sei-apis.com", ChainID: 1329},
		},
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func newTestService(reg *registry.Registry, sei SeiPortfolioProvider, fallback FallbackPortfolioProvider) *Service {
	return NewService(reg, sei, fallback, log.New(io.Discard, "", 0))
}

func TestSeiPortfolio(t *testing.T) {
	blob := `{"name":"Yeilien #7","image":"https://example.com/7.png"}`
	sei := &fakeSeiPortfolio{portfolio: &indexer.SeitracePortfolio{
		Erc20: []indexer.Erc20Balance{
			{
				RawAmount:     "42000000",
				Amount:        "42",
				TotalUSDValue: "42.5",
				TokenContract: wseiAddress,
				TokenSymbol:   "WSEI",
				TokenName:     "Wrapped SEI",
				TokenDecimals: "6",
			},
			{
				RawAmount:     "0",
				Amount:        "0",
				TokenContract: "0xDust",
				TokenSymbol:   "DUST",
			},
		},
		Erc721: []indexer.Erc721Token{
			{
				TokenID:       "7",
				TokenContract: "0x59dd55283CC99fC9F50dA9E8cd0A680df2A5510f",
				TokenSymbol:   "YEILIEN",
				TokenName:     "Yeiliens",
				TokenMetadata: &blob,
			},
		},
	}}
	svc := newTestService(testRegistry(t), sei, nil)

	p, err := svc.GetPortfolio(context.Background(), domain.ChainSei, "0xOwner")
	if err != nil {
		t.Fatalf("GetPortfolio: %v", err)
	}
	if p.TokenCount != 1 {
		t.Fatalf("token count = %d, want zero balance dropped", p.TokenCount)
	}

	tok := p.Tokens[0]
	if tok.Amount != 42 || tok.RawAmount != "42000000" || tok.Decimals != 6 {
		t.Errorf("unexpected token balance: %+v", tok)
	}
	if tok.RawAmountHex != "0x280de80" {
		t.Errorf("raw amount hex = %q", tok.RawAmountHex)
	}
	if !tok.IsWhitelisted {
		t.Error("WSEI not flagged as whitelisted")
	}
	if p.TotalUSD != 42.5 {
		t.Errorf("total usd = %v", p.TotalUSD)
	}

	if p.NFTCount != 1 {
		t.Fatalf("nft count = %d", p.NFTCount)
	}
	nft := p.NFTs[0]
	if nft.Name != "Yeilien #7" || nft.Image != "https://example.com/7.png" {
		t.Errorf("metadata blob not applied: %+v", nft)
	}
	if nft.CollectionSlug != "yeilien" {
		t.Errorf("slug = %q", nft.CollectionSlug)
	}
	if !nft.IsWhitelisted || nft.CollectionName != "Yeiliens" {
		t.Errorf("whitelist annotation missing: %+v", nft)
	}
}

func TestSeiNFTNameFallback(t *testing.T) {
	sei := &fakeSeiPortfolio{portfolio: &indexer.SeitracePortfolio{
		Erc721: []indexer.Erc721Token{
			{TokenID: "3", TokenContract: "0xNoMeta", TokenSymbol: "NM", TokenName: "NoMeta"},
		},
	}}
	svc := newTestService(testRegistry(t), sei, nil)

	p, err := svc.GetPortfolio(context.Background(), domain.ChainSei, "0xOwner")
	if err != nil {
		t.Fatalf("GetPortfolio: %v", err)
	}
	if got := p.NFTs[0].Name; got != "NoMeta #3" {
		t.Errorf("name = %q, want collection name with token id", got)
	}
}

func TestFallbackPortfolio(t *testing.T) {
	fallback := &fakeFallback{
		tokens: []indexer.DebankToken{
			{ID: "0xTok", Name: "Example", Symbol: "EXM", Decimals: 8, Amount: 1.5, RawAmount: 150000000, RawAmountHexStr: "0x8f0d180"},
			{ID: "0xZero", Symbol: "ZRO", Amount: 0},
		},
		nfts: []indexer.DebankNFT{
			{ContractID: "0xCats", InnerID: "9", Content: "https://example.com/9.png"},
		},
	}
	svc := newTestService(testRegistry(t), nil, fallback)

	p, err := svc.GetPortfolio(context.Background(), domain.ChainSei, "0xOwner")
	if err != nil {
		t.Fatalf("GetPortfolio: %v", err)
	}
	if p.TokenCount != 1 {
		t.Fatalf("token count = %d", p.TokenCount)
	}
	tok := p.Tokens[0]
	if tok.RawAmount != "150000000" || tok.RawAmountHex != "0x8f0d180" {
		t.Errorf("raw amounts: %+v", tok)
	}

	if p.NFTCount != 1 {
		t.Fatalf("nft count = %d", p.NFTCount)
	}
	nft := p.NFTs[0]
	if nft.Name != "Token #9" {
		t.Errorf("name = %q", nft.Name)
	}
	if nft.CollectionSlug != "0xcats" {
		t.Errorf("slug = %q", nft.CollectionSlug)
	}
}

func TestFallbackUsedWhenSeiFails(t *testing.T) {
	sei := &fakeSeiPortfolio{err: errors.New("indexer down")}
	fallback := &fakeFallback{
		tokens: []indexer.DebankToken{{ID: "0xTok", Symbol: "EXM", Amount: 2}},
	}
	svc := newTestService(testRegistry(t), sei, fallback)

	p, err := svc.GetPortfolio(context.Background(), domain.ChainSei, "0xOwner")
	if err != nil {
		t.Fatalf("GetPortfolio: %v", err)
	}
	if sei.calls != 1 {
		t.Errorf("sei calls = %d", sei.calls)
	}
	if p.TokenCount != 1 || p.Tokens[0].Symbol != "EXM" {
		t.Errorf("fallback not used: %+v", p.Tokens)
	}
}

func TestFallbackDegradesOnPartialFailure(t *testing.T) {
	fallback := &fakeFallback{
		tokens:  []indexer.DebankToken{{ID: "0xTok", Symbol: "EXM", Amount: 2}},
		nftsErr: errors.New("nft endpoint down"),
	}
	svc := newTestService(testRegistry(t), nil, fallback)

	p, err := svc.GetPortfolio(context.Background(), domain.ChainSei, "0xOwner")
	if err != nil {
		t.Fatalf("GetPortfolio: %v", err)
	}
	if p.TokenCount != 1 || p.NFTCount != 0 {
		t.Errorf("partial failure not degraded: %+v", p)
	}
}

func TestPortfolioErrorsWhenEverythingFails(t *testing.T) {
	fallback := &fakeFallback{
		tokensErr: errors.New("down"),
		nftsErr:   errors.New("down"),
	}
	svc := newTestService(testRegistry(t), nil, fallback)

	if _, err := svc.GetPortfolio(context.Background(), domain.ChainSei, "0xOwner"); err == nil {
		t.Fatal("expected error when both endpoints fail")
	}
}

func TestGetTokenBalances(t *testing.T) {
	sei := &fakeSeiPortfolio{portfolio: &indexer.SeitracePortfolio{
		Erc20: []indexer.Erc20Balance{
			{RawAmount: "42000000", Amount: "42", TokenContract: wseiAddress, TokenSymbol: "WSEI", TokenDecimals: "6"},
			{RawAmount: "0", Amount: "0", TokenContract: "0xDust", TokenSymbol: "DUST"},
		},
	}}
	svc := newTestService(testRegistry(t), sei, nil)

	tokens, err := svc.GetTokenBalances(context.Background(), domain.ChainSei, "0xOwner")
	if err != nil {
		t.Fatalf("GetTokenBalances: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("len = %d, want zero balance dropped", len(tokens))
	}
	if tokens[0].Symbol != "WSEI" || tokens[0].RawAmountHex != "0x280de80" {
		t.Errorf("unexpected balance: %+v", tokens[0])
	}
}

func TestGetNftBalances(t *testing.T) {
	sei := &fakeSeiPortfolio{portfolio: &indexer.SeitracePortfolio{
		Erc721: []indexer.Erc721Token{
			{TokenID: "7", TokenContract: "0x59dd55283CC99fC9F50dA9E8cd0A680df2A5510f", TokenSymbol: "YEILIEN", TokenName: "Yeiliens"},
		},
	}}
	svc := newTestService(testRegistry(t), sei, nil)

	nfts, err := svc.GetNftBalances(context.Background(), domain.ChainSei, "0xOwner")
	if err != nil {
		t.Fatalf("GetNftBalances: %v", err)
	}
	if len(nfts) != 1 || !nfts[0].IsWhitelisted {
		t.Fatalf("unexpected nfts: %+v", nfts)
	}
}

func TestBalanceListsDegradeToEmpty(t *testing.T) {
	sei := &fakeSeiPortfolio{err: errors.New("indexer down")}
	fallback := &fakeFallback{
		tokensErr: errors.New("down"),
		nftsErr:   errors.New("down"),
	}
	svc := newTestService(testRegistry(t), sei, fallback)

	tokens, err := svc.GetTokenBalances(context.Background(), domain.ChainSei, "0xOwner")
	if err != nil {
		t.Fatalf("GetTokenBalances: %v", err)
	}
	if tokens == nil || len(tokens) != 0 {
		t.Errorf("tokens = %v, want empty list", tokens)
	}

	nfts, err := svc.GetNftBalances(context.Background(), domain.ChainSei, "0xOwner")
	if err != nil {
		t.Fatalf("GetNftBalances: %v", err)
	}
	if nfts == nil || len(nfts) != 0 {
		t.Errorf("nfts = %v, want empty list", nfts)
	}
}

func TestBalanceListsFallBackWhenSeiFails(t *testing.T) {
	sei := &fakeSeiPortfolio{err: errors.New("indexer down")}
	fallback := &fakeFallback{
		tokens: []indexer.DebankToken{{ID: "0xTok", Symbol: "EXM", Amount: 2}},
		nfts:   []indexer.DebankNFT{{ContractID: "0xCats", InnerID: "9"}},
	}
	svc := newTestService(testRegistry(t), sei, fallback)

	tokens, err := svc.GetTokenBalances(context.Background(), domain.ChainSei, "0xOwner")
	if err != nil {
		t.Fatalf("GetTokenBalances: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Symbol != "EXM" {
		t.Errorf("fallback not used: %+v", tokens)
	}

	nfts, err := svc.GetNftBalances(context.Background(), domain.ChainSei, "0xOwner")
	if err != nil {
		t.Fatalf("GetNftBalances: %v", err)
	}
	if len(nfts) != 1 || nfts[0].Name != "Token #9" {
		t.Errorf("fallback not used: %+v", nfts)
	}
}

func TestBalanceListsUnsupportedChains(t *testing.T) {
	svc := newTestService(testRegistry(t), nil, nil)

	if _, err := svc.GetTokenBalances(context.Background(), "dogecoin", "0xOwner"); err == nil {
		t.Error("expected error for unknown chain")
	}
	if _, err := svc.GetNftBalances(context.Background(), domain.ChainSolana, "Owner111"); err == nil {
		t.Error("expected error for non-EVM chain")
	}
}

func TestPortfolioUnsupportedChains(t *testing.T) {
	svc := newTestService(testRegistry(t), nil, nil)

	if _, err := svc.GetPortfolio(context.Background(), "dogecoin", "0xOwner"); err == nil {
		t.Error("expected error for unknown chain")
	}
	if _, err := svc.GetPortfolio(context.Background(), domain.ChainSolana, "Owner111"); err == nil {
		t.Error("expected error for non-EVM chain")
	}
}
