package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/indexer"
	"swap-mirror/internal/registry"
	"swap-mirror/internal/storage"
	"swap-mirror/internal/storage/memory"
)

const (
	wseiAddress     = "0xE30feDd158A2e3b13e9badaeABaFc5516e95e8C7"
	yeiliensAddress = "0x59dd55283CC99fC9F50dA9E8cd0A680df2A5510f"
)

type fakeSeiProvider struct {
	tokenInfo *indexer.Erc20TokenInfo
	nftInfo   *indexer.Erc721TokenInfo
	err       error
	calls     int
}

func (f *fakeSeiProvider) GetErc20TokenInfo(_ context.Context, _ string) (*indexer.Erc20TokenInfo, error) {
	f.calls++
	return f.tokenInfo, f.err
}

func (f *fakeSeiProvider) GetErc721TokenInfo(_ context.Context, _ string) (*indexer.Erc721TokenInfo, error) {
	f.calls++
	return f.nftInfo, f.err
}

type fakeTokenProvider struct {
	token *indexer.DebankToken
	err   error
	calls int
}

func (f *fakeTokenProvider) GetTokenInfo(_ context.Context, _, _ string) (*indexer.DebankToken, error) {
	f.calls++
	return f.token, f.err
}

type fakeNFTProvider struct {
	nft   *indexer.OpenSeaNFT
	err   error
	calls int
}

func (f *fakeNFTProvider) GetNFT(_ context.Context, _, _, _ string) (*indexer.OpenSeaNFT, error) {
	f.calls++
	return f.nft, f.err
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(&registry.SystemConfig{
		Networks: map[string]registry.NetworkConfig{
			"sei":    {RPCURL: "https://evm-rpc.sei-apis.com", ChainID: 1329},
			"solana": {RPCURL: "https://api.mainnet-beta.solana.com"},
		},
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func newTestService(store storage.MetadataStore, reg *registry.Registry, sei SeiProvider, tokens TokenProvider, nfts NFTProvider) *Service {
	return NewService(store, reg, sei, tokens, nfts, log.New(io.Discard, "", 0))
}

func TestGetTokenMetadataFromProvider(t *testing.T) {
	store := memory.NewMetadataStore()
	logo := "https://example.com/plop.png"
	sei := &fakeSeiProvider{tokenInfo: &indexer.Erc20TokenInfo{
		TokenName:     "Plop",
		TokenSymbol:   "PLOP",
		TokenDecimals: "6",
		TokenLogo:     &logo,
	}}
	svc := newTestService(store, testRegistry(t), sei, nil, nil)

	meta, err := svc.GetTokenMetadata(context.Background(), domain.ChainSei, "0xPlop")
	if err != nil {
		t.Fatalf("GetTokenMetadata: %v", err)
	}
	if meta.Name != "Plop" || meta.Symbol != "PLOP" || meta.Decimals != 6 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Icon != logo {
		t.Errorf("icon = %q, want %q", meta.Icon, logo)
	}
	if meta.IsWhitelisted {
		t.Error("unlisted token reported as whitelisted")
	}

	// The resolution must be cached under the composite key.
	rec, err := store.GetByMintAddress(context.Background(), "sei:0xPlop")
	if err != nil {
		t.Fatalf("cache row missing: %v", err)
	}
	if rec.IsNFT {
		t.Error("token cached with IsNFT set")
	}
}

func TestGetTokenMetadataCacheHitSkipsProviders(t *testing.T) {
	store := memory.NewMetadataStore()
	sei := &fakeSeiProvider{err: errors.New("must not be called")}
	svc := newTestService(store, testRegistry(t), sei, nil, nil)

	cached := &domain.TokenMetadata{
		Address:  wseiAddress,
		ChainID:  domain.ChainSei,
		Name:     "Wrapped SEI",
		Symbol:   "WSEI",
		Decimals: 18,
	}
	rec, err := domain.TokenRecord(cached)
	if err != nil {
		t.Fatalf("build record: %v", err)
	}
	if err := store.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	meta, err := svc.GetTokenMetadata(context.Background(), domain.ChainSei, wseiAddress)
	if err != nil {
		t.Fatalf("GetTokenMetadata: %v", err)
	}
	if sei.calls != 0 {
		t.Errorf("provider called %d times on cache hit", sei.calls)
	}
	if meta.Name != "Wrapped SEI" {
		t.Errorf("name = %q", meta.Name)
	}
	// WSEI is whitelisted even though the cached row said otherwise.
	if !meta.IsWhitelisted {
		t.Error("whitelist flag not recomputed on cache hit")
	}
}

func TestGetTokenMetadataFallbackOnProviderError(t *testing.T) {
	store := memory.NewMetadataStore()
	sei := &fakeSeiProvider{err: errors.New("indexer down")}
	svc := newTestService(store, testRegistry(t), sei, nil, nil)

	meta, err := svc.GetTokenMetadata(context.Background(), domain.ChainSei, "0xMystery")
	if err != nil {
		t.Fatalf("GetTokenMetadata: %v", err)
	}
	if meta.Name != "Unknown Token" || meta.Symbol != "UNKNOWN" || meta.Decimals != 18 {
		t.Errorf("unexpected fallback: %+v", meta)
	}

	// The placeholder is persisted too, so a flapping indexer does not
	// get hammered on every render.
	if _, err := store.GetByMintAddress(context.Background(), "sei:0xMystery"); err != nil {
		t.Errorf("fallback not cached: %v", err)
	}
}

func TestGetTokenMetadataWhitelistFallbackWithoutProvider(t *testing.T) {
	store := memory.NewMetadataStore()
	sei := &fakeSeiProvider{err: errors.New("indexer down")}
	svc := newTestService(store, testRegistry(t), sei, nil, nil)

	meta, err := svc.GetTokenMetadata(context.Background(), domain.ChainSei, wseiAddress)
	if err != nil {
		t.Fatalf("GetTokenMetadata: %v", err)
	}
	if meta.Name != "Wrapped SEI" || meta.Symbol != "WSEI" || meta.Decimals != 18 {
		t.Errorf("whitelist description not used: %+v", meta)
	}
	if !meta.IsWhitelisted {
		t.Error("whitelisted currency not flagged")
	}
}

func TestGetTokenMetadataDebankForNonSei(t *testing.T) {
	store := memory.NewMetadataStore()
	tokens := &fakeTokenProvider{token: &indexer.DebankToken{
		ID:       "0xToken",
		Name:     "Example",
		Symbol:   "EXM",
		Decimals: 8,
		LogoURL:  "https://example.com/exm.png",
	}}
	svc := newTestService(store, testRegistry(t), nil, tokens, nil)

	meta, err := svc.GetTokenMetadata(context.Background(), domain.ChainSei, "0xToken")
	if err != nil {
		t.Fatalf("GetTokenMetadata: %v", err)
	}
	if tokens.calls != 1 {
		t.Errorf("token provider calls = %d, want 1", tokens.calls)
	}
	if meta.Symbol != "EXM" || meta.Decimals != 8 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
}

func TestGetTokenMetadataUnsupportedChain(t *testing.T) {
	svc := newTestService(memory.NewMetadataStore(), testRegistry(t), nil, nil, nil)
	if _, err := svc.GetTokenMetadata(context.Background(), "dogecoin", "0xSuchToken"); err == nil {
		t.Fatal("expected error for unsupported chain")
	}
}

func TestGetNFTMetadataFromSeiBlob(t *testing.T) {
	store := memory.NewMetadataStore()
	blob, _ := json.Marshal(map[string]any{
		"name":  "Yeilien #42",
		"image": "https://example.com/42.png",
		"attributes": []map[string]any{
			{"trait_type": "Background", "value": "Nebula"},
		},
	})
	raw := string(blob)
	sei := &fakeSeiProvider{nftInfo: &indexer.Erc721TokenInfo{
		TokenName:     "Yeiliens",
		TokenSymbol:   "YEILIEN",
		TokenMetadata: &raw,
	}}
	svc := newTestService(store, testRegistry(t), sei, nil, nil)

	meta, err := svc.GetNFTMetadata(context.Background(), domain.ChainSei, yeiliensAddress, "42")
	if err != nil {
		t.Fatalf("GetNFTMetadata: %v", err)
	}
	if meta.Name != "Yeilien #42" {
		t.Errorf("name = %q", meta.Name)
	}
	if meta.Image != "https://example.com/42.png" {
		t.Errorf("image = %q", meta.Image)
	}
	if len(meta.Attributes) != 1 || meta.Attributes[0].TraitType != "Background" {
		t.Errorf("attributes = %+v", meta.Attributes)
	}
	if meta.CollectionSlug != "yeilien" {
		t.Errorf("slug = %q", meta.CollectionSlug)
	}
	// Whitelisted collections override the indexer's display name.
	if meta.CollectionName != "Yeiliens" || !meta.IsWhitelisted {
		t.Errorf("collection = %q whitelisted = %v", meta.CollectionName, meta.IsWhitelisted)
	}

	rec, err := store.GetByMintAddress(context.Background(), "sei:"+yeiliensAddress+":42")
	if err != nil {
		t.Fatalf("cache row missing: %v", err)
	}
	if !rec.IsNFT {
		t.Error("nft cached without IsNFT")
	}
}

func TestGetNFTMetadataMalformedBlobStillResolves(t *testing.T) {
	store := memory.NewMetadataStore()
	raw := "{not json"
	sei := &fakeSeiProvider{nftInfo: &indexer.Erc721TokenInfo{
		TokenName:     "Saga",
		TokenSymbol:   "SAGA",
		TokenMetadata: &raw,
	}}
	svc := newTestService(store, testRegistry(t), sei, nil, nil)

	meta, err := svc.GetNFTMetadata(context.Background(), domain.ChainSei, "0xSaga", "7")
	if err != nil {
		t.Fatalf("GetNFTMetadata: %v", err)
	}
	if meta.Name != "Saga" {
		t.Errorf("name = %q, want contract-level name", meta.Name)
	}
}

func TestGetNFTMetadataFallback(t *testing.T) {
	store := memory.NewMetadataStore()
	sei := &fakeSeiProvider{err: errors.New("indexer down")}
	svc := newTestService(store, testRegistry(t), sei, nil, nil)

	meta, err := svc.GetNFTMetadata(context.Background(), domain.ChainSei, "0xABCDEF", "42")
	if err != nil {
		t.Fatalf("GetNFTMetadata: %v", err)
	}
	if meta.Name != "Token #42" {
		t.Errorf("name = %q", meta.Name)
	}
	if meta.CollectionName != "Unknown Collection" {
		t.Errorf("collection name = %q", meta.CollectionName)
	}
	if meta.CollectionSlug != "0xabcdef" {
		t.Errorf("slug = %q, want lowercased contract", meta.CollectionSlug)
	}
	if meta.TokenID != 42 {
		t.Errorf("token id = %d", meta.TokenID)
	}
}

func TestGetNFTMetadataOpenSeaForNonSei(t *testing.T) {
	store := memory.NewMetadataStore()
	nfts := &fakeNFTProvider{nft: &indexer.OpenSeaNFT{
		Identifier: "9",
		Collection: "cool-cats",
		Name:       "Cool Cat #9",
		ImageURL:   "https://example.com/9.png",
		Traits:     []indexer.OpenSeaTrait{{TraitType: "Hat", Value: "Beanie"}},
	}}
	svc := newTestService(store, testRegistry(t), nil, nil, nfts)

	meta, err := svc.GetNFTMetadata(context.Background(), domain.ChainSei, "0xCats", "9")
	if err != nil {
		t.Fatalf("GetNFTMetadata: %v", err)
	}
	if nfts.calls != 1 {
		t.Errorf("nft provider calls = %d, want 1", nfts.calls)
	}
	if meta.Name != "Cool Cat #9" || meta.CollectionSlug != "cool-cats" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if len(meta.Attributes) != 1 || meta.Attributes[0].TraitType != "Hat" {
		t.Errorf("attributes = %+v", meta.Attributes)
	}
}

func TestGetNFTMetadataCacheHitRecomputesWhitelist(t *testing.T) {
	store := memory.NewMetadataStore()
	sei := &fakeSeiProvider{err: errors.New("must not be called")}
	svc := newTestService(store, testRegistry(t), sei, nil, nil)

	cached := &domain.NFTMetadata{
		ID:      "1",
		TokenID: 1,
		Address: yeiliensAddress,
		ChainID: domain.ChainSei,
		Name:    "Yeilien #1",
	}
	rec, err := domain.NFTRecord(cached)
	if err != nil {
		t.Fatalf("build record: %v", err)
	}
	if err := store.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	meta, err := svc.GetNFTMetadata(context.Background(), domain.ChainSei, yeiliensAddress, "1")
	if err != nil {
		t.Fatalf("GetNFTMetadata: %v", err)
	}
	if sei.calls != 0 {
		t.Errorf("provider called %d times on cache hit", sei.calls)
	}
	if !meta.IsWhitelisted {
		t.Error("whitelist flag not recomputed on cache hit")
	}
}
