package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"swap-mirror/internal/balance"
	"swap-mirror/internal/domain"
	"swap-mirror/internal/metadata"
	"swap-mirror/internal/proposal"
	"swap-mirror/internal/registry"
	"swap-mirror/internal/storage/memory"
	"swap-mirror/internal/sync"
)

type fakeSyncer struct {
	proposals map[string]*domain.SwapProposal
	byOwner   *sync.Result

	syncedIDs    []string
	syncedOwners []string
}

func (f *fakeSyncer) SyncProposal(_ context.Context, id string, _ domain.SyncTrigger) (*domain.SwapProposal, error) {
	f.syncedIDs = append(f.syncedIDs, id)
	if p, ok := f.proposals[id]; ok {
		return p, nil
	}
	return nil, sync.ErrProposalNotOnChain
}

func (f *fakeSyncer) SyncByOwner(_ context.Context, owner string, _ domain.SyncTrigger) (*sync.Result, error) {
	f.syncedOwners = append(f.syncedOwners, owner)
	if f.byOwner != nil {
		return f.byOwner, nil
	}
	return &sync.Result{Items: []sync.ItemResult{}}, nil
}

type testEnv struct {
	server    *Server
	ts        *httptest.Server
	proposals *memory.ProposalStore
	solana    *fakeSyncer
	evm       *fakeSyncer
}

func newTestEnv(t *testing.T) *testEnv {
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

	logger := log.New(io.Discard, "", 0)
	proposals := memory.NewProposalStore()
	solanaSync := &fakeSyncer{proposals: map[string]*domain.SwapProposal{}}
	evmSync := &fakeSyncer{proposals: map[string]*domain.SwapProposal{}}

	srv := NewServer(Config{
		Proposals:  proposal.NewService(proposals, reg),
		Metadata:   metadata.NewService(memory.NewMetadataStore(), reg, nil, nil, nil, logger),
		Balances:   balance.NewService(reg, nil, nil, logger),
		Registry:   reg,
		SolanaSync: solanaSync,
		EVMSync:    map[domain.ChainID]ProposalSyncer{domain.ChainSei: evmSync},
		Logger:     logger,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{server: srv, ts: ts, proposals: proposals, solana: solanaSync, evm: evmSync}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.ts.URL+path, rd)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, out
}

func TestHealthAndStatus(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("health = %d %q", resp.StatusCode, body)
	}

	resp, body = env.do(t, http.MethodGet, "/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var st StatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Status != "running" || len(st.Chains) != 2 {
		t.Errorf("status = %+v", st)
	}
}

func TestCreateAndGetProposal(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/proposal", CreateProposalRequest{
		OwnerID:      "user-1",
		OwnerAddress: "0x1111111111111111111111111111111111111111",
		ChainID:      domain.ChainSei,
		ExpiredAt:    time.Now().Add(24 * time.Hour),
		Note:         "first trade",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create = %d %s", resp.StatusCode, body)
	}
	var created domain.SwapProposal
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Status != domain.ProposalStatusDeposited {
		t.Errorf("created = %+v", created)
	}

	resp, body = env.do(t, http.MethodGet, "/proposal/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get = %d", resp.StatusCode)
	}
	var got domain.SwapProposal
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Note != "first trade" {
		t.Errorf("note = %q", got.Note)
	}
}

func TestCreateProposalValidation(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/proposal", CreateProposalRequest{
		ChainID:   domain.ChainSei,
		ExpiredAt: time.Now().Add(time.Hour),
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing owner = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, env.ts.URL+"/proposal", strings.NewReader("{not json"))
	raw, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	raw.Body.Close()
	if raw.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body = %d", raw.StatusCode)
	}
}

func TestGetProposalNotFound(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, http.MethodGet, "/proposal/ghost", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestFindProposalsFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		owner := fmt.Sprintf("0x%040d", i%2)
		p := &domain.SwapProposal{
			ID:           fmt.Sprintf("prop-%d", i),
			OwnerAddress: owner,
			ChainID:      domain.ChainSei,
			Status:       domain.ProposalStatusDeposited,
			ExpiredAt:    time.Now().Add(time.Hour),
		}
		if err := env.proposals.Upsert(ctx, p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	resp, body := env.do(t, http.MethodGet, "/proposal?ownerAddresses="+fmt.Sprintf("0x%040d", 0), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("find = %d", resp.StatusCode)
	}
	var items []domain.SwapProposal
	if err := json.Unmarshal(body, &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d", len(items))
	}

	resp, _ = env.do(t, http.MethodGet, "/proposal?limit=nope", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit = %d", resp.StatusCode)
	}

	resp, body = env.do(t, http.MethodGet, "/proposal?statuses=DEPOSITED&limit=1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("find = %d", resp.StatusCode)
	}
	items = nil
	if err := json.Unmarshal(body, &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("limited len = %d", len(items))
	}
}

func TestUpdateAdditionsRoute(t *testing.T) {
	env := newTestEnv(t)

	_, body := env.do(t, http.MethodPost, "/proposal", CreateProposalRequest{
		OwnerAddress: "0x1111111111111111111111111111111111111111",
		ChainID:      domain.ChainSei,
		ExpiredAt:    time.Now().Add(24 * time.Hour),
	})
	var created domain.SwapProposal
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	note := "patched"
	resp, body := env.do(t, http.MethodPatch, "/proposal/"+created.ID+"/additions", UpdateAdditionsRequest{Note: &note})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch = %d %s", resp.StatusCode, body)
	}
	var updated domain.SwapProposal
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Note != "patched" {
		t.Errorf("note = %q", updated.Note)
	}
}

func TestSyncRoutes(t *testing.T) {
	env := newTestEnv(t)

	env.solana.proposals["sol-1"] = &domain.SwapProposal{
		ID: "sol-1", ChainID: domain.ChainSolana, Status: domain.ProposalStatusDeposited,
	}
	env.evm.proposals["sei-1"] = &domain.SwapProposal{
		ID: "sei-1", ChainID: domain.ChainSei, Status: domain.ProposalStatusSwapped,
	}

	resp, _ := env.do(t, http.MethodPatch, "/proposal/sol-1/sync", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("solana sync = %d", resp.StatusCode)
	}
	if len(env.solana.syncedIDs) != 1 || env.solana.syncedIDs[0] != "sol-1" {
		t.Errorf("solana synced = %v", env.solana.syncedIDs)
	}

	resp, body := env.do(t, http.MethodPatch, "/proposal/evm/sei-1/sync", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("evm sync = %d %s", resp.StatusCode, body)
	}
	var p domain.SwapProposal
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Status != domain.ProposalStatusSwapped {
		t.Errorf("status = %q", p.Status)
	}

	resp, _ = env.do(t, http.MethodPatch, "/proposal/evm/ghost/sync", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown evm sync = %d", resp.StatusCode)
	}
}

func TestSyncByOwnerRoute(t *testing.T) {
	env := newTestEnv(t)
	env.evm.byOwner = &sync.Result{
		Items:  []sync.ItemResult{{ProposalID: "sei-1", Outcome: domain.SyncOutcomeSynced}},
		Synced: 1,
	}

	resp, body := env.do(t, http.MethodPost, "/proposal/sei/0xOwner/sync", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sync by owner = %d %s", resp.StatusCode, body)
	}
	var res sync.Result
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Synced != 1 {
		t.Errorf("result = %+v", res)
	}

	resp, _ = env.do(t, http.MethodPost, "/proposal/dogecoin/0xOwner/sync", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown chain = %d", resp.StatusCode)
	}
}

func TestMetadataRoutes(t *testing.T) {
	env := newTestEnv(t)

	// No providers configured, so whitelisted tokens come from the
	// registry and everything else is a placeholder.
	resp, body := env.do(t, http.MethodGet, "/metadata/sei/token/0xE30feDd158A2e3b13e9badaeABaFc5516e95e8C7", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("token metadata = %d", resp.StatusCode)
	}
	var meta domain.TokenMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta.Symbol != "WSEI" || !meta.IsWhitelisted {
		t.Errorf("metadata = %+v", meta)
	}

	resp, body = env.do(t, http.MethodGet, "/metadata/sei/nft/0xUnknown/42", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("nft metadata = %d", resp.StatusCode)
	}
	var nft domain.NFTMetadata
	if err := json.Unmarshal(body, &nft); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if nft.Name != "Token #42" {
		t.Errorf("nft = %+v", nft)
	}

	resp, _ = env.do(t, http.MethodGet, "/metadata/dogecoin/token/0xToken", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown chain = %d", resp.StatusCode)
	}
}

func TestBalanceListRoutes(t *testing.T) {
	env := newTestEnv(t)

	// No balance providers configured, so the lists degrade to empty
	// instead of erroring.
	resp, body := env.do(t, http.MethodGet, "/portfolio/sei/0xOwner/tokens", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("token balances = %d", resp.StatusCode)
	}
	var tokens []domain.TokenBalance
	if err := json.Unmarshal(body, &tokens); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("tokens = %+v", tokens)
	}

	resp, body = env.do(t, http.MethodGet, "/portfolio/sei/0xOwner/nfts", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("nft balances = %d", resp.StatusCode)
	}
	var nfts []domain.NFTBalance
	if err := json.Unmarshal(body, &nfts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(nfts) != 0 {
		t.Errorf("nfts = %+v", nfts)
	}

	resp, _ = env.do(t, http.MethodGet, "/portfolio/dogecoin/0xOwner/tokens", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown chain = %d", resp.StatusCode)
	}
}

func TestPlatformConfigRoute(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/platform-config", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("platform config = %d", resp.StatusCode)
	}
	var cfg map[string]domain.ChainConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	sei, ok := cfg["sei"]
	if !ok || sei.MaxAllowedItems != 4 || len(sei.Currencies) == 0 {
		t.Errorf("sei config = %+v", sei)
	}
}
