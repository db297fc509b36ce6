// Package httpapi serves the REST interface of the proposal mirror.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"swap-mirror/internal/balance"
	"swap-mirror/internal/domain"
	"swap-mirror/internal/metadata"
	"swap-mirror/internal/observability"
	"swap-mirror/internal/proposal"
	"swap-mirror/internal/registry"
	"swap-mirror/internal/storage"
	"swap-mirror/internal/sync"
)

// ProposalSyncer mirrors proposals from one chain on demand.
type ProposalSyncer interface {
	SyncProposal(ctx context.Context, proposalID string, trigger domain.SyncTrigger) (*domain.SwapProposal, error)
	SyncByOwner(ctx context.Context, ownerAddress string, trigger domain.SyncTrigger) (*sync.Result, error)
}

// Server wires the services into HTTP routes.
type Server struct {
	proposals  *proposal.Service
	metadata   *metadata.Service
	balances   *balance.Service
	registry   *registry.Registry
	solanaSync ProposalSyncer
	evmSync    map[domain.ChainID]ProposalSyncer
	logger     *log.Logger
	started    time.Time
}

// Config carries the server dependencies. SolanaSync and EVMSync may be
// nil or empty when the deployment does not serve those chains.
type Config struct {
	Proposals  *proposal.Service
	Metadata   *metadata.Service
	Balances   *balance.Service
	Registry   *registry.Registry
	SolanaSync ProposalSyncer
	EVMSync    map[domain.ChainID]ProposalSyncer
	Logger     *log.Logger
}

// NewServer creates the HTTP server.
func NewServer(cfg Config) *Server {
	return &Server{
		proposals:  cfg.Proposals,
		metadata:   cfg.Metadata,
		balances:   cfg.Balances,
		registry:   cfg.Registry,
		solanaSync: cfg.SolanaSync,
		evmSync:    cfg.EVMSync,
		logger:     cfg.Logger,
		started:    time.Now(),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, "GET /health", s.handleHealth)
	mux.Handle("GET /metrics", observability.Handler())
	s.handle(mux, "GET /status", s.handleStatus)

	s.handle(mux, "GET /proposal", s.handleFindProposals)
	s.handle(mux, "GET /proposal/{proposalId}", s.handleGetProposal)
	s.handle(mux, "POST /proposal", s.handleCreateProposal)
	s.handle(mux, "PATCH /proposal/{proposalId}/additions", s.handleUpdateAdditions)

	s.handle(mux, "POST /proposal/{chainId}/{ownerAddress}/sync", s.handleSyncByOwner)
	s.handle(mux, "PATCH /proposal/{proposalId}/sync", s.handleSyncSolanaProposal)
	s.handle(mux, "PATCH /proposal/evm/{proposalId}/sync", s.handleSyncEVMProposal)

	s.handle(mux, "GET /metadata/{chainId}/token/{address}", s.handleTokenMetadata)
	s.handle(mux, "GET /metadata/{chainId}/nft/{contract}/{tokenId}", s.handleNFTMetadata)
	s.handle(mux, "GET /portfolio/{chainId}/{ownerAddress}", s.handlePortfolio)
	s.handle(mux, "GET /portfolio/{chainId}/{ownerAddress}/tokens", s.handleTokenBalances)
	s.handle(mux, "GET /portfolio/{chainId}/{ownerAddress}/nfts", s.handleNftBalances)

	s.handle(mux, "GET /platform-config", s.handlePlatformConfig)

	return mux
}

// handle registers an instrumented route.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h(rec, r)
		observability.RecordHTTPRequest(pattern, strconv.Itoa(rec.code), time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status  string   `json:"status"`
	Uptime  string   `json:"uptime"`
	Started string   `json:"started"`
	Chains  []string `json:"chains"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	chains := []string{}
	for _, id := range s.registry.Chains() {
		chains = append(chains, string(id))
	}

	s.writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "running",
		Uptime:  time.Since(s.started).String(),
		Started: s.started.UTC().Format(time.RFC3339),
		Chains:  chains,
	})
}

func (s *Server) handlePlatformConfig(w http.ResponseWriter, _ *http.Request) {
	cfg := map[string]*domain.ChainConfig{}
	for _, id := range s.registry.Chains() {
		if c, ok := s.registry.ChainConfig(id); ok {
			cfg[string(id)] = c
		}
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleFindProposals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := storage.ProposalFilter{
		ChainID: domain.ChainID(q.Get("chainId")),
		Search:  q.Get("search"),
	}
	for _, raw := range q["ownerAddresses"] {
		for _, addr := range strings.Split(raw, ",") {
			if addr != "" {
				filter.OwnerAddresses = append(filter.OwnerAddresses, addr)
			}
		}
	}
	for _, raw := range q["statuses"] {
		for _, st := range strings.Split(raw, ",") {
			if st != "" {
				filter.Statuses = append(filter.Statuses, domain.ProposalStatus(st))
			}
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = n
	}

	items, err := s.proposals.Find(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	p, err := s.proposals.FindByID(r.Context(), r.PathValue("proposalId"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// CreateProposalRequest is the POST /proposal body.
type CreateProposalRequest struct {
	OwnerID      string              `json:"ownerId"`
	OwnerAddress string              `json:"ownerAddress"`
	ChainID      domain.ChainID      `json:"chainId"`
	ExpiredAt    time.Time           `json:"expiredAt"`
	Note         string              `json:"note"`
	SwapItems    []domain.SwapItem   `json:"swapItems"`
	ReceiveItems []domain.SwapOption `json:"receiveItems"`
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	var req CreateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.proposals.Create(r.Context(), proposal.CreateParams{
		OwnerID:      req.OwnerID,
		OwnerAddress: req.OwnerAddress,
		ChainID:      req.ChainID,
		ExpiredAt:    req.ExpiredAt,
		Note:         req.Note,
		SwapItems:    req.SwapItems,
		ReceiveItems: req.ReceiveItems,
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, p)
}

// UpdateAdditionsRequest is the PATCH /proposal/{id}/additions body.
type UpdateAdditionsRequest struct {
	Note      *string    `json:"note"`
	ExpiredAt *time.Time `json:"expiredAt"`
}

func (s *Server) handleUpdateAdditions(w http.ResponseWriter, r *http.Request) {
	var req UpdateAdditionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.proposals.UpdateAdditions(r.Context(), r.PathValue("proposalId"), proposal.Additions{
		Note:      req.Note,
		ExpiredAt: req.ExpiredAt,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSyncByOwner(w http.ResponseWriter, r *http.Request) {
	chainID := domain.ChainID(r.PathValue("chainId"))
	syncer := s.syncerFor(chainID)
	if syncer == nil {
		s.writeError(w, http.StatusBadRequest, "unsupported chain "+string(chainID))
		return
	}

	res, err := syncer.SyncByOwner(r.Context(), r.PathValue("ownerAddress"), domain.SyncTriggerManual)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSyncSolanaProposal(w http.ResponseWriter, r *http.Request) {
	if s.solanaSync == nil {
		s.writeError(w, http.StatusBadRequest, "solana is not configured")
		return
	}
	p, err := s.solanaSync.SyncProposal(r.Context(), r.PathValue("proposalId"), domain.SyncTriggerManual)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSyncEVMProposal(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("proposalId")

	// The proposal carries its chain when it is already mirrored;
	// otherwise every configured EVM chain is tried in turn.
	if p, err := s.proposals.FindByID(r.Context(), proposalID); err == nil {
		if syncer, ok := s.evmSync[p.ChainID]; ok {
			s.respondSync(w, r, syncer, proposalID)
			return
		}
	}

	for _, syncer := range s.evmSync {
		p, err := syncer.SyncProposal(r.Context(), proposalID, domain.SyncTriggerManual)
		if err == nil {
			s.writeJSON(w, http.StatusOK, p)
			return
		}
		if !errors.Is(err, sync.ErrProposalNotOnChain) {
			s.writeServiceError(w, err)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "proposal not found on any configured chain")
}

func (s *Server) respondSync(w http.ResponseWriter, r *http.Request, syncer ProposalSyncer, proposalID string) {
	p, err := syncer.SyncProposal(r.Context(), proposalID, domain.SyncTriggerManual)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleTokenMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := s.metadata.GetTokenMetadata(r.Context(), domain.ChainID(r.PathValue("chainId")), r.PathValue("address"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleNFTMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := s.metadata.GetNFTMetadata(r.Context(), domain.ChainID(r.PathValue("chainId")), r.PathValue("contract"), r.PathValue("tokenId"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := s.balances.GetPortfolio(r.Context(), domain.ChainID(r.PathValue("chainId")), r.PathValue("ownerAddress"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleTokenBalances(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.balances.GetTokenBalances(r.Context(), domain.ChainID(r.PathValue("chainId")), r.PathValue("ownerAddress"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, tokens)
}

func (s *Server) handleNftBalances(w http.ResponseWriter, r *http.Request) {
	nfts, err := s.balances.GetNftBalances(r.Context(), domain.ChainID(r.PathValue("chainId")), r.PathValue("ownerAddress"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, nfts)
}

func (s *Server) syncerFor(chainID domain.ChainID) ProposalSyncer {
	if chainID == domain.ChainSolana {
		return s.solanaSync
	}
	if syncer, ok := s.evmSync[chainID]; ok {
		return syncer
	}
	return nil
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, errorResponse{Error: msg})
}

// writeServiceError maps service errors onto HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, sync.ErrProposalNotOnChain):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Printf("internal error: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
