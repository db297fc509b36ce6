// Package main runs the swap proposal mirror service:
// - REST API: proposals, metadata, portfolios, platform config
// - Sync: on-demand chain reconciliation for Solana and EVM chains
// - Watcher (continuous): realtime Solana program account subscription
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swap-mirror/internal/balance"
	"swap-mirror/internal/domain"
	"swap-mirror/internal/evm"
	"swap-mirror/internal/httpapi"
	"swap-mirror/internal/indexer"
	"swap-mirror/internal/metadata"
	"swap-mirror/internal/proposal"
	"swap-mirror/internal/registry"
	"swap-mirror/internal/solana"
	"swap-mirror/internal/storage"
	chstore "swap-mirror/internal/storage/clickhouse"
	"swap-mirror/internal/storage/memory"
	"swap-mirror/internal/storage/migrations"
	pgstore "swap-mirror/internal/storage/postgres"
	"swap-mirror/internal/sync"
	"swap-mirror/internal/watcher"
)

// seitraceChainID is the upstream chain identifier of Sei mainnet.
const seitraceChainID = "pacific-1"

// stores holds the storage implementations behind the services.
type stores struct {
	proposals storage.ProposalStore
	metadata  storage.MetadataStore
	events    storage.SyncEventStore
}

func main() {
	configPath := flag.String("config", os.Getenv(registry.ConfigFileEnv), "Path to the JSON config file")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL and ClickHouse")
	addr := flag.String("addr", "", "HTTP listen address (overrides HOST:PORT from the config)")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *configPath == "" {
		logger.Fatalf("config file required: set %s or pass -config", registry.ConfigFileEnv)
	}
	cfg, err := registry.LoadConfigFile(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	reg, err := registry.New(cfg)
	if err != nil {
		logger.Fatalf("Failed to build registry: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, cleanup, err := createStores(ctx, cfg, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	serverCfg := httpapi.Config{
		Proposals: proposal.NewService(st.proposals, reg),
		Registry:  reg,
		EVMSync:   map[domain.ChainID]httpapi.ProposalSyncer{},
		Logger:    logger,
	}

	// Sei components: Seitrace for balances and metadata, Debank and
	// OpenSea as fallbacks, the escrow contract for sync.
	var seitrace *indexer.SeitraceClient
	var debank *indexer.DebankClient
	var opensea *indexer.OpenSeaClient
	if seiNet, ok := cfg.Network("sei"); ok {
		seitrace = indexer.NewSeitraceClient("", seiNet.SeitraceAPIKey, seitraceChainID)
		if seiNet.DebankAPIKey != "" {
			debank = indexer.NewDebankClient("", seiNet.DebankAPIKey)
		}
		if seiNet.OpenSeaAPIKey != "" {
			opensea = indexer.NewOpenSeaClient("", seiNet.OpenSeaAPIKey)
		}

		reader, err := evm.NewReader(ctx, seiNet.RPCURL, seiNet.SwapProgramAddress)
		if err != nil {
			logger.Fatalf("Failed to connect to sei RPC: %v", err)
		}
		defer reader.Close()
		serverCfg.EVMSync[domain.ChainSei] = sync.NewEVMService(st.proposals, st.events, reader, domain.ChainSei, logger)
		logger.Printf("Sei sync enabled, contract %s", seiNet.SwapProgramAddress)
	}

	// Solana components: JSON-RPC for sync, WebSocket for the watcher.
	if solNet, ok := cfg.Network("solana"); ok {
		rpc := solana.NewHTTPClient(solNet.RPCURL)
		solanaSync := sync.NewSolanaService(st.proposals, st.events, rpc, solNet.SwapProgramAddress, logger)
		serverCfg.SolanaSync = solanaSync
		logger.Printf("Solana sync enabled, program %s", solNet.SwapProgramAddress)

		if solNet.WSURL != "" {
			ws, err := solana.NewWSClient(ctx, solNet.WSURL, nil)
			if err != nil {
				logger.Fatalf("Failed to connect to solana websocket: %v", err)
			}
			defer ws.Close()

			w := watcher.New(ws, solanaSync, solNet.SwapProgramAddress, logger)
			go func() {
				if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Printf("Watcher stopped: %v", err)
				}
			}()
		}
	}

	metaLogger := log.New(os.Stdout, "[metadata] ", log.LstdFlags)
	serverCfg.Metadata = metadata.NewService(st.metadata, reg, seiProviderOrNil(seitrace), providerOrNil(debank), nftProviderOrNil(opensea), metaLogger)

	balLogger := log.New(os.Stdout, "[balance] ", log.LstdFlags)
	serverCfg.Balances = balance.NewService(reg, seiPortfolioOrNil(seitrace), fallbackOrNil(debank), balLogger)

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = net.JoinHostPort(cfg.Host, cfg.Port)
	}
	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: httpapi.NewServer(serverCfg).Handler(),
	}

	done := make(chan error, 1)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	logger.Printf("Starting HTTP server on %s", listenAddr)
	err = httpServer.ListenAndServe()
	done <- err

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// createStores builds the storage layer and returns a cleanup function.
func createStores(ctx context.Context, cfg *registry.SystemConfig, useMemory bool, logger *log.Logger) (*stores, func(), error) {
	if useMemory {
		logger.Println("Using in-memory storage")
		return &stores{
			proposals: memory.NewProposalStore(),
			metadata:  memory.NewMetadataStore(),
			events:    memory.NewSyncEventStore(),
		}, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	logger.Println("Connected to PostgreSQL and ClickHouse, migrations applied")
	cleanup := func() {
		pool.Close()
		chConn.Close()
	}
	return &stores{
		proposals: pgstore.NewProposalStore(pool),
		metadata:  pgstore.NewMetadataStore(pool),
		events:    chstore.NewSyncEventStore(chConn),
	}, cleanup, nil
}

// The OrNil helpers keep a typed nil from masquerading as a non-nil
// interface value when a client was never configured.
func seiProviderOrNil(c *indexer.SeitraceClient) metadata.SeiProvider {
	if c == nil {
		return nil
	}
	return c
}

func seiPortfolioOrNil(c *indexer.SeitraceClient) balance.SeiPortfolioProvider {
	if c == nil {
		return nil
	}
	return c
}

func providerOrNil(c *indexer.DebankClient) metadata.TokenProvider {
	if c == nil {
		return nil
	}
	return c
}

func nftProviderOrNil(c *indexer.OpenSeaClient) metadata.NFTProvider {
	if c == nil {
		return nil
	}
	return c
}

func fallbackOrNil(c *indexer.DebankClient) balance.FallbackPortfolioProvider {
	if c == nil {
		return nil
	}
	return c
}
