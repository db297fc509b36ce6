// Package main provides a one-shot batch sync tool: it reconciles the
// mirror rows of the given proposals or owners against chain state and
// exits. Useful for backfills and cron-driven reconciliation.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/evm"
	"swap-mirror/internal/registry"
	"swap-mirror/internal/solana"
	"swap-mirror/internal/storage"
	chstore "swap-mirror/internal/storage/clickhouse"
	"swap-mirror/internal/storage/migrations"
	pgstore "swap-mirror/internal/storage/postgres"
	"swap-mirror/internal/sync"
)

// proposalSyncer is the common surface of the per-chain sync services.
type proposalSyncer interface {
	SyncProposal(ctx context.Context, proposalID string, trigger domain.SyncTrigger) (*domain.SwapProposal, error)
	SyncByOwner(ctx context.Context, ownerAddress string, trigger domain.SyncTrigger) (*sync.Result, error)
}

func main() {
	configPath := flag.String("config", os.Getenv(registry.ConfigFileEnv), "Path to the JSON config file")
	chain := flag.String("chain", "", "Chain to sync (solana or sei)")
	proposals := flag.String("proposals", "", "Comma-separated proposal ids to sync")
	owners := flag.String("owners", "", "Comma-separated owner addresses to sync")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall run timeout")

	flag.Parse()

	logger := log.New(os.Stdout, "[sync] ", log.LstdFlags)

	if *configPath == "" {
		logger.Fatalf("config file required: set %s or pass -config", registry.ConfigFileEnv)
	}
	if *chain == "" {
		logger.Fatal("-chain is required")
	}
	if *proposals == "" && *owners == "" {
		logger.Fatal("nothing to sync: pass -proposals or -owners")
	}

	cfg, err := registry.LoadConfigFile(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	var events storage.SyncEventStore
	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		logger.Printf("ClickHouse unavailable, continuing without audit log: %v", err)
	} else {
		defer chConn.Close()
		events = chstore.NewSyncEventStore(chConn)
	}

	proposalStore := pgstore.NewProposalStore(pool)
	chainID := domain.ChainID(*chain)

	var syncer proposalSyncer
	switch {
	case chainID == domain.ChainSolana:
		net, ok := cfg.Network("solana")
		if !ok {
			logger.Fatal("solana is not configured")
		}
		rpc := solana.NewHTTPClient(net.RPCURL)
		syncer = sync.NewSolanaService(proposalStore, events, rpc, net.SwapProgramAddress, logger)

	case chainID.Valid():
		net, ok := cfg.Network(*chain)
		if !ok {
			logger.Fatalf("%s is not configured", *chain)
		}
		reader, err := evm.NewReader(ctx, net.RPCURL, net.SwapProgramAddress)
		if err != nil {
			logger.Fatalf("Failed to connect to %s RPC: %v", *chain, err)
		}
		defer reader.Close()
		syncer = sync.NewEVMService(proposalStore, events, reader, chainID, logger)

	default:
		logger.Fatalf("unsupported chain %q", *chain)
	}

	synced, failed := 0, 0

	for _, id := range splitList(*proposals) {
		if _, err := syncer.SyncProposal(ctx, id, domain.SyncTriggerBatch); err != nil {
			logger.Printf("proposal %s: %v", id, err)
			failed++
			continue
		}
		synced++
	}

	for _, owner := range splitList(*owners) {
		res, err := syncer.SyncByOwner(ctx, owner, domain.SyncTriggerBatch)
		if err != nil {
			logger.Printf("owner %s: %v", owner, err)
			failed++
			continue
		}
		logger.Printf("owner %s: %d synced, %d skipped, %d failed", owner, res.Synced, res.Skipped, res.Failed)
		synced += res.Synced
		failed += res.Failed
	}

	logger.Printf("Done: %d synced, %d failed", synced, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
