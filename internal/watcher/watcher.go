// Package watcher mirrors proposal changes in real time by subscribing
// to the swap program's account updates over WebSocket.
package watcher

import (
	"context"
	"errors"
	"log"

	"swap-mirror/internal/domain"
	"swap-mirror/internal/observability"
	"swap-mirror/internal/solana"
	"swap-mirror/internal/sync"
)

// Watcher applies Solana program account updates to the mirror as they
// happen, without waiting for a manual or periodic sync.
type Watcher struct {
	ws      solana.WSClient
	syncSvc *sync.SolanaService
	program string
	logger  *log.Logger
}

// New creates a watcher for the given swap program address.
func New(ws solana.WSClient, syncSvc *sync.SolanaService, program string, logger *log.Logger) *Watcher {
	return &Watcher{
		ws:      ws,
		syncSvc: syncSvc,
		program: program,
		logger:  logger,
	}
}

// Run subscribes to the program and applies notifications until the
// context is canceled or the subscription channel closes.
func (w *Watcher) Run(ctx context.Context) error {
	notifications, err := w.ws.SubscribeProgram(ctx, solana.ProgramFilter{Program: w.program})
	if err != nil {
		return err
	}
	w.logger.Printf("watching program %s", w.program)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				return errors.New("subscription channel closed")
			}
			w.handle(ctx, n)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, n solana.AccountNotification) {
	observability.RecordWatcherEvent()

	acct, err := solana.DecodeProposalAccount(n.Account.Data)
	if err != nil {
		// The program owns more account types than proposals.
		if !errors.Is(err, solana.ErrNotProposalAccount) {
			w.logger.Printf("decode account %s at slot %d: %v", n.Pubkey, n.Slot, err)
			observability.RecordWatcherDecodeError()
		}
		return
	}

	if _, err := w.syncSvc.ApplyAccount(ctx, acct, domain.SyncTriggerWatcher); err != nil {
		w.logger.Printf("apply proposal %s at slot %d: %v", acct.ID, n.Slot, err)
	}
}
