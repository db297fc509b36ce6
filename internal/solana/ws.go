package solana

import "context"

// WSClient defines the Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeProgram subscribes to account changes of a program.
	SubscribeProgram(ctx context.Context, filter ProgramFilter) (<-chan AccountNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// ProgramFilter defines a programSubscribe filter.
type ProgramFilter struct {
	// Program is the base58 program id whose accounts to watch.
	Program string
	// Filters optionally narrow the watched accounts.
	Filters []AccountFilter
}

// AccountNotification is one program account change.
type AccountNotification struct {
	Pubkey  string
	Slot    int64
	Account AccountInfo
}
