package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface the mirror needs.
type RPCClient interface {
	// GetAccountInfo retrieves a single account. Returns nil if the
	// account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetProgramAccounts retrieves all accounts owned by a program,
	// optionally narrowed by data filters.
	GetProgramAccounts(ctx context.Context, program string, filters []AccountFilter) ([]ProgramAccount, error)

	// GetSlot retrieves the current slot.
	GetSlot(ctx context.Context) (int64, error)
}
