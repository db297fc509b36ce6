package solana

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// ProgramAccount is one account from getProgramAccounts.
type ProgramAccount struct {
	Pubkey  string
	Account AccountInfo
}

// AccountFilter narrows getProgramAccounts results. Zero-value fields
// are omitted from the RPC request.
type AccountFilter struct {
	// DataSize matches accounts with exactly this data length.
	DataSize uint64
	// MemcmpOffset and MemcmpBytes match accounts whose data at the
	// offset equals the base58-encoded bytes.
	MemcmpOffset int
	MemcmpBytes  string
}
