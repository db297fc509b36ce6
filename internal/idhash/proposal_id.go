package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"swap-mirror/internal/domain"
)

// ComputeProposalID computes a deterministic proposal id using SHA256.
// Formula: SHA256(chain_id|owner_address|created_at_ns|nonce)
// Returns hex-encoded hash truncated to 32 characters, short enough for
// on-chain string fields while keeping collisions negligible.
func ComputeProposalID(
	chainID domain.ChainID,
	ownerAddress string,
	createdAtNs int64,
	nonce uint64,
) string {
	data := fmt.Sprintf("%s|%s|%d|%d",
		string(chainID),
		ownerAddress,
		createdAtNs,
		nonce,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:32]
}

// ComputeItemID computes a deterministic swap item id using SHA256.
// Formula: SHA256(proposal_id|mint_address|index)
// Returns hex-encoded hash truncated to 32 characters.
func ComputeItemID(
	proposalID string,
	mintAddress string,
	index int,
) string {
	data := fmt.Sprintf("%s|%s|%d",
		proposalID,
		mintAddress,
		index,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:32]
}
