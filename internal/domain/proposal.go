package domain

import "time"

// ProposalStatus is the canonical lifecycle state of a swap proposal,
// mirrored from chain truth by the sync services.
type ProposalStatus string

// Proposal statuses. EXPIRED is derived, never stored.
const (
	ProposalStatusDeposited ProposalStatus = "DEPOSITED"
	ProposalStatusFulfilled ProposalStatus = "FULFILLED"
	ProposalStatusSwapped   ProposalStatus = "SWAPPED"
	ProposalStatusCanceled  ProposalStatus = "CANCELED"
	ProposalStatusWithdrawn ProposalStatus = "WITHDRAWN"
	ProposalStatusRedeemed  ProposalStatus = "REDEEMED"
	ProposalStatusExpired   ProposalStatus = "EXPIRED"
)

// Valid reports whether s is a storable status.
func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalStatusDeposited, ProposalStatusFulfilled, ProposalStatusSwapped,
		ProposalStatusCanceled, ProposalStatusWithdrawn, ProposalStatusRedeemed:
		return true
	}
	return false
}

// Terminal reports whether no further on-chain transition is possible.
func (s ProposalStatus) Terminal() bool {
	return s.Valid() && s != ProposalStatusDeposited
}

// SwapItemType discriminates fungible currency amounts from discrete NFTs.
type SwapItemType string

// Swap item types.
const (
	SwapItemTypeNFT      SwapItemType = "NFT"
	SwapItemTypeCurrency SwapItemType = "CURRENCY"
)

// SwapItem is a single asset inside a proposal side.
type SwapItem struct {
	ID              string       `json:"id"`
	MintAddress     string       `json:"mintAddress"`
	Amount          float64      `json:"amount"`
	ItemType        SwapItemType `json:"itemType"`
	OwnerAddress    string       `json:"ownerAddress,omitempty"`
	DisplayMetadata any          `json:"nftMetadata,omitempty"`
}

// SwapOption is one alternative set of assets the owner accepts in return.
type SwapOption struct {
	ID    string     `json:"id"`
	Items []SwapItem `json:"items"`
}

// SwapProposal is the off-chain mirror of an on-chain escrow offer.
// The blockchain is the source of truth; sync services are the only writers
// of status and other chain-derived fields.
type SwapProposal struct {
	ID                    string         `json:"id"`
	OwnerID               string         `json:"ownerId"`
	OwnerAddress          string         `json:"ownerAddress"`
	ChainID               ChainID        `json:"chainId"`
	Status                ProposalStatus `json:"status"`
	SwapItems             []SwapItem     `json:"swapItems"`
	ReceiveItems          []SwapOption   `json:"receiveItems"`
	FulfillBy             string         `json:"fulfillBy,omitempty"`
	FulfilledWithOptionID string         `json:"fulfilledWithOptionId,omitempty"`
	ExpiredAt             time.Time      `json:"expiredAt"`
	Note                  string         `json:"note,omitempty"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
}

// EffectiveStatus returns the status as seen by callers: a still-open
// proposal past its expiry reads as EXPIRED without being stored as such.
func (p *SwapProposal) EffectiveStatus(now time.Time) ProposalStatus {
	if p.Status == ProposalStatusDeposited && p.ExpiredAt.Before(now) {
		return ProposalStatusExpired
	}
	return p.Status
}
