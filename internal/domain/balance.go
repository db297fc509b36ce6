package domain

// TokenBalance is an ephemeral fungible balance for one wallet on one chain.
// Derived per-request from indexer responses; never persisted.
type TokenBalance struct {
	Address       string  `json:"address"`
	ChainID       ChainID `json:"chainId"`
	Amount        float64 `json:"amount"`
	RawAmount     string  `json:"rawAmount"`
	RawAmountHex  string  `json:"rawAmountHex"`
	Decimals      int     `json:"decimals"`
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Icon          string  `json:"icon"`
	IsWhitelisted bool    `json:"isWhiteListed"`
}

// NFTBalance is an ephemeral NFT holding for one wallet on one chain.
type NFTBalance struct {
	ID             string         `json:"id"`
	TokenID        int64          `json:"tokenId"`
	Address        string         `json:"address"`
	ChainID        ChainID        `json:"chainId"`
	CollectionID   string         `json:"collectionId"`
	CollectionSlug string         `json:"collectionSlug"`
	CollectionName string         `json:"collectionName,omitempty"`
	CollectionURL  string         `json:"collectionUrl,omitempty"`
	IsWhitelisted  bool           `json:"isWhiteListed"`
	Image          string         `json:"image"`
	Name           string         `json:"name"`
	Attributes     []NFTAttribute `json:"attributes"`
}

// Portfolio is the combined holdings of a wallet on one chain.
type Portfolio struct {
	Address    string         `json:"address"`
	ChainID    ChainID        `json:"chainId"`
	Tokens     []TokenBalance `json:"tokens"`
	NFTs       []NFTBalance   `json:"nfts"`
	TokenCount int            `json:"tokenCount"`
	NFTCount   int            `json:"nftCount"`
	TotalUSD   float64        `json:"totalUsdValue"`
}
