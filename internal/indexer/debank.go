package indexer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultDebankBaseURL is the Debank Cloud Pro API host.
const DefaultDebankBaseURL = "https://pro-openapi.debank.com"

// DebankToken is one fungible token position or token description from
// Debank. The same shape serves both the balance listing and the token
// info endpoint; balance-only fields are zero for the latter.
type DebankToken struct {
	ID              string  `json:"id"`
	Chain           string  `json:"chain"`
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	Decimals        int     `json:"decimals"`
	LogoURL         string  `json:"logo_url"`
	Amount          float64 `json:"amount"`
	RawAmount       float64 `json:"raw_amount"`
	RawAmountHexStr string  `json:"raw_amount_hex_str"`
}

// DebankNFT is one NFT position from Debank.
type DebankNFT struct {
	ID         string        `json:"id"`
	ContractID string        `json:"contract_id"`
	InnerID    string        `json:"inner_id"`
	Chain      string        `json:"chain"`
	Name       string        `json:"name"`
	Content    string        `json:"content"`
	Attributes []DebankTrait `json:"attributes"`
}

// DebankTrait is one display attribute of a Debank NFT.
type DebankTrait struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// DebankClient queries the Debank Cloud API. It serves as the balance and
// token metadata fallback for chains Seitrace does not index.
type DebankClient struct {
	baseURL string
	apiKey  string
	rest    *restClient
}

// NewDebankClient creates a Debank client.
func NewDebankClient(baseURL, apiKey string, opts ...ClientOption) *DebankClient {
	if baseURL == "" {
		baseURL = DefaultDebankBaseURL
	}
	return &DebankClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		rest:    newRESTClient(opts...),
	}
}

func (c *DebankClient) header() http.Header {
	h := http.Header{}
	h.Set("AccessKey", c.apiKey)
	return h
}

// GetTokenBalances lists all fungible token positions of a wallet on one chain.
func (c *DebankClient) GetTokenBalances(ctx context.Context, chain, ownerAddress string) ([]DebankToken, error) {
	q := url.Values{}
	q.Set("id", ownerAddress)
	q.Set("chain_id", chain)
	q.Set("is_all", "false")

	var tokens []DebankToken
	if err := c.rest.getJSON(ctx, c.baseURL+"/v1/user/token_list", q, c.header(), &tokens); err != nil {
		return nil, fmt.Errorf("get token balances: %w", err)
	}
	return tokens, nil
}

// GetNFTBalances lists all NFT positions of a wallet on one chain.
func (c *DebankClient) GetNFTBalances(ctx context.Context, chain, ownerAddress string) ([]DebankNFT, error) {
	q := url.Values{}
	q.Set("id", ownerAddress)
	q.Set("chain_id", chain)

	var nfts []DebankNFT
	if err := c.rest.getJSON(ctx, c.baseURL+"/v1/user/nft_list", q, c.header(), &nfts); err != nil {
		return nil, fmt.Errorf("get nft balances: %w", err)
	}
	return nfts, nil
}

// GetTokenInfo fetches the description of a single token contract.
func (c *DebankClient) GetTokenInfo(ctx context.Context, chain, tokenAddress string) (*DebankToken, error) {
	q := url.Values{}
	q.Set("chain_id", chain)
	q.Set("id", tokenAddress)

	var token DebankToken
	if err := c.rest.getJSON(ctx, c.baseURL+"/v1/token", q, c.header(), &token); err != nil {
		return nil, fmt.Errorf("get token info: %w", err)
	}
	return &token, nil
}
