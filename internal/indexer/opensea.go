package indexer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultOpenSeaBaseURL is the OpenSea v2 API host.
const DefaultOpenSeaBaseURL = "https://api.opensea.io"

// OpenSeaNFT is a single NFT description from OpenSea.
type OpenSeaNFT struct {
	Identifier string         `json:"identifier"`
	Collection string         `json:"collection"`
	Contract   string         `json:"contract"`
	Name       string         `json:"name"`
	ImageURL   string         `json:"image_url"`
	Traits     []OpenSeaTrait `json:"traits"`
}

// OpenSeaTrait is one display attribute of an OpenSea NFT.
type OpenSeaTrait struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

type openSeaNFTResponse struct {
	NFT OpenSeaNFT `json:"nft"`
}

// OpenSeaClient queries the OpenSea v2 API. It serves as the NFT metadata
// fallback for chains Seitrace does not index.
type OpenSeaClient struct {
	baseURL string
	apiKey  string
	rest    *restClient
}

// NewOpenSeaClient creates an OpenSea client.
func NewOpenSeaClient(baseURL, apiKey string, opts ...ClientOption) *OpenSeaClient {
	if baseURL == "" {
		baseURL = DefaultOpenSeaBaseURL
	}
	return &OpenSeaClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		rest:    newRESTClient(opts...),
	}
}

// GetNFT fetches a single NFT by chain, contract and token id.
func (c *OpenSeaClient) GetNFT(ctx context.Context, chain, contract, tokenID string) (*OpenSeaNFT, error) {
	h := http.Header{}
	h.Set("X-API-KEY", c.apiKey)

	endpoint := fmt.Sprintf("%s/api/v2/chain/%s/contract/%s/nfts/%s",
		c.baseURL, url.PathEscape(chain), url.PathEscape(contract), url.PathEscape(tokenID))

	var resp openSeaNFTResponse
	if err := c.rest.getJSON(ctx, endpoint, nil, h, &resp); err != nil {
		return nil, fmt.Errorf("get opensea nft: %w", err)
	}
	return &resp.NFT, nil
}
