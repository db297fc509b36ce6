package indexer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
)

// DefaultSeitraceBaseURL is the Seitrace Insights API host.
const DefaultSeitraceBaseURL = "https://seitrace.com/insights"

// seiPageLimit is the maximum page size the Seitrace API allows.
const seiPageLimit = 50

// Erc20Balance is one fungible token position reported by Seitrace.
type Erc20Balance struct {
	RawAmount     string `json:"raw_amount"`
	Amount        string `json:"amount"`
	TokenUSDPrice string `json:"token_usd_price"`
	TotalUSDValue string `json:"total_usd_value"`
	TokenContract string `json:"token_contract"`
	TokenSymbol   string `json:"token_symbol"`
	TokenName     string `json:"token_name"`
	TokenDecimals string `json:"token_decimals"`
	TokenLogo     string `json:"token_logo"`
	TokenType     string `json:"token_type"`
}

// Erc721Token is one NFT position reported by Seitrace. TokenMetadata
// carries the raw metadata blob when the indexer has resolved it.
type Erc721Token struct {
	TokenID       string  `json:"token_id"`
	TokenContract string  `json:"token_contract"`
	TokenSymbol   string  `json:"token_symbol"`
	TokenName     string  `json:"token_name"`
	TokenMetadata *string `json:"token_metadata"`
}

// Erc20TokenInfo is contract-level token information from Seitrace.
type Erc20TokenInfo struct {
	TokenContractAddress string  `json:"token_contract_address"`
	TokenSymbol          string  `json:"token_symbol"`
	TokenName            string  `json:"token_name"`
	TokenDecimals        string  `json:"token_decimals"`
	TokenType            string  `json:"token_type"`
	TokenLogo            *string `json:"token_logo"`
	TokenTotalSupply     string  `json:"token_total_supply"`
}

// Erc721TokenInfo is contract-level collection information from Seitrace.
type Erc721TokenInfo struct {
	TokenContractAddress string  `json:"token_contract_address"`
	TokenSymbol          string  `json:"token_symbol"`
	TokenName            string  `json:"token_name"`
	TokenType            string  `json:"token_type"`
	TokenMetadata        *string `json:"token_metadata"`
}

type paginatedErc20 struct {
	Items          []Erc20Balance `json:"items"`
	NextPageParams map[string]any `json:"next_page_params"`
}

type paginatedErc721 struct {
	Items          []Erc721Token  `json:"items"`
	NextPageParams map[string]any `json:"next_page_params"`
}

// SeitracePortfolio is the combined asset listing for one wallet.
type SeitracePortfolio struct {
	Erc20  []Erc20Balance
	Erc721 []Erc721Token
}

// SeitraceClient queries the Seitrace Insights API for Sei token data.
type SeitraceClient struct {
	baseURL string
	apiKey  string
	chainID string
	rest    *restClient
}

// NewSeitraceClient creates a Seitrace client for the given upstream chain
// id, for example "pacific-1".
func NewSeitraceClient(baseURL, apiKey, chainID string, opts ...ClientOption) *SeitraceClient {
	if baseURL == "" {
		baseURL = DefaultSeitraceBaseURL
	}
	return &SeitraceClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		chainID: chainID,
		rest:    newRESTClient(opts...),
	}
}

func (c *SeitraceClient) header() http.Header {
	h := http.Header{}
	h.Set("x-api-key", c.apiKey)
	return h
}

func (c *SeitraceClient) balanceQuery(address string, limit, offset int) url.Values {
	q := url.Values{}
	q.Set("chain_id", c.chainID)
	q.Set("address", address)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

// GetErc20Balances fetches one page of fungible token balances.
func (c *SeitraceClient) GetErc20Balances(ctx context.Context, address string, limit, offset int) ([]Erc20Balance, bool, error) {
	var page paginatedErc20
	err := c.rest.getJSON(ctx, c.baseURL+"/api/v2/token/erc20/balances", c.balanceQuery(address, limit, offset), c.header(), &page)
	if err != nil {
		return nil, false, fmt.Errorf("get erc20 balances: %w", err)
	}
	return page.Items, page.NextPageParams != nil, nil
}

// GetErc721Balances fetches one page of NFT balances.
func (c *SeitraceClient) GetErc721Balances(ctx context.Context, address string, limit, offset int) ([]Erc721Token, bool, error) {
	var page paginatedErc721
	err := c.rest.getJSON(ctx, c.baseURL+"/api/v2/token/erc721/balances", c.balanceQuery(address, limit, offset), c.header(), &page)
	if err != nil {
		return nil, false, fmt.Errorf("get erc721 balances: %w", err)
	}
	return page.Items, page.NextPageParams != nil, nil
}

// GetAllErc20Balances drains every page of fungible balances for a wallet.
func (c *SeitraceClient) GetAllErc20Balances(ctx context.Context, address string) ([]Erc20Balance, error) {
	var all []Erc20Balance
	offset := 0

	for {
		items, hasMore, err := c.GetErc20Balances(ctx, address, seiPageLimit, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		// A short page means the indexer ran out of rows even if it
		// still advertised a next page.
		if !hasMore || len(items) < seiPageLimit {
			break
		}
		offset += seiPageLimit
	}

	return all, nil
}

// GetAllErc721Balances drains every page of NFT balances for a wallet.
func (c *SeitraceClient) GetAllErc721Balances(ctx context.Context, address string) ([]Erc721Token, error) {
	var all []Erc721Token
	offset := 0

	for {
		items, hasMore, err := c.GetErc721Balances(ctx, address, seiPageLimit, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if !hasMore || len(items) < seiPageLimit {
			break
		}
		offset += seiPageLimit
	}

	return all, nil
}

// GetErc20TokenInfo fetches contract-level token information.
func (c *SeitraceClient) GetErc20TokenInfo(ctx context.Context, contract string) (*Erc20TokenInfo, error) {
	q := url.Values{}
	q.Set("chain_id", c.chainID)
	q.Set("contract_address", contract)

	var info Erc20TokenInfo
	if err := c.rest.getJSON(ctx, c.baseURL+"/api/v2/token/erc20", q, c.header(), &info); err != nil {
		return nil, fmt.Errorf("get erc20 token info: %w", err)
	}
	return &info, nil
}

// GetErc721TokenInfo fetches contract-level collection information.
func (c *SeitraceClient) GetErc721TokenInfo(ctx context.Context, contract string) (*Erc721TokenInfo, error) {
	q := url.Values{}
	q.Set("chain_id", c.chainID)
	q.Set("contract_address", contract)

	var info Erc721TokenInfo
	if err := c.rest.getJSON(ctx, c.baseURL+"/api/v2/token/erc721", q, c.header(), &info); err != nil {
		return nil, fmt.Errorf("get erc721 token info: %w", err)
	}
	return &info, nil
}

// GetTokenPortfolio fetches fungible and NFT balances concurrently.
func (c *SeitraceClient) GetTokenPortfolio(ctx context.Context, address string) (*SeitracePortfolio, error) {
	var (
		wg        sync.WaitGroup
		erc20     []Erc20Balance
		erc721    []Erc721Token
		erc20Err  error
		erc721Err error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		erc20, erc20Err = c.GetAllErc20Balances(ctx, address)
	}()
	go func() {
		defer wg.Done()
		erc721, erc721Err = c.GetAllErc721Balances(ctx, address)
	}()
	wg.Wait()

	if erc20Err != nil {
		return nil, erc20Err
	}
	if erc721Err != nil {
		return nil, erc721Err
	}

	return &SeitracePortfolio{Erc20: erc20, Erc721: erc721}, nil
}
