package domain

// ChainID identifies a supported blockchain.
type ChainID string

// Supported chains.
const (
	ChainSolana ChainID = "solana"
	ChainSei    ChainID = "sei"
)

// Valid reports whether the chain id is one of the supported chains.
func (c ChainID) Valid() bool {
	switch c {
	case ChainSolana, ChainSei:
		return true
	}
	return false
}

// IsEVM reports whether the chain uses the EVM account/contract model.
func (c ChainID) IsEVM() bool {
	return c != ChainSolana
}

// WhitelistedCollection is a curated NFT collection eligible for proposals.
type WhitelistedCollection struct {
	CollectionID string   `json:"collectionId"`
	Name         string   `json:"name"`
	MarketURL    string   `json:"marketUrl"`
	Icon         string   `json:"icon"`
	Addresses    []string `json:"addresses"`
}

// WhitelistedCurrency is a curated fungible token eligible for proposals.
type WhitelistedCurrency struct {
	CurrencyID    string `json:"currencyId"`
	Address       string `json:"address"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Decimals      int    `json:"decimals"`
	IsNativeToken bool   `json:"isNativeToken"`
	Icon          string `json:"icon"`
	ExplorerURL   string `json:"explorerUrl"`
}

// ChainConfig is the static per-chain platform configuration.
type ChainConfig struct {
	ChainID           ChainID                 `json:"chainId"`
	ChainName         string                  `json:"chainName"`
	ChainIcon         string                  `json:"chainIcon"`
	RPCURL            string                  `json:"rpcUrl"`
	NumericChainID    int64                   `json:"numericChainId"`
	ProgramAddress    string                  `json:"programAddress"`
	Multicall3Address string                  `json:"multicall3Address"`
	ExplorerURL       string                  `json:"explorerUrl"`
	MaxAllowedItems   int                     `json:"maxAllowedItems"`
	MaxAllowedOptions int                     `json:"maxAllowedOptions"`
	Collections       []WhitelistedCollection `json:"collections"`
	Currencies        []WhitelistedCurrency   `json:"currencies"`
}
