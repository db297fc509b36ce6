package registry

import (
	"fmt"

	"swap-mirror/internal/domain"
)

// Registry is the immutable platform configuration handed to every component
// at construction time. Collection and currency lookups are O(1) via index
// maps built once here; addresses are case-sensitive as given by the chain.
type Registry struct {
	cfg    *SystemConfig
	chains map[domain.ChainID]*domain.ChainConfig

	collectionByAddr map[domain.ChainID]map[string]*domain.WhitelistedCollection
	currencyByAddr   map[domain.ChainID]map[string]*domain.WhitelistedCurrency
}

// New builds a Registry from a validated system config.
func New(cfg *SystemConfig) (*Registry, error) {
	chains, err := buildChainConfigs(cfg)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		cfg:              cfg,
		chains:           chains,
		collectionByAddr: make(map[domain.ChainID]map[string]*domain.WhitelistedCollection),
		currencyByAddr:   make(map[domain.ChainID]map[string]*domain.WhitelistedCurrency),
	}

	for chainID, chain := range chains {
		cols := make(map[string]*domain.WhitelistedCollection)
		for i := range chain.Collections {
			col := &chain.Collections[i]
			for _, addr := range col.Addresses {
				cols[addr] = col
			}
		}
		r.collectionByAddr[chainID] = cols

		curs := make(map[string]*domain.WhitelistedCurrency)
		for i := range chain.Currencies {
			cur := &chain.Currencies[i]
			curs[cur.Address] = cur
		}
		r.currencyByAddr[chainID] = curs
	}

	return r, nil
}

// Config returns the raw system config.
func (r *Registry) Config() *SystemConfig {
	return r.cfg
}

// ChainConfig returns the platform configuration for a chain.
func (r *Registry) ChainConfig(chainID domain.ChainID) (*domain.ChainConfig, bool) {
	c, ok := r.chains[chainID]
	return c, ok
}

// Chains returns the configured chain ids.
func (r *Registry) Chains() []domain.ChainID {
	ids := make([]domain.ChainID, 0, len(r.chains))
	for id := range r.chains {
		ids = append(ids, id)
	}
	return ids
}

// FindCollection returns the whitelisted collection holding the given
// contract address, or nil if the address is not whitelisted.
func (r *Registry) FindCollection(chainID domain.ChainID, address string) *domain.WhitelistedCollection {
	return r.collectionByAddr[chainID][address]
}

// FindCurrency returns the whitelisted currency at the given address, or nil
// if the address is not whitelisted.
func (r *Registry) FindCurrency(chainID domain.ChainID, address string) *domain.WhitelistedCurrency {
	return r.currencyByAddr[chainID][address]
}

// buildChainConfigs assembles per-chain platform config: network parameters
// come from the NETWORKS section, the curated whitelists are part of the
// platform itself.
func buildChainConfigs(cfg *SystemConfig) (map[domain.ChainID]*domain.ChainConfig, error) {
	chains := make(map[domain.ChainID]*domain.ChainConfig)

	if net, ok := cfg.Network("sei"); ok {
		chains[domain.ChainSei] = &domain.ChainConfig{
			ChainID:           domain.ChainSei,
			ChainName:         "Sei",
			ChainIcon:         "https://seitrace.com/images/sei.svg",
			RPCURL:            net.RPCURL,
			NumericChainID:    net.ChainID,
			ProgramAddress:    net.SwapProgramAddress,
			Multicall3Address: net.Multicall3Address,
			ExplorerURL:       "https://seitrace.com/",
			MaxAllowedItems:   4,
			MaxAllowedOptions: 4,
			Currencies:        seiCurrencies,
			Collections:       seiCollections,
		}
	}

	if net, ok := cfg.Network("solana"); ok {
		chains[domain.ChainSolana] = &domain.ChainConfig{
			ChainID:           domain.ChainSolana,
			ChainName:         "Solana",
			ChainIcon:         "https://assets.coingecko.com/coins/images/4128/small/solana.png",
			RPCURL:            net.RPCURL,
			ProgramAddress:    net.SwapProgramAddress,
			ExplorerURL:       "https://solscan.io/",
			MaxAllowedItems:   4,
			MaxAllowedOptions: 4,
			Currencies:        solanaCurrencies,
			Collections:       solanaCollections,
		}
	}

	if len(chains) == 0 {
		return nil, fmt.Errorf("APPLICATION_BOOT::NO_SUPPORTED_NETWORKS_CONFIGURED")
	}
	return chains, nil
}
