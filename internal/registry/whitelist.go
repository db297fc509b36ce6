package registry

import "swap-mirror/internal/domain"

// Curated whitelists. These are platform data, not deploy-time settings, so
// they live in code next to the chain config rather than in the config file.

var seiCurrencies = []domain.WhitelistedCurrency{
	{
		CurrencyID:    "wrapped-sei",
		Address:       "0xE30feDd158A2e3b13e9badaeABaFc5516e95e8C7",
		Name:          "Wrapped SEI",
		Symbol:        "WSEI",
		Decimals:      18,
		IsNativeToken: true,
		Icon:          "https://raw.githubusercontent.com/Seitrace/sei-assetlist/main/images/WSEI.png",
		ExplorerURL:   "https://seitrace.com/token/0xE30feDd158A2e3b13e9badaeABaFc5516e95e8C7?chain=pacific-1",
	},
	{
		CurrencyID:    "usd-coin",
		Address:       "0xe15fC38F6D8c56aF07bbCBe3BAf5708A2Bf42392",
		Name:          "USDC",
		Symbol:        "USDC",
		Decimals:      6,
		IsNativeToken: false,
		Icon:          "https://raw.githubusercontent.com/Seitrace/sei-assetlist/main/images/USDCoin.svg",
		ExplorerURL:   "https://seitrace.com/token/0xe15fC38F6D8c56aF07bbCBe3BAf5708A2Bf42392?chain=pacific-1",
	},
}

var seiCollections = []domain.WhitelistedCollection{
	{
		CollectionID: "yeiliens-4",
		Name:         "Yeiliens",
		MarketURL:    "https://magiceden.io/collections/sei/yeiliens-4",
		Addresses:    []string{"0x59dd55283CC99fC9F50dA9E8cd0A680df2A5510f"},
	},
	{
		CollectionID: "crafty-canine-1",
		Name:         "Crafty Canine",
		MarketURL:    "https://magiceden.io/collections/sei/crafty-canine-1",
		Addresses:    []string{"0xbCA0f3C93cD60c09274808BAddBcf6BDBeb139c0"},
	},
	{
		CollectionID: "foru-ai-genesis",
		Name:         "ForU AI Genesis",
		MarketURL:    "https://magiceden.io/collections/sei/foru-ai-genesis",
		Addresses:    []string{"0x1F963C268e711d09f7A9173532665d9c4491120A"},
	},
	{
		CollectionID: "webump-1",
		Name:         "WeBump",
		MarketURL:    "https://magiceden.io/collections/sei/webump-1",
		Addresses:    []string{"0xCF57971769E2abE438C9644655Bd7Ae0F2f9feC8"},
	},
	{
		CollectionID: "sagaofsei",
		Name:         "Saga",
		MarketURL:    "https://magiceden.io/collections/sei/sagaofsei",
		Addresses:    []string{"0xe8835036f4007a9781820c62C487d592AD9801be"},
	},
	{
		CollectionID: "0x19227e1ae76321be426538e05f3af81eabdf3f8a",
		Name:         "SeiPunks",
		MarketURL:    "https://magiceden.io/collections/sei/0x19227e1ae76321be426538e05f3af81eabdf3f8a",
		Addresses:    []string{"0x19227e1ae76321be426538e05f3af81eabdf3f8a"},
	},
	{
		CollectionID: "grand-gangsta-ids",
		Name:         "Grand Gangsta ID's",
		MarketURL:    "https://magiceden.io/collections/sei/grand-gangsta-ids",
		Addresses:    []string{"0x7090e51db5a63640c3F091DA1B4F098A908E8DFa"},
	},
	{
		CollectionID: "fuckersforlife",
		Name:         "Fuckers",
		MarketURL:    "https://magiceden.io/collections/sei/fuckersforlife",
		Addresses:    []string{"0x9a1e3d2a010Dbe576F9CccD57B2fC0dF96c8E44d"},
	},
	{
		CollectionID: "the-farmors-1",
		Name:         "The Farmors",
		MarketURL:    "https://magiceden.io/collections/sei/the-farmors-1",
		Addresses:    []string{"0x810A9d701d187FA7991659ca97279FbD49Dee8eB"},
	},
	{
		CollectionID: "0x368243ab380a664d55d64232ff20d2caa85cdb84",
		Name:         "Pixel Thumbs",
		MarketURL:    "https://magiceden.io/collections/sei/0x368243ab380a664d55d64232ff20d2caa85cdb84",
		Addresses:    []string{"0x368243ab380a664d55d64232ff20d2caa85cdb84"},
	},
	{
		CollectionID: "0xe6f70aa873d0c42cf17df178cefd893a2c5031b0",
		Name:         "Warp Bois",
		MarketURL:    "https://magiceden.io/collections/sei/0xe6f70aa873d0c42cf17df178cefd893a2c5031b0",
		Addresses:    []string{"0xe6f70aa873d0c42cf17df178cefd893a2c5031b0"},
	},
	{
		CollectionID: "theghostsei",
		Name:         "TheGhostSei",
		MarketURL:    "https://magiceden.io/collections/sei/theghostsei",
		Addresses:    []string{"0x80958DC45286f460eCbd174FD74e832Dd13AFED6"},
	},
}

var solanaCurrencies = []domain.WhitelistedCurrency{
	{
		CurrencyID:    "solana",
		Address:       "So11111111111111111111111111111111111111112",
		Name:          "Solana",
		Symbol:        "WSOL",
		Decimals:      9,
		IsNativeToken: true,
		Icon:          "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/So11111111111111111111111111111111111111112/icon.png",
		ExplorerURL:   "https://solscan.io/token/So11111111111111111111111111111111111111112",
	},
	{
		CurrencyID:    "bonk",
		Address:       "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
		Name:          "Bonk",
		Symbol:        "BONK",
		Decimals:      5,
		IsNativeToken: false,
		Icon:          "https://arweave.net/hQiPZOsRZXGXBJd_82PhVdlM_hACsT_q6wqwf5cSY7I",
		ExplorerURL:   "https://solscan.io/token/DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
	},
	{
		CurrencyID:    "usd-coin",
		Address:       "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Name:          "USD Coin",
		Symbol:        "USDC",
		Decimals:      6,
		IsNativeToken: false,
		Icon:          "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v/icon.png",
		ExplorerURL:   "https://solscan.io/token/EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	},
}

var solanaCollections = []domain.WhitelistedCollection{
	{
		CollectionID: "ancient8",
		Name:         "Ancient 8 - The Generals",
		MarketURL:    "https://magiceden.io/marketplace/ancient8",
		Addresses:    []string{"3cf5721fbaf1a81f69c6eeb833840e44e99955854d22f53ccd903581552e8e73"},
	},
	{
		CollectionID: "degods",
		Name:         "DeGods",
		MarketURL:    "https://magiceden.io/marketplace/degods",
		Addresses:    []string{"a38e8d9d1a16b625978803a7d4eb512bc20ff880c8fd6cc667944a3d7b5e4acf"},
	},
	{
		CollectionID: "angry-cats",
		Name:         "AngryCats",
		MarketURL:    "https://magiceden.io/marketplace/angry_cats_",
		Addresses: []string{
			"903c2d6bb7b35fc58e9df37a4367dcbbafb905d08bdfdf7394544105b8d83106",
			"ab1b1471c5777b22cfe5ed92f8f735d85daedc1a68ced613886211aaf0941625",
		},
	},
	{
		CollectionID: "bitmon-creatures",
		Name:         "Bitmons",
		MarketURL:    "https://magiceden.io/marketplace/bitmon_creatures",
		Addresses: []string{
			"be8d3f2975099d695c3b3414fedd95f85436ccd84687c1bbc0cc9e1175c704ba",
			"719cc0af4aeba42cb24c2053425a3969b3cd28a6f8b797be64f31c413edcad6d",
		},
	},
}
