package network

import (
	"custody/settlement/internal/domain"

	"github.com/shopspring/decimal"
)

const FALLBACK_FEE = "1.00"

// Spec is the static description of one network.
type Spec struct {
	ID        domain.Network
	ChainID   int64
	Contract  string
	Decimals  int32
	Fee       decimal.Decimal
	Endpoints []string
	Disabled  bool
}

// DefaultSpecs are the testnet deployments. Endpoints come from config.
func DefaultSpecs() []Spec {
	return []Spec{
		{ID: domain.NETWORK_ETHEREUM, ChainID: 5, Contract: "0x110a13FC3efE6A245B50102D2d529B792aC4c2B6", Decimals: 6, Fee: decimal.RequireFromString("2.50")},
		{ID: domain.NETWORK_BSC, ChainID: 97, Contract: "0x337610d27c682E347C9cD60BD4b3b107C9d34dDd", Decimals: 18, Fee: decimal.RequireFromString("0.50")},
		{ID: domain.NETWORK_TRON, Contract: "TG3XXyExBkPp9nzdajDZsozEu4BkaSJozs", Decimals: 6, Fee: decimal.RequireFromString("0.10")},
		{ID: domain.NETWORK_POLYGON, ChainID: 80001, Contract: "0xA02f6adc7926efeBBd59Fd43A84f4E0c0c91e832", Decimals: 6, Fee: decimal.RequireFromString("0.10")},
		{ID: domain.NETWORK_ARBITRUM, ChainID: 421613, Contract: "0x533046F316650C9B7C9F1E2Ec5B0Ef3CAF0F02D3", Decimals: 6, Fee: decimal.RequireFromString("0.30")},
		{ID: domain.NETWORK_TON, Decimals: 6, Fee: decimal.RequireFromString("0.05")},
		{ID: domain.NETWORK_SOLANA, Decimals: 6, Fee: decimal.RequireFromString("0.01")},
	}
}
