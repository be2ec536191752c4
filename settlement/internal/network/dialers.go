package network

import (
	"context"

	"custody/settlement/internal/chains/eth"
	"custody/settlement/internal/chains/sol"
	"custody/settlement/internal/chains/ton"
	"custody/settlement/internal/chains/tron"
	"custody/settlement/internal/domain"
)

// Dialer opens a connection to one endpoint of spec.
type Dialer func(ctx context.Context, spec Spec, endpoint string) (Conn, error)

func DefaultDialers(tronApiKey string) map[domain.Family]Dialer {
	return map[domain.Family]Dialer{
		domain.FAMILY_EVM: func(ctx context.Context, spec Spec, endpoint string) (Conn, error) {
			c, err := eth.Connect(ctx, eth.Options{URL: endpoint, ChainID: spec.ChainID, Contract: spec.Contract, Decimals: spec.Decimals})
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		domain.FAMILY_SOLANA: func(ctx context.Context, _ Spec, endpoint string) (Conn, error) {
			c, err := sol.Connect(ctx, endpoint)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		domain.FAMILY_TON: func(ctx context.Context, _ Spec, endpoint string) (Conn, error) {
			c, err := ton.Connect(ctx, endpoint)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		domain.FAMILY_TRON: func(ctx context.Context, _ Spec, endpoint string) (Conn, error) {
			c, err := tron.Connect(ctx, endpoint, tronApiKey)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	}
}
