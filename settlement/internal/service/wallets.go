package service

import (
	"context"
	"log/slog"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/ledger"

	"github.com/shopspring/decimal"
)

type WalletsService struct {
	store  ledger.Store
	ledger *ledger.Ledger
	l      *slog.Logger
}

func NewWalletsService(store ledger.Store, l *ledger.Ledger, log *slog.Logger) *WalletsService {
	return &WalletsService{store: store, ledger: l, l: log}
}

// Get returns the wallet of userID with every entry read through the
// ledger: live on-chain for evm, stored otherwise. A failed read shows a
// zero balance with Error set and the stored value in StoredBalance.
func (s *WalletsService) Get(ctx context.Context, userID string, network domain.Network) (*domain.WalletView, error) {
	if userID == "" {
		return nil, domain.Validationf(domain.ErrMsgEmptyUserID)
	}

	var wallet *domain.Wallets
	if err := s.store.InTx(ctx, func(tx ledger.Tx) (err error) {
		wallet, err = tx.WalletByOwner(userID)
		return err
	}); err != nil {
		return nil, err
	}

	view := domain.NewWalletView(wallet)

	if !network.IsNone() {
		filtered := view.Networks[:0]
		for _, n := range view.Networks {
			if n.Network == network.ToString() {
				filtered = append(filtered, n)
			}
		}
		if len(filtered) == 0 {
			return nil, domain.Validationf(domain.ErrMsgNetworkInactive, network.ToString())
		}
		view.Networks = filtered
	}

	for i := range view.Networks {
		n := &view.Networks[i]
		balance, err := s.ledger.GetBalance(ctx, domain.StrToNetwork(n.Network), n.Address)
		if err != nil {
			s.l.Debug("live balance unavailable", "network", n.Network, "wallet_id", wallet.ID, "error", err)
			n.Balance = domain.FormatAmount(decimal.Zero)
			n.Error = err.Error()
			continue
		}
		n.Balance = domain.FormatAmount(balance)
	}

	return view, nil
}
