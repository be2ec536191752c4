package service

import (
	"context"
	"log/slog"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/ledger"

	"github.com/shopspring/decimal"
)

type BridgeService struct {
	runner *ledger.Runner
	ledger *ledger.Ledger
	events *emitter
	l      *slog.Logger
}

func NewBridgeService(runner *ledger.Runner, l *ledger.Ledger, events *emitter, log *slog.Logger) *BridgeService {
	return &BridgeService{runner: runner, ledger: l, events: events, l: log}
}

// BridgeToken moves amount between two network entries of the caller's
// wallet. No fee, no on-chain transfer.
func (s *BridgeService) BridgeToken(ctx context.Context, userID string, from, to domain.Network, amount decimal.Decimal) (*domain.BridgeResult, error) {
	if userID == "" {
		return nil, domain.Validationf(domain.ErrMsgEmptyUserID)
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := validateNetwork(from); err != nil {
		return nil, err
	}
	if err := validateNetwork(to); err != nil {
		return nil, err
	}
	if from == to {
		return nil, domain.Validationf(domain.ErrMsgSameNetwork)
	}

	var reference string
	wallet, err := ledger.RunResult(ctx, s.runner, "bridge", func(tx ledger.Tx) (*domain.Wallets, error) {
		w, err := tx.WalletByOwner(userID)
		if err != nil {
			return nil, err
		}
		if w.IsFrozen {
			return nil, domain.ErrWalletFrozen
		}

		w, err = s.ledger.MoveBetweenNetworks(tx, w.ID, from, to, amount)
		if err != nil {
			return nil, err
		}

		reference = newReference()
		err = tx.CreateTransaction(&domain.Transactions{
			OwnerUserID: w.OwnerID,
			WalletID:    w.ID,
			Kind:        domain.TX_KIND_BRIDGE,
			Amount:      amount,
			Currency:    domain.CURRENCY_USDT,
			Status:      domain.TX_STATUS_COMPLETED,
			Reference:   reference,
			Metadata: domain.TxMetadata{
				FromNetwork: from.ToString(),
				ToNetwork:   to.ToString(),
				FromAddress: w.Network(from).Address,
				ToAddress:   w.Network(to).Address,
			},
		})
		if err != nil {
			return nil, err
		}
		return w, nil
	})
	if err != nil {
		return nil, err
	}

	s.l.Info("bridge settled", "user_id", userID, "from", from.ToString(), "to", to.ToString(), "amount", domain.FormatAmount(amount), "reference", reference)

	s.events.balanceChanged(ctx, wallet, reference, from, to)

	return &domain.BridgeResult{Reference: reference, Balances: domain.NewBalances(wallet, from, to)}, nil
}
