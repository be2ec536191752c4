package service

import (
	"context"
	"log/slog"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/ledger"
)

type FreezeService struct {
	runner *ledger.Runner
	l      *slog.Logger
}

func NewFreezeService(runner *ledger.Runner, l *slog.Logger) *FreezeService {
	return &FreezeService{runner: runner, l: l}
}

func (s *FreezeService) FreezeWallet(ctx context.Context, userID string) error {
	return s.set(ctx, byOwner(userID), true)
}

func (s *FreezeService) UnfreezeWallet(ctx context.Context, userID string) error {
	return s.set(ctx, byOwner(userID), false)
}

func (s *FreezeService) FreezeByID(ctx context.Context, walletID uint) error {
	return s.set(ctx, byID(walletID), true)
}

func (s *FreezeService) UnfreezeByID(ctx context.Context, walletID uint) error {
	return s.set(ctx, byID(walletID), false)
}

type walletLookup func(tx ledger.Tx) (*domain.Wallets, error)

func byOwner(userID string) walletLookup {
	return func(tx ledger.Tx) (*domain.Wallets, error) {
		if userID == "" {
			return nil, domain.Validationf(domain.ErrMsgEmptyUserID)
		}
		return tx.WalletByOwner(userID)
	}
}

func byID(id uint) walletLookup {
	return func(tx ledger.Tx) (*domain.Wallets, error) {
		return tx.WalletByID(id)
	}
}

// set is idempotent; balances are not touched.
func (s *FreezeService) set(ctx context.Context, find walletLookup, frozen bool) error {
	return s.runner.Run(ctx, "freeze", func(tx ledger.Tx) error {
		w, err := find(tx)
		if err != nil {
			return err
		}
		if w.IsFrozen == frozen {
			return nil
		}

		w.IsFrozen = frozen
		if err := tx.SaveWallet(w); err != nil {
			return err
		}

		s.l.Info("wallet freeze changed", "wallet_id", w.ID, "frozen", frozen)
		return nil
	})
}
