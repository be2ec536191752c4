package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/keys"
	"custody/settlement/internal/ledger"

	"github.com/shopspring/decimal"
)

type ProvisionerService struct {
	runner *ledger.Runner
	chain  Chain
	users  UserDirectory
	keys   *keys.Set
	config ProvisioningConfig
	l      *slog.Logger
}

func NewProvisionerService(runner *ledger.Runner, chain Chain, users UserDirectory, keySet *keys.Set, config ProvisioningConfig, l *slog.Logger) *ProvisionerService {
	return &ProvisionerService{runner: runner, chain: chain, users: users, keys: keySet, config: config, l: l}
}

func (s *ProvisionerService) Provision(ctx context.Context, userID string) (*domain.WalletView, error) {
	if userID == "" {
		return nil, domain.Validationf(domain.ErrMsgEmptyUserID)
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	// checked before funding so a duplicate call spends no gas
	if err := s.runner.Store().InTx(ctx, func(tx ledger.Tx) error {
		return checkNoWallet(tx, userID)
	}); err != nil {
		return nil, err
	}

	primary, err := keys.NewEvmKeypair()
	if err != nil {
		return nil, err
	}

	hash, err := s.fund(ctx, primary.Address)
	if err != nil {
		s.l.Error("bootstrap gas funding failed", "user_id", userID, "address", primary.Address, "error", err)
		return nil, err
	}
	s.l.Info("bootstrap gas funded", "user_id", userID, "address", primary.Address, "tx_hash", hash)

	wallet := &domain.Wallets{
		OwnerID:           &userID,
		PrimaryAddress:    primary.Address,
		PrimaryPrivateKey: primary.PrivateKey,
		GlobalBalance:     decimal.Zero,
	}

	for i, n := range domain.SupportedNetworks {
		kp, err := s.keys.Derive(n, primary)
		if err != nil {
			return nil, fmt.Errorf("derive %s keypair: %w", n.ToString(), err)
		}
		wallet.Networks = append(wallet.Networks, domain.WalletNetworks{
			Network:    n.ToString(),
			Address:    kp.Address,
			PrivateKey: kp.PrivateKey,
			IsActive:   true,
			Balance:    decimal.Zero,
			Position:   i,
		})
	}

	err = s.runner.Run(ctx, "provision", func(tx ledger.Tx) error {
		if err := checkNoWallet(tx, userID); err != nil {
			return err
		}
		w := wallet.Clone()
		if err := tx.CreateWallet(w); err != nil {
			return err
		}
		wallet = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.l.Info("wallet provisioned", "user_id", userID, "wallet_id", wallet.ID)
	return domain.NewWalletView(wallet), nil
}

func checkNoWallet(tx ledger.Tx, userID string) error {
	_, err := tx.WalletByOwner(userID)
	if err == nil {
		return domain.ErrWalletAlreadyExists
	}
	if errors.Is(err, domain.ErrWalletNotFound) {
		return nil
	}
	return err
}

// fund sends the bootstrap gas and waits for its confirmation.
func (s *ProvisionerService) fund(ctx context.Context, to string) (string, error) {
	n := s.config.FundingNetwork
	if !s.chain.Available(n) {
		return "", fmt.Errorf("%w: %s", domain.ErrFundingNetworkUnavailable, n.ToString())
	}

	hash, err := s.chain.SendNative(ctx, n, s.config.FundingKey, to, s.config.BootstrapGas)
	if err != nil {
		if errors.Is(err, domain.ErrNetworkUnavailable) {
			return "", fmt.Errorf("%w: %w", domain.ErrFundingNetworkUnavailable, err)
		}
		return "", fmt.Errorf("fund bootstrap gas: %w", err)
	}
	return hash, nil
}
