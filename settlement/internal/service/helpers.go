package service

import (
	"errors"
	"fmt"
	"time"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newReference() string {
	return fmt.Sprintf("TRX-%d-%s", time.Now().UnixMilli(), uuid.NewString())
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.Validationf(domain.ErrMsgInvalidAmount)
	}
	if !amount.Equal(amount.Truncate(domain.TOKEN_DECIMALS)) {
		return domain.Validationf(domain.ErrMsgAmountPrecision, domain.TOKEN_DECIMALS)
	}
	return nil
}

func validateNetwork(n domain.Network) error {
	if n.IsNone() || n.Family().IsUnknown() {
		return fmt.Errorf("%w: %s", domain.ErrUnknownNetwork, n.ToString())
	}
	return nil
}

// findWallet looks up the wallet tracking address on network. For evm
// networks a wallet owning the address as its primary address also matches.
func findWallet(tx ledger.Tx, network domain.Network, address string) (*domain.Wallets, error) {
	w, err := tx.WalletByAddress(network, address)
	if err == nil || !errors.Is(err, domain.ErrWalletNotFound) {
		return w, err
	}
	if network.Family() != domain.FAMILY_EVM {
		return nil, err
	}
	return tx.WalletByPrimaryAddress(address)
}

// resolveWallet is findWallet that appends the missing evm network entry to
// a wallet matched by primary address. With create, an unknown address gets
// a new unowned wallet.
func resolveWallet(tx ledger.Tx, network domain.Network, address string, create bool) (*domain.Wallets, error) {
	w, err := findWallet(tx, network, address)
	switch {
	case err == nil:
		if w.IsFrozen || w.Network(network) != nil {
			return w, nil
		}
		w.Networks = append(w.Networks, domain.WalletNetworks{
			Network:    network.ToString(),
			Address:    w.PrimaryAddress,
			PrivateKey: w.PrimaryPrivateKey,
			IsActive:   true,
			Balance:    decimal.Zero,
			Position:   len(w.Networks),
		})
		if err := tx.SaveWallet(w); err != nil {
			return nil, err
		}
		return w, nil
	case !errors.Is(err, domain.ErrWalletNotFound) || !create:
		return nil, err
	}

	w = &domain.Wallets{
		PrimaryAddress: address,
		GlobalBalance:  decimal.Zero,
		Networks: []domain.WalletNetworks{
			{Network: network.ToString(), Address: address, IsActive: true, Balance: decimal.Zero},
		},
	}
	if err := tx.CreateWallet(w); err != nil {
		return nil, err
	}
	return w, nil
}
