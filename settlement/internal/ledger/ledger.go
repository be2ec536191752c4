package ledger

import (
	"context"
	"fmt"

	"custody/settlement/internal/domain"

	"github.com/shopspring/decimal"
)

// BalanceReader reads live token balances.
type BalanceReader interface {
	TokenBalance(ctx context.Context, id domain.Network, address string) (decimal.Decimal, error)
}

// Ledger owns the global and per-network balance fields of wallets.
//
// Global and per-network balances are adjusted side by side by each
// operation; global is not recomputed from the network entries and the two
// may drift apart (a bridge moves network balances only, a mint credits the
// network it ran on).
type Ledger struct {
	chain BalanceReader
	store Store
}

func New(chain BalanceReader, store Store) *Ledger {
	return &Ledger{chain: chain, store: store}
}

// GetBalance returns the on-chain balance for evm networks and the stored
// per-network balance otherwise.
func (l *Ledger) GetBalance(ctx context.Context, network domain.Network, address string) (decimal.Decimal, error) {
	if network.Family() == domain.FAMILY_EVM {
		return l.chain.TokenBalance(ctx, network, address)
	}

	var balance decimal.Decimal
	err := l.store.InTx(ctx, func(tx Tx) error {
		w, err := tx.WalletByAddress(network, address)
		if err != nil {
			return err
		}
		balance = w.Network(network).Balance
		return nil
	})
	return balance, err
}

// ApplyDelta adds delta to the wallet's global balance and to its balance on
// network. It refuses to take the global balance below zero.
func (l *Ledger) ApplyDelta(tx Tx, walletID uint, network domain.Network, delta decimal.Decimal) (*domain.Wallets, error) {
	w, err := tx.WalletByID(walletID)
	if err != nil {
		return nil, err
	}

	if w.IsFrozen {
		return nil, domain.ErrWalletFrozen
	}

	entry := w.Network(network)
	if entry == nil {
		return nil, domain.Validationf(domain.ErrMsgNetworkInactive, network.ToString())
	}

	global := w.GlobalBalance.Add(delta)
	if global.IsNegative() {
		return nil, fmt.Errorf(domain.ErrMsgInsufficientParams+": %w", domain.FormatAmount(w.GlobalBalance), domain.FormatAmount(delta.Neg()), domain.ErrInsufficientBalance)
	}

	w.GlobalBalance = global
	entry.Balance = entry.Balance.Add(delta)

	if err := tx.SaveWallet(w); err != nil {
		return nil, err
	}
	return w, nil
}

// MoveBetweenNetworks shifts amount from one network entry to another of the
// same wallet. The global balance is untouched.
func (l *Ledger) MoveBetweenNetworks(tx Tx, walletID uint, from, to domain.Network, amount decimal.Decimal) (*domain.Wallets, error) {
	w, err := tx.WalletByID(walletID)
	if err != nil {
		return nil, err
	}

	if w.IsFrozen {
		return nil, domain.ErrWalletFrozen
	}

	src, dst := w.Network(from), w.Network(to)
	if src == nil || !src.IsActive {
		return nil, domain.Validationf(domain.ErrMsgNetworkInactive, from.ToString())
	}
	if dst == nil || !dst.IsActive {
		return nil, domain.Validationf(domain.ErrMsgNetworkInactive, to.ToString())
	}

	if src.Balance.LessThan(amount) {
		return nil, fmt.Errorf(domain.ErrMsgInsufficientParams+": %w", domain.FormatAmount(src.Balance), domain.FormatAmount(amount), domain.ErrInsufficientBalance)
	}

	src.Balance = src.Balance.Sub(amount)
	dst.Balance = dst.Balance.Add(amount)

	if err := tx.SaveWallet(w); err != nil {
		return nil, err
	}
	return w, nil
}
