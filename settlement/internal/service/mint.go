package service

import (
	"context"
	"log/slog"

	"custody/settlement/internal/address"
	"custody/settlement/internal/domain"
	"custody/settlement/internal/keys"
	"custody/settlement/internal/ledger"
)

type MintService struct {
	runner *ledger.Runner
	ledger *ledger.Ledger
	chain  Chain
	events *emitter
	config MintConfig
	l      *slog.Logger
}

func NewMintService(runner *ledger.Runner, l *ledger.Ledger, chain Chain, events *emitter, config MintConfig, log *slog.Logger) *MintService {
	return &MintService{runner: runner, ledger: l, chain: chain, events: events, config: config, l: log}
}

// MintTest mints Quantity to the hot wallet, transfers TransferQuantity to
// addr and credits the wallet tracking addr. The ledger is credited only
// after both on-chain steps are confirmed.
func (s *MintService) MintTest(ctx context.Context, network domain.Network, addr string) (*domain.MintReceipt, error) {
	if err := validateNetwork(network); err != nil {
		return nil, err
	}
	if network.Family() != domain.FAMILY_EVM {
		return nil, domain.Validationf(domain.ErrMsgMintNotEvm)
	}
	if err := address.Validate(network, addr); err != nil {
		return nil, err
	}
	addr = address.Normalize(network, addr)

	// fail fast before spending gas
	if err := s.runner.Store().InTx(ctx, func(tx ledger.Tx) error {
		w, err := findWallet(tx, network, addr)
		if err != nil {
			return err
		}
		if w.IsFrozen {
			return domain.ErrWalletFrozen
		}
		return nil
	}); err != nil {
		return nil, err
	}

	hot, err := keys.EvmKeypairFromHex(s.config.HotWalletKey)
	if err != nil {
		return nil, err
	}

	mintHash, err := s.chain.Mint(ctx, network, hot.PrivateKey, hot.Address, s.config.Quantity)
	if err != nil {
		s.l.Error("mint failed", "network", network.ToString(), "error", err)
		return nil, err
	}
	s.l.Info("minted to hot wallet", "network", network.ToString(), "tx_hash", mintHash, "amount", domain.FormatAmount(s.config.Quantity))

	transferHash, err := s.chain.Transfer(ctx, network, hot.PrivateKey, addr, s.config.TransferQuantity)
	if err != nil {
		s.l.Error("mint transfer failed", "network", network.ToString(), "address", addr, "mint_tx_hash", mintHash, "error", err)
		return nil, err
	}

	var reference string
	wallet, err := ledger.RunResult(ctx, s.runner, "mint", func(tx ledger.Tx) (*domain.Wallets, error) {
		w, err := resolveWallet(tx, network, addr, false)
		if err != nil {
			return nil, err
		}
		if w.IsFrozen {
			return nil, domain.ErrWalletFrozen
		}

		w, err = s.ledger.ApplyDelta(tx, w.ID, network, s.config.TransferQuantity)
		if err != nil {
			return nil, err
		}

		reference = newReference()
		err = tx.CreateTransaction(&domain.Transactions{
			OwnerUserID: w.OwnerID,
			WalletID:    w.ID,
			Kind:        domain.TX_KIND_MINT,
			Amount:      s.config.TransferQuantity,
			Currency:    domain.CURRENCY_USDT,
			Status:      domain.TX_STATUS_COMPLETED,
			Reference:   reference,
			Metadata: domain.TxMetadata{
				Network:     network.ToString(),
				FromAddress: hot.Address,
				ToAddress:   addr,
				TxHashes:    []string{mintHash, transferHash},
			},
		})
		if err != nil {
			return nil, err
		}
		return w, nil
	})
	if err != nil {
		// tokens moved on-chain but the ledger did not follow
		s.l.Error("mint credit failed", "network", network.ToString(), "address", addr, "transfer_tx_hash", transferHash, "error", err)
		return nil, err
	}

	s.events.balanceChanged(ctx, wallet, reference, network)

	return &domain.MintReceipt{
		Network:      network.ToString(),
		Address:      addr,
		Amount:       domain.FormatAmount(s.config.TransferQuantity),
		MintTxHash:   mintHash,
		TransferHash: transferHash,
		Reference:    reference,
		Balances:     domain.NewBalances(wallet, network),
	}, nil
}
