package service

import (
	"context"
	"fmt"
	"log/slog"

	"custody/settlement/internal/address"
	"custody/settlement/internal/domain"
	"custody/settlement/internal/ledger"

	"github.com/shopspring/decimal"
)

type SendRequest struct {
	UserID    string
	Network   domain.Network
	ToAddress string
	Amount    decimal.Decimal
	// acknowledges a previous CrossNetworkWarning
	Override bool
}

type SettlementService struct {
	runner *ledger.Runner
	ledger *ledger.Ledger
	chain  Chain
	events *emitter
	l      *slog.Logger
}

func NewSettlementService(runner *ledger.Runner, l *ledger.Ledger, chain Chain, events *emitter, log *slog.Logger) *SettlementService {
	return &SettlementService{runner: runner, ledger: l, chain: chain, events: events, l: log}
}

type sendOutcome struct {
	sender    *domain.Wallets
	recipient *domain.Wallets
	row       *domain.Transactions
}

// SendToken debits amount plus the network fee from the sender and credits
// amount to the wallet tracking ToAddress, creating an unowned wallet for
// unknown addresses. Returns a warning result instead of settling when the
// address belongs to another network family and Override is unset.
func (s *SettlementService) SendToken(ctx context.Context, req SendRequest) (*domain.SendResult, error) {
	if req.UserID == "" {
		return nil, domain.Validationf(domain.ErrMsgEmptyUserID)
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := validateNetwork(req.Network); err != nil {
		return nil, err
	}

	to := req.ToAddress
	detected := address.DetectFamily(to)
	switch {
	case detected.IsUnknown():
		return nil, domain.Validationf(domain.ErrMsgInvalidAddress, req.Network.ToString())
	case detected != req.Network.Family():
		if !req.Override {
			s.l.Info("cross network address", "network", req.Network.ToString(), "detected", detected.ToString(), "address", to)
			return &domain.SendResult{Warning: &domain.CrossNetworkWarning{
				SelectedNetwork: req.Network.ToString(),
				DetectedNetwork: detected.ToString(),
				Address:         to,
			}}, nil
		}
		if err := address.ValidateFamily(detected, to); err != nil {
			return nil, err
		}
	default:
		if err := address.Validate(req.Network, to); err != nil {
			return nil, err
		}
		to = address.Normalize(req.Network, to)
	}

	fee := s.chain.Fee(req.Network)
	total := req.Amount.Add(fee)

	out, err := ledger.RunResult(ctx, s.runner, "send", func(tx ledger.Tx) (*sendOutcome, error) {
		return s.settle(tx, req, to, fee, total)
	})
	if err != nil {
		return nil, err
	}

	s.l.Info("send settled",
		"user_id", req.UserID,
		"network", req.Network.ToString(),
		"reference", out.row.Reference,
		"amount", domain.FormatAmount(req.Amount),
		"fee", domain.FormatAmount(fee),
		"recipient_wallet_id", out.recipient.ID,
	)

	s.events.balanceChanged(ctx, out.sender, out.row.Reference, req.Network)
	s.events.balanceChanged(ctx, out.recipient, out.row.Metadata.Related, req.Network)

	balances := domain.NewBalances(out.sender, req.Network)
	return &domain.SendResult{
		Transaction: out.row,
		View:        domain.NewTransactionView(out.row),
		Balances:    &balances,
	}, nil
}

// settle is one attempt of the send. Everything it writes lives in tx.
func (s *SettlementService) settle(tx ledger.Tx, req SendRequest, to string, fee, total decimal.Decimal) (*sendOutcome, error) {
	sender, err := tx.WalletByOwner(req.UserID)
	if err != nil {
		return nil, err
	}
	if sender.IsFrozen {
		return nil, domain.ErrWalletFrozen
	}

	from := sender.Network(req.Network)
	if from == nil || !from.IsActive {
		return nil, domain.Validationf(domain.ErrMsgNetworkInactive, req.Network.ToString())
	}
	if sender.Tracks(req.Network, to) {
		return nil, domain.Validationf(domain.ErrMsgSelfTransfer)
	}

	if sender.GlobalBalance.LessThan(total) {
		return nil, fmt.Errorf(domain.ErrMsgInsufficientParams+": %w", domain.FormatAmount(sender.GlobalBalance), domain.FormatAmount(total), domain.ErrInsufficientBalance)
	}

	recipient, err := resolveWallet(tx, req.Network, to, true)
	if err != nil {
		return nil, err
	}
	if recipient.ID == sender.ID {
		return nil, domain.Validationf(domain.ErrMsgSelfTransfer)
	}
	if recipient.IsFrozen {
		return nil, domain.ErrRecipientFrozen
	}

	sender, err = s.ledger.ApplyDelta(tx, sender.ID, req.Network, total.Neg())
	if err != nil {
		return nil, err
	}
	recipient, err = s.ledger.ApplyDelta(tx, recipient.ID, req.Network, req.Amount)
	if err != nil {
		return nil, err
	}

	sendRef, receiveRef := newReference(), newReference()
	network := req.Network.ToString()

	sent := &domain.Transactions{
		OwnerUserID: sender.OwnerID,
		WalletID:    sender.ID,
		Kind:        domain.TX_KIND_SEND,
		Amount:      req.Amount.Neg(),
		Currency:    domain.CURRENCY_USDT,
		Status:      domain.TX_STATUS_COMPLETED,
		Reference:   sendRef,
		Metadata: domain.TxMetadata{
			Network:     network,
			Fee:         domain.FormatAmount(fee),
			FromAddress: from.Address,
			ToAddress:   to,
			Related:     receiveRef,
		},
	}
	received := &domain.Transactions{
		OwnerUserID: recipient.OwnerID,
		WalletID:    recipient.ID,
		Kind:        domain.TX_KIND_RECEIVE,
		Amount:      req.Amount,
		Currency:    domain.CURRENCY_USDT,
		Status:      domain.TX_STATUS_COMPLETED,
		Reference:   receiveRef,
		Metadata: domain.TxMetadata{
			Network:     network,
			FromAddress: from.Address,
			ToAddress:   to,
			Related:     sendRef,
		},
	}

	if err := tx.CreateTransaction(sent); err != nil {
		return nil, err
	}
	if err := tx.CreateTransaction(received); err != nil {
		return nil, err
	}

	return &sendOutcome{sender: sender, recipient: recipient, row: sent}, nil
}
