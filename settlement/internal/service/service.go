package service

import (
	"context"
	"log/slog"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/keys"
	"custody/settlement/internal/ledger"
	"custody/settlement/internal/metrics"

	"github.com/shopspring/decimal"
)

// Chain is the on-chain side the services need; *network.Registry implements it.
type Chain interface {
	ledger.BalanceReader
	Transfer(ctx context.Context, id domain.Network, privateKey, to string, amount decimal.Decimal) (string, error)
	Mint(ctx context.Context, id domain.Network, privateKey, to string, amount decimal.Decimal) (string, error)
	SendNative(ctx context.Context, id domain.Network, privateKey, to string, amount decimal.Decimal) (string, error)
	Fee(id domain.Network) decimal.Decimal
	Available(id domain.Network) bool
}

// UserDirectory answers whether a platform user exists.
type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

type Notifier interface {
	NotifyBalanceChanged(ctx context.Context, ev domain.BalanceChanged) error
}

type Publisher interface {
	Publish(topic, event string, payload any) error
}

type Provisioner interface {
	Provision(ctx context.Context, userID string) (*domain.WalletView, error)
}

type Wallets interface {
	// network NETWORK_NONE returns every network entry
	Get(ctx context.Context, userID string, network domain.Network) (*domain.WalletView, error)
}

type Settlement interface {
	SendToken(ctx context.Context, req SendRequest) (*domain.SendResult, error)
}

type Bridge interface {
	BridgeToken(ctx context.Context, userID string, from, to domain.Network, amount decimal.Decimal) (*domain.BridgeResult, error)
}

type Mint interface {
	MintTest(ctx context.Context, network domain.Network, address string) (*domain.MintReceipt, error)
}

type Freeze interface {
	FreezeWallet(ctx context.Context, userID string) error
	UnfreezeWallet(ctx context.Context, userID string) error
	FreezeByID(ctx context.Context, walletID uint) error
	UnfreezeByID(ctx context.Context, walletID uint) error
}

type Transactions interface {
	Get(ctx context.Context, reference string) (*domain.TransactionView, error)
	List(ctx context.Context, userID string, limit int) ([]domain.TransactionView, error)
}

type Services struct {
	Provisioner  Provisioner
	Wallets      Wallets
	Settlement   Settlement
	Bridge       Bridge
	Mint         Mint
	Freeze       Freeze
	Transactions Transactions
}

type ProvisioningConfig struct {
	FundingNetwork domain.Network
	FundingKey     string
	BootstrapGas   decimal.Decimal
}

type MintConfig struct {
	HotWalletKey     string
	Quantity         decimal.Decimal
	TransferQuantity decimal.Decimal
}

type Deps struct {
	Store     ledger.Store
	Chain     Chain
	Users     UserDirectory
	Notifier  Notifier
	Publisher Publisher
	Keys      *keys.Set
	Policy    ledger.Policy
	Log       *slog.Logger
	Metrics   *metrics.Metrics

	Provisioning ProvisioningConfig
	Mint         MintConfig
}

func NewServices(d Deps) *Services {
	if d.Log == nil {
		d.Log = slog.Default()
	}

	runner := ledger.NewRunner(d.Store, d.Policy, d.Log, d.Metrics)
	l := ledger.New(d.Chain, d.Store)
	ev := &emitter{notifier: d.Notifier, publisher: d.Publisher, log: d.Log, metrics: d.Metrics}

	return &Services{
		Provisioner:  NewProvisionerService(runner, d.Chain, d.Users, d.Keys, d.Provisioning, d.Log),
		Wallets:      NewWalletsService(d.Store, l, d.Log),
		Settlement:   NewSettlementService(runner, l, d.Chain, ev, d.Log),
		Bridge:       NewBridgeService(runner, l, ev, d.Log),
		Mint:         NewMintService(runner, l, d.Chain, ev, d.Mint, d.Log),
		Freeze:       NewFreezeService(runner, d.Log),
		Transactions: NewTransactionsService(d.Store),
	}
}
