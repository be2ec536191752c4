package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/infra/memstore"
	"custody/settlement/internal/keys"
	"custody/settlement/internal/ledger"
	"custody/settlement/internal/network"
	"custody/settlement/internal/network/nettest"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

type directory struct {
	mu    sync.Mutex
	users map[string]bool
}

func (d *directory) add(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[id] = true
}

func (d *directory) Exists(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.users[id], nil
}

type recorder struct {
	mu        sync.Mutex
	notified  []domain.BalanceChanged
	published []string
	fail      error
}

func (r *recorder) NotifyBalanceChanged(_ context.Context, ev domain.BalanceChanged) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.notified = append(r.notified, ev)
	return nil
}

func (r *recorder) Publish(topic, event string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.published = append(r.published, topic+" "+event)
	return nil
}

func (r *recorder) events() []domain.BalanceChanged {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.BalanceChanged, len(r.notified))
	copy(out, r.notified)
	return out
}

type harness struct {
	store    *memstore.Store
	chains   map[domain.Network]*nettest.Chain
	registry *network.Registry
	users    *directory
	events   *recorder
	hot      keys.Keypair
	funding  keys.Keypair
	svc      *Services
}

func newHarness(t *testing.T, down ...domain.Network) *harness {
	t.Helper()

	h := &harness{
		store: memstore.New(),
		chains: map[domain.Network]*nettest.Chain{
			domain.NETWORK_ETHEREUM: nettest.NewChain(),
			domain.NETWORK_BSC:      nettest.NewChain(),
			domain.NETWORK_POLYGON:  nettest.NewChain(),
			domain.NETWORK_ARBITRUM: nettest.NewChain(),
		},
		users:  &directory{users: make(map[string]bool)},
		events: &recorder{},
	}

	h.registry = network.New(nettest.Specs(), nettest.Dialers(h.chains, down...), network.Options{})
	h.registry.ConnectAll(context.Background())
	t.Cleanup(h.registry.Close)

	keySet, err := keys.NewSet(keys.MODE_SYNTHETIC)
	if err != nil {
		t.Fatal(err)
	}

	if h.hot, err = keys.NewEvmKeypair(); err != nil {
		t.Fatal(err)
	}
	if h.funding, err = keys.NewEvmKeypair(); err != nil {
		t.Fatal(err)
	}

	h.svc = NewServices(Deps{
		Store:     h.store,
		Chain:     h.registry,
		Users:     h.users,
		Notifier:  h.events,
		Publisher: h.events,
		Keys:      keySet,
		Policy:    ledger.Policy{MaxAttempts: 10, BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond},
		Provisioning: ProvisioningConfig{
			FundingNetwork: domain.NETWORK_ETHEREUM,
			FundingKey:     h.funding.PrivateKey,
			BootstrapGas:   decimal.RequireFromString("0.001"),
		},
		Mint: MintConfig{
			HotWalletKey:     h.hot.PrivateKey,
			Quantity:         decimal.NewFromInt(1000),
			TransferQuantity: decimal.NewFromInt(50),
		},
	})
	return h
}

// user provisions a wallet for a new user.
func (h *harness) user(t *testing.T) (string, *domain.WalletView) {
	t.Helper()

	id := gofakeit.UUID()
	h.users.add(id)

	view, err := h.svc.Provisioner.Provision(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return id, view
}

// credit sets the global balance and the balance on n directly in the store.
func (h *harness) credit(t *testing.T, userID string, n domain.Network, amount string) {
	t.Helper()

	err := h.store.InTx(context.Background(), func(tx ledger.Tx) error {
		w, err := tx.WalletByOwner(userID)
		if err != nil {
			return err
		}
		d := decimal.RequireFromString(amount)
		w.GlobalBalance = w.GlobalBalance.Add(d)
		w.Network(n).Balance = w.Network(n).Balance.Add(d)
		return tx.SaveWallet(w)
	})
	if err != nil {
		t.Fatal(err)
	}
}

func (h *harness) wallet(t *testing.T, userID string) *domain.Wallets {
	t.Helper()

	var w *domain.Wallets
	err := h.store.InTx(context.Background(), func(tx ledger.Tx) (err error) {
		w, err = tx.WalletByOwner(userID)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func (h *harness) walletAt(t *testing.T, n domain.Network, addr string) *domain.Wallets {
	t.Helper()

	var w *domain.Wallets
	err := h.store.InTx(context.Background(), func(tx ledger.Tx) (err error) {
		w, err = tx.WalletByAddress(n, addr)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func evmAddress(t *testing.T) string {
	t.Helper()
	kp, err := keys.NewEvmKeypair()
	if err != nil {
		t.Fatal(err)
	}
	return kp.Address
}

func addressOn(view *domain.WalletView, n domain.Network) string {
	for _, e := range view.Networks {
		if e.Network == n.ToString() {
			return e.Address
		}
	}
	return ""
}

func mustAmount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expectErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("want %v, got %v", want, err)
	}
}
