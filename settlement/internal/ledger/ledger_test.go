package ledger_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/infra/memstore"
	"custody/settlement/internal/ledger"
	"custody/settlement/internal/metrics"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

var testPolicy = ledger.Policy{MaxAttempts: 4, BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}

type staticChain map[string]decimal.Decimal

func (c staticChain) TokenBalance(_ context.Context, _ domain.Network, address string) (decimal.Decimal, error) {
	b, ok := c[address]
	if !ok {
		return decimal.Zero, domain.ErrNetworkUnavailable
	}
	return b, nil
}

func newWallet(t *testing.T, store ledger.Store, global string, networks map[string]string) *domain.Wallets {
	t.Helper()

	owner := gofakeit.UUID()
	w := &domain.Wallets{OwnerID: &owner, PrimaryAddress: gofakeit.UUID(), GlobalBalance: decimal.RequireFromString(global)}
	for name, balance := range networks {
		w.Networks = append(w.Networks, domain.WalletNetworks{
			Network:  name,
			Address:  name + "-" + gofakeit.UUID(),
			IsActive: true,
			Balance:  decimal.RequireFromString(balance),
		})
	}

	if err := store.InTx(context.Background(), func(tx ledger.Tx) error { return tx.CreateWallet(w) }); err != nil {
		t.Fatal(err)
	}
	return w
}

func TestApplyDelta(t *testing.T) {
	store := memstore.New()
	l := ledger.New(nil, store)
	w := newWallet(t, store, "10", map[string]string{"polygon": "0", "tron": "10"})

	tests := []struct {
		name    string
		network domain.Network
		delta   string
		err     error
		global  string
		perNet  string
	}{
		{"debit within global, network goes negative", domain.NETWORK_POLYGON, "-4", nil, "6", "-4"},
		{"credit", domain.NETWORK_TRON, "1.5", nil, "7.5", "11.5"},
		{"debit below zero", domain.NETWORK_TRON, "-7.500001", domain.ErrInsufficientBalance, "7.5", "11.5"},
		{"missing network", domain.NETWORK_SOLANA, "1", domain.ErrValidation, "7.5", ""},
		{"debit to exactly zero", domain.NETWORK_TRON, "-7.5", nil, "0", "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.InTx(context.Background(), func(tx ledger.Tx) error {
				_, err := l.ApplyDelta(tx, w.ID, tt.network, decimal.RequireFromString(tt.delta))
				return err
			})
			if !errors.Is(err, tt.err) {
				t.Fatalf("want %v, got %v", tt.err, err)
			}

			got := store.Wallets()[0]
			if !got.GlobalBalance.Equal(decimal.RequireFromString(tt.global)) {
				t.Fatalf("global = %s, want %s", got.GlobalBalance, tt.global)
			}
			if tt.perNet != "" && !got.Network(tt.network).Balance.Equal(decimal.RequireFromString(tt.perNet)) {
				t.Fatalf("%s = %s, want %s", tt.network.ToString(), got.Network(tt.network).Balance, tt.perNet)
			}
		})
	}
}

func TestApplyDeltaFrozen(t *testing.T) {
	store := memstore.New()
	l := ledger.New(nil, store)
	w := newWallet(t, store, "10", map[string]string{"polygon": "10"})

	err := store.InTx(context.Background(), func(tx ledger.Tx) error {
		got, _ := tx.WalletByID(w.ID)
		got.IsFrozen = true
		return tx.SaveWallet(got)
	})
	if err != nil {
		t.Fatal(err)
	}

	err = store.InTx(context.Background(), func(tx ledger.Tx) error {
		_, err := l.ApplyDelta(tx, w.ID, domain.NETWORK_POLYGON, decimal.NewFromInt(1))
		return err
	})
	if !errors.Is(err, domain.ErrWalletFrozen) {
		t.Fatalf("want ErrWalletFrozen, got %v", err)
	}
}

func TestMoveBetweenNetworks(t *testing.T) {
	store := memstore.New()
	l := ledger.New(nil, store)
	w := newWallet(t, store, "30", map[string]string{"polygon": "20", "bsc": "10"})

	move := func(from, to domain.Network, amount string) error {
		return store.InTx(context.Background(), func(tx ledger.Tx) error {
			_, err := l.MoveBetweenNetworks(tx, w.ID, from, to, decimal.RequireFromString(amount))
			return err
		})
	}

	if err := move(domain.NETWORK_POLYGON, domain.NETWORK_BSC, "15"); err != nil {
		t.Fatal(err)
	}
	if err := move(domain.NETWORK_POLYGON, domain.NETWORK_BSC, "5.000001"); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
	if err := move(domain.NETWORK_POLYGON, domain.NETWORK_TON, "1"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}

	got := store.Wallets()[0]
	if !got.GlobalBalance.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("global changed to %s", got.GlobalBalance)
	}
	if !got.Network(domain.NETWORK_POLYGON).Balance.Equal(decimal.NewFromInt(5)) || !got.Network(domain.NETWORK_BSC).Balance.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected network balances %+v", got.Networks)
	}
}

func TestGetBalance(t *testing.T) {
	store := memstore.New()
	w := newWallet(t, store, "5", map[string]string{"tron": "4"})
	l := ledger.New(staticChain{"0xlive": decimal.NewFromInt(9)}, store)

	live, err := l.GetBalance(context.Background(), domain.NETWORK_POLYGON, "0xlive")
	if err != nil || !live.Equal(decimal.NewFromInt(9)) {
		t.Fatalf("evm balance = %s, %v", live, err)
	}

	if _, err := l.GetBalance(context.Background(), domain.NETWORK_POLYGON, "0xdown"); !errors.Is(err, domain.ErrNetworkUnavailable) {
		t.Fatalf("want ErrNetworkUnavailable, got %v", err)
	}

	stored, err := l.GetBalance(context.Background(), domain.NETWORK_TRON, w.Networks[0].Address)
	if err != nil || !stored.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("tron balance = %s, %v", stored, err)
	}
}

func TestRunnerRetriesConflicts(t *testing.T) {
	store := memstore.New()
	var conflicts atomic.Int32
	conflicts.Store(2)

	store.SetHooks(memstore.Hooks{OnCommit: func() error {
		if conflicts.Add(-1) >= 0 {
			return domain.ErrTransientConflict
		}
		return nil
	}})

	var calls int
	r := ledger.NewRunner(store, testPolicy, nil, nil)
	err := r.Run(context.Background(), "test", func(tx ledger.Tx) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Fatalf("unit of work ran %d times, want 3", calls)
	}
}

func TestRunnerExhausts(t *testing.T) {
	store := memstore.New()
	store.SetHooks(memstore.Hooks{OnCommit: func() error { return domain.ErrTransientConflict }})

	var calls int
	r := ledger.NewRunner(store, testPolicy, nil, nil)
	err := r.Run(context.Background(), "test", func(tx ledger.Tx) error {
		calls++
		return nil
	})
	if !errors.Is(err, domain.ErrSettlementFailed) {
		t.Fatalf("want ErrSettlementFailed, got %v", err)
	}
	if calls != testPolicy.MaxAttempts {
		t.Fatalf("ran %d times, want %d", calls, testPolicy.MaxAttempts)
	}
}

func TestRunnerMetrics(t *testing.T) {
	store := memstore.New()
	store.SetHooks(memstore.Hooks{OnCommit: func() error { return domain.ErrTransientConflict }})

	reg := prometheus.NewRegistry()
	r := ledger.NewRunner(store, testPolicy, nil, metrics.New(reg))
	if err := r.Run(context.Background(), "send", func(tx ledger.Tx) error { return nil }); !errors.Is(err, domain.ErrSettlementFailed) {
		t.Fatalf("want ErrSettlementFailed, got %v", err)
	}

	expected := `
# HELP settlement_ledger_tx_attempts_total Ledger transaction attempts by operation
# TYPE settlement_ledger_tx_attempts_total counter
settlement_ledger_tx_attempts_total{operation="send"} 4
# HELP settlement_ledger_tx_conflicts_total Ledger transaction attempts aborted by a write conflict
# TYPE settlement_ledger_tx_conflicts_total counter
settlement_ledger_tx_conflicts_total{operation="send"} 4
# HELP settlement_ledger_tx_exhausted_total Ledger transactions that ran out of retry attempts
# TYPE settlement_ledger_tx_exhausted_total counter
settlement_ledger_tx_exhausted_total{operation="send"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"settlement_ledger_tx_attempts_total", "settlement_ledger_tx_conflicts_total", "settlement_ledger_tx_exhausted_total")
	if err != nil {
		t.Fatal(err)
	}
}

func TestRunnerSingleAttempt(t *testing.T) {
	store := memstore.New()
	r := ledger.NewRunner(store, ledger.Policy{MaxAttempts: 1}, nil, nil)

	var calls int
	err := r.Run(context.Background(), "test", func(tx ledger.Tx) error {
		calls++
		return domain.ErrWalletFrozen
	})
	if !errors.Is(err, domain.ErrWalletFrozen) || errors.Is(err, domain.ErrSettlementFailed) || calls != 1 {
		t.Fatalf("err %v after %d calls", err, calls)
	}

	store.SetHooks(memstore.Hooks{OnCommit: func() error { return domain.ErrTransientConflict }})
	calls = 0
	err = r.Run(context.Background(), "test", func(tx ledger.Tx) error {
		calls++
		return nil
	})
	if !errors.Is(err, domain.ErrSettlementFailed) || calls != 1 {
		t.Fatalf("err %v after %d calls", err, calls)
	}
}

func TestRunnerStopsOnBusinessError(t *testing.T) {
	store := memstore.New()
	r := ledger.NewRunner(store, testPolicy, nil, nil)

	var calls int
	_, err := ledger.RunResult(context.Background(), r, "test", func(tx ledger.Tx) (int, error) {
		calls++
		return 0, domain.ErrInsufficientBalance
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) || calls != 1 {
		t.Fatalf("err %v after %d calls", err, calls)
	}

	v, err := ledger.RunResult(context.Background(), r, "test", func(tx ledger.Tx) (int, error) {
		return 42, nil
	})
	if err != nil || v != 42 {
		t.Fatalf("got %d, %v", v, err)
	}
}

func TestRunnerHonoursContext(t *testing.T) {
	store := memstore.New()
	store.SetHooks(memstore.Hooks{OnCommit: func() error { return domain.ErrTransientConflict }})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := ledger.NewRunner(store, testPolicy, nil, nil)
	if err := r.Run(ctx, "test", func(tx ledger.Tx) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		policy ledger.Policy
		valid  bool
	}{
		{ledger.DefaultPolicy(), true},
		{ledger.Policy{MaxAttempts: 1}, true},
		{ledger.Policy{MaxAttempts: 0}, false},
		{ledger.Policy{MaxAttempts: 3, BaseBackoff: time.Second, MaxBackoff: time.Millisecond}, false},
	}

	for _, tt := range tests {
		if err := tt.policy.Validate(); (err == nil) != tt.valid {
			t.Fatalf("%+v: valid=%v, err=%v", tt.policy, tt.valid, err)
		}
	}
}
