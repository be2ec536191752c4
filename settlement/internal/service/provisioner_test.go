package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"custody/settlement/internal/address"
	"custody/settlement/internal/domain"
	"custody/settlement/internal/network/nettest"

	"github.com/brianvoe/gofakeit/v7"
)

func countCalls(c *nettest.Chain, method string) int {
	n := 0
	for _, m := range c.Calls() {
		if m == method {
			n++
		}
	}
	return n
}

func TestProvision(t *testing.T) {
	h := newHarness(t)
	id, view := h.user(t)

	if view.OwnerID != id || view.GlobalBalance != "0.000000" || view.IsFrozen {
		t.Fatalf("view = %+v", view)
	}
	if len(view.Networks) != len(domain.SupportedNetworks) {
		t.Fatalf("want %d networks, got %d", len(domain.SupportedNetworks), len(view.Networks))
	}

	seen := map[string]bool{}
	for i, n := range view.Networks {
		nid := domain.StrToNetwork(n.Network)
		if nid != domain.SupportedNetworks[i] {
			t.Fatalf("entry %d is %s", i, n.Network)
		}
		if err := address.Validate(nid, n.Address); err != nil {
			t.Fatalf("%s: %v", n.Network, err)
		}
		if !n.IsActive {
			t.Fatalf("%s inactive", n.Network)
		}

		if nid.Family() == domain.FAMILY_EVM {
			if n.Address != view.PrimaryAddress {
				t.Fatalf("%s address %s differs from primary", n.Network, n.Address)
			}
			continue
		}
		if seen[n.Address] {
			t.Fatalf("address %s reused", n.Address)
		}
		seen[n.Address] = true
	}

	eth := h.chains[domain.NETWORK_ETHEREUM]
	if got := eth.NativeBalance(view.PrimaryAddress); got.String() != "0.001" {
		t.Fatalf("bootstrap gas = %s", got)
	}
}

func TestProvisionFailures(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.Provisioner.Provision(context.Background(), gofakeit.UUID())
		expectErr(t, err, domain.ErrUserNotFound)
	})

	t.Run("empty user", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.Provisioner.Provision(context.Background(), "")
		expectErr(t, err, domain.ErrValidation)
	})

	t.Run("already exists", func(t *testing.T) {
		h := newHarness(t)
		id, _ := h.user(t)

		_, err := h.svc.Provisioner.Provision(context.Background(), id)
		expectErr(t, err, domain.ErrWalletAlreadyExists)

		if n := countCalls(h.chains[domain.NETWORK_ETHEREUM], "sendNative"); n != 1 {
			t.Fatalf("funded %d times", n)
		}
	})

	t.Run("funding network down", func(t *testing.T) {
		h := newHarness(t, domain.NETWORK_ETHEREUM)
		id := gofakeit.UUID()
		h.users.add(id)

		_, err := h.svc.Provisioner.Provision(context.Background(), id)
		expectErr(t, err, domain.ErrFundingNetworkUnavailable)
		if domain.ErrorCode(err) != "funding_network_unavailable" {
			t.Fatalf("code = %s", domain.ErrorCode(err))
		}
		if len(h.store.Wallets()) != 0 {
			t.Fatal("wallet persisted without funding")
		}
	})

	t.Run("funding tx fails", func(t *testing.T) {
		h := newHarness(t)
		h.chains[domain.NETWORK_ETHEREUM].Fail("sendNative", nettest.ErrRpc)
		id := gofakeit.UUID()
		h.users.add(id)

		_, err := h.svc.Provisioner.Provision(context.Background(), id)
		expectErr(t, err, nettest.ErrRpc)
		if len(h.store.Wallets()) != 0 {
			t.Fatal("wallet persisted without funding")
		}
	})
}

func TestProvisionConcurrent(t *testing.T) {
	h := newHarness(t)
	id := gofakeit.UUID()
	h.users.add(id)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = h.svc.Provisioner.Provision(context.Background(), id)
		}()
	}
	wg.Wait()

	var ok, exists int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrWalletAlreadyExists):
			exists++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || exists != 1 || len(h.store.Wallets()) != 1 {
		t.Fatalf("ok = %d, exists = %d, wallets = %d", ok, exists, len(h.store.Wallets()))
	}
}
