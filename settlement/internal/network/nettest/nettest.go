// Package nettest provides in-memory chain connections for tests.
package nettest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/keys"
	"custody/settlement/internal/network"

	"github.com/shopspring/decimal"
)

var ErrRpc = errors.New("rpc unreachable")

// Chain fakes one network's token contract. Balances are keyed by lowercased address.
type Chain struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	native   map[string]decimal.Decimal
	calls    []string

	// fail the named method ("balanceOf", "transfer", "mint", "sendNative", "ping")
	fail map[string]error
}

func NewChain() *Chain {
	return &Chain{
		balances: make(map[string]decimal.Decimal),
		native:   make(map[string]decimal.Decimal),
		fail:     make(map[string]error),
	}
}

func (c *Chain) Fail(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.fail, method)
		return
	}
	c.fail[method] = err
}

func (c *Chain) SetBalance(addr string, amount decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[strings.ToLower(addr)] = amount
}

func (c *Chain) Balance(addr string) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balances[strings.ToLower(addr)]
}

func (c *Chain) NativeBalance(addr string) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.native[strings.ToLower(addr)]
}

// Calls lists the methods invoked so far, in order.
func (c *Chain) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.calls))
	copy(out, c.calls)
	return out
}

func (c *Chain) record(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, method)
	return c.fail[method]
}

func (c *Chain) Ping(ctx context.Context) error {
	if err := c.record("ping"); err != nil {
		return err
	}
	return ctx.Err()
}

func (c *Chain) Close() {}

func (c *Chain) TokenBalance(ctx context.Context, addr string) (decimal.Decimal, error) {
	if err := c.record("balanceOf"); err != nil {
		return decimal.Zero, err
	}
	return c.Balance(addr), ctx.Err()
}

// Transfer moves tokens from the address of the evm key.
func (c *Chain) Transfer(ctx context.Context, privateKey, to string, amount decimal.Decimal) (string, error) {
	if err := c.record("transfer"); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	addr, err := keys.EvmAddress(privateKey)
	if err != nil {
		return "", err
	}
	from := strings.ToLower(addr.Hex())
	if c.balances[from].LessThan(amount) {
		return "", fmt.Errorf("transfer amount exceeds balance")
	}
	c.balances[from] = c.balances[from].Sub(amount)
	c.balances[strings.ToLower(to)] = c.balances[strings.ToLower(to)].Add(amount)
	return fmt.Sprintf("0xtransfer%d", len(c.calls)), nil
}

func (c *Chain) Mint(ctx context.Context, privateKey, to string, amount decimal.Decimal) (string, error) {
	if err := c.record("mint"); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[strings.ToLower(to)] = c.balances[strings.ToLower(to)].Add(amount)
	return fmt.Sprintf("0xmint%d", len(c.calls)), nil
}

func (c *Chain) SendNative(ctx context.Context, privateKey, to string, amount decimal.Decimal) (string, error) {
	if err := c.record("sendNative"); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.native[strings.ToLower(to)] = c.native[strings.ToLower(to)].Add(amount)
	return fmt.Sprintf("0xfund%d", len(c.calls)), nil
}

// Pinger is a connection without a token client, used for non-evm families.
type Pinger struct{}

func (Pinger) Ping(context.Context) error { return nil }
func (Pinger) Close()                     {}

// Dialers build dialers serving chains by network. Networks listed in down
// fail to dial. Networks without a chain get a Pinger.
func Dialers(chains map[domain.Network]*Chain, down ...domain.Network) map[domain.Family]network.Dialer {
	unreachable := make(map[domain.Network]bool, len(down))
	for _, n := range down {
		unreachable[n] = true
	}

	dial := func(_ context.Context, spec network.Spec, _ string) (network.Conn, error) {
		if unreachable[spec.ID] {
			return nil, ErrRpc
		}
		if c, ok := chains[spec.ID]; ok {
			return c, nil
		}
		return Pinger{}, nil
	}

	return map[domain.Family]network.Dialer{
		domain.FAMILY_EVM:    dial,
		domain.FAMILY_TRON:   dial,
		domain.FAMILY_TON:    dial,
		domain.FAMILY_SOLANA: dial,
	}
}

// Specs returns the default table with a dummy endpoint per network.
func Specs() []network.Spec {
	specs := network.DefaultSpecs()
	for i := range specs {
		specs[i].Endpoints = []string{"fake://" + specs[i].ID.ToString()}
	}
	return specs
}
