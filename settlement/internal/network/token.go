package network

import (
	"context"
	"errors"
	"fmt"
	"time"

	"custody/settlement/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

// TokenBalance reads the on-chain USDT balance of address. Every failure is
// reported as ErrNetworkUnavailable.
func (r *Registry) TokenBalance(ctx context.Context, id domain.Network, address string) (decimal.Decimal, error) {
	balance, err := call(ctx, r, id, "balanceOf", r.opts.ReadTimeout, func(ctx context.Context, t Token) (decimal.Decimal, error) {
		return t.TokenBalance(ctx, address)
	})
	if err != nil && !errors.Is(err, domain.ErrNetworkUnavailable) && !errors.Is(err, domain.ErrUnknownNetwork) {
		return decimal.Zero, fmt.Errorf("%w: %w", domain.ErrNetworkUnavailable, err)
	}
	return balance, err
}

func (r *Registry) Transfer(ctx context.Context, id domain.Network, privateKey, to string, amount decimal.Decimal) (string, error) {
	return call(ctx, r, id, "transfer", r.opts.TxTimeout, func(ctx context.Context, t Token) (string, error) {
		return t.Transfer(ctx, privateKey, to, amount)
	})
}

func (r *Registry) Mint(ctx context.Context, id domain.Network, privateKey, to string, amount decimal.Decimal) (string, error) {
	return call(ctx, r, id, "mint", r.opts.TxTimeout, func(ctx context.Context, t Token) (string, error) {
		return t.Mint(ctx, privateKey, to, amount)
	})
}

func (r *Registry) SendNative(ctx context.Context, id domain.Network, privateKey, to string, amount decimal.Decimal) (string, error) {
	return call(ctx, r, id, "sendNative", r.opts.TxTimeout, func(ctx context.Context, t Token) (string, error) {
		return t.SendNative(ctx, privateKey, to, amount)
	})
}

func (r *Registry) token(ctx context.Context, id domain.Network) (*entry, Token, error) {
	conn, err := r.Connect(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	t, ok := conn.(Token)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s has no token client", domain.ErrNetworkUnavailable, id.ToString())
	}
	return r.entries[id], t, nil
}

func call[T any](ctx context.Context, r *Registry, id domain.Network, method string, timeout time.Duration, fn func(context.Context, Token) (T, error)) (T, error) {
	var zero T

	e, t, err := r.token(ctx, id)
	if err != nil {
		return zero, err
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := e.breaker.Execute(func() (interface{}, error) {
		return fn(cctx, t)
	})
	if err != nil {
		r.opts.Metrics.RpcError(id.ToString(), method)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %s: %v", domain.ErrNetworkUnavailable, id.ToString(), err)
		}
		return zero, fmt.Errorf("%s %s: %w", id.ToString(), method, err)
	}

	return res.(T), nil
}
