package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"custody/pkg/rr"
	"custody/settlement/internal/domain"
	"custody/settlement/internal/metrics"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

type Conn interface {
	Ping(ctx context.Context) error
	Close()
}

// Token is a connection that can operate the network's USDT contract.
type Token interface {
	Conn
	TokenBalance(ctx context.Context, address string) (decimal.Decimal, error)
	Transfer(ctx context.Context, privateKey, to string, amount decimal.Decimal) (string, error)
	Mint(ctx context.Context, privateKey, to string, amount decimal.Decimal) (string, error)
	SendNative(ctx context.Context, privateKey, to string, amount decimal.Decimal) (string, error)
}

type Options struct {
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	TxTimeout       time.Duration // covers send and confirmation
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	RedialInterval  time.Duration // min gap between dials of a down network
	Log             *slog.Logger
	Metrics         *metrics.Metrics
}

func (o *Options) defaults() {
	if o.DialTimeout == 0 {
		o.DialTimeout = 15 * time.Second
	}
	if o.ReadTimeout == 0 {
		o.ReadTimeout = 10 * time.Second
	}
	if o.TxTimeout == 0 {
		o.TxTimeout = 3 * time.Minute
	}
	if o.BreakerFailures == 0 {
		o.BreakerFailures = 5
	}
	if o.BreakerTimeout == 0 {
		o.BreakerTimeout = 30 * time.Second
	}
	if o.RedialInterval == 0 {
		o.RedialInterval = 5 * time.Second
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}
}

// Registry holds the static table and the live connection of every network.
// Entries are fixed at construction; connections change through
// ConnectAll, Connect (redial of a down or tripped network), Reconnect and
// Close.
type Registry struct {
	entries map[domain.Network]*entry
	order   []domain.Network
	dialers map[domain.Family]Dialer
	opts    Options
}

type entry struct {
	mu        sync.Mutex
	spec      Spec
	endpoints *rr.RoundRobin
	conn      Conn
	lastErr   error
	dialedAt  time.Time
	stale     atomic.Bool // breaker opened on the current conn
	breaker   *gobreaker.CircuitBreaker
}

func New(specs []Spec, dialers map[domain.Family]Dialer, opts Options) *Registry {
	opts.defaults()

	r := &Registry{
		entries: make(map[domain.Network]*entry, len(specs)),
		dialers: dialers,
		opts:    opts,
	}

	for _, spec := range specs {
		if spec.ID.IsNone() {
			continue
		}

		name := spec.ID.ToString()
		log := opts.Log
		e := &entry{
			spec:      spec,
			endpoints: rr.New(spec.Endpoints),
			lastErr:   errors.New("not connected"),
		}
		e.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     opts.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= opts.BreakerFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				if to == gobreaker.StateOpen {
					e.stale.Store(true)
				}
				log.Warn("rpc circuit breaker state changed", "network", name, "from", from.String(), "to", to.String())
			},
		})

		if _, dup := r.entries[spec.ID]; !dup {
			r.order = append(r.order, spec.ID)
		}
		r.entries[spec.ID] = e
	}

	return r
}

// ConnectAll dials every enabled network. Unreachable networks stay
// unavailable; startup is never blocked on them.
func (r *Registry) ConnectAll(ctx context.Context) {
	var wg sync.WaitGroup

	for _, id := range r.order {
		e := r.entries[id]
		if e.spec.Disabled {
			r.opts.Log.Info("network disabled", "network", id.ToString())
			r.opts.Metrics.NetworkUp(id.ToString(), false)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			e.mu.Lock()
			defer e.mu.Unlock()

			if err := r.dial(ctx, e); err != nil {
				r.opts.Log.Warn("network unavailable", "network", id.ToString(), "error", err)
				return
			}
			r.opts.Log.Info("network connected", "network", id.ToString())
		}()
	}

	wg.Wait()
}

// Connect returns the live connection of id or ErrNetworkUnavailable.
// A network that is down, or whose breaker opened on the current
// connection, is redialed on the next endpoint once RedialInterval has
// passed since the last dial and the breaker admits a trial request.
func (r *Registry) Connect(ctx context.Context, id domain.Network) (Conn, error) {
	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.spec.Disabled {
		return nil, fmt.Errorf("%w: %s: disabled", domain.ErrNetworkUnavailable, id.ToString())
	}
	if e.conn != nil && !e.stale.Load() {
		return e.conn, nil
	}

	if !r.redialDue(e) {
		if e.conn != nil {
			return e.conn, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrNetworkUnavailable, id.ToString(), e.lastErr)
	}

	r.opts.Log.Info("redialing network", "network", id.ToString(), "error", e.lastErr)
	if err := r.redial(ctx, e); err != nil {
		return nil, err
	}
	r.opts.Log.Info("network connected", "network", id.ToString())
	return e.conn, nil
}

// e.mu must be held.
func (r *Registry) redialDue(e *entry) bool {
	if e.breaker.State() == gobreaker.StateOpen {
		return false
	}
	return time.Since(e.dialedAt) >= r.opts.RedialInterval
}

// redial drops the current connection and dials the next endpoint.
// e.mu must be held.
func (r *Registry) redial(ctx context.Context, e *entry) error {
	if e.conn != nil {
		e.conn.Close()
		e.conn = nil
	}
	e.stale.Store(false)
	return r.dial(ctx, e)
}

// Reconnect drops the current connection of id and dials the next endpoint.
func (r *Registry) Reconnect(ctx context.Context, id domain.Network) (Conn, error) {
	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.spec.Disabled {
		return nil, fmt.Errorf("%w: %s: disabled", domain.ErrNetworkUnavailable, id.ToString())
	}

	if err := r.redial(ctx, e); err != nil {
		return nil, err
	}
	return e.conn, nil
}

// dial tries each endpoint once, starting at the next in rotation.
// e.mu must be held.
func (r *Registry) dial(ctx context.Context, e *entry) error {
	id := e.spec.ID
	e.dialedAt = time.Now()

	d, ok := r.dialers[id.Family()]
	if !ok {
		e.lastErr = fmt.Errorf("no dialer for family %s", id.Family().ToString())
		r.opts.Metrics.NetworkUp(id.ToString(), false)
		return fmt.Errorf("%w: %s: %v", domain.ErrNetworkUnavailable, id.ToString(), e.lastErr)
	}

	attempts := e.endpoints.Len()
	if attempts == 0 {
		// non-evm clients fall back to their public default endpoint
		if id.Family() == domain.FAMILY_EVM {
			e.lastErr = errors.New("no rpc endpoint configured")
			r.opts.Metrics.NetworkUp(id.ToString(), false)
			return fmt.Errorf("%w: %s: %v", domain.ErrNetworkUnavailable, id.ToString(), e.lastErr)
		}
		e.endpoints.Replace([]string{""})
		attempts = 1
	}

	var lastErr error
	for range attempts {
		endpoint, _ := e.endpoints.Next()

		dctx, cancel := context.WithTimeout(ctx, r.opts.DialTimeout)
		conn, err := d(dctx, e.spec, endpoint)
		cancel()

		if err != nil {
			lastErr = err
			r.opts.Log.Debug("dial failed", "network", id.ToString(), "error", err)
			continue
		}

		e.conn = conn
		e.lastErr = nil
		r.opts.Metrics.NetworkUp(id.ToString(), true)
		return nil
	}

	e.lastErr = lastErr
	r.opts.Metrics.NetworkUp(id.ToString(), false)
	return fmt.Errorf("%w: %s: %v", domain.ErrNetworkUnavailable, id.ToString(), lastErr)
}

func (r *Registry) Available(id domain.Network) bool {
	_, err := r.Connect(context.Background(), id)
	return err == nil
}

// Fee is the fixed transfer fee of id, FALLBACK_FEE for unknown networks.
func (r *Registry) Fee(id domain.Network) decimal.Decimal {
	if e, ok := r.entries[id]; ok && e.spec.Fee.IsPositive() {
		return e.spec.Fee
	}
	return decimal.RequireFromString(FALLBACK_FEE)
}

func (r *Registry) Spec(id domain.Network) (Spec, bool) {
	e, ok := r.entries[id]
	if !ok {
		return Spec{}, false
	}
	return e.spec, true
}

func (r *Registry) Networks() []domain.Network {
	out := make([]domain.Network, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Close() {
	for _, id := range r.order {
		e := r.entries[id]
		e.mu.Lock()
		if e.conn != nil {
			e.conn.Close()
			e.conn = nil
			e.lastErr = errors.New("closed")
		}
		e.mu.Unlock()
	}
}

func (r *Registry) entry(id domain.Network) (*entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownNetwork, id.ToString())
	}
	return e, nil
}
