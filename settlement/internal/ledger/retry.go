package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/metrics"

	"github.com/cenkalti/backoff/v5"
)

type Policy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 4, BaseBackoff: 50 * time.Millisecond, MaxBackoff: time.Second}
}

func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be >= 1, got %d", p.MaxAttempts)
	}
	if p.BaseBackoff < 0 || p.MaxBackoff < p.BaseBackoff {
		return fmt.Errorf("invalid backoff: base %s, max %s", p.BaseBackoff, p.MaxBackoff)
	}
	return nil
}

// backOff doubles from BaseBackoff up to MaxBackoff with +-50% jitter.
func (p Policy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseBackoff
	b.MaxInterval = p.MaxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0.5
	return b
}

// Runner executes units of work in optimistic transactions, retrying the
// whole unit on domain.ErrTransientConflict. Each attempt is a fresh
// transaction, so an aborted attempt leaves nothing behind.
type Runner struct {
	store   Store
	policy  Policy
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewRunner(store Store, policy Policy, log *slog.Logger, m *metrics.Metrics) *Runner {
	if err := policy.Validate(); err != nil {
		panic("invalid retry policy: " + err.Error())
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{store: store, policy: policy, log: log, metrics: m}
}

func (r *Runner) Store() Store {
	return r.store
}

// Run executes fn under op's name. Business errors return at once. After
// MaxAttempts conflicts Run returns domain.ErrSettlementFailed.
func (r *Runner) Run(ctx context.Context, op string, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		r.metrics.TxAttempt(op)

		err := r.store.InTx(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrTransientConflict) {
			return struct{}{}, backoff.Permanent(err)
		}
		r.metrics.TxConflict(op)
		return struct{}{}, err
	},
		backoff.WithBackOff(r.policy.backOff()),
		backoff.WithMaxTries(uint(r.policy.MaxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			r.log.Debug("ledger tx conflict, retrying", "op", op, "attempt", attempt, "backoff", wait, "error", err)
		}),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}

	switch {
	case err == nil:
		if attempt > 1 {
			r.log.Debug("ledger tx succeeded after retries", "op", op, "attempt", attempt)
		}
		return nil
	case !errors.Is(err, domain.ErrTransientConflict):
		return err
	}

	r.metrics.TxExhausted(op)
	r.log.Warn("ledger tx retries exhausted", "op", op, "attempts", attempt, "error", err)
	return fmt.Errorf("%w: %s after %d attempts: %w", domain.ErrSettlementFailed, op, attempt, err)
}

// RunResult is Run for units of work that produce a value.
func RunResult[T any](ctx context.Context, r *Runner, op string, fn func(tx Tx) (T, error)) (T, error) {
	var out T
	err := r.Run(ctx, op, func(tx Tx) error {
		v, err := fn(tx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
