package service

import (
	"context"
	"log/slog"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/metrics"
)

// emitter fans a committed balance change out to the notifier and the
// realtime channel, one event per wallet and reference. Failures are logged,
// never returned.
type emitter struct {
	notifier  Notifier
	publisher Publisher
	log       *slog.Logger
	metrics   *metrics.Metrics
}

func (e *emitter) balanceChanged(ctx context.Context, w *domain.Wallets, reference string, networks ...domain.Network) {
	if e == nil || !w.IsOwned() || len(networks) == 0 {
		return
	}

	balances := domain.NewBalances(w, networks...)
	ev := domain.BalanceChanged{
		UserID:         w.Owner(),
		Network:        networks[0].ToString(),
		GlobalBalance:  balances.Global,
		NetworkBalance: balances.Network[networks[0].ToString()],
		Networks:       balances.Network,
		Reference:      reference,
	}

	if e.notifier != nil {
		err := e.notifier.NotifyBalanceChanged(ctx, ev)
		e.metrics.Event("notifier", err)
		if err != nil {
			e.log.Warn("notify balance changed", "user_id", ev.UserID, "reference", reference, "error", err)
		}
	}

	if e.publisher != nil {
		err := e.publisher.Publish(domain.UserTopic(ev.UserID), domain.EVENT_BALANCE_UPDATED, ev)
		e.metrics.Event("publisher", err)
		if err != nil {
			e.log.Warn("publish balance update", "user_id", ev.UserID, "reference", reference, "error", err)
		}
	}
}
