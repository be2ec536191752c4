package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.TxAttempt("send")
	m.TxAttempt("send")
	m.TxConflict("send")
	m.NetworkUp("polygon", true)
	m.NetworkUp("tron", false)
	m.Event("realtime", errors.New("down"))

	if got := testutil.ToFloat64(m.txAttempts.WithLabelValues("send")); got != 2 {
		t.Fatalf("attempts = %v", got)
	}
	if got := testutil.ToFloat64(m.txConflicts.WithLabelValues("send")); got != 1 {
		t.Fatalf("conflicts = %v", got)
	}
	if got := testutil.ToFloat64(m.networkUp.WithLabelValues("polygon")); got != 1 {
		t.Fatalf("polygon up = %v", got)
	}
	if got := testutil.ToFloat64(m.networkUp.WithLabelValues("tron")); got != 0 {
		t.Fatalf("tron up = %v", got)
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues("realtime", "error")); got != 1 {
		t.Fatalf("events = %v", got)
	}
}

func TestNilSafe(t *testing.T) {
	var m *Metrics
	m.TxAttempt("send")
	m.TxExhausted("send")
	m.NetworkUp("ton", true)
	m.RpcError("ton", "ping")
	m.Event("notify", nil)
}
