package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"custody/settlement/internal/domain"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher sends realtime events on core nats, one subject per topic.
type Publisher struct {
	nc *nats.Conn
}

func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{nc: nc}
}

func (p *Publisher) Publish(topic, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event, err)
	}

	msg := nats.NewMsg(topic)
	msg.Header.Set(HEADER_EVENT, event)
	msg.Data = data
	return p.nc.PublishMsg(msg)
}

// Notifier queues balance notifications on jetstream for the delivery
// service. Publishing is asynchronous; the message id deduplicates.
type Notifier struct {
	js      jetstream.JetStream
	subject string
}

func NewNotifier(js jetstream.JetStream) *Notifier {
	return &Notifier{js: js, subject: SubjNotifyBalance}
}

func (n *Notifier) NotifyBalanceChanged(_ context.Context, ev domain.BalanceChanged) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(n.subject)
	msg.Header.Set(HEADER_EVENT, domain.EVENT_BALANCE_UPDATED)
	msg.Data = data

	_, err = n.js.PublishMsgAsync(msg, jetstream.WithMsgID(NewMsgId(ev.Reference, ev.UserID)))
	return err
}
