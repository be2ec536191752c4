package nats

import (
	"context"
	"log/slog"
	"time"

	"custody/settlement/internal/config"
	"custody/settlement/internal/logger"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

type NatsInfra struct {
	Nc *nats.Conn
	Js jetstream.JetStream
}

func Init(config *config.Config, log *slog.Logger) *NatsInfra {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	nc, err := nats.Connect(config.Nats.Servers,
		nats.Name("settlement"),
		nats.MaxReconnects(100),
		nats.ReconnectWait(3*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.TemplNatsInfo(log, "disconnected", nc.ConnectedUrl())
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.TemplNatsInfo(log, "reconnected", nc.ConnectedUrl())
		}))
	if err != nil {
		logger.TemplNatsError(log, "connect failed", config.Nats.Servers, err)
		panic("NATS: connect failed: " + err.Error())
	}

	js, err := jetstream.New(nc)
	if err != nil {
		panic(err)
	}

	if _, err := InitNotificationsStream(ctx, js, config.Nats.NotificationStream); err != nil {
		panic("NATS: stream: " + err.Error())
	}

	logger.TemplNatsInfo(log, "connected", nc.ConnectedUrl())
	return &NatsInfra{Nc: nc, Js: js}
}

// InitNotificationsStream holds balance notifications. The duplicate window
// drops re-published messages with the same id.
func InitNotificationsStream(ctx context.Context, js jetstream.JetStream, name string) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       name,
		Subjects:   []string{NOTIFICATIONS_SUBJECT_PREFIX + ">"},
		Duplicates: 2 * time.Minute,
		MaxAge:     24 * time.Hour,
	})
}

func (n *NatsInfra) Close() {
	if n == nil || n.Nc == nil {
		return
	}
	if err := n.Nc.Drain(); err != nil {
		n.Nc.Close()
	}
}
