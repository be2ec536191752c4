package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"custody/settlement/internal/config"
	"custody/settlement/internal/domain"
	"custody/settlement/internal/infra/memstore"
	"custody/settlement/internal/infra/nats"
	"custody/settlement/internal/infra/postgres"
	"custody/settlement/internal/keys"
	"custody/settlement/internal/ledger"
	"custody/settlement/internal/metrics"
	"custody/settlement/internal/network"
	"custody/settlement/internal/repository"
	"custody/settlement/internal/service"

	"github.com/gin-gonic/gin"
	natsgo "github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type App struct {
	Config    *config.Config
	Db        *gorm.DB // nil for the memory driver
	NatsInfra *nats.NatsInfra
	Log       *slog.Logger

	promRegistry *prometheus.Registry
	registry     *network.Registry
	subs         []*natsgo.Subscription
}

func (app *App) Start() {
	app.promRegistry = prometheus.NewRegistry()
	app.promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(app.promRegistry)

	services, err := app.build(m)
	if err != nil {
		app.Log.Error("app build failed", "error", err)
		return
	}
	defer app.shutdown()

	handler := NewHandler(services, 2*app.Config.Settlement.TxTimeout, app.Log)
	for range app.Config.Nats.Workers {
		sub, err := app.NatsInfra.Nc.QueueSubscribe(nats.CORE_WILDCARD, nats.QUEUE_GROUP, handler.natsCoreHandler)
		if err != nil {
			app.Log.Error("queue subscribe failed", "subject", nats.CORE_WILDCARD, "error", err)
			return
		}
		app.subs = append(app.subs, sub)
	}
	app.Log.Info("settlement is serving", "subject", nats.CORE_WILDCARD, "workers", len(app.subs))

	eChan := make(chan error, 1)
	interrupt := make(chan os.Signal, 1)

	srv := app.opsServer()
	if srv != nil {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				eChan <- fmt.Errorf("listen and serve: %w", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-eChan:
		app.Log.Error("app fatal error", "listen", app.Config.Metrics.Listen, "error", err)
	case sig := <-interrupt:
		app.Log.Info("shutting down", "signal", sig.String())
	}
}

// build wires the registry, the ledger store and the services.
func (app *App) build(m *metrics.Metrics) (*service.Services, error) {
	c := app.Config

	specs, err := c.NetworkSpecs()
	if err != nil {
		return nil, err
	}

	app.registry = network.New(specs, network.DefaultDialers(c.TronApiKey), network.Options{
		ReadTimeout: c.Settlement.RpcTimeout,
		TxTimeout:   c.Settlement.TxTimeout,
		Log:         app.Log,
		Metrics:     m,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	app.registry.ConnectAll(ctx)
	cancel()

	keySet, err := keys.NewSet(keys.Mode(c.Provisioning.KeyMode))
	if err != nil {
		return nil, err
	}

	return service.NewServices(service.Deps{
		Store:     app.store(),
		Chain:     app.registry,
		Users:     nats.NewUsers(app.NatsInfra.Nc, c.Nats.UsersSubject, c.Nats.RequestTimeout),
		Notifier:  nats.NewNotifier(app.NatsInfra.Js),
		Publisher: nats.NewPublisher(app.NatsInfra.Nc),
		Keys:      keySet,
		Policy: ledger.Policy{
			MaxAttempts: c.Settlement.MaxAttempts,
			BaseBackoff: c.Settlement.BaseBackoff,
			MaxBackoff:  c.Settlement.MaxBackoff,
		},
		Log:     app.Log,
		Metrics: m,
		Provisioning: service.ProvisioningConfig{
			FundingNetwork: domain.StrToNetwork(c.Provisioning.FundingNetwork),
			FundingKey:     c.Provisioning.FundingKey,
			BootstrapGas:   decimal.RequireFromString(c.Provisioning.BootstrapGas),
		},
		Mint: service.MintConfig{
			HotWalletKey:     c.Mint.HotWalletKey,
			Quantity:         decimal.RequireFromString(c.Mint.Quantity),
			TransferQuantity: decimal.RequireFromString(c.Mint.TransferQuantity),
		},
	}), nil
}

func (app *App) store() ledger.Store {
	if app.Db == nil {
		app.Log.Warn("using in-memory ledger store, balances are lost on exit")
		return memstore.New()
	}
	return postgres.NewStore(app.Db, repository.New())
}

// opsServer exposes /metrics and /healthz.
func (app *App) opsServer() *http.Server {
	if app.Config.Metrics.Listen == "" {
		return nil
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(app.promRegistry, promhttp.HandlerOpts{})))
	r.GET("/healthz", func(c *gin.Context) {
		networks := make(map[string]bool)
		for _, id := range app.registry.Networks() {
			networks[id.ToString()] = app.registry.Available(id)
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "networks": networks})
	})

	return &http.Server{Addr: app.Config.Metrics.Listen, Handler: r, ReadHeaderTimeout: 10 * time.Second}
}

func (app *App) shutdown() {
	for _, sub := range app.subs {
		if err := sub.Drain(); err != nil {
			app.Log.Warn("drain subscription", "error", err)
		}
	}
	if app.registry != nil {
		app.registry.Close()
	}
	app.NatsInfra.Close()
}
