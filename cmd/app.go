package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	bidding "drop-auction/internal/biddingService"
	"drop-auction/internal/config"
	"drop-auction/internal/notification"
	"drop-auction/internal/repository"
	"drop-auction/internal/repository/postgres"
	"drop-auction/internal/repository/sqlite"
	"drop-auction/internal/resolver"
	"drop-auction/internal/scheduler"
	"drop-auction/internal/server"
	"drop-auction/utils"
)

// App holds the wired components of one auction node
type App struct {
	Store     repository.AuctionDB
	Bidding   *bidding.BiddingService
	Invoices  *notification.InvoiceService
	Scheduler *scheduler.Scheduler
	Router    *gin.Engine

	closeStore func() error
}

// NewApp opens the configured store and wires the services on top of it.
// Countdowns are not resumed; call Start for that.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	dispatcher := notification.NewDispatcher(store, store, cfg.Mail.From)
	res := resolver.New(store, dispatcher, cfg.Mail.SiteURL)
	sched := scheduler.New(store, res,
		scheduler.WithPolicy(PolicyFromConfig(cfg.Auction)),
		scheduler.WithResolveAttempts(cfg.Auction.ResolveAttempts),
	)
	biddingSvc := bidding.NewBiddingService(store, sched, bidding.WithExtensionWindow(cfg.Auction.ExtensionWindow))
	invoiceSvc := notification.NewInvoiceService(store, dispatcher, cfg.Mail.SiteURL)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	router := server.SetupRouter(biddingSvc, invoiceSvc, server.Options{
		AllowOrigins: cfg.Server.AllowOrigins,
		MetricsPath:  metricsPath,
	})

	return &App{
		Store:      store,
		Bidding:    biddingSvc,
		Invoices:   invoiceSvc,
		Scheduler:  sched,
		Router:     router,
		closeStore: closeStore,
	}, nil
}

// Start re-arms a watcher for every countdown left in the store
func (a *App) Start(ctx context.Context) error {
	if _, err := a.Scheduler.Resume(ctx); err != nil {
		return fmt.Errorf("app: resume countdowns: %w", err)
	}
	return nil
}

// Close stops every watcher and releases the store
func (a *App) Close() error {
	a.Scheduler.Stop()
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}

// PolicyFromConfig converts the configured poll rules into a countdown policy
func PolicyFromConfig(c config.AuctionConf) scheduler.Policy {
	return scheduler.Policy{
		FarInterval:   c.FarPoll,
		NearInterval:  c.NearPoll,
		NearThreshold: int64(c.NearThreshold / time.Second),
	}
}

func openStore(ctx context.Context, c config.StoreConf) (repository.AuctionDB, func() error, error) {
	switch c.Driver {
	case config.DriverMemory:
		return repository.NewMemoryRepo(), nil, nil
	case config.DriverSQLite:
		s, err := sqlite.New(c.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("app: open sqlite store %s: %w", c.Path, err)
		}
		utils.Info("sqlite store opened", map[string]any{"path": c.Path})
		return s, s.Close, nil
	case config.DriverPostgres:
		s, err := postgres.New(ctx, c.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("app: open postgres store: %w", err)
		}
		utils.Info("postgres store opened", nil)
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("app: unknown store driver %q", c.Driver)
	}
}
