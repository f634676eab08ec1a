package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/address"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/clock"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/suggest"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/wallet"
)

const serviceName = "checkout-service"

// backends groups the storage implementations selected by STORAGE.
type backends struct {
	carts       cart.Repository
	addresses   address.Book
	wallet      wallet.Ledger
	orders      order.Store
	sequences   events.SequenceRepository
	checkpoints events.Checkpointer
	close       func()
}

func main() {
	cfg := config.Load()

	logger, err := logging.New(serviceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg, "checkout")
	checkoutMetrics := metrics.NewCheckoutMetrics(reg, "checkout")

	store, err := openBackends(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open storage", zap.String("storage", cfg.Storage), zap.Error(err))
	}
	defer store.close()

	publisher, closeEvents, err := startEvents(ctx, cfg, store, logger)
	if err != nil {
		logger.Fatal("start events", zap.String("broker", cfg.EventsBroker), zap.Error(err))
	}
	defer closeEvents()

	searcher, err := suggest.NewClient(cfg.SuggestURL, cfg.SuggestTimeout, logger)
	if err != nil {
		logger.Fatal("suggest client", zap.Error(err))
	}

	clk := clock.NewSystem()
	carts := cart.NewService(store.carts)
	orch := checkout.New(checkout.Deps{
		Carts:           carts,
		Addresses:       store.addresses,
		Wallet:          store.wallet,
		Orders:          store.orders,
		Publisher:       publisher,
		Clock:           clk,
		Logger:          logger,
		Metrics:         checkoutMetrics,
		SettlementDelay: cfg.SettlementDelay,
	})

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:           logger,
		Checkout:         orch,
		Carts:            carts,
		Orders:           store.orders,
		Search:           searcher,
		Clock:            clk,
		Metrics:          serverMetrics,
		Gatherer:         reg,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr),
			zap.String("storage", cfg.Storage), zap.String("broker", cfg.EventsBroker))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown error", zap.Error(err))
	}
}

func openBackends(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backends, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		return &backends{
			carts:       cart.NewMemoryRepository(),
			addresses:   address.NewMemoryBook(),
			wallet:      wallet.NewMemoryLedger(),
			orders:      order.NewMemoryStore(),
			sequences:   events.NewMemorySequences(),
			checkpoints: events.NewMemoryCheckpoints(),
			close:       func() {},
		}, nil
	}

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			return nil, err
		}
	}
	sqlDB, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &backends{
		carts:       cart.NewRepository(sqlDB),
		addresses:   address.NewRepository(sqlDB),
		wallet:      wallet.NewPostgresLedger(pool),
		orders:      order.NewPostgresStore(sqlDB, logger),
		sequences:   events.NewSequenceRepository(sqlDB),
		checkpoints: events.NewCheckpointRepository(pool),
		close: func() {
			pool.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

// startEvents wires the publisher and the order status consumer. The
// returned Publisher is nil when events are disabled.
func startEvents(ctx context.Context, cfg config.Config, store *backends, logger *zap.Logger) (checkout.Publisher, func(), error) {
	statusHandler := events.OrderStatusChangedHandler(store.orders, store.checkpoints, logger)

	switch cfg.EventsBroker {
	case config.BrokerRabbitMQ:
		conn, err := events.Dial(ctx, cfg.RabbitURL, 10, logger)
		if err != nil {
			return nil, nil, err
		}
		transport, err := events.NewRabbitTransport(conn)
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		if err := events.StartRabbitConsumer(ctx, conn, events.OrderStatusChangedRoutingKey, statusHandler, logger); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		pub := events.NewPublisher(transport, store.sequences, events.PublisherOptions{})
		return pub, func() {
			if err := pub.Close(); err != nil {
				logger.Warn("publisher close error", zap.Error(err))
			}
			_ = conn.Close()
		}, nil

	case config.BrokerKafka:
		pub := events.NewPublisher(events.NewKafkaTransport(cfg.KafkaBrokers), store.sequences, events.PublisherOptions{})
		reader := events.NewKafkaReader(cfg.KafkaBrokers)
		go func() {
			if err := events.RunKafkaConsumer(ctx, reader, events.OrderStatusChangedRoutingKey, statusHandler, logger); err != nil {
				logger.Error("kafka consumer stopped", zap.Error(err))
			}
		}()
		return pub, func() {
			if err := pub.Close(); err != nil {
				logger.Warn("publisher close error", zap.Error(err))
			}
		}, nil

	default:
		logger.Warn("events disabled", zap.String("broker", cfg.EventsBroker))
		return nil, func() {}, nil
	}
}
