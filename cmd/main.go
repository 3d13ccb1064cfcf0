package main

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

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/fjod/go_cart/storefront/pkg/telemetry"
	"golang.org/x/text/currency"
)

const serviceName = "storefront"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Service: serviceName, Env: cfg.Env, Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("storefront stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) (err error) {
	shutdownTracing, err := telemetry.InitTracing(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err = errors.Join(err, shutdownTracing(sctx))
	}()

	unit, err := currency.ParseISO(cfg.Currency)
	if err != nil {
		return fmt.Errorf("invalid CURRENCY %q: %w", cfg.Currency, err)
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, store.Close()) }()
	log.Info("storage ready", "driver", cfg.StorageDriver)

	client := catalog.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, catalog.WithLogger(log))

	opts := []service.Option{service.WithStorageKey(cfg.StorageKey), service.WithLogger(log)}
	if cfg.ResetCorruptCart {
		opts = append(opts, service.WithResetCorrupt())
	}
	cart, err := service.NewCartService(ctx, store, client, opts...)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	feed := notify.NewFeed(notify.DefaultFeedSize)
	notifiers := notify.Multi{feed, notify.NewLogNotifier(log)}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := notify.NewKafkaNotifier(log, cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer func() { err = errors.Join(err, kafka.Close()) }()
		notifiers = append(notifiers, kafka)
		log.Info("kafka notifications enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	cartHandler := h.NewCartHandler(cart, notifiers, unit, cfg.RequestTimeout, log)
	router := h.NewRouter(cartHandler, h.NewNotificationsHandler(feed), cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("storefront listening", "port", cfg.HTTPPort, "api", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return storage.NewMemory(), nil
	case config.DriverRedis:
		rdb, err := storage.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return rdb, nil
	case config.DriverSQLite:
		db, err := storage.NewSQLite(cfg.SQLitePath, cfg.SQLiteMigrations)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverPostgres:
		db, err := storage.NewPostgres(cfg.PostgresDSN, cfg.PostgresMigrations)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverMongo:
		db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		return storage.NewMongo(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
