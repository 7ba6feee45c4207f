package main

// POST   /products                 - Create a product (admin)
// GET    /products/list            - List products
// GET    /products/{id}            - Product with current stock
// PUT    /products/{id}            - Overwrite a product (admin)
// POST   /products/{id}/restock    - Return units to the shelf (admin)
// DELETE /products/{id}            - Discontinue a product (admin)
// GET    /cart/list                - List the session cart
// POST   /cart/add                 - Stage a product in the cart
// POST   /cart/update              - Change a staged quantity
// POST   /cart/remove              - Drop a product from the cart
// POST   /checkout/order           - Commit the cart as pending orders
// GET    /orders                   - Admin: all orders; shopper: own orders
// GET    /orders/{id}              - One order
// POST   /orders/{id}/confirm      - Complete and reserve stock (admin)
// POST   /orders/{id}/refund       - Refund a pending order (admin or buyer)
// DELETE /orders/{id}              - Delete an order (admin)

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storefront-orders/cart"
	"storefront-orders/config"
	"storefront-orders/handler"
	"storefront-orders/notify"
	"storefront-orders/service"
	"storefront-orders/store"

	"github.com/gorilla/mux"
)

// --- EMBED MIGRATIONS ---
//
//go:embed migrations.sql
var migrationSQL string

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	logger := setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	// --- Store ---
	st, err := openStore(cfg, logger)
	if err != nil {
		log.Fatalf("Store setup failed: %v", err)
	}
	defer st.Close()

	// --- Cart storage ---
	var carts cart.Storage = cart.NewMemoryStorage()
	if cfg.RedisURL != "" {
		rs, err := cart.NewRedisStorage(cfg.RedisURL, cfg.CartTTL, logger)
		if err != nil {
			log.Fatalf("Redis setup failed: %v", err)
		}
		defer rs.Close()
		carts = rs
	}

	// --- Notifier ---
	var notifier notify.Notifier = notify.LogNotifier{Logger: logger}
	if cfg.AMQP.URL != "" {
		an, err := notify.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
		if err != nil {
			log.Fatalf("RabbitMQ setup failed: %v", err)
		}
		defer an.Close()
		notifier = an
	}
	dispatcher := notify.NewDispatcher(notifier, cfg.NotifyTimeout, logger)

	// --- Service ---
	svc := service.NewService(st, carts, dispatcher, logger)
	var serviceInterface service.ServiceInterface = svc

	// --- Handlers ---
	h := handler.NewHandler(serviceInterface, handler.HeaderIdentity, logger)

	// --- Router ---
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	// --- Server ---
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server running", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	dispatcher.Wait()
}

func openStore(cfg config.Config, logger *slog.Logger) (store.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		return store.NewMemoryStore(), nil
	}

	ps, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// --- RUN MIGRATIONS ---
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := ps.Migrate(ctx, migrationSQL); err != nil {
		ps.Close()
		return nil, err
	}
	logger.Info("database migrations executed successfully")
	return ps, nil
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
