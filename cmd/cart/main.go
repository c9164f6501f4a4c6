package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"MiniCart/internal/cart"
	"MiniCart/internal/inventory"
	"MiniCart/internal/kvstore"
	"MiniCart/internal/storefront"
	"MiniCart/pkg/kit"
)

const startupTimeout = 10 * time.Second

func main() {
	service := "cart"
	log := kit.NewLogger(service, getenv("LOG_LEVEL", "info"))
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8084")
	inventoryURL := getenv("INVENTORY_URL", "http://localhost:8082")
	driver := getenv("STORE_DRIVER", "sqlite")
	dsn := getenv("STORE_DSN", "minicart.db")

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	store, err := kvstore.Open(ctx, driver, dsn)
	if err != nil {
		log.Fatal("open durable store", zap.String("driver", driver), zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	inv := inventory.NewClient(inventoryURL)
	engine, err := cart.New(ctx, cart.Config{
		Stock:   inv,
		Catalog: inv,
		Store:   store,
		Notify:  storefront.ToastNotifier{Log: log},
		Key:     getenv("CART_KEY", cart.DefaultKey),
		Log:     log,
		Metrics: cart.NewMetrics(reg),
	})
	if err != nil {
		log.Fatal("cart engine", zap.Error(err))
	}
	log.Info("cart loaded", zap.String("driver", driver), zap.Int("line_items", engine.Snapshot().Len()))

	h := storefront.NewHandler(&storefront.Server{
		Cart:     engine,
		Products: inv,
		Store:    store,
		Log:      log,
	}, storefront.HTTPDeps{
		Log:             log,
		Service:         service,
		Registry:        reg,
		MetricsEnabled:  getenv("METRICS_ENABLED", "true") == "true",
		MetricsToken:    os.Getenv("METRICS_TOKEN"),
		MutationsPerMin: getenvInt(log, "RATE_LIMIT_PER_MIN", 120),
	})

	closeStore := func(context.Context) error { return store.Close() }
	if err := kit.RunHTTPServer(":"+port, h, log, closeStore); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(log *zap.Logger, k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn("ignoring non-integer env", zap.String("key", k), zap.String("value", v))
		return def
	}
	return n
}
