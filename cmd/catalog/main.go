package main

import (
	"context"
	"database/sql"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"MiniCart/internal/catalog"
	"MiniCart/pkg/kit"
)

func main() {
	service := "catalog"
	log := kit.NewLogger(service, getenv("LOG_LEVEL", "info"))
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8082")

	store, closeStore := openStore(log, os.Getenv("DATABASE_URL"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	h := catalog.NewHandler(&catalog.Server{Store: store, Log: log}, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: getenv("METRICS_ENABLED", "true") == "true",
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
	})

	if err := kit.RunHTTPServer(":"+port, h, log, closeStore); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// openStore uses Postgres when a DSN is configured and the seeded in-memory
// catalog otherwise.
func openStore(log *zap.Logger, dsn string) (catalog.Store, func(context.Context) error) {
	noop := func(context.Context) error { return nil }
	if dsn == "" {
		log.Info("DATABASE_URL not set, serving seeded in-memory catalog")
		return catalog.NewMemStore(), noop
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	return catalog.NewPostgresStore(db), func(context.Context) error { return db.Close() }
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
