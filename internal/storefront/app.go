package storefront

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MiniCart/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// MutationsPerMin caps cart mutations per client IP; 0 disables the cap.
	MutationsPerMin int
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))

	if deps.Registry != nil {
		metrics := kit.NewMetrics(deps.Registry)
		r.Use(metrics.Middleware(deps.Service))

		if deps.MetricsEnabled {
			r.Handle("/metrics", kit.MetricsHandler(deps.Registry, deps.MetricsToken))
		}
	}

	limiter := kit.NewIPRateLimiter(deps.MutationsPerMin, time.Minute)
	s.routes(r, limiter.Middleware)

	return r
}
