package httpapi

import (
	"context"
	"net/http"

	"github.com/DoyleJ11/bgg-shelf-mapper/internal/hub"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/metrics"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/view"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports whether the shelf backend answers.
type Pinger interface {
	Health(ctx context.Context) error
}

type Deps struct {
	Hub      *hub.Hub
	Renderer *view.Renderer
	Backend  Pinger
	Logger   *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(d.Logger))
	r.Use(metrics.Middleware)

	r.Get("/", Index(d.Hub, d.Renderer))
	r.Get("/ws", ws.Handler(d.Hub, d.Renderer))
	r.Handle("/static/*", http.StripPrefix("/static/", view.Static()))

	r.Get("/healthz", Healthz)
	r.Get("/readyz", Readyz(d.Backend))
	r.Handle("/metrics", promhttp.Handler())
	return r
}
