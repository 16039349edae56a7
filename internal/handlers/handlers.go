package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/owlcentral/forecast-api/internal/logic"
)

// Pinger reports backend liveness for the ready check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Forecast       logic.ForecastService
	Logger         *zap.Logger
	AllowedOrigins []string

	// Backend pingers for the ready check; nil entries are skipped.
	Postgres   Pinger
	ClickHouse Pinger
	Redis      Pinger
}

type Handler struct {
	forecast logic.ForecastService
	logger   *zap.SugaredLogger
	origins  []string
	pg       Pinger
	ch       Pinger
	redis    Pinger
}

func New(cfg Config) *Handler {
	return &Handler{
		forecast: cfg.Forecast,
		logger:   cfg.Logger.Sugar(),
		origins:  cfg.AllowedOrigins,
		pg:       cfg.Postgres,
		ch:       cfg.ClickHouse,
		redis:    cfg.Redis,
	}
}

// Routes assembles the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/standings", h.GetStageStandings)
		r.Get("/standings/season", h.GetSeasonStandings)
		r.Get("/forecast/stage", h.GetStageForecast)
		r.Get("/odds/match", h.GetMatchOdds)
		r.Get("/ratings/{team}", h.GetTeamRating)
	})

	return r
}
