package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openretail/promotion-service/internal/api/handlers"
	"github.com/openretail/promotion-service/internal/api/middleware"
	"github.com/openretail/promotion-service/internal/cache"
	"github.com/openretail/promotion-service/internal/repository"
	"github.com/openretail/promotion-service/internal/service"
)

// Config carries the router's knobs.
type Config struct {
	BearerToken string
	CacheTTL    time.Duration
}

// NewRouter wires repositories, services and handlers over the given
// connection and returns the HTTP surface of the promotion service.
func NewRouter(db *sql.DB, cfg Config) http.Handler {
	headerRepo := repository.NewHeaderRepo(db)
	lineRepo := repository.NewLineRepo(db)
	detailRepo := repository.NewDetailRepo(db)
	batchRepo := repository.NewBatchRepo(db)

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	promoCache := cache.NewPromotionCache(ttl)

	headerSvc := service.NewHeaderService(headerRepo, promoCache)
	lineSvc := service.NewLineService(lineRepo, headerRepo, detailRepo, promoCache)
	detailSvc := service.NewDetailService(detailRepo, lineRepo, promoCache)
	wizardSvc := service.NewWizardService(batchRepo, promoCache)
	evaluator := service.NewEvaluator(headerRepo, promoCache)

	headerHandler := handlers.NewHeaderHandler(headerSvc, lineSvc)
	lineHandler := handlers.NewLineHandler(lineSvc, detailSvc)
	detailHandler := handlers.NewDetailHandler(detailSvc)
	promoHandler := handlers.NewPromotionHandler(wizardSvc, evaluator)

	r := chi.NewRouter()

	r.Route("/promotions", func(r chi.Router) {
		r.Use(middleware.RequireBearer(cfg.BearerToken))

		r.Route("/headers", func(r chi.Router) {
			r.Get("/", headerHandler.List)
			r.Post("/", headerHandler.Create)
			r.Get("/{id}", headerHandler.Get)
			r.Put("/{id}", headerHandler.Update)
			r.Put("/{id}/toggle", headerHandler.ToggleActive)
			r.Delete("/{id}", headerHandler.Delete)
			r.Get("/{id}/lines/all", headerHandler.ListLines)
		})

		r.Route("/lines", func(r chi.Router) {
			r.Post("/", lineHandler.Create)
			r.Put("/{id}", lineHandler.Update)
			r.Delete("/{id}", lineHandler.Delete)
			r.Get("/{id}/details/all", lineHandler.ListDetails)
		})

		r.Route("/details", func(r chi.Router) {
			r.Post("/", detailHandler.Create)
			r.Put("/{id}", detailHandler.Update)
			r.Put("/{id}/activate", detailHandler.Activate)
			r.Put("/{id}/deactivate", detailHandler.Deactivate)
		})

		r.Post("/quick", promoHandler.Quick)
		r.Post("/evaluate", promoHandler.Evaluate)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
