package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/leadcrm/internal/config"
	"github.com/rpattn/leadcrm/internal/ingestion"
	"github.com/rpattn/leadcrm/internal/leads"
	"github.com/rpattn/leadcrm/internal/middleware"
	"github.com/rpattn/leadcrm/internal/repository"
)

type routerDeps struct {
	cfg       config.Config
	log       logrus.FieldLogger
	ingest    *ingestion.Service
	leads     *leads.Service
	employees repository.EmployeeRepository
	gatherer  prometheus.Gatherer
}

func newRouter(d routerDeps) http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	upload := ingestion.NewHTTPHandler(d.ingest, ingestion.HandlerOptions{
		MaxUploadBytes:  d.cfg.Ingestion.MaxUploadBytes,
		DefaultTemplate: d.cfg.Ingestion.DefaultTemplate,
		Logger:          d.log,
	})
	api.Handle("/leads/upload-csv", middleware.RateLimit(d.cfg.RateLimit.UploadRPS, d.cfg.RateLimit.UploadBurst)(upload)).
		Methods(http.MethodPost)
	api.Handle("/ingestions/logs", ingestion.NewLogsHandler(d.ingest)).Methods(http.MethodGet)

	leads.NewHandler(d.leads, d.log).Register(api)

	if d.cfg.Metrics.Enabled && d.gatherer != nil {
		router.Handle(d.cfg.Metrics.Path, promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	var handler http.Handler = router
	handler = middleware.DataLoaderMiddleware(d.employees)(handler)
	handler = middleware.ActorMiddleware(handler)
	handler = middleware.LoggingMiddleware(d.log)(handler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   d.cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader, ingestion.BatchIDHeader, "Content-Disposition"},
	})
	return corsHandler.Handler(handler)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "OK",
		"message": "Server is running",
	})
}
