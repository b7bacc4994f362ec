package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"dossier/internal/dossier"
	"dossier/internal/dossier/handler"
	"dossier/internal/dossier/metrics"
	"dossier/internal/platform/config"
	"dossier/internal/platform/httpserver"
	"dossier/internal/platform/logger"
	"dossier/internal/registry/npi"
	"dossier/internal/registry/openpayments"
	"dossier/internal/registry/pubmed"
	httptransport "dossier/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	identity := npi.New(cfg.NPIBaseURL, cfg.SourceTimeout, log)
	payments := openpayments.New(cfg.OpenPaymentsBaseURL, cfg.SourceTimeout, cfg.TopPayers, log)
	publications := pubmed.New(cfg.PubMedBaseURL, cfg.SourceTimeout, cfg.MaxPublications, log)

	service := dossier.NewService(identity, payments, publications, cfg.SourceTimeout, log, m)
	router := httptransport.NewRouter(handler.New(service, log))

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting dossier service", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
