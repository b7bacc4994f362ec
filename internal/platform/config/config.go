package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	// Upstream registry endpoints; defaults point at the public APIs and
	// tests override them with httptest servers.
	NPIBaseURL          string
	OpenPaymentsBaseURL string
	PubMedBaseURL       string

	// SourceTimeout bounds each registry fetch independently.
	SourceTimeout time.Duration

	// TopPayers bounds the payer ranking in a payment summary.
	TopPayers int

	// MaxPublications caps the publication list.
	MaxPublications int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:                envOr("DOSSIER_ADDR", ":8080"),
		NPIBaseURL:          os.Getenv("DOSSIER_NPI_URL"),
		OpenPaymentsBaseURL: os.Getenv("DOSSIER_OPENPAYMENTS_URL"),
		PubMedBaseURL:       os.Getenv("DOSSIER_PUBMED_URL"),
		SourceTimeout:       envDuration("DOSSIER_SOURCE_TIMEOUT", 15*time.Second),
		TopPayers:           envInt("DOSSIER_TOP_PAYERS", 5),
		MaxPublications:     envInt("DOSSIER_MAX_PUBLICATIONS", 30),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
