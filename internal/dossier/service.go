package dossier

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"dossier/internal/dossier/metrics"
	"dossier/pkg/namekit"
	"dossier/pkg/requestcontext"
)

// Source adapters translate a normalized SearchKey into provider-specific
// requests. Failures never surface as Go errors: transport failures and
// timeouts are encoded in the returned record's SourceStatus so one broken
// registry cannot abort the aggregation.

// IdentitySource resolves a physician identity (NPI registry).
type IdentitySource interface {
	Fetch(ctx context.Context, key SearchKey) IdentityRecord
}

// PaymentsSource aggregates industry payments (Open Payments).
type PaymentsSource interface {
	Fetch(ctx context.Context, key SearchKey) PaymentSummary
}

// PublicationSource lists publications (PubMed).
type PublicationSource interface {
	Fetch(ctx context.Context, key SearchKey) PublicationList
}

// Service builds dossiers by fanning a lookup out to the three registries and
// merging whatever comes back into one fully-populated record.
type Service struct {
	identity     IdentitySource
	payments     PaymentsSource
	publications PublicationSource
	timeout      time.Duration
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       trace.Tracer
}

// NewService constructs the aggregator. timeout bounds each source fetch
// independently; a source that exceeds it reports StatusError like any other
// transport failure.
func NewService(
	identity IdentitySource,
	payments PaymentsSource,
	publications PublicationSource,
	timeout time.Duration,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{
		identity:     identity,
		payments:     payments,
		publications: publications,
		timeout:      timeout,
		logger:       logger,
		metrics:      m,
		tracer:       otel.Tracer("dossier"),
	}
}

// BuildDossier runs one lookup. The only failure it reports is an invalid
// query, raised before any network call; after that it always returns a
// complete dossier, in the worst case with every section marked error.
//
// The identity registry is consulted first because its verified match
// refines the payments and publication searches; that refinement is
// best-effort, so when identity misses or fails the other two still run
// against the raw query name, independently and in parallel.
func (s *Service) BuildDossier(ctx context.Context, q Query) (*Dossier, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "dossier.lookup",
		trace.WithAttributes(attribute.String("query.state", q.State)))
	defer span.End()

	start := time.Now()
	key := q.SearchKey()

	identity := s.fetchIdentity(ctx, key)

	refined := key
	if identity.Status == StatusFound {
		refined = refineKey(key, identity)
	}

	var (
		payments     PaymentSummary
		publications PublicationList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		payments = s.fetchPayments(gctx, refined)
		return nil
	})
	g.Go(func() error {
		publications = s.fetchPublications(gctx, refined)
		return nil
	})
	// Goroutines encode failure in section statuses, never in errors.
	_ = g.Wait()

	d := &Dossier{
		ID:           uuid.New(),
		Query:        q,
		Identity:     identity,
		Payments:     payments,
		Publications: publications,
		GeneratedAt:  requestcontext.Now(ctx).UTC(),
	}

	s.metrics.ObserveLookupLatency(time.Since(start))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "dossier built",
			"request_id", requestcontext.RequestID(ctx),
			"dossier_id", d.ID,
			"identity_status", identity.Status,
			"payments_status", payments.Status,
			"publications_status", publications.Status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return d, nil
}

// refineKey folds the verified identity into the search key so the payments
// and publication adapters query by the matched physician rather than the
// raw user input.
func refineKey(key SearchKey, identity IdentityRecord) SearchKey {
	refined := key
	refined.NPI = identity.NPI
	if identity.MatchedName != "" {
		parsed := namekit.Parse(identity.MatchedName)
		refined.FirstName = parsed.First
		refined.LastName = parsed.Last
		refined.FullName = parsed.Full
	}
	if identity.State != "" {
		refined.State = identity.State
	}
	if identity.City != "" {
		refined.City = identity.City
	}
	return refined
}

func (s *Service) fetchIdentity(ctx context.Context, key SearchKey) IdentityRecord {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "dossier.fetch",
		trace.WithAttributes(attribute.String("source", "identity")))
	defer span.End()

	start := time.Now()
	record := s.identity.Fetch(ctx, key)
	s.metrics.ObserveSourceLatency("identity", time.Since(start))
	s.metrics.IncrementOutcome("identity", string(record.Status))
	span.SetAttributes(attribute.String("status", string(record.Status)))
	return record
}

func (s *Service) fetchPayments(ctx context.Context, key SearchKey) PaymentSummary {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "dossier.fetch",
		trace.WithAttributes(attribute.String("source", "payments")))
	defer span.End()

	start := time.Now()
	summary := s.payments.Fetch(ctx, key)
	s.metrics.ObserveSourceLatency("payments", time.Since(start))
	s.metrics.IncrementOutcome("payments", string(summary.Status))
	span.SetAttributes(attribute.String("status", string(summary.Status)))
	return summary
}

func (s *Service) fetchPublications(ctx context.Context, key SearchKey) PublicationList {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "dossier.fetch",
		trace.WithAttributes(attribute.String("source", "publications")))
	defer span.End()

	start := time.Now()
	list := s.publications.Fetch(ctx, key)
	s.metrics.ObserveSourceLatency("publications", time.Since(start))
	s.metrics.IncrementOutcome("publications", string(list.Status))
	span.SetAttributes(attribute.String("status", string(list.Status)))
	return list
}
