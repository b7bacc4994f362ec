// Package dossier holds the normalized domain model for a physician lookup
// and the service that aggregates the three upstream registries into it.
package dossier

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "dossier/pkg/domain-errors"
	"dossier/pkg/namekit"
)

// SourceStatus reports the per-section outcome of an upstream lookup. It
// distinguishes "the registry had nothing" from "we could not ask the
// registry" so consumers can tell which sections to trust.
type SourceStatus string

const (
	StatusFound    SourceStatus = "found"
	StatusNotFound SourceStatus = "not_found"
	StatusError    SourceStatus = "error"
)

// Query is a user-initiated lookup request.
type Query struct {
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
	City  string `json:"city,omitempty"`
}

// Validate enforces the single synchronous input invariant: the name must
// contain at least one non-whitespace token usable as a search term.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Name) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	if q.State != "" && len(q.State) != 2 {
		return dErrors.New(dErrors.CodeBadRequest, "state must be a 2-letter code")
	}
	return nil
}

// SearchKey normalizes the query for provider adapters.
func (q Query) SearchKey() SearchKey {
	name := namekit.Parse(q.Name)
	return SearchKey{
		FirstName: name.First,
		LastName:  name.Last,
		FullName:  name.Full,
		State:     strings.ToUpper(q.State),
		City:      q.City,
	}
}

// SearchKey is what adapters actually query providers with: a parsed name
// plus optional region. After a successful identity lookup it also carries
// the NPI and verified location that refine the payments and publication
// searches.
type SearchKey struct {
	FirstName string
	LastName  string
	FullName  string
	State     string
	City      string
	NPI       string
}

// IdentityRecord is the normalized identity-registry section. MatchedName
// and CandidateCount exist so callers can detect ambiguous matches; the
// service itself trusts provider-side ranking and takes the first result.
type IdentityRecord struct {
	NPI            string       `json:"npi"`
	MatchedName    string       `json:"matched_name"`
	Credential     string       `json:"credential"`
	Specialty      string       `json:"specialty"`
	Organization   string       `json:"organization"`
	City           string       `json:"city"`
	State          string       `json:"state"`
	CandidateCount int          `json:"candidate_count"`
	Status         SourceStatus `json:"status"`
}

// EmptyIdentity returns an IdentityRecord with zero payload and the given
// outcome, keeping the dossier fully populated on miss or failure.
func EmptyIdentity(status SourceStatus) IdentityRecord {
	return IdentityRecord{Status: status}
}

// Payer is one paying company and its aggregated total.
type Payer struct {
	Name   string `json:"name"`
	Amount Amount `json:"amount"`
}

// PaymentSummary is the normalized payments-registry section: client-side
// aggregation of every itemized payment matched across the covered years.
type PaymentSummary struct {
	TotalAmount  Amount       `json:"total_amount"`
	PaymentCount int          `json:"payment_count"`
	TopPayers    []Payer      `json:"top_payers"`
	YearsCovered []int        `json:"years_covered"`
	Status       SourceStatus `json:"status"`
}

// EmptyPayments returns a PaymentSummary with zero payload and the given
// outcome.
func EmptyPayments(status SourceStatus) PaymentSummary {
	return PaymentSummary{
		TopPayers:    []Payer{},
		YearsCovered: []int{},
		Status:       status,
	}
}

// Publication is one article from the publication index. PubMedID is the
// stable identifier downstream consumers dedupe on.
type Publication struct {
	PubMedID string `json:"pubmed_id"`
	Title    string `json:"title"`
	Journal  string `json:"journal"`
	Year     int    `json:"year"`
}

// PublicationList is the normalized publication-index section, kept in the
// provider's relevance order.
type PublicationList struct {
	Entries []Publication `json:"entries"`
	Status  SourceStatus  `json:"status"`
}

// EmptyPublications returns a PublicationList with zero payload and the given
// outcome.
func EmptyPublications(status SourceStatus) PublicationList {
	return PublicationList{Entries: []Publication{}, Status: status}
}

// Dossier is the aggregated output record for one physician lookup. It is
// always fully constructed: sections that found nothing or failed carry their
// SourceStatus with empty payloads rather than being omitted.
type Dossier struct {
	ID           uuid.UUID       `json:"id"`
	Query        Query           `json:"query"`
	Identity     IdentityRecord  `json:"identity"`
	Payments     PaymentSummary  `json:"payments"`
	Publications PublicationList `json:"publications"`
	GeneratedAt  time.Time       `json:"generated_at"`
}
