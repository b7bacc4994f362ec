// Package npi adapts the NPI Registry (the public US provider identity API)
// into the normalized IdentityRecord the dossier service consumes.
package npi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dossier/internal/dossier"
)

// DefaultBaseURL is the public NPI Registry search endpoint.
const DefaultBaseURL = "https://npiregistry.cms.hhs.gov/api/"

// candidateLimit caps how many provider-ranked candidates one search pulls.
const candidateLimit = 10

// Client queries the NPI Registry. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New constructs an NPI client. timeout bounds each request independently of
// the caller's context.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Wire types mirror only the registry fields we read; unknown fields are
// ignored so additive upstream schema changes cannot break decoding.
type searchResponse struct {
	ResultCount int            `json:"result_count"`
	Results     []searchResult `json:"results"`
}

type searchResult struct {
	Number json.Number `json:"number"`
	Basic  struct {
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		Credential string `json:"credential"`
	} `json:"basic"`
	Addresses []struct {
		AddressPurpose   string `json:"address_purpose"`
		City             string `json:"city"`
		State            string `json:"state"`
		OrganizationName string `json:"organization_name"`
	} `json:"addresses"`
	Taxonomies []struct {
		Desc    string `json:"desc"`
		Primary bool   `json:"primary"`
	} `json:"taxonomies"`
}

// Fetch resolves the search key against the registry. The first candidate in
// the provider-ranked result list wins; the total candidate count is kept on
// the record so callers can judge how ambiguous that pick was.
func (c *Client) Fetch(ctx context.Context, key dossier.SearchKey) dossier.IdentityRecord {
	params := url.Values{}
	params.Set("version", "2.1")
	params.Set("enumeration_type", "NPI-1")
	params.Set("limit", strconv.Itoa(candidateLimit))
	if key.FirstName != "" {
		params.Set("first_name", key.FirstName)
	}
	if key.LastName != "" {
		params.Set("last_name", key.LastName)
	}
	if key.State != "" {
		params.Set("state", key.State)
	}
	if key.City != "" {
		params.Set("city", key.City)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return c.fail(ctx, "build request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(ctx, "request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.fail(ctx, "unexpected status "+resp.Status, nil)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return c.fail(ctx, "decode response", err)
	}

	if len(body.Results) == 0 {
		return dossier.EmptyIdentity(dossier.StatusNotFound)
	}

	return normalize(body)
}

func normalize(body searchResponse) dossier.IdentityRecord {
	best := body.Results[0]

	record := dossier.IdentityRecord{
		NPI:            best.Number.String(),
		MatchedName:    strings.TrimSpace(best.Basic.FirstName + " " + best.Basic.LastName),
		Credential:     best.Basic.Credential,
		CandidateCount: body.ResultCount,
		Status:         dossier.StatusFound,
	}
	if record.CandidateCount == 0 {
		record.CandidateCount = len(body.Results)
	}

	for _, t := range best.Taxonomies {
		if t.Primary {
			record.Specialty = t.Desc
			break
		}
	}
	if record.Specialty == "" && len(best.Taxonomies) > 0 {
		record.Specialty = best.Taxonomies[0].Desc
	}

	// Prefer the practice location over the mailing address.
	for _, a := range best.Addresses {
		if a.AddressPurpose == "LOCATION" {
			record.City = a.City
			record.State = a.State
			record.Organization = a.OrganizationName
			return record
		}
	}
	if len(best.Addresses) > 0 {
		record.City = best.Addresses[0].City
		record.State = best.Addresses[0].State
		record.Organization = best.Addresses[0].OrganizationName
	}
	return record
}

func (c *Client) fail(ctx context.Context, msg string, err error) dossier.IdentityRecord {
	if c.logger != nil {
		c.logger.WarnContext(ctx, "npi lookup failed", "reason", msg, "error", err)
	}
	return dossier.EmptyIdentity(dossier.StatusError)
}
