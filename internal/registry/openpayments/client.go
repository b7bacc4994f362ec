// Package openpayments adapts the CMS Open Payments registry into the
// normalized PaymentSummary the dossier service consumes. The registry
// returns itemized payment records; all aggregation happens client-side.
package openpayments

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"dossier/internal/dossier"
)

// DefaultBaseURL is the Open Payments datastore query endpoint.
const DefaultBaseURL = "https://openpaymentsdata.cms.gov/api/1/datastore/query"

// ProgramYears is the fixed window of program years one lookup covers.
var ProgramYears = []int{2022, 2023, 2024}

// recordLimit caps itemized records pulled per program year.
const recordLimit = 500

// Client queries Open Payments, one request per program year, and folds the
// itemized records into per-payer totals. Safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	logger    *slog.Logger
	topPayers int
}

// New constructs an Open Payments client. topPayers bounds the TopPayers
// list on every summary.
func New(baseURL string, timeout time.Duration, topPayers int, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if topPayers <= 0 {
		topPayers = 5
	}
	return &Client{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
		topPayers: topPayers,
	}
}

type queryResponse struct {
	Results []paymentRecord `json:"results"`
}

type paymentRecord struct {
	PayerName string      `json:"submitting_applicable_manufacturer_or_applicable_gpo_making_payment_name"`
	Amount    json.Number `json:"total_amount_of_payment_usdollars"`
}

// Fetch pulls every covered program year and aggregates. It queries by NPI
// when the identity lookup verified one, otherwise by the raw parsed name.
// A transport failure on any year poisons the whole section: partial sums
// would misstate totals, so the summary reports error instead.
func (c *Client) Fetch(ctx context.Context, key dossier.SearchKey) dossier.PaymentSummary {
	totals := make(map[string]dossier.Amount)
	var (
		total dossier.Amount
		count int
		years []int
	)

	for _, year := range ProgramYears {
		records, err := c.fetchYear(ctx, key, year)
		if err != nil {
			if c.logger != nil {
				c.logger.WarnContext(ctx, "open payments lookup failed",
					"program_year", year, "error", err)
			}
			return dossier.EmptyPayments(dossier.StatusError)
		}
		if len(records) == 0 {
			continue
		}

		years = append(years, year)
		for _, rec := range records {
			amount, err := dossier.ParseAmount(rec.Amount.String())
			if err != nil {
				// Malformed amounts are skipped, not fatal; the registry
				// occasionally carries blank rows.
				continue
			}
			name := rec.PayerName
			if name == "" {
				name = "Unknown"
			}
			totals[name] += amount
			total += amount
			count++
		}
	}

	if count == 0 {
		return dossier.EmptyPayments(dossier.StatusNotFound)
	}

	summary := dossier.PaymentSummary{
		TotalAmount:  total,
		PaymentCount: count,
		TopPayers:    topPayers(totals, c.topPayers),
		YearsCovered: years,
		Status:       dossier.StatusFound,
	}
	return summary
}

func (c *Client) fetchYear(ctx context.Context, key dossier.SearchKey, year int) ([]paymentRecord, error) {
	params := url.Values{}
	params.Set("program_year", strconv.Itoa(year))
	params.Set("limit", strconv.Itoa(recordLimit))
	if key.NPI != "" {
		params.Set("covered_recipient_npi", key.NPI)
	} else {
		if key.FirstName != "" {
			params.Set("covered_recipient_first_name", key.FirstName)
		}
		if key.LastName != "" {
			params.Set("covered_recipient_last_name", key.LastName)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var body queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Results, nil
}

// topPayers ranks aggregated per-payer totals by amount descending, breaking
// ties by payer name ascending so the list is deterministic, then truncates
// to the configured bound.
func topPayers(totals map[string]dossier.Amount, bound int) []dossier.Payer {
	payers := make([]dossier.Payer, 0, len(totals))
	for name, amount := range totals {
		payers = append(payers, dossier.Payer{Name: name, Amount: amount})
	}

	sort.Slice(payers, func(i, j int) bool {
		if payers[i].Amount != payers[j].Amount {
			return payers[i].Amount > payers[j].Amount
		}
		return payers[i].Name < payers[j].Name
	})

	if len(payers) > bound {
		payers = payers[:bound]
	}
	return payers
}
