package openpayments

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossier/internal/dossier"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// yearResponses serves a canned body per program year and empty results for
// the rest.
func yearResponses(t *testing.T, byYear map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if body, ok := byYear[r.URL.Query().Get("program_year")]; ok {
			_, _ = w.Write([]byte(body))
			return
		}
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
}

func TestFetch(t *testing.T) {
	key := dossier.SearchKey{FirstName: "Jane", LastName: "Doe"}

	t.Run("aggregates itemized records into totals", func(t *testing.T) {
		srv := yearResponses(t, map[string]string{
			"2023": `{"results": [
				{"submitting_applicable_manufacturer_or_applicable_gpo_making_payment_name": "Acme Pharma", "total_amount_of_payment_usdollars": 500},
				{"submitting_applicable_manufacturer_or_applicable_gpo_making_payment_name": "Acme Pharma", "total_amount_of_payment_usdollars": 300.00}
			]}`,
		})
		defer srv.Close()

		summary := New(srv.URL, time.Second, 5, discardLogger()).Fetch(context.Background(), key)

		assert.Equal(t, dossier.StatusFound, summary.Status)
		assert.Equal(t, dossier.Amount(80000), summary.TotalAmount)
		assert.Equal(t, 2, summary.PaymentCount)
		require.Len(t, summary.TopPayers, 1)
		assert.Equal(t, dossier.Payer{Name: "Acme Pharma", Amount: 80000}, summary.TopPayers[0])
		assert.Equal(t, []int{2023}, summary.YearsCovered)
	})

	t.Run("covers every program year and records which had data", func(t *testing.T) {
		var years []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			year := r.URL.Query().Get("program_year")
			years = append(years, year)
			if year == "2022" || year == "2024" {
				_, _ = w.Write([]byte(`{"results": [{"submitting_applicable_manufacturer_or_applicable_gpo_making_payment_name": "Medico", "total_amount_of_payment_usdollars": 10}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"results": []}`))
		}))
		defer srv.Close()

		summary := New(srv.URL, time.Second, 5, discardLogger()).Fetch(context.Background(), key)

		assert.ElementsMatch(t, []string{"2022", "2023", "2024"}, years)
		assert.Equal(t, []int{2022, 2024}, summary.YearsCovered)
		assert.Equal(t, 2, summary.PaymentCount)
	})

	t.Run("queries by NPI when the identity lookup verified one", func(t *testing.T) {
		var gotNPI, gotLast string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotNPI = r.URL.Query().Get("covered_recipient_npi")
			gotLast = r.URL.Query().Get("covered_recipient_last_name")
			_, _ = w.Write([]byte(`{"results": []}`))
		}))
		defer srv.Close()

		New(srv.URL, time.Second, 5, discardLogger()).Fetch(context.Background(),
			dossier.SearchKey{FirstName: "Jane", LastName: "Doe", NPI: "1234567890"})

		assert.Equal(t, "1234567890", gotNPI)
		assert.Empty(t, gotLast)
	})

	t.Run("empty result set across all years is not found", func(t *testing.T) {
		srv := yearResponses(t, nil)
		defer srv.Close()

		summary := New(srv.URL, time.Second, 5, discardLogger()).Fetch(context.Background(), key)
		assert.Equal(t, dossier.StatusNotFound, summary.Status)
		assert.Equal(t, dossier.Amount(0), summary.TotalAmount)
		assert.Empty(t, summary.TopPayers)
	})

	t.Run("transport failure on any year poisons the section", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("program_year") == "2024" {
				http.Error(w, "down", http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"results": [{"submitting_applicable_manufacturer_or_applicable_gpo_making_payment_name": "Medico", "total_amount_of_payment_usdollars": 10}]}`))
		}))
		defer srv.Close()

		summary := New(srv.URL, time.Second, 5, discardLogger()).Fetch(context.Background(), key)
		assert.Equal(t, dossier.StatusError, summary.Status)
		assert.Equal(t, dossier.Amount(0), summary.TotalAmount)
		assert.Equal(t, 0, summary.PaymentCount)
	})
}

func TestTopPayers(t *testing.T) {
	t.Run("sorted by amount descending, name ascending on ties, truncated", func(t *testing.T) {
		totals := map[string]dossier.Amount{
			"Zed Devices":  5000,
			"Acme Pharma":  5000,
			"Medico":       90000,
			"Orthocorp":    100,
			"BetaBio":      5000,
			"Gamma Health": 70000,
		}

		got := topPayers(totals, 5)

		want := []dossier.Payer{
			{Name: "Medico", Amount: 90000},
			{Name: "Gamma Health", Amount: 70000},
			{Name: "Acme Pharma", Amount: 5000},
			{Name: "BetaBio", Amount: 5000},
			{Name: "Zed Devices", Amount: 5000},
		}
		assert.Equal(t, want, got)
	})

	t.Run("length never exceeds the bound", func(t *testing.T) {
		totals := make(map[string]dossier.Amount)
		for i := 0; i < 50; i++ {
			totals[fmt.Sprintf("Payer %02d", i)] = dossier.Amount(i)
		}
		assert.Len(t, topPayers(totals, 5), 5)
		assert.Len(t, topPayers(map[string]dossier.Amount{"Solo": 1}, 5), 1)
	})
}
