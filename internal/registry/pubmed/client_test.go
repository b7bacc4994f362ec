package pubmed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossier/internal/dossier"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const efetchBody = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>38012345</PMID>
      <Article>
        <Journal>
          <JournalIssue><PubDate><Year>2024</Year></PubDate></JournalIssue>
          <Title>Stroke</Title>
        </Journal>
        <ArticleTitle>Outcomes after thrombectomy</ArticleTitle>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>37098765</PMID>
      <Article>
        <Journal>
          <JournalIssue><PubDate><MedlineDate>2023 Jan-Feb</MedlineDate></PubDate></JournalIssue>
          <Title>Journal of Neurosurgery</Title>
        </Journal>
        <ArticleTitle>Aneurysm coiling registry</ArticleTitle>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

// eutils routes esearch and efetch off the same test server like the real
// E-utilities root does.
func eutils(t *testing.T, esearch string, efetchStatus int) (*httptest.Server, *[]string) {
	t.Helper()
	var terms []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/esearch.fcgi"):
			terms = append(terms, r.URL.Query().Get("term"))
			_, _ = w.Write([]byte(esearch))
		case strings.HasSuffix(r.URL.Path, "/efetch.fcgi"):
			if efetchStatus != http.StatusOK {
				http.Error(w, "down", efetchStatus)
				return
			}
			_, _ = w.Write([]byte(efetchBody))
		default:
			http.NotFound(w, r)
		}
	}))
	return srv, &terms
}

func TestFetch(t *testing.T) {
	key := dossier.SearchKey{FirstName: "Jane", LastName: "Doe"}

	t.Run("returns entries in provider order with stable identifiers", func(t *testing.T) {
		srv, terms := eutils(t, `{"esearchresult": {"idlist": ["38012345", "37098765"], "count": "2"}}`, http.StatusOK)
		defer srv.Close()

		list := New(srv.URL, time.Second, 30, discardLogger()).Fetch(context.Background(), key)

		assert.Equal(t, dossier.StatusFound, list.Status)
		require.Len(t, list.Entries, 2)
		assert.Equal(t, dossier.Publication{
			PubMedID: "38012345",
			Title:    "Outcomes after thrombectomy",
			Journal:  "Stroke",
			Year:     2024,
		}, list.Entries[0])
		// MedlineDate instead of Year parses as zero rather than failing.
		assert.Equal(t, "37098765", list.Entries[1].PubMedID)
		assert.Equal(t, 0, list.Entries[1].Year)

		require.Len(t, *terms, 1)
		assert.Equal(t, "Doe J[Author]", (*terms)[0])
	})

	t.Run("caps entries at the configured bound", func(t *testing.T) {
		srv, _ := eutils(t, `{"esearchresult": {"idlist": ["38012345", "37098765"], "count": "2"}}`, http.StatusOK)
		defer srv.Close()

		list := New(srv.URL, time.Second, 1, discardLogger()).Fetch(context.Background(), key)
		assert.Len(t, list.Entries, 1)
	})

	t.Run("empty id list is not found", func(t *testing.T) {
		srv, _ := eutils(t, `{"esearchresult": {"idlist": [], "count": "0"}}`, http.StatusOK)
		defer srv.Close()

		list := New(srv.URL, time.Second, 30, discardLogger()).Fetch(context.Background(), key)
		assert.Equal(t, dossier.StatusNotFound, list.Status)
		assert.Empty(t, list.Entries)
	})

	t.Run("efetch failure after a successful search is an error", func(t *testing.T) {
		srv, _ := eutils(t, `{"esearchresult": {"idlist": ["38012345"], "count": "1"}}`, http.StatusBadGateway)
		defer srv.Close()

		list := New(srv.URL, time.Second, 30, discardLogger()).Fetch(context.Background(), key)
		assert.Equal(t, dossier.StatusError, list.Status)
		assert.Empty(t, list.Entries)
	})

	t.Run("transport failure is an error", func(t *testing.T) {
		srv, _ := eutils(t, `{}`, http.StatusOK)
		srv.Close()

		list := New(srv.URL, time.Second, 30, discardLogger()).Fetch(context.Background(), key)
		assert.Equal(t, dossier.StatusError, list.Status)
	})

	t.Run("surname-only key still searches", func(t *testing.T) {
		srv, terms := eutils(t, `{"esearchresult": {"idlist": [], "count": "0"}}`, http.StatusOK)
		defer srv.Close()

		New(srv.URL, time.Second, 30, discardLogger()).Fetch(context.Background(),
			dossier.SearchKey{LastName: "Doe", FullName: "Doe"})
		require.Len(t, *terms, 1)
		assert.Equal(t, "Doe[Author]", (*terms)[0])
	})
}
