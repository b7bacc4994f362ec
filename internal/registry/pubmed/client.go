// Package pubmed adapts the NCBI E-utilities publication index into the
// normalized PublicationList the dossier service consumes. A lookup is two
// calls: esearch (JSON) for relevance-ranked article IDs, then efetch (XML)
// for the article metadata.
package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dossier/internal/dossier"
)

// DefaultBaseURL is the NCBI E-utilities root.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// Client queries PubMed. Safe for concurrent use.
type Client struct {
	baseURL    string
	http       *http.Client
	logger     *slog.Logger
	maxResults int
}

// New constructs a PubMed client. maxResults caps the entries on every list.
func New(baseURL string, timeout time.Duration, maxResults int, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxResults <= 0 {
		maxResults = 30
	}
	return &Client{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: timeout},
		logger:     logger,
		maxResults: maxResults,
	}
}

type esearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// efetch XML, reduced to the fields we keep. Year is a string because
// PubDate sometimes carries a MedlineDate range instead of a plain year.
type articleSet struct {
	Articles []struct {
		PMID    string `xml:"MedlineCitation>PMID"`
		Title   string `xml:"MedlineCitation>Article>ArticleTitle"`
		Journal string `xml:"MedlineCitation>Article>Journal>Title"`
		Year    string `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Year"`
	} `xml:"PubmedArticle"`
}

// Fetch searches by author and returns entries in the provider's ranking,
// capped at the configured bound. Each entry carries its PubMed ID so
// downstream consumers can deduplicate.
func (c *Client) Fetch(ctx context.Context, key dossier.SearchKey) dossier.PublicationList {
	ids, err := c.search(ctx, key)
	if err != nil {
		return c.fail(ctx, "search", err)
	}
	if len(ids) == 0 {
		return dossier.EmptyPublications(dossier.StatusNotFound)
	}

	entries, err := c.fetchArticles(ctx, ids)
	if err != nil {
		return c.fail(ctx, "fetch articles", err)
	}

	return dossier.PublicationList{Entries: entries, Status: dossier.StatusFound}
}

// authorTerm builds the author search term, "Doe J[Author]" style: surname
// plus first initial when one is known.
func authorTerm(key dossier.SearchKey) string {
	name := key.LastName
	if name == "" {
		name = key.FullName
	}
	if key.FirstName != "" {
		name += " " + strings.ToUpper(key.FirstName[:1])
	}
	return name + "[Author]"
}

func (c *Client) search(ctx context.Context, key dossier.SearchKey) ([]string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", authorTerm(key))
	params.Set("retmax", strconv.Itoa(c.maxResults))
	params.Set("retmode", "json")
	params.Set("sort", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/esearch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("esearch status %s", resp.Status)
	}

	var body esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	ids := body.Result.IDList
	if len(ids) > c.maxResults {
		ids = ids[:c.maxResults]
	}
	return ids, nil
}

func (c *Client) fetchArticles(ctx context.Context, ids []string) ([]dossier.Publication, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/efetch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("efetch status %s", resp.Status)
	}

	var set articleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, err
	}

	entries := make([]dossier.Publication, 0, len(set.Articles))
	for _, a := range set.Articles {
		year, _ := strconv.Atoi(a.Year)
		entries = append(entries, dossier.Publication{
			PubMedID: a.PMID,
			Title:    a.Title,
			Journal:  a.Journal,
			Year:     year,
		})
		if len(entries) == c.maxResults {
			break
		}
	}
	return entries, nil
}

func (c *Client) fail(ctx context.Context, msg string, err error) dossier.PublicationList {
	if c.logger != nil {
		c.logger.WarnContext(ctx, "pubmed lookup failed", "reason", msg, "error", err)
	}
	return dossier.EmptyPublications(dossier.StatusError)
}
