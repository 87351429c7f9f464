package offtarget

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"
)

const (
	entrezEfetchURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
	entrezTool      = "offtarget"

	// NCBI allows 3 requests per second without an API key
	defaultEntrezRate = 3
)

// Fetcher retrieves an annotated record from a remote source.
type Fetcher interface {
	Fetch(ctx context.Context, accession string) (*Record, error)
}

// EntrezConfig configures an EntrezClient.
type EntrezConfig struct {
	// BaseURL of efetch, defaults to NCBI's
	BaseURL string

	// Email identifies the user to NCBI
	Email string

	// APIKey is optional
	APIKey string

	RequestsPerSecond float64

	// Timeout bounds each request, 0 means no bound
	Timeout time.Duration
}

// EntrezClient fetches GenBank records from NCBI's nucleotide database.
// Requests are rate limited and never retried.
type EntrezClient struct {
	conf       EntrezConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewEntrezClient returns a client for conf.
func NewEntrezClient(conf EntrezConfig) *EntrezClient {
	if conf.BaseURL == "" {
		conf.BaseURL = entrezEfetchURL
	}
	if conf.RequestsPerSecond <= 0 {
		conf.RequestsPerSecond = defaultEntrezRate
	}

	return &EntrezClient{
		conf: conf,
		httpClient: &http.Client{
			Timeout: conf.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(conf.RequestsPerSecond), 1),
	}
}

// Fetch downloads and parses the GenBank record of an accession.
// Every failure is a *FetchError.
func (c *EntrezClient) Fetch(ctx context.Context, accession string) (rec *Record, err error) {
	defer func() {
		fetches.WithLabelValues(outcome(err)).Inc()
		if err != nil {
			err = &FetchError{Accession: accession, Err: err}
		}
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("db", "nucleotide")
	q.Set("id", accession)
	q.Set("rettype", "gb")
	q.Set("retmode", "text")
	q.Set("tool", entrezTool)
	if c.conf.Email != "" {
		q.Set("email", c.conf.Email)
	}
	if c.conf.APIKey != "" {
		q.Set("api_key", c.conf.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.conf.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	rlog.Infof("Fetching genbank record for %s", accession)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("entrez request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading entrez response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("entrez error %d: %s", resp.StatusCode, strings.TrimSpace(lastLines(string(body), 3)))
	}
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("LOCUS")) {
		return nil, errors.New("entrez response is not a GenBank record: " + strings.TrimSpace(lastLines(string(body), 3)))
	}

	rec, err = ParseGenbank(body)
	if err != nil {
		return nil, err
	}
	rlog.Infow("fetched genbank record", "accession", accession,
		"size", humanize.Bytes(uint64(len(body))), "features", len(rec.Features))
	return rec, nil
}
