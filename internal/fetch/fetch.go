// Package fetch retrieves full article text over HTTP and extracts the
// readable body. A fetcher remembers hard failures per domain for its
// lifetime, so one run stops hammering a host that already refused.
package fetch

import (
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// ErrDomainSkipped marks a URL skipped because an earlier fetch from the same
// domain already failed hard this run.
var ErrDomainSkipped = errors.New("domain skipped after earlier failure")

// minExtractedLen filters out boilerplate-only extractions.
const minExtractedLen = 100

// ContentFetcher fetches article text via HTTP + readability extraction.
// Create one per run; the failed-domain memory is not safe for concurrent use.
type ContentFetcher struct {
	client        *http.Client
	failedDomains map[string]struct{}
}

// NewContentFetcher creates a content fetcher. A zero timeout means 15s.
func NewContentFetcher(timeout time.Duration) *ContentFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &ContentFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		failedDomains: make(map[string]struct{}),
	}
}

// Fetch returns the extracted article text for the URL. An empty string with
// a nil error means the page yielded no usable text; the caller falls back to
// whatever excerpt it already has. A non-nil error means the candidate should
// be skipped.
func (f *ContentFetcher) Fetch(articleURL string) (string, error) {
	domain := domainOf(articleURL)
	if _, failed := f.failedDomains[domain]; failed {
		return "", ErrDomainSkipped
	}

	text, err := f.fetchAndExtract(articleURL)
	if err != nil {
		if domain != "" {
			f.failedDomains[domain] = struct{}{}
			log.Printf("HTTP error for %s, skipping remaining from %s", articleURL, domain)
		}
		return "", err
	}
	return text, nil
}

func (f *ContentFetcher) fetchAndExtract(articleURL string) (string, error) {
	req, err := http.NewRequest("GET", articleURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "jobradar/1.0 (news aggregator)")

	resp, err := f.client.Do(req)
	if err != nil {
		// Connection-level failure: no usable text, but the host may just
		// be slow, so the domain is not flagged.
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(articleURL)
	article, err := readability.FromReader(strings.NewReader(string(bodyBytes)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) > minExtractedLen {
		return text, nil
	}
	return "", nil
}

func domainOf(articleURL string) string {
	u, err := url.Parse(articleURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
