// Package codesearch looks up source files for a lesson passage in a GitHub
// repository. Lookups are bounded by a timeout and fall back to entries built
// from the local sample catalog, so a result is always available.
package codesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/FocuswithJustin/JuniperLessons/core/samples"
	"github.com/FocuswithJustin/JuniperLessons/internal/cache"
	"github.com/FocuswithJustin/JuniperLessons/internal/logging"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultBaseURL = "https://api.github.com"
	DefaultRepo    = "ETCBC/bhsa"
	DefaultTimeout = 5 * time.Second
	DefaultLimit   = 5

	maxCacheEntries = 256
	maxResponseSize = 4 << 20
)

// Source is one code search hit.
type Source struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	HTMLURL    string `json:"html_url"`
	Repository string `json:"repository"`
}

// Options configures a Client.
type Options struct {
	BaseURL  string
	Repo     string
	Timeout  time.Duration
	CacheTTL time.Duration
	// HTTPClient overrides the transport. Its own Timeout is left alone;
	// the per-search deadline comes from Timeout.
	HTTPClient *http.Client
}

// HTTPError is a non-200 response from the search API.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("code search: HTTP %d: %s", e.StatusCode, e.Status)
}

// Client searches a repository's code.
type Client struct {
	baseURL    string
	repo       string
	timeout    time.Duration
	httpClient *http.Client
	fallback   []Source
	results    *cache.TTLCache[string, []Source]
}

// New creates a client whose fallback lists every entry of catalog.
func New(opts Options, catalog *samples.Catalog) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Repo == "" {
		opts.Repo = DefaultRepo
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		repo:       opts.Repo,
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
		results:    cache.New[string, []Source](opts.CacheTTL, maxCacheEntries),
	}
	repoURL := "https://github.com/" + opts.Repo
	for _, s := range catalog.All() {
		c.fallback = append(c.fallback, Source{
			Name:       s.Reference,
			Path:       "samples/" + strings.ToLower(s.Book) + ".json",
			HTMLURL:    repoURL,
			Repository: opts.Repo,
		})
	}
	return c
}

// Query picks the search text: the passage, else the topic, else the
// selected sample's reference.
func Query(passage, topic, reference string) string {
	if passage != "" {
		return passage
	}
	if topic != "" {
		return topic
	}
	return reference
}

// Search returns up to limit sources for query. Transport failures, non-200
// responses and empty result sets all yield the local fallback. Only remote
// results are cached.
func (c *Client) Search(ctx context.Context, query string, limit int) []Source {
	if limit <= 0 {
		limit = DefaultLimit
	}

	key := strconv.Itoa(limit) + "\x00" + query
	sources, err := c.results.GetOrLoad(key, func() ([]Source, error) {
		return c.fetch(ctx, query, limit)
	})
	if err != nil {
		logging.SearchFallback(ctx, query, err.Error(), "repo", c.repo)
		return c.Fallback(limit)
	}
	return append([]Source(nil), sources...)
}

// Prune drops expired cached results and returns how many were removed.
func (c *Client) Prune() int {
	return c.results.Prune()
}

// Fallback returns the first limit catalog-derived sources.
func (c *Client) Fallback(limit int) []Source {
	if limit > len(c.fallback) || limit <= 0 {
		limit = len(c.fallback)
	}
	return append([]Source(nil), c.fallback[:limit]...)
}

type searchResponse struct {
	Items []struct {
		Name       string `json:"name"`
		Path       string `json:"path"`
		HTMLURL    string `json:"html_url"`
		Repository struct {
			FullName string `json:"full_name"`
		} `json:"repository"`
	} `json:"items"`
}

func (c *Client) fetch(ctx context.Context, query string, limit int) ([]Source, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query+" repo:"+c.repo)
	params.Set("per_page", strconv.Itoa(limit))
	reqURL := c.baseURL + "/search/code?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("code search: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("code search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	var body searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		return nil, fmt.Errorf("code search: decode response: %w", err)
	}
	if len(body.Items) == 0 {
		return nil, fmt.Errorf("code search: no results")
	}

	sources := make([]Source, 0, min(limit, len(body.Items)))
	for _, item := range body.Items {
		if len(sources) == limit {
			break
		}
		repo := item.Repository.FullName
		if repo == "" {
			repo = c.repo
		}
		sources = append(sources, Source{
			Name:       item.Name,
			Path:       item.Path,
			HTMLURL:    item.HTMLURL,
			Repository: repo,
		})
	}
	return sources, nil
}
