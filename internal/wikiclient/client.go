// Package wikiclient is the thin adapter over the Wikipedia Action API
// described in SPEC_FULL.md §4.3/§6: page extract + outgoing links (with
// smart pagination), backlinks, and batched category membership. It is the
// only package in this repository that speaks HTTP to Wikipedia; every
// other component depends on it only through the methods below.
package wikiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/time/rate"

	"wikihumanpath/internal/cache"
	"wikihumanpath/internal/filter"
	"wikihumanpath/internal/rules"
)

const actionAPI = "https://en.wikipedia.org/w/api.php"

// Client is a rate-limited, retrying, cache-first Wikipedia Action API
// adapter. GetPageData and GetBacklinks absorb network/parse errors into
// empty results rather than propagating them — per §7, transient_network
// failures never terminate a search; they are only visible in logs.
// GetCategories returns its error so the classifier can degrade.
type Client struct {
	http      *retryablehttp.Client
	limiter   *rate.Limiter
	sem       chan struct{}
	userAgent string
	apiURL    string

	caches *cache.Caches
	tables *rules.Tables
	log    zerolog.Logger

	maxFetchBatches       int
	minHumansForEarlyExit int
}

// Option customizes a Client built by New; used by tests to point at a
// fixture server instead of the live API.
type Option func(*Client)

// WithAPIURL overrides the Action API endpoint (tests point this at an
// httptest.Server).
func WithAPIURL(u string) Option {
	return func(c *Client) { c.apiURL = u }
}

// New builds a Client. concurrentRequests bounds in-flight HTTP calls;
// requestsPerSecond bounds sustained request rate, mirroring how a single
// polite crawler shares one rate budget across concurrent work streams.
func New(
	userAgent string,
	concurrentRequests int,
	requestsPerSecond float64,
	maxFetchBatches, minHumansForEarlyExit int,
	caches *cache.Caches,
	tables *rules.Tables,
	logger zerolog.Logger,
	opts ...Option,
) *Client {
	transport := cleanhttp.DefaultPooledTransport()
	http2.ConfigureTransport(transport) //nolint:errcheck // best-effort upgrade; plain HTTP/1.1 still works

	base := &http.Client{Transport: transport, Timeout: 15 * time.Second}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = base
	retryClient.RetryMax = 3
	retryClient.Logger = nil // the engine's zerolog logger speaks for this client; retryablehttp's own logging is noisy for this use case

	c := &Client{
		http:                  retryClient,
		limiter:               rate.NewLimiter(rate.Limit(requestsPerSecond), concurrentRequests),
		sem:                   make(chan struct{}, concurrentRequests),
		userAgent:             userAgent,
		apiURL:                actionAPI,
		caches:                caches,
		tables:                tables,
		log:                   logger.With().Str("component", "wikiclient").Logger(),
		maxFetchBatches:       maxFetchBatches,
		minHumansForEarlyExit: minHumansForEarlyExit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// acquire blocks until a request permit and a rate-limiter token are both
// available, respecting ctx cancellation.
func (c *Client) acquire(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		<-c.sem
		return err
	}
	return nil
}

func (c *Client) release() {
	<-c.sem
}

func (c *Client) do(ctx context.Context, params url.Values, out any) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	reqURL := c.apiURL + "?" + params.Encode()
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("wikiclient: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("wikiclient: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("wikiclient: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("wikiclient: decode response: %w", err)
	}
	return nil
}

func baseParams(title string) url.Values {
	return url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"formatversion": {"2"},
		"redirects":     {"1"},
		"titles":        {title},
	}
}

// GetPageData fetches title's lead extract and outgoing mainspace links,
// consulting the page-data cache first. Implements smart pagination: at
// most maxFetchBatches link requests (the first one plus continuations),
// stopping early once the
// running count of heuristically admissible links reaches
// minHumansForEarlyExit (§4.3). Any error — including one that strikes
// after earlier batches already succeeded — is absorbed to ("", nil): the
// caller never sees a hard failure from this method, and a transient
// mid-pagination failure is not cached, so a later call can retry instead
// of being permanently stuck with a partial link list.
func (c *Client) GetPageData(ctx context.Context, title string) (extract string, links []string) {
	if cached, ok := c.caches.Pages.Get(title); ok {
		return cached.Extract, cached.Links
	}

	params := baseParams(title)
	params.Set("prop", "extracts|links")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("pllimit", "max")
	params.Set("plnamespace", "0")

	var allLinks []string
	admissibleCount := 0

	for batch := 0; batch < c.maxFetchBatches; batch++ {
		var resp pageExtractLinksResponse
		if err := c.do(ctx, params, &resp); err != nil {
			c.log.Warn().Err(err).Str("title", title).Int("batch", batch).Msg("page data fetch failed")
			return "", nil
		}

		if len(resp.Query.Pages) == 0 {
			break
		}
		page := resp.Query.Pages[0]
		if page.Missing {
			break
		}
		if extract == "" {
			extract = page.Extract
		}
		for _, l := range page.Links {
			allLinks = append(allLinks, l.Title)
		}
		admissibleCount = len(filter.Filter(allLinks, c.tables))

		if admissibleCount >= c.minHumansForEarlyExit {
			break
		}
		if resp.Continue == nil || resp.Continue.PLContinue == "" {
			break
		}
		params.Set("plcontinue", resp.Continue.PLContinue)
		params.Set("continue", resp.Continue.Continue)
	}

	c.caches.Pages.Set(title, cache.PageData{Extract: extract, Links: allLinks})
	return extract, allLinks
}

// GetBacklinks fetches a single, non-paginated batch of titles linking to
// title (§4.3). Backward frontier depth is bounded by the search's own step
// cap, not by exhaustiveness here.
func (c *Client) GetBacklinks(ctx context.Context, title string) []string {
	if cached, ok := c.caches.Backlinks.Get(title); ok {
		return cached
	}

	params := baseParams(title)
	delete(params, "titles")
	params.Set("list", "backlinks")
	params.Set("bltitle", title)
	params.Set("blnamespace", "0")
	params.Set("bllimit", "max")

	var resp backlinksResponse
	if err := c.do(ctx, params, &resp); err != nil {
		c.log.Warn().Err(err).Str("title", title).Msg("backlinks fetch failed")
		c.caches.Backlinks.Set(title, nil)
		return nil
	}

	links := make([]string, 0, len(resp.Query.Backlinks))
	for _, bl := range resp.Query.Backlinks {
		links = append(links, bl.Title)
	}
	c.caches.Backlinks.Set(title, links)
	return links
}

// GetCategories issues one category-query call for the pipe-joined titles,
// following continuation up to maxFetchBatches pages, and returns the raw
// per-page category lists. Unlike GetPageData/GetBacklinks this can return
// an error: the classifier needs to distinguish "the API told us nothing"
// from "the API call itself failed" to apply its own graceful-degradation
// timeout (§4.2) around this call.
func (c *Client) GetCategories(ctx context.Context, titles []string) ([]CategoryResult, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	params := baseParams(strings.Join(titles, "|"))
	params.Set("prop", "categories")
	params.Set("cllimit", "max")

	byTitle := make(map[string]*CategoryResult, len(titles))
	order := make([]string, 0, len(titles))

	for batch := 0; batch < c.maxFetchBatches; batch++ {
		var resp categoriesResponse
		if err := c.do(ctx, params, &resp); err != nil {
			return nil, fmt.Errorf("wikiclient: categories for %d titles: %w", len(titles), err)
		}

		for _, page := range resp.Query.Pages {
			result, seen := byTitle[page.Title]
			if !seen {
				result = &CategoryResult{Title: page.Title, Missing: page.Missing}
				byTitle[page.Title] = result
				order = append(order, page.Title)
			}
			for _, cat := range page.Categories {
				result.Categories = append(result.Categories, cat.Title)
			}
		}

		if resp.Continue == nil || resp.Continue.CLContinue == "" {
			break
		}
		params.Set("clcontinue", resp.Continue.CLContinue)
		params.Set("continue", resp.Continue.Continue)
	}

	out := make([]CategoryResult, 0, len(order))
	for _, t := range order {
		out = append(out, *byTitle[t])
	}
	return out, nil
}
