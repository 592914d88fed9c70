package wikiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikihumanpath/internal/cache"
	"wikihumanpath/internal/rules"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	caches, err := cache.Open(t.TempDir(), 10, 10, 10)
	require.NoError(t, err)

	return New("wikihumanpath-test/1.0", 4, 1000, 3, 5, caches, rules.MustLoad(), zerolog.Nop(), WithAPIURL(srv.URL))
}

func TestGetPageDataReturnsExtractAndLinks(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(pageExtractLinksResponse{
			Query: struct {
				Pages []struct {
					Title   string `json:"title"`
					Missing bool   `json:"missing,omitempty"`
					Extract string `json:"extract,omitempty"`
					Links   []struct {
						Title string `json:"title"`
					} `json:"links,omitempty"`
				} `json:"pages"`
			}{
				Pages: []struct {
					Title   string `json:"title"`
					Missing bool   `json:"missing,omitempty"`
					Extract string `json:"extract,omitempty"`
					Links   []struct {
						Title string `json:"title"`
					} `json:"links,omitempty"`
				}{
					{Title: "Alpha", Extract: "an extract", Links: []struct {
						Title string `json:"title"`
					}{{Title: "Beta"}, {Title: "Gamma"}}},
				},
			},
		})
	})

	extract, links := c.GetPageData(context.Background(), "Alpha")
	assert.Equal(t, "an extract", extract)
	assert.ElementsMatch(t, []string{"Beta", "Gamma"}, links)
}

func TestGetPageDataCachesResult(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(pageExtractLinksResponse{})
	})

	c.GetPageData(context.Background(), "Alpha")
	c.GetPageData(context.Background(), "Alpha")
	assert.Equal(t, 1, calls)
}

func TestGetPageDataMissingPageReturnsNoLinks(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(pageExtractLinksResponse{
			Query: struct {
				Pages []struct {
					Title   string `json:"title"`
					Missing bool   `json:"missing,omitempty"`
					Extract string `json:"extract,omitempty"`
					Links   []struct {
						Title string `json:"title"`
					} `json:"links,omitempty"`
				} `json:"pages"`
			}{
				Pages: []struct {
					Title   string `json:"title"`
					Missing bool   `json:"missing,omitempty"`
					Extract string `json:"extract,omitempty"`
					Links   []struct {
						Title string `json:"title"`
					} `json:"links,omitempty"`
				}{
					{Title: "Nope", Missing: true},
				},
			},
		})
	})

	_, links := c.GetPageData(context.Background(), "Nope")
	assert.Empty(t, links)
}

func TestGetPageDataErrorAfterFirstBatchReturnsEmptyAndDoesNotCache(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			json.NewEncoder(w).Encode(pageExtractLinksResponse{
				Query: struct {
					Pages []struct {
						Title   string `json:"title"`
						Missing bool   `json:"missing,omitempty"`
						Extract string `json:"extract,omitempty"`
						Links   []struct {
							Title string `json:"title"`
						} `json:"links,omitempty"`
					} `json:"pages"`
				}{
					Pages: []struct {
						Title   string `json:"title"`
						Missing bool   `json:"missing,omitempty"`
						Extract string `json:"extract,omitempty"`
						Links   []struct {
							Title string `json:"title"`
						} `json:"links,omitempty"`
					}{
						{Title: "Alpha", Extract: "an extract", Links: []struct {
							Title string `json:"title"`
						}{{Title: "Beta"}}},
					},
				},
				Continue: &continuation{PLContinue: "next-batch", Continue: "-||"},
			})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})
	c.http.RetryMax = 0

	extract, links := c.GetPageData(context.Background(), "Alpha")
	assert.Empty(t, extract)
	assert.Nil(t, links)
	assert.Equal(t, 2, calls)

	// The failed fetch must not have poisoned the cache: a later call
	// retries against the API instead of replaying the empty result.
	_, ok := c.caches.Pages.Get("Alpha")
	assert.False(t, ok)
}

func TestGetBacklinksAbsorbsHTTPErrors(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c.http.RetryMax = 0

	links := c.GetBacklinks(context.Background(), "Alpha")
	assert.Nil(t, links)
}

func TestGetCategoriesReturnsPerTitleResults(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(categoriesResponse{
			Query: struct {
				Pages []struct {
					Title      string `json:"title"`
					Missing    bool   `json:"missing,omitempty"`
					Categories []struct {
						Title string `json:"title"`
					} `json:"categories,omitempty"`
				} `json:"pages"`
			}{
				Pages: []struct {
					Title      string `json:"title"`
					Missing    bool   `json:"missing,omitempty"`
					Categories []struct {
						Title string `json:"title"`
					} `json:"categories,omitempty"`
				}{
					{Title: "Alpha", Categories: []struct {
						Title string `json:"title"`
					}{{Title: "Category:1990 births"}}},
				},
			},
		})
	})

	results, err := c.GetCategories(context.Background(), []string{"Alpha"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Alpha", results[0].Title)
	assert.Equal(t, []string{"Category:1990 births"}, results[0].Categories)
}

func TestGetCategoriesEmptyInputShortCircuits(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not issue an HTTP request for an empty title list")
	})
	results, err := c.GetCategories(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, results)
}
