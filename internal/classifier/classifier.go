// Package classifier implements the Human Classifier (§4.2): given a batch
// of candidate titles, decide which ones denote a human being, using a
// VIP allow-list fast-path, the category-verdict cache, and batched
// category API calls with a category decision rule. On API stall it
// degrades gracefully rather than blocking the search indefinitely.
package classifier

import (
	"context"
	"regexp"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog"

	"wikihumanpath/internal/cache"
	"wikihumanpath/internal/rules"
	"wikihumanpath/internal/wikiclient"
)

// categoryClient is the subset of *wikiclient.Client the classifier needs;
// named so tests can substitute a fixture without standing up a fake HTTP
// server.
type categoryClient interface {
	GetCategories(ctx context.Context, titles []string) ([]wikiclient.CategoryResult, error)
}

// Classifier is the Human Classifier.
type Classifier struct {
	client categoryClient
	caches *cache.Caches
	tables *rules.Tables
	log    zerolog.Logger

	categoryBatchSize int
	batchCheckTimeout time.Duration
	fallbackNodeCap   int
}

// New builds a Classifier.
func New(
	client categoryClient,
	caches *cache.Caches,
	tables *rules.Tables,
	categoryBatchSize int,
	batchCheckTimeout time.Duration,
	fallbackNodeCap int,
	logger zerolog.Logger,
) *Classifier {
	return &Classifier{
		client:            client,
		caches:            caches,
		tables:            tables,
		log:               logger.With().Str("component", "classifier").Logger(),
		categoryBatchSize: categoryBatchSize,
		batchCheckTimeout: batchCheckTimeout,
		fallbackNodeCap:   fallbackNodeCap,
	}
}

// Classify returns the subset of batch deemed human. Never returns a title
// absent from batch. Blocks on network, bounded by batchCheckTimeout.
func (cl *Classifier) Classify(ctx context.Context, batch []string) []string {
	if len(batch) == 0 {
		return nil
	}

	var vip, rest []string
	for _, title := range batch {
		if cl.tables.IsVIP(title) {
			vip = append(vip, title)
		} else {
			rest = append(rest, title)
		}
	}

	var cacheHit, uncached []string
	for _, title := range rest {
		if _, ok := cl.caches.Categories.Get(title); ok {
			cacheHit = append(cacheHit, title)
		} else {
			uncached = append(uncached, title)
		}
	}

	admitted := append([]string{}, vip...)
	for _, title := range cacheHit {
		if v, ok := cl.caches.Categories.Get(title); ok && v {
			admitted = append(admitted, title)
		}
	}

	if len(uncached) == 0 {
		return admitted
	}

	fromAPI, degraded := cl.classifyWithTimeout(ctx, uncached)
	if degraded {
		cl.log.Warn().Int("batch_size", len(uncached)).Msg("classifier degraded: falling back to capped sample")
		already := mapset.NewThreadUnsafeSet[string](vip...)
		fallback := firstK(rest, cl.fallbackNodeCap, already)
		return append(vip, fallback...)
	}

	return append(admitted, fromAPI...)
}

// classifyWithTimeout runs the batched category API classification of
// uncached under a per-call deadline (§4.2's graceful degradation). The
// bool return is true iff the deadline or an unexpected error cut the call
// short, in which case the caller must apply the fallback-sample rule
// rather than trust the (possibly partial) result.
func (cl *Classifier) classifyWithTimeout(ctx context.Context, uncached []string) ([]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, cl.batchCheckTimeout)
	defer cancel()

	type chunkResult struct {
		admitted []string
		err      error
	}

	chunks := chunkTitles(uncached, cl.categoryBatchSize)
	results := make(chan chunkResult, len(chunks))

	for _, chunk := range chunks {
		go func(chunk []string) {
			categories, err := cl.client.GetCategories(ctx, chunk)
			if err != nil {
				results <- chunkResult{err: err}
				return
			}
			var admitted []string
			for _, r := range categories {
				isHuman := false
				if r.Missing {
					cl.caches.SetVerdict(r.Title, false)
				} else {
					isHuman = decide(r.Categories, cl.tables)
					cl.caches.SetVerdict(r.Title, isHuman)
				}
				if isHuman {
					admitted = append(admitted, r.Title)
				}
			}
			results <- chunkResult{admitted: admitted}
		}(chunk)
	}

	var admitted []string
	for i := 0; i < len(chunks); i++ {
		select {
		case r := <-results:
			if r.err != nil {
				cl.log.Warn().Err(r.err).Msg("category chunk call failed")
				return nil, true
			}
			admitted = append(admitted, r.admitted...)
		case <-ctx.Done():
			return nil, true
		}
	}
	return admitted, false
}

func chunkTitles(titles []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	var chunks [][]string
	for i := 0; i < len(titles); i += size {
		end := i + size
		if end > len(titles) {
			end = len(titles)
		}
		chunks = append(chunks, titles[i:end])
	}
	return chunks
}

func firstK(titles []string, k int, exclude mapset.Set[string]) []string {
	out := make([]string, 0, k)
	for _, t := range titles {
		if exclude.Contains(t) {
			continue
		}
		out = append(out, t)
		if len(out) >= k {
			break
		}
	}
	return out
}

var (
	yearCategoryRE    = regexp.MustCompile(`\b\d{4} (births|deaths)\b`)
	centuryCategoryRE = regexp.MustCompile(`\b\d{1,2}(st|nd|rd|th)-century\b`)
)

var centuryRoleKeywords = []string{"rulers", "people", "monarchs", "leaders"}

// decide applies the category decision rule (§4.2) to one article's raw
// (lower-cased, as returned by the API) category titles.
func decide(rawCategories []string, tables *rules.Tables) bool {
	clean := make([]string, len(rawCategories))
	raw := make([]string, len(rawCategories))
	for i, c := range rawCategories {
		lower := strings.ToLower(c)
		raw[i] = lower
		clean[i] = strings.TrimPrefix(lower, "category:")
	}

	for _, c := range clean {
		if containsAny(c, tables.PersonNegative) && !containsAny(c, tables.PersonException) {
			return false
		}
	}

	for _, r := range raw {
		if containsAny(r, tables.PersonPositive) {
			return true
		}
		if yearCategoryRE.MatchString(r) && !strings.Contains(r, "animal") {
			return true
		}
		if centuryCategoryRE.MatchString(r) && containsAny(r, centuryRoleKeywords) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
