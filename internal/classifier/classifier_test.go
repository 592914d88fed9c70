package classifier_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikihumanpath/internal/cache"
	"wikihumanpath/internal/classifier"
	"wikihumanpath/internal/rules"
	"wikihumanpath/internal/wikiclient"
)

type fakeClient struct {
	byTitle map[string]wikiclient.CategoryResult
	delay   time.Duration
	err     error
}

func (f *fakeClient) GetCategories(ctx context.Context, titles []string) ([]wikiclient.CategoryResult, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]wikiclient.CategoryResult, 0, len(titles))
	for _, t := range titles {
		if r, ok := f.byTitle[t]; ok {
			out = append(out, r)
		} else {
			out = append(out, wikiclient.CategoryResult{Title: t, Missing: true})
		}
	}
	return out, nil
}

func newTestCaches(t *testing.T) *cache.Caches {
	t.Helper()
	c, err := cache.Open(t.TempDir(), 100, 100, 100)
	require.NoError(t, err)
	return c
}

func TestClassifyVIPBypassesAPI(t *testing.T) {
	tables := rules.MustLoad()
	fc := &fakeClient{byTitle: map[string]wikiclient.CategoryResult{}}
	cl := classifier.New(fc, newTestCaches(t), tables, 20, 5*time.Second, 15, zerolog.Nop())

	got := cl.Classify(context.Background(), []string{"Albert Einstein"})
	assert.Equal(t, []string{"Albert Einstein"}, got)
}

func TestClassifyPositiveAndNegativeGates(t *testing.T) {
	tables := rules.MustLoad()
	fc := &fakeClient{byTitle: map[string]wikiclient.CategoryResult{
		"Bob Dylan": {Title: "Bob Dylan", Categories: []string{"Category:1941 births", "Category:American singers"}},
		"Arch Linux": {Title: "Arch Linux", Categories: []string{"Category:Linux distributions", "Category:Free software"}},
		"Jane Goodall": {Title: "Jane Goodall", Categories: []string{"Category:Animal rights activists", "Category:1934 births"}},
	}}
	cl := classifier.New(fc, newTestCaches(t), tables, 20, 5*time.Second, 15, zerolog.Nop())

	got := cl.Classify(context.Background(), []string{"Bob Dylan", "Arch Linux", "Jane Goodall"})
	assert.ElementsMatch(t, []string{"Bob Dylan", "Jane Goodall"}, got)
}

func TestClassifyMissingPageIsNotHuman(t *testing.T) {
	tables := rules.MustLoad()
	fc := &fakeClient{byTitle: map[string]wikiclient.CategoryResult{}}
	caches := newTestCaches(t)
	cl := classifier.New(fc, caches, tables, 20, 5*time.Second, 15, zerolog.Nop())

	got := cl.Classify(context.Background(), []string{"Some Nonexistent Page"})
	assert.Empty(t, got)

	v, ok := caches.Categories.Get("Some Nonexistent Page")
	require.True(t, ok)
	assert.False(t, v)
}

func TestClassifyDegradesGracefullyOnTimeout(t *testing.T) {
	tables := rules.MustLoad()
	fc := &fakeClient{delay: 200 * time.Millisecond}
	cl := classifier.New(fc, newTestCaches(t), tables, 20, 20*time.Millisecond, 2, zerolog.Nop())

	got := cl.Classify(context.Background(), []string{"A", "B", "C", "D"})
	assert.LessOrEqual(t, len(got), 2)
}

func TestClassifyCachedVerdictSkipsAPI(t *testing.T) {
	tables := rules.MustLoad()
	caches := newTestCaches(t)
	caches.SetVerdict("Cached Human", true)
	fc := &fakeClient{byTitle: map[string]wikiclient.CategoryResult{}}
	cl := classifier.New(fc, caches, tables, 20, 5*time.Second, 15, zerolog.Nop())

	got := cl.Classify(context.Background(), []string{"Cached Human"})
	assert.Equal(t, []string{"Cached Human"}, got)
}
