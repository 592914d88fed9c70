package cache

import (
	"fmt"
	"path/filepath"
)

// PageData is the cached (extract, outgoing-links) pair for a title. The
// link list reflects smart-pagination truncation (§4.3 of SPEC_FULL.md) —
// it is not guaranteed exhaustive.
type PageData struct {
	Extract string   `json:"extract"`
	Links   []string `json:"links"`
}

// Caches bundles the three process-wide caches the engine consults.
type Caches struct {
	Pages      *Store[PageData]
	Categories *Store[bool]
	Backlinks  *Store[[]string]
}

// Open loads (or creates) the three cache files under dir.
func Open(dir string, pageSize, categorySize, backlinkSize int) (*Caches, error) {
	pages, err := New[PageData](filepath.Join(dir, "pages.json"), pageSize)
	if err != nil {
		return nil, err
	}
	categories, err := New[bool](filepath.Join(dir, "categories.json"), categorySize)
	if err != nil {
		return nil, err
	}
	backlinks, err := New[[]string](filepath.Join(dir, "backlinks.json"), backlinkSize)
	if err != nil {
		return nil, err
	}
	return &Caches{Pages: pages, Categories: categories, Backlinks: backlinks}, nil
}

// SetVerdict records a human/non-human verdict for title. Per §3's
// monotonicity rule, a verdict already held in the cache is never
// overwritten — neither true with false nor false with true.
func (c *Caches) SetVerdict(title string, isHuman bool) {
	if _, ok := c.Categories.Get(title); ok {
		return
	}
	c.Categories.Set(title, isHuman)
}

// Flush persists all three caches, returning the first error encountered
// (after attempting every flush, so one bad write doesn't block the others).
func (c *Caches) Flush() error {
	var firstErr error
	if err := c.Pages.Flush(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("flush pages: %w", err)
	}
	if err := c.Categories.Flush(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("flush categories: %w", err)
	}
	if err := c.Backlinks.Flush(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("flush backlinks: %w", err)
	}
	return firstErr
}
