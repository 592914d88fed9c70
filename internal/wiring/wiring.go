// Package wiring assembles the Wiki Client, Human Classifier, and Engine
// from a Config the way cmd/wikihumanpath's main needs to, so the CLI and
// the HTTP gateway build the same object graph instead of duplicating it.
package wiring

import (
	"github.com/rs/zerolog"

	"wikihumanpath/internal/cache"
	"wikihumanpath/internal/classifier"
	"wikihumanpath/internal/config"
	"wikihumanpath/internal/engine"
	"wikihumanpath/internal/rules"
	"wikihumanpath/internal/wikiclient"
)

// App holds a fully wired engine plus the caches it shares with its
// collaborators, so callers can flush them on shutdown.
type App struct {
	Engine *engine.Engine
	Caches *cache.Caches
}

// Build constructs an App from cfg: rule tables, on-disk caches, the
// Wikipedia client, the classifier, and the engine that ties them together.
func Build(cfg config.Config, logger zerolog.Logger) (*App, error) {
	tables, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return nil, err
	}

	caches, err := cache.Open(cfg.CacheDir, cfg.PageCacheSize, cfg.CategoryCacheSize, cfg.BacklinkCacheSize)
	if err != nil {
		return nil, err
	}

	client := wikiclient.New(
		cfg.UserAgent,
		cfg.ConcurrentRequests,
		cfg.RequestsPerSecond,
		cfg.MaxFetchBatches,
		cfg.MinHumansForEarlyExit,
		caches,
		tables,
		logger,
	)

	cl := classifier.New(
		client,
		caches,
		tables,
		cfg.CategoryBatchSize,
		cfg.BatchCheckTimeout,
		cfg.FallbackNodeCap,
		logger,
	)

	eng := engine.New(cfg, caches, tables, client, cl, logger)

	return &App{Engine: eng, Caches: caches}, nil
}
