package engine

import (
	"context"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"

	"wikihumanpath/internal/filter"
	"wikihumanpath/internal/rules"
)

// fetcher is the subset of *wikiclient.Client the Node Processor needs.
type fetcher interface {
	GetPageData(ctx context.Context, title string) (extract string, links []string)
	GetBacklinks(ctx context.Context, title string) []string
}

// humanClassifier is the subset of *classifier.Classifier the Node
// Processor needs.
type humanClassifier interface {
	Classify(ctx context.Context, batch []string) []string
}

// nodeProcessor implements §4.4: fetch candidates for one frontier node,
// heuristically filter, shuffle, cap, classify, cap again.
type nodeProcessor struct {
	client     fetcher
	classifier humanClassifier
	tables     *rules.Tables
	log        zerolog.Logger

	maxCandidatesToCheck int
	maxDegree            int

	rngMu sync.Mutex
	rng   *rand.Rand
}

func newNodeProcessor(client fetcher, cl humanClassifier, tables *rules.Tables, maxCandidates, maxDegree int, seed int64, logger zerolog.Logger) *nodeProcessor {
	return &nodeProcessor{
		client:               client,
		classifier:           cl,
		tables:               tables,
		log:                  logger.With().Str("component", "node_processor").Logger(),
		maxCandidatesToCheck: maxCandidates,
		maxDegree:            maxDegree,
		rng:                  rand.New(rand.NewSource(seed)),
	}
}

// process returns the admissible human children of node in direction dir.
// Any panic or error along the way is recovered and reported as ok=false;
// it must never propagate into the main search loop (§4.4).
func (np *nodeProcessor) process(ctx context.Context, node string, dir Direction) (children []string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			np.log.Error().Interface("panic", r).Str("node", node).Msg("node processor recovered from panic")
			children, ok = nil, false
		}
	}()

	var candidates []string
	switch dir {
	case Forward:
		_, links := np.client.GetPageData(ctx, node)
		candidates = links
	case Backward:
		candidates = np.client.GetBacklinks(ctx, node)
	}

	if ctx.Err() != nil {
		return nil, false
	}

	candidates = filter.Filter(candidates, np.tables)
	candidates = np.shuffle(candidates)

	if len(candidates) > np.maxCandidatesToCheck {
		candidates = candidates[:np.maxCandidatesToCheck]
	}

	classified := np.classifier.Classify(ctx, candidates)

	if len(classified) > np.maxDegree {
		classified = classified[:np.maxDegree]
	}
	return classified, true
}

// shuffle is a uniform Fisher-Yates shuffle over a seedable PRNG so runs
// are deterministic given a fixed seed (§9 design note), countering
// Wikipedia's near-alphabetical link/backlink ordering.
func (np *nodeProcessor) shuffle(titles []string) []string {
	out := make([]string, len(titles))
	copy(out, titles)

	np.rngMu.Lock()
	defer np.rngMu.Unlock()
	np.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
