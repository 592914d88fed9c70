package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wikihumanpath/internal/cache"
	"wikihumanpath/internal/classifier"
	"wikihumanpath/internal/config"
	"wikihumanpath/internal/rules"
	"wikihumanpath/internal/wikiclient"
)

// Engine is the Bidirectional Search + Watchdog (§4.5/§4.6). FindPath is
// its only public entry point; everything else in this package is an
// implementation detail of one invocation.
type Engine struct {
	cfg    config.Config
	np     *nodeProcessor
	caches *cache.Caches
	log    zerolog.Logger
}

// New wires the engine's collaborators together: the Wiki Client, the
// Human Classifier, the rule tables, and the caches they share.
func New(cfg config.Config, caches *cache.Caches, tables *rules.Tables, client *wikiclient.Client, cl *classifier.Classifier, logger zerolog.Logger) *Engine {
	np := newNodeProcessor(client, cl, tables, cfg.MaxCandidatesToCheck, cfg.MaxDegree, cfg.RandomSeed, logger)
	return &Engine{cfg: cfg, np: np, caches: caches, log: logger.With().Str("component", "engine").Logger()}
}

// FindPath runs one bidirectional search between start and end, streaming
// events on the returned channel. The channel is closed exactly once,
// after a terminal event (finished, not_found, or error) has been sent.
// Cancelling ctx is an additional, optional cancellation signal on top of
// the engine's own hard-timeout watchdog. The returned searchID is the
// same correlation ID carried through this invocation's structured log
// lines (§3); callers that expose the search externally (the HTTP gateway)
// surface it too, e.g. as a response header.
func (e *Engine) FindPath(ctx context.Context, start, end string) (searchID string, _ <-chan Event) {
	searchID = uuid.NewString()
	log := e.log.With().Str("search_id", searchID).Logger()

	events := make(chan Event, 32)
	hardCtx, cancel := context.WithTimeout(ctx, e.cfg.HardTimeout)

	var once sync.Once
	finish := func(ev Event) {
		once.Do(func() {
			e.flushCaches(log)
			events <- ev
			close(events)
		})
	}
	searchDone := make(chan struct{})

	// Watchdog: guarantees termination even if the main loop stalls. It
	// only depends on hardCtx's own deadline firing, never on the main
	// loop's cooperation.
	go func() {
		select {
		case <-hardCtx.Done():
			if hardCtx.Err() == context.DeadlineExceeded {
				log.Error().Msg("watchdog: hard timeout fired before a terminal event was emitted")
				finish(Event{Tag: EventError, Message: fmt.Sprintf("hard timeout of %s exceeded", e.cfg.HardTimeout)})
			}
		case <-searchDone:
		}
	}()

	// Periodic flush during long searches (§3 Lifecycle), independent of
	// the terminal-event flush in finish.
	if e.caches != nil && e.cfg.CacheFlushInterval > 0 {
		go func() {
			ticker := time.NewTicker(e.cfg.CacheFlushInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					e.flushCaches(log)
				case <-searchDone:
					return
				}
			}
		}()
	}

	go func() {
		defer cancel()
		defer close(searchDone)
		e.run(hardCtx, searchID, log, start, end, events, finish)
	}()

	return searchID, events
}

func (e *Engine) flushCaches(log zerolog.Logger) {
	if e.caches == nil {
		return
	}
	if err := e.caches.Flush(); err != nil {
		log.Warn().Err(err).Msg("cache flush failed")
	}
}

func (e *Engine) run(ctx context.Context, searchID string, log zerolog.Logger, start, end string, events chan<- Event, finish func(Event)) {
	startTime := time.Now()

	send := func(ev Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	send(Event{Tag: EventInfo, Message: fmt.Sprintf("searching for a human path from %q to %q", start, end)})

	if start == end {
		finish(Event{Tag: EventFinished, Path: []string{start}})
		return
	}

	fwd := newFrontier(start)
	bwd := newFrontier(end)

	step := 0
	for !fwd.empty() && !bwd.empty() {
		elapsed := time.Since(startTime)
		if elapsed >= e.cfg.HardTimeout-e.cfg.SoftTimeoutMargin {
			finish(Event{Tag: EventError, Message: "soft timeout: search approaching hard deadline"})
			return
		}
		visited := fwd.visitedCount() + bwd.visitedCount()
		if visited > e.cfg.MaxNodesVisited {
			finish(Event{Tag: EventError, Message: fmt.Sprintf("visited node cap of %d exceeded", e.cfg.MaxNodesVisited)})
			return
		}
		if step > e.cfg.MaxStepCount {
			finish(Event{Tag: EventError, Message: fmt.Sprintf("step cap of %d exceeded", e.cfg.MaxStepCount)})
			return
		}
		step++

		dir, own, other := Forward, fwd, bwd
		if len(fwd.queue) > len(bwd.queue) {
			dir, own, other = Backward, bwd, fwd
		}

		batch := own.popBatch(e.cfg.BatchSize)

		send(Event{
			Tag:       EventExploring,
			Direction: dir,
			Nodes:     append([]string{}, batch...),
			Stats:     Stats{Visited: visited, ElapsedSeconds: time.Since(startTime).Seconds()},
		})

		type result struct {
			node     string
			children []string
			ok       bool
		}
		results := make([]result, len(batch))

		var wg sync.WaitGroup
		for i, node := range batch {
			wg.Add(1)
			go func(i int, node string) {
				defer wg.Done()
				children, ok := e.np.process(ctx, node, dir)
				results[i] = result{node: node, children: children, ok: ok}
			}(i, node)
		}
		wg.Wait()

		if ctx.Err() != nil {
			// Hard deadline fired mid-batch; discard whatever came back
			// and let the watchdog goroutine emit the terminal event.
			return
		}

		for _, r := range results {
			if !r.ok {
				log.Warn().Str("node", r.node).Str("direction", string(dir)).Msg("node processor failed; skipping")
				continue
			}
			for _, child := range r.children {
				if own.discovered(child) {
					continue
				}
				own.insert(child, r.node)

				if other.discovered(child) {
					path := reconstructPath(child, fwd.parent, bwd.parent)
					finish(Event{Tag: EventFinished, Path: path})
					return
				}
			}
		}
	}

	finish(Event{Tag: EventNotFound, Message: "both frontiers exhausted without meeting"})
}
