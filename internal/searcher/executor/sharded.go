package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/invalidation"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/textexec"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/pkg/config"
)

// shardSearchResult is one shard's contribution to a sharded query: its
// ranked matches and the per-term posting counts it observed.
type shardSearchResult struct {
	ShardID   int
	Results   []ranker.ScoredDoc
	TermStats map[string]int
}

// ShardedExecutor fans a query out to every shard, building one textexec
// stage tree per shard (record ids never cross shards, so no cross-shard
// dedup is needed), and merges the ranked results by score.
type ShardedExecutor struct {
	engines  map[int]*indexer.Engine
	fetcher  textexec.Fetcher
	cfg      config.TextExecConfig
	registry *invalidation.Registry
	logger   *slog.Logger
}

// NewSharded creates a ShardedExecutor over engines. fetcher and registry are
// shared across every shard's stage tree; registry may be nil.
func NewSharded(engines map[int]*indexer.Engine, fetcher textexec.Fetcher, cfg config.TextExecConfig, registry *invalidation.Registry) *ShardedExecutor {
	return &ShardedExecutor{
		engines:  engines,
		fetcher:  fetcher,
		cfg:      cfg,
		registry: registry,
		logger:   slog.Default().With("component", "sharded-executor"),
	}
}

func (se *ShardedExecutor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	if len(plan.Terms) == 0 {
		return &SearchResult{
			Query:   plan.RawQuery,
			Results: []ranker.ScoredDoc{},
		}, nil
	}

	query, err := parser.ParseText(plan.RawQuery, se.cfg.CaseSensitive, se.cfg.DiacriticSensitive, se.cfg.IndexFormatVersion)
	if err != nil {
		return nil, fmt.Errorf("parsing query: %w", err)
	}
	if len(query.PositiveTerms) == 0 {
		return &SearchResult{
			Query:   plan.RawQuery,
			Results: []ranker.ScoredDoc{},
		}, nil
	}

	shardResults, err := se.fanOut(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("shard fan-out: %w", err)
	}

	var ranked []ranker.ScoredDoc
	termStats := make(map[string]int)
	for _, sr := range shardResults {
		ranked = append(ranked, sr.Results...)
		for term, count := range sr.TermStats {
			termStats[term] += count
		}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	se.logger.Info("sharded query executed",
		"query", plan.RawQuery,
		"shards_queried", len(shardResults),
		"results", len(ranked),
	)
	return &SearchResult{
		Query:     plan.RawQuery,
		TotalHits: len(ranked),
		Results:   ranked,
		TermStats: termStats,
	}, nil
}

func (se *ShardedExecutor) fanOut(ctx context.Context, query *textexec.ParsedQuery) ([]shardSearchResult, error) {
	type result struct {
		sr  shardSearchResult
		err error
	}
	results := make([]result, len(se.engines))
	var wg sync.WaitGroup
	i := 0
	for shardID, engine := range se.engines {
		wg.Add(1)
		go func(idx int, sid int, eng *indexer.Engine) {
			defer wg.Done()
			sr, err := se.searchShard(ctx, sid, eng, query)
			if err != nil {
				results[idx] = result{err: fmt.Errorf("shard %d: %w", sid, err)}
				return
			}
			results[idx] = result{sr: sr}
		}(i, shardID, engine)
		i++
	}
	wg.Wait()

	shardResults := make([]shardSearchResult, 0, len(se.engines))
	for _, r := range results {
		if r.err != nil {
			se.logger.Error("shard query failed", "error", r.err)
			continue
		}
		shardResults = append(shardResults, r.sr)
	}
	if len(shardResults) == 0 && len(se.engines) > 0 {
		return nil, fmt.Errorf("all %d shards failed", len(se.engines))
	}
	return shardResults, nil
}

func (se *ShardedExecutor) searchShard(ctx context.Context, shardID int, engine *indexer.Engine, query *textexec.ParsedQuery) (shardSearchResult, error) {
	opener := NewEngineCursorOpener(engine)
	ws := textexec.NewWorkingSet(se.cfg.WorkingSetCapacity)
	builder := textexec.NewTreeBuilder(ctx, opener, se.fetcher, ws)
	root, err := builder.Build(query, true)
	if err != nil {
		return shardSearchResult{}, fmt.Errorf("building query plan: %w", err)
	}
	if se.registry != nil {
		unregister := se.registry.Register(root)
		defer unregister()
	}

	var ranked []ranker.ScoredDoc
	driver := textexec.NewDriver(root)
	failedID, failed := driver.Run(func(id textexec.WorkingSetID) bool {
		m := ws.Get(id)
		if m == nil || !m.HasRecordID {
			return true
		}
		ranked = append(ranked, ranker.ScoredDoc{DocID: m.RecordID, Score: m.Computed})
		ws.Free(id)
		return true
	})
	if failed {
		var diag error
		if m := ws.Get(failedID); m != nil {
			diag = m.Diagnostic
		}
		return shardSearchResult{}, fmt.Errorf("executing shard %d: %w", shardID, diag)
	}

	termStats := make(map[string]int)
	for term := range query.PositiveTerms {
		postings, err := engine.Search(term)
		if err != nil {
			continue
		}
		termStats[term] = len(postings)
	}

	return shardSearchResult{ShardID: shardID, Results: ranked, TermStats: termStats}, nil
}
