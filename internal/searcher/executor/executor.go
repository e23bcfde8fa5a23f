package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/invalidation"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/textexec"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/pkg/config"
)

type SearchResult struct {
	Query     string             `json:"query"`
	TotalHits int                `json:"total_hits"`
	Results   []ranker.ScoredDoc `json:"results"`
	TermStats map[string]int     `json:"term_stats"`
}

// Executor drives a textexec stage tree against a single engine. ShardedExecutor
// builds one such tree per shard and merges the ranked results.
type Executor struct {
	engine   *indexer.Engine
	opener   *EngineCursorOpener
	fetcher  textexec.Fetcher
	cfg      config.TextExecConfig
	registry *invalidation.Registry
	logger   *slog.Logger
}

// New creates an Executor backed by engine. fetcher resolves a record's full
// tokenized body for phrase re-validation; pass nil to run phrase-free
// (TextMatch then only re-checks phrases when tokens are present). registry
// may be nil, in which case in-flight stage trees are never registered for
// deletion invalidation.
func New(engine *indexer.Engine, fetcher textexec.Fetcher, cfg config.TextExecConfig, registry *invalidation.Registry) *Executor {
	return &Executor{
		engine:   engine,
		opener:   NewEngineCursorOpener(engine),
		fetcher:  fetcher,
		cfg:      cfg,
		registry: registry,
		logger:   slog.Default().With("component", "query-executor"),
	}
}

// Execute builds a textexec stage tree for plan's raw query and drains it to
// completion through a Driver, collecting a score-ranked SearchResult.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	query, err := parser.ParseText(
		plan.RawQuery,
		e.cfg.CaseSensitive,
		e.cfg.DiacriticSensitive,
		e.cfg.IndexFormatVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing query: %w", err)
	}
	if len(query.PositiveTerms) == 0 {
		return &SearchResult{
			Query:   plan.RawQuery,
			Results: []ranker.ScoredDoc{},
		}, nil
	}

	ws := textexec.NewWorkingSet(e.cfg.WorkingSetCapacity)
	builder := textexec.NewTreeBuilder(ctx, e.opener, e.fetcher, ws)
	root, err := builder.Build(query, true)
	if err != nil {
		return nil, fmt.Errorf("building query plan: %w", err)
	}
	if e.registry != nil {
		unregister := e.registry.Register(root)
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
		if limit > 0 && len(ranked) >= limit {
			return false
		}
		return true
	})
	if failed {
		var diag error
		if m := ws.Get(failedID); m != nil {
			diag = m.Diagnostic
		}
		return nil, fmt.Errorf("executing query %q: %w", plan.RawQuery, diag)
	}

	termStats := make(map[string]int)
	for term := range query.PositiveTerms {
		postings, err := e.engine.Search(term)
		if err != nil {
			continue
		}
		termStats[term] = len(postings)
	}

	e.logger.Info("query executed",
		"query", plan.RawQuery,
		"positive_terms", len(query.PositiveTerms),
		"results", len(ranked),
	)
	return &SearchResult{
		Query:     plan.RawQuery,
		TotalHits: len(ranked),
		Results:   ranked,
		TermStats: termStats,
	}, nil
}
