package executor

import (
	"context"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/invalidation"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/textexec"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/pkg/config"
)

// inMemoryFetcher stands in for PostgresFetcher in tests that don't stand up
// a database: it re-tokenizes a body held in memory, exercising the same
// Fetch contract the real implementation satisfies.
type inMemoryFetcher struct {
	bodies map[string]string
}

func (f *inMemoryFetcher) Fetch(ctx context.Context, recordID string, keyBlob []byte) (textexec.FetchedDocument, error) {
	tokens := tokenizer.Tokenize(f.bodies[recordID])
	terms := make([]string, len(tokens))
	for i, tok := range tokens {
		terms[i] = tok.Term
	}
	return textexec.FetchedDocument{RecordID: recordID, Tokens: terms}, nil
}

func newTestEngine(t *testing.T) *indexer.Engine {
	t.Helper()
	cfg := config.IndexerConfig{DataDir: t.TempDir()}
	engine, err := indexer.NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func TestExecutor_RanksByBM25Score(t *testing.T) {
	engine := newTestEngine(t)
	bodies := map[string]string{
		"d1": "the quick brown fox jumps over the lazy dog",
		"d2": "quick quick quick",
		"d3": "a completely unrelated document about cats",
	}
	for id, body := range bodies {
		if err := engine.IndexDocument(id, "", body); err != nil {
			t.Fatalf("IndexDocument(%s): %v", id, err)
		}
	}

	exec := New(engine, &inMemoryFetcher{bodies: bodies}, config.TextExecConfig{
		IndexFormatVersion: 1,
		WorkingSetCapacity: 1000,
	}, invalidation.NewRegistry())
	plan := parser.Parse("quick")
	plan.RawQuery = "quick"

	result, err := exec.Execute(context.Background(), plan, 10)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Results) != 2 {
		t.Fatalf("expected 2 matches for 'quick', got %v", result.Results)
	}
	if result.Results[0].DocID != "d2" {
		t.Fatalf("expected d2 (3 occurrences) ranked first, got %v", result.Results)
	}
}

func TestExecutor_PhraseRequiresAdjacency(t *testing.T) {
	engine := newTestEngine(t)
	bodies := map[string]string{
		"d1": "breaking news today",
		"d2": "today breaking the news cycle",
	}
	for id, body := range bodies {
		if err := engine.IndexDocument(id, "", body); err != nil {
			t.Fatalf("IndexDocument(%s): %v", id, err)
		}
	}

	exec := New(engine, &inMemoryFetcher{bodies: bodies}, config.TextExecConfig{
		IndexFormatVersion: 1,
		WorkingSetCapacity: 1000,
	}, nil)
	plan := parser.Parse(`"breaking news"`)
	plan.RawQuery = `"breaking news"`

	result, err := exec.Execute(context.Background(), plan, 10)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Results) != 1 || result.Results[0].DocID != "d1" {
		t.Fatalf("expected only d1 (adjacent phrase), got %v", result.Results)
	}
}

func TestExecutor_EmptyQueryReturnsNoResults(t *testing.T) {
	engine := newTestEngine(t)
	exec := New(engine, &inMemoryFetcher{}, config.TextExecConfig{IndexFormatVersion: 1}, nil)
	plan := parser.Parse("the and or")
	plan.RawQuery = "the and or"

	result, err := exec.Execute(context.Background(), plan, 10)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Results) != 0 {
		t.Fatalf("expected no results for an all-stopword query, got %v", result.Results)
	}
}
