package executor

import (
	"context"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/invalidation"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/pkg/config"
)

func TestShardedExecutor_MergesAcrossShards(t *testing.T) {
	bodies := map[string]string{
		"s0-d1": "quick quick quick",
		"s1-d1": "quick brown fox",
	}
	engines := map[int]*indexer.Engine{
		0: newTestEngine(t),
		1: newTestEngine(t),
	}
	if err := engines[0].IndexDocument("s0-d1", "", bodies["s0-d1"]); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}
	if err := engines[1].IndexDocument("s1-d1", "", bodies["s1-d1"]); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}

	exec := NewSharded(engines, &inMemoryFetcher{bodies: bodies}, config.TextExecConfig{
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
		t.Fatalf("expected matches from both shards, got %v", result.Results)
	}
	if result.Results[0].DocID != "s0-d1" {
		t.Fatalf("expected higher-frequency doc ranked first, got %v", result.Results)
	}
}

func TestShardedExecutor_RegistersEveryShardForInvalidation(t *testing.T) {
	bodies := map[string]string{
		"s0-d1": "quick fox",
		"s1-d1": "quick fox",
	}
	engines := map[int]*indexer.Engine{
		0: newTestEngine(t),
		1: newTestEngine(t),
	}
	for id, body := range bodies {
		shard := engines[0]
		if id == "s1-d1" {
			shard = engines[1]
		}
		if err := shard.IndexDocument(id, "", body); err != nil {
			t.Fatalf("IndexDocument(%s): %v", id, err)
		}
	}

	registry := invalidation.NewRegistry()
	exec := NewSharded(engines, &inMemoryFetcher{bodies: bodies}, config.TextExecConfig{
		IndexFormatVersion: 1,
		WorkingSetCapacity: 1000,
	}, registry)

	plan := parser.Parse("quick")
	plan.RawQuery = "quick"
	result, err := exec.Execute(context.Background(), plan, 10)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Results) != 2 {
		t.Fatalf("expected both shards to contribute a match, got %v", result.Results)
	}
}
