package textexec

import (
	"context"
	"testing"
)

type fakeOpener struct {
	postingsByTerm map[string][]Posting
}

func (f *fakeOpener) Open(term string, indexFormatVersion int) (TermCursor, error) {
	p, ok := f.postingsByTerm[term]
	if !ok {
		return nil, ErrTermNotFound
	}
	return NewSliceCursor(p), nil
}

type fakeFetcher struct {
	tokensByID map[string][]string
}

func (f *fakeFetcher) Fetch(ctx context.Context, recordID string, keyBlob []byte) (FetchedDocument, error) {
	return FetchedDocument{RecordID: recordID, Tokens: f.tokensByID[recordID]}, nil
}

func TestTreeBuilder_EmptyQueryIsEOF(t *testing.T) {
	ws := NewWorkingSet(0)
	opener := &fakeOpener{postingsByTerm: map[string][]Posting{}}
	fetcher := &fakeFetcher{}
	b := NewTreeBuilder(context.Background(), opener, fetcher, ws)

	query, err := NewParsedQuery(
		map[string]struct{}{}, map[string]struct{}{}, nil, nil, false, false, 1, "",
	)
	if err != nil {
		t.Fatalf("NewParsedQuery: %v", err)
	}
	root, err := b.Build(query, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !root.IsEOF() {
		t.Fatal("expected EofStage for empty query")
	}
}

func TestTreeBuilder_ScoredPath(t *testing.T) {
	ws := NewWorkingSet(0)
	opener := &fakeOpener{postingsByTerm: map[string][]Posting{
		"go":   {{RecordID: "d1", Score: 1.0}, {RecordID: "d2", Score: 0.5}},
		"lang": {{RecordID: "d1", Score: 1.0}},
	}}
	fetcher := &fakeFetcher{tokensByID: map[string][]string{
		"d1": {"go", "lang"},
		"d2": {"go"},
	}}
	b := NewTreeBuilder(context.Background(), opener, fetcher, ws)

	query, err := NewParsedQuery(
		map[string]struct{}{"go": {}, "lang": {}},
		map[string]struct{}{}, nil, nil, false, false, 1, "go lang",
	)
	if err != nil {
		t.Fatalf("NewParsedQuery: %v", err)
	}
	root, err := b.Build(query, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	got := drainAll(t, ws, root)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %v", got)
	}
	if got[0] != "d1" {
		t.Fatalf("expected d1 first (higher combined score), got %v", got)
	}
}

func TestTreeBuilder_UnknownTermProducesEmptyScan(t *testing.T) {
	ws := NewWorkingSet(0)
	opener := &fakeOpener{postingsByTerm: map[string][]Posting{}}
	fetcher := &fakeFetcher{}
	b := NewTreeBuilder(context.Background(), opener, fetcher, ws)

	query, err := NewParsedQuery(
		map[string]struct{}{"ghost": {}}, map[string]struct{}{}, nil, nil, false, false, 1, "ghost",
	)
	if err != nil {
		t.Fatalf("NewParsedQuery: %v", err)
	}
	root, err := b.Build(query, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := drainAll(t, ws, root)
	if len(got) != 0 {
		t.Fatalf("expected no results for an unknown term, got %v", got)
	}
}
