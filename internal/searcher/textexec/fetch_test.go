package textexec

import (
	"context"
	"errors"
	"testing"
)

// invalidatingFetcher returns ErrDocumentInvalidated for every record in
// gone, and otherwise resolves to a fixed token body.
type invalidatingFetcher struct {
	gone map[string]bool
}

func (f *invalidatingFetcher) Fetch(ctx context.Context, recordID string, keyBlob []byte) (FetchedDocument, error) {
	if f.gone[recordID] {
		return FetchedDocument{}, ErrDocumentInvalidated
	}
	return FetchedDocument{RecordID: recordID, Tokens: []string{"tok"}}, nil
}

// A deleted record_id surfacing mid-scan must be dropped, not turned into a
// query failure (spec.md's fetch contract).
func TestFetch_InvalidatedDocumentIsDroppedNotFailed(t *testing.T) {
	ws := NewWorkingSet(0)
	scan := NewIndexScan("t", NewSliceCursor(postings(
		pair("d1", 1.0), pair("d2", 0.5), pair("d3", 0.2),
	)), ws)
	fetch := NewFetch(context.Background(), scan, &invalidatingFetcher{gone: map[string]bool{"d2": true}}, ws)

	got := drainAll(t, ws, fetch)
	want := map[string]bool{"d1": true, "d3": true}
	if len(got) != len(want) {
		t.Fatalf("expected %d survivors, got %d: %v", len(want), len(got), got)
	}
	for _, id := range got {
		if !want[id] {
			t.Fatalf("unexpected record in results: %v", got)
		}
		if id == "d2" {
			t.Fatalf("invalidated record d2 leaked into results: %v", got)
		}
	}
}

// A genuine fetch error (not invalidation) must still surface as a query
// failure.
func TestFetch_GenericErrorFails(t *testing.T) {
	ws := NewWorkingSet(0)
	scan := NewIndexScan("t", NewSliceCursor(postings(pair("d1", 1.0))), ws)
	fetch := NewFetch(context.Background(), scan, &erroringFetcher{}, ws)

	d := NewDriver(fetch)
	failedID, hadFailure := d.Run(func(id WorkingSetID) bool { return true })
	if !hadFailure {
		t.Fatalf("expected a failure outcome for a non-invalidation fetch error")
	}
	m := ws.Get(failedID)
	if m == nil || m.Diagnostic == nil {
		t.Fatalf("expected a diagnostic error on the failed member")
	}
}

type erroringFetcher struct{}

func (f *erroringFetcher) Fetch(ctx context.Context, recordID string, keyBlob []byte) (FetchedDocument, error) {
	return FetchedDocument{}, errConnRefused
}

var errConnRefused = errors.New("connection refused")
