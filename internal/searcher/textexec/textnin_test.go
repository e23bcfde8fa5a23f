package textexec

import "testing"

func TestTextNin_ExcludesNegatedRecords(t *testing.T) {
	ws := NewWorkingSet(0)
	p := NewIndexScan("p", NewSliceCursor(postings(pair("d1", 1.0), pair("d2", 1.0), pair("d3", 1.0))), ws)
	n := NewIndexScan("n", NewSliceCursor(postings(pair("d2", 1.0))), ws)
	inner := NewOr([]Stage{p}, ws)
	nin := NewTextNin([]Stage{n}, inner, ws)

	got := drainAll(t, ws, nin)
	for _, id := range got {
		if id == "d2" {
			t.Fatalf("d2 should have been excluded, got %v", got)
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %v", got)
	}
}

func TestTextNin_MultipleFeedersDrainedInListOrder(t *testing.T) {
	ws := NewWorkingSet(0)
	p := NewIndexScan("p", NewSliceCursor(postings(pair("d1", 1.0), pair("d2", 1.0), pair("d3", 1.0))), ws)
	n1 := NewIndexScan("n1", NewSliceCursor(postings(pair("d1", 1.0))), ws)
	n2 := NewIndexScan("n2", NewSliceCursor(postings(pair("d3", 1.0))), ws)
	inner := NewOr([]Stage{p}, ws)
	nin := NewTextNin([]Stage{n1, n2}, inner, ws)

	got := drainAll(t, ws, nin)
	if len(got) != 1 || got[0] != "d2" {
		t.Fatalf("expected only d2, got %v", got)
	}
}

func TestTextNin_NoNegatedTerms(t *testing.T) {
	ws := NewWorkingSet(0)
	p := NewIndexScan("p", NewSliceCursor(postings(pair("d1", 1.0))), ws)
	inner := NewOr([]Stage{p}, ws)
	nin := NewTextNin(nil, inner, ws)

	got := drainAll(t, ws, nin)
	if len(got) != 1 || got[0] != "d1" {
		t.Fatalf("expected d1 through with no feeders, got %v", got)
	}
}
