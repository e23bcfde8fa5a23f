package textexec

import "testing"

// TEXT_AND completeness: a record_id is emitted iff it appears in every
// child's output stream, across three children.
func TestTextAnd_CompletenessThreeChildren(t *testing.T) {
	ws := NewWorkingSet(0)
	a := NewIndexScan("a", NewSliceCursor(postings(pair("d1", 1.0), pair("d2", 1.0), pair("d3", 1.0))), ws)
	b := NewIndexScan("b", NewSliceCursor(postings(pair("d1", 1.0), pair("d2", 1.0))), ws)
	c := NewIndexScan("c", NewSliceCursor(postings(pair("d1", 1.0))), ws)
	and := NewTextAnd([]Stage{a, b, c}, ws, true)

	got := drainAll(t, ws, and)
	if len(got) != 1 || got[0] != "d1" {
		t.Fatalf("expected only d1 (in all three streams), got %v", got)
	}
}

// The intersection filter purges a record the first child reported once a
// later child reaches EOF without ever having reported it.
func TestTextAnd_PurgeOnChildEOF(t *testing.T) {
	ws := NewWorkingSet(0)
	a := NewIndexScan("a", NewSliceCursor(postings(pair("d1", 1.0), pair("d2", 1.0))), ws)
	b := NewIndexScan("b", NewSliceCursor(postings(pair("d1", 1.0))), ws) // never reports d2
	and := NewTextAnd([]Stage{a, b}, ws, true)

	got := drainAll(t, ws, and)
	if len(got) != 1 || got[0] != "d1" {
		t.Fatalf("expected d2 to be purged once b hit EOF, got %v", got)
	}
}

func TestTextAnd_NoMatches(t *testing.T) {
	ws := NewWorkingSet(0)
	a := NewIndexScan("a", NewSliceCursor(postings(pair("d1", 1.0))), ws)
	b := NewIndexScan("b", NewSliceCursor(postings(pair("d2", 1.0))), ws)
	and := NewTextAnd([]Stage{a, b}, ws, true)

	got := drainAll(t, ws, and)
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}
