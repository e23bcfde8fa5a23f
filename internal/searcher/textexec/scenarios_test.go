package textexec

import "testing"

// drainAll runs a Driver to completion and returns the record_ids in
// emission order, failing the test on a Failure outcome.
func drainAll(t *testing.T, ws *WorkingSet, root Stage) []string {
	t.Helper()
	var ids []string
	d := NewDriver(root)
	failed, hadFailure := d.Run(func(id WorkingSetID) bool {
		m := ws.Get(id)
		if m != nil && m.HasRecordID {
			ids = append(ids, m.RecordID)
		}
		return true
	})
	if hadFailure {
		m := ws.Get(failed)
		if m != nil {
			t.Fatalf("stage reported failure: %v", m.Diagnostic)
		}
		t.Fatalf("stage reported failure with no diagnostic")
	}
	return ids
}

func postings(pairs ...struct {
	id    string
	score float64
}) []Posting {
	out := make([]Posting, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Posting{RecordID: p.id, Score: p.score})
	}
	return out
}

func pair(id string, score float64) struct {
	id    string
	score float64
} {
	return struct {
		id    string
		score float64
	}{id, score}
}

// S1: two disjoint posting lists, non-scoring OR, no duplicates.
func TestScenario_S1_DisjointOrUnion(t *testing.T) {
	ws := NewWorkingSet(0)
	a := NewIndexScan("a", NewSliceCursor(postings(pair("d1", 1.0), pair("d3", 0.5))), ws)
	b := NewIndexScan("b", NewSliceCursor(postings(pair("d2", 0.8), pair("d4", 0.2))), ws)
	or := NewOr([]Stage{a, b}, ws)

	got := drainAll(t, ws, or)
	want := map[string]bool{"d1": true, "d2": true, "d3": true, "d4": true}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d: %v", len(want), len(got), got)
	}
	seen := make(map[string]bool)
	for _, id := range got {
		if seen[id] {
			t.Fatalf("duplicate record_id %q emitted", id)
		}
		seen[id] = true
		if !want[id] {
			t.Fatalf("unexpected record_id %q emitted", id)
		}
	}
}

// S2: overlapping postings through TEXT_OR, scores summed and emitted
// in non-increasing order.
func TestScenario_S2_TextOrSumsScoresDescending(t *testing.T) {
	ws := NewWorkingSet(0)
	a := NewIndexScan("a", NewSliceCursor(postings(pair("d1", 2.0), pair("d2", 1.0))), ws)
	b := NewIndexScan("b", NewSliceCursor(postings(pair("d1", 1.5), pair("d3", 0.7))), ws)
	to := NewTextOr([]Stage{a, b}, ws, true)

	type result struct {
		id    string
		score float64
	}
	var got []result
	d := NewDriver(to)
	_, hadFailure := d.Run(func(id WorkingSetID) bool {
		m := ws.Get(id)
		got = append(got, result{m.RecordID, m.Computed})
		return true
	})
	if hadFailure {
		t.Fatal("unexpected failure")
	}

	want := []result{{"d1", 3.5}, {"d2", 1.0}, {"d3", 0.7}}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].id != want[i].id || got[i].score != want[i].score {
			t.Errorf("result %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].score > got[i-1].score {
			t.Errorf("scores not non-increasing at index %d: %v", i, got)
		}
	}
}

// S3: phrase intersection via TEXT_AND drops records missing either term.
func TestScenario_S3_PhraseIntersection(t *testing.T) {
	ws := NewWorkingSet(0)
	x := NewIndexScan("x", NewSliceCursor(postings(pair("d1", 1.0), pair("d2", 1.0))), ws)
	y := NewIndexScan("y", NewSliceCursor(postings(pair("d1", 1.0), pair("d3", 1.0))), ws)
	and := NewTextAnd([]Stage{x, y}, ws, true)

	got := drainAll(t, ws, and)
	if len(got) != 1 || got[0] != "d1" {
		t.Fatalf("expected only d1, got %v", got)
	}
}

// S4: negation excludes the negated term's record_ids from the positive union.
func TestScenario_S4_Negation(t *testing.T) {
	ws := NewWorkingSet(0)
	p := NewIndexScan("p", NewSliceCursor(postings(pair("d1", 1.0), pair("d2", 1.0), pair("d3", 1.0))), ws)
	n := NewIndexScan("n", NewSliceCursor(postings(pair("d2", 1.0))), ws)
	inner := NewOr([]Stage{p}, ws)
	nin := NewTextNin([]Stage{n}, inner, ws)

	got := drainAll(t, ws, nin)
	want := map[string]bool{"d1": true, "d3": true}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d: %v", len(want), len(got), got)
	}
	for _, id := range got {
		if !want[id] {
			t.Fatalf("unexpected record_id %q emitted", id)
		}
	}
}

// S5: invalidating a record once it has landed in TEXT_OR's record table
// flags its member for review; the stage never emits it, and the rest of
// the stream is unaffected. A second, idle child forces the multi-child
// (table-backed) path rather than the single-child fast path.
func TestScenario_S5_InvalidateDuringScan(t *testing.T) {
	ws := NewWorkingSet(0)
	a := NewIndexScan("a", NewSliceCursor(postings(pair("d1", 1.0), pair("d2", 1.0))), ws)
	b := NewIndexScan("b", NewSliceCursor(nil), ws)
	to := NewTextOr([]Stage{a, b}, ws, true)

	// Step until d1 is present in the stage's record table.
	for to.table.Get("d1") == nil && !to.IsEOF() {
		to.Advance()
	}
	if to.table.Get("d1") == nil {
		t.Fatal("d1 never landed in the record table")
	}
	to.Invalidate("d1")
	if to.table.Get("d1") != nil {
		t.Fatal("d1 should have been removed from the table")
	}

	got := drainAll(t, ws, to)
	for _, id := range got {
		if id == "d1" {
			t.Fatal("d1 should not be emitted after invalidation")
		}
	}
	if len(got) != 1 || got[0] != "d2" {
		t.Fatalf("expected only d2, got %v", got)
	}
}

// Uniqueness: TEXT_OR never emits the same record_id twice.
func TestTextOr_Uniqueness(t *testing.T) {
	ws := NewWorkingSet(0)
	a := NewIndexScan("a", NewSliceCursor(postings(pair("d1", 1.0), pair("d2", 1.0))), ws)
	b := NewIndexScan("b", NewSliceCursor(postings(pair("d1", 1.0), pair("d2", 1.0))), ws)
	c := NewIndexScan("c", NewSliceCursor(postings(pair("d1", 1.0))), ws)
	to := NewTextOr([]Stage{a, b, c}, ws, true)

	got := drainAll(t, ws, to)
	seen := make(map[string]bool)
	for _, id := range got {
		if seen[id] {
			t.Fatalf("duplicate emission of %q", id)
		}
		seen[id] = true
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct records, got %v", got)
	}
}

// EOF closure: once a stage returns Eof, every subsequent call also returns Eof.
func TestEOFClosure(t *testing.T) {
	ws := NewWorkingSet(0)
	a := NewIndexScan("a", NewSliceCursor(postings(pair("d1", 1.0))), ws)
	for !a.IsEOF() {
		a.Advance()
	}
	for i := 0; i < 3; i++ {
		outcome, _ := a.Advance()
		if outcome != Eof {
			t.Fatalf("call %d after EOF returned %v, want Eof", i, outcome)
		}
	}
}

// Idempotent invalidate: invalidating twice, or invalidating an unknown id,
// has no extra effect.
func TestInvalidate_Idempotent(t *testing.T) {
	ws := NewWorkingSet(0)
	a := NewIndexScan("a", NewSliceCursor(postings(pair("d1", 1.0))), ws)
	or := NewOr([]Stage{a}, ws)

	or.Invalidate("unknown")
	or.Invalidate("d1")
	or.Invalidate("d1")
}
