package textexec

import "testing"

func TestRecordTable_ScoreViewOrderedDescending(t *testing.T) {
	tbl := NewRecordTable(1)
	tbl.Insert(&TextRecordData{RecordID: "low", Score: 1.0, ScoreTerms: []float64{1.0}})
	tbl.Insert(&TextRecordData{RecordID: "high", Score: 5.0, ScoreTerms: []float64{5.0}})
	tbl.Insert(&TextRecordData{RecordID: "mid", Score: 3.0, ScoreTerms: []float64{3.0}})

	view := tbl.ScoreView()
	want := []string{"high", "mid", "low"}
	if len(view) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(view))
	}
	for i, id := range want {
		if view[i].RecordID != id {
			t.Errorf("position %d: got %q, want %q", i, view[i].RecordID, id)
		}
	}
}

func TestRecordTable_AdvancedSortsToTail(t *testing.T) {
	tbl := NewRecordTable(1)
	a := &TextRecordData{RecordID: "a", Score: 10.0, ScoreTerms: []float64{10.0}}
	b := &TextRecordData{RecordID: "b", Score: 1.0, ScoreTerms: []float64{1.0}}
	tbl.Insert(a)
	tbl.Insert(b)

	a.Advanced = true
	tbl.Resort(a)

	view := tbl.ScoreView()
	if view[0].RecordID != "b" {
		t.Fatalf("expected advanced record to sort to tail, got %q first", view[0].RecordID)
	}
}

func TestRecordTable_DeleteRemovesFromAllViews(t *testing.T) {
	tbl := NewRecordTable(1)
	tbl.Insert(&TextRecordData{RecordID: "a", Score: 1.0, PredictScore: 1.0, ScoreTerms: []float64{1.0}, PredictTerms: []float64{1.0}})
	tbl.Delete("a")

	if tbl.Get("a") != nil {
		t.Fatal("expected hash view lookup to miss after delete")
	}
	if len(tbl.ScoreView()) != 0 || len(tbl.PredictView()) != 0 {
		t.Fatal("expected both ordered views empty after delete")
	}
}

func TestRecomputePredict(t *testing.T) {
	d := &TextRecordData{ScoreTerms: []float64{2.0, 0, 0}}
	lastSeen := []float64{0, 0.5, 0.3}
	got := recomputePredict(d, lastSeen)
	want := 2.0 + 0.5 + 0.3
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}
