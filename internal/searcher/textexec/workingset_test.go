package textexec

import "testing"

func TestWorkingSet_AllocateFreeReuse(t *testing.T) {
	ws := NewWorkingSet(0)
	id1, m1, err := ws.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	m1.RecordID = "d1"
	m1.HasRecordID = true

	ws.Free(id1)
	if ws.Get(id1) != nil {
		t.Fatal("expected freed member to be gone")
	}

	id2, _, err := ws.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if id2 != id1 {
		t.Fatalf("expected freed id %d to be reused, got %d", id1, id2)
	}
}

func TestWorkingSet_CapacityExhaustion(t *testing.T) {
	ws := NewWorkingSet(1)
	if _, _, err := ws.Allocate(); err != nil {
		t.Fatalf("first Allocate: %v", err)
	}
	if _, _, err := ws.Allocate(); err != ErrWorkingSetExhausted {
		t.Fatalf("expected ErrWorkingSetExhausted, got %v", err)
	}
}

func TestWorkingSet_FlagForReview(t *testing.T) {
	ws := NewWorkingSet(0)
	id, m, _ := ws.Allocate()
	m.RecordID = "d1"
	m.HasRecordID = true

	ws.FlagForReview(id)
	got := ws.Get(id)
	if !got.ForReview {
		t.Fatal("expected ForReview to be set")
	}
	if got.HasRecordID {
		t.Fatal("expected HasRecordID to be cleared on flag")
	}
}
