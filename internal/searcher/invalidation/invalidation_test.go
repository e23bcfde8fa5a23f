package invalidation

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/textexec"
)

type recordingStage struct {
	invalidated []string
}

func (s *recordingStage) Advance() (textexec.Outcome, textexec.WorkingSetID) {
	return textexec.Eof, textexec.InvalidWorkingSetID
}
func (s *recordingStage) IsEOF() bool { return true }
func (s *recordingStage) Invalidate(recordID string) {
	s.invalidated = append(s.invalidated, recordID)
}
func (s *recordingStage) Stats() textexec.Stats { return textexec.Stats{} }

func TestRegistry_InvalidateAllReachesEveryRegisteredStage(t *testing.T) {
	reg := NewRegistry()
	a := &recordingStage{}
	b := &recordingStage{}
	unregA := reg.Register(a)
	reg.Register(b)

	reg.InvalidateAll("d1")
	if len(a.invalidated) != 1 || a.invalidated[0] != "d1" {
		t.Fatalf("expected a to see d1, got %v", a.invalidated)
	}
	if len(b.invalidated) != 1 || b.invalidated[0] != "d1" {
		t.Fatalf("expected b to see d1, got %v", b.invalidated)
	}

	unregA()
	reg.InvalidateAll("d2")
	if len(a.invalidated) != 1 {
		t.Fatalf("expected a to stay unregistered, got %v", a.invalidated)
	}
	if len(b.invalidated) != 2 || b.invalidated[1] != "d2" {
		t.Fatalf("expected b to see d2 after a unregistered, got %v", b.invalidated)
	}
}
