package textexec

// EofStage is a stage that is immediately exhausted. The TreeBuilder
// returns one for a query with no positive terms (spec.md §4.7).
type EofStage struct{}

func (EofStage) Advance() (Outcome, WorkingSetID) { return Eof, InvalidWorkingSetID }
func (EofStage) IsEOF() bool                       { return true }
func (EofStage) Invalidate(recordID string)        {}
func (EofStage) Stats() Stats                       { return Stats{StageType: "EOF"} }
