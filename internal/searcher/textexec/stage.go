// Package textexec implements the text-query execution core: a pull-based
// tree of stages that intersects, unions, subtracts, and scores streams of
// per-term postings produced by an inverted index.
//
// Every stage exposes one operation, Advance, that returns one of four
// outcomes: Advanced (a working-set id is ready), NeedTime (progress was
// made, call again), Eof (no more output), or Failure (fatal, diagnostic
// attached to the returned id). A driver loops on the root stage, forwarding
// Advanced to the caller and retrying on NeedTime.
package textexec

import "log/slog"

// Outcome is the result of one Stage.Advance call.
type Outcome int

const (
	// Advanced means a WorkingSetID is ready to forward to the caller.
	Advanced Outcome = iota
	// NeedTime means progress was made internally; call Advance again.
	NeedTime
	// Eof means the stage has no more output. Once returned, every
	// subsequent call must also return Eof.
	Eof
	// Failure means a fatal error occurred; the returned id carries a
	// working-set member with diagnostic information.
	Failure
	// NeedYield asks the driver to release external resources (e.g. a
	// storage snapshot) before calling Advance again. Stages in this
	// package never need an external refresh, so they never return it;
	// the Driver treats it identically to NeedTime if it is seen.
	NeedYield
)

func (o Outcome) String() string {
	switch o {
	case Advanced:
		return "ADVANCED"
	case NeedTime:
		return "NEED_TIME"
	case Eof:
		return "EOF"
	case Failure:
		return "FAILURE"
	case NeedYield:
		return "NEED_YIELD"
	default:
		return "UNKNOWN"
	}
}

// Stats is the read-only observability snapshot a stage exposes once a
// query completes. It is never used to drive stage behavior.
type Stats struct {
	StageType          string
	ChildAdvances      []int64
	DupsTested         int64
	DupsDropped        int64
	RecordIdsForgotten int64
	WantTextScore      bool
	SingleChild        bool
	EarlyEmissions     int64
}

// Stage is the capability contract every composition stage and leaf
// implements. There is no inheritance chain: dispatch is through this
// interface, as DESIGN NOTES in spec.md §9 recommends in place of the
// source's virtual-base hierarchy.
type Stage interface {
	// Advance performs one unit of work and returns an Outcome plus, for
	// Advanced/Failure, the WorkingSetID carrying the result.
	Advance() (Outcome, WorkingSetID)

	// IsEOF reports whether the stage has reached Eof. Once true it never
	// reverts to false.
	IsEOF() bool

	// Invalidate is called by the storage layer when a record is
	// physically deleted. It never changes the stage's internal state
	// machine; it only scrubs table entries and flags working-set
	// members for review.
	Invalidate(recordID string)

	// Stats returns a snapshot of this stage's counters.
	Stats() Stats
}

func stageLogger(stageType string) *slog.Logger {
	return slog.Default().With("component", "textexec", "stage", stageType)
}

// Driver pulls a root Stage to completion, forwarding every Advanced id to
// the caller via the yield function. It stops on Eof or Failure, or when the
// caller's yield function asks it to stop.
type Driver struct {
	root Stage
}

// NewDriver wraps root for single-threaded cooperative execution.
func NewDriver(root Stage) *Driver {
	return &Driver{root: root}
}

// Run repeatedly calls Advance on the root stage until Eof, Failure, or the
// yield callback returns false. yield is called once per Advanced result
// with the produced WorkingSetID; returning false stops the run early
// (e.g. once a result limit has been reached).
func (d *Driver) Run(yield func(WorkingSetID) bool) (failed WorkingSetID, err bool) {
	for {
		outcome, id := d.root.Advance()
		switch outcome {
		case Advanced:
			if !yield(id) {
				return 0, false
			}
		case NeedTime, NeedYield:
			continue
		case Eof:
			return 0, false
		case Failure:
			return id, true
		}
	}
}
