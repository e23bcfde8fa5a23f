package textexec

// TextNin is the negation stage (spec.md §4.5). It drains every
// negated-term feeder first, building an exclusion set, then pulls the
// already-composed positive subtree and forwards members whose record_id is
// not excluded. Unlike the other composition stages it is driven in list
// order, not round-robin: the constructor requires feeders before the inner
// stage.
type TextNin struct {
	feeders  []Stage
	inner    Stage
	ws       *WorkingSet
	excluded map[string]struct{}

	feederIdx int
	draining  bool
	eof       bool
	stats     Stats
}

// NewTextNin builds a TEXT_NIN. feeders are IndexScans over the negated
// terms; inner is the already-composed positive subtree.
func NewTextNin(feeders []Stage, inner Stage, ws *WorkingSet) *TextNin {
	return &TextNin{
		feeders:  feeders,
		inner:    inner,
		ws:       ws,
		excluded: make(map[string]struct{}),
		draining: len(feeders) > 0,
		stats: Stats{
			StageType:     "TEXT_NIN",
			ChildAdvances: make([]int64, len(feeders)+1),
		},
	}
}

func (s *TextNin) Advance() (Outcome, WorkingSetID) {
	if s.eof {
		return Eof, InvalidWorkingSetID
	}
	if s.draining {
		return s.drainFeeders()
	}
	return s.pullInner()
}

func (s *TextNin) drainFeeders() (Outcome, WorkingSetID) {
	for s.feederIdx < len(s.feeders) {
		feeder := s.feeders[s.feederIdx]
		outcome, id := feeder.Advance()
		switch outcome {
		case Advanced:
			s.stats.ChildAdvances[s.feederIdx]++
			if m := s.ws.Get(id); m != nil && m.HasRecordID {
				s.excluded[m.RecordID] = struct{}{}
			}
			s.ws.Free(id)
			return NeedTime, InvalidWorkingSetID
		case Failure:
			s.eof = true
			return Failure, id
		case NeedTime, NeedYield:
			return NeedTime, InvalidWorkingSetID
		case Eof:
			s.feederIdx++
		}
	}
	s.draining = false
	return NeedTime, InvalidWorkingSetID
}

func (s *TextNin) pullInner() (Outcome, WorkingSetID) {
	outcome, id := s.inner.Advance()
	innerIdx := len(s.feeders)
	switch outcome {
	case Advanced:
		s.stats.ChildAdvances[innerIdx]++
		m := s.ws.Get(id)
		if m == nil || !m.HasRecordID {
			return NeedTime, InvalidWorkingSetID
		}
		s.stats.DupsTested++
		if _, excluded := s.excluded[m.RecordID]; excluded {
			s.stats.DupsDropped++
			s.ws.Free(id)
			return NeedTime, InvalidWorkingSetID
		}
		return Advanced, id
	case Failure:
		s.eof = true
		return Failure, id
	case Eof:
		s.eof = true
		return Eof, InvalidWorkingSetID
	default:
		return NeedTime, InvalidWorkingSetID
	}
}

func (s *TextNin) IsEOF() bool { return s.eof }

func (s *TextNin) Invalidate(recordID string) {
	delete(s.excluded, recordID)
	for _, f := range s.feeders {
		f.Invalidate(recordID)
	}
	s.inner.Invalidate(recordID)
}

func (s *TextNin) Stats() Stats { return s.stats }
