package textexec

// textOrState is TEXT_OR's internal state machine (spec.md §4.3).
type textOrState int

const (
	orReadingTerms textOrState = iota
	orReturningResults
	orDone
)

// TextOr is the scoring union stage with score-aware early emission
// (spec.md §4.3). Children are IndexScans, or wrapped TEXT_ANDs for
// multi-term phrases.
type TextOr struct {
	children  []Stage
	ws        *WorkingSet
	wantScore bool
	table     *RecordTable

	lastSeen             []float64
	childEOF             []bool
	currentAllTermsScore float64
	next                 int

	state        textOrState
	returningIdx int

	hasCache           bool
	cachedRequiredDrop float64
	cachedBaseline     float64

	singleChild bool
	stats       Stats
}

// NewTextOr builds a TEXT_OR over children. wantScore selects whether the
// early-emission machinery runs; without it, records are returned from the
// record table only once every child has reached EOF (spec.md §4.3's
// single-child fast path is taken whenever len(children) == 1 regardless).
func NewTextOr(children []Stage, ws *WorkingSet, wantScore bool) *TextOr {
	s := &TextOr{
		children:    children,
		ws:          ws,
		wantScore:   wantScore,
		table:       NewRecordTable(len(children)),
		lastSeen:    make([]float64, len(children)),
		childEOF:    make([]bool, len(children)),
		singleChild: len(children) == 1,
		stats: Stats{
			StageType:     "TEXT_OR",
			ChildAdvances: make([]int64, len(children)),
			WantTextScore: wantScore,
			SingleChild:   len(children) == 1,
		},
	}
	return s
}

func (s *TextOr) Advance() (Outcome, WorkingSetID) {
	if s.state == orDone {
		return Eof, InvalidWorkingSetID
	}
	if s.singleChild {
		return s.advanceSingleChild()
	}

	switch s.state {
	case orReadingTerms:
		if s.wantScore {
			if outcome, id := s.tryEarlyEmit(); outcome != Eof {
				return outcome, id
			}
		}
		return s.driveChild()
	case orReturningResults:
		return s.advanceReturning()
	default:
		s.state = orDone
		return Eof, InvalidWorkingSetID
	}
}

func (s *TextOr) advanceSingleChild() (Outcome, WorkingSetID) {
	outcome, id := s.children[0].Advance()
	switch outcome {
	case Advanced:
		s.stats.ChildAdvances[0]++
		return Advanced, id
	case Eof:
		s.state = orDone
		return Eof, InvalidWorkingSetID
	case Failure:
		s.state = orDone
		return Failure, id
	default:
		return outcome, id
	}
}

// driveChild steps the next non-EOF child in round-robin order and folds
// its result into the record table.
func (s *TextOr) driveChild() (Outcome, WorkingSetID) {
	if len(s.children) == 0 {
		s.state = orDone
		return Eof, InvalidWorkingSetID
	}

	idx := -1
	for i := 0; i < len(s.children); i++ {
		cand := (s.next + i) % len(s.children)
		if !s.childEOF[cand] {
			idx = cand
			break
		}
	}
	if idx == -1 {
		s.state = orDone
		return Eof, InvalidWorkingSetID
	}
	s.next = (idx + 1) % len(s.children)

	outcome, id := s.children[idx].Advance()

	switch outcome {
	case Advanced:
		s.stats.ChildAdvances[idx]++
		m := s.ws.Get(id)
		if m == nil || !m.HasRecordID {
			if id != InvalidWorkingSetID {
				s.ws.FlagForReview(id)
			}
			return NeedTime, InvalidWorkingSetID
		}
		s.stats.DupsTested++

		score := 0.0
		if m.HasScore {
			score = m.Computed
		}

		if d := s.table.Get(m.RecordID); d == nil {
			scoreTerms := make([]float64, len(s.children))
			scoreTerms[idx] = score
			d = &TextRecordData{RecordID: m.RecordID, WSID: id, ScoreTerms: scoreTerms, Score: score}
			d.PredictScore = recomputePredict(d, s.lastSeen)
			s.table.Insert(d)
		} else {
			s.stats.DupsDropped++
			d.ScoreTerms[idx] = score
			sum := 0.0
			for _, st := range d.ScoreTerms {
				sum += st
			}
			d.Score = sum
			d.PredictScore = recomputePredict(d, s.lastSeen)
			s.table.Resort(d)
			s.ws.Free(id)
		}

		s.currentAllTermsScore += score - s.lastSeen[idx]
		s.lastSeen[idx] = score
		return NeedTime, InvalidWorkingSetID

	case Eof:
		s.childEOF[idx] = true
		s.currentAllTermsScore -= s.lastSeen[idx]
		s.lastSeen[idx] = 0

		allEOF := true
		for _, e := range s.childEOF {
			if !e {
				allEOF = false
				break
			}
		}
		if !allEOF {
			return NeedTime, InvalidWorkingSetID
		}
		s.state = orReturningResults
		s.returningIdx = 0
		return NeedTime, InvalidWorkingSetID

	case Failure:
		s.state = orDone
		return Failure, id

	default: // NeedTime, NeedYield
		return NeedTime, InvalidWorkingSetID
	}
}

// tryEarlyEmit attempts the early-emission proof (spec.md §4.3). It returns
// Eof when emission is not yet safe — a signal to the caller (driveChild's
// caller, Advance) to drive a child instead, not the stage's real EOF.
func (s *TextOr) tryEarlyEmit() (Outcome, WorkingSetID) {
	if s.hasCache {
		if s.cachedBaseline-s.currentAllTermsScore < s.cachedRequiredDrop {
			return Eof, InvalidWorkingSetID
		}
		s.hasCache = false
	}

	top := s.table.FirstByScore()
	if s.table.Len() < 2 || top == nil || top.Advanced || top.Score == 0 ||
		s.currentAllTermsScore == 0 || top.Score < s.currentAllTermsScore {
		return Eof, InvalidWorkingSetID
	}

	snapshot := append([]*TextRecordData(nil), s.table.PredictView()...)
	for _, p := range snapshot {
		if p.predictSort() <= top.Score {
			break
		}
		gap := top.Score - p.Score
		maxFutureGain := 0.0
		for i, st := range p.ScoreTerms {
			if st == 0 {
				maxFutureGain += s.lastSeen[i]
			}
		}
		if gap < maxFutureGain {
			s.cachedRequiredDrop = maxFutureGain - gap
			s.cachedBaseline = s.currentAllTermsScore
			s.hasCache = true
			return Eof, InvalidWorkingSetID
		}
		p.PredictScore = recomputePredict(p, s.lastSeen)
		s.table.Resort(p)
	}

	top.Advanced = true
	s.table.Resort(top)
	s.stats.EarlyEmissions++
	if m := s.ws.Get(top.WSID); m != nil {
		m.Computed = top.Score
		m.HasScore = true
	}
	return Advanced, top.WSID
}

func (s *TextOr) advanceReturning() (Outcome, WorkingSetID) {
	view := s.table.ScoreView()
	if s.returningIdx >= len(view) {
		s.state = orDone
		return Eof, InvalidWorkingSetID
	}
	d := view[s.returningIdx]
	if d.Advanced {
		s.state = orDone
		return Eof, InvalidWorkingSetID
	}
	s.returningIdx++
	if m := s.ws.Get(d.WSID); m != nil {
		m.Computed = d.Score
		m.HasScore = true
	}
	return Advanced, d.WSID
}

func (s *TextOr) IsEOF() bool { return s.state == orDone }

func (s *TextOr) Invalidate(recordID string) {
	if d := s.table.Get(recordID); d != nil {
		s.ws.FlagForReview(d.WSID)
		s.stats.RecordIdsForgotten++
		s.table.Delete(recordID)
	}
	for _, c := range s.children {
		c.Invalidate(recordID)
	}
}

func (s *TextOr) Stats() Stats { return s.stats }

// recomputePredict computes predict_score = Σ_i (score_terms[i] if non-zero
// else lastSeen[i]) (spec.md §3's invariant).
func recomputePredict(d *TextRecordData, lastSeen []float64) float64 {
	total := 0.0
	for i, st := range d.ScoreTerms {
		if st != 0 {
			total += st
		} else if i < len(lastSeen) {
			total += lastSeen[i]
		}
	}
	return total
}
