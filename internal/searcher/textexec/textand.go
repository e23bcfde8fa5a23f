package textexec

type textAndState int

const (
	andReadingTerms textAndState = iota
	andReturningResults
	andDone
)

// TextAnd is the scoring intersection stage (spec.md §4.4). It drives its
// children in round-robin, building the same kind of record table as
// TEXT_OR but masking a record's score to 0 until every child has
// contributed ("collected"). A per-child seen-on-this-pass set enforces the
// intersection filter: when a child reaches EOF, any table entry it never
// reported is purged, since it can no longer ever become collected.
type TextAnd struct {
	children  []Stage
	ws        *WorkingSet
	wantScore bool
	table     *RecordTable

	seenOnChild          []map[string]struct{}
	childEOF             []bool
	lastSeen             []float64
	currentAllTermsScore float64
	next                 int

	state        textAndState
	returningIdx int

	hasCache           bool
	cachedRequiredDrop float64
	cachedBaseline     float64

	singleChild bool
	stats       Stats
}

// NewTextAnd builds a TEXT_AND over children.
func NewTextAnd(children []Stage, ws *WorkingSet, wantScore bool) *TextAnd {
	seen := make([]map[string]struct{}, len(children))
	for i := range seen {
		seen[i] = make(map[string]struct{})
	}
	return &TextAnd{
		children:    children,
		ws:          ws,
		wantScore:   wantScore,
		table:       NewRecordTable(len(children)),
		seenOnChild: seen,
		childEOF:    make([]bool, len(children)),
		lastSeen:    make([]float64, len(children)),
		singleChild: len(children) == 1,
		stats: Stats{
			StageType:     "TEXT_AND",
			ChildAdvances: make([]int64, len(children)),
			WantTextScore: wantScore,
			SingleChild:   len(children) == 1,
		},
	}
}

func (s *TextAnd) Advance() (Outcome, WorkingSetID) {
	if s.state == andDone {
		return Eof, InvalidWorkingSetID
	}
	if s.singleChild {
		return s.advanceSingleChild()
	}

	switch s.state {
	case andReadingTerms:
		if s.wantScore {
			if outcome, id := s.tryEarlyEmit(); outcome != Eof {
				return outcome, id
			}
		}
		return s.driveChild()
	case andReturningResults:
		return s.advanceReturning()
	default:
		s.state = andDone
		return Eof, InvalidWorkingSetID
	}
}

func (s *TextAnd) advanceSingleChild() (Outcome, WorkingSetID) {
	outcome, id := s.children[0].Advance()
	switch outcome {
	case Advanced:
		s.stats.ChildAdvances[0]++
		return Advanced, id
	case Eof:
		s.state = andDone
		return Eof, InvalidWorkingSetID
	case Failure:
		s.state = andDone
		return Failure, id
	default:
		return outcome, id
	}
}

func (s *TextAnd) driveChild() (Outcome, WorkingSetID) {
	if len(s.children) == 0 {
		s.state = andDone
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
		s.state = andDone
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
		s.seenOnChild[idx][m.RecordID] = struct{}{}

		if d := s.table.Get(m.RecordID); d == nil {
			scoreTerms := make([]float64, len(s.children))
			scoreTerms[idx] = score
			d = &TextRecordData{RecordID: m.RecordID, WSID: id, ScoreTerms: scoreTerms}
			s.updateMasked(d)
			d.PredictScore = recomputePredict(d, s.lastSeen)
			s.table.Insert(d)
		} else {
			s.stats.DupsDropped++
			d.ScoreTerms[idx] = score
			s.updateMasked(d)
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
		s.purgeUnseenBy(idx)

		if s.table.Len() == 0 {
			s.state = andDone
			return Eof, InvalidWorkingSetID
		}

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
		s.state = andReturningResults
		s.returningIdx = 0
		return NeedTime, InvalidWorkingSetID

	case Failure:
		s.state = andDone
		return Failure, id

	default:
		return NeedTime, InvalidWorkingSetID
	}
}

// purgeUnseenBy implements the intersection filter (spec.md §4.4): any
// record this child never reported during its pass can never become
// collected, so it is dropped and its working-set member freed.
func (s *TextAnd) purgeUnseenBy(childIdx int) {
	seen := s.seenOnChild[childIdx]
	victims := make([]string, 0)
	for _, d := range s.table.ScoreView() {
		if _, ok := seen[d.RecordID]; !ok {
			victims = append(victims, d.RecordID)
		}
	}
	for _, id := range victims {
		if d := s.table.Get(id); d != nil {
			s.ws.Free(d.WSID)
			s.table.Delete(id)
		}
	}
}

// updateMasked recomputes Collected and the masked Score (spec.md §4.4:
// score is 0 until every child has contributed, then the sum).
func (s *TextAnd) updateMasked(d *TextRecordData) {
	collected := true
	sum := 0.0
	for _, st := range d.ScoreTerms {
		if st == 0 {
			collected = false
		}
		sum += st
	}
	d.Collected = collected
	if collected {
		d.Score = sum
	} else {
		d.Score = 0
	}
}

func (s *TextAnd) tryEarlyEmit() (Outcome, WorkingSetID) {
	if s.hasCache {
		if s.cachedBaseline-s.currentAllTermsScore < s.cachedRequiredDrop {
			return Eof, InvalidWorkingSetID
		}
		s.hasCache = false
	}

	top := s.table.FirstByScore()
	if s.table.Len() < 2 || top == nil || top.Advanced || top.Score == 0 || !top.Collected ||
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

func (s *TextAnd) advanceReturning() (Outcome, WorkingSetID) {
	view := s.table.ScoreView()
	if s.returningIdx >= len(view) {
		s.state = andDone
		return Eof, InvalidWorkingSetID
	}
	d := view[s.returningIdx]
	if d.Advanced || !d.Collected {
		s.state = andDone
		return Eof, InvalidWorkingSetID
	}
	s.returningIdx++
	if m := s.ws.Get(d.WSID); m != nil {
		m.Computed = d.Score
		m.HasScore = true
	}
	return Advanced, d.WSID
}

func (s *TextAnd) IsEOF() bool { return s.state == andDone }

func (s *TextAnd) Invalidate(recordID string) {
	if d := s.table.Get(recordID); d != nil {
		s.ws.FlagForReview(d.WSID)
		s.stats.RecordIdsForgotten++
		s.table.Delete(recordID)
	}
	for _, c := range s.children {
		c.Invalidate(recordID)
	}
}

func (s *TextAnd) Stats() Stats { return s.stats }
