package textexec

import "sort"

// TextRecordData is the unit stored in TEXT_OR/TEXT_AND's record table
// (spec.md §3). The table owns these entries; it holds only the opaque wsid
// for the working-set member that carries the record's fetched context.
type TextRecordData struct {
	RecordID      string
	WSID          WorkingSetID
	Score         float64
	PredictScore  float64
	Advanced      bool
	Collected     bool // TEXT_AND only: every positive term has contributed
	ScoreTerms    []float64
	PredictTerms  []float64
}

// scoreSort returns the key used by the score-ordered view: 0 once the
// record has been advanced, pinning it to the tail (spec.md §3).
func (d *TextRecordData) scoreSort() float64 {
	if d.Advanced {
		return 0
	}
	return d.Score
}

// predictSort returns the key used by the predict-ordered view, with the
// same advanced-to-tail rule.
func (d *TextRecordData) predictSort() float64 {
	if d.Advanced {
		return 0
	}
	return d.PredictScore
}

// RecordTable is the hash-by-id-plus-two-score-ordered-views structure
// spec.md §3 calls for. No ordered-tree/skiplist library appears anywhere
// in the reference corpus (see DESIGN.md); a sorted slice with binary-search
// insert is a reasonable stand-in at the table sizes a single query's
// working set reaches.
//
// numChildren is fixed at construction: every TextRecordData's ScoreTerms
// and PredictTerms are vectors of this length, one slot per input stream.
type RecordTable struct {
	numChildren int
	byID        map[string]*TextRecordData
	byScore     []*TextRecordData // descending scoreSort(); stable insertion order among ties
	byPredict   []*TextRecordData // descending predictSort()
}

// NewRecordTable builds an empty table sized for numChildren input streams.
func NewRecordTable(numChildren int) *RecordTable {
	return &RecordTable{
		numChildren: numChildren,
		byID:        make(map[string]*TextRecordData),
	}
}

func (t *RecordTable) Len() int { return len(t.byID) }

// Get returns the entry for id, or nil.
func (t *RecordTable) Get(id string) *TextRecordData {
	return t.byID[id]
}

// Insert adds a brand-new entry. It must not already exist.
func (t *RecordTable) Insert(d *TextRecordData) {
	t.byID[d.RecordID] = d
	t.byScore = insertSorted(t.byScore, d, (*TextRecordData).scoreSort)
	t.byPredict = insertSorted(t.byPredict, d, (*TextRecordData).predictSort)
}

// Resort re-fixes both ordered views after d's sort keys changed. All three
// views are fixed atomically from the caller's perspective: no lookup
// happens between the key mutation and this call (spec.md §3).
func (t *RecordTable) Resort(d *TextRecordData) {
	t.byScore = resort(t.byScore, d, (*TextRecordData).scoreSort)
	t.byPredict = resort(t.byPredict, d, (*TextRecordData).predictSort)
}

// Delete removes id from every view, e.g. on invalidation (spec.md §4.8) or
// TEXT_AND's intersection-filter purge (spec.md §4.4).
func (t *RecordTable) Delete(id string) {
	d, ok := t.byID[id]
	if !ok {
		return
	}
	delete(t.byID, id)
	t.byScore = removeFrom(t.byScore, d)
	t.byPredict = removeFrom(t.byPredict, d)
}

// FirstByScore returns the head of the score-ordered view, or nil if empty.
func (t *RecordTable) FirstByScore() *TextRecordData {
	if len(t.byScore) == 0 {
		return nil
	}
	return t.byScore[0]
}

// ScoreView returns the live score-ordered slice; callers must not mutate it.
func (t *RecordTable) ScoreView() []*TextRecordData { return t.byScore }

// PredictView returns the live predict-ordered slice; callers must not mutate it.
func (t *RecordTable) PredictView() []*TextRecordData { return t.byPredict }

func insertSorted(view []*TextRecordData, d *TextRecordData, key func(*TextRecordData) float64) []*TextRecordData {
	k := key(d)
	i := sort.Search(len(view), func(i int) bool { return key(view[i]) < k })
	view = append(view, nil)
	copy(view[i+1:], view[i:])
	view[i] = d
	return view
}

func removeFrom(view []*TextRecordData, d *TextRecordData) []*TextRecordData {
	for i, e := range view {
		if e == d {
			return append(view[:i], view[i+1:]...)
		}
	}
	return view
}

// resort removes and reinserts d, matching spec.md §9's note that
// "modify-in-place" is purely an API convenience, not a requirement: every
// update removes from the relevant view before mutating the key and
// reinserts.
func resort(view []*TextRecordData, d *TextRecordData, key func(*TextRecordData) float64) []*TextRecordData {
	return insertSorted(removeFrom(view, d), d, key)
}
