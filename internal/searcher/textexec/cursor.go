package textexec

import "sort"

// Posting is one (record_id, per_term_score, key_blob) triple, as produced
// by a TermCursor (spec.md §3, §6).
type Posting struct {
	RecordID string
	Score    float64
	KeyBlob  []byte
}

// TermCursor is the external index-storage collaborator (spec.md §1, §6):
// given a term it yields postings in strictly descending per_term_score
// order. It is restartable from the start but not rewindable mid-stream,
// and finite.
type TermCursor interface {
	// Next returns the next posting. ok is false on exhaustion (Eof); err
	// is non-nil on a storage failure, which the caller must propagate as
	// Failure without retrying (spec.md §7.1).
	Next() (posting Posting, ok bool, err error)

	// Close is idempotent.
	Close() error
}

// SliceCursor is a TermCursor over a fixed, in-memory slice of postings. It
// sorts its input into strictly descending score order on construction,
// standing in for the opaque index-storage collaborator spec.md treats as
// external; internal/searcher/executor's cursor adapter builds one of these
// per term from internal/indexer's postings.
type SliceCursor struct {
	postings []Posting
	pos      int
	closed   bool
}

// NewSliceCursor builds a cursor over postings, sorted descending by Score.
// The input slice is copied; the caller's slice is left untouched.
func NewSliceCursor(postings []Posting) *SliceCursor {
	cp := make([]Posting, len(postings))
	copy(cp, postings)
	sort.SliceStable(cp, func(i, j int) bool {
		return cp[i].Score > cp[j].Score
	})
	return &SliceCursor{postings: cp}
}

func (c *SliceCursor) Next() (Posting, bool, error) {
	if c.closed {
		return Posting{}, false, ErrCursorClosed
	}
	if c.pos >= len(c.postings) {
		return Posting{}, false, nil
	}
	p := c.postings[c.pos]
	c.pos++
	return p, true, nil
}

func (c *SliceCursor) Close() error {
	c.closed = true
	return nil
}
