package textexec

import (
	"context"
	"errors"
)

// FetchedDocument is the full, tokenized form of a record, resolved by a
// Fetcher for re-validation in TextMatch.
type FetchedDocument struct {
	RecordID string
	Tokens   []string
}

// Fetcher is the external collaborator that resolves a record_id to its
// full tokenized body. internal/searcher/executor supplies a Postgres-backed
// implementation (spec.md §6 treats the key-blob layout and the storage
// snapshot as input contracts, not re-specified here).
type Fetcher interface {
	Fetch(ctx context.Context, recordID string, keyBlob []byte) (FetchedDocument, error)
}

// Fetch is the stage the TreeBuilder wraps around a composed subtree right
// before TextMatch (spec.md §4.7's pseudocode): it resolves each forwarded
// member's full body once, attaching it to the working-set member so
// TextMatch can re-check phrase adjacency and stop-word rules.
type Fetch struct {
	ctx     context.Context
	inner   Stage
	fetcher Fetcher
	ws      *WorkingSet
	eof     bool
	stats   Stats
}

// NewFetch wraps inner with fetcher, scoped to ctx for the query's duration.
func NewFetch(ctx context.Context, inner Stage, fetcher Fetcher, ws *WorkingSet) *Fetch {
	return &Fetch{
		ctx:     ctx,
		inner:   inner,
		fetcher: fetcher,
		ws:      ws,
		stats:   Stats{StageType: "FETCH", ChildAdvances: make([]int64, 1), SingleChild: true},
	}
}

func (s *Fetch) Advance() (Outcome, WorkingSetID) {
	if s.eof {
		return Eof, InvalidWorkingSetID
	}
	outcome, id := s.inner.Advance()
	switch outcome {
	case Advanced:
		s.stats.ChildAdvances[0]++
		m := s.ws.Get(id)
		if m == nil || !m.HasRecordID {
			return NeedTime, InvalidWorkingSetID
		}
		if m.HasFetchedTokens || s.fetcher == nil {
			return Advanced, id
		}
		doc, err := s.fetcher.Fetch(s.ctx, m.RecordID, m.KeyBlob)
		if err != nil {
			if errors.Is(err, ErrDocumentInvalidated) {
				s.ws.FlagForReview(id)
				return NeedTime, InvalidWorkingSetID
			}
			m.Diagnostic = err
			s.eof = true
			return Failure, id
		}
		m.FetchedTokens = doc.Tokens
		m.HasFetchedTokens = true
		return Advanced, id
	case Failure:
		s.eof = true
		return Failure, id
	case Eof:
		s.eof = true
		return Eof, InvalidWorkingSetID
	default:
		return outcome, id
	}
}

func (s *Fetch) IsEOF() bool { return s.eof }

func (s *Fetch) Invalidate(recordID string) { s.inner.Invalidate(recordID) }

func (s *Fetch) Stats() Stats { return s.stats }
