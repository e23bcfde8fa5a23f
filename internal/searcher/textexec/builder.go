package textexec

import (
	"context"
	"errors"
	"fmt"
)

// CursorOpener is the external collaborator that materializes a TermCursor
// for one term (spec.md §6's `open(term, index_format_version)` contract).
type CursorOpener interface {
	Open(term string, indexFormatVersion int) (TermCursor, error)
}

// TreeBuilder compiles a ParsedQuery into a root Stage (spec.md §4.7).
type TreeBuilder struct {
	ctx     context.Context
	opener  CursorOpener
	fetcher Fetcher
	ws      *WorkingSet
}

// NewTreeBuilder builds a TreeBuilder scoped to ctx, reading postings
// through opener and resolving full documents through fetcher.
func NewTreeBuilder(ctx context.Context, opener CursorOpener, fetcher Fetcher, ws *WorkingSet) *TreeBuilder {
	return &TreeBuilder{ctx: ctx, opener: opener, fetcher: fetcher, ws: ws}
}

// Build compiles query into a root stage. wantScore selects the scoring
// TEXT_OR path over the non-scoring OR/TEXT_AND/TEXT_NIN path (spec.md
// §4.7's pseudocode).
func (b *TreeBuilder) Build(query *ParsedQuery, wantScore bool) (Stage, error) {
	if len(query.PositiveTerms) == 0 {
		return EofStage{}, nil
	}

	if !wantScore {
		return b.buildUnscored(query)
	}
	return b.buildScored(query)
}

func (b *TreeBuilder) buildUnscored(query *ParsedQuery) (Stage, error) {
	var branches []Stage

	for _, ph := range query.PositivePhrases {
		if len(ph.Terms) == 1 {
			scan, err := b.scan(ph.Terms[0], query.IndexFormatVersion)
			if err != nil {
				return nil, err
			}
			branches = append(branches, scan)
			continue
		}
		children, err := b.scanAll(ph.Terms, query.IndexFormatVersion)
		if err != nil {
			return nil, err
		}
		branches = append(branches, NewTextAnd(children, b.ws, false))
	}
	for t := range query.SoloTerms {
		scan, err := b.scan(t, query.IndexFormatVersion)
		if err != nil {
			return nil, err
		}
		branches = append(branches, scan)
	}
	if len(branches) == 0 {
		return EofStage{}, nil
	}

	var inner Stage = NewOr(branches, b.ws)
	if len(query.NegatedTerms) > 0 {
		negatedList := make([]string, 0, len(query.NegatedTerms))
		for t := range query.NegatedTerms {
			negatedList = append(negatedList, t)
		}
		feeders, err := b.scanAll(negatedList, query.IndexFormatVersion)
		if err != nil {
			return nil, err
		}
		inner = NewTextNin(feeders, inner, b.ws)
	}

	fetched := NewFetch(b.ctx, inner, b.fetcher, b.ws)
	return NewTextMatch(fetched, query, b.ws), nil
}

func (b *TreeBuilder) buildScored(query *ParsedQuery) (Stage, error) {
	positiveList := make([]string, 0, len(query.PositiveTerms))
	for t := range query.PositiveTerms {
		positiveList = append(positiveList, t)
	}
	branches, err := b.scanAll(positiveList, query.IndexFormatVersion)
	if err != nil {
		return nil, err
	}
	if len(branches) == 0 {
		return EofStage{}, nil
	}

	textOr := NewTextOr(branches, b.ws, true)
	fetched := NewFetch(b.ctx, textOr, b.fetcher, b.ws)
	return NewTextMatch(fetched, query, b.ws), nil
}

func (b *TreeBuilder) scan(term string, indexFormatVersion int) (Stage, error) {
	cursor, err := b.opener.Open(term, indexFormatVersion)
	if errors.Is(err, ErrTermNotFound) {
		return NewIndexScan(term, NewSliceCursor(nil), b.ws), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: term %q: %v", ErrInvalidIndexVersion, term, err)
	}
	return NewIndexScan(term, cursor, b.ws), nil
}

func (b *TreeBuilder) scanAll(terms []string, indexFormatVersion int) ([]Stage, error) {
	stages := make([]Stage, 0, len(terms))
	for _, t := range terms {
		s, err := b.scan(t, indexFormatVersion)
		if err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	return stages, nil
}
