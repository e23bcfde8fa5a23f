package executor

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/textexec"
)

// EngineCursorOpener adapts indexer.Engine into a textexec.CursorOpener: it
// turns a term's raw postings into a score-ordered textexec.TermCursor using
// the same BM25 components internal/searcher/ranker.Rank uses, so scoring is
// identical whether a query goes through the legacy executor path or the
// textexec core.
type EngineCursorOpener struct {
	engine *indexer.Engine
}

// NewEngineCursorOpener wraps engine for use by a textexec.TreeBuilder.
func NewEngineCursorOpener(engine *indexer.Engine) *EngineCursorOpener {
	return &EngineCursorOpener{engine: engine}
}

// Open implements textexec.CursorOpener. indexFormatVersion is accepted to
// satisfy the interface but unused: this engine has no on-disk format
// versioning to check.
func (o *EngineCursorOpener) Open(term string, indexFormatVersion int) (textexec.TermCursor, error) {
	postings, err := o.engine.Search(term)
	if err != nil {
		return nil, fmt.Errorf("searching term %q: %w", term, err)
	}
	if len(postings) == 0 {
		return nil, textexec.ErrTermNotFound
	}

	totalDocs := o.engine.GetTotalDocs()
	avgDocLength := o.engine.GetAvgDocLength()
	docFreq := int64(len(postings))
	idf := ranker.IDF(totalDocs, docFreq)

	scored := make([]textexec.Posting, 0, len(postings))
	for _, p := range postings {
		docLength := o.engine.GetDocLength(p.DocID)
		tfNorm := ranker.TFNorm(float64(p.Frequency), float64(docLength), avgDocLength)
		scored = append(scored, textexec.Posting{
			RecordID: p.DocID,
			Score:    idf * tfNorm,
		})
	}
	return textexec.NewSliceCursor(scored), nil
}
