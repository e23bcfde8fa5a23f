package textexec

import "errors"

// Sentinel errors for tree construction and runtime failures (spec.md §7).
var (
	// ErrInvalidQuery covers type/bounds violations at tree construction:
	// empty children, malformed phrase sets, conflicting term sets.
	ErrInvalidQuery = errors.New("invalid parsed query")

	// ErrInvalidIndexVersion is returned (wrapped) by the TreeBuilder when a
	// CursorOpener fails to open a term's cursor with any error other than
	// ErrTermNotFound.
	ErrInvalidIndexVersion = errors.New("invalid index format version")

	// ErrCursorClosed is returned by a TermCursor when Next is called
	// after Close.
	ErrCursorClosed = errors.New("term cursor closed")

	// ErrDocumentInvalidated is returned by a Fetcher when the requested
	// record has been deleted or superseded since it was observed by a
	// TermCursor.
	ErrDocumentInvalidated = errors.New("document invalidated")

	// ErrTermNotFound is returned by a CursorOpener when a term has no
	// postings at all. The TreeBuilder treats this as an empty cursor, not
	// a construction failure (spec.md §6: `open(...) → TermCursor | NotFound`).
	ErrTermNotFound = errors.New("term not found")
)
