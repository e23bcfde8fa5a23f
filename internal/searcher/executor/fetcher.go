package executor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/textexec"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/pkg/postgres"
)

// PostgresFetcher implements textexec.Fetcher by re-reading a document's
// stored body from PostgreSQL and re-tokenizing it, so Fetch/TextMatch can
// re-validate phrase adjacency against the same token stream the indexer
// produced at ingest time.
type PostgresFetcher struct {
	db *postgres.Client
}

// NewPostgresFetcher wraps db for use by a textexec.Fetch stage.
func NewPostgresFetcher(db *postgres.Client) *PostgresFetcher {
	return &PostgresFetcher{db: db}
}

// Fetch implements textexec.Fetcher. keyBlob is unused: this fetcher looks a
// record up by its document id alone.
func (f *PostgresFetcher) Fetch(ctx context.Context, recordID string, keyBlob []byte) (textexec.FetchedDocument, error) {
	var body string
	err := f.db.DB.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE id=$1 AND status <> 'DELETED'`, recordID).Scan(&body)
	if err == sql.ErrNoRows {
		return textexec.FetchedDocument{}, textexec.ErrDocumentInvalidated
	}
	if err != nil {
		return textexec.FetchedDocument{}, fmt.Errorf("fetching body for document %s: %w", recordID, err)
	}

	tokens := tokenizer.Tokenize(body)
	terms := make([]string, len(tokens))
	for i, tok := range tokens {
		terms[i] = tok.Term
	}
	return textexec.FetchedDocument{RecordID: recordID, Tokens: terms}, nil
}
