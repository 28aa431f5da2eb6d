package repository

import (
	"context"
	"encoding/json"

	"github.com/dippreneurlab/new-salt/internal/domain"
)

// QuoteRepository persists the flattened quote projections and the verbatim
// documents they were derived from.
type QuoteRepository interface {
	// ReplaceQuotes makes the stored set for ownerID exactly match rows,
	// inserting, updating and deleting as needed in one transaction.
	ReplaceQuotes(ctx context.Context, ownerID, ownerEmail string, rows []domain.QuoteRow) error
	// ListQuotes returns the full documents visible to ownerID, most
	// recently updated first.
	ListQuotes(ctx context.Context, ownerID string) ([]domain.QuoteDocument, error)
	GetQuote(ctx context.Context, ownerID, quoteUID string) (domain.QuoteDocument, error)
	UpsertQuote(ctx context.Context, ownerID, ownerEmail string, row domain.QuoteRow) error
	DeleteQuote(ctx context.Context, ownerID, quoteUID string) error
}

// StorageRepository is the per-user key-value store backing the storage
// resource. Absent keys read as a nil value rather than an error.
type StorageRepository interface {
	Get(ctx context.Context, userID, key string) (json.RawMessage, error)
	Set(ctx context.Context, id int64, userID, email, key string, value json.RawMessage) (json.RawMessage, error)
	Delete(ctx context.Context, userID, key string) error
}

// MetadataRepository serves the read-only pipeline lookup tables.
type MetadataRepository interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
}
