package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/dippreneurlab/new-salt/internal/domain"
	"github.com/dippreneurlab/new-salt/internal/repository"
)

// QuoteService reconciles caller-supplied quote documents against the store.
type QuoteService struct {
	repo   repository.QuoteRepository
	logger *zap.Logger
}

func NewQuoteService(repo repository.QuoteRepository, logger *zap.Logger) *QuoteService {
	return &QuoteService{repo: repo, logger: logger}
}

// ReplaceQuotes makes the persisted set owned by ownerID exactly the set
// implied by docs. An empty input clears the owner's quotes entirely.
func (s *QuoteService) ReplaceQuotes(ctx context.Context, ownerID string, docs []domain.QuoteDocument, ownerEmail string) error {
	rows := make([]domain.QuoteRow, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, domain.FlattenQuote(ownerID, doc))
	}
	if err := s.repo.ReplaceQuotes(ctx, ownerID, ownerEmail, rows); err != nil {
		return err
	}
	s.logger.Info("quotes reconciled",
		zap.String("owner_id", ownerID),
		zap.Int("count", len(rows)),
	)
	return nil
}

// GetQuotesForUser returns the verbatim documents visible to ownerID,
// newest first. Flattened columns are never consulted for the round trip.
func (s *QuoteService) GetQuotesForUser(ctx context.Context, ownerID string) ([]domain.QuoteDocument, error) {
	return s.repo.ListQuotes(ctx, ownerID)
}

func (s *QuoteService) GetQuote(ctx context.Context, ownerID, quoteID string) (domain.QuoteDocument, error) {
	return s.repo.GetQuote(ctx, ownerID, quoteID)
}

// UpsertQuote writes a single document under an explicit id, leaving the
// owner's other quotes untouched.
func (s *QuoteService) UpsertQuote(ctx context.Context, ownerID, quoteID string, doc domain.QuoteDocument, ownerEmail string) error {
	row := domain.FlattenQuote(ownerID, doc)
	row.QuoteUID = quoteID
	return s.repo.UpsertQuote(ctx, ownerID, ownerEmail, row)
}

func (s *QuoteService) DeleteQuote(ctx context.Context, ownerID, quoteID string) error {
	return s.repo.DeleteQuote(ctx, ownerID, quoteID)
}
