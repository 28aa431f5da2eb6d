//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dippreneurlab/new-salt/internal/domain"
	"github.com/dippreneurlab/new-salt/internal/repository"
	"github.com/dippreneurlab/new-salt/internal/schema"
)

func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL must be set for integration tests")
	}

	require.NoError(t, schema.Up(dbURL, zap.NewNop()))

	pool, err := pgxpool.New(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func cleanOwner(t *testing.T, pool *pgxpool.Pool, ownerID string) {
	t.Helper()
	ctx := context.Background()
	_, err := pool.Exec(ctx, `DELETE FROM quotes WHERE created_by = $1 OR updated_by = $1`, ownerID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, ownerID)
	require.NoError(t, err)
}

func replaceDocs(t *testing.T, repo *repository.PostgresQuoteRepo, ownerID string, docs []domain.QuoteDocument) {
	t.Helper()
	rows := make([]domain.QuoteRow, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, domain.FlattenQuote(ownerID, doc))
	}
	require.NoError(t, repo.ReplaceQuotes(context.Background(), ownerID, "", rows))
}

func storedUIDs(t *testing.T, pool *pgxpool.Pool, ownerID string) []string {
	t.Helper()
	rows, err := pool.Query(context.Background(),
		`SELECT quote_uid FROM quotes WHERE created_by = $1 ORDER BY quote_uid`, ownerID)
	require.NoError(t, err)
	defer rows.Close()

	var uids []string
	for rows.Next() {
		var uid string
		require.NoError(t, rows.Scan(&uid))
		uids = append(uids, uid)
	}
	require.NoError(t, rows.Err())
	return uids
}

func TestReplaceQuotesFirstWrite(t *testing.T) {
	pool := setupDB(t)
	repo := repository.NewPostgresQuoteRepo(pool)
	owner := fmt.Sprintf("it-first-%d", time.Now().UnixNano())
	t.Cleanup(func() { cleanOwner(t, pool, owner) })

	replaceDocs(t, repo, owner, []domain.QuoteDocument{
		{"id": "q1", "projectNumber": "PN-100", "clientName": "Acme"},
	})

	var (
		projectNumber, currency, status, email string
	)
	ctx := context.Background()
	err := pool.QueryRow(ctx,
		`SELECT project_number, currency, status FROM quotes WHERE quote_uid = 'q1' AND created_by = $1`,
		owner).Scan(&projectNumber, &currency, &status)
	require.NoError(t, err)
	require.Equal(t, "PN-100", projectNumber)
	require.Equal(t, "CAD", currency)
	require.Equal(t, "draft", status)

	// The owner row was auto-created with a placeholder email.
	err = pool.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, owner).Scan(&email)
	require.NoError(t, err)
	require.Equal(t, owner+"@placeholder.local", email)
}

func TestReplaceQuotesReconcilesFully(t *testing.T) {
	pool := setupDB(t)
	repo := repository.NewPostgresQuoteRepo(pool)
	owner := fmt.Sprintf("it-recon-%d", time.Now().UnixNano())
	t.Cleanup(func() { cleanOwner(t, pool, owner) })

	replaceDocs(t, repo, owner, []domain.QuoteDocument{
		{"id": "q1", "projectNumber": "PN-100", "clientName": "Acme"},
	})
	require.Equal(t, []string{"q1"}, storedUIDs(t, pool, owner))

	// Re-keying: the id-less document replaces q1 with a synthesized uid.
	replaceDocs(t, repo, owner, []domain.QuoteDocument{
		{"projectNumber": "PN-200"},
	})
	require.Equal(t, []string{"PN-200-" + owner}, storedUIDs(t, pool, owner))
}

func TestReplaceQuotesIsIdempotent(t *testing.T) {
	pool := setupDB(t)
	repo := repository.NewPostgresQuoteRepo(pool)
	owner := fmt.Sprintf("it-idem-%d", time.Now().UnixNano())
	t.Cleanup(func() { cleanOwner(t, pool, owner) })

	docs := []domain.QuoteDocument{
		{"id": "q1", "clientName": "Acme"},
		{"id": "q2", "clientName": "Globex"},
	}
	replaceDocs(t, repo, owner, docs)
	first := storedUIDs(t, pool, owner)
	replaceDocs(t, repo, owner, docs)
	second := storedUIDs(t, pool, owner)

	require.Equal(t, []string{"q1", "q2"}, first)
	require.Equal(t, first, second)
}

func TestReplaceQuotesEmptyListClears(t *testing.T) {
	pool := setupDB(t)
	repo := repository.NewPostgresQuoteRepo(pool)
	owner := fmt.Sprintf("it-clear-%d", time.Now().UnixNano())
	t.Cleanup(func() { cleanOwner(t, pool, owner) })

	replaceDocs(t, repo, owner, []domain.QuoteDocument{
		{"id": "q1"}, {"id": "q2"},
	})
	replaceDocs(t, repo, owner, nil)

	require.Empty(t, storedUIDs(t, pool, owner))
}

func TestListQuotesRoundTripsDocuments(t *testing.T) {
	pool := setupDB(t)
	repo := repository.NewPostgresQuoteRepo(pool)
	owner := fmt.Sprintf("it-round-%d", time.Now().UnixNano())
	t.Cleanup(func() { cleanOwner(t, pool, owner) })

	docs := []domain.QuoteDocument{
		{"id": "q1", "clientName": "Acme", "custom": map[string]any{"n": float64(1)}},
		{"id": "q2", "project": map[string]any{"phases": []any{"a", "b"}}},
	}
	replaceDocs(t, repo, owner, docs)

	got, err := repo.ListQuotes(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.ElementsMatch(t, docs, got)
}

func TestGetQuoteScopedToOwner(t *testing.T) {
	pool := setupDB(t)
	repo := repository.NewPostgresQuoteRepo(pool)
	owner := fmt.Sprintf("it-scope-%d", time.Now().UnixNano())
	other := owner + "-other"
	t.Cleanup(func() {
		cleanOwner(t, pool, owner)
		cleanOwner(t, pool, other)
	})

	replaceDocs(t, repo, owner, []domain.QuoteDocument{{"id": "q1", "clientName": "Acme"}})

	doc, err := repo.GetQuote(context.Background(), owner, "q1")
	require.NoError(t, err)
	require.Equal(t, "Acme", doc["clientName"])

	_, err = repo.GetQuote(context.Background(), other, "q1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
