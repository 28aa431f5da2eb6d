package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dippreneurlab/new-salt/internal/domain"
)

// Compile-time interface assertions.
var (
	_ QuoteRepository    = (*PostgresQuoteRepo)(nil)
	_ StorageRepository  = (*PostgresStorageRepo)(nil)
	_ MetadataRepository = (*PostgresMetadataRepo)(nil)
)

const ensureOwnerSQL = `INSERT INTO users (id, email)
VALUES ($1, $2)
ON CONFLICT (id) DO NOTHING`

const upsertQuoteSQL = `INSERT INTO quotes (
	quote_uid,
	project_number,
	client_name,
	client_category,
	brand,
	project_name,
	brief_date,
	in_market_date,
	project_completion_date,
	total_program_budget,
	rate_card,
	currency,
	phases,
	phase_settings,
	status,
	created_by,
	updated_by,
	full_quote
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
ON CONFLICT (quote_uid) DO UPDATE SET
	project_number = EXCLUDED.project_number,
	client_name = EXCLUDED.client_name,
	client_category = EXCLUDED.client_category,
	brand = EXCLUDED.brand,
	project_name = EXCLUDED.project_name,
	brief_date = EXCLUDED.brief_date,
	in_market_date = EXCLUDED.in_market_date,
	project_completion_date = EXCLUDED.project_completion_date,
	total_program_budget = EXCLUDED.total_program_budget,
	rate_card = EXCLUDED.rate_card,
	currency = EXCLUDED.currency,
	phases = EXCLUDED.phases,
	phase_settings = EXCLUDED.phase_settings,
	status = EXCLUDED.status,
	updated_at = now(),
	updated_by = EXCLUDED.updated_by,
	full_quote = EXCLUDED.full_quote`

// PostgresQuoteRepo implements QuoteRepository on a pgx pool.
type PostgresQuoteRepo struct {
	db *pgxpool.Pool
}

func NewPostgresQuoteRepo(pool *pgxpool.Pool) *PostgresQuoteRepo {
	return &PostgresQuoteRepo{db: pool}
}

func (r *PostgresQuoteRepo) ReplaceQuotes(ctx context.Context, ownerID, ownerEmail string, rows []domain.QuoteRow) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace quotes: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize concurrent reconciliations for the same owner; the lock is
	// transaction-scoped and released at commit or rollback.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ownerLockKey(ownerID)); err != nil {
		return fmt.Errorf("acquire owner lock: %w", err)
	}

	if err := ensureOwner(ctx, tx, ownerID, ownerEmail); err != nil {
		return err
	}

	keep := make([]string, 0, len(rows))
	for _, row := range rows {
		if err := upsertQuote(ctx, tx, row); err != nil {
			return err
		}
		keep = append(keep, row.QuoteUID)
	}

	if len(keep) > 0 {
		_, err = tx.Exec(ctx,
			`DELETE FROM quotes WHERE created_by = $1 AND NOT (quote_uid = ANY($2))`,
			ownerID, keep)
	} else {
		_, err = tx.Exec(ctx, `DELETE FROM quotes WHERE created_by = $1`, ownerID)
	}
	if err != nil {
		return fmt.Errorf("prune quotes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace quotes: %w", err)
	}
	return nil
}

func (r *PostgresQuoteRepo) ListQuotes(ctx context.Context, ownerID string) ([]domain.QuoteDocument, error) {
	rows, err := r.db.Query(ctx,
		`SELECT full_quote FROM quotes
		WHERE created_by = $1 OR updated_by = $1
		ORDER BY updated_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.QuoteDocument, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		docs = append(docs, decodeDocument(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return docs, nil
}

func (r *PostgresQuoteRepo) GetQuote(ctx context.Context, ownerID, quoteUID string) (domain.QuoteDocument, error) {
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT full_quote FROM quotes
		WHERE quote_uid = $1 AND (created_by = $2 OR updated_by = $2)`,
		quoteUID, ownerID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get quote %s: %w", quoteUID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return decodeDocument(raw), nil
}

func (r *PostgresQuoteRepo) UpsertQuote(ctx context.Context, ownerID, ownerEmail string, row domain.QuoteRow) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert quote: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := ensureOwner(ctx, tx, ownerID, ownerEmail); err != nil {
		return err
	}
	if err := upsertQuote(ctx, tx, row); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert quote: %w", err)
	}
	return nil
}

func (r *PostgresQuoteRepo) DeleteQuote(ctx context.Context, ownerID, quoteUID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM quotes WHERE quote_uid = $1 AND (created_by = $2 OR updated_by = $2)`,
		quoteUID, ownerID)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	return nil
}

func ensureOwner(ctx context.Context, tx pgx.Tx, ownerID, ownerEmail string) error {
	email := ownerEmail
	if email == "" {
		email = ownerID + "@placeholder.local"
	}
	if _, err := tx.Exec(ctx, ensureOwnerSQL, ownerID, email); err != nil {
		return fmt.Errorf("ensure owner: %w", err)
	}
	return nil
}

func upsertQuote(ctx context.Context, tx pgx.Tx, row domain.QuoteRow) error {
	_, err := tx.Exec(ctx, upsertQuoteSQL,
		row.QuoteUID,
		row.ProjectNumber,
		row.ClientName,
		row.ClientCategory,
		row.Brand,
		row.ProjectName,
		row.BriefDate,
		row.InMarketDate,
		row.ProjectCompletionDate,
		row.TotalProgramBudget,
		row.RateCard,
		row.Currency,
		row.Phases,
		row.PhaseSettings,
		row.Status,
		row.CreatedBy,
		row.UpdatedBy,
		row.FullQuote,
	)
	if err != nil {
		return fmt.Errorf("upsert quote %s: %w", row.QuoteUID, err)
	}
	return nil
}

// ownerLockKey maps an owner id onto the 64-bit advisory lock space.
func ownerLockKey(ownerID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(ownerID))
	return int64(h.Sum64())
}

func decodeDocument(raw []byte) domain.QuoteDocument {
	doc := domain.QuoteDocument{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &doc)
	}
	return doc
}

// PostgresStorageRepo implements StorageRepository.
type PostgresStorageRepo struct {
	db *pgxpool.Pool
}

func NewPostgresStorageRepo(pool *pgxpool.Pool) *PostgresStorageRepo {
	return &PostgresStorageRepo{db: pool}
}

func (r *PostgresStorageRepo) Get(ctx context.Context, userID, key string) (json.RawMessage, error) {
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT value FROM storage_entries WHERE user_id = $1 AND key = $2`,
		userID, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get storage value: %w", err)
	}
	return raw, nil
}

func (r *PostgresStorageRepo) Set(ctx context.Context, id int64, userID, email, key string, value json.RawMessage) (json.RawMessage, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin set storage value: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := ensureOwner(ctx, tx, userID, email); err != nil {
		return nil, err
	}

	var saved []byte
	err = tx.QueryRow(ctx,
		`INSERT INTO storage_entries (id, user_id, key, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = now()
		RETURNING value`,
		id, userID, key, value).Scan(&saved)
	if err != nil {
		return nil, fmt.Errorf("set storage value: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit set storage value: %w", err)
	}
	return saved, nil
}

func (r *PostgresStorageRepo) Delete(ctx context.Context, userID, key string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM storage_entries WHERE user_id = $1 AND key = $2`,
		userID, key)
	if err != nil {
		return fmt.Errorf("delete storage value: %w", err)
	}
	return nil
}

// PostgresMetadataRepo implements MetadataRepository.
type PostgresMetadataRepo struct {
	db *pgxpool.Pool
}

func NewPostgresMetadataRepo(pool *pgxpool.Pool) *PostgresMetadataRepo {
	return &PostgresMetadataRepo{db: pool}
}

func (r *PostgresMetadataRepo) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT value FROM pipeline_metadata WHERE key = $1`,
		key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get metadata %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get metadata: %w", err)
	}
	return raw, nil
}
