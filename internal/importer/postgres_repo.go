package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, b *Batch, raw RawData) error {
	payload, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const batchSQL = `
		INSERT INTO import_batches (id, user_id, filename, status)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at, updated_at`

	if err := tx.QueryRow(ctx, batchSQL, b.UserID, b.Filename, StatusPending).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	b.Status = StatusPending

	const payloadSQL = `INSERT INTO import_payloads (batch_id, payload) VALUES ($1, $2)`
	if _, err := tx.Exec(ctx, payloadSQL, b.ID, payload); err != nil {
		return fmt.Errorf("store payload: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepo) GetPending(ctx context.Context, id, userID string) (Batch, RawData, error) {
	// The single filter deliberately conflates missing, foreign-owned, and
	// already-committed batches.
	const query = `
		SELECT b.id, b.user_id, b.filename, b.status, b.created_at, b.updated_at, p.payload
		FROM import_batches b
		JOIN import_payloads p ON p.batch_id = b.id
		WHERE b.id = $1 AND b.user_id = $2 AND b.status = $3
		LIMIT 1`

	var (
		b       Batch
		payload []byte
	)
	err := r.db.QueryRow(ctx, query, id, userID, StatusPending).Scan(
		&b.ID, &b.UserID, &b.Filename, &b.Status, &b.CreatedAt, &b.UpdatedAt, &payload,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Batch{}, RawData{}, ErrNotFound
		}
		return Batch{}, RawData{}, err
	}

	var raw RawData
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Batch{}, RawData{}, fmt.Errorf("unmarshal payload: %w", err)
	}
	return b, raw, nil
}

func (r *PostgresRepo) Finalize(ctx context.Context, id, userID string, mapping ColumnMapping, stats Stats) error {
	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Compare-and-swap on the status: a concurrent commit that already won
	// leaves zero rows here and the loser surfaces ErrNotFound.
	const casSQL = `
		UPDATE import_batches
		SET status = $1, column_map = $2, stats = $3, updated_at = now()
		WHERE id = $4 AND user_id = $5 AND status = $6`

	tag, err := tx.Exec(ctx, casSQL, StatusCommitted, mappingJSON, statsJSON, id, userID, StatusPending)
	if err != nil {
		return fmt.Errorf("finalize batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM import_payloads WHERE batch_id = $1`, id); err != nil {
		return fmt.Errorf("discard payload: %w", err)
	}

	return tx.Commit(ctx)
}
