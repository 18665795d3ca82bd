package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"sleepscore-bot/internal/domain"
)

// RecordsRepository provides persistence helpers for sleepiness records.
// Records are append-only: there is no update or delete path.
type RecordsRepository struct {
	pool *pgxpool.Pool
}

// RecordInsertParams bundles the fields required to append a record.
type RecordInsertParams struct {
	UserID    int64
	Timestamp time.Time
	Score     float64
}

// Insert appends one new record. Duplicate submissions create duplicate rows;
// there is no idempotency key.
func (r *RecordsRepository) Insert(ctx context.Context, params RecordInsertParams) (domain.Record, error) {
	const query = `
        INSERT INTO records (user_id, recorded_at, score)
        VALUES ($1, $2, $3)
        RETURNING id, user_id, recorded_at, score
    `

	var rec domain.Record
	err := r.pool.QueryRow(ctx, query, params.UserID, params.Timestamp, params.Score).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Timestamp,
		&rec.Score,
	)
	if err != nil {
		return domain.Record{}, fmt.Errorf("insert record: %w", err)
	}
	return rec, nil
}

// ListByUser returns all records for one user. Callers must not rely on any
// particular ordering; grouping and sorting happen in the domain layer.
func (r *RecordsRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Record, error) {
	const query = `
        SELECT id, user_id, recorded_at, score
        FROM records
        WHERE user_id = $1
    `

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.Record, 0)
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Timestamp, &rec.Score); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// DistinctUserIDs scans all records and returns the unique user identifiers.
// Cost grows with total record count; there is no secondary index for this.
func (r *RecordsRepository) DistinctUserIDs(ctx context.Context) ([]int64, error) {
	const query = `SELECT DISTINCT user_id FROM records`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list distinct users: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return ids, nil
}
