package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"motifapi/internal/model"
	"motifapi/internal/repository"
)

// DiscoveryPostgres is a PostgreSQL implementation of repository.DiscoveryRepository.
type DiscoveryPostgres struct {
	db *sql.DB
}

// NewDiscoveryPostgres creates a new DiscoveryPostgres repository.
func NewDiscoveryPostgres(db *sql.DB) *DiscoveryPostgres {
	return &DiscoveryPostgres{db: db}
}

var _ repository.DiscoveryRepository = (*DiscoveryPostgres)(nil)

const discoveryColumns = `id, dataset_id, mode, status, params, best_length, elbows, result_path, error, created_at, started_at, finished_at`

func scanDiscovery(row rowScanner) (*model.Discovery, error) {
	var (
		d          model.Discovery
		params     []byte
		elbows     []byte
		bestLength sql.NullInt64
		resultPath sql.NullString
		errMsg     sql.NullString
		startedAt  sql.NullTime
		finishedAt sql.NullTime
	)
	if err := row.Scan(
		&d.ID,
		&d.DatasetID,
		&d.Mode,
		&d.Status,
		&params,
		&bestLength,
		&elbows,
		&resultPath,
		&errMsg,
		&d.CreatedAt,
		&startedAt,
		&finishedAt,
	); err != nil {
		return nil, err
	}
	if err := decodeJSON(params, &d.Params); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	if err := decodeJSON(elbows, &d.Elbows); err != nil {
		return nil, fmt.Errorf("decode elbows: %w", err)
	}
	if bestLength.Valid {
		v := int(bestLength.Int64)
		d.BestLength = &v
	}
	d.ResultPath = resultPath.String
	d.Error = errMsg.String
	if startedAt.Valid {
		d.StartedAt = &startedAt.Time
	}
	if finishedAt.Valid {
		d.FinishedAt = &finishedAt.Time
	}
	return &d, nil
}

// Create inserts a new discovery row and returns the stored record.
func (r *DiscoveryPostgres) Create(ctx context.Context, d *model.Discovery) (*model.Discovery, error) {
	params, err := json.Marshal(d.Params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}

	const q = `
		INSERT INTO discoveries (id, dataset_id, mode, status, params, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + discoveryColumns
	row := r.db.QueryRowContext(ctx, q,
		d.ID,
		d.DatasetID,
		d.Mode,
		d.Status,
		string(params),
		d.CreatedAt,
	)
	return scanDiscovery(row)
}

// FindByID fetches a single discovery by its ID.
func (r *DiscoveryPostgres) FindByID(ctx context.Context, id string) (*model.Discovery, error) {
	const q = `SELECT ` + discoveryColumns + ` FROM discoveries WHERE id = $1`
	return scanDiscovery(r.db.QueryRowContext(ctx, q, id))
}

// ListByDataset returns the runs on a dataset, newest first.
func (r *DiscoveryPostgres) ListByDataset(ctx context.Context, datasetID string, pq repository.PageQuery) (*repository.PageResult[model.Discovery], error) {
	const qCount = `SELECT COUNT(*) FROM discoveries WHERE dataset_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, datasetID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `SELECT ` + discoveryColumns + ` FROM discoveries
		WHERE dataset_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, qList, datasetID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Discovery, 0)
	for rows.Next() {
		d, err := scanDiscovery(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Discovery]{
		Items: items,
		Total: total,
	}, nil
}

// MarkRunning moves a pending run to running.
func (r *DiscoveryPostgres) MarkRunning(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE discoveries SET status = $2, started_at = $3 WHERE id = $1 AND status = $4`
	return r.execOne(ctx, q, id, model.StatusRunning, at, model.StatusPending)
}

// MarkSucceeded records the outcome of a finished run.
func (r *DiscoveryPostgres) MarkSucceeded(ctx context.Context, id string, bestLength int, elbows []int, resultPath string, at time.Time) error {
	raw, err := json.Marshal(elbows)
	if err != nil {
		return fmt.Errorf("encode elbows: %w", err)
	}
	const q = `
		UPDATE discoveries
		SET status = $2, best_length = $3, elbows = $4, result_path = $5, finished_at = $6
		WHERE id = $1`
	return r.execOne(ctx, q, id, model.StatusSucceeded, bestLength, string(raw), resultPath, at)
}

// MarkFailed records why a run failed.
func (r *DiscoveryPostgres) MarkFailed(ctx context.Context, id string, reason string, at time.Time) error {
	const q = `UPDATE discoveries SET status = $2, error = $3, finished_at = $4 WHERE id = $1`
	return r.execOne(ctx, q, id, model.StatusFailed, reason, at)
}

// FailUnfinished marks every pending or running run as failed.
func (r *DiscoveryPostgres) FailUnfinished(ctx context.Context, reason string, at time.Time) (int64, error) {
	const q = `
		UPDATE discoveries
		SET status = $1, error = $2, finished_at = $3
		WHERE status IN ($4, $5)`
	res, err := r.db.ExecContext(ctx, q, model.StatusFailed, reason, at, model.StatusPending, model.StatusRunning)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ResultPaths lists the stored result objects of all runs on a dataset.
func (r *DiscoveryPostgres) ResultPaths(ctx context.Context, datasetID string) ([]string, error) {
	const q = `SELECT result_path FROM discoveries WHERE dataset_id = $1 AND result_path IS NOT NULL`
	rows, err := r.db.QueryContext(ctx, q, datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (r *DiscoveryPostgres) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
