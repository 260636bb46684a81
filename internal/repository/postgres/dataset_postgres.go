package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"motifapi/internal/model"
	"motifapi/internal/repository"
)

// DatasetPostgres is a PostgreSQL implementation of repository.DatasetRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DatasetPostgres struct {
	db *sql.DB
}

// NewDatasetPostgres creates a new DatasetPostgres repository.
func NewDatasetPostgres(db *sql.DB) *DatasetPostgres {
	return &DatasetPostgres{db: db}
}

var _ repository.DatasetRepository = (*DatasetPostgres)(nil)

const datasetColumns = `id, name, filename, storage_path, size, content_type, layout, dimensions, length, labels, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDataset(row rowScanner) (*model.Dataset, error) {
	var (
		d      model.Dataset
		labels []byte
	)
	if err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Filename,
		&d.StoragePath,
		&d.Size,
		&d.ContentType,
		&d.Layout,
		&d.Dimensions,
		&d.Length,
		&labels,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := decodeJSON(labels, &d.Labels); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	return &d, nil
}

// Create inserts a new dataset row and returns the stored record.
func (r *DatasetPostgres) Create(ctx context.Context, ds *model.Dataset) (*model.Dataset, error) {
	labels, err := json.Marshal(ds.Labels)
	if err != nil {
		return nil, fmt.Errorf("encode labels: %w", err)
	}

	const q = `
		INSERT INTO datasets (id, name, filename, storage_path, size, content_type, layout, dimensions, length, labels, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + datasetColumns
	row := r.db.QueryRowContext(ctx, q,
		ds.ID,
		ds.Name,
		ds.Filename,
		ds.StoragePath,
		ds.Size,
		ds.ContentType,
		ds.Layout,
		ds.Dimensions,
		ds.Length,
		string(labels),
		ds.CreatedAt,
	)
	return scanDataset(row)
}

// FindByID fetches a single dataset by its ID.
func (r *DatasetPostgres) FindByID(ctx context.Context, id string) (*model.Dataset, error) {
	const q = `SELECT ` + datasetColumns + ` FROM datasets WHERE id = $1`
	return scanDataset(r.db.QueryRowContext(ctx, q, id))
}

// List returns datasets using LIMIT/OFFSET pagination and a total count.
func (r *DatasetPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Dataset], error) {
	const qCount = `SELECT COUNT(*) FROM datasets`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `SELECT ` + datasetColumns + ` FROM datasets
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Dataset, 0)
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Dataset]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a dataset by ID. Discoveries go with it through ON DELETE CASCADE.
// It does not return an error if the row does not exist.
func (r *DatasetPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM datasets WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func decodeJSON(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
