// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"
	"time"

	"motifapi/internal/model"
)

// DatasetRepository defines data access for datasets using SQL queries only.
// No business logic here, only persistence.
type DatasetRepository interface {
	// Create inserts a new dataset record and returns the stored row.
	Create(ctx context.Context, ds *model.Dataset) (*model.Dataset, error)

	// FindByID returns a dataset by its ID.
	FindByID(ctx context.Context, id string) (*model.Dataset, error)

	// List returns a paginated list of datasets and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Dataset], error)

	// Delete removes a dataset by ID together with its discoveries.
	// It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// DiscoveryRepository defines data access for discovery runs.
type DiscoveryRepository interface {
	Create(ctx context.Context, d *model.Discovery) (*model.Discovery, error)
	FindByID(ctx context.Context, id string) (*model.Discovery, error)
	ListByDataset(ctx context.Context, datasetID string, pq PageQuery) (*PageResult[model.Discovery], error)

	// MarkRunning moves a pending run to running. It returns sql.ErrNoRows if the run
	// is missing or no longer pending.
	MarkRunning(ctx context.Context, id string, at time.Time) error
	MarkSucceeded(ctx context.Context, id string, bestLength int, elbows []int, resultPath string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string, at time.Time) error

	// FailUnfinished marks every pending or running run as failed and returns how many
	// rows changed. Used at startup, when queued jobs from a previous process are gone.
	FailUnfinished(ctx context.Context, reason string, at time.Time) (int64, error)

	// ResultPaths lists the stored result objects of all runs on a dataset.
	ResultPaths(ctx context.Context, datasetID string) ([]string, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
