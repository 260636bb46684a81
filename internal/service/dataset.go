package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"motifapi/internal/config"
	"motifapi/internal/dataset"
	"motifapi/internal/model"
	"motifapi/internal/motiflet"
	"motifapi/internal/repository"
	"motifapi/internal/storage"
)

// DatasetListResult is the service-level DTO for paginated datasets.
type DatasetListResult struct {
	Items []model.Dataset `json:"data"`
	Total int             `json:"total"`
}

// UploadInput describes an incoming dataset file.
type UploadInput struct {
	Name        string
	Filename    string
	ContentType string
	Layout      string
}

// DatasetService defines the use cases for handling datasets.
type DatasetService interface {
	// Upload parses and validates the CSV, stores the raw bytes in object storage, saves
	// metadata to DB, and rolls back storage if the DB save fails.
	Upload(ctx context.Context, r io.Reader, in UploadInput) (*model.Dataset, error)

	// List returns datasets using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DatasetListResult, error)

	// Get returns a single dataset by its ID.
	Get(ctx context.Context, id string) (*model.Dataset, error)

	// Delete removes a dataset, its stored discovery results and its raw object.
	Delete(ctx context.Context, id string) error

	// DownloadURL returns a presigned URL for the raw CSV.
	DownloadURL(ctx context.Context, id string) (string, error)
}

// datasetService is a concrete implementation of DatasetService.
type datasetService struct {
	store       storage.Storage
	repo        repository.DatasetRepository
	discoveries repository.DiscoveryRepository
	cfg         config.DiscoveryConfig
	logger      zerolog.Logger
}

// NewDatasetService constructs a new DatasetService.
func NewDatasetService(store storage.Storage, repo repository.DatasetRepository, discoveries repository.DiscoveryRepository, cfg config.DiscoveryConfig, logger zerolog.Logger) DatasetService {
	return &datasetService{
		store:       store,
		repo:        repo,
		discoveries: discoveries,
		cfg:         cfg,
		logger:      logger.With().Str("component", "dataset_service").Logger(),
	}
}

func (s *datasetService) Upload(ctx context.Context, r io.Reader, in UploadInput) (*model.Dataset, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	layout, err := dataset.ParseLayout(in.Layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	raw, err := readLimited(r, s.cfg.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	series, err := dataset.Parse(bytes.NewReader(raw), layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	if s.cfg.MaxLength > 0 && series.Len() > s.cfg.MaxLength {
		return nil, fmt.Errorf("%w: series has %d points, limit is %d", ErrInvalidDataset, series.Len(), s.cfg.MaxLength)
	}

	id := uuid.New().String()
	key := storage.DatasetKey(id, in.Filename)
	contentType := in.ContentType
	if contentType == "" {
		contentType = "text/csv"
	}

	// Upload to object storage
	objInfo, err := s.store.Put(ctx, key, bytes.NewReader(raw), storage.PutObjectOptions{
		Size:        int64(len(raw)),
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": in.Filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	name := in.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(in.Filename), filepath.Ext(in.Filename))
	}

	// Save metadata to database
	ds := &model.Dataset{
		ID:          id,
		Name:        name,
		Filename:    in.Filename,
		StoragePath: objInfo.Key,
		Size:        objInfo.Size,
		ContentType: contentType,
		Layout:      string(layout),
		Dimensions:  series.Dims(),
		Length:      series.Len(),
		Labels:      series.Labels,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, ds)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.logger.Info().
		Str("dataset_id", stored.ID).
		Int("dimensions", stored.Dimensions).
		Int("length", stored.Length).
		Msg("dataset uploaded")
	return stored, nil
}

// List returns paginated datasets without exposing repository types.
func (s *datasetService) List(ctx context.Context, limit, offset int) (*DatasetListResult, error) {
	limit, offset = normalizePage(limit, offset)

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DatasetListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a dataset by ID.
func (s *datasetService) Get(ctx context.Context, id string) (*model.Dataset, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	return findDataset(ctx, s.repo, id)
}

// Delete removes stored results and the raw object, then deletes the record.
func (s *datasetService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	ds, err := findDataset(ctx, s.repo, id)
	if err != nil {
		return err
	}

	paths, err := s.discoveries.ResultPaths(ctx, id)
	if err != nil {
		return fmt.Errorf("list results: %w", err)
	}
	for _, p := range paths {
		if err := s.store.Delete(ctx, p); err != nil {
			return fmt.Errorf("delete result %s: %w", p, err)
		}
	}
	// Delete from storage first; if this fails, keep DB row to avoid orphaned storage reference loss
	if err := s.store.Delete(ctx, ds.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	// Discoveries go with the row through ON DELETE CASCADE
	return s.repo.Delete(ctx, id)
}

// DownloadURL presigns a GET for the raw dataset object.
func (s *datasetService) DownloadURL(ctx context.Context, id string) (string, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	ttl := time.Duration(s.cfg.PresignTTLSec) * time.Second
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	u, err := s.store.PresignGet(ctx, ds.StoragePath, ttl, ds.Filename)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return u, nil
}

func findDataset(ctx context.Context, repo repository.DatasetRepository, id string) (*model.Dataset, error) {
	ds, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ds, nil
}

// loadSeries fetches and parses the raw CSV of a dataset.
func loadSeries(ctx context.Context, store storage.Storage, ds *model.Dataset) (motiflet.Series, error) {
	rc, _, err := store.Get(ctx, ds.StoragePath)
	if err != nil {
		return motiflet.Series{}, fmt.Errorf("fetch dataset: %w", err)
	}
	defer rc.Close()

	s, err := dataset.Parse(rc, dataset.Layout(ds.Layout))
	if err != nil {
		return motiflet.Series{}, fmt.Errorf("parse dataset: %w", err)
	}
	return s, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(raw)) > limit {
		return nil, ErrTooLarge
	}
	return raw, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
