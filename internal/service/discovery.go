package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"motifapi/internal/config"
	"motifapi/internal/discovery"
	"motifapi/internal/metrics"
	"motifapi/internal/model"
	"motifapi/internal/motiflet"
	"motifapi/internal/repository"
	"motifapi/internal/storage"
	"motifapi/internal/worker"
)

const tracerName = "motifapi/internal/service"

// DiscoveryListResult is the service-level DTO for paginated discovery runs.
type DiscoveryListResult struct {
	Items []model.Discovery `json:"data"`
	Total int               `json:"total"`
}

// Submitter queues background jobs. *worker.Pool implements it.
type Submitter interface {
	Submit(job worker.Job) error
}

// DiscoveryService defines the use cases for motif discovery runs.
type DiscoveryService interface {
	// Create validates p against the dataset, stores a pending run and queues it.
	Create(ctx context.Context, datasetID string, p discovery.Params) (*model.Discovery, error)

	// Get returns a single run by its ID.
	Get(ctx context.Context, id string) (*model.Discovery, error)

	// ListByDataset returns the runs on a dataset using limit/offset and a total count.
	ListByDataset(ctx context.Context, datasetID string, limit, offset int) (*DiscoveryListResult, error)

	// Result streams the JSON result document of a succeeded run.
	Result(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error)

	// Execute runs a pending discovery to completion and records its outcome.
	Execute(ctx context.Context, id string) error

	// RecoverUnfinished fails runs left pending or running by a previous process.
	RecoverUnfinished(ctx context.Context) (int64, error)
}

type discoveryService struct {
	store    storage.Storage
	datasets repository.DatasetRepository
	repo     repository.DiscoveryRepository
	pool     Submitter
	cfg      config.DiscoveryConfig
	timeout  time.Duration
	metrics  *metrics.Discovery
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// DiscoveryDeps bundles the collaborators of the discovery service.
type DiscoveryDeps struct {
	Store      storage.Storage
	Datasets   repository.DatasetRepository
	Runs       repository.DiscoveryRepository
	Pool       Submitter
	Config     config.DiscoveryConfig
	JobTimeout time.Duration
	Metrics    *metrics.Discovery
	Logger     zerolog.Logger
}

// NewDiscoveryService constructs a new DiscoveryService.
func NewDiscoveryService(d DiscoveryDeps) DiscoveryService {
	return &discoveryService{
		store:    d.Store,
		datasets: d.Datasets,
		repo:     d.Runs,
		pool:     d.Pool,
		cfg:      d.Config,
		timeout:  d.JobTimeout,
		metrics:  d.Metrics,
		logger:   d.Logger.With().Str("component", "discovery_service").Logger(),
		tracer:   otel.Tracer(tracerName),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *discoveryService) Create(ctx context.Context, datasetID string, p discovery.Params) (*model.Discovery, error) {
	if datasetID == "" {
		return nil, ErrIDRequired
	}
	ds, err := findDataset(ctx, s.datasets, datasetID)
	if err != nil {
		return nil, err
	}

	p = s.withDefaults(p)
	if err := checkParams(ds, p, s.limits()); err != nil {
		return nil, err
	}

	run := &model.Discovery{
		ID:        uuid.New().String(),
		DatasetID: ds.ID,
		Mode:      p.Mode,
		Status:    model.StatusPending,
		Params:    p,
		CreatedAt: s.now(),
	}
	stored, err := s.repo.Create(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	id := stored.ID
	if err := s.pool.Submit(func(jobCtx context.Context) {
		_ = s.Execute(jobCtx, id)
	}); err != nil {
		if errors.Is(err, worker.ErrQueueFull) {
			s.metrics.Rejected()
		}
		reason := err.Error()
		if markErr := s.repo.MarkFailed(context.WithoutCancel(ctx), id, reason, s.now()); markErr != nil {
			s.logger.Error().Err(markErr).Str("discovery_id", id).Msg("mark rejected run failed")
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.logger.Info().
		Str("discovery_id", id).
		Str("dataset_id", ds.ID).
		Str("mode", string(p.Mode)).
		Msg("discovery queued")
	return stored, nil
}

func (s *discoveryService) withDefaults(p discovery.Params) discovery.Params {
	if p.Options.Slack == 0 {
		p.Options.Slack = s.cfg.Slack
	}
	if p.Options.ElbowDeviation == 0 {
		p.Options.ElbowDeviation = s.cfg.ElbowDeviation
	}
	return p
}

// checkParams validates p on its own and against the shape of the dataset.
func checkParams(ds *model.Dataset, p discovery.Params, lim discovery.Limits) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	shape := motiflet.NewSeries(make([][]float64, len(ds.Labels)), ds.Labels)
	sel, err := shape.Select(p.Channels)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if err := lim.Fit(p, sel.Dims(), ds.Length); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

func (s *discoveryService) limits() discovery.Limits {
	return discovery.Limits{MaxPoints: s.cfg.ResamplePoints, MaxCells: s.cfg.MaxMatrixCells}
}

func (s *discoveryService) Get(ctx context.Context, id string) (*model.Discovery, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *discoveryService) ListByDataset(ctx context.Context, datasetID string, limit, offset int) (*DiscoveryListResult, error) {
	if datasetID == "" {
		return nil, ErrIDRequired
	}
	if _, err := findDataset(ctx, s.datasets, datasetID); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)

	res, err := s.repo.ListByDataset(ctx, datasetID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DiscoveryListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *discoveryService) Result(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	if d.Status != model.StatusSucceeded || d.ResultPath == "" {
		return nil, storage.ObjectInfo{}, fmt.Errorf("%w: status is %s", ErrNotReady, d.Status)
	}
	rc, info, err := s.store.Get(ctx, d.ResultPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectInfo{}, ErrNotFound
		}
		return nil, storage.ObjectInfo{}, fmt.Errorf("fetch result: %w", err)
	}
	return rc, info, nil
}

func (s *discoveryService) Execute(ctx context.Context, id string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	ctx, span := s.tracer.Start(ctx, "discovery.execute", trace.WithAttributes(attribute.String("discovery.id", id)))
	defer span.End()

	logger := s.logger.With().Str("discovery_id", id).Logger()

	if err := s.repo.MarkRunning(ctx, id, s.now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Warn().Msg("discovery is not pending, skipping")
			return ErrNotFound
		}
		logger.Error().Err(err).Msg("mark running failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "mark running")
		return err
	}

	start := time.Now()
	s.metrics.Started()

	run, key, res, err := s.execute(ctx, id, &logger)
	mode := ""
	if run != nil {
		mode = string(run.Mode)
		span.SetAttributes(attribute.String("discovery.mode", mode), attribute.String("dataset.id", run.DatasetID))
	}

	// status writes must land even when the run hit its deadline
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err != nil {
		s.metrics.Finished(mode, string(model.StatusFailed), time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "discovery failed")
		logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("discovery failed")
		if markErr := s.repo.MarkFailed(writeCtx, id, err.Error(), s.now()); markErr != nil {
			logger.Error().Err(markErr).Msg("mark failed failed")
		}
		return err
	}

	if err := s.repo.MarkSucceeded(writeCtx, id, res.BestLength(), res.Elbows(), key, s.now()); err != nil {
		s.metrics.Finished(mode, string(model.StatusFailed), time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "mark succeeded")
		logger.Error().Err(err).Msg("mark succeeded failed")
		// the result is unreachable without its row
		if delErr := s.store.Delete(writeCtx, key); delErr != nil {
			logger.Error().Err(delErr).Str("key", key).Msg("delete orphaned result failed")
		}
		// ErrNoRows means the row is gone, usually with its dataset
		if !errors.Is(err, sql.ErrNoRows) {
			if markErr := s.repo.MarkFailed(writeCtx, id, "record result: "+err.Error(), s.now()); markErr != nil {
				logger.Error().Err(markErr).Msg("mark failed failed")
			}
		}
		return err
	}

	s.metrics.Finished(mode, string(model.StatusSucceeded), time.Since(start))
	logger.Info().
		Str("mode", mode).
		Int("best_length", res.BestLength()).
		Ints("elbows", res.Elbows()).
		Dur("elapsed", time.Since(start)).
		Msg("discovery succeeded")
	return nil
}

// execute loads the run and its dataset, runs the search and stores the result document.
func (s *discoveryService) execute(ctx context.Context, id string, logger *zerolog.Logger) (*model.Discovery, string, *discovery.Result, error) {
	run, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", nil, fmt.Errorf("load discovery: %w", err)
	}
	ds, err := findDataset(ctx, s.datasets, run.DatasetID)
	if err != nil {
		return run, "", nil, fmt.Errorf("load dataset: %w", err)
	}
	series, err := loadSeries(ctx, s.store, ds)
	if err != nil {
		return run, "", nil, err
	}

	res, err := discovery.Run(ctx, series, run.Params, discovery.RunConfig{
		Workers: s.cfg.Workers,
		Logger:  logger,
		Limits:  s.limits(),
	})
	if err != nil {
		return run, "", nil, err
	}

	body, err := json.Marshal(res)
	if err != nil {
		return run, "", nil, fmt.Errorf("encode result: %w", err)
	}
	key := storage.ResultKey(id)
	if _, err := s.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata:    map[string]string{"dataset-id": ds.ID},
	}); err != nil {
		return run, "", nil, fmt.Errorf("store result: %w", err)
	}
	return run, key, res, nil
}

func (s *discoveryService) RecoverUnfinished(ctx context.Context) (int64, error) {
	n, err := s.repo.FailUnfinished(ctx, "interrupted by restart", s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Warn().Int64("count", n).Msg("failed discoveries left unfinished by a previous run")
	}
	return n, nil
}
