package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"motifapi/internal/model"
	"motifapi/internal/repository"
)

type MockDiscoveryRepository struct {
	mock.Mock
}

func (m *MockDiscoveryRepository) Create(ctx context.Context, d *model.Discovery) (*model.Discovery, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Discovery), args.Error(1)
}

func (m *MockDiscoveryRepository) FindByID(ctx context.Context, id string) (*model.Discovery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Discovery), args.Error(1)
}

func (m *MockDiscoveryRepository) ListByDataset(ctx context.Context, datasetID string, pq repository.PageQuery) (*repository.PageResult[model.Discovery], error) {
	args := m.Called(ctx, datasetID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Discovery]), args.Error(1)
}

func (m *MockDiscoveryRepository) MarkRunning(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockDiscoveryRepository) MarkSucceeded(ctx context.Context, id string, bestLength int, elbows []int, resultPath string, at time.Time) error {
	args := m.Called(ctx, id, bestLength, elbows, resultPath, at)
	return args.Error(0)
}

func (m *MockDiscoveryRepository) MarkFailed(ctx context.Context, id string, reason string, at time.Time) error {
	args := m.Called(ctx, id, reason, at)
	return args.Error(0)
}

func (m *MockDiscoveryRepository) FailUnfinished(ctx context.Context, reason string, at time.Time) (int64, error) {
	args := m.Called(ctx, reason, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDiscoveryRepository) ResultPaths(ctx context.Context, datasetID string) ([]string, error) {
	args := m.Called(ctx, datasetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
