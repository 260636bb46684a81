package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"motifapi/internal/discovery"
	"motifapi/internal/model"
	"motifapi/internal/service"
	"motifapi/internal/storage"
)

type MockDiscoveryService struct {
	mock.Mock
}

func (m *MockDiscoveryService) Create(ctx context.Context, datasetID string, p discovery.Params) (*model.Discovery, error) {
	args := m.Called(ctx, datasetID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Discovery), args.Error(1)
}

func (m *MockDiscoveryService) Get(ctx context.Context, id string) (*model.Discovery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Discovery), args.Error(1)
}

func (m *MockDiscoveryService) ListByDataset(ctx context.Context, datasetID string, limit, offset int) (*service.DiscoveryListResult, error) {
	args := m.Called(ctx, datasetID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DiscoveryListResult), args.Error(1)
}

func (m *MockDiscoveryService) Result(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, id)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockDiscoveryService) Execute(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDiscoveryService) RecoverUnfinished(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
