package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"motifapi/internal/model"
	"motifapi/internal/service"
)

type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) Upload(ctx context.Context, r io.Reader, in service.UploadInput) (*model.Dataset, error) {
	args := m.Called(ctx, r, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dataset), args.Error(1)
}

func (m *MockDatasetService) List(ctx context.Context, limit, offset int) (*service.DatasetListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DatasetListResult), args.Error(1)
}

func (m *MockDatasetService) Get(ctx context.Context, id string) (*model.Dataset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dataset), args.Error(1)
}

func (m *MockDatasetService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDatasetService) DownloadURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}
