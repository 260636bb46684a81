package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"motifapi/internal/discovery"
	"motifapi/internal/model"
	"motifapi/internal/service"
	serviceMocks "motifapi/internal/service/mocks"
	"motifapi/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})

	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListDatasets(t *testing.T) {
	mockSvc := new(serviceMocks.MockDatasetService)
	app := fiber.New()
	app.Get("/datasets", ListDatasets(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.DatasetListResult{
			Items: []model.Dataset{{ID: uuid.New().String(), Filename: "walk.csv", Dimensions: 3}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, 10, 0).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/datasets?limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.DatasetListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		assert.Equal(t, 3, result.Items[0].Dimensions)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/datasets?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/datasets?offset=x", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/datasets", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
		assert.NotContains(t, body.Error.Message, "service error")
		mockSvc.AssertExpectations(t)
	})
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadDataset(t *testing.T) {
	mockSvc := new(serviceMocks.MockDatasetService)
	app := fiber.New()
	app.Post("/datasets", UploadDataset(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, ct := multipartBody(t, "walk.csv", "x,y\n1,2\n", map[string]string{"name": "walk", "layout": "columns"})

		expected := &model.Dataset{ID: uuid.New().String(), Filename: "walk.csv", Name: "walk"}
		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.Filename == "walk.csv" && in.Name == "walk" && in.Layout == "columns"
		})).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/datasets", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Dataset
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.ID, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/datasets", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid dataset", func(t *testing.T) {
		body, ct := multipartBody(t, "bad.csv", "x\nabc\n", nil)

		parseErr := fmt.Errorf("%w: line 2, column 1: %q: invalid value", service.ErrInvalidDataset, "abc")
		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, parseErr).Once()

		req := httptest.NewRequest(http.MethodPost, "/datasets", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "INVALID_DATASET", res.Error.Code)
		assert.Contains(t, res.Error.Message, "line 2")
		mockSvc.AssertExpectations(t)
	})

	t.Run("too large", func(t *testing.T) {
		body, ct := multipartBody(t, "big.csv", "x\n1\n", nil)
		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, service.ErrTooLarge).Once()

		req := httptest.NewRequest(http.MethodPost, "/datasets", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
		assert.Equal(t, "PAYLOAD_TOO_LARGE", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		body, ct := multipartBody(t, "walk.csv", "x\n1\n", nil)
		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("upload failed")).Once()

		req := httptest.NewRequest(http.MethodPost, "/datasets", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetDataset(t *testing.T) {
	mockSvc := new(serviceMocks.MockDatasetService)
	app := fiber.New()
	app.Get("/datasets/:id", GetDataset(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Dataset{ID: id, Labels: []string{"x", "y"}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/datasets/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Dataset
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		assert.Equal(t, []string{"x", "y"}, result.Labels)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/datasets/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		assert.Equal(t, "dataset not found", res.Error.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/datasets/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})
}

func TestDeleteDataset(t *testing.T) {
	mockSvc := new(serviceMocks.MockDatasetService)
	app := fiber.New()
	app.Delete("/datasets/:id", DeleteDataset(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/datasets/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/datasets/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(errors.New("delete error")).Once()

		req := httptest.NewRequest(http.MethodDelete, "/datasets/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDownloadDataset(t *testing.T) {
	mockSvc := new(serviceMocks.MockDatasetService)
	app := fiber.New()
	app.Get("/datasets/:id/download", DownloadDataset(mockSvc))

	id := uuid.New().String()
	mockSvc.On("DownloadURL", mock.Anything, id).Return("http://minio/bucket/datasets/x.csv?sig=1", nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/datasets/"+id+"/download", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "http://minio/bucket/datasets/x.csv?sig=1", body["url"])
	mockSvc.AssertExpectations(t)
}

func TestCreateDiscovery(t *testing.T) {
	mockSvc := new(serviceMocks.MockDiscoveryService)
	app := fiber.New()
	app.Post("/datasets/:id/discoveries", CreateDiscovery(mockSvc))

	post := func(id, body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/datasets/"+id+"/discoveries", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("accepted", func(t *testing.T) {
		dsID := uuid.New().String()
		runID := uuid.New().String()
		mockSvc.On("Create", mock.Anything, dsID, mock.MatchedBy(func(p discovery.Params) bool {
			return p.Mode == discovery.ModeKElbow && p.KMax == 8 && p.MotifLength == 50 &&
				len(p.Channels) == 2 && p.Options.NDims == 1
		})).Return(&model.Discovery{ID: runID, DatasetID: dsID, Status: model.StatusPending}, nil).Once()

		resp := post(dsID, `{"mode":"k_elbow","k_max":8,"motif_length":50,"channels":["x","y"],"options":{"n_dims":1}}`)

		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		assert.Equal(t, "/discoveries/"+runID, resp.Header.Get("Location"))
		var d model.Discovery
		json.NewDecoder(resp.Body).Decode(&d)
		assert.Equal(t, model.StatusPending, d.Status)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := post(uuid.New().String(), `{"mode":`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid params", func(t *testing.T) {
		dsID := uuid.New().String()
		mockSvc.On("Create", mock.Anything, dsID, mock.Anything).
			Return(nil, fmt.Errorf("%w: k_max must be at least 2", service.ErrInvalidParams)).Once()

		resp := post(dsID, `{"mode":"k_elbow","k_max":1,"motif_length":50}`)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "INVALID_PARAMS", res.Error.Code)
		assert.Contains(t, res.Error.Message, "k_max")
		mockSvc.AssertExpectations(t)
	})

	t.Run("queue full", func(t *testing.T) {
		dsID := uuid.New().String()
		mockSvc.On("Create", mock.Anything, dsID, mock.Anything).Return(nil, service.ErrUnavailable).Once()

		resp := post(dsID, `{"mode":"k_elbow","k_max":4,"motif_length":50}`)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("dataset not found", func(t *testing.T) {
		dsID := uuid.New().String()
		mockSvc.On("Create", mock.Anything, dsID, mock.Anything).Return(nil, service.ErrNotFound).Once()

		resp := post(dsID, `{"mode":"k_elbow","k_max":4,"motif_length":50}`)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "dataset not found", decodeError(t, resp).Error.Message)
		mockSvc.AssertExpectations(t)
	})
}

func TestListDiscoveries(t *testing.T) {
	mockSvc := new(serviceMocks.MockDiscoveryService)
	app := fiber.New()
	app.Get("/datasets/:id/discoveries", ListDiscoveries(mockSvc))

	dsID := uuid.New().String()
	mockSvc.On("ListByDataset", mock.Anything, dsID, 5, 10).Return(&service.DiscoveryListResult{
		Items: []model.Discovery{{ID: uuid.New().String(), DatasetID: dsID}},
		Total: 11,
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/datasets/"+dsID+"/discoveries?limit=5&offset=10", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var res service.DiscoveryListResult
	json.NewDecoder(resp.Body).Decode(&res)
	assert.Equal(t, 11, res.Total)
	assert.Len(t, res.Items, 1)
	mockSvc.AssertExpectations(t)
}

func TestGetDiscovery(t *testing.T) {
	mockSvc := new(serviceMocks.MockDiscoveryService)
	app := fiber.New()
	app.Get("/discoveries/:id", GetDiscovery(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		best := 42
		mockSvc.On("Get", mock.Anything, id).Return(&model.Discovery{
			ID:         id,
			Status:     model.StatusSucceeded,
			BestLength: &best,
			Elbows:     []int{3, 6},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/discoveries/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var d model.Discovery
		json.NewDecoder(resp.Body).Decode(&d)
		require.NotNil(t, d.BestLength)
		assert.Equal(t, 42, *d.BestLength)
		assert.Equal(t, []int{3, 6}, d.Elbows)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/discoveries/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "discovery not found", decodeError(t, resp).Error.Message)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetDiscoveryResult(t *testing.T) {
	mockSvc := new(serviceMocks.MockDiscoveryService)
	app := fiber.New()
	app.Get("/discoveries/:id/result", GetDiscoveryResult(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		doc := `{"mode":"k_elbow","labels":["x"]}`
		mockSvc.On("Result", mock.Anything, id).
			Return(io.NopCloser(strings.NewReader(doc)), storage.ObjectInfo{Size: int64(len(doc)), ETag: "abc"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/discoveries/"+id+"/result", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
		assert.Equal(t, "abc", resp.Header.Get("ETag"))
		b, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, doc, string(b))
		mockSvc.AssertExpectations(t)
	})

	t.Run("not ready", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Result", mock.Anything, id).
			Return(nil, storage.ObjectInfo{}, fmt.Errorf("%w: status is running", service.ErrNotReady)).Once()

		req := httptest.NewRequest(http.MethodGet, "/discoveries/"+id+"/result", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "NOT_READY", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	RegisterRoutes(app, nil, new(serviceMocks.MockDatasetService), new(serviceMocks.MockDiscoveryService))

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("health without db", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
