package storage

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"motifapi/internal/config"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "datasets/abc.csv", DatasetKey("abc", "walking.csv"))
	assert.Equal(t, "datasets/abc.tsv", DatasetKey("abc", "dir/walking.tsv"))
	assert.Equal(t, "datasets/abc.csv", DatasetKey("abc", "noext"))
	assert.Equal(t, "results/run-1.json", ResultKey("run-1"))
}

func TestValidateMinIO(t *testing.T) {
	valid := config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "b"}
	assert.NoError(t, validateMinIO(valid))

	noEndpoint := valid
	noEndpoint.Endpoint = ""
	assert.ErrorContains(t, validateMinIO(noEndpoint), "endpoint")

	noCreds := valid
	noCreds.SecretKey = ""
	assert.ErrorContains(t, validateMinIO(noCreds), "credentials")

	noBucket := valid
	noBucket.Bucket = ""
	assert.ErrorContains(t, validateMinIO(noBucket), "bucket")

	_, err := NewMinIO(context.Background(), noBucket, zerolog.Nop())
	assert.Error(t, err)
}

func TestMapMinIOError(t *testing.T) {
	notFound := minio.ErrorResponse{Code: "NoSuchKey", Key: "results/x.json", StatusCode: http.StatusNotFound}
	assert.ErrorIs(t, mapMinIOError(notFound), ErrObjectNotFound)

	denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}
	err := mapMinIOError(denied)
	assert.False(t, errors.Is(err, ErrObjectNotFound))
}

func TestMapMinIOError_Nil(t *testing.T) {
	assert.NoError(t, mapMinIOError(nil))
}
