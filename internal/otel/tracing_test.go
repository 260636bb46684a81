package otel

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motifapi/internal/config"
)

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), config.TracingConfig{}, "motifapi", zerolog.New(&buf))
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"tracing_enabled":false`)
}

func TestInit_UnsupportedProtocolDegrades(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.TracingConfig{Endpoint: "localhost:4317", Protocol: "carrier-pigeon"}
	shutdown, err := Init(context.Background(), cfg, "motifapi", zerolog.New(&buf))
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "tracing_init_failed")
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "collector:4317", stripScheme("http://collector:4317"))
	assert.Equal(t, "collector:4318", stripScheme("collector:4318"))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler("always_off", "").Description(), "AlwaysOff")
	assert.Contains(t, sampler("traceidratio", "0.25").Description(), "0.25")
	assert.Contains(t, sampler("unknown", "").Description(), "ParentBased")
}
