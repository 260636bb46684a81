package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPromApp(t *testing.T) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	pm, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(pm.Handler())
	app.Get("/datasets/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Delete("/datasets/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Post("/datasets/:id/discoveries", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "bad params")
	})
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app, pm, reg
}

func TestPrometheusMiddleware_CountsByRoute(t *testing.T) {
	app, pm, _ := newPromApp(t)

	requests := []struct {
		method, target string
	}{
		{"GET", "/datasets/a"},
		{"GET", "/datasets/b"},
		{"DELETE", "/datasets/a"},
		{"POST", "/datasets/a/discoveries"},
	}
	for _, r := range requests {
		_, err := app.Test(httptest.NewRequest(r.method, r.target, nil))
		require.NoError(t, err)
	}

	cases := []struct {
		method, route, status string
		want                  float64
	}{
		{"GET", "/datasets/:id", "200", 2},
		{"DELETE", "/datasets/:id", "204", 1},
		{"POST", "/datasets/:id/discoveries", "422", 1},
	}
	for _, tc := range cases {
		got := testutil.ToFloat64(pm.requestCount.WithLabelValues(tc.method, tc.route, tc.status))
		assert.Equal(t, tc.want, got, "%s %s %s", tc.method, tc.route, tc.status)
	}
	assert.Equal(t, 3, testutil.CollectAndCount(pm.requestDuration))
}

func TestPrometheusMiddleware_SkipsScrapesAndProbes(t *testing.T) {
	app, _, reg := newPromApp(t)

	for _, p := range []string{"/metrics", "/healthz"} {
		_, err := app.Test(httptest.NewRequest("GET", p, nil))
		require.NoError(t, err)
	}

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		assert.Empty(t, mf.GetMetric(), mf.GetName())
	}
}

func TestPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}
