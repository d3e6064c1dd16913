package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()
	start := time.Now()

	m.Observe("catalog.get", start, nil)
	m.Observe("catalog.get", start, nil)
	m.Observe("catalog.get", start, errors.New("boom"))

	require.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("catalog.get", ResultOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("catalog.get", ResultError)))
	require.Equal(t, 1, testutil.CollectAndCount(m.latency))
}

func TestCacheLookup(t *testing.T) {
	m := New()
	m.CacheLookup("list", true)
	m.CacheLookup("list", false)
	m.CacheLookup("list", false)

	require.Equal(t, 1.0, testutil.ToFloat64(m.cacheHits.WithLabelValues("list")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.cacheMiss.WithLabelValues("list")))
}

func TestGauges(t *testing.T) {
	m := New()
	m.SetAssets(7)
	m.SetGeneration(3)
	m.Reload(nil)
	m.Reload(errors.New("parse"))

	require.Equal(t, 7.0, testutil.ToFloat64(m.assets))
	require.Equal(t, 3.0, testutil.ToFloat64(m.generation))
	require.Equal(t, 1.0, testutil.ToFloat64(m.reloads.WithLabelValues(ResultOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.reloads.WithLabelValues(ResultError)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.Observe("x", time.Now(), nil)
		m.SetAssets(1)
		m.CacheLookup("x", true)
		m.Reload(nil)
		m.SetGeneration(1)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.SetAssets(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "hoard_catalog_assets 2"))
}

func TestRegistry_Isolated(t *testing.T) {
	a, b := New(), New()
	a.SetAssets(5)
	require.Equal(t, 0.0, testutil.ToFloat64(b.assets))
	require.NotSame(t, a.Registry(), b.Registry())
}
