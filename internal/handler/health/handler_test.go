package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/marketplace-api/pkg/metrics"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func setup(err error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("marketplace", reg)
	m.BookingsCreated.Inc()

	r := gin.New()
	NewHandler(pinger{err: err}, reg).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveAndReady(t *testing.T) {
	r := setup(nil)

	assert.Equal(t, http.StatusOK, get(r, "/api/v1/health/live").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/health/ready").Code)
}

func TestReadyReportsStoreFailure(t *testing.T) {
	r := setup(errors.New("connection refused"))

	w := get(r, "/api/v1/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "DOWN")
}

func TestMetricsExposesRegistry(t *testing.T) {
	r := setup(nil)

	w := get(r, "/api/v1/health/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "marketplace_bookings_created_total 1")
}
