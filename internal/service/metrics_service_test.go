package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue sums the counter samples whose label values match, in label order.
func counterValue(t *testing.T, m *MetricsService, name string, labelValues ...string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := metric.GetLabel()
			if len(labels) < len(labelValues) {
				continue
			}
			matched := true
			values := make(map[string]struct{}, len(labels))
			for _, l := range labels {
				values[l.GetValue()] = struct{}{}
			}
			for _, v := range labelValues {
				if _, ok := values[v]; !ok {
					matched = false
				}
			}
			if matched {
				total += metric.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/vehicles", http.StatusOK, 5*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordInvoiceIssued("Pendiente")
	m.RecordPriceRecompute("service", nil)
	m.RecordPriceRecompute("repair", errors.New("boom"))

	assert.Equal(t, 1.0, counterValue(t, m, "http_requests_total", "GET", "/api/v1/vehicles", "200"))
	assert.Equal(t, 1.0, counterValue(t, m, "cache_lookups_total", "hit"))
	assert.Equal(t, 1.0, counterValue(t, m, "cache_lookups_total", "miss"))
	assert.Equal(t, 1.0, counterValue(t, m, "invoices_issued_total", "Pendiente"))
	assert.Equal(t, 1.0, counterValue(t, m, "price_recomputations_total", "repair", "error"))
	assert.Equal(t, 0.0, counterValue(t, m, "price_recomputations_total", "repair", "ok"))
}

func TestMetricsServiceHandler(t *testing.T) {
	m := NewMetricsService()
	m.RecordInvoiceIssued("Pagado")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "invoices_issued_total")
	assert.Contains(t, rec.Body.String(), "goroutines_total")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.RecordCacheOperation(true, time.Millisecond)
		m.ObserveCacheWrite(time.Millisecond)
		m.ObserveDBQuery("q", time.Millisecond)
		m.RecordInvoiceIssued("Pagado")
		m.RecordPriceRecompute("repair", nil)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
