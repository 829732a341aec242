package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newInstrumentedMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/deduction", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	return InstrumentMux(mux, "test")
}

func TestInstrumentMuxRecordsStatusByPattern(t *testing.T) {
	handler := newInstrumentedMux()

	before := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("/deduction", "GET", "502", "test"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deduction?income=1000", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	after := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("/deduction", "GET", "502", "test"))
	assert.Equal(t, before+1, after)
}

func TestInstrumentMuxGroupsUnknownPaths(t *testing.T) {
	handler := newInstrumentedMux()

	before := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues(unmatchedRoute, "GET", "404", "test"))

	for _, path := range []string{"/wp-admin", "/.env", "/deduction/extra"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}

	after := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues(unmatchedRoute, "GET", "404", "test"))
	assert.Equal(t, before+3, after)
	assert.Zero(t, testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("/wp-admin", "GET", "404", "test")))
}

func TestInstrumentMuxFoldsUnknownMethods(t *testing.T) {
	handler := newInstrumentedMux()

	before := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("/deduction", "OTHER", "502", "test"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("PROPFIND", "/deduction", nil))

	after := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("/deduction", "OTHER", "502", "test"))
	assert.Equal(t, before+1, after)
}
