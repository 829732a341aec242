package metrics

import (
	"net/http"
	"strconv"
	"time"
)

// unmatchedRoute labels requests no registered pattern served.
const unmatchedRoute = "unmatched"

// InstrumentMux records a request count and latency for every request served
// by mux. Requests are labelled by the pattern that matched, never by the raw
// path, so scans of unknown URLs share a single series.
func InstrumentMux(mux *http.ServeMux, environment string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		mux.ServeHTTP(sw, r)
		elapsed := time.Since(start).Seconds()

		// ServeMux sets Pattern on the request it was handed.
		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}
		method := methodLabel(r.Method)

		HttpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(sw.status), environment).Inc()
		HttpRequestDuration.WithLabelValues(route, method, environment).Observe(elapsed)
	})
}

func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return method
	default:
		return "OTHER"
	}
}

// statusWriter remembers the first status code written.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(status int) {
	if !sw.wroteHeader {
		sw.status = status
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wroteHeader = true
	return sw.ResponseWriter.Write(b)
}
