package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/pelada/pkg/metrics"
)

// Error severities used as metric labels.
const (
	severityLow    = "low"
	severityMedium = "medium"
	severityHigh   = "high"
)

// MetricsMiddleware records request count and latency for endpoint. Failed
// requests are also counted under the envelope code the handler wrote, so a
// refused draw and a malformed body show up as different series.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		ms := float64(time.Since(start).Microseconds()) / 1000.0
		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, ms)

		if rec.status < http.StatusBadRequest {
			return
		}
		code := rec.code
		if code == "" {
			code = fallbackCode(rec.status)
		}
		metrics.RecordErrorByEndpoint(endpoint, r.Method, code)
		metrics.RecordErrorByType(code, severity(rec.status, code))
		metrics.RecordErrorLatency("http", code, ms)
	}
}

// fallbackCode names failures that did not go through writeError, such as
// the mux's own 404 and 405 answers.
func fallbackCode(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return codeInternal
	case status == http.StatusNotFound:
		return codeNotFound
	case status == http.StatusConflict:
		return codeConflict
	default:
		return codeBadRequest
	}
}

// severity ranks a failure. Roster rule refusals are expected traffic.
func severity(status int, code string) string {
	switch {
	case status >= http.StatusInternalServerError:
		return severityHigh
	case code == codeGoalkeeperLimit, code == codeNotEnoughConfirmed:
		return severityLow
	default:
		return severityMedium
	}
}

// statusRecorder remembers the status and envelope code of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	code   string
}

func (rw *statusRecorder) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// recordCode tags w with the envelope code when it is a statusRecorder.
func recordCode(w http.ResponseWriter, code string) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.code = code
	}
}
