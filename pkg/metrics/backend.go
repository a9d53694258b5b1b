package metrics

import (
	"time"
)

// RecordBackendRequest records a capture API request
func RecordBackendRequest(endpoint string, duration time.Duration, bytes int, success bool) {
	m := Get()
	if m == nil {
		return
	}

	status := "failure"
	if success {
		status = "success"
	}

	m.BackendRequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.BackendRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	if bytes > 0 {
		m.BackendResponseBytes.WithLabelValues(endpoint).Observe(float64(bytes))
	}
}

// RecordBackendError records a capture API error
func RecordBackendError(endpoint string, errorType string) {
	m := Get()
	if m != nil {
		m.BackendErrorsTotal.WithLabelValues(endpoint, errorType).Inc()
	}
}

// RecordOutputFile records an attempt to write a captured file to disk
func RecordOutputFile(success bool) {
	m := Get()
	if m == nil {
		return
	}
	status := "failure"
	if success {
		status = "success"
	}
	m.OutputFilesTotal.WithLabelValues(status).Inc()
}
