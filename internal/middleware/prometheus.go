// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package middleware

import (
	"net/http"
	"time"

	"github.com/rmpd/rmpd/internal/metrics"
)

// PrometheusMetrics instruments every companion-surface request: active
// request gauge, request duration, and a status-class counter bucketed to
// 2xx/3xx/4xx/5xx to keep metrics.RecordAPIRequest's label cardinality
// bounded regardless of how many distinct status codes a handler returns.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		wrapper := &statusCapture{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		metrics.RecordAPIRequest(r.Method, r.URL.Path, statusBucket(wrapper.status), time.Since(start))
	})
}

// statusCapture wraps http.ResponseWriter to capture the status code a
// handler wrote, for status-class metrics.
type statusCapture struct {
	http.ResponseWriter
	status int
}

func (w *statusCapture) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func statusBucket(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
