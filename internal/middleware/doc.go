// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package middleware holds the chi-style HTTP middleware internal/httpapi
// layers onto the companion observability surface: RequestID (correlates a
// response with the lines it caused internal/logging to emit),
// PrometheusMetrics (active-request gauge, duration, status-class counter),
// and Compression (gzip for clients that ask for it). None of this touches
// the MPD TCP protocol, which has no HTTP semantics to middleware.
package middleware
