// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rmpd/rmpd/internal/eventbus"
)

func TestHealthzOK(t *testing.T) {
	t.Parallel()
	bus := eventbus.New()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := DefaultConfig(bus)
	router := NewRouter(ctx, cfg)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHealthzDegraded(t *testing.T) {
	t.Parallel()
	bus := eventbus.New()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := DefaultConfig(bus)
	cfg.Health = func(context.Context) error { return errors.New("catalog unreachable") }
	router := NewRouter(ctx, cfg)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "catalog unreachable")
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	t.Parallel()
	bus := eventbus.New()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := NewRouter(ctx, DefaultConfig(bus))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestOpenAPIDocumentServed(t *testing.T) {
	t.Parallel()
	bus := eventbus.New()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := DefaultConfig(bus)
	cfg.Version = "9.9.9"
	router := NewRouter(ctx, cfg)

	req := httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "9.9.9")
}

func TestRateLimitDisabledWhenZero(t *testing.T) {
	t.Parallel()
	bus := eventbus.New()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := DefaultConfig(bus)
	cfg.RateLimitRequests = 0
	router := NewRouter(ctx, cfg)

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
