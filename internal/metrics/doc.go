// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements comprehensive application instrumentation using the Prometheus
client library, exposing metrics for monitoring performance, errors, and system health
of the daemon's catalog, protocol, playback, and companion HTTP surfaces.

# Overview

The package provides metrics for:
  - Companion HTTP API request latency and throughput
  - Catalog (DuckDB) query performance
  - Catalog rescan statistics
  - Circuit breaker state transitions (mount backends)
  - Cache hit/miss rates
  - WebSocket connection counts
  - Event bus throughput and subscriber lag
  - Message broker channel depth
  - Playback engine state
  - Protocol connection and idle activity

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:3857/metrics

# Available Metrics

Companion API Metrics:
  - api_requests_total: Total companion HTTP API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
    Buckets: .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Catalog Metrics:
  - catalog_query_duration_seconds: Query execution time (histogram)
    Labels: operation
  - catalog_query_errors_total: Failed queries (counter)
    Labels: operation, error_type
  - catalog_songs_total: Current catalog size (gauge)

Rescan Metrics:
  - rescan_duration_seconds: Rescan duration (histogram)
    Buckets: 1, 5, 10, 30, 60, 120, 300, 600, 1800
  - rescan_songs_scanned_total, rescan_songs_added_total,
    rescan_songs_updated_total, rescan_songs_removed_total: per-rescan counters
  - rescan_errors_total: Failed tag reads during rescan (counter)
  - rescan_in_progress: 1 while a rescan is running (gauge)

Circuit Breaker Metrics (mount backends):
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Request outcomes (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures: Current streak (gauge)
    Labels: name
  - circuit_breaker_state_transitions_total: State changes (counter)
    Labels: name, from_state, to_state

Cache Metrics:
  - cache_hits_total, cache_misses_total: Counters
    Labels: cache_type
  - cache_entries: Current cache size (gauge)
    Labels: cache_type
  - cache_evictions_total: TTL expiries (counter)
    Labels: cache_type

WebSocket Metrics:
  - websocket_connections: Active connections (gauge)
  - websocket_messages_sent_total, websocket_messages_received_total: Counters
  - websocket_errors_total: Counter
    Labels: error_type

Event Bus Metrics:
  - eventbus_published_total, eventbus_delivered_total: Counters
    Labels: kind
  - eventbus_dropped_total: Counter
    Labels: subscriber
  - eventbus_subscriber_lag: Recent drop count (gauge)
    Labels: subscriber

Message Broker Metrics:
  - broker_messages_sent_total, broker_messages_dropped_total: Counters
  - broker_channel_depth: Undelivered messages per channel (gauge)
    Labels: channel

Playback Metrics:
  - playback_state: 0=stop, 1=play, 2=pause (gauge)
  - playback_decode_errors_total, playback_underruns_total,
    playback_crossfade_engaged_total: Counters

Protocol Metrics:
  - protocol_connections_active, protocol_idle_clients: Gauges
  - protocol_commands_total: Counter
    Labels: command, result (ok, ack)

Auth Metrics:
  - auth_attempts_total: Counter
    Labels: result (success, failure)

# Usage Example

Basic setup in main.go:

	import (
	    "github.com/rmpd/rmpd/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    http.Handle("/metrics", promhttp.Handler())
	    metrics.RecordAPIRequest("GET", "/api/v1/status", "200", 23*time.Millisecond)
	    metrics.RecordCatalogQuery("find_songs", 5*time.Millisecond, nil)
	}

Recording catalog query metrics:

	func (s *Store) FindSongs(ctx context.Context, tag, value string) ([]Song, error) {
	    start := time.Now()
	    songs, err := queryAndScanSongs(ctx, s.conn, ...)
	    metrics.RecordCatalogQuery("find_songs", time.Since(start), err)
	    return songs, err
	}

Recording a rescan:

	stats, err := store.Rescan(ctx, musicRoot, "", reader)
	metrics.RecordRescan(time.Since(start), stats.Scanned, stats.Added, stats.Updated, stats.Removed, stats.Errors)

# Prometheus Configuration

Example prometheus.yml configuration:

	scrape_configs:
	  - job_name: 'rmpd'
	    static_configs:
	      - targets: ['localhost:3857']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

# Grafana Dashboards

The metrics support Grafana dashboards with panels for:

  - Companion API request rate and latency (p50, p95, p99)
  - Catalog query performance and error rate
  - Rescan throughput and duration trends
  - Circuit breaker state visualization
  - Cache hit rate and efficiency
  - Event bus subscriber lag

Example PromQL queries:

	# Companion API p95 latency
	histogram_quantile(0.95, rate(api_request_duration_seconds_bucket[5m]))

	# Catalog query rate
	rate(catalog_query_duration_seconds_count[5m])

	# Cache hit rate
	sum(rate(cache_hits_total[5m])) / (sum(rate(cache_hits_total[5m])) + sum(rate(cache_misses_total[5m])))

	# Rescan songs added per minute
	rate(rescan_songs_added_total[1m]) * 60

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels are normalized (no query parameters)
  - Error types are truncated to a fixed length
  - Command and operation labels are drawn from a fixed, known set

# Alerting Rules

Example Prometheus alerting rules:

	groups:
	  - name: rmpd
	    rules:
	      - alert: HighAPIErrorRate
	        expr: |
	          sum(rate(api_requests_total{status_code=~"5.."}[5m]))
	          /
	          sum(rate(api_requests_total[5m]))
	          > 0.05
	        for: 5m
	        annotations:
	          summary: "High companion API error rate: {{ $value }}%"

	      - alert: SlowCatalogQueries
	        expr: |
	          histogram_quantile(0.95,
	            rate(catalog_query_duration_seconds_bucket[5m]))
	          > 1
	        for: 5m
	        annotations:
	          summary: "p95 catalog query latency: {{ $value }}s"

	      - alert: CircuitBreakerOpen
	        expr: circuit_breaker_state > 0
	        for: 2m
	        annotations:
	          summary: "Circuit breaker open for {{ $labels.name }}"

# See Also

  - internal/catalog: catalog query and rescan instrumentation
  - internal/mount: circuit breaker wrapped backend calls
  - internal/eventbus: event bus publish/deliver/drop instrumentation
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
  - https://prometheus.io/docs/practices/instrumentation/: Instrumentation guide
*/
package metrics
