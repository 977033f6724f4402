// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the companion HTTP surface. This package provides
// instrumentation for:
// - Catalog query performance (DuckDB)
// - Catalog rescan progress
// - Companion HTTP/WebSocket endpoint latency and throughput
// - Cache efficiency
// - Mount backend circuit breaker
// - Event bus throughput and subscriber lag
// - Message broker channel depth
// - Playback engine state
// - Protocol connection/idle activity

var (
	// Catalog Metrics
	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_query_duration_seconds",
			Help:    "Duration of catalog (DuckDB) queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CatalogQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_query_errors_total",
			Help: "Total number of catalog query errors",
		},
		[]string{"operation", "error_type"},
	)

	CatalogSongsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_songs_total",
			Help: "Current number of songs in the catalog",
		},
	)

	// Rescan Metrics
	RescanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rescan_duration_seconds",
			Help:    "Duration of catalog rescans in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	RescanSongsScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rescan_songs_scanned_total",
			Help: "Total number of songs visited during rescans",
		},
	)

	RescanSongsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rescan_songs_added_total",
			Help: "Total number of new songs added during rescans",
		},
	)

	RescanSongsUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rescan_songs_updated_total",
			Help: "Total number of songs updated during rescans",
		},
	)

	RescanSongsRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rescan_songs_removed_total",
			Help: "Total number of songs removed during rescans",
		},
	)

	RescanErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rescan_errors_total",
			Help: "Total number of errors encountered during rescans",
		},
	)

	RescanInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rescan_in_progress",
			Help: "1 while a catalog rescan is running, 0 otherwise",
		},
	)

	// Companion HTTP API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of companion HTTP API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Companion HTTP API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active companion HTTP API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics (General)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "song_lookup", "eventbus_registry", ...
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// WebSocket Metrics (companion live-status bridge)
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics (mount backend resilience)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Bus Metrics
	EventBusPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventbus_published_total",
			Help: "Total number of events published to the event bus",
		},
		[]string{"kind"},
	)

	EventBusDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventbus_delivered_total",
			Help: "Total number of events delivered to subscribers",
		},
		[]string{"kind"},
	)

	EventBusDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventbus_dropped_total",
			Help: "Total number of events dropped due to a full subscriber channel",
		},
		[]string{"subscriber"},
	)

	EventBusSubscriberLag = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eventbus_subscriber_lag",
			Help: "Recent dropped-event count observed per subscriber",
		},
		[]string{"subscriber"},
	)

	// Message Broker Metrics
	BrokerMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broker_messages_sent_total",
			Help: "Total number of client messages sent via sendmessage",
		},
	)

	BrokerMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broker_messages_dropped_total",
			Help: "Total number of client messages dropped when a channel's FIFO was full",
		},
	)

	BrokerChannelDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "broker_channel_depth",
			Help: "Current number of undelivered messages per channel",
		},
		[]string{"channel"},
	)

	// Playback Engine Metrics
	PlaybackState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playback_state",
			Help: "Playback engine state (0=stop, 1=play, 2=pause)",
		},
	)

	PlaybackDecodeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playback_decode_errors_total",
			Help: "Total number of decoder errors that aborted the current track",
		},
	)

	PlaybackUnderruns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playback_underruns_total",
			Help: "Total number of sink underrun events",
		},
	)

	PlaybackCrossfadeEngaged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playback_crossfade_engaged_total",
			Help: "Total number of track transitions that engaged a crossfade",
		},
	)

	// Protocol Connection Metrics
	ProtocolConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "protocol_connections_active",
			Help: "Current number of open MPD protocol connections",
		},
	)

	ProtocolCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protocol_commands_total",
			Help: "Total number of protocol commands handled",
		},
		[]string{"command", "result"}, // result: "ok", "ack"
	)

	ProtocolIdleClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "protocol_idle_clients",
			Help: "Current number of connections suspended in idle",
		},
	)

	// Authentication Metrics
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of password command attempts",
		},
		[]string{"result"}, // "success", "failure"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordCatalogQuery records a catalog query metric.
func RecordCatalogQuery(operation string, duration time.Duration, err error) {
	CatalogQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		CatalogQueryErrors.WithLabelValues(operation, errorType).Inc()
	}
}

// RecordRescan records a completed catalog rescan.
func RecordRescan(duration time.Duration, scanned, added, updated, removed, errs int) {
	RescanDuration.Observe(duration.Seconds())
	RescanSongsScanned.Add(float64(scanned))
	RescanSongsAdded.Add(float64(added))
	RescanSongsUpdated.Add(float64(updated))
	RescanSongsRemoved.Add(float64(removed))
	RescanErrors.Add(float64(errs))
}

// RecordAPIRequest records a companion HTTP API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active companion API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordEventBusPublish records an event bus publish.
func RecordEventBusPublish(kind string) {
	EventBusPublished.WithLabelValues(kind).Inc()
}

// RecordEventBusDelivery records an event bus delivery to a subscriber.
func RecordEventBusDelivery(kind string) {
	EventBusDelivered.WithLabelValues(kind).Inc()
}

// RecordEventBusDrop records a dropped event for a lagging subscriber.
func RecordEventBusDrop(subscriberID string) {
	EventBusDropped.WithLabelValues(subscriberID).Inc()
}

// UpdateEventBusLag sets the current lag gauge for a subscriber.
func UpdateEventBusLag(subscriberID string, lag int64) {
	EventBusSubscriberLag.WithLabelValues(subscriberID).Set(float64(lag))
}

// RecordBrokerSend records a sendmessage call, and whether it dropped the
// channel's oldest message to stay within capacity.
func RecordBrokerSend(dropped bool) {
	BrokerMessagesSent.Inc()
	if dropped {
		BrokerMessagesDropped.Inc()
	}
}

// UpdateBrokerChannelDepth sets the current depth gauge for a channel.
func UpdateBrokerChannelDepth(channel string, depth int) {
	BrokerChannelDepth.WithLabelValues(channel).Set(float64(depth))
}

// SetPlaybackState mirrors the playback engine's current state byte.
func SetPlaybackState(state int) {
	PlaybackState.Set(float64(state))
}

// RecordProtocolCommand records a handled protocol command.
func RecordProtocolCommand(command string, ok bool) {
	result := "ok"
	if !ok {
		result = "ack"
	}
	ProtocolCommandsTotal.WithLabelValues(command, result).Inc()
}

// RecordAuthAttempt records a password command attempt.
func RecordAuthAttempt(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	AuthAttemptsTotal.WithLabelValues(result).Inc()
}
