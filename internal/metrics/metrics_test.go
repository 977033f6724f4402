// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCatalogQuery(t *testing.T) {
	before := testutil.CollectAndCount(CatalogQueryDuration)
	RecordCatalogQuery("find_songs", 5*time.Millisecond, nil)
	after := testutil.CollectAndCount(CatalogQueryDuration)
	assert.GreaterOrEqual(t, after, before)
}

func TestRecordCatalogQueryTruncatesLongErrors(t *testing.T) {
	longErr := errors.New("this is a very long error message that exceeds fifty characters and should be truncated")
	truncated := longErr.Error()[:50]
	before := testutil.ToFloat64(CatalogQueryErrors.WithLabelValues("list_artists", truncated))
	RecordCatalogQuery("list_artists", time.Millisecond, longErr)
	after := testutil.ToFloat64(CatalogQueryErrors.WithLabelValues("list_artists", truncated))
	assert.Equal(t, before+1, after)
}

func TestRecordRescan(t *testing.T) {
	before := testutil.ToFloat64(RescanSongsAdded)
	RecordRescan(2*time.Second, 100, 5, 2, 1, 0)
	after := testutil.ToFloat64(RescanSongsAdded)
	assert.Equal(t, before+5, after)
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/status", "200"))
	RecordAPIRequest("GET", "/api/v1/status", "200", 10*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/status", "200"))
	assert.Equal(t, before+1, after)
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(APIActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(APIActiveRequests))
}

func TestEventBusMetrics(t *testing.T) {
	before := testutil.ToFloat64(EventBusPublished.WithLabelValues("song_changed"))
	RecordEventBusPublish("song_changed")
	assert.Equal(t, before+1, testutil.ToFloat64(EventBusPublished.WithLabelValues("song_changed")))

	RecordEventBusDelivery("song_changed")
	RecordEventBusDrop("ws-conn-1")
	UpdateEventBusLag("ws-conn-1", 3)
	assert.Equal(t, float64(3), testutil.ToFloat64(EventBusSubscriberLag.WithLabelValues("ws-conn-1")))
}

func TestBrokerMetrics(t *testing.T) {
	beforeSent := testutil.ToFloat64(BrokerMessagesSent)
	beforeDropped := testutil.ToFloat64(BrokerMessagesDropped)

	RecordBrokerSend(false)
	RecordBrokerSend(true)

	assert.Equal(t, beforeSent+2, testutil.ToFloat64(BrokerMessagesSent))
	assert.Equal(t, beforeDropped+1, testutil.ToFloat64(BrokerMessagesDropped))

	UpdateBrokerChannelDepth("lyrics", 4)
	assert.Equal(t, float64(4), testutil.ToFloat64(BrokerChannelDepth.WithLabelValues("lyrics")))
}

func TestSetPlaybackState(t *testing.T) {
	SetPlaybackState(1)
	assert.Equal(t, float64(1), testutil.ToFloat64(PlaybackState))
	SetPlaybackState(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(PlaybackState))
}

func TestRecordProtocolCommand(t *testing.T) {
	before := testutil.ToFloat64(ProtocolCommandsTotal.WithLabelValues("play", "ok"))
	RecordProtocolCommand("play", true)
	assert.Equal(t, before+1, testutil.ToFloat64(ProtocolCommandsTotal.WithLabelValues("play", "ok")))

	beforeAck := testutil.ToFloat64(ProtocolCommandsTotal.WithLabelValues("play", "ack"))
	RecordProtocolCommand("play", false)
	assert.Equal(t, beforeAck+1, testutil.ToFloat64(ProtocolCommandsTotal.WithLabelValues("play", "ack")))
}

func TestRecordAuthAttempt(t *testing.T) {
	before := testutil.ToFloat64(AuthAttemptsTotal.WithLabelValues("success"))
	RecordAuthAttempt(true)
	assert.Equal(t, before+1, testutil.ToFloat64(AuthAttemptsTotal.WithLabelValues("success")))

	beforeFail := testutil.ToFloat64(AuthAttemptsTotal.WithLabelValues("failure"))
	RecordAuthAttempt(false)
	assert.Equal(t, beforeFail+1, testutil.ToFloat64(AuthAttemptsTotal.WithLabelValues("failure")))
}

func TestCacheMetricsLabelsIndependent(t *testing.T) {
	CacheHits.WithLabelValues("song_lookup").Inc()
	CacheMisses.WithLabelValues("song_lookup").Inc()
	CacheSize.WithLabelValues("song_lookup").Set(42)
	CacheEvictions.WithLabelValues("song_lookup").Inc()

	assert.Equal(t, float64(42), testutil.ToFloat64(CacheSize.WithLabelValues("song_lookup")))
}

func TestCircuitBreakerMetrics(t *testing.T) {
	CircuitBreakerState.WithLabelValues("nas-mount").Set(0)
	CircuitBreakerRequests.WithLabelValues("nas-mount", "success").Inc()
	CircuitBreakerConsecutiveFailures.WithLabelValues("nas-mount").Set(0)
	CircuitBreakerTransitions.WithLabelValues("nas-mount", "closed", "open").Inc()

	assert.Equal(t, float64(0), testutil.ToFloat64(CircuitBreakerState.WithLabelValues("nas-mount")))
}
