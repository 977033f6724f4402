// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package httpapi

import (
	"net/http"
	"strings"

	"github.com/rmpd/rmpd/internal/logging"
)

// openAPIDocument is hand-written rather than swag-generated (swag
// annotations require `swag init` as a build step, which this module
// never runs): it documents the /healthz, /metrics and /ws endpoints, not the MPD
// wire protocol itself (the wire protocol is line-oriented, not HTTP, and
// has its own closed command taxonomy in spec.md §4.8).
const openAPIDocument = `{
  "openapi": "3.0.3",
  "info": {
    "title": "rmpd companion surface",
    "description": "Observability endpoints alongside the MPD wire protocol TCP listener. Does not expose playback or queue control.",
    "version": "%s"
  },
  "paths": {
    "/healthz": {
      "get": {
        "summary": "Report companion-surface health",
        "responses": {
          "200": {"description": "healthy"},
          "503": {"description": "degraded"}
        }
      }
    },
    "/metrics": {
      "get": {
        "summary": "Prometheus metrics",
        "responses": {"200": {"description": "text/plain Prometheus exposition format"}}
      }
    },
    "/ws": {
      "get": {
        "summary": "WebSocket mirror of the event bus",
        "description": "Read-only; upgrades to a WebSocket and streams event/status messages. Never accepts commands back.",
        "responses": {"101": {"description": "switching protocols"}}
      }
    }
  }
}`

// openAPIHandler serves the static OpenAPI document http-swagger's UI
// renders at /docs/*.
func openAPIHandler(version string) http.HandlerFunc {
	body := strings.Replace(openAPIDocument, "%s", version, 1)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(body)); err != nil {
			logging.Warn().Err(err).Msg("failed to write openapi document")
		}
	}
}
