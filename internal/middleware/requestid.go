// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rmpd/rmpd/internal/logging"
)

// RequestID stamps every companion-surface request with an ID, echoed back
// in X-Request-ID and folded into the request's logging context so a line
// logged deep in a handler can be correlated with the response that sent
// it. It honors an upstream-supplied X-Request-ID (e.g. a reverse proxy)
// instead of always minting a fresh one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)

		ctx := logging.ContextWithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
