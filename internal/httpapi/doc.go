// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

/*
Package httpapi is the companion HTTP surface described in SPEC_FULL.md:
/healthz, /metrics (Prometheus), /docs (swagger UI over a hand-written
OpenAPI document), and /ws (a read-only WebSocket mirror of the event bus
for a browser dashboard).

This surface is not part of the MPD wire protocol. It cannot mutate the
queue or catalog; a request against it never reaches internal/protocol.
Its absence changes nothing about MPD client behavior, which is why
spec.md's Non-goals (no GUI) do not cover it: it is observability
tooling, not a second control surface.
*/
package httpapi
