// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

/*
Package websocket mirrors rmpd's event bus to the companion dashboard over
/ws. It has no relation to the MPD TCP protocol itself, which has no
WebSocket transport; this is purely an observability surface for
internal/httpapi.

Key Components:

  - Hub: tracks connected companion clients and fans out broadcasts
  - Client: one upgraded connection, with its own read/write goroutines
  - Message: the typed envelope {type, data} sent to every client

Architecture:

	┌──────────┐
	│   Hub    │ ← BroadcastEvent / BroadcastStatus
	└────┬─────┘
	     │
	┌────┴─────┬─────────┬─────────┐
	│ Client1  │ Client2 │ Client3 │
	└──────────┴─────────┴─────────┘

Each client runs two goroutines: readPump answers ping/pong keepalive and
detects a dead socket; writePump drains the client's send channel and owns
the connection's only writer.

Message Types:

  - event: a raw eventbus.Event as {subsystem, kind, data}; internal/httpapi
    sets subsystem to the constant "event" and kind to the event's Kind, so
    no per-subsystem tag is sent
  - status: a PlayerStatus snapshot (same shape the "status" MPD command
    returns, so a dashboard can render a live view without polling)
  - ping / pong: client keepalive, answered by readPump

Usage Example - Server:

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)

	// mirror the event bus, once, for the hub's lifetime
	sub, _ := bus.Subscribe(ctx, "companion-ws")
	for ev := range sub {
	    hub.BroadcastEvent("event", string(ev.Kind), ev.Payload)
	}

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
	    conn, _ := upgrader.Upgrade(w, r, nil)
	    client := websocket.NewClient(hub, conn)
	    hub.Register <- client
	    client.Start()
	})

Usage Example - Client (JavaScript):

	const ws = new WebSocket('ws://localhost:3857/ws');
	ws.onmessage = (ev) => {
	    const msg = JSON.parse(ev.data);
	    if (msg.type === 'event') {
	        console.log(`event: ${msg.data.kind}`);
	    }
	    if (msg.type === 'status') {
	        renderStatus(msg.data);
	    }
	};

Connection Lifecycle:

 1. Client connects via HTTP upgrade at /ws
 2. Hub registers the client
 3. Client's read/write goroutines start
 4. Hub broadcasts events and status snapshots to every registered client
 5. Client disconnects (network error or explicit close)
 6. readPump notices and unregisters the client; the hub closes its channel

Thread Safety:

Hub guards its client map with a mutex; each client's own goroutines never
touch another client's state. broadcastToClients iterates clients in
ID-sorted order rather than Go's randomized map order, so broadcast
ordering is reproducible across runs for the same registration sequence.

Configuration:

  - writeWait: 10 seconds (time allowed to write a message)
  - pongWait: 60 seconds (time allowed to read a pong before the
    connection is considered dead)
  - pingPeriod: 54 seconds (9/10 of pongWait, so a ping always lands
    before the read deadline expires)
  - maxMessageSize: 512 KB

See Also:

  - github.com/gorilla/websocket: underlying WebSocket library
  - internal/httpapi: registers the /ws route and owns the upgrader
  - internal/eventbus: the source of every event mirrored here
*/
package websocket
