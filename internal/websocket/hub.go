// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/rmpd/rmpd/internal/logging"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types mirrored to the companion dashboard. These are NOT part of
// the MPD wire protocol; they shadow event-bus traffic for a browser client.
const (
	MessageTypeEvent  = "event"  // a raw eventbus.Event, subsystem-tagged
	MessageTypeStatus = "status" // a PlayerStatus snapshot
	MessageTypePing   = "ping"
	MessageTypePong   = "pong"
)

// Message represents a WebSocket message sent to companion clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active companion-dashboard clients and mirrors
// event-bus traffic to them. It never receives commands back from clients
// that mutate player state; it is read-only observability.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext starts the hub with context support for graceful shutdown,
// designed for use with suture supervision.
//
// DETERMINISM: uses priority-based selection so client lifecycle events are
// always processed ahead of broadcasts, keeping client state consistent
// before a message fan-out is attempted.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	logging.Info().Int("total_clients", h.GetClientCount()).Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
	logging.Info().Int("total_clients", h.GetClientCount()).Msg("websocket client disconnected")
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()
	reason := getShutdownReason(ctx)
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// broadcastToClients sends a message to all connected clients in a
// deterministic (ID-sorted) order, dropping clients whose send buffer is full.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}
	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	logging.Info().Msg("closed all websocket clients during shutdown")
}

// BroadcastEvent mirrors an event-bus event to every connected dashboard
// client. It never blocks; a full broadcast buffer drops the message.
func (h *Hub) BroadcastEvent(subsystem string, kind string, data interface{}) {
	message := Message{
		Type: MessageTypeEvent,
		Data: struct {
			Subsystem string      `json:"subsystem"`
			Kind      string      `json:"kind"`
			Data      interface{} `json:"data"`
		}{Subsystem: subsystem, Kind: kind, Data: data},
	}
	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("kind", kind).Msg("broadcast channel full, dropping event")
	}
}

// BroadcastStatus mirrors a PlayerStatus snapshot to connected clients.
func (h *Hub) BroadcastStatus(status interface{}) {
	message := Message{Type: MessageTypeStatus, Data: status}
	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Msg("broadcast channel full, dropping status")
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
