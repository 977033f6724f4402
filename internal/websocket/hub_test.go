// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package websocket

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rmpd/rmpd/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

func setupHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.RunWithContext(ctx) }()
	time.Sleep(10 * time.Millisecond)
	return hub, cancel
}

func createTestClient(hub *Hub) *Client {
	return &Client{hub: hub, conn: nil, send: make(chan Message, 256)}
}

func registerClient(hub *Hub, client *Client) {
	hub.Register <- client
	time.Sleep(20 * time.Millisecond)
}

func TestNewHub(t *testing.T) {
	hub := NewHub()
	if hub == nil {
		t.Fatal("NewHub returned nil")
	}
	if hub.clients == nil || hub.broadcast == nil || hub.Register == nil || hub.Unregister == nil {
		t.Fatal("hub channels/maps not initialized")
	}
	if len(hub.clients) != 0 {
		t.Error("clients map should be empty")
	}
}

func TestHub_GetClientCount(t *testing.T) {
	hub := NewHub()
	if hub.GetClientCount() != 0 {
		t.Errorf("expected 0 clients initially, got %d", hub.GetClientCount())
	}
	for i := 0; i < 5; i++ {
		hub.clients[createTestClient(hub)] = true
	}
	if hub.GetClientCount() != 5 {
		t.Errorf("expected 5 clients, got %d", hub.GetClientCount())
	}
}

func TestHub_BroadcastEventAndStatus(t *testing.T) {
	hub, cancel := setupHub(t)
	defer cancel()
	client := createTestClient(hub)
	registerClient(hub, client)

	hub.BroadcastEvent("player", "PlayerStateChanged", map[string]string{"state": "play"})
	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeEvent {
			t.Errorf("type = %q, want %q", msg.Type, MessageTypeEvent)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timed out waiting for event broadcast")
	}

	hub.BroadcastStatus(map[string]int{"volume": 50})
	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeStatus {
			t.Errorf("type = %q, want %q", msg.Type, MessageTypeStatus)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timed out waiting for status broadcast")
	}
}

func TestHub_ClientRegistration(t *testing.T) {
	hub, cancel := setupHub(t)
	defer cancel()
	client := createTestClient(hub)
	registerClient(hub, client)

	if hub.GetClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", hub.GetClientCount())
	}

	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)
	if hub.GetClientCount() != 0 {
		t.Errorf("expected 0 clients after unregister, got %d", hub.GetClientCount())
	}
}

func TestHub_UnregisterNonExistentClient(t *testing.T) {
	hub, cancel := setupHub(t)
	defer cancel()
	client := createTestClient(hub)

	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)
	if hub.GetClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.GetClientCount())
	}
}

func TestHub_BroadcastToClients(t *testing.T) {
	hub, cancel := setupHub(t)
	defer cancel()

	const numClients = 3
	clients := make([]*Client, numClients)
	var mu sync.Mutex
	received := make([]bool, numClients)
	var wg sync.WaitGroup

	for i := 0; i < numClients; i++ {
		clients[i] = createTestClient(hub)
		registerClient(hub, clients[i])
	}
	if hub.GetClientCount() != numClients {
		t.Fatalf("expected %d clients, got %d", numClients, hub.GetClientCount())
	}

	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(idx int, c *Client) {
			defer wg.Done()
			select {
			case msg := <-c.send:
				if msg.Type == MessageTypeStatus {
					mu.Lock()
					received[idx] = true
					mu.Unlock()
				}
			case <-time.After(500 * time.Millisecond):
			}
		}(i, clients[i])
	}

	time.Sleep(20 * time.Millisecond)
	hub.BroadcastStatus(map[string]string{"message": "hello"})
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i, r := range received {
		if !r {
			t.Errorf("client %d did not receive broadcast", i)
		}
	}
}

func TestMarshalMessage(t *testing.T) {
	tests := []struct {
		name    string
		message Message
	}{
		{"simple message", Message{Type: "ping", Data: nil}},
		{"string data", Message{Type: "test", Data: "hello world"}},
		{"map data", Message{Type: MessageTypeStatus, Data: map[string]interface{}{"count": 42}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalMessage(tt.message)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(data) == 0 || data[0] != '{' || data[len(data)-1] != '}' {
				t.Error("invalid JSON output")
			}
		})
	}
}

func TestHub_BroadcastToFullClient(t *testing.T) {
	hub, cancel := setupHub(t)
	defer cancel()

	client := &Client{hub: hub, conn: nil, send: make(chan Message, 1)}
	registerClient(hub, client)
	client.send <- Message{Type: "filler", Data: nil}

	hub.BroadcastStatus(map[string]string{"overflow": "test"})

	var clientCount int
	for i := 0; i < 10; i++ {
		time.Sleep(20 * time.Millisecond)
		clientCount = hub.GetClientCount()
		if clientCount == 0 {
			break
		}
	}
	if clientCount != 0 {
		t.Errorf("expected 0 clients after overflow handling, got %d", clientCount)
	}
}

func TestHub_RunWithContext(t *testing.T) {
	t.Run("shuts down on context cancellation", func(t *testing.T) {
		oldLevel := zerolog.GlobalLevel()
		zerolog.SetGlobalLevel(zerolog.Disabled)
		defer zerolog.SetGlobalLevel(oldLevel)

		hub := NewHub()
		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() { errCh <- hub.RunWithContext(ctx) }()
		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Error("RunWithContext did not return after context cancellation")
		}
	})

	t.Run("shuts down on context deadline", func(t *testing.T) {
		oldLevel := zerolog.GlobalLevel()
		zerolog.SetGlobalLevel(zerolog.Disabled)
		defer zerolog.SetGlobalLevel(oldLevel)

		hub := NewHub()
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		errCh := make(chan error, 1)
		go func() { errCh <- hub.RunWithContext(ctx) }()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("expected context.DeadlineExceeded, got %v", err)
			}
		case <-time.After(time.Second):
			t.Error("RunWithContext did not return after deadline")
		}
	})

	t.Run("closes all clients on shutdown", func(t *testing.T) {
		oldLevel := zerolog.GlobalLevel()
		zerolog.SetGlobalLevel(zerolog.Disabled)
		defer zerolog.SetGlobalLevel(oldLevel)

		hub := NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- hub.RunWithContext(ctx) }()

		clients := make([]*Client, 3)
		for i := 0; i < 3; i++ {
			clients[i] = createTestClient(hub)
			hub.Register <- clients[i]
		}

		var clientCount int
		for i := 0; i < 10; i++ {
			time.Sleep(20 * time.Millisecond)
			clientCount = hub.GetClientCount()
			if clientCount == 3 {
				break
			}
		}
		if clientCount != 3 {
			t.Fatalf("expected 3 clients, got %d", clientCount)
		}

		cancel()
		select {
		case <-errCh:
		case <-time.After(time.Second):
			t.Fatal("RunWithContext did not return after context cancellation")
		}
		if hub.GetClientCount() != 0 {
			t.Errorf("expected 0 clients after shutdown, got %d", hub.GetClientCount())
		}
	})
}

func TestGetShutdownReason(t *testing.T) {
	tests := []struct {
		name     string
		setupCtx func() context.Context
		expected ShutdownReason
	}{
		{
			name: "context canceled returns context_canceled",
			setupCtx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			expected: ShutdownReasonContextCanceled,
		},
		{
			name: "context deadline exceeded returns context_deadline",
			setupCtx: func() context.Context {
				ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
				defer cancel()
				time.Sleep(10 * time.Millisecond)
				return ctx
			},
			expected: ShutdownReasonContextDeadline,
		},
		{
			name:     "active context has no error (edge case)",
			setupCtx: func() context.Context { return context.Background() },
			expected: ShutdownReasonContextCanceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := getShutdownReason(tt.setupCtx())
			if got != tt.expected {
				t.Errorf("getShutdownReason() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestHub_CloseAllClients(t *testing.T) {
	hub := NewHub()
	for i := 0; i < 5; i++ {
		client := createTestClient(hub)
		hub.mu.Lock()
		hub.clients[client] = true
		hub.mu.Unlock()
	}
	if hub.GetClientCount() != 5 {
		t.Fatalf("expected 5 clients, got %d", hub.GetClientCount())
	}

	oldLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.Disabled)
	hub.closeAllClients()
	zerolog.SetGlobalLevel(oldLevel)

	if hub.GetClientCount() != 0 {
		t.Errorf("expected 0 clients after closeAllClients, got %d", hub.GetClientCount())
	}
}

func BenchmarkHub_BroadcastStatus(b *testing.B) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.RunWithContext(ctx) }()
	time.Sleep(10 * time.Millisecond)

	for i := 0; i < 10; i++ {
		client := createTestClient(hub)
		hub.Register <- client
		go func(c *Client) {
			for range c.send {
			}
		}(client)
	}
	time.Sleep(100 * time.Millisecond)

	testData := map[string]interface{}{"test": "data", "count": 42}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hub.BroadcastStatus(testData)
	}
}
