// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package mount implements the `mount`/`unmount`/`listmounts` commands
// against a pluggable MountBackend, wrapping every backend call in a
// circuit breaker so a wedged network share (NFS hang, dead SMB server)
// cannot wedge the command dispatcher, per spec.md §6 and §4.13.
package mount

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rmpd/rmpd/internal/logging"
	"github.com/rmpd/rmpd/internal/metrics"
	"github.com/rmpd/rmpd/internal/rmpderr"
)

// Backend is the external collaborator that performs the actual mount
// syscalls (NFS, SMB, WebDAV, whatever the host supports). rmpd never
// invokes mount(2)/umount(2) itself; it only manages the MountPoint
// bookkeeping and the resilience wrapper around Backend calls.
type Backend interface {
	Mount(ctx context.Context, uri, mountpoint string, options map[string]string) error
	Unmount(ctx context.Context, mountpoint string) error
	IsMounted(ctx context.Context, mountpoint string) (bool, error)
}

// Point describes one mounted (or pending) virtual path.
type Point struct {
	VirtualPath string
	SourceURI   string
	Protocol    string
	Mounted     bool
	MountedAt   time.Time
}

// Manager tracks mount points and brokers every backend call through a
// circuit breaker.
type Manager struct {
	backend Backend
	cb      *gobreaker.CircuitBreaker[interface{}]
	name    string

	mu     sync.Mutex
	points map[string]*Point
}

// NewManager wires backend behind a circuit breaker configured the way the
// teacher configures its API client breaker: half-open concurrency of 3, a
// 1 minute closed-state measurement window, a 2 minute open-state timeout,
// and a trip threshold of 60% failures over at least 10 requests.
func NewManager(backend Backend) *Manager {
	const name = "mount-backend"

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("mount backend circuit breaker opening")
			}
			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("mount backend circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &Manager{
		backend: backend,
		cb:      cb,
		name:    name,
		points:  make(map[string]*Point),
	}
}

// execute wraps a backend call, recording circuit breaker metrics exactly
// as the teacher's execute() wrapper does.
func (m *Manager) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := m.cb.Execute(func() (interface{}, error) {
		return fn()
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(m.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("mount backend request rejected by circuit breaker")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(m.name, "failure").Inc()
			counts := m.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(m.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(m.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(m.name).Set(0)
	return result, nil
}

// Mount attaches sourceURI at virtualPath. The protocol is parsed from the
// URI scheme and recorded on the resulting MountPoint.
func (m *Manager) Mount(ctx context.Context, virtualPath, sourceURI string, options map[string]string) error {
	m.mu.Lock()
	if _, exists := m.points[virtualPath]; exists {
		m.mu.Unlock()
		return rmpderr.Newf(rmpderr.Exists, "already mounted: %q", virtualPath)
	}
	m.mu.Unlock()

	u, err := url.Parse(sourceURI)
	if err != nil {
		return rmpderr.Wrap(rmpderr.Argument, err)
	}

	_, err = m.execute(func() (interface{}, error) {
		return nil, m.backend.Mount(ctx, sourceURI, virtualPath, options)
	})
	if err != nil {
		return rmpderr.Wrap(rmpderr.Storage, err)
	}

	m.mu.Lock()
	m.points[virtualPath] = &Point{
		VirtualPath: virtualPath,
		SourceURI:   sourceURI,
		Protocol:    u.Scheme,
		Mounted:     true,
		MountedAt:   time.Now(),
	}
	m.mu.Unlock()
	return nil
}

// Unmount detaches the mount at virtualPath.
func (m *Manager) Unmount(ctx context.Context, virtualPath string) error {
	m.mu.Lock()
	if _, exists := m.points[virtualPath]; !exists {
		m.mu.Unlock()
		return rmpderr.Newf(rmpderr.NotExists, "no such mount: %q", virtualPath)
	}
	m.mu.Unlock()

	_, err := m.execute(func() (interface{}, error) {
		return nil, m.backend.Unmount(ctx, virtualPath)
	})
	if err != nil {
		return rmpderr.Wrap(rmpderr.Storage, err)
	}

	m.mu.Lock()
	delete(m.points, virtualPath)
	m.mu.Unlock()
	return nil
}

// List returns every tracked mount point, sorted by virtual path.
func (m *Manager) List() []Point {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Point, 0, len(m.points))
	for _, p := range m.points {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VirtualPath < out[j].VirtualPath })
	return out
}

// Refresh re-queries the backend's mounted state for every tracked point,
// useful after a suspected stale mount (e.g. a network share that dropped
// without an unmount call). A backend error for one point does not abort
// the refresh of the others.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	paths := make([]string, 0, len(m.points))
	for p := range m.points {
		paths = append(paths, p)
	}
	m.mu.Unlock()

	var errs []error
	for _, path := range paths {
		result, err := m.execute(func() (interface{}, error) {
			return m.backend.IsMounted(ctx, path)
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		mounted, _ := result.(bool)

		m.mu.Lock()
		if p, ok := m.points[path]; ok {
			p.Mounted = mounted
		}
		m.mu.Unlock()
	}
	return errors.Join(errs...)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
