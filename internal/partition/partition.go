// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package partition maintains the name -> Partition map behind the
// `partition`/`newpartition`/`delpartition`/`moveoutput` commands, per
// spec.md §4.13.
package partition

import (
	"sort"
	"strings"
	"sync"

	"github.com/rmpd/rmpd/internal/broker"
	"github.com/rmpd/rmpd/internal/queue"
	"github.com/rmpd/rmpd/internal/rmpderr"
)

// DefaultName is the partition every connection starts in.
const DefaultName = "default"

// Partition groups a queue, message broker, and output assignment under
// one name. The playback engine itself is not owned here: each partition
// references the engine/advancer wiring assembled by the caller.
type Partition struct {
	Name    string
	Queue   *queue.Queue
	Broker  *broker.Broker
	Outputs []string // output ids assigned to this partition
}

// Manager owns every partition in the daemon.
type Manager struct {
	mu         sync.Mutex
	partitions map[string]*Partition
}

// NewManager returns a Manager seeded with the default partition.
func NewManager() *Manager {
	m := &Manager{partitions: make(map[string]*Partition)}
	m.partitions[DefaultName] = &Partition{Name: DefaultName, Queue: queue.New(), Broker: broker.New()}
	return m
}

// Get returns the named partition.
func (m *Manager) Get(name string) (*Partition, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partitions[name]
	return p, ok
}

// List returns every partition name, sorted, with default first.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.partitions))
	for name := range m.partitions {
		if name != DefaultName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{DefaultName}, names...)
}

// NewPartition creates an empty partition. Fails if name already exists,
// is empty, or contains a slash.
func (m *Manager) NewPartition(name string) error {
	if name == "" {
		return rmpderr.New(rmpderr.Argument, "partition name must not be empty")
	}
	if strings.Contains(name, "/") {
		return rmpderr.New(rmpderr.Argument, "partition name must not contain '/'")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.partitions[name]; ok {
		return rmpderr.Newf(rmpderr.Exists, "partition already exists: %q", name)
	}
	m.partitions[name] = &Partition{Name: name, Queue: queue.New(), Broker: broker.New()}
	return nil
}

// DeletePartition removes a partition. Fails for the default partition or
// a name that does not exist.
func (m *Manager) DeletePartition(name string) error {
	if name == DefaultName {
		return rmpderr.New(rmpderr.Argument, "cannot delete the default partition")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.partitions[name]; !ok {
		return rmpderr.Newf(rmpderr.NotExists, "no such partition: %q", name)
	}
	delete(m.partitions, name)
	return nil
}

// MoveOutput atomically reassigns outputID from one partition's output
// list to another's.
func (m *Manager) MoveOutput(outputID, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.partitions[from]
	if !ok {
		return rmpderr.Newf(rmpderr.NotExists, "no such partition: %q", from)
	}
	dst, ok := m.partitions[to]
	if !ok {
		return rmpderr.Newf(rmpderr.NotExists, "no such partition: %q", to)
	}

	idx := -1
	for i, id := range src.Outputs {
		if id == outputID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return rmpderr.Newf(rmpderr.NotExists, "output %q not assigned to partition %q", outputID, from)
	}

	src.Outputs = append(src.Outputs[:idx], src.Outputs[idx+1:]...)
	dst.Outputs = append(dst.Outputs, outputID)
	return nil
}
