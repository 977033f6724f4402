// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package output tracks the audio outputs (sink bindings) a connection can
// enable, disable, or reconfigure via `outputs`/`enableoutput`/
// `outputset`, per spec.md §4.13's outputs/partitions surface.
package output

import (
	"sort"
	"sync"

	"github.com/rmpd/rmpd/internal/rmpderr"
)

// Output is one configured audio sink. rmpd opens exactly one sink per
// partition today, so Enabled gates whether the partition's engine writes
// to it at all; Attributes holds sink-specific tuning (e.g. "allowed_formats").
type Output struct {
	ID         string
	Name       string
	Plugin     string
	Enabled    bool
	Attributes map[string]string
}

// Manager owns the closed set of configured outputs.
type Manager struct {
	mu      sync.Mutex
	outputs map[string]*Output
	order   []string
}

// NewManager returns a Manager seeded with the given outputs, all enabled.
func NewManager(outputs []Output) *Manager {
	m := &Manager{outputs: make(map[string]*Output, len(outputs))}
	for _, o := range outputs {
		cp := o
		cp.Enabled = true
		if cp.Attributes == nil {
			cp.Attributes = make(map[string]string)
		}
		m.outputs[o.ID] = &cp
		m.order = append(m.order, o.ID)
	}
	return m
}

// List returns every output in configuration order.
func (m *Manager) List() []Output {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Output, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.outputs[id])
	}
	return out
}

func (m *Manager) setEnabled(id string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outputs[id]
	if !ok {
		return rmpderr.Newf(rmpderr.NotExists, "no such output: %q", id)
	}
	o.Enabled = enabled
	return nil
}

// Enable turns an output on.
func (m *Manager) Enable(id string) error { return m.setEnabled(id, true) }

// Disable turns an output off.
func (m *Manager) Disable(id string) error { return m.setEnabled(id, false) }

// Toggle flips an output's enabled state.
func (m *Manager) Toggle(id string) error {
	m.mu.Lock()
	o, ok := m.outputs[id]
	if !ok {
		m.mu.Unlock()
		return rmpderr.Newf(rmpderr.NotExists, "no such output: %q", id)
	}
	enabled := !o.Enabled
	m.mu.Unlock()
	return m.setEnabled(id, enabled)
}

// SetAttribute sets a sink-specific tuning attribute on an output.
func (m *Manager) SetAttribute(id, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outputs[id]
	if !ok {
		return rmpderr.Newf(rmpderr.NotExists, "no such output: %q", id)
	}
	o.Attributes[name] = value
	return nil
}

// IDs returns every configured output id, sorted.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.outputs))
	for id := range m.outputs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
