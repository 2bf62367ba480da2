/*
 * Copyright (C) 2024 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package store

import (
	"fmt"
	"sync"
)

// Key identifies one observed series: an entity (UE id, or a cell-wide
// aggregate id) together with a metric name.
type Key struct {
	Entity string
	Metric string
}

func (k Key) String() string {
	return k.Entity + "/" + k.Metric
}

// series is a fixed-capacity ring buffer of float64 samples.
// Once full, a new sample evicts the oldest one.
type series struct {
	values []float64
	next   int
	count  int
}

func (s *series) add(v float64) {
	if s.count < len(s.values) {
		s.values[(s.next+s.count)%len(s.values)] = v
		s.count++
		return
	}
	s.values[s.next] = v
	s.next = (s.next + 1) % len(s.values)
}

func (s *series) snapshot() []float64 {
	out := make([]float64, s.count)
	for i := 0; i < s.count; i++ {
		out[i] = s.values[(s.next+i)%len(s.values)]
	}
	return out
}

// MetricStore keeps a bounded window of recent samples per metric key.
// All methods are safe for concurrent use.
type MetricStore struct {
	mu       sync.Mutex
	capacity int
	series   map[Key]*series
}

func NewMetricStore(capacity int) (*MetricStore, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("metric store window size must be positive, got %d", capacity)
	}
	return &MetricStore{
		capacity: capacity,
		series:   make(map[Key]*series),
	}, nil
}

// Update appends value to the window of key, creating the window on first use.
func (m *MetricStore) Update(key Key, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.series[key]
	if !ok {
		s = &series{values: make([]float64, m.capacity)}
		m.series[key] = s
	}
	s.add(value)
}

// History returns the current window for key, oldest first.
// The returned slice is a copy; mutating it does not affect the store.
func (m *MetricStore) History(key Key) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.series[key]
	if !ok {
		return nil
	}
	return s.snapshot()
}

// Last returns at most n most recent samples for key, oldest first.
func (m *MetricStore) Last(key Key, n int) []float64 {
	h := m.History(key)
	if len(h) > n {
		return h[len(h)-n:]
	}
	return h
}

// Size returns the current window length for key, 0 if the key was never seen.
func (m *MetricStore) Size(key Key) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.series[key]
	if !ok {
		return 0
	}
	return s.count
}
