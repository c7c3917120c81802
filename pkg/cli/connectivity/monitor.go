/* Copyright 2025 Dnote Authors
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
 */

// Package connectivity tracks whether the server can be reached
package connectivity

import (
	"sync"
)

// Monitor holds the current connectivity and pushes its changes to subscribers
type Monitor struct {
	mu        sync.Mutex
	connected bool
	subs      map[int]chan bool
	nextID    int
}

// NewMonitor returns a monitor starting in the given state
func NewMonitor(connected bool) *Monitor {
	return &Monitor{
		connected: connected,
		subs:      map[int]chan bool{},
	}
}

// IsConnected returns the current state
func (m *Monitor) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.connected
}

// Set records the current state and notifies the subscribers if it changed.
// It reports whether the state changed.
func (m *Monitor) Set(connected bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected == connected {
		return false
	}
	m.connected = connected

	for _, ch := range m.subs {
		publish(ch, connected)
	}

	return true
}

// publish replaces whatever value the subscriber has not read yet
func publish(ch chan bool, v bool) {
	select {
	case <-ch:
	default:
	}

	select {
	case ch <- v:
	default:
	}
}

// Subscribe returns a channel that first receives the current state and then
// every change. A slow reader only sees the latest state. The returned
// function unsubscribes and closes the channel.
func (m *Monitor) Subscribe() (<-chan bool, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++

	ch := make(chan bool, 1)
	ch <- m.connected
	m.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()

			delete(m.subs, id)
			close(ch)
		})
	}

	return ch, cancel
}

// notify sends a value unless one is already pending
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
