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

package connectivity

import (
	"sync"
	"testing"
	"time"

	"github.com/dnote/memosync/pkg/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorSet(t *testing.T) {
	m := NewMonitor(false)

	assert.Equal(t, m.Set(false), false, "same state should not be a change")
	assert.Equal(t, m.Set(true), true, "transition should be a change")
	assert.Equal(t, m.IsConnected(), true, "state mismatch")
	assert.Equal(t, m.Set(true), false, "same state should not be a change")
}

func TestMonitorSubscribe(t *testing.T) {
	m := NewMonitor(false)

	ch, cancel := m.Subscribe()
	defer cancel()

	assert.Equal(t, <-ch, false, "should receive the current state first")

	m.Set(true)
	assert.Equal(t, <-ch, true, "should receive the change")

	// unread values are replaced by the latest one
	m.Set(false)
	m.Set(true)
	m.Set(false)
	assert.Equal(t, <-ch, false, "should receive the latest state")

	select {
	case v := <-ch:
		t.Fatalf("unexpected value %v", v)
	default:
	}
}

func TestMonitorUnsubscribe(t *testing.T) {
	m := NewMonitor(true)

	ch, cancel := m.Subscribe()
	<-ch
	cancel()
	cancel()

	_, open := <-ch
	assert.Equal(t, open, false, "channel should be closed")

	// publishing after unsubscribing must not panic
	m.Set(false)
}

func TestMonitorConcurrent(t *testing.T) {
	m := NewMonitor(false)

	ch, cancel := m.Subscribe()
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Set((i+j)%2 == 0)
			}
		}(i)
	}
	wg.Wait()
	m.Set(true)

	require.Eventually(t, func() bool {
		select {
		case v := <-ch:
			return v
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond, "subscriber should converge on the latest state")
}
