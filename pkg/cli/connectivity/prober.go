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
	"context"
	"net"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/pkg/errors"
)

const (
	// DefaultProbeInterval is how often the server is probed
	DefaultProbeInterval = 30 * time.Second
	// DefaultDialTimeout bounds a single probe
	DefaultDialTimeout = 5 * time.Second
)

// DialFunc opens a connection. net.Dialer.DialContext satisfies it.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// EventSource subscribes to changes of the host's network state. The returned
// channel receives a value after one or more changes and is closed when the
// subscription ends or ctx is done.
type EventSource func(ctx context.Context) (<-chan struct{}, error)

// Prober feeds a monitor by opening a TCP connection to the API host
type Prober struct {
	monitor  *Monitor
	address  string
	interval atomic.Int64
	timeout  time.Duration
	dial     DialFunc
	events   EventSource
}

// HostPort returns the host:port to dial for an API endpoint
func HostPort(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Wrapf(err, "parsing endpoint %s", endpoint)
	}
	if u.Hostname() == "" {
		return "", errors.Errorf("endpoint %s has no host", endpoint)
	}

	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		case "http":
			port = "80"
		default:
			return "", errors.Errorf("unsupported scheme '%s'", u.Scheme)
		}
	}

	return net.JoinHostPort(u.Hostname(), port), nil
}

// NewProber returns a prober for the host of the given API endpoint
func NewProber(m *Monitor, endpoint string, interval, timeout time.Duration) (*Prober, error) {
	address, err := HostPort(endpoint)
	if err != nil {
		return nil, err
	}

	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	d := &net.Dialer{}

	p := &Prober{
		monitor: m,
		address: address,
		timeout: timeout,
		dial:    d.DialContext,
		events:  NetworkEvents,
	}
	p.interval.Store(int64(interval))

	return p, nil
}

// SetInterval changes the probe interval. It takes effect after the next probe.
func (p *Prober) SetInterval(d time.Duration) {
	if d > 0 {
		p.interval.Store(int64(d))
	}
}

// Probe dials the server once and records the result on the monitor
func (p *Prober) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ok := true
	conn, err := p.dial(ctx, "tcp", p.address)
	if err != nil {
		ok = false
	} else {
		conn.Close()
	}

	if p.monitor.Set(ok) {
		if ok {
			log.Debug("%s is reachable\n", p.address)
		} else {
			log.Debug("%s is unreachable: %v\n", p.address, err)
		}
	}

	return ok
}

// SetEvents replaces the source of network change events. A nil source
// leaves only the interval probe.
func (p *Prober) SetEvents(src EventSource) {
	p.events = src
}

func (p *Prober) subscribe(ctx context.Context) <-chan struct{} {
	if p.events == nil {
		return nil
	}

	ch, err := p.events(ctx)
	if err != nil {
		log.Debug("not watching network changes: %v\n", err)
		return nil
	}

	return ch
}

// Run probes immediately, then whenever the network state changes, and on
// every interval until ctx is done
func (p *Prober) Run(ctx context.Context) error {
	events := p.subscribe(ctx)

	for {
		p.Probe(ctx)

		t := time.NewTimer(time.Duration(p.interval.Load()))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		case _, ok := <-events:
			t.Stop()
			if !ok {
				log.Debug("network change subscription ended\n")
				events = nil
			}
		}
	}
}
