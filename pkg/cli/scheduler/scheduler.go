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

// Package scheduler decides when a sync pass runs. It serializes startup,
// periodic, on-demand, reconnect and retry triggers onto a single worker.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/dnote/memosync/pkg/cli/connectivity"
	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/dnote/memosync/pkg/clock"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
)

// Default timings
const (
	DefaultInterval       = 15 * time.Minute
	DefaultInitialBackoff = 15 * time.Minute
	DefaultMaxBackoff     = 5 * time.Hour
	DefaultRunTimeout     = 5 * time.Minute
)

// ErrInvalidInterval is returned when a periodic schedule is requested with
// a non-positive interval
var ErrInvalidInterval = errors.New("interval must be positive")

// Runner performs one sync pass
type Runner func(ctx context.Context) error

// Trigger names the reason a pass was requested
type Trigger string

const (
	// TriggerStartup is requested once by Start
	TriggerStartup Trigger = "startup"
	// TriggerPeriodic is requested by the periodic schedule
	TriggerPeriodic Trigger = "periodic"
	// TriggerManual is requested by SyncNow
	TriggerManual Trigger = "manual"
	// TriggerReconnect is requested when connectivity comes back
	TriggerReconnect Trigger = "reconnect"
	// TriggerRetry is requested by the backoff timer after a failed pass
	TriggerRetry Trigger = "retry"
)

// Config holds the scheduling policy
type Config struct {
	Interval       time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	RunTimeout     time.Duration
	RequireNetwork bool
}

// DefaultConfig returns the default policy
func DefaultConfig() Config {
	return Config{
		Interval:       DefaultInterval,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
		RunTimeout:     DefaultRunTimeout,
		RequireNetwork: true,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = d.InitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = d.MaxBackoff
	}
	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = c.InitialBackoff
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = d.RunTimeout
	}
	return c
}

// Backoff returns the delay before the retry that follows the given number of
// consecutive failures.
func (c Config) Backoff(failures int) time.Duration {
	if failures <= 0 {
		return 0
	}

	d := c.InitialBackoff
	for i := 1; i < failures; i++ {
		if d >= c.MaxBackoff/2 {
			return c.MaxBackoff
		}
		d *= 2
	}
	if d > c.MaxBackoff {
		return c.MaxBackoff
	}

	return d
}

// Status is a snapshot of the scheduler state
type Status struct {
	Running             bool
	InFlight            bool
	Periodic            bool
	Deferred            bool
	Runs                int
	LastTrigger         Trigger
	LastRunAt           time.Time
	LastSuccessAt       time.Time
	LastError           string
	ConsecutiveFailures int
	NextRetryAt         time.Time
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock sets the clock used for status timestamps
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// Scheduler runs sync passes one at a time
type Scheduler struct {
	runner   Runner
	monitor  *connectivity.Monitor
	clock    clock.Clock
	requests chan Trigger

	// enqueueMu serializes writers of the request slot
	enqueueMu sync.Mutex

	mu         sync.Mutex
	cfg        Config
	cron       *cron.Cron
	retryTimer *time.Timer
	cancel     context.CancelFunc
	status     Status
	wg         sync.WaitGroup
}

// New returns a scheduler. A nil monitor is treated as always online.
func New(runner Runner, monitor *connectivity.Monitor, cfg Config, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner:   runner,
		monitor:  monitor,
		clock:    clock.New(),
		requests: make(chan Trigger, 1),
		cfg:      cfg.withDefaults(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start launches the worker and requests the startup pass. Calling Start on a
// running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.status.Running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.status.Running = true
	s.mu.Unlock()

	online := s.online()
	var updates <-chan bool
	unsubscribe := func() {}
	if s.monitor != nil {
		updates, unsubscribe = s.monitor.Subscribe()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer unsubscribe()
		s.loop(ctx, updates, online)
	}()

	s.enqueue(TriggerStartup)
	log.Debug("scheduler started\n")
}

// Stop cancels the periodic schedule and any armed retry, then waits for an
// in-flight pass to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.status.Running {
		s.mu.Unlock()
		return
	}
	s.status.Running = false
	s.stopPeriodicLocked()
	s.stopRetryLocked()
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	log.Debug("scheduler stopped\n")
}

// SchedulePeriodic registers the periodic pass. It returns false if a
// schedule already exists, leaving the existing one in place.
func (s *Scheduler) SchedulePeriodic() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return false, nil
	}
	if err := s.startPeriodicLocked(); err != nil {
		return false, err
	}

	return true, nil
}

func (s *Scheduler) startPeriodicLocked() error {
	if s.cfg.Interval <= 0 {
		return ErrInvalidInterval
	}

	c := cron.New()
	c.Schedule(cron.Every(s.cfg.Interval), cron.FuncJob(func() {
		s.enqueue(TriggerPeriodic)
	}))
	c.Start()

	s.cron = c
	s.status.Periodic = true
	return nil
}

func (s *Scheduler) stopPeriodicLocked() {
	if s.cron == nil {
		return
	}

	s.cron.Stop()
	s.cron = nil
	s.status.Periodic = false
}

// CancelPeriodic removes the periodic schedule
func (s *Scheduler) CancelPeriodic() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopPeriodicLocked()
}

// SyncNow requests a one-off pass. It coalesces with a request that has not
// been picked up yet and is not displaced by later periodic or retry requests.
func (s *Scheduler) SyncNow() {
	s.enqueue(TriggerManual)
}

// Reconfigure replaces the policy. An existing periodic schedule is
// re-registered when the interval changes.
func (s *Scheduler) Reconfigure(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg = cfg.withDefaults()
	prev := s.cfg
	s.cfg = cfg

	if s.cron != nil && prev.Interval != cfg.Interval {
		s.stopPeriodicLocked()
		if err := s.startPeriodicLocked(); err != nil {
			return errors.Wrap(err, "rescheduling periodic sync")
		}
	}

	return nil
}

// Status returns a snapshot of the scheduler state
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

// enqueue puts t into the single request slot. Requests waiting together
// coalesce into one pass; a waiting manual request keeps its trigger so the
// pass is still reported as manual.
func (s *Scheduler) enqueue(t Trigger) {
	s.enqueueMu.Lock()
	defer s.enqueueMu.Unlock()

	select {
	case pending := <-s.requests:
		if pending == TriggerManual {
			t = TriggerManual
		}
	default:
	}

	// the worker only receives, so the slot is free here
	s.requests <- t
}

func (s *Scheduler) online() bool {
	return s.monitor == nil || s.monitor.IsConnected()
}

func (s *Scheduler) loop(ctx context.Context, updates <-chan bool, wasOnline bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}

			reconnected := !wasOnline && v
			wasOnline = v

			if reconnected {
				log.Debug("connectivity restored\n")
				s.mu.Lock()
				s.status.Deferred = false
				s.mu.Unlock()
				s.enqueue(TriggerReconnect)
			}
		case t := <-s.requests:
			s.mu.Lock()
			requireNetwork := s.cfg.RequireNetwork
			s.mu.Unlock()

			if requireNetwork && !s.online() {
				log.Debug("skipping %s sync while offline\n", t)
				if t == TriggerManual {
					s.mu.Lock()
					s.status.Deferred = true
					s.mu.Unlock()
				}
				continue
			}

			s.run(ctx, t)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, t Trigger) {
	s.mu.Lock()
	timeout := s.cfg.RunTimeout
	s.status.InFlight = true
	s.status.Deferred = false
	s.status.LastTrigger = t
	s.status.LastRunAt = s.clock.Now()
	s.mu.Unlock()

	log.Debug("running %s sync\n", t)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	err := s.runner(runCtx)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.InFlight = false
	s.status.Runs++

	if err == nil {
		s.status.LastSuccessAt = s.clock.Now()
		s.status.LastError = ""
		s.status.ConsecutiveFailures = 0
		s.stopRetryLocked()
		return
	}

	s.status.LastError = err.Error()
	s.status.ConsecutiveFailures++

	// a pass interrupted by Stop is not retried
	if ctx.Err() != nil {
		return
	}

	delay := s.cfg.Backoff(s.status.ConsecutiveFailures)
	s.stopRetryLocked()
	s.retryTimer = time.AfterFunc(delay, func() {
		s.enqueue(TriggerRetry)
	})
	s.status.NextRetryAt = s.clock.Now().Add(delay)

	log.Warnf("sync failed (%d in a row), retrying in %s: %s\n", s.status.ConsecutiveFailures, delay, err.Error())
}

func (s *Scheduler) stopRetryLocked() {
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	s.status.NextRetryAt = time.Time{}
}
