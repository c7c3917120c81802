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

// Package daemon runs the background sync of memosync. It wires the
// connectivity prober, the scheduler, the metrics endpoint and a watcher
// that reloads timing settings when the config file changes.
package daemon

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/dnote/memosync/pkg/cli/config"
	"github.com/dnote/memosync/pkg/cli/connectivity"
	"github.com/dnote/memosync/pkg/cli/consts"
	clictx "github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/cli/infra"
	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/dnote/memosync/pkg/cli/metrics"
	"github.com/dnote/memosync/pkg/cli/scheduler"
	clisync "github.com/dnote/memosync/pkg/cli/sync"
	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultWatchInterval is how often the config file is polled for changes
const DefaultWatchInterval = 5 * time.Second

// Runner performs one sync pass
type Runner func(ctx context.Context) (clisync.Report, error)

// SchedulerConfig maps the config file timings onto a scheduler policy
func SchedulerConfig(t config.Timing) scheduler.Config {
	cfg := scheduler.DefaultConfig()
	cfg.Interval = t.SyncInterval
	cfg.MaxBackoff = t.MaxBackoff

	return cfg
}

// LogPath returns the file the daemon logs to
func LogPath(ctx clictx.MemosyncCtx, cf config.Config) string {
	if cf.LogFile != "" {
		return cf.LogFile
	}

	return filepath.Join(ctx.Paths.Cache, consts.DaemonLogFilename)
}

// OpenLog returns a size-rotated writer for the daemon log
func OpenLog(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

// Daemon is a long running sync process
type Daemon struct {
	configPath    string
	metricsAddr   string
	watchInterval time.Duration

	run      Runner
	monitor  *connectivity.Monitor
	prober   *connectivity.Prober
	sched    *scheduler.Scheduler
	metrics  *metrics.Metrics
	failures int

	onReload func(config.Timing)
}

// New returns a daemon for the given context and configuration
func New(ctx clictx.MemosyncCtx, cf config.Config) (*Daemon, error) {
	m := metrics.New(func() (int, error) {
		return database.CountQueue(ctx.DB)
	})

	engine := infra.NewEngine(ctx, clisync.WithObserver(m.Observe))

	return newDaemon(ctx.APIEndpoint, config.GetPath(ctx), cf, engine.SyncWithServer, m)
}

func newDaemon(endpoint, configPath string, cf config.Config, run Runner, m *metrics.Metrics) (*Daemon, error) {
	timing, err := cf.Timing()
	if err != nil {
		return nil, errors.Wrap(err, "reading timing settings")
	}

	monitor := connectivity.NewMonitor(false)
	prober, err := connectivity.NewProber(monitor, endpoint, timing.ProbeInterval, connectivity.DefaultDialTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "initializing the connectivity prober")
	}

	d := &Daemon{
		configPath:    configPath,
		metricsAddr:   cf.GetMetricsAddr(),
		watchInterval: DefaultWatchInterval,
		run:           run,
		monitor:       monitor,
		prober:        prober,
		metrics:       m,
	}
	d.sched = scheduler.New(d.runPass, monitor, SchedulerConfig(timing))

	return d, nil
}

// runPass adapts a sync pass to the scheduler. Items that failed count as a
// failed pass so that they are retried with backoff.
func (d *Daemon) runPass(ctx context.Context) error {
	r, err := d.run(ctx)
	if err == nil && r.Failed > 0 {
		err = errors.Errorf("%d changes failed to sync", r.Failed)
	}

	if err != nil {
		d.failures++
	} else {
		d.failures = 0
		log.Infof("synced: %s\n", r)
	}
	d.metrics.SetConsecutiveFailures(d.failures)

	return err
}

// Scheduler returns the scheduler driving the passes
func (d *Daemon) Scheduler() *scheduler.Scheduler {
	return d.sched
}

// Run blocks until ctx is done or a component fails
func (d *Daemon) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.prober.Run(gctx)
	})
	g.Go(func() error {
		d.reportConnectivity(gctx)
		return nil
	})
	g.Go(func() error {
		return d.watchConfig(gctx)
	})
	if d.metricsAddr != "" {
		g.Go(func() error {
			return d.metrics.Serve(gctx, d.metricsAddr)
		})
	}

	d.sched.Start(gctx)
	if _, err := d.sched.SchedulePeriodic(); err != nil {
		d.sched.Stop()
		return errors.Wrap(err, "scheduling periodic sync")
	}

	g.Go(func() error {
		<-gctx.Done()
		d.sched.Stop()
		return nil
	})

	log.Infof("daemon started (metrics: %s)\n", d.metricsAddr)

	return g.Wait()
}

func (d *Daemon) reportConnectivity(ctx context.Context) {
	updates, unsubscribe := d.monitor.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case online := <-updates:
			d.metrics.SetOnline(online)
			if online {
				log.Info("server reachable\n")
			} else {
				log.Info("server unreachable\n")
			}
		}
	}
}

func (d *Daemon) watchConfig(ctx context.Context) error {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write, watcher.Create)

	if err := w.Add(d.configPath); err != nil {
		return errors.Wrapf(err, "watching %s", d.configPath)
	}

	startErr := make(chan error, 1)
	go func() {
		startErr <- w.Start(d.watchInterval)
	}()

	for {
		select {
		case <-ctx.Done():
			return closeWatcher(w, startErr)
		case err := <-startErr:
			return errors.Wrap(err, "starting the config watcher")
		case event := <-w.Event:
			log.Debug("config watcher: %s\n", event)
			d.reload()
		case err := <-w.Error:
			log.Warnf("config watcher: %s\n", err.Error())
		}
	}
}

// closeWatcher stops w, draining its channels until the polling loop exits
func closeWatcher(w *watcher.Watcher, startErr <-chan error) error {
	w.Wait()
	go w.Close()

	for {
		select {
		case <-w.Closed:
			return nil
		case err := <-startErr:
			return errors.Wrap(err, "running the config watcher")
		case <-w.Event:
		case <-w.Error:
		}
	}
}

func (d *Daemon) reload() {
	cf, err := config.ReadFile(d.configPath)
	if err != nil {
		log.Warnf("reloading config: %s\n", err.Error())
		return
	}

	t, err := cf.Timing()
	if err != nil {
		log.Warnf("reloading config: %s\n", err.Error())
		return
	}

	if err := d.sched.Reconfigure(SchedulerConfig(t)); err != nil {
		log.Warnf("reloading config: %s\n", err.Error())
		return
	}
	d.prober.SetInterval(t.ProbeInterval)

	log.Infof("reloaded timing: sync every %s, probe every %s\n", t.SyncInterval, t.ProbeInterval)

	if d.onReload != nil {
		d.onReload(t)
	}
}
