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

// Package sync sends the queued local mutations to the server and reconciles
// the remote notes into the local store
package sync

import (
	"context"
	"sync"

	"github.com/dnote/memosync/pkg/cli/client"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/dnote/memosync/pkg/clock"
	"github.com/pkg/errors"
)

// ErrSyncInProgress is returned when a pass is requested while another one runs
var ErrSyncInProgress = errors.New("sync already in progress")

// NoteStore is the local note storage used by the engine
type NoteStore interface {
	GetNote(localID string) (database.Note, error)
	GetNoteByRemoteName(name string) (database.Note, error)
	SaveNote(n database.Note) error
}

// QueueStore is the local sync queue used by the engine
type QueueStore interface {
	ListQueue() ([]database.QueueItem, error)
	DeleteQueueItem(id int) error
	HasCreateBefore(noteID string, id int) (bool, error)
}

// Gateway is the remote notes API
type Gateway interface {
	ListNotes(ctx context.Context) ([]client.RemoteNote, error)
	CreateNote(ctx context.Context, localID, content string) (client.RemoteNote, error)
	UpdateNote(ctx context.Context, name, content string) (client.RemoteNote, error)
	DeleteNote(ctx context.Context, name string) error
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the clock used for timestamps
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithObserver registers a function that receives the report of every pass
func WithObserver(fn func(Report)) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, fn)
	}
}

// WithIDGenerator sets the function that makes local ids for remote notes
// that are new to this device
func WithIDGenerator(fn func() (string, error)) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// Engine runs sync passes. It runs at most one pass at a time.
type Engine struct {
	notes     NoteStore
	queue     QueueStore
	gw        Gateway
	clock     clock.Clock
	newID     func() (string, error)
	observers []func(Report)

	mu sync.Mutex
}

// New returns a sync engine
func New(notes NoteStore, queue QueueStore, gw Gateway, opts ...Option) *Engine {
	e := &Engine{
		notes: notes,
		queue: queue,
		gw:    gw,
		clock: clock.New(),
		newID: generateID,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// SyncWithServer sends every queued mutation to the server and then merges
// the remote notes into the local store. Items that fail stay queued. An
// error is returned if the queue could not be read, the pass was canceled, or
// the remote notes could not be fetched.
func (e *Engine) SyncWithServer(ctx context.Context) (Report, error) {
	if !e.mu.TryLock() {
		return Report{}, ErrSyncInProgress
	}
	defer e.mu.Unlock()

	r := Report{StartedAt: e.clock.Now()}

	err := e.run(ctx, &r)
	if err != nil {
		r.Err = err.Error()
	}
	r.FinishedAt = e.clock.Now()

	log.Debug("sync finished: %s\n", r)

	for _, fn := range e.observers {
		fn(r)
	}

	return r, err
}

func (e *Engine) run(ctx context.Context, r *Report) error {
	if err := e.drainQueue(ctx, r); err != nil {
		return errors.Wrap(err, "sending changes")
	}

	if err := e.reconcile(ctx, r); err != nil {
		return errors.Wrap(err, "reconciling remote notes")
	}

	return nil
}

func (e *Engine) now() int64 {
	return e.clock.Now().UTC().UnixNano()
}

// drainQueue handles the queue items in the order they were enqueued
func (e *Engine) drainQueue(ctx context.Context, r *Report) error {
	items, err := e.queue.ListQueue()
	if err != nil {
		return errors.Wrap(err, "listing the sync queue")
	}

	log.Debug("%d items in the sync queue\n", len(items))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		a, err := toAction(item)
		if err != nil {
			log.Debug("skipping queue item: %v\n", err)
			r.Failed++
			continue
		}

		outcome, err := e.handle(ctx, a)
		if err != nil {
			log.Debug("%T for note %s (item %d) failed: %v\n", a, a.noteID(), a.itemID(), err)
		}

		switch outcome {
		case Completed, Moot:
			if derr := e.queue.DeleteQueueItem(item.ID); derr != nil {
				log.Debug("removing queue item %d: %v\n", item.ID, derr)
				r.Failed++
				continue
			}

			if outcome == Completed {
				r.Processed++
			} else {
				r.Moot++
			}
		case Retry:
			if err != nil {
				r.Failed++
			} else {
				r.Deferred++
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}

// handle dispatches the action to its handler. A nil error with Retry means
// the item was deferred.
func (e *Engine) handle(ctx context.Context, a Action) (Outcome, error) {
	switch v := a.(type) {
	case CreateAction:
		return e.handleCreate(ctx, v)
	case UpdateAction:
		return e.handleUpdate(ctx, v)
	case DeleteAction:
		return e.handleDelete(ctx, v)
	default:
		return Retry, errors.Errorf("unsupported action %T", a)
	}
}

// markFailed records a failed remote call on the note. Failing to do so is
// only logged because the item is kept either way.
func (e *Engine) markFailed(localID string) {
	n, err := e.notes.GetNote(localID)
	if err != nil {
		log.Debug("marking note %s failed: %v\n", localID, err)
		return
	}

	n.SyncStatus = database.StatusFailed
	if err := e.notes.SaveNote(n); err != nil {
		log.Debug("marking note %s failed: %v\n", localID, err)
	}
}

func (e *Engine) markSyncing(n database.Note) error {
	n.SyncStatus = database.StatusSyncing
	if err := e.notes.SaveNote(n); err != nil {
		return errors.Wrapf(err, "marking note %s syncing", n.LocalID)
	}

	return nil
}

// applyRemote copies what the server returned onto the note and marks it synced
func (e *Engine) applyRemote(n database.Note, rn client.RemoteNote, setCreateTime bool) database.Note {
	n.RemoteName = rn.Name
	n.IsLocalOnly = false
	if setCreateTime && rn.CreateTime.UnixNano() > 0 {
		n.CreateTime = rn.CreateTime.UnixNano()
	}
	if rn.UpdateTime.UnixNano() > 0 {
		n.UpdateTime = rn.UpdateTime.UnixNano()
	}
	n.Visibility = rn.Visibility
	n.State = rn.State
	n.Pinned = rn.Pinned
	n.SyncStatus = database.StatusSynced
	n.LastSyncTime = e.now()

	return n
}

func (e *Engine) handleCreate(ctx context.Context, a CreateAction) (Outcome, error) {
	n, err := e.notes.GetNote(a.NoteID)
	if errors.Is(err, database.ErrNotFound) {
		return Moot, nil
	} else if err != nil {
		return Retry, err
	}

	// an earlier pass reached the server but stopped before removing the item
	if n.RemoteName != "" {
		return Moot, nil
	}

	if err := e.markSyncing(n); err != nil {
		e.markFailed(n.LocalID)
		return Retry, err
	}

	rn, err := e.gw.CreateNote(ctx, n.LocalID, n.Content)
	if err != nil {
		e.markFailed(n.LocalID)
		return Retry, err
	}

	current, err := e.notes.GetNote(n.LocalID)
	if errors.Is(err, database.ErrNotFound) {
		// removed locally while the call was in flight
		return Completed, nil
	} else if err != nil {
		return Retry, err
	}

	if err := e.notes.SaveNote(e.applyRemote(current, rn, true)); err != nil {
		e.markFailed(n.LocalID)
		return Retry, errors.Wrapf(err, "saving created note %s", n.LocalID)
	}

	log.Debug("created note %s as %s\n", n.LocalID, rn.Name)

	return Completed, nil
}

func (e *Engine) handleUpdate(ctx context.Context, a UpdateAction) (Outcome, error) {
	n, err := e.notes.GetNote(a.NoteID)
	if errors.Is(err, database.ErrNotFound) {
		return Moot, nil
	} else if err != nil {
		return Retry, err
	}

	if n.RemoteName == "" {
		pending, err := e.queue.HasCreateBefore(n.LocalID, a.ItemID)
		if err != nil {
			return Retry, err
		}
		if pending {
			return Retry, nil
		}

		return Moot, nil
	}

	if err := e.markSyncing(n); err != nil {
		e.markFailed(n.LocalID)
		return Retry, err
	}

	rn, err := e.gw.UpdateNote(ctx, n.RemoteName, n.Content)
	if err != nil {
		e.markFailed(n.LocalID)
		return Retry, err
	}

	current, err := e.notes.GetNote(n.LocalID)
	if errors.Is(err, database.ErrNotFound) {
		return Completed, nil
	} else if err != nil {
		return Retry, err
	}

	if err := e.notes.SaveNote(e.applyRemote(current, rn, false)); err != nil {
		e.markFailed(n.LocalID)
		return Retry, errors.Wrapf(err, "saving updated note %s", n.LocalID)
	}

	log.Debug("updated note %s (%s)\n", n.LocalID, n.RemoteName)

	return Completed, nil
}

func (e *Engine) handleDelete(ctx context.Context, a DeleteAction) (Outcome, error) {
	name := a.RemoteName
	if name == "" {
		n, err := e.notes.GetNote(a.NoteID)
		if err == nil {
			name = n.RemoteName
		}
	}

	if name == "" {
		// the note never reached the server
		return Completed, nil
	}

	if err := e.gw.DeleteNote(ctx, name); err != nil {
		if ctx.Err() != nil {
			return Retry, ctx.Err()
		}

		log.Debug("ignoring failure to delete %s: %v\n", name, err)
	}

	return Completed, nil
}
