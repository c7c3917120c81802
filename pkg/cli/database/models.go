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

package database

import (
	"github.com/pkg/errors"
)

// SyncStatus is the synchronization state of a note
type SyncStatus string

const (
	// StatusSynced means the note matches its remote counterpart
	StatusSynced SyncStatus = "synced"
	// StatusPending means the note has local changes waiting to be sent
	StatusPending SyncStatus = "pending"
	// StatusSyncing means a remote call for the note is in flight
	StatusSyncing SyncStatus = "syncing"
	// StatusFailed means the last remote call for the note failed. The queue
	// item is kept and retried on the next pass.
	StatusFailed SyncStatus = "failed"
)

// Action is the kind of mutation recorded by a queue item
type Action string

const (
	// ActionCreate creates the note on the server
	ActionCreate Action = "create"
	// ActionUpdate sends the note's content to the server
	ActionUpdate Action = "update"
	// ActionDelete removes the note from the server
	ActionDelete Action = "delete"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")
	// ErrLocalWithoutFlag is returned when a note without a remote name is not
	// marked local only
	ErrLocalWithoutFlag = errors.New("note without a remote name must be local only")
	// ErrAmbiguousID is returned when an id prefix matches more than one note
	ErrAmbiguousID = errors.New("id prefix matches more than one note")
)

// Note represents a note. Timestamps are unix nanoseconds in UTC.
type Note struct {
	LocalID      string     `json:"local_id"`
	RemoteName   string     `json:"remote_name"`
	Content      string     `json:"content"`
	CreateTime   int64      `json:"create_time"`
	UpdateTime   int64      `json:"update_time"`
	Visibility   string     `json:"visibility"`
	State        string     `json:"state"`
	Pinned       bool       `json:"pinned"`
	SyncStatus   SyncStatus `json:"sync_status"`
	IsLocalOnly  bool       `json:"is_local_only"`
	LastSyncTime int64      `json:"last_sync_time"`
}

// NewNote constructs a note that has not reached the server yet
func NewNote(localID, content string, ts int64) Note {
	return Note{
		LocalID:     localID,
		Content:     content,
		CreateTime:  ts,
		UpdateTime:  ts,
		SyncStatus:  StatusPending,
		IsLocalOnly: true,
	}
}

// Validate checks the invariants of a note
func (n Note) Validate() error {
	if n.LocalID == "" {
		return errors.New("local id is empty")
	}
	if n.RemoteName == "" && !n.IsLocalOnly {
		return ErrLocalWithoutFlag
	}

	switch n.SyncStatus {
	case StatusSynced, StatusPending, StatusSyncing, StatusFailed:
	default:
		return errors.Errorf("unknown sync status '%s'", n.SyncStatus)
	}

	return nil
}

const noteColumns = "local_id, remote_name, content, create_time, update_time, visibility, state, pinned, sync_status, is_local_only, last_sync_time"

// Insert inserts a new note
func (n Note) Insert(db *DB) error {
	_, err := db.Exec("INSERT INTO notes ("+noteColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		n.LocalID, n.RemoteName, n.Content, n.CreateTime, n.UpdateTime, n.Visibility, n.State, n.Pinned, n.SyncStatus, n.IsLocalOnly, n.LastSyncTime)

	if err != nil {
		return errors.Wrapf(err, "inserting note with local id %s", n.LocalID)
	}

	return nil
}

// Upsert inserts the note or replaces every column of the existing row
func (n Note) Upsert(db *DB) error {
	_, err := db.Exec(`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(local_id) DO UPDATE SET
			remote_name = excluded.remote_name,
			content = excluded.content,
			create_time = excluded.create_time,
			update_time = excluded.update_time,
			visibility = excluded.visibility,
			state = excluded.state,
			pinned = excluded.pinned,
			sync_status = excluded.sync_status,
			is_local_only = excluded.is_local_only,
			last_sync_time = excluded.last_sync_time`,
		n.LocalID, n.RemoteName, n.Content, n.CreateTime, n.UpdateTime, n.Visibility, n.State, n.Pinned, n.SyncStatus, n.IsLocalOnly, n.LastSyncTime)

	if err != nil {
		return errors.Wrapf(err, "upserting note with local id %s", n.LocalID)
	}

	return nil
}

// UpdateStatus sets the sync status of the note
func (n *Note) UpdateStatus(db *DB, status SyncStatus) error {
	_, err := db.Exec("UPDATE notes SET sync_status = ? WHERE local_id = ?", status, n.LocalID)
	if err != nil {
		return errors.Wrapf(err, "updating status of note %s to %s", n.LocalID, status)
	}

	n.SyncStatus = status

	return nil
}

// Expunge hard-deletes the note from the database
func (n Note) Expunge(db *DB) error {
	_, err := db.Exec("DELETE FROM notes WHERE local_id = ?", n.LocalID)
	if err != nil {
		return errors.Wrap(err, "expunging a note locally")
	}

	return nil
}

// QueueItem is a durable record of one pending mutation
type QueueItem struct {
	ID         int    `json:"id"`
	NoteID     string `json:"note_id"`
	Action     Action `json:"action"`
	Payload    string `json:"payload"`
	RemoteName string `json:"remote_name"`
	EnqueuedAt int64  `json:"enqueued_at"`
}

// NewQueueItem constructs a queue item. The id is assigned on insert.
func NewQueueItem(noteID string, action Action, payload, remoteName string, enqueuedAt int64) QueueItem {
	return QueueItem{
		NoteID:     noteID,
		Action:     action,
		Payload:    payload,
		RemoteName: remoteName,
		EnqueuedAt: enqueuedAt,
	}
}

// Insert appends the item to the queue and sets its id
func (i *QueueItem) Insert(db *DB) error {
	switch i.Action {
	case ActionCreate, ActionUpdate, ActionDelete:
	default:
		return errors.Errorf("unknown action '%s'", i.Action)
	}

	res, err := db.Exec("INSERT INTO sync_queue (note_id, action, payload, remote_name, enqueued_at) VALUES (?, ?, ?, ?, ?)",
		i.NoteID, i.Action, i.Payload, i.RemoteName, i.EnqueuedAt)
	if err != nil {
		return errors.Wrapf(err, "enqueueing %s for note %s", i.Action, i.NoteID)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "getting queue item id")
	}
	i.ID = int(id)

	return nil
}

// Delete removes the item from the queue
func (i QueueItem) Delete(db *DB) error {
	return DeleteQueueItem(db, i.ID)
}
