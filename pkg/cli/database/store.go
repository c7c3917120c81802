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
	"fmt"

	"github.com/pkg/errors"
)

// StoreError is a failure of the local store. It should not happen under
// normal operation and aborts whatever was being processed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("local store: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err is a local store failure
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

func storeErr(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}

	return &StoreError{Op: op, Err: err}
}

// Store exposes the notes and the sync queue of a database to the sync engine
type Store struct {
	db *DB
}

// NewStore returns a store backed by the given database
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// GetNote returns the note with the given local id
func (s *Store) GetNote(localID string) (Note, error) {
	n, err := GetNote(s.db, localID)
	return n, storeErr("getting note", err)
}

// GetNoteByRemoteName returns the note with the given remote name
func (s *Store) GetNoteByRemoteName(name string) (Note, error) {
	n, err := GetNoteByRemoteName(s.db, name)
	return n, storeErr("getting note by remote name", err)
}

// SaveNote validates and upserts the note
func (s *Store) SaveNote(n Note) error {
	if err := n.Validate(); err != nil {
		return storeErr("validating note", err)
	}

	return storeErr("saving note", n.Upsert(s.db))
}

// ListQueue returns the queue in processing order
func (s *Store) ListQueue() ([]QueueItem, error) {
	items, err := ListQueue(s.db)
	return items, storeErr("listing queue", err)
}

// DeleteQueueItem removes a queue item
func (s *Store) DeleteQueueItem(id int) error {
	return storeErr("deleting queue item", DeleteQueueItem(s.db, id))
}

// HasCreateBefore reports whether a create for the note precedes the item
func (s *Store) HasCreateBefore(noteID string, id int) (bool, error) {
	ok, err := HasCreateBefore(s.db, noteID, id)
	return ok, storeErr("checking pending create", err)
}
