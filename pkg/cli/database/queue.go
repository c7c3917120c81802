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

func listQueue(db *DB, query string, args ...interface{}) ([]QueueItem, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying sync queue")
	}
	defer rows.Close()

	items := []QueueItem{}
	for rows.Next() {
		var i QueueItem
		if err := rows.Scan(&i.ID, &i.NoteID, &i.Action, &i.Payload, &i.RemoteName, &i.EnqueuedAt); err != nil {
			return nil, errors.Wrap(err, "scanning a queue item")
		}

		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating sync queue")
	}

	return items, nil
}

// ListQueue returns every queue item in processing order
func ListQueue(db *DB) ([]QueueItem, error) {
	return listQueue(db, "SELECT id, note_id, action, payload, remote_name, enqueued_at FROM sync_queue ORDER BY id ASC")
}

// ListQueueForNote returns the queue items of a note in processing order
func ListQueueForNote(db *DB, noteID string) ([]QueueItem, error) {
	return listQueue(db, "SELECT id, note_id, action, payload, remote_name, enqueued_at FROM sync_queue WHERE note_id = ? ORDER BY id ASC", noteID)
}

// DeleteQueueItem removes the queue item with the given id
func DeleteQueueItem(db *DB, id int) error {
	if _, err := db.Exec("DELETE FROM sync_queue WHERE id = ?", id); err != nil {
		return errors.Wrapf(err, "deleting queue item %d", id)
	}

	return nil
}

// HasCreateBefore reports whether a create item for the note is queued
// ahead of the item with the given id
func HasCreateBefore(db *DB, noteID string, id int) (bool, error) {
	var count int
	err := db.QueryRow("SELECT count(*) FROM sync_queue WHERE note_id = ? AND action = ? AND id < ?", noteID, ActionCreate, id).Scan(&count)
	if err != nil {
		return false, errors.Wrap(err, "looking up pending create")
	}

	return count > 0, nil
}

// HasQueuedCreate reports whether any create item for the note is queued
func HasQueuedCreate(db *DB, noteID string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT count(*) FROM sync_queue WHERE note_id = ? AND action = ?", noteID, ActionCreate).Scan(&count)
	if err != nil {
		return false, errors.Wrap(err, "looking up queued create")
	}

	return count > 0, nil
}

// CountQueue returns the number of pending queue items
func CountQueue(db *DB) (int, error) {
	var count int
	if err := db.QueryRow("SELECT count(*) FROM sync_queue").Scan(&count); err != nil {
		return 0, errors.Wrap(err, "counting sync queue")
	}

	return count, nil
}
