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

package testutils

import (
	"testing"

	"github.com/dnote/memosync/pkg/cli/database"
)

// Note ids used by the setups
const (
	SyncedNoteID  = "43827b9a-c2b0-4c06-a290-97991c896653"
	PendingNoteID = "f0d0fbb7-31ff-45ae-9f0f-4e429c0c797f"
)

// Setup1 sets up an env with one synced note
func Setup1(t *testing.T, db *database.DB) {
	database.MustExec(t, "setting up note 1", db, "INSERT INTO notes (local_id, remote_name, content, create_time, update_time, sync_status, is_local_only) VALUES (?, ?, ?, ?, ?, ?, ?)",
		SyncedNoteID, "memos/"+SyncedNoteID, "Booleans have toString()", 1515199943000000000, 1515199943000000000, database.StatusSynced, false)
}

// Setup2 sets up an env with a synced note and a local note waiting to be created
func Setup2(t *testing.T, db *database.DB) {
	Setup1(t, db)

	database.MustExec(t, "setting up note 2", db, "INSERT INTO notes (local_id, content, create_time, update_time, sync_status, is_local_only) VALUES (?, ?, ?, ?, ?, ?)",
		PendingNoteID, "Date object implements mathematical comparisons", 1515199951000000000, 1515199951000000000, database.StatusPending, true)
	database.MustExec(t, "setting up queue item", db, "INSERT INTO sync_queue (note_id, action, payload, enqueued_at) VALUES (?, ?, ?, ?)",
		PendingNoteID, database.ActionCreate, "Date object implements mathematical comparisons", 1515199951000000000)
}
