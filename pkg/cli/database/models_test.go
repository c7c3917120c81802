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
	"testing"

	"github.com/dnote/memosync/pkg/assert"
	"github.com/pkg/errors"
)

func TestNoteValidate(t *testing.T) {
	testCases := []struct {
		note     Note
		expected error
	}{
		{
			note:     NewNote("n1", "foo", 1),
			expected: nil,
		},
		{
			note:     Note{LocalID: "n1", RemoteName: "memos/1", SyncStatus: StatusSynced},
			expected: nil,
		},
		{
			note:     Note{LocalID: "n1", SyncStatus: StatusSynced},
			expected: ErrLocalWithoutFlag,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			assert.Equal(t, tc.note.Validate(), tc.expected, "result mismatch")
		})
	}

	t.Run("unknown status", func(t *testing.T) {
		n := NewNote("n1", "foo", 1)
		n.SyncStatus = "bogus"

		assert.NotEqual(t, n.Validate(), nil, "expected an error")
	})
}

func TestNoteInsert(t *testing.T) {
	db := InitTestMemoryDB(t)

	n := Note{
		LocalID:      "n1",
		RemoteName:   "memos/7",
		Content:      "Buy milk",
		CreateTime:   1000,
		UpdateTime:   2000,
		Visibility:   "PRIVATE",
		State:        "NORMAL",
		Pinned:       true,
		SyncStatus:   StatusSynced,
		IsLocalOnly:  false,
		LastSyncTime: 3000,
	}
	if err := n.Insert(db); err != nil {
		t.Fatal(errors.Wrap(err, "inserting"))
	}

	got := MustGetNote(t, db, "n1")
	assert.DeepEqual(t, got, n, "note mismatch")
}

func TestNoteUpsert(t *testing.T) {
	db := InitTestMemoryDB(t)

	n := NewNote("n1", "foo", 100)
	if err := n.Upsert(db); err != nil {
		t.Fatal(errors.Wrap(err, "inserting with upsert"))
	}

	n.Content = "bar"
	n.RemoteName = "memos/1"
	n.IsLocalOnly = false
	n.SyncStatus = StatusSynced
	n.UpdateTime = 200
	if err := n.Upsert(db); err != nil {
		t.Fatal(errors.Wrap(err, "updating with upsert"))
	}

	var count int
	MustScan(t, "counting notes", db.QueryRow("SELECT count(*) FROM notes"), &count)
	assert.Equal(t, count, 1, "note count mismatch")

	got := MustGetNote(t, db, "n1")
	assert.DeepEqual(t, got, n, "note mismatch")
}

func TestNoteUpdateStatus(t *testing.T) {
	db := InitTestMemoryDB(t)

	n := NewNote("n1", "foo", 100)
	MustInsertNote(t, db, n)

	if err := n.UpdateStatus(db, StatusFailed); err != nil {
		t.Fatal(errors.Wrap(err, "updating status"))
	}

	assert.Equal(t, n.SyncStatus, StatusFailed, "struct status mismatch")
	assert.Equal(t, MustGetNote(t, db, "n1").SyncStatus, StatusFailed, "stored status mismatch")
}

func TestNoteExpunge(t *testing.T) {
	db := InitTestMemoryDB(t)

	n1 := NewNote("n1", "foo", 100)
	n2 := NewNote("n2", "bar", 100)
	MustInsertNote(t, db, n1)
	MustInsertNote(t, db, n2)

	if err := n1.Expunge(db); err != nil {
		t.Fatal(errors.Wrap(err, "expunging"))
	}

	_, err := GetNote(db, "n1")
	assert.Equal(t, err, ErrNotFound, "n1 should be gone")
	assert.Equal(t, MustGetNote(t, db, "n2").Content, "bar", "n2 should remain")
}

func TestQueueItemInsert(t *testing.T) {
	db := InitTestMemoryDB(t)

	i1 := MustEnqueue(t, db, NewQueueItem("n1", ActionCreate, "foo", "", 10))
	i2 := MustEnqueue(t, db, NewQueueItem("n1", ActionUpdate, "bar", "", 20))

	assert.Equal(t, i2.ID > i1.ID, true, "ids should increase")

	t.Run("unknown action", func(t *testing.T) {
		item := NewQueueItem("n1", Action("rename"), "", "", 30)

		assert.NotEqual(t, item.Insert(db), nil, "expected an error")
	})
}
