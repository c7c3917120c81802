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

func TestListQueue(t *testing.T) {
	db := InitTestMemoryDB(t)

	a := MustEnqueue(t, db, NewQueueItem("n1", ActionCreate, "foo", "", 30))
	b := MustEnqueue(t, db, NewQueueItem("n2", ActionCreate, "bar", "", 10))
	c := MustEnqueue(t, db, NewQueueItem("n1", ActionDelete, "", "memos/1", 20))

	got := MustListQueue(t, db)

	// enqueue time does not affect the order
	assert.DeepEqual(t, got, []QueueItem{a, b, c}, "queue mismatch")
}

func TestQueueIDsAreNotReused(t *testing.T) {
	db := InitTestMemoryDB(t)

	a := MustEnqueue(t, db, NewQueueItem("n1", ActionCreate, "foo", "", 1))
	b := MustEnqueue(t, db, NewQueueItem("n1", ActionUpdate, "foo", "", 2))

	if err := a.Delete(db); err != nil {
		t.Fatal(errors.Wrap(err, "deleting a"))
	}
	if err := b.Delete(db); err != nil {
		t.Fatal(errors.Wrap(err, "deleting b"))
	}

	c := MustEnqueue(t, db, NewQueueItem("n1", ActionUpdate, "foo", "", 3))
	assert.Equal(t, c.ID > b.ID, true, "id should not be reused")
}

func TestHasCreateBefore(t *testing.T) {
	db := InitTestMemoryDB(t)

	create := MustEnqueue(t, db, NewQueueItem("n1", ActionCreate, "foo", "", 1))
	update := MustEnqueue(t, db, NewQueueItem("n1", ActionUpdate, "bar", "", 2))
	other := MustEnqueue(t, db, NewQueueItem("n2", ActionUpdate, "baz", "", 3))

	testCases := []struct {
		noteID   string
		id       int
		expected bool
	}{
		{noteID: "n1", id: update.ID, expected: true},
		{noteID: "n1", id: create.ID, expected: false},
		{noteID: "n2", id: other.ID, expected: false},
		{noteID: "n3", id: other.ID + 1, expected: false},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			got, err := HasCreateBefore(db, tc.noteID, tc.id)
			if err != nil {
				t.Fatal(errors.Wrap(err, "executing"))
			}

			assert.Equal(t, got, tc.expected, "result mismatch")
		})
	}
}

func TestCountQueue(t *testing.T) {
	db := InitTestMemoryDB(t)

	count, err := CountQueue(db)
	if err != nil {
		t.Fatal(errors.Wrap(err, "counting empty queue"))
	}
	assert.Equal(t, count, 0, "empty count mismatch")

	MustEnqueue(t, db, NewQueueItem("n1", ActionCreate, "foo", "", 1))
	MustEnqueue(t, db, NewQueueItem("n2", ActionCreate, "bar", "", 2))

	count, err = CountQueue(db)
	if err != nil {
		t.Fatal(errors.Wrap(err, "counting queue"))
	}
	assert.Equal(t, count, 2, "count mismatch")

	forNote, err := ListQueueForNote(db, "n2")
	if err != nil {
		t.Fatal(errors.Wrap(err, "listing for note"))
	}
	assert.Equal(t, len(forNote), 1, "per-note count mismatch")
}
