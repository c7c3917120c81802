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
	"testing"

	"github.com/dnote/memosync/pkg/assert"
	"github.com/pkg/errors"
)

func TestStoreSaveNote(t *testing.T) {
	db := InitTestMemoryDB(t)
	s := NewStore(db)

	t.Run("valid", func(t *testing.T) {
		if err := s.SaveNote(NewNote("n1", "foo", 1)); err != nil {
			t.Fatal(errors.Wrap(err, "saving"))
		}

		got, err := s.GetNote("n1")
		if err != nil {
			t.Fatal(errors.Wrap(err, "getting"))
		}
		assert.Equal(t, got.Content, "foo", "content mismatch")
	})

	t.Run("invariant violation", func(t *testing.T) {
		n := Note{LocalID: "n2", SyncStatus: StatusSynced}

		err := s.SaveNote(n)
		assert.Equal(t, IsStoreError(err), true, "expected a store error")
		assert.Equal(t, errors.Is(err, ErrLocalWithoutFlag), true, "expected the invariant error")

		_, err = s.GetNote("n2")
		assert.Equal(t, err, ErrNotFound, "note should not be written")
	})
}

func TestStoreNotFoundIsNotStoreError(t *testing.T) {
	db := InitTestMemoryDB(t)
	s := NewStore(db)

	_, err := s.GetNote("missing")
	assert.Equal(t, err, ErrNotFound, "error mismatch")
	assert.Equal(t, IsStoreError(err), false, "not found should not be a store error")
}

func TestStoreQueue(t *testing.T) {
	db := InitTestMemoryDB(t)
	s := NewStore(db)

	a := MustEnqueue(t, db, NewQueueItem("n1", ActionCreate, "foo", "", 1))
	b := MustEnqueue(t, db, NewQueueItem("n1", ActionUpdate, "bar", "", 2))

	ok, err := s.HasCreateBefore("n1", b.ID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "checking create"))
	}
	assert.Equal(t, ok, true, "create should precede the update")

	if err := s.DeleteQueueItem(a.ID); err != nil {
		t.Fatal(errors.Wrap(err, "deleting"))
	}

	items, err := s.ListQueue()
	if err != nil {
		t.Fatal(errors.Wrap(err, "listing"))
	}
	assert.DeepEqual(t, items, []QueueItem{b}, "queue mismatch")
}
