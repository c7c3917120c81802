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

func TestSystem(t *testing.T) {
	db := InitTestMemoryDB(t)

	var val string
	assert.Equal(t, GetSystem(db, "foo", &val), ErrNotFound, "missing key")

	if err := InsertSystem(db, "foo", "bar"); err != nil {
		t.Fatal(errors.Wrap(err, "inserting"))
	}
	if err := GetSystem(db, "foo", &val); err != nil {
		t.Fatal(errors.Wrap(err, "getting"))
	}
	assert.Equal(t, val, "bar", "value mismatch")

	if err := UpsertSystem(db, "foo", 42); err != nil {
		t.Fatal(errors.Wrap(err, "upserting"))
	}
	var num int64
	if err := GetSystem(db, "foo", &num); err != nil {
		t.Fatal(errors.Wrap(err, "getting number"))
	}
	assert.Equal(t, num, int64(42), "upserted value mismatch")

	if err := DeleteSystem(db, "foo"); err != nil {
		t.Fatal(errors.Wrap(err, "deleting"))
	}
	assert.Equal(t, GetSystem(db, "foo", &val), ErrNotFound, "deleted key")
}
