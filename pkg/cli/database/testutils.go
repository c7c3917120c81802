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
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MustScan scans the given row and fails a test in case of any errors
func MustScan(t *testing.T, message string, row *sql.Row, args ...interface{}) {
	t.Helper()

	err := row.Scan(args...)
	if err != nil {
		t.Fatal(errors.Wrap(errors.Wrap(err, "scanning a row"), message))
	}
}

// MustExec executes the given SQL query and fails a test if an error occurs
func MustExec(t *testing.T, message string, db *DB, query string, args ...interface{}) sql.Result {
	t.Helper()

	result, err := db.Exec(query, args...)
	if err != nil {
		t.Fatal(errors.Wrap(errors.Wrap(err, "executing sql"), message))
	}

	return result
}

// InitTestMemoryDB initializes an in-memory test database with all
// migrations applied
func InitTestMemoryDB(t *testing.T) *DB {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	db, err := Open(dbName)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening in-memory database"))
	}
	t.Cleanup(func() { db.Close() })

	if _, err := Migrate(db); err != nil {
		t.Fatal(errors.Wrap(err, "migrating test database"))
	}

	return db
}

// InitTestFileDB initializes a file-based test database in a temporary
// directory and returns it along with its path
func InitTestFileDB(t *testing.T) (*DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "memosync.db")

	return InitTestFileDBRaw(t, dbPath), dbPath
}

// InitTestFileDBRaw initializes a file-based test database at the given path
func InitTestFileDBRaw(t *testing.T, dbPath string) *DB {
	t.Helper()

	db, err := Open(dbPath)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening database"))
	}
	t.Cleanup(func() { db.Close() })

	if _, err := Migrate(db); err != nil {
		t.Fatal(errors.Wrap(err, "migrating test database"))
	}

	return db
}

// MustInsertNote inserts the note and fails the test on error
func MustInsertNote(t *testing.T, db *DB, n Note) {
	t.Helper()

	if err := n.Insert(db); err != nil {
		t.Fatal(errors.Wrap(err, "inserting note"))
	}
}

// MustEnqueue appends the item and returns it with its id set
func MustEnqueue(t *testing.T, db *DB, item QueueItem) QueueItem {
	t.Helper()

	if err := item.Insert(db); err != nil {
		t.Fatal(errors.Wrap(err, "enqueueing item"))
	}

	return item
}

// MustGetNote returns the note or fails the test
func MustGetNote(t *testing.T, db *DB, localID string) Note {
	t.Helper()

	n, err := GetNote(db, localID)
	if err != nil {
		t.Fatal(errors.Wrapf(err, "getting note %s", localID))
	}

	return n
}

// MustListQueue returns the queue or fails the test
func MustListQueue(t *testing.T, db *DB) []QueueItem {
	t.Helper()

	items, err := ListQueue(db)
	if err != nil {
		t.Fatal(errors.Wrap(err, "listing queue"))
	}

	return items
}
