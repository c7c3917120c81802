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
	"strings"

	"github.com/pkg/errors"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(r rowScanner, n *Note) error {
	return r.Scan(&n.LocalID, &n.RemoteName, &n.Content, &n.CreateTime, &n.UpdateTime,
		&n.Visibility, &n.State, &n.Pinned, &n.SyncStatus, &n.IsLocalOnly, &n.LastSyncTime)
}

func queryNote(db *DB, where string, arg interface{}) (Note, error) {
	var n Note

	err := scanNote(db.QueryRow("SELECT "+noteColumns+" FROM notes WHERE "+where, arg), &n)
	if errors.Is(err, sql.ErrNoRows) {
		return n, ErrNotFound
	} else if err != nil {
		return n, err
	}

	return n, nil
}

// GetNote returns the note with the given local id, or ErrNotFound
func GetNote(db *DB, localID string) (Note, error) {
	n, err := queryNote(db, "local_id = ?", localID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return n, errors.Wrapf(err, "finding note %s", localID)
	}

	return n, err
}

// GetNoteByRemoteName returns the note with the given server resource name,
// or ErrNotFound
func GetNoteByRemoteName(db *DB, name string) (Note, error) {
	if name == "" {
		return Note{}, ErrNotFound
	}

	n, err := queryNote(db, "remote_name = ?", name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return n, errors.Wrapf(err, "finding note by remote name %s", name)
	}

	return n, err
}

func queryNotes(db *DB, query string, args ...interface{}) ([]Note, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying notes")
	}
	defer rows.Close()

	notes := []Note{}
	for rows.Next() {
		var n Note
		if err := scanNote(rows, &n); err != nil {
			return nil, errors.Wrap(err, "scanning a note")
		}

		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating notes")
	}

	return notes, nil
}

// ListNotes returns all notes, most recently updated first
func ListNotes(db *DB) ([]Note, error) {
	return queryNotes(db, "SELECT "+noteColumns+" FROM notes ORDER BY update_time DESC, local_id")
}

// ListNotesByStatus returns the notes in the given sync status
func ListNotesByStatus(db *DB, status SyncStatus) ([]Note, error) {
	return queryNotes(db, "SELECT "+noteColumns+" FROM notes WHERE sync_status = ? ORDER BY update_time DESC, local_id", status)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// SearchNotes returns the notes whose content contains the query, ignoring
// case for ASCII letters
func SearchNotes(db *DB, query string) ([]Note, error) {
	pattern := "%" + escapeLike(query) + "%"

	return queryNotes(db, "SELECT "+noteColumns+` FROM notes WHERE content LIKE ? ESCAPE '\' ORDER BY update_time DESC, local_id`, pattern)
}

// CountNotesByStatus returns the number of notes in the given sync status
func CountNotesByStatus(db *DB, status SyncStatus) (int, error) {
	var count int
	if err := db.QueryRow("SELECT count(*) FROM notes WHERE sync_status = ?", status).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "counting notes")
	}

	return count, nil
}

// FindNoteByPrefix returns the note whose local id starts with the given
// prefix. It returns ErrAmbiguousID if the prefix is shared by several notes.
func FindNoteByPrefix(db *DB, prefix string) (Note, error) {
	if prefix == "" {
		return Note{}, ErrNotFound
	}

	notes, err := queryNotes(db, "SELECT "+noteColumns+` FROM notes WHERE local_id LIKE ? ESCAPE '\' ORDER BY local_id LIMIT 2`, escapeLike(prefix)+"%")
	if err != nil {
		return Note{}, errors.Wrapf(err, "finding note by prefix %s", prefix)
	}

	switch len(notes) {
	case 0:
		return Note{}, ErrNotFound
	case 1:
		return notes[0], nil
	}

	for _, n := range notes {
		if n.LocalID == prefix {
			return n, nil
		}
	}

	return Note{}, ErrAmbiguousID
}
