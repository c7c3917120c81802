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

// Package operations implements the user mutations of notes. Each one writes
// the note and appends the matching sync queue item in one transaction.
package operations

import (
	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/cli/utils"
	"github.com/dnote/memosync/pkg/cli/validate"
	"github.com/pkg/errors"
)

// ErrNoChange is returned when an edit does not change the content
var ErrNoChange = errors.New("nothing changed")

func now(ctx context.MemosyncCtx) int64 {
	return ctx.Clock.Now().UTC().UnixNano()
}

// inTx runs fn in a transaction and commits it if fn succeeds
func inTx(ctx context.MemosyncCtx, fn func(tx *database.DB) error) error {
	tx, err := ctx.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "committing a transaction")
	}

	return nil
}

// Add creates a local note and enqueues its creation on the server
func Add(ctx context.MemosyncCtx, content string) (database.Note, error) {
	if err := validate.NoteContent(content); err != nil {
		return database.Note{}, err
	}

	localID, err := utils.GenerateUUID()
	if err != nil {
		return database.Note{}, err
	}

	ts := now(ctx)
	n := database.NewNote(localID, content, ts)

	err = inTx(ctx, func(tx *database.DB) error {
		if err := n.Insert(tx); err != nil {
			return errors.Wrap(err, "inserting note")
		}

		item := database.NewQueueItem(n.LocalID, database.ActionCreate, content, "", ts)
		if err := item.Insert(tx); err != nil {
			return errors.Wrap(err, "enqueueing create")
		}

		return nil
	})
	if err != nil {
		return database.Note{}, err
	}

	return n, nil
}

// Edit replaces the content of a note and enqueues the change. A note that
// never reached the server and has no create queued is created instead.
func Edit(ctx context.MemosyncCtx, localID, content string) (database.Note, error) {
	if err := validate.NoteContent(content); err != nil {
		return database.Note{}, err
	}

	var n database.Note

	err := inTx(ctx, func(tx *database.DB) error {
		var err error

		n, err = database.GetNote(tx, localID)
		if err != nil {
			return errors.Wrapf(err, "finding note %s", localID)
		}
		if n.Content == content {
			return ErrNoChange
		}

		ts := now(ctx)
		n.Content = content
		n.UpdateTime = ts
		n.SyncStatus = database.StatusPending

		if err := n.Upsert(tx); err != nil {
			return errors.Wrap(err, "saving note")
		}

		action := database.ActionUpdate
		if n.RemoteName == "" && n.IsLocalOnly {
			queued, err := database.HasQueuedCreate(tx, n.LocalID)
			if err != nil {
				return err
			}
			if !queued {
				action = database.ActionCreate
			}
		}

		item := database.NewQueueItem(n.LocalID, action, content, n.RemoteName, ts)
		if err := item.Insert(tx); err != nil {
			return errors.Wrapf(err, "enqueueing %s", action)
		}

		return nil
	})
	if err != nil {
		return database.Note{}, err
	}

	return n, nil
}

// Remove deletes a note locally and enqueues its deletion on the server.
// The remote name is captured on the queue item because the note row is gone
// by the time the queue is drained.
func Remove(ctx context.MemosyncCtx, localID string) (database.Note, error) {
	var n database.Note

	err := inTx(ctx, func(tx *database.DB) error {
		var err error

		n, err = database.GetNote(tx, localID)
		if err != nil {
			return errors.Wrapf(err, "finding note %s", localID)
		}

		if err := n.Expunge(tx); err != nil {
			return errors.Wrap(err, "removing note")
		}

		item := database.NewQueueItem(n.LocalID, database.ActionDelete, "", n.RemoteName, now(ctx))
		if err := item.Insert(tx); err != nil {
			return errors.Wrap(err, "enqueueing delete")
		}

		return nil
	})
	if err != nil {
		return database.Note{}, err
	}

	return n, nil
}

// PendingCount returns the number of queued mutations
func PendingCount(ctx context.MemosyncCtx) (int, error) {
	return database.CountQueue(ctx.DB)
}
