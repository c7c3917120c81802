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

package sync

import (
	"context"
	"strings"

	"github.com/dnote/memosync/pkg/cli/client"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/dnote/memosync/pkg/cli/utils"
	"github.com/dnote/memosync/pkg/cli/utils/diff"
	"github.com/pkg/errors"
)

func generateID() (string, error) {
	return utils.GenerateUUID()
}

// reconcile merges the full remote listing into the local store. A remote
// note wins over the local copy only if it was updated strictly later.
func (e *Engine) reconcile(ctx context.Context, r *Report) error {
	remote, err := e.gw.ListNotes(ctx)
	if err != nil {
		return errors.Wrap(err, "listing remote notes")
	}

	log.Debug("%d remote notes\n", len(remote))

	for _, rn := range remote {
		if err := ctx.Err(); err != nil {
			return err
		}

		local, err := e.notes.GetNoteByRemoteName(rn.Name)
		if errors.Is(err, database.ErrNotFound) {
			local, err = e.unclaimedNote(rn)
			if errors.Is(err, database.ErrNotFound) {
				if err := e.insertRemote(rn); err != nil {
					return err
				}

				r.Inserted++
				continue
			} else if err != nil {
				return err
			}

			log.Debug("adopting %s as the remote copy of %s\n", rn.Name, local.LocalID)
			local.RemoteName = rn.Name
		} else if err != nil {
			return errors.Wrapf(err, "finding local copy of %s", rn.Name)
		}

		merged, overwritten := e.merge(local, rn)
		if err := e.notes.SaveNote(merged); err != nil {
			return errors.Wrapf(err, "saving note %s", local.LocalID)
		}

		if overwritten {
			r.Overwritten++
		}
	}

	return nil
}

// remoteUID returns the client-chosen id of a remote note
func remoteUID(rn client.RemoteNote) string {
	if rn.UID != "" {
		return rn.UID
	}

	return rn.Name[strings.LastIndex(rn.Name, "/")+1:]
}

// unclaimedNote returns the local note that a remote note was created from
// when the create reached the server but its response did not reach us. Such
// a note has the remote uid as its local id and no remote name yet.
func (e *Engine) unclaimedNote(rn client.RemoteNote) (database.Note, error) {
	uid := remoteUID(rn)
	if uid == "" {
		return database.Note{}, database.ErrNotFound
	}

	n, err := e.notes.GetNote(uid)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return database.Note{}, err
		}

		return database.Note{}, errors.Wrapf(err, "finding local note %s", uid)
	}
	if n.RemoteName != "" {
		return database.Note{}, database.ErrNotFound
	}

	return n, nil
}

func (e *Engine) insertRemote(rn client.RemoteNote) error {
	localID, err := e.newID()
	if err != nil {
		return errors.Wrap(err, "generating a local id")
	}

	n := database.Note{
		LocalID:      localID,
		RemoteName:   rn.Name,
		Content:      rn.Content,
		CreateTime:   rn.CreateTime.UnixNano(),
		UpdateTime:   rn.UpdateTime.UnixNano(),
		Visibility:   rn.Visibility,
		State:        rn.State,
		Pinned:       rn.Pinned,
		SyncStatus:   database.StatusSynced,
		IsLocalOnly:  false,
		LastSyncTime: e.now(),
	}

	if err := e.notes.SaveNote(n); err != nil {
		return errors.Wrapf(err, "inserting remote note %s", rn.Name)
	}

	log.Debug("inserted remote note %s as %s\n", rn.Name, localID)

	return nil
}

// merge returns the local note after reconciling it with its remote
// counterpart, and whether the remote version replaced the local content
func (e *Engine) merge(local database.Note, rn client.RemoteNote) (database.Note, bool) {
	remoteUpdate := rn.UpdateTime.UnixNano()
	overwritten := remoteUpdate > local.UpdateTime

	if overwritten {
		if log.IsDebug() && local.Content != rn.Content {
			log.Debug("remote %s is newer than local %s:\n%s", rn.Name, local.LocalID, diff.Unified(local.Content, rn.Content))
		}

		local.Content = rn.Content
		local.CreateTime = rn.CreateTime.UnixNano()
		local.UpdateTime = remoteUpdate
		local.Visibility = rn.Visibility
		local.State = rn.State
		local.Pinned = rn.Pinned
	}

	local.SyncStatus = database.StatusSynced
	local.IsLocalOnly = false
	local.LastSyncTime = e.now()

	return local, overwritten
}
