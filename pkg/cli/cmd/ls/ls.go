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

package ls

import (
	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/cli/infra"
	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/dnote/memosync/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var statusFlag string

var example = `
  * List all notes
  memosync ls

  * List the notes that failed to sync
  memosync ls --status failed`

// NewCmd returns a new ls command
func NewCmd(ctx context.MemosyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Short:   "List notes",
		Long:    "List notes. A '*' marks local changes not sent yet, '~' a change being sent and '!' a change that failed to sync.",
		Aliases: []string{"l", "notes"},
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&statusFlag, "status", "", "only list notes with the given status (synced, pending, syncing, failed)")

	return cmd
}

func parseStatus(s string) (database.SyncStatus, error) {
	switch st := database.SyncStatus(s); st {
	case database.StatusSynced, database.StatusPending, database.StatusSyncing, database.StatusFailed:
		return st, nil
	default:
		return "", errors.Errorf("unknown status %q", s)
	}
}

func newRun(ctx context.MemosyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		var notes []database.Note
		var err error

		if statusFlag != "" {
			st, perr := parseStatus(statusFlag)
			if perr != nil {
				return perr
			}
			notes, err = database.ListNotesByStatus(ctx.DB, st)
		} else {
			notes, err = database.ListNotes(ctx.DB)
		}
		if err != nil {
			return errors.Wrap(err, "listing notes")
		}

		if len(notes) == 0 {
			log.Info("no notes\n")
			return nil
		}

		output.NoteList(notes)

		return nil
	}
}
