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

package status

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dnote/memosync/pkg/cli/consts"
	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/cli/infra"
	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/dnote/memosync/pkg/cli/operations"
	"github.com/dnote/memosync/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Info is the sync state of the local database
type Info struct {
	Endpoint       string
	LoggedIn       bool
	Pending        int
	Failed         []database.Note
	LastSyncAt     time.Time
	LastSyncResult string
}

// NewCmd returns a new status command
func NewCmd(ctx context.MemosyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the sync status",
		Args:  cobra.NoArgs,
		RunE:  newRun(ctx),
	}

	return cmd
}

// Get collects the sync state
func Get(ctx context.MemosyncCtx) (Info, error) {
	info := Info{
		Endpoint: ctx.APIEndpoint,
		LoggedIn: ctx.LoggedIn(),
	}

	var err error
	if info.Pending, err = operations.PendingCount(ctx); err != nil {
		return info, errors.Wrap(err, "counting pending changes")
	}
	if info.Failed, err = database.ListNotesByStatus(ctx.DB, database.StatusFailed); err != nil {
		return info, errors.Wrap(err, "listing failed notes")
	}

	var lastSync string
	if err := database.GetSystem(ctx.DB, consts.SystemLastSyncAt, &lastSync); err != nil && !errors.Is(err, database.ErrNotFound) {
		return info, errors.Wrap(err, "getting the last sync time")
	}
	if ts, perr := strconv.ParseInt(lastSync, 10, 64); perr == nil && ts > 0 {
		info.LastSyncAt = time.Unix(ts, 0)
	}

	if err := database.GetSystem(ctx.DB, consts.SystemLastSyncResult, &info.LastSyncResult); err != nil && !errors.Is(err, database.ErrNotFound) {
		return info, errors.Wrap(err, "getting the last sync result")
	}

	return info, nil
}

func newRun(ctx context.MemosyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		info, err := Get(ctx)
		if err != nil {
			return err
		}

		if info.LoggedIn {
			log.Infof("server: %s\n", info.Endpoint)
		} else {
			log.Warnf("not logged in (server: %s)\n", info.Endpoint)
		}
		log.Infof("pending changes: %d\n", info.Pending)

		if info.LastSyncAt.IsZero() {
			log.Infof("last sync: never\n")
		} else {
			log.Infof("last sync: %s (%s)\n", info.LastSyncAt.Local().Format(time.RFC1123), info.LastSyncResult)
		}

		if len(info.Failed) > 0 {
			log.Warnf("%d notes failed to sync:\n", len(info.Failed))
			for _, n := range info.Failed {
				fmt.Println(output.NoteRow(n))
			}
		}

		return nil
	}
}
