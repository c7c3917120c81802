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

package infra

import (
	stdctx "context"
	"fmt"
	"time"

	"github.com/dnote/memosync/pkg/cli/client"
	"github.com/dnote/memosync/pkg/cli/connectivity"
	"github.com/dnote/memosync/pkg/cli/consts"
	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/cli/log"
	clisync "github.com/dnote/memosync/pkg/cli/sync"
)

// NewClient returns a gateway to the server configured in the context
func NewClient(ctx context.MemosyncCtx) *client.Client {
	return client.New(ctx.APIEndpoint, ctx.AccessToken, ctx.Version, ctx.HTTPClient)
}

// NewEngine returns a sync engine working on the local database of the
// context. The outcome of every pass is recorded in the system table.
func NewEngine(ctx context.MemosyncCtx, opts ...clisync.Option) *clisync.Engine {
	store := database.NewStore(ctx.DB)

	base := []clisync.Option{
		clisync.WithClock(ctx.Clock),
		clisync.WithObserver(RecordSyncResult(ctx.DB)),
	}

	return clisync.New(store, store, NewClient(ctx), append(base, opts...)...)
}

// reachTimeout bounds the one-off reachability check of commands
const reachTimeout = 2 * time.Second

// Reachable tells if the configured server accepts connections. An endpoint
// that cannot be parsed counts as unreachable.
func Reachable(c stdctx.Context, ctx context.MemosyncCtx) bool {
	p, err := connectivity.NewProber(connectivity.NewMonitor(false), ctx.APIEndpoint, 0, reachTimeout)
	if err != nil {
		log.Debug("checking reachability: %s\n", err.Error())
		return false
	}

	return p.Probe(c)
}

// SyncResult summarizes a report for the system table
func SyncResult(r clisync.Report) string {
	if r.Err != "" {
		return r.Err
	}
	if r.Failed > 0 {
		return fmt.Sprintf("%d changes failed", r.Failed)
	}

	return consts.SyncResultOK
}

// RecordSyncResult returns an observer that saves the finish time and the
// result of a pass
func RecordSyncResult(db *database.DB) func(clisync.Report) {
	return func(r clisync.Report) {
		if err := database.UpsertSystem(db, consts.SystemLastSyncAt, r.FinishedAt.Unix()); err != nil {
			log.Debug("recording last sync time: %s\n", err.Error())
		}
		if err := database.UpsertSystem(db, consts.SystemLastSyncResult, SyncResult(r)); err != nil {
			log.Debug("recording last sync result: %s\n", err.Error())
		}
	}
}
