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
	"fmt"
	"testing"
	"time"

	"github.com/dnote/memosync/pkg/assert"
	"github.com/dnote/memosync/pkg/cli/client"
	clictx "github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/cli/operations"
	"github.com/dnote/memosync/pkg/clock"
	"github.com/pkg/errors"
)

var errUnreachable = &client.NetworkError{Op: "POST /api/v1/memos", Err: errors.New("connection refused")}

func getItemIDs(items []database.QueueItem) []int {
	ret := []int{}
	for _, i := range items {
		ret = append(ret, i.ID)
	}

	return ret
}

func TestSyncWithServer_buyMilk(t *testing.T) {
	ctx := clictx.InitTestCtx(t)
	c := ctx.Clock.(*clock.Mock)
	gw := newFakeGateway(c)
	store := database.NewStore(ctx.DB)

	// offline
	n, err := operations.Add(ctx, "Buy milk")
	if err != nil {
		t.Fatal(errors.Wrap(err, "adding"))
	}

	got := database.MustGetNote(t, ctx.DB, n.LocalID)
	assert.Equal(t, got.SyncStatus, database.StatusPending, "status before sync mismatch")
	assert.Equal(t, got.IsLocalOnly, true, "should be local only before sync")

	items := database.MustListQueue(t, ctx.DB)
	assert.Equal(t, len(items), 1, "queue length before sync mismatch")
	assert.Equal(t, items[0].Action, database.ActionCreate, "action mismatch")

	// connectivity returns
	c.Advance(time.Minute)
	e := New(store, store, gw, WithClock(c))

	r, err := e.SyncWithServer(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing"))
	}

	got = database.MustGetNote(t, ctx.DB, n.LocalID)
	assert.Equal(t, got.RemoteName, "notes/42", "remote name mismatch")
	assert.Equal(t, got.SyncStatus, database.StatusSynced, "status mismatch")
	assert.Equal(t, got.IsLocalOnly, false, "should not be local only")
	assert.Equal(t, got.Content, "Buy milk", "content mismatch")
	assert.Equal(t, got.UpdateTime, c.Now().UnixNano(), "update time should come from the server")
	assert.Equal(t, got.LastSyncTime, c.Now().UnixNano(), "last sync time mismatch")
	assert.Equal(t, len(database.MustListQueue(t, ctx.DB)), 0, "queue should be empty")

	assert.Equal(t, r.Processed, 1, "processed mismatch")
	assert.Equal(t, r.Inserted, 0, "the created note should not be inserted again")
	assert.Equal(t, r.OK(), true, "report should be ok")
}

func TestQueueOrdering(t *testing.T) {
	env := newTestEnv(t)

	database.MustInsertNote(t, env.db, database.NewNote("n1", "Buy milk", 1))
	database.MustEnqueue(t, env.db, database.NewQueueItem("n1", database.ActionCreate, "Buy", "", 1))
	database.MustEnqueue(t, env.db, database.NewQueueItem("n1", database.ActionUpdate, "Buy milk", "", 2))

	r, err := env.engine().SyncWithServer(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing"))
	}

	assert.DeepEqual(t, env.gw.calls, []string{"create n1", "update notes/42", "list"}, "calls mismatch")
	assert.Equal(t, len(database.MustListQueue(t, env.db)), 0, "queue should be empty")
	assert.Equal(t, r.Processed, 2, "processed mismatch")
	assert.Equal(t, env.gw.notes["notes/42"].Content, "Buy milk", "remote content mismatch")
}

func TestQueueOrdering_createFails(t *testing.T) {
	env := newTestEnv(t)
	env.gw.createErr["n1"] = errUnreachable

	database.MustInsertNote(t, env.db, database.NewNote("n1", "Buy milk", 1))
	create := database.MustEnqueue(t, env.db, database.NewQueueItem("n1", database.ActionCreate, "Buy", "", 1))
	update := database.MustEnqueue(t, env.db, database.NewQueueItem("n1", database.ActionUpdate, "Buy milk", "", 2))

	r, err := env.engine().SyncWithServer(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing"))
	}

	assert.DeepEqual(t, env.gw.calls, []string{"create n1", "list"}, "update should not be attempted")
	assert.DeepEqual(t, getItemIDs(database.MustListQueue(t, env.db)), []int{create.ID, update.ID}, "both items should be kept")
	assert.Equal(t, r.Failed, 1, "failed mismatch")
	assert.Equal(t, r.Deferred, 1, "deferred mismatch")
	assert.Equal(t, database.MustGetNote(t, env.db, "n1").SyncStatus, database.StatusFailed, "status mismatch")

	// the server comes back
	delete(env.gw.createErr, "n1")

	r, err = env.engine().SyncWithServer(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing again"))
	}

	assert.Equal(t, r.Processed, 2, "processed mismatch on retry")
	assert.Equal(t, len(database.MustListQueue(t, env.db)), 0, "queue should be empty")

	got := database.MustGetNote(t, env.db, "n1")
	assert.Equal(t, got.RemoteName, "notes/42", "remote name mismatch")
	assert.Equal(t, got.SyncStatus, database.StatusSynced, "status mismatch after retry")
}

func TestMootItems(t *testing.T) {
	testCases := []struct {
		note   *database.Note
		action database.Action
	}{
		{
			// note removed before the create was sent
			note:   nil,
			action: database.ActionCreate,
		},
		{
			note:   nil,
			action: database.ActionUpdate,
		},
		{
			// create already landed in an earlier pass
			note:   &database.Note{LocalID: "n1", RemoteName: "notes/7", Content: "foo", SyncStatus: database.StatusSyncing},
			action: database.ActionCreate,
		},
		{
			// update without a create to wait for
			note:   &database.Note{LocalID: "n1", Content: "foo", SyncStatus: database.StatusPending, IsLocalOnly: true},
			action: database.ActionUpdate,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			env := newTestEnv(t)

			if tc.note != nil {
				database.MustInsertNote(t, env.db, *tc.note)
			}
			database.MustEnqueue(t, env.db, database.NewQueueItem("n1", tc.action, "foo", "", 1))

			r, err := env.engine().SyncWithServer(context.Background())
			if err != nil {
				t.Fatal(errors.Wrap(err, "syncing"))
			}

			assert.DeepEqual(t, env.gw.calls, []string{"list"}, "gateway should only be listed")
			assert.Equal(t, len(database.MustListQueue(t, env.db)), 0, "item should be removed")
			assert.Equal(t, r.Moot, 1, "moot mismatch")
			assert.Equal(t, r.Processed, 0, "processed mismatch")
		})
	}
}

func TestDelete(t *testing.T) {
	testCases := []struct {
		remoteName    string
		deleteErr     error
		expectedCalls []string
	}{
		{
			remoteName:    "notes/7",
			expectedCalls: []string{"delete notes/7", "list"},
		},
		{
			remoteName:    "notes/7",
			deleteErr:     errUnreachable,
			expectedCalls: []string{"delete notes/7", "list"},
		},
		{
			// never reached the server
			remoteName:    "",
			expectedCalls: []string{"list"},
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			env := newTestEnv(t)
			env.gw.deleteErr = tc.deleteErr

			database.MustEnqueue(t, env.db, database.NewQueueItem("n1", database.ActionDelete, "", tc.remoteName, 1))

			r, err := env.engine().SyncWithServer(context.Background())
			if err != nil {
				t.Fatal(errors.Wrap(err, "syncing"))
			}

			assert.DeepEqual(t, env.gw.calls, tc.expectedCalls, "calls mismatch")
			assert.Equal(t, len(database.MustListQueue(t, env.db)), 0, "item should be removed")
			assert.Equal(t, r.Processed, 1, "processed mismatch")
		})
	}
}

func TestRemovedAfterCreate(t *testing.T) {
	env := newTestEnv(t)

	database.MustInsertNote(t, env.db, database.Note{LocalID: "n1", RemoteName: "notes/7", Content: "foo", SyncStatus: database.StatusSynced})
	env.gw.put(client.RemoteNote{Name: "notes/7", Content: "foo", UpdateTime: time.Unix(0, 1)})

	ctx := clictx.InitTestCtxWithDB(t, env.db)
	database.MustEnqueue(t, env.db, database.NewQueueItem("n1", database.ActionUpdate, "foo", "notes/7", 1))
	if _, err := operations.Remove(ctx, "n1"); err != nil {
		t.Fatal(errors.Wrap(err, "removing"))
	}

	r, err := env.engine().SyncWithServer(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing"))
	}

	assert.DeepEqual(t, env.gw.calls, []string{"delete notes/7", "list"}, "calls mismatch")
	assert.Equal(t, r.Moot, 1, "the update should be moot")
	assert.Equal(t, r.Processed, 1, "the delete should be processed")
	assert.Equal(t, r.Inserted, 0, "the deleted note should not come back")

	_, err = database.GetNote(env.db, "n1")
	assert.Equal(t, err, database.ErrNotFound, "note should stay removed")
}

func TestLastWriteWins(t *testing.T) {
	testCases := []struct {
		localUpdate     int64
		remoteUpdate    int64
		expectedContent string
		overwritten     int
	}{
		{
			localUpdate:     100,
			remoteUpdate:    200,
			expectedContent: "remote",
			overwritten:     1,
		},
		{
			localUpdate:     200,
			remoteUpdate:    200,
			expectedContent: "local",
			overwritten:     0,
		},
		{
			localUpdate:     300,
			remoteUpdate:    200,
			expectedContent: "local",
			overwritten:     0,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			env := newTestEnv(t)

			database.MustInsertNote(t, env.db, database.Note{
				LocalID:    "n1",
				RemoteName: "notes/7",
				Content:    "local",
				CreateTime: 50,
				UpdateTime: tc.localUpdate,
				SyncStatus: database.StatusPending,
			})
			env.gw.put(client.RemoteNote{
				Name:       "notes/7",
				Content:    "remote",
				CreateTime: time.Unix(0, 50),
				UpdateTime: time.Unix(0, tc.remoteUpdate),
				Pinned:     true,
			})

			r, err := env.engine().SyncWithServer(context.Background())
			if err != nil {
				t.Fatal(errors.Wrap(err, "syncing"))
			}

			got := database.MustGetNote(t, env.db, "n1")
			assert.Equal(t, got.Content, tc.expectedContent, "content mismatch")
			assert.Equal(t, got.SyncStatus, database.StatusSynced, "status mismatch")
			assert.Equal(t, got.Pinned, tc.overwritten == 1, "pinned should follow the winner")
			assert.Equal(t, r.Overwritten, tc.overwritten, "overwritten mismatch")
		})
	}
}

func TestInsertRemoteNotes(t *testing.T) {
	env := newTestEnv(t)

	env.gw.put(client.RemoteNote{Name: "notes/1", Content: "from the web", CreateTime: time.Unix(10, 0), UpdateTime: time.Unix(20, 0), Visibility: "PUBLIC", State: "NORMAL"})
	env.gw.put(client.RemoteNote{Name: "notes/2", Content: "from the phone", CreateTime: time.Unix(30, 0), UpdateTime: time.Unix(30, 0)})

	ids := []string{"local-a", "local-b"}
	e := env.engine(WithIDGenerator(func() (string, error) {
		id := ids[0]
		ids = ids[1:]
		return id, nil
	}))

	r, err := e.SyncWithServer(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing"))
	}

	assert.Equal(t, r.Inserted, 2, "inserted mismatch")

	got := database.MustGetNote(t, env.db, "local-a")
	assert.DeepEqual(t, got, database.Note{
		LocalID:      "local-a",
		RemoteName:   "notes/1",
		Content:      "from the web",
		CreateTime:   time.Unix(10, 0).UnixNano(),
		UpdateTime:   time.Unix(20, 0).UnixNano(),
		Visibility:   "PUBLIC",
		State:        "NORMAL",
		SyncStatus:   database.StatusSynced,
		IsLocalOnly:  false,
		LastSyncTime: env.clock.Now().UnixNano(),
	}, "inserted note mismatch")

	assert.Equal(t, database.MustGetNote(t, env.db, "local-b").RemoteName, "notes/2", "second note mismatch")
}

func TestPartialFailureIsolation(t *testing.T) {
	env := newTestEnv(t)
	env.gw.createErr["n2"] = errUnreachable

	for i, id := range []string{"n1", "n2", "n3"} {
		database.MustInsertNote(t, env.db, database.NewNote(id, fmt.Sprintf("note %d", i+1), int64(i+1)))
		database.MustEnqueue(t, env.db, database.NewQueueItem(id, database.ActionCreate, "", "", int64(i+1)))
	}
	items := database.MustListQueue(t, env.db)

	r, err := env.engine().SyncWithServer(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "phase 1 failures should not surface"))
	}

	assert.DeepEqual(t, env.gw.calls, []string{"create n1", "create n2", "create n3", "list"}, "calls mismatch")
	assert.DeepEqual(t, getItemIDs(database.MustListQueue(t, env.db)), []int{items[1].ID}, "only item 2 should be kept")

	assert.Equal(t, database.MustGetNote(t, env.db, "n1").SyncStatus, database.StatusSynced, "n1 status mismatch")
	assert.Equal(t, database.MustGetNote(t, env.db, "n2").SyncStatus, database.StatusFailed, "n2 status mismatch")
	assert.Equal(t, database.MustGetNote(t, env.db, "n3").SyncStatus, database.StatusSynced, "n3 status mismatch")
	assert.Equal(t, database.MustGetNote(t, env.db, "n2").IsLocalOnly, true, "n2 should stay local only")

	assert.Equal(t, r.Processed, 2, "processed mismatch")
	assert.Equal(t, r.Failed, 1, "failed mismatch")
	assert.Equal(t, r.OK(), false, "report should not be ok")
}

func TestStoreErrorIsolation(t *testing.T) {
	env := newTestEnv(t)

	database.MustInsertNote(t, env.db, database.NewNote("n1", "one", 1))
	database.MustInsertNote(t, env.db, database.NewNote("n2", "two", 2))
	database.MustEnqueue(t, env.db, database.NewQueueItem("n1", database.ActionCreate, "", "", 1))
	broken := database.MustEnqueue(t, env.db, database.NewQueueItem("n2", database.ActionCreate, "", "", 2))

	notes := brokenNoteStore{NoteStore: env.store, brokenID: "n2"}
	e := New(notes, env.store, env.gw, WithClock(env.clock))

	r, err := e.SyncWithServer(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing"))
	}

	assert.DeepEqual(t, env.gw.calls, []string{"create n1", "list"}, "calls mismatch")
	assert.DeepEqual(t, getItemIDs(database.MustListQueue(t, env.db)), []int{broken.ID}, "broken item should be kept")
	assert.Equal(t, r.Failed, 1, "failed mismatch")
	assert.Equal(t, r.Processed, 1, "processed mismatch")
}

func TestIdempotentRerun(t *testing.T) {
	env := newTestEnv(t)

	database.MustInsertNote(t, env.db, database.NewNote("n1", "Buy milk", 1))
	database.MustEnqueue(t, env.db, database.NewQueueItem("n1", database.ActionCreate, "Buy milk", "", 1))
	env.gw.put(client.RemoteNote{Name: "notes/1", Content: "remote", UpdateTime: time.Unix(5, 0)})

	e := env.engine()
	if _, err := e.SyncWithServer(context.Background()); err != nil {
		t.Fatal(errors.Wrap(err, "first sync"))
	}

	before, err := database.ListNotes(env.db)
	if err != nil {
		t.Fatal(errors.Wrap(err, "listing notes"))
	}

	env.gw.calls = nil
	r, err := e.SyncWithServer(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "second sync"))
	}

	after, err := database.ListNotes(env.db)
	if err != nil {
		t.Fatal(errors.Wrap(err, "listing notes"))
	}

	assert.DeepEqual(t, after, before, "notes should not change")
	assert.DeepEqual(t, env.gw.calls, []string{"list"}, "only the listing should be fetched")
	assert.Equal(t, len(database.MustListQueue(t, env.db)), 0, "queue should be empty")
	assert.Equal(t, r.Processed+r.Inserted+r.Overwritten+r.Failed, 0, "nothing should happen")

	for _, n := range after {
		assert.Equal(t, n.SyncStatus, database.StatusSynced, fmt.Sprintf("status of %s", n.LocalID))
	}
}

func TestListFailure(t *testing.T) {
	env := newTestEnv(t)
	env.gw.listErr = &client.ServerError{StatusCode: 502, Message: "bad gateway"}

	var observed []Report
	e := env.engine(WithObserver(func(r Report) {
		observed = append(observed, r)
	}))

	database.MustInsertNote(t, env.db, database.NewNote("n1", "Buy milk", 1))
	database.MustEnqueue(t, env.db, database.NewQueueItem("n1", database.ActionCreate, "Buy milk", "", 1))

	r, err := e.SyncWithServer(context.Background())
	assert.Equal(t, client.IsRetryable(err), true, "list error should propagate")

	assert.Equal(t, len(database.MustListQueue(t, env.db)), 0, "phase 1 should stay committed")
	assert.Equal(t, database.MustGetNote(t, env.db, "n1").RemoteName, "notes/42", "remote name mismatch")
	assert.Equal(t, r.Processed, 1, "processed mismatch")
	assert.NotEqual(t, r.Err, "", "report should carry the error")

	assert.Equal(t, len(observed), 1, "observer should be called once")
	assert.Equal(t, observed[0].Err, r.Err, "observed report mismatch")
}

func TestCancellation(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []string{"n1", "n2"} {
		database.MustInsertNote(t, env.db, database.NewNote(id, id, 1))
		database.MustEnqueue(t, env.db, database.NewQueueItem(id, database.ActionCreate, id, "", 1))
	}
	items := database.MustListQueue(t, env.db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env.gw.beforeCall = func(call string) {
		if call == "create n1" {
			cancel()
		}
	}

	_, err := env.engine().SyncWithServer(ctx)
	assert.Equal(t, errors.Is(err, context.Canceled), true, "error should be the cancellation")

	assert.DeepEqual(t, env.gw.calls, []string{"create n1"}, "no call should follow the cancellation")
	assert.DeepEqual(t, getItemIDs(database.MustListQueue(t, env.db)), []int{items[1].ID}, "unprocessed item should be kept")
	assert.Equal(t, database.MustGetNote(t, env.db, "n2").SyncStatus, database.StatusPending, "n2 should be untouched")
}

func TestSyncInProgress(t *testing.T) {
	env := newTestEnv(t)
	e := env.engine()

	var nested error
	env.gw.beforeCall = func(call string) {
		if call == "list" {
			_, nested = e.SyncWithServer(context.Background())
		}
	}

	if _, err := e.SyncWithServer(context.Background()); err != nil {
		t.Fatal(errors.Wrap(err, "syncing"))
	}

	assert.Equal(t, nested, ErrSyncInProgress, "overlapping pass should be refused")
	assert.DeepEqual(t, env.gw.calls, []string{"list"}, "only one pass should run")
}

func TestLostCreateResponse(t *testing.T) {
	env := newTestEnv(t)
	env.gw.lostResponse["n1"] = errUnreachable

	database.MustInsertNote(t, env.db, database.NewNote("n1", "Buy milk", 1))
	create := database.MustEnqueue(t, env.db, database.NewQueueItem("n1", database.ActionCreate, "Buy milk", "", 1))

	e := env.engine(WithIDGenerator(func() (string, error) {
		return "", errors.New("no note should be inserted")
	}))

	// the create lands but the response is lost
	r, err := e.SyncWithServer(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing"))
	}

	assert.Equal(t, r.Failed, 1, "failed mismatch")
	assert.Equal(t, r.Inserted, 0, "the created note should not be inserted again")
	assert.DeepEqual(t, getItemIDs(database.MustListQueue(t, env.db)), []int{create.ID}, "create should be kept")

	got := database.MustGetNote(t, env.db, "n1")
	assert.Equal(t, got.RemoteName, "notes/42", "remote name mismatch")
	assert.Equal(t, got.SyncStatus, database.StatusSynced, "status mismatch")
	assert.Equal(t, got.IsLocalOnly, false, "should not be local only")

	// the retried create is moot
	delete(env.gw.lostResponse, "n1")
	env.gw.calls = nil

	r, err = e.SyncWithServer(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing again"))
	}

	assert.Equal(t, r.Moot, 1, "moot mismatch")
	assert.DeepEqual(t, env.gw.calls, []string{"list"}, "no create should be sent")
	assert.Equal(t, len(database.MustListQueue(t, env.db)), 0, "queue should be empty")

	notes, err := database.ListNotes(env.db)
	if err != nil {
		t.Fatal(errors.Wrap(err, "listing notes"))
	}
	assert.Equal(t, len(notes), 1, "note count mismatch")
	assert.Equal(t, len(env.gw.notes), 1, "remote note count mismatch")
}
