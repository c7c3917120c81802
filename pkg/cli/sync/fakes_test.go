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
	"net/http"
	"testing"

	"github.com/dnote/memosync/pkg/cli/client"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/clock"
)

// fakeGateway is an in-memory server that records the calls it receives
type fakeGateway struct {
	clock  clock.Clock
	nextID int
	notes  map[string]client.RemoteNote
	order  []string
	calls  []string

	listErr   error
	createErr map[string]error
	updateErr map[string]error
	deleteErr error

	// lostResponse applies the create but fails the call
	lostResponse map[string]error

	beforeCall func(call string)
}

func newFakeGateway(c clock.Clock) *fakeGateway {
	return &fakeGateway{
		clock:        c,
		nextID:       42,
		notes:        map[string]client.RemoteNote{},
		createErr:    map[string]error{},
		lostResponse: map[string]error{},
		updateErr:    map[string]error{},
	}
}

func (g *fakeGateway) record(call string) {
	if g.beforeCall != nil {
		g.beforeCall(call)
	}

	g.calls = append(g.calls, call)
}

func (g *fakeGateway) put(rn client.RemoteNote) {
	if _, ok := g.notes[rn.Name]; !ok {
		g.order = append(g.order, rn.Name)
	}

	g.notes[rn.Name] = rn
}

func (g *fakeGateway) ListNotes(ctx context.Context) ([]client.RemoteNote, error) {
	g.record("list")

	if g.listErr != nil {
		return nil, g.listErr
	}

	ret := []client.RemoteNote{}
	for _, name := range g.order {
		ret = append(ret, g.notes[name])
	}

	return ret, nil
}

func (g *fakeGateway) CreateNote(ctx context.Context, localID, content string) (client.RemoteNote, error) {
	g.record(fmt.Sprintf("create %s", localID))

	if err := g.createErr[localID]; err != nil {
		return client.RemoteNote{}, err
	}

	now := g.clock.Now()
	rn := client.RemoteNote{
		Name:       fmt.Sprintf("notes/%d", g.nextID),
		UID:        localID,
		Content:    content,
		CreateTime: now,
		UpdateTime: now,
		Visibility: "PRIVATE",
		State:      "NORMAL",
	}
	g.nextID++
	g.put(rn)

	if err := g.lostResponse[localID]; err != nil {
		return client.RemoteNote{}, err
	}

	return rn, nil
}

func (g *fakeGateway) UpdateNote(ctx context.Context, name, content string) (client.RemoteNote, error) {
	g.record(fmt.Sprintf("update %s", name))

	if err := g.updateErr[name]; err != nil {
		return client.RemoteNote{}, err
	}

	rn, ok := g.notes[name]
	if !ok {
		return client.RemoteNote{}, &client.ServerError{StatusCode: http.StatusNotFound, Message: "not found"}
	}

	rn.Content = content
	rn.UpdateTime = g.clock.Now()
	g.put(rn)

	return rn, nil
}

func (g *fakeGateway) DeleteNote(ctx context.Context, name string) error {
	g.record(fmt.Sprintf("delete %s", name))

	if g.deleteErr != nil {
		return g.deleteErr
	}

	delete(g.notes, name)
	for i, n := range g.order {
		if n == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}

	return nil
}

// memStore is a map backed NoteStore with an empty queue
type memStore struct {
	notes map[string]database.Note
}

func newMemStore() *memStore {
	return &memStore{notes: map[string]database.Note{}}
}

func (s *memStore) GetNote(localID string) (database.Note, error) {
	n, ok := s.notes[localID]
	if !ok {
		return database.Note{}, database.ErrNotFound
	}

	return n, nil
}

func (s *memStore) GetNoteByRemoteName(name string) (database.Note, error) {
	for _, n := range s.notes {
		if name != "" && n.RemoteName == name {
			return n, nil
		}
	}

	return database.Note{}, database.ErrNotFound
}

func (s *memStore) SaveNote(n database.Note) error {
	if err := n.Validate(); err != nil {
		return err
	}

	s.notes[n.LocalID] = n
	return nil
}

func (s *memStore) ListQueue() ([]database.QueueItem, error) {
	return nil, nil
}

func (s *memStore) DeleteQueueItem(id int) error {
	return nil
}

func (s *memStore) HasCreateBefore(noteID string, id int) (bool, error) {
	return false, nil
}

// brokenNoteStore fails every lookup of one note
type brokenNoteStore struct {
	NoteStore
	brokenID string
}

func (s brokenNoteStore) GetNote(localID string) (database.Note, error) {
	if localID == s.brokenID {
		return database.Note{}, &database.StoreError{Op: "getting note", Err: fmt.Errorf("disk I/O error")}
	}

	return s.NoteStore.GetNote(localID)
}

type testEnv struct {
	db    *database.DB
	store *database.Store
	clock *clock.Mock
	gw    *fakeGateway
}

func newTestEnv(t *testing.T) testEnv {
	db := database.InitTestMemoryDB(t)
	c := clock.NewMock()

	return testEnv{
		db:    db,
		store: database.NewStore(db),
		clock: c,
		gw:    newFakeGateway(c),
	}
}

func (env testEnv) engine(opts ...Option) *Engine {
	opts = append([]Option{WithClock(env.clock)}, opts...)
	return New(env.store, env.store, env.gw, opts...)
}
