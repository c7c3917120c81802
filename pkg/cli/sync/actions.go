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
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/pkg/errors"
)

// Outcome is the result of handling one queue item
type Outcome int

const (
	// Completed means the remote call succeeded and the item is removed
	Completed Outcome = iota
	// Retry means the item stays queued for the next pass
	Retry
	// Moot means the item no longer applies and is removed without a remote call
	Moot
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Retry:
		return "retry"
	case Moot:
		return "moot"
	default:
		return "unknown"
	}
}

// Action is a queue item converted into the variant its handler needs
type Action interface {
	itemID() int
	noteID() string
}

// CreateAction creates a local note on the server
type CreateAction struct {
	ItemID int
	NoteID string
}

// UpdateAction sends the current content of a note to the server
type UpdateAction struct {
	ItemID int
	NoteID string
}

// DeleteAction removes a note from the server. RemoteName is captured when
// the note is removed locally.
type DeleteAction struct {
	ItemID     int
	NoteID     string
	RemoteName string
}

func (a CreateAction) itemID() int    { return a.ItemID }
func (a CreateAction) noteID() string { return a.NoteID }
func (a UpdateAction) itemID() int    { return a.ItemID }
func (a UpdateAction) noteID() string { return a.NoteID }
func (a DeleteAction) itemID() int    { return a.ItemID }
func (a DeleteAction) noteID() string { return a.NoteID }

// toAction converts a queue item into its action variant
func toAction(item database.QueueItem) (Action, error) {
	switch item.Action {
	case database.ActionCreate:
		return CreateAction{ItemID: item.ID, NoteID: item.NoteID}, nil
	case database.ActionUpdate:
		return UpdateAction{ItemID: item.ID, NoteID: item.NoteID}, nil
	case database.ActionDelete:
		return DeleteAction{ItemID: item.ID, NoteID: item.NoteID, RemoteName: item.RemoteName}, nil
	default:
		return nil, errors.Errorf("unknown action '%s' in queue item %d", item.Action, item.ID)
	}
}
