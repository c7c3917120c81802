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

package controllers

import (
	"net/http"
	"strconv"

	"github.com/dnote/memosync/pkg/server/app"
	"github.com/dnote/memosync/pkg/server/context"
	"github.com/dnote/memosync/pkg/server/database"
	"github.com/dnote/memosync/pkg/server/log"
	mw "github.com/dnote/memosync/pkg/server/middleware"
	"github.com/dnote/memosync/pkg/server/operations"
	"github.com/dnote/memosync/pkg/server/permissions"
	"github.com/dnote/memosync/pkg/server/presenters"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

var errInvalidPageSize = errors.New("pageSize must be a non-negative integer")

// NewMemos creates a new Memos controller.
func NewMemos(app *app.App) *Memos {
	return &Memos{
		app: app,
	}
}

// Memos is a memos controller.
type Memos struct {
	app *app.App
}

// Index handles GET /api/v1/memos
func (m *Memos) Index(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	q := r.URL.Query()

	var pageSize int
	if s := q.Get("pageSize"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			mw.DoError(w, "parsing pageSize", errInvalidPageSize, http.StatusBadRequest)
			return
		}
		pageSize = n
	}

	res, err := m.app.ListMemos(*user, app.ListMemosParams{
		PageSize:  pageSize,
		PageToken: q.Get("pageToken"),
		State:     q.Get("state"),
	})
	if err != nil {
		handleJSONError(w, err, "listing memos")
		return
	}

	mw.RespondJSON(w, http.StatusOK, presenters.ListMemosResponse{
		Memos:         presenters.PresentMemos(res.Memos),
		NextPageToken: res.NextPageToken,
	})
}

// createMemoPayload is the payload of POST /api/v1/memos
type createMemoPayload struct {
	Content    string `json:"content"`
	Visibility string `json:"visibility"`
	Pinned     bool   `json:"pinned"`
}

// Create handles POST /api/v1/memos. The optional memoId query parameter is
// the uid chosen by the client.
func (m *Memos) Create(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	var payload createMemoPayload
	if err := parseRequestData(w, r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	memo, err := m.app.CreateMemo(*user, app.CreateMemoParams{
		UID:        r.URL.Query().Get("memoId"),
		Content:    payload.Content,
		Visibility: payload.Visibility,
		Pinned:     payload.Pinned,
	})
	if err != nil {
		handleJSONError(w, err, "creating memo")
		return
	}

	log.WithFields(log.Fields{
		"user_id": user.ID,
		"uid":     memo.UID,
	}).Debug("memo created")

	mw.RespondJSON(w, http.StatusOK, presenters.PresentMemo(memo))
}

// Show handles GET /api/v1/memos/{memoID}
func (m *Memos) Show(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	memo, ok, err := operations.GetMemo(m.app.DB, mux.Vars(r)["memoID"], user)
	if err != nil {
		handleJSONError(w, err, "finding memo")
		return
	}
	if !ok {
		handleJSONError(w, app.ErrNotFound, "finding memo")
		return
	}

	mw.RespondJSON(w, http.StatusOK, presenters.PresentMemo(memo))
}

// getEditableMemo finds the memo in the route that the user may change. It
// responds with an error and returns false otherwise.
func (m *Memos) getEditableMemo(w http.ResponseWriter, r *http.Request, user *database.User) (database.Memo, bool) {
	memo, ok, err := operations.GetMemo(m.app.DB, mux.Vars(r)["memoID"], user)
	if err != nil {
		handleJSONError(w, err, "finding memo")
		return memo, false
	}
	if !ok {
		handleJSONError(w, app.ErrNotFound, "finding memo")
		return memo, false
	}
	if !permissions.EditMemo(user, memo) {
		mw.RespondError(w, http.StatusForbidden, http.StatusText(http.StatusForbidden))
		return memo, false
	}

	return memo, true
}

// updateMemoPayload is the payload of PATCH /api/v1/memos/{memoID}. Only the
// fields named by the update mask are read.
type updateMemoPayload struct {
	Content    *string `json:"content"`
	Visibility *string `json:"visibility"`
	State      *string `json:"state"`
	Pinned     *bool   `json:"pinned"`
}

func (p updateMemoPayload) toParams(mask map[string]bool) app.UpdateMemoParams {
	var ret app.UpdateMemoParams

	if mask["content"] {
		ret.Content = p.Content
		if ret.Content == nil {
			empty := ""
			ret.Content = &empty
		}
	}
	if mask["visibility"] {
		ret.Visibility = p.Visibility
	}
	if mask["state"] {
		ret.State = p.State
	}
	if mask["pinned"] {
		ret.Pinned = p.Pinned
		if ret.Pinned == nil {
			f := false
			ret.Pinned = &f
		}
	}

	return ret
}

// Update handles PATCH /api/v1/memos/{memoID}?updateMask=
func (m *Memos) Update(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	mask, err := app.ParseUpdateMask(r.URL.Query().Get("updateMask"))
	if err != nil {
		handleJSONError(w, err, "parsing updateMask")
		return
	}

	var payload updateMemoPayload
	if err := parseRequestData(w, r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	memo, ok := m.getEditableMemo(w, r, user)
	if !ok {
		return
	}

	memo, err = m.app.UpdateMemo(memo, payload.toParams(mask))
	if err != nil {
		handleJSONError(w, err, "updating memo")
		return
	}

	mw.RespondJSON(w, http.StatusOK, presenters.PresentMemo(memo))
}

// Delete handles DELETE /api/v1/memos/{memoID}
func (m *Memos) Delete(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	memo, ok := m.getEditableMemo(w, r, user)
	if !ok {
		return
	}

	if err := m.app.DeleteMemo(memo); err != nil {
		handleJSONError(w, err, "deleting memo")
		return
	}

	mw.RespondJSON(w, http.StatusOK, struct{}{})
}
