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

package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dnote/memosync/pkg/assert"
	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/pkg/errors"
)

func setupNote(t *testing.T) context.MemosyncCtx {
	ctx := context.InitTestCtx(t)

	database.MustInsertNote(t, ctx.DB, database.Note{
		LocalID:    "1a2b3c4d-aaaa-4bbb-8ccc-000000000001",
		RemoteName: "memos/1a2b3c4d-aaaa-4bbb-8ccc-000000000001",
		Content:    "Buy milk",
		CreateTime: 1515199943000000000,
		UpdateTime: 1515199943000000000,
		Visibility: "PRIVATE",
		State:      "NORMAL",
		SyncStatus: database.StatusSynced,
	})

	return ctx
}

func TestViewNote(t *testing.T) {
	ctx := setupNote(t)

	var buf bytes.Buffer
	if err := viewNote(ctx, &buf, "1a2b", false); err != nil {
		t.Fatal(errors.Wrap(err, "viewing"))
	}

	got := buf.String()
	assert.Equal(t, strings.Contains(got, "note id: 1a2b3c4d-aaaa-4bbb-8ccc-000000000001\n"), true, "id line missing")
	assert.Equal(t, strings.Contains(got, "remote name: memos/1a2b3c4d"), true, "remote name missing")
	assert.Equal(t, strings.Contains(got, "status: synced\n"), true, "status missing")
	assert.Equal(t, strings.Contains(got, "updated at"), false, "unmodified note should not print update time")
	assert.Equal(t, strings.Contains(got, "Buy milk"), true, "content missing")
}

func TestViewNoteContentOnly(t *testing.T) {
	ctx := setupNote(t)

	var buf bytes.Buffer
	if err := viewNote(ctx, &buf, "1a2b3c4d", true); err != nil {
		t.Fatal(errors.Wrap(err, "viewing"))
	}

	assert.Equal(t, buf.String(), "Buy milk", "content mismatch")
}

func TestViewNote_notFound(t *testing.T) {
	ctx := setupNote(t)

	var buf bytes.Buffer
	err := viewNote(ctx, &buf, "ffff", false)

	assert.Equal(t, errors.Is(err, database.ErrNotFound), true, "error mismatch")
	assert.Equal(t, buf.Len(), 0, "nothing should be written")
}
