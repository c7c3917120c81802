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

package ui

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/dnote/memosync/pkg/assert"
	"github.com/dnote/memosync/pkg/cli/consts"
	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/pkg/errors"
)

func TestNewTmpContentFile(t *testing.T) {
	ctx := context.InitTestCtx(t)

	p1, err := newTmpContentFile(ctx, "Buy milk")
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating the first file"))
	}
	p2, err := newTmpContentFile(ctx, "")
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating the second file"))
	}

	assert.NotEqual(t, p1, p2, "paths should not collide")
	assert.Equal(t, filepath.Dir(p1), ctx.Paths.Cache, "directory mismatch")
	assert.Equal(t, strings.HasPrefix(filepath.Base(p1), consts.TmpContentFileBase), true, "prefix mismatch")
	assert.Equal(t, filepath.Ext(p1), "."+consts.TmpContentFileExt, "extension mismatch")

	b, err := os.ReadFile(p1)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading the file"))
	}
	assert.Equal(t, string(b), "Buy milk", "initial content mismatch")
}

func TestNewEditorCmd(t *testing.T) {
	ctx := context.InitTestCtx(t)

	_, err := newEditorCmd(ctx, "/tmp/note.md")
	assert.Equal(t, err, ErrEditorNotSet, "error mismatch")

	ctx.Editor = "code -n -w"
	cmd, err := newEditorCmd(ctx, "/tmp/note.md")
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating the command"))
	}
	assert.DeepEqual(t, cmd.Args, []string{"code", "-n", "-w", "/tmp/note.md"}, "args mismatch")
}

func TestGetEditorInput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as the editor")
	}

	ctx := context.InitTestCtx(t)

	// an editor that appends a line to the file it is given
	script := filepath.Join(t.TempDir(), "editor.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nprintf '\\nand eggs' >> \"$1\"\n"), 0755); err != nil {
		t.Fatal(errors.Wrap(err, "writing the editor script"))
	}
	ctx.Editor = script

	got, err := GetEditorInput(ctx, "Buy milk")
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	assert.Equal(t, got, "Buy milk\nand eggs", "content mismatch")

	entries, err := os.ReadDir(ctx.Paths.Cache)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading the cache dir"))
	}
	assert.Equal(t, len(entries), 0, "the temporary file should be removed")
}
