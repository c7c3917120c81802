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

// Package ui provides the user interface for the program
package ui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dnote/memosync/pkg/cli/consts"
	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/pkg/errors"
)

// ErrEditorNotSet is returned when no editor command is configured
var ErrEditorNotSet = errors.New("no editor is configured. set 'editor' in the config file")

// newTmpContentFile creates an empty file in the cache directory for the
// editor to work on
func newTmpContentFile(ctx context.MemosyncCtx, initial string) (string, error) {
	pattern := fmt.Sprintf("%s_*.%s", consts.TmpContentFileBase, consts.TmpContentFileExt)

	f, err := os.CreateTemp(ctx.Paths.Cache, pattern)
	if err != nil {
		return "", errors.Wrap(err, "creating a temporary content file")
	}
	defer f.Close()

	if _, err := f.WriteString(initial); err != nil {
		os.Remove(f.Name())
		return "", errors.Wrap(err, "writing the temporary content file")
	}

	return f.Name(), nil
}

func newEditorCmd(ctx context.MemosyncCtx, fpath string) (*exec.Cmd, error) {
	args := strings.Fields(ctx.Editor)
	if len(args) == 0 {
		return nil, ErrEditorNotSet
	}

	return exec.Command(args[0], append(args[1:], fpath)...), nil
}

// GetEditorInput opens the configured editor on a file holding initial and
// returns what the file contains once the editor exits
func GetEditorInput(ctx context.MemosyncCtx, initial string) (string, error) {
	fpath, err := newTmpContentFile(ctx, initial)
	if err != nil {
		return "", err
	}
	defer os.Remove(fpath)

	cmd, err := newEditorCmd(ctx, fpath)
	if err != nil {
		return "", errors.Wrap(err, "creating an editor command")
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", errors.Wrap(err, "running the editor")
	}

	b, err := os.ReadFile(fpath)
	if err != nil {
		return "", errors.Wrap(err, "reading the temporary content file")
	}

	return string(b), nil
}
