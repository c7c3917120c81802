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
	"fmt"
	"io"
	"os"

	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/cli/infra"
	"github.com/dnote/memosync/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  * View a note by id. A unique prefix of the id is enough
  memosync view 1a2b3c4d

  * Print only the content, for piping
  memosync view 1a2b --content-only | wc -w
`

var contentOnly bool

// NewCmd returns a new view command
func NewCmd(ctx context.MemosyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "view <note id>",
		Aliases: []string{"v", "cat"},
		Short:   "View a note",
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&contentOnly, "content-only", "", false, "print the note content only")

	return cmd
}

func viewNote(ctx context.MemosyncCtx, w io.Writer, prefix string, contentOnly bool) error {
	n, err := database.FindNoteByPrefix(ctx.DB, prefix)
	if err != nil {
		return errors.Wrapf(err, "finding note %s", prefix)
	}

	if contentOnly {
		if _, err := fmt.Fprint(w, n.Content); err != nil {
			return errors.Wrap(err, "writing the content")
		}

		return nil
	}

	remote := n.RemoteName
	if remote == "" {
		remote = "(not synced yet)"
	}

	fmt.Fprintf(w, "note id: %s\n", n.LocalID)
	fmt.Fprintf(w, "remote name: %s\n", remote)
	fmt.Fprintf(w, "created at: %s\n", output.FormatTime(n.CreateTime))
	if n.UpdateTime != n.CreateTime {
		fmt.Fprintf(w, "updated at: %s\n", output.FormatTime(n.UpdateTime))
	}
	fmt.Fprintf(w, "status: %s\n", n.SyncStatus)
	if n.Pinned {
		fmt.Fprintf(w, "pinned\n")
	}

	fmt.Fprintf(w, "\n------------------------content------------------------\n")
	fmt.Fprintf(w, "%s", n.Content)
	fmt.Fprintf(w, "\n-------------------------------------------------------\n")

	return nil
}

func newRun(ctx context.MemosyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return viewNote(ctx, os.Stdout, args[0], contentOnly)
	}
}
