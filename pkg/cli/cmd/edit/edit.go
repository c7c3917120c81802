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

package edit

import (
	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/cli/infra"
	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/dnote/memosync/pkg/cli/operations"
	"github.com/dnote/memosync/pkg/cli/ui"
	"github.com/dnote/memosync/pkg/cli/utils"
	"github.com/dnote/memosync/pkg/cli/utils/diff"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var contentFlag string

var example = `
  * Edit a note by id. A unique prefix of the id is enough
  memosync edit 1a2b3c4d

  * Edit a note without launching an editor
  memosync edit 1a2b -c "Buy oat milk"
`

// NewCmd returns a new edit command
func NewCmd(ctx context.MemosyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "edit <note id>",
		Short:   "Edit a note",
		Aliases: []string{"e"},
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&contentFlag, "content", "c", "", "a new content for the note")

	return cmd
}

func getContent(ctx context.MemosyncCtx, n database.Note) (string, error) {
	if contentFlag != "" {
		return contentFlag, nil
	}

	c, err := ui.GetEditorInput(ctx, n.Content)
	if err != nil {
		return "", errors.Wrap(err, "getting editor input")
	}

	return c, nil
}

func newRun(ctx context.MemosyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		n, err := database.FindNoteByPrefix(ctx.DB, args[0])
		if err != nil {
			return errors.Wrapf(err, "finding note %s", args[0])
		}

		content, err := getContent(ctx, n)
		if err != nil {
			return errors.Wrap(err, "getting content")
		}

		edited, err := operations.Edit(ctx, n.LocalID, content)
		if errors.Is(err, operations.ErrNoChange) {
			log.Info("nothing changed\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "editing note")
		}

		log.Debug("diff:\n%s", diff.Unified(n.Content, edited.Content))
		log.Successf("edited %s\n", utils.ShortID(edited.LocalID))

		return nil
	}
}
