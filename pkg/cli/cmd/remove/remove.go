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

package remove

import (
	"fmt"

	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/cli/infra"
	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/dnote/memosync/pkg/cli/operations"
	"github.com/dnote/memosync/pkg/cli/output"
	"github.com/dnote/memosync/pkg/cli/ui"
	"github.com/dnote/memosync/pkg/cli/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var yesFlag bool

var example = `
  * Remove a note by id
  memosync remove 1a2b3c4d

  * Skip the confirmation
  memosync remove 1a2b -y`

// NewCmd returns a new remove command
func NewCmd(ctx context.MemosyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <note id>",
		Short:   "Remove a note",
		Aliases: []string{"rm", "d"},
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&yesFlag, "yes", "y", false, "remove without confirmation")

	return cmd
}

func newRun(ctx context.MemosyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		n, err := database.FindNoteByPrefix(ctx.DB, args[0])
		if err != nil {
			return errors.Wrapf(err, "finding note %s", args[0])
		}

		if !yesFlag {
			fmt.Println(output.NoteRow(n))

			ok, err := ui.Confirm("remove this note?", false)
			if err != nil {
				return errors.Wrap(err, "getting confirmation")
			}
			if !ok {
				log.Warnf("aborted by user\n")
				return nil
			}
		}

		if _, err := operations.Remove(ctx, n.LocalID); err != nil {
			return errors.Wrap(err, "removing note")
		}

		log.Successf("removed %s\n", utils.ShortID(n.LocalID))

		return nil
	}
}
