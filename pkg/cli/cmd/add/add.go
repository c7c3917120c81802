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

package add

import (
	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/infra"
	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/dnote/memosync/pkg/cli/operations"
	"github.com/dnote/memosync/pkg/cli/output"
	"github.com/dnote/memosync/pkg/cli/ui"
	"github.com/dnote/memosync/pkg/cli/upgrade"
	"github.com/dnote/memosync/pkg/cli/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var contentFlag string

var example = `
 memosync add

 memosync add -c "Buy milk"

 echo "Buy milk" | memosync add
 # or
 memosync add << EOF
 Buy milk
 EOF`

// NewCmd returns a new add command
func NewCmd(ctx context.MemosyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a new note",
		Aliases: []string{"a", "n", "new"},
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&contentFlag, "content", "c", "", "The content of the note")

	return cmd
}

func getContent(ctx context.MemosyncCtx) (string, error) {
	if contentFlag != "" {
		return contentFlag, nil
	}

	if ui.IsPiped() {
		c, err := ui.ReadStdin()
		if err != nil {
			return "", errors.Wrap(err, "reading piped input")
		}
		return c, nil
	}

	c, err := ui.GetEditorInput(ctx, "")
	if err != nil {
		return "", errors.Wrap(err, "getting editor input")
	}

	return c, nil
}

func newRun(ctx context.MemosyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		content, err := getContent(ctx)
		if err != nil {
			return errors.Wrap(err, "getting content")
		}

		n, err := operations.Add(ctx, content)
		if err != nil {
			return errors.Wrap(err, "adding note")
		}

		log.Successf("added %s\n", utils.ShortID(n.LocalID))
		output.NoteInfo(n)

		if ctx.LoggedIn() && !infra.Reachable(cmd.Context(), ctx) {
			log.Warnf("offline. the note is saved and will be sent on the next sync\n")
		}

		if err := upgrade.Check(ctx); err != nil {
			log.Error(errors.Wrap(err, "automatically checking updates").Error() + "\n")
		}

		return nil
	}
}
