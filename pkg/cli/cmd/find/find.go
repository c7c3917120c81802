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

package find

import (
	"strings"

	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/cli/infra"
	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/dnote/memosync/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  # find notes mentioning milk
  memosync find milk

  # find notes mentioning both words
  memosync find milk eggs

  # find notes containing a phrase
  memosync find '"oat milk"'`

// NewCmd returns a new find command
func NewCmd(ctx context.MemosyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "find <query>",
		Short:   "Find notes by content",
		Aliases: []string{"f"},
		Example: example,
		Args:    cobra.MinimumNArgs(1),
		RunE:    newRun(ctx),
	}

	return cmd
}

func matchesAll(content string, terms []token) bool {
	c := strings.ToLower(content)

	for _, t := range terms {
		if !strings.Contains(c, strings.ToLower(t.Value)) {
			return false
		}
	}

	return true
}

// search returns the notes containing every term of the query
func search(db *database.DB, query string) ([]database.Note, error) {
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil, errors.New("empty query")
	}

	candidates, err := database.SearchNotes(db, terms[0].Value)
	if err != nil {
		return nil, errors.Wrap(err, "searching notes")
	}

	var ret []database.Note
	for _, n := range candidates {
		if matchesAll(n.Content, terms[1:]) {
			ret = append(ret, n)
		}
	}

	return ret, nil
}

func newRun(ctx context.MemosyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		notes, err := search(ctx.DB, strings.Join(args, " "))
		if err != nil {
			return err
		}

		if len(notes) == 0 {
			log.Info("no matching notes\n")
			return nil
		}

		output.NoteList(notes)

		return nil
	}
}
