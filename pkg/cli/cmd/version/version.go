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

package version

import (
	"fmt"

	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/infra"
	"github.com/dnote/memosync/pkg/cli/upgrade"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var checkFlag bool

// NewCmd returns a new version command
func NewCmd(ctx context.MemosyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of memosync",
		Long:  "Print the version number of memosync",
		Args:  cobra.NoArgs,
		RunE:  newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&checkFlag, "check", false, "check if a newer release is available")

	return cmd
}

func newRun(ctx context.MemosyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		fmt.Printf("memosync %s\n", ctx.Version)

		if !checkFlag {
			return nil
		}

		if err := upgrade.Report(cmd.Context(), upgrade.NewChecker(ctx.HTTPClient), ctx.Version); err != nil {
			return errors.Wrap(err, "checking for updates")
		}

		return nil
	}
}
