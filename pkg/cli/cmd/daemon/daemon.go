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

package daemon

import (
	"github.com/dnote/memosync/pkg/cli/config"
	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/daemon"
	"github.com/dnote/memosync/pkg/cli/infra"
	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var foregroundFlag bool

var example = `
  * Run the background sync, logging to the cache directory
  memosync daemon

  * Log to the terminal
  memosync daemon --foreground`

// NewCmd returns a new daemon command
func NewCmd(ctx context.MemosyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "daemon",
		Short:   "Sync in the background",
		Long:    "Sync on startup, periodically, and whenever the server becomes reachable again. Timing settings are reloaded when the config file changes.",
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&foregroundFlag, "foreground", false, "log to the terminal instead of the log file")

	return cmd
}

func newRun(ctx context.MemosyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if !ctx.LoggedIn() {
			return errors.New("not logged in. run 'memosync login' first")
		}

		cf, err := config.Read(ctx)
		if err != nil {
			return errors.Wrap(err, "reading config")
		}

		if !foregroundFlag {
			path := daemon.LogPath(ctx, cf)
			w := daemon.OpenLog(path)
			defer w.Close()

			log.Infof("logging to %s\n", path)
			log.SetOutput(w)
			defer log.SetOutput(color.Output)
		}

		d, err := daemon.New(ctx, cf)
		if err != nil {
			return errors.Wrap(err, "initializing the daemon")
		}

		if err := d.Run(cmd.Context()); err != nil {
			return errors.Wrap(err, "running the daemon")
		}

		log.Info("daemon stopped\n")

		return nil
	}
}
