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

package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dnote/memosync/pkg/cli/infra"
	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/pkg/errors"

	// commands
	"github.com/dnote/memosync/pkg/cli/cmd/add"
	"github.com/dnote/memosync/pkg/cli/cmd/daemon"
	"github.com/dnote/memosync/pkg/cli/cmd/edit"
	"github.com/dnote/memosync/pkg/cli/cmd/find"
	"github.com/dnote/memosync/pkg/cli/cmd/login"
	"github.com/dnote/memosync/pkg/cli/cmd/logout"
	"github.com/dnote/memosync/pkg/cli/cmd/ls"
	"github.com/dnote/memosync/pkg/cli/cmd/remove"
	"github.com/dnote/memosync/pkg/cli/cmd/root"
	"github.com/dnote/memosync/pkg/cli/cmd/status"
	"github.com/dnote/memosync/pkg/cli/cmd/sync"
	"github.com/dnote/memosync/pkg/cli/cmd/version"
	"github.com/dnote/memosync/pkg/cli/cmd/view"
)

// apiEndpoint and versionTag are populated during link time
var apiEndpoint string
var versionTag = "master"

// parseFlag extracts the value of a persistent flag from the command line
// arguments regardless of where it appears. Returns empty string if not found.
func parseFlag(args []string, name string) string {
	long := "--" + name

	for i, arg := range args {
		if arg == "--" {
			break
		}
		if strings.HasPrefix(arg, long+"=") {
			return strings.TrimPrefix(arg, long+"=")
		}
		if arg == long && i+1 < len(args) {
			return args[i+1]
		}
	}

	return ""
}

func main() {
	// The context is built before cobra parses the flags, and persistent flags
	// may come after the subcommand.
	dbPath := parseFlag(os.Args[1:], "dbPath")

	endpoint := parseFlag(os.Args[1:], "apiEndpoint")
	if endpoint == "" {
		endpoint = apiEndpoint
	}

	ctx, err := infra.Init(versionTag, endpoint, dbPath)
	if err != nil {
		log.Errorf("%s\n", errors.Wrap(err, "initializing context").Error())
		os.Exit(1)
	}

	root.Register(add.NewCmd(*ctx))
	root.Register(edit.NewCmd(*ctx))
	root.Register(remove.NewCmd(*ctx))
	root.Register(ls.NewCmd(*ctx))
	root.Register(find.NewCmd(*ctx))
	root.Register(sync.NewCmd(*ctx))
	root.Register(status.NewCmd(*ctx))
	root.Register(login.NewCmd(*ctx))
	root.Register(logout.NewCmd(*ctx))
	root.Register(daemon.NewCmd(*ctx))
	root.Register(view.NewCmd(*ctx))
	root.Register(version.NewCmd(*ctx))

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = root.Execute(sigCtx)
	stop()
	ctx.DB.Close()

	if err != nil {
		log.Errorf("%s\n", err.Error())
		os.Exit(1)
	}
}
