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

package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dnote/memosync/pkg/clock"
	"github.com/dnote/memosync/pkg/server/app"
	"github.com/dnote/memosync/pkg/server/config"
	"github.com/dnote/memosync/pkg/server/database"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const dbPathUsage = "Path to SQLite database file or a postgres:// DSN (env: DB_PATH, default: $XDG_DATA_HOME/memosync/server.db)"

func initDB(dbPath, logLevel string) (*gorm.DB, error) {
	db, err := database.Open(dbPath, logLevel)
	if err != nil {
		return nil, err
	}
	if err := database.InitSchema(db); err != nil {
		database.Close(db)
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, errors.Wrap(err, "running migrations")
	}

	return db, nil
}

func initApp(cfg config.Config) (app.App, error) {
	db, err := initDB(cfg.DBPath, cfg.LogLevel)
	if err != nil {
		return app.App{}, errors.Wrap(err, "initializing database")
	}

	return app.App{
		DB:               db,
		Clock:            clock.New(),
		BaseURL:          cfg.BaseURL,
		Port:             cfg.Port,
		DBPath:           cfg.DBPath,
		MaxPageSize:      cfg.MaxPageSize,
		DisableRateLimit: cfg.DisableRateLimit,
	}, nil
}

// printFlags prints flags with -- prefix for consistency with CLI
func printFlags(w io.Writer, fs *flag.FlagSet) {
	fs.VisitAll(func(f *flag.Flag) {
		fmt.Fprintf(w, "  --%s", f.Name)

		// Print type hint for non-boolean flags
		name, usage := flag.UnquoteUsage(f)
		if name != "" {
			fmt.Fprintf(w, " %s", name)
		}
		fmt.Fprintln(w)

		if usage != "" {
			fmt.Fprintf(w, "    \t%s", usage)
			if f.DefValue != "" && f.DefValue != "false" {
				fmt.Fprintf(w, " (default: %s)", f.DefValue)
			}
			fmt.Fprintln(w)
		}
	})
}

// setupFlagSet creates a FlagSet with standard usage format. Parse errors
// are returned rather than exiting.
func setupFlagSet(name, usageCmd string, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() {
		fmt.Fprintf(w, `Usage:
  %s [flags]

Flags:
`, usageCmd)
		printFlags(w, fs)
	}
	return fs
}

// errUsage is returned for invalid invocations after the usage is printed
var errUsage = errors.New("invalid usage")

// requireString validates that a required string flag is not empty
func requireString(fs *flag.FlagSet, w io.Writer, value, fieldName string) error {
	if value == "" {
		fmt.Fprintf(w, "Error: %s is required\n", fieldName)
		fs.Usage()
		return errUsage
	}

	return nil
}

// setupAppWithDB creates config, initializes app, and returns cleanup function
func setupAppWithDB(fs *flag.FlagSet, w io.Writer, dbPath string) (*app.App, func(), error) {
	cfg, err := config.New(config.Params{
		DBPath: dbPath,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n\n", err)
		fs.Usage()
		return nil, nil, errUsage
	}

	a, err := initApp(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		database.Close(a.DB)
	}

	return &a, cleanup, nil
}

// exitOnError terminates the process if a command failed
func exitOnError(err error) {
	if err == nil {
		return
	}
	if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}

	os.Exit(1)
}
