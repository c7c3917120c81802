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

// Package infra provides operations and definitions for the
// local infrastructure for memosync
package infra

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dnote/memosync/pkg/cli/client"
	"github.com/dnote/memosync/pkg/cli/config"
	"github.com/dnote/memosync/pkg/cli/consts"
	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/dnote/memosync/pkg/cli/utils"
	"github.com/dnote/memosync/pkg/clock"
	"github.com/dnote/memosync/pkg/dirs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	// DefaultAPIEndpoint is the default API endpoint used when none is configured
	DefaultAPIEndpoint = "http://localhost:5230"
)

// RunEFunc is a function type of memosync commands
type RunEFunc func(*cobra.Command, []string) error

func getPaths() context.Paths {
	app := dirs.ForApp(consts.AppDirName)

	return context.Paths{
		Home:   dirs.Home,
		Config: app.Config,
		Data:   app.Data,
		Cache:  app.Cache,
	}
}

func getDBPath(paths context.Paths, customPath string) string {
	if customPath != "" {
		return customPath
	}

	return filepath.Join(paths.Data, consts.DBFileName)
}

// Init initializes the memosync environment and returns a new context.
// A non-empty apiEndpoint overrides the configured endpoint for this run
// without changing the config file. It is also written to a newly created
// config file.
func Init(versionTag, apiEndpoint, dbPath string) (*context.MemosyncCtx, error) {
	paths := getPaths()
	if err := context.InitDirs(paths); err != nil {
		return nil, errors.Wrap(err, "creating the memosync dirs")
	}

	db, err := database.Open(getDBPath(paths, dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to db")
	}

	ctx := context.MemosyncCtx{
		Paths:   paths,
		Version: versionTag,
		DB:      db,
		Clock:   clock.New(),
	}

	if err := InitDB(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initializing database")
	}
	if err := InitSystem(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initializing system data")
	}
	if err := initConfigFile(ctx, apiEndpoint); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "generating the config file")
	}

	ctx, err = setupCtx(ctx, apiEndpoint)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "setting up the context")
	}

	log.Debug("context: %+v\n", context.Redact(ctx))

	return &ctx, nil
}

// setupCtx enriches the base context with values from the config file
func setupCtx(ctx context.MemosyncCtx, apiEndpoint string) (context.MemosyncCtx, error) {
	cf, err := config.Read(ctx)
	if err != nil {
		return ctx, errors.Wrap(err, "reading config")
	}
	cf = config.ApplyEnv(cf)

	endpoint := cf.APIEndpoint
	if apiEndpoint != "" {
		endpoint = apiEndpoint
	}

	ctx.APIEndpoint = strings.TrimRight(endpoint, "/")
	ctx.AccessToken = cf.AccessToken
	ctx.Editor = cf.Editor
	ctx.EnableUpgradeCheck = cf.EnableUpgradeCheck
	ctx.HTTPClient = client.NewRateLimitedHTTPClient()

	return ctx, nil
}

// InitDB brings the local schema up to date
func InitDB(ctx context.MemosyncCtx) error {
	log.Debug("initializing the database\n")

	n, err := database.Migrate(ctx.DB)
	if err != nil {
		return errors.Wrap(err, "running migrations")
	}
	if n > 0 {
		log.Debug("applied %d migrations\n", n)
	}

	return nil
}

func initSystemKV(db *database.DB, key string, val string) error {
	var existing string
	err := database.GetSystem(db, key, &existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return errors.Wrapf(err, "finding %s", key)
	}

	if err := database.InsertSystem(db, key, val); err != nil {
		return errors.Wrapf(err, "inserting %s %s", key, val)
	}

	return nil
}

// InitSystem inserts system data if missing
func InitSystem(ctx context.MemosyncCtx) error {
	log.Debug("initializing the system\n")

	tx, err := ctx.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	nowStr := strconv.FormatInt(ctx.Clock.Now().Unix(), 10)
	if err := initSystemKV(tx, consts.SystemLastUpgrade, nowStr); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "initializing system config for %s", consts.SystemLastUpgrade)
	}
	if err := initSystemKV(tx, consts.SystemLastSyncAt, "0"); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "initializing system config for %s", consts.SystemLastSyncAt)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	return nil
}

// getEditorCommand returns the system's editor command with appropriate flags,
// if necessary, to make the command wait until editor is close to exit.
func getEditorCommand() string {
	editor := os.Getenv("EDITOR")

	switch editor {
	case "atom":
		return "atom -w"
	case "subl":
		return "subl -n -w"
	case "code":
		return "code -n -w"
	case "mate":
		return "mate -w"
	case "vim", "nano", "emacs", "nvim", "hx":
		return editor
	default:
		return "vi"
	}
}

// initConfigFile populates a new config file if it does not exist yet
func initConfigFile(ctx context.MemosyncCtx, apiEndpoint string) error {
	ok, err := utils.FileExists(config.GetPath(ctx))
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	endpoint := apiEndpoint
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}

	cf := config.Config{
		Editor:             getEditorCommand(),
		APIEndpoint:        endpoint,
		EnableUpgradeCheck: true,
	}

	if err := config.Write(ctx, cf); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}
