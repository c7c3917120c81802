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
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dnote/memosync/pkg/server/buildinfo"
	"github.com/dnote/memosync/pkg/server/config"
	"github.com/dnote/memosync/pkg/server/controllers"
	"github.com/dnote/memosync/pkg/server/database"
	"github.com/dnote/memosync/pkg/server/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	walCheckpointInterval = 5 * time.Minute
	shutdownTimeout       = 10 * time.Second
)

// serve runs the server until ctx is done, then shuts it down gracefully
func serve(ctx context.Context, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listening")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info("shutting down")
		if err := srv.Shutdown(sctx); err != nil {
			return errors.Wrap(err, "shutting down")
		}
		return nil
	})

	return g.Wait()
}

func startCmd(args []string) error {
	fs := setupFlagSet("start", "memosync-server start", os.Stdout)

	port := fs.String("port", "", fmt.Sprintf("Server port (env: PORT, default: %s)", config.DefaultPort))
	baseURL := fs.String("baseUrl", "", "Full URL to server without trailing slash (env: BASE_URL, default: http://localhost:<port>)")
	dbPath := fs.String("dbPath", "", dbPathUsage)
	logLevel := fs.String("logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")
	maxPageSize := fs.String("maxPageSize", "", fmt.Sprintf("Largest page of memos a client may request (env: MAX_PAGE_SIZE, default: %d)", config.DefaultMaxPageSize))
	disableRateLimit := fs.Bool("disableRateLimit", false, "Disable the per-IP rate limit (env: DISABLE_RATE_LIMIT)")
	envFile := fs.String("envFile", ".env", "File to load environment variables from, if it exists")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.LoadEnv(*envFile); err != nil {
		return err
	}

	cfg, err := config.New(config.Params{
		Port:             *port,
		BaseURL:          *baseURL,
		DBPath:           *dbPath,
		LogLevel:         *logLevel,
		MaxPageSize:      *maxPageSize,
		DisableRateLimit: *disableRateLimit,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		return errUsage
	}

	log.SetLevel(cfg.LogLevel)

	a, err := initApp(cfg)
	if err != nil {
		return err
	}
	defer database.Close(a.DB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database.StartWALCheckpointing(ctx, a.DB, walCheckpointInterval)

	h, err := controllers.NewHandler(&a)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.WithFields(log.Fields{
		"version":  buildinfo.Version,
		"port":     cfg.Port,
		"baseUrl":  cfg.BaseURL,
		"postgres": cfg.IsPostgres(),
	}).Info("memosync server starting")

	if err := serve(ctx, srv); err != nil {
		log.ErrorWrap(err, "server failed")
		return err
	}

	return nil
}
