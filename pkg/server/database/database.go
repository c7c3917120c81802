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

package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dnote/memosync/pkg/server/config"
	"github.com/dnote/memosync/pkg/server/log"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitSchema migrates database schema to reflect the latest model definition
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&AccessToken{},
		&Memo{},
	); err != nil {
		return errors.Wrap(err, "migrating the models")
	}

	return nil
}

// getDBLogLevel maps the server log level to the level of the gorm logger.
// Queries are only logged in debug mode.
func getDBLogLevel(level string) logger.LogLevel {
	switch level {
	case log.LevelDebug:
		return logger.Info
	case log.LevelWarn:
		return logger.Warn
	case log.LevelError:
		return logger.Error
	default:
		return logger.Silent
	}
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}

func dialector(dbPath string) (gorm.Dialector, error) {
	if config.IsPostgresDSN(dbPath) {
		return postgres.Open(dbPath), nil
	}

	if !isMemory(dbPath) {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating database directory at %s", dir)
		}
	}

	return sqlite.Open(dbPath), nil
}

// Open initializes the database connection. dbPath is either a path to a
// SQLite file or a postgres:// connection string.
func Open(dbPath, logLevel string) (*gorm.DB, error) {
	d, err := dialector(dbPath)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger:         logger.Default.LogMode(getDBLogLevel(logLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening database connection")
	}

	if !config.IsPostgresDSN(dbPath) {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "getting the connection pool")
		}
		// a single writer avoids SQLITE_BUSY under concurrent requests
		sqlDB.SetMaxOpenConns(1)

		if !isMemory(dbPath) {
			if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
				return nil, errors.Wrap(err, "enabling WAL")
			}
		}
	}

	return db, nil
}

// Close closes the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "getting the connection pool")
	}

	return sqlDB.Close()
}

// StartWALCheckpointing truncates the SQLite write-ahead log on an interval
// until ctx is done. It does nothing for postgres.
func StartWALCheckpointing(ctx context.Context, db *gorm.DB, interval time.Duration) {
	if db.Dialector.Name() != "sqlite" {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error; err != nil {
					log.ErrorWrap(err, "checkpointing WAL")
				}
			}
		}
	}()
}

// Ping checks that the database is reachable
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "getting the connection pool")
	}

	return sqlDB.PingContext(ctx)
}
