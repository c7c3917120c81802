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
	"embed"

	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationTableName is the name of the table that keeps track of applied
// schema migrations
const MigrationTableName = "migrations"

func migrationSet() migrate.MigrationSet {
	return migrate.MigrationSet{TableName: MigrationTableName}
}

func migrationSource() *migrate.EmbedFileSystemMigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}
}

// Migrate applies all pending schema migrations and returns how many were run
func Migrate(db *DB) (int, error) {
	ms := migrationSet()

	n, err := ms.Exec(db.Conn, "sqlite3", migrationSource(), migrate.Up)
	if err != nil {
		return n, errors.Wrap(err, "running migrations")
	}

	return n, nil
}

// PendingMigrations returns the number of migrations not yet applied
func PendingMigrations(db *DB) (int, error) {
	ms := migrationSet()

	planned, _, err := ms.PlanMigration(db.Conn, "sqlite3", migrationSource(), migrate.Up, 0)
	if err != nil {
		return 0, errors.Wrap(err, "planning migrations")
	}

	return len(planned), nil
}
