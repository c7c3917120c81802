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

package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dnote/memosync/pkg/dirs"
	"github.com/dnote/memosync/pkg/server/log"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	// DefaultDBDir is the default directory name for the server data
	DefaultDBDir = "memosync"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"
	// DefaultPort is the port the server listens on unless configured
	DefaultPort = "5230"
	// DefaultMaxPageSize caps the number of memos in a list response
	DefaultMaxPageSize = 1000
)

var (
	// DefaultDBPath is the default path to the database file
	DefaultDBPath = filepath.Join(dirs.DataHome, DefaultDBDir, DefaultDBFilename)
)

var (
	// ErrDBMissingPath is an error for an incomplete configuration missing the database path
	ErrDBMissingPath = errors.New("DB Path is empty")
	// ErrBaseURLInvalid is an error for an incomplete configuration with invalid base url
	ErrBaseURLInvalid = errors.New("Invalid BaseURL")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrLogLevelInvalid is an error for an unknown log level
	ErrLogLevelInvalid = errors.New("Invalid LogLevel")
	// ErrMaxPageSizeInvalid is an error for a page size cap that is not a positive number
	ErrMaxPageSizeInvalid = errors.New("Invalid MaxPageSize")
)

// LoadEnv reads environment variables from the given .env files. Missing
// files are skipped and variables already set in the environment win.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "loading %s", p)
		}

		log.WithFields(log.Fields{
			"path": p,
		}).Debug("Loaded environment file")
	}

	return nil
}

func readBoolEnv(name string) bool {
	return os.Getenv(name) == "true"
}

// getOrEnv returns value if non-empty, otherwise env var, otherwise default
func getOrEnv(value, envKey, defaultVal string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return defaultVal
}

// Config is an application configuration
type Config struct {
	BaseURL          string
	Port             string
	DBPath           string
	LogLevel         string
	MaxPageSize      int
	DisableRateLimit bool
}

// Params are the configuration parameters for creating a new Config
type Params struct {
	Port             string
	BaseURL          string
	DBPath           string
	LogLevel         string
	MaxPageSize      string
	DisableRateLimit bool
}

// New constructs and returns a new validated config.
// Empty string params will fall back to environment variables and defaults.
func New(p Params) (Config, error) {
	port := getOrEnv(p.Port, "PORT", DefaultPort)

	maxPageSize, err := strconv.Atoi(getOrEnv(p.MaxPageSize, "MAX_PAGE_SIZE", strconv.Itoa(DefaultMaxPageSize)))
	if err != nil {
		return Config{}, errors.Wrap(ErrMaxPageSizeInvalid, err.Error())
	}

	c := Config{
		Port:             port,
		BaseURL:          strings.TrimRight(getOrEnv(p.BaseURL, "BASE_URL", "http://localhost:"+port), "/"),
		DBPath:           getOrEnv(p.DBPath, "DB_PATH", DefaultDBPath),
		LogLevel:         getOrEnv(p.LogLevel, "LOG_LEVEL", log.LevelInfo),
		MaxPageSize:      maxPageSize,
		DisableRateLimit: p.DisableRateLimit || readBoolEnv("DISABLE_RATE_LIMIT"),
	}

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// IsPostgres tells if DBPath is a postgres connection string
func (c Config) IsPostgres() bool {
	return IsPostgresDSN(c.DBPath)
}

// IsPostgresDSN tells if the given database path is a postgres connection string
func IsPostgresDSN(p string) bool {
	return strings.HasPrefix(p, "postgres://") || strings.HasPrefix(p, "postgresql://")
}

func validate(c Config) error {
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return errors.Wrapf(ErrBaseURLInvalid, "'%s'", c.BaseURL)
	}
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		return ErrPortInvalid
	}
	if c.DBPath == "" {
		return ErrDBMissingPath
	}
	if !log.ValidLevel(c.LogLevel) {
		return errors.Wrapf(ErrLogLevelInvalid, "'%s'", c.LogLevel)
	}
	if c.MaxPageSize <= 0 {
		return ErrMaxPageSizeInvalid
	}

	return nil
}
