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

// Package config reads and writes the memosync configuration file
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dnote/memosync/pkg/cli/consts"
	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/utils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	// EnvAPIEndpoint overrides the apiEndpoint of the config file
	EnvAPIEndpoint = "MEMOSYNC_API_ENDPOINT"
	// EnvAccessToken overrides the accessToken of the config file
	EnvAccessToken = "MEMOSYNC_ACCESS_TOKEN"
)

const (
	// DefaultSyncInterval is the period of the background sync
	DefaultSyncInterval = 15 * time.Minute
	// DefaultMaxBackoff is the ceiling of the retry delay after failed passes
	DefaultMaxBackoff = 5 * time.Hour
	// DefaultProbeInterval is how often the daemon checks if the server is reachable
	DefaultProbeInterval = 30 * time.Second
	// DefaultMetricsAddr is the listen address of the daemon metrics endpoint
	DefaultMetricsAddr = "127.0.0.1:9317"
)

// ErrInvalidDuration is returned when a duration setting cannot be parsed
var ErrInvalidDuration = errors.New("invalid duration")

// Config holds memosync configuration
type Config struct {
	Editor             string `yaml:"editor"`
	APIEndpoint        string `yaml:"apiEndpoint"`
	AccessToken        string `yaml:"accessToken,omitempty"`
	EnableUpgradeCheck bool   `yaml:"enableUpgradeCheck"`
	SyncInterval       string `yaml:"syncInterval,omitempty"`
	MaxBackoff         string `yaml:"maxBackoff,omitempty"`
	ProbeInterval      string `yaml:"probeInterval,omitempty"`
	MetricsAddr        string `yaml:"metricsAddr,omitempty"`
	LogFile            string `yaml:"logFile,omitempty"`
}

// Timing is the parsed form of the duration settings
type Timing struct {
	SyncInterval  time.Duration
	MaxBackoff    time.Duration
	ProbeInterval time.Duration
}

func parseDuration(key, val string, fallback time.Duration) (time.Duration, error) {
	if val == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidDuration, "%s: %s", key, val)
	}
	if d <= 0 {
		return 0, errors.Wrapf(ErrInvalidDuration, "%s must be positive: %s", key, val)
	}

	return d, nil
}

// Timing parses the duration settings, falling back to the defaults for the
// ones left empty
func (c Config) Timing() (Timing, error) {
	var ret Timing
	var err error

	if ret.SyncInterval, err = parseDuration("syncInterval", c.SyncInterval, DefaultSyncInterval); err != nil {
		return ret, err
	}
	if ret.MaxBackoff, err = parseDuration("maxBackoff", c.MaxBackoff, DefaultMaxBackoff); err != nil {
		return ret, err
	}
	if ret.ProbeInterval, err = parseDuration("probeInterval", c.ProbeInterval, DefaultProbeInterval); err != nil {
		return ret, err
	}

	return ret, nil
}

// GetMetricsAddr returns the configured metrics address or the default
func (c Config) GetMetricsAddr() string {
	if c.MetricsAddr == "" {
		return DefaultMetricsAddr
	}

	return c.MetricsAddr
}

// ApplyEnv overrides the values of the config with the environment variables
func ApplyEnv(cf Config) Config {
	if v := os.Getenv(EnvAPIEndpoint); v != "" {
		cf.APIEndpoint = v
	}
	if v := os.Getenv(EnvAccessToken); v != "" {
		cf.AccessToken = v
	}

	return cf
}

// GetPath returns the path to the memosync config file
func GetPath(ctx context.MemosyncCtx) string {
	return PathIn(ctx.Paths.Config)
}

// PathIn returns the path to the config file inside the given config directory
func PathIn(configDir string) string {
	return filepath.Join(configDir, consts.ConfigFilename)
}

// ReadFile reads the config file at the given path
func ReadFile(path string) (Config, error) {
	var ret Config

	b, err := os.ReadFile(path)
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}

	err = yaml.Unmarshal(b, &ret)
	if err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	return ret, nil
}

// Read reads the config file
func Read(ctx context.MemosyncCtx) (Config, error) {
	return ReadFile(GetPath(ctx))
}

// Write writes the config to the config file. The file may hold an access
// token, so it is only readable by the owner.
func Write(ctx context.MemosyncCtx, cf Config) error {
	path := GetPath(ctx)

	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config into YAML")
	}

	err = utils.WriteFileAtomic(path, b, 0600)
	if err != nil {
		return errors.Wrap(err, "writing the config file")
	}

	return nil
}
