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

// Package dirs resolves the XDG base directories used to store
// configuration, data and cache files
package dirs

import (
	"os"
	"os/user"
	"path/filepath"

	"github.com/pkg/errors"
)

var (
	// Home is the home directory of the user
	Home string
	// ConfigHome is the directory for user-specific configuration files
	ConfigHome string
	// DataHome is the directory for user-specific data files such as databases
	DataHome string
	// CacheHome is the directory for user-specific non-essential data
	CacheHome string
)

func init() {
	Reload()
}

// Reload re-reads the environment and recomputes the directories.
// Tests call it after overriding the XDG variables.
func Reload() {
	Home = homeDir()
	ConfigHome = fromEnv(envConfigHome, defaultConfigHome(Home))
	DataHome = fromEnv(envDataHome, defaultDataHome(Home))
	CacheHome = fromEnv(envCacheHome, defaultCacheHome(Home))
}

// App holds the directories of a single application
type App struct {
	Config string
	Data   string
	Cache  string
}

// ForApp returns the directories for the application with the given name
func ForApp(name string) App {
	return App{
		Config: filepath.Join(ConfigHome, name),
		Data:   filepath.Join(DataHome, name),
		Cache:  filepath.Join(CacheHome, name),
	}
}

func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}

	usr, err := user.Current()
	if err != nil {
		panic(errors.Wrap(err, "getting home dir"))
	}

	return usr.HomeDir
}

func fromEnv(envName, fallback string) string {
	if dir := os.Getenv(envName); dir != "" {
		return dir
	}

	return fallback
}
