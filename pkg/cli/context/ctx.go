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

// Package context defines memosync context
package context

import (
	"net/http"

	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/clock"
)

// Paths contain the directories of the application
type Paths struct {
	Home   string
	Config string
	Data   string
	Cache  string
}

// MemosyncCtx is a context holding the information of the current runtime
type MemosyncCtx struct {
	Paths              Paths
	APIEndpoint        string
	AccessToken        string
	Version            string
	DB                 *database.DB
	Editor             string
	Clock              clock.Clock
	EnableUpgradeCheck bool
	HTTPClient         *http.Client
}

// LoggedIn tells if an access token is configured
func (c MemosyncCtx) LoggedIn() bool {
	return c.AccessToken != ""
}

// Redact replaces private information from the context with a set of
// placeholder values.
func Redact(ctx MemosyncCtx) MemosyncCtx {
	if ctx.AccessToken != "" {
		ctx.AccessToken = "1"
	} else {
		ctx.AccessToken = "0"
	}

	return ctx
}
