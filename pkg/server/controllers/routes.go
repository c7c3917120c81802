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

package controllers

import (
	"net/http"

	"github.com/dnote/memosync/pkg/server/app"
	mw "github.com/dnote/memosync/pkg/server/middleware"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	APIRoutes   []Route
	Routes      []Route
}

// NewRoutes returns the routes outside the API
func NewRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		{"GET", "/health", c.Health.Index, false},
	}
}

// NewAPIRoutes returns a new api routes
func NewAPIRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		{"GET", "/v1/auth/me", mw.TokenAuth(a, c.Users.Me), true},
		{"GET", "/v1/memos", mw.TokenAuth(a, c.Memos.Index), true},
		{"POST", "/v1/memos", mw.TokenAuth(a, c.Memos.Create), true},
		{"GET", "/v1/memos/{memoID}", mw.TokenAuth(a, c.Memos.Show), true},
		{"PATCH", "/v1/memos/{memoID}", mw.TokenAuth(a, c.Memos.Update), true},
		{"DELETE", "/v1/memos/{memoID}", mw.TokenAuth(a, c.Memos.Delete), true},
	}
}

// apiPrefix is prepended to the patterns of the API routes
const apiPrefix = "/api"

// registerRoutes adds the routes to the router with the prefix prepended to
// their patterns
func registerRoutes(router *mux.Router, app *app.App, prefix string, routes []Route) {
	for _, route := range routes {
		h := mw.ApplyLimit(route.Handler, route.RateLimit, app.DisableRateLimit)

		router.
			Handle(prefix+route.Pattern, h).
			Methods(route.Method)
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	mw.RespondError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	mw.RespondError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	registerRoutes(router, app, "", rc.Routes)
	registerRoutes(router, app, apiPrefix, rc.APIRoutes)

	return mw.Global(router), nil
}
