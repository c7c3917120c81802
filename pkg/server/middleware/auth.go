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

package middleware

import (
	"net/http"

	"github.com/dnote/memosync/pkg/server/app"
	"github.com/dnote/memosync/pkg/server/context"
	"github.com/pkg/errors"
)

// TokenAuth is an authentication middleware that resolves the bearer access
// token of the request to its user
func TokenAuth(a *app.App, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value, err := GetCredential(r)
		if err != nil || value == "" {
			RespondUnauthorized(w)
			return
		}

		user, tok, err := a.AuthenticateToken(value)
		if errors.Is(err, app.ErrNotFound) {
			RespondUnauthorized(w)
			return
		} else if err != nil {
			DoError(w, "authenticating with token", err, http.StatusInternalServerError)
			return
		}

		ctx := context.WithToken(r.Context(), &tok)
		ctx = context.WithUser(ctx, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
