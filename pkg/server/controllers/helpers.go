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
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/dnote/memosync/pkg/server/app"
	mw "github.com/dnote/memosync/pkg/server/middleware"
	"github.com/pkg/errors"
)

// maxRequestBodySize bounds request payloads. It leaves room for the JSON
// encoding of the largest memo content.
const maxRequestBodySize = 64 * 1024

var (
	errUnsupportedMediaType = errors.New("Content-Type must be application/json")
	errInvalidJSON          = errors.New("invalid JSON payload")
)

// parseRequestData decodes the JSON body of the request into v
func parseRequestData(w http.ResponseWriter, r *http.Request, v interface{}) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errUnsupportedMediaType
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errors.Wrap(app.ErrContentTooLong, "request body")
		}

		return errors.Wrap(errInvalidJSON, err.Error())
	}

	return nil
}

// getStatusCode maps the errors of the app to HTTP status codes
func getStatusCode(err error) int {
	switch {
	case errors.Is(err, app.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrMemoExists):
		return http.StatusConflict
	case errors.Is(err, errUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, app.ErrContentTooLong):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errInvalidJSON),
		errors.Is(err, app.ErrInvalidMemoID),
		errors.Is(err, app.ErrEmptyContent),
		errors.Is(err, app.ErrInvalidVisibility),
		errors.Is(err, app.ErrInvalidState),
		errors.Is(err, app.ErrInvalidPageToken),
		errors.Is(err, app.ErrEmptyUpdateMask),
		errors.Is(err, app.ErrInvalidUpdateMask):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleJSONError responds with the status code that the error maps to
func handleJSONError(w http.ResponseWriter, err error, msg string) {
	mw.DoError(w, msg, err, getStatusCode(err))
}
