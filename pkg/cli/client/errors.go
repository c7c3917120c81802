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

package client

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrUnauthorized is returned when the server rejects the access token
var ErrUnauthorized = errors.New("unauthorized. check the access token")

// ErrContentTypeMismatch is returned when the server does not respond with JSON
var ErrContentTypeMismatch = errors.New("content type mismatch")

// NetworkError is a failure to reach the server
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is an error response or a malformed response from the server
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("bad response: %s", e.Message)
	}

	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// IsConflict returns true if the error is a 409 Conflict error
func (e *ServerError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// IsNotFound returns true if the error is a 404 Not Found error
func (e *ServerError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsRetryable tells if repeating the request later can succeed. Network
// failures, 5xx responses, throttling and malformed bodies are retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}

	var se *ServerError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == 0:
			return true
		case se.StatusCode >= 500:
			return true
		case se.StatusCode == http.StatusTooManyRequests, se.StatusCode == http.StatusRequestTimeout:
			return true
		}
	}

	return false
}

// IsNetworkError reports whether err is a failure to reach the server
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
