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

// Package assert provides functions to assert a condition in tests
package assert

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func getMessage(message string, a, b interface{}) string {
	if message == "" {
		return fmt.Sprintf("%v != %v", a, b)
	}

	return message
}

// Equal errors a test if the actual does not match the expected
func Equal(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	if a == b {
		return
	}

	t.Errorf("%s. Actual: %+v. Expected: %+v.", getMessage(message, a, b), a, b)
}

// Equalf fails a test if the actual does not match the expected
func Equalf(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	if a == b {
		return
	}

	t.Fatalf("%s. Actual: %+v. Expected: %+v.", getMessage(message, a, b), a, b)
}

// NotEqual errors a test if the actual matches the expected
func NotEqual(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	if a != b {
		return
	}

	t.Errorf("%s. Actual: %+v. Expected to differ from: %+v.", getMessage(message, a, b), a, b)
}

// DeepEqual errors a test if the actual does not deeply equal the expected
func DeepEqual(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	if cmp.Equal(a, b) {
		return
	}

	t.Errorf("%s.\n%s", getMessage(message, a, b), cmp.Diff(b, a))
}

// StatusCodeEquals errors a test if the response status code does not match
// the expected. The response body is included in the failure message.
func StatusCodeEquals(t *testing.T, res *http.Response, expected int, message string) {
	t.Helper()

	if res.StatusCode == expected {
		return
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading body"))
	}

	t.Errorf("%s. Actual: %d. Expected: %d. Body: %s", getMessage(message, res.StatusCode, expected), res.StatusCode, expected, string(body))
}
