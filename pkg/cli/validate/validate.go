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

// Package validate checks user input before it is written locally
package validate

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// MaxContentLength is the largest note, in bytes, that the server accepts by default
const MaxContentLength = 8 * 1024

// ErrContentEmpty is an error for a note without any text
var ErrContentEmpty = errors.New("The note is empty")

// ErrContentTooLong is an error for a note the server would refuse
var ErrContentTooLong = errors.Errorf("The note is longer than %d bytes", MaxContentLength)

// ErrEndpointInvalid is an error for an endpoint that is not an absolute http(s) URL
var ErrEndpointInvalid = errors.New("The endpoint must be an http or https URL")

// NoteContent validates the content of a note
func NoteContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrContentEmpty
	}

	if len(content) > MaxContentLength {
		return ErrContentTooLong
	}

	return nil
}

// Endpoint validates the API endpoint of a server
func Endpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ErrEndpointInvalid
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrEndpointInvalid
	}
	if u.Host == "" {
		return ErrEndpointInvalid
	}

	return nil
}
