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

// Package utils provides small helpers shared by the commands
package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// GenerateUUID returns a uuid v4 in string
func GenerateUUID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", errors.Wrap(err, "generating uuid")
	}

	return u.String(), nil
}

// ShortID returns the prefix of a local id that is shown in listings
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}

	return id[:8]
}

// Preview returns the first line of the content, cut to at most n runes
func Preview(content string, n int) string {
	line := strings.TrimSpace(content)
	if idx := strings.IndexByte(line, '\n'); idx != -1 {
		line = strings.TrimSpace(line[:idx]) + " ..."
	}

	if utf8.RuneCountInString(line) <= n {
		return line
	}

	runes := []rune(line)
	return string(runes[:n]) + "..."
}
