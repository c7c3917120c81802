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

// Package prompt parses answers to interactive yes/no questions
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidAnswer is returned when an answer is neither yes nor no
var ErrInvalidAnswer = errors.New("please answer y or n")

// Question appends the choices to q. The capitalized choice is the default.
func Question(q string, defaultYes bool) string {
	if defaultYes {
		return fmt.Sprintf("%s [Y/n]", q)
	}

	return fmt.Sprintf("%s [y/N]", q)
}

// ParseYesNo interprets an answer. An empty answer selects the default.
func ParseYesNo(answer string, defaultYes bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, ErrInvalidAnswer
	}
}

// ReadYesNo reads one line from r and interprets it. Reaching the end of the
// input without an answer selects the default.
func ReadYesNo(r io.Reader, defaultYes bool) (bool, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, errors.Wrap(err, "reading the answer")
	}

	return ParseYesNo(line, defaultYes)
}
