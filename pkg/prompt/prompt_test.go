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

package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dnote/memosync/pkg/assert"
)

func TestQuestion(t *testing.T) {
	assert.Equal(t, Question("remove note 1a2b3c4d?", false), "remove note 1a2b3c4d? [y/N]", "pessimistic question mismatch")
	assert.Equal(t, Question("continue?", true), "continue? [Y/n]", "optimistic question mismatch")
}

func TestReadYesNo(t *testing.T) {
	testCases := []struct {
		input      string
		defaultYes bool
		expected   bool
		err        error
	}{
		{input: "y\n", defaultYes: false, expected: true},
		{input: "YES\n", defaultYes: false, expected: true},
		{input: "n\n", defaultYes: true, expected: false},
		{input: " no \n", defaultYes: true, expected: false},
		{input: "\n", defaultYes: false, expected: false},
		{input: "\n", defaultYes: true, expected: true},
		{input: "", defaultYes: true, expected: true},
		{input: "y", defaultYes: false, expected: true},
		{input: "maybe\n", defaultYes: true, expected: false, err: ErrInvalidAnswer},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			got, err := ReadYesNo(strings.NewReader(tc.input), tc.defaultYes)

			assert.Equal(t, err, tc.err, "error mismatch")
			assert.Equal(t, got, tc.expected, "answer mismatch")
		})
	}
}
