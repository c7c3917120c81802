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

package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/dnote/memosync/pkg/prompt"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

// PromptInput asks for a line of input
func PromptInput(message string) (string, error) {
	log.Askf(message, false)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "reading stdin")
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// PromptSecret asks for input without echoing it on the terminal
func PromptSecret(message string) (string, error) {
	log.Askf(message, true)

	b, err := terminal.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", errors.Wrap(err, "reading the secret")
	}
	fmt.Println()

	return string(b), nil
}

// Confirm asks a yes/no question
func Confirm(question string, defaultYes bool) (bool, error) {
	log.Askf(prompt.Question(question, defaultYes), false)

	ok, err := prompt.ReadYesNo(os.Stdin, defaultYes)
	if err != nil {
		return false, errors.Wrap(err, "getting the answer")
	}

	return ok, nil
}

// IsPiped tells if stdin is not a terminal
func IsPiped() bool {
	return !terminal.IsTerminal(int(os.Stdin.Fd()))
}

// ReadStdin returns everything written to stdin, without the trailing newline
func ReadStdin() (string, error) {
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.Wrap(err, "reading stdin")
	}

	return strings.TrimRight(string(b), "\r\n"), nil
}
