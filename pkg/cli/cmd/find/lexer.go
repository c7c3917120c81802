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

package find

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenKindEOF tokenKind = iota
	tokenKindTerm
	tokenKindPhrase
)

type token struct {
	Kind  tokenKind
	Value string
}

// scanToken reads the token at or after idx. It returns the index right after
// the token, or -1 if the input is exhausted.
func scanToken(idx int, s string) (token, int) {
	for idx < len(s) {
		r, size := utf8.DecodeRuneInString(s[idx:])
		if !unicode.IsSpace(r) {
			break
		}
		idx += size
	}
	if idx >= len(s) {
		return token{Kind: tokenKindEOF}, -1
	}

	var tok token
	var end int

	if s[idx] == '"' {
		closing := strings.IndexByte(s[idx+1:], '"')
		if closing == -1 {
			tok = token{Kind: tokenKindPhrase, Value: s[idx+1:]}
			end = len(s)
		} else {
			tok = token{Kind: tokenKindPhrase, Value: s[idx+1 : idx+1+closing]}
			end = idx + closing + 2
		}
	} else {
		end = idx
		for end < len(s) {
			r, size := utf8.DecodeRuneInString(s[end:])
			if unicode.IsSpace(r) {
				break
			}
			end += size
		}
		tok = token{Kind: tokenKindTerm, Value: s[idx:end]}
	}

	if end >= len(s) {
		return tok, -1
	}

	return tok, end
}

// tokenize splits a query into terms. Double quotes group words into a phrase.
func tokenize(s string) []token {
	var ret []token

	for idx := 0; idx != -1; {
		var tok token
		tok, idx = scanToken(idx, s)

		if tok.Kind != tokenKindEOF && tok.Value != "" {
			ret = append(ret, tok)
		}
	}

	return ret
}
