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

package database

// Visibility of a memo
const (
	VisibilityPrivate   = "PRIVATE"
	VisibilityProtected = "PROTECTED"
	VisibilityPublic    = "PUBLIC"
)

// State of a memo
const (
	StateNormal   = "NORMAL"
	StateArchived = "ARCHIVED"
)

// ValidVisibility tells if v is a known visibility
func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPrivate, VisibilityProtected, VisibilityPublic:
		return true
	default:
		return false
	}
}

// ValidState tells if s is a known memo state
func ValidState(s string) bool {
	return s == StateNormal || s == StateArchived
}
