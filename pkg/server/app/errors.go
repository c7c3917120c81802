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

package app

import (
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")

	// ErrEmailRequired is returned when a user is created without an email
	ErrEmailRequired = errors.New("email is required")
	// ErrPasswordTooShort is returned when a password has fewer than 8 characters
	ErrPasswordTooShort = errors.New("password should be longer than 8 characters")
	// ErrDuplicateEmail is returned when the email is taken by another user
	ErrDuplicateEmail = errors.New("duplicate email")
	// ErrUserHasExistingResources is returned when removing a user who still owns memos
	ErrUserHasExistingResources = errors.New("user has existing memos")

	// ErrMemoExists is returned when a memo is created with a uid that is taken
	ErrMemoExists = errors.New("memo already exists")
	// ErrInvalidMemoID is returned when a client-chosen memo uid is malformed
	ErrInvalidMemoID = errors.New("invalid memo id")
	// ErrEmptyContent is returned for a memo without content
	ErrEmptyContent = errors.New("content is empty")
	// ErrContentTooLong is returned for a memo above MaxContentLength bytes
	ErrContentTooLong = errors.New("content is too long")
	// ErrInvalidVisibility is returned for an unknown visibility
	ErrInvalidVisibility = errors.New("invalid visibility")
	// ErrInvalidState is returned for an unknown memo state
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidPageToken is returned for a page token the server did not issue
	ErrInvalidPageToken = errors.New("invalid page token")
	// ErrEmptyUpdateMask is returned when an update names no field to change
	ErrEmptyUpdateMask = errors.New("update mask is required")
	// ErrInvalidUpdateMask is returned when an update names a field that cannot change
	ErrInvalidUpdateMask = errors.New("invalid update mask")
)
