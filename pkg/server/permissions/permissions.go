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

package permissions

import (
	"github.com/dnote/memosync/pkg/server/database"
)

// ViewMemo checks if the given user can view the given memo. Public and
// protected memos are visible to every signed-in user.
func ViewMemo(user *database.User, memo database.Memo) bool {
	if user == nil {
		return false
	}
	if memo.UserID == 0 {
		return false
	}
	if memo.UserID == user.ID {
		return true
	}

	return memo.Visibility == database.VisibilityPublic || memo.Visibility == database.VisibilityProtected
}

// EditMemo checks if the given user can change or delete the given memo
func EditMemo(user *database.User, memo database.Memo) bool {
	if user == nil {
		return false
	}
	if memo.UserID == 0 {
		return false
	}

	return memo.UserID == user.ID
}
