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

package operations

import (
	"github.com/dnote/memosync/pkg/server/database"
	"github.com/dnote/memosync/pkg/server/permissions"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GetMemo retrieves a memo that the given user can view. It reports false
// if the memo does not exist or is hidden from the user.
func GetMemo(db *gorm.DB, uid string, user *database.User) (database.Memo, bool, error) {
	zeroMemo := database.Memo{}
	if uid == "" {
		return zeroMemo, false, nil
	}

	var memo database.Memo
	err := db.Where("uid = ?", uid).First(&memo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return zeroMemo, false, nil
	} else if err != nil {
		return zeroMemo, false, errors.Wrap(err, "finding memo")
	}

	if ok := permissions.ViewMemo(user, memo); !ok {
		return zeroMemo, false, nil
	}

	return memo, true, nil
}
