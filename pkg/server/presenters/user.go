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

package presenters

import (
	"github.com/dnote/memosync/pkg/server/database"
)

// User is a result of PresentUser
type User struct {
	Name       string `json:"name"`
	UUID       string `json:"uuid"`
	Email      string `json:"email"`
	CreateTime string `json:"createTime"`
}

// PresentUser presents user
func PresentUser(user database.User) User {
	return User{
		Name:       UserName(user.ID),
		UUID:       user.UUID,
		Email:      user.Email,
		CreateTime: FormatTimestamp(user.CreatedAt),
	}
}
