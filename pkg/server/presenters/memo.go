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
	"fmt"

	"github.com/dnote/memosync/pkg/server/database"
)

// Memo is a result of PresentMemo
type Memo struct {
	Name       string `json:"name"`
	UID        string `json:"uid"`
	Creator    string `json:"creator"`
	Content    string `json:"content"`
	CreateTime string `json:"createTime"`
	UpdateTime string `json:"updateTime"`
	Visibility string `json:"visibility"`
	State      string `json:"state"`
	Pinned     bool   `json:"pinned"`
}

// MemoName returns the resource name of the memo with the given uid
func MemoName(uid string) string {
	return fmt.Sprintf("memos/%s", uid)
}

// UserName returns the resource name of the user with the given id
func UserName(id int) string {
	return fmt.Sprintf("users/%d", id)
}

// PresentMemo presents memo
func PresentMemo(memo database.Memo) Memo {
	return Memo{
		Name:       MemoName(memo.UID),
		UID:        memo.UID,
		Creator:    UserName(memo.UserID),
		Content:    memo.Content,
		CreateTime: FormatTimestamp(memo.CreateTime),
		UpdateTime: FormatTimestamp(memo.UpdateTime),
		Visibility: memo.Visibility,
		State:      memo.State,
		Pinned:     memo.Pinned,
	}
}

// PresentMemos presents memos
func PresentMemos(memos []database.Memo) []Memo {
	ret := []Memo{}

	for _, memo := range memos {
		ret = append(ret, PresentMemo(memo))
	}

	return ret
}

// ListMemosResponse is the payload of a page of memos
type ListMemosResponse struct {
	Memos         []Memo `json:"memos"`
	NextPageToken string `json:"nextPageToken"`
}
