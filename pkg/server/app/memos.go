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
	"regexp"
	"strings"

	"github.com/dnote/memosync/pkg/server/database"
	"github.com/dnote/memosync/pkg/server/helpers"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	// MaxContentLength is the maximum size of the content of a memo in bytes
	MaxContentLength = 8 * 1024
	// DefaultPageSize is the page size of a list without pageSize
	DefaultPageSize = 50
)

// memo uids are chosen by clients, so the pattern admits uuids
var memoUIDRegexp = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,62}[a-zA-Z0-9])?$`)

// ValidateMemoUID checks a client-chosen memo uid
func ValidateMemoUID(uid string) error {
	if !memoUIDRegexp.MatchString(uid) {
		return errors.Wrapf(ErrInvalidMemoID, "'%s'", uid)
	}

	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if len(content) > MaxContentLength {
		return errors.Wrapf(ErrContentTooLong, "%d bytes, maximum %d", len(content), MaxContentLength)
	}

	return nil
}

// CreateMemoParams is the parameters for creating a memo
type CreateMemoParams struct {
	// UID is chosen by the client. A uid is generated if it is empty.
	UID        string
	Content    string
	Visibility string
	Pinned     bool
}

// CreateMemo creates a memo for the user. It returns ErrMemoExists if a memo
// with the uid already exists.
func (a *App) CreateMemo(user database.User, p CreateMemoParams) (database.Memo, error) {
	if err := validateContent(p.Content); err != nil {
		return database.Memo{}, err
	}

	visibility := p.Visibility
	if visibility == "" {
		visibility = database.VisibilityPrivate
	}
	if !database.ValidVisibility(visibility) {
		return database.Memo{}, errors.Wrapf(ErrInvalidVisibility, "'%s'", visibility)
	}

	uid := p.UID
	if uid == "" {
		var err error
		if uid, err = helpers.GenUUID(); err != nil {
			return database.Memo{}, err
		}
	} else if err := ValidateMemoUID(uid); err != nil {
		return database.Memo{}, err
	}

	now := a.Clock.Now().UTC()
	memo := database.Memo{
		UID:        uid,
		UserID:     user.ID,
		Content:    p.Content,
		Visibility: visibility,
		State:      database.StateNormal,
		Pinned:     p.Pinned,
		CreateTime: now,
		UpdateTime: now,
	}

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.Memo{}).Where("uid = ?", uid).Count(&count).Error; err != nil {
			return errors.Wrap(err, "counting memos")
		}
		if count > 0 {
			return ErrMemoExists
		}

		if err := tx.Create(&memo).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrMemoExists
			}
			return errors.Wrap(err, "inserting memo")
		}

		return nil
	})
	if err != nil {
		return database.Memo{}, err
	}

	return memo, nil
}

// UpdateMemoParams is the parameters for updating a memo. Nil fields are
// left unchanged.
type UpdateMemoParams struct {
	Content    *string
	Visibility *string
	State      *string
	Pinned     *bool
}

// UpdateMemo applies the params to the memo and bumps its update time
func (a *App) UpdateMemo(memo database.Memo, p UpdateMemoParams) (database.Memo, error) {
	if p.Content != nil {
		if err := validateContent(*p.Content); err != nil {
			return memo, err
		}
		memo.Content = *p.Content
	}
	if p.Visibility != nil {
		if !database.ValidVisibility(*p.Visibility) {
			return memo, errors.Wrapf(ErrInvalidVisibility, "'%s'", *p.Visibility)
		}
		memo.Visibility = *p.Visibility
	}
	if p.State != nil {
		if !database.ValidState(*p.State) {
			return memo, errors.Wrapf(ErrInvalidState, "'%s'", *p.State)
		}
		memo.State = *p.State
	}
	if p.Pinned != nil {
		memo.Pinned = *p.Pinned
	}

	memo.UpdateTime = a.Clock.Now().UTC()

	if err := a.DB.Save(&memo).Error; err != nil {
		return memo, errors.Wrap(err, "updating memo")
	}

	return memo, nil
}

// DeleteMemo deletes the memo
func (a *App) DeleteMemo(memo database.Memo) error {
	if err := a.DB.Delete(&memo).Error; err != nil {
		return errors.Wrap(err, "deleting memo")
	}

	return nil
}

// ListMemosParams is the parameters for listing the memos of a user
type ListMemosParams struct {
	PageSize  int
	PageToken string
	// State defaults to NORMAL
	State string
}

// ListMemosResult is a page of memos
type ListMemosResult struct {
	Memos []database.Memo
	// NextPageToken is empty on the last page
	NextPageToken string
}

// ListMemos returns a page of the memos of the user, pinned memos first and
// then the most recently created
func (a *App) ListMemos(user database.User, p ListMemosParams) (ListMemosResult, error) {
	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > a.MaxPageSize {
		pageSize = a.MaxPageSize
	}

	state := p.State
	if state == "" {
		state = database.StateNormal
	}
	if !database.ValidState(state) {
		return ListMemosResult{}, errors.Wrapf(ErrInvalidState, "'%s'", state)
	}

	offset, err := decodePageToken(p.PageToken)
	if err != nil {
		return ListMemosResult{}, err
	}

	// one more than a page tells if there is a next page
	memos := []database.Memo{}
	if err := a.DB.
		Where("user_id = ? AND state = ?", user.ID, state).
		Order("pinned DESC, create_time DESC, id DESC").
		Offset(offset).
		Limit(pageSize + 1).
		Find(&memos).Error; err != nil {
		return ListMemosResult{}, errors.Wrap(err, "finding memos")
	}

	ret := ListMemosResult{Memos: memos}
	if len(memos) > pageSize {
		ret.Memos = memos[:pageSize]
		ret.NextPageToken = encodePageToken(offset + pageSize)
	}

	return ret, nil
}

// updatableMemoFields are the paths an update mask may name
var updatableMemoFields = map[string]bool{
	"content":    true,
	"visibility": true,
	"pinned":     true,
	"state":      true,
}

// ParseUpdateMask parses a comma separated list of memo field paths
func ParseUpdateMask(mask string) (map[string]bool, error) {
	ret := map[string]bool{}

	for _, path := range strings.Split(mask, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if !updatableMemoFields[path] {
			return nil, errors.Wrapf(ErrInvalidUpdateMask, "'%s'", path)
		}

		ret[path] = true
	}

	if len(ret) == 0 {
		return nil, ErrEmptyUpdateMask
	}

	return ret, nil
}
