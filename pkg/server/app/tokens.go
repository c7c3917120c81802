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
	"strings"

	"github.com/dnote/memosync/pkg/server/database"
	"github.com/dnote/memosync/pkg/server/helpers"
	"github.com/dnote/memosync/pkg/server/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// accessTokenPrefix marks the values issued by this server
const accessTokenPrefix = "msk_"

func newAccessTokenValue() (string, error) {
	var b strings.Builder
	b.WriteString(accessTokenPrefix)

	// two v4 uuids give 244 random bits
	for i := 0; i < 2; i++ {
		id, err := helpers.GenUUID()
		if err != nil {
			return "", errors.Wrap(err, "generating token value")
		}
		b.WriteString(strings.ReplaceAll(id, "-", ""))
	}

	return b.String(), nil
}

// CreateAccessToken issues a new access token for the user
func (a *App) CreateAccessToken(user database.User, description string) (database.AccessToken, error) {
	value, err := newAccessTokenValue()
	if err != nil {
		return database.AccessToken{}, err
	}

	tok := database.AccessToken{
		UserID:      user.ID,
		Value:       value,
		Description: description,
	}
	if err := a.DB.Create(&tok).Error; err != nil {
		return database.AccessToken{}, errors.Wrap(err, "saving access token")
	}

	return tok, nil
}

// AuthenticateToken returns the user who owns the access token with the given
// value, or ErrNotFound
func (a *App) AuthenticateToken(value string) (database.User, database.AccessToken, error) {
	var user database.User
	var tok database.AccessToken

	if !strings.HasPrefix(value, accessTokenPrefix) {
		return user, tok, ErrNotFound
	}

	err := a.DB.Where("value = ?", value).First(&tok).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, tok, ErrNotFound
	} else if err != nil {
		return user, tok, errors.Wrap(err, "finding access token")
	}

	err = a.DB.Where("id = ?", tok.UserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, tok, ErrNotFound
	} else if err != nil {
		return user, tok, errors.Wrap(err, "finding user")
	}

	now := a.Clock.Now().UTC()
	if err := a.DB.Model(&tok).Update("last_used_at", &now).Error; err != nil {
		log.WithFields(log.Fields{
			"token_id": tok.ID,
		}).ErrorWrap(err, "touching access token")
	}

	return user, tok, nil
}

// RevokeAccessTokens deletes every access token of the user and returns how
// many were deleted
func (a *App) RevokeAccessTokens(user database.User) (int64, error) {
	res := a.DB.Where("user_id = ?", user.ID).Delete(&database.AccessToken{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "deleting access tokens")
	}

	return res.RowsAffected, nil
}
