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
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}

	return string(b), nil
}

// CreateUser creates a user
func (a *App) CreateUser(email, password string) (database.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return database.User{}, ErrEmailRequired
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return database.User{}, err
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.User{}, err
	}

	user := database.User{
		UUID:     uuid,
		Email:    email,
		Password: hashed,
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return errors.Wrap(err, "counting user")
		}
		if count > 0 {
			return ErrDuplicateEmail
		}

		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateEmail
			}
			return errors.Wrap(err, "saving user")
		}

		return nil
	})
	if err != nil {
		return database.User{}, err
	}

	return user, nil
}

// GetUserByEmail finds the user with the given email
func (a *App) GetUserByEmail(email string) (database.User, error) {
	var user database.User

	err := a.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrNotFound
	} else if err != nil {
		return user, errors.Wrap(err, "finding user")
	}

	return user, nil
}

// CheckPassword tells if password matches the one of the user
func CheckPassword(user database.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

// UpdateUserPassword replaces the password of the user
func UpdateUserPassword(db *gorm.DB, user database.User, password string) error {
	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}

	if err := db.Model(&user).Update("password", hashed).Error; err != nil {
		return errors.Wrap(err, "updating password")
	}

	return nil
}

// RemoveUser removes the user with the given email and the user's access
// tokens. A user who still owns memos is not removed.
func (a *App) RemoveUser(email string) error {
	return a.DB.Transaction(func(tx *gorm.DB) error {
		var user database.User
		err := tx.Where("email = ?", email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		} else if err != nil {
			return errors.Wrap(err, "finding user")
		}

		var count int64
		if err := tx.Model(&database.Memo{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "counting memos")
		}
		if count > 0 {
			return errors.Wrapf(ErrUserHasExistingResources, "%d memos", count)
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&database.AccessToken{}).Error; err != nil {
			return errors.Wrap(err, "deleting access tokens")
		}
		if err := tx.Delete(&user).Error; err != nil {
			return errors.Wrap(err, "deleting user")
		}

		return nil
	})
}
