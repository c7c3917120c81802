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
	"testing"

	"github.com/dnote/memosync/pkg/assert"
	"github.com/dnote/memosync/pkg/server/database"
	"github.com/dnote/memosync/pkg/server/testutils"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)

		a := NewTest()
		a.DB = db
		if _, err := a.CreateUser("alice@example.com", "pass1234"); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		var userCount int64
		var userRecord database.User
		testutils.MustExec(t, db.Model(&database.User{}).Count(&userCount), "counting user")
		testutils.MustExec(t, db.First(&userRecord), "finding user")

		assert.Equal(t, userCount, int64(1), "user count mismatch")
		assert.Equal(t, userRecord.Email, "alice@example.com", "email mismatch")
		assert.NotEqual(t, userRecord.UUID, "", "uuid should be set")

		passwordErr := bcrypt.CompareHashAndPassword([]byte(userRecord.Password), []byte("pass1234"))
		assert.Equal(t, passwordErr, nil, "Password mismatch")
	})

	t.Run("duplicate email", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		testutils.SetupUserData(db, "alice@example.com", "somepassword")

		a := NewTest()
		a.DB = db
		_, err := a.CreateUser("alice@example.com", "newpassword")

		assert.Equal(t, err, ErrDuplicateEmail, "error mismatch")

		var userCount int64
		testutils.MustExec(t, db.Model(&database.User{}).Count(&userCount), "counting user")
		assert.Equal(t, userCount, int64(1), "user count mismatch")
	})

	t.Run("short password", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)

		a := NewTest()
		a.DB = db
		_, err := a.CreateUser("alice@example.com", "pass")

		assert.Equal(t, err, ErrPasswordTooShort, "error mismatch")
	})

	t.Run("missing email", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)

		a := NewTest()
		a.DB = db
		_, err := a.CreateUser("  ", "pass1234")

		assert.Equal(t, err, ErrEmailRequired, "error mismatch")
	})
}

func TestCheckPassword(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	assert.Equal(t, CheckPassword(user, "pass1234"), true, "correct password should match")
	assert.Equal(t, CheckPassword(user, "pass12345"), false, "wrong password should not match")
}

func TestUpdateUserPassword(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	if err := UpdateUserPassword(db, user, "newpass1234"); err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	var userRecord database.User
	testutils.MustExec(t, db.Where("id = ?", user.ID).First(&userRecord), "finding user")
	assert.Equal(t, CheckPassword(userRecord, "newpass1234"), true, "new password should match")
	assert.Equal(t, CheckPassword(userRecord, "pass1234"), false, "old password should not match")

	assert.Equal(t, UpdateUserPassword(db, user, "short"), ErrPasswordTooShort, "error mismatch")
}

func TestGetUserByEmail(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	a := NewTest()
	a.DB = db

	got, err := a.GetUserByEmail("alice@example.com")
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}
	assert.Equal(t, got.ID, user.ID, "user id mismatch")

	_, err = a.GetUserByEmail("bob@example.com")
	assert.Equal(t, err, ErrNotFound, "error mismatch")
}

func TestRemoveUser(t *testing.T) {
	t.Run("without memos", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice@example.com", "pass1234")
		testutils.SetupAccessToken(db, user, "msk_1")

		a := NewTest()
		a.DB = db
		if err := a.RemoveUser("alice@example.com"); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		var userCount, tokenCount int64
		testutils.MustExec(t, db.Model(&database.User{}).Count(&userCount), "counting user")
		testutils.MustExec(t, db.Model(&database.AccessToken{}).Count(&tokenCount), "counting token")
		assert.Equal(t, userCount, int64(0), "user count mismatch")
		assert.Equal(t, tokenCount, int64(0), "token count mismatch")
	})

	t.Run("with memos", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice@example.com", "pass1234")
		a := NewTest()
		a.DB = db
		testutils.SetupMemo(db, user, "memo-1", "Buy milk", a.Clock.Now())

		err := a.RemoveUser("alice@example.com")
		assert.Equal(t, errors.Is(err, ErrUserHasExistingResources), true, "error mismatch")

		var userCount int64
		testutils.MustExec(t, db.Model(&database.User{}).Count(&userCount), "counting user")
		assert.Equal(t, userCount, int64(1), "user count mismatch")
	})

	t.Run("not found", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)

		a := NewTest()
		a.DB = db
		assert.Equal(t, a.RemoveUser("bob@example.com"), ErrNotFound, "error mismatch")
	})
}
