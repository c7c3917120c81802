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

package cmd

import (
	"fmt"
	"io"

	"github.com/dnote/memosync/pkg/prompt"
	"github.com/dnote/memosync/pkg/server/app"
	"github.com/dnote/memosync/pkg/server/database"
	"github.com/pkg/errors"
)

const userUsage = `Usage:
  memosync-server user [command]

Available commands:
  create: Create a new user and print an access token
  token: Issue a new access token for a user
  revoke-tokens: Revoke every access token of a user
  remove: Remove a user (only if they have no memos)
  reset-password: Reset a user's password`

// confirm prompts for user input to confirm a choice
func confirm(r io.Reader, w io.Writer, question string, optimistic bool) (bool, error) {
	fmt.Fprint(w, prompt.Question(question, optimistic)+" ")

	confirmed, err := prompt.ReadYesNo(r, optimistic)
	if err != nil {
		return false, errors.Wrap(err, "reading stdin")
	}

	return confirmed, nil
}

// findUser looks up the user, printing a friendly message if there is none
func findUser(a *app.App, w io.Writer, email string) (database.User, error) {
	user, err := a.GetUserByEmail(email)
	if errors.Is(err, app.ErrNotFound) {
		fmt.Fprintf(w, "Error: user with email %s not found\n", email)
		return user, errUsage
	} else if err != nil {
		return user, errors.Wrap(err, "finding user")
	}

	return user, nil
}

func printToken(w io.Writer, tok database.AccessToken) {
	fmt.Fprintf(w, "Access token: %s\n", tok.Value)
	fmt.Fprintln(w, "Store it now. It is not shown again.")
}

func userCreateCmd(args []string, w io.Writer) error {
	fs := setupFlagSet("create", "memosync-server user create", w)

	email := fs.String("email", "", "User email address (required)")
	password := fs.String("password", "", "User password (required)")
	dbPath := fs.String("dbPath", "", dbPathUsage)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireString(fs, w, *email, "email"); err != nil {
		return err
	}
	if err := requireString(fs, w, *password, "password"); err != nil {
		return err
	}

	a, cleanup, err := setupAppWithDB(fs, w, *dbPath)
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := a.CreateUser(*email, *password)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}

	tok, err := a.CreateAccessToken(user, "created with the user")
	if err != nil {
		return errors.Wrap(err, "creating access token")
	}

	fmt.Fprintf(w, "User created successfully\n")
	fmt.Fprintf(w, "Email: %s\n", *email)
	printToken(w, tok)

	return nil
}

func userTokenCmd(args []string, w io.Writer) error {
	fs := setupFlagSet("token", "memosync-server user token", w)

	email := fs.String("email", "", "User email address (required)")
	description := fs.String("description", "", "What the token is for")
	dbPath := fs.String("dbPath", "", dbPathUsage)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireString(fs, w, *email, "email"); err != nil {
		return err
	}

	a, cleanup, err := setupAppWithDB(fs, w, *dbPath)
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := findUser(a, w, *email)
	if err != nil {
		return err
	}

	tok, err := a.CreateAccessToken(user, *description)
	if err != nil {
		return errors.Wrap(err, "creating access token")
	}

	printToken(w, tok)

	return nil
}

func userRevokeTokensCmd(args []string, w io.Writer) error {
	fs := setupFlagSet("revoke-tokens", "memosync-server user revoke-tokens", w)

	email := fs.String("email", "", "User email address (required)")
	dbPath := fs.String("dbPath", "", dbPathUsage)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireString(fs, w, *email, "email"); err != nil {
		return err
	}

	a, cleanup, err := setupAppWithDB(fs, w, *dbPath)
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := findUser(a, w, *email)
	if err != nil {
		return err
	}

	n, err := a.RevokeAccessTokens(user)
	if err != nil {
		return errors.Wrap(err, "revoking access tokens")
	}

	fmt.Fprintf(w, "Revoked %d access tokens\n", n)

	return nil
}

func userRemoveCmd(args []string, stdin io.Reader, w io.Writer) error {
	fs := setupFlagSet("remove", "memosync-server user remove", w)

	email := fs.String("email", "", "User email address (required)")
	dbPath := fs.String("dbPath", "", dbPathUsage)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireString(fs, w, *email, "email"); err != nil {
		return err
	}

	a, cleanup, err := setupAppWithDB(fs, w, *dbPath)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := findUser(a, w, *email); err != nil {
		return err
	}

	ok, err := confirm(stdin, w, fmt.Sprintf("Remove user %s?", *email), false)
	if err != nil {
		return errors.Wrap(err, "getting confirmation")
	}
	if !ok {
		fmt.Fprintln(w, "Aborted by user")
		return nil
	}

	if err := a.RemoveUser(*email); err != nil {
		if errors.Is(err, app.ErrUserHasExistingResources) {
			fmt.Fprintf(w, "Error: %s\n", err)
			return errUsage
		}

		return errors.Wrap(err, "removing user")
	}

	fmt.Fprintf(w, "User removed successfully\n")
	fmt.Fprintf(w, "Email: %s\n", *email)

	return nil
}

func userResetPasswordCmd(args []string, w io.Writer) error {
	fs := setupFlagSet("reset-password", "memosync-server user reset-password", w)

	email := fs.String("email", "", "User email address (required)")
	password := fs.String("password", "", "New password (required)")
	dbPath := fs.String("dbPath", "", dbPathUsage)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireString(fs, w, *email, "email"); err != nil {
		return err
	}
	if err := requireString(fs, w, *password, "password"); err != nil {
		return err
	}

	a, cleanup, err := setupAppWithDB(fs, w, *dbPath)
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := findUser(a, w, *email)
	if err != nil {
		return err
	}

	if err := app.UpdateUserPassword(a.DB, user, *password); err != nil {
		return errors.Wrap(err, "updating password")
	}

	fmt.Fprintf(w, "Password reset successfully\n")
	fmt.Fprintf(w, "Email: %s\n", *email)

	return nil
}

func userCmd(args []string, stdin io.Reader, w io.Writer) error {
	if len(args) < 1 {
		fmt.Fprintln(w, userUsage)
		return errUsage
	}

	subcommand := args[0]
	subArgs := args[1:]

	switch subcommand {
	case "create":
		return userCreateCmd(subArgs, w)
	case "token":
		return userTokenCmd(subArgs, w)
	case "revoke-tokens":
		return userRevokeTokensCmd(subArgs, w)
	case "remove":
		return userRemoveCmd(subArgs, stdin, w)
	case "reset-password":
		return userResetPasswordCmd(subArgs, w)
	default:
		fmt.Fprintf(w, "Unknown subcommand: %s\n\n", subcommand)
		fmt.Fprintln(w, userUsage)
		return errUsage
	}
}
