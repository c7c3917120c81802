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

package login

import (
	stdctx "context"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/dnote/memosync/pkg/cli/client"
	"github.com/dnote/memosync/pkg/cli/config"
	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/infra"
	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/dnote/memosync/pkg/cli/ui"
	"github.com/dnote/memosync/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ErrInvalidToken is returned when the server rejects the access token
var ErrInvalidToken = errors.New("the server rejected the access token")

// ErrEmptyToken is returned when no access token is given
var ErrEmptyToken = errors.New("empty access token")

var example = `
  memosync login

  memosync login --server https://memos.example.com --token <token>`

var serverFlag string
var tokenFlag string
var skipVerifyFlag bool

// NewCmd returns a new login command
func NewCmd(ctx context.MemosyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Connect to a server with an access token",
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&serverFlag, "server", "", "URL of the server (prompted if omitted)")
	f.StringVar(&tokenFlag, "token", "", "access token (prompted if omitted)")
	f.BoolVar(&skipVerifyFlag, "skip-verify", false, "save the credentials without contacting the server")

	return cmd
}

// getServerDisplayURL returns the scheme and host of the endpoint
func getServerDisplayURL(ctx context.MemosyncCtx) string {
	u, err := url.Parse(ctx.APIEndpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	return u.Scheme + "://" + u.Host
}

// Do verifies the credentials against the server and saves them in the
// config file
func Do(c stdctx.Context, ctx context.MemosyncCtx, endpoint, token string, verify bool) error {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	token = strings.TrimSpace(token)

	if err := validate.Endpoint(endpoint); err != nil {
		return err
	}
	if token == "" {
		return ErrEmptyToken
	}

	if verify {
		cl := client.New(endpoint, token, ctx.Version, ctx.HTTPClient)

		c, cancel := stdctx.WithTimeout(c, 15*time.Second)
		defer cancel()

		err := cl.Ping(c)
		if errors.Is(err, client.ErrUnauthorized) {
			return ErrInvalidToken
		} else if err != nil {
			return errors.Wrap(err, "contacting the server")
		}
	}

	cf, err := config.Read(ctx)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "reading config")
	}

	cf.APIEndpoint = endpoint
	cf.AccessToken = token

	if err := config.Write(ctx, cf); err != nil {
		return errors.Wrap(err, "saving credentials")
	}

	return nil
}

func newRun(ctx context.MemosyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		endpoint := serverFlag
		if endpoint == "" {
			input, err := ui.PromptInput("server URL (" + ctx.APIEndpoint + ")")
			if err != nil {
				return errors.Wrap(err, "getting the server URL")
			}
			endpoint = input
		}
		if endpoint == "" {
			endpoint = ctx.APIEndpoint
		}

		token := tokenFlag
		if token == "" {
			input, err := ui.PromptSecret("access token")
			if err != nil {
				return errors.Wrap(err, "getting the access token")
			}
			token = input
		}

		ctx.APIEndpoint = endpoint
		if err := Do(cmd.Context(), ctx, endpoint, token, !skipVerifyFlag); err != nil {
			return errors.Wrap(err, "logging in")
		}

		log.Successf("logged in to %s\n", getServerDisplayURL(ctx))

		return nil
	}
}
