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

package upgrade

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dnote/memosync/pkg/assert"
	"github.com/dnote/memosync/pkg/cli/consts"
	clictx "github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T, handler http.HandlerFunc) *Checker {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewChecker(srv.Client())
	u, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	c.gh.BaseURL = u

	return c
}

func TestLatestVersion(t *testing.T) {
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/dnote/memosync/releases" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"tag_name":"memosync-v1.4.0","prerelease":false}]`)
			return
		}

		w.Header().Set("Link", `<https://api.github.com/repos/dnote/memosync/releases?page=2>; rel="next"`)
		fmt.Fprint(w, `[{"tag_name":"memosync-v1.5.0-beta","prerelease":true},{"tag_name":"server-v2.0.0","prerelease":false}]`)
	})

	got, err := c.LatestVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got, "1.4.0", "version mismatch")
}

func TestLatestVersion_none(t *testing.T) {
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"tag_name":"memosync-v2.0.0-rc1","prerelease":true}]`)
	})

	_, err := c.LatestVersion(context.Background())
	assert.Equal(t, errors.Cause(err), ErrNoRelease, "error mismatch")
}

func TestShouldCheck(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		lastUpgrade int64
		expected    bool
	}{
		{lastUpgrade: now.Unix(), expected: false},
		{lastUpgrade: now.Add(-24 * time.Hour).Unix(), expected: false},
		{lastUpgrade: now.Unix() - upgradeInterval - 1, expected: true},
		{lastUpgrade: 0, expected: true},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			db := database.InitTestMemoryDB(t)
			database.MustExec(t, "setting last upgrade", db, "INSERT INTO system (key, value) VALUES (?, ?)", consts.SystemLastUpgrade, tc.lastUpgrade)

			got, err := shouldCheck(db, now)
			require.NoError(t, err)
			assert.Equal(t, got, tc.expected, "result mismatch")
		})
	}
}

func TestCheck_recent(t *testing.T) {
	ctx := clictx.InitTestCtx(t)
	ctx.EnableUpgradeCheck = true

	lastUpgrade := ctx.Clock.Now().Add(-time.Hour).Unix()
	database.MustExec(t, "setting last upgrade", ctx.DB, "INSERT INTO system (key, value) VALUES (?, ?)", consts.SystemLastUpgrade, lastUpgrade)

	require.NoError(t, Check(ctx))

	var got int64
	database.MustScan(t, "getting last upgrade", ctx.DB.QueryRow("SELECT value FROM system WHERE key = ?", consts.SystemLastUpgrade), &got)
	assert.Equal(t, got, lastUpgrade, "last upgrade should not be touched")
}

func TestTouchLastUpgrade(t *testing.T) {
	db := database.InitTestMemoryDB(t)
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, touchLastUpgrade(db, now))

	var got int64
	database.MustScan(t, "getting last upgrade", db.QueryRow("SELECT value FROM system WHERE key = ?", consts.SystemLastUpgrade), &got)
	assert.Equal(t, got, now.Unix(), "last upgrade mismatch")
}
