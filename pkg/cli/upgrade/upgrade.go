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

// Package upgrade checks GitHub for newer memosync releases
package upgrade

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dnote/memosync/pkg/cli/consts"
	clictx "github.com/dnote/memosync/pkg/cli/context"
	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/google/go-github/github"
	"github.com/pkg/errors"
)

const (
	repoOwner = "dnote"
	repoName  = "memosync"
	tagPrefix = "memosync-v"
	// upgradeInterval is three weeks
	upgradeInterval int64 = 86400 * 7 * 3
)

// ErrNoRelease is returned when no stable release exists
var ErrNoRelease = errors.New("no stable release was found")

// Checker looks up releases on GitHub
type Checker struct {
	gh    *github.Client
	owner string
	repo  string
}

// NewChecker returns a checker using the given HTTP client. A nil client
// uses the default one.
func NewChecker(hc *http.Client) *Checker {
	return &Checker{
		gh:    github.NewClient(hc),
		owner: repoOwner,
		repo:  repoName,
	}
}

// LatestVersion returns the version of the newest stable release
func (c *Checker) LatestVersion(ctx context.Context) (string, error) {
	opts := &github.ListOptions{PerPage: 50}

	for {
		releases, resp, err := c.gh.Repositories.ListReleases(ctx, c.owner, c.repo, opts)
		if err != nil {
			return "", errors.Wrap(err, "listing releases")
		}

		for _, rel := range releases {
			tag := rel.GetTagName()
			if rel.GetPrerelease() || rel.GetDraft() || !strings.HasPrefix(tag, tagPrefix) {
				continue
			}

			return strings.TrimPrefix(tag, tagPrefix), nil
		}

		if resp.NextPage == 0 {
			return "", ErrNoRelease
		}
		opts.Page = resp.NextPage
	}
}

func shouldCheck(db *database.DB, now time.Time) (bool, error) {
	var lastUpgrade int64
	if err := database.GetSystem(db, consts.SystemLastUpgrade, &lastUpgrade); err != nil {
		return false, errors.Wrap(err, "getting the last upgrade check time")
	}

	return now.Unix()-lastUpgrade > upgradeInterval, nil
}

func touchLastUpgrade(db *database.DB, now time.Time) error {
	if err := database.UpsertSystem(db, consts.SystemLastUpgrade, now.Unix()); err != nil {
		return errors.Wrap(err, "updating the last upgrade check time")
	}

	return nil
}

// Report prints whether a newer version than current is available
func Report(ctx context.Context, c *Checker, current string) error {
	latest, err := c.LatestVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "finding the latest version")
	}

	log.Infof("current version is %s\n", current)
	if latest == current {
		log.Success("you are up-to-date\n")
		return nil
	}

	log.Infof("version %s is available. see https://github.com/%s/%s/releases\n", latest, c.owner, c.repo)
	return nil
}

// Check reports a newer version if the last check is older than three
// weeks and checks are enabled
func Check(ctx clictx.MemosyncCtx) error {
	if !ctx.EnableUpgradeCheck {
		return nil
	}

	now := ctx.Clock.Now()
	ok, err := shouldCheck(ctx.DB, now)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := touchLastUpgrade(ctx.DB, now); err != nil {
		return err
	}

	log.Infof("checking for update...\n")

	reqCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return Report(reqCtx, NewChecker(ctx.HTTPClient), ctx.Version)
}
