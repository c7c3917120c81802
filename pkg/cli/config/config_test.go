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

package config

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/dnote/memosync/pkg/assert"
	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/pkg/errors"
)

func TestReadWrite(t *testing.T) {
	ctx := context.InitTestCtx(t)

	cf := Config{
		Editor:             "vim",
		APIEndpoint:        "https://memos.example.com",
		AccessToken:        "secret",
		EnableUpgradeCheck: true,
		SyncInterval:       "30m",
	}
	if err := Write(ctx, cf); err != nil {
		t.Fatal(errors.Wrap(err, "writing"))
	}

	got, err := Read(ctx)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading"))
	}
	assert.DeepEqual(t, got, cf, "config mismatch")

	info, err := os.Stat(GetPath(ctx))
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting file info"))
	}
	assert.Equal(t, info.Mode().Perm(), os.FileMode(0600), "permission mismatch")
}

func TestTiming(t *testing.T) {
	testCases := []struct {
		cf       Config
		expected Timing
		err      error
	}{
		{
			cf: Config{},
			expected: Timing{
				SyncInterval:  DefaultSyncInterval,
				MaxBackoff:    DefaultMaxBackoff,
				ProbeInterval: DefaultProbeInterval,
			},
		},
		{
			cf: Config{SyncInterval: "1h", MaxBackoff: "2h", ProbeInterval: "5s"},
			expected: Timing{
				SyncInterval:  time.Hour,
				MaxBackoff:    2 * time.Hour,
				ProbeInterval: 5 * time.Second,
			},
		},
		{
			cf:  Config{SyncInterval: "often"},
			err: ErrInvalidDuration,
		},
		{
			cf:  Config{MaxBackoff: "-1m"},
			err: ErrInvalidDuration,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			got, err := tc.cf.Timing()
			assert.Equal(t, errors.Cause(err), tc.err, "error mismatch")
			if tc.err == nil {
				assert.Equal(t, got, tc.expected, "timing mismatch")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAPIEndpoint, "http://127.0.0.1:8081")
	t.Setenv(EnvAccessToken, "")

	got := ApplyEnv(Config{APIEndpoint: "https://memos.example.com", AccessToken: "token"})

	assert.Equal(t, got.APIEndpoint, "http://127.0.0.1:8081", "endpoint should be overridden")
	assert.Equal(t, got.AccessToken, "token", "empty env should not override")
}
