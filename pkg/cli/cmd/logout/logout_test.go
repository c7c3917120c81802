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

package logout

import (
	"testing"

	"github.com/dnote/memosync/pkg/assert"
	"github.com/dnote/memosync/pkg/cli/config"
	"github.com/dnote/memosync/pkg/cli/context"
	"github.com/pkg/errors"
)

func TestDo(t *testing.T) {
	ctx := context.InitTestCtx(t)
	if err := config.Write(ctx, config.Config{APIEndpoint: "http://localhost:5230", AccessToken: "secret"}); err != nil {
		t.Fatal(errors.Wrap(err, "writing config"))
	}

	if err := Do(ctx); err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	cf, err := config.Read(ctx)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading config"))
	}
	assert.Equal(t, cf.AccessToken, "", "token should be cleared")
	assert.Equal(t, cf.APIEndpoint, "http://localhost:5230", "endpoint should be kept")

	assert.Equal(t, Do(ctx), ErrNotLoggedIn, "second logout should fail")
}
