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

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dnote/memosync/pkg/assert"
	"github.com/pkg/errors"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	return New(ts.URL+"/", "token", "0.1.0", ts.Client())
}

func TestListNotes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.Method, http.MethodGet, "method mismatch")
		assert.Equal(t, r.URL.Path, "/api/v1/memos", "path mismatch")
		assert.Equal(t, r.URL.Query().Get("pageSize"), "1000", "page size mismatch")
		assert.Equal(t, r.Header.Get("Authorization"), "Bearer token", "authorization mismatch")
		assert.Equal(t, r.Header.Get("User-Agent"), "memosync/0.1.0", "user agent mismatch")

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"memos": []map[string]interface{}{
				{
					"name":       "memos/42",
					"content":    "Buy milk",
					"createTime": "2025-01-02T03:04:05Z",
					"updateTime": "2025-01-02T03:04:06.5+09:00",
					"visibility": "PRIVATE",
					"state":      "NORMAL",
					"pinned":     true,
				},
				{
					"name":       "memos/43",
					"content":    "bad times",
					"updateTime": "yesterday",
				},
			},
			"nextPageToken": "",
		})
	})

	got, err := c.ListNotes(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "listing"))
	}

	assert.Equal(t, len(got), 2, "length mismatch")
	assert.DeepEqual(t, got[0], RemoteNote{
		Name:       "memos/42",
		Content:    "Buy milk",
		CreateTime: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdateTime: time.Date(2025, 1, 1, 18, 4, 6, 500000000, time.UTC),
		Visibility: "PRIVATE",
		State:      "NORMAL",
		Pinned:     true,
	}, "first note mismatch")
	assert.Equal(t, got[1].UpdateTime.UnixNano(), int64(0), "unparseable time should be the epoch")
}

func TestListNotes_errors(t *testing.T) {
	testCases := []struct {
		handler   http.HandlerFunc
		retryable bool
		unauth    bool
	}{
		{
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			retryable: true,
		},
		{
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			unauth: true,
		},
		{
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				io.WriteString(w, "<html></html>")
			},
			retryable: true,
		},
		{
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, "{not json")
			},
			retryable: true,
		},
		{
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"memos": []map[string]interface{}{{"content": "no name"}},
				})
			},
			retryable: true,
		},
		{
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			retryable: false,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			c := newTestClient(t, tc.handler)

			_, err := c.ListNotes(context.Background())
			assert.NotEqual(t, err, nil, "should fail")
			assert.Equal(t, IsRetryable(err), tc.retryable, "retryable mismatch")
			assert.Equal(t, errors.Is(err, ErrUnauthorized), tc.unauth, "unauthorized mismatch")
		})
	}
}

func TestNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	endpoint := ts.URL
	ts.Close()

	c := New(endpoint, "token", "0.1.0", nil)

	_, err := c.ListNotes(context.Background())
	assert.Equal(t, IsNetworkError(err), true, "should be a network error")
	assert.Equal(t, IsRetryable(err), true, "network errors are retryable")
}

func TestCreateNote(t *testing.T) {
	var gotBody createMemoPayload

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.Method, http.MethodPost, "method mismatch")
		assert.Equal(t, r.URL.Path, "/api/v1/memos", "path mismatch")
		assert.Equal(t, r.URL.Query().Get("memoId"), "local-1", "memo id mismatch")

		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Error(errors.Wrap(err, "decoding body"))
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"name":       "memos/42",
			"uid":        "local-1",
			"content":    gotBody.Content,
			"createTime": "2025-01-02T03:04:05Z",
			"updateTime": "2025-01-02T03:04:05Z",
		})
	})

	got, err := c.CreateNote(context.Background(), "local-1", "Buy milk")
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating"))
	}

	assert.Equal(t, gotBody, createMemoPayload{Content: "Buy milk", Visibility: "PRIVATE"}, "payload mismatch")
	assert.Equal(t, got.Name, "memos/42", "name mismatch")
	assert.Equal(t, got.UID, "local-1", "uid mismatch")
}

func TestCreateNote_conflict(t *testing.T) {
	var calls []string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, fmt.Sprintf("%s %s", r.Method, r.URL.Path))

		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusConflict)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"name":       "memos/local-1",
			"content":    "Buy milk",
			"updateTime": "2025-01-02T03:04:05Z",
		})
	})

	got, err := c.CreateNote(context.Background(), "local-1", "Buy milk")
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating"))
	}

	assert.Equal(t, got.Name, "memos/local-1", "name mismatch")
	assert.DeepEqual(t, calls, []string{"POST /api/v1/memos", "GET /api/v1/memos/local-1"}, "calls mismatch")
}

func TestCreateNote_emptyName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"content": "Buy milk"})
	})

	_, err := c.CreateNote(context.Background(), "local-1", "Buy milk")

	var se *ServerError
	assert.Equal(t, errors.As(err, &se), true, "should be a server error")
}

func TestUpdateNote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.Method, http.MethodPatch, "method mismatch")
		assert.Equal(t, r.URL.Path, "/api/v1/memos/42", "path mismatch")
		assert.Equal(t, r.URL.Query().Get("updateMask"), "content", "update mask mismatch")

		var p updateMemoPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Error(errors.Wrap(err, "decoding body"))
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"name":       "memos/42",
			"content":    p.Content,
			"updateTime": "2025-01-03T00:00:00Z",
		})
	})

	got, err := c.UpdateNote(context.Background(), "memos/42", "Buy oat milk")
	if err != nil {
		t.Fatal(errors.Wrap(err, "updating"))
	}

	assert.Equal(t, got.Content, "Buy oat milk", "content mismatch")
	assert.Equal(t, got.UpdateTime, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), "update time mismatch")

	_, err = c.UpdateNote(context.Background(), "", "x")
	assert.NotEqual(t, err, nil, "empty name should fail")
}

func TestDeleteNote(t *testing.T) {
	testCases := []struct {
		status  int
		wantErr bool
	}{
		{status: http.StatusOK, wantErr: false},
		{status: http.StatusNotFound, wantErr: false},
		{status: http.StatusInternalServerError, wantErr: true},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, r.Method, http.MethodDelete, "method mismatch")
				assert.Equal(t, r.URL.Path, "/api/v1/memos/42", "path mismatch")
				w.WriteHeader(tc.status)
			})

			err := c.DeleteNote(context.Background(), "memos/42")
			assert.Equal(t, err != nil, tc.wantErr, "error mismatch")
		})
	}
}

func TestRequestCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"memos": []interface{}{}})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListNotes(ctx)
	assert.Equal(t, errors.Is(err, context.Canceled), true, "should report cancellation")
}
