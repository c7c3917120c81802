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

// Package client provides a gateway to a Memos compatible server and the
// data structures for its responses
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dnote/memosync/pkg/cli/log"
	"github.com/pkg/errors"
)

const (
	// listPageSize is large enough to fetch every note in one page
	listPageSize = 1000
	// defaultVisibility is the visibility of the notes created by the client
	defaultVisibility = "PRIVATE"
	// namePrefix is the prefix of the resource name of a note
	namePrefix = "memos/"
)

var contentTypeApplicationJSON = "application/json"

// RemoteNote is a note as the server knows it
type RemoteNote struct {
	Name       string
	UID        string
	Content    string
	CreateTime time.Time
	UpdateTime time.Time
	Visibility string
	State      string
	Pinned     bool
}

// memo is the wire representation of a note
type memo struct {
	Name       string `json:"name"`
	UID        string `json:"uid,omitempty"`
	Content    string `json:"content"`
	CreateTime string `json:"createTime,omitempty"`
	UpdateTime string `json:"updateTime,omitempty"`
	Visibility string `json:"visibility,omitempty"`
	State      string `json:"state,omitempty"`
	Pinned     bool   `json:"pinned"`
}

type listMemosResp struct {
	Memos         []memo `json:"memos"`
	NextPageToken string `json:"nextPageToken"`
}

type createMemoPayload struct {
	Content    string `json:"content"`
	Visibility string `json:"visibility"`
}

type updateMemoPayload struct {
	Content string `json:"content"`
}

// parseTime parses an RFC3339 timestamp. Unparseable values become the unix
// epoch so that any valid local timestamp compares as newer.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}

	return t.UTC()
}

func (m memo) toRemoteNote() RemoteNote {
	return RemoteNote{
		Name:       m.Name,
		UID:        m.UID,
		Content:    m.Content,
		CreateTime: parseTime(m.CreateTime),
		UpdateTime: parseTime(m.UpdateTime),
		Visibility: m.Visibility,
		State:      m.State,
		Pinned:     m.Pinned,
	}
}

// Client talks to the notes API of a Memos compatible server
type Client struct {
	endpoint    string
	accessToken string
	userAgent   string
	hc          *http.Client
}

// New returns a client for the server at the given endpoint. If hc is nil,
// a rate limited client is used.
func New(endpoint, accessToken, version string, hc *http.Client) *Client {
	if hc == nil {
		hc = NewRateLimitedHTTPClient()
	}

	return &Client{
		endpoint:    strings.TrimRight(endpoint, "/"),
		accessToken: accessToken,
		userAgent:   fmt.Sprintf("memosync/%s", version),
		hc:          hc,
	}
}

func (c *Client) newReq(ctx context.Context, method, path string, query url.Values, payload interface{}) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s%s", c.endpoint, path)
	if len(query) > 0 {
		endpoint = fmt.Sprintf("%s?%s", endpoint, query.Encode())
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "marshaling payload")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", contentTypeApplicationJSON)
	if payload != nil {
		req.Header.Set("Content-Type", contentTypeApplicationJSON)
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.accessToken))
	}

	return req, nil
}

// checkRespErr converts an error response into a typed error
func checkRespErr(res *http.Response) error {
	if res.StatusCode < 400 {
		return nil
	}

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return &ServerError{
			StatusCode: res.StatusCode,
			Message:    errors.Wrap(err, "reading the response body").Error(),
		}
	}

	return &ServerError{
		StatusCode: res.StatusCode,
		Message:    strings.TrimRight(string(body), "\n"),
	}
}

// doReq does a http request to the given path in the api endpoint. The caller
// must close the body of the returned response.
func (c *Client) doReq(ctx context.Context, method, path string, query url.Values, payload interface{}) (*http.Response, error) {
	req, err := c.newReq(ctx, method, path, query, payload)
	if err != nil {
		return nil, err
	}

	log.Debug("HTTP %s %s\n", method, path)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: fmt.Sprintf("%s %s", method, path), Err: err}
	}

	log.Debug("HTTP %s\n", res.Status)

	if err := checkRespErr(res); err != nil {
		res.Body.Close()
		return nil, err
	}

	return res, nil
}

// decode reads a JSON response body into v
func decode(res *http.Response, v interface{}) error {
	defer res.Body.Close()

	mediaType, _, err := mime.ParseMediaType(res.Header.Get("Content-Type"))
	if err != nil || mediaType != contentTypeApplicationJSON {
		return &ServerError{
			StatusCode: 0,
			Message: errors.Wrapf(ErrContentTypeMismatch, "got: '%s' want: '%s'. Did you configure your endpoint correctly?",
				res.Header.Get("Content-Type"), contentTypeApplicationJSON).Error(),
		}
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return &ServerError{Message: errors.Wrap(err, "decoding payload").Error()}
	}

	return nil
}

func (c *Client) getMemo(ctx context.Context, method, path string, query url.Values, payload interface{}) (RemoteNote, error) {
	res, err := c.doReq(ctx, method, path, query, payload)
	if err != nil {
		return RemoteNote{}, err
	}

	var m memo
	if err := decode(res, &m); err != nil {
		return RemoteNote{}, err
	}
	if m.Name == "" {
		return RemoteNote{}, &ServerError{Message: "response has no resource name"}
	}

	return m.toRemoteNote(), nil
}

func notePath(name string) (string, error) {
	if !strings.HasPrefix(name, namePrefix) || len(name) == len(namePrefix) {
		return "", errors.Errorf("invalid note name '%s'", name)
	}

	return fmt.Sprintf("/api/v1/%s", name), nil
}

// ListNotes fetches every note of the user
func (c *Client) ListNotes(ctx context.Context) ([]RemoteNote, error) {
	q := url.Values{}
	q.Set("pageSize", fmt.Sprint(listPageSize))

	res, err := c.doReq(ctx, http.MethodGet, "/api/v1/memos", q, nil)
	if err != nil {
		return nil, errors.Wrap(err, "listing remote notes")
	}

	var resp listMemosResp
	if err := decode(res, &resp); err != nil {
		return nil, errors.Wrap(err, "listing remote notes")
	}
	if resp.NextPageToken != "" {
		log.Debug("remote has more than %d notes; only the first page is synced\n", listPageSize)
	}

	ret := make([]RemoteNote, 0, len(resp.Memos))
	for _, m := range resp.Memos {
		if m.Name == "" {
			return nil, errors.Wrap(&ServerError{Message: "listed note has no resource name"}, "listing remote notes")
		}

		ret = append(ret, m.toRemoteNote())
	}

	return ret, nil
}

// GetNote fetches a note by its resource name
func (c *Client) GetNote(ctx context.Context, name string) (RemoteNote, error) {
	p, err := notePath(name)
	if err != nil {
		return RemoteNote{}, err
	}

	n, err := c.getMemo(ctx, http.MethodGet, p, nil, nil)
	if err != nil {
		return RemoteNote{}, errors.Wrapf(err, "getting note %s", name)
	}

	return n, nil
}

// CreateNote creates a note on the server. The local id is sent as the
// client-chosen id so that a repeated create resolves to the same note.
func (c *Client) CreateNote(ctx context.Context, localID, content string) (RemoteNote, error) {
	q := url.Values{}
	q.Set("memoId", localID)

	payload := createMemoPayload{
		Content:    content,
		Visibility: defaultVisibility,
	}

	n, err := c.getMemo(ctx, http.MethodPost, "/api/v1/memos", q, payload)
	if err == nil {
		return n, nil
	}

	var se *ServerError
	if errors.As(err, &se) && se.IsConflict() {
		log.Debug("note %s already exists on the server\n", localID)

		existing, gerr := c.GetNote(ctx, namePrefix+localID)
		if gerr != nil {
			return RemoteNote{}, errors.Wrap(gerr, "resolving conflicting create")
		}

		return existing, nil
	}

	return RemoteNote{}, errors.Wrap(err, "creating note")
}

// UpdateNote replaces the content of a note on the server
func (c *Client) UpdateNote(ctx context.Context, name, content string) (RemoteNote, error) {
	p, err := notePath(name)
	if err != nil {
		return RemoteNote{}, err
	}

	q := url.Values{}
	q.Set("updateMask", "content")

	n, err := c.getMemo(ctx, http.MethodPatch, p, q, updateMemoPayload{Content: content})
	if err != nil {
		return RemoteNote{}, errors.Wrapf(err, "updating note %s", name)
	}

	return n, nil
}

// DeleteNote deletes a note on the server. A note that no longer exists is
// not an error.
func (c *Client) DeleteNote(ctx context.Context, name string) error {
	p, err := notePath(name)
	if err != nil {
		return err
	}

	res, err := c.doReq(ctx, http.MethodDelete, p, nil, nil)
	if err != nil {
		var se *ServerError
		if errors.As(err, &se) && se.IsNotFound() {
			return nil
		}

		return errors.Wrapf(err, "deleting note %s", name)
	}
	res.Body.Close()

	return nil
}

// Ping checks that the server is reachable and accepts the access token
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("pageSize", "1")

	res, err := c.doReq(ctx, http.MethodGet, "/api/v1/memos", q, nil)
	if err != nil {
		return err
	}

	var resp listMemosResp
	return decode(res, &resp)
}
