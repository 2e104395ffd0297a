package kvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RESTStore talks to a hosted config service: reads go through the read
// endpoint (connection string carrying its own token), writes go through the
// management API with a bearer token.
type RESTStore struct {
	readBase   *url.URL
	writeBase  *url.URL
	writeToken string
	teamID     string
	client     *http.Client
}

type RESTOptions struct {
	ReadURL    string
	WriteURL   *url.URL
	WriteToken string
	TeamID     string
	Timeout    time.Duration
}

func NewRESTStore(opts RESTOptions) (*RESTStore, error) {
	s := &RESTStore{
		writeBase:  opts.WriteURL,
		writeToken: opts.WriteToken,
		teamID:     opts.TeamID,
		client:     &http.Client{Timeout: opts.Timeout},
	}
	if s.client.Timeout <= 0 {
		s.client.Timeout = 10 * time.Second
	}
	if opts.ReadURL != "" {
		base, err := url.Parse(opts.ReadURL)
		if err != nil {
			return nil, fmt.Errorf("invalid read url: %w", err)
		}
		s.readBase = base
	}
	return s, nil
}

func (s *RESTStore) endpoint(base *url.URL, suffix string) *url.URL {
	u := *base
	u.Path = strings.TrimRight(u.Path, "/") + suffix
	u.RawPath = ""
	return &u
}

func (s *RESTStore) ReadValue(ctx context.Context, key string, dst any) (bool, error) {
	if s.readBase == nil {
		return false, ErrNotConfigured
	}
	u := s.endpoint(s.readBase, "/item/"+url.PathEscape(key))

	body, status, err := s.do(ctx, http.MethodGet, u, nil, false)
	if err != nil {
		return false, err
	}
	if status == http.StatusNotFound {
		return false, nil
	}
	if status/100 != 2 {
		return false, &StatusError{Op: "read", StatusCode: status, Body: string(body)}
	}
	return decodeInto(key, body, dst)
}

func (s *RESTStore) ReadValues(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	if s.readBase == nil {
		return nil, ErrNotConfigured
	}
	out := make(map[string]json.RawMessage, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	u := s.endpoint(s.readBase, "/items")
	q := u.Query()
	for _, key := range keys {
		q.Add("key", key)
	}
	u.RawQuery = q.Encode()

	body, status, err := s.do(ctx, http.MethodGet, u, nil, false)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, &StatusError{Op: "read", StatusCode: status, Body: string(body)}
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(body, &all); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	for k, v := range all {
		if len(v) == 0 || string(v) == "null" {
			continue
		}
		out[k] = v
	}
	return out, nil
}

type restWriteItem struct {
	Operation Operation       `json:"operation"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value,omitempty"`
}

func (s *RESTStore) UpsertItems(ctx context.Context, items []Item) error {
	if s.writeBase == nil || s.writeToken == "" {
		return fmt.Errorf("%w: write needs REST API URL and token", ErrNotConfigured)
	}
	encoded, err := encodeItems(items)
	if err != nil {
		return err
	}

	payload := struct {
		Items []restWriteItem `json:"items"`
	}{Items: make([]restWriteItem, len(items))}
	for i, item := range items {
		payload.Items[i] = restWriteItem{Operation: item.op(), Key: item.Key, Value: encoded[i]}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	u := s.endpoint(s.writeBase, "/items")
	if s.teamID != "" {
		q := u.Query()
		q.Set("teamId", s.teamID)
		u.RawQuery = q.Encode()
	}

	body, status, err := s.do(ctx, http.MethodPatch, u, raw, true)
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return &StatusError{Op: "write", StatusCode: status, Body: string(body), Payload: string(raw)}
	}
	return nil
}

func (s *RESTStore) do(ctx context.Context, method string, u *url.URL, payload []byte, auth bool) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+s.writeToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("config store %s %s: %w", method, u.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
