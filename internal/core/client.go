package core

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

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// RemoteFile is file metadata as returned by the server. ParentID is the
// parent's id string, or "0" at the root.
type RemoteFile struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID string `json:"-"`
}

func (f *RemoteFile) UnmarshalJSON(b []byte) error {
	type alias RemoteFile
	var raw struct {
		alias
		ParentID json.RawMessage `json:"parentId"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*f = RemoteFile(raw.alias)

	f.ParentID = RootID
	if len(raw.ParentID) > 0 && raw.ParentID[0] == '"' {
		return json.Unmarshal(raw.ParentID, &f.ParentID)
	}
	return nil
}

// NewFile is a file creation request.
type NewFile struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID string `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data,omitempty"`
}

// Client talks to a filekeep server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Connect exchanges credentials for a session token.
func (c *Client) Connect(ctx context.Context, email, password string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/connect", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(email, password)

	var out struct {
		Token string `json:"token"`
	}
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Disconnect revokes the client's token.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/disconnect", nil, nil)
}

func (c *Client) CreateFile(ctx context.Context, f NewFile) (*RemoteFile, error) {
	var out RemoteFile
	if err := c.do(ctx, http.MethodPost, "/files", f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListFiles(ctx context.Context, parentID string, page int) ([]RemoteFile, error) {
	q := url.Values{}
	q.Set("parentId", parentID)
	q.Set("page", fmt.Sprint(page))

	var out []RemoteFile
	if err := c.do(ctx, http.MethodGet, "/files?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Publish(ctx context.Context, id string) (*RemoteFile, error) {
	var out RemoteFile
	if err := c.do(ctx, http.MethodPut, "/files/"+url.PathEscape(id)+"/publish", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Unpublish(ctx context.Context, id string) (*RemoteFile, error) {
	var out RemoteFile
	if err := c.do(ctx, http.MethodPut, "/files/"+url.PathEscape(id)+"/unpublish", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("X-Token", c.token)
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
