// Package boxclient is an HTTP client for the boxd sandbox daemon's API,
// used by cmd/boxctl.
package boxclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to a boxd daemon's HTTP front door.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for the boxd daemon at baseURL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

func (c *Client) decodeOK(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("boxd API error (status %d): %s", resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IssueAccessToken exchanges the client's configured API key for a
// short-lived access token minted by the daemon.
func (c *Client) IssueAccessToken(ctx context.Context) (string, time.Time, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/token", nil)
	if err != nil {
		return "", time.Time{}, err
	}
	var out struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := c.decodeOK(resp, &out); err != nil {
		return "", time.Time{}, err
	}
	return out.Token, out.ExpiresAt, nil
}

// SessionInfo mirrors the daemon's session representation.
type SessionInfo struct {
	ID        string            `json:"id"`
	State     string            `json:"state"`
	Cwd       string            `json:"cwd"`
	Env       map[string]string `json:"env"`
	CreatedAt time.Time         `json:"created_at"`
	LastUsed  time.Time         `json:"last_used"`
}

// CreateSession creates a new session with the given initial environment.
func (c *Client) CreateSession(ctx context.Context, env map[string]string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/sessions", map[string]any{"env": env})
	if err != nil {
		return "", err
	}
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := c.decodeOK(resp, &out); err != nil {
		return "", err
	}
	return out.SessionID, nil
}

// GetSession fetches a single session's info.
func (c *Client) GetSession(ctx context.Context, id string) (SessionInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return SessionInfo{}, err
	}
	var out SessionInfo
	err = c.decodeOK(resp, &out)
	return out, err
}

// ListSessions lists all live sessions.
func (c *Client) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/sessions", nil)
	if err != nil {
		return nil, err
	}
	var out []SessionInfo
	err = c.decodeOK(resp, &out)
	return out, err
}

// DestroySession tears down a session.
func (c *Client) DestroySession(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.decodeOK(resp, nil)
}

// SetEnv merges vars into the session's persistent environment.
func (c *Client) SetEnv(ctx context.Context, id string, vars map[string]string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/sessions/"+url.PathEscape(id)+"/env", map[string]any{"env": vars})
	if err != nil {
		return err
	}
	return c.decodeOK(resp, nil)
}

// SetCwd changes the session's persistent working directory.
func (c *Client) SetCwd(ctx context.Context, id, cwd string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/sessions/"+url.PathEscape(id)+"/cwd", map[string]any{"cwd": cwd})
	if err != nil {
		return err
	}
	return c.decodeOK(resp, nil)
}

// CommandResult mirrors the daemon's exec response.
type CommandResult struct {
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ExitCode   int    `json:"exit_code"`
	Signal     int    `json:"signal"`
	DurationMs int64  `json:"duration_ms"`
}

// RunCommandOpts carries the optional resource limits for Exec.
type RunCommandOpts struct {
	TimeMs  int64
	MemKB   int64
	FsizeKB int64
	NoFile  int64
	Env     map[string]string
	Cwd     string
}

// Exec runs argv inside the session.
func (c *Client) Exec(ctx context.Context, id string, argv []string, opts RunCommandOpts) (CommandResult, error) {
	body := map[string]any{
		"command":  argv,
		"time_ms":  opts.TimeMs,
		"mem_kb":   opts.MemKB,
		"fsize_kb": opts.FsizeKB,
		"nofile":   opts.NoFile,
		"env":      opts.Env,
		"cwd":      opts.Cwd,
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/sessions/"+url.PathEscape(id)+"/exec", body)
	if err != nil {
		return CommandResult{}, err
	}
	var out CommandResult
	err = c.decodeOK(resp, &out)
	return out, err
}

// WriteFile writes content to path inside the session, base64-encoding the
// payload to match the daemon's JSON write contract.
func (c *Client) WriteFile(ctx context.Context, id, path string, content []byte) error {
	body := map[string]string{
		"path":           path,
		"content_base64": base64.StdEncoding.EncodeToString(content),
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/sessions/"+url.PathEscape(id)+"/fs/write", body)
	if err != nil {
		return err
	}
	return c.decodeOK(resp, nil)
}

// ReadFile reads up to maxBytes from path inside the session. maxBytes of 0
// sends no limit, so the daemon's configured read cap applies.
func (c *Client) ReadFile(ctx context.Context, id, path string, maxBytes int64) ([]byte, bool, error) {
	q := url.Values{}
	q.Set("path", path)
	if maxBytes > 0 {
		q.Set("max_bytes", strconv.FormatInt(maxBytes, 10))
	}
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(id)+"/fs/read?"+q.Encode(), nil)
	if err != nil {
		return nil, false, err
	}
	var out struct {
		ContentBase64 string `json:"content_base64"`
		Truncated     bool   `json:"truncated"`
	}
	if err := c.decodeOK(resp, &out); err != nil {
		return nil, false, err
	}
	content, err := base64.StdEncoding.DecodeString(out.ContentBase64)
	if err != nil {
		return nil, false, fmt.Errorf("decode content: %w", err)
	}
	return content, out.Truncated, nil
}

// DirEntry mirrors a single file service directory listing entry.
type DirEntry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
}

// ListDirectory lists the contents of path inside the session.
func (c *Client) ListDirectory(ctx context.Context, id, path string) ([]DirEntry, error) {
	q := url.Values{}
	q.Set("path", path)
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(id)+"/fs/list?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Entries []DirEntry `json:"entries"`
	}
	if err := c.decodeOK(resp, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// CreateSnapshot captures the session's current workspace under name.
func (c *Client) CreateSnapshot(ctx context.Context, id, name string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/sessions/"+url.PathEscape(id)+"/snapshots", map[string]string{"name": name})
	if err != nil {
		return err
	}
	return c.decodeOK(resp, nil)
}

// SnapshotInfo is one entry in a session's snapshot listing.
type SnapshotInfo struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ListSnapshots lists snapshots recorded for the session, oldest first.
func (c *Client) ListSnapshots(ctx context.Context, id string) ([]SnapshotInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(id)+"/snapshots", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Snapshots []SnapshotInfo `json:"snapshots"`
	}
	if err := c.decodeOK(resp, &out); err != nil {
		return nil, err
	}
	return out.Snapshots, nil
}

// DeleteSnapshot removes a named snapshot.
func (c *Client) DeleteSnapshot(ctx context.Context, id, name string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/sessions/"+url.PathEscape(id)+"/snapshots/"+url.PathEscape(name), nil)
	if err != nil {
		return err
	}
	return c.decodeOK(resp, nil)
}

// RestoreSnapshot restores the session's workspace from a named snapshot.
func (c *Client) RestoreSnapshot(ctx context.Context, id, name string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/sessions/"+url.PathEscape(id)+"/snapshots/"+url.PathEscape(name)+"/restore", nil)
	if err != nil {
		return err
	}
	return c.decodeOK(resp, nil)
}

// ExportSnapshot streams a named snapshot's gzip-tar archive to w.
func (c *Client) ExportSnapshot(ctx context.Context, id, name string, w io.Writer) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(id)+"/snapshots/"+url.PathEscape(name)+"/export", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("boxd API error (status %d): %s", resp.StatusCode, string(body))
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// ImportSnapshot uploads a gzip-tar archive from r as a named snapshot.
func (c *Client) ImportSnapshot(ctx context.Context, id, name string, r io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/sessions/"+url.PathEscape(id)+"/snapshots/"+url.PathEscape(name)+"/import", r)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/gzip")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	return c.decodeOK(resp, nil)
}
