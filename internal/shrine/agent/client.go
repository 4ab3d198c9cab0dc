package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// ErrUnauthorized is returned by Client.GetKey/PutKey when the agent has no
// cached password for the shrine's UUID; the caller should prompt for a
// password and retry via PutPassword.
type ErrUnauthorized struct{ UUID uuid.UUID }

func (e *ErrUnauthorized) Error() string {
	return fmt.Sprintf("agent: no cached password for %s", e.UUID)
}

// ErrForbidden is returned when the cached password failed decryption; the
// caller should re-prompt.
type ErrForbidden struct{ UUID uuid.UUID }

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("agent: cached password rejected for %s", e.UUID)
}

// ErrKeyNotFound mirrors the agent's 404 KeyNotFound response.
type ErrKeyNotFound struct{ File, Key string }

func (e *ErrKeyNotFound) Error() string {
	return fmt.Sprintf("agent: key `%s` not found in `%s`", e.Key, e.File)
}

// Client talks to a running agent over its Unix socket.
type Client struct {
	http *http.Client
}

// NewClient dials socketPath. The returned Client is safe to reuse across
// requests; the underlying transport pools connections to the same socket.
func NewClient(socketPath string) *Client {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			d := net.Dialer{}
			return d.DialContext(ctx, "unix", socketPath)
		},
	}
	return &Client{http: &http.Client{Transport: transport, Timeout: 10 * time.Second}}
}

// Status reports whether the agent is reachable and responding.
func (c *Client) Status(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://unix/status", nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var ok bool
	if err := json.NewDecoder(resp.Body).Decode(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// PutPassword caches password for id.
func (c *Client) PutPassword(ctx context.Context, id uuid.UUID, password string) error {
	body, _ := json.Marshal(PutPasswordRequest{UUID: id.String(), Password: password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, "http://unix/passwords", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("agent: put password failed: %s", resp.Status)
	}
	return nil
}

// ClearPasswords drops every password cached by the running agent.
func (c *Client) ClearPasswords(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, "http://unix/passwords", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("agent: clear passwords failed: %s", resp.Status)
	}
	return nil
}

// GetKey fetches the secret at key inside the shrine at path, decoding the
// agent's tagged error responses into ErrUnauthorized/ErrForbidden/
// ErrKeyNotFound.
func (c *Client) GetKey(ctx context.Context, path, key string) (*SecretResponse, error) {
	u := fmt.Sprintf("http://unix/keys/%s/%s", url.PathEscape(path), url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var out SecretResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, err
		}
		return &out, nil
	}
	return nil, decodeAgentError(resp.StatusCode, resp.Body)
}

// PutKey sets the secret at key inside the shrine at path.
func (c *Client) PutKey(ctx context.Context, path, key string, req PutKeyRequest) error {
	body, _ := json.Marshal(req)
	u := fmt.Sprintf("http://unix/keys/%s/%s", url.PathEscape(path), url.PathEscape(key))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return decodeAgentError(resp.StatusCode, resp.Body)
}

func decodeAgentError(status int, body io.Reader) error {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return fmt.Errorf("agent: request failed with status %d", status)
	}
	for kind, payload := range raw {
		switch kind {
		case "Unauthorized":
			var s string
			_ = json.Unmarshal(payload, &s)
			id, _ := uuid.Parse(s)
			return &ErrUnauthorized{UUID: id}
		case "Forbidden":
			var s string
			_ = json.Unmarshal(payload, &s)
			id, _ := uuid.Parse(s)
			return &ErrForbidden{UUID: id}
		case "KeyNotFound":
			var fk struct {
				File string `json:"file"`
				Key  string `json:"key"`
			}
			_ = json.Unmarshal(payload, &fk)
			return &ErrKeyNotFound{File: fk.File, Key: fk.Key}
		default:
			var s string
			_ = json.Unmarshal(payload, &s)
			return fmt.Errorf("agent: %s: %s", kind, s)
		}
	}
	return fmt.Errorf("agent: request failed with status %d", status)
}
