package panel

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

	"servctl/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// Options configures a Client.
type Options struct {
	BaseURL   string        // REST base, e.g. https://panel.example.com
	StreamURL string        // websocket base, e.g. wss://panel.example.com
	Token     string        // bearer token, may be empty before login
	Timeout   time.Duration // per-request timeout; 15s when zero
}

// Client talks to the panel over HTTP and websocket.
type Client struct {
	baseURL    string
	streamURL  string
	token      string
	httpClient *http.Client
}

// NewClient creates a new panel client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		streamURL: strings.TrimRight(opts.StreamURL, "/"),
		token:     opts.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Token returns the bearer token the client sends.
func (c *Client) Token() string {
	return c.token
}

// GetProcessStatus returns the run state of a server.
func (c *Client) GetProcessStatus(ctx context.Context, serverID string) (ProcessStatus, error) {
	var status ProcessStatus
	if err := c.doJSON(ctx, http.MethodGet, serverPath(serverID, "status"), nil, &status); err != nil {
		return ProcessStatus{}, err
	}
	return status, nil
}

// GetTunnelStatus returns the state of the shared public tunnel.
func (c *Client) GetTunnelStatus(ctx context.Context) (TunnelStatus, error) {
	var status TunnelStatus
	if err := c.doJSON(ctx, http.MethodGet, "/tunnel/status", nil, &status); err != nil {
		return TunnelStatus{}, err
	}
	return status, nil
}

// PostProcessAction asks the panel to start, stop or restart a server.
func (c *Client) PostProcessAction(ctx context.Context, serverID, action string) error {
	switch action {
	case ActionStart, ActionStop, ActionRestart:
	default:
		return fmt.Errorf("unsupported server action %q", action)
	}
	return c.doJSON(ctx, http.MethodPost, serverPath(serverID, action), nil, nil)
}

// PostTunnelAction starts the tunnel on port or stops it. The port is
// ignored for stop.
func (c *Client) PostTunnelAction(ctx context.Context, action string, port int) error {
	switch action {
	case ActionStart:
		var req tunnelStartRequest
		req.PortData.Port = port
		return c.doJSON(ctx, http.MethodPost, "/tunnel/start", req, nil)
	case ActionStop:
		return c.doJSON(ctx, http.MethodPost, "/tunnel/stop", nil, nil)
	default:
		return fmt.Errorf("unsupported tunnel action %q", action)
	}
}

// PostCommand sends one console command line to a server.
func (c *Client) PostCommand(ctx context.Context, serverID, command string) error {
	return c.doJSON(ctx, http.MethodPost, serverPath(serverID, "command"), commandRequest{Command: command}, nil)
}

// ListServers returns every server the panel manages.
func (c *Client) ListServers(ctx context.Context) ([]Server, error) {
	var servers []Server
	if err := c.doJSON(ctx, http.MethodGet, "/servers", nil, &servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok tokenResponse
	if err := c.do(req, &tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("login response did not contain an access token")
	}
	return tok.AccessToken, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	logging.Debug("Panel", "%s %s", req.Method, req.URL.Path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response (status %d, body: %s): %w", resp.StatusCode, truncateBody(respBody), err)
	}
	return nil
}

func serverPath(serverID, action string) string {
	return "/servers/" + url.PathEscape(serverID) + "/" + action
}

func readResponseBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// truncateBody truncates body for error messages to avoid huge logs
func truncateBody(body []byte) string {
	const maxLen = 200
	if len(body) > maxLen {
		return string(body[:maxLen]) + "..."
	}
	return string(body)
}
