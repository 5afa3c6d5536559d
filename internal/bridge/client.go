// Package bridge talks to the on-device update agent: the process that
// owns manifest downloads, asset storage and application restarts.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pushchain/push-ota/internal/update"
)

const (
	constantsPath = "/v1/constants"
	checkPath     = "/v1/check"
	fetchPath     = "/v1/fetch"
	reloadPath    = "/v1/reload"
	eventsPath    = "/v1/events"

	defaultTimeout = 30 * time.Second

	// ChannelHeader names the update channel the agent should check against.
	ChannelHeader = "Expo-Channel-Name"
	// RequestIDHeader carries a per-request id for correlating agent logs.
	RequestIDHeader = "X-Request-ID"
)

// Compile time check for protocol compatibility
var _ update.Native = (*Client)(nil)

// Config configures a Client.
type Config struct {
	// BaseURL is the agent's HTTP root, e.g. http://127.0.0.1:19010.
	BaseURL string
	// Channel is sent with every request when set.
	Channel string
	// Version is reported in the User-Agent header.
	Version string
	// Timeout bounds each HTTP request. Zero means 30s. It does not apply
	// to the event stream.
	Timeout time.Duration
	Logger  update.Logger
}

// Client is an HTTP and WebSocket client for the update agent.
type Client struct {
	http      *http.Client
	base      string
	wsURL     string
	channel   string
	userAgent string
	log       update.Logger
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid agent URL %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid agent URL %q: scheme must be http or https", cfg.BaseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid agent URL %q: missing host", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	log := cfg.Logger
	if log == nil {
		log = noopLogger{}
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		base:      base,
		wsURL:     deriveWS(base) + eventsPath,
		channel:   cfg.Channel,
		userAgent: "push-ota/" + version,
		log:       log,
	}, nil
}

func deriveWS(base string) string {
	// http://host:port -> ws://host:port
	// https:// -> wss://
	if strings.HasPrefix(base, "https://") {
		return "wss://" + strings.TrimPrefix(base, "https://")
	}
	return "ws://" + strings.TrimPrefix(base, "http://")
}

// Error is a non-2xx answer from the agent.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("update agent returned %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("update agent returned %d: %s", e.Status, e.Message)
}

// IsAgentError reports whether err came from an agent response rather
// than from the transport.
func IsAgentError(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("User-Agent", c.userAgent)
	h.Set(RequestIDHeader, uuid.NewString())
	if c.channel != "" {
		h.Set(ChannelHeader, c.channel)
	}
	return h
}

func (c *Client) do(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header = c.header()
	req.Header.Set("Accept", "application/json")

	c.log.Debugf("%s %s (request %s)", method, path, req.Header.Get(RequestIDHeader))
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach update agent: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	e := &Error{Status: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		e.Code = payload.Code
		e.Message = payload.Message
	}
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}

// Constants returns the descriptor of the bundle the application is
// running.
func (c *Client) Constants(ctx context.Context) (update.CurrentlyRunning, error) {
	var running update.CurrentlyRunning
	if err := c.do(ctx, http.MethodGet, constantsPath, &running); err != nil {
		return update.CurrentlyRunning{}, err
	}
	return running, nil
}

// CheckForUpdate asks the agent to check the update server.
func (c *Client) CheckForUpdate(ctx context.Context) (update.CheckResult, error) {
	var res update.CheckResult
	if err := c.do(ctx, http.MethodPost, checkPath, &res); err != nil {
		return update.CheckResult{}, err
	}
	return res, nil
}

// FetchUpdate asks the agent to download the available update.
func (c *Client) FetchUpdate(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, fetchPath, nil)
}

// Reload asks the agent to restart the application into the most
// recently downloaded update.
func (c *Client) Reload(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, reloadPath, nil)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Warnf(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}
