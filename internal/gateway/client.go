package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/jcallaghan/sessionlink/internal/dependencies/clock"
	"github.com/jcallaghan/sessionlink/internal/model"
)

// Long-lived tokens are issued with this many months of validity
const tokenValidityMonths = 6

// Config holds configuration for the gateway client
type Config struct {
	// BaseURL is the backend server URL (e.g., http://localhost:8080)
	BaseURL string

	// Timeout bounds each network exchange
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for the gateway client
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080",
		Timeout: 30 * time.Second,
	}
}

// Client performs the session exchanges against the backend and
// normalizes success/failure. The backend endpoints are an opaque
// contract; the client never interprets response bodies beyond the
// user record and error text.
type Client struct {
	baseURL    string
	httpClient *http.Client
	clock      clock.Clock
	logger     *slog.Logger
}

// New creates a new gateway client. The backend identifies the session
// via a cookie set on login, so the client carries a cookie jar.
func New(cfg Config, clk clock.Clock, logger *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		clock:  clk,
		logger: logger.With(slog.String("component", "gateway")),
	}
}

// LoginWithPassword exchanges email and password for a user record.
// A non-2xx status maps to ErrInvalidCredentials carrying the server's
// reason text; a transport error maps to ErrNetworkFailure.
func (c *Client) LoginWithPassword(ctx context.Context, email, password string) (*model.User, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/session",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrNetworkFailure, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.doLogin(req)
}

// LoginWithToken exchanges a pre-issued token for a user record, with
// the same success/failure mapping as the password path
func (c *Client) LoginWithToken(ctx context.Context, token string) (*model.User, error) {
	loginURL := c.baseURL + "/api/session?token=" + url.QueryEscape(token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loginURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrNetworkFailure, err)
	}

	return c.doLogin(req)
}

// IssueLongLivedToken requests a token expiring six months from now.
// This is a best-effort side channel: any failure degrades to an empty
// string and is never surfaced to the caller.
func (c *Client) IssueLongLivedToken(ctx context.Context) string {
	expiration := c.clock.Now().AddDate(0, tokenValidityMonths, 0)

	form := url.Values{}
	form.Set("expiration", expiration.Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/session/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return ""
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("token issuance failed", slog.String("error", err.Error()))
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("token issuance rejected", slog.Int("status", resp.StatusCode))
		return ""
	}

	return string(body)
}

// Register creates a new user account
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	payload, err := json.Marshal(map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/users",
		bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrNetworkFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s", model.ErrRegistrationFailed, strings.TrimSpace(string(body)))
	}

	return nil
}

// FetchCapabilities reads the server's configuration flags, taken as a
// snapshot before orchestration starts
func (c *Client) FetchCapabilities(ctx context.Context) (model.Capabilities, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/server", nil)
	if err != nil {
		return model.Capabilities{}, fmt.Errorf("%w: %v", model.ErrNetworkFailure, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Capabilities{}, fmt.Errorf("%w: %v", model.ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Capabilities{}, fmt.Errorf("unexpected status %d fetching server info", resp.StatusCode)
	}

	var caps model.Capabilities
	if err := json.NewDecoder(resp.Body).Decode(&caps); err != nil {
		return model.Capabilities{}, fmt.Errorf("failed to parse server info: %w", err)
	}

	return caps, nil
}

// doLogin executes a login request and maps the response to a user
// record or a normalized failure
func (c *Client) doLogin(req *http.Request) (*model.User, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("login request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", model.ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrNetworkFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := strings.TrimSpace(string(body))
		c.logger.Debug("login rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("reason", reason))
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidCredentials, reason)
	}

	var user model.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user record: %w", err)
	}

	return &user, nil
}
