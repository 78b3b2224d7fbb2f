// Package panel implements the HTTP client for x-ui style panel APIs:
// cookie session auth, the {success, msg, obj} response envelope, and the
// inbound/client management endpoints the engine drives.
package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"averon/internal/application/fleet"
	"averon/internal/application/fleet/dto"
	"averon/internal/domain/server"
	"averon/internal/shared/errors"
	"averon/internal/shared/logger"
)

const (
	defaultTimeout = 10 * time.Second
	// Maximum response body size; inbound listings with embedded client
	// stats can grow large on busy panels.
	maxResponseSize = 8 << 20
)

// apiResponse is the panel's uniform response envelope.
type apiResponse struct {
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Obj     json.RawMessage `json:"obj"`
}

// Connector is one authenticated session against one panel. It is bound to
// a single base URL and credential pair for its whole lifetime and must be
// closed when the pass using it ends.
type Connector struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     logger.Interface

	mu            sync.Mutex
	authenticated bool
}

// Ensure Connector implements the fleet port
var _ fleet.PanelClient = (*Connector)(nil)

// NewConnector creates a connector for the given panel base URL.
func NewConnector(baseURL, username, password string, timeout time.Duration, log logger.Interface) (*Connector, error) {
	if baseURL == "" {
		return nil, errors.NewValidationError("panel base URL is required")
	}
	if username == "" || password == "" {
		return nil, errors.NewValidationError("panel credentials are required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Connector{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		logger: log,
	}, nil
}

// NewFactory returns a connector factory bound to the configured timeout.
func NewFactory(timeout time.Duration, log logger.Interface) fleet.ConnectorFactory {
	return func(srv *server.Server) (fleet.PanelClient, error) {
		baseURL := fmt.Sprintf("%s:%d", strings.TrimRight(srv.APIURL(), "/"), srv.APIPort())
		return NewConnector(baseURL, srv.Username(), srv.Password(), timeout, log.With("server", srv.Name()))
	}
}

// Authenticate logs in to the panel and stores the session cookie.
func (c *Connector) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *Connector) loginLocked(ctx context.Context) error {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.authenticated = false
		return connectionError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.authenticated = false
		return errors.NewAuthenticationError("panel rejected credentials")
	}
	if resp.StatusCode != http.StatusOK {
		c.authenticated = false
		return errors.NewRemoteAPIError("unexpected login status", fmt.Sprintf("status %d", resp.StatusCode))
	}

	var envelope apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&envelope); err != nil {
		c.authenticated = false
		return errors.NewRemoteAPIError("malformed login response", err.Error())
	}
	if !envelope.Success {
		c.authenticated = false
		return errors.NewAuthenticationError("panel login failed", envelope.Msg)
	}

	c.authenticated = true
	return nil
}

// GetStatus fetches the panel's resource snapshot.
func (c *Connector) GetStatus(ctx context.Context) (*dto.ServerStatus, error) {
	var status dto.ServerStatus
	if err := c.call(ctx, http.MethodPost, "/server/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListInbounds fetches all inbound configurations with embedded client stats.
func (c *Connector) ListInbounds(ctx context.Context) ([]dto.Inbound, error) {
	var inbounds []dto.Inbound
	if err := c.call(ctx, http.MethodGet, "/panel/api/inbounds/list", nil, &inbounds); err != nil {
		return nil, err
	}
	return inbounds, nil
}

// ListClientStats fetches the traffic entries for one inbound.
func (c *Connector) ListClientStats(ctx context.Context, inboundID int) ([]dto.ClientStat, error) {
	var inbound dto.Inbound
	path := fmt.Sprintf("/panel/api/inbounds/get/%d", inboundID)
	if err := c.call(ctx, http.MethodGet, path, nil, &inbound); err != nil {
		return nil, err
	}
	return inbound.ClientStats, nil
}

// addClientPayload wraps new clients the way the panel expects: the client
// list rides as a JSON string inside the settings field.
type addClientPayload struct {
	ID       int    `json:"id"`
	Settings string `json:"settings"`
}

type clientSpec struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	TotalGB    uint64 `json:"totalGB"`
	ExpiryTime int64  `json:"expiryTime"`
	Enable     bool   `json:"enable"`
}

type clientSettingsWrapper struct {
	Clients []clientSpec `json:"clients"`
}

// AddClient provisions a new client identity on the given inbound.
func (c *Connector) AddClient(ctx context.Context, inboundID int, email, uuid string, totalBytes uint64, expiresAt time.Time) error {
	spec := clientSpec{
		ID:      uuid,
		Email:   email,
		TotalGB: totalBytes,
		Enable:  true,
	}
	if !expiresAt.IsZero() {
		spec.ExpiryTime = expiresAt.UnixMilli()
	}

	settings, err := json.Marshal(clientSettingsWrapper{Clients: []clientSpec{spec}})
	if err != nil {
		return fmt.Errorf("failed to marshal client settings: %w", err)
	}

	payload := addClientPayload{ID: inboundID, Settings: string(settings)}
	return c.call(ctx, http.MethodPost, "/panel/api/inbounds/addClient", payload, nil)
}

// RemoveClient deletes a client identity from the given inbound.
func (c *Connector) RemoveClient(ctx context.Context, inboundID int, email string) error {
	path := fmt.Sprintf("/panel/api/inbounds/%d/delClient/%s", inboundID, url.PathEscape(email))
	return c.call(ctx, http.MethodPost, path, nil, nil)
}

// UpdateClient overwrites a client's traffic limit, expiry and enable flag.
func (c *Connector) UpdateClient(ctx context.Context, inboundID int, email string, settings dto.ClientSettings) error {
	spec := clientSpec{
		ID:      settings.UUID,
		Email:   email,
		TotalGB: settings.TotalBytes,
		Enable:  settings.Enable,
	}
	if settings.ExpiresAt != nil {
		spec.ExpiryTime = settings.ExpiresAt.UnixMilli()
	}

	body, err := json.Marshal(clientSettingsWrapper{Clients: []clientSpec{spec}})
	if err != nil {
		return fmt.Errorf("failed to marshal client settings: %w", err)
	}

	payload := addClientPayload{ID: inboundID, Settings: string(body)}
	path := fmt.Sprintf("/panel/api/inbounds/%d/updateClient/%s", inboundID, url.PathEscape(email))
	return c.call(ctx, http.MethodPost, path, payload, nil)
}

// ResetClientTraffic zeroes the panel-side traffic counters for a client.
func (c *Connector) ResetClientTraffic(ctx context.Context, inboundID int, email string) error {
	path := fmt.Sprintf("/panel/api/inbounds/%d/resetClientTraffic/%s", inboundID, url.PathEscape(email))
	return c.call(ctx, http.MethodPost, path, nil, nil)
}

// Close releases the transport session. The connector is unusable afterwards.
func (c *Connector) Close() {
	c.httpClient.CloseIdleConnections()
	c.mu.Lock()
	c.authenticated = false
	c.mu.Unlock()
}

// call performs one API request. It authenticates lazily on first use and
// retries exactly once after re-authenticating when the panel rejects the
// session; any further rejection surfaces as an authentication error.
func (c *Connector) call(ctx context.Context, method, path string, body any, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.authenticated {
		if err := c.loginLocked(ctx); err != nil {
			return err
		}
	}

	err := c.doLocked(ctx, method, path, body, out)
	if err != nil && errors.IsAuthenticationError(err) {
		c.logger.Debugw("panel session rejected, re-authenticating once", "path", path)
		if loginErr := c.loginLocked(ctx); loginErr != nil {
			return loginErr
		}
		err = c.doLocked(ctx, method, path, body, out)
	}
	return err
}

func (c *Connector) doLocked(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return connectionError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.authenticated = false
		return errors.NewAuthenticationError("panel session expired")
	case resp.StatusCode == http.StatusNotFound:
		return errors.NewNotFoundError("panel resource not found", path)
	case resp.StatusCode >= 500:
		return errors.NewRemoteAPIError("panel server error", fmt.Sprintf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return errors.NewRemoteAPIError("unexpected panel status", fmt.Sprintf("status %d", resp.StatusCode))
	}

	var envelope apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&envelope); err != nil {
		return errors.NewRemoteAPIError("malformed panel response", err.Error())
	}
	if !envelope.Success {
		if isNotFoundMsg(envelope.Msg) {
			return errors.NewNotFoundError("panel object not found", envelope.Msg)
		}
		return errors.NewRemoteAPIError("panel returned failure", envelope.Msg)
	}

	if out != nil {
		if len(envelope.Obj) == 0 {
			return errors.NewRemoteAPIError("panel response missing payload")
		}
		if err := json.Unmarshal(envelope.Obj, out); err != nil {
			return errors.NewRemoteAPIError("malformed panel payload", err.Error())
		}
	}
	return nil
}

func isNotFoundMsg(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "not found") || strings.Contains(lower, "no such")
}

// connectionError classifies transport-level failures (timeouts, refused
// connections, DNS errors) as connection errors.
func connectionError(err error) error {
	if urlErr, ok := err.(*url.Error); ok && urlErr.Timeout() {
		return errors.NewConnectionError("panel request timed out", urlErr.Error())
	}
	return errors.NewConnectionError("panel unreachable", err.Error())
}
