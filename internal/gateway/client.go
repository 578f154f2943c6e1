// Package gateway is the stateless request/response wrapper around the
// remote session authority. It owns the wire schema translation and error
// normalization; all session policy lives in the orchestrator.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"codeberg.org/algopatterns/client/internal/auth"
	"codeberg.org/algopatterns/client/internal/config"
	"codeberg.org/algopatterns/client/internal/timeutil"
)

// manages HTTP requests to the practice-session REST API
type Client struct {
	endpoint   string
	tokens     auth.TokenSource
	httpClient *http.Client
}

// creates a new session gateway client
func NewClient(cfg *config.Config, tokens auth.TokenSource) *Client {
	return &Client{
		endpoint: cfg.APIEndpoint,
		tokens:   tokens,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// error body shape returned by the backend
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// registers a locally created session with the remote authority
func (c *Client) StartSession(ctx context.Context, desc *SessionDescriptor) (*RemoteSession, error) {
	var session RemoteSession
	if err := c.do(ctx, http.MethodPost, "/api/v1/practice/sessions", desc, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// notifies the remote authority that a session was paused
func (c *Client) PauseSession(ctx context.Context, sessionID, reason string) (*RemoteSession, error) {
	var session RemoteSession
	path := "/api/v1/practice/sessions/" + url.PathEscape(sessionID) + "/pause"

	if err := c.do(ctx, http.MethodPost, path, &reasonRequest{Reason: reason}, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// notifies the remote authority that a session was resumed
func (c *Client) ResumeSession(ctx context.Context, sessionID string) (*RemoteSession, error) {
	var session RemoteSession
	path := "/api/v1/practice/sessions/" + url.PathEscape(sessionID) + "/resume"

	if err := c.do(ctx, http.MethodPost, path, nil, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// ends a session remotely with the given reason
func (c *Client) EndSession(ctx context.Context, sessionID, reason string) (*RemoteSession, error) {
	var session RemoteSession
	path := "/api/v1/practice/sessions/" + url.PathEscape(sessionID) + "/end"

	if err := c.do(ctx, http.MethodPost, path, &reasonRequest{Reason: reason}, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// retrieves a session by ID; returns ErrSessionNotFound on 404
func (c *Client) GetSession(ctx context.Context, sessionID string) (*RemoteSession, error) {
	var session RemoteSession
	path := "/api/v1/practice/sessions/" + url.PathEscape(sessionID)

	if err := c.do(ctx, http.MethodGet, path, nil, &session); err != nil {
		return nil, notFoundAsSentinel(err)
	}

	return &session, nil
}

// retrieves the caller's active (or paused) session, or nil when the remote
// authority has none on record
func (c *Client) GetActiveSession(ctx context.Context) (*RemoteSession, error) {
	var session RemoteSession

	err := c.do(ctx, http.MethodGet, "/api/v1/practice/active-session", nil, &session)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}

		return nil, err
	}

	// backend may answer 200 with an empty body when there is no session
	if session.ID == "" {
		return nil, nil
	}

	return &session, nil
}

// lists the caller's sessions, most recent first
func (c *Client) ListSessions(ctx context.Context, limit int, includeActive bool) ([]*RemoteSession, error) {
	q := url.Values{}

	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	q.Set("include_active", strconv.FormatBool(includeActive))

	var sessions []*RemoteSession
	if err := c.do(ctx, http.MethodGet, "/api/v1/practice/sessions?"+q.Encode(), nil, &sessions); err != nil {
		return nil, err
	}

	return sessions, nil
}

// appends a telemetry event to a session's remote event log
func (c *Client) AppendEvent(ctx context.Context, sessionID, eventType string, data map[string]any) error {
	path := "/api/v1/practice/sessions/" + url.PathEscape(sessionID) + "/events"

	req := &eventRequest{
		EventType: eventType,
		Data:      data,
		Timestamp: timeutil.Now(),
	}

	return c.do(ctx, http.MethodPost, path, req, nil)
}

// upserts the latest editor contents for a session
func (c *Client) PutCurrentCode(ctx context.Context, sessionID, code, language string) error {
	path := "/api/v1/practice/sessions/" + url.PathEscape(sessionID) + "/code"

	return c.do(ctx, http.MethodPut, path, &codeRequest{Code: code, Language: language}, nil)
}

// fetches the latest remotely stored editor contents
func (c *Client) GetCurrentCode(ctx context.Context, sessionID string) (*CurrentCode, error) {
	var code CurrentCode
	path := "/api/v1/practice/sessions/" + url.PathEscape(sessionID) + "/code"

	if err := c.do(ctx, http.MethodGet, path, nil, &code); err != nil {
		return nil, notFoundAsSentinel(err)
	}

	return &code, nil
}

// fetches the session plus its current code in one round trip
func (c *Client) GetRecoveryBundle(ctx context.Context, sessionID string) (*RecoveryBundle, error) {
	var bundle RecoveryBundle
	path := "/api/v1/practice/sessions/" + url.PathEscape(sessionID) + "/recovery"

	if err := c.do(ctx, http.MethodGet, path, nil, &bundle); err != nil {
		return nil, notFoundAsSentinel(err)
	}

	return &bundle, nil
}

// performs one JSON request/response cycle against the backend and
// normalizes every failure into *APIError
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader

	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return transportError("failed to marshal request", err)
		}

		body = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return transportError("failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError("request failed", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError("failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := fmt.Sprintf("request failed with status %d", resp.StatusCode)

		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			message = errResp.Message
		}

		return &APIError{Message: message, StatusCode: resp.StatusCode}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return transportError("failed to parse response", err)
	}

	return nil
}

// converts a 404 APIError into the ErrSessionNotFound sentinel
func notFoundAsSentinel(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return ErrSessionNotFound
	}

	return err
}
