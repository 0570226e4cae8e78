package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/25-26J-299/smartrose-admin/config"
	"github.com/25-26J-299/smartrose-admin/internal/session"
)

// Client is the typed SmartRose admin API client. Every call except Login is
// authenticated with the session's bearer token.
type Client struct {
	baseURL string
	session *session.Session
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client for the backend described by cfg.
func NewClient(cfg *config.BackendConfig, sess *session.Session) *Client {
	var transport http.RoundTripper = &http.Transport{Proxy: http.ProxyFromEnvironment}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Admin API client will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimitPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), 1)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		session: sess,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		limiter: limiter,
	}
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session {
	return c.session
}

// call describes one backend operation.
type call struct {
	op       string
	method   string
	path     string
	query    url.Values
	body     any
	notFound string // entity name for 404s; empty means 404 is a plain failure
	fallback string // message when the backend gives no explanation
}

// Login exchanges credentials for a bearer token and starts the session.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out struct {
		AccessToken string `json:"access_token"`
		User        User   `json:"user"`
	}
	req := call{
		op:       "login",
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     map[string]string{"email": email, "password": password},
		fallback: "Login failed",
	}
	resp, err := c.send(ctx, req, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, failure(req, resp)
	}
	if err := decode(req, resp, &out); err != nil {
		return nil, err
	}
	if err := c.session.Begin(out.AccessToken); err != nil {
		return nil, &RequestError{Op: req.op, Status: resp.StatusCode, Message: req.fallback, Err: err}
	}
	return &LoginResult{Token: out.AccessToken, User: out.User}, nil
}

// FetchUsers lists users, optionally filtered by approval status.
func (c *Client) FetchUsers(ctx context.Context, status string) ([]User, error) {
	var out struct {
		Users []User `json:"users"`
	}
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	err := c.do(ctx, call{
		op: "fetch users", method: http.MethodGet, path: "/admin/users", query: q,
		fallback: "Failed to fetch users",
	}, &out)
	if err != nil {
		return nil, err
	}
	return orEmpty(out.Users), nil
}

// FetchUserWithLocations loads one user together with the user's locations.
func (c *Client) FetchUserWithLocations(ctx context.Context, userID string) (*User, []Location, error) {
	var out struct {
		User      User       `json:"user"`
		Locations []Location `json:"locations"`
	}
	err := c.do(ctx, call{
		op: "fetch user", method: http.MethodGet, path: "/admin/users/" + url.PathEscape(userID),
		notFound: "User", fallback: "Failed to fetch user",
	}, &out)
	if err != nil {
		return nil, nil, err
	}
	return &out.User, orEmpty(out.Locations), nil
}

// UpdateUser applies a partial profile edit.
func (c *Client) UpdateUser(ctx context.Context, userID string, update UserUpdate) (*User, error) {
	return c.patchUser(ctx, call{
		op: "update user", path: "/admin/users/" + url.PathEscape(userID), body: update,
		fallback: "Failed to update user",
	})
}

// UpdateUserStatus requests an approval status transition.
func (c *Client) UpdateUserStatus(ctx context.Context, userID, status string) (*User, error) {
	return c.patchUser(ctx, call{
		op: "update status", path: "/admin/users/" + url.PathEscape(userID) + "/status",
		body: map[string]string{"status": status}, fallback: "Failed to update status",
	})
}

// UpdateUserRole changes a user's role.
func (c *Client) UpdateUserRole(ctx context.Context, userID, role string) (*User, error) {
	return c.patchUser(ctx, call{
		op: "update role", path: "/admin/users/" + url.PathEscape(userID) + "/role",
		body: map[string]string{"role": role}, fallback: "Failed to update role",
	})
}

func (c *Client) patchUser(ctx context.Context, req call) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	req.method = http.MethodPatch
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UpdateLocation applies a partial location edit.
func (c *Client) UpdateLocation(ctx context.Context, locationID string, update LocationUpdate) (*Location, error) {
	var out struct {
		Location Location `json:"location"`
	}
	err := c.do(ctx, call{
		op: "update location", method: http.MethodPatch, path: "/admin/locations/" + url.PathEscape(locationID),
		body: update, fallback: "Failed to update location",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Location, nil
}

// FetchLocations lists every greenhouse and flower shop.
func (c *Client) FetchLocations(ctx context.Context) ([]Location, error) {
	var out struct {
		Locations []Location `json:"locations"`
	}
	err := c.do(ctx, call{
		op: "fetch locations", method: http.MethodGet, path: "/admin/locations",
		fallback: "Failed to fetch greenhouses",
	}, &out)
	if err != nil {
		return nil, err
	}
	return orEmpty(out.Locations), nil
}

// SearchApprovedUsers finds approved users by email, phone or location name.
// Callers are expected to skip queries shorter than two characters.
func (c *Client) SearchApprovedUsers(ctx context.Context, query string) ([]SearchResult, error) {
	var out struct {
		Results []SearchResult `json:"results"`
	}
	err := c.do(ctx, call{
		op: "search", method: http.MethodGet, path: "/admin/search", query: url.Values{"q": {query}},
		fallback: "Search failed",
	}, &out)
	if err != nil {
		return nil, err
	}
	for i := range out.Results {
		out.Results[i].Locations = orEmpty(out.Results[i].Locations)
	}
	return orEmpty(out.Results), nil
}

// FetchDevices lists devices, optionally narrowed to a location or owner.
func (c *Client) FetchDevices(ctx context.Context, filter DeviceFilter) ([]Device, error) {
	var out struct {
		Devices []Device `json:"devices"`
	}
	q := url.Values{}
	if filter.LocationID != "" {
		q.Set("location_id", filter.LocationID)
	}
	if filter.UserID != "" {
		q.Set("user_id", filter.UserID)
	}
	err := c.do(ctx, call{
		op: "fetch devices", method: http.MethodGet, path: "/admin/devices", query: q,
		fallback: "Failed to fetch devices",
	}, &out)
	if err != nil {
		return nil, err
	}
	return orEmpty(out.Devices), nil
}

// CreateDevice registers a new device.
func (c *Client) CreateDevice(ctx context.Context, in DeviceCreate) (*Device, error) {
	var out struct {
		Device Device `json:"device"`
	}
	err := c.do(ctx, call{
		op: "create device", method: http.MethodPost, path: "/admin/devices", body: in,
		fallback: "Failed to create device",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Device, nil
}

// FetchDeviceSensorData returns up to limit of a device's latest readings.
func (c *Client) FetchDeviceSensorData(ctx context.Context, deviceID string, limit int) (*SensorData, error) {
	var out SensorData
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	err := c.do(ctx, call{
		op: "fetch sensor data", method: http.MethodGet,
		path: "/admin/devices/" + url.PathEscape(deviceID) + "/sensor-data", query: q,
		notFound: "Device", fallback: "Failed to fetch sensor data",
	}, &out)
	if err != nil {
		return nil, err
	}
	out.Readings = orEmpty(out.Readings)
	return &out, nil
}

// FetchAuditLogs returns the most recent admin audit entries.
func (c *Client) FetchAuditLogs(ctx context.Context, limit int) ([]AuditLog, error) {
	var out struct {
		Logs []AuditLog `json:"logs"`
	}
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	err := c.do(ctx, call{
		op: "fetch audit logs", method: http.MethodGet, path: "/admin/audit-logs", query: q,
		fallback: "Failed to fetch audit logs",
	}, &out)
	if err != nil {
		return nil, err
	}
	return orEmpty(out.Logs), nil
}

// do performs an authenticated call and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, req call, out any) error {
	token, ok := c.session.Token()
	if !ok {
		c.session.Invalidate()
		return ErrUnauthenticated
	}

	resp, err := c.send(ctx, req, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.session.Invalidate()
		return ErrUnauthenticated
	case resp.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case resp.StatusCode == http.StatusNotFound && req.notFound != "":
		return &NotFoundError{Entity: req.notFound}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return failure(req, resp)
	}
	return decode(req, resp, out)
}

// send builds and issues the HTTP request. token may be empty.
func (c *Client) send(ctx context.Context, req call, token string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RequestError{Op: req.op, Message: req.fallback, Err: err}
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, &RequestError{Op: req.op, Message: req.fallback, Err: fmt.Errorf("failed to marshal request payload: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, &RequestError{Op: req.op, Message: req.fallback, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &RequestError{Op: req.op, Message: req.fallback, Err: fmt.Errorf("http request failed: %w", err)}
	}
	return resp, nil
}

// failure turns a non-2xx response into a RequestError, preferring the
// backend's own message. A body that is not JSON is ignored.
func failure(req call, resp *http.Response) error {
	msg := req.fallback
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		var detail string
		if len(payload.Detail) > 0 && json.Unmarshal(payload.Detail, &detail) == nil && detail != "" {
			msg = detail
		} else if payload.Message != "" {
			msg = payload.Message
		} else if payload.Error != "" {
			msg = payload.Error
		}
	}
	return &RequestError{Op: req.op, Status: resp.StatusCode, Message: msg}
}

func decode(req call, resp *http.Response, out any) error {
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &RequestError{Op: req.op, Status: resp.StatusCode, Message: req.fallback, Err: fmt.Errorf("failed to unmarshal api response: %w", err)}
	}
	return nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
