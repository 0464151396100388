package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client is the single point of outbound HTTP traffic. It attaches the
// bearer token from the token source, the X-Salon-Id scoping header, and
// converts every failure into one of the typed errors in errors.go.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger

	tokenSource    func() string
	onUnauthorized func()
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Body   any
	Query  url.Values

	// SalonID scopes the call via X-Salon-Id. Zero means unscoped.
	SalonID int64

	// Token overrides the token source for this call.
	Token string

	// Public marks an unauthenticated call (login). No token is attached
	// and a 401 is reported as ErrInvalidCredentials instead of firing the
	// unauthorized hook.
	Public bool
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		log: log,
	}
}

// SetTokenSource registers the callback that supplies the current bearer
// token. An empty return means no token is attached.
func (c *Client) SetTokenSource(fn func() string) { c.tokenSource = fn }

// SetUnauthorizedHook registers the callback fired on every 401 from an
// authenticated call. The session uses it to tear itself down; callers must
// not assume the session survives a 401.
func (c *Client) SetUnauthorizedHook(fn func()) { c.onUnauthorized = fn }

// Do executes the request and returns the raw response body for 2xx
// statuses. All failures map onto the package error taxonomy.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	endpoint := req.Path
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	full := c.baseURL + endpoint
	if len(req.Query) > 0 {
		full += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, full, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-Id", uuid.NewString())
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.SalonID != 0 {
		httpReq.Header.Set("X-Salon-Id", strconv.FormatInt(req.SalonID, 10))
	}
	if !req.Public {
		token := req.Token
		if token == "" && c.tokenSource != nil {
			token = c.tokenSource()
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	c.log.Debug("api call",
		"method", req.Method,
		"path", endpoint,
		"status", resp.StatusCode,
		"salon_id", req.SalonID)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, c.errorFromResponse(req, resp.StatusCode, body)
}

func (c *Client) errorFromResponse(req Request, status int, body []byte) error {
	if status == http.StatusUnauthorized {
		if req.Public {
			return ErrInvalidCredentials
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}

	var payload struct {
		Message string              `json:"message"`
		Error   string              `json:"error"`
		Errors  map[string][]string `json:"errors"`
	}
	_ = json.Unmarshal(body, &payload)
	message := payload.Message
	if message == "" {
		message = payload.Error
	}

	if status == http.StatusUnprocessableEntity || len(payload.Errors) > 0 {
		return &ValidationError{Message: message, Fields: payload.Errors}
	}
	return &APIError{Status: status, Message: message}
}
