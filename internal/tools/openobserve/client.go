package openobserve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/mdfranz/openobserve-oss-mcp/internal/server"
)

// maxResponseBytes bounds how much of a backend response is read into memory.
const maxResponseBytes = 10 * 1024 * 1024

// Client performs authenticated HTTP calls against an OpenObserve backend
// and normalizes failures into the package's error taxonomy. It is safe for
// concurrent use: the configuration is immutable after construction.
type Client struct {
	config     server.OpenObserveConfig
	logger     server.Logger
	httpClient *http.Client
}

// NewClient validates the configuration and creates an OpenObserve client.
// Either an access key or both email and password must be supplied.
func NewClient(config server.OpenObserveConfig, logger server.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, &ConfigError{Reason: "base URL is required (set ZO_BASE_URL)"}
	}
	if config.Org == "" {
		return nil, &ConfigError{Reason: "organization is required (set ZO_ORG)"}
	}
	if config.Timeout <= 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("timeout must be positive, got %s", config.Timeout)}
	}
	if config.AccessKey == "" && (config.Email == "" || config.Password == "") {
		return nil, &ConfigError{
			Reason: "authentication required: provide ZO_ACCESS_KEY or both ZO_ROOT_USER_EMAIL and ZO_ROOT_USER_PASSWORD",
		}
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	logger.Debug("OpenObserve client initialized",
		"baseURL", config.BaseURL, "org", config.Org, "timeout", config.Timeout)

	return &Client{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// Org returns the organization the client is scoped to.
func (c *Client) Org() string { return c.config.Org }

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.config.BaseURL }

type searchQuery struct {
	SQL       string `json:"sql"`
	From      int    `json:"from"`
	Size      int    `json:"size"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
}

type searchRequest struct {
	Query searchQuery `json:"query"`
}

// Search runs an SQL query via POST api/{org}/_search. Start and end are
// microsecond epoch timestamps; offset maps to the envelope's "from" field.
func (c *Client) Search(ctx context.Context, sql string, startMicros, endMicros int64, size, offset int) (any, error) {
	payload := searchRequest{
		Query: searchQuery{
			SQL:       sql,
			From:      offset,
			Size:      size,
			StartTime: startMicros,
			EndTime:   endMicros,
		},
	}
	c.logger.Info("OpenObserve search", "org", c.config.Org, "sql", sql,
		"start", startMicros, "end", endMicros, "size", size, "offset", offset)
	return c.request(ctx, http.MethodPost, fmt.Sprintf("api/%s/_search", c.config.Org), nil, payload, nil)
}

// ListStreams lists the streams of the configured organization.
func (c *Client) ListStreams(ctx context.Context) (any, error) {
	return c.request(ctx, http.MethodGet, fmt.Sprintf("api/%s/streams", c.config.Org), nil, nil, nil)
}

// GetStreamSchema fetches the field schema of a single stream.
func (c *Client) GetStreamSchema(ctx context.Context, stream string) (any, error) {
	if stream == "" {
		return nil, validationErrorf("stream name cannot be empty")
	}
	path := fmt.Sprintf("api/%s/streams/%s/schema", c.config.Org, url.PathEscape(stream))
	return c.request(ctx, http.MethodGet, path, nil, nil, nil)
}

// Get performs a GET of an arbitrary relative path under the base URL.
// Callers are responsible for restricting which paths may be requested.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (any, error) {
	return c.request(ctx, http.MethodGet, path, params, nil, nil)
}

// IngestJSON posts a JSON array of records to the stream's _json ingest
// endpoint. Used by operator commands; the MCP tool surface stays read-only.
func (c *Client) IngestJSON(ctx context.Context, stream string, records []map[string]any) (any, error) {
	if stream == "" {
		return nil, validationErrorf("stream name cannot be empty")
	}
	if records == nil {
		return nil, validationErrorf("records must be a list of objects")
	}
	path := fmt.Sprintf("api/%s/%s/_json", c.config.Org, url.PathEscape(stream))
	return c.request(ctx, http.MethodPost, path, nil, records, nil)
}

// DeleteStream deletes a stream. Operator commands only.
func (c *Client) DeleteStream(ctx context.Context, stream string) (any, error) {
	if stream == "" {
		return nil, validationErrorf("stream name cannot be empty")
	}
	path := fmt.Sprintf("api/%s/streams/%s", c.config.Org, url.PathEscape(stream))
	return c.request(ctx, http.MethodDelete, path, nil, nil, nil)
}

// request executes a single HTTP round trip and decodes the JSON response.
// Extra headers override the defaults set here.
func (c *Client) request(ctx context.Context, method, path string, params url.Values, body any, headers map[string]string) (any, error) {
	u := c.config.BaseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.config.AccessKey != "" {
		// OpenObserve expects the raw access key after "Basic", not the
		// standard base64(user:pass) encoding. Preserved as-is.
		req.Header.Set("Authorization", "Basic "+c.config.AccessKey)
	} else {
		req.SetBasicAuth(c.config.Email, c.config.Password)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("OpenObserve request", "method", method, "url", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classifyTransportError(method, u, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ConnectionError{
			Message: "reading response body: " + err.Error(),
			Err:     err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.classifyStatusError(method, u, path, resp.StatusCode, respBody)
	}

	var decoded any
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decoding response body: %w", err)
	}

	c.logger.Debug("OpenObserve request succeeded", "method", method, "url", u, "status", resp.StatusCode)
	return decoded, nil
}

func (c *Client) classifyTransportError(method, u string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		c.logger.Error("OpenObserve request timed out", "method", method, "url", u, "timeout", c.config.Timeout)
		return &ConnectionError{
			Message: fmt.Sprintf("request to OpenObserve timed out after %s; consider increasing ZO_TIMEOUT or check network connectivity", c.config.Timeout),
			Err:     err,
		}
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	if errors.As(err, &dnsErr) || errors.As(err, &opErr) {
		c.logger.Error("OpenObserve connection failed", "method", method, "url", u, "error", err)
		return &ConnectionError{
			Message: fmt.Sprintf("failed to connect to OpenObserve at %s; verify the URL and that OpenObserve is running", c.config.BaseURL),
			Err:     err,
		}
	}

	c.logger.Error("OpenObserve request failed", "method", method, "url", u, "error", err)
	return &ConnectionError{
		Message: "request failed: " + err.Error(),
		Err:     err,
	}
}

func (c *Client) classifyStatusError(method, u, path string, status int, body []byte) error {
	text := string(body)
	c.logger.Error("OpenObserve API error",
		"method", method, "url", u, "status", status, "body", truncateForLog(text, 200))

	switch {
	case status == http.StatusUnauthorized:
		return &AuthError{
			StatusCode: status,
			Message:    "authentication failed: verify ZO_ACCESS_KEY or ZO_ROOT_USER_EMAIL/ZO_ROOT_USER_PASSWORD credentials",
		}
	case status == http.StatusForbidden:
		return &AuthError{
			StatusCode: status,
			Message:    fmt.Sprintf("access forbidden: user may not have permissions for organization %q", c.config.Org),
		}
	case status == http.StatusNotFound:
		return &APIError{
			StatusCode: status,
			Path:       path,
			Body:       text,
			Message:    fmt.Sprintf("resource not found: %s; verify organization name and resource path", path),
		}
	case status >= 500:
		return &APIError{
			StatusCode: status,
			Path:       path,
			Body:       text,
			Message:    fmt.Sprintf("OpenObserve server error (HTTP %d); check OpenObserve server logs for details", status),
		}
	default:
		return &APIError{
			StatusCode: status,
			Path:       path,
			Body:       text,
			Message:    fmt.Sprintf("API request failed (HTTP %d): %s", status, truncateForLog(text, 200)),
		}
	}
}
