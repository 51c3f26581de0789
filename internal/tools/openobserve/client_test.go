package openobserve

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/mdfranz/openobserve-oss-mcp/internal/server"
)

// TestLogger implements server.Logger for testing
type TestLogger struct{}

func (l *TestLogger) Debug(msg string, args ...interface{}) {}
func (l *TestLogger) Info(msg string, args ...interface{})  {}
func (l *TestLogger) Warn(msg string, args ...interface{})  {}
func (l *TestLogger) Error(msg string, args ...interface{}) {}

func testConfig(baseURL string) server.OpenObserveConfig {
	return server.OpenObserveConfig{
		BaseURL:   baseURL,
		Org:       "default",
		AccessKey: "test-access-key",
		Timeout:   5 * time.Second,
		MaxRows:   1000,
		MaxChars:  50000,
	}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(testConfig(baseURL), &TestLogger{})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name   string
		config server.OpenObserveConfig
	}{
		{
			name: "MissingBaseURL",
			config: server.OpenObserveConfig{
				Org: "default", AccessKey: "k", Timeout: time.Second,
			},
		},
		{
			name: "MissingOrg",
			config: server.OpenObserveConfig{
				BaseURL: "http://localhost:5080", AccessKey: "k", Timeout: time.Second,
			},
		},
		{
			name: "ZeroTimeout",
			config: server.OpenObserveConfig{
				BaseURL: "http://localhost:5080", Org: "default", AccessKey: "k",
			},
		},
		{
			name: "MissingCredentials",
			config: server.OpenObserveConfig{
				BaseURL: "http://localhost:5080", Org: "default", Timeout: time.Second,
			},
		},
		{
			name: "EmailWithoutPassword",
			config: server.OpenObserveConfig{
				BaseURL: "http://localhost:5080", Org: "default",
				Email: "root@example.com", Timeout: time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.config, &TestLogger{})
			if err == nil {
				t.Fatal("expected configuration error")
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected *ConfigError, got %T: %v", err, err)
			}
		})
	}

	t.Run("EmailAndPassword", func(t *testing.T) {
		config := server.OpenObserveConfig{
			BaseURL: "http://localhost:5080", Org: "default",
			Email: "root@example.com", Password: "secret", Timeout: time.Second,
		}
		if _, err := NewClient(config, &TestLogger{}); err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
	})

	t.Run("TrailingSlashTrimmed", func(t *testing.T) {
		client, err := NewClient(testConfig("http://localhost:5080/"), &TestLogger{})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if client.BaseURL() != "http://localhost:5080" {
			t.Errorf("BaseURL = %q, want trailing slash trimmed", client.BaseURL())
		}
	})
}

func TestAccessKeyAuthorizationHeader(t *testing.T) {
	var gotAuth string
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"list": []}`))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	if _, err := client.ListStreams(context.Background()); err != nil {
		t.Fatalf("ListStreams failed: %v", err)
	}

	// OpenObserve access keys go on the wire verbatim after "Basic",
	// without base64 encoding.
	if gotAuth != "Basic test-access-key" {
		t.Errorf("Authorization = %q, want raw access key", gotAuth)
	}
}

func TestBasicAuthFallback(t *testing.T) {
	var gotUser, gotPass string
	var gotOK bool
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotOK = r.BasicAuth()
		w.Write([]byte(`{"list": []}`))
	}))
	defer mockServer.Close()

	config := testConfig(mockServer.URL)
	config.AccessKey = ""
	config.Email = "root@example.com"
	config.Password = "hunter2"
	client, err := NewClient(config, &TestLogger{})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if _, err := client.ListStreams(context.Background()); err != nil {
		t.Fatalf("ListStreams failed: %v", err)
	}
	if !gotOK || gotUser != "root@example.com" || gotPass != "hunter2" {
		t.Errorf("basic auth = (%q, %q, %v), want email/password", gotUser, gotPass, gotOK)
	}
}

func TestSearchRequestEnvelope(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"hits": [], "total": 0}`))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	_, err := client.Search(context.Background(), "SELECT * FROM logs", 1000, 2000, 50, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if gotPath != "/api/default/_search" {
		t.Errorf("path = %q, want /api/default/_search", gotPath)
	}

	query, ok := gotBody["query"].(map[string]any)
	if !ok {
		t.Fatalf("request body missing query envelope: %v", gotBody)
	}
	if query["sql"] != "SELECT * FROM logs" {
		t.Errorf("sql = %v", query["sql"])
	}
	if query["from"] != float64(10) {
		t.Errorf("from = %v, want 10", query["from"])
	}
	if query["size"] != float64(50) {
		t.Errorf("size = %v, want 50", query["size"])
	}
	if query["start_time"] != float64(1000) || query["end_time"] != float64(2000) {
		t.Errorf("window = [%v, %v], want [1000, 2000]", query["start_time"], query["end_time"])
	}
}

func TestGetStreamSchemaPath(t *testing.T) {
	var gotPath string
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"name": "nginx", "schema": []}`))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	if _, err := client.GetStreamSchema(context.Background(), "nginx access"); err != nil {
		t.Fatalf("GetStreamSchema failed: %v", err)
	}
	if gotPath != "/api/default/streams/nginx%20access/schema" {
		t.Errorf("path = %q, want escaped stream name", gotPath)
	}

	if _, err := client.GetStreamSchema(context.Background(), ""); err == nil {
		t.Error("expected error for empty stream name")
	}
}

func TestGetWithParams(t *testing.T) {
	var gotQuery url.Values
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{}`))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	params := url.Values{}
	params.Set("type", "logs")
	if _, err := client.Get(context.Background(), "api/default/streams", params); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gotQuery.Get("type") != "logs" {
		t.Errorf("query = %v, want type=logs", gotQuery)
	}
}

func TestIngestJSON(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []map[string]any
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"status": [{"name": "sample", "successful": 2}]}`))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	records := []map[string]any{
		{"level": "INFO", "message": "hello"},
		{"level": "ERROR", "message": "boom"},
	}
	if _, err := client.IngestJSON(context.Background(), "sample", records); err != nil {
		t.Fatalf("IngestJSON failed: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotPath != "/api/default/sample/_json" {
		t.Errorf("path = %q", gotPath)
	}
	if len(gotBody) != 2 {
		t.Errorf("body has %d records, want 2", len(gotBody))
	}

	if _, err := client.IngestJSON(context.Background(), "sample", nil); err == nil {
		t.Error("expected error for nil records")
	}
	if _, err := client.IngestJSON(context.Background(), "", records); err == nil {
		t.Error("expected error for empty stream")
	}
}

func TestDeleteStream(t *testing.T) {
	var gotMethod, gotPath string
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"code": 200}`))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	if _, err := client.DeleteStream(context.Background(), "old_logs"); err != nil {
		t.Fatalf("DeleteStream failed: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %s, want DELETE", gotMethod)
	}
	if gotPath != "/api/default/streams/old_logs" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestStatusErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "Unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error": "unauthorized"}`,
			check: func(t *testing.T, err error) {
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Fatalf("expected *AuthError, got %T", err)
				}
				if authErr.StatusCode != http.StatusUnauthorized {
					t.Errorf("status = %d", authErr.StatusCode)
				}
				if !strings.Contains(err.Error(), "credentials") {
					t.Errorf("message should point at credentials: %v", err)
				}
			},
		},
		{
			name:   "Forbidden",
			status: http.StatusForbidden,
			body:   `{"error": "forbidden"}`,
			check: func(t *testing.T, err error) {
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Fatalf("expected *AuthError, got %T", err)
				}
				if !strings.Contains(err.Error(), `"default"`) {
					t.Errorf("message should name the organization: %v", err)
				}
			},
		},
		{
			name:   "NotFound",
			status: http.StatusNotFound,
			body:   `{"error": "no such stream"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected *APIError, got %T", err)
				}
				if apiErr.StatusCode != http.StatusNotFound {
					t.Errorf("status = %d", apiErr.StatusCode)
				}
				if !strings.Contains(err.Error(), "resource not found") {
					t.Errorf("message = %v", err)
				}
			},
		},
		{
			name:   "ServerError",
			status: http.StatusBadGateway,
			body:   "upstream unavailable",
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected *APIError, got %T", err)
				}
				if !strings.Contains(err.Error(), "HTTP 502") {
					t.Errorf("message = %v", err)
				}
				if !strings.Contains(err.Error(), "server logs") {
					t.Errorf("message = %v", err)
				}
			},
		},
		{
			name:   "BadRequestRetainsBody",
			status: http.StatusBadRequest,
			body:   `{"error": "sql parse error: ` + strings.Repeat("x", 400) + `"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected *APIError, got %T", err)
				}
				// Error() truncates, Body keeps the full text.
				if len(apiErr.Body) < 400 {
					t.Errorf("Body truncated to %d chars", len(apiErr.Body))
				}
				if !strings.Contains(err.Error(), "...[truncated]") {
					t.Errorf("Error() should truncate the body: %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer mockServer.Close()

			client := newTestClient(t, mockServer.URL)
			_, err := client.ListStreams(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestConnectionRefused(t *testing.T) {
	// Grab an address that is guaranteed closed.
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := mockServer.URL
	mockServer.Close()

	client := newTestClient(t, baseURL)
	_, err := client.ListStreams(context.Background())
	if err == nil {
		t.Fatal("expected connection error")
	}
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *ConnectionError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), baseURL) {
		t.Errorf("message should include the base URL: %v", err)
	}
	if connErr.Unwrap() == nil {
		t.Error("expected wrapped transport error")
	}
}

func TestRequestTimeout(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer mockServer.Close()

	config := testConfig(mockServer.URL)
	config.Timeout = 50 * time.Millisecond
	client, err := NewClient(config, &TestLogger{})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.ListStreams(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *ConnectionError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("message = %v", err)
	}
	if !strings.Contains(err.Error(), "ZO_TIMEOUT") {
		t.Errorf("message should mention ZO_TIMEOUT: %v", err)
	}
}

func TestNonJSONSuccessBody(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	_, err := client.ListStreams(context.Background())
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !strings.Contains(err.Error(), "decoding response body") {
		t.Errorf("message = %v", err)
	}
	var apiErr *APIError
	var connErr *ConnectionError
	if errors.As(err, &apiErr) || errors.As(err, &connErr) {
		t.Errorf("decode failure should not be classified, got %T", err)
	}
}
